package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"chesslink/internal/channel"
	"chesslink/internal/domain"
	"chesslink/internal/game"
	"chesslink/internal/protocol/exchange"
	"chesslink/internal/protocol/handshake"
	"chesslink/internal/session"
	"chesslink/internal/transport"
)

// Config carries the runtime knobs for a Core.
type Config struct {
	Passphrase string
	PlayerName string
	AutoSave   bool

	HandshakeTimeout time.Duration // default handshake.DefaultTimeout
	HeartbeatEvery   time.Duration // default 15s
	PeerTimeout      time.Duration // default 45s; silence beyond this degrades

	Logger *slog.Logger
}

const (
	defaultHeartbeatEvery = 15 * time.Second
	defaultPeerTimeout    = 45 * time.Second
	eventBuffer           = 128
)

// ErrClosed is returned by facade calls after Close.
var ErrClosed = errors.New("core is closed")

// Core is the facade between the presentation layer and the protocol stack.
type Core struct {
	cfg    Config
	engine game.Engine
	games  domain.GameStore
	trust  domain.TrustStore
	id     domain.Identity
	log    *slog.Logger

	cmds   chan func()
	events chan Event
	done   chan struct{}

	// Everything below is owned by the run loop.
	sess      *session.Session
	rec       *game.GameRecord
	conn      net.Conn
	ch        *channel.Channel
	pending   *game.Move
	inbound   chan inboundMsg
	readStop  chan struct{}
	lastRecv  time.Time
	netCancel context.CancelFunc
}

type inboundMsg struct {
	plaintext []byte
	err       error
}

// connEstablished is posted by the connector goroutine once the transport
// and handshake have both completed (or failed).
type connEstablished struct {
	conn net.Conn
	res  *handshake.Result
	err  error
}

// New builds a Core. If a persisted snapshot exists it is restored by
// replaying its move list; the session starts Idle either way, since the
// peer's availability after a restart is never guaranteed.
func New(cfg Config, engine game.Engine, id domain.Identity, games domain.GameStore, trust domain.TrustStore) (*Core, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	if cfg.HeartbeatEvery <= 0 {
		cfg.HeartbeatEvery = defaultHeartbeatEvery
	}
	if cfg.PeerTimeout <= 0 {
		cfg.PeerTimeout = defaultPeerTimeout
	}

	c := &Core{
		cfg:    cfg,
		engine: engine,
		games:  games,
		trust:  trust,
		id:     id,
		log:    log,
		cmds:   make(chan func()),
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
		sess:   session.New(session.Host),
	}

	if err := c.restore(); err != nil {
		return nil, err
	}
	if c.rec == nil {
		c.rec = game.NewGameRecord(engine)
	}

	go c.run()
	return c, nil
}

// restore loads the persisted snapshot, verifies it by replay, and adopts it.
func (c *Core) restore() error {
	st, err := c.games.LoadGame(c.cfg.Passphrase)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading saved game: %w", err)
	}
	rec, err := game.Replay(c.engine, st.Game.Moves)
	if err != nil {
		return fmt.Errorf("saved move list does not replay: %w", err)
	}
	if rec.Position != st.Game.Position || rec.Status != st.Game.Status {
		// Snapshot fields lost to corruption are rebuilt from the move list,
		// which is the source of truth.
		c.log.Warn("persisted snapshot disagrees with replay; trusting the move list")
	}
	rec.GameID = st.Game.GameID
	rec.White, rec.Black = st.Game.White, st.Game.Black
	rec.StartedUTC = st.Game.StartedUTC
	c.rec = rec
	if st.Role == session.Joiner.String() {
		c.sess = session.New(session.Joiner)
	}
	c.log.Info("restored saved game", "game_id", rec.GameID, "moves", len(rec.Moves))
	return nil
}

// Events is the ordered outward event stream. It is closed by Close. The
// buffer is generous but finite; a consumer that stops draining loses events
// rather than stalling the session.
func (c *Core) Events() <-chan Event { return c.events }

// Game returns a snapshot copy of the current record.
func (c *Core) Game() (game.GameRecord, error) {
	var out game.GameRecord
	err := c.do(func() error {
		out = *c.rec.Clone()
		return nil
	})
	return out, err
}

// Role returns the side this endpoint plays, restored from the saved game
// when one exists.
func (c *Core) Role() (session.Role, error) {
	var r session.Role
	err := c.do(func() error {
		r = c.sess.Role
		return nil
	})
	return r, err
}

// SessionState returns the current lifecycle state.
func (c *Core) SessionState() (session.State, error) {
	var st session.State
	err := c.do(func() error {
		st = c.sess.State()
		return nil
	})
	return st, err
}

// Host listens on addr and waits for a joiner. The local side plays white.
func (c *Core) Host(addr string) error {
	return c.do(func() error { return c.startConnect(session.Host, addr, "") })
}

// Connect dials a host at addr as the joiner (black). expectedPeer, when
// non-empty, pins the host's identity fingerprint.
func (c *Core) Connect(addr string, expectedPeer domain.Fingerprint) error {
	return c.do(func() error { return c.startConnect(session.Joiner, addr, expectedPeer) })
}

// SubmitMove proposes a local move. The game record is committed only after
// the peer acknowledges, so the caller sees the move via a MoveApplied event
// rather than in the immediate return.
func (c *Core) SubmitMove(m game.Move) error {
	return c.do(func() error { return c.submitMove(m) })
}

// NewGame resets the board to the initial position. The connection, if any,
// is untouched: board reset and connection reset are independent.
func (c *Core) NewGame() error {
	return c.do(func() error {
		c.rec = game.NewGameRecord(c.engine)
		c.pending = nil
		c.save()
		c.emit(StatusChanged{Status: game.Ongoing})
		c.log.Info("new game", "game_id", c.rec.GameID)
		return nil
	})
}

// ResetConnection tears down any connection and returns the session to Idle.
// The game record is untouched.
func (c *Core) ResetConnection() error {
	return c.do(func() error {
		c.teardownConn()
		c.sess.Reset()
		c.emit(ConnectionStateChanged{State: session.Idle})
		return nil
	})
}

// Disconnect closes the session. Closed is absorbing; ResetConnection starts
// a fresh one.
func (c *Core) Disconnect() error {
	return c.do(func() error {
		st := c.sess.State()
		if st == session.Closed || st == session.Failed || st == session.Idle {
			return nil
		}
		c.teardownConn()
		if err := c.sess.Transition(session.Closed); err != nil {
			return err
		}
		c.emit(ConnectionStateChanged{State: session.Closed})
		return nil
	})
}

// Close stops the loop and closes the event stream. The facade is unusable
// afterwards.
func (c *Core) Close() error {
	err := c.do(func() error {
		c.teardownConn()
		return nil
	})
	if errors.Is(err, ErrClosed) {
		return nil
	}
	close(c.done)
	return err
}

// do posts fn into the run loop and waits for its result.
func (c *Core) do(fn func() error) error {
	errc := make(chan error, 1)
	select {
	case c.cmds <- func() { errc <- fn() }:
	case <-c.done:
		return ErrClosed
	}
	select {
	case err := <-errc:
		return err
	case <-c.done:
		return ErrClosed
	}
}

// run is the session loop: the single writer for Session and GameRecord.
func (c *Core) run() {
	ticker := time.NewTicker(c.cfg.HeartbeatEvery)
	defer ticker.Stop()
	defer close(c.events)

	for {
		// inbound is nil until a connection exists; a nil channel blocks
		// forever, which is exactly what we want here.
		select {
		case <-c.done:
			return
		case fn := <-c.cmds:
			fn()
		case msg, ok := <-c.inbound:
			if !ok {
				c.inbound = nil
				continue
			}
			c.handleInbound(msg)
		case <-ticker.C:
			c.tick()
		}
	}
}

// --- connection establishment ---

func (c *Core) startConnect(role session.Role, addr string, expected domain.Fingerprint) error {
	switch c.sess.State() {
	case session.Idle, session.Degraded:
	default:
		return fmt.Errorf("cannot connect while session is %s", c.sess.State())
	}

	reconnect := c.sess.State() == session.Degraded
	if !reconnect {
		c.sess = session.New(role)
		first := session.Listening
		if role == session.Joiner {
			first = session.Dialing
		}
		if err := c.sess.Transition(first); err != nil {
			return err
		}
		c.emit(ConnectionStateChanged{State: c.sess.State()})
	}
	if reconnect && expected == "" {
		// A reconnect must land on the same peer we were playing.
		expected = c.sess.Peer.Fingerprint
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.netCancel = cancel

	go func() {
		conn, res, err := establish(ctx, role, addr, c.id, expected, c.cfg.HandshakeTimeout)
		est := connEstablished{conn: conn, res: res, err: err}
		select {
		case c.cmds <- func() { c.finishConnect(role, est) }:
		case <-c.done:
			if conn != nil {
				conn.Close()
			}
		}
	}()
	return nil
}

// establish runs outside the loop: transport setup then handshake, both
// bounded by ctx and the handshake timeout.
func establish(ctx context.Context, role session.Role, addr string, id domain.Identity, expected domain.Fingerprint, hsTimeout time.Duration) (net.Conn, *handshake.Result, error) {
	var (
		conn net.Conn
		err  error
	)
	if role == session.Host {
		conn, err = transport.Listen(ctx, addr)
	} else {
		conn, err = transport.Dial(ctx, addr)
	}
	if err != nil {
		return nil, nil, err
	}
	res, err := handshake.Run(conn, role, id, expected, hsTimeout)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return conn, res, nil
}

func (c *Core) finishConnect(role session.Role, est connEstablished) {
	c.netCancel = nil
	if est.err != nil {
		c.log.Warn("connection failed", "role", role.String(), "err", est.err)
		c.failConnect(est.err)
		return
	}

	if err := c.sess.Transition(session.Handshaking); err != nil {
		est.conn.Close()
		c.log.Error("connection landed in a bad state", "err", err)
		return
	}

	ch, err := channel.Open(est.conn, est.res.Keys)
	if err != nil {
		est.conn.Close()
		c.failConnect(err)
		return
	}

	c.conn = est.conn
	c.ch = ch
	c.sess.Peer = est.res.Peer
	c.lastRecv = time.Now()
	if err := c.sess.Transition(session.Synchronized); err != nil {
		c.teardownConn()
		c.log.Error("connection landed in a bad state", "err", err)
		return
	}

	if c.trust != nil {
		if err := c.trust.SavePeer(domain.TrustedPeer{
			Fingerprint: est.res.Peer.Fingerprint,
			Address:     est.res.Peer.Address,
		}); err != nil {
			c.log.Warn("could not record trusted peer", "err", err)
		}
	}

	c.inbound = make(chan inboundMsg, 1)
	c.readStop = make(chan struct{})
	go readLoop(c.ch, c.inbound, c.readStop)

	c.emit(ConnectionStateChanged{State: session.Synchronized})
	c.log.Info("session synchronized",
		"role", role.String(),
		"peer", string(est.res.Peer.Fingerprint),
		"addr", est.res.Peer.Address)

	// Open with a resync so histories reconcile after any restart or drop.
	c.sendResyncRequest()
}

// failConnect maps a failed attempt to the right terminal or retryable state.
func (c *Core) failConnect(err error) {
	switch c.sess.State() {
	case session.Listening, session.Dialing:
		if errors.Is(err, domain.ErrAuthentication) || errors.Is(err, domain.ErrProtocol) {
			// Transition through Handshaking so the table stays honest.
			_ = c.sess.Transition(session.Handshaking)
			_ = c.sess.Transition(session.Failed)
		} else {
			_ = c.sess.Transition(session.Closed)
		}
	case session.Degraded:
		if errors.Is(err, domain.ErrAuthentication) {
			_ = c.sess.Transition(session.Failed)
		}
		// Transport failures leave us Degraded for another attempt.
	case session.Handshaking:
		_ = c.sess.Transition(session.Failed)
	}
	c.emit(ConnectionStateChanged{State: c.sess.State()})
}

// readLoop delivers channel plaintexts to the session loop. It exits on the
// first receive error or when the connection is torn down underneath it.
func readLoop(ch *channel.Channel, out chan<- inboundMsg, stop <-chan struct{}) {
	for {
		pt, err := ch.Receive()
		select {
		case out <- inboundMsg{plaintext: pt, err: err}:
		case <-stop:
			return
		}
		if err != nil {
			return
		}
	}
}

// --- moves ---

func (c *Core) submitMove(m game.Move) error {
	if c.sess.State() != session.Synchronized {
		return domain.ErrNotConnected
	}
	if c.pending != nil {
		// Our previous move is still awaiting the peer's acknowledgement.
		return domain.ErrNotYourTurn
	}
	if c.rec.SideToMove() != c.sess.Role.Color() {
		return domain.ErrNotYourTurn
	}
	m.Seq = c.rec.NextSeq()
	if !c.engine.IsLegal(c.rec.Position, m) {
		return fmt.Errorf("%w: %s", domain.ErrIllegalMove, m)
	}
	// Tentative application proves the engine accepts it before anything is
	// sent; the visible record is committed only on the peer's ack.
	if err := c.rec.Clone().Apply(c.engine, m); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrIllegalMove, m)
	}

	if err := c.send(exchange.KindMoveProposal, exchange.MoveProposal{Move: m}); err != nil {
		c.degrade(err)
		return err
	}
	c.pending = &m
	c.sess.SentSeq = m.Seq
	c.log.Debug("proposed move", "move", m.UCI(), "seq", m.Seq)
	return nil
}

// --- inbound handling ---

func (c *Core) handleInbound(msg inboundMsg) {
	if msg.err != nil {
		c.degrade(msg.err)
		return
	}
	c.lastRecv = time.Now()
	c.sess.Touch()

	kind, raw, err := exchange.Decode(msg.plaintext)
	if err != nil {
		c.degrade(err)
		return
	}

	switch kind {
	case exchange.KindMoveProposal:
		var p exchange.MoveProposal
		if err := exchange.DecodePayload(raw, &p); err != nil {
			c.degrade(err)
			return
		}
		c.handleProposal(p)
	case exchange.KindMoveAck:
		var a exchange.MoveAck
		if err := exchange.DecodePayload(raw, &a); err != nil {
			c.degrade(err)
			return
		}
		c.handleAck(a)
	case exchange.KindResyncReq:
		var r exchange.ResyncRequest
		if err := exchange.DecodePayload(raw, &r); err != nil {
			c.degrade(err)
			return
		}
		c.handleResyncRequest(r)
	case exchange.KindResyncResp:
		var r exchange.ResyncResponse
		if err := exchange.DecodePayload(raw, &r); err != nil {
			c.degrade(err)
			return
		}
		c.handleResyncResponse(r)
	case exchange.KindHeartbeat:
		// Touch above is all a heartbeat is for.
	}
}

func (c *Core) handleProposal(p exchange.MoveProposal) {
	peerColor := c.sess.Role.Color().Other()
	if err := exchange.ValidateProposal(c.rec, peerColor, p.Move); err != nil {
		// No ack, no mutation. The peer learns via resync if it matters.
		c.log.Warn("rejected proposal", "move", p.Move.UCI(), "seq", p.Move.Seq, "err", err)
		return
	}
	if err := c.rec.Apply(c.engine, p.Move); err != nil {
		c.log.Warn("rejected illegal proposal", "move", p.Move.UCI(), "err", err)
		return
	}
	c.sess.RecvSeq = p.Move.Seq

	if err := c.send(exchange.KindMoveAck, exchange.MoveAck{Seq: p.Move.Seq}); err != nil {
		c.degrade(err)
		return
	}
	c.emit(MoveApplied{Move: p.Move, By: peerColor})
	c.emitStatus()
	c.save()
	c.log.Debug("applied peer move", "move", p.Move.UCI(), "seq", p.Move.Seq)
}

func (c *Core) handleAck(a exchange.MoveAck) {
	if c.pending == nil || a.Seq != c.pending.Seq {
		c.log.Warn("stray ack", "seq", a.Seq)
		return
	}
	m := *c.pending
	c.pending = nil
	if err := c.rec.Apply(c.engine, m); err != nil {
		// The tentative application already vetted this; failure here means
		// the record changed underneath us.
		c.log.Error("could not commit acknowledged move", "move", m.UCI(), "err", err)
		return
	}
	c.sess.AckedSeq = a.Seq
	c.emit(MoveApplied{Move: m, By: c.sess.Role.Color()})
	c.emitStatus()
	c.save()
	c.log.Debug("move acknowledged", "move", m.UCI(), "seq", a.Seq)
}

// --- resync ---

func (c *Core) sendResyncRequest() {
	if err := c.send(exchange.KindResyncReq, exchange.NewResyncRequest(c.rec)); err != nil {
		c.degrade(err)
	}
}

func (c *Core) handleResyncRequest(r exchange.ResyncRequest) {
	if err := exchange.CheckDigest(c.rec, r); err != nil {
		c.conflict(err)
		return
	}
	resp := exchange.ResyncResponse{Moves: c.rec.MovesAfter(r.LastKnownSeq)}
	if err := c.send(exchange.KindResyncResp, resp); err != nil {
		c.degrade(err)
		return
	}
	if n := len(resp.Moves); n > 0 {
		c.log.Info("peer resyncing", "missing_moves", n)
	}
}

func (c *Core) handleResyncResponse(r exchange.ResyncResponse) {
	applied, err := exchange.Reconcile(c.engine, c.rec, r.Moves)
	for _, m := range applied {
		by := game.White
		if m.Seq%2 == 0 {
			by = game.Black
		}
		c.sess.RecvSeq = m.Seq
		c.emit(MoveApplied{Move: m, By: by})
	}
	if err != nil {
		c.conflict(err)
		return
	}
	if len(applied) > 0 {
		c.emitStatus()
		c.save()
		c.log.Info("resynced", "applied_moves", len(applied))
	}
}

// --- failure paths ---

// degrade handles a broken or hostile connection: the socket goes away, the
// session keeps its game and waits for an explicit reconnect.
func (c *Core) degrade(err error) {
	st := c.sess.State()
	if st != session.Synchronized && st != session.Degraded {
		return
	}
	c.log.Warn("session degraded", "err", err)
	c.teardownConn()
	c.pending = nil // unacknowledged move is abandoned, never half-applied
	if st == session.Synchronized {
		if terr := c.sess.Transition(session.Degraded); terr != nil {
			c.log.Error("degrade transition failed", "err", terr)
			return
		}
		c.emit(ConnectionStateChanged{State: session.Degraded})
	}
}

// conflict is the fail-closed path for divergent histories.
func (c *Core) conflict(err error) {
	c.log.Error("sync conflict", "err", err)
	c.teardownConn()
	c.pending = nil
	_ = c.sess.Transition(session.Failed)
	c.emit(SyncConflict{Detail: err.Error()})
	c.emit(ConnectionStateChanged{State: session.Failed})
}

func (c *Core) teardownConn() {
	if c.netCancel != nil {
		c.netCancel()
		c.netCancel = nil
	}
	if c.readStop != nil {
		close(c.readStop)
		c.readStop = nil
	}
	if c.conn != nil {
		c.conn.Close() // unblocks the read loop promptly
		c.conn = nil
	}
	c.ch = nil
	c.inbound = nil
}

// --- timers, sending, persistence ---

func (c *Core) tick() {
	if c.sess.State() != session.Synchronized {
		return
	}
	if time.Since(c.lastRecv) > c.cfg.PeerTimeout {
		c.degrade(fmt.Errorf("%w: peer silent for %s", domain.ErrTransport, time.Since(c.lastRecv).Round(time.Second)))
		return
	}
	if c.sess.IdleFor() >= c.cfg.HeartbeatEvery {
		if err := c.send(exchange.KindHeartbeat, exchange.Heartbeat{}); err != nil {
			c.degrade(err)
		}
	}
}

func (c *Core) send(kind exchange.Kind, payload any) error {
	if c.ch == nil {
		return domain.ErrNotConnected
	}
	b, err := exchange.Encode(kind, payload)
	if err != nil {
		return err
	}
	if err := c.ch.Send(b); err != nil {
		return err
	}
	c.sess.Touch()
	return nil
}

// save snapshots the game. Failure is surfaced as an event and logged, never
// fatal: the in-memory record stays authoritative.
func (c *Core) save() {
	if !c.cfg.AutoSave {
		return
	}
	st := domain.PersistedState{
		Game:            *c.rec.Clone(),
		Role:            c.sess.Role.String(),
		PeerFingerprint: c.sess.Peer.Fingerprint,
	}
	if err := c.games.SaveGame(c.cfg.Passphrase, st); err != nil {
		c.log.Error("save failed", "err", err)
		c.emit(SaveFailed{Err: fmt.Errorf("saving game: %w", err)})
	}
}

func (c *Core) emitStatus() {
	if c.rec.Status != game.Ongoing {
		c.emit(StatusChanged{Status: c.rec.Status})
	}
}

// emit never blocks the loop. A consumer that stops draining Events loses
// events instead of wedging the session.
func (c *Core) emit(ev Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	default:
		c.log.Warn("event dropped, consumer not draining", "event", fmt.Sprintf("%T", ev))
	}
}
