package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"chesslink/internal/core"
	"chesslink/internal/domain"
	"chesslink/internal/game"
	"chesslink/internal/session"
	"chesslink/internal/transport"
)

// playCmd resumes the saved game. Hosts listen again on the configured port;
// joiners dial the last known peer address unless one is given.
func playCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play [host-address]",
		Short: "Resume the saved game",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := wire.Core()
			if err != nil {
				return err
			}
			defer c.Close()

			role, err := c.Role()
			if err != nil {
				return err
			}
			if role == session.Host {
				addr := wire.ListenAddr()
				if err := c.Host(addr); err != nil {
					return err
				}
				pterm.Info.Printfln("Waiting for your opponent on %s ...", addr)
				return runPlay(c)
			}

			addr, fp, err := lastPeer(args)
			if err != nil {
				return err
			}
			if err := c.Connect(addr, fp); err != nil {
				return err
			}
			pterm.Info.Printfln("Reconnecting to %s ...", addr)
			return runPlay(c)
		},
	}
}

// lastPeer resolves the reconnect target: an explicit argument wins,
// otherwise the most recently seen trusted peer.
func lastPeer(args []string) (string, domain.Fingerprint, error) {
	if len(args) == 1 {
		return transport.WithDefaultPort(args[0]), "", nil
	}
	peers, err := wire.Trust.ListPeers()
	if err != nil {
		return "", "", err
	}
	var best *domain.TrustedPeer
	for i := range peers {
		if peers[i].Address == "" {
			continue
		}
		if best == nil || peers[i].FirstSeen > best.FirstSeen {
			best = &peers[i]
		}
	}
	if best == nil {
		return "", "", fmt.Errorf("no known peer address; pass one: chesslink play <host-address>")
	}
	return best.Address, best.Fingerprint, nil
}

// runPlay drives the interactive board until the game ends, the session
// fails, or the player quits. Events from the core render in the background
// while the prompt waits for input.
func runPlay(c *core.Core) error {
	done := make(chan struct{})
	go consumeEvents(c, done)

	for {
		select {
		case <-done:
			return nil
		default:
		}

		in, _ := pterm.DefaultInteractiveTextInput.
			WithDefaultText("Move (e.g. e2e4), or: board, moves, quit").
			Show()
		switch strings.ToLower(strings.TrimSpace(in)) {
		case "", "board":
			printBoard(c)
			continue
		case "moves":
			printMoves(c)
			continue
		case "quit", "exit", "q":
			return c.Disconnect()
		}

		m, err := game.ParseUCI(strings.TrimSpace(in))
		if err != nil {
			pterm.Error.Printfln("Bad move %q: %v", in, err)
			continue
		}
		if err := c.SubmitMove(m); err != nil {
			switch {
			case errors.Is(err, domain.ErrNotYourTurn):
				pterm.Warning.Println("Not your turn.")
			case errors.Is(err, domain.ErrIllegalMove):
				pterm.Error.Printfln("Illegal move: %s", m.UCI())
			case errors.Is(err, domain.ErrNotConnected):
				pterm.Warning.Println("Not connected. Waiting for the session ...")
			default:
				pterm.Error.Printfln("Move failed: %v", err)
			}
			continue
		}
		pterm.Info.Printfln("Proposed %s, waiting for your opponent ...", m.UCI())
	}
}

// consumeEvents renders core events. It closes done when the session reaches
// a terminal state or the game ends.
func consumeEvents(c *core.Core, done chan<- struct{}) {
	defer close(done)
	for ev := range c.Events() {
		switch e := ev.(type) {
		case core.MoveApplied:
			pterm.Success.Printfln("%s played %s", e.By, e.Move.UCI())
			printBoard(c)
		case core.StatusChanged:
			switch e.Status {
			case game.Checkmate:
				pterm.Success.Println("Checkmate. Game over.")
				return
			case game.Stalemate:
				pterm.Info.Println("Stalemate. Game over.")
				return
			case game.Check:
				pterm.Warning.Println("Check!")
			}
		case core.ConnectionStateChanged:
			switch e.State {
			case session.Synchronized:
				pterm.Success.Println("Connected. Game on.")
				printBoard(c)
			case session.Degraded:
				pterm.Warning.Println("Connection lost. Run play again to reconnect.")
			case session.Failed:
				pterm.Error.Println("Session failed.")
				return
			case session.Closed:
				pterm.Info.Println("Session closed.")
				return
			}
		case core.SyncConflict:
			pterm.Error.Printfln("Game histories diverged: %s", e.Detail)
		case core.SaveFailed:
			pterm.Warning.Printfln("Could not save the game: %v", e.Err)
		}
	}
}

func printBoard(c *core.Core) {
	rec, err := c.Game()
	if err != nil {
		return
	}
	pterm.DefaultBox.Println(renderBoard(rec.Position))
	pterm.Info.Printfln("%s to move (move %d)", rec.SideToMove(), rec.NextSeq())
}

func printMoves(c *core.Core) {
	rec, err := c.Game()
	if err != nil {
		return
	}
	if len(rec.Moves) == 0 {
		pterm.Info.Println("No moves yet.")
		return
	}
	var b strings.Builder
	for _, m := range rec.Moves {
		if m.Seq%2 == 1 {
			fmt.Fprintf(&b, "%d. %s", (m.Seq+1)/2, m.UCI())
		} else {
			fmt.Fprintf(&b, " %s\n", m.UCI())
		}
	}
	pterm.DefaultBox.Println(strings.TrimRight(b.String(), "\n"))
}

// renderBoard draws the piece placement grid from the white side.
func renderBoard(pos game.Position) string {
	fields := strings.Fields(string(pos))
	if len(fields) == 0 {
		return ""
	}
	ranks := strings.Split(fields[0], "/")
	var b strings.Builder
	for i, rank := range ranks {
		fmt.Fprintf(&b, "%d ", 8-i)
		for _, r := range rank {
			if r >= '1' && r <= '8' {
				b.WriteString(strings.Repeat(". ", int(r-'0')))
				continue
			}
			b.WriteRune(r)
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	b.WriteString("  a b c d e f g h")
	return b.String()
}
