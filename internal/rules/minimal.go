package rules

import (
	"errors"
	"fmt"
	"strings"

	"chesslink/internal/game"
)

// startPlacement is the standard chess starting arrangement in FEN board
// notation, ranks 8 down to 1. White pieces are upper-case.
const startPlacement = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"

var errBadPosition = errors.New("malformed position")

// Minimal is a deliberately small rule engine. Positions are encoded as
// "<fen-board> <w|b>".
type Minimal struct{}

// NewMinimal returns the built-in engine.
func NewMinimal() *Minimal { return &Minimal{} }

var _ game.Engine = (*Minimal)(nil)

// board is 64 bytes, a1=0 .. h8=63. 0 means empty.
type board [64]byte

func (*Minimal) InitialPosition() game.Position {
	return game.Position(startPlacement + " w")
}

func (e *Minimal) IsLegal(pos game.Position, m game.Move) bool {
	b, turn, err := parse(pos)
	if err != nil {
		return false
	}
	return legal(b, turn, m) == nil
}

func (e *Minimal) Apply(pos game.Position, m game.Move) (game.Position, error) {
	b, turn, err := parse(pos)
	if err != nil {
		return "", err
	}
	if err := legal(b, turn, m); err != nil {
		return "", err
	}
	from, to := squareIndex(m.From), squareIndex(m.To)
	piece := b[from]
	b[from] = 0
	if m.Promotion != 0 {
		piece = m.Promotion
		if turn == game.White {
			piece -= 'a' - 'A'
		}
	}
	b[to] = piece
	return format(b, turn.Other()), nil
}

// Status reports Checkmate when a king has been captured, which is the only
// terminal condition this engine can observe. Check and stalemate detection
// belong to a full engine.
func (e *Minimal) Status(pos game.Position) game.Status {
	b, _, err := parse(pos)
	if err != nil {
		return game.Ongoing
	}
	var whiteKing, blackKing bool
	for _, p := range b {
		switch p {
		case 'K':
			whiteKing = true
		case 'k':
			blackKing = true
		}
	}
	if !whiteKing || !blackKing {
		return game.Checkmate
	}
	return game.Ongoing
}

// legal checks geometry and ownership. It returns nil when the move is
// acceptable to this engine.
func legal(b board, turn game.Color, m game.Move) error {
	from, to := squareIndex(m.From), squareIndex(m.To)
	if from < 0 || to < 0 || from == to {
		return fmt.Errorf("bad squares in %s", m)
	}
	piece := b[from]
	if piece == 0 {
		return fmt.Errorf("no piece on %s", m.From)
	}
	if colorOf(piece) != turn {
		return fmt.Errorf("piece on %s does not belong to %s", m.From, turn)
	}
	if b[to] != 0 && colorOf(b[to]) == turn {
		return fmt.Errorf("own piece on %s", m.To)
	}
	fFile, fRank := from%8, from/8
	tFile, tRank := to%8, to/8
	df, dr := tFile-fFile, tRank-fRank

	switch lower(piece) {
	case 'p':
		if err := pawnShape(b, turn, from, to, df, dr); err != nil {
			return err
		}
	case 'n':
		if !(abs(df) == 1 && abs(dr) == 2 || abs(df) == 2 && abs(dr) == 1) {
			return fmt.Errorf("%s: knights do not move like that", m)
		}
	case 'b':
		if abs(df) != abs(dr) {
			return fmt.Errorf("%s: bishops move diagonally", m)
		}
		if !clearPath(b, from, to) {
			return fmt.Errorf("%s: path is blocked", m)
		}
	case 'r':
		if df != 0 && dr != 0 {
			return fmt.Errorf("%s: rooks move along ranks and files", m)
		}
		if !clearPath(b, from, to) {
			return fmt.Errorf("%s: path is blocked", m)
		}
	case 'q':
		if df != 0 && dr != 0 && abs(df) != abs(dr) {
			return fmt.Errorf("%s: queens move along lines and diagonals", m)
		}
		if !clearPath(b, from, to) {
			return fmt.Errorf("%s: path is blocked", m)
		}
	case 'k':
		if abs(df) > 1 || abs(dr) > 1 {
			return fmt.Errorf("%s: kings move one square", m)
		}
	default:
		return fmt.Errorf("unknown piece %q on %s", piece, m.From)
	}

	if m.Promotion != 0 {
		if lower(piece) != 'p' {
			return fmt.Errorf("%s: only pawns promote", m)
		}
		if !(turn == game.White && tRank == 7 || turn == game.Black && tRank == 0) {
			return fmt.Errorf("%s: promotion only on the last rank", m)
		}
	}
	return nil
}

func pawnShape(b board, turn game.Color, from, to, df, dr int) error {
	dir, home := 1, 1
	if turn == game.Black {
		dir, home = -1, 6
	}
	switch {
	case df == 0 && dr == dir && b[to] == 0:
		return nil
	case df == 0 && dr == 2*dir && from/8 == home && b[to] == 0 && b[from+8*dir] == 0:
		return nil
	case abs(df) == 1 && dr == dir && b[to] != 0:
		return nil // capture; en passant is not modelled
	}
	return errors.New("pawn cannot move there")
}

// clearPath checks the squares strictly between from and to on a line.
func clearPath(b board, from, to int) bool {
	fFile, fRank := from%8, from/8
	tFile, tRank := to%8, to/8
	df, dr := sign(tFile-fFile), sign(tRank-fRank)
	file, rank := fFile+df, fRank+dr
	for file != tFile || rank != tRank {
		if b[rank*8+file] != 0 {
			return false
		}
		file += df
		rank += dr
	}
	return true
}

func parse(pos game.Position) (board, game.Color, error) {
	var b board
	placement, side, ok := strings.Cut(string(pos), " ")
	if !ok {
		return b, game.White, errBadPosition
	}
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return b, game.White, errBadPosition
	}
	for i, rank := range ranks {
		r := 7 - i // FEN lists rank 8 first
		file := 0
		for _, c := range []byte(rank) {
			switch {
			case c >= '1' && c <= '8':
				file += int(c - '0')
			case strings.IndexByte("pnbrqkPNBRQK", c) >= 0:
				if file > 7 {
					return b, game.White, errBadPosition
				}
				b[r*8+file] = c
				file++
			default:
				return b, game.White, errBadPosition
			}
		}
		if file != 8 {
			return b, game.White, errBadPosition
		}
	}
	switch side {
	case "w":
		return b, game.White, nil
	case "b":
		return b, game.Black, nil
	}
	return b, game.White, errBadPosition
}

func format(b board, turn game.Color) game.Position {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		empty := 0
		for f := 0; f < 8; f++ {
			p := b[r*8+f]
			if p == 0 {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p)
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if r > 0 {
			sb.WriteByte('/')
		}
	}
	if turn == game.Black {
		sb.WriteString(" b")
	} else {
		sb.WriteString(" w")
	}
	return game.Position(sb.String())
}

// squareIndex maps "a1".."h8" to 0..63, -1 when malformed.
func squareIndex(sq string) int {
	if len(sq) != 2 || sq[0] < 'a' || sq[0] > 'h' || sq[1] < '1' || sq[1] > '8' {
		return -1
	}
	return int(sq[1]-'1')*8 + int(sq[0]-'a')
}

func colorOf(piece byte) game.Color {
	if piece >= 'A' && piece <= 'Z' {
		return game.White
	}
	return game.Black
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
