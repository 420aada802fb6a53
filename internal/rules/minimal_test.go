package rules_test

import (
	"testing"

	"chesslink/internal/game"
	"chesslink/internal/rules"
)

func mv(t *testing.T, uci string) game.Move {
	t.Helper()
	m, err := game.ParseUCI(uci)
	if err != nil {
		t.Fatalf("ParseUCI(%q): %v", uci, err)
	}
	return m
}

func TestInitialPosition(t *testing.T) {
	e := rules.NewMinimal()
	pos := e.InitialPosition()
	if pos != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w" {
		t.Fatalf("unexpected initial position %q", pos)
	}
	if e.Status(pos) != game.Ongoing {
		t.Fatal("fresh game is not ongoing")
	}
}

func TestIsLegal_OpeningMoves(t *testing.T) {
	e := rules.NewMinimal()
	start := e.InitialPosition()

	legal := []string{"e2e4", "e2e3", "d2d4", "g1f3", "b1c3"}
	for _, uci := range legal {
		if !e.IsLegal(start, mv(t, uci)) {
			t.Errorf("%s should be legal from the start", uci)
		}
	}

	illegal := []string{
		"e2e5", // pawns cannot triple-step
		"e1e2", // own pawn in the way
		"d1d3", // queen blocked by pawn
		"f1c4", // bishop blocked by pawn
		"a1a3", // rook blocked by pawn
		"e7e5", // black piece on white's turn
		"e3e4", // empty square
		"e2e2", // null move
	}
	for _, uci := range illegal {
		if e.IsLegal(start, mv(t, uci)) {
			t.Errorf("%s should be illegal from the start", uci)
		}
	}
}

func TestApply_AlternatesTurn(t *testing.T) {
	e := rules.NewMinimal()
	pos, err := e.Apply(e.InitialPosition(), mv(t, "e2e4"))
	if err != nil {
		t.Fatalf("apply e2e4: %v", err)
	}
	if pos != "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b" {
		t.Fatalf("position after e2e4: %q", pos)
	}

	pos, err = e.Apply(pos, mv(t, "e7e5"))
	if err != nil {
		t.Fatalf("apply e7e5: %v", err)
	}
	if pos != "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w" {
		t.Fatalf("position after e7e5: %q", pos)
	}
}

func TestApply_Capture(t *testing.T) {
	e := rules.NewMinimal()
	pos := game.Position("rnbqkbnr/pppp1ppp/8/4p3/3P4/8/PPP1PPPP/RNBQKBNR w")

	got, err := e.Apply(pos, mv(t, "d4e5"))
	if err != nil {
		t.Fatalf("apply capture: %v", err)
	}
	if got != "rnbqkbnr/pppp1ppp/8/4P3/8/8/PPP1PPPP/RNBQKBNR b" {
		t.Fatalf("position after d4e5: %q", got)
	}
}

func TestApply_PawnCannotCaptureForward(t *testing.T) {
	e := rules.NewMinimal()
	pos := game.Position("rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w")
	if e.IsLegal(pos, mv(t, "e4e5")) {
		t.Fatal("pawns cannot capture straight ahead")
	}
}

func TestApply_Promotion(t *testing.T) {
	e := rules.NewMinimal()
	pos := game.Position("8/4P3/8/8/8/2k5/8/4K3 w")

	got, err := e.Apply(pos, mv(t, "e7e8q"))
	if err != nil {
		t.Fatalf("apply promotion: %v", err)
	}
	if got != "4Q3/8/8/8/8/2k5/8/4K3 b" {
		t.Fatalf("position after e7e8q: %q", got)
	}

	// Promotion away from the last rank is rejected.
	if e.IsLegal(e.InitialPosition(), mv(t, "e2e4q")) {
		t.Fatal("promotion accepted off the last rank")
	}
}

func TestStatus_KingCaptured(t *testing.T) {
	e := rules.NewMinimal()
	if got := e.Status("8/8/8/8/8/2k5/8/4K3 w"); got != game.Ongoing {
		t.Fatalf("both kings alive: status %v", got)
	}
	if got := e.Status("8/8/8/8/8/2k5/8/8 w"); got != game.Checkmate {
		t.Fatalf("white king gone: status %v", got)
	}
	if got := e.Status("8/8/8/8/8/8/8/4K3 b"); got != game.Checkmate {
		t.Fatalf("black king gone: status %v", got)
	}
}

func TestParse_BadPositions(t *testing.T) {
	e := rules.NewMinimal()
	for _, pos := range []game.Position{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR",   // missing side
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x", // bad side
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w",          // seven ranks
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w", // rank overflow
	} {
		if e.IsLegal(pos, mv(t, "e2e4")) {
			t.Errorf("malformed position %q accepted", pos)
		}
	}
}
