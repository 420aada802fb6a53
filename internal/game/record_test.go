package game_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chesslink/internal/game"
	"chesslink/internal/rules"
)

func newRecord(t *testing.T) (game.Engine, *game.GameRecord) {
	t.Helper()
	e := &rules.Minimal{}
	return e, game.NewGameRecord(e)
}

func mustMove(t *testing.T, uci string, seq uint64) game.Move {
	t.Helper()
	m, err := game.ParseUCI(uci)
	require.NoError(t, err)
	m.Seq = seq
	return m
}

func TestParseUCI(t *testing.T) {
	m, err := game.ParseUCI("e2e4")
	require.NoError(t, err)
	assert.Equal(t, "e2", m.From)
	assert.Equal(t, "e4", m.To)
	assert.Empty(t, m.Promotion)
	assert.Equal(t, "e2e4", m.UCI())

	m, err = game.ParseUCI("e7e8q")
	require.NoError(t, err)
	assert.EqualValues(t, 'q', m.Promotion)
	assert.Equal(t, "e7e8q", m.UCI())

	for _, bad := range []string{"", "e2", "e2e9", "i2i4", "e2e4x", "e2e4qq"} {
		_, err := game.ParseUCI(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestSideToMove_Parity(t *testing.T) {
	e, rec := newRecord(t)
	assert.Equal(t, game.White, rec.SideToMove())

	require.NoError(t, rec.Apply(e, mustMove(t, "e2e4", 1)))
	assert.Equal(t, game.Black, rec.SideToMove())

	require.NoError(t, rec.Apply(e, mustMove(t, "e7e5", 2)))
	assert.Equal(t, game.White, rec.SideToMove())
}

func TestApply_SequenceGate(t *testing.T) {
	e, rec := newRecord(t)
	assert.EqualValues(t, 1, rec.NextSeq())
	assert.EqualValues(t, 0, rec.LastSeq())

	// Wrong sequence numbers never touch the record.
	assert.Error(t, rec.Apply(e, mustMove(t, "e2e4", 2)))
	assert.Error(t, rec.Apply(e, mustMove(t, "e2e4", 0)))
	assert.Empty(t, rec.Moves)

	require.NoError(t, rec.Apply(e, mustMove(t, "e2e4", 1)))
	assert.EqualValues(t, 1, rec.LastSeq())
	assert.EqualValues(t, 2, rec.NextSeq())

	// Reusing a sequence number is rejected.
	assert.Error(t, rec.Apply(e, mustMove(t, "e7e5", 1)))
}

func TestApply_IllegalMove_LeavesRecordUntouched(t *testing.T) {
	e, rec := newRecord(t)
	before := rec.Position

	err := rec.Apply(e, mustMove(t, "e2e5", 1)) // pawns cannot triple-step
	assert.Error(t, err)
	assert.Equal(t, before, rec.Position)
	assert.Empty(t, rec.Moves)
	assert.Equal(t, game.White, rec.SideToMove())
}

func TestClone_Isolated(t *testing.T) {
	e, rec := newRecord(t)
	require.NoError(t, rec.Apply(e, mustMove(t, "e2e4", 1)))

	cl := rec.Clone()
	require.NoError(t, cl.Apply(e, mustMove(t, "e7e5", 2)))

	assert.Len(t, rec.Moves, 1, "applying to the clone touched the original")
	assert.Len(t, cl.Moves, 2)
	assert.NotEqual(t, rec.Position, cl.Position)
}

func TestReplay_Deterministic(t *testing.T) {
	e, rec := newRecord(t)
	for i, uci := range []string{"e2e4", "e7e5", "g1f3", "b8c6"} {
		require.NoError(t, rec.Apply(e, mustMove(t, uci, uint64(i+1))))
	}

	replayed, err := game.Replay(e, rec.Moves)
	require.NoError(t, err)
	assert.Equal(t, rec.Position, replayed.Position)
	assert.Equal(t, rec.Status, replayed.Status)
	assert.Equal(t, rec.SideToMove(), replayed.SideToMove())
}

func TestReplay_BadList_Fails(t *testing.T) {
	e := &rules.Minimal{}
	_, err := game.Replay(e, []game.Move{mustMove(t, "e2e4", 2)})
	assert.Error(t, err)
}

func TestDigest_DetectsDivergence(t *testing.T) {
	e, a := newRecord(t)
	_, b := newRecord(t)

	require.NoError(t, a.Apply(e, mustMove(t, "e2e4", 1)))
	require.NoError(t, b.Apply(e, mustMove(t, "e2e4", 1)))
	assert.Equal(t, a.Digest(1), b.Digest(1))

	require.NoError(t, a.Apply(e, mustMove(t, "e7e5", 2)))
	require.NoError(t, b.Apply(e, mustMove(t, "d7d5", 2)))
	assert.NotEqual(t, a.Digest(2), b.Digest(2))

	// Histories still agree on the shared prefix.
	assert.Equal(t, a.Digest(1), b.Digest(1))
}

func TestMovesAfter(t *testing.T) {
	e, rec := newRecord(t)
	for i, uci := range []string{"e2e4", "e7e5", "g1f3"} {
		require.NoError(t, rec.Apply(e, mustMove(t, uci, uint64(i+1))))
	}

	assert.Len(t, rec.MovesAfter(0), 3)
	tail := rec.MovesAfter(1)
	require.Len(t, tail, 2)
	assert.EqualValues(t, 2, tail[0].Seq)
	assert.Nil(t, rec.MovesAfter(3))
}
