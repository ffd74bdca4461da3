package referee

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/park285/cheese-duel/internal/duel"
)

func TestBoardAcceptsLegalOpening(t *testing.T) {
	b := NewBoard()
	require.NoError(t, b.Apply(duel.White, "e2-e4"))
	require.NoError(t, b.Apply(duel.Black, "c7-c5"))
	require.NoError(t, b.Apply(duel.White, "g1-f3"))
	require.Equal(t, "*", b.Result())
}

func TestBoardRejectsIllegalMove(t *testing.T) {
	b := NewBoard()
	before := b.FEN()
	err := b.Apply(duel.White, "e2-e5")
	require.ErrorContains(t, err, "illegal move e2-e5")
	require.Equal(t, before, b.FEN())

	require.NoError(t, b.Apply(duel.White, "e2-e4"))
}

func TestBoardRejectsWrongSide(t *testing.T) {
	b := NewBoard()
	err := b.Apply(duel.Black, "e7-e5")
	require.ErrorContains(t, err, "white to move")
}

func TestBoardDetectsMate(t *testing.T) {
	b := NewBoard()
	moves := []struct {
		c  duel.Color
		mv string
	}{
		{duel.White, "f2-f3"}, {duel.Black, "e7-e5"},
		{duel.White, "g2-g4"}, {duel.Black, "d8-h4"},
	}
	for _, m := range moves {
		require.NoError(t, b.Apply(m.c, m.mv))
	}
	require.Equal(t, "0-1", b.Result())
	require.ErrorContains(t, b.Apply(duel.White, "a2-a3"), "game is over")
}

func TestReplayProducesSAN(t *testing.T) {
	rec, err := Replay([]string{"e2-e4", "e7-e5", "g1-f3", "b8-c6", "f1-b5", "a7-a6", "b5-a4", "g8-f6", "e1-g1", "f8-e7"})
	require.NoError(t, err)
	require.Equal(t, []string{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6", "Ba4", "Nf6", "O-O", "Be7"}, rec.SAN)
	require.Equal(t, "*", rec.Result)
}

func TestNotateReportsFailingPly(t *testing.T) {
	_, err := Notate([]string{"e2-e4", "e7-e4"})
	require.ErrorContains(t, err, "ply 2")
}

func TestToUCI(t *testing.T) {
	require.Equal(t, "e2e4", ToUCI("e2-e4"))
	require.Equal(t, "a7a8", ToUCI(" A7-A8 "))
}

func TestPromotionDefaultsToQueen(t *testing.T) {
	rec, err := Replay([]string{
		"h2-h4", "g7-g5", "h4-g5", "a7-a6", "g5-g6", "a6-a5",
		"g6-h7", "a5-a4", "h7-g8",
	})
	require.NoError(t, err)
	last := rec.SAN[len(rec.SAN)-1]
	require.Contains(t, last, "g8")
	require.Contains(t, last, "Q")
}
