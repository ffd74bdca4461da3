package duel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateMove(t *testing.T) {
	tests := []struct {
		move   string
		reason string
	}{
		{"e2-e4", ""},
		{"a1-h8", ""},
		{"h8-a1", ""},
		{"e2e4", "expected <from>-<to>"},
		{"", "expected <from>-<to>"},
		{"i2-e4", "invalid source square"},
		{"e0-e4", "invalid source square"},
		{"E2-e4", "invalid source square"},
		{"e2-e9", "invalid destination square"},
		{"e2-e4-e5", "invalid destination square"},
		{"e2-", "invalid destination square"},
		{"e2-e2", "source equals destination"},
	}
	for _, tt := range tests {
		err := ValidateMove(tt.move)
		if tt.reason == "" {
			require.NoError(t, err, tt.move)
			continue
		}
		require.ErrorIs(t, err, ErrBadMove, tt.move)
		var bad *BadMoveError
		require.ErrorAs(t, err, &bad)
		require.Equal(t, tt.reason, bad.Reason, tt.move)
		require.Equal(t, tt.move, bad.Move)
	}
}

func TestStateAdmitFlipsTurn(t *testing.T) {
	st := newState()
	ply, err := st.admit(White, "e2-e4", nil)
	require.NoError(t, err)
	require.Equal(t, 1, ply)
	require.Equal(t, Black, st.ToMove())
	require.NoError(t, st.verify())

	_, err = st.admit(White, "d2-d4", nil)
	require.ErrorIs(t, err, ErrNotYourTurn)
	require.Equal(t, []string{"e2-e4"}, st.History())

	require.True(t, st.terminate("white left the session"))
	require.False(t, st.terminate("later"))
	_, err = st.admit(Black, "e7-e5", nil)
	require.ErrorIs(t, err, ErrOpponentGone)

	done, reason := st.Terminated()
	require.True(t, done)
	require.Equal(t, "white left the session", reason)
}

func TestColorOpponent(t *testing.T) {
	require.Equal(t, Black, White.Opponent())
	require.Equal(t, White, Black.Opponent())
	require.Equal(t, "white", White.String())
	require.Equal(t, "black", Black.String())
}
