package duel

import (
	"fmt"
	"sync"
)

// State is the shared record of a session: whose turn it is, the accepted
// moves and whether the session has ended. Only the arbiter mutates it.
type State struct {
	mu         sync.Mutex
	toMove     Color
	history    []string
	terminated bool
	reason     string
}

func newState() *State {
	return &State{toMove: White, history: []string{}}
}

// ToMove returns the side expected to play next.
func (st *State) ToMove() Color {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.toMove
}

// History returns a copy of the accepted moves in acceptance order.
func (st *State) History() []string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]string(nil), st.history...)
}

// Terminated reports whether the session ended and why.
func (st *State) Terminated() (bool, string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.terminated, st.reason
}

// admit appends move for mover if every check passes, flipping the turn in
// the same critical section. check runs under the lock after the turn and
// shape checks; it must not block. Returns the 1-based ply of the move.
func (st *State) admit(mover Color, move string, check func() error) (int, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.terminated {
		return 0, opponentGone(st.reason)
	}
	if mover != st.toMove {
		return 0, outOfTurn(move, mover)
	}
	if err := ValidateMove(move); err != nil {
		return 0, err
	}
	if check != nil {
		if err := check(); err != nil {
			return 0, err
		}
	}
	st.history = append(st.history, move)
	st.toMove = st.toMove.Opponent()
	return len(st.history), nil
}

// verify checks the parity invariant between history and turn.
func (st *State) verify() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	want := White
	if len(st.history)%2 == 1 {
		want = Black
	}
	if st.toMove != want {
		return fmt.Errorf("%w: %d moves recorded but %s to move", ErrInternal, len(st.history), st.toMove)
	}
	return nil
}

// terminate marks the session ended. Only the first reason is kept.
func (st *State) terminate(reason string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.terminated {
		return false
	}
	st.terminated = true
	st.reason = reason
	return true
}
