package duel

import "fmt"

type staticErr string

func (e staticErr) Error() string { return string(e) }
func errf(s string) error         { return staticErr(s) }

// Kinds surfaced to players. Match with errors.Is; payloads are free text.
var (
	ErrBadMove      = errf("bad move")
	ErrNotYourTurn  = errf("not your turn")
	ErrOpponentGone = errf("opponent gone")
)

var (
	// ErrSessionConsumed is returned by a second call to Run.
	ErrSessionConsumed = errf("session already run")
	// ErrInternal marks a broken session invariant.
	ErrInternal = errf("internal session fault")
	// ErrBacklogFull wraps a move refused because the opponent has not read
	// enough of the moves already sent to it. The move itself may be valid.
	ErrBacklogFull = errf("unread backlog limit reached")
)

// BadMoveError rejects a submission: malformed, out of turn or refused by the referee.
// State is unchanged and the player may retry.
type BadMoveError struct {
	Move   string
	Reason string
	cause  error
}

func (e *BadMoveError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("bad move %q", e.Move)
	}
	return fmt.Sprintf("bad move %q: %s", e.Move, e.Reason)
}

func (e *BadMoveError) Is(target error) bool { return target == ErrBadMove }

func (e *BadMoveError) Unwrap() error { return e.cause }

// OpponentGoneError reports that the other side will never produce another move.
type OpponentGoneError struct {
	Reason string
}

func (e *OpponentGoneError) Error() string {
	if e.Reason == "" {
		return "opponent gone"
	}
	return "opponent gone: " + e.Reason
}

func (e *OpponentGoneError) Is(target error) bool { return target == ErrOpponentGone }

func badMove(move, reason string) error {
	return &BadMoveError{Move: move, Reason: reason}
}

func outOfTurn(move string, mover Color) error {
	return &BadMoveError{Move: move, Reason: mover.String() + " is not to move", cause: ErrNotYourTurn}
}

func opponentGone(reason string) error {
	return &OpponentGoneError{Reason: reason}
}
