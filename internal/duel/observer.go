package duel

import (
	"context"
	"time"
)

// Referee judges move legality beyond shape. Apply must either reject the
// move and leave its own position unchanged, or accept and apply it.
// It is called from the arbiter with the state locked and must not block.
type Referee interface {
	Apply(mover Color, move string) error
}

// Recorder observes a session. Calls arrive in acceptance order from a
// single goroutine; errors are logged and otherwise ignored.
type Recorder interface {
	RecordMove(ctx context.Context, ev MoveEvent) error
	RecordOutcome(ctx context.Context, out Outcome) error
}

// MoveEvent describes one accepted move.
type MoveEvent struct {
	SessionID string
	Ply       int
	Color     Color
	Move      string
	At        time.Time
}

// Cause classifies why a session ended.
type Cause uint8

const (
	CauseDeparted Cause = iota + 1
	CauseStopped
	CauseFault
)

func (c Cause) String() string {
	switch c {
	case CauseDeparted:
		return "departed"
	case CauseStopped:
		return "stopped"
	case CauseFault:
		return "fault"
	default:
		return "unknown"
	}
}

// Outcome is the terminal report of Run.
type Outcome struct {
	SessionID string
	Moves     []string
	Cause     Cause
	Reason    string
	// Departed is meaningful only when Cause is CauseDeparted.
	Departed  Color
	StartedAt time.Time
	EndedAt   time.Time
}
