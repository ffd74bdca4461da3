// Package journal persists duel sessions: a live move journal in Redis and
// finished games in Postgres.
package journal

import (
	"time"

	"github.com/park285/cheese-duel/internal/duel"
)

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// Meta is the JSON summary stored next to the move list.
type Meta struct {
	SessionID string    `json:"session_id"`
	Status    Status    `json:"status"`
	Plies     int       `json:"plies"`
	ToMove    string    `json:"to_move"`
	Cause     string    `json:"cause,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Departed  string    `json:"departed,omitempty"`
	StartedAt time.Time `json:"started_at,omitzero"`
	EndedAt   time.Time `json:"ended_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Record is a journal as read back by Store.Load.
type Record struct {
	Meta  Meta
	Moves []string
}

func metaFromOutcome(out duel.Outcome) Meta {
	m := Meta{
		SessionID: out.SessionID,
		Status:    StatusEnded,
		Plies:     len(out.Moves),
		ToMove:    toMoveAfter(len(out.Moves)).String(),
		Cause:     out.Cause.String(),
		Reason:    out.Reason,
		StartedAt: out.StartedAt,
		EndedAt:   out.EndedAt,
		UpdatedAt: out.EndedAt,
	}
	if out.Cause == duel.CauseDeparted {
		m.Departed = out.Departed.String()
	}
	return m
}

func toMoveAfter(plies int) duel.Color {
	if plies%2 == 0 {
		return duel.White
	}
	return duel.Black
}
