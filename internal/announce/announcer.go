package announce

import (
	"context"
	"fmt"
	"strings"

	"github.com/park285/cheese-duel/internal/duel"
)

// Sender delivers one text message to a room.
type Sender interface {
	SendMessage(ctx context.Context, room, message string) error
}

// Announcer is a duel.Recorder that narrates a session into a chat room.
type Announcer struct {
	sender Sender
	room   string
}

func NewAnnouncer(sender Sender, room string) *Announcer {
	return &Announcer{sender: sender, room: room}
}

func (a *Announcer) Name() string { return "announce" }

func (a *Announcer) RecordMove(ctx context.Context, ev duel.MoveEvent) error {
	return a.sender.SendMessage(ctx, a.room, FormatMove(ev))
}

func (a *Announcer) RecordOutcome(ctx context.Context, out duel.Outcome) error {
	return a.sender.SendMessage(ctx, a.room, FormatOutcome(out))
}

// FormatMove renders "[duel 1a2b3c4d] 2. white g1-f3" for the third ply.
func FormatMove(ev duel.MoveEvent) string {
	return fmt.Sprintf("[duel %s] %d. %s %s", shortID(ev.SessionID), (ev.Ply+1)/2, ev.Color, ev.Move)
}

// FormatOutcome renders the final summary with the full move list.
func FormatOutcome(out duel.Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[duel %s] ended after %d moves (%s)", shortID(out.SessionID), len(out.Moves), out.Cause)
	if out.Reason != "" {
		fmt.Fprintf(&b, ": %s", out.Reason)
	}
	for i := 0; i < len(out.Moves); i += 2 {
		if i == 0 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%d. %s", i/2+1, out.Moves[i])
		if i+1 < len(out.Moves) {
			b.WriteString(" " + out.Moves[i+1])
		}
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
