// Package duel coordinates two players exchanging moves under strict turn
// alternation. A Session hands out one White and one Black Player, and its
// Run loop arbitrates every submission: it checks turn and shape, appends the
// move to the shared State, flips the turn and forwards the move to the
// opponent.
package duel

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/cheese-duel/internal/obslog"
)

type issuance uint8

const (
	noneIssued issuance = iota
	whiteIssued
	issuanceClosed
)

// Session owns the shared State and the two seats.
type Session struct {
	id        string
	log       *zap.Logger
	state     *State
	seats     [2]*seat
	referee   Referee
	recorders []Recorder

	mu     sync.Mutex
	issued issuance
	ran    bool

	halted   chan struct{}
	haltOnce sync.Once
}

type Option func(*Session)

// WithID overrides the generated session ID.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithReferee enables legality checks beyond move shape.
func WithReferee(r Referee) Option {
	return func(s *Session) { s.referee = r }
}

// WithRecorder attaches an observer; it may be given several times.
func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		if r != nil {
			s.recorders = append(s.recorders, r)
		}
	}
}

// New creates an idle session with White to move.
func New(opts ...Option) *Session {
	s := &Session{
		id:     uuid.NewString(),
		state:  newState(),
		seats:  [2]*seat{newSeat(White), newSeat(Black)},
		halted: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = obslog.L()
	}
	s.log = s.log.With(zap.String("session_id", s.id))
	return s
}

func (s *Session) ID() string { return s.id }

// ToMove returns the side expected to play next.
func (s *Session) ToMove() Color { return s.state.ToMove() }

// History returns the accepted moves in order.
func (s *Session) History() []string { return s.state.History() }

// Terminated reports whether the session ended and why.
func (s *Session) Terminated() (bool, string) { return s.state.Terminated() }

// Done is closed once the session has ended.
func (s *Session) Done() <-chan struct{} { return s.halted }

// CreatePlayer returns the White player on the first call and the Black
// player on the second. Any further call panics.
func (s *Session) CreatePlayer() *Player {
	s.mu.Lock()
	defer s.mu.Unlock()

	var c Color
	switch s.issued {
	case noneIssued:
		c = White
		s.issued = whiteIssued
	case whiteIssued:
		c = Black
		s.issued = issuanceClosed
	default:
		panic("duel: all players have already been created")
	}

	p := &Player{color: c, session: s, seat: s.seats[c]}
	// A player dropped without Close counts as a disconnect.
	runtime.AddCleanup(p, func(st *seat) { st.leave() }, p.seat)
	s.log.Debug("duel_player_created", zap.Stringer("color", c))
	return p
}

// Run arbitrates moves until a player leaves, ctx is cancelled or an
// invariant breaks. It may be called once; later calls return
// ErrSessionConsumed. The error is non-nil only for internal faults.
func (s *Session) Run(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	if s.ran {
		s.mu.Unlock()
		return Outcome{SessionID: s.id}, ErrSessionConsumed
	}
	s.ran = true
	s.mu.Unlock()

	out := Outcome{SessionID: s.id, StartedAt: time.Now()}
	pump := newRecordPump(ctx, s.recorders, s.log)
	s.log.Info("duel_start")

	err := s.arbitrate(ctx, pump, &out)
	if err != nil {
		out.Cause = CauseFault
		out.Reason = err.Error()
	}
	s.halt(out.Reason)
	out.Moves = s.state.History()
	out.EndedAt = time.Now()
	pump.finish(out)

	fields := []zap.Field{
		zap.Stringer("cause", out.Cause),
		zap.String("reason", out.Reason),
		zap.Int("moves", len(out.Moves)),
		zap.Duration("elapsed", out.EndedAt.Sub(out.StartedAt)),
	}
	if err != nil {
		s.log.Error("duel_end", append(fields, zap.Error(err))...)
		return out, err
	}
	s.log.Info("duel_end", fields...)
	return out, nil
}

// arbitrate is the loop body of Run. It returns nil when the session ends
// normally, with out's Cause and Reason filled in.
func (s *Session) arbitrate(ctx context.Context, pump *recordPump, out *Outcome) error {
	white, black := s.seats[White], s.seats[Black]
	for {
		// A departure observed before cancellation is reported as such.
		if st := s.departed(); st != nil {
			out.Cause = CauseDeparted
			out.Departed = st.color
			out.Reason = leftReason(st.color)
			return nil
		}
		if err := ctx.Err(); err != nil {
			out.Cause = CauseStopped
			out.Reason = "session stopped: " + err.Error()
			return nil
		}

		handled := false
		for _, st := range s.seats {
			sub, ok := st.outbound.tryRecv()
			if !ok {
				continue
			}
			handled = true
			if err := s.judge(st.color, sub, pump); err != nil {
				return err
			}
		}
		if handled {
			continue
		}

		select {
		case <-white.outbound.ready:
		case <-black.outbound.ready:
		case <-white.outbound.done:
		case <-black.outbound.done:
		case <-ctx.Done():
		}
	}
}

// departed returns the first seat whose player has left, or nil.
func (s *Session) departed() *seat {
	for _, st := range s.seats {
		if st.outbound.isClosed() {
			return st
		}
	}
	return nil
}

func leftReason(c Color) string { return c.String() + " left the session" }

// judge decides one submission and answers the submitter.
func (s *Session) judge(mover Color, sub submission, pump *recordPump) error {
	opp := s.seats[mover.Opponent()]
	// The opponent may leave after the loop's departure check.
	if opp.outbound.isClosed() {
		sub.reply <- opponentGone(leftReason(opp.color))
		return nil
	}
	ply, err := s.state.admit(mover, sub.move, func() error {
		if n := opp.inbound.backlog(); n >= maxBacklog {
			return &BadMoveError{
				Move:   sub.move,
				Reason: fmt.Sprintf("unread backlog limit reached: %s has %d unread moves (limit %d)", opp.color, n, maxBacklog),
				cause:  ErrBacklogFull,
			}
		}
		if s.referee == nil {
			return nil
		}
		if rerr := s.referee.Apply(mover, sub.move); rerr != nil {
			return &BadMoveError{Move: sub.move, Reason: rerr.Error(), cause: rerr}
		}
		return nil
	})
	if err != nil {
		s.log.Info("duel_reject",
			zap.Stringer("color", mover),
			zap.String("move", sub.move),
			zap.Error(err),
		)
		sub.reply <- err
		return nil
	}

	if err := s.state.verify(); err != nil {
		sub.reply <- opponentGone("session fault")
		return err
	}
	if err := opp.inbound.send(sub.move); err != nil && !errors.Is(err, errChannelClosed) {
		sub.reply <- opponentGone("session fault")
		return fmt.Errorf("%w: deliver %q to %s: %v", ErrInternal, sub.move, opp.color, err)
	}
	sub.reply <- nil

	s.log.Info("duel_move",
		zap.Int("ply", ply),
		zap.Stringer("color", mover),
		zap.String("move", sub.move),
	)
	pump.move(MoveEvent{SessionID: s.id, Ply: ply, Color: mover, Move: sub.move, At: time.Now()})
	return nil
}

// halt terminates the state and closes every channel so blocked and future
// calls on either player return OpponentGone.
func (s *Session) halt(reason string) {
	s.state.terminate(reason)
	for _, st := range s.seats {
		st.inbound.close()
		st.outbound.close()
	}
	s.haltOnce.Do(func() { close(s.halted) })
}
