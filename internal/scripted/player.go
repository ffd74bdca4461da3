// Package scripted plays a fixed list of moves through a duel handle.
package scripted

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/park285/cheese-duel/internal/duel"
	"github.com/park285/cheese-duel/internal/obslog"
)

// Handle is the part of *duel.Player a scripted player needs.
type Handle interface {
	Color() duel.Color
	Play(ctx context.Context, move string) error
	Wait(ctx context.Context) (string, error)
}

// Player replays its side of an opening line. White plays then waits for
// the reply; Black waits then plays. It stops after its last move.
type Player struct {
	handle      Handle
	moves       []string
	moveTimeout time.Duration
	log         *zap.Logger
}

type Option func(*Player)

// WithMoveTimeout bounds each Play and Wait. Zero disables the bound.
func WithMoveTimeout(d time.Duration) Option {
	return func(p *Player) { p.moveTimeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Player) { p.log = l }
}

// New returns a player that plays moves with h.
func New(h Handle, moves []string, opts ...Option) *Player {
	p := &Player{handle: h, moves: append([]string(nil), moves...)}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = obslog.L()
	}
	p.log = p.log.With(zap.Stringer("color", h.Color()))
	return p
}

// Run plays the whole line and returns the opponent moves it observed.
// The first Play or Wait error ends the run.
func (p *Player) Run(ctx context.Context) ([]string, error) {
	white := p.handle.Color() == duel.White
	seen := make([]string, 0, len(p.moves))
	for i, mv := range p.moves {
		if !white {
			reply, err := p.wait(ctx)
			if err != nil {
				return seen, fmt.Errorf("wait before move %d: %w", i+1, err)
			}
			seen = append(seen, reply)
		}
		if err := p.play(ctx, mv); err != nil {
			return seen, fmt.Errorf("play %s: %w", mv, err)
		}
		if white {
			reply, err := p.wait(ctx)
			if err != nil {
				return seen, fmt.Errorf("wait after %s: %w", mv, err)
			}
			seen = append(seen, reply)
		}
	}
	p.log.Debug("scripted_done", zap.Int("moves", len(p.moves)))
	return seen, nil
}

func (p *Player) play(ctx context.Context, mv string) error {
	ctx, cancel := p.bound(ctx)
	defer cancel()
	if err := p.handle.Play(ctx, mv); err != nil {
		return err
	}
	p.log.Debug("scripted_play", zap.String("move", mv))
	return nil
}

func (p *Player) wait(ctx context.Context) (string, error) {
	ctx, cancel := p.bound(ctx)
	defer cancel()
	return p.handle.Wait(ctx)
}

func (p *Player) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.moveTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.moveTimeout)
}
