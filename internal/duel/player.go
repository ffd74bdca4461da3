package duel

import (
	"context"
	"errors"
	"sync"
)

// submission carries one candidate move and the arbiter's verdict.
type submission struct {
	move  string
	reply chan error
}

// seat holds both directions of one side's turn channels.
// outbound: player produces, arbiter consumes. inbound: the reverse.
type seat struct {
	color    Color
	outbound *turnChannel[submission]
	inbound  *turnChannel[string]
}

func newSeat(c Color) *seat {
	return &seat{
		color:    c,
		outbound: newTurnChannel[submission](),
		inbound:  newTurnChannel[string](),
	}
}

func (st *seat) leave() {
	st.outbound.close()
	st.inbound.close()
}

// Player is the handle one participant uses to take part in a session.
// Play and Wait may be called from different goroutines; concurrent calls of
// the same method are serialised.
type Player struct {
	color   Color
	session *Session
	seat    *seat

	playMu sync.Mutex
	waitMu sync.Mutex
}

// Color returns the side assigned at creation.
func (p *Player) Color() Color { return p.color }

// Play submits move and blocks until the arbiter accepts or rejects it.
// Rejections are *BadMoveError; a finished session yields *OpponentGoneError.
// If ctx ends first, ctx.Err() is returned and the move may still be accepted.
func (p *Player) Play(ctx context.Context, move string) error {
	p.playMu.Lock()
	defer p.playMu.Unlock()

	if done, reason := p.session.state.Terminated(); done {
		return opponentGone(reason)
	}
	sub := submission{move: move, reply: make(chan error, 1)}
	if err := p.seat.outbound.send(sub); err != nil {
		if errors.Is(err, errChannelFull) {
			return badMove(move, "earlier submissions are still pending")
		}
		return p.gone()
	}

	select {
	case err := <-sub.reply:
		return err
	case <-p.session.halted:
		select {
		case err := <-sub.reply:
			return err
		default:
		}
		return p.gone()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until the opponent's next accepted move is available.
// Once the session has ended it returns *OpponentGoneError, even if a move
// was accepted but not yet read.
func (p *Player) Wait(ctx context.Context) (string, error) {
	p.waitMu.Lock()
	defer p.waitMu.Unlock()

	move, err := p.seat.inbound.recv(ctx)
	if err == nil {
		return move, nil
	}
	if errors.Is(err, errChannelClosed) {
		return "", p.gone()
	}
	return "", err
}

// Close disconnects the player. The session ends and the opponent observes
// OpponentGone. Close is idempotent.
func (p *Player) Close() error {
	p.seat.leave()
	return nil
}

func (p *Player) gone() error {
	if done, reason := p.session.state.Terminated(); done {
		return opponentGone(reason)
	}
	return opponentGone(p.color.String() + " handle closed")
}
