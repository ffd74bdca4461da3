package duel

import (
	"context"
	"errors"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
)

// channelCapacity is the bounded capacity of every turn channel.
// Strict alternation keeps at most one value in flight per direction.
const channelCapacity = 4

// maxBacklog is the number of unread values the producer may leave behind.
const maxBacklog = channelCapacity - 1

var (
	errChannelClosed = errf("turn channel closed")
	errChannelFull   = errf("turn channel full")
)

// turnChannel is a single-producer single-consumer conduit between a player
// and the arbiter. Values travel through a bounded lock-free queue; ready is a
// doorbell so the consumer can block without spinning. Once closed, recv
// reports errChannelClosed even if values remain queued.
type turnChannel[T any] struct {
	queue lfq.SPSC[T]
	ready chan struct{}
	done  chan struct{}

	closed atomix.Uint32
	sent   atomix.Uint32
	taken  atomix.Uint32
	once   sync.Once
	slot   T
}

func newTurnChannel[T any]() *turnChannel[T] {
	c := &turnChannel[T]{
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	c.queue.Init(channelCapacity)
	return c
}

// send is called by the producer only.
func (c *turnChannel[T]) send(v T) error {
	if c.isClosed() {
		return errChannelClosed
	}
	if c.backlog() >= maxBacklog {
		return errChannelFull
	}
	c.slot = v
	if err := c.queue.Enqueue(&c.slot); err != nil {
		if errors.Is(err, iox.ErrWouldBlock) {
			return errChannelFull
		}
		return err
	}
	c.sent.Add(1)
	c.ring()
	return nil
}

// tryRecv is called by the consumer only.
func (c *turnChannel[T]) tryRecv() (T, bool) {
	v, err := c.queue.Dequeue()
	if err != nil {
		var zero T
		return zero, false
	}
	c.taken.Add(1)
	return v, true
}

// recv blocks until a value arrives, the channel closes or ctx ends.
func (c *turnChannel[T]) recv(ctx context.Context) (T, error) {
	var zero T
	for {
		if c.isClosed() {
			return zero, errChannelClosed
		}
		if v, ok := c.tryRecv(); ok {
			return v, nil
		}
		select {
		case <-c.ready:
		case <-c.done:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

func (c *turnChannel[T]) ring() {
	select {
	case c.ready <- struct{}{}:
	default:
	}
}

// close reports whether this call performed the close.
func (c *turnChannel[T]) close() bool {
	closed := false
	c.once.Do(func() {
		c.closed.Add(1)
		close(c.done)
		closed = true
	})
	return closed
}

func (c *turnChannel[T]) isClosed() bool { return c.closed.Load() != 0 }

// backlog is the number of values sent but not yet received.
func (c *turnChannel[T]) backlog() uint32 { return c.sent.Load() - c.taken.Load() }
