package duel

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// gatedRecorder blocks every call until release is closed.
type gatedRecorder struct {
	release chan struct{}

	mu       sync.Mutex
	moves    []int
	outcomes []Outcome
}

func (r *gatedRecorder) RecordMove(_ context.Context, ev MoveEvent) error {
	<-r.release
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moves = append(r.moves, ev.Ply)
	return nil
}

func (r *gatedRecorder) RecordOutcome(_ context.Context, out Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, out)
	return nil
}

func TestRecordPumpDropsInsteadOfBlocking(t *testing.T) {
	rec := &gatedRecorder{release: make(chan struct{})}
	p := newRecordPump(context.Background(), []Recorder{rec}, zap.NewNop())

	const sent = pumpBuffer + 20
	queued := make(chan struct{})
	go func() {
		defer close(queued)
		for ply := 1; ply <= sent; ply++ {
			p.move(MoveEvent{SessionID: "s", Ply: ply})
		}
	}()
	select {
	case <-queued:
	case <-time.After(5 * time.Second):
		t.Fatal("move blocked on a stalled recorder")
	}
	require.Positive(t, p.dropped)

	close(rec.release)
	p.finish(Outcome{SessionID: "s", Cause: CauseStopped})

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.moves, sent-p.dropped)
	for i := 1; i < len(rec.moves); i++ {
		require.Less(t, rec.moves[i-1], rec.moves[i])
	}
	require.Len(t, rec.outcomes, 1)
	require.Equal(t, CauseStopped, rec.outcomes[0].Cause)
}

func TestRecordPumpDeliversInOrder(t *testing.T) {
	rec := &gatedRecorder{release: make(chan struct{})}
	close(rec.release)
	p := newRecordPump(context.Background(), []Recorder{rec}, zap.NewNop())
	for ply := 1; ply <= 10; ply++ {
		p.move(MoveEvent{Ply: ply})
	}
	p.finish(Outcome{Cause: CauseDeparted})

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, rec.moves)
	require.Zero(t, p.dropped)
	require.Len(t, rec.outcomes, 1)
}

func TestNilPumpIsInert(t *testing.T) {
	p := newRecordPump(context.Background(), nil, zap.NewNop())
	require.Nil(t, p)
	p.move(MoveEvent{Ply: 1})
	p.finish(Outcome{})
}
