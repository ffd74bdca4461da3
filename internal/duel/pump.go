package duel

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	pumpBuffer    = 256
	recordTimeout = 5 * time.Second
)

// recordPump feeds recorders from a goroutine of its own so the arbiter
// never waits on their I/O. Move events that do not fit in the buffer are
// dropped with a warning; the outcome is always delivered. A nil pump
// discards everything.
type recordPump struct {
	ctx       context.Context
	recorders []Recorder
	log       *zap.Logger
	events    chan any
	done      chan struct{}
	// dropped is only touched by the arbiter goroutine.
	dropped int
}

func newRecordPump(ctx context.Context, recorders []Recorder, log *zap.Logger) *recordPump {
	if len(recorders) == 0 {
		return nil
	}
	p := &recordPump{
		// Outcomes are still recorded after the run context is cancelled.
		ctx:       context.WithoutCancel(ctx),
		recorders: recorders,
		log:       log,
		events:    make(chan any, pumpBuffer),
		done:      make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *recordPump) move(ev MoveEvent) {
	if p == nil {
		return
	}
	select {
	case p.events <- ev:
	default:
		p.dropped++
		p.log.Warn("duel_record_dropped",
			zap.Int("ply", ev.Ply),
			zap.Int("dropped", p.dropped),
		)
	}
}

// finish queues the outcome and waits until every event has been delivered.
func (p *recordPump) finish(out Outcome) {
	if p == nil {
		return
	}
	p.events <- out
	close(p.events)
	<-p.done
	if p.dropped > 0 {
		p.log.Warn("duel_record_incomplete", zap.Int("dropped", p.dropped))
	}
}

func (p *recordPump) run() {
	defer close(p.done)
	for ev := range p.events {
		for _, r := range p.recorders {
			p.deliver(r, ev)
		}
	}
}

func (p *recordPump) deliver(r Recorder, ev any) {
	ctx, cancel := context.WithTimeout(p.ctx, recordTimeout)
	defer cancel()

	var err error
	switch v := ev.(type) {
	case MoveEvent:
		err = r.RecordMove(ctx, v)
	case Outcome:
		err = r.RecordOutcome(ctx, v)
	}
	if err != nil {
		p.log.Warn("duel_record_error", zap.String("recorder", recorderName(r)), zap.Error(err))
	}
}

func recorderName(r Recorder) string {
	if n, ok := r.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "recorder"
}
