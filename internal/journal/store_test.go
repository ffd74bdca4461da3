package journal

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/park285/cheese-duel/internal/duel"
	"github.com/park285/cheese-duel/internal/racecheck"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	s, err := Open(context.Background(), fmt.Sprintf("redis://%s/0", mr.Addr()), time.Hour)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestStoreJournalsMovesAndOutcome(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	for i, mv := range []string{"e2-e4", "c7-c5"} {
		c := duel.White
		if i == 1 {
			c = duel.Black
		}
		ev := duel.MoveEvent{SessionID: "s1", Ply: i + 1, Color: c, Move: mv, At: now}
		if err := s.RecordMove(ctx, ev); err != nil {
			t.Fatalf("RecordMove %d: %v", i+1, err)
		}
	}

	rec, err := s.Load(ctx, "s1")
	if err != nil || rec == nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.Meta.Status != StatusActive || rec.Meta.Plies != 2 || rec.Meta.ToMove != "white" {
		t.Fatalf("unexpected active meta: %+v", rec.Meta)
	}
	if len(rec.Moves) != 2 || rec.Moves[0] != "e2-e4" || rec.Moves[1] != "c7-c5" {
		t.Fatalf("unexpected moves: %v", rec.Moves)
	}
	if ttl := mr.TTL("duel:s1:moves"); ttl <= 0 || ttl > time.Hour {
		t.Fatalf("moves ttl not refreshed: %v", ttl)
	}

	out := duel.Outcome{
		SessionID: "s1",
		Moves:     []string{"e2-e4", "c7-c5"},
		Cause:     duel.CauseDeparted,
		Reason:    "black left the session",
		Departed:  duel.Black,
		StartedAt: now.Add(-time.Minute),
		EndedAt:   now,
	}
	if err := s.RecordOutcome(ctx, out); err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	rec, err = s.Load(ctx, "s1")
	if err != nil || rec == nil {
		t.Fatalf("Load after outcome: %v", err)
	}
	if rec.Meta.Status != StatusEnded || rec.Meta.Cause != "departed" || rec.Meta.Departed != "black" {
		t.Fatalf("unexpected ended meta: %+v", rec.Meta)
	}
	if !rec.Meta.StartedAt.Equal(out.StartedAt) {
		t.Fatalf("started_at mismatch: %v vs %v", rec.Meta.StartedAt, out.StartedAt)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	s, _ := newTestStore(t)
	rec, err := s.Load(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil record, got %+v", rec)
	}
}

func TestStoreRecordsLiveSession(t *testing.T) {
	racecheck.SkipLockFree(t)
	s, _ := newTestStore(t)
	sess := duel.New(duel.WithID("live"), duel.WithRecorder(s))
	white := sess.CreatePlayer()
	black := sess.CreatePlayer()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = sess.Run(ctx)
	}()

	if err := white.Play(ctx, "d2-d4"); err != nil {
		t.Fatalf("white play: %v", err)
	}
	if _, err := black.Wait(ctx); err != nil {
		t.Fatalf("black wait: %v", err)
	}
	_ = black.Close()
	<-done

	rec, err := s.Load(context.Background(), "live")
	if err != nil || rec == nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.Meta.Status != StatusEnded || len(rec.Moves) != 1 || rec.Moves[0] != "d2-d4" {
		t.Fatalf("unexpected journal: %+v", rec)
	}
}

func TestOpenRejectsEmptyURL(t *testing.T) {
	if _, err := Open(context.Background(), " ", 0); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
