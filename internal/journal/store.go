package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/park285/cheese-duel/internal/duel"
)

const defaultTTL = 24 * time.Hour

// Store journals every accepted move to Redis. It is a duel.Recorder.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// Open connects to redisURL and verifies the connection.
func Open(ctx context.Context, redisURL string, ttl time.Duration) (*Store, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, errors.New("REDIS_URL required for journal")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewStore(rdb, ttl), nil
}

func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) Name() string { return "journal.redis" }

func (s *Store) keyMeta(id string) string  { return "duel:" + strings.TrimSpace(id) }
func (s *Store) keyMoves(id string) string { return s.keyMeta(id) + ":moves" }

func (s *Store) RecordMove(ctx context.Context, ev duel.MoveEvent) error {
	meta := Meta{
		SessionID: ev.SessionID,
		Status:    StatusActive,
		Plies:     ev.Ply,
		ToMove:    ev.Color.Opponent().String(),
		UpdatedAt: ev.At,
	}
	raw, err := json.Marshal(&meta)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, s.keyMoves(ev.SessionID), ev.Move)
	pipe.Expire(ctx, s.keyMoves(ev.SessionID), s.ttl)
	pipe.Set(ctx, s.keyMeta(ev.SessionID), raw, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("journal move %d: %w", ev.Ply, err)
	}
	return nil
}

func (s *Store) RecordOutcome(ctx context.Context, out duel.Outcome) error {
	raw, err := json.Marshal(metaFromOutcome(out))
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.keyMeta(out.SessionID), raw, s.ttl)
	pipe.Expire(ctx, s.keyMoves(out.SessionID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("journal outcome: %w", err)
	}
	return nil
}

// Load returns the journal for id, or nil if none exists.
func (s *Store) Load(ctx context.Context, id string) (*Record, error) {
	raw, err := s.rdb.Get(ctx, s.keyMeta(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec.Meta); err != nil {
		return nil, fmt.Errorf("decode journal meta: %w", err)
	}
	rec.Moves, err = s.rdb.LRange(ctx, s.keyMoves(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
