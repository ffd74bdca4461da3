package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultOpening     = "ruy-lopez"
	DefaultMoveTimeout = 30 * time.Second
	DefaultGameTimeout = 5 * time.Minute
	DefaultJournalTTL  = 24 * time.Hour
)

type AppConfig struct {
	Opening     string
	OpeningsDir string
	StrictRules bool

	MoveTimeout time.Duration
	GameTimeout time.Duration

	RedisURL   string
	JournalTTL time.Duration

	DatabaseURL string

	AnnounceBaseURL string
	AnnounceRoom    string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Opening:     DefaultOpening,
		StrictRules: true,
		MoveTimeout: DefaultMoveTimeout,
		GameTimeout: DefaultGameTimeout,
		JournalTTL:  DefaultJournalTTL,
	}

	if v := strings.TrimSpace(os.Getenv("DUEL_OPENING")); v != "" {
		cfg.Opening = v
	}
	cfg.OpeningsDir = strings.TrimSpace(os.Getenv("DUEL_OPENINGS_DIR"))

	if v := strings.TrimSpace(os.Getenv("DUEL_STRICT_RULES")); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			cfg.StrictRules = b
		}
	}
	if d, ok := envDuration("DUEL_MOVE_TIMEOUT"); ok {
		cfg.MoveTimeout = d
	}
	if d, ok := envDuration("DUEL_GAME_TIMEOUT"); ok {
		cfg.GameTimeout = d
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	if d, ok := envDuration("DUEL_JOURNAL_TTL"); ok {
		cfg.JournalTTL = d
	}
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	cfg.AnnounceBaseURL = strings.TrimSpace(os.Getenv("ANNOUNCE_BASE_URL"))
	cfg.AnnounceRoom = strings.TrimSpace(os.Getenv("ANNOUNCE_ROOM"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements. Flag overrides call it again.
func (c *AppConfig) Validate() error {
	if c.Opening == "" {
		return errors.New("DUEL_OPENING must not be empty")
	}
	if c.MoveTimeout <= 0 {
		return errors.New("DUEL_MOVE_TIMEOUT must be positive")
	}
	if c.AnnounceBaseURL != "" && c.AnnounceRoom == "" {
		return errors.New("ANNOUNCE_ROOM is required when ANNOUNCE_BASE_URL is set")
	}
	return nil
}

// envDuration accepts Go durations ("90s") or plain seconds ("90").
func envDuration(key string) (time.Duration, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second, true
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d, true
	}
	return 0, false
}
