package main

import (
	"time"

	"github.com/spf13/cobra"

	appcfg "github.com/park285/cheese-duel/internal/config"
	"github.com/park285/cheese-duel/internal/obslog"
)

type flagValues struct {
	opening      string
	openingsDir  string
	strict       bool
	moveTimeout  time.Duration
	gameTimeout  time.Duration
	redisURL     string
	databaseURL  string
	announceURL  string
	announceRoom string
}

func newRootCmd() *cobra.Command {
	fv := &flagValues{}

	rootCmd := &cobra.Command{
		Use:   "duel",
		Short: "Run a two-player duel between scripted opening players",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return obslog.InitFromEnv()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			obslog.Sync()
		},
		SilenceUsage: true,
	}

	playCmd := newPlayCmd(fv)
	rootCmd.RunE = playCmd.RunE
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(newOpeningsCmd(fv))

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&fv.opening, "opening", appcfg.DefaultOpening, "Opening line to play (env: DUEL_OPENING)")
	pf.StringVar(&fv.openingsDir, "openings-dir", "", "Directory of extra opening YAML files (env: DUEL_OPENINGS_DIR)")
	pf.BoolVar(&fv.strict, "strict", true, "Check moves against the rules of chess (env: DUEL_STRICT_RULES)")
	pf.DurationVar(&fv.moveTimeout, "move-timeout", appcfg.DefaultMoveTimeout, "Bound on each play or wait (env: DUEL_MOVE_TIMEOUT)")
	pf.DurationVar(&fv.gameTimeout, "game-timeout", appcfg.DefaultGameTimeout, "Bound on the whole duel, 0 for none (env: DUEL_GAME_TIMEOUT)")
	pf.StringVar(&fv.redisURL, "redis-url", "", "Redis URL for the move journal (env: REDIS_URL)")
	pf.StringVar(&fv.databaseURL, "database-url", "", "Postgres URL for the game archive (env: DATABASE_URL)")
	pf.StringVar(&fv.announceURL, "announce-url", "", "Chat API base URL (env: ANNOUNCE_BASE_URL)")
	pf.StringVar(&fv.announceRoom, "announce-room", "", "Chat room for announcements (env: ANNOUNCE_ROOM)")

	return rootCmd
}

// loadConfig reads the environment and applies explicitly set flags on top.
func loadConfig(cmd *cobra.Command, fv *flagValues) (*appcfg.AppConfig, error) {
	cfg, err := appcfg.Load()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("opening") {
		cfg.Opening = fv.opening
	}
	if flags.Changed("openings-dir") {
		cfg.OpeningsDir = fv.openingsDir
	}
	if flags.Changed("strict") {
		cfg.StrictRules = fv.strict
	}
	if flags.Changed("move-timeout") {
		cfg.MoveTimeout = fv.moveTimeout
	}
	if flags.Changed("game-timeout") {
		cfg.GameTimeout = fv.gameTimeout
	}
	if flags.Changed("redis-url") {
		cfg.RedisURL = fv.redisURL
	}
	if flags.Changed("database-url") {
		cfg.DatabaseURL = fv.databaseURL
	}
	if flags.Changed("announce-url") {
		cfg.AnnounceBaseURL = fv.announceURL
	}
	if flags.Changed("announce-room") {
		cfg.AnnounceRoom = fv.announceRoom
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
