package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/park285/cheese-duel/internal/announce"
	appcfg "github.com/park285/cheese-duel/internal/config"
	"github.com/park285/cheese-duel/internal/duel"
	"github.com/park285/cheese-duel/internal/journal"
	"github.com/park285/cheese-duel/internal/obslog"
	"github.com/park285/cheese-duel/internal/openings"
	"github.com/park285/cheese-duel/internal/referee"
	"github.com/park285/cheese-duel/internal/scripted"
)

func newPlayCmd(fv *flagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play the configured opening between two scripted players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, fv)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			_, err = runDuel(ctx, cfg, cmd.OutOrStdout())
			return err
		},
	}
}

// runDuel plays one scripted duel and prints its history and outcome.
func runDuel(ctx context.Context, cfg *appcfg.AppConfig, w io.Writer) (duel.Outcome, error) {
	cat, err := openings.New(cfg.OpeningsDir)
	if err != nil {
		return duel.Outcome{}, err
	}
	line, err := cat.Lookup(cfg.Opening)
	if err != nil {
		return duel.Outcome{}, err
	}

	opts, closeAll, err := sessionOptions(ctx, cfg)
	if err != nil {
		return duel.Outcome{}, err
	}
	defer closeAll()

	if cfg.GameTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.GameTimeout)
		defer cancel()
	}

	s := duel.New(opts...)
	white := s.CreatePlayer()
	black := s.CreatePlayer()

	type runResult struct {
		out duel.Outcome
		err error
	}
	runDone := make(chan runResult, 1)
	go func() {
		out, err := s.Run(ctx)
		runDone <- runResult{out: out, err: err}
	}()

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range []*duel.Player{white, black} {
		sp := scripted.New(p, line.Moves(p.Color()), scripted.WithMoveTimeout(cfg.MoveTimeout))
		g.Go(func() error {
			if _, err := sp.Run(gctx); err != nil {
				return fmt.Errorf("%s: %w", p.Color(), err)
			}
			return nil
		})
	}
	playErr := g.Wait()

	_ = white.Close()
	_ = black.Close()
	res := <-runDone

	printDuel(w, line, res.out)
	if playErr != nil {
		obslog.L().Warn("duel_player_error", zap.String("session_id", s.ID()), zap.Error(playErr))
	}
	return res.out, errors.Join(res.err, playErr)
}

// sessionOptions wires the referee and every configured recorder.
func sessionOptions(ctx context.Context, cfg *appcfg.AppConfig) ([]duel.Option, func(), error) {
	opts := []duel.Option{duel.WithLogger(obslog.L())}
	var closers []func() error
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	if cfg.StrictRules {
		opts = append(opts, duel.WithReferee(referee.NewBoard()))
	}
	if cfg.RedisURL != "" {
		store, err := journal.Open(ctx, cfg.RedisURL, cfg.JournalTTL)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("journal: %w", err)
		}
		closers = append(closers, store.Close)
		opts = append(opts, duel.WithRecorder(store))
	}
	if cfg.DatabaseURL != "" {
		archive, err := journal.OpenArchive(ctx, cfg.DatabaseURL)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("archive: %w", err)
		}
		closers = append(closers, archive.Close)
		if err := archive.EnsureSchema(ctx); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("archive schema: %w", err)
		}
		opts = append(opts, duel.WithRecorder(archive))
	}
	if cfg.AnnounceBaseURL != "" {
		client := announce.NewClient(cfg.AnnounceBaseURL)
		opts = append(opts, duel.WithRecorder(announce.NewAnnouncer(client, cfg.AnnounceRoom)))
	}
	return opts, closeAll, nil
}

func printDuel(w io.Writer, line openings.Line, out duel.Outcome) {
	fmt.Fprintf(w, "%s (%s)\n", line.Name, line.Key)
	for i := 0; i < len(out.Moves); i += 2 {
		fmt.Fprintf(w, "%2d. %s", i/2+1, out.Moves[i])
		if i+1 < len(out.Moves) {
			fmt.Fprintf(w, "  %s", out.Moves[i+1])
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "ended: %s", out.Cause)
	if out.Reason != "" {
		fmt.Fprintf(w, " (%s)", out.Reason)
	}
	fmt.Fprintln(w)
}
