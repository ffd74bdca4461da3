package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/cheese-duel/internal/duel"
	"github.com/park285/cheese-duel/internal/referee"
)

// Schema creates the table Archive writes to.
const Schema = `CREATE TABLE IF NOT EXISTS duel_games (
    session_id  TEXT PRIMARY KEY,
    cause       TEXT NOT NULL,
    reason      TEXT NOT NULL,
    departed    TEXT NOT NULL,
    result      TEXT NOT NULL,
    moves_raw   JSONB NOT NULL,
    moves_san   JSONB NOT NULL,
    pgn         TEXT NOT NULL,
    started_at  TIMESTAMPTZ NOT NULL,
    ended_at    TIMESTAMPTZ NOT NULL,
    duration_ms BIGINT NOT NULL
)`

// Archive stores finished duels in Postgres. It is a duel.Recorder that
// ignores individual moves.
type Archive struct {
	db *sql.DB
}

func OpenArchive(ctx context.Context, databaseURL string) (*Archive, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Archive{db: db}, nil
}

func NewArchive(db *sql.DB) *Archive { return &Archive{db: db} }

func (a *Archive) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *Archive) Name() string { return "journal.postgres" }

// EnsureSchema creates duel_games if it does not exist.
func (a *Archive) EnsureSchema(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, Schema)
	return err
}

func (a *Archive) RecordMove(context.Context, duel.MoveEvent) error { return nil }

// RecordOutcome upserts the finished duel.
func (a *Archive) RecordOutcome(ctx context.Context, out duel.Outcome) error {
	if a == nil || a.db == nil {
		return nil
	}
	g := summarize(out)

	movesRaw, _ := json.Marshal(out.Moves)
	movesSAN, _ := json.Marshal(g.san)
	duration := out.EndedAt.Sub(out.StartedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	q := `INSERT INTO duel_games (
        session_id, cause, reason, departed, result,
        moves_raw, moves_san, pgn, started_at, ended_at, duration_ms
      ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
      ) ON CONFLICT (session_id) DO UPDATE SET
        cause=EXCLUDED.cause,
        reason=EXCLUDED.reason,
        departed=EXCLUDED.departed,
        result=EXCLUDED.result,
        moves_raw=EXCLUDED.moves_raw,
        moves_san=EXCLUDED.moves_san,
        pgn=EXCLUDED.pgn,
        started_at=EXCLUDED.started_at,
        ended_at=EXCLUDED.ended_at,
        duration_ms=EXCLUDED.duration_ms`

	_, err := a.db.ExecContext(ctx, q,
		out.SessionID, out.Cause.String(), out.Reason, g.departed, g.result,
		string(movesRaw), string(movesSAN), g.pgn,
		out.StartedAt, out.EndedAt, duration,
	)
	if err != nil {
		return fmt.Errorf("archive %s: %w", out.SessionID, err)
	}
	return nil
}

type summary struct {
	san      []string
	result   string
	departed string
	pgn      string
}

// summarize notates the moves and builds the PGN. Moves that do not replay
// as chess are kept verbatim with an undecided result.
func summarize(out duel.Outcome) summary {
	s := summary{result: "*"}
	if rec, err := referee.Replay(out.Moves); err == nil {
		s.san = rec.SAN
		s.result = rec.Result
	} else {
		s.san = append([]string(nil), out.Moves...)
	}
	if out.Cause == duel.CauseDeparted {
		s.departed = out.Departed.String()
	}
	s.pgn = buildPGN(out, s.san, s.result)
	return s
}

func buildPGN(out duel.Outcome, san []string, pgnResult string) string {
	var b strings.Builder
	date := out.EndedAt
	if date.IsZero() {
		date = time.Now()
	}
	b.WriteString("[Event \"Duel\"]\n")
	b.WriteString(fmt.Sprintf("[Site \"%s\"]\n", sanitizePGN(out.SessionID)))
	b.WriteString(fmt.Sprintf("[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day()))
	b.WriteString("[White \"White\"]\n")
	b.WriteString("[Black \"Black\"]\n")
	if out.Cause != 0 {
		b.WriteString(fmt.Sprintf("[Termination \"%s\"]\n", sanitizePGN(out.Cause.String())))
	}
	b.WriteString(fmt.Sprintf("[Result \"%s\"]\n\n", pgnResult))

	for i := 0; i < len(san); i += 2 {
		b.WriteString(fmt.Sprintf("%d. %s", i/2+1, strings.TrimSpace(san[i])))
		if i+1 < len(san) {
			b.WriteString(" ")
			b.WriteString(strings.TrimSpace(san[i+1]))
		}
		b.WriteString(" ")
	}
	b.WriteString(pgnResult)
	return b.String()
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
