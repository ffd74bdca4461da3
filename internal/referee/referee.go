// Package referee checks duel moves against the rules of chess.
package referee

import (
	"fmt"
	"strings"
	"sync"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/cheese-duel/internal/duel"
)

// Board is a duel.Referee backed by a full chess position.
type Board struct {
	mu   sync.Mutex
	game *nchess.Game
}

func NewBoard() *Board {
	return &Board{game: nchess.NewGame()}
}

// Apply plays move ("e2-e4") for mover if it is legal in the current
// position. A rejected move leaves the position untouched.
func (b *Board) Apply(mover duel.Color, move string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.game.Outcome() != nchess.NoOutcome {
		return fmt.Errorf("game is over (%s)", resultToken(b.game.Outcome()))
	}
	if colorFrom(b.game.Position().Turn()) != mover {
		return fmt.Errorf("position expects %s to move", colorFrom(b.game.Position().Turn()))
	}
	if _, err := push(b.game, move); err != nil {
		return err
	}
	return nil
}

// FEN returns the current position.
func (b *Board) FEN() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.game.FEN()
}

// Result returns the PGN result token of the current position.
func (b *Board) Result() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return resultToken(b.game.Outcome())
}

// Record is a replayed move list.
type Record struct {
	SAN    []string
	Result string
	FEN    string
}

// Replay plays moves from the initial position.
func Replay(moves []string) (Record, error) {
	game := nchess.NewGame()
	rec := Record{SAN: make([]string, 0, len(moves))}
	for i, mv := range moves {
		san, err := push(game, mv)
		if err != nil {
			return Record{}, fmt.Errorf("ply %d: %w", i+1, err)
		}
		rec.SAN = append(rec.SAN, san)
	}
	rec.Result = resultToken(game.Outcome())
	rec.FEN = game.FEN()
	return rec, nil
}

// Notate converts moves to standard algebraic notation.
func Notate(moves []string) ([]string, error) {
	rec, err := Replay(moves)
	if err != nil {
		return nil, err
	}
	return rec.SAN, nil
}

// ToUCI converts "e2-e4" to "e2e4".
func ToUCI(move string) string {
	return strings.ToLower(strings.Replace(strings.TrimSpace(move), "-", "", 1))
}

// push applies move to game and returns its SAN. A pawn reaching the last
// rank is promoted to a queen.
func push(game *nchess.Game, move string) (string, error) {
	uci := ToUCI(move)
	pos := game.Position()
	mv, err := nchess.UCINotation{}.Decode(pos, uci)
	if err == nil {
		err = game.Move(mv, nil)
	}
	if err != nil && promotes(uci) {
		mv, err = nchess.UCINotation{}.Decode(pos, uci+"q")
		if err == nil {
			err = game.Move(mv, nil)
		}
	}
	if err != nil {
		return "", fmt.Errorf("illegal move %s", move)
	}
	return nchess.AlgebraicNotation{}.Encode(pos, mv), nil
}

func promotes(uci string) bool {
	if len(uci) != 4 {
		return false
	}
	return uci[3] == '8' || uci[3] == '1'
}

func colorFrom(c nchess.Color) duel.Color {
	if c == nchess.White {
		return duel.White
	}
	return duel.Black
}

func resultToken(o nchess.Outcome) string {
	switch o {
	case nchess.WhiteWon:
		return "1-0"
	case nchess.BlackWon:
		return "0-1"
	case nchess.Draw:
		return "1/2-1/2"
	default:
		return "*"
	}
}
