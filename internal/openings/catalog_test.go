package openings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/park285/cheese-duel/internal/duel"
	"github.com/park285/cheese-duel/internal/referee"
)

func TestEmbeddedCatalog(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	require.Equal(t, []string{"italian", "queens-gambit-declined", "ruy-lopez", "sicilian-najdorf"}, c.Keys())

	l, err := c.Lookup(Default)
	require.NoError(t, err)
	require.Equal(t, []string{"e2-e4", "g1-f3", "f1-b5", "b5-a4", "e1-g1"}, l.Moves(duel.White))
	require.Equal(t, []string{"e7-e5", "b8-c6", "a7-a6", "g8-f6", "f8-e7"}, l.Moves(duel.Black))
}

func TestEmbeddedLinesAreLegal(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	for _, key := range c.Keys() {
		l, err := c.Lookup(key)
		require.NoError(t, err)
		_, err = referee.Replay(l.Interleaved())
		require.NoError(t, err, key)
	}
}

func TestLookupUnknown(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	_, err = c.Lookup("kings-gambit")
	require.ErrorIs(t, err, ErrUnknownLine)
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

const londonYAML = `lines:
  london:
    name: London System
    white: [d2-d4, c1-f4, e2-e3, g1-f3, c2-c3]
    black: [d7-d5, g8-f6, e7-e6, c7-c5, b8-c6]
`

func TestOverrideDirAddsLines(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "extra.yaml", londonYAML)
	writeFile(t, dir, "notes.txt", "ignored")

	c, err := New(dir)
	require.NoError(t, err)
	l, err := c.Lookup("London")
	require.NoError(t, err)
	require.Equal(t, "London System", l.Name)
	require.Len(t, c.Keys(), 5)
}

func TestOverrideDirRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", londonYAML)
	writeFile(t, dir, "b.yml", londonYAML)

	_, err := New(dir)
	require.ErrorContains(t, err, `duplicate line "london"`)
}

func TestOverrideDirRejectsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "short.yaml", `lines:
  short:
    white: [e2-e4]
    black: [e7-e5]
`)
	_, err := New(dir)
	require.ErrorContains(t, err, "want 5 moves per side")

	dir = t.TempDir()
	writeFile(t, dir, "bad.yaml", `lines:
  bad:
    white: [e2-e4, g1-f3, f1-b5, b5-a4, e1g1]
    black: [e7-e5, b8-c6, a7-a6, g8-f6, f8-e7]
`)
	_, err = New(dir)
	require.ErrorIs(t, err, duel.ErrBadMove)
}
