// Package openings provides the scripted lines played by sample duel players.
package openings

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	yaml "gopkg.in/yaml.v3"

	"github.com/park285/cheese-duel/internal/duel"
)

// Default is the line played when none is configured.
const Default = "ruy-lopez"

// LineLength is the number of moves each side plays in a line.
const LineLength = 5

//go:embed lines.yaml
var defaultFiles embed.FS

var ErrUnknownLine = errors.New("unknown opening line")

// Line is one scripted opening.
type Line struct {
	Key   string   `yaml:"-"`
	Name  string   `yaml:"name"`
	White []string `yaml:"white"`
	Black []string `yaml:"black"`
}

// Moves returns the moves played by c.
func (l Line) Moves(c duel.Color) []string {
	if c == duel.White {
		return append([]string(nil), l.White...)
	}
	return append([]string(nil), l.Black...)
}

// Interleaved returns the line in play order, White first.
func (l Line) Interleaved() []string {
	out := make([]string, 0, len(l.White)+len(l.Black))
	for i := range l.White {
		out = append(out, l.White[i])
		if i < len(l.Black) {
			out = append(out, l.Black[i])
		}
	}
	return out
}

func (l Line) validate() error {
	if len(l.White) != LineLength || len(l.Black) != LineLength {
		return fmt.Errorf("line %q: want %d moves per side, got %d white and %d black",
			l.Key, LineLength, len(l.White), len(l.Black))
	}
	for _, mv := range l.Interleaved() {
		if err := duel.ValidateMove(mv); err != nil {
			return fmt.Errorf("line %q: %w", l.Key, err)
		}
	}
	return nil
}

type file struct {
	Lines map[string]Line `yaml:"lines"`
}

// Catalog holds the embedded lines plus any loaded from an override directory.
type Catalog struct {
	mu    sync.RWMutex
	lines map[string]Line
}

// New loads the embedded lines and then applies overrides from dir if provided.
func New(overrideDir string) (*Catalog, error) {
	c := &Catalog{lines: make(map[string]Line)}

	raw, err := fs.ReadFile(defaultFiles, "lines.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded lines: %w", err)
	}
	parsed, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse embedded lines: %w", err)
	}
	c.apply(parsed)

	if strings.TrimSpace(overrideDir) != "" {
		if err := c.applyDir(overrideDir); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) applyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read openings dir: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	seen := make(map[string]string) // key -> filename
	for _, name := range files {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		parsed, err := parse(b)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		for k := range parsed {
			if prev, ok := seen[k]; ok {
				return fmt.Errorf("duplicate line %q in %s and %s", k, prev, name)
			}
			seen[k] = name
		}
		c.apply(parsed)
	}
	return nil
}

func parse(b []byte) (map[string]Line, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	out := make(map[string]Line, len(f.Lines))
	for k, l := range f.Lines {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			return nil, errors.New("line with empty key")
		}
		l.Key = key
		if err := l.validate(); err != nil {
			return nil, err
		}
		out[key] = l
	}
	return out, nil
}

func (c *Catalog) apply(lines map[string]Line) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, l := range lines {
		c.lines[k] = l
	}
}

// Lookup returns the line stored under key (case-insensitive).
func (c *Catalog) Lookup(key string) (Line, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.lines[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return Line{}, fmt.Errorf("%w: %q", ErrUnknownLine, key)
	}
	return l, nil
}

// Keys returns every line key in sorted order.
func (c *Catalog) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.lines))
	for k := range c.lines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
