// apps/versus-server/internal/words/words.go
//
// Word pool management for human and AI play.
//
// Responsibilities:
//   - Load the {word, definition} pool from WORDS_FILE or fall back to the
//     embedded default (assets/words.json).
//   - Normalize entries: trimmed, upper-cased, exactly 5 letters A–Z, first
//     occurrence wins on duplicates. Pool order is file order.
//   - Lookups (Contains, Definition), random and daily target selection.
//
// File format (JSON array), either form per element:
//   [{"word": "crane", "definition": "..."}, "slate", ...]
//
// Environment variables:
//   WORDS_FILE=/path/to/words.json
//
// Initialization of the process-wide default pool is run once (sync.Once).

package words

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	mrand "math/rand/v2"
	"os"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/robalobadob/wordle/apps/versus-server/assets"
)

// Length is the only accepted word length.
const Length = 5

var (
	ErrEmptyPool    = errors.New("words: pool is empty")
	ErrInvalidGuess = errors.New("guess must be 5 letters")
	ErrNotInPool    = errors.New("not in word list")
)

// Entry is one word of the pool. Definition is optional.
type Entry struct {
	Word       string `json:"word"`
	Definition string `json:"definition,omitempty"`
}

// Pool is an immutable, ordered word list with a membership index.
type Pool struct {
	entries []Entry
	words   []string
	index   map[string]int
}

// NewPool normalizes entries and builds the index.
// Returns ErrEmptyPool if nothing valid remains.
func NewPool(entries []Entry) (*Pool, error) {
	clean := lo.FilterMap(entries, func(e Entry, _ int) (Entry, bool) {
		w := Normalize(e.Word)
		return Entry{Word: w, Definition: strings.TrimSpace(e.Definition)}, Valid(w)
	})
	clean = lo.UniqBy(clean, func(e Entry) string { return e.Word })
	if len(clean) == 0 {
		return nil, ErrEmptyPool
	}
	p := &Pool{
		entries: clean,
		words:   lo.Map(clean, func(e Entry, _ int) string { return e.Word }),
		index:   make(map[string]int, len(clean)),
	}
	for i, w := range p.words {
		p.index[w] = i
	}
	return p, nil
}

// FromWords builds a pool without definitions.
func FromWords(ws ...string) (*Pool, error) {
	return NewPool(lo.Map(ws, func(w string, _ int) Entry { return Entry{Word: w} }))
}

// Parse decodes a JSON array whose elements are entry objects or bare strings.
func Parse(data []byte) (*Pool, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("words: decode: %w", err)
	}
	entries := make([]Entry, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			entries = append(entries, Entry{Word: s})
			continue
		}
		var e Entry
		if err := json.Unmarshal(r, &e); err != nil {
			return nil, fmt.Errorf("words: decode entry %s: %w", string(r), err)
		}
		entries = append(entries, e)
	}
	return NewPool(entries)
}

// Load reads a pool file from disk.
func Load(path string) (*Pool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("words: read %s: %w", path, err)
	}
	return Parse(data)
}

// Embedded returns the pool compiled into the binary.
func Embedded() (*Pool, error) { return Parse(assets.WordsJSON) }

var (
	initOnce   sync.Once
	defaultP   *Pool
	initialErr error
)

// Init loads the process-wide pool exactly once: WORDS_FILE when set,
// otherwise the embedded default.
func Init() error {
	initOnce.Do(func() {
		if path := os.Getenv("WORDS_FILE"); path != "" {
			defaultP, initialErr = Load(path)
			return
		}
		defaultP, initialErr = Embedded()
	})
	return initialErr
}

// Default returns the pool loaded by Init (nil before a successful Init).
func Default() *Pool { return defaultP }

// Words returns the ordered word list. Callers must not modify it.
func (p *Pool) Words() []string { return p.words }

// Entries returns a copy of the pool entries.
func (p *Pool) Entries() []Entry { return append([]Entry(nil), p.entries...) }

// Len is the number of words.
func (p *Pool) Len() int { return len(p.words) }

// Contains reports membership (case-insensitive).
func (p *Pool) Contains(w string) bool {
	_, ok := p.index[Normalize(w)]
	return ok
}

// Definition returns the definition for w, if any.
func (p *Pool) Definition(w string) (string, bool) {
	i, ok := p.index[Normalize(w)]
	if !ok || p.entries[i].Definition == "" {
		return "", false
	}
	return p.entries[i].Definition, true
}

// Random picks a uniformly random word. With a nil rng it uses crypto/rand.
func (p *Pool) Random(rng *mrand.Rand) string {
	if rng != nil {
		return p.words[rng.IntN(len(p.words))]
	}
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(p.words))))
	return p.words[n.Int64()]
}

// Stats returns (words, words with a definition).
func (p *Pool) Stats() (total, defined int) {
	return len(p.words), lo.CountBy(p.entries, func(e Entry) bool { return e.Definition != "" })
}

// Normalize trims and upper-cases w.
func Normalize(w string) string { return strings.ToUpper(strings.TrimSpace(w)) }

// Valid reports whether w is exactly Length upper-case ASCII letters.
func Valid(w string) bool {
	if len(w) != Length {
		return false
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'A' || w[i] > 'Z' {
			return false
		}
	}
	return true
}

// ValidateGuess normalizes and checks a guess. In strict mode the word must
// also be in pool. Returns the normalized word.
func ValidateGuess(w string, pool *Pool, strict bool) (string, error) {
	w = Normalize(w)
	if !Valid(w) {
		return "", ErrInvalidGuess
	}
	if strict && pool != nil && !pool.Contains(w) {
		return "", ErrNotInPool
	}
	return w, nil
}
