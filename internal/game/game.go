// apps/versus-server/internal/game/game.go
//
// A single human game session.
// Responsibilities:
//   - Hold the target, guess history, per-guess feedback and keyboard state.
//   - Validate guesses (shape always, dictionary membership when configured).
//   - Drive the playing → won/lost phase machine.
//   - Produce the immutable Result once the game is over.

package game

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrFinished      = errors.New("game finished")
	ErrInvalidGuess  = errors.New("guess must be 5 letters")
	ErrNotInWordList = errors.New("not in word list")
)

// Dictionary reports whether a word may be guessed.
type Dictionary interface {
	Contains(word string) bool
}

// Game is one human play-through against a hidden target.
type Game struct {
	ID         string      `json:"id"`
	Target     string      `json:"-"`
	Guesses    []string    `json:"guesses"`
	Feedback   []Feedback  `json:"feedback"`
	Keys       KeyStatuses `json:"-"`
	Phase      Phase       `json:"phase"`
	StartedAt  time.Time   `json:"startedAt"`
	FinishedAt time.Time   `json:"finishedAt,omitempty"`
	Practice   bool        `json:"practice,omitempty"` // target chosen by the client; never scored

	clock Clock
	dict  Dictionary
}

// Option customizes a Game at construction.
type Option func(*Game)

// WithClock overrides the wall clock (tests).
func WithClock(c Clock) Option { return func(g *Game) { g.clock = c } }

// WithDictionary enables strict word-list validation of guesses.
func WithDictionary(d Dictionary) Option { return func(g *Game) { g.dict = d } }

// AsPractice marks a game whose target the player picked.
func AsPractice() Option { return func(g *Game) { g.Practice = true } }

// New starts a game for target. The target is upper-cased.
func New(target string, opts ...Option) *Game {
	g := &Game{
		ID:     uuid.NewString(),
		Target: strings.ToUpper(strings.TrimSpace(target)),
		Keys:   KeyStatuses{},
		Phase:  PhasePlaying,
		clock:  time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	g.StartedAt = g.clock()
	return g
}

// ApplyGuess validates, evaluates and records a guess.
// Returns the feedback and the resulting phase.
func (g *Game) ApplyGuess(guess string) (Feedback, Phase, error) {
	if g.Phase.Finished() {
		return nil, g.Phase, ErrFinished
	}
	guess = strings.ToUpper(strings.TrimSpace(guess))
	if len(guess) != len(g.Target) || !letters(guess) {
		return nil, g.Phase, ErrInvalidGuess
	}
	if g.dict != nil && !g.dict.Contains(guess) {
		return nil, g.Phase, ErrNotInWordList
	}

	fb := Evaluate(guess, g.Target)
	g.Guesses = append(g.Guesses, guess)
	g.Feedback = append(g.Feedback, fb)
	g.Keys.Observe(guess, fb)

	switch {
	case fb.Solved():
		g.finish(PhaseWon)
	case len(g.Guesses) >= MaxGuesses:
		g.finish(PhaseLost)
	}
	return fb, g.Phase, nil
}

// Expire ends a still-running game as lost (e.g. a match time limit).
// No-op once finished.
func (g *Game) Expire() {
	if !g.Phase.Finished() {
		g.finish(PhaseLost)
	}
}

func (g *Game) finish(p Phase) {
	g.Phase = p
	g.FinishedAt = g.clock()
}

// Result returns the game record. ok is false while the game is still running.
// Lost games count as MaxGuesses attempts.
func (g *Game) Result() (Result, bool) {
	if !g.Phase.Finished() {
		return Result{}, false
	}
	attempts := len(g.Guesses)
	if g.Phase == PhaseLost {
		attempts = MaxGuesses
	}
	return Result{
		Word:      g.Target,
		Attempts:  attempts,
		TimeTaken: int(g.FinishedAt.Sub(g.StartedAt) / time.Second),
		Status:    g.Phase,
		Timestamp: g.FinishedAt.UnixMilli(),
	}, true
}

// letters reports whether s is all upper-case ASCII letters.
func letters(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return s != ""
}
