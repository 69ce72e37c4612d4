// apps/versus-server/internal/game/types.go
//
// Core type definitions for the guess evaluation engine.
// Defines:
//   - Status: per-letter evaluation result (correct/present/absent) plus the
//     UI-only states that the engine never produces.
//   - Feedback: the ordered statuses for one guess.
//   - KeyStatuses: best status observed per letter across a game.
//   - Result: the immutable record of a finished game.

package game

import (
	"strings"
	"time"
)

const (
	// WordLength is the number of letters in every word of the game.
	WordLength = 5
	// MaxGuesses is the number of rows a player (human or AI) gets.
	MaxGuesses = 6
)

// Status represents the evaluation result for a single letter in a guess.
type Status string

const (
	StatusCorrect Status = "correct" // right letter, right position
	StatusPresent Status = "present" // letter is in the target, elsewhere
	StatusAbsent  Status = "absent"  // letter not in the target (or all copies used)

	// UI-only tile states. Evaluate never produces these.
	StatusEmpty   Status = "empty"
	StatusEditing Status = "editing"

	// StatusUnused is reported by KeyStatuses for letters never guessed.
	StatusUnused Status = "unused"
)

// rank orders statuses for the keyboard aggregate; higher wins.
func (s Status) rank() int {
	switch s {
	case StatusCorrect:
		return 3
	case StatusPresent:
		return 2
	case StatusAbsent:
		return 1
	default:
		return 0
	}
}

// Feedback is the per-position evaluation of one guess.
type Feedback []Status

// Solved reports whether every position is correct.
func (f Feedback) Solved() bool {
	if len(f) == 0 {
		return false
	}
	for _, s := range f {
		if s != StatusCorrect {
			return false
		}
	}
	return true
}

// Pattern packs the feedback into a base-3 integer (absent=0, present=1,
// correct=2, first position most significant). Two feedbacks of the same
// length are equal iff their patterns are equal.
func (f Feedback) Pattern() int {
	p := 0
	for _, s := range f {
		p *= 3
		switch s {
		case StatusPresent:
			p++
		case StatusCorrect:
			p += 2
		}
	}
	return p
}

// String renders the feedback as G (correct), Y (present) and - (absent).
func (f Feedback) String() string {
	var b strings.Builder
	for _, s := range f {
		switch s {
		case StatusCorrect:
			b.WriteByte('G')
		case StatusPresent:
			b.WriteByte('Y')
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

// KeyStatuses maps a letter to the best status ever observed for it.
// Entries only move absent → present → correct.
type KeyStatuses map[byte]Status

// Observe folds one evaluated guess into the aggregate.
func (k KeyStatuses) Observe(guess string, fb Feedback) {
	for i := 0; i < len(guess) && i < len(fb); i++ {
		c := guess[i]
		if fb[i].rank() > k[c].rank() {
			k[c] = fb[i]
		}
	}
}

// Get returns the status for letter c, or StatusUnused.
func (k KeyStatuses) Get(c byte) Status {
	if s, ok := k[c]; ok {
		return s
	}
	return StatusUnused
}

// Export converts the aggregate into a JSON-friendly map keyed by letter.
func (k KeyStatuses) Export() map[string]Status {
	out := make(map[string]Status, len(k))
	for c, s := range k {
		out[string(c)] = s
	}
	return out
}

// Phase is the lifecycle of a single human game.
type Phase string

const (
	PhasePlaying Phase = "playing"
	PhaseWon     Phase = "won"
	PhaseLost    Phase = "lost"
)

// Finished reports whether p is terminal.
func (p Phase) Finished() bool { return p == PhaseWon || p == PhaseLost }

// Result is the record of one finished game. Created once, never mutated.
type Result struct {
	Word      string `json:"word"`
	Attempts  int    `json:"attempts"`
	TimeTaken int    `json:"timeTaken"` // whole seconds
	Status    Phase  `json:"status"`    // won | lost
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

// Won reports whether the game was won.
func (r Result) Won() bool { return r.Status == PhaseWon }

// Clock is the wall-clock source used for start/end times.
type Clock func() time.Time
