// apps/versus-server/internal/solver/belief.go
//
// Belief is everything the AI has learned about the hidden word so far.
// It is a flat value type: Update returns a new Belief and never touches
// the receiver, so a controller can swap its belief wholesale on reset and
// no two games ever share state.

package solver

import (
	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
)

const wordLen = game.WordLength

// Belief holds the accumulated constraints for one target.
//
//   - Known[i]     letter fixed at position i (0 = unknown)
//   - Present[c]   letter c is in the word somewhere
//   - Absent[c]    letter c is nowhere in the word
//   - NotAt[c][i]  letter c is not at position i
//
// Absent is only set for letters the guess never marked correct or present.
// A repeated letter's extra ABSENT mark lands in NotAt instead; see Update.
type Belief struct {
	Known   [wordLen]byte
	Present [26]bool
	Absent  [26]bool
	NotAt   [26][wordLen]bool
}

// Update folds one guess and its feedback into a copy of b.
//
// Duplicate letters: an absent mark for a letter that is also marked
// correct/present in the same guess (or already known present) only rules
// out that position. Marking it globally absent would drop the real target.
func (b Belief) Update(guess string, fb game.Feedback) Belief {
	n := min(len(guess), len(fb), wordLen)

	var marked [26]bool
	for i := 0; i < n; i++ {
		c, ok := letter(guess[i])
		if !ok {
			continue
		}
		switch fb[i] {
		case game.StatusCorrect:
			b.Known[i] = guess[i]
			b.Present[c] = true
			marked[c] = true
		case game.StatusPresent:
			b.Present[c] = true
			b.NotAt[c][i] = true
			marked[c] = true
		}
	}
	for i := 0; i < n; i++ {
		c, ok := letter(guess[i])
		if !ok || fb[i] != game.StatusAbsent {
			continue
		}
		if marked[c] || b.Present[c] {
			b.NotAt[c][i] = true
		} else {
			b.Absent[c] = true
		}
	}
	return b
}

// Allows reports whether w satisfies every constraint in b.
func (b Belief) Allows(w string) bool {
	if len(w) != wordLen {
		return false
	}
	var has [26]bool
	for i := 0; i < wordLen; i++ {
		c, ok := letter(w[i])
		if !ok {
			return false
		}
		if b.Known[i] != 0 && w[i] != b.Known[i] {
			return false
		}
		if b.Absent[c] || b.NotAt[c][i] {
			return false
		}
		has[c] = true
	}
	for c := range b.Present {
		if b.Present[c] && !has[c] {
			return false
		}
	}
	return true
}

// ConfirmedCount is the number of distinct letters known to be in the word
// (correct or present).
func (b Belief) ConfirmedCount() int {
	n := 0
	for _, p := range b.Present {
		if p {
			n++
		}
	}
	return n
}

// Zero reports whether nothing has been learned yet.
func (b Belief) Zero() bool { return b == Belief{} }

func letter(c byte) (int, bool) {
	if c < 'A' || c > 'Z' {
		return 0, false
	}
	return int(c - 'A'), true
}
