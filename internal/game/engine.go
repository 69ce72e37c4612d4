// apps/versus-server/internal/game/engine.go
//
// Guess evaluation. Evaluate is the single scoring routine used by human
// games, the AI game loop, and the AI's own look-ahead.
//
// Notes:
//   - Inputs are upper-case words of equal length; validation happens before
//     this point (see words.ValidateGuess).
//   - A length mismatch is a programming error and panics.

package game

import "fmt"

// Evaluate scores guess against target using the classic two-pass algorithm.
//
// Pass 1:
//   - Mark exact matches as correct.
//   - Count the remaining (non-correct) target letters.
//
// Pass 2:
//   - For each non-correct guess letter: if there is remaining count for that
//     letter, mark present and decrement; otherwise absent.
//
// The number of correct+present marks for a letter never exceeds its
// occurrences in target.
func Evaluate(guess, target string) Feedback {
	n := len(target)
	if len(guess) != n {
		panic(fmt.Sprintf("game: evaluate length mismatch: guess %q (%d) vs target (%d)", guess, len(guess), n))
	}
	res := make(Feedback, n)

	// Letter frequency for the non-correct target positions (A–Z).
	var counts [26]int

	for i := 0; i < n; i++ {
		if guess[i] == target[i] {
			res[i] = StatusCorrect
		} else if j := idx(target[i]); j >= 0 {
			counts[j]++
		}
	}

	for i := 0; i < n; i++ {
		if res[i] == StatusCorrect {
			continue
		}
		if j := idx(guess[i]); j >= 0 && counts[j] > 0 {
			res[i] = StatusPresent
			counts[j]--
		} else {
			res[i] = StatusAbsent
		}
	}
	return res
}

// idx maps an upper-case ASCII letter to 0..25, anything else to -1.
func idx(c byte) int {
	if c < 'A' || c > 'Z' {
		return -1
	}
	return int(c - 'A')
}
