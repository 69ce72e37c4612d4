// apps/versus-server/internal/solver/selector.go
//
// Guess selection policy, per difficulty tier.
//
//   - First guess: a curated opener present in the full pool, else random.
//   - Empty candidate pool: random word from the full pool.
//   - Easy:   EasyRandomRate chance of a random candidate, otherwise Medium.
//   - Medium: letter-frequency pick over the first MediumSample candidates
//             while fewer than 2 letters are confirmed, else the first
//             candidate.
//   - Hard:   ≤2 candidates → first; otherwise minimax (smallest worst-case
//             partition) over the first HardSample candidates.
//
// Pool order is meaningful: ties always go to the earlier word.

package solver

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/samber/lo"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
)

// Difficulty is the AI strength tier.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty accepts easy|medium|hard (case-insensitive). Empty means medium.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Easy, Medium, Hard:
		return d, nil
	case "":
		return Medium, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
}

// Openers per tier.
var openers = map[Difficulty][]string{
	Easy:   {"AROSE", "ADIEU", "AUDIO", "ABOUT", "PLACE"},
	Medium: {"SLATE", "CRANE", "CRATE", "TRACE"},
	Hard:   {"SALET", "REAST", "CRATE", "TRACE", "SLATE"},
}

// Openers returns the curated first guesses for d.
func Openers(d Difficulty) []string {
	return append([]string(nil), openers[d]...)
}

// Limits bounds the work done per decision. A value ≤ 0 means "no cap".
type Limits struct {
	EasyRandomRate float64
	MediumSample   int
	HardSample     int
}

// DefaultLimits are the tuned defaults.
var DefaultLimits = Limits{EasyRandomRate: 0.30, MediumSample: 20, HardSample: 15}

// letter weights for the Medium scorer, most common first
var commonLetters = []byte("ETAOINSHR")

// Selector picks guesses. It owns its rng and is not safe for concurrent use.
type Selector struct {
	limits Limits
	rng    *rand.Rand
}

// NewSelector builds a selector; a nil rng gets a random seed.
func NewSelector(l Limits, rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Selector{limits: l, rng: rng}
}

// SelectNext returns the next guess. The result is always a member of full,
// or "" when full itself is empty.
func (s *Selector) SelectNext(b Belief, candidates, full []string, d Difficulty, first bool) string {
	if len(full) == 0 {
		return ""
	}
	if first {
		return s.opener(d, full)
	}
	if len(candidates) == 0 {
		return s.pick(full)
	}
	switch d {
	case Easy:
		if s.rng.Float64() < s.limits.EasyRandomRate {
			return s.pick(candidates)
		}
		return s.medium(b, candidates)
	case Hard:
		return s.hard(candidates)
	default:
		return s.medium(b, candidates)
	}
}

func (s *Selector) opener(d Difficulty, full []string) string {
	avail := lo.Filter(openers[d], func(w string, _ int) bool { return lo.Contains(full, w) })
	if len(avail) > 0 {
		return s.pick(avail)
	}
	return s.pick(full)
}

func (s *Selector) pick(ws []string) string { return ws[s.rng.IntN(len(ws))] }

func (s *Selector) medium(b Belief, candidates []string) string {
	if b.ConfirmedCount() >= 2 {
		return candidates[0]
	}
	best, bestScore := candidates[0], 0
	for _, w := range sample(candidates, s.limits.MediumSample) {
		if sc := letterScore(w); sc > bestScore {
			best, bestScore = w, sc
		}
	}
	return best
}

func (s *Selector) hard(candidates []string) string {
	if len(candidates) <= 2 {
		return candidates[0]
	}
	best, bestWorst := candidates[0], len(candidates)+1
	for _, g := range sample(candidates, s.limits.HardSample) {
		if w := WorstCase(g, candidates); w < bestWorst {
			best, bestWorst = g, w
		}
	}
	return best
}

// WorstCase partitions answers by the feedback pattern guess would produce
// against each of them and returns the size of the largest partition.
func WorstCase(guess string, answers []string) int {
	counts := make(map[int]int, len(answers))
	worst := 0
	for _, a := range answers {
		p := game.Evaluate(guess, a).Pattern()
		counts[p]++
		worst = max(worst, counts[p])
	}
	return worst
}

// letterScore sums the weights of the distinct common letters in w
// (E=9 down to R=1).
func letterScore(w string) int {
	var seen [26]bool
	score := 0
	for i := 0; i < len(w); i++ {
		c, ok := letter(w[i])
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		for j, cl := range commonLetters {
			if cl == w[i] {
				score += len(commonLetters) - j
				break
			}
		}
	}
	return score
}

func sample(ws []string, n int) []string {
	if n <= 0 || n >= len(ws) {
		return ws
	}
	return ws[:n]
}
