package solver

import (
	"github.com/samber/lo"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
)

// Filter returns the words of pool allowed by b, in pool order.
// The input slice is never modified.
func Filter(pool []string, b Belief) []string {
	return lo.Filter(pool, func(w string, _ int) bool { return b.Allows(w) })
}

// CandidateFilter tracks the belief and the shrinking candidate pool for
// one game. Not safe for concurrent use; the owning controller serializes
// access.
type CandidateFilter struct {
	full   []string
	pool   []string
	belief Belief
}

// NewCandidateFilter starts from the full word list.
func NewCandidateFilter(full []string) *CandidateFilter {
	f := &CandidateFilter{}
	f.Reset(full)
	return f
}

// UpdateFromFeedback folds the feedback into the belief and narrows the pool.
// The pool never grows; it may become empty.
func (f *CandidateFilter) UpdateFromFeedback(guess string, fb game.Feedback) {
	f.belief = f.belief.Update(guess, fb)
	f.pool = Filter(f.pool, f.belief)
}

// Reset restores the full list and forgets everything learned.
func (f *CandidateFilter) Reset(full []string) {
	f.full = append([]string(nil), full...)
	f.pool = f.full
	f.belief = Belief{}
}

// Clone returns an independent filter with the same state. The word slices
// are shared; they are never written in place.
func (f *CandidateFilter) Clone() *CandidateFilter {
	c := *f
	return &c
}

// Candidates is the current pool. Callers must not modify it.
func (f *CandidateFilter) Candidates() []string { return f.pool }

// Full is the word list the game started with.
func (f *CandidateFilter) Full() []string { return f.full }

// Belief returns the current belief by value.
func (f *CandidateFilter) Belief() Belief { return f.belief }
