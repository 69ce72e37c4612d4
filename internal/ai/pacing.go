package ai

import (
	"math/rand/v2"
	"time"

	"github.com/robalobadob/wordle/apps/versus-server/internal/solver"
)

// Pacing is the cosmetic "thinking" model. It never affects which guess is
// chosen. The zero value plays instantly.
type Pacing struct {
	StartDelay time.Duration                       // before the first guess
	Pause      time.Duration                       // between guesses
	Jitter     time.Duration                       // uniform extra in [0, Jitter)
	Base       map[solver.Difficulty]time.Duration // per-tier thinking time
}

// DefaultPacing: easy thinks slowest, hard fastest.
func DefaultPacing() Pacing {
	return Pacing{
		StartDelay: time.Second,
		Pause:      500 * time.Millisecond,
		Jitter:     time.Second,
		Base: map[solver.Difficulty]time.Duration{
			solver.Easy:   2500 * time.Millisecond,
			solver.Medium: 2000 * time.Millisecond,
			solver.Hard:   1500 * time.Millisecond,
		},
	}
}

func (p Pacing) think(d solver.Difficulty, rng *rand.Rand) time.Duration {
	t, ok := p.Base[d]
	if !ok {
		t = p.Base[solver.Medium]
	}
	if p.Jitter > 0 {
		t += time.Duration(rng.Int64N(int64(p.Jitter)))
	}
	return t
}
