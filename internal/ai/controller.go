// apps/versus-server/internal/ai/controller.go
//
// AI player state machine.
//
//   idle ──Start──▶ playing ──▶ won | lost
//                     │
//                     ├──Finish──▶ won | lost (tie counts as lost)
//                     ├──Cancel──▶ cancelled
//                     └──panic / bad guess──▶ errored
//
// Each guess is one timer tick (time.AfterFunc). The tick selects, evaluates
// and filters outside the lock, then commits under the lock only if the
// generation it started with is still current. Finish, Cancel and Reset bump
// the generation, so an in-flight guess is silently discarded.
//
// A busy flag allows one guess computation at a time; a tick that arrives
// while one is running is a no-op.

package ai

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
	"github.com/robalobadob/wordle/apps/versus-server/internal/metrics"
	"github.com/robalobadob/wordle/apps/versus-server/internal/solver"
)

var (
	ErrEmptyPool   = errors.New("ai: word pool is empty")
	ErrNoTarget    = errors.New("ai: target word is empty")
	ErrGuessFailed = errors.New("ai: guess computation failed")
)

// Phase is the controller lifecycle. Everything except idle and playing is terminal.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhasePlaying   Phase = "playing"
	PhaseWon       Phase = "won"
	PhaseLost      Phase = "lost"
	PhaseCancelled Phase = "cancelled"
	PhaseErrored   Phase = "errored"
)

// Terminal reports whether no further guesses can happen in p.
func (p Phase) Terminal() bool {
	return p != PhaseIdle && p != PhasePlaying
}

// Outcome is an external verdict passed to Finish.
type Outcome string

const (
	OutcomeWon  Outcome = "won"
	OutcomeLost Outcome = "lost"
	OutcomeTied Outcome = "tied"
)

// Turn is one AI guess and its feedback.
type Turn struct {
	Guess    string        `json:"guess"`
	Feedback game.Feedback `json:"feedback"`
}

// Snapshot is a consistent read of the controller's observable state.
type Snapshot struct {
	ID              string            `json:"id"`
	Difficulty      solver.Difficulty `json:"difficulty"`
	Phase           Phase             `json:"phase"`
	Status          string            `json:"status"`
	Guesses         []Turn            `json:"guesses"`
	IsThinking      bool              `json:"isThinking"`
	LastGuessStatus game.Feedback     `json:"lastGuessStatus,omitempty"`
	Remaining       int               `json:"remaining"`
	Error           string            `json:"error,omitempty"`
	Seq             uint64            `json:"seq"` // increases with every change
}

// Controller plays one game at a time against a fixed target.
type Controller struct {
	mu sync.Mutex

	id         string
	difficulty solver.Difficulty
	target     string
	limits     solver.Limits
	pacing     Pacing
	onChange   func(Snapshot)

	rng      *rand.Rand // seeds and jitter; guarded by mu
	selector *solver.Selector
	filter   *solver.CandidateFilter
	compute  computeFunc

	phase   Phase
	turns   []Turn
	pending bool // a tick is scheduled
	busy    bool // a tick is computing
	gen     uint64
	timer   *time.Timer
	err     error
	done    chan struct{}
	seq     uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithSeed makes selection and jitter reproducible.
func WithSeed(seed uint64) Option {
	return func(c *Controller) { c.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithPacing overrides the thinking-time model.
func WithPacing(p Pacing) Option { return func(c *Controller) { c.pacing = p } }

// WithLimits overrides the selector sample caps.
func WithLimits(l solver.Limits) Option { return func(c *Controller) { c.limits = l } }

// WithOnChange registers a callback invoked (outside the lock) after every
// state change. It must not block for long.
func WithOnChange(fn func(Snapshot)) Option { return func(c *Controller) { c.onChange = fn } }

// New creates an idle controller for difficulty over pool, playing against
// target. It does not call the OnChange callback; the caller may not have
// stored the controller yet.
func New(d solver.Difficulty, pool []string, target string, opts ...Option) (*Controller, error) {
	c := &Controller{
		id:      uuid.NewString(),
		target:  strings.ToUpper(strings.TrimSpace(target)),
		limits:  solver.DefaultLimits,
		pacing:  DefaultPacing(),
		compute: compute,
	}
	for _, o := range opts {
		o(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if c.target == "" {
		return nil, ErrNoTarget
	}
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	c.difficulty = d
	c.resetLocked(pool)
	return c, nil
}

// ID identifies the controller in logs and snapshots.
func (c *Controller) ID() string { return c.id }

// Initialize discards any game in progress and returns to idle with a fresh
// belief over pool.
func (c *Controller) Initialize(d solver.Difficulty, pool []string) error {
	if len(pool) == 0 {
		return ErrEmptyPool
	}
	c.mu.Lock()
	c.difficulty = d
	c.resetLocked(pool)
	snap := c.changedLocked()
	c.mu.Unlock()

	c.emit(snap)
	return nil
}

// Reset starts over with a new target. A nil pool keeps the current word list.
func (c *Controller) Reset(pool []string, target string) error {
	target = strings.ToUpper(strings.TrimSpace(target))
	if target == "" {
		return ErrNoTarget
	}
	c.mu.Lock()
	if pool == nil {
		pool = c.filter.Full()
	}
	if len(pool) == 0 {
		c.mu.Unlock()
		return ErrEmptyPool
	}
	c.target = target
	c.resetLocked(pool)
	snap := c.changedLocked()
	c.mu.Unlock()

	c.emit(snap)
	return nil
}

func (c *Controller) resetLocked(pool []string) {
	c.stopLocked()
	c.filter = solver.NewCandidateFilter(pool)
	c.selector = solver.NewSelector(c.limits, rand.New(rand.NewPCG(c.rng.Uint64(), c.rng.Uint64())))
	c.phase = PhaseIdle
	c.turns = nil
	c.err = nil
	c.done = make(chan struct{})
}

// Start moves idle → playing and schedules the first guess. No-op otherwise.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.phase != PhaseIdle {
		c.mu.Unlock()
		return
	}
	c.phase = PhasePlaying
	c.scheduleLocked(c.pacing.StartDelay + c.thinkLocked())
	snap := c.changedLocked()
	c.mu.Unlock()

	log.Info().Str("ai", c.id).Str("difficulty", string(snap.Difficulty)).Msg("ai started")
	c.emit(snap)
}

// Finish applies an external verdict. A tie counts as a loss. Pending or
// in-flight guesses are discarded. No-op once terminal.
func (c *Controller) Finish(o Outcome) {
	p := PhaseLost
	if o == OutcomeWon {
		p = PhaseWon
	}
	c.terminate(p)
}

// Cancel stops the game without a verdict. No-op once terminal.
func (c *Controller) Cancel() { c.terminate(PhaseCancelled) }

func (c *Controller) terminate(p Phase) {
	c.mu.Lock()
	if c.phase.Terminal() {
		c.mu.Unlock()
		return
	}
	c.stopLocked()
	c.finishLocked(p, nil)
	snap := c.changedLocked()
	c.mu.Unlock()

	c.emit(snap)
}

// Snapshot returns the observable state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Done is closed when the current game reaches a terminal phase. Reset and
// Initialize install a new channel.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Err is the failure that put the controller into the errored phase.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// ----------------------------- guess loop ----------------------------------

func (c *Controller) scheduleLocked(d time.Duration) {
	gen := c.gen
	c.pending = true
	c.timer = time.AfterFunc(d, func() { c.tick(gen) })
}

// stopLocked cancels any scheduled tick and invalidates in-flight work.
func (c *Controller) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
	c.pending = false
	c.busy = false
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.phase != PhasePlaying || c.busy {
		c.mu.Unlock()
		return
	}
	c.busy = true
	c.pending = false
	sel, f, run := c.selector, c.filter.Clone(), c.compute
	d, target, first := c.difficulty, c.target, len(c.turns) == 0
	c.mu.Unlock()

	began := time.Now()
	turn, next, err := run(sel, f, d, target, first)
	metrics.AIDecisionSeconds.WithLabelValues(string(d)).Observe(time.Since(began).Seconds())

	c.mu.Lock()
	if gen != c.gen {
		// finished, cancelled or reset while thinking
		c.mu.Unlock()
		return
	}
	c.busy = false
	if err != nil {
		log.Error().Err(err).Str("ai", c.id).Msg("ai guess failed")
		c.finishLocked(PhaseErrored, err)
		snap := c.changedLocked()
		c.mu.Unlock()
		c.emit(snap)
		return
	}

	c.turns = append(c.turns, turn)
	c.filter = next
	metrics.GuessesTotal.WithLabelValues("ai").Inc()
	log.Debug().Str("ai", c.id).Str("guess", turn.Guess).Str("feedback", turn.Feedback.String()).
		Int("remaining", len(next.Candidates())).Msg("ai guess")

	switch {
	case turn.Feedback.Solved():
		c.finishLocked(PhaseWon, nil)
	case len(c.turns) >= game.MaxGuesses:
		c.finishLocked(PhaseLost, nil)
	default:
		c.scheduleLocked(c.pacing.Pause + c.thinkLocked())
	}
	snap := c.changedLocked()
	c.mu.Unlock()

	c.emit(snap)
}

type computeFunc func(sel *solver.Selector, f *solver.CandidateFilter, d solver.Difficulty, target string, first bool) (Turn, *solver.CandidateFilter, error)

// compute runs one selection on a private copy of the filter. Panics are
// reported as ErrGuessFailed.
func compute(sel *solver.Selector, f *solver.CandidateFilter, d solver.Difficulty, target string, first bool) (turn Turn, next *solver.CandidateFilter, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrGuessFailed, r)
		}
	}()
	g := sel.SelectNext(f.Belief(), f.Candidates(), f.Full(), d, first)
	if len(g) != len(target) {
		return Turn{}, nil, fmt.Errorf("%w: selected %q for a %d-letter target", ErrGuessFailed, g, len(target))
	}
	fb := game.Evaluate(g, target)
	f.UpdateFromFeedback(g, fb)
	return Turn{Guess: g, Feedback: fb}, f, nil
}

func (c *Controller) finishLocked(p Phase, err error) {
	c.phase = p
	c.err = err
	c.pending = false
	c.busy = false
	close(c.done)
	if p != PhaseCancelled {
		metrics.GamesFinished.WithLabelValues("ai", string(p)).Inc()
	}
	log.Info().Str("ai", c.id).Str("phase", string(p)).Int("guesses", len(c.turns)).Msg("ai finished")
}

func (c *Controller) thinkLocked() time.Duration {
	return c.pacing.think(c.difficulty, c.rng)
}

// changedLocked records a state change and returns the new snapshot.
func (c *Controller) changedLocked() Snapshot {
	c.seq++
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		Seq:        c.seq,
		ID:         c.id,
		Difficulty: c.difficulty,
		Phase:      c.phase,
		Guesses:    append([]Turn(nil), c.turns...),
		IsThinking: c.phase == PhasePlaying && (c.pending || c.busy),
		Remaining:  len(c.filter.Candidates()),
	}
	if n := len(c.turns); n > 0 {
		s.LastGuessStatus = c.turns[n-1].Feedback
	}
	if c.err != nil {
		s.Error = c.err.Error()
	}
	s.Status = statusText(s)
	return s
}

func statusText(s Snapshot) string {
	switch s.Phase {
	case PhaseWon:
		return "Won!"
	case PhaseLost:
		return "Lost"
	case PhaseErrored:
		return "Error"
	case PhaseCancelled:
		return "Cancelled"
	case PhasePlaying:
		if s.IsThinking {
			return "Thinking..."
		}
	}
	if len(s.Guesses) == 0 {
		return "Ready"
	}
	return fmt.Sprintf("%d words left", s.Remaining)
}

func (c *Controller) emit(s Snapshot) {
	if c.onChange != nil {
		c.onChange(s)
	}
}
