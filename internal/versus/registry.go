package versus

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/wordle/apps/versus-server/internal/ai"
	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
	"github.com/robalobadob/wordle/apps/versus-server/internal/metrics"
	"github.com/robalobadob/wordle/apps/versus-server/internal/solver"
)

var ErrNotFound = errors.New("match not found")

// Registry holds live matches in memory.
type Registry struct {
	mu       sync.RWMutex
	matches  map[string]*Match
	settings Settings
	publish  func(Snapshot)
	onFinish func(owner string, r game.Result)
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithPublisher receives every match snapshot (e.g. a websocket hub).
func WithPublisher(fn func(Snapshot)) RegistryOption {
	return func(r *Registry) { r.publish = fn }
}

// WithFinishHook is called once per match whose human game ended, with the
// match owner and the human's result.
func WithFinishHook(fn func(owner string, res game.Result)) RegistryOption {
	return func(r *Registry) { r.onFinish = fn }
}

// NewRegistry creates an empty registry.
func NewRegistry(s Settings, opts ...RegistryOption) *Registry {
	if s.Clock == nil {
		s.Clock = time.Now
	}
	r := &Registry{matches: make(map[string]*Match), settings: s}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Create starts a match for owner: the countdown begins immediately.
// dict, when non-nil, restricts the human's guesses to the word list.
func (r *Registry) Create(owner string, d solver.Difficulty, pool []string, target string, dict game.Dictionary) (*Match, error) {
	m := &Match{
		id:         uuid.NewString(),
		owner:      owner,
		difficulty: d,
		settings:   r.settings,
		phase:      PhaseCountdown,
		publish:    r.publish,
	}
	gopts := []game.Option{game.WithClock(r.settings.Clock)}
	if dict != nil {
		gopts = append(gopts, game.WithDictionary(dict))
	}
	m.human = game.New(target, gopts...)

	aopts := append(append([]ai.Option{}, r.settings.AI...), ai.WithOnChange(m.aiChanged))
	bot, err := ai.New(d, pool, target, aopts...)
	if err != nil {
		return nil, err
	}
	m.bot = bot
	m.onFinish = r.finished

	r.mu.Lock()
	r.matches[m.id] = m
	r.mu.Unlock()
	metrics.MatchesActive.Inc()

	m.start()
	return m, nil
}

func (r *Registry) finished(m *Match) {
	if r.onFinish == nil {
		return
	}
	if res, ok := m.Result(); ok {
		r.onFinish(m.owner, res)
	}
}

// Get returns a match by id.
func (r *Registry) Get(id string) (*Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.matches[id]; ok {
		return m, nil
	}
	return nil, ErrNotFound
}

// Prune drops matches that finished before cutoff. Returns how many.
func (r *Registry) Prune(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, m := range r.matches {
		if m.finishedBefore(cutoff) {
			delete(r.matches, id)
			n++
		}
	}
	return n
}

// Close abandons every live match.
func (r *Registry) Close() {
	r.mu.RLock()
	ms := make([]*Match, 0, len(r.matches))
	for _, m := range r.matches {
		ms = append(ms, m)
	}
	r.mu.RUnlock()
	for _, m := range ms {
		m.Close()
	}
}

// Len is the number of tracked matches.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matches)
}
