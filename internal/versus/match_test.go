package versus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/versus-server/internal/ai"
	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
	"github.com/robalobadob/wordle/apps/versus-server/internal/solver"
)

func TestDecide(t *testing.T) {
	cases := []struct {
		name   string
		human  game.Phase
		hn     int
		bot    ai.Phase
		an     int
		winner Winner
	}{
		{"both won, human fewer", game.PhaseWon, 3, ai.PhaseWon, 4, WinnerPlayer},
		{"both won, ai fewer", game.PhaseWon, 4, ai.PhaseWon, 2, WinnerAI},
		{"both won, same count", game.PhaseWon, 3, ai.PhaseWon, 3, WinnerTie},
		{"human won first", game.PhaseWon, 5, ai.PhasePlaying, 2, WinnerPlayer},
		{"ai won first", game.PhasePlaying, 2, ai.PhaseWon, 5, WinnerAI},
		{"both lost", game.PhaseLost, 6, ai.PhaseLost, 6, WinnerTie},
		{"human lost, ai playing", game.PhaseLost, 6, ai.PhasePlaying, 3, WinnerAI},
		{"ai lost, human playing", game.PhasePlaying, 2, ai.PhaseLost, 6, WinnerPlayer},
		{"ai errored", game.PhasePlaying, 1, ai.PhaseErrored, 0, WinnerPlayer},
		{"undecided", game.PhasePlaying, 2, ai.PhasePlaying, 2, WinnerNone},
		{"undecided before start", game.PhasePlaying, 0, ai.PhaseIdle, 0, WinnerNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.winner, Decide(tc.human, tc.hn, tc.bot, tc.an))
		})
	}
}

type finishLog struct {
	mu      sync.Mutex
	owners  []string
	results []game.Result
}

func (f *finishLog) hook(owner string, r game.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owners = append(f.owners, owner)
	f.results = append(f.results, r)
}

func (f *finishLog) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.results)
}

func settings(p ai.Pacing) Settings {
	return Settings{Duration: time.Minute, AI: []ai.Option{ai.WithPacing(p), ai.WithSeed(7)}}
}

func waitPhase(t *testing.T, m *Match, p Phase) Snapshot {
	t.Helper()
	require.Eventually(t, func() bool { return m.Snapshot().Phase == p }, 5*time.Second, 5*time.Millisecond)
	return m.Snapshot()
}

func TestAIWinsRace(t *testing.T) {
	fl := &finishLog{}
	r := NewRegistry(settings(ai.Pacing{}), WithFinishHook(fl.hook))
	m, err := r.Create("ann@x.io", solver.Medium, []string{"RULES"}, "RULES", nil)
	require.NoError(t, err)

	s := waitPhase(t, m, PhaseFinished)
	assert.Equal(t, WinnerAI, s.Winner)
	assert.Equal(t, ai.PhaseWon, s.AI.Phase)
	assert.Equal(t, []string{"RULES"}, s.AI.Guesses)
	assert.Equal(t, "RULES", s.Target)

	_, _, err = m.Guess("RULES")
	assert.ErrorIs(t, err, ErrMatchOver)
	assert.Zero(t, fl.len(), "human game never ended")
}

func TestHumanWinsRace(t *testing.T) {
	fl := &finishLog{}
	var mu sync.Mutex
	var seen []Snapshot
	r := NewRegistry(settings(ai.Pacing{StartDelay: time.Hour}),
		WithFinishHook(fl.hook),
		WithPublisher(func(s Snapshot) {
			mu.Lock()
			seen = append(seen, s)
			mu.Unlock()
		}))
	m, err := r.Create("ann@x.io", solver.Hard, []string{"CRANE", "RULES"}, "rules", nil)
	require.NoError(t, err)
	waitPhase(t, m, PhasePlaying)

	fb, s, err := m.Guess("crane")
	require.NoError(t, err)
	assert.False(t, fb.Solved())
	assert.Equal(t, PhasePlaying, s.Phase)
	assert.Empty(t, s.Target)

	_, s, err = m.Guess("RULES")
	require.NoError(t, err)
	assert.Equal(t, PhaseFinished, s.Phase)
	assert.Equal(t, WinnerPlayer, s.Winner)
	assert.Equal(t, game.PhaseWon, s.Player.Phase)

	require.Eventually(t, func() bool { return m.Snapshot().AI.Phase == ai.PhaseLost }, time.Second, 5*time.Millisecond)
	require.Equal(t, 1, fl.len())
	assert.Equal(t, "ann@x.io", fl.owners[0])
	assert.Equal(t, 2, fl.results[0].Attempts)
	assert.True(t, fl.results[0].Won())

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	assert.Equal(t, PhaseCountdown, seen[0].Phase)
}

func TestAIGuessesHiddenWhilePlaying(t *testing.T) {
	r := NewRegistry(settings(ai.Pacing{Pause: time.Hour}))
	m, err := r.Create("", solver.Easy, []string{"CRANE"}, "RULES", nil)
	require.NoError(t, err)
	t.Cleanup(m.Close)

	require.Eventually(t, func() bool { return len(m.Snapshot().AI.Feedback) == 1 }, 5*time.Second, 5*time.Millisecond)
	s := m.Snapshot()
	assert.Equal(t, PhasePlaying, s.Phase)
	assert.Equal(t, []string{""}, s.AI.Guesses)
	assert.Equal(t, "-Y--Y", s.AI.Feedback[0].String())
}

func TestCountdownAndClose(t *testing.T) {
	s := settings(ai.Pacing{})
	s.Countdown = time.Hour
	r := NewRegistry(s)
	m, err := r.Create("", solver.Medium, []string{"RULES"}, "RULES", nil)
	require.NoError(t, err)

	_, snap, err := m.Guess("RULES")
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.Equal(t, PhaseCountdown, snap.Phase)
	assert.Equal(t, time.Minute.Milliseconds(), snap.EndsAt-snap.StartsAt)

	r.Close()
	snap = m.Snapshot()
	assert.Equal(t, PhaseFinished, snap.Phase)
	assert.Equal(t, WinnerTie, snap.Winner)
	assert.Equal(t, ai.PhaseCancelled, snap.AI.Phase)

	assert.Equal(t, 1, r.Prune(time.Now().Add(time.Second)))
	_, err = r.Get(m.ID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTimeLimitIsATie(t *testing.T) {
	s := settings(ai.Pacing{StartDelay: time.Hour})
	s.Duration = 20 * time.Millisecond
	fl := &finishLog{}
	r := NewRegistry(s, WithFinishHook(fl.hook))
	m, err := r.Create("bob", solver.Medium, []string{"RULES"}, "RULES", nil)
	require.NoError(t, err)

	snap := waitPhase(t, m, PhaseFinished)
	assert.Equal(t, WinnerTie, snap.Winner)
	assert.Equal(t, game.PhaseLost, snap.Player.Phase)
	require.Eventually(t, func() bool { return fl.len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, game.MaxGuesses, fl.results[0].Attempts)
}

func TestCreateRejectsEmptyPool(t *testing.T) {
	r := NewRegistry(DefaultSettings())
	_, err := r.Create("", solver.Medium, nil, "RULES", nil)
	assert.ErrorIs(t, err, ai.ErrEmptyPool)
	assert.Zero(t, r.Len())
}

func TestCreateThenSnapshot(t *testing.T) {
	r := NewRegistry(DefaultSettings())
	t.Cleanup(r.Close)
	m, err := r.Create("", solver.Medium, []string{"RULES"}, "RULES", nil)
	require.NoError(t, err)

	s := m.Snapshot()
	assert.Equal(t, PhaseCountdown, s.Phase)
	assert.Equal(t, ai.PhaseIdle, s.AI.Phase)
	assert.Equal(t, "Ready", s.AI.Status)
	assert.Equal(t, 1, s.AI.Remaining)
	assert.Equal(t, 1, r.Len())
}
