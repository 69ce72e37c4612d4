// apps/versus-server/internal/versus/match.go
//
// One human-vs-AI race on a shared target.
//
//   countdown ──(Countdown elapses)──▶ playing ──▶ finished
//
// Both sides start together when the countdown ends. The match finishes as
// soon as Decide names a winner, or when the time limit expires (tie).
//
// Lock order: Match.mu may be held while reading the controller, never while
// calling Start or Finish on it (those emit back into aiChanged).

package versus

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/ai"
	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
	"github.com/robalobadob/wordle/apps/versus-server/internal/metrics"
	"github.com/robalobadob/wordle/apps/versus-server/internal/solver"
)

var (
	ErrNotStarted = errors.New("match has not started")
	ErrMatchOver  = errors.New("match is over")
)

// Phase of a match.
type Phase string

const (
	PhaseCountdown Phase = "countdown"
	PhasePlaying   Phase = "playing"
	PhaseFinished  Phase = "finished"
)

// Winner of a match. The empty value means undecided.
type Winner string

const (
	WinnerNone   Winner = ""
	WinnerPlayer Winner = "player"
	WinnerAI     Winner = "ai"
	WinnerTie    Winner = "tie"
)

// Decide applies the race rules to the two sides' current state.
// An AI that errored or was cancelled counts as having lost.
func Decide(human game.Phase, humanGuesses int, bot ai.Phase, botGuesses int) Winner {
	hWon, hLost := human == game.PhaseWon, human == game.PhaseLost
	aWon := bot == ai.PhaseWon
	aLost := bot.Terminal() && !aWon

	switch {
	case hWon && aWon:
		switch {
		case humanGuesses < botGuesses:
			return WinnerPlayer
		case botGuesses < humanGuesses:
			return WinnerAI
		}
		return WinnerTie
	case hWon:
		return WinnerPlayer
	case aWon:
		return WinnerAI
	case hLost && aLost:
		return WinnerTie
	case hLost:
		return WinnerAI
	case aLost:
		return WinnerPlayer
	}
	return WinnerNone
}

// Settings control match timing.
type Settings struct {
	Countdown time.Duration
	Duration  time.Duration
	AI        []ai.Option // applied to every controller
	Clock     game.Clock
}

// DefaultSettings: 3 s countdown, 2 min race.
func DefaultSettings() Settings {
	return Settings{Countdown: 3 * time.Second, Duration: 2 * time.Minute}
}

// PlayerView is the human side of a snapshot.
type PlayerView struct {
	Guesses  []string               `json:"guesses"`
	Feedback []game.Feedback        `json:"feedback"`
	Keys     map[string]game.Status `json:"keys"`
	Phase    game.Phase             `json:"phase"`
}

// AIView is the AI side of a snapshot. Guess letters stay hidden until the
// match is finished; only the colours are shown.
type AIView struct {
	Guesses    []string        `json:"guesses"`
	Feedback   []game.Feedback `json:"feedback"`
	Phase      ai.Phase        `json:"phase"`
	Status     string          `json:"status"`
	IsThinking bool            `json:"isThinking"`
	Remaining  int             `json:"remaining"`
}

// Snapshot is what clients see.
type Snapshot struct {
	ID         string            `json:"id"`
	Difficulty solver.Difficulty `json:"difficulty"`
	Phase      Phase             `json:"phase"`
	Winner     Winner            `json:"winner,omitempty"`
	StartsAt   int64             `json:"startsAt"` // unix ms
	EndsAt     int64             `json:"endsAt"`   // unix ms
	Player     PlayerView        `json:"player"`
	AI         AIView            `json:"ai"`
	Target     string            `json:"target,omitempty"` // revealed when finished
	Seq        uint64            `json:"seq"`
}

// Match is a single race. Create it through a Registry.
type Match struct {
	mu sync.Mutex

	id         string
	owner      string
	difficulty solver.Difficulty
	settings   Settings
	human      *game.Game
	bot        *ai.Controller

	phase      Phase
	winner     Winner
	startsAt   time.Time
	endsAt     time.Time
	finishedAt time.Time
	timers     []*time.Timer
	seq        uint64

	publish  func(Snapshot)
	onFinish func(m *Match)
}

// ID identifies the match.
func (m *Match) ID() string { return m.id }

// Owner is the identity that created the match ("" for guests).
func (m *Match) Owner() string { return m.owner }

// start arms the countdown. Called once by the registry.
func (m *Match) start() {
	m.mu.Lock()
	now := m.settings.Clock()
	m.startsAt = now.Add(m.settings.Countdown)
	m.endsAt = m.startsAt.Add(m.settings.Duration)
	m.timers = append(m.timers, time.AfterFunc(m.settings.Countdown, m.begin))
	snap := m.changedLocked()
	m.mu.Unlock()

	m.emit(snap)
}

func (m *Match) begin() {
	m.mu.Lock()
	if m.phase != PhaseCountdown {
		m.mu.Unlock()
		return
	}
	m.phase = PhasePlaying
	if m.settings.Duration > 0 {
		m.timers = append(m.timers, time.AfterFunc(m.settings.Duration, m.expire))
	}
	snap := m.changedLocked()
	m.mu.Unlock()

	log.Info().Str("match", m.id).Str("difficulty", string(m.difficulty)).Msg("match started")
	m.emit(snap)
	m.bot.Start()
}

// Guess submits the human's next guess.
func (m *Match) Guess(guess string) (game.Feedback, Snapshot, error) {
	m.mu.Lock()
	switch m.phase {
	case PhaseCountdown:
		m.mu.Unlock()
		return nil, m.Snapshot(), ErrNotStarted
	case PhaseFinished:
		m.mu.Unlock()
		return nil, m.Snapshot(), ErrMatchOver
	}
	fb, _, err := m.human.ApplyGuess(guess)
	if err != nil {
		m.mu.Unlock()
		return nil, m.Snapshot(), err
	}
	metrics.GuessesTotal.WithLabelValues("human").Inc()

	bot := m.bot.Snapshot()
	finished := m.decideLocked(bot.Phase, len(bot.Guesses))
	snap := m.changedLocked()
	m.mu.Unlock()

	m.emit(snap)
	if finished {
		m.settle()
	}
	return fb, snap, nil
}

// aiChanged receives every controller change.
func (m *Match) aiChanged(s ai.Snapshot) {
	m.mu.Lock()
	finished := false
	if m.phase == PhasePlaying && s.Phase.Terminal() {
		finished = m.decideLocked(s.Phase, len(s.Guesses))
	}
	snap := m.changedLocked()
	m.mu.Unlock()

	m.emit(snap)
	if finished {
		m.settle()
	}
}

func (m *Match) expire() {
	m.mu.Lock()
	if m.phase != PhasePlaying {
		m.mu.Unlock()
		return
	}
	m.human.Expire()
	m.finishLocked(WinnerTie)
	snap := m.changedLocked()
	m.mu.Unlock()

	log.Info().Str("match", m.id).Msg("match time limit reached")
	m.emit(snap)
	m.settle()
}

// Close abandons the match without running the finish hook. No-op once
// finished.
func (m *Match) Close() {
	m.mu.Lock()
	if m.phase == PhaseFinished {
		m.mu.Unlock()
		return
	}
	m.human.Expire()
	m.finishLocked(WinnerTie)
	snap := m.changedLocked()
	m.mu.Unlock()

	m.bot.Cancel()
	m.emit(snap)
}

// settle notifies the AI of the verdict and runs the finish hook.
func (m *Match) settle() {
	m.mu.Lock()
	w := m.winner
	m.mu.Unlock()

	switch w {
	case WinnerAI:
		m.bot.Finish(ai.OutcomeWon)
	case WinnerPlayer:
		m.bot.Finish(ai.OutcomeLost)
	default:
		m.bot.Finish(ai.OutcomeTied)
	}
	if m.onFinish != nil {
		m.onFinish(m)
	}
}

// decideLocked finishes the match if the rules name a winner.
func (m *Match) decideLocked(bot ai.Phase, botGuesses int) bool {
	if m.phase != PhasePlaying {
		return false
	}
	w := Decide(m.human.Phase, len(m.human.Guesses), bot, botGuesses)
	if w == WinnerNone {
		return false
	}
	m.finishLocked(w)
	return true
}

func (m *Match) finishLocked(w Winner) {
	for _, t := range m.timers {
		t.Stop()
	}
	m.timers = nil
	m.phase = PhaseFinished
	m.winner = w
	m.finishedAt = m.settings.Clock()
	metrics.MatchesActive.Dec()
	metrics.GamesFinished.WithLabelValues("versus", string(w)).Inc()
	log.Info().Str("match", m.id).Str("winner", string(w)).Int("guesses", len(m.human.Guesses)).Msg("match finished")
}

// Result is the human's game record once their game is over.
func (m *Match) Result() (game.Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.human.Result()
}

// finishedBefore reports whether the match ended before cutoff.
func (m *Match) finishedBefore(cutoff time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase == PhaseFinished && m.finishedAt.Before(cutoff)
}

// Snapshot returns the current client view.
func (m *Match) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Match) changedLocked() Snapshot {
	m.seq++
	return m.snapshotLocked()
}

func (m *Match) snapshotLocked() Snapshot {
	bot := m.bot.Snapshot()
	s := Snapshot{
		ID:         m.id,
		Difficulty: m.difficulty,
		Phase:      m.phase,
		Winner:     m.winner,
		StartsAt:   m.startsAt.UnixMilli(),
		EndsAt:     m.endsAt.UnixMilli(),
		Player: PlayerView{
			Guesses:  append([]string{}, m.human.Guesses...),
			Feedback: append([]game.Feedback{}, m.human.Feedback...),
			Keys:     m.human.Keys.Export(),
			Phase:    m.human.Phase,
		},
		AI: AIView{
			Guesses:    make([]string, len(bot.Guesses)),
			Feedback:   make([]game.Feedback, len(bot.Guesses)),
			Phase:      bot.Phase,
			Status:     bot.Status,
			IsThinking: bot.IsThinking,
			Remaining:  bot.Remaining,
		},
		Seq: m.seq,
	}
	for i, t := range bot.Guesses {
		s.AI.Feedback[i] = t.Feedback
		if m.phase == PhaseFinished {
			s.AI.Guesses[i] = t.Guess
		}
	}
	if m.phase == PhaseFinished {
		s.Target = m.human.Target
	}
	return s
}

func (m *Match) emit(s Snapshot) {
	if m.publish != nil {
		m.publish(s)
	}
}
