// apps/versus-server/internal/series/series.go
//
// Three-game series accumulation.
//
// A Store maps a player identity to that player's series list:
//   - at most one IN_PROGRESS series (created lazily on the first result),
//   - the best MaxSeriesPerPlayer COMPLETED series, best first.
//
// All functions are pure. AppendResult copies what it changes and never
// mutates its input store, so callers can keep the "before" store around for
// achievement deltas.

package series

import (
	"errors"

	"github.com/google/uuid"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
)

const (
	GamesPerSeries     = 3
	MaxSeriesPerPlayer = 3
)

var (
	ErrNoIdentity    = errors.New("series: identity is required")
	ErrInvalidResult = errors.New("series: invalid game result")
)

// Status of a series.
type Status string

const (
	InProgress Status = "IN_PROGRESS"
	Completed  Status = "COMPLETED"
)

// GameResult is the record of one finished game.
type GameResult = game.Result

// Series bundles up to GamesPerSeries consecutive games.
type Series struct {
	SeriesID      string       `json:"seriesId"`
	Games         []GameResult `json:"games"`
	TotalAttempts int          `json:"totalAttempts"`
	TotalTime     int          `json:"totalTime"`
	SeriesStatus  Status       `json:"seriesStatus"`
}

// Done reports whether the series is completed.
func (s Series) Done() bool { return s.SeriesStatus == Completed }

// Score is the series ranking key.
func (s Series) Score() Score { return Score{Attempts: s.TotalAttempts, Time: s.TotalTime} }

func (s Series) clone() Series {
	s.Games = append([]GameResult(nil), s.Games...)
	return s
}

// Score orders series: fewer attempts first, then less time. Lower is better.
type Score struct {
	Attempts int
	Time     int
}

// Less reports whether a is strictly better than b.
func (a Score) Less(b Score) bool {
	if a.Attempts != b.Attempts {
		return a.Attempts < b.Attempts
	}
	return a.Time < b.Time
}

// Value folds the score into one number for display (attempts*1000 + time).
func (a Score) Value() int { return a.Attempts*1000 + a.Time }

// Store is the per-identity series list.
type Store map[string][]Series

// Append is the outcome of AppendResult.
type Append struct {
	Store     Store
	Completed bool    // this call completed a series
	Series    *Series // copy of the series the result went into
}

// AppendResult adds r to identity's open series (creating one if needed).
// On the third game the series completes and identity's list is re-ranked,
// keeping the best MaxSeriesPerPlayer completed series plus any open ones.
func AppendResult(identity string, r GameResult, st Store) (Append, error) {
	if identity == "" {
		return Append{Store: st}, ErrNoIdentity
	}
	if r.Attempts <= 0 || r.TimeTaken < 0 || (r.Status != game.PhaseWon && r.Status != game.PhaseLost) {
		return Append{Store: st}, ErrInvalidResult
	}

	list := make([]Series, 0, len(st[identity])+1)
	for _, s := range st[identity] {
		list = append(list, s.clone())
	}

	i := openIndex(list)
	if i < 0 {
		list = append(list, Series{SeriesID: newSeriesID(), Games: []GameResult{}, SeriesStatus: InProgress})
		i = len(list) - 1
	}
	s := &list[i]
	s.Games = append(s.Games, r)
	s.TotalAttempts += r.Attempts
	s.TotalTime += r.TimeTaken

	completed := len(s.Games) >= GamesPerSeries
	if completed {
		s.SeriesStatus = Completed
	}
	snapshot := s.clone()
	if completed {
		list = rerank(list)
	}

	next := make(Store, len(st)+1)
	for k, v := range st {
		next[k] = v
	}
	next[identity] = list
	return Append{Store: next, Completed: completed, Series: &snapshot}, nil
}

// openIndex finds the series still taking games, or -1.
func openIndex(list []Series) int {
	for i, s := range list {
		if !s.Done() && len(s.Games) < GamesPerSeries {
			return i
		}
	}
	return -1
}

// rerank keeps the best completed series (stable, best first) followed by
// the series still in progress.
func rerank(list []Series) []Series {
	done, open := SortedCompleted(list), make([]Series, 0, 1)
	for _, s := range list {
		if !s.Done() {
			open = append(open, s)
		}
	}
	if len(done) > MaxSeriesPerPlayer {
		done = done[:MaxSeriesPerPlayer]
	}
	return append(done, open...)
}

func newSeriesID() string { return "series_" + uuid.NewString() }
