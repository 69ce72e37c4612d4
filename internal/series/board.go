// apps/versus-server/internal/series/board.go
//
// Board is the scoreboard service: it owns persistence of the series store
// and serializes appends per identity.
//
// Layout in the KV store:
//   series:<identity> → JSON []Series
//
// A missing key means "no series yet".

package series

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/metrics"
	"github.com/robalobadob/wordle/apps/versus-server/internal/store"
)

const keyPrefix = "series:"

func key(identity string) string { return keyPrefix + identity }

// Outcome is what the caller learns after recording a game.
type Outcome struct {
	Series       Series        `json:"series"`
	Completed    bool          `json:"seriesCompleted"`
	GameNumber   int           `json:"nextGameNumber"`
	Summary      *Summary      `json:"summary,omitempty"`
	Achievements *Achievements `json:"achievements,omitempty"`
}

// Board persists series in a KV store.
type Board struct {
	kv store.KV

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewBoard(kv store.KV) *Board {
	return &Board{kv: kv, locks: make(map[string]*sync.Mutex)}
}

func (b *Board) lock(identity string) func() {
	b.mu.Lock()
	l, ok := b.locks[identity]
	if !ok {
		l = &sync.Mutex{}
		b.locks[identity] = l
	}
	b.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Record appends r to identity's open series and saves the result. When the
// series completes, the summary and leaderboard achievements are included.
func (b *Board) Record(ctx context.Context, identity string, r GameResult) (Outcome, error) {
	if identity == "" {
		return Outcome{}, ErrNoIdentity
	}
	unlock := b.lock(identity)
	defer unlock()

	before, err := b.Snapshot(ctx)
	if err != nil {
		return Outcome{}, err
	}
	app, err := AppendResult(identity, r, before)
	if err != nil {
		return Outcome{}, err
	}
	if err := store.SaveJSON(ctx, b.kv, key(identity), app.Store[identity]); err != nil {
		return Outcome{}, fmt.Errorf("series: save %s: %w", identity, err)
	}

	out := Outcome{
		Series:     *app.Series,
		Completed:  app.Completed,
		GameNumber: CurrentGameNumber(identity, app.Store),
	}
	if app.Completed {
		sum := Summarize(*app.Series)
		ach := ComputeAchievements(identity, before, app.Store)
		out.Summary, out.Achievements = &sum, &ach
		metrics.SeriesCompleted.Inc()
		log.Info().Str("identity", identity).Int("attempts", sum.TotalAttempts).
			Int("time", sum.TotalTime).Int("rank", ach.CurrentRank).Msg("series completed")
	}
	return out, nil
}

// Player returns identity's stored series list (nil if none).
func (b *Board) Player(ctx context.Context, identity string) ([]Series, error) {
	var list []Series
	if _, err := store.LoadJSON(ctx, b.kv, key(identity), &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Snapshot loads the whole store.
func (b *Board) Snapshot(ctx context.Context) (Store, error) {
	keys, err := b.kv.Keys(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("series: list: %w", err)
	}
	st := make(Store, len(keys))
	for _, k := range keys {
		var list []Series
		found, err := store.LoadJSON(ctx, b.kv, k, &list)
		if err != nil {
			return nil, err
		}
		if found {
			st[strings.TrimPrefix(k, keyPrefix)] = list
		}
	}
	return st, nil
}

// Rankings computes the leaderboard from the current store.
func (b *Board) Rankings(ctx context.Context, names map[string]string) ([]RankingEntry, error) {
	st, err := b.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeRankings(st, names), nil
}

// Remove deletes identity's series.
func (b *Board) Remove(ctx context.Context, identity string) error {
	unlock := b.lock(identity)
	defer unlock()
	return b.kv.Delete(ctx, key(identity))
}

// Clear deletes every series. Returns how many identities were cleared.
func (b *Board) Clear(ctx context.Context) (int, error) {
	keys, err := b.kv.Keys(ctx, keyPrefix)
	if err != nil {
		return 0, err
	}
	for _, k := range keys {
		if err := b.Remove(ctx, strings.TrimPrefix(k, keyPrefix)); err != nil {
			return 0, err
		}
	}
	return len(keys), nil
}
