package series

import (
	"math"
	"sort"

	"github.com/samber/lo"
)

// RankingEntry is one leaderboard row, derived on demand.
type RankingEntry struct {
	Identity             string      `json:"identity"`
	DisplayName          string      `json:"displayName"`
	BestSeries           Series      `json:"bestSeries"`
	TotalSeriesCompleted int         `json:"totalSeriesCompleted"`
	AverageAttempts      float64     `json:"averageAttempts"` // one decimal
	AverageTime          int         `json:"averageTime"`     // whole seconds
	FastestGame          *GameResult `json:"fastestGame"`
	BestSingleGame       *GameResult `json:"bestSingleGame"`
	Score                int         `json:"score"`
	Rank                 int         `json:"rank"`

	best Score
}

// SortedCompleted returns the completed series of list, best first. Equal
// scores keep list order.
func SortedCompleted(list []Series) []Series {
	done := lo.Filter(list, func(s Series, _ int) bool { return s.Done() })
	sort.SliceStable(done, func(i, j int) bool { return done[i].Score().Less(done[j].Score()) })
	return done
}

// ComputeRankings ranks every identity with at least one completed series by
// its best series. Ties are ordered by identity so output is stable across
// calls. names maps identity → display name (optional).
func ComputeRankings(st Store, names map[string]string) []RankingEntry {
	out := make([]RankingEntry, 0, len(st))
	for id, list := range st {
		done := SortedCompleted(list)
		if len(done) == 0 {
			continue
		}
		e := RankingEntry{
			Identity:             id,
			DisplayName:          id,
			BestSeries:           done[0].clone(),
			TotalSeriesCompleted: len(done),
			best:                 done[0].Score(),
		}
		if n := names[id]; n != "" {
			e.DisplayName = n
		}
		e.Score = e.best.Value()

		var attempts, secs int
		for _, s := range done {
			attempts += s.TotalAttempts
			secs += s.TotalTime
			for _, g := range s.Games {
				if !g.Won() {
					continue
				}
				if e.FastestGame == nil || g.TimeTaken < e.FastestGame.TimeTaken {
					e.FastestGame = lo.ToPtr(g)
				}
				if e.BestSingleGame == nil || betterGame(g, *e.BestSingleGame) {
					e.BestSingleGame = lo.ToPtr(g)
				}
			}
		}
		n := float64(len(done))
		e.AverageAttempts = math.Round(float64(attempts)/n*10) / 10
		e.AverageTime = int(math.Round(float64(secs) / n))
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].best != out[j].best {
			return out[i].best.Less(out[j].best)
		}
		return out[i].Identity < out[j].Identity
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// betterGame: fewer attempts, then faster.
func betterGame(a, b GameResult) bool {
	if a.Attempts != b.Attempts {
		return a.Attempts < b.Attempts
	}
	return a.TimeTaken < b.TimeTaken
}

// RankOf returns identity's entry, if ranked.
func RankOf(rankings []RankingEntry, identity string) (RankingEntry, bool) {
	return lo.Find(rankings, func(e RankingEntry) bool { return e.Identity == identity })
}

// TopPerformers highlights the leaders in several categories. Any field may
// be nil when nobody qualifies.
type TopPerformers struct {
	BestOverall   *RankingEntry `json:"bestOverall"`
	FastestSolver *RankingEntry `json:"fastestSolver"`
	MostEfficient *RankingEntry `json:"mostEfficient"`
	MostActive    *RankingEntry `json:"mostActive"`
}

// ComputeTopPerformers derives the category leaders from rankings (as
// returned by ComputeRankings). Earlier-ranked entries win ties.
func ComputeTopPerformers(rankings []RankingEntry) TopPerformers {
	var tp TopPerformers
	for i := range rankings {
		e := &rankings[i]
		if tp.BestOverall == nil {
			tp.BestOverall = e
		}
		if e.FastestGame != nil && (tp.FastestSolver == nil || e.FastestGame.TimeTaken < tp.FastestSolver.FastestGame.TimeTaken) {
			tp.FastestSolver = e
		}
		if e.BestSingleGame != nil && (tp.MostEfficient == nil || betterGame(*e.BestSingleGame, *tp.MostEfficient.BestSingleGame)) {
			tp.MostEfficient = e
		}
		if tp.MostActive == nil || e.TotalSeriesCompleted > tp.MostActive.TotalSeriesCompleted {
			tp.MostActive = e
		}
	}
	return tp
}
