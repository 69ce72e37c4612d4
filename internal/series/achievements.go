package series

import "github.com/samber/lo"

// Achievements describes how one append moved a player on the leaderboard.
// Ranks are 0 when the player was (or is) unranked.
type Achievements struct {
	PreviousRank      int  `json:"previousRank"`
	CurrentRank       int  `json:"currentRank"`
	PositionChange    int  `json:"positionChange"` // positive = moved up
	BeatPlayers       int  `json:"beatPlayers"`
	TotalPlayers      int  `json:"totalPlayers"`
	IsNewPersonalBest bool `json:"isNewPersonalBest"`
	AchievedTopThree  bool `json:"achievedTopThree"`
	NewTopThree       bool `json:"newTopThreeAchievement"`
	IsFirstSeries     bool `json:"isFirstSeries"`
}

// ComputeAchievements compares identity's standing in before and after.
func ComputeAchievements(identity string, before, after Store) Achievements {
	prevRanks := ComputeRankings(before, nil)
	curRanks := ComputeRankings(after, nil)
	prev, hadPrev := RankOf(prevRanks, identity)
	cur, hasCur := RankOf(curRanks, identity)

	a := Achievements{
		PreviousRank: prev.Rank,
		CurrentRank:  cur.Rank,
		TotalPlayers: len(curRanks),
	}
	if hadPrev {
		a.PositionChange = prev.Rank - cur.Rank
	}
	a.AchievedTopThree = hasCur && cur.Rank <= 3
	a.NewTopThree = a.AchievedTopThree && !(hadPrev && prev.Rank <= 3)
	a.IsNewPersonalBest = hasCur && (!hadPrev || cur.best.Less(prev.best))
	a.BeatPlayers = max(0, a.TotalPlayers-a.CurrentRank)
	a.IsFirstSeries = lo.CountBy(after[identity], func(s Series) bool { return s.Done() }) == 1
	return a
}

// CurrentSeries returns identity's open series, if any.
func CurrentSeries(identity string, st Store) (Series, bool) {
	i := openIndex(st[identity])
	if i < 0 {
		return Series{}, false
	}
	return st[identity][i].clone(), true
}

// CurrentGameNumber is the 1-based number of identity's next game in its
// series. 0 means the identity has never played.
func CurrentGameNumber(identity string, st Store) int {
	list, ok := st[identity]
	if !ok || identity == "" {
		return 0
	}
	if i := openIndex(list); i >= 0 {
		return len(list[i].Games) + 1
	}
	return 1
}

// Summary is the end-of-series recap.
type Summary struct {
	TotalAttempts int  `json:"totalAttempts"`
	TotalTime     int  `json:"totalTime"`
	GamesWon      int  `json:"gamesWon"`
	TotalGames    int  `json:"totalGames"`
	IsPerfect     bool `json:"isPerfectSeries"`
}

// Summarize recaps s.
func Summarize(s Series) Summary {
	won := lo.CountBy(s.Games, func(g GameResult) bool { return g.Won() })
	return Summary{
		TotalAttempts: s.TotalAttempts,
		TotalTime:     s.TotalTime,
		GamesWon:      won,
		TotalGames:    len(s.Games),
		IsPerfect:     len(s.Games) > 0 && won == len(s.Games),
	}
}

// Top returns identity's completed series, best first (at most MaxSeriesPerPlayer).
func Top(identity string, st Store) []Series {
	done := SortedCompleted(st[identity])
	if len(done) > MaxSeriesPerPlayer {
		done = done[:MaxSeriesPerPlayer]
	}
	return done
}

// Stats aggregates the whole store for the admin overview.
type Stats struct {
	ActivePlayers   int `json:"activeUsers"`
	TotalGames      int `json:"totalGames"`
	TotalSeries     int `json:"totalSeries"`
	CompletedSeries int `json:"completedSeries"`
}

// ComputeStats counts players, games and series in st.
func ComputeStats(st Store) Stats {
	var s Stats
	for _, list := range st {
		if len(list) == 0 {
			continue
		}
		s.ActivePlayers++
		for _, ser := range list {
			s.TotalSeries++
			s.TotalGames += len(ser.Games)
			if ser.Done() {
				s.CompletedSeries++
			}
		}
	}
	return s
}
