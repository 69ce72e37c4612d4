package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/profile"
	"github.com/robalobadob/wordle/apps/versus-server/internal/series"
)

func (s *Server) mountSeriesRoutes(r chi.Router) {
	r.Get("/leaderboard", s.handleLeaderboard)
	r.Get("/leaderboard/top", s.handleTopPerformers)
	r.With(s.requireAuth()).Get("/series/me", s.handleMySeries)
	r.With(s.requireAuth()).Get("/profile/me", s.handleMyProfile)
}

// rankings joins the board with profile display names.
func (s *Server) rankings(r *http.Request) ([]series.RankingEntry, error) {
	names, err := s.profiles.Names(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("load display names")
		names = nil
	}
	return s.board.Rankings(r.Context(), names)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	rs, err := s.rankings(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "leaderboard_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rankings": rs})
}

func (s *Server) handleTopPerformers(w http.ResponseWriter, r *http.Request) {
	rs, err := s.rankings(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "leaderboard_failed")
		return
	}
	writeJSON(w, http.StatusOK, series.ComputeTopPerformers(rs))
}

type mySeriesRes struct {
	Series            []series.Series `json:"series"`
	Top               []series.Series `json:"topSeries"`
	CurrentSeries     *series.Series  `json:"currentSeries"`
	CurrentGameNumber int             `json:"currentGameNumber"`
}

func (s *Server) handleMySeries(w http.ResponseWriter, r *http.Request) {
	me := userFrom(r.Context())
	list, err := s.board.Player(r.Context(), me.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load_failed")
		return
	}
	st := series.Store{me.Email: list}
	res := mySeriesRes{
		Series:            list,
		Top:               series.Top(me.Email, st),
		CurrentGameNumber: series.CurrentGameNumber(me.Email, st),
	}
	if res.Series == nil {
		res.Series = []series.Series{}
	}
	if cur, ok := series.CurrentSeries(me.Email, st); ok {
		res.CurrentSeries = &cur
	}
	writeJSON(w, http.StatusOK, res)
}

type myProfileRes struct {
	profile.Stats
	Rank         int `json:"rank"` // 0 = unranked
	TotalPlayers int `json:"totalPlayers"`
}

func (s *Server) handleMyProfile(w http.ResponseWriter, r *http.Request) {
	me := userFrom(r.Context())
	p, err := s.profiles.Get(r.Context(), me.Email)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	res := myProfileRes{Stats: profile.StatsOf(p)}
	if rs, err := s.rankings(r); err == nil {
		res.TotalPlayers = len(rs)
		if e, ok := series.RankOf(rs, me.Email); ok {
			res.Rank = e.Rank
		}
	}
	writeJSON(w, http.StatusOK, res)
}
