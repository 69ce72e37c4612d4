// apps/versus-server/internal/httpserver/versus_routes.go
//
// Human-vs-AI endpoints:
//   - POST /versus/new          → create a match (countdown starts at once)
//   - GET  /versus/{id}         → current snapshot
//   - POST /versus/{id}/guess   → human guess (word-list checked)
//   - GET  /versus/{id}/ws      → websocket stream of snapshots

package httpserver

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
	"github.com/robalobadob/wordle/apps/versus-server/internal/solver"
	"github.com/robalobadob/wordle/apps/versus-server/internal/versus"
)

func versusTopic(id string) string { return "versus:" + id }

func (s *Server) mountVersusRoutes(r chi.Router) {
	r.With(s.withOptionalAuth()).Post("/versus/new", s.handleNewMatch)
	r.Get("/versus/{id}", s.handleGetMatch)
	r.Post("/versus/{id}/guess", s.handleMatchGuess)
}

type newMatchReq struct {
	Difficulty string `json:"difficulty"` // easy | medium | hard (default medium)
}

func (s *Server) handleNewMatch(w http.ResponseWriter, r *http.Request) {
	var req newMatchReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	d, err := solver.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	owner := ""
	if me := userFrom(r.Context()); me != nil {
		owner = me.Email
	}
	m, err := s.matches.Create(owner, d, s.words.Words(), s.words.Random(nil), s.words)
	if err != nil {
		log.Error().Err(err).Msg("create match")
		writeError(w, http.StatusInternalServerError, "create_failed")
		return
	}
	writeJSON(w, http.StatusCreated, m.Snapshot())
}

func (s *Server) match(w http.ResponseWriter, r *http.Request) (*versus.Match, bool) {
	m, err := s.matches.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return nil, false
	}
	return m, true
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	if m, ok := s.match(w, r); ok {
		writeJSON(w, http.StatusOK, m.Snapshot())
	}
}

type matchGuessReq struct {
	Guess string `json:"guess"`
}

type matchGuessRes struct {
	Marks game.Feedback   `json:"marks"`
	Match versus.Snapshot `json:"match"`
}

func (s *Server) handleMatchGuess(w http.ResponseWriter, r *http.Request) {
	m, ok := s.match(w, r)
	if !ok {
		return
	}
	var req matchGuessReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	marks, snap, err := m.Guess(req.Guess)
	switch {
	case errors.Is(err, versus.ErrNotStarted), errors.Is(err, versus.ErrMatchOver):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, matchGuessRes{Marks: marks, Match: snap})
}

func (s *Server) handleVersusWS(w http.ResponseWriter, r *http.Request) {
	m, ok := s.match(w, r)
	if !ok {
		return
	}
	if err := s.hub.Serve(w, r, versusTopic(m.ID()), m.Snapshot(), s.originPatterns()); err != nil {
		log.Debug().Err(err).Str("match", m.ID()).Msg("versus ws closed")
	}
}

// originPatterns allows the configured client origin to open websockets.
func (s *Server) originPatterns() []string {
	u, err := url.Parse(s.cfg.ClientOrigin)
	if err != nil || u.Host == "" {
		return nil
	}
	return []string{u.Host}
}
