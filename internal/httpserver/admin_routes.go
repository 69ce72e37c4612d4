// apps/versus-server/internal/httpserver/admin_routes.go
//
// Admin endpoints. POST /admin/login exchanges the admin password for a
// bearer token; everything else requires that token.

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/profile"
	"github.com/robalobadob/wordle/apps/versus-server/internal/series"
)

func (s *Server) mountAdminRoutes(r chi.Router) {
	r.Post("/admin/login", s.handleAdminLogin)
	r.Group(func(r chi.Router) {
		r.Use(s.requireAdmin())
		r.Get("/admin/stats", s.handleAdminStats)
		r.Get("/admin/users", s.handleAdminUsers)
		r.Delete("/admin/users/{email}", s.handleAdminDeleteUser)
		r.Post("/admin/clear-scores", s.handleAdminClearScores)
		r.Post("/admin/clear-all", s.handleAdminClearAll)
	})
}

type adminLoginReq struct {
	Password string `json:"password"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if s.cfg.AdminPasswordHash == "" {
		writeError(w, http.StatusForbidden, "admin_disabled")
		return
	}
	var body adminLoginReq
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if !checkPassword(s.cfg.AdminPasswordHash, body.Password) {
		log.Warn().Str("ip", r.RemoteAddr).Msg("admin login failed")
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}
	tok, err := s.signAdminJWT()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

type adminStatsRes struct {
	series.Stats
	RegisteredUsers int `json:"registeredUsers"`
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.board.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "stats_failed")
		return
	}
	ps, err := s.profiles.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "stats_failed")
		return
	}
	writeJSON(w, http.StatusOK, adminStatsRes{Stats: series.ComputeStats(st), RegisteredUsers: len(ps)})
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	ps, err := s.profiles.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_failed")
		return
	}
	out := make([]profile.Stats, len(ps))
	for i, p := range ps {
		out[i] = profile.StatsOf(p)
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": out})
}

// handleAdminDeleteUser removes a profile and its series. The player whose
// session cookie accompanies the request cannot delete themself.
func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	email := profile.NormalizeEmail(chi.URLParam(r, "email"))
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		if me, ok := s.userFromToken(r.Context(), c.Value); ok && me.Email == email {
			writeError(w, http.StatusConflict, "cannot delete the signed-in user")
			return
		}
	}
	if _, err := s.profiles.Get(r.Context(), email); err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err := s.board.Remove(r.Context(), email); err != nil {
		writeError(w, http.StatusInternalServerError, "delete_failed")
		return
	}
	if err := s.profiles.Delete(r.Context(), email); err != nil {
		writeError(w, http.StatusInternalServerError, "delete_failed")
		return
	}
	log.Info().Str("email", email).Msg("admin deleted user")
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "email": email})
}

func (s *Server) handleAdminClearScores(w http.ResponseWriter, r *http.Request) {
	n, err := s.board.Clear(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "clear_failed")
		return
	}
	log.Info().Int("players", n).Msg("admin cleared scores")
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "cleared": n})
}

func (s *Server) handleAdminClearAll(w http.ResponseWriter, r *http.Request) {
	n, err := s.board.Clear(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "clear_failed")
		return
	}
	ps, err := s.profiles.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "clear_failed")
		return
	}
	for _, p := range ps {
		if err := s.profiles.Delete(r.Context(), p.Email); err != nil {
			writeError(w, http.StatusInternalServerError, "clear_failed")
			return
		}
	}
	log.Info().Int("players", n).Int("users", len(ps)).Msg("admin cleared everything")
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "cleared": n, "users": len(ps)})
}
