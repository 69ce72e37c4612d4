// apps/versus-server/internal/httpserver/server.go
//
// HTTP server wiring for the Wordle versus backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/words", "/metrics".
//   - Game endpoints (optional auth): POST /game/new, POST /game/guess.
//   - Series/leaderboard/profile endpoints.
//   - Versus endpoints, including the websocket stream.
//   - Auth (email identity, JWT cookie) and admin endpoints.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Optional auth decorates requests with user context when a valid token is
//     present; routes can still run for guests.
//   - The websocket route sits outside the request timeout.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/config"
	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
	"github.com/robalobadob/wordle/apps/versus-server/internal/metrics"
	"github.com/robalobadob/wordle/apps/versus-server/internal/profile"
	"github.com/robalobadob/wordle/apps/versus-server/internal/series"
	"github.com/robalobadob/wordle/apps/versus-server/internal/store"
	"github.com/robalobadob/wordle/apps/versus-server/internal/versus"
	"github.com/robalobadob/wordle/apps/versus-server/internal/words"
	"github.com/robalobadob/wordle/apps/versus-server/internal/wshub"
)

// Deps are the collaborators a Server needs.
type Deps struct {
	Config   config.Config
	Words    *words.Pool
	Games    store.Games
	Board    *series.Board
	Profiles *profile.Service
	Hub      *wshub.Hub
	Clock    game.Clock
}

// Server bundles the router and the services behind it.
type Server struct {
	r        *chi.Mux
	http     *http.Server
	cfg      config.Config
	words    *words.Pool
	games    store.Games
	board    *series.Board
	profiles *profile.Service
	matches  *versus.Registry
	hub      *wshub.Hub
	clock    game.Clock

	gameMu sync.Mutex // serializes guesses on shared *game.Game values
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		cfg:      d.Config,
		words:    d.Words,
		games:    d.Games,
		board:    d.Board,
		profiles: d.Profiles,
		hub:      d.Hub,
		clock:    d.Clock,
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.hub == nil {
		s.hub = wshub.NewHub()
	}
	vs := d.Config.Versus()
	vs.Clock = s.clock
	s.matches = versus.NewRegistry(vs,
		versus.WithPublisher(func(snap versus.Snapshot) { s.hub.Publish(versusTopic(snap.ID), snap) }),
		versus.WithFinishHook(s.recordVersus),
	)

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(s.cors)          // credentials-friendly CORS

	// websocket: long-lived, no timeout, no JSON content type
	s.r.Get("/versus/{id}/ws", s.handleVersusWS)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"service":   "wordle-versus",
				"endpoints": []string{"/health", "POST /game/new", "POST /game/guess", "/auth/*", "/versus/*", "/leaderboard"},
			})
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		})
		r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
			total, defined := s.words.Stats()
			writeJSON(w, http.StatusOK, map[string]int{"words": total, "withDefinition": defined})
		})
		r.Method(http.MethodGet, "/metrics", metrics.Handler())

		// Game endpoints: OPTIONAL AUTH (guests can play)
		r.With(s.withOptionalAuth()).Post("/game/new", s.handleNewGame)
		r.With(s.withOptionalAuth()).Post("/game/guess", s.handleGuess)

		s.mountAuthRoutes(r)
		s.mountSeriesRoutes(r)
		s.mountVersusRoutes(r)
		s.mountAdminRoutes(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	s.http = &http.Server{Handler: s.r, ReadHeaderTimeout: 10 * time.Second}
	return s
}

// Start begins serving HTTP on addr. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start(addr string) error {
	s.http.Addr = addr
	return s.http.ListenAndServe()
}

// Shutdown abandons live matches and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.matches.Close()
	return s.http.Shutdown(ctx)
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Janitor drops finished games and matches older than keep, every interval,
// until ctx is done.
func (s *Server) Janitor(ctx context.Context, interval, keep time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			cutoff := s.clock().Add(-keep)
			g := s.games.Prune(ctx, cutoff)
			m := s.matches.Prune(cutoff)
			if g+m > 0 {
				log.Debug().Int("games", g).Int("matches", m).Msg("pruned finished sessions")
			}
		}
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decode reads a JSON body. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// record stores a finished game for a signed-in player: the series board
// first, then the profile counters (best effort).
func (s *Server) record(ctx context.Context, email string, r game.Result) (*series.Outcome, error) {
	out, err := s.board.Record(ctx, email, r)
	if err != nil {
		return nil, err
	}
	if _, err := s.profiles.RecordGame(ctx, email, r); err != nil {
		log.Warn().Err(err).Str("email", email).Msg("profile record game")
	}
	return &out, nil
}

// recordVersus is the match finish hook. It runs outside any request.
func (s *Server) recordVersus(owner string, r game.Result) {
	if owner == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.record(ctx, owner, r); err != nil {
		log.Warn().Err(err).Str("email", owner).Msg("record versus result")
	}
}
