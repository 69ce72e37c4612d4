// apps/versus-server/internal/httpserver/game_routes.go
//
// Classic (single-player) game endpoints:
//   - POST /game/new   → start a game (random target, the daily word, or a
//                        client-chosen practice word that is never scored)
//   - POST /game/guess → submit a guess; on finish a signed-in player's result
//                        is appended to their series and profile.

package httpserver

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
	"github.com/robalobadob/wordle/apps/versus-server/internal/metrics"
	"github.com/robalobadob/wordle/apps/versus-server/internal/series"
	"github.com/robalobadob/wordle/apps/versus-server/internal/store"
	"github.com/robalobadob/wordle/apps/versus-server/internal/words"
)

const (
	modeNormal   = "normal"
	modeDaily    = "daily"
	modePractice = "practice"
)

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Mode   string `json:"mode"`   // "normal" | "daily"
	Answer string `json:"answer"` // optional fixed answer; the game becomes practice
}
type newGameRes struct {
	GameID     string `json:"gameId"`
	Mode       string `json:"mode"`
	Date       string `json:"date,omitempty"`       // daily only
	GameNumber int    `json:"gameNumber,omitempty"` // position in the player's series
}

// handleNewGame creates a new in-memory game.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	res := newGameRes{Mode: modeNormal}

	var target string
	gopts := []game.Option{game.WithClock(s.clock)}
	switch {
	case req.Mode == modeDaily:
		now := s.clock()
		target = s.words.Daily(now, s.cfg.DailySalt)
		res.Mode, res.Date = modeDaily, words.DateKey(now)
	case words.Valid(words.Normalize(req.Answer)):
		target = words.Normalize(req.Answer)
		res.Mode = modePractice
		gopts = append(gopts, game.AsPractice())
	default:
		target = s.words.Random(nil)
	}

	g := game.New(target, gopts...)
	if err := s.games.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	res.GameID = g.ID

	if me := userFrom(r.Context()); me != nil && !g.Practice {
		list, err := s.board.Player(r.Context(), me.Email)
		if err != nil {
			log.Warn().Err(err).Str("email", me.Email).Msg("load series")
		} else {
			res.GameNumber = series.CurrentGameNumber(me.Email, series.Store{me.Email: list})
		}
	}
	writeJSON(w, http.StatusOK, res)
}

// guessReq/Res payloads for POST /game/guess.
type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}
type guessRes struct {
	Marks      game.Feedback          `json:"marks"`
	State      game.Phase             `json:"state"` // "playing" | "won" | "lost"
	Keys       map[string]game.Status `json:"keys"`
	Guesses    int                    `json:"guesses"`
	Answer     string                 `json:"answer,omitempty"`     // once finished
	Definition string                 `json:"definition,omitempty"` // once finished
	Series     *series.Outcome        `json:"series,omitempty"`     // signed-in players, once finished
}

// handleGuess applies a guess to an in-memory game.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	guess, err := words.ValidateGuess(req.Guess, s.words, false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	g, err := s.games.Get(r.Context(), req.GameID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load_failed")
		return
	}

	s.gameMu.Lock()
	marks, state, err := g.ApplyGuess(guess)
	res := guessRes{Marks: marks, State: state, Keys: g.Keys.Export(), Guesses: len(g.Guesses)}
	result, done := g.Result()
	s.gameMu.Unlock()

	switch {
	case errors.Is(err, game.ErrFinished):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	metrics.GuessesTotal.WithLabelValues("human").Inc()
	if err := s.games.Save(r.Context(), g); err != nil {
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	if done {
		metrics.GamesFinished.WithLabelValues("classic", string(state)).Inc()
		res.Answer = result.Word
		res.Definition, _ = s.words.Definition(result.Word)
		if me := userFrom(r.Context()); me != nil && !g.Practice {
			// best effort, non-fatal if it fails
			out, err := s.record(r.Context(), me.Email, result)
			if err != nil {
				log.Warn().Err(err).Str("email", me.Email).Msg("record game")
			}
			res.Series = out
		}
	}
	writeJSON(w, http.StatusOK, res)
}
