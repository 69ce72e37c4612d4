package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/wordle/apps/versus-server/internal/config"
	"github.com/robalobadob/wordle/apps/versus-server/internal/profile"
	"github.com/robalobadob/wordle/apps/versus-server/internal/series"
	"github.com/robalobadob/wordle/apps/versus-server/internal/store"
	"github.com/robalobadob/wordle/apps/versus-server/internal/versus"
	"github.com/robalobadob/wordle/apps/versus-server/internal/words"
)

var testNow = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	return config.Config{
		ClientOrigin:      "http://localhost:5173",
		JWTSecret:         "test_secret",
		JWTExpiresDays:    1,
		CookieName:        "wordle_token",
		AdminPasswordHash: string(hash),
		DailySalt:         "salt",
		AIStartDelay:      time.Hour, // the AI never moves in these tests
		VersusDuration:    time.Minute,
	}
}

func newTestServer(t *testing.T, ws ...string) *Server {
	t.Helper()
	if len(ws) == 0 {
		ws = []string{"RULES", "CRANE", "SLATE", "PEDAL", "SPEED"}
	}
	pool, err := words.FromWords(ws...)
	require.NoError(t, err)
	kv := store.NewMemoryKV()
	s := New(Deps{
		Config:   testConfig(t),
		Words:    pool,
		Games:    store.NewMemoryGames(),
		Board:    series.NewBoard(kv),
		Profiles: profile.NewService(kv, func() time.Time { return testNow }),
		Clock:    func() time.Time { return testNow },
	})
	t.Cleanup(s.matches.Close)
	return s
}

func do(t *testing.T, s *Server, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func signUp(t *testing.T, s *Server, email, name string) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/auth/signup", signupReq{Email: email, FullName: name}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[map[string]any](t, rec)["token"].(string)
}

// playWon starts a game and solves it in two guesses. Servers built with a
// single-word pool make the target known.
func playWon(t *testing.T, s *Server, token string) guessRes {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/game/new", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	ng := decodeBody[newGameRes](t, rec)
	require.Equal(t, modeNormal, ng.Mode)
	answer := s.words.Words()[0]

	miss := "CRANE"
	if answer == miss {
		miss = "SLATE"
	}
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/game/guess", guessReq{GameID: ng.GameID, Guess: miss}, token).Code)
	rec = do(t, s, http.MethodPost, "/game/guess", guessReq{GameID: ng.GameID, Guess: answer}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[guessRes](t, rec)
}

func TestDiagnostics(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/debug/words", nil, "")
	assert.Equal(t, 5, decodeBody[map[string]int](t, rec)["words"])

	rec = do(t, s, http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "/nope", decodeBody[map[string]string](t, rec)["path"])

	rec = do(t, s, http.MethodOptions, "/game/new", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/auth/signup", signupReq{Email: "Ann@X.io", FullName: "Ann"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "wordle_token=")
	tok := decodeBody[map[string]any](t, rec)["token"].(string)

	rec = do(t, s, http.MethodPost, "/auth/signup", signupReq{Email: "ann@x.io", FullName: "Ann"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = do(t, s, http.MethodPost, "/auth/signup", signupReq{Email: "bad", FullName: "Ann"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodPost, "/auth/login", loginReq{Email: "ghost@x.io"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = do(t, s, http.MethodPost, "/auth/login", loginReq{Email: "ANN@x.io"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/auth/me", nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, authUser{Email: "ann@x.io", FullName: "Ann"}, decodeBody[authUser](t, rec))

	assert.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodGet, "/auth/me", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodGet, "/auth/me", nil, "garbage").Code)

	rec = do(t, s, http.MethodPost, "/auth/logout", nil, "")
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestGuestGame(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/game/new", newGameReq{Answer: "rules"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	ng := decodeBody[newGameRes](t, rec)
	assert.Zero(t, ng.GameNumber)
	assert.Equal(t, modePractice, ng.Mode)

	rec = do(t, s, http.MethodPost, "/game/guess", guessReq{GameID: ng.GameID, Guess: "ab"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodPost, "/game/guess", guessReq{GameID: "missing", Guess: "CRANE"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/game/guess", guessReq{GameID: ng.GameID, Guess: "speed"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	g := decodeBody[guessRes](t, rec)
	assert.Equal(t, "Y--G-", g.Marks.String())
	assert.Equal(t, "playing", string(g.State))
	assert.Empty(t, g.Answer)

	// not in the pool, but guesses are not word-list checked in classic mode
	rec = do(t, s, http.MethodPost, "/game/guess", guessReq{GameID: ng.GameID, Guess: "RULEZ"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodPost, "/game/guess", guessReq{GameID: ng.GameID, Guess: "rules"}, "")
	g = decodeBody[guessRes](t, rec)
	assert.Equal(t, "won", string(g.State))
	assert.Equal(t, "RULES", g.Answer)
	assert.Nil(t, g.Series)
	assert.Equal(t, 3, g.Guesses)

	rec = do(t, s, http.MethodPost, "/game/guess", guessReq{GameID: ng.GameID, Guess: "rules"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPracticeGameIsNotScored(t *testing.T) {
	s := newTestServer(t)
	ann := signUp(t, s, "ann@x.io", "Ann")

	for range 3 {
		rec := do(t, s, http.MethodPost, "/game/new", newGameReq{Answer: "crane"}, ann)
		require.Equal(t, http.StatusOK, rec.Code)
		ng := decodeBody[newGameRes](t, rec)
		assert.Equal(t, modePractice, ng.Mode)
		assert.Zero(t, ng.GameNumber)

		rec = do(t, s, http.MethodPost, "/game/guess", guessReq{GameID: ng.GameID, Guess: "CRANE"}, ann)
		require.Equal(t, http.StatusOK, rec.Code)
		g := decodeBody[guessRes](t, rec)
		assert.Equal(t, "won", string(g.State))
		assert.Nil(t, g.Series)
	}

	rec := do(t, s, http.MethodGet, "/leaderboard", nil, "")
	assert.JSONEq(t, `{"rankings":[]}`, rec.Body.String())
	rec = do(t, s, http.MethodGet, "/series/me", nil, ann)
	ms := decodeBody[mySeriesRes](t, rec)
	assert.Empty(t, ms.Series)
	assert.Equal(t, 1, ms.CurrentGameNumber)
	rec = do(t, s, http.MethodGet, "/profile/me", nil, ann)
	assert.Zero(t, decodeBody[myProfileRes](t, rec).TotalGamesPlayed)
}

func TestDailyGame(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/game/new", newGameReq{Mode: "daily"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	ng := decodeBody[newGameRes](t, rec)
	assert.Equal(t, "daily", ng.Mode)
	assert.Equal(t, "2025-03-14", ng.Date)

	target := s.words.Daily(testNow, "salt")
	rec = do(t, s, http.MethodPost, "/game/guess", guessReq{GameID: ng.GameID, Guess: target}, "")
	assert.Equal(t, "won", string(decodeBody[guessRes](t, rec).State))
}

func TestSeriesLeaderboardAndProfile(t *testing.T) {
	s := newTestServer(t, "RULES")
	ann := signUp(t, s, "ann@x.io", "Ann Lee")
	bob := signUp(t, s, "bob@x.io", "Bob")

	g := playWon(t, s, ann)
	require.NotNil(t, g.Series)
	assert.False(t, g.Series.Completed)
	assert.Equal(t, 2, g.Series.GameNumber)
	playWon(t, s, ann)
	g = playWon(t, s, ann)
	require.NotNil(t, g.Series)
	assert.True(t, g.Series.Completed)
	require.NotNil(t, g.Series.Achievements)
	assert.Equal(t, 1, g.Series.Achievements.CurrentRank)
	assert.Equal(t, 6, g.Series.Series.TotalAttempts)

	playWon(t, s, bob)

	rec := do(t, s, http.MethodGet, "/leaderboard", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	lb := decodeBody[struct {
		Rankings []series.RankingEntry `json:"rankings"`
	}](t, rec)
	require.Len(t, lb.Rankings, 1)
	assert.Equal(t, "Ann Lee", lb.Rankings[0].DisplayName)

	rec = do(t, s, http.MethodGet, "/leaderboard/top", nil, "")
	top := decodeBody[series.TopPerformers](t, rec)
	require.NotNil(t, top.BestOverall)
	assert.Equal(t, "ann@x.io", top.BestOverall.Identity)

	rec = do(t, s, http.MethodGet, "/series/me", nil, bob)
	require.Equal(t, http.StatusOK, rec.Code)
	ms := decodeBody[mySeriesRes](t, rec)
	assert.Equal(t, 2, ms.CurrentGameNumber)
	require.NotNil(t, ms.CurrentSeries)
	assert.Len(t, ms.CurrentSeries.Games, 1)

	rec = do(t, s, http.MethodGet, "/profile/me", nil, ann)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decodeBody[myProfileRes](t, rec)
	assert.Equal(t, 3, p.TotalGamesPlayed)
	assert.Len(t, p.BestGames, 3)
	assert.Equal(t, 1, p.Rank)
	assert.Equal(t, "2025-03-14", p.MemberSince)

	assert.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodGet, "/series/me", nil, "").Code)
}

func TestVersusMatch(t *testing.T) {
	s := newTestServer(t, "RULES")
	ann := signUp(t, s, "ann@x.io", "Ann")

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/versus/new", newMatchReq{Difficulty: "insane"}, ann).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/versus/nope", nil, "").Code)

	rec := do(t, s, http.MethodPost, "/versus/new", newMatchReq{Difficulty: "hard"}, ann)
	require.Equal(t, http.StatusCreated, rec.Code)
	snap := decodeBody[versus.Snapshot](t, rec)
	assert.Equal(t, "hard", string(snap.Difficulty))
	assert.Empty(t, snap.Target)

	require.Eventually(t, func() bool {
		rec := do(t, s, http.MethodGet, "/versus/"+snap.ID, nil, "")
		return decodeBody[versus.Snapshot](t, rec).Phase == versus.PhasePlaying
	}, 5*time.Second, 5*time.Millisecond)

	rec = do(t, s, http.MethodPost, "/versus/"+snap.ID+"/guess", matchGuessReq{Guess: "CRANE"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "versus guesses must be in the word list")

	rec = do(t, s, http.MethodPost, "/versus/"+snap.ID+"/guess", matchGuessReq{Guess: "rules"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[matchGuessRes](t, rec)
	assert.True(t, res.Marks.Solved())
	assert.Equal(t, versus.WinnerPlayer, res.Match.Winner)
	assert.Equal(t, "RULES", res.Match.Target)

	rec = do(t, s, http.MethodPost, "/versus/"+snap.ID+"/guess", matchGuessReq{Guess: "rules"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// the finish hook recorded the human game for the owner
	rec = do(t, s, http.MethodGet, "/series/me", nil, ann)
	assert.Equal(t, 2, decodeBody[mySeriesRes](t, rec).CurrentGameNumber)
}

func TestAdmin(t *testing.T) {
	s := newTestServer(t, "RULES")
	ann := signUp(t, s, "ann@x.io", "Ann")
	signUp(t, s, "bob@x.io", "Bob")
	playWon(t, s, ann)

	assert.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodGet, "/admin/stats", nil, "").Code)
	assert.Equal(t, http.StatusForbidden, do(t, s, http.MethodGet, "/admin/stats", nil, ann).Code)
	rec := do(t, s, http.MethodPost, "/admin/login", adminLoginReq{Password: "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodPost, "/admin/login", adminLoginReq{Password: "hunter22"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	admin := decodeBody[map[string]string](t, rec)["token"]

	rec = do(t, s, http.MethodGet, "/admin/stats", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeBody[adminStatsRes](t, rec)
	assert.Equal(t, 1, st.ActivePlayers)
	assert.Equal(t, 1, st.TotalGames)
	assert.Equal(t, 2, st.RegisteredUsers)

	rec = do(t, s, http.MethodGet, "/admin/users", nil, admin)
	assert.Len(t, decodeBody[map[string][]profile.Stats](t, rec)["users"], 2)

	// a signed-in player cannot delete their own account through the admin API
	req := httptest.NewRequest(http.MethodDelete, "/admin/users/ann@x.io", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	req.AddCookie(&http.Cookie{Name: "wordle_token", Value: ann})
	self := httptest.NewRecorder()
	s.Router().ServeHTTP(self, req)
	assert.Equal(t, http.StatusConflict, self.Code)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodDelete, "/admin/users/ANN@x.io", nil, admin).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/admin/users/ann@x.io", nil, admin).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodGet, "/auth/me", nil, ann).Code)

	rec = do(t, s, http.MethodPost, "/admin/clear-all", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeBody[map[string]any](t, rec)["users"])
	rec = do(t, s, http.MethodGet, "/admin/stats", nil, admin)
	assert.Zero(t, decodeBody[adminStatsRes](t, rec).RegisteredUsers)
}
