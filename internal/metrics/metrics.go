// apps/versus-server/internal/metrics/metrics.go
//
// Prometheus collectors for the game server, registered on the default
// registry and exposed by Handler at GET /metrics.

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// GuessesTotal counts evaluated guesses by player kind (human|ai).
	GuessesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wordle_guesses_total",
		Help: "Evaluated guesses.",
	}, []string{"player"})

	// GamesFinished counts finished games by mode and outcome.
	GamesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wordle_games_finished_total",
		Help: "Finished games.",
	}, []string{"mode", "outcome"})

	SeriesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wordle_series_completed_total",
		Help: "Completed three-game series.",
	})

	// AIDecisionSeconds is the time spent selecting one AI guess (pacing excluded).
	AIDecisionSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wordle_ai_decision_seconds",
		Help:    "AI guess selection latency.",
		Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
	}, []string{"difficulty"})

	MatchesActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wordle_versus_matches_active",
		Help: "Versus matches not yet finished.",
	})
)

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
