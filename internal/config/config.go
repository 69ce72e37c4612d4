// apps/versus-server/internal/config/config.go
//
// Environment-driven configuration. main calls godotenv.Load() first, so a
// local .env file feeds the same variables.

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/robalobadob/wordle/apps/versus-server/internal/ai"
	"github.com/robalobadob/wordle/apps/versus-server/internal/solver"
	"github.com/robalobadob/wordle/apps/versus-server/internal/store"
	"github.com/robalobadob/wordle/apps/versus-server/internal/versus"
)

type Config struct {
	Port      string
	LogLevel  string
	LogFormat string // json | console

	ClientOrigin      string
	JWTSecret         string
	JWTExpiresDays    int
	CookieName        string
	AdminPasswordHash string // bcrypt; admin login disabled when empty
	SecureCookies     bool

	StoreDriver string
	SQLitePath  string
	RedisURL    string
	DatabaseURL string

	WordsFile string
	DailySalt string

	AIStartDelay    time.Duration
	AIPause         time.Duration
	AIJitter        time.Duration
	AIMediumSample  int
	AIHardSample    int
	AIEasyRandomPct int

	VersusCountdown time.Duration
	VersusDuration  time.Duration
}

func Load() Config {
	return Config{
		Port:      getEnv("PORT", "5175"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		ClientOrigin:      getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		JWTSecret:         getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiresDays:    getEnvInt("JWT_EXPIRES_DAYS", 14),
		CookieName:        getEnv("COOKIE_NAME", "wordle_token"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		SecureCookies:     os.Getenv("NODE_ENV") == "production",

		StoreDriver: getEnv("STORE_DRIVER", "memory"),
		SQLitePath:  getEnv("SQLITE_PATH", "./data/app.db"),
		RedisURL:    os.Getenv("REDIS_URL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		WordsFile: os.Getenv("WORDS_FILE"),
		DailySalt: getEnv("DAILY_SALT", "local_dev_salt"),

		AIStartDelay:    getEnvDuration("AI_START_DELAY_MS", time.Millisecond, 1000),
		AIPause:         getEnvDuration("AI_PAUSE_MS", time.Millisecond, 500),
		AIJitter:        getEnvDuration("AI_JITTER_MS", time.Millisecond, 1000),
		AIMediumSample:  getEnvInt("AI_MEDIUM_SAMPLE", 20),
		AIHardSample:    getEnvInt("AI_HARD_SAMPLE", 15),
		AIEasyRandomPct: getEnvInt("AI_EASY_RANDOM_PCT", 30),

		VersusCountdown: getEnvDuration("VERSUS_COUNTDOWN_SECONDS", time.Second, 3),
		VersusDuration:  getEnvDuration("VERSUS_DURATION_SECONDS", time.Second, 120),
	}
}

// StoreOptions is the driver configuration for store.Open.
func (c Config) StoreOptions() store.Options {
	return store.Options{SQLitePath: c.SQLitePath, RedisURL: c.RedisURL, PostgresURL: c.DatabaseURL}
}

// Limits converts the AI sample settings. A sample of 0 means uncapped.
func (c Config) Limits() solver.Limits {
	return solver.Limits{
		EasyRandomRate: float64(clamp(c.AIEasyRandomPct, 0, 100)) / 100,
		MediumSample:   c.AIMediumSample,
		HardSample:     c.AIHardSample,
	}
}

// Pacing is the default per-tier model with the configured delays.
func (c Config) Pacing() ai.Pacing {
	p := ai.DefaultPacing()
	p.StartDelay = c.AIStartDelay
	p.Pause = c.AIPause
	p.Jitter = c.AIJitter
	return p
}

// Versus is the match timing plus the AI tuning above.
func (c Config) Versus() versus.Settings {
	return versus.Settings{
		Countdown: c.VersusCountdown,
		Duration:  c.VersusDuration,
		AI:        []ai.Option{ai.WithPacing(c.Pacing()), ai.WithLimits(c.Limits())},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvDuration reads an integer count of unit.
func getEnvDuration(key string, unit time.Duration, fallback int) time.Duration {
	n := getEnvInt(key, fallback)
	if n < 0 {
		n = fallback
	}
	return time.Duration(n) * unit
}

func clamp(v, lo, hi int) int { return min(max(v, lo), hi) }
