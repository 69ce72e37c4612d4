// apps/versus-server/main.go
//
// Entry point for the Wordle Versus server.
//
// Startup:
//   - .env (if present) then environment → config.Config
//   - zerolog level/format
//   - word pool (WORDS_FILE or the embedded list)
//   - KV store (STORE_DRIVER) backing series and profiles
//   - HTTP server + janitor; SIGINT/SIGTERM drains gracefully.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/config"
	"github.com/robalobadob/wordle/apps/versus-server/internal/httpserver"
	"github.com/robalobadob/wordle/apps/versus-server/internal/profile"
	"github.com/robalobadob/wordle/apps/versus-server/internal/series"
	"github.com/robalobadob/wordle/apps/versus-server/internal/store"
	"github.com/robalobadob/wordle/apps/versus-server/internal/words"
	"github.com/robalobadob/wordle/apps/versus-server/internal/wshub"
)

const (
	janitorEvery = 5 * time.Minute
	keepFinished = 30 * time.Minute
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	if err := words.Init(); err != nil {
		log.Fatal().Err(err).Str("file", cfg.WordsFile).Msg("failed to load word list")
	}
	pool := words.Default()
	total, defined := pool.Stats()
	log.Info().Int("words", total).Int("defined", defined).Msg("word list loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := store.Open(ctx, cfg.StoreDriver, cfg.StoreOptions())
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	defer kv.Close()

	srv := httpserver.New(httpserver.Deps{
		Config:   cfg,
		Words:    pool,
		Games:    store.NewMemoryGames(),
		Board:    series.NewBoard(kv),
		Profiles: profile.NewService(kv, nil),
		Hub:      wshub.NewHub(),
	})
	go srv.Janitor(ctx, janitorEvery, keepFinished)

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("starting versus-server")
		errc <- srv.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server exited")
		}
		return
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
