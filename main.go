package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/auth"
	"github.com/robalobadob/hangman/internal/config"
	"github.com/robalobadob/hangman/internal/hangman"
	"github.com/robalobadob/hangman/internal/httpserver"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/tasks"
	"github.com/robalobadob/hangman/internal/words"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	list, err := words.Load(cfg.WordsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}
	log.Info().Int("words", list.Len()).Msg("word list loaded")

	st := store.NewMemoryStore()
	if cfg.DatabasePath != "" {
		openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		st, err = store.OpenSQLite(openCtx, cfg.DatabasePath)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("failed to open database")
		}
	}
	defer st.Close()

	svc := hangman.New(st, list, hangman.Options{
		DefaultAttempts: cfg.DefaultAttempts,
		MaxAttempts:     cfg.MaxAttempts,
	})

	runner := tasks.NewRunner("cache_average_attempts", cfg.CacheRefreshInterval, svc.RefreshAverageAttempts)
	svc.OnChange(runner.Trigger)
	go runner.Run(ctx)

	srv := httpserver.New(svc, auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL), httpserver.Options{
		ClientOrigin: cfg.ClientOrigin,
		Refresh:      runner.Trigger,
	})
	log.Info().Str("port", cfg.Port).Bool("sqlite", cfg.DatabasePath != "").Msg("starting hangman server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}
