package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/guessnum/go-server/internal/httpserver"
	"github.com/guessnum/go-server/internal/leaderboard"
	"github.com/guessnum/go-server/internal/session"
	"github.com/guessnum/go-server/internal/storage"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	kv, err := storage.OpenSQLite(getEnv("DB_PATH", "./data/guessnum.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	defer func() { _ = kv.Close() }()

	board := leaderboard.New(kv)
	board.Load(context.Background())

	srv := httpserver.New(session.NewMemoryStore(), board)
	port := getEnv("PORT", "5176")
	log.Info().Str("port", port).Int("entries", len(board.Entries())).Msg("starting guessnum server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
