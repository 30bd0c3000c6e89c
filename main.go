package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/seanl/neo-hangman/internal/httpserver"
	"github.com/seanl/neo-hangman/internal/store"
	"github.com/seanl/neo-hangman/internal/words"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	bank, err := words.Init()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word bank")
	}
	cats, total := bank.Stats()
	log.Info().Int("categories", cats).Int("words", total).Msg("word bank loaded")

	db, err := openDB(getEnv("DB_PATH", "./data/hangman.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}

	mem := store.NewMemoryStore()
	srv := httpserver.New(mem, db, bank)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting neo-hangman server")
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
