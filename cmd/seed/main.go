// Seed loads the demo fixtures into a Postgres database. It is meant for
// standing up a fresh environment; the server also seeds automatically when
// it starts against an empty store.
package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/shoplite/shoplite/api/internal/config"
	"github.com/shoplite/shoplite/api/internal/seed"
	"github.com/shoplite/shoplite/api/internal/store"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.Load()
	if cfg.Database.URL == "" {
		log.Fatal().Msg("DATABASE_URL is required to seed a database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	st, err := store.NewPostgresStore(ctx, cfg.Database.URL, cfg.Database.MaxConnections)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer st.Close()

	needed, err := seed.Needed(ctx, st)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to inspect store")
	}
	if !needed {
		log.Info().Msg("Store already has data, nothing to do")
		return
	}
	if err := seed.Run(ctx, st); err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}
}
