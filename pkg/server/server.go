// Package server provides the public entry point for initializing the
// Shoplite API server.
//
// This package exists in pkg/ (not internal/) so that deployment wrappers
// and integration tests can compose the full server themselves.
//
// Usage:
//
//	srv, err := server.New(ctx)
//	http.ListenAndServe(":8080", srv.Handler)
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shoplite/shoplite/api/internal/api"
	"github.com/shoplite/shoplite/api/internal/api/handlers"
	"github.com/shoplite/shoplite/api/internal/assistant"
	"github.com/shoplite/shoplite/api/internal/assistant/knowledge"
	"github.com/shoplite/shoplite/api/internal/assistant/prompt"
	"github.com/shoplite/shoplite/api/internal/assistant/registry"
	"github.com/shoplite/shoplite/api/internal/config"
	"github.com/shoplite/shoplite/api/internal/seed"
	"github.com/shoplite/shoplite/api/internal/sse"
	"github.com/shoplite/shoplite/api/internal/store"
	"github.com/shoplite/shoplite/api/internal/telemetry"
)

// Shipment simulation pacing for live deployments. Tests construct their
// own simulator with short delays.
const (
	simInitialDelay = 3 * time.Second
	simStepDelay    = 5 * time.Second
)

// Server holds the initialized Shoplite API.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Store is the data store (Postgres when DATABASE_URL is set,
	// in-memory otherwise).
	Store store.Store

	// Config is the resolved server configuration.
	Config *config.Config

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc should be called on graceful shutdown to flush telemetry.
	ShutdownFunc func(context.Context) error
}

// New initializes all components from environment configuration and
// returns a ready Server.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, config.Load())
}

// NewWithConfig initializes the server with an explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry, cfg.Version)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	persona, err := prompt.LoadPersona(cfg.Assistant.PersonaPath)
	if err != nil {
		return nil, fmt.Errorf("load persona: %w", err)
	}
	kb, err := knowledge.Load(cfg.Assistant.KnowledgePath)
	if err != nil {
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}

	var dataStore store.Store
	if cfg.Database.URL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.Database.URL, cfg.Database.MaxConnections)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		dataStore = pg
		log.Info().Msg("Postgres store initialized")
	} else {
		dataStore = store.NewMemoryStore()
		log.Info().Msg("In-memory store initialized")
	}

	if err := seedIfEmpty(ctx, dataStore); err != nil {
		log.Warn().Err(err).Msg("Fixture seeding failed")
	}

	reg := registry.New(dataStore)
	composer := prompt.NewComposer(persona)
	gen := assistant.NewHTTPGenerator(cfg.Assistant.GenerateURL, cfg.Assistant.GenerateTimeout)
	engine := assistant.NewEngine(dataStore, reg, kb, composer, gen)
	sim := sse.NewSimulator(dataStore, simInitialDelay, simStepDelay)

	log.Info().
		Str("persona", persona.Identity.Name).
		Int("knowledge_docs", len(kb.Docs())).
		Int("functions", len(reg.Schemas())).
		Msg("Assistant engine initialized")

	h := handlers.New(dataStore, engine, reg, sim, cfg.Version)
	router := api.NewRouter(h)

	return &Server{
		Handler:      router,
		Store:        dataStore,
		Config:       cfg,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}

func seedIfEmpty(ctx context.Context, s store.Store) error {
	needed, err := seed.Needed(ctx, s)
	if err != nil {
		return err
	}
	if !needed {
		return nil
	}
	return seed.Run(ctx, s)
}
