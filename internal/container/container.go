package container

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-trip-day-planner/app/db"
	"github.com/FACorreiaa/go-trip-day-planner/config"
	"github.com/FACorreiaa/go-trip-day-planner/internal/api/auth"
	generativeAI "github.com/FACorreiaa/go-trip-day-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-trip-day-planner/internal/api/geocode"
	"github.com/FACorreiaa/go-trip-day-planner/internal/api/trip"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *slog.Logger
	Pool        *pgxpool.Pool
	Geocoder    *geocode.NominatimClient
	AuthHandler *auth.HandlerImpl
	TripService *trip.ServiceImpl
	TripHandler *trip.HandlerImpl
}

// NewContainer wires repositories, clients, services and handlers on top of an open pool.
// A missing LLM key is not fatal: the planner still serves every route that does not
// need the model.
func NewContainer(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (*Container, error) {
	if pool == nil {
		return nil, errors.New("container needs a database pool")
	}

	var llm trip.LLM
	aiClient, err := generativeAI.NewAIClient(ctx, cfg.LLM, logger)
	switch {
	case errors.Is(err, generativeAI.ErrMissingAPIKey):
		logger.Warn("LLM API key not set, brainstorm and detailed itineraries are disabled")
	case err != nil:
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	default:
		llm = aiClient
	}

	authRepo := auth.NewRepository(pool, logger)
	authService := auth.NewService(authRepo, cfg.JWT, logger)
	authHandler := auth.NewHandler(authService, logger)

	geocoder := geocode.NewNominatimClient(cfg.Geocoder, logger)

	tripRepo := trip.NewRepository(pool, logger)
	tripService := trip.NewService(tripRepo, llm, geocoder, cfg.Clustering, cfg.Geocoder.Concurrency, logger)
	tripHandler := trip.NewHandler(tripService, logger)

	return &Container{
		Config:      cfg,
		Logger:      logger,
		Pool:        pool,
		Geocoder:    geocoder,
		AuthHandler: authHandler,
		TripService: tripService,
		TripHandler: tripHandler,
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}
