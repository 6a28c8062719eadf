// Package container wires the application dependency graph: the datastore,
// the upstream clients and every service and handler built on them.
package container

import (
	"context"
	"log/slog"
	"os"

	"github.com/trailwise-ai/trailwise/config"
	"github.com/trailwise-ai/trailwise/internal/api/datastore"
	"github.com/trailwise-ai/trailwise/internal/api/explorer"
	"github.com/trailwise-ai/trailwise/internal/api/fetcher"
	"github.com/trailwise-ai/trailwise/internal/api/llm"
	"github.com/trailwise-ai/trailwise/internal/api/orchestrator"
	"github.com/trailwise-ai/trailwise/internal/api/reviews"
	"github.com/trailwise-ai/trailwise/internal/client/elevation"
	"github.com/trailwise-ai/trailwise/internal/client/nps"
	"github.com/trailwise-ai/trailwise/internal/client/scrape"
	"github.com/trailwise-ai/trailwise/internal/client/serper"
	"github.com/trailwise-ai/trailwise/internal/client/weatherapi"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Store  *datastore.Store

	Fetcher   *fetcher.Service
	Reviews   *reviews.Service
	Concierge *orchestrator.Service
	Explorer  *explorer.Service

	ChatHandler     *orchestrator.Handler
	ExplorerHandler *explorer.Handler
}

// NewContainer builds the dependency graph. API keys come from the
// environment; endpoint overrides come from the config.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	store := datastore.New(cfg.Data.FixturesDir, cfg.Data.CacheDir, cfg.Data.RawDir, logger)

	// Upstream clients. Each carries its own retry/breaker HTTP client.
	npsClient := nps.NewClient(nps.ClientConfig{
		APIKey:  os.Getenv("NPS_API_KEY"),
		BaseURL: cfg.Upstream.NPSBaseURL,
		Logger:  logger,
	})
	weatherClient := weatherapi.NewClient(weatherapi.ClientConfig{
		APIKey:  os.Getenv("WEATHER_API_KEY"),
		BaseURL: cfg.Upstream.WeatherBaseURL,
		Logger:  logger,
	})
	serperClient := serper.NewClient(serper.ClientConfig{
		APIKey: os.Getenv("SERPER_API_KEY"),
		Logger: logger,
	})
	scrapeClient := scrape.NewClient(scrape.ClientConfig{Logger: logger})
	elevationClient := elevation.NewClient(cfg.Upstream.ElevationBaseURL, nil)

	aiClient, err := llm.NewAIClient(ctx, cfg.LLM.Model, logger)
	if err != nil {
		logger.Error("Failed to initialize LLM client", slog.Any("error", err))
		return nil, err
	}
	llmService := llm.NewService(aiClient, logger)

	fetcherService := fetcher.NewService(store, npsClient, elevationClient, serperClient, scrapeClient, llmService, logger)
	reviewService := reviews.NewService(store, scrapeClient, llmService, logger)
	conciergeService := orchestrator.NewService(store, llmService, reviewService, weatherClient, npsClient, fetcherService, logger)
	explorerService := explorer.NewService(store, fetcherService, weatherClient, npsClient, logger)

	return &Container{
		Config:          cfg,
		Logger:          logger,
		Store:           store,
		Fetcher:         fetcherService,
		Reviews:         reviewService,
		Concierge:       conciergeService,
		Explorer:        explorerService,
		ChatHandler:     orchestrator.NewHandler(conciergeService, logger),
		ExplorerHandler: explorer.NewHandler(explorerService, logger),
	}, nil
}
