package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/milhas/internal/cache"
	"github.com/bobmcallan/milhas/internal/clients/gemini"
	"github.com/bobmcallan/milhas/internal/clients/scrape"
	"github.com/bobmcallan/milhas/internal/common"
	"github.com/bobmcallan/milhas/internal/interfaces"
	"github.com/bobmcallan/milhas/internal/services/advisory"
	"github.com/bobmcallan/milhas/internal/services/opportunity"
	"github.com/bobmcallan/milhas/internal/services/portfolio"
	"github.com/bobmcallan/milhas/internal/services/quote"
	"github.com/bobmcallan/milhas/internal/storage/sqlite"
)

// App holds all initialized services, clients, and storage.
type App struct {
	Config             *common.Config
	Logger             *common.Logger
	Cache              cache.Store
	Store              interfaces.OperationStore
	GeminiClient       interfaces.GeminiClient
	QuoteService       interfaces.QuoteService
	OpportunityService interfaces.OpportunityService
	PortfolioService   interfaces.PortfolioService
	AdvisoryService    interfaces.AdvisoryService
	StartupTime        time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPath checks the provided path, MILHAS_CONFIG, the binary
// directory, then config/milhas.toml.
func resolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("MILHAS_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "milhas.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/milhas.toml" // fallback for development
		}
	}
	return configPath
}

// NewApp loads configuration and initializes storage, clients and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(resolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewAppWithConfig(context.Background(), config, common.NewLoggerFromConfig(config.Logging))
}

// NewAppWithConfig wires the application from an already loaded config.
func NewAppWithConfig(ctx context.Context, config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	store := sqlite.NewStore(config.Storage.Path, logger)
	if err := store.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate storage: %w", err)
	}

	cacheStore, err := cache.NewStore(ctx, logger, config.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	quotesCfg := config.Sources.Quotes
	quotesClient := scrape.NewClient(
		scrape.WithLogger(logger),
		scrape.WithTimeout(quotesCfg.GetTimeout(scrape.DefaultTimeout)),
		scrape.WithRateLimit(quotesCfg.RateLimit),
		scrape.WithUserAgent(quotesCfg.UserAgent),
	)

	oppsCfg := config.Sources.Opportunities
	oppsClient := scrape.NewClient(
		scrape.WithLogger(logger),
		scrape.WithTimeout(oppsCfg.GetTimeout(5*time.Second)),
		scrape.WithRateLimit(oppsCfg.RateLimit),
		scrape.WithUserAgent(oppsCfg.UserAgent),
	)

	var geminiClient interfaces.GeminiClient
	if config.Advisory.APIKey != "" {
		gc, err := gemini.NewClient(ctx, config.Advisory.APIKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Advisory.Model),
			gemini.WithTimeout(config.Advisory.GetTimeout()),
			gemini.WithSystemInstruction(advisory.SystemInstruction),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			geminiClient = gc
		}
	} else {
		logger.Warn().Msg("Gemini API key not configured - advisory will be unavailable")
	}

	quoteService := quote.NewService(quotesClient, cacheStore, quotesCfg.URL, quotesCfg.GetTTL(common.FreshnessQuotes), logger)
	opportunityService := opportunity.NewService(oppsClient, cacheStore, oppsCfg.URL, oppsCfg.GetTTL(common.FreshnessOpportunities), logger)
	portfolioService := portfolio.NewService(store, quoteService, logger)
	advisoryService := advisory.NewService(geminiClient, logger)

	a := &App{
		Config:             config,
		Logger:             logger,
		Cache:              cacheStore,
		Store:              store,
		GeminiClient:       geminiClient,
		QuoteService:       quoteService,
		OpportunityService: opportunityService,
		PortfolioService:   portfolioService,
		AdvisoryService:    advisoryService,
		StartupTime:        startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Cache close failed")
		}
		a.Cache = nil
	}
}
