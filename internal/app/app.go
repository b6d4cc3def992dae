package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/stockbot/internal/clients/claude"
	"github.com/bobmcallan/stockbot/internal/clients/eodhd"
	"github.com/bobmcallan/stockbot/internal/clients/gemini"
	"github.com/bobmcallan/stockbot/internal/common"
	"github.com/bobmcallan/stockbot/internal/interfaces"
	"github.com/bobmcallan/stockbot/internal/models"
	"github.com/bobmcallan/stockbot/internal/services/insight"
	"github.com/bobmcallan/stockbot/internal/services/market"
	"github.com/bobmcallan/stockbot/internal/services/resolver"
)

// App holds all initialized services, clients, and the MCP server.
type App struct {
	Config         *common.Config
	Logger         *common.Logger
	EODHDClient    *eodhd.Client
	MarketData     interfaces.MarketDataProvider
	Narrative      interfaces.NarrativeGenerator
	Resolver       interfaces.TickerResolver
	InsightService interfaces.InsightService
	MCPServer      *server.MCPServer
	StartupTime    time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPath checks the provided path, STOCKBOT_CONFIG, then the binary dir, then config/.
func resolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("STOCKBOT_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "stockbot.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/stockbot.toml" // fallback for development
		}
	}
	return configPath
}

// NewApp loads configuration and wires clients, services and the MCP server.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(resolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(getBinaryDir(), config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	return New(context.Background(), config, logger)
}

// New wires the application from an already loaded config.
func New(ctx context.Context, config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	eodhdKey, err := common.ResolveAPIKey("eodhd_api_key", config.Clients.EODHD.APIKey)
	if err != nil {
		logger.Warn().Msg("EODHD API key not configured - market data requests will be rejected upstream")
	}

	eodhdClient := eodhd.NewClient(eodhdKey,
		eodhd.WithLogger(logger),
		eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
		eodhd.WithRequestInterval(config.Clients.EODHD.GetRequestInterval()),
		eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
		eodhd.WithDefaultExchange(config.Clients.EODHD.DefaultExchange),
	)

	marketData, err := market.NewService(eodhdClient, config.Cache.ProviderSize, config.Cache.GetProviderTTL(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize market data cache: %w", err)
	}

	narrative := newNarrativeGenerator(ctx, config, logger)

	tickerResolver, err := resolver.NewService(marketData, config.Cache.SearchSize, logger,
		resolver.WithDefaultExchange(config.Clients.EODHD.DefaultExchange))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ticker resolver: %w", err)
	}

	insightService := insight.NewService(marketData, narrative, insight.Options{
		MaxAttempts:  config.Insight.MaxAttempts,
		RetryBackoff: config.Insight.GetRetryBackoff(),
		RSIWindow:    config.Insight.RSIWindow,
	}, logger)

	mcpServer := server.NewMCPServer(
		"stockbot",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	a := &App{
		Config:         config,
		Logger:         logger,
		EODHDClient:    eodhdClient,
		MarketData:     marketData,
		Narrative:      narrative,
		Resolver:       tickerResolver,
		InsightService: insightService,
		MCPServer:      mcpServer,
		StartupTime:    startupStart,
	}

	a.registerTools()

	logger.Info().
		Str("narrative", config.Narrative.Provider).
		Bool("narrative_ready", narrative != nil).
		Int64("startup_ms", time.Since(startupStart).Milliseconds()).
		Msg("App initialized")

	return a, nil
}

// newNarrativeGenerator builds the configured provider. A missing key or
// client failure yields nil, which the insight service treats as unavailable.
func newNarrativeGenerator(ctx context.Context, config *common.Config, logger *common.Logger) interfaces.NarrativeGenerator {
	switch config.Narrative.Provider {
	case "claude", "anthropic":
		key, err := common.ResolveAPIKey("anthropic_api_key", config.Clients.Claude.APIKey)
		if err != nil {
			logger.Warn().Err(models.ErrNarrativeNotConfigured).Msg("Anthropic API key not configured - AI analysis will be unavailable")
			return nil
		}
		c, err := claude.NewClient(key, []claude.ClientOption{
			claude.WithLogger(logger),
			claude.WithModel(config.Clients.Claude.Model),
			claude.WithMaxTokens(config.Clients.Claude.MaxTokens),
		})
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Claude client")
			return nil
		}
		logger.Info().Str("provider", "claude").Str("model", c.Model()).Msg("Narrative generator ready")
		return c

	default:
		key, err := common.ResolveAPIKey("gemini_api_key", config.Clients.Gemini.APIKey)
		if err != nil {
			logger.Warn().Err(models.ErrNarrativeNotConfigured).Msg("Gemini API key not configured - AI analysis will be unavailable")
			return nil
		}
		c, err := gemini.NewClient(ctx, key,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
			return nil
		}
		logger.Info().Str("provider", "gemini").Str("model", c.Model()).Msg("Narrative generator ready")
		return c
	}
}

// Close releases resources held by the App.
func (a *App) Close() {
	if svc, ok := a.MarketData.(*market.Service); ok {
		svc.Purge()
	}
}

// registerTools registers all MCP tools on the App's MCPServer.
func (a *App) registerTools() {
	s := a.MCPServer
	logger := a.Logger

	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createAnalyzeStockTool(), handleAnalyzeStock(a.InsightService, logger))
	s.AddTool(createSearchStocksTool(), handleSearchStocks(a.Resolver, logger))
}
