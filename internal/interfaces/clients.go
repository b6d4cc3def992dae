// Package interfaces defines service contracts for stockbot
package interfaces

import (
	"context"

	"github.com/bobmcallan/stockbot/internal/models"
)

// MarketDataProvider is the upstream source of prices, profiles and statements.
type MarketDataProvider interface {
	// GetProfile retrieves company details; unknown symbols return models.ErrNotFound
	GetProfile(ctx context.Context, ticker string) (*models.CompanyProfile, error)

	// GetPriceHistory retrieves daily bars for the trailing window, oldest first
	GetPriceHistory(ctx context.Context, ticker string, lookback models.Lookback) (models.PriceSeries, error)

	// GetIncomeStatement retrieves the yearly income statement, most recent period first
	GetIncomeStatement(ctx context.Context, ticker string) (*models.FinancialStatement, error)

	// Search runs a free-text symbol search
	Search(ctx context.Context, query string) ([]models.SearchQuote, error)
}

// NarrativeGenerator turns a prompt into prose
type NarrativeGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
