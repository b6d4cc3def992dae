package interfaces

import (
	"context"

	"github.com/bobmcallan/stockbot/internal/models"
)

// TickerResolver maps a free-text query to a single listed ticker
type TickerResolver interface {
	// Resolve returns models.ErrTickerNotFound when nothing matches
	Resolve(ctx context.Context, query string) (*models.TickerMatch, error)
}

// InsightService produces metrics and narrative for a ticker
type InsightService interface {
	// FetchInsights returns models.ErrStockNotFound for unknown tickers and
	// models.ErrHistoricalDataUnavailable when price history cannot be fetched
	FetchInsights(ctx context.Context, ticker string) (*models.StockAnalysis, error)
}
