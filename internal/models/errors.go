package models

import "errors"

var (
	// ErrTickerRequired is returned when an analysis request carries no ticker.
	ErrTickerRequired = errors.New("ticker symbol is required")
	// ErrQueryRequired is returned when a search request carries no query.
	ErrQueryRequired = errors.New("query is required")
	// ErrTickerNotFound means no candidate matched a search query.
	ErrTickerNotFound = errors.New("no matching ticker found")
	// ErrStockNotFound means the provider has no profile for the ticker.
	ErrStockNotFound = errors.New("stock not found")
	// ErrHistoricalDataUnavailable is returned once price history retries are exhausted.
	ErrHistoricalDataUnavailable = errors.New("historical data unavailable")
	// ErrNarrativeNotConfigured means no generative provider credentials were supplied.
	ErrNarrativeNotConfigured = errors.New("AI analysis configuration error")
	// ErrNotFound is returned by provider clients for unknown symbols.
	ErrNotFound = errors.New("not found")
)
