// Package market provides a caching layer over the market data provider
package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/stockbot/internal/cache"
	"github.com/bobmcallan/stockbot/internal/common"
	"github.com/bobmcallan/stockbot/internal/interfaces"
	"github.com/bobmcallan/stockbot/internal/models"
)

const (
	DefaultCacheSize = 100
	DefaultCacheTTL  = time.Hour
)

// Service wraps a MarketDataProvider and memoises its responses for a
// bounded time. Errors are never cached.
type Service struct {
	provider   interfaces.MarketDataProvider
	logger     *common.Logger
	profiles   *cache.Cache[string, *models.CompanyProfile]
	history    *cache.Cache[string, models.PriceSeries]
	statements *cache.Cache[string, *models.FinancialStatement]
	searches   *cache.Cache[string, []models.SearchQuote]
}

// NewService creates a caching market data service. size and ttl apply to
// each cached endpoint independently.
func NewService(provider interfaces.MarketDataProvider, size int, ttl time.Duration, logger *common.Logger) (*Service, error) {
	return newService(provider, size, ttl, time.Now, logger)
}

func newService(provider interfaces.MarketDataProvider, size int, ttl time.Duration, now func() time.Time, logger *common.Logger) (*Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("market data provider is required")
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	s := &Service{provider: provider, logger: logger}

	var err error
	if s.profiles, err = cache.New(size, ttl, cache.WithClock[string, *models.CompanyProfile](now)); err != nil {
		return nil, err
	}
	if s.history, err = cache.New(size, ttl, cache.WithClock[string, models.PriceSeries](now)); err != nil {
		return nil, err
	}
	if s.statements, err = cache.New(size, ttl, cache.WithClock[string, *models.FinancialStatement](now)); err != nil {
		return nil, err
	}
	if s.searches, err = cache.New(size, ttl, cache.WithClock[string, []models.SearchQuote](now)); err != nil {
		return nil, err
	}
	return s, nil
}

func tickerKey(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// GetProfile returns the company profile for ticker
func (s *Service) GetProfile(ctx context.Context, ticker string) (*models.CompanyProfile, error) {
	key := tickerKey(ticker)
	if p, ok := s.profiles.Get(key); ok {
		s.logger.Debug().Str("ticker", key).Msg("Profile cache hit")
		return p, nil
	}

	p, err := s.provider.GetProfile(ctx, ticker)
	if err != nil {
		return nil, err
	}
	s.profiles.Put(key, p)
	return p, nil
}

// GetPriceHistory returns daily bars for ticker over lookback
func (s *Service) GetPriceHistory(ctx context.Context, ticker string, lookback models.Lookback) (models.PriceSeries, error) {
	key := tickerKey(ticker) + "|" + string(lookback)
	if series, ok := s.history.Get(key); ok {
		s.logger.Debug().Str("key", key).Msg("Price history cache hit")
		return series, nil
	}

	series, err := s.provider.GetPriceHistory(ctx, ticker, lookback)
	if err != nil {
		return nil, err
	}
	s.history.Put(key, series)
	return series, nil
}

// GetIncomeStatement returns the yearly income statement for ticker
func (s *Service) GetIncomeStatement(ctx context.Context, ticker string) (*models.FinancialStatement, error) {
	key := tickerKey(ticker)
	if stmt, ok := s.statements.Get(key); ok {
		return stmt, nil
	}

	stmt, err := s.provider.GetIncomeStatement(ctx, ticker)
	if err != nil {
		return nil, err
	}
	s.statements.Put(key, stmt)
	return stmt, nil
}

// Search returns listings matching query
func (s *Service) Search(ctx context.Context, query string) ([]models.SearchQuote, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	if quotes, ok := s.searches.Get(key); ok {
		return quotes, nil
	}

	quotes, err := s.provider.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	s.searches.Put(key, quotes)
	return quotes, nil
}

// Purge drops every cached response
func (s *Service) Purge() {
	s.profiles.Purge()
	s.history.Purge()
	s.statements.Purge()
	s.searches.Purge()
}

var _ interfaces.MarketDataProvider = (*Service)(nil)
