// Package insight assembles metrics and narrative analysis for a ticker
package insight

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/bobmcallan/stockbot/internal/common"
	"github.com/bobmcallan/stockbot/internal/interfaces"
	"github.com/bobmcallan/stockbot/internal/models"
	"github.com/bobmcallan/stockbot/internal/signals"
)

const (
	DefaultMaxAttempts  = 3
	DefaultRetryBackoff = time.Second
)

// Revenue growth compares the latest period with the one this many columns back, inclusive.
const (
	revenuePeriods1Y = 2
	revenuePeriods3Y = 4
)

// Options tunes the orchestration
type Options struct {
	MaxAttempts  int
	RetryBackoff time.Duration
	RSIWindow    int
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts < 1 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.RetryBackoff < 0 {
		o.RetryBackoff = DefaultRetryBackoff
	}
	if o.RSIWindow < 1 {
		o.RSIWindow = signals.DefaultRSIWindow
	}
	return o
}

// Service implements interfaces.InsightService
type Service struct {
	provider  interfaces.MarketDataProvider
	narrative interfaces.NarrativeGenerator
	opts      Options
	logger    *common.Logger
}

// NewService creates an insight service. narrative may be nil, in which case
// every analysis carries the placeholder narrative.
func NewService(provider interfaces.MarketDataProvider, narrative interfaces.NarrativeGenerator, opts Options, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		provider:  provider,
		narrative: narrative,
		opts:      opts.withDefaults(),
		logger:    logger,
	}
}

// histories holds the price series fetched for one analysis
type histories struct {
	month, year1, year3, year5 models.PriceSeries
}

// FetchInsights computes the metrics record for ticker and asks the narrative
// generator to interpret it
func (s *Service) FetchInsights(ctx context.Context, ticker string) (*models.StockAnalysis, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, models.ErrTickerRequired
	}

	start := time.Now()

	profile, err := s.provider.GetProfile(ctx, ticker)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", ticker, models.ErrStockNotFound)
		}
		return nil, fmt.Errorf("fetch profile for %s: %w", ticker, err)
	}
	if profile == nil || profile.Name == "" {
		return nil, fmt.Errorf("%s: %w", ticker, models.ErrStockNotFound)
	}

	h, err := s.fetchHistories(ctx, ticker)
	if err != nil {
		return nil, err
	}

	statement, err := s.provider.GetIncomeStatement(ctx, ticker)
	if err != nil {
		s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Income statement unavailable, revenue growth omitted")
		statement = nil
	}

	record := s.buildRecord(profile, h, statement)

	analysis := &models.StockAnalysis{
		Metrics:    record,
		AIAnalysis: s.generateNarrative(ctx, ticker, record),
	}

	s.logger.Info().
		Str("ticker", ticker).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("Insights assembled")

	return analysis, nil
}

// fetchHistories loads all four lookbacks, retrying the whole set with a
// fixed backoff until MaxAttempts is exhausted
func (s *Service) fetchHistories(ctx context.Context, ticker string) (histories, error) {
	var h histories
	attempt := 0

	operation := func() error {
		attempt++
		var err error
		if h.year1, err = s.provider.GetPriceHistory(ctx, ticker, models.Lookback1Year); err != nil {
			return s.retryable(ctx, ticker, attempt, err)
		}
		if h.year3, err = s.provider.GetPriceHistory(ctx, ticker, models.Lookback3Year); err != nil {
			return s.retryable(ctx, ticker, attempt, err)
		}
		if h.year5, err = s.provider.GetPriceHistory(ctx, ticker, models.Lookback5Year); err != nil {
			return s.retryable(ctx, ticker, attempt, err)
		}
		if h.month, err = s.provider.GetPriceHistory(ctx, ticker, models.Lookback1Month); err != nil {
			return s.retryable(ctx, ticker, attempt, err)
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.opts.RetryBackoff), uint64(s.opts.MaxAttempts-1)),
		ctx,
	)

	if err := backoff.Retry(operation, policy); err != nil {
		if ctx.Err() != nil {
			return histories{}, ctx.Err()
		}
		s.logger.Error().Str("ticker", ticker).Int("attempts", attempt).Err(err).Msg("Historical data fetch failed")
		return histories{}, fmt.Errorf("%s: %w: %v", ticker, models.ErrHistoricalDataUnavailable, err)
	}
	return h, nil
}

func (s *Service) retryable(ctx context.Context, ticker string, attempt int, err error) error {
	if ctx.Err() != nil {
		return backoff.Permanent(err)
	}
	s.logger.Warn().
		Str("ticker", ticker).
		Int("attempt", attempt).
		Int("max_attempts", s.opts.MaxAttempts).
		Err(err).
		Msg("Historical data fetch attempt failed")
	return err
}

func (s *Service) buildRecord(p *models.CompanyProfile, h histories, statement *models.FinancialStatement) models.MetricsRecord {
	var m models.MetricsRecord

	if last, ok := h.month.LastClose(); ok && !math.IsNaN(last) && !math.IsInf(last, 0) {
		m.CurrentPrice = models.Ptr(models.Price(last))
	}

	if v, ok := signals.PeriodPerformance(h.year1); ok {
		m.Performance1Y = &v
	}
	if v, ok := signals.PeriodPerformance(h.year3); ok {
		m.Performance3Y = &v
	}
	if v, ok := signals.PeriodPerformance(h.year5); ok {
		m.Performance5Y = &v
	}

	if v, ok := signals.RevenueGrowth(statement, revenuePeriods1Y); ok {
		m.RevenueGrowth1Y = &v
	}
	if v, ok := signals.RevenueGrowth(statement, revenuePeriods3Y); ok {
		m.RevenueGrowth3Y = &v
	}

	if v, ok := signals.RSI(h.month, s.opts.RSIWindow); ok {
		m.RSI = &v
	}

	if p.PERatio != nil {
		m.PERatio = models.Ptr(models.Ratio(*p.PERatio))
	}
	if p.MarketCap != nil {
		m.MarketCap = models.Ptr(models.Amount(*p.MarketCap))
	}
	if p.DividendYield != nil {
		m.DividendYield = models.Ptr(models.Percent(*p.DividendYield))
	}
	if p.High52Week != nil {
		m.High52Week = models.Ptr(models.Price(*p.High52Week))
	}
	if p.Low52Week != nil {
		m.Low52Week = models.Ptr(models.Price(*p.Low52Week))
	}
	m.Sector = p.Sector
	m.Industry = p.Industry

	return m
}

// generateNarrative never fails; any fault yields the placeholder text
func (s *Service) generateNarrative(ctx context.Context, ticker string, record models.MetricsRecord) string {
	if s.narrative == nil {
		s.logger.Warn().Str("ticker", ticker).Err(models.ErrNarrativeNotConfigured).Msg("Narrative skipped")
		return models.NarrativeUnavailable
	}

	text, err := s.narrative.GenerateContent(ctx, buildAnalysisPrompt(ticker, record))
	if err != nil {
		s.logger.Error().Str("ticker", ticker).Err(err).Msg("Error generating AI analysis")
		return models.NarrativeUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return models.NarrativeUnavailable
	}
	return text
}

var _ interfaces.InsightService = (*Service)(nil)
