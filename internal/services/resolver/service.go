// Package resolver maps free-text queries to listed tickers
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bobmcallan/stockbot/internal/cache"
	"github.com/bobmcallan/stockbot/internal/common"
	"github.com/bobmcallan/stockbot/internal/interfaces"
	"github.com/bobmcallan/stockbot/internal/models"
)

// DefaultCacheSize bounds the number of remembered resolutions
const DefaultCacheSize = 1000

// DefaultExchange is the listing whose tickers are returned without a suffix
const DefaultExchange = "US"

const (
	nameMatchScore   = 3
	symbolMatchScore = 2
)

// Service implements interfaces.TickerResolver
type Service struct {
	provider        interfaces.MarketDataProvider
	cache           *cache.Cache[string, *models.TickerMatch]
	defaultExchange string
	logger          *common.Logger
}

// Option configures a Service
type Option func(*Service)

// WithDefaultExchange sets the exchange whose search results keep a bare code.
// Candidates from any other exchange are returned as CODE.EXCHANGE.
func WithDefaultExchange(exchange string) Option {
	return func(s *Service) {
		if exchange = strings.ToUpper(strings.TrimSpace(exchange)); exchange != "" {
			s.defaultExchange = exchange
		}
	}
}

// NewService creates a resolver. Resolutions are cached for the life of the
// process, bounded to cacheSize entries.
func NewService(provider interfaces.MarketDataProvider, cacheSize int, logger *common.Logger, opts ...Option) (*Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("market data provider is required")
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	c, err := cache.New[string, *models.TickerMatch](cacheSize, 0)
	if err != nil {
		return nil, err
	}

	s := &Service{provider: provider, cache: c, defaultExchange: DefaultExchange, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Resolve maps query to a single equity listing
func (s *Service) Resolve(ctx context.Context, query string) (*models.TickerMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.ErrQueryRequired
	}

	key := strings.ToLower(query)
	if match, ok := s.cache.Get(key); ok {
		s.logger.Debug().Str("query", query).Str("ticker", match.Ticker).Msg("Resolver cache hit")
		return match, nil
	}

	match, err := s.resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	s.cache.Put(key, match)
	s.logger.Info().
		Str("query", query).
		Str("ticker", match.Ticker).
		Str("quality", string(match.MatchQuality)).
		Msg("Resolved ticker")
	return match, nil
}

func (s *Service) resolve(ctx context.Context, query string) (*models.TickerMatch, error) {
	symbol := strings.ToUpper(query)

	profile, err := s.provider.GetProfile(ctx, symbol)
	switch {
	case err == nil && profile != nil && profile.Name != "":
		return newMatch(symbol, profile, models.MatchHigh), nil
	case err != nil && ctx.Err() != nil:
		return nil, ctx.Err()
	case err != nil && !errors.Is(err, models.ErrNotFound):
		s.logger.Debug().Str("query", query).Err(err).Msg("Direct lookup failed, falling back to search")
	}

	quotes, err := s.provider.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	best, ok := bestCandidate(query, quotes)
	if !ok {
		return nil, models.ErrTickerNotFound
	}

	code := strings.ToUpper(best.Code)
	ticker := s.qualify(code, best.Exchange)
	quality := models.MatchMedium
	if code == symbol || ticker == symbol {
		quality = models.MatchHigh
	}

	fallback := models.CompanyProfile{Name: best.Name, Exchange: best.Exchange}
	detail, err := s.provider.GetProfile(ctx, ticker)
	if err != nil || detail == nil {
		s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Detail lookup failed, using search metadata")
		detail = &fallback
	}

	// profiles may be shared with the provider cache; fill gaps on a copy
	merged := *detail
	if merged.Name == "" {
		merged.Name = fallback.Name
	}
	if merged.Exchange == "" {
		merged.Exchange = fallback.Exchange
	}

	return newMatch(ticker, &merged, quality), nil
}

// qualify appends the search result's exchange to code unless it is the
// default listing.
func (s *Service) qualify(code, exchange string) string {
	exchange = strings.ToUpper(strings.TrimSpace(exchange))
	if strings.Contains(code, ".") || exchange == "" || exchange == s.defaultExchange {
		return code
	}
	return code + "." + exchange
}

// bestCandidate scores equity candidates against query. The strictly highest
// positive score wins; earlier candidates win ties.
func bestCandidate(query string, quotes []models.SearchQuote) (models.SearchQuote, bool) {
	q := strings.ToLower(query)

	var best models.SearchQuote
	bestScore := 0
	for _, quote := range quotes {
		if !quote.IsEquity() {
			continue
		}
		if score := scoreCandidate(q, quote); score > bestScore {
			best, bestScore = quote, score
		}
	}
	return best, bestScore > 0
}

func scoreCandidate(lowerQuery string, quote models.SearchQuote) int {
	score := 0
	if strings.Contains(strings.ToLower(quote.Name), lowerQuery) {
		score += nameMatchScore
	}
	if strings.Contains(strings.ToLower(quote.Code), lowerQuery) {
		score += symbolMatchScore
	}
	return score
}

func newMatch(ticker string, p *models.CompanyProfile, quality models.MatchQuality) *models.TickerMatch {
	return &models.TickerMatch{
		Ticker:       ticker,
		Name:         p.Name,
		Exchange:     p.Exchange,
		Sector:       p.Sector,
		Industry:     p.Industry,
		MatchQuality: quality,
	}
}

var _ interfaces.TickerResolver = (*Service)(nil)
