package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockbot/internal/common"
	"github.com/bobmcallan/stockbot/internal/models"
	"github.com/bobmcallan/stockbot/internal/services/market"
)

// --- mock provider ---

type mockProvider struct {
	profiles    map[string]*models.CompanyProfile
	quotes      []models.SearchQuote
	searchErr   error
	profileErr  error
	profileHits map[string]int
	searchHits  int
}

func (m *mockProvider) GetProfile(_ context.Context, ticker string) (*models.CompanyProfile, error) {
	if m.profileHits == nil {
		m.profileHits = map[string]int{}
	}
	m.profileHits[ticker]++
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	if p, ok := m.profiles[ticker]; ok {
		return p, nil
	}
	return nil, models.ErrNotFound
}

func (m *mockProvider) GetPriceHistory(context.Context, string, models.Lookback) (models.PriceSeries, error) {
	return nil, errors.New("not implemented")
}

func (m *mockProvider) GetIncomeStatement(context.Context, string) (*models.FinancialStatement, error) {
	return nil, errors.New("not implemented")
}

func (m *mockProvider) Search(_ context.Context, _ string) ([]models.SearchQuote, error) {
	m.searchHits++
	return m.quotes, m.searchErr
}

var apple = &models.CompanyProfile{
	Code:     "AAPL",
	Name:     "Apple Inc.",
	Exchange: "NASDAQ",
	Sector:   "Technology",
	Industry: "Consumer Electronics",
}

func newTestResolver(t *testing.T, p *mockProvider) *Service {
	t.Helper()
	s, err := NewService(p, 10, common.NewSilentLogger())
	require.NoError(t, err)
	return s
}

func TestResolve_DirectTicker(t *testing.T) {
	p := &mockProvider{profiles: map[string]*models.CompanyProfile{"AAPL": apple}}
	s := newTestResolver(t, p)

	match, err := s.Resolve(context.Background(), "aapl")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", match.Ticker)
	assert.Equal(t, "Apple Inc.", match.Name)
	assert.Equal(t, "NASDAQ", match.Exchange)
	assert.Equal(t, "Technology", match.Sector)
	assert.Equal(t, models.MatchHigh, match.MatchQuality)
	assert.Equal(t, 0, p.searchHits, "direct hit skips search")
}

func TestResolve_SearchFiltersNonEquity(t *testing.T) {
	p := &mockProvider{
		profiles: map[string]*models.CompanyProfile{"AAPL": apple},
		quotes: []models.SearchQuote{
			{Code: "APPLX", Name: "Apple Growth Fund", Type: "FUND"},
			{Code: "AAPL", Name: "Apple Inc.", Type: "Common Stock", Exchange: "US"},
		},
	}
	s := newTestResolver(t, p)

	match, err := s.Resolve(context.Background(), "Apple")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", match.Ticker)
	assert.Equal(t, "Apple Inc.", match.Name)
	assert.Equal(t, models.MatchMedium, match.MatchQuality)
	assert.Equal(t, 1, p.profileHits["AAPL"], "winner re-fetched")
}

func TestResolve_Scoring(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		quotes []models.SearchQuote
		want   string
	}{
		{
			name:  "name and symbol beats name only",
			query: "ford",
			quotes: []models.SearchQuote{
				{Code: "F", Name: "Ford Motor Company", Type: "Common Stock"},
				{Code: "FORD", Name: "Forward Industries Ford", Type: "Common Stock"},
			},
			want: "FORD",
		},
		{
			name:  "first seen wins ties",
			query: "bank",
			quotes: []models.SearchQuote{
				{Code: "BAC", Name: "Bank of America", Type: "Common Stock"},
				{Code: "BK", Name: "Bank of New York Mellon", Type: "Common Stock"},
			},
			want: "BAC",
		},
		{
			name:  "symbol only match",
			query: "msf",
			quotes: []models.SearchQuote{
				{Code: "MSFT", Name: "Microsoft Corporation", Type: "Common Stock"},
			},
			want: "MSFT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best, ok := bestCandidate(tt.query, tt.quotes)
			require.True(t, ok)
			assert.Equal(t, tt.want, best.Code)
		})
	}
}

func TestResolve_NotFound(t *testing.T) {
	p := &mockProvider{
		quotes: []models.SearchQuote{
			{Code: "XYZ", Name: "Unrelated Corp", Type: "Common Stock"},
			{Code: "ZZZF", Name: "Zzz Fund", Type: "ETF"},
		},
	}
	s := newTestResolver(t, p)

	_, err := s.Resolve(context.Background(), "zzz")
	assert.ErrorIs(t, err, models.ErrTickerNotFound)
}

func TestResolve_SymbolEqualsQueryIsHigh(t *testing.T) {
	// direct lookup misses, search finds an exact symbol
	p := &mockProvider{
		profileErr: errors.New("temporary failure"),
		quotes: []models.SearchQuote{
			{Code: "ibm", Name: "International Business Machines", Type: "Common Stock", Exchange: "US"},
		},
	}
	s := newTestResolver(t, p)

	match, err := s.Resolve(context.Background(), "IBM")
	require.NoError(t, err)
	assert.Equal(t, "IBM", match.Ticker)
	assert.Equal(t, models.MatchHigh, match.MatchQuality)
	assert.Equal(t, "International Business Machines", match.Name, "falls back to search metadata")
	assert.Equal(t, "US", match.Exchange)
}

func TestResolve_NonDefaultExchangeQualifiesTicker(t *testing.T) {
	vodafone := &models.CompanyProfile{
		Code:     "VOD",
		Name:     "Vodafone Group PLC",
		Exchange: "LSE",
		Sector:   "Communication Services",
		Industry: "Telecom Services",
	}
	p := &mockProvider{
		profiles: map[string]*models.CompanyProfile{"VOD.LSE": vodafone},
		quotes: []models.SearchQuote{
			{Code: "VOD", Name: "Vodafone Group PLC", Type: "Common Stock", Exchange: "LSE"},
		},
	}
	s := newTestResolver(t, p)

	match, err := s.Resolve(context.Background(), "vodafone")
	require.NoError(t, err)

	assert.Equal(t, "VOD.LSE", match.Ticker)
	assert.Equal(t, "LSE", match.Exchange)
	assert.Equal(t, "Communication Services", match.Sector)
	assert.Equal(t, "Telecom Services", match.Industry)
	assert.Equal(t, models.MatchMedium, match.MatchQuality)
	assert.Equal(t, 1, p.profileHits["VOD.LSE"])
	assert.Zero(t, p.profileHits["VOD"], "bare code not looked up")
}

func TestResolve_DefaultExchangeOption(t *testing.T) {
	tests := []struct {
		name            string
		defaultExchange string
		exchange        string
		want            string
	}{
		{name: "default listing stays bare", defaultExchange: "", exchange: "US", want: "BHP"},
		{name: "other listing qualified", defaultExchange: "", exchange: "AU", want: "BHP.AU"},
		{name: "configured default stays bare", defaultExchange: "au", exchange: "AU", want: "BHP"},
		{name: "configured default qualifies US", defaultExchange: "AU", exchange: "US", want: "BHP.US"},
		{name: "missing exchange stays bare", defaultExchange: "AU", exchange: "", want: "BHP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &mockProvider{
				quotes: []models.SearchQuote{
					{Code: "BHP", Name: "BHP Group", Type: "Common Stock", Exchange: tt.exchange},
				},
			}
			s, err := NewService(p, 10, common.NewSilentLogger(), WithDefaultExchange(tt.defaultExchange))
			require.NoError(t, err)

			match, err := s.Resolve(context.Background(), "bhp group")
			require.NoError(t, err)
			assert.Equal(t, tt.want, match.Ticker)
		})
	}
}

func TestResolve_DoesNotModifyCachedProfile(t *testing.T) {
	p := &mockProvider{
		profiles: map[string]*models.CompanyProfile{
			"ACME.NYSE": {Code: "ACME", Sector: "Industrials"},
		},
		quotes: []models.SearchQuote{
			{Code: "ACME", Name: "Acme Widgets", Type: "Common Stock", Exchange: "NYSE"},
		},
	}
	mkt, err := market.NewService(p, 10, time.Hour, common.NewSilentLogger())
	require.NoError(t, err)
	s, err := NewService(mkt, 10, common.NewSilentLogger())
	require.NoError(t, err)
	ctx := context.Background()

	match, err := s.Resolve(ctx, "acme widgets")
	require.NoError(t, err)
	assert.Equal(t, "Acme Widgets", match.Name)
	assert.Equal(t, "NYSE", match.Exchange)
	assert.Equal(t, "Industrials", match.Sector)

	cached, err := mkt.GetProfile(ctx, "ACME.NYSE")
	require.NoError(t, err)
	assert.Equal(t, 1, p.profileHits["ACME.NYSE"], "served from the market cache")
	assert.Empty(t, cached.Name)
	assert.Empty(t, cached.Exchange)
}

func TestResolve_CachesByLowercasedQuery(t *testing.T) {
	p := &mockProvider{
		profiles: map[string]*models.CompanyProfile{"AAPL": apple},
		quotes:   []models.SearchQuote{{Code: "AAPL", Name: "Apple Inc.", Type: "Common Stock"}},
	}
	s := newTestResolver(t, p)
	ctx := context.Background()

	first, err := s.Resolve(ctx, "Apple")
	require.NoError(t, err)
	second, err := s.Resolve(ctx, "APPLE")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, p.searchHits)
}

func TestResolve_FailuresNotCached(t *testing.T) {
	p := &mockProvider{}
	s := newTestResolver(t, p)
	ctx := context.Background()

	_, err := s.Resolve(ctx, "nothing")
	require.ErrorIs(t, err, models.ErrTickerNotFound)

	p.quotes = []models.SearchQuote{{Code: "NTHG", Name: "Nothing Ltd", Type: "Common Stock"}}
	match, err := s.Resolve(ctx, "nothing")
	require.NoError(t, err)
	assert.Equal(t, "NTHG", match.Ticker)
}

func TestResolve_SearchError(t *testing.T) {
	p := &mockProvider{searchErr: errors.New("upstream down")}
	s := newTestResolver(t, p)

	_, err := s.Resolve(context.Background(), "apple")
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrTickerNotFound)
}

func TestResolve_BlankQuery(t *testing.T) {
	s := newTestResolver(t, &mockProvider{})

	_, err := s.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, models.ErrQueryRequired)
}
