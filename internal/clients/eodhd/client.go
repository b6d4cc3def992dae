// Package eodhd provides a client for the EODHD API
package eodhd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/stockbot/internal/common"
	"github.com/bobmcallan/stockbot/internal/interfaces"
	"github.com/bobmcallan/stockbot/internal/models"
)

const (
	DefaultBaseURL         = "https://eodhd.com/api"
	DefaultTimeout         = 30 * time.Second
	DefaultRequestInterval = 200 * time.Millisecond
	DefaultSearchLimit     = 15
)

// Client implements interfaces.MarketDataProvider against EODHD
type Client struct {
	baseURL         string
	apiKey          string
	defaultExchange string
	httpClient      *http.Client
	logger          *common.Logger
	limiter         *rate.Limiter
	now             func() time.Time
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRequestInterval spaces upstream requests at least interval apart.
// Zero disables spacing.
func WithRequestInterval(interval time.Duration) ClientOption {
	return func(c *Client) {
		if interval <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithDefaultExchange sets the exchange suffix appended to bare tickers (e.g. "US").
func WithDefaultExchange(exchange string) ClientOption {
	return func(c *Client) {
		c.defaultExchange = strings.ToUpper(strings.TrimSpace(exchange))
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:         DefaultBaseURL,
		apiKey:          apiKey,
		defaultExchange: "US",
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(DefaultRequestInterval), 1),
		logger:  common.NewSilentLogger(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Is lets errors.Is(err, models.ErrNotFound) match a 404 response.
func (e *APIError) Is(target error) bool {
	return target == models.ErrNotFound && e.StatusCode == http.StatusNotFound
}

// NormalizeTicker upper-cases ticker and appends the default exchange when it has no suffix.
func (c *Client) NormalizeTicker(ticker string) string {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" || strings.Contains(ticker, ".") || c.defaultExchange == "" {
		return ticker
	}
	return ticker + "." + c.defaultExchange
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetPriceHistory retrieves daily bars covering the lookback window, oldest first
func (c *Client) GetPriceHistory(ctx context.Context, ticker string, lookback models.Lookback) (models.PriceSeries, error) {
	if !lookback.Valid() {
		return nil, fmt.Errorf("unsupported lookback %q", lookback)
	}

	symbol := c.NormalizeTicker(ticker)
	now := c.now().UTC()

	params := url.Values{}
	params.Set("period", "d")
	params.Set("order", "a")
	params.Set("from", lookback.Start(now).Format("2006-01-02"))
	params.Set("to", now.Format("2006-01-02"))

	path := "/eod/" + url.PathEscape(symbol)

	var bars []eodBarResponse
	if err := c.get(ctx, path, params, &bars); err != nil {
		return nil, err
	}

	series := make(models.PriceSeries, 0, len(bars))
	for _, bar := range bars {
		date, err := time.Parse("2006-01-02", bar.Date)
		if err != nil {
			continue
		}
		series = append(series, models.EODBar{
			Date:     date,
			Open:     bar.Open.value,
			High:     bar.High.value,
			Low:      bar.Low.value,
			Close:    bar.Close.value,
			AdjClose: bar.AdjustedClose.value,
			Volume:   int64(bar.Volume.value),
		})
	}

	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})

	c.logger.Debug().
		Str("ticker", symbol).
		Str("lookback", string(lookback)).
		Int("bars", len(series)).
		Msg("Fetched price history")

	return series, nil
}

// eodBarResponse represents the API response for EOD data
type eodBarResponse struct {
	Date          string      `json:"date"`
	Open          flexFloat64 `json:"open"`
	High          flexFloat64 `json:"high"`
	Low           flexFloat64 `json:"low"`
	Close         flexFloat64 `json:"close"`
	AdjustedClose flexFloat64 `json:"adjusted_close"`
	Volume        flexFloat64 `json:"volume"`
}

// profileFilter limits the fundamentals payload to the sections a profile needs.
const profileFilter = "General,Highlights,Technicals"

// GetProfile retrieves company details and valuation highlights
func (c *Client) GetProfile(ctx context.Context, ticker string) (*models.CompanyProfile, error) {
	symbol := c.NormalizeTicker(ticker)
	path := "/fundamentals/" + url.PathEscape(symbol)

	params := url.Values{}
	params.Set("filter", profileFilter)

	var raw json.RawMessage
	if err := c.get(ctx, path, params, &raw); err != nil {
		return nil, err
	}
	if isEmptyPayload(raw) {
		return nil, fmt.Errorf("%s: %w", symbol, models.ErrNotFound)
	}

	var resp profileResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	return resp.toProfile(), nil
}

// profileResponse is the filtered fundamentals payload
type profileResponse struct {
	General struct {
		Code         string `json:"Code"`
		Name         string `json:"Name"`
		Type         string `json:"Type"`
		Exchange     string `json:"Exchange"`
		CurrencyCode string `json:"CurrencyCode"`
		Sector       string `json:"Sector"`
		Industry     string `json:"Industry"`
	} `json:"General"`
	Highlights struct {
		MarketCapitalization flexFloat64 `json:"MarketCapitalization"`
		PERatio              flexFloat64 `json:"PERatio"`
		DividendYield        flexFloat64 `json:"DividendYield"`
	} `json:"Highlights"`
	Technicals struct {
		High52Week flexFloat64 `json:"52WeekHigh"`
		Low52Week  flexFloat64 `json:"52WeekLow"`
	} `json:"Technicals"`
}

// toProfile maps the payload onto the domain profile.
//
// EODHD reports Highlights.DividendYield as a fraction (0.0044 for 0.44%),
// so it is scaled to percent here. Zero market cap, P/E and 52-week bounds
// are how EODHD encodes "not reported" and map to nil; a zero dividend
// yield is a real value.
func (r profileResponse) toProfile() *models.CompanyProfile {
	p := &models.CompanyProfile{
		Code:          r.General.Code,
		Name:          strings.TrimSpace(r.General.Name),
		Exchange:      r.General.Exchange,
		AssetType:     r.General.Type,
		Currency:      r.General.CurrencyCode,
		Sector:        r.General.Sector,
		Industry:      r.General.Industry,
		PERatio:       r.Highlights.PERatio.nonZero(),
		MarketCap:     r.Highlights.MarketCapitalization.nonZero(),
		High52Week:    r.Technicals.High52Week.nonZero(),
		Low52Week:     r.Technicals.Low52Week.nonZero(),
	}
	if r.Highlights.DividendYield.valid {
		pct := r.Highlights.DividendYield.value * 100
		p.DividendYield = &pct
	}
	return p
}

// incomeStatementFilter selects the yearly income statement only.
const incomeStatementFilter = "Financials::Income_Statement::yearly"

// incomeLineItems maps EODHD field names onto statement row labels.
var incomeLineItems = map[string]string{
	"totalRevenue":    models.LineItemTotalRevenue,
	"grossProfit":     "Gross Profit",
	"operatingIncome": "Operating Income",
	"ebitda":          "EBITDA",
	"netIncome":       "Net Income",
}

// GetIncomeStatement retrieves the yearly income statement, most recent period first
func (c *Client) GetIncomeStatement(ctx context.Context, ticker string) (*models.FinancialStatement, error) {
	symbol := c.NormalizeTicker(ticker)
	path := "/fundamentals/" + url.PathEscape(symbol)

	params := url.Values{}
	params.Set("filter", incomeStatementFilter)

	var raw json.RawMessage
	if err := c.get(ctx, path, params, &raw); err != nil {
		return nil, err
	}

	statement := &models.FinancialStatement{LineItems: map[string][]float64{}}
	if isEmptyPayload(raw) {
		return statement, nil
	}

	var yearly map[string]map[string]flexFloat64
	if err := json.Unmarshal(raw, &yearly); err != nil {
		return nil, fmt.Errorf("failed to decode income statement: %w", err)
	}

	periods := make([]string, 0, len(yearly))
	for date := range yearly {
		periods = append(periods, date)
	}
	// ISO dates sort lexically
	sort.Sort(sort.Reverse(sort.StringSlice(periods)))
	statement.Periods = periods

	for field, label := range incomeLineItems {
		row := make([]float64, len(periods))
		present := false
		for i, date := range periods {
			cell, ok := yearly[date][field]
			if ok && cell.valid {
				row[i] = cell.value
				present = true
			} else {
				row[i] = nan()
			}
		}
		if present {
			statement.LineItems[label] = row
		}
	}

	c.logger.Debug().
		Str("ticker", symbol).
		Int("periods", len(periods)).
		Msg("Fetched income statement")

	return statement, nil
}

// Search runs a free-text search for listings matching query
func (c *Client) Search(ctx context.Context, query string) ([]models.SearchQuote, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(DefaultSearchLimit))

	var results []searchResponse
	if err := c.get(ctx, "/search/"+url.PathEscape(query), params, &results); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	quotes := make([]models.SearchQuote, len(results))
	for i, r := range results {
		quotes[i] = models.SearchQuote{
			Code:     r.Code,
			Exchange: r.Exchange,
			Name:     r.Name,
			Type:     r.Type,
			Country:  r.Country,
			Currency: r.Currency,
		}
	}
	return quotes, nil
}

type searchResponse struct {
	Code     string `json:"Code"`
	Exchange string `json:"Exchange"`
	Name     string `json:"Name"`
	Type     string `json:"Type"`
	Country  string `json:"Country"`
	Currency string `json:"Currency"`
}

func isEmptyPayload(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 ||
		bytes.Equal(trimmed, []byte("null")) ||
		bytes.Equal(trimmed, []byte("[]")) ||
		bytes.Equal(trimmed, []byte("{}"))
}

// Ensure Client implements MarketDataProvider
var _ interfaces.MarketDataProvider = (*Client)(nil)
