// Package models defines data structures for stockbot
package models

import (
	"math"
	"strings"
	"time"
)

// EODBar represents a single day's price data
type EODBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjusted_close"`
	Volume   int64     `json:"volume"`
}

// EffectiveClose returns the split and dividend adjusted close when the
// provider supplied one, otherwise the raw close.
func (b EODBar) EffectiveClose() float64 {
	if b.AdjClose > 0 {
		return b.AdjClose
	}
	return b.Close
}

// PriceSeries is a run of daily bars ordered oldest first.
type PriceSeries []EODBar

// Closes returns the effective closing prices in series order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, bar := range s {
		closes[i] = bar.EffectiveClose()
	}
	return closes
}

// FirstClose returns the oldest effective close.
func (s PriceSeries) FirstClose() (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	return s[0].EffectiveClose(), true
}

// LastClose returns the most recent effective close.
func (s PriceSeries) LastClose() (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	return s[len(s)-1].EffectiveClose(), true
}

// Lookback is a trailing history window requested from the provider.
type Lookback string

const (
	Lookback1Month Lookback = "1mo"
	Lookback1Year  Lookback = "1y"
	Lookback3Year  Lookback = "3y"
	Lookback5Year  Lookback = "5y"
)

// Start returns the first calendar day covered by the window ending at now.
func (l Lookback) Start(now time.Time) time.Time {
	switch l {
	case Lookback1Month:
		return now.AddDate(0, -1, 0)
	case Lookback1Year:
		return now.AddDate(-1, 0, 0)
	case Lookback3Year:
		return now.AddDate(-3, 0, 0)
	case Lookback5Year:
		return now.AddDate(-5, 0, 0)
	default:
		return now
	}
}

// Valid reports whether l is a known window.
func (l Lookback) Valid() bool {
	switch l {
	case Lookback1Month, Lookback1Year, Lookback3Year, Lookback5Year:
		return true
	}
	return false
}

// LineItemTotalRevenue is the income statement row used for revenue growth.
const LineItemTotalRevenue = "Total Revenue"

// FinancialStatement is a yearly statement table. Periods run most recent
// first and every line item is indexed like Periods; missing cells are NaN.
type FinancialStatement struct {
	Currency  string               `json:"currency,omitempty"`
	Periods   []string             `json:"periods"`
	LineItems map[string][]float64 `json:"line_items"`
}

// Columns returns the number of reporting periods.
func (f *FinancialStatement) Columns() int {
	if f == nil {
		return 0
	}
	return len(f.Periods)
}

// Empty reports whether the table has no periods or no rows.
func (f *FinancialStatement) Empty() bool {
	return f == nil || len(f.Periods) == 0 || len(f.LineItems) == 0
}

// Row returns the values of a line item.
func (f *FinancialStatement) Row(name string) ([]float64, bool) {
	if f == nil {
		return nil, false
	}
	row, ok := f.LineItems[name]
	return row, ok
}

// Cell returns a single value, reporting false when it is absent or NaN.
func (f *FinancialStatement) Cell(name string, period int) (float64, bool) {
	row, ok := f.Row(name)
	if !ok || period < 0 || period >= len(row) {
		return 0, false
	}
	v := row[period]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// CompanyProfile holds descriptive and valuation fields for a listed company.
// Numeric fields are nil when the provider did not report them.
type CompanyProfile struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	Exchange      string   `json:"exchange"`
	AssetType     string   `json:"asset_type"`
	Currency      string   `json:"currency,omitempty"`
	Sector        string   `json:"sector,omitempty"`
	Industry      string   `json:"industry,omitempty"`
	PERatio       *float64 `json:"pe_ratio,omitempty"`
	MarketCap     *float64 `json:"market_cap,omitempty"`
	DividendYield *float64 `json:"dividend_yield_pct,omitempty"` // percent, e.g. 0.44 for 0.44%
	High52Week    *float64 `json:"high_52_week,omitempty"`
	Low52Week     *float64 `json:"low_52_week,omitempty"`
}

// SearchQuote is a single candidate returned by the provider's free-text search.
type SearchQuote struct {
	Code     string `json:"code"`
	Exchange string `json:"exchange"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Country  string `json:"country,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// IsEquity reports whether the candidate is a share listing (common or preferred stock).
func (q SearchQuote) IsEquity() bool {
	return IsEquityType(q.Type)
}

// IsEquityType classifies a provider asset type string.
func IsEquityType(assetType string) bool {
	t := strings.ToLower(strings.TrimSpace(assetType))
	return t == "equity" || strings.HasSuffix(t, "stock")
}
