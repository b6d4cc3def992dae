package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// NotAvailable is rendered for every metric the record does not carry.
const NotAvailable = "not available"

// NarrativeUnavailable replaces the analysis text when generation fails.
const NarrativeUnavailable = "AI analysis temporarily unavailable"

// Percent is a percentage value: 12.5 means 12.5%.
type Percent float64

// Price is a per-share amount in the listing currency.
type Price float64

// Amount is a whole-company currency amount such as market capitalisation.
type Amount float64

// Ratio is a dimensionless multiple such as price/earnings.
type Ratio float64

// Oscillator is a bounded index value in [0, 100].
type Oscillator float64

func (p Percent) String() string {
	if s, ok := fixed2(float64(p)); ok {
		return s + "%"
	}
	return NotAvailable
}

func (p Price) String() string {
	if s, ok := fixed2(float64(p)); ok {
		return "$" + s
	}
	return NotAvailable
}

func (a Amount) String() string {
	v := float64(a)
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) >= math.MaxInt64 {
		return NotAvailable
	}
	return "$" + humanize.Comma(int64(math.Round(v)))
}

func (r Ratio) String() string {
	if s, ok := fixed2(float64(r)); ok {
		return s
	}
	return NotAvailable
}

func (o Oscillator) String() string {
	if s, ok := fixed2(float64(o)); ok {
		return s
	}
	return NotAvailable
}

// fixed2 renders v with exactly two decimals. The exact binary value is
// rounded half to even, so 2.675 (stored as 2.67499...) gives "2.67" and
// 0.125 gives "0.12".
func fixed2(v float64) (string, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", false
	}
	return exactDecimal(v).RoundBank(2).StringFixed(2), true
}

// exactDecimal converts v without the shortest-representation step of
// decimal.NewFromFloat. A float64 is m*2^e and 2^-k is 5^k*10^-k.
func exactDecimal(v float64) decimal.Decimal {
	frac, exp := math.Frexp(v)
	mant := big.NewInt(int64(math.Ldexp(frac, 53)))
	exp -= 53
	if exp >= 0 {
		return decimal.NewFromBigInt(mant.Lsh(mant, uint(exp)), 0)
	}
	pow := new(big.Int).Exp(big.NewInt(5), big.NewInt(int64(-exp)), nil)
	return decimal.NewFromBigInt(pow.Mul(pow, mant), int32(exp))
}

// Ptr returns a pointer to v, for populating optional record fields.
func Ptr[T any](v T) *T {
	return &v
}

// MetricsRecord is the derived view of a stock. A nil field is a metric the
// provider did not report or that could not be computed.
type MetricsRecord struct {
	CurrentPrice    *Price
	Performance1Y   *Percent
	Performance3Y   *Percent
	Performance5Y   *Percent
	RevenueGrowth1Y *Percent
	RevenueGrowth3Y *Percent
	RSI             *Oscillator
	PERatio         *Ratio
	MarketCap       *Amount
	DividendYield   *Percent
	High52Week      *Price
	Low52Week       *Price
	Sector          string
	Industry        string
}

// Metric labels, in display order.
const (
	LabelCurrentPrice    = "Current Price"
	LabelPerformance1Y   = "Performance 1 Year"
	LabelPerformance3Y   = "Performance 3 Year"
	LabelPerformance5Y   = "Performance 5 Year"
	LabelRevenueGrowth1Y = "Revenue Growth 1 Year"
	LabelRevenueGrowth3Y = "Revenue Growth 3 Year"
	LabelRSI             = "RSI"
	LabelPERatio         = "P/E Ratio"
	LabelMarketCap       = "Market Cap"
	LabelDividendYield   = "Dividend Yield"
	LabelHigh52Week      = "52 Week High"
	LabelLow52Week       = "52 Week Low"
	LabelSector          = "Sector"
	LabelIndustry        = "Industry"
)

// MetricEntry is one rendered label/value pair.
type MetricEntry struct {
	Label string
	Value string
}

// Entries renders every metric in display order. Absent metrics render as NotAvailable.
func (m MetricsRecord) Entries() []MetricEntry {
	return []MetricEntry{
		{LabelCurrentPrice, render(m.CurrentPrice)},
		{LabelPerformance1Y, render(m.Performance1Y)},
		{LabelPerformance3Y, render(m.Performance3Y)},
		{LabelPerformance5Y, render(m.Performance5Y)},
		{LabelRevenueGrowth1Y, render(m.RevenueGrowth1Y)},
		{LabelRevenueGrowth3Y, render(m.RevenueGrowth3Y)},
		{LabelRSI, render(m.RSI)},
		{LabelPERatio, render(m.PERatio)},
		{LabelMarketCap, render(m.MarketCap)},
		{LabelDividendYield, render(m.DividendYield)},
		{LabelHigh52Week, render(m.High52Week)},
		{LabelLow52Week, render(m.Low52Week)},
		{LabelSector, text(m.Sector)},
		{LabelIndustry, text(m.Industry)},
	}
}

// Value returns the rendered value for a label.
func (m MetricsRecord) Value(label string) string {
	for _, e := range m.Entries() {
		if e.Label == label {
			return e.Value
		}
	}
	return NotAvailable
}

// MarshalJSON emits a label-keyed object in display order with every value
// rendered as a string.
func (m MetricsRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Label)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func render[T fmt.Stringer](v *T) string {
	if v == nil {
		return NotAvailable
	}
	return (*v).String()
}

func text(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

// StockAnalysis is the response to an analysis request.
type StockAnalysis struct {
	Metrics    MetricsRecord `json:"metrics"`
	AIAnalysis string        `json:"aiAnalysis"`
}
