package insight

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/stockbot/internal/models"
	"github.com/bobmcallan/stockbot/internal/signals"
)

// analysisSections are the headings the narrative is asked to follow, with
// the guidance given for each.
var analysisSections = []struct {
	heading  string
	guidance string
}{
	{"Market Position", "Analyze the company's position within its sector and industry."},
	{"Historical Performance Analysis", "Analyze 1, 3, and 5-year performance trends and what they indicate about the company's growth trajectory."},
	{"Revenue Growth Analysis", "Compare revenue growth across different time periods and what this suggests about the company's business model and market success."},
	{"Current Financial Analysis", "Evaluate current financial metrics and their implications for the company's health and valuation."},
	{"Technical Analysis", "Interpret current technical indicators and their implications for short-term trading."},
	{"Risk Assessment", "Identify key risks based on historical performance and current market conditions."},
	{"Investment Outlook", "Provide both short-term and long-term outlook based on historical trends and current metrics."},
	{"Recommendation", "Offer a clear investment recommendation supported by the analysis."},
}

// buildAnalysisPrompt renders the metrics into the narrative request
func buildAnalysisPrompt(ticker string, m models.MetricsRecord) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Provide a comprehensive stock analysis for %s based on these metrics:\n\n", ticker))

	sb.WriteString("Market Position:\n")
	sb.WriteString(fmt.Sprintf("- Sector: %s\n", m.Value(models.LabelSector)))
	sb.WriteString(fmt.Sprintf("- Industry: %s\n\n", m.Value(models.LabelIndustry)))

	sb.WriteString("Historical Performance:\n")
	sb.WriteString(fmt.Sprintf("1 Year: %s\n", m.Value(models.LabelPerformance1Y)))
	sb.WriteString(fmt.Sprintf("3 Year: %s\n", m.Value(models.LabelPerformance3Y)))
	sb.WriteString(fmt.Sprintf("5 Year: %s\n\n", m.Value(models.LabelPerformance5Y)))

	sb.WriteString("Revenue Growth:\n")
	sb.WriteString(fmt.Sprintf("1 Year: %s\n", m.Value(models.LabelRevenueGrowth1Y)))
	sb.WriteString(fmt.Sprintf("3 Year: %s\n\n", m.Value(models.LabelRevenueGrowth3Y)))

	sb.WriteString("Current Financial Metrics:\n")
	sb.WriteString(fmt.Sprintf("- Price: %s\n", m.Value(models.LabelCurrentPrice)))
	sb.WriteString(fmt.Sprintf("- P/E Ratio: %s\n", m.Value(models.LabelPERatio)))
	sb.WriteString(fmt.Sprintf("- Dividend Yield: %s\n", m.Value(models.LabelDividendYield)))
	sb.WriteString(fmt.Sprintf("- Market Cap: %s\n\n", m.Value(models.LabelMarketCap)))

	sb.WriteString("Technical Indicators:\n")
	rsi := m.Value(models.LabelRSI)
	if m.RSI != nil {
		rsi = fmt.Sprintf("%s (%s)", rsi, signals.ClassifyRSI(float64(*m.RSI)))
	}
	sb.WriteString(fmt.Sprintf("- RSI: %s\n", rsi))
	sb.WriteString(fmt.Sprintf("- 52-Week Range: %s - %s\n\n",
		m.Value(models.LabelLow52Week), m.Value(models.LabelHigh52Week)))

	sb.WriteString("Analyze the stock's historical performance, current position, potential risks, and investment outlook.\n")
	sb.WriteString("Use the following structure:\n\n")
	sb.WriteString(fmt.Sprintf("Stock Analysis for %s\n\n", ticker))

	for _, s := range analysisSections {
		sb.WriteString(s.heading + ":\n")
		sb.WriteString(s.guidance + "\n\n")
	}

	sb.WriteString("Keep the analysis concise but comprehensive, focusing on key insights from the historical data.\n")

	return sb.String()
}
