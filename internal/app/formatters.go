package app

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/stockbot/internal/models"
)

// formatStockAnalysis renders an analysis as markdown
func formatStockAnalysis(ticker string, a *models.StockAnalysis) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", ticker))

	sb.WriteString("## Metrics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	for _, e := range a.Metrics.Entries() {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", e.Label, e.Value))
	}
	sb.WriteString("\n")

	sb.WriteString("## Analysis\n\n")
	sb.WriteString(strings.TrimSpace(a.AIAnalysis))
	sb.WriteString("\n")

	return sb.String()
}

// formatTickerMatch renders a resolved ticker as markdown
func formatTickerMatch(m *models.TickerMatch) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s - %s\n\n", m.Ticker, m.Name))
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Exchange | %s |\n", orNotAvailable(m.Exchange)))
	sb.WriteString(fmt.Sprintf("| Sector | %s |\n", orNotAvailable(m.Sector)))
	sb.WriteString(fmt.Sprintf("| Industry | %s |\n", orNotAvailable(m.Industry)))
	sb.WriteString(fmt.Sprintf("| Match Quality | %s |\n", m.MatchQuality))

	return sb.String()
}

func orNotAvailable(s string) string {
	if s == "" {
		return models.NotAvailable
	}
	return s
}
