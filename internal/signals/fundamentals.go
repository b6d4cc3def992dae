package signals

import (
	"github.com/bobmcallan/stockbot/internal/models"
)

// RevenueGrowth compares the latest reported total revenue against the
// period periodsBack-1 columns older, as a percentage. periodsBack counts
// the latest period itself, so 2 is year-over-year.
func RevenueGrowth(table *models.FinancialStatement, periodsBack int) (pct models.Percent, ok bool) {
	defer guard(&ok)

	if periodsBack < 1 || table.Empty() || table.Columns() < periodsBack {
		return 0, false
	}

	latest, ok := table.Cell(models.LineItemTotalRevenue, 0)
	if !ok {
		return 0, false
	}
	past, ok := table.Cell(models.LineItemTotalRevenue, periodsBack-1)
	if !ok || past == 0 {
		return 0, false
	}

	v := (latest - past) / past * 100
	if !finite(v) {
		return 0, false
	}
	return models.Percent(v), true
}
