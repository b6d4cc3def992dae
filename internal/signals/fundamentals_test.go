package signals

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/stockbot/internal/models"
)

func revenueTable(revenues ...float64) *models.FinancialStatement {
	periods := make([]string, len(revenues))
	for i := range revenues {
		periods[i] = []string{"2025-12-31", "2024-12-31", "2023-12-31", "2022-12-31", "2021-12-31"}[i]
	}
	return &models.FinancialStatement{
		Periods: periods,
		LineItems: map[string][]float64{
			models.LineItemTotalRevenue: revenues,
		},
	}
}

func TestRevenueGrowth(t *testing.T) {
	tests := []struct {
		name        string
		table       *models.FinancialStatement
		periodsBack int
		expected    float64
		ok          bool
	}{
		{"year over year", revenueTable(120, 100, 80, 60), 2, 20.0, true},
		{"three periods back", revenueTable(120, 100, 80, 60), 4, 100.0, true},
		{"decline", revenueTable(90, 100), 2, -10.0, true},
		{"fewer columns than periods", revenueTable(120, 100), 4, 0, false},
		{"zero historical revenue", revenueTable(120, 0), 2, 0, false},
		{"nan historical revenue", revenueTable(120, math.NaN()), 2, 0, false},
		{"nil table", nil, 2, 0, false},
		{"empty table", &models.FinancialStatement{}, 2, 0, false},
		{"non-positive periods back", revenueTable(120, 100), 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RevenueGrowth(tt.table, tt.periodsBack)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, float64(got), 1e-9)
			}
		})
	}
}

func TestRevenueGrowth_MissingRevenueRow(t *testing.T) {
	table := &models.FinancialStatement{
		Periods:   []string{"2025-12-31", "2024-12-31"},
		LineItems: map[string][]float64{"Net Income": {10, 8}},
	}
	_, ok := RevenueGrowth(table, 2)
	assert.False(t, ok)
}

func TestRevenueGrowth_RaggedRowIsAbsent(t *testing.T) {
	table := &models.FinancialStatement{
		Periods:   []string{"2025-12-31", "2024-12-31", "2023-12-31"},
		LineItems: map[string][]float64{models.LineItemTotalRevenue: {10}},
	}
	_, ok := RevenueGrowth(table, 3)
	assert.False(t, ok)
}
