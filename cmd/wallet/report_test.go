package main

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xaenox/wallet-assistant/internal/models"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"42.5", "USD", "$42.50"},
		{"1234.567", "USD", "$1,234.57"},
		{"0", "USD", "$0.00"},
	}
	for _, tt := range tests {
		got := formatAmount(decimal.RequireFromString(tt.amount), tt.currency)
		if got != tt.want {
			t.Errorf("formatAmount(%s, %s) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}

func TestRenderReport(t *testing.T) {
	categories := []models.Category{{ID: 1, Name: "Food"}, {ID: 2, Name: "Rent"}}
	totals := []models.TotalExpensesByCategory{
		{CategoryID: 2, TotalAmount: 1000},
		{CategoryID: 1, TotalAmount: 0.3},
		{CategoryID: 9, TotalAmount: 5},
	}
	rng := &models.DateRange{StartDate: models.NewDate(2024, 5, 1), EndDate: models.NewDate(2024, 5, 31)}

	var b strings.Builder
	renderReport(&b, categories, totals, "USD", rng)
	want := `# Expenses by category from 2024-05-01 to 2024-05-31

| Category | Total |
|:---|---:|
| Rent | $1,000.00 |
| Food | $0.30 |
| #9 | $5.00 |
| **Total** | **$1,005.30** |
`
	if got := b.String(); got != want {
		t.Errorf("report =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderEmptyReport(t *testing.T) {
	var b strings.Builder
	renderReport(&b, nil, nil, "USD", nil)
	if got := b.String(); got != "# Expenses by category\n\nNo expenses.\n" {
		t.Errorf("report = %q", got)
	}
}

func TestReportDateRange(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
		err      bool
	}{
		{"", "", false, false},
		{"2024-05-01", "2024-05-31", true, false},
		{"2024-05-01", "", false, true},
		{"", "2024-05-31", false, true},
		{"May 1st", "2024-05-31", false, true},
	}
	for _, tt := range tests {
		c := &reportCmd{from: tt.from, to: tt.to}
		rng, err := c.dateRange()
		if (err != nil) != tt.err || (rng != nil) != tt.want {
			t.Errorf("dateRange(%q, %q) = %v, %v", tt.from, tt.to, rng, err)
		}
	}
}
