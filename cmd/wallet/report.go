package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/xaenox/wallet-assistant/internal/models"
	"go.uber.org/zap"
)

type reportCmd struct {
	from string
	to   string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "print the total expenses by category" }
func (*reportCmd) Usage() string {
	return `wallet report [-from <date> -to <date>]

  Prints the total expenses of every category, optionally within an inclusive
  date range. Dates are YYYY-MM-DD.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "First day of the range")
	f.StringVar(&c.to, "to", "", "Last day of the range")
}

func (c *reportCmd) dateRange() (*models.DateRange, error) {
	if c.from == "" && c.to == "" {
		return nil, nil
	}
	if c.from == "" || c.to == "" {
		return nil, errors.New("-from and -to must be given together")
	}
	start, err := models.ParseDate(c.from)
	if err != nil {
		return nil, err
	}
	end, err := models.ParseDate(c.to)
	if err != nil {
		return nil, err
	}
	return &models.DateRange{StartDate: start, EndDate: end}, nil
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rng, err := c.dateRange()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing dates: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if money.GetCurrency(a.cfg.Console.Currency) == nil {
		fmt.Fprintf(os.Stderr, "Error: unknown currency %q\n", a.cfg.Console.Currency)
		return subcommands.ExitFailure
	}

	categories, _, err := a.categories.Load(ctx)
	if err != nil {
		a.logger.Error("Failed to load categories", zap.Error(err))
		return subcommands.ExitFailure
	}
	var totals []models.TotalExpensesByCategory
	if rng != nil {
		totals, err = a.expenses.TotalsByCategoryAndRange(ctx, *rng)
	} else {
		totals, err = a.expenses.TotalsByCategory(ctx)
	}
	if err != nil {
		a.logger.Error("Failed to compute totals", zap.Error(err))
		return subcommands.ExitFailure
	}

	var b strings.Builder
	renderReport(&b, categories, totals, a.cfg.Console.Currency, rng)

	if !a.cfg.Console.Markdown {
		fmt.Print(b.String())
		return subcommands.ExitSuccess
	}
	out, err := glamour.Render(b.String(), "auto")
	if err != nil {
		a.logger.Warn("Failed to render markdown", zap.Error(err))
		out = b.String()
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}

// renderReport writes the totals as a markdown table, categories resolved by
// name and amounts in the given currency.
func renderReport(w io.Writer, categories []models.Category, totals []models.TotalExpensesByCategory, currency string, rng *models.DateRange) {
	names := make(map[int]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	title := "# Expenses by category"
	if rng != nil {
		title += fmt.Sprintf(" from %s to %s", rng.StartDate, rng.EndDate)
	}
	fmt.Fprintf(w, "%s\n\n", title)

	if len(totals) == 0 {
		fmt.Fprintln(w, "No expenses.")
		return
	}

	fmt.Fprintln(w, "| Category | Total |")
	fmt.Fprintln(w, "|:---|---:|")
	sum := decimal.Zero
	for _, t := range totals {
		name, ok := names[t.CategoryID]
		if !ok {
			name = fmt.Sprintf("#%d", t.CategoryID)
		}
		amount := decimal.NewFromFloat(t.TotalAmount)
		sum = sum.Add(amount)
		fmt.Fprintf(w, "| %s | %s |\n", name, formatAmount(amount, currency))
	}
	fmt.Fprintf(w, "| **Total** | **%s** |\n", formatAmount(sum, currency))
}

// formatAmount displays a major-unit amount with the currency's symbol and
// separators.
func formatAmount(amount decimal.Decimal, currency string) string {
	// the constructor never returns a nil currency
	cur := *money.New(0, currency).Currency()
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
