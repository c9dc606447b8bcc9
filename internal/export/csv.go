// Package export renders period reports into deliverable artifacts: a local
// CSV file or a Google Sheets document.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/evanko/ledgerbot/internal/model"
	"github.com/evanko/ledgerbot/internal/period"
	"github.com/evanko/ledgerbot/internal/service"
)

const exportDateLayout = "2006-01-02"

// CSVRenderer renders a report to CSV bytes carried inline in the artifact.
type CSVRenderer struct{}

// NewCSVRenderer creates a CSV report renderer.
func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{}
}

// Render produces a three-section report: expense rows, income rows, and the
// period summary with per-category totals.
func (r *CSVRenderer) Render(_ context.Context, entries []service.TransactionEntry, summary service.Summary, rng period.Range) (*service.Artifact, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	for _, record := range Rows(entries, summary, rng) {
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return &service.Artifact{
		Filename: Filename(rng),
		Data:     buf.Bytes(),
	}, nil
}

// Filename names a CSV report after its period bounds.
func Filename(rng period.Range) string {
	return fmt.Sprintf("report_%s_%s.csv",
		rng.Start.Format(exportDateLayout), rng.End.Format(exportDateLayout))
}

// Rows flattens the report into tabular records. The same layout feeds both
// the CSV and the Sheets renderer, so the artifacts stay in step.
func Rows(entries []service.TransactionEntry, summary service.Summary, rng period.Range) [][]string {
	rows := [][]string{
		{"Report", fmt.Sprintf("%s — %s", rng.Start.Format(exportDateLayout), rng.End.Format(exportDateLayout))},
		{},
	}

	appendKind := func(title string, kind model.Kind) {
		rows = append(rows,
			[]string{title},
			[]string{"Date", "Category", "Amount", "Comment"},
		)
		count := 0
		for _, e := range entries {
			if e.Kind != kind {
				continue
			}
			comment := ""
			if e.Comment != nil {
				comment = *e.Comment
			}
			rows = append(rows, []string{
				e.CreatedAt.Format(exportDateLayout),
				e.CategoryName,
				e.Amount.StringFixed(2),
				comment,
			})
			count++
		}
		if count == 0 {
			rows = append(rows, []string{"-"})
		}
		rows = append(rows, []string{})
	}

	appendKind("Expenses", model.KindExpense)
	appendKind("Income", model.KindIncome)

	rows = append(rows,
		[]string{"Summary"},
		[]string{"Income", summary.Income.StringFixed(2)},
		[]string{"Expense", summary.Expense.StringFixed(2)},
		[]string{"Balance", summary.Balance.StringFixed(2)},
		[]string{"Avg income per day", summary.AvgIncomePerDay.StringFixed(2)},
		[]string{"Avg expense per day", summary.AvgExpensePerDay.StringFixed(2)},
		[]string{"Days", fmt.Sprintf("%d", summary.Days)},
	)

	appendGrouped := func(title string, kind model.Kind) {
		rows = append(rows, []string{}, []string{title})
		totals := categoryTotals(entries, kind)
		if len(totals) == 0 {
			rows = append(rows, []string{"-"})
			return
		}
		for _, ct := range totals {
			rows = append(rows, []string{ct.CategoryName, ct.Total.StringFixed(2)})
		}
	}

	appendGrouped("Expenses by category", model.KindExpense)
	appendGrouped("Income by category", model.KindIncome)

	return rows
}

// categoryTotals groups one kind's entries by category, largest total first.
func categoryTotals(entries []service.TransactionEntry, kind model.Kind) []service.CategoryTotal {
	sums := make(map[string]decimal.Decimal)
	names := make([]string, 0)
	for _, e := range entries {
		if e.Kind != kind {
			continue
		}
		if _, seen := sums[e.CategoryName]; !seen {
			names = append(names, e.CategoryName)
		}
		sums[e.CategoryName] = sums[e.CategoryName].Add(e.Amount)
	}

	totals := make([]service.CategoryTotal, 0, len(names))
	for _, name := range names {
		totals = append(totals, service.CategoryTotal{CategoryName: name, Total: sums[name]})
	}
	sort.Slice(totals, func(i, j int) bool {
		if !totals[i].Total.Equal(totals[j].Total) {
			return totals[i].Total.GreaterThan(totals[j].Total)
		}
		return totals[i].CategoryName < totals[j].CategoryName
	})
	return totals
}
