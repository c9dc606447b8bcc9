package flow

import (
	"fmt"
	"strings"

	"github.com/evanko/ledgerbot/internal/model"
	"github.com/evanko/ledgerbot/internal/period"
	"github.com/evanko/ledgerbot/internal/service"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

func kindLabel(kind model.Kind) string {
	if kind == model.KindIncome {
		return "Income"
	}
	return "Expense"
}

func formatPeriodLine(rng period.Range) string {
	return fmt.Sprintf("Period: %s — %s", rng.Start.Format(dateLayout), rng.End.Format(dateLayout))
}

func formatSummary(rng period.Range, summary service.Summary) string {
	return strings.Join([]string{
		formatPeriodLine(rng),
		"Income: " + summary.Income.StringFixed(2),
		"Expense: " + summary.Expense.StringFixed(2),
		"Balance: " + summary.Balance.StringFixed(2),
		"Avg income per day: " + summary.AvgIncomePerDay.StringFixed(2),
		"Avg expense per day: " + summary.AvgExpensePerDay.StringFixed(2),
	}, "\n")
}

func formatCategoryStats(rng period.Range, categoryName string, stats service.CategoryStats) string {
	return strings.Join([]string{
		formatPeriodLine(rng),
		"Category: " + categoryName,
		"Total: " + stats.Total.StringFixed(2),
		fmt.Sprintf("Transactions: %d", stats.Count),
		"Avg per day: " + stats.AvgPerDay.StringFixed(2),
	}, "\n")
}

func formatRating(rng period.Range, rating []service.CategoryTotal) string {
	lines := []string{formatPeriodLine(rng), "Expense rating:"}
	for i, item := range rating {
		lines = append(lines, fmt.Sprintf("%02d. %s — %s", i+1, item.CategoryName, item.Total.StringFixed(2)))
	}
	return strings.Join(lines, "\n")
}

func formatTransactionLines(entries []service.TransactionEntry) []string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s • %s • %s • %s",
			e.CreatedAt.Format(dateTimeLayout),
			kindLabel(e.Kind),
			e.CategoryName,
			e.Amount.StringFixed(2)))
	}
	return lines
}

// formatCategoryOverview renders both kinds' category lists with catch-all
// buckets sorted to the end.
func formatCategoryOverview(income, expense []model.Category) string {
	toLines := func(categories []model.Category) []string {
		if len(categories) == 0 {
			return []string{"-"}
		}
		ordered := othersLast(categories)
		lines := make([]string, 0, len(ordered))
		for i, cat := range ordered {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, cat.DisplayName))
		}
		return lines
	}

	parts := []string{"Categories:", "", "Income:"}
	parts = append(parts, toLines(income)...)
	parts = append(parts, "", "Expense:")
	parts = append(parts, toLines(expense)...)
	return strings.Join(parts, "\n")
}

func othersLast(categories []model.Category) []model.Category {
	ordered := make([]model.Category, 0, len(categories))
	var others []model.Category
	for _, cat := range categories {
		if cat.IsOther() {
			others = append(others, cat)
		} else {
			ordered = append(ordered, cat)
		}
	}
	return append(ordered, others...)
}

func exportCaption(rng period.Range) string {
	return fmt.Sprintf("Report for %s — %s", rng.Start.Format(dateLayout), rng.End.Format(dateLayout))
}
