package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evanko/ledgerbot/internal/model"
	"github.com/evanko/ledgerbot/internal/period"
	"github.com/evanko/ledgerbot/internal/service"
)

func testRange(t *testing.T) period.Range {
	t.Helper()
	rng, err := period.Custom(
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return rng
}

func testEntries() []service.TransactionEntry {
	comment := "groceries"
	return []service.TransactionEntry{
		{
			CreatedAt:    time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC),
			ID:           "t1",
			Kind:         model.KindExpense,
			CategoryName: "Food",
			Amount:       decimal.RequireFromString("45.50"),
			Comment:      &comment,
		},
		{
			CreatedAt:    time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC),
			ID:           "t2",
			Kind:         model.KindIncome,
			CategoryName: "Work",
			Amount:       decimal.RequireFromString("1000.00"),
		},
	}
}

func testSummary() service.Summary {
	return service.Summary{
		Income:           decimal.RequireFromString("1000.00"),
		Expense:          decimal.RequireFromString("45.50"),
		Balance:          decimal.RequireFromString("954.50"),
		AvgIncomePerDay:  decimal.RequireFromString("32.26"),
		AvgExpensePerDay: decimal.RequireFromString("1.47"),
		Days:             31,
	}
}

func TestCSVRendererRender(t *testing.T) {
	renderer := NewCSVRenderer()

	artifact, err := renderer.Render(context.Background(), testEntries(), testSummary(), testRange(t))
	require.NoError(t, err)

	assert.Equal(t, "report_2025-01-01_2025-01-31.csv", artifact.Filename)
	assert.Empty(t, artifact.Link)
	require.NotEmpty(t, artifact.Data)

	reader := csv.NewReader(bytes.NewReader(artifact.Data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	flat := make(map[string]bool)
	for _, record := range records {
		if len(record) > 0 {
			flat[record[0]] = true
		}
	}
	assert.True(t, flat["Expenses"])
	assert.True(t, flat["Income"])
	assert.True(t, flat["Summary"])

	// The expense row carries its comment; the income row its amount.
	var sawExpense, sawIncome bool
	for _, record := range records {
		if len(record) == 4 && record[1] == "Food" {
			sawExpense = true
			assert.Equal(t, "45.50", record[2])
			assert.Equal(t, "groceries", record[3])
		}
		if len(record) == 4 && record[1] == "Work" {
			sawIncome = true
			assert.Equal(t, "1000.00", record[2])
			assert.Equal(t, "", record[3])
		}
	}
	assert.True(t, sawExpense)
	assert.True(t, sawIncome)
}

func TestCSVRendererEmptyPeriod(t *testing.T) {
	renderer := NewCSVRenderer()

	summary := service.Summary{
		Income: decimal.Zero, Expense: decimal.Zero, Balance: decimal.Zero,
		AvgIncomePerDay: decimal.Zero, AvgExpensePerDay: decimal.Zero, Days: 31,
	}

	artifact, err := renderer.Render(context.Background(), nil, summary, testRange(t))
	require.NoError(t, err)

	reader := csv.NewReader(bytes.NewReader(artifact.Data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	// Empty sections render a placeholder row instead of vanishing: both
	// detail sections and both category groupings.
	var placeholders int
	for _, record := range records {
		if len(record) == 1 && record[0] == "-" {
			placeholders++
		}
	}
	assert.Equal(t, 4, placeholders)
}

func TestRowsSummarySection(t *testing.T) {
	entries := append(testEntries(), service.TransactionEntry{
		CreatedAt:    time.Date(2025, 1, 12, 8, 0, 0, 0, time.UTC),
		ID:           "t3",
		Kind:         model.KindExpense,
		CategoryName: "Transport",
		Amount:       decimal.RequireFromString("60.00"),
	})
	summary := testSummary()
	summary.Expense = decimal.RequireFromString("105.50")
	summary.Balance = decimal.RequireFromString("894.50")

	rows := Rows(entries, summary, testRange(t))

	var summaryRows [][]string
	inSummary := false
	for _, row := range rows {
		if len(row) == 1 && row[0] == "Summary" {
			inSummary = true
			continue
		}
		if inSummary {
			summaryRows = append(summaryRows, row)
		}
	}

	require.Len(t, summaryRows, 13)
	assert.Equal(t, []string{"Income", "1000.00"}, summaryRows[0])
	assert.Equal(t, []string{"Expense", "105.50"}, summaryRows[1])
	assert.Equal(t, []string{"Balance", "894.50"}, summaryRows[2])
	assert.Equal(t, []string{"Days", "31"}, summaryRows[5])

	// Per-category groupings follow the totals, largest first.
	assert.Equal(t, []string{"Expenses by category"}, summaryRows[7])
	assert.Equal(t, []string{"Transport", "60.00"}, summaryRows[8])
	assert.Equal(t, []string{"Food", "45.50"}, summaryRows[9])
	assert.Equal(t, []string{"Income by category"}, summaryRows[11])
	assert.Equal(t, []string{"Work", "1000.00"}, summaryRows[12])
}

func TestCategoryTotalsMergesRepeatedCategories(t *testing.T) {
	entries := []service.TransactionEntry{
		{Kind: model.KindExpense, CategoryName: "Food", Amount: decimal.RequireFromString("10.00")},
		{Kind: model.KindExpense, CategoryName: "Taxi", Amount: decimal.RequireFromString("25.00")},
		{Kind: model.KindExpense, CategoryName: "Food", Amount: decimal.RequireFromString("20.00")},
		{Kind: model.KindIncome, CategoryName: "Work", Amount: decimal.RequireFromString("5.00")},
	}

	totals := categoryTotals(entries, model.KindExpense)
	require.Len(t, totals, 2)
	assert.Equal(t, "Food", totals[0].CategoryName)
	assert.Equal(t, "30.00", totals[0].Total.StringFixed(2))
	assert.Equal(t, "Taxi", totals[1].CategoryName)
	assert.Equal(t, "25.00", totals[1].Total.StringFixed(2))
}

func TestSheetsConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SheetsConfig)
		wantErr bool
	}{
		{
			name:    "no auth",
			mutate:  func(_ *SheetsConfig) {},
			wantErr: true,
		},
		{
			name: "oauth only",
			mutate: func(c *SheetsConfig) {
				c.ClientID = "id"
				c.ClientSecret = "secret"
				c.RefreshToken = "token"
			},
		},
		{
			name: "service account only",
			mutate: func(c *SheetsConfig) {
				c.ServiceAccountPath = "/tmp/sa.json"
			},
		},
		{
			name: "both auth methods",
			mutate: func(c *SheetsConfig) {
				c.ClientID = "id"
				c.ClientSecret = "secret"
				c.RefreshToken = "token"
				c.ServiceAccountPath = "/tmp/sa.json"
			},
			wantErr: true,
		},
		{
			name: "bad batch size",
			mutate: func(c *SheetsConfig) {
				c.ServiceAccountPath = "/tmp/sa.json"
				c.BatchSize = 0
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSheetsConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
