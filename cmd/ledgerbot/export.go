package main

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/evanko/ledgerbot/internal/export"
	"github.com/evanko/ledgerbot/internal/period"
	"github.com/evanko/ledgerbot/internal/report"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a CSV report for a date range",
		Long: `Export the transactions and the period summary to a CSV file without
entering the chat. Defaults to the current month.`,
		RunE: runExport,
	}

	cmd.Flags().String("from", "", "start date (YYYY-MM-DD, default: first of the month)")
	cmd.Flags().String("to", "", "end date (YYYY-MM-DD, default: today)")
	cmd.Flags().StringP("output", "o", "", "output file (default: report_<from>_<to>.csv)")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	rng, err := exportRange(cmd)
	if err != nil {
		return err
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	user, err := store.FindOrCreateUser(ctx, localIdentity())
	if err != nil {
		return fmt.Errorf("failed to resolve user: %w", err)
	}

	entries, err := store.GetTransactionsByRange(ctx, user.ID, rng.Start, rng.End)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	summary, err := report.NewEngine(store).Summary(ctx, user.ID, rng)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = export.Filename(rng)
	}

	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	defer func() { _ = file.Close() }()

	rows := export.Rows(entries, summary, rng)
	bar := progressbar.Default(int64(len(rows)), "writing report")

	w := csv.NewWriter(file)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
		_ = bar.Add(1)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}

	slog.Info("export completed",
		"file", output,
		"transactions", len(entries),
		"days", summary.Days)
	return nil
}

// exportRange resolves the date flags, defaulting to the current month.
func exportRange(cmd *cobra.Command) (period.Range, error) {
	fromFlag, _ := cmd.Flags().GetString("from")
	toFlag, _ := cmd.Flags().GetString("to")

	if fromFlag == "" && toFlag == "" {
		return period.CurrentMonth(), nil
	}

	defaults := period.CurrentMonth()
	start, end := defaults.Start, defaults.End

	if fromFlag != "" {
		t, err := parseDateFlag(fromFlag)
		if err != nil {
			return period.Range{}, err
		}
		start = t
	}
	if toFlag != "" {
		t, err := parseDateFlag(toFlag)
		if err != nil {
			return period.Range{}, err
		}
		end = t
	}

	rng, err := period.Custom(start, end)
	if err != nil {
		return period.Range{}, fmt.Errorf("invalid range: %w", err)
	}
	return rng, nil
}
