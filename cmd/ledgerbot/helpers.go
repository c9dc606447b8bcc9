package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/evanko/ledgerbot/internal/export"
	"github.com/evanko/ledgerbot/internal/model"
	"github.com/evanko/ledgerbot/internal/service"
	"github.com/evanko/ledgerbot/internal/storage"
)

// openStorage opens the configured database and brings its schema current.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".local", "share", "ledgerbot", "ledger.db")
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// localIdentity builds the chat identity from config, defaulting to a
// single local user.
func localIdentity() model.Identity {
	identity := model.Identity{
		ExternalID: viper.GetString("user.id"),
		Handle:     viper.GetString("user.handle"),
		FirstName:  viper.GetString("user.first_name"),
		LastName:   viper.GetString("user.last_name"),
	}
	if identity.ExternalID == "" {
		identity.ExternalID = "local"
	}
	return identity
}

// buildRenderer picks the report renderer: Google Sheets when credentials
// are configured, a local CSV file otherwise.
func buildRenderer(ctx context.Context) (service.ReportRenderer, error) {
	if viper.GetString("export.renderer") != "sheets" {
		return export.NewCSVRenderer(), nil
	}

	cfg := export.DefaultSheetsConfig()
	cfg.ClientID = viper.GetString("sheets.client_id")
	cfg.ClientSecret = viper.GetString("sheets.client_secret")
	cfg.RefreshToken = viper.GetString("sheets.refresh_token")
	cfg.ServiceAccountPath = viper.GetString("sheets.service_account_path")
	if name := viper.GetString("sheets.spreadsheet_name"); name != "" {
		cfg.SpreadsheetName = name
	}
	if tz := viper.GetString("sheets.time_zone"); tz != "" {
		cfg.TimeZone = tz
	}
	if attempts := viper.GetInt("sheets.retry_attempts"); attempts > 0 {
		cfg.RetryAttempts = attempts
	}
	if delay := viper.GetDuration("sheets.retry_delay"); delay > 0 {
		cfg.RetryDelay = delay
	}

	renderer, err := export.NewSheetsRenderer(ctx, cfg, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to build sheets renderer: %w", err)
	}
	return renderer, nil
}

// parseDateFlag parses a YYYY-MM-DD flag value.
func parseDateFlag(value string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", value, err)
	}
	return t, nil
}
