package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/evanko/ledgerbot/internal/common"
	"github.com/evanko/ledgerbot/internal/period"
	"github.com/evanko/ledgerbot/internal/service"
)

// SheetsRenderer renders a report into a fresh Google Sheets document and
// returns the document link.
type SheetsRenderer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  SheetsConfig
}

// NewSheetsRenderer creates a Google Sheets report renderer.
func NewSheetsRenderer(ctx context.Context, config SheetsConfig, logger *slog.Logger) (*SheetsRenderer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	svc, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &SheetsRenderer{
		config:  config,
		service: svc,
		logger:  logger,
	}, nil
}

// Render creates a new spreadsheet for the period and writes the same
// sections the CSV renderer emits.
func (r *SheetsRenderer) Render(ctx context.Context, entries []service.TransactionEntry, summary service.Summary, rng period.Range) (*service.Artifact, error) {
	r.logger.Info("starting report generation",
		"transactions", len(entries),
		"date_range", fmt.Sprintf("%s to %s", rng.Start.Format(exportDateLayout), rng.End.Format(exportDateLayout)))

	spreadsheetID, link, err := r.createSpreadsheet(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to create spreadsheet: %w", err)
	}

	values := toSheetValues(Rows(entries, summary, rng))

	retryOpts := common.RetryOptions{
		MaxAttempts:  r.config.RetryAttempts,
		InitialDelay: r.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	err = common.WithRetry(ctx, func() error {
		return r.writeData(ctx, spreadsheetID, values)
	}, retryOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to write data: %w", err)
	}

	r.logger.Info("report generation completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))

	return &service.Artifact{
		Filename: r.config.SpreadsheetName,
		Link:     link,
	}, nil
}

// createSheetsService builds the API client from whichever authentication
// method the config carries.
func createSheetsService(ctx context.Context, config SheetsConfig) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = oauthConfig.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

func (r *SheetsRenderer) createSpreadsheet(ctx context.Context, rng period.Range) (id, link string, err error) {
	title := fmt.Sprintf("%s %s — %s",
		r.config.SpreadsheetName,
		rng.Start.Format(exportDateLayout),
		rng.End.Format(exportDateLayout))

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    title,
			TimeZone: r.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{
				Properties: &sheets.SheetProperties{
					Title: "Report",
				},
			},
		},
	}

	created, err := r.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	r.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created.SpreadsheetId, created.SpreadsheetUrl, nil
}

// writeData writes the values in batches to stay under API limits.
func (r *SheetsRenderer) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	for i := 0; i < len(values); i += r.config.BatchSize {
		end := i + r.config.BatchSize
		if end > len(values) {
			end = len(values)
		}

		valueRange := &sheets.ValueRange{Values: values[i:end]}
		rangeStr := fmt.Sprintf("A%d", i+1)
		_, err := r.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, valueRange).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			err = fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
			// Client errors other than rate limiting won't heal with retries.
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) &&
				apiErr.Code >= http.StatusBadRequest &&
				apiErr.Code < http.StatusInternalServerError &&
				apiErr.Code != http.StatusTooManyRequests {
				return &common.RetryableError{Err: err, Retryable: false}
			}
			return err
		}

		r.logger.Debug("wrote batch", "start_row", i+1, "rows", end-i)
	}

	return nil
}

func toSheetValues(rows [][]string) [][]any {
	values := make([][]any, 0, len(rows))
	for _, row := range rows {
		cells := make([]any, 0, len(row))
		for _, cell := range row {
			cells = append(cells, cell)
		}
		values = append(values, cells)
	}
	return values
}
