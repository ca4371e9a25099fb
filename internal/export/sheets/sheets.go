// Package sheets exports computed spending summaries to a Google
// spreadsheet for out-of-app reporting.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"budgetd/internal/summary"
)

// Exporter appends one row per category to a report sheet.
type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewFromEnv creates an exporter using environment variables and
// service account credentials.
// Required: GOOGLE_SPREADSHEET_ID
// Optional: GOOGLE_SHEET_NAME (default "Report"),
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS for auth.
func NewFromEnv(ctx context.Context) (*Exporter, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Report"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// ExportSummary appends the summary's category rows to the report
// sheet, one row per category plus a totals row.
func (e *Exporter) ExportSummary(ctx context.Context, userID string, exportedAt time.Time, s summary.PeriodSummary) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rows := reportRows(userID, exportedAt, s)

	rng := fmt.Sprintf("%s!A:G", e.sheetName)
	vr := &gsheet.ValueRange{Values: rows}

	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append report rows to %s: %w", e.sheetName, err)
	}

	slog.InfoContext(ctx, "Summary exported to sheet",
		"user_id", userID,
		"sheet", e.sheetName,
		"rows", len(rows))

	return nil
}

// reportRows flattens a summary into spreadsheet rows. Categories
// whose fetch failed this run are skipped, the totals row reflects
// only loaded categories.
func reportRows(userID string, exportedAt time.Time, s summary.PeriodSummary) [][]any {
	stamp := exportedAt.Format("2006-01-02")

	var rows [][]any
	for _, c := range s.Categories {
		if c.FetchErr != nil {
			continue
		}
		rows = append(rows, []any{
			stamp,
			userID,
			string(s.Period),
			c.Name,
			c.Spent.Float(),
			c.Budget.Float(),
			len(c.Transactions),
		})
	}
	rows = append(rows, []any{
		stamp,
		userID,
		string(s.Period),
		"TOTAL",
		s.TotalSpent.Float(),
		s.TotalBudget.Float(),
		s.Percentage,
	})
	return rows
}
