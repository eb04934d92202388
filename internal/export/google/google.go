// Package google pushes liquidation reports to a Google Sheets spreadsheet so
// administration staff can work over the period totals without downloading
// files. Authentication uses service account credentials or ADC, the same way
// the rest of the deployment talks to Google APIs.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	ports "asociados/internal/export"
	"asociados/internal/liquidation"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.ReportExporter = (*Client)(nil)

// New creates a Sheets exporter for the given spreadsheet and sheet.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Liquidacion"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using service account
// credentials (GOOGLE_SERVICE_ACCOUNT_FILE) or Application Default
// Credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	if file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")); file != "" {
		return gsheet.NewService(ctx,
			goption.WithCredentialsFile(file),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}
	return gsheet.NewService(ctx, goption.WithScopes(gsheet.SpreadsheetsScope))
}

// ExportReport appends one block per invocation: a period header, the
// per-contractor rows, and the summary line.
func (c *Client) ExportReport(ctx context.Context, report liquidation.Report, _ string) error {
	values := [][]any{
		{"Período", report.PeriodLabel},
		{"Contratista", "Altas", "Bajas", "Transf. entrada", "Transf. salida", "Saldo neto"},
	}
	for _, row := range report.ByContractor {
		values = append(values, []any{
			row.ContractorName, row.Altas, row.Bajas,
			row.TransfersIn, row.TransfersOut, row.NetBalance,
		})
	}
	values = append(values, []any{
		"Totales",
		report.Summary.TotalAltas,
		report.Summary.TotalBajas,
		report.Summary.TotalTransfers, "",
		report.Summary.TotalAltas - report.Summary.TotalBajas,
	})

	vr := &gsheet.ValueRange{Values: values}
	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, c.sheetName+"!A1", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append report to sheet %q: %w", c.sheetName, err)
	}
	return nil
}
