package recorder

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsRecorder appends one row per trade to a Google Sheet.
type SheetsRecorder struct {
	srv           *sheets.Service
	spreadsheetID string
	sheetName     string
	timeout       time.Duration
}

// NewSheetsRecorder authenticates with a service-account key, given either as raw
// JSON or base64-encoded JSON.
func NewSheetsRecorder(ctx context.Context, credentials, spreadsheetID, sheetName string) (*SheetsRecorder, error) {
	credBytes, err := decodeCredentials(credentials)
	if err != nil {
		return nil, err
	}

	config, err := google.JWTConfigFromJSON(credBytes, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to get config from json: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	if sheetName == "" {
		sheetName = "Sheet1"
	}
	return &SheetsRecorder{srv: srv, spreadsheetID: spreadsheetID, sheetName: sheetName, timeout: 30 * time.Second}, nil
}

func decodeCredentials(credentials string) ([]byte, error) {
	trimmed := strings.TrimSpace(credentials)
	if trimmed == "" {
		return nil, fmt.Errorf("empty google credentials")
	}
	if strings.HasPrefix(trimmed, "{") {
		return []byte(trimmed), nil
	}
	credBytes, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to base64 decode google credentials: %w", err)
	}
	return credBytes, nil
}

// tradeRow is the sheet row layout, matching the CSV trade log.
func tradeRow(rec *TradeRecord) []interface{} {
	return []interface{}{
		rec.Time.Format("2006-01-02 15:04:05"),
		rec.Action,
		rec.Symbol,
		rec.Qty,
		fmt.Sprintf("%.2f", rec.Price),
	}
}

func (r *SheetsRecorder) RecordTrade(rec *TradeRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	row := &sheets.ValueRange{
		Values: [][]interface{}{tradeRow(rec)},
	}
	response, err := r.srv.Spreadsheets.Values.Append(r.spreadsheetID, r.sheetName, row).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append sheet row: %w", err)
	}
	if response.HTTPStatusCode != 200 {
		return fmt.Errorf("invalid http status code: %v", response.HTTPStatusCode)
	}
	return nil
}

func (r *SheetsRecorder) Close() error { return nil }
