// Package sheets keeps a shopping list in a Google spreadsheet and watches it for additions.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	EmptyList = "Список порожній."
	EmptyItem = "(порожньо)"
)

// Table is the tabular-storage collaborator.
type Table interface {
	ReadAll(ctx context.Context) ([][]string, error)
	AppendRow(ctx context.Context, values []string) error
}

// GoogleSheet is a Table backed by one A1 range of a spreadsheet.
type GoogleSheet struct {
	svc           *sheets.Service
	spreadsheetID string
	rng           string
}

// NewGoogleSheet authenticates with a service account key file.
func NewGoogleSheet(ctx context.Context, serviceAccountFile, spreadsheetID, rng string) (*GoogleSheet, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(serviceAccountFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}
	return NewGoogleSheetWithService(svc, spreadsheetID, rng), nil
}

func NewGoogleSheetWithService(svc *sheets.Service, spreadsheetID, rng string) *GoogleSheet {
	return &GoogleSheet{svc: svc, spreadsheetID: spreadsheetID, rng: rng}
}

func (g *GoogleSheet) ReadAll(ctx context.Context) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, g.rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: read %s: %w", g.rng, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (g *GoogleSheet) AppendRow(ctx context.Context, values []string) error {
	row := make([]interface{}, 0, len(values))
	for _, v := range values {
		row = append(row, v)
	}

	_, err := g.svc.Spreadsheets.Values.
		Append(g.spreadsheetID, g.rng, &sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: append row: %w", err)
	}
	return nil
}

// FormatList renders the first column as a numbered list.
func FormatList(rows [][]string) string {
	if len(rows) == 0 {
		return EmptyList
	}
	lines := make([]string, 0, len(rows))
	for i, r := range rows {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, itemLabel(r)))
	}
	return strings.Join(lines, "\n")
}

func itemLabel(row []string) string {
	if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
		return EmptyItem
	}
	return strings.TrimSpace(row[0])
}
