// Package sheets is the Google Sheets driver for the grid protocol.
// Credentials arrive as decoded service-account JSON; the caller gets an
// already-authenticated handle and never sees the credential plumbing.
package sheets

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const valueInputOption = "USER_ENTERED"

type Grid struct {
	svc           *gsheets.Service
	spreadsheetID string
	sheetTitle    string
	sheetID       int64
	timeout       time.Duration
}

// Open authenticates with the service-account JSON, opens the spreadsheet
// by id and resolves the worksheet tab by name. A missing tab is a
// configuration problem and fails here, not on first use.
func Open(ctx context.Context, credsJSON []byte, spreadsheetID, sheetTitle string, timeout time.Duration) (*Grid, error) {
	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsJSON(credsJSON),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	octx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	meta, err := svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(octx).Do()
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet %s: %w", spreadsheetID, err)
	}
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == sheetTitle {
			return &Grid{
				svc:           svc,
				spreadsheetID: spreadsheetID,
				sheetTitle:    sheetTitle,
				sheetID:       sh.Properties.SheetId,
				timeout:       timeout,
			}, nil
		}
	}
	return nil, fmt.Errorf("worksheet %q not found in spreadsheet %s", sheetTitle, spreadsheetID)
}

func (g *Grid) Values(ctx context.Context) ([][]string, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, g.sheetTitle).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", g.sheetTitle, err)
	}
	out := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		out[i] = toStrings(row)
	}
	return out, nil
}

func (g *Grid) Column(ctx context.Context, col int) ([]string, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	letter := columnLetter(col)
	rng := fmt.Sprintf("%s!%s:%s", g.sheetTitle, letter, letter)
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read column %s: %w", letter, err)
	}
	out := make([]string, len(resp.Values))
	for i, row := range resp.Values {
		if cells := toStrings(row); len(cells) > 0 {
			out[i] = cells[0]
		}
	}
	return out, nil
}

func (g *Grid) UpdateCell(ctx context.Context, row, col int, value string) error {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	rng := fmt.Sprintf("%s!%s%d", g.sheetTitle, columnLetter(col), row)
	vr := &gsheets.ValueRange{Values: [][]any{{value}}}
	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, rng, vr).
		ValueInputOption(valueInputOption).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func (g *Grid) UpdateRange(ctx context.Context, row, startCol int, values []string) error {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	rng := fmt.Sprintf("%s!%s%d:%s%d",
		g.sheetTitle, columnLetter(startCol), row, columnLetter(startCol+len(values)-1), row)
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	vr := &gsheets.ValueRange{Values: [][]any{cells}}
	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, rng, vr).
		ValueInputOption(valueInputOption).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func (g *Grid) AppendRow(ctx context.Context, values []string) error {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	vr := &gsheets.ValueRange{Values: [][]any{cells}}
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, g.sheetTitle+"!A1", vr).
		ValueInputOption(valueInputOption).InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

func (g *Grid) DeleteRow(ctx context.Context, row int) error {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			DeleteDimension: &gsheets.DeleteDimensionRequest{
				Range: &gsheets.DimensionRange{
					SheetId:    g.sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
				},
			},
		}},
	}
	if _, err := g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d: %w", row, err)
	}
	return nil
}

// bound puts the per-call timeout on every network round-trip. A timed
// out write is reported as failed, never retried here: the outcome is
// unknown and a blind retry could double-append or double-close.
func (g *Grid) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, g.timeout)
}

func toStrings(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

func columnLetter(col int) string {
	s := ""
	for col > 0 {
		col--
		s = string(rune('A'+col%26)) + s
		col /= 26
	}
	return s
}
