// Package workbook is a grid driver over a local .xlsx file, used for
// development and offline runs where no shared spreadsheet is reachable.
package workbook

import (
	"fmt"
	"os"
	"sync"

	"context"

	"github.com/xuri/excelize/v2"
)

type Grid struct {
	mu    sync.Mutex
	path  string
	sheet string
}

// Open creates the workbook (with the given header row) when the file
// does not exist yet, and validates the sheet name when it does.
func Open(path, sheet string, header []string) (*Grid, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f := excelize.NewFile()
		defer func() { _ = f.Close() }()
		def := f.GetSheetName(0)
		if def != sheet {
			if err := f.SetSheetName(def, sheet); err != nil {
				return nil, fmt.Errorf("name sheet: %w", err)
			}
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		if err := f.SaveAs(path); err != nil {
			return nil, fmt.Errorf("create workbook: %w", err)
		}
		return &Grid{path: path, sheet: sheet}, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("worksheet %q not found in %s", sheet, path)
	}
	return &Grid{path: path, sheet: sheet}, nil
}

func (g *Grid) Values(ctx context.Context) ([][]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	f, err := excelize.OpenFile(g.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(g.sheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", g.sheet, err)
	}
	return rows, nil
}

func (g *Grid) Column(ctx context.Context, col int) ([]string, error) {
	rows, err := g.Values(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		if col-1 < len(r) {
			out[i] = r[col-1]
		}
	}
	return out, nil
}

func (g *Grid) UpdateCell(ctx context.Context, row, col int, value string) error {
	return g.mutate(func(f *excelize.File) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(g.sheet, cell, value)
	})
}

func (g *Grid) UpdateRange(ctx context.Context, row, startCol int, values []string) error {
	return g.mutate(func(f *excelize.File) error {
		cell, err := excelize.CoordinatesToCellName(startCol, row)
		if err != nil {
			return err
		}
		return f.SetSheetRow(g.sheet, cell, &values)
	})
}

func (g *Grid) AppendRow(ctx context.Context, values []string) error {
	return g.mutate(func(f *excelize.File) error {
		rows, err := f.GetRows(g.sheet)
		if err != nil {
			return err
		}
		cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
		if err != nil {
			return err
		}
		return f.SetSheetRow(g.sheet, cell, &values)
	})
}

func (g *Grid) DeleteRow(ctx context.Context, row int) error {
	return g.mutate(func(f *excelize.File) error {
		return f.RemoveRow(g.sheet, row)
	})
}

func (g *Grid) mutate(fn func(f *excelize.File) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	f, err := excelize.OpenFile(g.path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := fn(f); err != nil {
		return err
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
