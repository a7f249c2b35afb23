package gridmock

import (
	"context"
	"fmt"
	"sync"
)

// Grid is an in-memory backing store for repository tests. Rows and
// columns are 1-indexed like the real drivers. Optional error hooks let
// tests inject failures mid-operation (torn close writes etc.).
type Grid struct {
	mu   sync.Mutex
	rows [][]string

	UpdateCellErr  func(row, col int) error
	UpdateRangeErr func(row int) error
	ValuesErr      error
}

func New(rows ...[]string) *Grid {
	g := &Grid{}
	for _, r := range rows {
		g.rows = append(g.rows, append([]string(nil), r...))
	}
	return g
}

func (g *Grid) Values(ctx context.Context) ([][]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ValuesErr != nil {
		return nil, g.ValuesErr
	}
	return g.copyRows(), nil
}

func (g *Grid) Column(ctx context.Context, col int) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ValuesErr != nil {
		return nil, g.ValuesErr
	}
	out := make([]string, len(g.rows))
	for i, r := range g.rows {
		if col-1 < len(r) {
			out[i] = r[col-1]
		}
	}
	return out, nil
}

func (g *Grid) UpdateCell(ctx context.Context, row, col int, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.UpdateCellErr != nil {
		if err := g.UpdateCellErr(row, col); err != nil {
			return err
		}
	}
	g.grow(row, col)
	g.rows[row-1][col-1] = value
	return nil
}

func (g *Grid) UpdateRange(ctx context.Context, row, startCol int, values []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.UpdateRangeErr != nil {
		if err := g.UpdateRangeErr(row); err != nil {
			return err
		}
	}
	g.grow(row, startCol+len(values)-1)
	copy(g.rows[row-1][startCol-1:], values)
	return nil
}

func (g *Grid) AppendRow(ctx context.Context, values []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rows = append(g.rows, append([]string(nil), values...))
	return nil
}

func (g *Grid) DeleteRow(ctx context.Context, row int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if row < 1 || row > len(g.rows) {
		return fmt.Errorf("gridmock: no row %d", row)
	}
	g.rows = append(g.rows[:row-1], g.rows[row:]...)
	return nil
}

// Snapshot returns a deep copy for byte-for-byte before/after assertions.
func (g *Grid) Snapshot() [][]string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.copyRows()
}

func (g *Grid) copyRows() [][]string {
	out := make([][]string, len(g.rows))
	for i, r := range g.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

func (g *Grid) grow(row, col int) {
	for len(g.rows) < row {
		g.rows = append(g.rows, nil)
	}
	for len(g.rows[row-1]) < col {
		g.rows[row-1] = append(g.rows[row-1], "")
	}
}
