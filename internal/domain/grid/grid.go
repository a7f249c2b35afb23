// Package grid defines the protocol consumed from the backing tabular
// store. Rows and columns are 1-indexed; row 1 is the header.
package grid

import "context"

type Grid interface {
	// Values returns every cell. Trailing blank rows may be absent and
	// rows may be ragged; callers must not rely on uniform width.
	Values(ctx context.Context) ([][]string, error)

	// Column returns a single 1-indexed column, header cell included.
	Column(ctx context.Context, col int) ([]string, error)

	UpdateCell(ctx context.Context, row, col int, value string) error

	// UpdateRange writes values into one explicit row range starting at
	// (row, startCol). Used instead of AppendRow for record appends,
	// which must target a computed row rather than "after whatever the
	// store thinks the last row is".
	UpdateRange(ctx context.Context, row, startCol int, values []string) error

	AppendRow(ctx context.Context, values []string) error

	DeleteRow(ctx context.Context, row int) error
}
