package sheets

import (
	"context"

	"salarycalc/internal/export"
)

// TableExporter writes a table to an external destination under title and
// returns a reference to where it landed.
type TableExporter interface {
	Export(ctx context.Context, title string, table export.Table) (ref string, err error)
}
