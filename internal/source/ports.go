// Package source defines how a Dataset is obtained at process start.
package source

import (
	"context"

	"salarycalc/internal/core"
)

// DatasetLoader builds the immutable Dataset. It is called once per process;
// any error is fatal to startup.
type DatasetLoader interface {
	Load(ctx context.Context) (*core.Dataset, error)
}
