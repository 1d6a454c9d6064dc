// Package loader reads transaction records from their backing source. A
// loader either returns every record or an error; it never hands back a
// partially decoded sequence.
package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/vanshika/txinsights/internal/config"
	"github.com/vanshika/txinsights/internal/domain"
	"github.com/vanshika/txinsights/internal/graph"
)

// ErrLoad wraps every failure to read or decode a source.
var ErrLoad = errors.New("load transactions")

// Loader produces the full ordered record sequence.
type Loader interface {
	Load(ctx context.Context) ([]domain.Transaction, error)
	Describe() string
}

// New picks the loader named by cfg. The graph client is only required for
// the graph source.
func New(cfg config.DataConfig, client graph.Client) (Loader, error) {
	switch cfg.Source {
	case config.DataSourceGraph:
		if client == nil {
			return nil, fmt.Errorf("data source %q: %w", cfg.Source, graph.ErrMissingURI)
		}
		return NewGraphLoader(client), nil
	case config.DataSourceFile, "":
		return NewFileLoader(cfg.File), nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Source)
	}
}

// Func adapts a plain function to the Loader interface.
type Func func(ctx context.Context) ([]domain.Transaction, error)

func (f Func) Load(ctx context.Context) ([]domain.Transaction, error) { return f(ctx) }

func (f Func) Describe() string { return "func" }
