package source

import (
	"errors"
	"fmt"

	"github.com/windql-lang/windql/pkg/ptf"
)

// Catalog resolves table references and raw embedded queries against an
// external metastore or engine.
type Catalog interface {
	Table(db, name string) ([]ptf.Row, *ptf.Shape, error)
	Query(raw string) ([]ptf.Row, *ptf.Shape, error)
}

// ErrNoCatalog is returned when a query references a table or embeds a raw
// query but no catalog has been configured.
var ErrNoCatalog = errors.New("external catalog not configured")

// NoCatalog is the bundled catalog: it rejects every lookup with ErrNoCatalog.
type NoCatalog struct{}

func (NoCatalog) Table(db, name string) ([]ptf.Row, *ptf.Shape, error) {
	if db != "" {
		name = db + "." + name
	}
	return nil, nil, fmt.Errorf("table %s: %w", name, ErrNoCatalog)
}

func (NoCatalog) Query(string) ([]ptf.Row, *ptf.Shape, error) {
	return nil, nil, fmt.Errorf("raw query: %w", ErrNoCatalog)
}
