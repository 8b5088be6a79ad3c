// Package engine binds parsed queries and executes them over partitioned,
// ordered input rows.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/windql-lang/windql/internal/source"
	"github.com/windql-lang/windql/pkg/parser"
	"github.com/windql-lang/windql/pkg/ptf"
)

// Engine executes queries. Safe for concurrent use; each run owns its own
// working state.
type Engine struct {
	reg     *ptf.Registry
	catalog source.Catalog
	log     *slog.Logger
	workers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithCatalog installs the catalog used for table and raw-query inputs.
func WithCatalog(c source.Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithWorkers caps the number of partitions evaluated concurrently.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithRegistry replaces the function registry.
func WithRegistry(r *ptf.Registry) Option {
	return func(e *Engine) { e.reg = r }
}

// New builds an engine with the built-in registry and no catalog.
func New(opts ...Option) *Engine {
	e := &Engine{
		reg:     ptf.NewRegistry(),
		catalog: source.NoCatalog{},
		log:     slog.Default(),
		workers: 4,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry exposes the engine's function registry, for the parser's
// window-function predicate and for caller registrations.
func (e *Engine) Registry() *ptf.Registry {
	return e.reg
}

// Result is the materialized output of one run.
type Result struct {
	RunID   string
	Columns []string
	Rows    []ptf.Row
}

// Run parses, binds and executes a query. Binding is fail-fast: every window
// specification is resolved and every expression compiled before a single
// row is read.
func (e *Engine) Run(ctx context.Context, queryText string) (*Result, error) {
	runID := uuid.NewString()
	log := e.log.With("run_id", runID)

	q, err := parser.Parse(queryText, e.reg)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	p, err := e.bind(q)
	if err != nil {
		return nil, fmt.Errorf("bind: %w", err)
	}
	log.Debug("query bound",
		"columns", len(p.cols),
		"partition_by", p.partCols,
		"windowed", p.windowedCount())

	rows, shape, err := e.load(q.Input)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	log.Debug("input loaded", "rows", len(rows))

	// Shape-dependent binding checks run as soon as the input schema is
	// known, before any partition is evaluated.
	if err := p.checkShape(shape); err != nil {
		return nil, fmt.Errorf("bind: %w", err)
	}

	if p.where != nil {
		if rows, err = filterRows(p.where, rows); err != nil {
			return nil, fmt.Errorf("where: %w", err)
		}
		log.Debug("filter applied", "rows", len(rows))
	}

	parts := partitionRows(rows, p.partCols, p.orderCols)
	log.Debug("input partitioned", "partitions", len(parts))

	if parts, err = e.applyTableFunctions(q.Input, parts); err != nil {
		return nil, fmt.Errorf("table functions: %w", err)
	}

	out, err := p.evaluate(ctx, parts, e.workers)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	result := &Result{RunID: runID, Columns: p.columnNames(), Rows: out}
	if q.Output != nil {
		if err := e.writeOutput(q.Output, result, log); err != nil {
			return nil, fmt.Errorf("output: %w", err)
		}
	}

	log.Info("query complete", "rows", len(result.Rows))
	return result, nil
}

// load reads the base input rows and their shape, unwrapping table-function
// nesting down to the leaf specification.
func (e *Engine) load(spec parser.TableSpec) ([]ptf.Row, *ptf.Shape, error) {
	switch s := spec.(type) {
	case *parser.TableFuncSpec:
		return e.load(s.Input)

	case *parser.HdfsFileSpec:
		params := make(map[string]string, len(s.Params))
		for _, p := range s.Params {
			params[p.Name] = p.Value
		}
		src, err := source.Open(params)
		if err != nil {
			return nil, nil, err
		}
		return src.Read()

	case *parser.HiveTableSpec:
		return e.catalog.Table(s.Db, s.Table)

	case *parser.RawQuerySpec:
		return e.catalog.Query(s.Query)

	default:
		return nil, nil, fmt.Errorf("unsupported input specification %T", spec)
	}
}

// applyTableFunctions runs the FROM clause's table-function chain, innermost
// first, over the partitioned input.
func (e *Engine) applyTableFunctions(spec parser.TableSpec, parts []*ptf.Partition) ([]*ptf.Partition, error) {
	fns, err := e.collectTableFunctions(spec)
	if err != nil {
		return nil, err
	}
	if len(fns) == 0 {
		return parts, nil
	}

	chain := ptf.NewChain(ptf.NewSliceIterator(parts...), fns...)
	var out []*ptf.Partition
	for chain.HasNext() {
		part, err := chain.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, part)
	}
	return out, nil
}

// collectTableFunctions walks the nesting and returns instances innermost
// first, with scalar arguments applied.
func (e *Engine) collectTableFunctions(spec parser.TableSpec) ([]ptf.TableFunction, error) {
	fnSpec, ok := spec.(*parser.TableFuncSpec)
	if !ok {
		return nil, nil
	}

	inner, err := e.collectTableFunctions(fnSpec.Input)
	if err != nil {
		return nil, err
	}

	fn, ok := e.reg.TableFunction(fnSpec.Name)
	if !ok {
		return nil, fmt.Errorf("unknown table function %s", fnSpec.Name)
	}

	if len(fnSpec.Args) > 0 {
		args, err := evalConstArgs(fnSpec.Args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fnSpec.Name, err)
		}
		param, ok := fn.(ptf.Parameterized)
		if !ok {
			return nil, fmt.Errorf("table function %s takes no arguments", fnSpec.Name)
		}
		if err := param.SetArgs(args); err != nil {
			return nil, fmt.Errorf("%s: %w", fnSpec.Name, err)
		}
	}

	return append(inner, fn), nil
}
