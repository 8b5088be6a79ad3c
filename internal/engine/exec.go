package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/expr-lang/expr/vm"
	"github.com/spf13/cast"
	"golang.org/x/sync/errgroup"

	"github.com/windql-lang/windql/pkg/parser"
	"github.com/windql-lang/windql/pkg/ptf"
	"github.com/windql-lang/windql/pkg/window"
)

// filterRows applies the compiled WHERE program. The predicate must evaluate
// to a boolean; nil counts as false, anything else is an error.
func filterRows(prog *vm.Program, rows []ptf.Row) ([]ptf.Row, error) {
	out := make([]ptf.Row, 0, len(rows))
	for _, row := range rows {
		v, err := window.Eval(prog, row)
		if err != nil {
			return nil, err
		}
		switch b := v.(type) {
		case nil:
		case bool:
			if b {
				out = append(out, row)
			}
		default:
			return nil, fmt.Errorf("predicate evaluated to %T, want boolean", v)
		}
	}
	return out, nil
}

// partitionRows sorts rows by (partition key, order columns) and splits them
// into contiguous partitions. Without partition columns the whole input is
// one partition, still ordered.
func partitionRows(rows []ptf.Row, partCols []string, orderCols []*parser.OrderColumn) []*ptf.Partition {
	sorted := make([]ptf.Row, len(rows))
	copy(sorted, rows)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		for _, col := range partCols {
			if c := compareValues(a[col], b[col]); c != 0 {
				return c < 0
			}
		}
		for _, oc := range orderCols {
			c := compareValues(a[oc.Column.Column], b[oc.Column.Column])
			if oc.Desc {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	})

	if len(sorted) == 0 {
		return nil
	}

	var parts []*ptf.Partition
	current := ptf.NewPartition(nil)
	for i, row := range sorted {
		if i > 0 && !samePartition(sorted[i-1], row, partCols) {
			parts = append(parts, current)
			current = ptf.NewPartition(nil)
		}
		current.Append(row)
	}
	return append(parts, current)
}

func samePartition(a, b ptf.Row, partCols []string) bool {
	for _, col := range partCols {
		if compareValues(a[col], b[col]) != 0 {
			return false
		}
	}
	return true
}

// compareValues orders two cell values: numerically when both sides coerce,
// textually otherwise. Nil sorts first.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	fa, errA := cast.ToFloat64E(a)
	fb, errB := cast.ToFloat64E(b)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}

	sa, sb := cast.ToString(a), cast.ToString(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	default:
		return 0
	}
}

// evaluate computes the select list over every partition. Partitions are
// independent and run concurrently up to the worker limit; output keeps
// partition order.
func (p *plan) evaluate(ctx context.Context, parts []*ptf.Partition, workers int) ([]ptf.Row, error) {
	results := make([][]ptf.Row, len(parts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, part := range parts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows, err := p.evalPartition(part)
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []ptf.Row
	for _, rows := range results {
		out = append(out, rows...)
	}
	return out, nil
}

// evalPartition computes windowed columns once per partition, then projects
// row by row.
func (p *plan) evalPartition(part *ptf.Partition) ([]ptf.Row, error) {
	winVals := make(map[int][]any)
	for ci, col := range p.cols {
		if col.winFn == nil {
			continue
		}
		ctx := &ptf.WindowCtx{
			Part:     part,
			Res:      col.res,
			Frame:    col.frame,
			Args:     col.args,
			Distinct: col.distinct,
			Star:     col.star,
		}
		vals, err := col.winFn(ctx)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.name, err)
		}
		winVals[ci] = vals
	}

	out := make([]ptf.Row, part.Len())
	for j := 0; j < part.Len(); j++ {
		row := make(ptf.Row, len(p.cols))
		for ci, col := range p.cols {
			if vals, ok := winVals[ci]; ok {
				row[col.name] = vals[j]
				continue
			}
			v, err := window.Eval(col.prog, part.At(j))
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col.name, err)
			}
			row[col.name] = v
		}
		out[j] = row
	}
	return out, nil
}
