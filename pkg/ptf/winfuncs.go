package ptf

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/windql-lang/windql/pkg/window"
)

// Built-in windowing functions. Ranking functions walk the partition's order
// column; frame-driven aggregates compute over the [lo, hi] bounds the frame
// evaluator yields for each current row.

func winRowNumber(ctx *WindowCtx) ([]any, error) {
	out := make([]any, ctx.Part.Len())
	for i := range out {
		out[i] = i + 1
	}
	return out, nil
}

func winRank(ctx *WindowCtx) ([]any, error) {
	col := ctx.Res.OrderColumn()
	out := make([]any, ctx.Part.Len())
	rank := 1
	for i := range out {
		if i > 0 && !window.Peers(ctx.Part, col, i, i-1) {
			rank = i + 1
		}
		out[i] = rank
	}
	return out, nil
}

func winDenseRank(ctx *WindowCtx) ([]any, error) {
	col := ctx.Res.OrderColumn()
	out := make([]any, ctx.Part.Len())
	rank := 1
	for i := range out {
		if i > 0 && !window.Peers(ctx.Part, col, i, i-1) {
			rank++
		}
		out[i] = rank
	}
	return out, nil
}

// winNtile splits the partition into the requested number of buckets, the
// earlier buckets taking the remainder rows.
func winNtile(ctx *WindowCtx) ([]any, error) {
	if len(ctx.Args) != 1 {
		return nil, fmt.Errorf("ntile: want 1 argument, got %d", len(ctx.Args))
	}
	n := ctx.Part.Len()
	out := make([]any, n)
	if n == 0 {
		return out, nil
	}

	v, err := ctx.Arg(0, 0)
	if err != nil {
		return nil, err
	}
	buckets, err := cast.ToIntE(v)
	if err != nil || buckets < 1 {
		return nil, fmt.Errorf("ntile: bucket count must be a positive integer, got %v", v)
	}
	if buckets > n {
		buckets = n
	}

	base, rem := n/buckets, n%buckets
	i := 0
	for b := 1; b <= buckets; b++ {
		size := base
		if b <= rem {
			size++
		}
		for k := 0; k < size; k++ {
			out[i] = b
			i++
		}
	}
	return out, nil
}

func winLead(ctx *WindowCtx) ([]any, error) {
	return shiftValue(ctx, 1)
}

func winLag(ctx *WindowCtx) ([]any, error) {
	return shiftValue(ctx, -1)
}

// shiftValue implements lead/lag: expr, optional offset (default 1),
// optional default value for rows shifted off the partition edge.
func shiftValue(ctx *WindowCtx, sign int) ([]any, error) {
	if len(ctx.Args) < 1 || len(ctx.Args) > 3 {
		return nil, fmt.Errorf("lead/lag: want 1 to 3 arguments, got %d", len(ctx.Args))
	}
	n := ctx.Part.Len()
	out := make([]any, n)
	if n == 0 {
		return out, nil
	}

	offset := 1
	if len(ctx.Args) >= 2 {
		v, err := ctx.Arg(1, 0)
		if err != nil {
			return nil, err
		}
		if offset, err = cast.ToIntE(v); err != nil || offset < 0 {
			return nil, fmt.Errorf("lead/lag: offset must be a non-negative integer, got %v", v)
		}
	}

	for i := 0; i < n; i++ {
		j := i + sign*offset
		if j < 0 || j >= n {
			if len(ctx.Args) == 3 {
				d, err := ctx.Arg(2, i)
				if err != nil {
					return nil, err
				}
				out[i] = d
			}
			continue
		}
		v, err := ctx.Arg(0, j)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func winFirstValue(ctx *WindowCtx) ([]any, error) {
	return frameEdgeValue(ctx, true)
}

func winLastValue(ctx *WindowCtx) ([]any, error) {
	return frameEdgeValue(ctx, false)
}

func frameEdgeValue(ctx *WindowCtx, first bool) ([]any, error) {
	if len(ctx.Args) != 1 {
		return nil, fmt.Errorf("first_value/last_value: want 1 argument, got %d", len(ctx.Args))
	}
	out := make([]any, ctx.Part.Len())
	for i := range out {
		lo, hi, empty, err := ctx.Frame.Bounds(ctx.Part, i)
		if err != nil {
			return nil, err
		}
		if empty {
			continue
		}
		j := hi
		if first {
			j = lo
		}
		v, err := ctx.Arg(0, j)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func winSum(ctx *WindowCtx) ([]any, error) {
	return frameAggregate(ctx, "sum", func(vals []float64) any {
		if len(vals) == 0 {
			return nil
		}
		var total float64
		for _, v := range vals {
			total += v
		}
		return total
	})
}

func winAvg(ctx *WindowCtx) ([]any, error) {
	return frameAggregate(ctx, "avg", func(vals []float64) any {
		if len(vals) == 0 {
			return nil
		}
		var total float64
		for _, v := range vals {
			total += v
		}
		return total / float64(len(vals))
	})
}

func winMin(ctx *WindowCtx) ([]any, error) {
	return frameAggregate(ctx, "min", func(vals []float64) any {
		if len(vals) == 0 {
			return nil
		}
		m := vals[0]
		for _, v := range vals[1:] {
			if v < m {
				m = v
			}
		}
		return m
	})
}

func winMax(ctx *WindowCtx) ([]any, error) {
	return frameAggregate(ctx, "max", func(vals []float64) any {
		if len(vals) == 0 {
			return nil
		}
		m := vals[0]
		for _, v := range vals[1:] {
			if v > m {
				m = v
			}
		}
		return m
	})
}

// frameAggregate evaluates the argument over each row's frame and reduces
// the numeric values. Null argument values are skipped, per SQL aggregate
// semantics; distinct collapses duplicate values first.
func frameAggregate(ctx *WindowCtx, name string, reduce func([]float64) any) ([]any, error) {
	if len(ctx.Args) != 1 {
		return nil, fmt.Errorf("%s: want 1 argument, got %d", name, len(ctx.Args))
	}

	out := make([]any, ctx.Part.Len())
	for i := range out {
		lo, hi, empty, err := ctx.Frame.Bounds(ctx.Part, i)
		if err != nil {
			return nil, err
		}

		var vals []float64
		seen := map[float64]bool{}
		if !empty {
			for j := lo; j <= hi; j++ {
				v, err := ctx.Arg(0, j)
				if err != nil {
					return nil, err
				}
				if v == nil {
					continue
				}
				f, err := cast.ToFloat64E(v)
				if err != nil {
					return nil, fmt.Errorf("%s: non-numeric value %v: %w", name, v, err)
				}
				if ctx.Distinct {
					if seen[f] {
						continue
					}
					seen[f] = true
				}
				vals = append(vals, f)
			}
		}
		out[i] = reduce(vals)
	}
	return out, nil
}

// winCount counts frame rows. count(*) counts every row; count(expr) skips
// nulls; count(distinct expr) collapses duplicates.
func winCount(ctx *WindowCtx) ([]any, error) {
	if !ctx.Star && len(ctx.Args) != 1 {
		return nil, fmt.Errorf("count: want * or 1 argument, got %d", len(ctx.Args))
	}

	out := make([]any, ctx.Part.Len())
	for i := range out {
		lo, hi, empty, err := ctx.Frame.Bounds(ctx.Part, i)
		if err != nil {
			return nil, err
		}
		if empty {
			out[i] = 0
			continue
		}

		if ctx.Star {
			out[i] = hi - lo + 1
			continue
		}

		count := 0
		seen := map[string]bool{}
		for j := lo; j <= hi; j++ {
			v, err := ctx.Arg(0, j)
			if err != nil {
				return nil, err
			}
			if v == nil {
				continue
			}
			if ctx.Distinct {
				key := cast.ToString(v)
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			count++
		}
		out[i] = count
	}
	return out, nil
}
