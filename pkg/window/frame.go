package window

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr/vm"
	"github.com/spf13/cast"

	"github.com/windql-lang/windql/pkg/parser"
)

// Rows is an ordered, materialized view over one partition.
type Rows interface {
	Len() int
	At(i int) map[string]any
}

// RowsBounds computes the inclusive [lo, hi] row-index frame for current row
// i in a partition of n rows. Out-of-range endpoints clamp to the partition
// edges; an inverted frame clamps to empty. A nil frame covers the whole
// partition.
func RowsBounds(f *parser.FrameSpec, i, n int) (lo, hi int, empty bool) {
	if n == 0 {
		return 0, -1, true
	}
	if f == nil {
		return 0, n - 1, false
	}

	lo = rowBound(f.Start, i, n)
	hi = rowBound(f.End, i, n)

	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	if lo > hi {
		return 0, -1, true
	}
	return lo, hi, false
}

func rowBound(b *parser.FrameBound, i, n int) int {
	switch b.Type {
	case parser.BoundUnboundedPreceding:
		return 0
	case parser.BoundUnboundedFollowing:
		return n - 1
	case parser.BoundCurrentRow:
		return i
	case parser.BoundPreceding:
		return i - b.Offset
	case parser.BoundFollowing:
		return i + b.Offset
	}
	return i
}

// FrameEval computes frame bounds for one resolved specification. Value-bound
// expressions are compiled once at construction.
type FrameEval struct {
	frame *parser.FrameSpec
	col   string
	desc  bool

	startProg *vm.Program
	endProg   *vm.Program
}

// NewFrameEval prepares a frame evaluator for a resolved specification.
func NewFrameEval(r *Resolved) (*FrameEval, error) {
	e := &FrameEval{frame: r.Frame, col: r.OrderColumn(), desc: r.Descending()}
	if r.Frame == nil || r.Frame.Type != parser.FrameRange {
		return e, nil
	}

	var err error
	if e.startProg, err = compileValueBound(r.Frame.Start); err != nil {
		return nil, err
	}
	if e.endProg, err = compileValueBound(r.Frame.End); err != nil {
		return nil, err
	}
	return e, nil
}

// NeedsNumericOrder reports whether computing bounds will coerce the order
// column numerically: RANGE frames with distance or value bounds measure
// offsets in the order column's value space. Peer-group bounds (CURRENT ROW,
// UNBOUNDED) compare for equality only and take any type.
func (e *FrameEval) NeedsNumericOrder() bool {
	if e.frame == nil || e.frame.Type != parser.FrameRange {
		return false
	}
	for _, b := range []*parser.FrameBound{e.frame.Start, e.frame.End} {
		switch b.Type {
		case parser.BoundPreceding, parser.BoundFollowing, parser.BoundValue:
			return true
		}
	}
	return false
}

func compileValueBound(b *parser.FrameBound) (*vm.Program, error) {
	if b == nil || b.Type != parser.BoundValue {
		return nil, nil
	}
	return Compile(b.ValueExpr)
}

// Bounds computes the inclusive [lo, hi] frame for current row i.
func (e *FrameEval) Bounds(rows Rows, i int) (lo, hi int, empty bool, err error) {
	if e.frame == nil || e.frame.Type == parser.FrameRows {
		lo, hi, empty = RowsBounds(e.frame, i, rows.Len())
		return lo, hi, empty, nil
	}
	return e.rangeBounds(rows, i)
}

// RangeBounds is the one-shot form of FrameEval for a RANGE frame: value-bound
// expressions are compiled per call.
func RangeBounds(rows Rows, col string, desc bool, i int, f *parser.FrameSpec) (lo, hi int, empty bool, err error) {
	e := &FrameEval{frame: f, col: col, desc: desc}
	if e.startProg, err = compileValueBound(f.Start); err != nil {
		return 0, -1, true, err
	}
	if e.endProg, err = compileValueBound(f.End); err != nil {
		return 0, -1, true, err
	}
	return e.rangeBounds(rows, i)
}

func (e *FrameEval) rangeBounds(rows Rows, i int) (lo, hi int, empty bool, err error) {
	n := rows.Len()
	if n == 0 {
		return 0, -1, true, nil
	}

	if lo, err = e.rangeStart(rows, i, n); err != nil {
		return 0, -1, true, err
	}
	if hi, err = e.rangeEnd(rows, i, n); err != nil {
		return 0, -1, true, err
	}
	if lo > hi {
		return 0, -1, true, nil
	}
	return lo, hi, false, nil
}

func (e *FrameEval) rangeStart(rows Rows, i, n int) (int, error) {
	b := e.frame.Start
	switch b.Type {
	case parser.BoundUnboundedPreceding:
		return 0, nil

	case parser.BoundCurrentRow:
		// Peer group: all rows sharing the current order-by value.
		lo := i
		for lo > 0 && e.peers(rows, lo-1, i) {
			lo--
		}
		return lo, nil

	case parser.BoundPreceding, parser.BoundFollowing, parser.BoundValue:
		threshold, err := e.thresholdKey(rows, i, b)
		if err != nil {
			return 0, err
		}
		// First row at or above the threshold in key order.
		return e.searchGE(rows, n, threshold)

	default:
		return 0, fmt.Errorf("%w: %s as frame start", ErrInvalidBound, b.Type)
	}
}

func (e *FrameEval) rangeEnd(rows Rows, i, n int) (int, error) {
	b := e.frame.End
	switch b.Type {
	case parser.BoundUnboundedFollowing:
		return n - 1, nil

	case parser.BoundCurrentRow:
		hi := i
		for hi < n-1 && e.peers(rows, hi+1, i) {
			hi++
		}
		return hi, nil

	case parser.BoundPreceding, parser.BoundFollowing, parser.BoundValue:
		threshold, err := e.thresholdKey(rows, i, b)
		if err != nil {
			return 0, err
		}
		// Last row at or below the threshold in key order.
		first, err := e.searchGT(rows, n, threshold)
		if err != nil {
			return 0, err
		}
		return first - 1, nil

	default:
		return 0, fmt.Errorf("%w: %s as frame end", ErrInvalidBound, b.Type)
	}
}

// thresholdKey computes the key-space threshold for a distance-based bound.
// Keys are negated for descending orderings so the partition is always
// ascending in key space; LESS widens the preceding side, MORE the following.
func (e *FrameEval) thresholdKey(rows Rows, i int, b *parser.FrameBound) (float64, error) {
	var target, offset float64
	var err error

	switch b.Type {
	case parser.BoundValue:
		if target, err = EvalNumber(e.startOrEndProg(b), rows.At(i)); err != nil {
			return 0, fmt.Errorf("value bound: %w", err)
		}
		offset = b.ValueOffset
		if b.Direction == parser.DirLess {
			offset = -offset
		}
	default:
		if target, err = e.key(rows, i); err != nil {
			return 0, err
		}
		target /= e.mult() // key() already applied the sign; undo for the raw value
		offset = float64(b.Offset)
		if b.Type == parser.BoundPreceding {
			offset = -offset
		}
	}

	return e.mult()*target + offset, nil
}

func (e *FrameEval) startOrEndProg(b *parser.FrameBound) *vm.Program {
	if b == e.frame.Start {
		return e.startProg
	}
	return e.endProg
}

func (e *FrameEval) mult() float64 {
	if e.desc {
		return -1
	}
	return 1
}

// key returns the order-by value of row j in ascending key space.
func (e *FrameEval) key(rows Rows, j int) (float64, error) {
	if e.col == "" {
		return 0, ErrMissingOrderForRange
	}
	v, err := cast.ToFloat64E(rows.At(j)[e.col])
	if err != nil {
		return 0, fmt.Errorf("order column %s is not numeric at row %d: %w", e.col, j, err)
	}
	return e.mult() * v, nil
}

// peers reports whether rows j and i share the same order-by value.
func (e *FrameEval) peers(rows Rows, j, i int) bool {
	return Peers(rows, e.col, j, i)
}

// Peers reports whether two rows share the same order-by value. With no
// order column every row is a peer. Values compare numerically when both
// sides coerce, textually otherwise.
func Peers(rows Rows, col string, j, i int) bool {
	if col == "" {
		return true
	}
	a, b := rows.At(j)[col], rows.At(i)[col]
	fa, errA := cast.ToFloat64E(a)
	fb, errB := cast.ToFloat64E(b)
	if errA == nil && errB == nil {
		return fa == fb
	}
	return cast.ToString(a) == cast.ToString(b)
}

// searchGE finds the first row whose key is >= threshold.
func (e *FrameEval) searchGE(rows Rows, n int, threshold float64) (int, error) {
	var keyErr error
	idx := sort.Search(n, func(j int) bool {
		k, err := e.key(rows, j)
		if err != nil && keyErr == nil {
			keyErr = err
		}
		return k >= threshold
	})
	return idx, keyErr
}

// searchGT finds the first row whose key is > threshold.
func (e *FrameEval) searchGT(rows Rows, n int, threshold float64) (int, error) {
	var keyErr error
	idx := sort.Search(n, func(j int) bool {
		k, err := e.key(rows, j)
		if err != nil && keyErr == nil {
			keyErr = err
		}
		return k > threshold
	})
	return idx, keyErr
}
