// Package window resolves window specifications and computes frame bounds
// over partitioned, ordered rows.
package window

import (
	"errors"
	"fmt"

	"github.com/windql-lang/windql/pkg/parser"
)

// Resolution errors.
var (
	ErrUnknownWindowName    = errors.New("unknown window name")
	ErrMissingOrderForRange = errors.New("RANGE frame requires an ORDER BY")
	ErrMultiOrderRange      = errors.New("RANGE frame requires a single ORDER BY column")
	ErrInvalidBound         = errors.New("invalid frame bound")
)

// Resolved is a fully merged window specification, ready for evaluation.
type Resolved struct {
	PartitionBy []*parser.ColumnRef
	OrderBy     []*parser.OrderColumn
	Frame       *parser.FrameSpec
}

// Resolve merges a window specification against the named definitions and
// validates it. Each of partition, order and frame overrides the referenced
// base independently; a locally absent part is inherited. Resolution fails
// before any row is processed: an unknown name, a RANGE frame without a
// usable ordering, or an illegal bound combination is rejected here.
func Resolve(spec *parser.WindowSpec, named map[string]*parser.WindowSpec) (*Resolved, error) {
	r, err := resolve(spec, named, map[string]bool{})
	if err != nil {
		return nil, err
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func resolve(spec *parser.WindowSpec, named map[string]*parser.WindowSpec, seen map[string]bool) (*Resolved, error) {
	r := &Resolved{}

	if spec.Name != "" {
		if seen[spec.Name] {
			return nil, fmt.Errorf("%w: %s references itself", ErrUnknownWindowName, spec.Name)
		}
		seen[spec.Name] = true

		base, ok := named[spec.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownWindowName, spec.Name)
		}
		resolved, err := resolve(base, named, seen)
		if err != nil {
			return nil, err
		}
		*r = *resolved
	}

	if len(spec.PartitionBy) > 0 {
		r.PartitionBy = spec.PartitionBy
	}
	if len(spec.OrderBy) > 0 {
		r.OrderBy = spec.OrderBy
	}
	if spec.Frame != nil {
		r.Frame = spec.Frame
	}
	return r, nil
}

func (r *Resolved) validate() error {
	f := r.Frame
	if f == nil {
		return nil
	}

	if f.Type == parser.FrameRange {
		switch len(r.OrderBy) {
		case 0:
			return ErrMissingOrderForRange
		case 1:
		default:
			return fmt.Errorf("%w: got %d columns", ErrMultiOrderRange, len(r.OrderBy))
		}
	}

	if err := checkBound(f, f.Start, true); err != nil {
		return err
	}
	return checkBound(f, f.End, false)
}

func checkBound(f *parser.FrameSpec, b *parser.FrameBound, start bool) error {
	side := "end"
	if start {
		side = "start"
	}
	if b == nil {
		return fmt.Errorf("%w: missing frame %s", ErrInvalidBound, side)
	}

	switch b.Type {
	case parser.BoundUnboundedFollowing:
		if start {
			return fmt.Errorf("%w: UNBOUNDED FOLLOWING is not a legal frame start", ErrInvalidBound)
		}
	case parser.BoundUnboundedPreceding:
		if !start {
			return fmt.Errorf("%w: UNBOUNDED PRECEDING is not a legal frame end", ErrInvalidBound)
		}
	case parser.BoundPreceding, parser.BoundFollowing:
		if b.Offset < 0 {
			return fmt.Errorf("%w: negative offset %d", ErrInvalidBound, b.Offset)
		}
	case parser.BoundValue:
		if f.Type != parser.FrameRange {
			return fmt.Errorf("%w: value bounds require a RANGE frame", ErrInvalidBound)
		}
		if b.ValueOffset < 0 {
			return fmt.Errorf("%w: negative value offset %v", ErrInvalidBound, b.ValueOffset)
		}
	}
	return nil
}

// OrderColumn returns the single effective order column, or "" when the
// specification carries no ordering.
func (r *Resolved) OrderColumn() string {
	if len(r.OrderBy) == 0 {
		return ""
	}
	return r.OrderBy[0].Column.Column
}

// Descending reports whether the first order column sorts descending.
func (r *Resolved) Descending() bool {
	return len(r.OrderBy) > 0 && r.OrderBy[0].Desc
}
