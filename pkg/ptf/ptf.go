// Package ptf models partitioned table functions: the partition container,
// the linear execution chain that feeds partitions through table functions,
// and the built-in windowing functions.
package ptf

import (
	"errors"
	"fmt"
)

// Row is one input or output record.
type Row = map[string]any

// Partition is a materialized, ordered group of rows sharing the same
// partition key.
type Partition struct {
	rows []Row
}

// NewPartition wraps rows in a partition.
func NewPartition(rows []Row) *Partition {
	return &Partition{rows: rows}
}

func (p *Partition) Len() int     { return len(p.rows) }
func (p *Partition) At(i int) Row { return p.rows[i] }
func (p *Partition) Append(r Row) { p.rows = append(p.rows, r) }
func (p *Partition) Rows() []Row  { return p.rows }

// Slice returns the inclusive row range [lo, hi].
func (p *Partition) Slice(lo, hi int) []Row {
	return p.rows[lo : hi+1]
}

// PartitionIterator yields partitions one at a time.
type PartitionIterator interface {
	HasNext() bool
	Next() (*Partition, error)
}

// TableFunction transforms one partition into another.
type TableFunction interface {
	Name() string
	Execute(p *Partition) (*Partition, error)
	OutputShape(input *Shape) *Shape
}

// MapPhase is the optional reshape capability. A function implementing it
// has MapExecute applied to each upstream partition before Execute when the
// function is not first in its chain.
type MapPhase interface {
	MapExecute(p *Partition) (*Partition, error)
}

// ErrNoMapPhase reports a map-phase invocation on a function without one.
var ErrNoMapPhase = errors.New("table function has no map phase")

// Parameterized is the optional capability for table functions that accept
// scalar arguments after their input specification.
type Parameterized interface {
	SetArgs(args []any) error
}

// chainLink adapts one table function over an upstream iterator.
type chainLink struct {
	fn       TableFunction
	upstream PartitionIterator
	first    bool
}

// NewChain links table functions into a strictly linear pipeline over the
// source iterator. Each function owns exactly one upstream; the returned
// iterator yields the output of the last function.
func NewChain(src PartitionIterator, fns ...TableFunction) PartitionIterator {
	it := src
	for i, fn := range fns {
		it = &chainLink{fn: fn, upstream: it, first: i == 0}
	}
	return it
}

func (c *chainLink) HasNext() bool {
	return c.upstream.HasNext()
}

func (c *chainLink) Next() (*Partition, error) {
	part, err := c.upstream.Next()
	if err != nil {
		return nil, err
	}

	if !c.first {
		if mp, ok := c.fn.(MapPhase); ok {
			if part, err = mp.MapExecute(part); err != nil {
				return nil, fmt.Errorf("%s map phase: %w", c.fn.Name(), err)
			}
		}
	}

	out, err := c.fn.Execute(part)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.fn.Name(), err)
	}
	return out, nil
}

// SliceIterator yields pre-built partitions, for tests and in-memory sources.
type SliceIterator struct {
	parts []*Partition
	pos   int
}

// NewSliceIterator builds an iterator over the given partitions.
func NewSliceIterator(parts ...*Partition) *SliceIterator {
	return &SliceIterator{parts: parts}
}

func (s *SliceIterator) HasNext() bool {
	return s.pos < len(s.parts)
}

func (s *SliceIterator) Next() (*Partition, error) {
	if s.pos >= len(s.parts) {
		return nil, errors.New("iterator exhausted")
	}
	p := s.parts[s.pos]
	s.pos++
	return p, nil
}
