package ptf

import (
	"strings"

	"github.com/expr-lang/expr/vm"

	"github.com/windql-lang/windql/pkg/window"
)

// WindowCtx is the evaluation context for one windowed column over one
// partition. Args hold the call's compiled argument expressions.
type WindowCtx struct {
	Part     *Partition
	Res      *window.Resolved
	Frame    *window.FrameEval
	Args     []*vm.Program
	Distinct bool
	Star     bool
}

// Arg evaluates argument k against row i.
func (c *WindowCtx) Arg(k, i int) (any, error) {
	return window.Eval(c.Args[k], c.Part.At(i))
}

// WindowFunc computes one output value per partition row.
type WindowFunc func(ctx *WindowCtx) ([]any, error)

// Registry maps function names to implementations. It answers the parser's
// window-function predicate and the engine's lookups.
type Registry struct {
	windowFuncs map[string]WindowFunc
	tableFuncs  map[string]func() TableFunction
}

// NewRegistry builds a registry with the built-in functions installed.
func NewRegistry() *Registry {
	r := &Registry{
		windowFuncs: map[string]WindowFunc{},
		tableFuncs:  map[string]func() TableFunction{},
	}

	r.RegisterWindowFunction("row_number", winRowNumber)
	r.RegisterWindowFunction("rownumber", winRowNumber)
	r.RegisterWindowFunction("rank", winRank)
	r.RegisterWindowFunction("dense_rank", winDenseRank)
	r.RegisterWindowFunction("denserank", winDenseRank)
	r.RegisterWindowFunction("ntile", winNtile)
	r.RegisterWindowFunction("lead", winLead)
	r.RegisterWindowFunction("lag", winLag)
	r.RegisterWindowFunction("first_value", winFirstValue)
	r.RegisterWindowFunction("firstvalue", winFirstValue)
	r.RegisterWindowFunction("last_value", winLastValue)
	r.RegisterWindowFunction("lastvalue", winLastValue)
	r.RegisterWindowFunction("sum", winSum)
	r.RegisterWindowFunction("avg", winAvg)
	r.RegisterWindowFunction("min", winMin)
	r.RegisterWindowFunction("max", winMax)
	r.RegisterWindowFunction("count", winCount)

	r.RegisterTableFunction("noop", func() TableFunction { return noopFunc{} })
	r.RegisterTableFunction("noopwithmap", func() TableFunction { return noopWithMapFunc{} })

	return r
}

// IsWindowFunction implements parser.FunctionResolver.
func (r *Registry) IsWindowFunction(name string) bool {
	_, ok := r.windowFuncs[strings.ToLower(name)]
	return ok
}

// WindowFunction looks up a windowing function by name.
func (r *Registry) WindowFunction(name string) (WindowFunc, bool) {
	fn, ok := r.windowFuncs[strings.ToLower(name)]
	return fn, ok
}

// TableFunction instantiates a table function by name. Each call returns a
// fresh instance so chained invocations never share state.
func (r *Registry) TableFunction(name string) (TableFunction, bool) {
	ctor, ok := r.tableFuncs[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return ctor(), true
}

// RegisterWindowFunction installs or replaces a windowing function.
func (r *Registry) RegisterWindowFunction(name string, fn WindowFunc) {
	r.windowFuncs[strings.ToLower(name)] = fn
}

// RegisterTableFunction installs or replaces a table-function constructor.
func (r *Registry) RegisterTableFunction(name string, ctor func() TableFunction) {
	r.tableFuncs[strings.ToLower(name)] = ctor
}

// noopFunc passes partitions through unchanged.
type noopFunc struct{}

func (noopFunc) Name() string                             { return "noop" }
func (noopFunc) Execute(p *Partition) (*Partition, error) { return p, nil }
func (noopFunc) OutputShape(input *Shape) *Shape          { return input }

// noopWithMapFunc is noop with an identity map phase, for exercising the
// chain's map-phase dispatch.
type noopWithMapFunc struct{}

func (noopWithMapFunc) Name() string                                { return "noopwithmap" }
func (noopWithMapFunc) Execute(p *Partition) (*Partition, error)    { return p, nil }
func (noopWithMapFunc) MapExecute(p *Partition) (*Partition, error) { return p, nil }
func (noopWithMapFunc) OutputShape(input *Shape) *Shape             { return input }
