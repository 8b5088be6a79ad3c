package ptf

// Column is one named, typed output column.
type Column struct {
	Name string
	Type string
}

// Shape is the ordered column description of a partition. Order matters for
// projection and rendering; lookup by name is index-backed.
type Shape struct {
	cols  []Column
	index map[string]int
}

// NewShape builds a shape from columns in order.
func NewShape(cols ...Column) *Shape {
	s := &Shape{index: make(map[string]int, len(cols))}
	for _, c := range cols {
		s.Add(c.Name, c.Type)
	}
	return s
}

// Add appends a column. Re-adding a name updates its type in place.
func (s *Shape) Add(name, typ string) {
	if s.index == nil {
		s.index = map[string]int{}
	}
	if i, ok := s.index[name]; ok {
		s.cols[i].Type = typ
		return
	}
	s.index[name] = len(s.cols)
	s.cols = append(s.cols, Column{Name: name, Type: typ})
}

// Columns returns the columns in declaration order.
func (s *Shape) Columns() []Column {
	return s.cols
}

// Names returns the column names in declaration order.
func (s *Shape) Names() []string {
	names := make([]string, len(s.cols))
	for i, c := range s.cols {
		names[i] = c.Name
	}
	return names
}

// Type returns the type of a column, or "" when absent.
func (s *Shape) Type(name string) string {
	if i, ok := s.index[name]; ok {
		return s.cols[i].Type
	}
	return ""
}

// Has reports whether the shape contains a column.
func (s *Shape) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Len returns the number of columns.
func (s *Shape) Len() int {
	return len(s.cols)
}
