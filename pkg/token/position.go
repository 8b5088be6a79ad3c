package token

// Position is a location in the query text.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// IsValid reports whether the position is valid (line > 0).
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Span is a range in the query text.
type Span struct {
	Start Position
	End   Position
}

// Contains reports whether the span contains the given offset.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start.Offset && offset < s.End.Offset
}
