package source

import "fmt"

// Location represents a span of source code with start and end positions
type Location struct {
	Start    *Position
	End      *Position
	Filename *string
}

// NewLocation creates a new Location with the given start and end positions
func NewLocation(filename *string, start, end *Position) *Location {
	return &Location{
		Filename: filename,
		Start:    start,
		End:      end,
	}
}

// Contains checks if the given position is within this location.
// A location with missing bounds contains nothing.
func (l *Location) Contains(pos *Position) bool {
	if l == nil || l.Start == nil || l.End == nil || pos == nil {
		return false
	}
	if l.Start.Line > pos.Line || (l.Start.Line == pos.Line && l.Start.Column > pos.Column) {
		return false
	}
	if l.End.Line < pos.Line || (l.End.Line == pos.Line && l.End.Column < pos.Column) {
		return false
	}
	return true
}

// Encloses checks if other lies entirely within this location.
// Every AST node's span must enclose the spans of its children.
func (l *Location) Encloses(other *Location) bool {
	if l == nil || other == nil || l.Start == nil || l.End == nil || other.Start == nil || other.End == nil {
		return false
	}
	return l.Contains(other.Start) && l.Contains(other.End)
}

func (l *Location) String() string {
	if l.Start == nil || l.End == nil {
		return "location(unknown)"
	}
	return fmt.Sprintf("location(%d:%d - %d:%d)", l.Start.Line, l.Start.Column, l.End.Line, l.End.Column)
}
