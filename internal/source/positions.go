package source

// Position represents a specific location in the source code with line, column, and byte offset.
type Position struct {
	Line   int // Line number, 1-based
	Column int // Column number, 1-based
	Index  int // Byte offset into the source, 0-based
}

// Advance updates the Position by advancing it over the bytes of the provided string.
// Newlines reset the column; every byte advances the index.
func (p *Position) Advance(toSkip string) *Position {
	for _, char := range toSkip {
		if char == '\n' {
			p.Line++
			p.Column = 1
			p.Index++
			continue
		}
		p.Column++
		p.Index += len(string(char))
	}
	return p
}

// Before reports whether p comes before other in source order.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}
