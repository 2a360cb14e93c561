package source

import "testing"

func span(startLine, startCol, endLine, endCol int) *Location {
	file := "test.flr"
	return NewLocation(&file,
		&Position{Line: startLine, Column: startCol},
		&Position{Line: endLine, Column: endCol})
}

func TestContains(t *testing.T) {
	loc := span(2, 5, 4, 10)
	tests := []struct {
		pos  Position
		want bool
	}{
		{Position{Line: 2, Column: 5}, true},
		{Position{Line: 3, Column: 1}, true},
		{Position{Line: 4, Column: 10}, true},
		{Position{Line: 2, Column: 4}, false},
		{Position{Line: 4, Column: 11}, false},
		{Position{Line: 1, Column: 99}, false},
	}
	for _, tt := range tests {
		pos := tt.pos
		if got := loc.Contains(&pos); got != tt.want {
			t.Errorf("Contains(%d:%d) = %v, want %v", pos.Line, pos.Column, got, tt.want)
		}
	}
}

func TestContainsHandlesMissingBounds(t *testing.T) {
	pos := &Position{Line: 1, Column: 1}

	var nilLoc *Location
	if nilLoc.Contains(pos) {
		t.Error("nil location contains nothing")
	}
	if (&Location{}).Contains(pos) {
		t.Error("location without bounds contains nothing")
	}
	if span(1, 1, 2, 1).Contains(nil) {
		t.Error("no position is contained in any span")
	}
}

func TestEnclosesHandlesMissingBounds(t *testing.T) {
	outer := span(1, 1, 9, 1)
	if !outer.Encloses(span(2, 1, 3, 5)) {
		t.Error("inner span should be enclosed")
	}
	if outer.Encloses(nil) || outer.Encloses(&Location{}) {
		t.Error("missing bounds must not be enclosed")
	}
	var nilLoc *Location
	if nilLoc.Encloses(outer) {
		t.Error("nil location encloses nothing")
	}
}
