package ast

import (
	"flarec/internal/source"
	"flarec/internal/tokens"
)

type LITERAL_KIND int

const (
	INT LITERAL_KIND = iota
	FLOAT
	STRING
	BOOL
	NONE
)

// BasicLit represents a literal value
type BasicLit struct {
	Kind  LITERAL_KIND
	Value string
	source.Location
}

func (b *BasicLit) INode()                {}
func (b *BasicLit) Expr()                 {}
func (b *BasicLit) Loc() *source.Location { return &b.Location }

// FStringPart is one segment of an interpolated string: either literal
// text or an embedded expression parsed from a re-tokenized hole.
type FStringPart struct {
	Text string     // literal text, when X is nil
	X    Expression // interpolated expression, when non-nil
}

// FStringExpr represents an interpolated string literal (f"a {x} b")
type FStringExpr struct {
	Parts []FStringPart
	source.Location
}

func (f *FStringExpr) INode()                {}
func (f *FStringExpr) Expr()                 {}
func (f *FStringExpr) Loc() *source.Location { return &f.Location }

// IdentifierExpr represents an identifier
type IdentifierExpr struct {
	Name string
	source.Location
}

func (i *IdentifierExpr) INode()                {}
func (i *IdentifierExpr) Expr()                 {}
func (i *IdentifierExpr) Loc() *source.Location { return &i.Location }

// BinaryExpr represents a binary expression
type BinaryExpr struct {
	X  Expression   // left operand
	Op tokens.Token // operator
	Y  Expression   // right operand
	source.Location
}

func (b *BinaryExpr) INode()                {}
func (b *BinaryExpr) Expr()                 {}
func (b *BinaryExpr) Loc() *source.Location { return &b.Location }

// UnaryExpr represents a unary expression (not x, -x)
type UnaryExpr struct {
	Op tokens.Token // operator
	X  Expression   // operand
	source.Location
}

func (u *UnaryExpr) INode()                {}
func (u *UnaryExpr) Expr()                 {}
func (u *UnaryExpr) Loc() *source.Location { return &u.Location }

// AwaitExpr represents await expr inside an async function
type AwaitExpr struct {
	X Expression
	source.Location
}

func (a *AwaitExpr) INode()                {}
func (a *AwaitExpr) Expr()                 {}
func (a *AwaitExpr) Loc() *source.Location { return &a.Location }

// AssignExpr represents assignment. Assignment is right-associative and
// has the lowest precedence; in FLARE a bare assignment to a new name
// declares it in the current scope.
type AssignExpr struct {
	Target Expression // identifier, selector, or index expression
	Value  Expression
	source.Location
}

func (a *AssignExpr) INode()                {}
func (a *AssignExpr) Expr()                 {}
func (a *AssignExpr) Loc() *source.Location { return &a.Location }

// CallExpr represents a function call expression
type CallExpr struct {
	Fun  Expression   // function expression
	Args []Expression // call arguments
	source.Location
}

func (c *CallExpr) INode()                {}
func (c *CallExpr) Expr()                 {}
func (c *CallExpr) Loc() *source.Location { return &c.Location }

// SelectorExpr represents attribute access (x.field, module.symbol)
type SelectorExpr struct {
	X     Expression
	Field *IdentifierExpr
	source.Location
}

func (s *SelectorExpr) INode()                {}
func (s *SelectorExpr) Expr()                 {}
func (s *SelectorExpr) Loc() *source.Location { return &s.Location }

// IndexExpr represents an index expression (items[i])
type IndexExpr struct {
	X     Expression
	Index Expression
	source.Location
}

func (i *IndexExpr) INode()                {}
func (i *IndexExpr) Expr()                 {}
func (i *IndexExpr) Loc() *source.Location { return &i.Location }

// ListLit represents a list literal ([1, 2, 3])
type ListLit struct {
	Elts []Expression
	source.Location
}

func (l *ListLit) INode()                {}
func (l *ListLit) Expr()                 {}
func (l *ListLit) Loc() *source.Location { return &l.Location }

// Invalid is an error-recovery placeholder node
type Invalid struct {
	source.Location
}

func (i *Invalid) INode()                {}
func (i *Invalid) Expr()                 {}
func (i *Invalid) Loc() *source.Location { return &i.Location }
