package ast

import (
	"flarec/internal/source"
)

// LiteralPattern matches a literal value exactly
type LiteralPattern struct {
	Lit *BasicLit
	source.Location
}

func (l *LiteralPattern) INode()                {}
func (l *LiteralPattern) Pat()                  {}
func (l *LiteralPattern) Loc() *source.Location { return &l.Location }

// BindingPattern matches anything and binds it to a name
type BindingPattern struct {
	Name *IdentifierExpr
	source.Location
}

func (b *BindingPattern) INode()                {}
func (b *BindingPattern) Pat()                  {}
func (b *BindingPattern) Loc() *source.Location { return &b.Location }

// WildcardPattern matches anything without binding (_)
type WildcardPattern struct {
	source.Location
}

func (w *WildcardPattern) INode()                {}
func (w *WildcardPattern) Pat()                  {}
func (w *WildcardPattern) Loc() *source.Location { return &w.Location }

// ConstructorPattern matches an enum variant, destructuring its payload:
// case Success(value): or case Result.Error(msg):
type ConstructorPattern struct {
	Enum *IdentifierExpr // optional qualifier, nil for a bare variant name
	Name *IdentifierExpr
	Subs []Pattern
	source.Location
}

func (c *ConstructorPattern) INode()                {}
func (c *ConstructorPattern) Pat()                  {}
func (c *ConstructorPattern) Loc() *source.Location { return &c.Location }
