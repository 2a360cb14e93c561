package ast

import (
	"flarec/internal/source"
)

// Node is the base interface for all AST nodes
type Node interface {
	INode()
	Loc() *source.Location
}

// Expression represents any node that produces a value
type Expression interface {
	Node
	Expr()
}

// Statement represents any node that performs an action
type Statement interface {
	Node
	Stmt()
}

// TypeNode represents a type annotation in the AST.
// This is separate from Expression to maintain clean separation between
// values and types.
type TypeNode interface {
	Node
	TypeExpr()
}

// Pattern represents a match-case pattern. Patterns are recursive:
// literal, binding, wildcard, and constructor with subpatterns.
type Pattern interface {
	Node
	Pat()
}

// Module is the root node produced for one source file
type Module struct {
	FullPath string
	Nodes    []Node
	source.Location
}

func (m *Module) INode()                {}
func (m *Module) Loc() *source.Location { return &m.Location }
