package ast

import (
	"flarec/internal/source"
)

// Block is an indented statement block. Scope is filled by the collector
// and reused by the resolver and type checker.
type Block struct {
	Nodes []Node
	Scope any // *table.SymbolTable; typed as any to avoid an import cycle
	source.Location
}

func (b *Block) INode()                {}
func (b *Block) Stmt()                 {}
func (b *Block) Loc() *source.Location { return &b.Location }

// ExprStmt is an expression in statement position
type ExprStmt struct {
	X Expression
	source.Location
}

func (e *ExprStmt) INode()                {}
func (e *ExprStmt) Stmt()                 {}
func (e *ExprStmt) Loc() *source.Location { return &e.Location }

// ReturnStmt represents return [expr]
type ReturnStmt struct {
	Result Expression // nil for bare return
	source.Location
}

func (r *ReturnStmt) INode()                {}
func (r *ReturnStmt) Stmt()                 {}
func (r *ReturnStmt) Loc() *source.Location { return &r.Location }

// PassStmt is the empty statement
type PassStmt struct {
	source.Location
}

func (p *PassStmt) INode()                {}
func (p *PassStmt) Stmt()                 {}
func (p *PassStmt) Loc() *source.Location { return &p.Location }

// IfStmt represents if/elif/else. An elif chain is represented as a
// nested IfStmt in Else.
type IfStmt struct {
	Cond Expression
	Body *Block
	Else Node // *IfStmt (elif) or *Block (else), nil if absent
	source.Location
}

func (i *IfStmt) INode()                {}
func (i *IfStmt) Stmt()                 {}
func (i *IfStmt) Loc() *source.Location { return &i.Location }

// WhileStmt represents while cond: body
type WhileStmt struct {
	Cond Expression
	Body *Block
	source.Location
}

func (w *WhileStmt) INode()                {}
func (w *WhileStmt) Stmt()                 {}
func (w *WhileStmt) Loc() *source.Location { return &w.Location }

// ForStmt represents for name in iterable: body.
// The iterator variable is always bound as a new variable in the body scope.
type ForStmt struct {
	Var  *IdentifierExpr
	Iter Expression
	Body *Block
	source.Location
}

func (f *ForStmt) INode()                {}
func (f *ForStmt) Stmt()                 {}
func (f *ForStmt) Loc() *source.Location { return &f.Location }

// CaseClause is one case of a match statement. The guard is part of the
// case, not a separate statement.
type CaseClause struct {
	Pattern Pattern
	Guard   Expression // nil when the case has no `if` guard
	Body    *Block
	source.Location
}

func (c *CaseClause) INode()                {}
func (c *CaseClause) Loc() *source.Location { return &c.Location }

// MatchStmt represents match expr: case ...
type MatchStmt struct {
	Expr  Expression
	Cases []*CaseClause
	source.Location
}

func (m *MatchStmt) INode()                {}
func (m *MatchStmt) Stmt()                 {}
func (m *MatchStmt) Loc() *source.Location { return &m.Location }

// ImportStmt represents import path [as alias]
type ImportStmt struct {
	Path  *BasicLit       // module path as written
	Alias *IdentifierExpr // optional
	source.Location
}

func (i *ImportStmt) INode()                {}
func (i *ImportStmt) Stmt()                 {}
func (i *ImportStmt) Loc() *source.Location { return &i.Location }

// VisibilityStmt represents a module-level export list:
// public: a, b  /  private: _helper
type VisibilityStmt struct {
	Public bool
	Names  []*IdentifierExpr
	source.Location
}

func (v *VisibilityStmt) INode()                {}
func (v *VisibilityStmt) Stmt()                 {}
func (v *VisibilityStmt) Loc() *source.Location { return &v.Location }
