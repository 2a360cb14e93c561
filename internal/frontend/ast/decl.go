package ast

import (
	"flarec/internal/source"
)

// Annotation is a decorator-like annotation (@parallel, @target("gpu"))
// attached to the following declaration. The front-end preserves
// annotations faithfully and defers their semantic interpretation to
// later stages.
type Annotation struct {
	Name *IdentifierExpr
	Args []Expression
	source.Location
}

func (a *Annotation) INode()                {}
func (a *Annotation) Loc() *source.Location { return &a.Location }

// Param is one function parameter with an optional type annotation
type Param struct {
	Name *IdentifierExpr
	Type TypeNode // nil for a dynamically typed parameter
}

// FuncDecl represents def name<T...>(params) -> ret: body
type FuncDecl struct {
	Annotations []*Annotation
	IsAsync     bool
	Name        *IdentifierExpr
	TypeParams  []*IdentifierExpr // generic parameters, e.g. <T>
	Params      []Param
	ReturnType  TypeNode // nil when un-annotated
	Body        *Block
	source.Location
}

func (f *FuncDecl) INode()                {}
func (f *FuncDecl) Stmt()                 {}
func (f *FuncDecl) Loc() *source.Location { return &f.Location }

// ClassDecl represents class name: body
type ClassDecl struct {
	Annotations []*Annotation
	Name        *IdentifierExpr
	Body        *Block
	source.Location
}

func (c *ClassDecl) INode()                {}
func (c *ClassDecl) Stmt()                 {}
func (c *ClassDecl) Loc() *source.Location { return &c.Location }

// StateField is one field of an actor state block
type StateField struct {
	Name    *IdentifierExpr
	Type    TypeNode   // nil for dynamic
	Default Expression // nil when no initializer
	source.Location
}

func (s *StateField) INode()                {}
func (s *StateField) Loc() *source.Location { return &s.Location }

// StateBlock is the state: block of an actor. It parses as an ordinary
// statement so the resolver can reject one that appears outside an
// actor body; inside an actor its fields are scoped to the actor, not
// hoisted to module level.
type StateBlock struct {
	Fields []*StateField
	source.Location
}

func (s *StateBlock) INode()                {}
func (s *StateBlock) Stmt()                 {}
func (s *StateBlock) Loc() *source.Location { return &s.Location }

// ActorDecl represents actor name: with a body of state blocks and
// method declarations
type ActorDecl struct {
	Annotations []*Annotation
	Name        *IdentifierExpr
	Body        *Block
	source.Location
}

func (a *ActorDecl) INode()                {}
func (a *ActorDecl) Stmt()                 {}
func (a *ActorDecl) Loc() *source.Location { return &a.Location }

// EnumVariant is one constructor of an enum declaration
type EnumVariant struct {
	Name   *IdentifierExpr
	Params []TypeNode // payload annotations, empty for bare variants
	source.Location
}

func (e *EnumVariant) INode()                {}
func (e *EnumVariant) Loc() *source.Location { return &e.Location }

// EnumDecl declares a closed variant type:
//
//	enum Result:
//	    Success(value: int)
//	    Error(message: str)
type EnumDecl struct {
	Annotations []*Annotation
	Name        *IdentifierExpr
	Variants    []*EnumVariant
	source.Location
}

func (e *EnumDecl) INode()                {}
func (e *EnumDecl) Stmt()                 {}
func (e *EnumDecl) Loc() *source.Location { return &e.Location }

// NamedType is a type annotation naming a primitive, class, enum, or
// generic parameter
type NamedType struct {
	Name string
	source.Location
}

func (n *NamedType) INode()                {}
func (n *NamedType) TypeExpr()             {}
func (n *NamedType) Loc() *source.Location { return &n.Location }

// ListTypeNode is a list annotation: [T]
type ListTypeNode struct {
	Elem TypeNode
	source.Location
}

func (l *ListTypeNode) INode()                {}
func (l *ListTypeNode) TypeExpr()             {}
func (l *ListTypeNode) Loc() *source.Location { return &l.Location }
