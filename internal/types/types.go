package types

import (
	"fmt"
	"strings"
)

// SemType is the semantic representation of types in the FLARE language.
//
// Design principles:
// - Types are immutable after creation, except TypeVar which is bound in
//   place during inference and must be resolved or reported by the end of
//   a checking run
// - SemType equality is structural (deep comparison)
// - All types can be displayed as strings
type SemType interface {
	// String returns a human-readable representation of the type
	String() string

	// Equals checks structural equality with another type
	Equals(other SemType) bool

	// isType is a marker method to prevent external implementation
	isType()
}

type TYPE_NAME string

const (
	TYPE_INT     TYPE_NAME = "int"
	TYPE_FLOAT   TYPE_NAME = "float"
	TYPE_STRING  TYPE_NAME = "str"
	TYPE_BOOL    TYPE_NAME = "bool"
	TYPE_NONE    TYPE_NAME = "none"
	TYPE_UNKNOWN TYPE_NAME = "unknown"
)

// PrimitiveType represents built-in scalar types (int, float, str, bool, none)
type PrimitiveType struct {
	name TYPE_NAME
}

func NewPrimitive(name TYPE_NAME) *PrimitiveType {
	return &PrimitiveType{name: name}
}

func (p *PrimitiveType) String() string { return string(p.name) }
func (p *PrimitiveType) isType()        {}
func (p *PrimitiveType) Equals(other SemType) bool {
	if o, ok := Resolve(other).(*PrimitiveType); ok {
		return p.name == o.name
	}
	return false
}

// GetName returns the primitive type name
func (p *PrimitiveType) GetName() TYPE_NAME {
	return p.name
}

// UnknownType is the universal-unknown type of gradually typed code.
// It unifies with anything without error; real checking is deferred to
// runtime, which is outside the front-end's scope.
type UnknownType struct{}

func (u *UnknownType) String() string            { return string(TYPE_UNKNOWN) }
func (u *UnknownType) isType()                   {}
func (u *UnknownType) Equals(other SemType) bool {
	_, ok := Resolve(other).(*UnknownType)
	return ok
}

// TypeVar is an inference placeholder. It is created unbound and bound in
// place during unification. Once checking finishes every TypeVar must be
// either bound (transitively, to a concrete type) or reported.
type TypeVar struct {
	ID  int
	Ref SemType // nil while unbound
}

func (t *TypeVar) String() string {
	if t.Ref != nil {
		return t.Ref.String()
	}
	return fmt.Sprintf("T%d", t.ID)
}

func (t *TypeVar) isType() {}

func (t *TypeVar) Equals(other SemType) bool {
	if t.Ref != nil {
		return t.Ref.Equals(other)
	}
	if o, ok := other.(*TypeVar); ok {
		return t == o
	}
	return false
}

// Resolve follows TypeVar bindings until it reaches an unbound variable or
// a concrete type.
func Resolve(t SemType) SemType {
	for {
		tv, ok := t.(*TypeVar)
		if !ok || tv.Ref == nil {
			return t
		}
		t = tv.Ref
	}
}

// ListType represents homogeneous list types: [T]
type ListType struct {
	Element SemType
}

func NewList(element SemType) *ListType {
	return &ListType{Element: element}
}

func (l *ListType) String() string {
	return fmt.Sprintf("[%s]", l.Element.String())
}

func (l *ListType) isType() {}

func (l *ListType) Equals(other SemType) bool {
	if o, ok := Resolve(other).(*ListType); ok {
		return l.Element.Equals(o.Element)
	}
	return false
}

// FuncType represents function types: (params) -> return
type FuncType struct {
	Params     []SemType
	Return     SemType
	TypeParams []string // generic parameter names, e.g. ["T"]
	IsAsync    bool
	// Dynamic marks a function with no annotations at all; calls to it
	// degrade to unknown instead of constraining the caller.
	Dynamic bool
}

func (f *FuncType) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	prefix := ""
	if f.IsAsync {
		prefix = "async "
	}
	if len(f.TypeParams) > 0 {
		prefix += "<" + strings.Join(f.TypeParams, ", ") + ">"
	}
	return fmt.Sprintf("%s(%s) -> %s", prefix, strings.Join(params, ", "), f.Return.String())
}

func (f *FuncType) isType() {}

func (f *FuncType) Equals(other SemType) bool {
	o, ok := Resolve(other).(*FuncType)
	if !ok || len(f.Params) != len(o.Params) {
		return false
	}
	for i := range f.Params {
		if !f.Params[i].Equals(o.Params[i]) {
			return false
		}
	}
	return f.Return.Equals(o.Return)
}

// ClassType is a nominal class type
type ClassType struct {
	Name   string
	Fields map[string]SemType
}

func NewClass(name string) *ClassType {
	return &ClassType{Name: name, Fields: make(map[string]SemType)}
}

func (c *ClassType) String() string { return c.Name }
func (c *ClassType) isType()        {}
func (c *ClassType) Equals(other SemType) bool {
	if o, ok := Resolve(other).(*ClassType); ok {
		return c.Name == o.Name
	}
	return false
}

// ActorType is the nominal type of an actor declaration. Its state fields
// are scoped to the actor, never free-floating globals.
type ActorType struct {
	Name  string
	State map[string]SemType
}

func NewActor(name string) *ActorType {
	return &ActorType{Name: name, State: make(map[string]SemType)}
}

func (a *ActorType) String() string { return a.Name }
func (a *ActorType) isType()        {}
func (a *ActorType) Equals(other SemType) bool {
	if o, ok := Resolve(other).(*ActorType); ok {
		return a.Name == o.Name
	}
	return false
}

// Variant is one constructor of a closed enum type
type Variant struct {
	Name   string
	Params []SemType // payload types, empty for bare variants
}

// EnumType is a closed variant type. Pattern matches over an EnumType
// scrutinee are checked for exhaustiveness.
type EnumType struct {
	Name     string
	Variants []Variant
}

func (e *EnumType) String() string { return e.Name }
func (e *EnumType) isType()        {}
func (e *EnumType) Equals(other SemType) bool {
	if o, ok := Resolve(other).(*EnumType); ok {
		return e.Name == o.Name
	}
	return false
}

// VariantOf returns the named variant, if the enum declares it.
func (e *EnumType) VariantOf(name string) (Variant, bool) {
	for _, v := range e.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// GenericType is the occurrence of a generic parameter (the T of
// def first_element<T>) inside its function's signature. Call sites
// never see it: Instantiate replaces every occurrence with a fresh
// TypeVar before the arguments are unified.
type GenericType struct {
	Name string
}

func (g *GenericType) String() string { return g.Name }
func (g *GenericType) isType()        {}
func (g *GenericType) Equals(other SemType) bool {
	if o, ok := Resolve(other).(*GenericType); ok {
		return g.Name == o.Name
	}
	return false
}

// ModuleType is the type of an imported module name
type ModuleType struct {
	Path string
}

func (m *ModuleType) String() string { return fmt.Sprintf("module(%s)", m.Path) }
func (m *ModuleType) isType()        {}
func (m *ModuleType) Equals(other SemType) bool {
	if o, ok := Resolve(other).(*ModuleType); ok {
		return m.Path == o.Path
	}
	return false
}

// Shared singletons for the primitive types
var (
	TypeInt     = NewPrimitive(TYPE_INT)
	TypeFloat   = NewPrimitive(TYPE_FLOAT)
	TypeString  = NewPrimitive(TYPE_STRING)
	TypeBool    = NewPrimitive(TYPE_BOOL)
	TypeNone    = NewPrimitive(TYPE_NONE)
	TypeUnknown = &UnknownType{}
)

// IsUnknown reports whether t resolves to the universal-unknown type
func IsUnknown(t SemType) bool {
	_, ok := Resolve(t).(*UnknownType)
	return ok
}

// IsNumeric reports whether t resolves to int or float
func IsNumeric(t SemType) bool {
	if p, ok := Resolve(t).(*PrimitiveType); ok {
		return p.name == TYPE_INT || p.name == TYPE_FLOAT
	}
	return false
}

// LookupPrimitive maps an annotation name to a builtin type
func LookupPrimitive(name string) (SemType, bool) {
	switch TYPE_NAME(name) {
	case TYPE_INT:
		return TypeInt, true
	case TYPE_FLOAT:
		return TypeFloat, true
	case TYPE_STRING:
		return TypeString, true
	case TYPE_BOOL:
		return TypeBool, true
	case TYPE_NONE:
		return TypeNone, true
	default:
		return nil, false
	}
}
