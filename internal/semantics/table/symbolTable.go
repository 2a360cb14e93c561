package table

import (
	"flarec/internal/semantics/symbols"
)

type ScopeKind int

const (
	UniverseScope ScopeKind = iota
	ModuleScope
	ClassScope
	ActorScope
	FunctionScope
	BlockScope
)

// SymbolTable is one lexical scope. Scopes form a tree mirroring the
// nesting of the source; a child holds a non-owning reference to its
// parent for lookup fallthrough.
type SymbolTable struct {
	parent  *SymbolTable
	kind    ScopeKind
	symbols map[string]*symbols.Symbol
	order   []string
}

func NewSymbolTable(parent *SymbolTable, kind ScopeKind) *SymbolTable {
	return &SymbolTable{
		parent:  parent,
		kind:    kind,
		symbols: make(map[string]*symbols.Symbol),
	}
}

func (t *SymbolTable) Parent() *SymbolTable {
	return t.parent
}

func (t *SymbolTable) Kind() ScopeKind {
	return t.kind
}

// Declare adds a symbol to this scope. When the name is already taken
// here, the existing symbol is returned with ok=false and the table is
// left unchanged.
func (t *SymbolTable) Declare(sym *symbols.Symbol) (*symbols.Symbol, bool) {
	if existing, taken := t.symbols[sym.Name]; taken {
		return existing, false
	}
	t.symbols[sym.Name] = sym
	t.order = append(t.order, sym.Name)
	return sym, true
}

// Lookup resolves a name through this scope and its ancestors
func (t *SymbolTable) Lookup(name string) (*symbols.Symbol, bool) {
	for scope := t; scope != nil; scope = scope.parent {
		if sym, ok := scope.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupLocal resolves a name in this scope only
func (t *SymbolTable) LookupLocal(name string) (*symbols.Symbol, bool) {
	sym, ok := t.symbols[name]
	return sym, ok
}

// LookupEnclosing resolves a name in the ancestors of this scope,
// skipping the scope itself. Used for shadowing detection.
func (t *SymbolTable) LookupEnclosing(name string) (*symbols.Symbol, bool) {
	if t.parent == nil {
		return nil, false
	}
	return t.parent.Lookup(name)
}

// EnclosingFunction returns the nearest function scope, or nil
func (t *SymbolTable) EnclosingFunction() *SymbolTable {
	for scope := t; scope != nil; scope = scope.parent {
		if scope.kind == FunctionScope {
			return scope
		}
	}
	return nil
}

// EnclosingActor returns the nearest actor scope, or nil
func (t *SymbolTable) EnclosingActor() *SymbolTable {
	for scope := t; scope != nil; scope = scope.parent {
		if scope.kind == ActorScope {
			return scope
		}
	}
	return nil
}

// Names returns the declared names in declaration order
func (t *SymbolTable) Names() []string {
	names := make([]string, len(t.order))
	copy(names, t.order)
	return names
}

// Each visits the scope's own symbols in declaration order
func (t *SymbolTable) Each(visit func(*symbols.Symbol)) {
	for _, name := range t.order {
		visit(t.symbols[name])
	}
}
