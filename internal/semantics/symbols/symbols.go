package symbols

import (
	"flarec/internal/source"
	"flarec/internal/types"
)

type SymbolKind int

const (
	VariableSymbol SymbolKind = iota
	ParameterSymbol
	FunctionSymbol
	ClassSymbol
	ActorSymbol
	EnumSymbol
	VariantSymbol
	StateFieldSymbol
	ModuleSymbol
	TypeParamSymbol
	BuiltinSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case VariableSymbol:
		return "variable"
	case ParameterSymbol:
		return "parameter"
	case FunctionSymbol:
		return "function"
	case ClassSymbol:
		return "class"
	case ActorSymbol:
		return "actor"
	case EnumSymbol:
		return "enum"
	case VariantSymbol:
		return "variant"
	case StateFieldSymbol:
		return "state field"
	case ModuleSymbol:
		return "module"
	case TypeParamSymbol:
		return "type parameter"
	case BuiltinSymbol:
		return "builtin"
	default:
		return "symbol"
	}
}

// Symbol is one declared name. Type starts as the declared or unknown
// type and is refined in place by inference.
type Symbol struct {
	Name     string
	Kind     SymbolKind
	Type     types.SemType
	Location *source.Location // declaration site, nil for builtins

	// Exported is the module-level visibility of the symbol, settled by
	// the collector from public/private lists and the underscore rule.
	Exported bool

	// Used tracks references for unused-import warnings
	Used bool
}

func New(name string, kind SymbolKind, t types.SemType, loc *source.Location) *Symbol {
	return &Symbol{
		Name:     name,
		Kind:     kind,
		Type:     t,
		Location: loc,
	}
}
