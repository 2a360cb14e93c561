package collector

import (
	"fmt"
	"strings"

	"flarec/internal/context"
	"flarec/internal/diagnostics"
	"flarec/internal/frontend/ast"
	"flarec/internal/semantics/symbols"
	"flarec/internal/semantics/table"
	"flarec/internal/source"
	"flarec/internal/types"
)

// CollectSymbols runs the declaration-collection phase for one module:
// it builds the module scope, declares every top-level name (functions,
// classes, actors, enums and their variants, and define-on-assign
// variables), records import edges on
// the dependency graph, and settles the export list. It never descends
// into bodies; that is the resolver's job.
//
// Collection must finish for every module before any module resolves
// imported names, so cross-module lookups are order-independent.
func CollectSymbols(ctx *context.CompilerContext, module *context.Module) {
	scope := table.NewSymbolTable(ctx.Universe, table.ModuleScope)
	module.Scope = scope

	c := &collector{ctx: ctx, module: module, scope: scope}

	// two passes: declare all names first, then build signatures, so a
	// signature may reference a type declared later in the file
	for _, node := range module.AST.Nodes {
		c.declare(node)
	}
	for _, node := range module.AST.Nodes {
		c.sign(node)
	}
	c.settleExports()
}

type collector struct {
	ctx    *context.CompilerContext
	module *context.Module
	scope  *table.SymbolTable

	public  map[string]*source.Location
	private map[string]*source.Location
}

func (c *collector) declare(node ast.Node) {
	switch n := node.(type) {
	case *ast.FuncDecl:
		c.declareSymbol(n.Name, symbols.FunctionSymbol, types.TypeUnknown)
	case *ast.ClassDecl:
		c.declareSymbol(n.Name, symbols.ClassSymbol, types.NewClass(n.Name.Name))
	case *ast.ActorDecl:
		c.declareSymbol(n.Name, symbols.ActorSymbol, types.NewActor(n.Name.Name))
	case *ast.EnumDecl:
		c.declareEnum(n)
	case *ast.ImportStmt:
		c.declareImport(n)
	case *ast.VisibilityStmt:
		c.recordVisibility(n)
	case *ast.ExprStmt:
		c.declareAssignTargets(n.X)
	}
}

// declareAssignTargets declares module-level define-on-assign targets,
// so importers can resolve them regardless of which module analyzes
// first and settleExports can decide their visibility. Later writes to
// the same name are rebinds, not redeclarations.
func (c *collector) declareAssignTargets(expr ast.Expression) {
	assign, ok := expr.(*ast.AssignExpr)
	if !ok {
		return
	}
	if target, ok := assign.Target.(*ast.IdentifierExpr); ok && target.Name != "" {
		if _, taken := c.scope.LookupLocal(target.Name); !taken {
			c.scope.Declare(symbols.New(target.Name, symbols.VariableSymbol, types.TypeUnknown, target.Loc()))
		}
	}
	c.declareAssignTargets(assign.Value)
}

// sign fills in the signatures that need every module-level type name
// to exist first.
func (c *collector) sign(node ast.Node) {
	switch n := node.(type) {
	case *ast.FuncDecl:
		if sym, ok := c.scope.LookupLocal(n.Name.Name); ok && sym.Kind == symbols.FunctionSymbol {
			sym.Type = Signature(n, c.scope, c.ctx.Reports)
		}
	case *ast.EnumDecl:
		c.signEnum(n)
	}
}

func (c *collector) declareSymbol(name *ast.IdentifierExpr, kind symbols.SymbolKind, t types.SemType) *symbols.Symbol {
	if name.Name == "" {
		return nil // parse error already reported
	}
	loc := name.Loc()
	sym := symbols.New(name.Name, kind, t, loc)
	if existing, ok := c.scope.Declare(sym); !ok {
		diag := diagnostics.NewError(fmt.Sprintf("'%s' redeclared in this module", name.Name)).
			WithCode(diagnostics.ErrRedeclaredSymbol).
			WithPrimaryLabel(loc, "redeclared here")
		if existing.Location != nil {
			diag.WithSecondaryLabel(existing.Location, "previous declaration here")
		}
		c.ctx.Reports.Add(diag)
		return existing
	}
	return sym
}

func (c *collector) declareEnum(n *ast.EnumDecl) {
	enumType := &types.EnumType{Name: n.Name.Name}
	c.declareSymbol(n.Name, symbols.EnumSymbol, enumType)

	// variants are callable constructors in module scope, so both
	// Success(v) and Result.Success(v) resolve
	for _, variant := range n.Variants {
		c.declareSymbol(variant.Name, symbols.VariantSymbol, enumType)
	}
}

// signEnum fills the variant list once all type names exist
func (c *collector) signEnum(n *ast.EnumDecl) {
	sym, ok := c.scope.LookupLocal(n.Name.Name)
	if !ok {
		return
	}
	enumType, ok := sym.Type.(*types.EnumType)
	if !ok {
		return
	}
	for _, variant := range n.Variants {
		params := make([]types.SemType, len(variant.Params))
		for i, node := range variant.Params {
			params[i] = TypeFromNode(node, c.scope, nil, c.ctx.Reports)
		}
		enumType.Variants = append(enumType.Variants, types.Variant{
			Name:   variant.Name.Name,
			Params: params,
		})
	}
}

// Signature builds a function's semantic type from its declaration.
// The resolver reuses it for nested function declarations.
func Signature(n *ast.FuncDecl, scope *table.SymbolTable, bag *diagnostics.DiagnosticBag) *types.FuncType {
	generics := make(map[string]bool, len(n.TypeParams))
	typeParams := make([]string, 0, len(n.TypeParams))
	for _, tp := range n.TypeParams {
		generics[tp.Name] = true
		typeParams = append(typeParams, tp.Name)
	}

	sig := &types.FuncType{
		TypeParams: typeParams,
		IsAsync:    n.IsAsync,
		Return:     types.TypeUnknown,
	}
	annotated := false
	for _, param := range n.Params {
		if param.Type != nil {
			annotated = true
			sig.Params = append(sig.Params, TypeFromNode(param.Type, scope, generics, bag))
		} else {
			sig.Params = append(sig.Params, types.TypeUnknown)
		}
	}
	if n.ReturnType != nil {
		annotated = true
		sig.Return = TypeFromNode(n.ReturnType, scope, generics, bag)
	}
	// a function with no annotations anywhere is fully dynamic: calls
	// to it degrade to unknown instead of constraining the caller
	sig.Dynamic = !annotated && len(typeParams) == 0
	return sig
}

func (c *collector) declareImport(n *ast.ImportStmt) {
	path := n.Path.Value
	c.ctx.AddDependency(c.module.Path, path)

	name := path
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		name = path[idx+1:]
	}
	alias := n.Alias
	if alias == nil {
		alias = &ast.IdentifierExpr{Name: name, Location: *n.Path.Loc()}
	}
	c.declareSymbol(alias, symbols.ModuleSymbol, &types.ModuleType{Path: path})
}

func (c *collector) recordVisibility(n *ast.VisibilityStmt) {
	if c.public == nil {
		c.public = make(map[string]*source.Location)
		c.private = make(map[string]*source.Location)
	}
	target := c.private
	if n.Public {
		target = c.public
	}
	for _, name := range n.Names {
		if name.Name == "" {
			continue
		}
		if _, dup := target[name.Name]; !dup {
			target[name.Name] = name.Loc()
		}
	}
}

// settleExports decides the visibility of every top-level symbol:
// an explicit public list exports exactly its members; otherwise
// everything is exported except private-listed names and names with a
// leading underscore. A name on both lists is an error.
func (c *collector) settleExports() {
	module := c.module
	module.Exports = make(map[string]bool)

	for name, loc := range c.public {
		if privLoc, both := c.private[name]; both {
			c.ctx.Reports.Add(diagnostics.NewError(fmt.Sprintf("'%s' listed as both public and private", name)).
				WithCode(diagnostics.ErrConflictingExports).
				WithPrimaryLabel(loc, "public here").
				WithSecondaryLabel(privLoc, "private here"))
		}
	}

	explicit := len(c.public) > 0
	c.scope.Each(func(sym *symbols.Symbol) {
		exported := false
		switch {
		case explicit:
			_, exported = c.public[sym.Name]
		case c.private != nil:
			_, listed := c.private[sym.Name]
			exported = !listed && !strings.HasPrefix(sym.Name, "_")
		default:
			exported = !strings.HasPrefix(sym.Name, "_")
		}
		// imported modules are never re-exported
		if sym.Kind == symbols.ModuleSymbol {
			exported = false
		}
		sym.Exported = exported
		module.Exports[sym.Name] = exported
	})
}

// TypeFromNode resolves a type annotation against a scope. Generic
// parameter names take precedence over declarations; unknown names are
// reported once per occurrence.
func TypeFromNode(node ast.TypeNode, scope *table.SymbolTable, generics map[string]bool, bag *diagnostics.DiagnosticBag) types.SemType {
	switch n := node.(type) {
	case *ast.NamedType:
		if n.Name == "" {
			return types.TypeUnknown // parse error already reported
		}
		if generics[n.Name] {
			return &types.GenericType{Name: n.Name}
		}
		if prim, ok := types.LookupPrimitive(n.Name); ok {
			return prim
		}
		if sym, ok := scope.Lookup(n.Name); ok {
			switch sym.Kind {
			case symbols.ClassSymbol, symbols.ActorSymbol, symbols.EnumSymbol:
				return sym.Type
			}
		}
		bag.Add(diagnostics.NewError(fmt.Sprintf("unknown type '%s' in annotation", n.Name)).
			WithCode(diagnostics.ErrUnknownAnnotation).
			WithPrimaryLabel(n.Loc(), "not a known type").
			WithHelp("annotations name a primitive, class, actor, enum, or type parameter"))
		return types.TypeUnknown
	case *ast.ListTypeNode:
		return types.NewList(TypeFromNode(n.Elem, scope, generics, bag))
	default:
		return types.TypeUnknown
	}
}
