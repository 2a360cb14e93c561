package resolver

import (
	"fmt"

	"flarec/internal/context"
	"flarec/internal/diagnostics"
	"flarec/internal/frontend/ast"
	"flarec/internal/semantics/collector"
	"flarec/internal/semantics/symbols"
	"flarec/internal/semantics/table"
	"flarec/internal/types"
)

// ResolveModule runs name resolution for one collected module: it
// builds the scope tree under the module scope, binds every identifier
// occurrence to exactly one symbol (or reports exactly one undefined
// name), enforces cross-module visibility, and warns about shadowing
// and unused imports.
//
// Every module in the build must be Collected before any module
// resolves, so imported names are found regardless of build order.
func ResolveModule(ctx *context.CompilerContext, module *context.Module) {
	module.Bindings = make(map[ast.Expression]*symbols.Symbol)
	r := &resolver{ctx: ctx, module: module, scope: module.Scope}
	for _, node := range module.AST.Nodes {
		r.resolveNode(node)
	}
	r.warnUnusedImports()
}

type resolver struct {
	ctx    *context.CompilerContext
	module *context.Module
	scope  *table.SymbolTable

	// actorType is the nominal type of the actor whose body is being
	// resolved; methods type their self parameter with it
	actorType types.SemType
}

func (r *resolver) bag() *diagnostics.DiagnosticBag {
	return r.ctx.Reports
}

func (r *resolver) bind(expr ast.Expression, sym *symbols.Symbol) {
	sym.Used = true
	r.module.Bindings[expr] = sym
}

// declare adds a name to the current scope, reporting redeclaration and
// shadowing. Returns the effective symbol.
func (r *resolver) declare(name *ast.IdentifierExpr, kind symbols.SymbolKind, t types.SemType) *symbols.Symbol {
	if name.Name == "" {
		return symbols.New("", kind, types.TypeUnknown, name.Loc())
	}
	sym := symbols.New(name.Name, kind, t, name.Loc())
	if existing, ok := r.scope.Declare(sym); !ok {
		diag := diagnostics.NewError(fmt.Sprintf("'%s' redeclared in this scope", name.Name)).
			WithCode(diagnostics.ErrRedeclaredSymbol).
			WithPrimaryLabel(name.Loc(), "redeclared here")
		if existing.Location != nil {
			diag.WithSecondaryLabel(existing.Location, "previous declaration here")
		}
		r.bag().Add(diag)
		return existing
	}
	if outer, shadows := r.scope.LookupEnclosing(name.Name); shadows && outer.Kind != symbols.BuiltinSymbol {
		diag := diagnostics.NewWarning(fmt.Sprintf("'%s' shadows a name from an enclosing scope", name.Name)).
			WithCode(diagnostics.WarnShadowedName).
			WithPrimaryLabel(name.Loc(), "shadowing declaration")
		if outer.Location != nil {
			diag.WithSecondaryLabel(outer.Location, "shadowed declaration here")
		}
		r.bag().Add(diag)
	}
	r.module.Bindings[name] = sym
	return sym
}

// inScope runs fn inside a child scope of the given kind
func (r *resolver) inScope(kind table.ScopeKind, fn func()) *table.SymbolTable {
	child := table.NewSymbolTable(r.scope, kind)
	r.scope = child
	fn()
	r.scope = child.Parent()
	return child
}

func (r *resolver) resolveNode(node ast.Node) {
	switch n := node.(type) {
	case *ast.FuncDecl:
		r.resolveFunc(n)
	case *ast.ClassDecl:
		r.resolveClass(n)
	case *ast.ActorDecl:
		r.resolveActor(n)
	case *ast.EnumDecl:
		// declared by the collector (or hoisted); nothing inside to bind
	case *ast.StateBlock:
		r.resolveStateBlock(n)
	case *ast.ImportStmt:
		r.resolveImport(n)
	case *ast.VisibilityStmt:
		r.resolveVisibility(n)
	case *ast.Block:
		r.resolveBlock(n, table.BlockScope, nil)
	case *ast.ExprStmt:
		r.resolveExpr(n.X)
	case *ast.ReturnStmt:
		if n.Result != nil {
			r.resolveExpr(n.Result)
		}
	case *ast.PassStmt:
	case *ast.IfStmt:
		r.resolveExpr(n.Cond)
		r.resolveBlock(n.Body, table.BlockScope, nil)
		if n.Else != nil {
			r.resolveNode(n.Else)
		}
	case *ast.WhileStmt:
		r.resolveExpr(n.Cond)
		r.resolveBlock(n.Body, table.BlockScope, nil)
	case *ast.ForStmt:
		r.resolveExpr(n.Iter)
		r.resolveBlock(n.Body, table.BlockScope, func() {
			r.declare(n.Var, symbols.VariableSymbol, types.TypeUnknown)
		})
	case *ast.MatchStmt:
		r.resolveMatch(n)
	}
}

// resolveBlock resolves a statement block in a fresh child scope.
// Function and class declarations hoist within the block; plain
// variables do not. setup runs first, for loop variables and the like.
func (r *resolver) resolveBlock(block *ast.Block, kind table.ScopeKind, setup func()) {
	if block == nil {
		return
	}
	scope := r.inScope(kind, func() {
		if setup != nil {
			setup()
		}
		r.hoistDeclarations(block)
		for _, node := range block.Nodes {
			r.resolveNode(node)
		}
	})
	block.Scope = scope
}

// hoistDeclarations pre-declares the block's functions, classes,
// actors, and enums so forward references within the block resolve
func (r *resolver) hoistDeclarations(block *ast.Block) {
	for _, node := range block.Nodes {
		switch n := node.(type) {
		case *ast.FuncDecl:
			r.declare(n.Name, symbols.FunctionSymbol, collector.Signature(n, r.scope, r.bag()))
		case *ast.ClassDecl:
			r.declare(n.Name, symbols.ClassSymbol, types.NewClass(n.Name.Name))
		case *ast.ActorDecl:
			r.declare(n.Name, symbols.ActorSymbol, types.NewActor(n.Name.Name))
		case *ast.EnumDecl:
			enumType := &types.EnumType{Name: n.Name.Name}
			for _, variant := range n.Variants {
				params := make([]types.SemType, len(variant.Params))
				for i, p := range variant.Params {
					params[i] = collector.TypeFromNode(p, r.scope, nil, r.bag())
				}
				enumType.Variants = append(enumType.Variants, types.Variant{Name: variant.Name.Name, Params: params})
			}
			r.declare(n.Name, symbols.EnumSymbol, enumType)
			for _, variant := range n.Variants {
				r.declare(variant.Name, symbols.VariantSymbol, enumType)
			}
		}
	}
}

func (r *resolver) resolveFunc(n *ast.FuncDecl) {
	r.resolveAnnotations(n.Annotations)

	// module-level functions were declared by the collector; nested and
	// block-level ones by hoistDeclarations
	sig, _ := r.scope.Lookup(n.Name.Name)

	generics := make(map[string]bool, len(n.TypeParams))
	for _, tp := range n.TypeParams {
		generics[tp.Name] = true
	}

	r.resolveBlock(n.Body, table.FunctionScope, func() {
		for _, tp := range n.TypeParams {
			r.declare(tp, symbols.TypeParamSymbol, &types.GenericType{Name: tp.Name})
		}
		for i, param := range n.Params {
			paramType := types.SemType(types.TypeUnknown)
			if param.Type != nil {
				paramType = collector.TypeFromNode(param.Type, r.scope, generics, r.bag())
			}
			if fn, ok := sigType(sig); ok && i < len(fn.Params) {
				paramType = fn.Params[i]
			}
			if i == 0 && param.Name.Name == "self" && param.Type == nil &&
				r.actorType != nil && r.scope.EnclosingActor() != nil {
				// an unannotated self receives the actor's own type, so
				// state access through it checks precisely
				paramType = r.actorType
			}
			r.declare(param.Name, symbols.ParameterSymbol, paramType)
		}
	})
}

func sigType(sym *symbols.Symbol) (*types.FuncType, bool) {
	if sym == nil {
		return nil, false
	}
	fn, ok := sym.Type.(*types.FuncType)
	return fn, ok
}

func (r *resolver) resolveClass(n *ast.ClassDecl) {
	r.resolveAnnotations(n.Annotations)
	classSym, _ := r.scope.Lookup(n.Name.Name)
	r.resolveBlock(n.Body, table.ClassScope, nil)

	// record the class's methods and fields on its nominal type
	if classSym != nil {
		if classType, ok := classSym.Type.(*types.ClassType); ok {
			if scope, ok := n.Body.Scope.(*table.SymbolTable); ok {
				scope.Each(func(member *symbols.Symbol) {
					classType.Fields[member.Name] = member.Type
				})
			}
		}
	}
}

func (r *resolver) resolveActor(n *ast.ActorDecl) {
	r.resolveAnnotations(n.Annotations)
	actorSym, _ := r.scope.Lookup(n.Name.Name)

	prev := r.actorType
	if actorSym != nil {
		r.actorType = actorSym.Type
	}
	r.resolveBlock(n.Body, table.ActorScope, nil)
	r.actorType = prev

	if actorSym != nil {
		if actorType, ok := actorSym.Type.(*types.ActorType); ok {
			if scope, ok := n.Body.Scope.(*table.SymbolTable); ok {
				scope.Each(func(member *symbols.Symbol) {
					if member.Kind == symbols.StateFieldSymbol {
						actorType.State[member.Name] = member.Type
					}
				})
			}
		}
	}
}

// resolveStateBlock declares state fields into the enclosing actor
// scope. A state block anywhere else is an error: its fields would
// otherwise become free-floating globals.
func (r *resolver) resolveStateBlock(n *ast.StateBlock) {
	if r.scope.Kind() != table.ActorScope {
		diag := diagnostics.NewError("'state' block outside an actor").
			WithCode(diagnostics.ErrStateOutsideActor).
			WithPrimaryLabel(n.Loc(), "state blocks declare actor fields")
		if r.scope.EnclosingFunction() != nil && r.scope.EnclosingActor() != nil {
			diag.WithHelp("declare state directly in the actor body, not inside a method")
		} else {
			diag.WithHelp("move this block into an actor declaration")
		}
		r.bag().Add(diag)
		return
	}
	for _, field := range n.Fields {
		fieldType := types.SemType(types.TypeUnknown)
		if field.Type != nil {
			fieldType = collector.TypeFromNode(field.Type, r.scope, nil, r.bag())
		}
		if field.Default != nil {
			r.resolveExpr(field.Default)
		}
		r.declare(field.Name, symbols.StateFieldSymbol, fieldType)
	}
}

func (r *resolver) resolveImport(n *ast.ImportStmt) {
	if _, ok := r.ctx.GetModule(n.Path.Value); !ok {
		r.bag().Add(diagnostics.NewError(fmt.Sprintf("module '%s' not found", n.Path.Value)).
			WithCode(diagnostics.ErrModuleNotFound).
			WithPrimaryLabel(n.Path.Loc(), "no such module in this build"))
	}
}

// resolveVisibility checks that exported names actually exist at module
// level. The lists themselves were settled by the collector.
func (r *resolver) resolveVisibility(n *ast.VisibilityStmt) {
	for _, name := range n.Names {
		if name.Name == "" {
			continue
		}
		if sym, ok := r.module.Scope.LookupLocal(name.Name); ok {
			r.bind(name, sym)
			continue
		}
		r.bag().Add(diagnostics.NewError(fmt.Sprintf("undefined name: %s", name.Name)).
			WithCode(diagnostics.ErrUndefinedName).
			WithPrimaryLabel(name.Loc(), "listed but never declared in this module"))
	}
}

func (r *resolver) resolveAnnotations(annotations []*ast.Annotation) {
	// annotation names are opaque metadata for later stages; only their
	// argument expressions resolve
	for _, ann := range annotations {
		for _, arg := range ann.Args {
			r.resolveExpr(arg)
		}
	}
}

func (r *resolver) resolveMatch(n *ast.MatchStmt) {
	r.resolveExpr(n.Expr)
	for _, clause := range n.Cases {
		clause := clause
		r.resolveBlock(clause.Body, table.BlockScope, func() {
			r.resolvePattern(clause.Pattern)
			if clause.Guard != nil {
				r.resolveExpr(clause.Guard)
			}
		})
	}
}

// resolvePattern declares binding patterns and resolves constructor
// names. Variant membership is checked later, against the scrutinee's
// type.
func (r *resolver) resolvePattern(pattern ast.Pattern) {
	switch p := pattern.(type) {
	case *ast.LiteralPattern, *ast.WildcardPattern:
	case *ast.BindingPattern:
		r.declare(p.Name, symbols.VariableSymbol, types.TypeUnknown)
	case *ast.ConstructorPattern:
		if p.Enum != nil {
			r.resolveName(p.Enum)
		} else {
			r.resolveName(p.Name)
		}
		for _, sub := range p.Subs {
			r.resolvePattern(sub)
		}
	}
}

func (r *resolver) resolveExpr(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.BasicLit, *ast.Invalid:
	case *ast.IdentifierExpr:
		r.resolveName(e)
	case *ast.FStringExpr:
		for _, part := range e.Parts {
			if part.X != nil {
				r.resolveExpr(part.X)
			}
		}
	case *ast.BinaryExpr:
		r.resolveExpr(e.X)
		r.resolveExpr(e.Y)
	case *ast.UnaryExpr:
		r.resolveExpr(e.X)
	case *ast.AwaitExpr:
		r.resolveExpr(e.X)
	case *ast.AssignExpr:
		r.resolveAssign(e)
	case *ast.CallExpr:
		r.resolveExpr(e.Fun)
		for _, arg := range e.Args {
			r.resolveExpr(arg)
		}
	case *ast.SelectorExpr:
		r.resolveSelector(e)
	case *ast.IndexExpr:
		r.resolveExpr(e.X)
		r.resolveExpr(e.Index)
	case *ast.ListLit:
		for _, elt := range e.Elts {
			r.resolveExpr(elt)
		}
	}
}

// resolveName binds an identifier read, or reports exactly one
// undefined-name error for it
func (r *resolver) resolveName(e *ast.IdentifierExpr) {
	if e.Name == "" {
		return
	}
	if sym, ok := r.scope.Lookup(e.Name); ok {
		r.bind(e, sym)
		return
	}
	r.bag().Add(diagnostics.NewError(fmt.Sprintf("undefined name: %s", e.Name)).
		WithCode(diagnostics.ErrUndefinedName).
		WithPrimaryLabel(e.Loc(), "not found in this scope"))
}

// resolveAssign handles define-on-assign: writing to a visible name
// rebinds it, writing to an unknown identifier declares it in the
// current scope.
func (r *resolver) resolveAssign(e *ast.AssignExpr) {
	r.resolveExpr(e.Value)

	switch target := e.Target.(type) {
	case *ast.IdentifierExpr:
		if target.Name == "" {
			return
		}
		if sym, ok := r.scope.Lookup(target.Name); ok {
			r.bind(target, sym)
			return
		}
		r.declare(target, symbols.VariableSymbol, types.TypeUnknown)
	default:
		r.resolveExpr(e.Target)
	}
}

// resolveSelector resolves module member access against the imported
// module's export list. Non-module selectors resolve only their base;
// field lookup is the checker's concern.
func (r *resolver) resolveSelector(e *ast.SelectorExpr) {
	r.resolveExpr(e.X)

	base, ok := e.X.(*ast.IdentifierExpr)
	if !ok {
		return
	}
	baseSym, bound := r.module.Bindings[base]
	if !bound || baseSym.Kind != symbols.ModuleSymbol {
		return
	}
	moduleType, ok := baseSym.Type.(*types.ModuleType)
	if !ok {
		return
	}
	imported, ok := r.ctx.GetModule(moduleType.Path)
	if !ok || imported.Scope == nil {
		return // missing module already reported at the import
	}

	sym, declared := imported.Scope.LookupLocal(e.Field.Name)
	if !declared {
		r.bag().Add(diagnostics.NewError(fmt.Sprintf("undefined name: %s", e.Field.Name)).
			WithCode(diagnostics.ErrUndefinedName).
			WithPrimaryLabel(e.Field.Loc(), fmt.Sprintf("not declared in module '%s'", moduleType.Path)))
		return
	}
	if !imported.Exports[e.Field.Name] {
		diag := diagnostics.NewError(fmt.Sprintf("private symbol not accessible: %s", e.Field.Name)).
			WithCode(diagnostics.ErrPrivateSymbol).
			WithPrimaryLabel(e.Field.Loc(), fmt.Sprintf("not exported by module '%s'", moduleType.Path)).
			WithHelp("add the name to the module's public list")
		if sym.Location != nil {
			diag.WithSecondaryLabel(sym.Location, "declared here")
		}
		r.bag().Add(diag)
		return
	}
	r.bind(e.Field, sym)
	r.bind(e, sym)
}

func (r *resolver) warnUnusedImports() {
	r.module.Scope.Each(func(sym *symbols.Symbol) {
		if sym.Kind == symbols.ModuleSymbol && !sym.Used {
			r.bag().Add(diagnostics.NewWarning(fmt.Sprintf("import '%s' is never used", sym.Name)).
				WithCode(diagnostics.WarnUnusedImport).
				WithPrimaryLabel(sym.Location, "imported but unused"))
		}
	})
}
