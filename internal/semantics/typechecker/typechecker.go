package typechecker

import (
	"fmt"

	"flarec/internal/context"
	"flarec/internal/diagnostics"
	"flarec/internal/frontend/ast"
	"flarec/internal/semantics/symbols"
	"flarec/internal/semantics/table"
	"flarec/internal/types"
)

// CheckModule runs gradual type checking for one resolved module and
// fills its typing table. Annotations are authoritative where present;
// everywhere else types are inferred bottom-up and unified across
// assignment sites within a scope. Unknown interoperates with
// everything, deferring those checks to runtime.
func CheckModule(ctx *context.CompilerContext, module *context.Module) {
	module.Types = make(map[ast.Expression]types.SemType)
	c := &checker{ctx: ctx, module: module, scope: module.Scope}
	for _, node := range module.AST.Nodes {
		c.checkNode(node)
	}
	c.flagUnresolved()
}

type checker struct {
	ctx    *context.CompilerContext
	module *context.Module
	scope  *table.SymbolTable

	// order keeps the typing table's insertion order so post-pass
	// reports are deterministic
	order []ast.Expression

	// rets tracks the enclosing function's return contract
	rets []retInfo
}

type retInfo struct {
	declared  types.SemType
	annotated bool
	inferred  *types.TypeVar
}

func (c *checker) bag() *diagnostics.DiagnosticBag {
	return c.ctx.Reports
}

// set records an expression's type in the typing table
func (c *checker) set(expr ast.Expression, t types.SemType) types.SemType {
	if _, seen := c.module.Types[expr]; !seen {
		c.order = append(c.order, expr)
	}
	c.module.Types[expr] = t
	return t
}

func (c *checker) symbolOf(expr ast.Expression) (*symbols.Symbol, bool) {
	sym, ok := c.module.Bindings[expr]
	return sym, ok
}

// inBlock checks a block inside the scope the resolver built for it
func (c *checker) inBlock(block *ast.Block) {
	if block == nil {
		return
	}
	prev := c.scope
	if scope, ok := block.Scope.(*table.SymbolTable); ok && scope != nil {
		c.scope = scope
	}
	for _, node := range block.Nodes {
		c.checkNode(node)
	}
	c.scope = prev
}

func (c *checker) checkNode(node ast.Node) {
	switch n := node.(type) {
	case *ast.FuncDecl:
		c.checkFunc(n)
	case *ast.ClassDecl:
		c.checkAnnotations(n.Annotations)
		c.inBlock(n.Body)
	case *ast.ActorDecl:
		c.checkAnnotations(n.Annotations)
		c.inBlock(n.Body)
	case *ast.EnumDecl:
	case *ast.StateBlock:
		c.checkStateBlock(n)
	case *ast.ImportStmt, *ast.VisibilityStmt, *ast.PassStmt:
	case *ast.Block:
		c.inBlock(n)
	case *ast.ExprStmt:
		c.checkExpr(n.X)
	case *ast.ReturnStmt:
		c.checkReturn(n)
	case *ast.IfStmt:
		c.checkExpr(n.Cond)
		c.inBlock(n.Body)
		if n.Else != nil {
			c.checkNode(n.Else)
		}
	case *ast.WhileStmt:
		c.checkExpr(n.Cond)
		c.inBlock(n.Body)
	case *ast.ForStmt:
		c.checkFor(n)
	case *ast.MatchStmt:
		c.checkMatch(n)
	}
}

func (c *checker) checkFunc(n *ast.FuncDecl) {
	c.checkAnnotations(n.Annotations)

	sig := c.signatureOf(n)
	ret := retInfo{declared: types.TypeUnknown}
	if sig != nil {
		ret.declared = sig.Return
		ret.annotated = n.ReturnType != nil
	}
	if !ret.annotated {
		ret.inferred = c.ctx.TypeVars.Fresh()
	}

	c.rets = append(c.rets, ret)
	c.inBlock(n.Body)
	c.rets = c.rets[:len(c.rets)-1]

	// an unannotated function gets its inferred return type, when the
	// bodies' returns agreed on one
	if sig != nil && !ret.annotated && ret.inferred.Ref != nil {
		sig.Return = types.Resolve(ret.inferred)
	}
}

func (c *checker) signatureOf(n *ast.FuncDecl) *types.FuncType {
	if sym, ok := c.symbolOf(n.Name); ok {
		if fn, ok := sym.Type.(*types.FuncType); ok {
			return fn
		}
	}
	if sym, ok := c.scope.Lookup(n.Name.Name); ok {
		if fn, ok := sym.Type.(*types.FuncType); ok {
			return fn
		}
	}
	return nil
}

func (c *checker) checkAnnotations(annotations []*ast.Annotation) {
	for _, ann := range annotations {
		for _, arg := range ann.Args {
			c.checkExpr(arg)
		}
	}
}

func (c *checker) checkStateBlock(n *ast.StateBlock) {
	for _, field := range n.Fields {
		if field.Default == nil {
			continue
		}
		got := c.checkExpr(field.Default)
		sym, ok := c.symbolOf(field.Name)
		if !ok {
			continue
		}
		if !types.Assignable(got, sym.Type) {
			c.bag().Add(diagnostics.NewError(fmt.Sprintf("%s is not compatible with %s", got, sym.Type)).
				WithCode(diagnostics.ErrTypeMismatch).
				WithPrimaryLabel(field.Default.Loc(), fmt.Sprintf("default value has type %s", got)).
				WithSecondaryLabel(field.Name.Loc(), fmt.Sprintf("field declared as %s", sym.Type)))
		}
	}
}

func (c *checker) checkReturn(n *ast.ReturnStmt) {
	got := types.SemType(types.TypeNone)
	if n.Result != nil {
		got = c.checkExpr(n.Result)
	}
	if len(c.rets) == 0 {
		return // module-level return is a parse-level concern
	}
	ret := c.rets[len(c.rets)-1]
	if ret.annotated {
		if !types.Assignable(got, ret.declared) {
			loc := n.Loc()
			if n.Result != nil {
				loc = n.Result.Loc()
			}
			c.bag().Add(diagnostics.NewError(fmt.Sprintf("%s is not compatible with %s", got, ret.declared)).
				WithCode(diagnostics.ErrTypeMismatch).
				WithPrimaryLabel(loc, fmt.Sprintf("returns %s", got)).
				WithNote(fmt.Sprintf("the function's return type is annotated as %s", ret.declared)))
		}
		return
	}
	// no annotation: unify this return with the others
	if ret.inferred != nil {
		types.Unify(ret.inferred, got)
	}
}

func (c *checker) checkFor(n *ast.ForStmt) {
	iter := types.Resolve(c.checkExpr(n.Iter))

	elem := types.SemType(types.TypeUnknown)
	switch it := iter.(type) {
	case *types.ListType:
		elem = it.Element
	case *types.PrimitiveType:
		if it.GetName() == types.TYPE_STRING {
			elem = types.TypeString
		} else {
			c.bag().Add(diagnostics.NewError(fmt.Sprintf("%s is not iterable", iter)).
				WithCode(diagnostics.ErrInvalidOperation).
				WithPrimaryLabel(n.Iter.Loc(), "for loops iterate lists and strings"))
		}
	case *types.UnknownType, *types.TypeVar:
	default:
		c.bag().Add(diagnostics.NewError(fmt.Sprintf("%s is not iterable", iter)).
			WithCode(diagnostics.ErrInvalidOperation).
			WithPrimaryLabel(n.Iter.Loc(), "for loops iterate lists and strings"))
	}

	if sym, ok := c.symbolOf(n.Var); ok {
		sym.Type = elem
	}
	c.set(n.Var, elem)
	c.inBlock(n.Body)
}

// flagUnresolved reports type variables that survived checking without
// a binding: every placeholder must be resolved or flagged, never
// silently left over.
func (c *checker) flagUnresolved() {
	seen := make(map[int]bool)
	for _, expr := range c.order {
		tv := unboundVar(c.module.Types[expr])
		if tv == nil || seen[tv.ID] {
			continue
		}
		seen[tv.ID] = true
		c.bag().Add(diagnostics.NewError("cannot infer a concrete type for this expression").
			WithCode(diagnostics.ErrUnresolvedTypeVar).
			WithPrimaryLabel(expr.Loc(), "type remains undetermined").
			WithHelp("add a type annotation to pin the type down"))
	}
}

// unboundVar finds an unbound type variable anywhere inside t, or nil
func unboundVar(t types.SemType) *types.TypeVar {
	switch tt := types.Resolve(t).(type) {
	case *types.TypeVar:
		return tt
	case *types.ListType:
		return unboundVar(tt.Element)
	case *types.FuncType:
		for _, p := range tt.Params {
			if tv := unboundVar(p); tv != nil {
				return tv
			}
		}
		return unboundVar(tt.Return)
	default:
		return nil
	}
}
