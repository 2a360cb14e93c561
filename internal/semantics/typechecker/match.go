package typechecker

import (
	"fmt"
	"strings"

	"flarec/internal/diagnostics"
	"flarec/internal/frontend/ast"
	"flarec/internal/semantics/symbols"
	"flarec/internal/semantics/table"
	"flarec/internal/types"
)

// checkMatch types a match statement: every pattern is checked against
// the scrutinee's type, bindings take the type they destructure, and a
// match over a closed enum with uncovered variants gets exactly one
// possibly-non-exhaustive warning. Exhaustiveness is never an error:
// dynamic typing can always smuggle in values the checker cannot see.
func (c *checker) checkMatch(n *ast.MatchStmt) {
	scrutinee := types.Resolve(c.checkExpr(n.Expr))

	covered := make(map[string]bool)
	catchAll := false

	for _, clause := range n.Cases {
		prev := c.scope
		if scope, ok := clause.Body.Scope.(*table.SymbolTable); ok && scope != nil {
			c.scope = scope
		}

		c.checkPattern(clause.Pattern, scrutinee)
		if clause.Guard != nil {
			c.checkExpr(clause.Guard)
		}

		if catchAll {
			c.bag().Add(diagnostics.NewWarning("unreachable pattern").
				WithCode(diagnostics.WarnUnreachablePattern).
				WithPrimaryLabel(clause.Pattern.Loc(), "an earlier case already matches everything"))
		}

		// a guarded case may fail at runtime, so it covers nothing
		// for exhaustiveness purposes
		if clause.Guard == nil {
			switch p := clause.Pattern.(type) {
			case *ast.WildcardPattern, *ast.BindingPattern:
				catchAll = true
			case *ast.ConstructorPattern:
				covered[p.Name.Name] = true
			}
		}

		for _, node := range clause.Body.Nodes {
			c.checkNode(node)
		}
		c.scope = prev
	}

	if enumType, ok := scrutinee.(*types.EnumType); ok && !catchAll {
		var missing []string
		for _, variant := range enumType.Variants {
			if !covered[variant.Name] {
				missing = append(missing, variant.Name)
			}
		}
		if len(missing) > 0 {
			c.bag().Add(diagnostics.NewWarning(fmt.Sprintf("possibly non-exhaustive match over %s", enumType.Name)).
				WithCode(diagnostics.WarnNonExhaustive).
				WithPrimaryLabel(n.Expr.Loc(), fmt.Sprintf("missing: %s", strings.Join(missing, ", "))).
				WithHelp("add the missing cases or a trailing 'case _'"))
		}
	}
}

// checkPattern validates a pattern against the type it matches and
// propagates that type into its bindings.
func (c *checker) checkPattern(pattern ast.Pattern, scrutinee types.SemType) {
	scrutinee = types.Resolve(scrutinee)

	switch p := pattern.(type) {
	case *ast.WildcardPattern:
	case *ast.BindingPattern:
		if sym, ok := c.symbolOf(p.Name); ok {
			sym.Type = scrutinee
		}
		c.set(p.Name, scrutinee)
	case *ast.LiteralPattern:
		litType := literalType(p.Lit)
		c.set(p.Lit, litType)
		if !types.IsUnknown(scrutinee) && !types.Assignable(litType, scrutinee) {
			c.bag().Add(diagnostics.NewWarning("unreachable pattern").
				WithCode(diagnostics.WarnUnreachablePattern).
				WithPrimaryLabel(p.Loc(), fmt.Sprintf("a %s never matches %s", litType, scrutinee)))
		}
	case *ast.ConstructorPattern:
		c.checkConstructorPattern(p, scrutinee)
	}
}

func (c *checker) checkConstructorPattern(p *ast.ConstructorPattern, scrutinee types.SemType) {
	enumType := c.patternEnum(p, scrutinee)
	if enumType == nil {
		// nothing known about the scrutinee; bind subpatterns dynamically
		for _, sub := range p.Subs {
			c.checkPattern(sub, types.TypeUnknown)
		}
		return
	}

	if st, ok := scrutinee.(*types.EnumType); ok && st.Name != enumType.Name {
		c.bag().Add(diagnostics.NewWarning("unreachable pattern").
			WithCode(diagnostics.WarnUnreachablePattern).
			WithPrimaryLabel(p.Loc(), fmt.Sprintf("a %s variant never matches %s", enumType.Name, st.Name)))
	}

	variant, ok := enumType.VariantOf(p.Name.Name)
	if !ok {
		c.bag().Add(diagnostics.NewError(fmt.Sprintf("'%s' is not a variant of %s", p.Name.Name, enumType.Name)).
			WithCode(diagnostics.ErrUnknownVariant).
			WithPrimaryLabel(p.Name.Loc(), "unknown variant"))
		for _, sub := range p.Subs {
			c.checkPattern(sub, types.TypeUnknown)
		}
		return
	}

	if len(p.Subs) != len(variant.Params) {
		c.bag().Add(diagnostics.NewError(fmt.Sprintf("wrong number of subpatterns: got %d, want %d", len(p.Subs), len(variant.Params))).
			WithCode(diagnostics.ErrWrongArgumentCount).
			WithPrimaryLabel(p.Loc(), fmt.Sprintf("%s.%s carries %d value(s)", enumType.Name, variant.Name, len(variant.Params))))
	}
	for i, sub := range p.Subs {
		subType := types.SemType(types.TypeUnknown)
		if i < len(variant.Params) {
			subType = variant.Params[i]
		}
		c.checkPattern(sub, subType)
	}
}

// patternEnum determines which enum a constructor pattern belongs to:
// the explicit qualifier, the constructor name's declaration, or the
// scrutinee's own type.
func (c *checker) patternEnum(p *ast.ConstructorPattern, scrutinee types.SemType) *types.EnumType {
	if p.Enum != nil {
		if sym, ok := c.symbolOf(p.Enum); ok {
			if enumType, ok := sym.Type.(*types.EnumType); ok {
				return enumType
			}
		}
		return nil
	}
	if sym, ok := c.symbolOf(p.Name); ok && sym.Kind == symbols.VariantSymbol {
		if enumType, ok := sym.Type.(*types.EnumType); ok {
			return enumType
		}
	}
	if enumType, ok := scrutinee.(*types.EnumType); ok {
		return enumType
	}
	return nil
}
