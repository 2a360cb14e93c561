package typechecker

import (
	"fmt"

	"flarec/internal/diagnostics"
	"flarec/internal/frontend/ast"
	"flarec/internal/semantics/symbols"
	"flarec/internal/tokens"
	"flarec/internal/types"
)

func (c *checker) checkExpr(expr ast.Expression) types.SemType {
	switch e := expr.(type) {
	case *ast.BasicLit:
		return c.set(e, literalType(e))
	case *ast.FStringExpr:
		for _, part := range e.Parts {
			if part.X != nil {
				c.checkExpr(part.X)
			}
		}
		return c.set(e, types.TypeString)
	case *ast.IdentifierExpr:
		if sym, ok := c.symbolOf(e); ok {
			return c.set(e, sym.Type)
		}
		// an undefined name was already reported by the resolver
		return c.set(e, types.TypeUnknown)
	case *ast.BinaryExpr:
		return c.set(e, c.checkBinary(e))
	case *ast.UnaryExpr:
		return c.set(e, c.checkUnary(e))
	case *ast.AwaitExpr:
		return c.set(e, c.checkExpr(e.X))
	case *ast.AssignExpr:
		return c.set(e, c.checkAssign(e))
	case *ast.CallExpr:
		return c.set(e, c.checkCall(e))
	case *ast.SelectorExpr:
		return c.set(e, c.checkSelector(e))
	case *ast.IndexExpr:
		return c.set(e, c.checkIndex(e))
	case *ast.ListLit:
		return c.set(e, c.checkListLit(e))
	default:
		return c.set(expr, types.TypeUnknown)
	}
}

func literalType(lit *ast.BasicLit) types.SemType {
	switch lit.Kind {
	case ast.INT:
		return types.TypeInt
	case ast.FLOAT:
		return types.TypeFloat
	case ast.STRING:
		return types.TypeString
	case ast.BOOL:
		return types.TypeBool
	default:
		return types.TypeNone
	}
}

func (c *checker) checkBinary(e *ast.BinaryExpr) types.SemType {
	left := c.checkExpr(e.X)
	right := c.checkExpr(e.Y)

	switch e.Op.Kind {
	case tokens.AND_TOKEN, tokens.OR_TOKEN:
		return types.TypeBool
	case tokens.DOUBLE_EQUAL_TOKEN, tokens.NOT_EQUAL_TOKEN:
		return types.TypeBool
	case tokens.LESS_TOKEN, tokens.GREATER_TOKEN, tokens.LESS_EQUAL_TOKEN, tokens.GREATER_EQUAL_TOKEN:
		return c.checkOrdered(e, left, right)
	case tokens.BIT_AND_TOKEN, tokens.BIT_OR_TOKEN, tokens.BIT_XOR_TOKEN,
		tokens.LSHIFT_TOKEN, tokens.RSHIFT_TOKEN:
		return c.checkIntOp(e, left, right)
	default:
		return c.checkArith(e, left, right)
	}
}

func (c *checker) checkOrdered(e *ast.BinaryExpr, left, right types.SemType) types.SemType {
	if types.IsUnknown(left) || types.IsUnknown(right) {
		return types.TypeBool
	}
	bothNumeric := types.IsNumeric(left) && types.IsNumeric(right)
	bothStrings := types.TypeString.Equals(left) && types.TypeString.Equals(right)
	if !bothNumeric && !bothStrings && !types.Unify(left, right) {
		c.invalidOp(e, left, right)
	}
	return types.TypeBool
}

func (c *checker) checkIntOp(e *ast.BinaryExpr, left, right types.SemType) types.SemType {
	for _, operand := range []types.SemType{left, right} {
		if types.IsUnknown(operand) || types.Unify(operand, types.TypeInt) {
			continue
		}
		c.invalidOp(e, left, right)
		return types.TypeInt
	}
	return types.TypeInt
}

// checkArith types + - * / % **: int stays int, float contaminates,
// and + also concatenates strings and lists
func (c *checker) checkArith(e *ast.BinaryExpr, left, right types.SemType) types.SemType {
	left = types.Resolve(left)
	right = types.Resolve(right)

	if types.IsUnknown(left) || types.IsUnknown(right) {
		return types.TypeUnknown
	}

	// bind an inference variable on one side to the other side's type
	if _, ok := left.(*types.TypeVar); ok {
		types.Unify(left, right)
		left = types.Resolve(left)
	}
	if _, ok := right.(*types.TypeVar); ok {
		types.Unify(right, left)
		right = types.Resolve(right)
	}

	if types.IsNumeric(left) && types.IsNumeric(right) {
		if types.TypeFloat.Equals(left) || types.TypeFloat.Equals(right) {
			return types.TypeFloat
		}
		return types.TypeInt
	}

	if e.Op.Kind == tokens.PLUS_TOKEN {
		if types.TypeString.Equals(left) && types.TypeString.Equals(right) {
			return types.TypeString
		}
		lList, lOk := left.(*types.ListType)
		rList, rOk := right.(*types.ListType)
		if lOk && rOk && types.Unify(lList.Element, rList.Element) {
			return lList
		}
	}

	c.invalidOp(e, left, right)
	return types.TypeUnknown
}

func (c *checker) invalidOp(e *ast.BinaryExpr, left, right types.SemType) {
	c.bag().Add(diagnostics.NewError(fmt.Sprintf("operator '%s' is not defined for %s and %s", e.Op.Kind, left, right)).
		WithCode(diagnostics.ErrInvalidOperation).
		WithPrimaryLabel(e.Loc(), fmt.Sprintf("left is %s, right is %s", left, right)))
}

func (c *checker) checkUnary(e *ast.UnaryExpr) types.SemType {
	operand := c.checkExpr(e.X)
	switch e.Op.Kind {
	case tokens.NOT_TOKEN:
		return types.TypeBool
	default: // unary minus
		resolved := types.Resolve(operand)
		if types.IsUnknown(resolved) || types.IsNumeric(resolved) {
			return operand
		}
		if types.Unify(resolved, types.TypeInt) {
			return types.TypeInt
		}
		c.bag().Add(diagnostics.NewError(fmt.Sprintf("operator '-' is not defined for %s", resolved)).
			WithCode(diagnostics.ErrInvalidOperation).
			WithPrimaryLabel(e.Loc(), fmt.Sprintf("operand is %s", resolved)))
		return types.TypeUnknown
	}
}

// checkAssign enforces annotations and infers variable types from
// their assignment sites: the first write to an unannotated variable
// fixes its type, later writes must stay compatible.
func (c *checker) checkAssign(e *ast.AssignExpr) types.SemType {
	got := c.checkExpr(e.Value)

	switch target := e.Target.(type) {
	case *ast.IdentifierExpr:
		sym, ok := c.symbolOf(target)
		if !ok {
			break
		}
		inferable := sym.Kind == symbols.VariableSymbol || sym.Kind == symbols.ParameterSymbol
		if inferable && types.IsUnknown(sym.Type) {
			sym.Type = got
		} else if !types.Assignable(got, sym.Type) {
			c.bag().Add(diagnostics.NewError(fmt.Sprintf("%s is not compatible with %s", got, sym.Type)).
				WithCode(diagnostics.ErrTypeMismatch).
				WithPrimaryLabel(e.Value.Loc(), fmt.Sprintf("value has type %s", got)).
				WithSecondaryLabel(target.Loc(), fmt.Sprintf("'%s' has type %s", sym.Name, sym.Type)))
		}
		c.set(target, sym.Type)
	case *ast.SelectorExpr, *ast.IndexExpr:
		want := c.checkExpr(e.Target)
		if !types.Assignable(got, want) {
			c.bag().Add(diagnostics.NewError(fmt.Sprintf("%s is not compatible with %s", got, want)).
				WithCode(diagnostics.ErrTypeMismatch).
				WithPrimaryLabel(e.Value.Loc(), fmt.Sprintf("value has type %s", got)).
				WithSecondaryLabel(e.Target.Loc(), fmt.Sprintf("target has type %s", want)))
		}
	}
	return got
}

func (c *checker) checkCall(e *ast.CallExpr) types.SemType {
	// variant constructors are resolved against their enum's payload
	if enumType, variant, ok := c.variantCallee(e.Fun); ok {
		return c.checkVariantCall(e, enumType, variant)
	}

	callee := types.Resolve(c.checkExpr(e.Fun))

	args := make([]types.SemType, len(e.Args))
	for i, arg := range e.Args {
		args[i] = c.checkExpr(arg)
	}

	switch fn := callee.(type) {
	case *types.FuncType:
		return c.checkFuncCall(e, fn, args)
	case *types.ClassType:
		return fn // constructor; init signatures are dynamic
	case *types.ActorType:
		return fn
	case *types.UnknownType:
		// the call is recorded as dynamically typed and checked at runtime
		c.bag().Add(diagnostics.NewWarning("call to a dynamically typed value").
			WithCode(diagnostics.WarnDynamicCall).
			WithPrimaryLabel(e.Fun.Loc(), "nothing is known about this callee").
			WithNote("the call will be checked at runtime"))
		return types.TypeUnknown
	case *types.TypeVar:
		return types.TypeUnknown
	default:
		c.bag().Add(diagnostics.NewError(fmt.Sprintf("%s is not callable", callee)).
			WithCode(diagnostics.ErrNotCallable).
			WithPrimaryLabel(e.Fun.Loc(), fmt.Sprintf("has type %s", callee)))
		return types.TypeUnknown
	}
}

func (c *checker) checkFuncCall(e *ast.CallExpr, fn *types.FuncType, args []types.SemType) types.SemType {
	if fn.Dynamic {
		// fully untyped callee: do not propagate inferences backward
		return types.TypeUnknown
	}

	sig := types.Instantiate(fn, c.ctx.TypeVars)
	if len(args) != len(sig.Params) {
		c.bag().Add(diagnostics.NewError(fmt.Sprintf("wrong number of arguments: got %d, want %d", len(args), len(sig.Params))).
			WithCode(diagnostics.ErrWrongArgumentCount).
			WithPrimaryLabel(e.Loc(), fmt.Sprintf("this call passes %d argument(s)", len(args))))
		return sig.Return
	}
	for i, arg := range args {
		if !types.Assignable(arg, sig.Params[i]) {
			c.bag().Add(diagnostics.NewError(fmt.Sprintf("%s is not compatible with %s", arg, sig.Params[i])).
				WithCode(diagnostics.ErrTypeMismatch).
				WithPrimaryLabel(e.Args[i].Loc(), fmt.Sprintf("argument has type %s", arg)).
				WithNote(fmt.Sprintf("parameter %d expects %s", i+1, sig.Params[i])))
		}
	}
	return types.Resolve(sig.Return)
}

// variantCallee recognizes Success(...) and Result.Success(...) callees
func (c *checker) variantCallee(fun ast.Expression) (*types.EnumType, *types.Variant, bool) {
	switch f := fun.(type) {
	case *ast.IdentifierExpr:
		sym, ok := c.symbolOf(f)
		if !ok || sym.Kind != symbols.VariantSymbol {
			return nil, nil, false
		}
		enumType, ok := sym.Type.(*types.EnumType)
		if !ok {
			return nil, nil, false
		}
		c.set(f, enumType)
		if v, ok := enumType.VariantOf(f.Name); ok {
			return enumType, &v, true
		}
		return nil, nil, false
	case *ast.SelectorExpr:
		base, ok := f.X.(*ast.IdentifierExpr)
		if !ok {
			return nil, nil, false
		}
		sym, ok := c.symbolOf(base)
		if !ok || sym.Kind != symbols.EnumSymbol {
			return nil, nil, false
		}
		enumType, ok := sym.Type.(*types.EnumType)
		if !ok {
			return nil, nil, false
		}
		c.set(base, enumType)
		c.set(f, enumType)
		v, ok := enumType.VariantOf(f.Field.Name)
		if !ok {
			c.bag().Add(diagnostics.NewError(fmt.Sprintf("'%s' is not a variant of %s", f.Field.Name, enumType.Name)).
				WithCode(diagnostics.ErrUnknownVariant).
				WithPrimaryLabel(f.Field.Loc(), "unknown variant"))
			return nil, nil, false
		}
		return enumType, &v, true
	default:
		return nil, nil, false
	}
}

func (c *checker) checkVariantCall(e *ast.CallExpr, enumType *types.EnumType, variant *types.Variant) types.SemType {
	args := make([]types.SemType, len(e.Args))
	for i, arg := range e.Args {
		args[i] = c.checkExpr(arg)
	}
	if len(args) != len(variant.Params) {
		c.bag().Add(diagnostics.NewError(fmt.Sprintf("wrong number of arguments: got %d, want %d", len(args), len(variant.Params))).
			WithCode(diagnostics.ErrWrongArgumentCount).
			WithPrimaryLabel(e.Loc(), fmt.Sprintf("%s.%s carries %d value(s)", enumType.Name, variant.Name, len(variant.Params))))
		return enumType
	}
	for i, arg := range args {
		if !types.Assignable(arg, variant.Params[i]) {
			c.bag().Add(diagnostics.NewError(fmt.Sprintf("%s is not compatible with %s", arg, variant.Params[i])).
				WithCode(diagnostics.ErrTypeMismatch).
				WithPrimaryLabel(e.Args[i].Loc(), fmt.Sprintf("argument has type %s", arg)).
				WithNote(fmt.Sprintf("%s.%s expects %s", enumType.Name, variant.Name, variant.Params[i])))
		}
	}
	return enumType
}

func (c *checker) checkSelector(e *ast.SelectorExpr) types.SemType {
	// module members were bound by the resolver
	if sym, ok := c.symbolOf(e); ok {
		c.checkExpr(e.X)
		return sym.Type
	}

	base := types.Resolve(c.checkExpr(e.X))
	switch b := base.(type) {
	case *types.ClassType:
		if fieldType, ok := b.Fields[e.Field.Name]; ok {
			return fieldType
		}
		return types.TypeUnknown // open classes: unknown attrs are dynamic
	case *types.ActorType:
		if fieldType, ok := b.State[e.Field.Name]; ok {
			return fieldType
		}
		return types.TypeUnknown
	case *types.EnumType:
		if _, ok := b.VariantOf(e.Field.Name); ok {
			return b
		}
		c.bag().Add(diagnostics.NewError(fmt.Sprintf("'%s' is not a variant of %s", e.Field.Name, b.Name)).
			WithCode(diagnostics.ErrUnknownVariant).
			WithPrimaryLabel(e.Field.Loc(), "unknown variant"))
		return types.TypeUnknown
	default:
		return types.TypeUnknown
	}
}

func (c *checker) checkIndex(e *ast.IndexExpr) types.SemType {
	base := types.Resolve(c.checkExpr(e.X))
	index := c.checkExpr(e.Index)

	if !types.Assignable(index, types.TypeInt) {
		c.bag().Add(diagnostics.NewError(fmt.Sprintf("%s is not compatible with int", index)).
			WithCode(diagnostics.ErrTypeMismatch).
			WithPrimaryLabel(e.Index.Loc(), fmt.Sprintf("index has type %s", index)))
	}

	switch b := base.(type) {
	case *types.ListType:
		return b.Element
	case *types.PrimitiveType:
		if b.GetName() == types.TYPE_STRING {
			return types.TypeString
		}
	case *types.UnknownType, *types.TypeVar:
		return types.TypeUnknown
	}
	c.bag().Add(diagnostics.NewError(fmt.Sprintf("%s is not indexable", base)).
		WithCode(diagnostics.ErrNotIndexable).
		WithPrimaryLabel(e.X.Loc(), fmt.Sprintf("has type %s", base)))
	return types.TypeUnknown
}

// checkListLit infers a homogeneous element type where possible and
// degrades to a dynamic element otherwise. An empty literal gets an
// inference variable so a later use can still pin it down.
func (c *checker) checkListLit(e *ast.ListLit) types.SemType {
	if len(e.Elts) == 0 {
		return types.NewList(c.ctx.TypeVars.Fresh())
	}
	elem := c.checkExpr(e.Elts[0])
	for _, elt := range e.Elts[1:] {
		t := c.checkExpr(elt)
		if types.Unify(elem, t) {
			continue
		}
		if types.Widens(elem, t) || types.Widens(t, elem) {
			elem = types.TypeFloat
			continue
		}
		elem = types.TypeUnknown
	}
	return types.NewList(elem)
}
