package types

// Unification solves type-variable constraints in place. The rules follow
// the gradual-typing discipline: Unknown unifies with anything without
// error, deferring the real check to runtime.

// VarPool allocates type-variable identifiers for one compilation run.
// Unbound variables render by their ID (T1, T2, ...) and those names
// reach user-facing messages, so the counter lives on the run, never on
// the process: repeated compilations of the same input name their
// variables identically.
type VarPool struct {
	next int
}

func NewVarPool() *VarPool {
	return &VarPool{}
}

// Fresh creates a new unbound type variable. Call sites of generic
// functions get one fresh variable per type parameter.
func (p *VarPool) Fresh() *TypeVar {
	p.next++
	return &TypeVar{ID: p.next}
}

// Unify attempts to make a and b equal by binding type variables.
// Returns false when the two types cannot be reconciled. Unify never
// reports a conflict involving Unknown.
func Unify(a, b SemType) bool {
	a = Resolve(a)
	b = Resolve(b)

	if IsUnknown(a) || IsUnknown(b) {
		return true
	}

	if av, ok := a.(*TypeVar); ok {
		if bv, ok := b.(*TypeVar); ok && av == bv {
			return true
		}
		if occurs(av, b) {
			return false
		}
		av.Ref = b
		return true
	}
	if bv, ok := b.(*TypeVar); ok {
		if occurs(bv, a) {
			return false
		}
		bv.Ref = a
		return true
	}

	switch at := a.(type) {
	case *PrimitiveType:
		return at.Equals(b)
	case *ListType:
		bt, ok := b.(*ListType)
		return ok && Unify(at.Element, bt.Element)
	case *FuncType:
		bt, ok := b.(*FuncType)
		if !ok || len(at.Params) != len(bt.Params) {
			return false
		}
		for i := range at.Params {
			if !Unify(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return Unify(at.Return, bt.Return)
	case *ClassType, *ActorType, *EnumType, *ModuleType, *GenericType:
		return a.Equals(b)
	default:
		return false
	}
}

// occurs reports whether tv appears inside t, which would make a binding
// cyclic.
func occurs(tv *TypeVar, t SemType) bool {
	t = Resolve(t)
	switch tt := t.(type) {
	case *TypeVar:
		return tt == tv
	case *ListType:
		return occurs(tv, tt.Element)
	case *FuncType:
		for _, p := range tt.Params {
			if occurs(tv, p) {
				return true
			}
		}
		return occurs(tv, tt.Return)
	default:
		return false
	}
}

// Instantiate replaces every generic-parameter occurrence in a function
// signature with a fresh type variable, one per type parameter. The
// returned signature is what a call site unifies its arguments against.
func Instantiate(f *FuncType, vars *VarPool) *FuncType {
	if len(f.TypeParams) == 0 {
		return f
	}
	subst := make(map[string]*TypeVar, len(f.TypeParams))
	for _, name := range f.TypeParams {
		subst[name] = vars.Fresh()
	}
	params := make([]SemType, len(f.Params))
	for i, p := range f.Params {
		params[i] = substitute(p, subst)
	}
	return &FuncType{
		Params:  params,
		Return:  substitute(f.Return, subst),
		IsAsync: f.IsAsync,
		Dynamic: f.Dynamic,
	}
}

func substitute(t SemType, subst map[string]*TypeVar) SemType {
	switch tt := Resolve(t).(type) {
	case *GenericType:
		if tv, ok := subst[tt.Name]; ok {
			return tv
		}
		return tt
	case *ListType:
		return NewList(substitute(tt.Element, subst))
	case *FuncType:
		params := make([]SemType, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = substitute(p, subst)
		}
		return &FuncType{
			Params:  params,
			Return:  substitute(tt.Return, subst),
			IsAsync: tt.IsAsync,
			Dynamic: tt.Dynamic,
		}
	default:
		return t
	}
}

// Widens reports whether a value of type `from` may be used where `to` is
// expected via the implicit widening table. The complete table is a single
// rule: int widens to float.
func Widens(from, to SemType) bool {
	f, ok1 := Resolve(from).(*PrimitiveType)
	t, ok2 := Resolve(to).(*PrimitiveType)
	if !ok1 || !ok2 {
		return false
	}
	return f.name == TYPE_INT && t.name == TYPE_FLOAT
}

// Assignable reports whether a value of type `from` can be assigned to a
// target annotated `to`: exact match, implicit widening, or either side
// dynamically typed.
func Assignable(from, to SemType) bool {
	from = Resolve(from)
	to = Resolve(to)
	if IsUnknown(from) || IsUnknown(to) {
		return true
	}
	if Unify(from, to) {
		return true
	}
	return Widens(from, to)
}
