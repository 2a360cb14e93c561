package types

import "testing"

func TestUnifyPrimitives(t *testing.T) {
	if !Unify(TypeInt, TypeInt) {
		t.Error("int should unify with int")
	}
	if Unify(TypeInt, TypeString) {
		t.Error("int should not unify with str")
	}
}

func TestUnknownUnifiesWithEverything(t *testing.T) {
	cases := []SemType{TypeInt, TypeString, NewList(TypeFloat), &EnumType{Name: "Result"}}
	for _, c := range cases {
		if !Unify(TypeUnknown, c) || !Unify(c, TypeUnknown) {
			t.Errorf("unknown should unify with %s", c)
		}
	}
}

func TestVarPoolCountsPerRun(t *testing.T) {
	a := NewVarPool()
	b := NewVarPool()
	first := a.Fresh()
	if first.ID != 1 {
		t.Errorf("first ID = %d, want 1", first.ID)
	}
	// a fresh pool restarts: separate runs name their variables alike
	if got := b.Fresh().ID; got != first.ID {
		t.Errorf("fresh pool starts at %d, want %d", got, first.ID)
	}
	if a.Fresh().ID != 2 {
		t.Error("IDs within one pool must stay distinct")
	}
}

func TestTypeVarBindsInPlace(t *testing.T) {
	tv := NewVarPool().Fresh()
	if !Unify(tv, TypeInt) {
		t.Fatal("fresh var should unify with int")
	}
	if !Resolve(tv).Equals(TypeInt) {
		t.Errorf("var resolved to %s, want int", Resolve(tv))
	}
	// a bound var behaves as its binding
	if Unify(tv, TypeString) {
		t.Error("int-bound var should not unify with str")
	}
}

func TestOccursCheck(t *testing.T) {
	tv := NewVarPool().Fresh()
	if Unify(tv, NewList(tv)) {
		t.Error("binding T = [T] must fail the occurs check")
	}
}

func TestUnifyListsStructurally(t *testing.T) {
	tv := NewVarPool().Fresh()
	if !Unify(NewList(tv), NewList(TypeInt)) {
		t.Fatal("element variables should unify through lists")
	}
	if !Resolve(tv).Equals(TypeInt) {
		t.Errorf("element var = %s, want int", Resolve(tv))
	}
}

func TestInstantiateMakesFreshVariables(t *testing.T) {
	generic := &FuncType{
		TypeParams: []string{"T"},
		Params:     []SemType{NewList(&GenericType{Name: "T"})},
		Return:     &GenericType{Name: "T"},
	}

	vars := NewVarPool()
	first := Instantiate(generic, vars)
	if !Unify(first.Params[0], NewList(TypeInt)) {
		t.Fatal("instantiated param should accept [int]")
	}
	if !Resolve(first.Return).Equals(TypeInt) {
		t.Errorf("return = %s, want int", Resolve(first.Return))
	}

	// a second call site gets independent variables
	second := Instantiate(generic, vars)
	if !Unify(second.Params[0], NewList(TypeString)) {
		t.Fatal("second instantiation should accept [str]")
	}
	if !Resolve(second.Return).Equals(TypeString) {
		t.Errorf("return = %s, want str", Resolve(second.Return))
	}
	if !Resolve(first.Return).Equals(TypeInt) {
		t.Error("second instantiation must not disturb the first")
	}

	// the declared signature itself stays generic
	if _, ok := generic.Return.(*GenericType); !ok {
		t.Error("instantiation must not mutate the declared signature")
	}
}

func TestWidensIntToFloatOnly(t *testing.T) {
	if !Widens(TypeInt, TypeFloat) {
		t.Error("int should widen to float")
	}
	if Widens(TypeFloat, TypeInt) {
		t.Error("float must not narrow to int")
	}
	if Widens(TypeInt, TypeString) {
		t.Error("int must not widen to str")
	}
}

func TestAssignable(t *testing.T) {
	tests := []struct {
		from, to SemType
		want     bool
	}{
		{TypeInt, TypeInt, true},
		{TypeInt, TypeFloat, true},
		{TypeFloat, TypeInt, false},
		{TypeString, TypeInt, false},
		{TypeUnknown, TypeInt, true},
		{TypeInt, TypeUnknown, true},
		{NewList(TypeInt), NewList(TypeInt), true},
		{NewList(TypeInt), NewList(TypeString), false},
	}
	for _, tt := range tests {
		if got := Assignable(tt.from, tt.to); got != tt.want {
			t.Errorf("Assignable(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestEnumEqualityIsNominal(t *testing.T) {
	a := &EnumType{Name: "Result"}
	b := &EnumType{Name: "Result"}
	c := &EnumType{Name: "Color"}
	if !Unify(a, b) {
		t.Error("same-named enums should unify")
	}
	if Unify(a, c) {
		t.Error("different enums must not unify")
	}
}
