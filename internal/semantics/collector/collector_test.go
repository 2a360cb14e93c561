package collector

import (
	"testing"

	"flarec/internal/context"
	"flarec/internal/frontend/parser"
	"flarec/internal/semantics/symbols"
	"flarec/internal/types"
)

func collect(t *testing.T, src string) (*context.CompilerContext, *context.Module) {
	t.Helper()
	ctx := context.New(context.Config{RootDir: "/proj"})
	ctx.Reports.AddSourceContent("/proj/main.flr", src)
	module := &context.Module{Path: "main", FilePath: "/proj/main.flr", Source: src}
	module.AST = parser.NewParser("/proj/main.flr", src, ctx.Reports, false).Parse()
	ctx.AddModule(module)
	CollectSymbols(ctx, module)
	return ctx, module
}

func countCode(ctx *context.CompilerContext, code string) int {
	n := 0
	for _, d := range ctx.Reports.Report() {
		if d.Code == code {
			n++
		}
	}
	return n
}

func TestCollectTopLevelDeclarations(t *testing.T) {
	src := `def greet(name: str) -> str:
    return name

class Point:
    pass

actor Counter:
    pass

enum Result:
    Success(str)
    Failure(int)
`
	ctx, module := collect(t, src)
	if ctx.Reports.ErrorCount() != 0 {
		t.Fatalf("unexpected errors:\n%s", ctx.Reports.ReportString())
	}

	want := map[string]symbols.SymbolKind{
		"greet":   symbols.FunctionSymbol,
		"Point":   symbols.ClassSymbol,
		"Counter": symbols.ActorSymbol,
		"Result":  symbols.EnumSymbol,
		"Success": symbols.VariantSymbol,
		"Failure": symbols.VariantSymbol,
	}
	for name, kind := range want {
		sym, ok := module.Scope.LookupLocal(name)
		if !ok {
			t.Fatalf("symbol %q not collected", name)
		}
		if sym.Kind != kind {
			t.Errorf("%q: kind = %v, want %v", name, sym.Kind, kind)
		}
	}
}

func TestFunctionSignature(t *testing.T) {
	src := `def add(a: int, b: int) -> int:
    return a + b
`
	_, module := collect(t, src)
	sym, ok := module.Scope.LookupLocal("add")
	if !ok {
		t.Fatal("add not collected")
	}
	fn, ok := sym.Type.(*types.FuncType)
	if !ok {
		t.Fatalf("add typed as %T, want *types.FuncType", sym.Type)
	}
	if len(fn.Params) != 2 || !fn.Params[0].Equals(types.TypeInt) || !fn.Params[1].Equals(types.TypeInt) {
		t.Errorf("params = %v", fn.Params)
	}
	if !fn.Return.Equals(types.TypeInt) {
		t.Errorf("return = %s, want int", fn.Return)
	}
	if fn.Dynamic {
		t.Error("annotated function marked dynamic")
	}
}

func TestGenericSignature(t *testing.T) {
	src := `def first<T>(items: [T]) -> T:
    return items[0]
`
	_, module := collect(t, src)
	sym, _ := module.Scope.LookupLocal("first")
	fn, ok := sym.Type.(*types.FuncType)
	if !ok {
		t.Fatalf("first typed as %T", sym.Type)
	}
	list, ok := fn.Params[0].(*types.ListType)
	if !ok {
		t.Fatalf("param = %s, want a list", fn.Params[0])
	}
	if g, ok := list.Element.(*types.GenericType); !ok || g.Name != "T" {
		t.Errorf("element = %s, want generic T", list.Element)
	}
	if g, ok := fn.Return.(*types.GenericType); !ok || g.Name != "T" {
		t.Errorf("return = %s, want generic T", fn.Return)
	}
	if fn.Dynamic {
		t.Error("generic function marked dynamic")
	}
}

func TestUnannotatedFunctionIsDynamic(t *testing.T) {
	src := `def mystery(a, b):
    return a
`
	_, module := collect(t, src)
	sym, _ := module.Scope.LookupLocal("mystery")
	fn := sym.Type.(*types.FuncType)
	if !fn.Dynamic {
		t.Error("function without annotations should be dynamic")
	}
	if !types.IsUnknown(fn.Params[0]) || !types.IsUnknown(fn.Params[1]) {
		t.Errorf("params = %v, want unknowns", fn.Params)
	}
}

func TestEnumVariantPayloads(t *testing.T) {
	src := `enum Shape:
    Circle(float)
    Rect(float, float)
    Empty
`
	_, module := collect(t, src)
	sym, _ := module.Scope.LookupLocal("Shape")
	enum := sym.Type.(*types.EnumType)
	if len(enum.Variants) != 3 {
		t.Fatalf("variants = %d, want 3", len(enum.Variants))
	}
	rect, ok := enum.VariantOf("Rect")
	if !ok || len(rect.Params) != 2 {
		t.Fatalf("Rect = %+v", rect)
	}
	if !rect.Params[0].Equals(types.TypeFloat) {
		t.Errorf("Rect payload = %s, want float", rect.Params[0])
	}
	empty, _ := enum.VariantOf("Empty")
	if len(empty.Params) != 0 {
		t.Errorf("Empty carries %d params", len(empty.Params))
	}
}

func TestModuleVariablesAreCollected(t *testing.T) {
	src := `offset = 10
_cache = 0
`
	ctx, module := collect(t, src)
	if ctx.Reports.ErrorCount() != 0 {
		t.Fatalf("unexpected errors:\n%s", ctx.Reports.ReportString())
	}
	sym, ok := module.Scope.LookupLocal("offset")
	if !ok {
		t.Fatal("offset not collected at module scope")
	}
	if sym.Kind != symbols.VariableSymbol {
		t.Errorf("offset kind = %v, want %v", sym.Kind, symbols.VariableSymbol)
	}
	if !module.Exports["offset"] {
		t.Error("offset should be exported by default")
	}
	if module.Exports["_cache"] {
		t.Error("_cache should be private by default")
	}
}

func TestRepeatedModuleWritesAreOneVariable(t *testing.T) {
	src := `x = 1
x = 2
`
	ctx, module := collect(t, src)
	if got := countCode(ctx, "R0002"); got != 0 {
		t.Errorf("R0002 count = %d, want 0:\n%s", got, ctx.Reports.ReportString())
	}
	if _, ok := module.Scope.LookupLocal("x"); !ok {
		t.Error("x not collected")
	}
}

func TestRedeclaredSymbol(t *testing.T) {
	src := `def twice(x: int) -> int:
    return x * 2

def twice(x: int) -> int:
    return x + x
`
	ctx, _ := collect(t, src)
	if got := countCode(ctx, "R0002"); got != 1 {
		t.Errorf("R0002 count = %d, want 1:\n%s", got, ctx.Reports.ReportString())
	}
}

func TestDefaultExportsSkipUnderscore(t *testing.T) {
	src := `def load():
    pass

def _helper():
    pass
`
	_, module := collect(t, src)
	if !module.Exports["load"] {
		t.Error("load should be exported by default")
	}
	if module.Exports["_helper"] {
		t.Error("_helper should be private by default")
	}
}

func TestExplicitPublicListWins(t *testing.T) {
	src := `public: load

def load():
    pass

def save():
    pass
`
	_, module := collect(t, src)
	if !module.Exports["load"] {
		t.Error("load listed public, should be exported")
	}
	if module.Exports["save"] {
		t.Error("save not on the public list, should be private")
	}
}

func TestPrivateList(t *testing.T) {
	src := `private: secret

def secret():
    pass

def open_api():
    pass
`
	_, module := collect(t, src)
	if module.Exports["secret"] {
		t.Error("secret listed private, should not be exported")
	}
	if !module.Exports["open_api"] {
		t.Error("open_api should stay exported")
	}
}

func TestConflictingVisibility(t *testing.T) {
	src := `public: thing
private: thing

def thing():
    pass
`
	ctx, _ := collect(t, src)
	if got := countCode(ctx, "R0006"); got != 1 {
		t.Errorf("R0006 count = %d, want 1:\n%s", got, ctx.Reports.ReportString())
	}
}

func TestImportsAreNeverReExported(t *testing.T) {
	src := `import utils

x = 1
`
	_, module := collect(t, src)
	if module.Exports["utils"] {
		t.Error("imported module must not be re-exported")
	}
}

func TestUnknownAnnotation(t *testing.T) {
	src := `def f(x: Widget) -> int:
    return 0
`
	ctx, _ := collect(t, src)
	if got := countCode(ctx, "T0007"); got != 1 {
		t.Errorf("T0007 count = %d, want 1:\n%s", got, ctx.Reports.ReportString())
	}
}
