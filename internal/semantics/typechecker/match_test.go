package typechecker

import (
	"strings"
	"testing"
)

func TestNonExhaustiveMatchWarnsOnce(t *testing.T) {
	src := `enum Result:
    Success(str)
    Failure(int)

def report(r: Result):
    match r:
        case Success(msg):
            print(msg)
`
	ctx, _ := check(t, src)
	if got := countCode(ctx, "W0002"); got != 1 {
		t.Fatalf("W0002 count = %d, want 1:\n%s", got, ctx.Reports.ReportString())
	}
	for _, d := range ctx.Reports.Report() {
		if d.Code == "W0002" && !strings.Contains(d.Labels[0].Message, "Failure") {
			t.Errorf("warning should name the missing variant, got %q", d.Labels[0].Message)
		}
	}
}

func TestWildcardMakesMatchExhaustive(t *testing.T) {
	src := `enum Result:
    Success(str)
    Failure(int)

def report(r: Result):
    match r:
        case Success(msg):
            print(msg)
        case _:
            pass
`
	ctx, _ := check(t, src)
	if got := countCode(ctx, "W0002"); got != 0 {
		t.Errorf("W0002 count = %d, want 0:\n%s", got, ctx.Reports.ReportString())
	}
}

func TestAllVariantsCovered(t *testing.T) {
	src := `enum Result:
    Success(str)
    Failure(int)

def report(r: Result):
    match r:
        case Success(msg):
            print(msg)
        case Failure(code):
            print(code)
`
	ctx, _ := check(t, src)
	if got := countCode(ctx, "W0002"); got != 0 {
		t.Errorf("W0002 count = %d, want 0:\n%s", got, ctx.Reports.ReportString())
	}
}

func TestGuardedCatchAllCoversNothing(t *testing.T) {
	src := `enum Result:
    Success(str)
    Failure(int)

def report(r: Result):
    match r:
        case Success(msg) if msg != "":
            print(msg)
        case x if x != r:
            pass
`
	ctx, _ := check(t, src)
	if got := countCode(ctx, "W0002"); got != 1 {
		t.Errorf("W0002 count = %d, want 1:\n%s", got, ctx.Reports.ReportString())
	}
}

func TestUnreachableAfterCatchAll(t *testing.T) {
	src := `def report(v):
    match v:
        case _:
            pass
        case 1:
            pass
`
	ctx, _ := check(t, src)
	if got := countCode(ctx, "W0005"); got != 1 {
		t.Errorf("W0005 count = %d, want 1:\n%s", got, ctx.Reports.ReportString())
	}
}

func TestCrossEnumPatternUnreachable(t *testing.T) {
	src := `enum Result:
    Success(str)

enum Color:
    Red
    Blue

def report(r: Result):
    match r:
        case Color.Red:
            pass
        case _:
            pass
`
	ctx, _ := check(t, src)
	if got := countCode(ctx, "W0005"); got != 1 {
		t.Errorf("W0005 count = %d, want 1:\n%s", got, ctx.Reports.ReportString())
	}
}

func TestPatternBindingsTakeScrutineeType(t *testing.T) {
	src := `def sign(n: int) -> int:
    match n:
        case 0:
            return 0
        case x:
            return x
`
	ctx, _ := check(t, src)
	if ctx.Reports.ErrorCount() != 0 {
		t.Errorf("binding should take the scrutinee's type:\n%s", ctx.Reports.ReportString())
	}
}

func TestWrongSubpatternArity(t *testing.T) {
	src := `enum Result:
    Success(str)

def report(r: Result):
    match r:
        case Success(a, b):
            pass
        case _:
            pass
`
	ctx, _ := check(t, src)
	if got := countCode(ctx, "T0003"); got != 1 {
		t.Errorf("T0003 count = %d, want 1:\n%s", got, ctx.Reports.ReportString())
	}
}
