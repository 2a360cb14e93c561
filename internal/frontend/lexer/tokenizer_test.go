package lexer

import (
	"testing"

	"flarec/internal/diagnostics"
	"flarec/internal/tokens"
)

func kindsOf(toks []tokens.Token) []tokens.TOKEN {
	kinds := make([]tokens.TOKEN, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	return kinds
}

func sameKinds(got []tokens.Token, want []tokens.TOKEN) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i].Kind != want[i] {
			return false
		}
	}
	return true
}

func TestTokenizeBasics(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tokens.TOKEN
	}{
		{
			name:  "simple assignment",
			input: "x = 42\n",
			want: []tokens.TOKEN{
				tokens.IDENTIFIER_TOKEN, tokens.EQUALS_TOKEN, tokens.INT_TOKEN,
				tokens.NEWLINE_TOKEN, tokens.EOF_TOKEN,
			},
		},
		{
			name:  "keywords are not identifiers",
			input: "if x and defer\n",
			want: []tokens.TOKEN{
				tokens.IF_TOKEN, tokens.IDENTIFIER_TOKEN, tokens.AND_TOKEN,
				tokens.IDENTIFIER_TOKEN, tokens.NEWLINE_TOKEN, tokens.EOF_TOKEN,
			},
		},
		{
			name:  "float literal",
			input: "pi = 3.14\n",
			want: []tokens.TOKEN{
				tokens.IDENTIFIER_TOKEN, tokens.EQUALS_TOKEN, tokens.FLOAT_TOKEN,
				tokens.NEWLINE_TOKEN, tokens.EOF_TOKEN,
			},
		},
		{
			name:  "multi char operators",
			input: "a ** b <= c << d -> e\n",
			want: []tokens.TOKEN{
				tokens.IDENTIFIER_TOKEN, tokens.POW_TOKEN, tokens.IDENTIFIER_TOKEN,
				tokens.LESS_EQUAL_TOKEN, tokens.IDENTIFIER_TOKEN, tokens.LSHIFT_TOKEN,
				tokens.IDENTIFIER_TOKEN, tokens.ARROW_TOKEN, tokens.IDENTIFIER_TOKEN,
				tokens.NEWLINE_TOKEN, tokens.EOF_TOKEN,
			},
		},
		{
			name:  "comment only line emits nothing",
			input: "# a comment\nx = 1\n",
			want: []tokens.TOKEN{
				tokens.IDENTIFIER_TOKEN, tokens.EQUALS_TOKEN, tokens.INT_TOKEN,
				tokens.NEWLINE_TOKEN, tokens.EOF_TOKEN,
			},
		},
		{
			name:  "missing trailing newline is synthesized",
			input: "x = 1",
			want: []tokens.TOKEN{
				tokens.IDENTIFIER_TOKEN, tokens.EQUALS_TOKEN, tokens.INT_TOKEN,
				tokens.NEWLINE_TOKEN, tokens.EOF_TOKEN,
			},
		},
		{
			name:  "layout suppressed inside parens",
			input: "f(1,\n  2)\n",
			want: []tokens.TOKEN{
				tokens.IDENTIFIER_TOKEN, tokens.OPEN_PAREN, tokens.INT_TOKEN,
				tokens.COMMA_TOKEN, tokens.INT_TOKEN, tokens.CLOSE_PAREN,
				tokens.NEWLINE_TOKEN, tokens.EOF_TOKEN,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := diagnostics.NewDiagnosticBag()
			got := Tokenize("test.flr", tt.input, bag, false)
			if bag.HasErrors() {
				t.Fatalf("unexpected errors:\n%s", bag.ReportString())
			}
			if !sameKinds(got, tt.want) {
				t.Errorf("kinds = %v, want %v", kindsOf(got), tt.want)
			}
		})
	}
}

func TestIndentationLayout(t *testing.T) {
	src := "def f():\n    if x:\n        return 1\n    return 2\n"
	bag := diagnostics.NewDiagnosticBag()
	toks := Tokenize("test.flr", src, bag, false)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors:\n%s", bag.ReportString())
	}

	indents, dedents := 0, 0
	depth := 0
	for _, tok := range toks {
		switch tok.Kind {
		case tokens.INDENT_TOKEN:
			indents++
			depth++
		case tokens.DEDENT_TOKEN:
			dedents++
			depth--
		}
		if depth < 0 {
			t.Fatalf("dedent without matching indent at %d:%d", tok.Start.Line, tok.Start.Column)
		}
	}
	if indents != 2 || dedents != 2 {
		t.Errorf("indents = %d, dedents = %d, want 2 and 2", indents, dedents)
	}
	if depth != 0 {
		t.Errorf("unbalanced layout, final depth %d", depth)
	}
}

func TestIndentDedentAlwaysBalance(t *testing.T) {
	// file ends while still indented; the lexer must drain the stack
	src := "while x:\n    if y:\n        pass"
	bag := diagnostics.NewDiagnosticBag()
	toks := Tokenize("test.flr", src, bag, false)

	depth := 0
	for _, tok := range toks {
		switch tok.Kind {
		case tokens.INDENT_TOKEN:
			depth++
		case tokens.DEDENT_TOKEN:
			depth--
		}
	}
	if depth != 0 {
		t.Errorf("unbalanced layout, final depth %d", depth)
	}
	if toks[len(toks)-1].Kind != tokens.EOF_TOKEN {
		t.Errorf("stream not EOF-terminated, last token %v", toks[len(toks)-1].Kind)
	}
}

func TestInconsistentIndentation(t *testing.T) {
	// second line mixes a tab into space indentation; third line is fine
	src := "if x:\n    pass\n \ty = 1\nz = 2\n"
	bag := diagnostics.NewDiagnosticBag()
	toks := Tokenize("test.flr", src, bag, false)

	if bag.ErrorCount() != 1 {
		t.Fatalf("errors = %d, want 1\n%s", bag.ErrorCount(), bag.ReportString())
	}
	report := bag.Report()
	if report[0].Code != diagnostics.ErrInconsistentIndent {
		t.Errorf("code = %s, want %s", report[0].Code, diagnostics.ErrInconsistentIndent)
	}

	// lexing resumed: z = 2 is still tokenized
	sawZ := false
	for _, tok := range toks {
		if tok.Kind == tokens.IDENTIFIER_TOKEN && tok.Value == "z" {
			sawZ = true
		}
	}
	if !sawZ {
		t.Error("lexer did not resume at the next line boundary")
	}
}

func TestBlankLineIndentationDoesNotFixStyle(t *testing.T) {
	// a tab-only blank line carries no layout and must not decide the
	// file's indentation byte for the space-indented lines after it
	src := "\t\nif x:\n    y = 1\n"
	bag := diagnostics.NewDiagnosticBag()
	Tokenize("test.flr", src, bag, false)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors:\n%s", bag.ReportString())
	}
}

func TestMalformedNumber(t *testing.T) {
	src := "x = 12abc\ny = 1\n"
	bag := diagnostics.NewDiagnosticBag()
	toks := Tokenize("test.flr", src, bag, false)

	if bag.ErrorCount() != 1 {
		t.Fatalf("errors = %d, want 1\n%s", bag.ErrorCount(), bag.ReportString())
	}
	report := bag.Report()
	if report[0].Code != diagnostics.ErrInvalidNumber {
		t.Errorf("code = %s, want %s", report[0].Code, diagnostics.ErrInvalidNumber)
	}

	errorToks := 0
	for _, tok := range toks {
		if tok.Kind == tokens.ERROR_TOKEN {
			errorToks++
			if tok.Value != "12abc" {
				t.Errorf("error token value = %q, want %q", tok.Value, "12abc")
			}
		}
	}
	if errorToks != 1 {
		t.Errorf("error tokens = %d, want 1", errorToks)
	}
}

func TestUnterminatedString(t *testing.T) {
	src := "s = \"abc\nx = 1\n"
	bag := diagnostics.NewDiagnosticBag()
	Tokenize("test.flr", src, bag, false)

	if bag.ErrorCount() != 1 {
		t.Fatalf("errors = %d, want 1\n%s", bag.ErrorCount(), bag.ReportString())
	}
	if bag.Report()[0].Code != diagnostics.ErrUnterminatedString {
		t.Errorf("code = %s, want %s", bag.Report()[0].Code, diagnostics.ErrUnterminatedString)
	}
}

func TestStringEscapes(t *testing.T) {
	src := "s = \"a\\n\\\"b\\\"\"\n"
	bag := diagnostics.NewDiagnosticBag()
	toks := Tokenize("test.flr", src, bag, false)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors:\n%s", bag.ReportString())
	}
	if toks[2].Kind != tokens.STRING_TOKEN {
		t.Fatalf("token = %v, want string literal", toks[2].Kind)
	}
	if toks[2].Value != "a\n\"b\"" {
		t.Errorf("value = %q, want %q", toks[2].Value, "a\n\"b\"")
	}
}

func TestFStringHoles(t *testing.T) {
	src := "msg = f\"a {x} b {y + 1}\"\n"
	bag := diagnostics.NewDiagnosticBag()
	toks := Tokenize("test.flr", src, bag, false)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors:\n%s", bag.ReportString())
	}

	fstr := toks[2]
	if fstr.Kind != tokens.FSTRING_TOKEN {
		t.Fatalf("token = %v, want f-string literal", fstr.Kind)
	}
	if len(fstr.Holes) != 2 {
		t.Fatalf("holes = %d, want 2", len(fstr.Holes))
	}

	first := fstr.Holes[0]
	if first.Text != "a " {
		t.Errorf("first text = %q, want %q", first.Text, "a ")
	}
	if !sameKinds(first.Tokens, []tokens.TOKEN{tokens.IDENTIFIER_TOKEN, tokens.EOF_TOKEN}) {
		t.Errorf("first hole kinds = %v", kindsOf(first.Tokens))
	}

	second := fstr.Holes[1]
	if second.Text != " b " {
		t.Errorf("second text = %q, want %q", second.Text, " b ")
	}
	if !sameKinds(second.Tokens, []tokens.TOKEN{
		tokens.IDENTIFIER_TOKEN, tokens.PLUS_TOKEN, tokens.INT_TOKEN, tokens.EOF_TOKEN,
	}) {
		t.Errorf("second hole kinds = %v", kindsOf(second.Tokens))
	}
}

func TestFStringHolePositions(t *testing.T) {
	src := "msg = f\"{value}\"\n"
	bag := diagnostics.NewDiagnosticBag()
	toks := Tokenize("test.flr", src, bag, false)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors:\n%s", bag.ReportString())
	}

	fstr := toks[2]
	hole := fstr.Holes[0].Tokens[0]
	// hole positions point into the enclosing file, not the fragment
	if hole.Start.Line != 1 || hole.Start.Column != 10 {
		t.Errorf("hole start = %d:%d, want 1:10", hole.Start.Line, hole.Start.Column)
	}
	if !fstrLocEncloses(fstr, hole) {
		t.Error("hole span escapes the f-string span")
	}
}

func fstrLocEncloses(outer, inner tokens.Token) bool {
	if inner.Start.Before(outer.Start) {
		return false
	}
	return !outer.End.Before(inner.End)
}

func TestFStringEscapedBraces(t *testing.T) {
	src := "s = f\"{{literal}}\"\n"
	bag := diagnostics.NewDiagnosticBag()
	toks := Tokenize("test.flr", src, bag, false)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors:\n%s", bag.ReportString())
	}
	fstr := toks[2]
	if len(fstr.Holes) != 1 || fstr.Holes[0].Tokens != nil {
		t.Fatalf("want a single text-only segment, got %d holes", len(fstr.Holes))
	}
	if fstr.Holes[0].Text != "{literal}" {
		t.Errorf("text = %q, want %q", fstr.Holes[0].Text, "{literal}")
	}
}

func TestSingleLexicalErrorRecovery(t *testing.T) {
	// one malformed literal; everything after it still tokenizes cleanly
	src := "a = 1.2.3\nb = a + 1\n"
	bag := diagnostics.NewDiagnosticBag()
	toks := Tokenize("test.flr", src, bag, false)

	if bag.ErrorCount() != 1 {
		t.Fatalf("errors = %d, want exactly 1\n%s", bag.ErrorCount(), bag.ReportString())
	}
	sawPlus := false
	for _, tok := range toks {
		if tok.Kind == tokens.PLUS_TOKEN {
			sawPlus = true
		}
	}
	if !sawPlus {
		t.Error("tokens after the malformed literal were lost")
	}
}
