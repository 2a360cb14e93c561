package tokens

import (
	"fmt"
	"os"

	"flarec/colors"
	"flarec/internal/source"
)

type TOKEN string

const (
	//keywords
	DEF_TOKEN     TOKEN = "def"
	CLASS_TOKEN   TOKEN = "class"
	ACTOR_TOKEN   TOKEN = "actor"
	STATE_TOKEN   TOKEN = "state"
	ENUM_TOKEN    TOKEN = "enum"
	IF_TOKEN      TOKEN = "if"
	ELIF_TOKEN    TOKEN = "elif"
	ELSE_TOKEN    TOKEN = "else"
	WHILE_TOKEN   TOKEN = "while"
	FOR_TOKEN     TOKEN = "for"
	IN_TOKEN      TOKEN = "in"
	MATCH_TOKEN   TOKEN = "match"
	CASE_TOKEN    TOKEN = "case"
	RETURN_TOKEN  TOKEN = "return"
	PASS_TOKEN    TOKEN = "pass"
	IMPORT_TOKEN  TOKEN = "import"
	AS_TOKEN      TOKEN = "as"
	PUBLIC_TOKEN  TOKEN = "public"
	PRIVATE_TOKEN TOKEN = "private"
	ASYNC_TOKEN   TOKEN = "async"
	AWAIT_TOKEN   TOKEN = "await"
	AND_TOKEN     TOKEN = "and"
	OR_TOKEN      TOKEN = "or"
	NOT_TOKEN     TOKEN = "not"
	TRUE_TOKEN    TOKEN = "true"
	FALSE_TOKEN   TOKEN = "false"
	NONE_TOKEN    TOKEN = "none"

	//literals
	IDENTIFIER_TOKEN TOKEN = "identifier"
	INT_TOKEN        TOKEN = "integer literal"
	FLOAT_TOKEN      TOKEN = "float literal"
	STRING_TOKEN     TOKEN = "string literal"
	FSTRING_TOKEN    TOKEN = "f-string literal"

	//arithmetic operators
	PLUS_TOKEN  TOKEN = "+"
	MINUS_TOKEN TOKEN = "-"
	MUL_TOKEN   TOKEN = "*"
	DIV_TOKEN   TOKEN = "/"
	MOD_TOKEN   TOKEN = "%"
	POW_TOKEN   TOKEN = "**"

	//comparison operators
	DOUBLE_EQUAL_TOKEN  TOKEN = "=="
	NOT_EQUAL_TOKEN     TOKEN = "!="
	LESS_TOKEN          TOKEN = "<"
	GREATER_TOKEN       TOKEN = ">"
	LESS_EQUAL_TOKEN    TOKEN = "<="
	GREATER_EQUAL_TOKEN TOKEN = ">="

	//bitwise operators
	BIT_AND_TOKEN TOKEN = "&"
	BIT_OR_TOKEN  TOKEN = "|"
	BIT_XOR_TOKEN TOKEN = "^"
	LSHIFT_TOKEN  TOKEN = "<<"
	RSHIFT_TOKEN  TOKEN = ">>"

	//assignment
	EQUALS_TOKEN TOKEN = "="

	//delimiters
	OPEN_PAREN    TOKEN = "("
	CLOSE_PAREN   TOKEN = ")"
	OPEN_BRACKET  TOKEN = "["
	CLOSE_BRACKET TOKEN = "]"
	OPEN_CURLY    TOKEN = "{"
	CLOSE_CURLY   TOKEN = "}"
	COLON_TOKEN   TOKEN = ":"
	COMMA_TOKEN   TOKEN = ","
	DOT_TOKEN     TOKEN = "."
	ARROW_TOKEN   TOKEN = "->"
	AT_TOKEN      TOKEN = "@"

	//layout (synthesized by the lexer from significant indentation)
	NEWLINE_TOKEN TOKEN = "newline"
	INDENT_TOKEN  TOKEN = "indent"
	DEDENT_TOKEN  TOKEN = "dedent"

	//special
	EOF_TOKEN   TOKEN = "end_of_file"
	ERROR_TOKEN TOKEN = "error"
)

var keyWordsMap = map[TOKEN]bool{
	DEF_TOKEN:     true,
	CLASS_TOKEN:   true,
	ACTOR_TOKEN:   true,
	STATE_TOKEN:   true,
	ENUM_TOKEN:    true,
	IF_TOKEN:      true,
	ELIF_TOKEN:    true,
	ELSE_TOKEN:    true,
	WHILE_TOKEN:   true,
	FOR_TOKEN:     true,
	IN_TOKEN:      true,
	MATCH_TOKEN:   true,
	CASE_TOKEN:    true,
	RETURN_TOKEN:  true,
	PASS_TOKEN:    true,
	IMPORT_TOKEN:  true,
	AS_TOKEN:      true,
	PUBLIC_TOKEN:  true,
	PRIVATE_TOKEN: true,
	ASYNC_TOKEN:   true,
	AWAIT_TOKEN:   true,
	AND_TOKEN:     true,
	OR_TOKEN:      true,
	NOT_TOKEN:     true,
	TRUE_TOKEN:    true,
	FALSE_TOKEN:   true,
	NONE_TOKEN:    true,
}

func IsKeyword(token string) bool {
	_, ok := keyWordsMap[TOKEN(token)]
	return ok
}

// Hole is one segment of an f-string literal: the literal text since the
// previous hole, followed by that hole's re-tokenized sub-stream. A
// trailing text-only segment carries nil Tokens. Sub-streams end with an
// EOF token so they feed straight into the expression parser.
type Hole struct {
	Text   string
	Tokens []Token
}

type Token struct {
	Kind  TOKEN
	Value string
	Start source.Position
	End   source.Position

	// Holes carries the nested token streams of f-string interpolation
	// holes, in source order. Nil for every other token kind.
	Holes []Hole
}

func (t *Token) Debug(filename string) {
	colors.GREY.Fprintf(os.Stderr, "%s:%d:%d ", filename, t.Start.Line, t.Start.Column)
	if t.Value == string(t.Kind) {
		fmt.Fprintf(os.Stderr, "%q\n", t.Value)
	} else {
		fmt.Fprintf(os.Stderr, "%q ('%v')\n", t.Value, t.Kind)
	}
}

func NewToken(kind TOKEN, value string, start source.Position, end source.Position) Token {
	return Token{
		Kind:  kind,
		Value: value,
		Start: start,
		End:   end,
	}
}
