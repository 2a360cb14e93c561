package lexer

import (
	"fmt"
	"strings"

	"flarec/internal/diagnostics"
	"flarec/internal/source"
	"flarec/internal/tokens"
)

// Lexer scans one source buffer into a flat token stream. Block
// structure is synthesized from significant indentation: every logical
// line ends with NEWLINE, and changes in leading whitespace emit
// INDENT/DEDENT pairs against the indentation stack. Layout is
// suppressed inside bracket groups and inside f-string holes.
type Lexer struct {
	filePath string
	source   string
	limit    int
	pos      source.Position
	tokens   []tokens.Token
	bag      *diagnostics.DiagnosticBag

	indents     []int
	indentByte  byte // ' ' or '\t', fixed by the first indented line
	groupDepth  int  // nesting of (), [], {}
	atLineStart bool
}

func newLexer(filePath, src string, bag *diagnostics.DiagnosticBag) *Lexer {
	return &Lexer{
		filePath:    filePath,
		source:      src,
		limit:       len(src),
		pos:         source.Position{Line: 1, Column: 1, Index: 0},
		tokens:      make([]tokens.Token, 0, len(src)/4),
		bag:         bag,
		indents:     []int{0},
		atLineStart: true,
	}
}

// Tokenize scans the whole buffer and returns an EOF-terminated token
// stream. Lexical errors are reported to the bag and scanning resumes,
// so a single pass surfaces every lexical problem in the file.
func Tokenize(filePath, src string, bag *diagnostics.DiagnosticBag, debug bool) []tokens.Token {
	lex := newLexer(filePath, src, bag)
	lex.run()
	if debug {
		for i := range lex.tokens {
			lex.tokens[i].Debug(filePath)
		}
	}
	return lex.tokens
}

func (l *Lexer) run() {
	for !l.eof() {
		if l.atLineStart && l.groupDepth == 0 {
			if !l.startLine() {
				continue
			}
		}
		l.scanToken()
	}
	l.finish()
}

// startLine measures the leading whitespace of a logical line and emits
// the layout tokens it implies. Returns false when the line carries no
// tokens (blank, comment-only, or skipped after an indentation error).
func (l *Lexer) startLine() bool {
	start := l.pos
	width := 0
	mixed := false
	var lineByte byte
	for !l.eof() {
		ch := l.source[l.pos.Index]
		if ch != ' ' && ch != '\t' {
			break
		}
		if lineByte == 0 {
			lineByte = ch
		} else if ch != lineByte {
			mixed = true
		}
		width++
		l.advance(1)
	}

	// blank and comment-only lines carry no layout and must not fix the
	// file's indentation byte
	if l.eof() || l.cur() == '\n' || l.cur() == '\r' || l.cur() == '#' {
		l.skipRestOfLine()
		return false
	}

	l.atLineStart = false

	if lineByte != 0 {
		if l.indentByte == 0 {
			l.indentByte = lineByte
		} else if lineByte != l.indentByte {
			mixed = true
		}
	}

	if mixed {
		l.bag.Add(diagnostics.NewError("inconsistent indentation").
			WithCode(diagnostics.ErrInconsistentIndent).
			WithPrimaryLabel(l.locFrom(start), "mixes tabs and spaces").
			WithHelp("indent with spaces only or tabs only, not both"))
		l.skipRestOfLine()
		return false
	}

	top := l.indents[len(l.indents)-1]
	switch {
	case width > top:
		l.indents = append(l.indents, width)
		l.emit(tokens.INDENT_TOKEN, "", start)
	case width < top:
		for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
			l.indents = l.indents[:len(l.indents)-1]
			l.emit(tokens.DEDENT_TOKEN, "", start)
		}
		if l.indents[len(l.indents)-1] != width {
			l.bag.Add(diagnostics.NewError("inconsistent indentation").
				WithCode(diagnostics.ErrInconsistentIndent).
				WithPrimaryLabel(l.locFrom(start), "does not match any enclosing indentation level").
				WithNote(fmt.Sprintf("closest enclosing block is indented by %d", l.indents[len(l.indents)-1])))
			l.skipRestOfLine()
			return false
		}
	}
	return true
}

func (l *Lexer) scanToken() {
	ch := l.cur()
	switch {
	case ch == '\n':
		start := l.pos
		l.advance(1)
		if l.groupDepth == 0 {
			l.emit(tokens.NEWLINE_TOKEN, "\n", start)
			l.atLineStart = true
		}
	case ch == ' ' || ch == '\t' || ch == '\r':
		l.advance(1)
	case ch == '#':
		for !l.eof() && l.cur() != '\n' {
			l.advance(1)
		}
	case ch == 'f' && l.peekAt(1) == '"':
		l.scanFString()
	case isDigit(ch):
		l.scanNumber()
	case ch == '"':
		l.scanString()
	case isIdentStart(ch):
		l.scanIdentifier()
	default:
		l.scanOperator()
	}
}

func (l *Lexer) scanIdentifier() {
	start := l.pos
	for isIdentPart(l.cur()) {
		l.advance(1)
	}
	text := l.source[start.Index:l.pos.Index]
	kind := tokens.IDENTIFIER_TOKEN
	if tokens.IsKeyword(text) {
		// keyword token kinds are their own spellings
		kind = tokens.TOKEN(text)
	}
	l.emit(kind, text, start)
}

func (l *Lexer) scanNumber() {
	start := l.pos
	kind := tokens.INT_TOKEN
	l.takeDigits()
	if l.cur() == '.' && isDigit(l.peekAt(1)) {
		kind = tokens.FLOAT_TOKEN
		l.advance(1)
		l.takeDigits()
	}

	// A trailing letter or a second fraction makes the literal
	// malformed. Consume the whole run so the parser sees exactly one
	// error token instead of a number followed by garbage.
	if isIdentStart(l.cur()) || (l.cur() == '.' && isDigit(l.peekAt(1))) {
		for isIdentPart(l.cur()) || (l.cur() == '.' && isDigit(l.peekAt(1))) {
			l.advance(1)
		}
		text := l.source[start.Index:l.pos.Index]
		l.bag.Add(diagnostics.NewError(fmt.Sprintf("malformed numeric literal '%s'", text)).
			WithCode(diagnostics.ErrInvalidNumber).
			WithPrimaryLabel(l.locFrom(start), "not a valid number"))
		l.emit(tokens.ERROR_TOKEN, text, start)
		return
	}
	l.emit(kind, l.source[start.Index:l.pos.Index], start)
}

func (l *Lexer) scanString() {
	start := l.pos
	l.advance(1) // opening quote
	var text strings.Builder
	for {
		if l.eof() || l.cur() == '\n' {
			l.bag.Add(diagnostics.NewError("unterminated string literal").
				WithCode(diagnostics.ErrUnterminatedString).
				WithPrimaryLabel(l.locFrom(start), "string is never closed").
				WithHelp(`add a closing "`))
			l.emit(tokens.ERROR_TOKEN, l.source[start.Index:l.pos.Index], start)
			return
		}
		ch := l.cur()
		if ch == '"' {
			l.advance(1)
			break
		}
		if ch == '\\' {
			l.advance(1)
			text.WriteByte(unescape(l.cur()))
			l.advance(1)
			continue
		}
		text.WriteByte(ch)
		l.advance(1)
	}
	l.emit(tokens.STRING_TOKEN, text.String(), start)
}

// scanFString scans f"..." and attaches each {expression} hole as a
// re-tokenized sub-stream on the emitted token.
func (l *Lexer) scanFString() {
	start := l.pos
	l.advance(2) // f"
	var text strings.Builder
	var holes []tokens.Hole
	for {
		if l.eof() || l.cur() == '\n' {
			l.bag.Add(diagnostics.NewError("unterminated f-string literal").
				WithCode(diagnostics.ErrUnterminatedFString).
				WithPrimaryLabel(l.locFrom(start), "f-string is never closed").
				WithHelp(`add a closing "`))
			l.emit(tokens.ERROR_TOKEN, l.source[start.Index:l.pos.Index], start)
			return
		}
		ch := l.cur()
		switch {
		case ch == '"':
			l.advance(1)
			if text.Len() > 0 {
				holes = append(holes, tokens.Hole{Text: text.String()})
			}
			tok := tokens.NewToken(tokens.FSTRING_TOKEN, l.source[start.Index:l.pos.Index], start, l.pos)
			tok.Holes = holes
			l.tokens = append(l.tokens, tok)
			return
		case ch == '\\':
			l.advance(1)
			text.WriteByte(unescape(l.cur()))
			l.advance(1)
		case ch == '{' && l.peekAt(1) == '{':
			text.WriteByte('{')
			l.advance(2)
		case ch == '}' && l.peekAt(1) == '}':
			text.WriteByte('}')
			l.advance(2)
		case ch == '}':
			l.bag.Add(diagnostics.NewError("unbalanced '}' in f-string").
				WithCode(diagnostics.ErrUnbalancedInterpolant).
				WithPrimaryLabel(l.locFrom(l.pos), "has no matching '{'").
				WithHelp("escape a literal brace as '}}'"))
			l.advance(1)
		case ch == '{':
			l.advance(1)
			holeStart := l.pos
			if !l.skipToHoleEnd() {
				l.bag.Add(diagnostics.NewError("unbalanced '{' in f-string").
					WithCode(diagnostics.ErrUnbalancedInterpolant).
					WithPrimaryLabel(l.locFrom(holeStart), "interpolation hole is never closed").
					WithHelp("close the hole with '}' or escape a literal brace as '{{'"))
				l.emit(tokens.ERROR_TOKEN, l.source[start.Index:l.pos.Index], start)
				return
			}
			holes = append(holes, tokens.Hole{
				Text:   text.String(),
				Tokens: tokenizeHole(l.filePath, l.source, holeStart, l.pos.Index, l.bag),
			})
			text.Reset()
			l.advance(1) // closing }
		default:
			text.WriteByte(ch)
			l.advance(1)
		}
	}
}

// skipToHoleEnd advances to the '}' closing the current interpolation
// hole, honoring nested braces and string literals inside the hole.
// Returns false if the line or buffer ends first.
func (l *Lexer) skipToHoleEnd() bool {
	depth := 0
	for !l.eof() && l.cur() != '\n' {
		switch l.cur() {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return true
			}
			depth--
		case '"':
			l.advance(1)
			for !l.eof() && l.cur() != '"' && l.cur() != '\n' {
				if l.cur() == '\\' {
					l.advance(1)
				}
				l.advance(1)
			}
			if l.eof() || l.cur() == '\n' {
				return false
			}
		}
		l.advance(1)
	}
	return false
}

// tokenizeHole re-tokenizes one interpolation hole as an expression
// sub-stream with positions in the enclosing file.
func tokenizeHole(filePath, src string, start source.Position, end int, bag *diagnostics.DiagnosticBag) []tokens.Token {
	lex := newLexer(filePath, src, bag)
	lex.pos = start
	lex.limit = end
	lex.groupDepth = 1 // no layout inside a hole
	lex.atLineStart = false
	for !lex.eof() {
		lex.scanToken()
	}
	lex.emit(tokens.EOF_TOKEN, "", lex.pos)
	return lex.tokens
}

var twoCharOps = map[string]tokens.TOKEN{
	"**": tokens.POW_TOKEN,
	"==": tokens.DOUBLE_EQUAL_TOKEN,
	"!=": tokens.NOT_EQUAL_TOKEN,
	"<=": tokens.LESS_EQUAL_TOKEN,
	">=": tokens.GREATER_EQUAL_TOKEN,
	"<<": tokens.LSHIFT_TOKEN,
	">>": tokens.RSHIFT_TOKEN,
	"->": tokens.ARROW_TOKEN,
}

var oneCharOps = map[byte]tokens.TOKEN{
	'+': tokens.PLUS_TOKEN,
	'-': tokens.MINUS_TOKEN,
	'*': tokens.MUL_TOKEN,
	'/': tokens.DIV_TOKEN,
	'%': tokens.MOD_TOKEN,
	'<': tokens.LESS_TOKEN,
	'>': tokens.GREATER_TOKEN,
	'&': tokens.BIT_AND_TOKEN,
	'|': tokens.BIT_OR_TOKEN,
	'^': tokens.BIT_XOR_TOKEN,
	'=': tokens.EQUALS_TOKEN,
	'(': tokens.OPEN_PAREN,
	')': tokens.CLOSE_PAREN,
	'[': tokens.OPEN_BRACKET,
	']': tokens.CLOSE_BRACKET,
	'{': tokens.OPEN_CURLY,
	'}': tokens.CLOSE_CURLY,
	':': tokens.COLON_TOKEN,
	',': tokens.COMMA_TOKEN,
	'.': tokens.DOT_TOKEN,
	'@': tokens.AT_TOKEN,
}

func (l *Lexer) scanOperator() {
	start := l.pos
	if l.pos.Index+1 < l.limit {
		if kind, ok := twoCharOps[l.source[l.pos.Index:l.pos.Index+2]]; ok {
			l.advance(2)
			l.emit(kind, string(kind), start)
			return
		}
	}
	ch := l.cur()
	if kind, ok := oneCharOps[ch]; ok {
		switch ch {
		case '(', '[', '{':
			l.groupDepth++
		case ')', ']', '}':
			if l.groupDepth > 0 {
				l.groupDepth--
			}
		}
		l.advance(1)
		l.emit(kind, string(kind), start)
		return
	}

	l.advance(1)
	text := l.source[start.Index:l.pos.Index]
	l.bag.Add(diagnostics.NewError(fmt.Sprintf("unexpected character '%s'", text)).
		WithCode(diagnostics.ErrUnexpectedCharacter).
		WithPrimaryLabel(l.locFrom(start), "not valid here"))
	l.emit(tokens.ERROR_TOKEN, text, start)
}

// finish closes the last logical line, drains the indentation stack,
// and terminates the stream with EOF.
func (l *Lexer) finish() {
	if len(l.tokens) > 0 && !l.atLineStart {
		if l.tokens[len(l.tokens)-1].Kind != tokens.NEWLINE_TOKEN {
			l.emit(tokens.NEWLINE_TOKEN, "", l.pos)
		}
	}
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.emit(tokens.DEDENT_TOKEN, "", l.pos)
	}
	l.emit(tokens.EOF_TOKEN, "", l.pos)
}

func (l *Lexer) skipRestOfLine() {
	for !l.eof() && l.cur() != '\n' {
		l.advance(1)
	}
	if !l.eof() {
		l.advance(1)
	}
	l.atLineStart = true
}

func (l *Lexer) eof() bool {
	return l.pos.Index >= l.limit
}

func (l *Lexer) cur() byte {
	if l.eof() {
		return 0
	}
	return l.source[l.pos.Index]
}

func (l *Lexer) peekAt(n int) byte {
	if l.pos.Index+n >= l.limit {
		return 0
	}
	return l.source[l.pos.Index+n]
}

func (l *Lexer) advance(n int) {
	end := l.pos.Index + n
	if end > l.limit {
		end = l.limit
	}
	l.pos.Advance(l.source[l.pos.Index:end])
}

func (l *Lexer) takeDigits() {
	for isDigit(l.cur()) {
		l.advance(1)
	}
}

func (l *Lexer) emit(kind tokens.TOKEN, value string, start source.Position) {
	l.tokens = append(l.tokens, tokens.NewToken(kind, value, start, l.pos))
}

func (l *Lexer) locFrom(start source.Position) *source.Location {
	end := l.pos
	return source.NewLocation(&l.filePath, &start, &end)
}

func unescape(ch byte) byte {
	switch ch {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return ch
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
