package parser

import (
	"fmt"

	"flarec/internal/diagnostics"
	"flarec/internal/frontend/ast"
	"flarec/internal/frontend/lexer"
	"flarec/internal/source"
	"flarec/internal/tokens"
)

// Parser builds one Module AST per source file from the lexer's token
// stream. Syntax errors recover at the next statement boundary
// (NEWLINE at the current nesting, or DEDENT), so a single pass reports
// every syntax error in the file.
type Parser struct {
	filePath string
	tokens   []tokens.Token
	pos      int
	bag      *diagnostics.DiagnosticBag

	// asyncDepth tracks whether the innermost enclosing function is
	// async, for validating await placement
	asyncDepth []bool
}

// NewParser tokenizes the source and prepares a parser over the stream
func NewParser(filePath, src string, bag *diagnostics.DiagnosticBag, debug bool) *Parser {
	return &Parser{
		filePath: filePath,
		tokens:   lexer.Tokenize(filePath, src, bag, debug),
		bag:      bag,
	}
}

// newSubParser parses a re-tokenized f-string hole sub-stream. It
// shares the bag and the async context of the enclosing parser.
func (p *Parser) newSubParser(stream []tokens.Token) *Parser {
	return &Parser{
		filePath:   p.filePath,
		tokens:     stream,
		bag:        p.bag,
		asyncDepth: p.asyncDepth,
	}
}

// Parse consumes the whole stream and returns the module root. The
// module is returned even when syntax errors occurred; callers consult
// the bag to decide whether later phases are worthwhile.
func (p *Parser) Parse() *ast.Module {
	nodes := make([]ast.Node, 0)
	for !p.check(tokens.EOF_TOKEN) {
		if p.match(tokens.NEWLINE_TOKEN) {
			continue
		}
		if stmt := p.parseStatement(); stmt != nil {
			nodes = append(nodes, stmt)
		}
	}

	loc := source.Location{Filename: &p.filePath}
	if len(p.tokens) > 0 {
		start := p.tokens[0].Start
		end := p.tokens[len(p.tokens)-1].End
		loc.Start, loc.End = &start, &end
	}
	return &ast.Module{
		FullPath: p.filePath,
		Nodes:    nodes,
		Location: loc,
	}
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Kind {
	case tokens.AT_TOKEN, tokens.DEF_TOKEN, tokens.ASYNC_TOKEN,
		tokens.CLASS_TOKEN, tokens.ACTOR_TOKEN, tokens.ENUM_TOKEN:
		return p.parseDeclaration()
	case tokens.STATE_TOKEN:
		return p.parseStateBlock()
	case tokens.IF_TOKEN:
		return p.parseIf()
	case tokens.WHILE_TOKEN:
		return p.parseWhile()
	case tokens.FOR_TOKEN:
		return p.parseFor()
	case tokens.MATCH_TOKEN:
		return p.parseMatch()
	case tokens.IMPORT_TOKEN:
		return p.parseImport()
	case tokens.PUBLIC_TOKEN, tokens.PRIVATE_TOKEN:
		return p.parseVisibility()
	case tokens.RETURN_TOKEN:
		return p.parseReturn()
	case tokens.PASS_TOKEN:
		tok := p.advance()
		p.endOfStatement()
		return &ast.PassStmt{Location: p.locOf(tok)}
	case tokens.INDENT_TOKEN:
		tok := p.advance()
		p.report(diagnostics.NewError("unexpected indentation").
			WithCode(diagnostics.ErrUnexpectedToken).
			WithPrimaryLabel(p.locPtr(tok), "this block belongs to no statement"))
		p.syncStatement()
		return nil
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseExprStatement() ast.Statement {
	start := p.cur().Start
	x := p.parseExpression()
	p.endOfStatement()
	return &ast.ExprStmt{X: x, Location: p.spanFrom(start)}
}

func (p *Parser) parseReturn() ast.Statement {
	tok := p.advance()
	var result ast.Expression
	if !p.check(tokens.NEWLINE_TOKEN) && !p.check(tokens.EOF_TOKEN) && !p.check(tokens.DEDENT_TOKEN) {
		result = p.parseExpression()
	}
	p.endOfStatement()
	return &ast.ReturnStmt{Result: result, Location: p.spanFrom(tok.Start)}
}

func (p *Parser) parseIf() ast.Statement {
	tok := p.advance()
	cond := p.parseExpression()
	body := p.parseBlock()

	var elseNode ast.Node
	switch p.cur().Kind {
	case tokens.ELIF_TOKEN:
		// an elif chain is sugar for a nested if
		elseNode = p.parseIf()
	case tokens.ELSE_TOKEN:
		p.advance()
		elseNode = p.parseBlock()
	}
	return &ast.IfStmt{Cond: cond, Body: body, Else: elseNode, Location: p.spanFrom(tok.Start)}
}

func (p *Parser) parseWhile() ast.Statement {
	tok := p.advance()
	cond := p.parseExpression()
	body := p.parseBlock()
	return &ast.WhileStmt{Cond: cond, Body: body, Location: p.spanFrom(tok.Start)}
}

func (p *Parser) parseFor() ast.Statement {
	tok := p.advance()
	name := p.parseIdentifier("loop variable")
	p.expect(tokens.IN_TOKEN)
	iter := p.parseExpression()
	body := p.parseBlock()
	return &ast.ForStmt{Var: name, Iter: iter, Body: body, Location: p.spanFrom(tok.Start)}
}

func (p *Parser) parseImport() ast.Statement {
	tok := p.advance()
	path := p.parseModulePath()
	var alias *ast.IdentifierExpr
	if p.match(tokens.AS_TOKEN) {
		alias = p.parseIdentifier("import alias")
	}
	p.endOfStatement()
	return &ast.ImportStmt{Path: path, Alias: alias, Location: p.spanFrom(tok.Start)}
}

// parseModulePath accepts either a quoted path or a dotted identifier
// sequence (import utils.math), normalized to a string literal node.
func (p *Parser) parseModulePath() *ast.BasicLit {
	if p.check(tokens.STRING_TOKEN) {
		tok := p.advance()
		return &ast.BasicLit{Kind: ast.STRING, Value: tok.Value, Location: p.locOf(tok)}
	}
	start := p.cur().Start
	name := p.parseIdentifier("module path")
	path := name.Name
	for p.match(tokens.DOT_TOKEN) {
		seg := p.parseIdentifier("module path segment")
		path += "." + seg.Name
	}
	return &ast.BasicLit{Kind: ast.STRING, Value: path, Location: p.spanFrom(start)}
}

func (p *Parser) parseVisibility() ast.Statement {
	tok := p.advance()
	public := tok.Kind == tokens.PUBLIC_TOKEN
	p.expect(tokens.COLON_TOKEN)
	names := make([]*ast.IdentifierExpr, 0)
	for {
		names = append(names, p.parseIdentifier("exported name"))
		if !p.match(tokens.COMMA_TOKEN) {
			break
		}
	}
	p.endOfStatement()
	return &ast.VisibilityStmt{Public: public, Names: names, Location: p.spanFrom(tok.Start)}
}

// parseBlock parses an indented suite, or a single inline statement
// after the colon (if x: return 1)
func (p *Parser) parseBlock() *ast.Block {
	start := p.cur().Start
	if _, ok := p.expect(tokens.COLON_TOKEN); !ok {
		p.syncStatement()
		return &ast.Block{Location: p.spanFrom(start)}
	}

	if !p.check(tokens.NEWLINE_TOKEN) {
		stmt := p.parseStatement()
		block := &ast.Block{Location: p.spanFrom(start)}
		if stmt != nil {
			block.Nodes = []ast.Node{stmt}
		}
		return block
	}

	p.advance() // NEWLINE
	if _, ok := p.expect(tokens.INDENT_TOKEN); !ok {
		p.syncStatement()
		return &ast.Block{Location: p.spanFrom(start)}
	}

	nodes := make([]ast.Node, 0)
	for !p.check(tokens.DEDENT_TOKEN) && !p.check(tokens.EOF_TOKEN) {
		if p.match(tokens.NEWLINE_TOKEN) {
			continue
		}
		if stmt := p.parseStatement(); stmt != nil {
			nodes = append(nodes, stmt)
		}
	}
	p.match(tokens.DEDENT_TOKEN)
	return &ast.Block{Nodes: nodes, Location: p.spanFrom(start)}
}

// endOfStatement consumes the statement terminator. A missing NEWLINE
// is a syntax error; recovery skips to the next statement boundary.
func (p *Parser) endOfStatement() {
	switch p.cur().Kind {
	case tokens.NEWLINE_TOKEN:
		p.advance()
	case tokens.EOF_TOKEN, tokens.DEDENT_TOKEN:
		// block or file end also terminates the statement
	default:
		tok := p.cur()
		p.report(diagnostics.NewError(fmt.Sprintf("unexpected %s after statement", describe(tok))).
			WithCode(diagnostics.ErrUnexpectedToken).
			WithPrimaryLabel(p.locPtr(tok), "expected the statement to end here"))
		p.syncStatement()
	}
}

// syncStatement skips to the next statement boundary: just past the
// next NEWLINE, or at a DEDENT/EOF (left for the block parser).
func (p *Parser) syncStatement() {
	for {
		switch p.cur().Kind {
		case tokens.NEWLINE_TOKEN:
			p.advance()
			return
		case tokens.DEDENT_TOKEN, tokens.EOF_TOKEN:
			return
		}
		p.advance()
	}
}

func (p *Parser) parseIdentifier(what string) *ast.IdentifierExpr {
	if p.check(tokens.IDENTIFIER_TOKEN) {
		tok := p.advance()
		return &ast.IdentifierExpr{Name: tok.Value, Location: p.locOf(tok)}
	}
	tok := p.cur()
	p.report(diagnostics.NewError(fmt.Sprintf("expected %s, found %s", what, describe(tok))).
		WithCode(diagnostics.ErrMissingIdentifier).
		WithPrimaryLabel(p.locPtr(tok), fmt.Sprintf("%s expected here", what)))
	return &ast.IdentifierExpr{Name: "", Location: p.locOf(tok)}
}

func (p *Parser) cur() tokens.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek(n int) tokens.Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) advance() tokens.Token {
	tok := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind tokens.TOKEN) bool {
	return p.cur().Kind == kind
}

func (p *Parser) match(kinds ...tokens.TOKEN) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) expect(kind tokens.TOKEN) (tokens.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	tok := p.cur()
	p.report(diagnostics.NewError(fmt.Sprintf("expected '%s', found %s", kind, describe(tok))).
		WithCode(diagnostics.ErrExpectedToken).
		WithPrimaryLabel(p.locPtr(tok), fmt.Sprintf("expected '%s'", kind)))
	return tok, false
}

func (p *Parser) report(d *diagnostics.Diagnostic) {
	p.bag.Add(d)
}

// locOf builds the location value of a single token
func (p *Parser) locOf(tok tokens.Token) source.Location {
	start, end := tok.Start, tok.End
	return source.Location{Filename: &p.filePath, Start: &start, End: &end}
}

// locPtr builds a location pointer for diagnostics
func (p *Parser) locPtr(tok tokens.Token) *source.Location {
	loc := p.locOf(tok)
	return &loc
}

// spanFrom builds the location from a start position to the end of the
// previously consumed token
func (p *Parser) spanFrom(start source.Position) source.Location {
	end := start
	if p.pos > 0 {
		end = p.tokens[p.pos-1].End
	}
	return source.Location{Filename: &p.filePath, Start: &start, End: &end}
}

func describe(tok tokens.Token) string {
	switch tok.Kind {
	case tokens.EOF_TOKEN:
		return "end of file"
	case tokens.NEWLINE_TOKEN:
		return "end of line"
	case tokens.INDENT_TOKEN:
		return "indentation"
	case tokens.DEDENT_TOKEN:
		return "end of block"
	case tokens.IDENTIFIER_TOKEN:
		return fmt.Sprintf("identifier '%s'", tok.Value)
	default:
		return fmt.Sprintf("'%s'", tok.Value)
	}
}
