package parser

import (
	"fmt"

	"flarec/internal/diagnostics"
	"flarec/internal/frontend/ast"
	"flarec/internal/tokens"
)

// parseMatch parses match expr: with an indented list of case clauses.
// A guard (case P if cond:) belongs to its case clause.
func (p *Parser) parseMatch() ast.Statement {
	match := p.advance()
	expr := p.parseExpression()
	p.expect(tokens.COLON_TOKEN)
	p.expect(tokens.NEWLINE_TOKEN)
	if _, ok := p.expect(tokens.INDENT_TOKEN); !ok {
		p.syncStatement()
		return &ast.MatchStmt{Expr: expr, Location: p.spanFrom(match.Start)}
	}

	var cases []*ast.CaseClause
	for !p.check(tokens.DEDENT_TOKEN) && !p.check(tokens.EOF_TOKEN) {
		if p.match(tokens.NEWLINE_TOKEN) {
			continue
		}
		if !p.check(tokens.CASE_TOKEN) {
			tok := p.cur()
			p.report(diagnostics.NewError(fmt.Sprintf("expected 'case', found %s", describe(tok))).
				WithCode(diagnostics.ErrUnexpectedToken).
				WithPrimaryLabel(p.locPtr(tok), "match bodies contain only case clauses"))
			p.syncStatement()
			continue
		}
		cases = append(cases, p.parseCase())
	}
	p.match(tokens.DEDENT_TOKEN)
	return &ast.MatchStmt{Expr: expr, Cases: cases, Location: p.spanFrom(match.Start)}
}

func (p *Parser) parseCase() *ast.CaseClause {
	caseTok := p.advance()
	pattern := p.parsePattern()
	var guard ast.Expression
	if p.match(tokens.IF_TOKEN) {
		guard = p.parseExpression()
	}
	body := p.parseBlock()
	return &ast.CaseClause{
		Pattern:  pattern,
		Guard:    guard,
		Body:     body,
		Location: p.spanFrom(caseTok.Start),
	}
}

// parsePattern parses one match pattern: a literal, a wildcard (_), a
// binding name, or a constructor with subpatterns, optionally qualified
// by its enum (Result.Success(v)).
func (p *Parser) parsePattern() ast.Pattern {
	tok := p.cur()
	switch tok.Kind {
	case tokens.INT_TOKEN:
		p.advance()
		return &ast.LiteralPattern{
			Lit:      &ast.BasicLit{Kind: ast.INT, Value: tok.Value, Location: p.locOf(tok)},
			Location: p.locOf(tok),
		}
	case tokens.FLOAT_TOKEN:
		p.advance()
		return &ast.LiteralPattern{
			Lit:      &ast.BasicLit{Kind: ast.FLOAT, Value: tok.Value, Location: p.locOf(tok)},
			Location: p.locOf(tok),
		}
	case tokens.STRING_TOKEN:
		p.advance()
		return &ast.LiteralPattern{
			Lit:      &ast.BasicLit{Kind: ast.STRING, Value: tok.Value, Location: p.locOf(tok)},
			Location: p.locOf(tok),
		}
	case tokens.TRUE_TOKEN, tokens.FALSE_TOKEN:
		p.advance()
		return &ast.LiteralPattern{
			Lit:      &ast.BasicLit{Kind: ast.BOOL, Value: tok.Value, Location: p.locOf(tok)},
			Location: p.locOf(tok),
		}
	case tokens.NONE_TOKEN:
		p.advance()
		return &ast.LiteralPattern{
			Lit:      &ast.BasicLit{Kind: ast.NONE, Value: tok.Value, Location: p.locOf(tok)},
			Location: p.locOf(tok),
		}
	case tokens.MINUS_TOKEN:
		// negative numeric literal pattern
		minus := p.advance()
		num := p.cur()
		if num.Kind != tokens.INT_TOKEN && num.Kind != tokens.FLOAT_TOKEN {
			return p.invalidPattern(num)
		}
		p.advance()
		kind := ast.INT
		if num.Kind == tokens.FLOAT_TOKEN {
			kind = ast.FLOAT
		}
		loc := p.spanFrom(minus.Start)
		return &ast.LiteralPattern{
			Lit:      &ast.BasicLit{Kind: kind, Value: "-" + num.Value, Location: loc},
			Location: loc,
		}
	case tokens.IDENTIFIER_TOKEN:
		return p.parseNamePattern()
	}
	return p.invalidPattern(tok)
}

func (p *Parser) parseNamePattern() ast.Pattern {
	tok := p.advance()
	if tok.Value == "_" {
		return &ast.WildcardPattern{Location: p.locOf(tok)}
	}

	name := &ast.IdentifierExpr{Name: tok.Value, Location: p.locOf(tok)}

	// qualified constructor: Result.Success(...)
	var enum *ast.IdentifierExpr
	if p.check(tokens.DOT_TOKEN) {
		p.advance()
		enum = name
		name = p.parseIdentifier("variant name")
	}

	if !p.check(tokens.OPEN_PAREN) {
		if enum != nil {
			// bare qualified variant: Result.Empty
			return &ast.ConstructorPattern{Enum: enum, Name: name, Location: p.spanFrom(tok.Start)}
		}
		return &ast.BindingPattern{Name: name, Location: p.locOf(tok)}
	}

	p.advance() // (
	var subs []ast.Pattern
	if !p.check(tokens.CLOSE_PAREN) {
		for {
			subs = append(subs, p.parsePattern())
			if !p.match(tokens.COMMA_TOKEN) {
				break
			}
		}
	}
	p.expect(tokens.CLOSE_PAREN)
	return &ast.ConstructorPattern{
		Enum:     enum,
		Name:     name,
		Subs:     subs,
		Location: p.spanFrom(tok.Start),
	}
}

func (p *Parser) invalidPattern(tok tokens.Token) ast.Pattern {
	p.report(diagnostics.NewError(fmt.Sprintf("expected a pattern, found %s", describe(tok))).
		WithCode(diagnostics.ErrInvalidPattern).
		WithPrimaryLabel(p.locPtr(tok), "pattern expected here").
		WithHelp("a pattern is a literal, a name, '_', or a variant constructor"))
	if tok.Kind != tokens.NEWLINE_TOKEN && tok.Kind != tokens.DEDENT_TOKEN &&
		tok.Kind != tokens.EOF_TOKEN && tok.Kind != tokens.COLON_TOKEN {
		p.advance()
	}
	return &ast.WildcardPattern{Location: p.locOf(tok)}
}
