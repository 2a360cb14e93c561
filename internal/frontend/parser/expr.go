package parser

import (
	"fmt"

	"flarec/internal/diagnostics"
	"flarec/internal/frontend/ast"
	"flarec/internal/source"
	"flarec/internal/tokens"
)

// Expression precedence, lowest first:
//
//	assignment (right-assoc)
//	or
//	and
//	not
//	comparison  == != < > <= >=
//	bitwise or
//	bitwise xor
//	bitwise and
//	shift       << >>
//	additive    + -
//	multiplicative * / %
//	power ** (right-assoc), unary minus, await
//	call, index, selector (postfix, highest)
func (p *Parser) parseExpression() ast.Expression {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() ast.Expression {
	target := p.parseOr()
	if !p.check(tokens.EQUALS_TOKEN) {
		return target
	}
	p.advance() // =
	value := p.parseAssignment()

	switch target.(type) {
	case *ast.IdentifierExpr, *ast.SelectorExpr, *ast.IndexExpr, *ast.Invalid:
	default:
		p.report(diagnostics.NewError("invalid assignment target").
			WithCode(diagnostics.ErrInvalidExpression).
			WithPrimaryLabel(target.Loc(), "cannot be assigned to").
			WithHelp("assign to a name, a field, or an index"))
	}
	return &ast.AssignExpr{
		Target:   target,
		Value:    value,
		Location: p.spanLoc(target, value),
	}
}

func (p *Parser) parseOr() ast.Expression {
	left := p.parseAnd()
	for p.check(tokens.OR_TOKEN) {
		op := p.advance()
		right := p.parseAnd()
		left = &ast.BinaryExpr{X: left, Op: op, Y: right, Location: p.spanLoc(left, right)}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expression {
	left := p.parseNot()
	for p.check(tokens.AND_TOKEN) {
		op := p.advance()
		right := p.parseNot()
		left = &ast.BinaryExpr{X: left, Op: op, Y: right, Location: p.spanLoc(left, right)}
	}
	return left
}

func (p *Parser) parseNot() ast.Expression {
	if p.check(tokens.NOT_TOKEN) {
		op := p.advance()
		x := p.parseNot()
		loc := p.locOf(op)
		loc.End = x.Loc().End
		return &ast.UnaryExpr{Op: op, X: x, Location: loc}
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() ast.Expression {
	left := p.parseBitOr()
	for p.check(tokens.DOUBLE_EQUAL_TOKEN) || p.check(tokens.NOT_EQUAL_TOKEN) ||
		p.check(tokens.LESS_TOKEN) || p.check(tokens.GREATER_TOKEN) ||
		p.check(tokens.LESS_EQUAL_TOKEN) || p.check(tokens.GREATER_EQUAL_TOKEN) {
		op := p.advance()
		right := p.parseBitOr()
		left = &ast.BinaryExpr{X: left, Op: op, Y: right, Location: p.spanLoc(left, right)}
	}
	return left
}

func (p *Parser) parseBitOr() ast.Expression {
	left := p.parseBitXor()
	for p.check(tokens.BIT_OR_TOKEN) {
		op := p.advance()
		right := p.parseBitXor()
		left = &ast.BinaryExpr{X: left, Op: op, Y: right, Location: p.spanLoc(left, right)}
	}
	return left
}

func (p *Parser) parseBitXor() ast.Expression {
	left := p.parseBitAnd()
	for p.check(tokens.BIT_XOR_TOKEN) {
		op := p.advance()
		right := p.parseBitAnd()
		left = &ast.BinaryExpr{X: left, Op: op, Y: right, Location: p.spanLoc(left, right)}
	}
	return left
}

func (p *Parser) parseBitAnd() ast.Expression {
	left := p.parseShift()
	for p.check(tokens.BIT_AND_TOKEN) {
		op := p.advance()
		right := p.parseShift()
		left = &ast.BinaryExpr{X: left, Op: op, Y: right, Location: p.spanLoc(left, right)}
	}
	return left
}

func (p *Parser) parseShift() ast.Expression {
	left := p.parseAdditive()
	for p.check(tokens.LSHIFT_TOKEN) || p.check(tokens.RSHIFT_TOKEN) {
		op := p.advance()
		right := p.parseAdditive()
		left = &ast.BinaryExpr{X: left, Op: op, Y: right, Location: p.spanLoc(left, right)}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expression {
	left := p.parseMultiplicative()
	for p.check(tokens.PLUS_TOKEN) || p.check(tokens.MINUS_TOKEN) {
		op := p.advance()
		right := p.parseMultiplicative()
		left = &ast.BinaryExpr{X: left, Op: op, Y: right, Location: p.spanLoc(left, right)}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expression {
	left := p.parseUnary()
	for p.check(tokens.MUL_TOKEN) || p.check(tokens.DIV_TOKEN) || p.check(tokens.MOD_TOKEN) {
		op := p.advance()
		right := p.parseUnary()
		left = &ast.BinaryExpr{X: left, Op: op, Y: right, Location: p.spanLoc(left, right)}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expression {
	switch p.cur().Kind {
	case tokens.MINUS_TOKEN:
		op := p.advance()
		x := p.parseUnary()
		loc := p.locOf(op)
		loc.End = x.Loc().End
		return &ast.UnaryExpr{Op: op, X: x, Location: loc}
	case tokens.AWAIT_TOKEN:
		tok := p.advance()
		if !p.insideAsync() {
			p.report(diagnostics.NewError("'await' outside an async function").
				WithCode(diagnostics.ErrMisplacedAwait).
				WithPrimaryLabel(p.locPtr(tok), "only valid inside 'async def'").
				WithHelp("mark the enclosing function 'async def'"))
		}
		x := p.parseUnary()
		loc := p.locOf(tok)
		loc.End = x.Loc().End
		return &ast.AwaitExpr{X: x, Location: loc}
	}
	return p.parsePower()
}

// parsePower handles ** as right-associative: 2 ** 3 ** 2 is 2 ** (3 ** 2)
func (p *Parser) parsePower() ast.Expression {
	base := p.parsePostfix()
	if !p.check(tokens.POW_TOKEN) {
		return base
	}
	op := p.advance()
	exp := p.parseUnary()
	return &ast.BinaryExpr{X: base, Op: op, Y: exp, Location: p.spanLoc(base, exp)}
}

func (p *Parser) parsePostfix() ast.Expression {
	x := p.parsePrimary()
	for {
		switch p.cur().Kind {
		case tokens.OPEN_PAREN:
			p.advance()
			args := make([]ast.Expression, 0)
			if !p.check(tokens.CLOSE_PAREN) {
				for {
					args = append(args, p.parseExpression())
					if !p.match(tokens.COMMA_TOKEN) {
						break
					}
				}
			}
			closing, _ := p.expect(tokens.CLOSE_PAREN)
			loc := *x.Loc()
			end := closing.End
			loc.End = &end
			x = &ast.CallExpr{Fun: x, Args: args, Location: loc}
		case tokens.OPEN_BRACKET:
			p.advance()
			index := p.parseExpression()
			closing, _ := p.expect(tokens.CLOSE_BRACKET)
			loc := *x.Loc()
			end := closing.End
			loc.End = &end
			x = &ast.IndexExpr{X: x, Index: index, Location: loc}
		case tokens.DOT_TOKEN:
			p.advance()
			field := p.parseIdentifier("field name")
			loc := *x.Loc()
			loc.End = field.Loc().End
			x = &ast.SelectorExpr{X: x, Field: field, Location: loc}
		default:
			return x
		}
	}
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.cur()
	switch tok.Kind {
	case tokens.INT_TOKEN:
		p.advance()
		return &ast.BasicLit{Kind: ast.INT, Value: tok.Value, Location: p.locOf(tok)}
	case tokens.FLOAT_TOKEN:
		p.advance()
		return &ast.BasicLit{Kind: ast.FLOAT, Value: tok.Value, Location: p.locOf(tok)}
	case tokens.STRING_TOKEN:
		p.advance()
		return &ast.BasicLit{Kind: ast.STRING, Value: tok.Value, Location: p.locOf(tok)}
	case tokens.TRUE_TOKEN, tokens.FALSE_TOKEN:
		p.advance()
		return &ast.BasicLit{Kind: ast.BOOL, Value: tok.Value, Location: p.locOf(tok)}
	case tokens.NONE_TOKEN:
		p.advance()
		return &ast.BasicLit{Kind: ast.NONE, Value: tok.Value, Location: p.locOf(tok)}
	case tokens.FSTRING_TOKEN:
		p.advance()
		return p.parseFString(tok)
	case tokens.IDENTIFIER_TOKEN:
		p.advance()
		return &ast.IdentifierExpr{Name: tok.Value, Location: p.locOf(tok)}
	case tokens.OPEN_PAREN:
		p.advance()
		x := p.parseExpression()
		p.expect(tokens.CLOSE_PAREN)
		return x
	case tokens.OPEN_BRACKET:
		return p.parseListLit()
	case tokens.ERROR_TOKEN:
		// the lexer already reported this span
		p.advance()
		return &ast.Invalid{Location: p.locOf(tok)}
	}
	return p.invalidExpr(tok)
}

func (p *Parser) parseListLit() ast.Expression {
	open := p.advance()
	elts := make([]ast.Expression, 0)
	if !p.check(tokens.CLOSE_BRACKET) {
		for {
			elts = append(elts, p.parseExpression())
			if !p.match(tokens.COMMA_TOKEN) {
				break
			}
			// allow a trailing comma before the closing bracket
			if p.check(tokens.CLOSE_BRACKET) {
				break
			}
		}
	}
	closing, _ := p.expect(tokens.CLOSE_BRACKET)
	start, end := open.Start, closing.End
	return &ast.ListLit{Elts: elts, Location: source.Location{Filename: &p.filePath, Start: &start, End: &end}}
}

// parseFString turns the token's text/hole segments into an
// interpolated string expression, parsing each hole's sub-stream as a
// full expression.
func (p *Parser) parseFString(tok tokens.Token) ast.Expression {
	parts := make([]ast.FStringPart, 0, len(tok.Holes))
	for _, hole := range tok.Holes {
		if hole.Text != "" {
			parts = append(parts, ast.FStringPart{Text: hole.Text})
		}
		if hole.Tokens == nil {
			continue
		}
		sub := p.newSubParser(hole.Tokens)
		x := sub.parseExpression()
		if !sub.check(tokens.EOF_TOKEN) {
			bad := sub.cur()
			p.report(diagnostics.NewError(fmt.Sprintf("unexpected %s in f-string hole", describe(bad))).
				WithCode(diagnostics.ErrUnexpectedToken).
				WithPrimaryLabel(p.locPtr(bad), "one expression per hole"))
		}
		parts = append(parts, ast.FStringPart{X: x})
	}
	return &ast.FStringExpr{Parts: parts, Location: p.locOf(tok)}
}

func (p *Parser) invalidExpr(tok tokens.Token) ast.Expression {
	p.report(diagnostics.NewError(fmt.Sprintf("expected an expression, found %s", describe(tok))).
		WithCode(diagnostics.ErrInvalidExpression).
		WithPrimaryLabel(p.locPtr(tok), "expression expected here"))
	// consume the offender so the parser always makes progress, but
	// leave statement terminators for the recovery machinery
	switch tok.Kind {
	case tokens.NEWLINE_TOKEN, tokens.DEDENT_TOKEN, tokens.EOF_TOKEN:
	default:
		p.advance()
	}
	return &ast.Invalid{Location: p.locOf(tok)}
}

func (p *Parser) insideAsync() bool {
	return len(p.asyncDepth) > 0 && p.asyncDepth[len(p.asyncDepth)-1]
}

// spanLoc covers two expressions end to end
func (p *Parser) spanLoc(from, to ast.Expression) source.Location {
	loc := source.Location{Filename: &p.filePath}
	if f := from.Loc(); f != nil {
		loc.Start = f.Start
	}
	if t := to.Loc(); t != nil {
		loc.End = t.End
	}
	return loc
}
