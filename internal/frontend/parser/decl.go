package parser

import (
	"fmt"

	"flarec/internal/diagnostics"
	"flarec/internal/frontend/ast"
	"flarec/internal/tokens"
)

// parseDeclaration handles def/class/actor/enum, including any
// annotation lines (@parallel, @target("gpu")) stacked above them.
// Annotations are carried as opaque metadata on the declaration node.
func (p *Parser) parseDeclaration() ast.Statement {
	annotations := p.parseAnnotations()

	switch p.cur().Kind {
	case tokens.ASYNC_TOKEN:
		p.advance()
		if !p.check(tokens.DEF_TOKEN) {
			tok := p.cur()
			p.report(diagnostics.NewError(fmt.Sprintf("expected 'def' after 'async', found %s", describe(tok))).
				WithCode(diagnostics.ErrInvalidDeclaration).
				WithPrimaryLabel(p.locPtr(tok), "'async' only modifies function definitions"))
			p.syncStatement()
			return nil
		}
		return p.parseFunc(annotations, true)
	case tokens.DEF_TOKEN:
		return p.parseFunc(annotations, false)
	case tokens.CLASS_TOKEN:
		return p.parseClass(annotations)
	case tokens.ACTOR_TOKEN:
		return p.parseActor(annotations)
	case tokens.ENUM_TOKEN:
		return p.parseEnum(annotations)
	}

	tok := p.cur()
	p.report(diagnostics.NewError(fmt.Sprintf("expected a declaration, found %s", describe(tok))).
		WithCode(diagnostics.ErrInvalidDeclaration).
		WithPrimaryLabel(p.locPtr(tok), "annotations must be followed by def, class, actor, or enum"))
	p.syncStatement()
	return nil
}

func (p *Parser) parseAnnotations() []*ast.Annotation {
	var annotations []*ast.Annotation
	for p.check(tokens.AT_TOKEN) {
		at := p.advance()
		name := p.parseIdentifier("annotation name")
		ann := &ast.Annotation{Name: name, Location: p.spanFrom(at.Start)}
		if p.match(tokens.OPEN_PAREN) {
			if !p.check(tokens.CLOSE_PAREN) {
				for {
					ann.Args = append(ann.Args, p.parseExpression())
					if !p.match(tokens.COMMA_TOKEN) {
						break
					}
				}
			}
			p.expect(tokens.CLOSE_PAREN)
		}
		ann.Location = p.spanFrom(at.Start)
		annotations = append(annotations, ann)
		p.match(tokens.NEWLINE_TOKEN)
	}
	return annotations
}

func (p *Parser) parseFunc(annotations []*ast.Annotation, isAsync bool) ast.Statement {
	def := p.advance()
	name := p.parseIdentifier("function name")

	var typeParams []*ast.IdentifierExpr
	if p.match(tokens.LESS_TOKEN) {
		for {
			typeParams = append(typeParams, p.parseIdentifier("type parameter"))
			if !p.match(tokens.COMMA_TOKEN) {
				break
			}
		}
		p.expect(tokens.GREATER_TOKEN)
	}

	p.expect(tokens.OPEN_PAREN)
	var params []ast.Param
	if !p.check(tokens.CLOSE_PAREN) {
		for {
			param := ast.Param{Name: p.parseIdentifier("parameter name")}
			if p.match(tokens.COLON_TOKEN) {
				param.Type = p.parseTypeNode()
			}
			params = append(params, param)
			if !p.match(tokens.COMMA_TOKEN) {
				break
			}
		}
	}
	p.expect(tokens.CLOSE_PAREN)

	var returnType ast.TypeNode
	if p.match(tokens.ARROW_TOKEN) {
		returnType = p.parseTypeNode()
	}

	p.asyncDepth = append(p.asyncDepth, isAsync)
	body := p.parseBlock()
	p.asyncDepth = p.asyncDepth[:len(p.asyncDepth)-1]

	return &ast.FuncDecl{
		Annotations: annotations,
		IsAsync:     isAsync,
		Name:        name,
		TypeParams:  typeParams,
		Params:      params,
		ReturnType:  returnType,
		Body:        body,
		Location:    p.spanFrom(def.Start),
	}
}

func (p *Parser) parseClass(annotations []*ast.Annotation) ast.Statement {
	class := p.advance()
	name := p.parseIdentifier("class name")
	body := p.parseBlock()
	return &ast.ClassDecl{
		Annotations: annotations,
		Name:        name,
		Body:        body,
		Location:    p.spanFrom(class.Start),
	}
}

func (p *Parser) parseActor(annotations []*ast.Annotation) ast.Statement {
	actor := p.advance()
	name := p.parseIdentifier("actor name")
	body := p.parseBlock()
	return &ast.ActorDecl{
		Annotations: annotations,
		Name:        name,
		Body:        body,
		Location:    p.spanFrom(actor.Start),
	}
}

// parseStateBlock parses the state: block of an actor. Each field line
// is name [: type] [= default].
func (p *Parser) parseStateBlock() ast.Statement {
	state := p.advance()
	p.expect(tokens.COLON_TOKEN)
	p.expect(tokens.NEWLINE_TOKEN)
	if _, ok := p.expect(tokens.INDENT_TOKEN); !ok {
		p.syncStatement()
		return &ast.StateBlock{Location: p.spanFrom(state.Start)}
	}

	var fields []*ast.StateField
	for !p.check(tokens.DEDENT_TOKEN) && !p.check(tokens.EOF_TOKEN) {
		if p.match(tokens.NEWLINE_TOKEN) {
			continue
		}
		start := p.cur().Start
		field := &ast.StateField{Name: p.parseIdentifier("state field name")}
		if p.match(tokens.COLON_TOKEN) {
			field.Type = p.parseTypeNode()
		}
		if p.match(tokens.EQUALS_TOKEN) {
			field.Default = p.parseExpression()
		}
		field.Location = p.spanFrom(start)
		fields = append(fields, field)
		p.endOfStatement()
	}
	p.match(tokens.DEDENT_TOKEN)
	return &ast.StateBlock{Fields: fields, Location: p.spanFrom(state.Start)}
}

// parseEnum parses a closed variant declaration:
//
//	enum Result:
//	    Success(value: int)
//	    Error(message: str)
func (p *Parser) parseEnum(annotations []*ast.Annotation) ast.Statement {
	enum := p.advance()
	name := p.parseIdentifier("enum name")
	p.expect(tokens.COLON_TOKEN)
	p.expect(tokens.NEWLINE_TOKEN)
	if _, ok := p.expect(tokens.INDENT_TOKEN); !ok {
		p.syncStatement()
		return &ast.EnumDecl{Annotations: annotations, Name: name, Location: p.spanFrom(enum.Start)}
	}

	var variants []*ast.EnumVariant
	for !p.check(tokens.DEDENT_TOKEN) && !p.check(tokens.EOF_TOKEN) {
		if p.match(tokens.NEWLINE_TOKEN) {
			continue
		}
		start := p.cur().Start
		variant := &ast.EnumVariant{Name: p.parseIdentifier("variant name")}
		if p.match(tokens.OPEN_PAREN) {
			if !p.check(tokens.CLOSE_PAREN) {
				for {
					// payload fields may be named (value: int) or bare (int);
					// only the type participates in checking
					if p.check(tokens.IDENTIFIER_TOKEN) && p.peek(1).Kind == tokens.COLON_TOKEN {
						p.advance()
						p.advance()
					}
					variant.Params = append(variant.Params, p.parseTypeNode())
					if !p.match(tokens.COMMA_TOKEN) {
						break
					}
				}
			}
			p.expect(tokens.CLOSE_PAREN)
		}
		variant.Location = p.spanFrom(start)
		variants = append(variants, variant)
		p.endOfStatement()
	}
	p.match(tokens.DEDENT_TOKEN)
	return &ast.EnumDecl{
		Annotations: annotations,
		Name:        name,
		Variants:    variants,
		Location:    p.spanFrom(enum.Start),
	}
}

// parseTypeNode parses a type annotation: a named type or [elem]
func (p *Parser) parseTypeNode() ast.TypeNode {
	switch p.cur().Kind {
	case tokens.IDENTIFIER_TOKEN:
		tok := p.advance()
		return &ast.NamedType{Name: tok.Value, Location: p.locOf(tok)}
	case tokens.NONE_TOKEN:
		tok := p.advance()
		return &ast.NamedType{Name: tok.Value, Location: p.locOf(tok)}
	case tokens.OPEN_BRACKET:
		open := p.advance()
		elem := p.parseTypeNode()
		p.expect(tokens.CLOSE_BRACKET)
		return &ast.ListTypeNode{Elem: elem, Location: p.spanFrom(open.Start)}
	}
	tok := p.cur()
	p.report(diagnostics.NewError(fmt.Sprintf("expected a type, found %s", describe(tok))).
		WithCode(diagnostics.ErrExpectedToken).
		WithPrimaryLabel(p.locPtr(tok), "type annotation expected here"))
	if tok.Kind != tokens.NEWLINE_TOKEN && tok.Kind != tokens.DEDENT_TOKEN && tok.Kind != tokens.EOF_TOKEN {
		p.advance()
	}
	return &ast.NamedType{Name: "", Location: p.locOf(tok)}
}
