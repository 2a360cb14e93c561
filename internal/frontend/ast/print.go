package ast

import (
	"fmt"
	"strings"
)

// Print renders a module back to concrete syntax. The output is
// normalized rather than source-faithful: four-space indentation, one
// statement per line, and parentheses around nested operator
// expressions, so parsing the output and printing it again reproduces
// it byte for byte.
func Print(m *Module) string {
	p := &printer{}
	for _, node := range m.Nodes {
		p.node(node, 0)
	}
	return p.b.String()
}

type printer struct {
	b strings.Builder
}

func (p *printer) line(depth int, text string) {
	p.b.WriteString(strings.Repeat("    ", depth))
	p.b.WriteString(text)
	p.b.WriteByte('\n')
}

func (p *printer) node(node Node, depth int) {
	switch n := node.(type) {
	case *FuncDecl:
		p.annotations(n.Annotations, depth)
		p.line(depth, funcHeader(n))
		p.block(n.Body, depth+1)
	case *ClassDecl:
		p.annotations(n.Annotations, depth)
		p.line(depth, "class "+n.Name.Name+":")
		p.block(n.Body, depth+1)
	case *ActorDecl:
		p.annotations(n.Annotations, depth)
		p.line(depth, "actor "+n.Name.Name+":")
		p.block(n.Body, depth+1)
	case *EnumDecl:
		p.annotations(n.Annotations, depth)
		p.line(depth, "enum "+n.Name.Name+":")
		for _, v := range n.Variants {
			p.line(depth+1, variantText(v))
		}
	case *StateBlock:
		p.line(depth, "state:")
		for _, f := range n.Fields {
			p.line(depth+1, fieldText(f))
		}
	case *Block:
		p.block(n, depth)
	case *ExprStmt:
		p.line(depth, expr(n.X))
	case *ReturnStmt:
		if n.Result == nil {
			p.line(depth, "return")
		} else {
			p.line(depth, "return "+expr(n.Result))
		}
	case *PassStmt:
		p.line(depth, "pass")
	case *IfStmt:
		p.ifChain(n, depth, "if")
	case *WhileStmt:
		p.line(depth, "while "+expr(n.Cond)+":")
		p.block(n.Body, depth+1)
	case *ForStmt:
		p.line(depth, "for "+n.Var.Name+" in "+expr(n.Iter)+":")
		p.block(n.Body, depth+1)
	case *MatchStmt:
		p.line(depth, "match "+expr(n.Expr)+":")
		for _, c := range n.Cases {
			head := "case " + pattern(c.Pattern)
			if c.Guard != nil {
				head += " if " + expr(c.Guard)
			}
			p.line(depth+1, head+":")
			p.block(c.Body, depth+2)
		}
	case *ImportStmt:
		text := "import " + n.Path.Value
		if n.Alias != nil {
			text += " as " + n.Alias.Name
		}
		p.line(depth, text)
	case *VisibilityStmt:
		keyword := "private"
		if n.Public {
			keyword = "public"
		}
		names := make([]string, len(n.Names))
		for i, name := range n.Names {
			names[i] = name.Name
		}
		p.line(depth, keyword+": "+strings.Join(names, ", "))
	default:
		panic(fmt.Sprintf("cannot print %T", node))
	}
}

// block prints an indented suite; an empty suite becomes a pass
// statement so the output still parses
func (p *printer) block(b *Block, depth int) {
	if b == nil || len(b.Nodes) == 0 {
		p.line(depth, "pass")
		return
	}
	for _, node := range b.Nodes {
		p.node(node, depth)
	}
}

func (p *printer) ifChain(n *IfStmt, depth int, keyword string) {
	p.line(depth, keyword+" "+expr(n.Cond)+":")
	p.block(n.Body, depth+1)
	switch alt := n.Else.(type) {
	case nil:
	case *IfStmt:
		p.ifChain(alt, depth, "elif")
	case *Block:
		p.line(depth, "else:")
		p.block(alt, depth+1)
	}
}

func (p *printer) annotations(annotations []*Annotation, depth int) {
	for _, ann := range annotations {
		text := "@" + ann.Name.Name
		if len(ann.Args) > 0 {
			args := make([]string, len(ann.Args))
			for i, arg := range ann.Args {
				args[i] = expr(arg)
			}
			text += "(" + strings.Join(args, ", ") + ")"
		}
		p.line(depth, text)
	}
}

func funcHeader(n *FuncDecl) string {
	var b strings.Builder
	if n.IsAsync {
		b.WriteString("async ")
	}
	b.WriteString("def ")
	b.WriteString(n.Name.Name)
	if len(n.TypeParams) > 0 {
		names := make([]string, len(n.TypeParams))
		for i, tp := range n.TypeParams {
			names[i] = tp.Name
		}
		b.WriteString("<" + strings.Join(names, ", ") + ">")
	}
	params := make([]string, len(n.Params))
	for i, param := range n.Params {
		params[i] = param.Name.Name
		if param.Type != nil {
			params[i] += ": " + typeText(param.Type)
		}
	}
	b.WriteString("(" + strings.Join(params, ", ") + ")")
	if n.ReturnType != nil {
		b.WriteString(" -> " + typeText(n.ReturnType))
	}
	b.WriteString(":")
	return b.String()
}

func variantText(v *EnumVariant) string {
	if len(v.Params) == 0 {
		return v.Name.Name
	}
	params := make([]string, len(v.Params))
	for i, t := range v.Params {
		params[i] = typeText(t)
	}
	return v.Name.Name + "(" + strings.Join(params, ", ") + ")"
}

func fieldText(f *StateField) string {
	text := f.Name.Name
	if f.Type != nil {
		text += ": " + typeText(f.Type)
	}
	if f.Default != nil {
		text += " = " + expr(f.Default)
	}
	return text
}

func typeText(t TypeNode) string {
	switch tt := t.(type) {
	case *NamedType:
		return tt.Name
	case *ListTypeNode:
		return "[" + typeText(tt.Elem) + "]"
	default:
		panic(fmt.Sprintf("cannot print type %T", t))
	}
}

func pattern(pat Pattern) string {
	switch pp := pat.(type) {
	case *LiteralPattern:
		return expr(pp.Lit)
	case *BindingPattern:
		return pp.Name.Name
	case *WildcardPattern:
		return "_"
	case *ConstructorPattern:
		text := pp.Name.Name
		if pp.Enum != nil {
			text = pp.Enum.Name + "." + text
		}
		if len(pp.Subs) > 0 {
			subs := make([]string, len(pp.Subs))
			for i, sub := range pp.Subs {
				subs[i] = pattern(sub)
			}
			text += "(" + strings.Join(subs, ", ") + ")"
		}
		return text
	default:
		panic(fmt.Sprintf("cannot print pattern %T", pat))
	}
}

func expr(e Expression) string {
	switch ee := e.(type) {
	case *BasicLit:
		if ee.Kind == STRING {
			return quote(ee.Value)
		}
		return ee.Value
	case *IdentifierExpr:
		return ee.Name
	case *FStringExpr:
		var b strings.Builder
		b.WriteString(`f"`)
		for _, part := range ee.Parts {
			if part.X != nil {
				b.WriteString("{" + expr(part.X) + "}")
			} else {
				b.WriteString(escapeText(part.Text, true))
			}
		}
		b.WriteString(`"`)
		return b.String()
	case *BinaryExpr:
		return operand(ee.X) + " " + string(ee.Op.Kind) + " " + operand(ee.Y)
	case *UnaryExpr:
		op := string(ee.Op.Kind)
		if isWordOp(op) {
			op += " "
		}
		return op + operand(ee.X)
	case *AwaitExpr:
		return "await " + operand(ee.X)
	case *AssignExpr:
		// assignment is right-associative, so a chained value needs no
		// parentheses
		return operand(ee.Target) + " = " + expr(ee.Value)
	case *CallExpr:
		args := make([]string, len(ee.Args))
		for i, arg := range ee.Args {
			args[i] = expr(arg)
		}
		return operand(ee.Fun) + "(" + strings.Join(args, ", ") + ")"
	case *SelectorExpr:
		return operand(ee.X) + "." + ee.Field.Name
	case *IndexExpr:
		return operand(ee.X) + "[" + expr(ee.Index) + "]"
	case *ListLit:
		elts := make([]string, len(ee.Elts))
		for i, elt := range ee.Elts {
			elts[i] = expr(elt)
		}
		return "[" + strings.Join(elts, ", ") + "]"
	default:
		panic(fmt.Sprintf("cannot print %T", e))
	}
}

// operand parenthesizes operator expressions in operand position,
// making the printed precedence explicit
func operand(e Expression) string {
	switch e.(type) {
	case *BinaryExpr, *UnaryExpr, *AwaitExpr, *AssignExpr:
		return "(" + expr(e) + ")"
	default:
		return expr(e)
	}
}

func isWordOp(op string) bool {
	for i := 0; i < len(op); i++ {
		if op[i] < 'a' || op[i] > 'z' {
			return false
		}
	}
	return len(op) > 0
}

func quote(value string) string {
	return `"` + escapeText(value, false) + `"`
}

// escapeText re-escapes a decoded literal body. Inside an f-string,
// braces escape by doubling.
func escapeText(value string, fstring bool) string {
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		ch := value[i]
		switch ch {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case 0:
			b.WriteString(`\0`)
		case '{', '}':
			if fstring {
				b.WriteByte(ch)
				b.WriteByte(ch)
			} else {
				b.WriteByte(ch)
			}
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}
