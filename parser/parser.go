package parser

import (
	"fmt"

	"github.com/verve-lang/verve/ast"
	"github.com/verve-lang/verve/lexer"
)

type Parser struct {
	l     *lexer.Lexer
	tok   lexer.Token
	ahead *lexer.Token
	ctors map[string]bool
}

type bailout struct{ err error }

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, ctors: make(map[string]bool)}
	p.next()
	return p
}

// Parse consumes the whole token stream and returns the program root.
// The first syntax error aborts the parse.
func Parse(l *lexer.Lexer) (prog *ast.Program, err error) {
	p := New(l)
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			err = b.err
		}
	}()
	start := p.tok.Span
	var nodes []ast.Node
	for p.tok.Type != lexer.EOF {
		nodes = append(nodes, p.parseStmt())
	}
	span := start
	if len(nodes) > 0 {
		span = nodes[0].Span().Add(nodes[len(nodes)-1].Span())
	}
	return &ast.Program{Loc: span, Body: &ast.Block{Loc: span, Nodes: nodes}}, nil
}

func (p *Parser) next() {
	if p.ahead != nil {
		p.tok = *p.ahead
		p.ahead = nil
		return
	}
	p.tok = p.l.Next()
	if p.tok.Type == lexer.Illegal {
		p.failf(p.tok.Span, "%s", p.tok.Data)
	}
}

func (p *Parser) peek() lexer.Token {
	if p.ahead == nil {
		t := p.l.Next()
		if t.Type == lexer.Illegal {
			p.failf(t.Span, "%s", t.Data)
		}
		p.ahead = &t
	}
	return *p.ahead
}

func (p *Parser) failf(span lexer.Span, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	panic(bailout{err: fmt.Errorf("%s:%s: syntax error: %s", p.l.Filename(), span, msg)})
}

func (p *Parser) expect(ttyp lexer.TokenType) lexer.Token {
	if p.tok.Type != ttyp {
		p.failf(p.tok.Span, "expected %q, found %q", ttyp.String(), p.tok.String())
	}
	tok := p.tok
	p.next()
	return tok
}

func (p *Parser) parseStmt() ast.Node {
	switch p.tok.Type {
	case lexer.Fn:
		return p.parseFunction()
	case lexer.Enum:
		return p.parseEnum()
	case lexer.Interface:
		return p.parseInterface()
	case lexer.Impl:
		return p.parseImplementation()
	case lexer.Extern:
		return p.parseExtern()
	default:
		return p.parseExpr(lexer.MinPrec)
	}
}

func (p *Parser) parseExpr(minPrec int) ast.Node {
	lhs := p.parseUnary()
	for p.tok.Prec() >= minPrec {
		op := p.tok
		p.next()
		rhs := p.parseExpr(op.Prec() + 1)
		lhs = &ast.BinaryOperation{Loc: lhs.Span().Add(rhs.Span()), Op: op.Type, LHS: lhs, RHS: rhs}
	}
	return lhs
}

func (p *Parser) parseUnary() ast.Node {
	if p.tok.Type == lexer.Minus || p.tok.Type == lexer.Not {
		op := p.tok
		p.next()
		operand := p.parseUnary()
		return &ast.UnaryOperation{Loc: op.Span.Add(operand.Span()), Op: op.Type, Operand: operand}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Node {
	expr := p.parsePrimary()
	for p.tok.Type == lexer.LeftParen {
		args, span := p.parseArguments()
		expr = &ast.Call{Loc: expr.Span().Add(span), Callee: expr, Arguments: args}
	}
	return expr
}

func (p *Parser) parseArguments() ([]ast.Node, lexer.Span) {
	start := p.expect(lexer.LeftParen)
	var args []ast.Node
	for p.tok.Type != lexer.RightParen {
		args = append(args, p.parseExpr(lexer.MinPrec))
		if p.tok.Type != lexer.Comma {
			break
		}
		p.next()
	}
	end := p.expect(lexer.RightParen)
	return args, start.Span.Add(end.Span)
}

func (p *Parser) parsePrimary() ast.Node {
	switch p.tok.Type {
	case lexer.Number:
		tok := p.tok
		p.next()
		isFloat := false
		for _, ch := range tok.Data {
			if ch == '.' {
				isFloat = true
			}
		}
		return &ast.Number{Loc: tok.Span, Lit: tok.Data, IsFloat: isFloat}
	case lexer.String:
		tok := p.tok
		p.next()
		return &ast.String{Loc: tok.Span, Value: tok.Data}
	case lexer.Ident:
		tok := p.tok
		p.next()
		if p.ctors[tok.Data] {
			var args []ast.Node
			span := tok.Span
			if p.tok.Type == lexer.LeftParen {
				var argSpan lexer.Span
				args, argSpan = p.parseArguments()
				span = span.Add(argSpan)
			}
			return &ast.Constructor{Loc: span, Name: tok.Data, Arguments: args}
		}
		return &ast.Identifier{Loc: tok.Span, Name: tok.Data}
	case lexer.LeftBracket:
		return p.parseList()
	case lexer.LeftParen:
		p.next()
		expr := p.parseExpr(lexer.MinPrec)
		p.expect(lexer.RightParen)
		return expr
	case lexer.Let:
		return p.parseLet()
	case lexer.If:
		return p.parseIf()
	case lexer.Match:
		return p.parseMatch()
	}
	p.failf(p.tok.Span, "unexpected token %q", p.tok.String())
	return nil
}

func (p *Parser) parseList() ast.Node {
	start := p.expect(lexer.LeftBracket)
	var items []ast.Node
	for p.tok.Type != lexer.RightBracket {
		items = append(items, p.parseExpr(lexer.MinPrec))
		if p.tok.Type != lexer.Comma {
			break
		}
		p.next()
	}
	end := p.expect(lexer.RightBracket)
	return &ast.List{Loc: start.Span.Add(end.Span), Items: items}
}

func (p *Parser) parseLet() ast.Node {
	start := p.expect(lexer.Let)
	var assignments []*ast.Assignment
	for p.tok.Type == lexer.Ident {
		var lhs ast.Node
		if p.ctors[p.tok.Data] {
			lhs = p.parseBindingPattern()
		} else {
			if p.peek().Type != lexer.Equals {
				break
			}
			tok := p.tok
			p.next()
			lhs = &ast.Identifier{Loc: tok.Span, Name: tok.Data}
		}
		p.expect(lexer.Equals)
		value := p.parseExpr(lexer.MinPrec)
		assignments = append(assignments, &ast.Assignment{Loc: lhs.Span().Add(value.Span()), LHS: lhs, Value: value})
	}
	if len(assignments) == 0 {
		p.failf(p.tok.Span, "expected at least one binding after `let`")
	}
	block := p.parseBlock()
	return &ast.Let{Loc: start.Span.Add(block.Loc), Assignments: assignments, Block: block}
}

func (p *Parser) parseBindingPattern() *ast.Pattern {
	tok := p.expect(lexer.Ident)
	pat := &ast.Pattern{Loc: tok.Span, Name: tok.Data}
	if p.tok.Type == lexer.LeftParen {
		p.next()
		for p.tok.Type != lexer.RightParen {
			id := p.expect(lexer.Ident)
			pat.Values = append(pat.Values, &ast.Identifier{Loc: id.Span, Name: id.Data})
			if p.tok.Type != lexer.Comma {
				break
			}
			p.next()
		}
		end := p.expect(lexer.RightParen)
		pat.Loc = pat.Loc.Add(end.Span)
	}
	return pat
}

func (p *Parser) parseIf() ast.Node {
	start := p.expect(lexer.If)
	cond := p.parseExpr(lexer.MinPrec)
	ifBody := p.parseBlock()
	iff := &ast.If{Loc: start.Span.Add(ifBody.Loc), Cond: cond, IfBody: ifBody}
	if p.tok.Type == lexer.Else {
		p.next()
		if p.tok.Type == lexer.If {
			nested := p.parseIf()
			iff.ElseBody = &ast.Block{Loc: nested.Span(), Nodes: []ast.Node{nested}}
		} else {
			iff.ElseBody = p.parseBlock()
		}
		iff.Loc = iff.Loc.Add(iff.ElseBody.Loc)
	}
	return iff
}

func (p *Parser) parseMatch() ast.Node {
	start := p.expect(lexer.Match)
	value := p.parseExpr(lexer.MinPrec)
	p.expect(lexer.LeftBrace)
	var cases []*ast.Case
	for p.tok.Type == lexer.Case {
		caseTok := p.tok
		p.next()
		pat := p.parseBindingPattern()
		p.expect(lexer.Colon)
		var body *ast.Block
		if p.tok.Type == lexer.LeftBrace {
			body = p.parseBlock()
		} else {
			expr := p.parseExpr(lexer.MinPrec)
			body = &ast.Block{Loc: expr.Span(), Nodes: []ast.Node{expr}}
		}
		cases = append(cases, &ast.Case{Loc: caseTok.Span.Add(body.Loc), Pattern: pat, Body: body})
	}
	end := p.expect(lexer.RightBrace)
	return &ast.Match{Loc: start.Span.Add(end.Span), Value: value, Cases: cases}
}

func (p *Parser) parseBlock() *ast.Block {
	start := p.expect(lexer.LeftBrace)
	var nodes []ast.Node
	for p.tok.Type != lexer.RightBrace && p.tok.Type != lexer.EOF {
		nodes = append(nodes, p.parseStmt())
	}
	end := p.expect(lexer.RightBrace)
	return &ast.Block{Loc: start.Span.Add(end.Span), Nodes: nodes}
}

func (p *Parser) parseGenerics() []string {
	if p.tok.Type != lexer.LessThan {
		return nil
	}
	p.next()
	var generics []string
	for {
		tok := p.expect(lexer.Ident)
		generics = append(generics, tok.Data)
		if p.tok.Type != lexer.Comma {
			break
		}
		p.next()
	}
	p.expect(lexer.GreaterThan)
	return generics
}

func (p *Parser) parseType() ast.Node {
	if p.tok.Type == lexer.LeftParen {
		start := p.tok
		p.next()
		var params []ast.Node
		for p.tok.Type != lexer.RightParen {
			params = append(params, p.parseType())
			if p.tok.Type != lexer.Comma {
				break
			}
			p.next()
		}
		p.expect(lexer.RightParen)
		p.expect(lexer.Arrow)
		ret := p.parseType()
		return &ast.FunctionType{Loc: start.Span.Add(ret.Span()), Params: params, ReturnType: ret}
	}
	tok := p.expect(lexer.Ident)
	if p.tok.Type == lexer.LessThan {
		p.next()
		var params []ast.Node
		for {
			params = append(params, p.parseType())
			if p.tok.Type != lexer.Comma {
				break
			}
			p.next()
		}
		end := p.expect(lexer.GreaterThan)
		return &ast.DataType{Loc: tok.Span.Add(end.Span), Name: tok.Data, Params: params}
	}
	return &ast.BasicType{Loc: tok.Span, Name: tok.Data}
}

// parseFunction parses `fn name<G>(a: T, b: U) -> R { ... }`. The
// parameter and return types may be omitted together, in which case
// the signature comes from a previous prototype binding.
func (p *Parser) parseFunction() ast.Node {
	start := p.expect(lexer.Fn)
	name := p.expect(lexer.Ident)
	generics := p.parseGenerics()
	p.expect(lexer.LeftParen)
	var params []*ast.FunctionParameter
	var paramTypes []ast.Node
	typed := true
	for p.tok.Type != lexer.RightParen {
		pname := p.expect(lexer.Ident)
		params = append(params, &ast.FunctionParameter{Loc: pname.Span, Name: pname.Data, Index: len(params)})
		if len(params) == 1 {
			typed = p.tok.Type == lexer.Colon
		}
		if typed {
			p.expect(lexer.Colon)
			paramTypes = append(paramTypes, p.parseType())
		}
		if p.tok.Type != lexer.Comma {
			break
		}
		p.next()
	}
	p.expect(lexer.RightParen)
	var ftype *ast.FunctionType
	if typed && p.tok.Type == lexer.Arrow {
		p.next()
		ret := p.parseType()
		ftype = &ast.FunctionType{Loc: start.Span.Add(ret.Span()), Generics: generics, Params: paramTypes, ReturnType: ret}
	} else if len(paramTypes) > 0 {
		p.failf(p.tok.Span, "expected %q, found %q", lexer.Arrow.String(), p.tok.String())
	}
	body := p.parseBlock()
	return &ast.Function{
		Loc:        start.Span.Add(body.Loc),
		Name:       name.Data,
		Type:       ftype,
		Parameters: params,
		Body:       body,
	}
}

func (p *Parser) parseEnum() ast.Node {
	start := p.expect(lexer.Enum)
	name := p.expect(lexer.Ident)
	generics := p.parseGenerics()
	p.expect(lexer.LeftBrace)
	var ctors []*ast.EnumConstructor
	for p.tok.Type == lexer.Ident {
		ctorName := p.tok
		p.next()
		ctor := &ast.EnumConstructor{Loc: ctorName.Span, Name: ctorName.Data}
		if p.tok.Type == lexer.LeftParen {
			p.next()
			for p.tok.Type != lexer.RightParen {
				ctor.Types = append(ctor.Types, p.parseType())
				if p.tok.Type != lexer.Comma {
					break
				}
				p.next()
			}
			p.expect(lexer.RightParen)
		}
		ctors = append(ctors, ctor)
		p.ctors[ctor.Name] = true
		if p.tok.Type != lexer.Comma {
			break
		}
		p.next()
	}
	end := p.expect(lexer.RightBrace)
	return &ast.EnumType{Loc: start.Span.Add(end.Span), Name: name.Data, Generics: generics, Constructors: ctors}
}

// parsePrototype parses `name(T, U) -> R`, the bodiless signature form
// used by extern declarations and interface members.
func (p *Parser) parsePrototype(virtual bool) *ast.Prototype {
	name := p.expect(lexer.Ident)
	p.expect(lexer.LeftParen)
	var paramTypes []ast.Node
	for p.tok.Type != lexer.RightParen {
		paramTypes = append(paramTypes, p.parseType())
		if p.tok.Type != lexer.Comma {
			break
		}
		p.next()
	}
	p.expect(lexer.RightParen)
	p.expect(lexer.Arrow)
	ret := p.parseType()
	ftype := &ast.FunctionType{Loc: name.Span.Add(ret.Span()), Params: paramTypes, ReturnType: ret}
	return &ast.Prototype{Loc: name.Span.Add(ret.Span()), Name: name.Data, Type: ftype, Virtual: virtual}
}

func (p *Parser) parseExtern() ast.Node {
	start := p.expect(lexer.Extern)
	proto := p.parsePrototype(false)
	proto.Loc = start.Span.Add(proto.Loc)
	return proto
}

func (p *Parser) parseInterface() ast.Node {
	start := p.expect(lexer.Interface)
	name := p.expect(lexer.Ident)
	p.expect(lexer.LessThan)
	generic := p.expect(lexer.Ident)
	p.expect(lexer.GreaterThan)
	p.expect(lexer.LeftBrace)
	iface := &ast.Interface{Name: name.Data, GenericTypeName: generic.Data}
	block := &ast.Block{}
	for {
		switch p.tok.Type {
		case lexer.Virtual:
			p.next()
			proto := p.parsePrototype(true)
			iface.VirtualFunctions = append(iface.VirtualFunctions, proto.Name)
			block.Nodes = append(block.Nodes, proto)
			continue
		case lexer.Fn:
			fn := p.parseFunction().(*ast.Function)
			iface.ConcreteFunctions = append(iface.ConcreteFunctions, fn.Name)
			block.Nodes = append(block.Nodes, fn)
			continue
		}
		break
	}
	end := p.expect(lexer.RightBrace)
	iface.Loc = start.Span.Add(end.Span)
	block.Loc = iface.Loc
	iface.Block = block
	return iface
}

func (p *Parser) parseImplementation() ast.Node {
	start := p.expect(lexer.Impl)
	name := p.expect(lexer.Ident)
	p.expect(lexer.LessThan)
	typ := p.parseType()
	p.expect(lexer.GreaterThan)
	block := p.parseBlock()
	return &ast.Implementation{
		Loc:           start.Span.Add(block.Loc),
		InterfaceName: name.Data,
		Type:          typ,
		Block:         block,
	}
}
