package codegen

import (
	"fmt"
	"math"
	"strconv"

	"github.com/verve-lang/verve/ast"
	"github.com/verve-lang/verve/bytecode"
	"github.com/verve-lang/verve/lexer"
)

// operator builtins the generator lowers unary and binary operations to
var binaryBuiltins = map[lexer.TokenType]string{
	lexer.Plus:              "+",
	lexer.Minus:             "-",
	lexer.Times:             "*",
	lexer.Divide:            "/",
	lexer.Remainder:         "%",
	lexer.LogicalEquals:     "==",
	lexer.NotEquals:         "!=",
	lexer.LessThan:          "<",
	lexer.LessThanEquals:    "<=",
	lexer.GreaterThan:       ">",
	lexer.GreaterThanEquals: ">=",
	lexer.LogicalAnd:        "&&",
	lexer.LogicalOr:         "||",
}

var unaryBuiltins = map[lexer.TokenType]string{
	lexer.Minus: "neg",
	lexer.Not:   "not",
}

// Generator lowers a checked AST to a bytecode program. It reads the
// checker's annotations (constructor tags and sizes, mangled names)
// and never inspects types.
type Generator struct {
	prog   *bytecode.Program
	text   *[]int64
	params map[string]int // parameter name to index in the enclosing function
}

func Generate(prog *ast.Program) *bytecode.Program {
	g := &Generator{prog: bytecode.NewProgram()}
	g.text = &g.prog.Text
	g.genBlock(prog.Body)
	g.emit(bytecode.Exit, 0)
	return g.prog
}

func (g *Generator) emit(op bytecode.Opcode, operands ...int64) {
	*g.text = append(*g.text, int64(op))
	*g.text = append(*g.text, operands...)
}

// emitPlaceholder emits op with a zero jump target and returns the
// index of the target word for later patching.
func (g *Generator) emitPlaceholder(op bytecode.Opcode, operands ...int64) int {
	g.emit(op, append(operands, 0)...)
	return len(*g.text) - 1
}

func (g *Generator) patch(at int) {
	(*g.text)[at] = int64(len(*g.text))
}

// genBlock generates each node, dropping the values of all but the
// last. It reports whether the block left a value on the stack.
func (g *Generator) genBlock(block *ast.Block) bool {
	pushed := false
	for i, node := range block.Nodes {
		last := i == len(block.Nodes)-1
		p := g.genNode(node)
		if p && !last {
			g.emit(bytecode.Pop)
			p = false
		}
		pushed = p
	}
	return pushed
}

// genNode generates one node and reports whether it left a value on
// the stack. Declarations produce no value.
func (g *Generator) genNode(node ast.Node) bool {
	switch n := node.(type) {
	case *ast.Number:
		if n.IsFloat {
			f, _ := strconv.ParseFloat(n.Lit, 64)
			g.emit(bytecode.PushFloat, int64(math.Float64bits(f)))
		} else {
			v, _ := strconv.ParseInt(n.Lit, 10, 64)
			g.emit(bytecode.Push, v)
		}
		return true

	case *ast.String:
		g.emit(bytecode.LoadString, int64(g.prog.InternString(n.Value)))
		return true

	case *ast.Identifier:
		if idx, ok := g.params[n.Name]; ok {
			g.emit(bytecode.PushArg, int64(idx))
		} else {
			g.emit(bytecode.Lookup, int64(g.prog.InternString(n.Name)))
		}
		return true

	case *ast.List:
		g.emit(bytecode.AllocObj, int64(len(n.Items)+1), 0)
		for i, item := range n.Items {
			g.genNode(item)
			g.emit(bytecode.ObjStoreAt, int64(i+1))
		}
		return true

	case *ast.Constructor:
		g.emit(bytecode.AllocObj, int64(n.Size), int64(n.Tag))
		for i, arg := range n.Arguments {
			g.genNode(arg)
			g.emit(bytecode.ObjStoreAt, int64(i+1))
		}
		return true

	case *ast.Call:
		for i := len(n.Arguments); i > 0; {
			i--
			g.genNode(n.Arguments[i])
		}
		g.genNode(n.Callee)
		g.emit(bytecode.Call, int64(len(n.Arguments)))
		return true

	case *ast.UnaryOperation:
		g.genNode(n.Operand)
		g.emit(bytecode.Lookup, int64(g.prog.InternString(unaryBuiltins[n.Op])))
		g.emit(bytecode.Call, 1)
		return true

	case *ast.BinaryOperation:
		g.genNode(n.RHS)
		g.genNode(n.LHS)
		g.emit(bytecode.Lookup, int64(g.prog.InternString(binaryBuiltins[n.Op])))
		g.emit(bytecode.Call, 2)
		return true

	case *ast.If:
		g.genNode(n.Cond)
		elseAt := g.emitPlaceholder(bytecode.Jz)
		if !g.genBlock(n.IfBody) {
			g.emit(bytecode.Push, 0)
		}
		endAt := g.emitPlaceholder(bytecode.Jmp)
		g.patch(elseAt)
		if n.ElseBody != nil {
			if !g.genBlock(n.ElseBody) {
				g.emit(bytecode.Push, 0)
			}
		} else {
			g.emit(bytecode.Push, 0)
		}
		g.patch(endAt)
		return true

	case *ast.Let:
		g.emit(bytecode.CreateLexScope)
		for _, a := range n.Assignments {
			g.genNode(a.Value)
			switch lhs := a.LHS.(type) {
			case *ast.Identifier:
				g.emit(bytecode.PutToScope, int64(g.prog.InternString(lhs.Name)))
			case *ast.Pattern:
				failAt := g.emitPlaceholder(bytecode.ObjTagTest, int64(lhs.Tag))
				g.genPatternBind(lhs)
				g.emit(bytecode.Pop)
				okAt := g.emitPlaceholder(bytecode.Jmp)
				g.patch(failAt)
				g.emit(bytecode.Exit, 1)
				g.patch(okAt)
			}
		}
		if !g.genBlock(n.Block) {
			g.emit(bytecode.Push, 0)
		}
		g.emit(bytecode.ReleaseLexScope)
		return true

	case *ast.Match:
		return g.genMatch(n)

	case *ast.Function:
		g.genFunction(n)
		return false

	case *ast.Interface:
		for _, elem := range n.Block.Nodes {
			if fn, ok := elem.(*ast.Function); ok {
				g.genFunction(fn)
			}
		}
		return false

	case *ast.Implementation:
		for _, elem := range n.Block.Nodes {
			if fn, ok := elem.(*ast.Function); ok {
				g.genFunction(fn)
			}
		}
		return false

	case *ast.EnumType, *ast.Prototype:
		// no code: constructors materialize at use sites, externs are
		// provided by the runtime
		return false
	}
	panic(fmt.Sprintf("codegen: unhandled node %T", node))
}

// genPatternBind binds a matched object's fields into the current
// scope. The object stays on the stack.
func (g *Generator) genPatternBind(pat *ast.Pattern) {
	for i, v := range pat.Values {
		g.emit(bytecode.ObjLoad, int64(i+1))
		g.emit(bytecode.PutToScope, int64(g.prog.InternString(v.Name)))
	}
}

func (g *Generator) genMatch(n *ast.Match) bool {
	g.genNode(n.Value)
	var endPatches []int
	for _, cs := range n.Cases {
		nextAt := g.emitPlaceholder(bytecode.ObjTagTest, int64(cs.Pattern.Tag))
		g.emit(bytecode.CreateLexScope)
		g.genPatternBind(cs.Pattern)
		g.emit(bytecode.Pop)
		if !g.genBlock(cs.Body) {
			g.emit(bytecode.Push, 0)
		}
		g.emit(bytecode.ReleaseLexScope)
		endPatches = append(endPatches, g.emitPlaceholder(bytecode.Jmp))
		g.patch(nextAt)
	}
	g.emit(bytecode.Exit, 1)
	for _, at := range endPatches {
		g.patch(at)
	}
	return true
}

func (g *Generator) genFunction(n *ast.Function) {
	fnText := []int64{}
	savedText, savedParams := g.text, g.params
	g.text = &fnText
	g.params = make(map[string]int)
	for _, param := range n.Parameters {
		g.params[param.Name] = param.Index
	}
	// rebind parameters into the scope so nested closures can capture
	// them by name
	for _, param := range n.Parameters {
		g.emit(bytecode.PushArg, int64(param.Index))
		g.emit(bytecode.PutToScope, int64(g.prog.InternString(param.Name)))
	}
	if !g.genBlock(n.Body) {
		g.emit(bytecode.Push, 0)
	}
	g.emit(bytecode.Ret)
	g.text, g.params = savedText, savedParams

	nameIdx := g.prog.InternString(n.Name)
	fnIdx := len(g.prog.Functions)
	g.prog.Functions = append(g.prog.Functions, bytecode.Function{
		Name:  nameIdx,
		Arity: len(n.Parameters),
		Text:  fnText,
	})
	g.emit(bytecode.CreateClosure, int64(fnIdx))
	g.emit(bytecode.Bind, int64(nameIdx))
}
