package ast

import (
	"github.com/verve-lang/verve/lexer"
)

// Node is implemented by every syntax node. Nodes are built by the
// parser, annotated in place by the type checker (constructor tags and
// sizes, mangled names), and then read by the code generator.
type Node interface {
	Span() lexer.Span
}

var (
	_ Node = (*Program)(nil)
	_ Node = (*Block)(nil)
	_ Node = (*Number)(nil)
	_ Node = (*String)(nil)
	_ Node = (*Identifier)(nil)
	_ Node = (*List)(nil)
	_ Node = (*Let)(nil)
	_ Node = (*Assignment)(nil)
	_ Node = (*If)(nil)
	_ Node = (*Match)(nil)
	_ Node = (*Case)(nil)
	_ Node = (*Pattern)(nil)
	_ Node = (*UnaryOperation)(nil)
	_ Node = (*BinaryOperation)(nil)
	_ Node = (*BasicType)(nil)
	_ Node = (*DataType)(nil)
	_ Node = (*EnumType)(nil)
	_ Node = (*Interface)(nil)
	_ Node = (*Implementation)(nil)
	_ Node = (*Constructor)(nil)
	_ Node = (*FunctionType)(nil)
	_ Node = (*Prototype)(nil)
	_ Node = (*Call)(nil)
	_ Node = (*Function)(nil)
	_ Node = (*FunctionParameter)(nil)
)

type Program struct {
	Loc  lexer.Span
	Body *Block
}

func (n *Program) Span() lexer.Span { return n.Loc }

type Block struct {
	Loc   lexer.Span
	Nodes []Node
}

func (n *Block) Span() lexer.Span { return n.Loc }

type Number struct {
	Loc     lexer.Span
	Lit     string
	IsFloat bool
}

func (n *Number) Span() lexer.Span { return n.Loc }

type String struct {
	Loc   lexer.Span
	Value string
}

func (n *String) Span() lexer.Span { return n.Loc }

type Identifier struct {
	Loc lexer.Span
	// Name may be rewritten by the checker to a mangled form
	// `base$Type` when the call site dispatches an interface method.
	Name string
}

func (n *Identifier) Span() lexer.Span { return n.Loc }

type List struct {
	Loc   lexer.Span
	Items []Node
}

func (n *List) Span() lexer.Span { return n.Loc }

type Let struct {
	Loc         lexer.Span
	Assignments []*Assignment
	Block       *Block
}

func (n *Let) Span() lexer.Span { return n.Loc }

type Assignment struct {
	Loc   lexer.Span
	LHS   Node // *Identifier or *Pattern
	Value Node
}

func (n *Assignment) Span() lexer.Span { return n.Loc }

type If struct {
	Loc      lexer.Span
	Cond     Node
	IfBody   *Block
	ElseBody *Block // nil when there is no else
}

func (n *If) Span() lexer.Span { return n.Loc }

type Match struct {
	Loc   lexer.Span
	Value Node
	Cases []*Case
}

func (n *Match) Span() lexer.Span { return n.Loc }

type Case struct {
	Loc     lexer.Span
	Pattern *Pattern
	Body    *Block
}

func (n *Case) Span() lexer.Span { return n.Loc }

// Pattern is a constructor-shaped destructuring form. Value references
// the expression being matched against; the checker sets it before
// typing the pattern. Tag is written by the checker for the generator's
// dispatch chain.
type Pattern struct {
	Loc    lexer.Span
	Name   string
	Value  Node
	Values []*Identifier
	Tag    int
}

func (n *Pattern) Span() lexer.Span { return n.Loc }

type UnaryOperation struct {
	Loc     lexer.Span
	Op      lexer.TokenType
	Operand Node
}

func (n *UnaryOperation) Span() lexer.Span { return n.Loc }

type BinaryOperation struct {
	Loc lexer.Span
	Op  lexer.TokenType
	LHS Node
	RHS Node
}

func (n *BinaryOperation) Span() lexer.Span { return n.Loc }

// BasicType is a type written as a bare name, e.g. `int` or `T`.
type BasicType struct {
	Loc  lexer.Span
	Name string
}

func (n *BasicType) Span() lexer.Span { return n.Loc }

// DataType is a type application, e.g. `list<int>` or `maybe<T>`.
type DataType struct {
	Loc    lexer.Span
	Name   string
	Params []Node
}

func (n *DataType) Span() lexer.Span { return n.Loc }

// EnumConstructor is one declared case of an enum. It is not a Node;
// call sites use Constructor.
type EnumConstructor struct {
	Loc   lexer.Span
	Name  string
	Types []Node
}

type EnumType struct {
	Loc          lexer.Span
	Name         string
	Generics     []string
	Constructors []*EnumConstructor
}

func (n *EnumType) Span() lexer.Span { return n.Loc }

type Interface struct {
	Loc               lexer.Span
	Name              string
	GenericTypeName   string
	VirtualFunctions  []string
	ConcreteFunctions []string
	Block             *Block
}

func (n *Interface) Span() lexer.Span { return n.Loc }

type Implementation struct {
	Loc           lexer.Span
	InterfaceName string
	Type          Node
	Block         *Block
}

func (n *Implementation) Span() lexer.Span { return n.Loc }

// Constructor is a call-shaped application of an enum constructor. Tag
// and Size are written by the checker; Size counts the argument slots
// plus one for the tag.
type Constructor struct {
	Loc       lexer.Span
	Name      string
	Arguments []Node
	Tag       int
	Size      int
}

func (n *Constructor) Span() lexer.Span { return n.Loc }

type FunctionType struct {
	Loc        lexer.Span
	Generics   []string
	Params     []Node
	ReturnType Node
}

func (n *FunctionType) Span() lexer.Span { return n.Loc }

// Prototype declares a function signature without a body: an extern
// builtin at the top level, or a virtual/concrete signature inside an
// interface. Name is suffixed in place while checking an impl block.
type Prototype struct {
	Loc     lexer.Span
	Name    string
	Type    *FunctionType
	Virtual bool
}

func (n *Prototype) Span() lexer.Span { return n.Loc }

type Call struct {
	Loc       lexer.Span
	Callee    Node
	Arguments []Node
}

func (n *Call) Span() lexer.Span { return n.Loc }

// Function is a named function definition. Type is nil when the
// signature comes from a previous Prototype binding. Name is suffixed
// in place while checking an impl block.
type Function struct {
	Loc        lexer.Span
	Name       string
	Type       *FunctionType
	Parameters []*FunctionParameter
	Body       *Block
}

func (n *Function) Span() lexer.Span { return n.Loc }

type FunctionParameter struct {
	Loc   lexer.Span
	Name  string
	Index int
}

func (n *FunctionParameter) Span() lexer.Span { return n.Loc }
