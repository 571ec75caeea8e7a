package parser_test

import (
	"strings"
	"testing"

	"github.com/verve-lang/verve/ast"
	"github.com/verve-lang/verve/lexer"
	"github.com/verve-lang/verve/parser"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.Parse(lexer.New("test.vrv", []byte(src)))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func TestPrecedence(t *testing.T) {
	prog := parse(t, "1 + 2 * 3")
	bin := prog.Body.Nodes[0].(*ast.BinaryOperation)
	if bin.Op != lexer.Plus {
		t.Fatalf("expected + at the root, got %s", bin.Op)
	}
	rhs := bin.RHS.(*ast.BinaryOperation)
	if rhs.Op != lexer.Times {
		t.Fatalf("expected * on the right, got %s", rhs.Op)
	}
}

func TestUnary(t *testing.T) {
	prog := parse(t, "-x + !y")
	bin := prog.Body.Nodes[0].(*ast.BinaryOperation)
	if u := bin.LHS.(*ast.UnaryOperation); u.Op != lexer.Minus {
		t.Errorf("expected unary minus, got %s", u.Op)
	}
	if u := bin.RHS.(*ast.UnaryOperation); u.Op != lexer.Not {
		t.Errorf("expected unary not, got %s", u.Op)
	}
}

func TestLet(t *testing.T) {
	prog := parse(t, "let x = 1 y = 2 { x + y }")
	let := prog.Body.Nodes[0].(*ast.Let)
	if len(let.Assignments) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(let.Assignments))
	}
	if id := let.Assignments[0].LHS.(*ast.Identifier); id.Name != "x" {
		t.Errorf("expected x, got %s", id.Name)
	}
	if len(let.Block.Nodes) != 1 {
		t.Errorf("expected 1 node in the body, got %d", len(let.Block.Nodes))
	}
}

func TestFunction(t *testing.T) {
	prog := parse(t, "fn add(a: int, b: int) -> int { a + b }")
	fn := prog.Body.Nodes[0].(*ast.Function)
	if fn.Name != "add" {
		t.Fatalf("expected add, got %s", fn.Name)
	}
	if len(fn.Parameters) != 2 || fn.Parameters[1].Name != "b" {
		t.Fatalf("bad parameters: %v", fn.Parameters)
	}
	if len(fn.Type.Params) != 2 {
		t.Fatalf("expected 2 parameter types, got %d", len(fn.Type.Params))
	}
	if rt := fn.Type.ReturnType.(*ast.BasicType); rt.Name != "int" {
		t.Errorf("expected int return, got %s", rt.Name)
	}
}

func TestGenericFunction(t *testing.T) {
	prog := parse(t, "fn id<T>(x: T) -> T { x }")
	fn := prog.Body.Nodes[0].(*ast.Function)
	if len(fn.Type.Generics) != 1 || fn.Type.Generics[0] != "T" {
		t.Fatalf("bad generics: %v", fn.Type.Generics)
	}
}

func TestEnumAndConstructors(t *testing.T) {
	prog := parse(t, "enum maybe<T> { None, Some(T) }\nSome(3)")
	e := prog.Body.Nodes[0].(*ast.EnumType)
	if e.Name != "maybe" || len(e.Constructors) != 2 {
		t.Fatalf("bad enum: %v", e)
	}
	if e.Constructors[1].Name != "Some" || len(e.Constructors[1].Types) != 1 {
		t.Fatalf("bad constructor: %v", e.Constructors[1])
	}
	// a name declared as a constructor parses as a constructor node
	ctor := prog.Body.Nodes[1].(*ast.Constructor)
	if ctor.Name != "Some" || len(ctor.Arguments) != 1 {
		t.Fatalf("bad constructor application: %v", ctor)
	}
}

func TestMatch(t *testing.T) {
	prog := parse(t, "enum maybe<T> { None, Some(T) }\nmatch Some(3) { case Some(x): x case None: 0 }")
	m := prog.Body.Nodes[1].(*ast.Match)
	if len(m.Cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(m.Cases))
	}
	pat := m.Cases[0].Pattern
	if pat.Name != "Some" || len(pat.Values) != 1 || pat.Values[0].Name != "x" {
		t.Fatalf("bad pattern: %v", pat)
	}
}

func TestInterface(t *testing.T) {
	prog := parse(t, "interface show<T> { virtual repr(T) -> string }")
	iface := prog.Body.Nodes[0].(*ast.Interface)
	if iface.Name != "show" || iface.GenericTypeName != "T" {
		t.Fatalf("bad interface: %v", iface)
	}
	if len(iface.VirtualFunctions) != 1 || iface.VirtualFunctions[0] != "repr" {
		t.Fatalf("bad virtual functions: %v", iface.VirtualFunctions)
	}
	proto := iface.Block.Nodes[0].(*ast.Prototype)
	if !proto.Virtual {
		t.Error("prototype should be virtual")
	}
}

func TestImplementation(t *testing.T) {
	prog := parse(t, "interface show<T> { virtual repr(T) -> string }\nimpl show<int> { fn repr(n: int) -> string { \"n\" } }")
	impl := prog.Body.Nodes[1].(*ast.Implementation)
	if impl.InterfaceName != "show" {
		t.Fatalf("bad implementation: %v", impl)
	}
	if bt := impl.Type.(*ast.BasicType); bt.Name != "int" {
		t.Fatalf("expected int, got %v", impl.Type)
	}
	if _, ok := impl.Block.Nodes[0].(*ast.Function); !ok {
		t.Fatalf("expected a function in the impl block")
	}
}

func TestTypes(t *testing.T) {
	prog := parse(t, "fn head(xs: list<int>, f: (int) -> int) -> int { f(0) }")
	fn := prog.Body.Nodes[0].(*ast.Function)
	dt := fn.Type.Params[0].(*ast.DataType)
	if dt.Name != "list" || len(dt.Params) != 1 {
		t.Fatalf("bad data type: %v", dt)
	}
	ft := fn.Type.Params[1].(*ast.FunctionType)
	if len(ft.Params) != 1 {
		t.Fatalf("bad function type: %v", ft)
	}
}

func TestList(t *testing.T) {
	prog := parse(t, `[1, 2, 3]`)
	list := prog.Body.Nodes[0].(*ast.List)
	if len(list.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(list.Items))
	}
}

func TestExtern(t *testing.T) {
	prog := parse(t, "extern print(string) -> void")
	proto := prog.Body.Nodes[0].(*ast.Prototype)
	if proto.Name != "print" || proto.Virtual {
		t.Fatalf("bad prototype: %v", proto)
	}
}

func TestSyntaxError(t *testing.T) {
	_, err := parser.Parse(lexer.New("test.vrv", []byte("fn 1() -> int { 0 }")))
	if err == nil || !strings.Contains(err.Error(), "syntax error") {
		t.Fatalf("expected a syntax error, got %v", err)
	}
}

func TestIfElseChain(t *testing.T) {
	prog := parse(t, "if x { 1 } else if y { 2 } else { 3 }")
	iff := prog.Body.Nodes[0].(*ast.If)
	nested := iff.ElseBody.Nodes[0].(*ast.If)
	if nested.ElseBody == nil {
		t.Fatal("expected a final else")
	}
}

func TestUntypedFunction(t *testing.T) {
	prog := parse(t, "fn inc(n) { n + 1 }")
	fn := prog.Body.Nodes[0].(*ast.Function)
	if fn.Type != nil {
		t.Fatalf("expected no declared type, got %v", fn.Type)
	}
	if len(fn.Parameters) != 1 || fn.Parameters[0].Name != "n" {
		t.Fatalf("bad parameters: %v", fn.Parameters)
	}
}
