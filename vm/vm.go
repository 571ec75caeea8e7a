package vm

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/verve-lang/verve/bytecode"
)

// VM executes a compiled program: a value stack, a lexical scope chain
// and one Go stack frame per function call.
type VM struct {
	prog    *bytecode.Program
	globals *Scope
}

func New(prog *bytecode.Program) *VM {
	return NewWithOutput(prog, os.Stdout)
}

func NewWithOutput(prog *bytecode.Program, w io.Writer) *VM {
	globals := NewScope(nil)
	registerBuiltins(globals, w)
	return &VM{prog: prog, globals: globals}
}

// Run executes the main text segment and returns the value it leaves
// behind, if any.
func (m *VM) Run() (Value, error) {
	return m.exec(m.prog.Text, nil, NewScope(m.globals))
}

func (m *VM) exec(text []int64, args []Value, scope *Scope) (Value, error) {
	var stack []Value
	push := func(v Value) { stack = append(stack, v) }
	pop := func() Value {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}
	peek := func() Value { return stack[len(stack)-1] }
	top := func() Value {
		if len(stack) == 0 {
			return Void{}
		}
		return stack[len(stack)-1]
	}

	pc := 0
	for pc < len(text) {
		op := bytecode.Opcode(text[pc])
		operands := text[pc+1 : pc+1+op.Operands()]
		pc += 1 + op.Operands()

		switch op {
		case bytecode.Push:
			push(Int(operands[0]))
		case bytecode.PushFloat:
			push(Float(math.Float64frombits(uint64(operands[0]))))
		case bytecode.LoadString:
			push(String(m.prog.Strings[operands[0]]))
		case bytecode.Lookup:
			name := m.prog.Strings[operands[0]]
			v, ok := scope.Get(name)
			if !ok {
				return nil, fmt.Errorf("vm: undefined variable `%s`", name)
			}
			push(v)
		case bytecode.PushArg:
			push(args[operands[0]])
		case bytecode.Call:
			argc := int(operands[0])
			callee := pop()
			callArgs := make([]Value, argc)
			for i := 0; i < argc; i++ {
				callArgs[i] = pop()
			}
			switch callee := callee.(type) {
			case *Closure:
				fn := m.prog.Functions[callee.Fn]
				if fn.Arity != argc {
					return nil, fmt.Errorf("vm: function `%s` takes %d arguments, got %d", m.prog.Strings[fn.Name], fn.Arity, argc)
				}
				ret, err := m.exec(fn.Text, callArgs, NewScope(callee.Scope))
				if err != nil {
					return nil, err
				}
				push(ret)
			case *Builtin:
				if callee.Arity != argc {
					return nil, fmt.Errorf("vm: builtin `%s` takes %d arguments, got %d", callee.Name, callee.Arity, argc)
				}
				ret, err := callee.Fn(callArgs)
				if err != nil {
					return nil, err
				}
				push(ret)
			default:
				return nil, fmt.Errorf("vm: cannot call %s", format(callee))
			}
		case bytecode.Ret:
			return top(), nil
		case bytecode.Jmp:
			pc = int(operands[0])
		case bytecode.Jz:
			if !truthy(pop()) {
				pc = int(operands[0])
			}
		case bytecode.Bind, bytecode.PutToScope:
			scope.Set(m.prog.Strings[operands[0]], pop())
		case bytecode.CreateClosure:
			push(&Closure{Fn: int(operands[0]), Scope: scope})
		case bytecode.CreateLexScope:
			scope = NewScope(scope)
		case bytecode.ReleaseLexScope:
			scope = scope.parent
		case bytecode.AllocObj:
			obj := make(Object, operands[0])
			obj[0] = Int(operands[1])
			push(obj)
		case bytecode.ObjStoreAt:
			v := pop()
			obj, ok := peek().(Object)
			if !ok {
				return nil, fmt.Errorf("vm: obj_store_at on %s", format(peek()))
			}
			obj[operands[0]] = v
		case bytecode.ObjLoad:
			obj, ok := peek().(Object)
			if !ok {
				return nil, fmt.Errorf("vm: obj_load on %s", format(peek()))
			}
			push(obj[operands[0]])
		case bytecode.ObjTagTest:
			obj, ok := peek().(Object)
			if !ok {
				return nil, fmt.Errorf("vm: obj_tag_test on %s", format(peek()))
			}
			if obj.Tag() != operands[0] {
				pc = int(operands[1])
			}
		case bytecode.Pop:
			pop()
		case bytecode.Exit:
			if operands[0] != 0 {
				return nil, fmt.Errorf("vm: no pattern matched the value")
			}
			return top(), nil
		default:
			return nil, fmt.Errorf("vm: unknown opcode %d", int64(op))
		}
	}
	return top(), nil
}
