package vm

import (
	"fmt"
	"io"
)

func intArgs(name string, args []Value) (int64, int64, error) {
	a, ok := args[0].(Int)
	if !ok {
		return 0, 0, fmt.Errorf("vm: builtin %s expects int arguments, got %s", name, format(args[0]))
	}
	b, ok := args[1].(Int)
	if !ok {
		return 0, 0, fmt.Errorf("vm: builtin %s expects int arguments, got %s", name, format(args[1]))
	}
	return int64(a), int64(b), nil
}

func intBinop(name string, fn func(a, b int64) (Value, error)) *Builtin {
	return &Builtin{
		Name:  name,
		Arity: 2,
		Fn: func(args []Value) (Value, error) {
			a, b, err := intArgs(name, args)
			if err != nil {
				return nil, err
			}
			return fn(a, b)
		},
	}
}

func boolToInt(b bool) Value {
	if b {
		return Int(1)
	}
	return Int(0)
}

// registerBuiltins installs the native functions the prelude declares
// and the operators the generator lowers to. Output goes to w so tests
// can capture it.
func registerBuiltins(scope *Scope, w io.Writer) {
	builtins := []*Builtin{
		intBinop("+", func(a, b int64) (Value, error) { return Int(a + b), nil }),
		intBinop("-", func(a, b int64) (Value, error) { return Int(a - b), nil }),
		intBinop("*", func(a, b int64) (Value, error) { return Int(a * b), nil }),
		intBinop("/", func(a, b int64) (Value, error) {
			if b == 0 {
				return nil, fmt.Errorf("vm: division by zero")
			}
			return Int(a / b), nil
		}),
		intBinop("%", func(a, b int64) (Value, error) {
			if b == 0 {
				return nil, fmt.Errorf("vm: division by zero")
			}
			return Int(a % b), nil
		}),
		intBinop("==", func(a, b int64) (Value, error) { return boolToInt(a == b), nil }),
		intBinop("!=", func(a, b int64) (Value, error) { return boolToInt(a != b), nil }),
		intBinop("<", func(a, b int64) (Value, error) { return boolToInt(a < b), nil }),
		intBinop("<=", func(a, b int64) (Value, error) { return boolToInt(a <= b), nil }),
		intBinop(">", func(a, b int64) (Value, error) { return boolToInt(a > b), nil }),
		intBinop(">=", func(a, b int64) (Value, error) { return boolToInt(a >= b), nil }),
		intBinop("&&", func(a, b int64) (Value, error) { return boolToInt(a != 0 && b != 0), nil }),
		intBinop("||", func(a, b int64) (Value, error) { return boolToInt(a != 0 || b != 0), nil }),
		{
			Name:  "neg",
			Arity: 1,
			Fn: func(args []Value) (Value, error) {
				switch v := args[0].(type) {
				case Int:
					return Int(-v), nil
				case Float:
					return Float(-v), nil
				}
				return nil, fmt.Errorf("vm: cannot negate %s", format(args[0]))
			},
		},
		{
			Name:  "not",
			Arity: 1,
			Fn: func(args []Value) (Value, error) {
				return boolToInt(!truthy(args[0])), nil
			},
		},
		{
			Name:  "print",
			Arity: 1,
			Fn: func(args []Value) (Value, error) {
				fmt.Fprintln(w, format(args[0]))
				return Void{}, nil
			},
		},
		{
			Name:  "print_int",
			Arity: 1,
			Fn: func(args []Value) (Value, error) {
				fmt.Fprintln(w, format(args[0]))
				return Void{}, nil
			},
		},
		{
			Name:  "int_to_string",
			Arity: 1,
			Fn: func(args []Value) (Value, error) {
				return String(format(args[0])), nil
			},
		},
	}
	for _, b := range builtins {
		scope.Set(b.Name, b)
	}
	scope.Set("true", Bool(true))
	scope.Set("false", Bool(false))
}
