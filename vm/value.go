package vm

import (
	"fmt"
	"strings"
)

// Value is a runtime value. The sealed interface keeps the VM's switch
// exhaustive.
type Value interface {
	isValue()
}

type Int int64

func (Int) isValue() {}

type Float float64

func (Float) isValue() {}

type String string

func (String) isValue() {}

type Bool bool

func (Bool) isValue() {}

// Void is the unit value produced by statements and void builtins.
type Void struct{}

func (Void) isValue() {}

// Object is a constructed enum value: slot 0 holds the tag, the rest
// hold the constructor's fields.
type Object []Value

func (Object) isValue() {}

func (o Object) Tag() int64 {
	return int64(o[0].(Int))
}

// Closure pairs a compiled function with the scope it captured.
type Closure struct {
	Fn    int
	Scope *Scope
}

func (*Closure) isValue() {}

// Builtin is a native function provided by the runtime.
type Builtin struct {
	Name  string
	Arity int
	Fn    func(args []Value) (Value, error)
}

func (*Builtin) isValue() {}

func truthy(v Value) bool {
	switch v := v.(type) {
	case Int:
		return v != 0
	case Bool:
		return bool(v)
	case Void:
		return false
	}
	return true
}

func format(v Value) string {
	switch v := v.(type) {
	case Int:
		return fmt.Sprintf("%d", int64(v))
	case Float:
		return fmt.Sprintf("%v", float64(v))
	case String:
		return string(v)
	case Bool:
		return fmt.Sprintf("%t", bool(v))
	case Void:
		return "()"
	case Object:
		var b strings.Builder
		fmt.Fprintf(&b, "(%d", v.Tag())
		for _, field := range v[1:] {
			b.WriteByte(' ')
			b.WriteString(format(field))
		}
		b.WriteByte(')')
		return b.String()
	case *Closure:
		return "<closure>"
	case *Builtin:
		return fmt.Sprintf("<builtin %s>", v.Name)
	}
	return "<unknown>"
}

// Scope is one link in the runtime's lexical scope chain.
type Scope struct {
	parent *Scope
	vars   map[string]Value
}

func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, vars: make(map[string]Value)}
}

func (s *Scope) Get(name string) (Value, bool) {
	for p := s; p != nil; p = p.parent {
		if v, ok := p.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (s *Scope) Set(name string, v Value) {
	s.vars[name] = v
}
