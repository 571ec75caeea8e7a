package types

import (
	"fmt"
	"strings"
)

// Type is the interface shared by every type term. Accepts reports
// whether a value of type other can be used where the receiver is
// expected; call it on simplified terms (see typeEq).
type Type interface {
	Accepts(other Type, env *Env) bool
	String() string
}

var (
	_ Type = (*Basic)(nil)
	_ Type = (*Generic)(nil)
	_ Type = (*Function)(nil)
	_ Type = (*Enum)(nil)
	_ Type = (*Constructor)(nil)
	_ Type = (*Instance)(nil)
	_ Type = (*Interface)(nil)
	_ Type = (*Implementation)(nil)
)

// Basic is a named primitive such as int, float, string, void or bool.
type Basic struct {
	Name string
}

func (t *Basic) Accepts(other Type, env *Env) bool {
	o, ok := other.(*Basic)
	return ok && o.Name == t.Name
}

func (t *Basic) String() string { return t.Name }

// Generic is a not-yet-resolved type parameter. It accepts anything;
// resolution happens through environment bindings, not through the
// predicate.
type Generic struct {
	Name string
}

func (t *Generic) Accepts(other Type, env *Env) bool { return true }

func (t *Generic) String() string { return t.Name }

type Function struct {
	Name     string
	Params   []Type
	Return   Type
	Generics []string
	Iface    *Interface
	Virtual  bool
}

func (t *Function) Accepts(other Type, env *Env) bool {
	o, ok := other.(*Function)
	if !ok {
		if c, ok := other.(*Constructor); ok {
			o = &c.Function
		} else {
			return false
		}
	}
	if len(o.Params) != len(t.Params) {
		return false
	}
	for i := range t.Params {
		if !t.Params[i].Accepts(o.Params[i], env) {
			return false
		}
	}
	return t.Return.Accepts(o.Return, env)
}

func (t *Function) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range t.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	fmt.Fprintf(&b, ") -> %s", t.Return)
	return b.String()
}

// Enum is a tagged sum type. An unparameterized enum is used directly
// as a value type; a parameterized one is applied through Instance.
type Enum struct {
	Name         string
	Generics     []string
	Constructors []*Constructor
}

func (t *Enum) Accepts(other Type, env *Env) bool {
	if other == Type(t) {
		return true
	}
	if o, ok := other.(*Instance); ok {
		return o.DataType == Type(t)
	}
	return false
}

func (t *Enum) String() string { return t.Name }

// Constructor is one case of an enum. It doubles as a function from
// its field types to the enum, so argument checking reuses the
// function path.
type Constructor struct {
	Function
	Tag  int
	Enum *Enum
}

func (t *Constructor) String() string { return t.Name }

// Instance is a concrete application of a parameterized data type,
// e.g. maybe<int> or list<string>.
type Instance struct {
	DataType Type
	Types    []Type
}

func (t *Instance) Accepts(other Type, env *Env) bool {
	o, ok := other.(*Instance)
	if !ok || o.DataType != t.DataType || len(o.Types) != len(t.Types) {
		return false
	}
	for i := range t.Types {
		if !t.Types[i].Accepts(o.Types[i], env) {
			return false
		}
	}
	return true
}

func (t *Instance) String() string {
	var b strings.Builder
	b.WriteString(t.DataType.String())
	b.WriteByte('<')
	for i, arg := range t.Types {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg.String())
	}
	b.WriteByte('>')
	return b.String()
}

// Interface is a named collection of method signatures parameterized
// by a single type variable.
type Interface struct {
	Name              string
	GenericTypeName   string
	VirtualFunctions  []string
	ConcreteFunctions []string
	Implementations   []*Implementation
}

// Accepts holds when some implementation covers the other type. When
// the interface's type variable is already bound in env the simplify
// step resolves the receiver away before this is consulted.
func (t *Interface) Accepts(other Type, env *Env) bool {
	if other == Type(t) {
		return true
	}
	for _, impl := range t.Implementations {
		if impl.Type.Accepts(other, env) {
			return true
		}
	}
	return false
}

func (t *Interface) String() string { return t.Name }

// Implementation binds an interface to one concrete type.
type Implementation struct {
	Iface *Interface
	Type  Type
}

func (t *Implementation) Accepts(other Type, env *Env) bool {
	return t.Type.Accepts(other, env)
}

func (t *Implementation) String() string {
	return fmt.Sprintf("%s<%s>", t.Iface.Name, t.Type)
}

// asFunction views a callable type as a plain function.
func asFunction(t Type) *Function {
	switch t := t.(type) {
	case *Function:
		return t
	case *Constructor:
		return &t.Function
	}
	return nil
}

// isUnresolved reports whether a term still stands for an unknown
// type: a generic parameter or an interface term. Any interface term
// counts; its variable's binding is not consulted here (simplify leaves
// an interface in place only while that variable is unbound).
func isUnresolved(t Type) bool {
	switch t.(type) {
	case *Generic, *Interface:
		return true
	}
	return false
}
