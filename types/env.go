package types

// Env is one scope in the lexically nested name table. Inner scopes
// shadow outer ones; Get walks the parent chain, Set always binds in
// the receiver.
type Env struct {
	parent  *Env
	symbols map[string]Type
}

func NewEnv(parent *Env) *Env {
	return &Env{
		parent:  parent,
		symbols: make(map[string]Type),
	}
}

// Scope returns a fresh child scope of e.
func (e *Env) Scope() *Env {
	return NewEnv(e)
}

// Get returns the nearest binding for name, or nil.
func (e *Env) Get(name string) Type {
	for p := e; p != nil; p = p.parent {
		if t, ok := p.symbols[name]; ok {
			return t
		}
	}
	return nil
}

func (e *Env) Set(name string, t Type) {
	e.symbols[name] = t
}

// Locals returns only the bindings made directly in this scope, for
// the export-to-parent steps of interface and impl checking.
func (e *Env) Locals() map[string]Type {
	return e.symbols
}

// Universe builds the initial scope: the primitive types, the
// parameterized list type, and the boolean constants.
func Universe() *Env {
	env := NewEnv(nil)
	for _, name := range []string{"int", "float", "string", "void", "bool"} {
		env.Set(name, &Basic{Name: name})
	}
	env.Set("list", &Enum{Name: "list", Generics: []string{"T"}})
	env.Set("true", env.Get("bool"))
	env.Set("false", env.Get("bool"))
	return env
}
