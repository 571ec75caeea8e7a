package types

// loadGenerics seeds env with a fresh unresolved binding for each
// generic parameter name. Done on entry to any scope that introduces
// generics: function calls, function definitions, enum bodies.
func loadGenerics(names []string, env *Env) {
	for _, name := range names {
		env.Set(name, &Generic{Name: name})
	}
}

// simplify substitutes resolved generics through the scope chain. A
// generic bound to itself (or to nothing) is left as is.
func simplify(t Type, env *Env) Type {
	switch t := t.(type) {
	case *Generic:
		u := env.Get(t.Name)
		if u == nil || u == Type(t) {
			return t
		}
		if g, ok := u.(*Generic); ok && g.Name == t.Name {
			return t
		}
		return simplify(u, env)
	case *Instance:
		out := &Instance{DataType: simplify(t.DataType, env)}
		for _, arg := range t.Types {
			out.Types = append(out.Types, simplify(arg, env))
		}
		return out
	case *Interface:
		u := env.Get(t.GenericTypeName)
		if u == nil || u == Type(t) || isUnresolved(u) {
			return t
		}
		return simplify(u, env)
	}
	return t
}

// typeEq is the assignability check used everywhere: both sides are
// simplified against env, then expected's Accepts decides.
func typeEq(expected, actual Type, env *Env) bool {
	return simplify(expected, env).Accepts(simplify(actual, env), env)
}

// enumRetType instantiates a function's return type. A parameterized
// enum return becomes a concrete Instance built from the current
// generic bindings; anything else is just simplified.
func enumRetType(fn *Function, env *Env) Type {
	if e, ok := fn.Return.(*Enum); ok && len(e.Generics) > 0 {
		inst := &Instance{DataType: e}
		for _, g := range e.Generics {
			arg := env.Get(g)
			if arg == nil {
				arg = &Generic{Name: g}
			}
			inst.Types = append(inst.Types, arg)
		}
		return inst
	}
	return simplify(fn.Return, env)
}
