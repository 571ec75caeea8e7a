package types

import "testing"

func TestBasicAccepts(t *testing.T) {
	intT := &Basic{Name: "int"}
	otherInt := &Basic{Name: "int"}
	strT := &Basic{Name: "string"}
	env := NewEnv(nil)
	if !intT.Accepts(otherInt, env) {
		t.Error("int should accept int")
	}
	if intT.Accepts(strT, env) {
		t.Error("int should not accept string")
	}
}

func TestGenericAcceptsEverything(t *testing.T) {
	g := &Generic{Name: "T"}
	env := NewEnv(nil)
	for _, other := range []Type{&Basic{Name: "int"}, &Generic{Name: "U"}, &Enum{Name: "e"}} {
		if !g.Accepts(other, env) {
			t.Errorf("generic should accept %s", other)
		}
	}
}

func TestFunctionAccepts(t *testing.T) {
	intT := &Basic{Name: "int"}
	strT := &Basic{Name: "string"}
	env := NewEnv(nil)
	f1 := &Function{Params: []Type{intT}, Return: strT}
	f2 := &Function{Params: []Type{intT}, Return: strT}
	f3 := &Function{Params: []Type{strT}, Return: strT}
	f4 := &Function{Params: []Type{intT, intT}, Return: strT}
	if !f1.Accepts(f2, env) {
		t.Error("structurally equal functions should accept each other")
	}
	if f1.Accepts(f3, env) {
		t.Error("parameter mismatch should be rejected")
	}
	if f1.Accepts(f4, env) {
		t.Error("arity mismatch should be rejected")
	}
}

func TestInstanceAccepts(t *testing.T) {
	intT := &Basic{Name: "int"}
	strT := &Basic{Name: "string"}
	env := NewEnv(nil)
	maybe := &Enum{Name: "maybe", Generics: []string{"T"}}
	other := &Enum{Name: "other", Generics: []string{"T"}}
	mi := &Instance{DataType: maybe, Types: []Type{intT}}
	mi2 := &Instance{DataType: maybe, Types: []Type{intT}}
	ms := &Instance{DataType: maybe, Types: []Type{strT}}
	oi := &Instance{DataType: other, Types: []Type{intT}}
	if !mi.Accepts(mi2, env) {
		t.Error("maybe<int> should accept maybe<int>")
	}
	if mi.Accepts(ms, env) {
		t.Error("maybe<int> should not accept maybe<string>")
	}
	if mi.Accepts(oi, env) {
		t.Error("distinct data types should not accept each other")
	}
	if mi.String() != "maybe<int>" {
		t.Errorf("got %s, want maybe<int>", mi)
	}
}

func TestInterfaceAccepts(t *testing.T) {
	intT := &Basic{Name: "int"}
	strT := &Basic{Name: "string"}
	env := NewEnv(nil)
	iface := &Interface{Name: "show", GenericTypeName: "T"}
	if iface.Accepts(intT, env) {
		t.Error("an interface with no implementations accepts nothing")
	}
	iface.Implementations = append(iface.Implementations, &Implementation{Iface: iface, Type: intT})
	if !iface.Accepts(intT, env) {
		t.Error("show should accept int once implemented")
	}
	if iface.Accepts(strT, env) {
		t.Error("show should not accept string")
	}
}

func TestSimplifyGenericChain(t *testing.T) {
	env := NewEnv(nil)
	intT := &Basic{Name: "int"}
	env.Set("U", intT)
	env.Set("T", &Generic{Name: "U"})
	got := simplify(&Generic{Name: "T"}, env)
	if got != Type(intT) {
		t.Errorf("simplify(T) = %s, want int", got)
	}
}

func TestSimplifyUnboundGeneric(t *testing.T) {
	env := NewEnv(nil)
	g := &Generic{Name: "T"}
	loadGenerics([]string{"T"}, env)
	if got := simplify(g, env); got.String() != "T" {
		t.Errorf("an unbound generic should simplify to itself, got %s", got)
	}
}

func TestSimplifyInstance(t *testing.T) {
	env := NewEnv(nil)
	intT := &Basic{Name: "int"}
	env.Set("T", intT)
	maybe := &Enum{Name: "maybe", Generics: []string{"T"}}
	inst := &Instance{DataType: maybe, Types: []Type{&Generic{Name: "T"}}}
	got := simplify(inst, env)
	if got.String() != "maybe<int>" {
		t.Errorf("simplify(maybe<T>) = %s, want maybe<int>", got)
	}
	// the original instance is left untouched
	if inst.Types[0].String() != "T" {
		t.Errorf("simplify mutated its argument: %s", inst)
	}
}

func TestSimplifyInterface(t *testing.T) {
	env := NewEnv(nil)
	intT := &Basic{Name: "int"}
	iface := &Interface{Name: "show", GenericTypeName: "T"}
	if got := simplify(iface, env); got != Type(iface) {
		t.Errorf("unbound interface should simplify to itself, got %s", got)
	}
	env.Set("T", intT)
	if got := simplify(iface, env); got != Type(intT) {
		t.Errorf("simplify(show) = %s, want int", got)
	}
}

func TestEnumRetType(t *testing.T) {
	env := NewEnv(nil)
	intT := &Basic{Name: "int"}
	maybe := &Enum{Name: "maybe", Generics: []string{"T"}}
	ctor := &Constructor{Function: Function{Name: "Some", Return: maybe, Generics: []string{"T"}}, Tag: 1, Enum: maybe}
	env.Set("T", intT)
	got := enumRetType(&ctor.Function, env)
	if got.String() != "maybe<int>" {
		t.Errorf("enumRetType = %s, want maybe<int>", got)
	}
	plain := &Enum{Name: "color"}
	fn := &Function{Name: "Red", Return: plain}
	if got := enumRetType(fn, env); got != Type(plain) {
		t.Errorf("enumRetType on an unparameterized enum should return it, got %s", got)
	}
}
