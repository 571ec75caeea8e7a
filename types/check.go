package types

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/verve-lang/verve/ast"
	"github.com/verve-lang/verve/lexer"
)

// Checker walks the AST once, annotating it in place. The iface and
// implSuffix fields carry the construct currently being checked; they
// replace ambient globals so that nothing outlives the pass.
type Checker struct {
	iface      *Interface
	implSuffix string
}

// Check types a whole program. On failure it reports the first error
// to stderr, with the offending source line, and returns it.
func Check(prog *ast.Program, env *Env, l *lexer.Lexer) error {
	return check(prog, env, l, os.Stderr)
}

func check(prog *ast.Program, env *Env, l *lexer.Lexer, w io.Writer) error {
	c := &Checker{}
	if _, err := c.typeOf(prog, env); err != nil {
		if terr, ok := err.(*Error); ok {
			fmt.Fprintf(w, "Type Error: %s\n", terr.Msg)
			l.PrintSource(w, terr.Span)
		}
		return err
	}
	return nil
}

func (c *Checker) typeOf(node ast.Node, env *Env) (Type, error) {
	switch n := node.(type) {
	case *ast.Program:
		t, err := c.typeOf(n.Body, env)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, errf(n.Loc, "Unknown type for program")
		}
		return t, nil

	case *ast.Block:
		t := env.Get("void")
		for _, elem := range n.Nodes {
			var err error
			t, err = c.typeOf(elem, env)
			if err != nil {
				return nil, err
			}
		}
		return t, nil

	case *ast.Number:
		if n.IsFloat {
			return env.Get("float"), nil
		}
		return env.Get("int"), nil

	case *ast.String:
		return env.Get("string"), nil

	case *ast.Identifier:
		t := env.Get(n.Name)
		if t == nil {
			return nil, errf(n.Loc, "Unknown identifier: `%s`", n.Name)
		}
		return t, nil

	case *ast.FunctionParameter:
		t := env.Get(n.Name)
		if t == nil {
			return nil, errf(n.Loc, "Unknown identifier: `%s`", n.Name)
		}
		return t, nil

	case *ast.List:
		return c.typeOfList(n, env)

	case *ast.Let:
		child := env.Scope()
		for _, a := range n.Assignments {
			if _, err := c.typeOf(a, child); err != nil {
				return nil, err
			}
		}
		return c.typeOf(n.Block, child)

	case *ast.Assignment:
		t, err := c.typeOf(n.Value, env)
		if err != nil {
			return nil, err
		}
		switch lhs := n.LHS.(type) {
		case *ast.Pattern:
			lhs.Value = n.Value
			if _, err := c.typeOf(lhs, env); err != nil {
				return nil, err
			}
		case *ast.Identifier:
			env.Set(lhs.Name, t)
		default:
			return nil, errf(n.Loc, "Invalid left-hand side of assignment")
		}
		return t, nil

	case *ast.If:
		if _, err := c.typeOf(n.Cond, env); err != nil {
			return nil, err
		}
		tIf, err := c.typeOf(n.IfBody, env)
		if err != nil {
			return nil, err
		}
		if n.ElseBody == nil {
			return tIf, nil
		}
		tElse, err := c.typeOf(n.ElseBody, env)
		if err != nil {
			return nil, err
		}
		if typeEq(tIf, tElse, env) {
			return tIf, nil
		}
		if typeEq(tElse, tIf, env) {
			return tElse, nil
		}
		return nil, errf(n.Loc, "`if` and `else` branches evaluate to different types")

	case *ast.Match:
		return c.typeOfMatch(n, env)

	case *ast.Case:
		if _, err := c.typeOf(n.Pattern, env); err != nil {
			return nil, err
		}
		return c.typeOf(n.Body, env)

	case *ast.Pattern:
		return c.typeOfPattern(n, env)

	case *ast.UnaryOperation:
		if _, err := c.typeOf(n.Operand, env); err != nil {
			return nil, err
		}
		return env.Get("int"), nil

	case *ast.BinaryOperation:
		intType := env.Get("int")
		for _, side := range []ast.Node{n.LHS, n.RHS} {
			t, err := c.typeOf(side, env)
			if err != nil {
				return nil, err
			}
			if !typeEq(intType, t, env) {
				return nil, errf(side.Span(), "Binary operations only accept `int`, but found `%s`", simplify(t, env))
			}
		}
		return intType, nil

	case *ast.BasicType:
		t := env.Get(n.Name)
		if t == nil {
			return nil, errf(n.Loc, "Unknown type: `%s`", n.Name)
		}
		return t, nil

	case *ast.DataType:
		dt := env.Get(n.Name)
		if dt == nil {
			return nil, errf(n.Loc, "Unknown type: `%s`", n.Name)
		}
		inst := &Instance{DataType: dt}
		for _, pnode := range n.Params {
			pt, err := c.typeOf(pnode, env)
			if err != nil {
				return nil, err
			}
			inst.Types = append(inst.Types, pt)
		}
		return inst, nil

	case *ast.EnumType:
		return c.typeOfEnum(n, env)

	case *ast.Constructor:
		t := env.Get(n.Name)
		ctor, ok := t.(*Constructor)
		if !ok {
			return nil, errf(n.Loc, "Undefined constructor: `%s`", n.Name)
		}
		child := env.Scope()
		n.Tag = ctor.Tag
		n.Size = len(ctor.Params) + 1
		return c.typeCheckArguments(n.Arguments, &ctor.Function, child, n.Loc)

	case *ast.Call:
		return c.typeOfCall(n, env)

	case *ast.FunctionType:
		loadGenerics(n.Generics, env)
		fn := &Function{Generics: n.Generics, Iface: c.iface}
		for _, pnode := range n.Params {
			pt, err := c.typeOf(pnode, env)
			if err != nil {
				return nil, err
			}
			fn.Params = append(fn.Params, pt)
		}
		rt, err := c.typeOf(n.ReturnType, env)
		if err != nil {
			return nil, err
		}
		fn.Return = rt
		return fn, nil

	case *ast.Prototype:
		t, err := c.typeOf(n.Type, env.Scope())
		if err != nil {
			return nil, err
		}
		fn := t.(*Function)
		n.Name += c.implSuffix
		fn.Name = n.Name
		fn.Virtual = n.Virtual
		env.Set(n.Name, fn)
		return fn, nil

	case *ast.Function:
		return c.typeOfFunction(n, env)

	case *ast.Interface:
		return c.typeOfInterface(n, env)

	case *ast.Implementation:
		return c.typeOfImplementation(n, env)
	}
	return nil, errf(node.Span(), "Unknown type for node %T", node)
}

func (c *Checker) typeOfList(n *ast.List, env *Env) (Type, error) {
	var elem Type
	for _, item := range n.Items {
		ti, err := c.typeOf(item, env)
		if err != nil {
			return nil, err
		}
		switch {
		case elem == nil:
			elem = ti
		case typeEq(ti, elem, env), typeEq(elem, ti, env):
		default:
			return nil, errf(item.Span(), "Lists can't have mixed types: `%s` and `%s`", simplify(elem, env), simplify(ti, env))
		}
	}
	if elem == nil {
		elem = &Generic{Name: "T"}
	}
	return &Instance{DataType: env.Get("list"), Types: []Type{elem}}, nil
}

func (c *Checker) typeOfMatch(n *ast.Match, env *Env) (Type, error) {
	if len(n.Cases) == 0 {
		return nil, errf(n.Loc, "Cannot have `match` expression with no cases")
	}
	if _, err := c.typeOf(n.Value, env); err != nil {
		return nil, err
	}
	var t Type
	for _, cs := range n.Cases {
		cs.Pattern.Value = n.Value
		caseEnv := env.Scope()
		ti, err := c.typeOf(cs, caseEnv)
		if err != nil {
			return nil, err
		}
		switch {
		case t == nil:
			t = ti
		case typeEq(ti, t, caseEnv), typeEq(t, ti, caseEnv):
		default:
			return nil, errf(cs.Loc, "Match can't have mixed types on its cases: `%s` and `%s`", simplify(t, env), simplify(ti, caseEnv))
		}
	}
	return t, nil
}

func (c *Checker) typeOfPattern(n *ast.Pattern, env *Env) (Type, error) {
	t := env.Get(n.Name)
	ctor, ok := t.(*Constructor)
	if !ok {
		return nil, errf(n.Loc, "Unknown constructor `%s` on pattern match", n.Name)
	}
	if len(ctor.Params) != len(n.Values) {
		return nil, errf(n.Loc, "Wrong number of arguments for constructor `%s` on pattern match", n.Name)
	}
	valueType, err := c.typeOf(n.Value, env)
	if err != nil {
		return nil, err
	}
	child := env.Scope()
	if vt, ok := valueType.(*Instance); ok {
		for i := 0; i < len(ctor.Generics) && i < len(vt.Types); i++ {
			child.Set(ctor.Generics[i], vt.Types[i])
		}
	}
	rt := enumRetType(&ctor.Function, child)
	if !typeEq(valueType, rt, child) {
		return nil, errf(n.Loc, "Trying to pattern match value of type `%s` with constructor `%s`", simplify(valueType, env), ctor)
	}
	n.Tag = ctor.Tag
	for i, v := range n.Values {
		env.Set(v.Name, simplify(ctor.Params[i], child))
	}
	return ctor, nil
}

func (c *Checker) typeOfEnum(n *ast.EnumType, env *Env) (Type, error) {
	e := &Enum{Name: n.Name, Generics: n.Generics}
	env.Set(n.Name, e)
	child := env.Scope()
	loadGenerics(n.Generics, child)
	for i, cd := range n.Constructors {
		ctor := &Constructor{
			Function: Function{Name: cd.Name, Return: e, Generics: n.Generics},
			Tag:      i,
			Enum:     e,
		}
		for _, tnode := range cd.Types {
			tt, err := c.typeOf(tnode, child)
			if err != nil {
				return nil, err
			}
			ctor.Params = append(ctor.Params, tt)
		}
		e.Constructors = append(e.Constructors, ctor)
		env.Set(cd.Name, ctor)
	}
	return e, nil
}

// typeCheckArguments checks a call's arguments against a function
// type, inferring generic bindings into env as they are observed, and
// returns the instantiated return type.
func (c *Checker) typeCheckArguments(args []ast.Node, fn *Function, env *Env, span lexer.Span) (Type, error) {
	if len(args) != len(fn.Params) {
		return nil, errf(span, "Wrong number of arguments for function call")
	}
	loadGenerics(fn.Generics, env)
	for i, arg := range args {
		expected := fn.Params[i]
		actual, err := c.typeOf(arg, env)
		if err != nil {
			return nil, err
		}
		if actual == nil {
			return nil, errf(arg.Span(), "Can't find type information for call argument #%d", i+1)
		}
		exp := simplify(expected, env)
		if !typeEq(expected, actual, env) {
			return nil, errf(arg.Span(), "Expected `%s` but got `%s` on arg #%d for function `%s`", exp, simplify(actual, env), i+1, fn.Name)
		}
		// Record what an unresolved parameter was matched against, so
		// later arguments and the return type see the same binding.
		switch exp := exp.(type) {
		case *Generic:
			if slices.Contains(fn.Generics, exp.Name) {
				if _, unresolved := env.Get(exp.Name).(*Generic); unresolved {
					env.Set(exp.Name, actual)
				}
			}
		case *Interface:
			if cur := env.Get(exp.GenericTypeName); cur == nil || isUnresolved(cur) {
				env.Set(exp.GenericTypeName, actual)
			}
		}
	}
	return enumRetType(fn, env), nil
}

func (c *Checker) typeOfCall(n *ast.Call, env *Env) (Type, error) {
	child := env.Scope()
	calleeType, err := c.typeOf(n.Callee, env)
	if err != nil {
		return nil, err
	}
	fn := asFunction(calleeType)
	if fn == nil {
		return nil, errf(n.Loc, "Can't find type information for function call")
	}
	ret, err := c.typeCheckArguments(n.Arguments, fn, child, n.Loc)
	if err != nil {
		return nil, err
	}
	if fn.Iface != nil {
		if ident, ok := n.Callee.(*ast.Identifier); ok {
			if ct := child.Get(fn.Iface.GenericTypeName); ct != nil && !isUnresolved(ct) {
				mangled := ident.Name + "$" + ct.String()
				if env.Get(mangled) != nil {
					ident.Name = mangled
				}
			}
		}
	}
	return ret, nil
}

func (c *Checker) typeOfFunction(n *ast.Function, env *Env) (Type, error) {
	child := env.Scope()
	var t Type
	if n.Type != nil {
		tt, err := c.typeOf(n.Type, child)
		if err != nil {
			return nil, err
		}
		t = tt
		asFunction(t).Name = n.Name
		// Inside an impl block only the mangled name may escape; the
		// plain name would shadow the interface's own binding.
		if c.implSuffix == "" {
			env.Set(n.Name, t)
		} else {
			child.Set(n.Name, t)
		}
	} else {
		t = env.Get(n.Name)
		if t == nil {
			return nil, errf(n.Loc, "Unknown identifier: `%s`", n.Name)
		}
		child.Set(n.Name, t)
	}
	n.Name += c.implSuffix
	env.Set(n.Name, t)

	fn := asFunction(t)
	if fn == nil {
		return nil, errf(n.Loc, "Can't find type information for function call")
	}
	if len(n.Parameters) != len(fn.Params) {
		return nil, errf(n.Loc, "Wrong number of parameters for function `%s`", n.Name)
	}
	for i, param := range n.Parameters {
		param.Index = i
		child.Set(param.Name, fn.Params[i])
	}
	bodyType, err := c.typeOf(n.Body, child)
	if err != nil {
		return nil, err
	}
	if !typeEq(fn.Return, bodyType, child) {
		return nil, errf(n.Loc, "Invalid return type for function: expected `%s` but got `%s`", simplify(fn.Return, child), simplify(bodyType, child))
	}
	return t, nil
}

func (c *Checker) typeOfInterface(n *ast.Interface, env *Env) (Type, error) {
	iface := &Interface{
		Name:              n.Name,
		GenericTypeName:   n.GenericTypeName,
		VirtualFunctions:  slices.Clone(n.VirtualFunctions),
		ConcreteFunctions: slices.Clone(n.ConcreteFunctions),
	}
	env.Set(n.Name, iface)
	genericEnv := env.Scope()
	genericEnv.Set(n.GenericTypeName, iface)
	bodyEnv := genericEnv.Scope()

	saved := c.iface
	c.iface = iface
	_, err := c.typeOf(n.Block, bodyEnv)
	c.iface = saved
	if err != nil {
		return nil, err
	}
	exportLocals(bodyEnv, env)
	return env.Get("void"), nil
}

func (c *Checker) typeOfImplementation(n *ast.Implementation, env *Env) (Type, error) {
	iface, ok := env.Get(n.InterfaceName).(*Interface)
	if !ok {
		return nil, errf(n.Loc, "Unknown interface: `%s`", n.InterfaceName)
	}
	concrete, err := c.typeOf(n.Type, env)
	if err != nil {
		return nil, err
	}
	iface.Implementations = append(iface.Implementations, &Implementation{Iface: iface, Type: concrete})

	genericEnv := env.Scope()
	genericEnv.Set(iface.GenericTypeName, concrete)
	bodyEnv := genericEnv.Scope()

	saved := c.implSuffix
	c.implSuffix = "$" + concrete.String()
	defer func() { c.implSuffix = saved }()

	remaining := slices.Clone(iface.VirtualFunctions)
	for _, node := range n.Block.Nodes {
		var name string
		switch fn := node.(type) {
		case *ast.Function:
			name = fn.Name
		case *ast.Prototype:
			name = fn.Name
		default:
			return nil, errf(node.Span(), "Unknown type for node %T", node)
		}
		if i := slices.Index(remaining, name); i >= 0 {
			remaining = slices.Delete(remaining, i, i+1)
		} else if !slices.Contains(iface.ConcreteFunctions, name) {
			return nil, errf(node.Span(), "Defining function `%s` inside implementation `%s`, but it's not part of the interface", name, iface.Name)
		}
		if _, err := c.typeOf(node, bodyEnv); err != nil {
			return nil, err
		}
	}
	if len(remaining) > 0 {
		var b strings.Builder
		for i, name := range remaining {
			fmt.Fprintf(&b, " %d) %s", i+1, name)
		}
		return nil, errf(n.Loc, "Implementation `%s` does not implement the following virtual functions:%s", iface.Name, b.String())
	}
	exportLocals(bodyEnv, env)
	return env.Get("void"), nil
}

// exportLocals copies the bindings made directly in from up into to,
// in a deterministic order.
func exportLocals(from, to *Env) {
	names := maps.Keys(from.Locals())
	slices.Sort(names)
	for _, name := range names {
		to.Set(name, from.Locals()[name])
	}
}
