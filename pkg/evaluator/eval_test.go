package evaluator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gojslt/pkg/functions"
	"github.com/sandrolain/gojslt/pkg/types"
	"github.com/sandrolain/gojslt/pkg/value"
)

func lit(v value.Value) *Literal { return NewLiteral(v, nil) }

func dot(key string) *Dot { return NewDot(key, nil, nil) }

func mustJSON(t *testing.T, s string) value.Value {
	t.Helper()
	v, err := value.ParseJSONString(s)
	require.NoError(t, err)
	return v
}

func assertJSON(t *testing.T, want string, got value.Value) {
	t.Helper()
	w := mustJSON(t, want)
	assert.True(t, value.Equal(w, got), "want %s, got %s", want, value.String(got))
}

// globalLet builds a let bound to the given global slot.
func globalLet(name string, index int, v Node) (*Let, *Variable) {
	let := NewLet(name, v, nil)
	let.Info = &VariableInfo{Name: name, Slot: Slot{Frame: FrameGlobal, Index: index}, Let: let}
	ref := NewVariable(name, nil)
	ref.Info = let.Info
	return let, ref
}

func TestEvalNodes(t *testing.T) {
	input := `{"a": {"b": [1, 2, 3]}, "s": "héllo", "n": 5}`

	tests := []struct {
		name string
		node Node
		want string
	}{
		{"literal", lit(value.Int(7)), `7`},
		{"nil node", nil, `null`},
		{"dot", dot(""), input},
		{"field", NewDot("n", nil, nil), `5`},
		{"chain", NewDot("b", dot("a"), nil), `[1, 2, 3]`},
		{"field of non-object", NewDot("x", dot("n"), nil), `null`},
		{"index", NewSlice(NewDot("b", dot("a"), nil), lit(value.Int(1)), nil, false, nil), `2`},
		{"negative index", NewSlice(NewDot("b", dot("a"), nil), lit(value.Int(-1)), nil, false, nil), `3`},
		{"index out of range", NewSlice(NewDot("b", dot("a"), nil), lit(value.Int(9)), nil, false, nil), `null`},
		{"slice", NewSlice(NewDot("b", dot("a"), nil), lit(value.Int(1)), nil, true, nil), `[2, 3]`},
		{"clamped slice", NewSlice(NewDot("b", dot("a"), nil), lit(value.Int(-10)), lit(value.Int(10)), true, nil), `[1, 2, 3]`},
		{"empty slice", NewSlice(NewDot("b", dot("a"), nil), lit(value.Int(2)), lit(value.Int(1)), true, nil), `[]`},
		{"string index", NewSlice(dot("s"), lit(value.Int(1)), nil, false, nil), `"é"`},
		{"string slice", NewSlice(dot("s"), lit(value.Int(1)), lit(value.Int(3)), true, nil), `"él"`},
		{"double index", NewSlice(NewDot("b", dot("a"), nil), lit(value.Double(1.9)), nil, false, nil), `2`},
		{"slice of object", NewSlice(dot("a"), lit(value.Int(0)), nil, false, nil), `null`},
		{"binary", NewBinary(OpPlus, dot("n"), lit(value.Int(2)), nil), `7`},
		{"compare", NewBinary(OpLess, dot("n"), lit(value.Double(5.5)), nil), `true`},
		{"pipe", NewPipe(dot("a"), NewDot("b", nil, nil), nil), `[1, 2, 3]`},
		{"and", NewAnd(dot("n"), dot("missing"), nil), `false`},
		{"or", NewOr(dot("missing"), dot("s"), nil), `true`},
		{"if", NewIf(dot("missing"), nil, lit(value.Int(1)), nil, lit(value.Int(2)), nil), `2`},
		{"if without else", NewIf(dot("missing"), nil, lit(value.Int(1)), nil, nil, nil), `null`},
		{"array", NewArrayCons([]Node{dot("n"), dot("missing")}, nil), `[5, null]`},
		{"for", NewArrayFor(NewDot("b", dot("a"), nil), nil, NewBinary(OpMultiply, dot(""), lit(value.Int(10)), nil), nil, nil), `[10, 20, 30]`},
		{"for over null", NewArrayFor(dot("missing"), nil, dot(""), nil, nil), `null`},
		{"for with condition", NewArrayFor(NewDot("b", dot("a"), nil), nil, dot(""), NewBinary(OpGreater, dot(""), lit(value.Int(1)), nil), nil), `[2, 3]`},
		{"for over object", NewArrayFor(dot("a"), nil, dot("key"), nil, nil), `["b"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Eval(tt.node, NewScope(0), mustJSON(t, input))
			require.NoError(t, err)
			assertJSON(t, tt.want, got)
		})
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		name string
		node Node
		code types.ErrorCode
	}{
		{"bad index", NewSlice(lit(value.Array{}), lit(value.Text("x")), nil, false, nil), types.ErrBadIndex},
		{"string index out of range", NewSlice(lit(value.Text("ab")), lit(value.Int(5)), nil, false, nil), types.ErrIndexOutOfRange},
		{"not iterable", NewArrayFor(lit(value.Int(1)), nil, dot(""), nil, nil), types.ErrNotIterable},
		{"compare mismatch", NewBinary(OpLess, lit(value.Int(1)), lit(value.Text("a")), nil), types.ErrCannotCompare},
		{"unresolved variable", NewVariable("x", nil), types.ErrNoSuchVariable},
		{"unresolved call", NewCall("nope", nil, nil), types.ErrNoSuchFunction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Eval(tt.node, NewScope(0), value.Null)
			require.Error(t, err)
			assert.True(t, types.IsCode(err, tt.code), err.Error())
		})
	}
}

func TestErrorLocation(t *testing.T) {
	loc := &types.Location{Source: "t.jslt", Line: 3, Column: 7}
	n := NewBinary(OpDivide, lit(value.Int(1)), lit(value.Int(0)), loc)
	_, err := Eval(n, NewScope(0), value.Null)
	require.Error(t, err)

	var te *types.Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, loc, te.Location)
}

func TestLetsAndVariables(t *testing.T) {
	let, ref := globalLet("x", 0, dot("v"))
	expr := &Expression{Lets: []*Let{let}, Body: NewBinary(OpPlus, ref, ref, nil), FrameSize: 1}

	out, err := expr.Apply(mustJSON(t, `{"v": 21}`))
	require.NoError(t, err)
	assertJSON(t, `42`, out)

	// each evaluation gets a fresh scope
	out, err = expr.Apply(mustJSON(t, `{"v": 1}`))
	require.NoError(t, err)
	assertJSON(t, `2`, out)
}

func TestForLetsPerElement(t *testing.T) {
	let, ref := globalLet("y", 0, NewBinary(OpPlus, dot(""), lit(value.Int(1)), nil))
	loop := NewArrayFor(dot(""), []*Let{let}, ref, nil, nil)

	out, err := Eval(loop, NewScope(1), mustJSON(t, `[1, 2, 3]`))
	require.NoError(t, err)
	assertJSON(t, `[2, 3, 4]`, out)
}

func TestScope(t *testing.T) {
	s := NewScope(2)
	g := Slot{Frame: FrameGlobal, Index: 1}

	_, ok := s.Get(g)
	assert.False(t, ok)
	s.Set(g, value.Int(1))
	v, ok := s.Get(g)
	require.True(t, ok)
	assert.Equal(t, value.Int(1), v)

	l := Slot{Frame: FrameFunction, Index: 0}
	require.NoError(t, s.EnterFunction(1))
	s.Set(l, value.Text("outer"))
	require.NoError(t, s.EnterFunction(1))
	_, ok = s.Get(l)
	assert.False(t, ok, "frames do not share slots")
	s.Set(l, value.Text("inner"))
	assert.Equal(t, 2, s.Depth())
	s.LeaveFunction()

	v, _ = s.Get(l)
	assert.Equal(t, value.Text("outer"), v)
	s.LeaveFunction()
	assert.Equal(t, 0, s.Depth())

	assert.Equal(t, "global[1]", g.String())
	assert.Equal(t, "function[0]", l.String())
}

func TestScopeCallDepth(t *testing.T) {
	s := NewScope(0)
	s.SetMaxCallDepth(2)
	require.NoError(t, s.EnterFunction(0))
	require.NoError(t, s.EnterFunction(0))
	err := s.EnterFunction(0)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCallDepth))

	s.SetMaxCallDepth(0)
	assert.NoError(t, s.EnterFunction(0))
}

func TestMakeScope(t *testing.T) {
	params := map[string]Slot{"a": {Frame: FrameGlobal, Index: 0}}
	s := MakeScope(map[string]value.Value{"a": nil, "unused": value.Int(1)}, 1, params)

	v, ok := s.Get(params["a"])
	require.True(t, ok)
	assert.True(t, value.IsNull(v))
}

func TestFunctionDecl(t *testing.T) {
	// def double(n) $n * 2
	param := &VariableInfo{Name: "n", Slot: Slot{Frame: FrameFunction, Index: 0}}
	ref := NewVariable("n", nil)
	ref.Info = param
	decl := NewFunctionDecl("double", []string{"n"}, nil, NewBinary(OpMultiply, ref, lit(value.Int(2)), nil), nil)
	decl.ParamInfos = []*VariableInfo{param}
	decl.FrameSize = 1

	call := NewCall("double", []Node{dot("x")}, nil)
	require.NoError(t, call.Resolve(decl))
	assert.Same(t, decl, call.Target())

	s := NewScope(0)
	out, err := Eval(call, s, mustJSON(t, `{"x": 4}`))
	require.NoError(t, err)
	assertJSON(t, `8`, out)
	assert.Equal(t, 0, s.Depth())

	err = NewCall("double", nil, nil).Resolve(decl)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrArity))
}

func TestCallNilResult(t *testing.T) {
	f := functions.Define("nothing", 0, 0, func(value.Value, []value.Value) (value.Value, error) {
		return nil, nil
	})
	call := NewCall("nothing", nil, nil)
	require.NoError(t, call.Resolve(f))

	out, err := Eval(call, NewScope(0), value.Null)
	require.NoError(t, err)
	assert.True(t, value.IsNull(out))
}

func TestCallForeignError(t *testing.T) {
	f := functions.Define("boom", 0, 0, func(value.Value, []value.Value) (value.Value, error) {
		return nil, fmt.Errorf("kaput")
	})
	loc := &types.Location{Line: 1, Column: 1}
	call := NewCall("boom", nil, loc)
	require.NoError(t, call.Resolve(f))

	_, err := Eval(call, NewScope(0), value.Null)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrExtensionFailure))
	assert.Contains(t, err.Error(), "kaput")
}

func TestMacroCall(t *testing.T) {
	m, ok := BuiltinMacro("fallback")
	require.True(t, ok)

	mc, err := NewMacroCall("fallback", m, []Node{dot("a"), dot("b"), lit(value.Int(0))}, nil)
	require.NoError(t, err)
	out, err := Eval(mc, NewScope(0), mustJSON(t, `{"a": [], "b": "x"}`))
	require.NoError(t, err)
	assertJSON(t, `"x"`, out)

	_, err = NewMacroCall("fallback", m, []Node{dot("a")}, nil)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrArity))
	assert.Contains(t, err.Error(), "Macro 'fallback'")
}

func TestObjectCons(t *testing.T) {
	pairs := []*Pair{
		NewPair(lit(value.Text("a")), dot("x"), nil),
		NewPair(lit(value.Text("b")), dot("missing"), nil),
	}
	o, err := NewObjectCons(nil, pairs, nil, nil, nil)
	require.NoError(t, err)
	assert.False(t, o.HasDynamicKeys())

	out, err := Eval(o, NewScope(0), mustJSON(t, `{"x": 1}`))
	require.NoError(t, err)
	assertJSON(t, `{"a": 1}`, out)

	o.Filter = AcceptAll
	out, err = Eval(o, NewScope(0), mustJSON(t, `{"x": 1}`))
	require.NoError(t, err)
	assertJSON(t, `{"a": 1, "b": null}`, out)
}

func TestObjectConsErrors(t *testing.T) {
	_, err := NewObjectCons(nil, []*Pair{
		NewPair(lit(value.Text("a")), lit(value.Int(1)), nil),
		NewPair(lit(value.Text("a")), lit(value.Int(2)), nil),
	}, nil, nil, nil)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrDuplicateKey))

	_, err = NewObjectCons(nil, []*Pair{
		NewPair(dot("k"), lit(value.Int(1)), nil),
	}, NewMatcher(nil, dot(""), nil), nil, nil)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrMatcherDynamicKeys))

	o, err := NewObjectCons(nil, []*Pair{
		NewPair(dot("k"), lit(value.Int(1)), nil),
		NewPair(lit(value.Text("a")), lit(value.Int(2)), nil),
	}, nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, o.HasDynamicKeys())

	_, err = Eval(o, NewScope(0), mustJSON(t, `{"k": "a"}`))
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrDuplicateDynamic))

	_, err = Eval(o, NewScope(0), mustJSON(t, `{"k": 1}`))
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrNonStringKey))
}

func TestMatcher(t *testing.T) {
	input := `{"a": 1, "b": 2, "c": null, "d": {"e": 3}}`

	tests := []struct {
		name    string
		minus   []string
		value   Node
		context Node
		want    string
	}{
		{"copy", nil, dot(""), nil, `{"a": 10, "b": 2, "d": {"e": 3}}`},
		{"minus", []string{"b"}, dot(""), nil, `{"a": 10, "d": {"e": 3}}`},
		{"transform", nil, lit(value.True), nil, `{"a": 10, "b": true, "c": true, "d": true}`},
		{"context", nil, dot(""), dot("d"), `{"a": 10, "e": 3}`},
		{"context not an object", nil, dot(""), dot("a"), `{"a": 10}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(tt.minus, tt.value, nil)
			m.Context = tt.context
			o, err := NewObjectCons(nil, []*Pair{NewPair(lit(value.Text("a")), lit(value.Int(10)), nil)}, m, nil, nil)
			require.NoError(t, err)

			out, err := Eval(o, NewScope(0), mustJSON(t, input))
			require.NoError(t, err)
			assertJSON(t, tt.want, out)
		})
	}
}

func TestMatcherKeepsSourceOrder(t *testing.T) {
	o, err := NewObjectCons(nil, []*Pair{NewPair(lit(value.Text("z")), lit(value.Int(0)), nil)},
		NewMatcher(nil, dot(""), nil), nil, nil)
	require.NoError(t, err)

	out, err := Eval(o, NewScope(0), mustJSON(t, `{"c": 1, "a": 2, "b": 3}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "c", "a", "b"}, out.(*value.Object).Keys())
}

func TestObjectFor(t *testing.T) {
	n := NewObjectFor(dot(""), nil, dot("id"), dot("v"), nil, nil, nil)

	out, err := Eval(n, NewScope(0), mustJSON(t, `[{"id": "a", "v": 1}, {"id": "b"}]`))
	require.NoError(t, err)
	assertJSON(t, `{"a": 1}`, out)

	_, err = Eval(n, NewScope(0), mustJSON(t, `[{"id": 1, "v": 1}]`))
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrNonStringKey))

	// a dropped value never evaluates its key
	out, err = Eval(n, NewScope(0), mustJSON(t, `[{"id": 1}]`))
	require.NoError(t, err)
	assertJSON(t, `{}`, out)
}

func TestFilters(t *testing.T) {
	assert.False(t, DefaultFilter.Accept(value.Null))
	assert.False(t, DefaultFilter.Accept(value.Array{}))
	assert.False(t, DefaultFilter.Accept(value.NewObject(0)))
	assert.True(t, DefaultFilter.Accept(value.Int(0)))
	assert.True(t, DefaultFilter.Accept(value.False))
	assert.True(t, AcceptAll.Accept(value.Null))

	f := &ExpressionFilter{Expr: &Expression{Body: NewBinary(OpNotEqual, dot(""), lit(value.Int(0)), nil)}}
	assert.True(t, f.Accept(value.Int(1)))
	assert.False(t, f.Accept(value.Int(0)))

	failing := &ExpressionFilter{Expr: &Expression{Body: NewBinary(OpLess, dot(""), lit(value.Text("a")), nil)}}
	assert.False(t, failing.Accept(value.Int(1)))
}

func TestRegexCache(t *testing.T) {
	rc := NewRegexCache(2)

	re, err := rc.Compile("^a+$")
	require.NoError(t, err)
	again, err := rc.Compile("^a+$")
	require.NoError(t, err)
	assert.Same(t, re, again)

	_, err = rc.Compile("(")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrRegexSyntax))
	assert.Equal(t, 1, rc.Len())

	for _, p := range []string{"b", "c", "d"} {
		_, err := rc.Compile(p)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, rc.Len())
}

func TestRegexCacheConcurrent(t *testing.T) {
	rc := NewRegexCache(16)
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			re, err := rc.Compile(fmt.Sprintf("x%d", i%8))
			assert.NoError(t, err)
			assert.True(t, re.MatchString(fmt.Sprintf("x%d", i%8)))
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, rc.Len())
}

func TestRegexArgument(t *testing.T) {
	for _, name := range []string{"test", "capture", "split", "replace"} {
		f, ok := Builtin(name)
		require.True(t, ok)
		i, ok := RegexArgument(f)
		assert.True(t, ok, name)
		assert.Equal(t, 1, i)
	}
	f, _ := Builtin("size")
	_, ok := RegexArgument(f)
	assert.False(t, ok)
}

func TestBuiltinTables(t *testing.T) {
	names := BuiltinNames()
	assert.Contains(t, names, "fallback")
	assert.Contains(t, names, "parse-url")
	assert.IsIncreasing(t, names)

	c, ok := LookupBuiltin("contains")
	require.True(t, ok)
	assert.True(t, IsBuiltinContains(c))
	assert.False(t, IsBuiltinContains(nil))

	_, ok = LookupBuiltin("nope")
	assert.False(t, ok)
}

func TestStaticContains(t *testing.T) {
	sc := NewStaticContains(value.Array{value.Int(1), value.Text("a"), value.ObjectOf("k", value.Double(2))})

	tests := []struct {
		needle value.Value
		want   bool
	}{
		{value.Int(1), true},
		{value.Double(1.0), true},
		{value.Long(1), true},
		{value.Text("a"), true},
		{value.ObjectOf("k", value.Int(2)), true},
		{value.Text("b"), false},
		{value.Null, false},
	}
	for _, tt := range tests {
		t.Run(value.String(tt.needle), func(t *testing.T) {
			out, err := sc.Call(value.Null, []value.Value{tt.needle, value.Null})
			require.NoError(t, err)
			assert.Equal(t, value.Boolean(tt.want), out)
		})
	}
}

func TestNodeString(t *testing.T) {
	tests := []struct {
		node Node
		want string
	}{
		{NewBinary(OpMultiply, NewBinary(OpPlus, lit(value.Int(1)), lit(value.Int(2)), nil), lit(value.Int(3)), nil), "(1 + 2) * 3"},
		{NewBinary(OpPlus, lit(value.Int(1)), NewBinary(OpMultiply, lit(value.Int(2)), lit(value.Int(3)), nil), nil), "1 + 2 * 3"},
		{NewBinary(OpMinus, lit(value.Int(1)), NewBinary(OpMinus, lit(value.Int(2)), lit(value.Int(3)), nil), nil), "1 - (2 - 3)"},
		{NewDot("b", dot("a"), nil), ".a.b"},
		{dot(""), "."},
		{NewVariable("x", nil), "$x"},
		{NewPipe(dot("a"), dot("b"), nil), ".a | .b"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.node.String())
		})
	}
}

func TestOperatorLookup(t *testing.T) {
	for _, sym := range []string{"==", "!=", "<", "<=", ">", ">=", "+", "-", "*", "/", "%"} {
		op, ok := LookupOperator(sym)
		require.True(t, ok, sym)
		assert.Equal(t, sym, op.String())
	}
	_, ok := LookupOperator("**")
	assert.False(t, ok)
	assert.Equal(t, "?", Operator(99).String())
}

func TestExpressionAccessors(t *testing.T) {
	let, _ := globalLet("x", 0, lit(value.Int(1)))
	decl := NewFunctionDecl("f", nil, nil, lit(value.Int(2)), nil)
	expr := &Expression{
		Lets:       []*Let{let},
		Functions:  map[string]*FunctionDecl{"f": decl},
		Body:       dot("a"),
		FrameSize:  3,
		ParamSlots: map[string]Slot{"zeta": {Index: 1}, "alpha": {Index: 2}},
	}

	assert.Equal(t, []string{"alpha", "zeta"}, expr.Parameters())
	assert.Equal(t, 3, expr.StackFrameSize())
	assert.Equal(t, ".a", expr.String())
	assert.Same(t, decl, expr.Callable("f"))
	assert.Nil(t, expr.Callable("g"))

	dump := expr.Dump()
	assert.True(t, strings.HasSuffix(dump, ".a"), dump)
	assert.Contains(t, dump, "let x = 1")
	assert.Empty(t, (&Expression{}).String())
}

func TestApplyAll(t *testing.T) {
	expr := &Expression{Body: NewBinary(OpMultiply, dot(""), lit(value.Int(2)), nil)}
	inputs := make([]value.Value, 100)
	for i := range inputs {
		inputs[i] = value.Int(i)
	}

	out, err := expr.ApplyAll(context.Background(), inputs, 4)
	require.NoError(t, err)
	require.Len(t, out, len(inputs))
	for i, v := range out {
		assert.Equal(t, value.Int(2*i), v)
	}

	inputs[50] = value.ObjectOf("a", value.Int(1))
	_, err = expr.ApplyAll(context.Background(), inputs, 0)
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = expr.ApplyAll(ctx, inputs[:10], 1)
	assert.ErrorIs(t, err, context.Canceled)
}
