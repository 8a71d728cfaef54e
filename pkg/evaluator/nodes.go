package evaluator

import (
	"github.com/sandrolain/gojslt/pkg/functions"
	"github.com/sandrolain/gojslt/pkg/types"
	"github.com/sandrolain/gojslt/pkg/value"
)

// Node is a node of a compiled expression graph.
//
// The set of node types is closed: only the types declared in this file
// implement Node, and Eval dispatches over all of them in a single switch.
type Node interface {
	// Location returns where the node was declared, or nil.
	Location() *types.Location
	// String renders the node back to template syntax.
	String() string
	node()
}

type base struct {
	loc *types.Location
}

func (b base) Location() *types.Location { return b.loc }
func (base) node()                       {}

// at builds the embedded position of a node.
func at(loc *types.Location) base { return base{loc: loc} }

// Literal is a constant value.
type Literal struct {
	base
	Value value.Value
}

// NewLiteral creates a literal node.
func NewLiteral(v value.Value, loc *types.Location) *Literal {
	return &Literal{base: at(loc), Value: value.OrNull(v)}
}

// Dot looks up Key in the value of Parent, or in the input when Parent is
// nil. An empty Key denotes the input itself.
type Dot struct {
	base
	Key    string
	Parent Node
}

// NewDot creates a dot node.
func NewDot(key string, parent Node, loc *types.Location) *Dot {
	return &Dot{base: at(loc), Key: key, Parent: parent}
}

// Slice indexes or slices the array or string produced by Parent.
// Left and Right may be nil. Without Colon the node is a plain index.
type Slice struct {
	base
	Parent Node
	Left   Node
	Right  Node
	Colon  bool
}

// NewSlice creates a slice node.
func NewSlice(parent, left, right Node, colon bool, loc *types.Location) *Slice {
	return &Slice{base: at(loc), Parent: parent, Left: left, Right: right, Colon: colon}
}

// ArrayCons builds an array from its element expressions.
type ArrayCons struct {
	base
	Elements []Node
}

// NewArrayCons creates an array constructor.
func NewArrayCons(elements []Node, loc *types.Location) *ArrayCons {
	return &ArrayCons{base: at(loc), Elements: elements}
}

// ArrayFor is an array comprehension: [for (Seq) Lets Body if (Cond)].
type ArrayFor struct {
	base
	Seq  Node
	Lets []*Let
	Body Node
	Cond Node
}

// NewArrayFor creates an array comprehension.
func NewArrayFor(seq Node, lets []*Let, body, cond Node, loc *types.Location) *ArrayFor {
	return &ArrayFor{base: at(loc), Seq: seq, Lets: lets, Body: body, Cond: cond}
}

// ObjectFor is an object comprehension: {for (Seq) Lets Key : Value if (Cond)}.
type ObjectFor struct {
	base
	Seq    Node
	Lets   []*Let
	Key    Node
	Value  Node
	Cond   Node
	Filter ObjectFilter
}

// NewObjectFor creates an object comprehension.
func NewObjectFor(seq Node, lets []*Let, key, val, cond Node, filter ObjectFilter, loc *types.Location) *ObjectFor {
	return &ObjectFor{base: at(loc), Seq: seq, Lets: lets, Key: key, Value: val, Cond: cond, Filter: filter}
}

// If is a conditional with optional lets on each branch.
type If struct {
	base
	Test     Node
	Lets     []*Let
	Then     Node
	ElseLets []*Let
	Else     Node
}

// NewIf creates a conditional node. orElse may be nil.
func NewIf(test Node, lets []*Let, then Node, elseLets []*Let, orElse Node, loc *types.Location) *If {
	return &If{base: at(loc), Test: test, Lets: lets, Then: then, ElseLets: elseLets, Else: orElse}
}

// Pipe evaluates Right with the value of Left as input.
type Pipe struct {
	base
	Left, Right Node
}

// NewPipe creates a pipe node.
func NewPipe(left, right Node, loc *types.Location) *Pipe {
	return &Pipe{base: at(loc), Left: left, Right: right}
}

// And is the short-circuit logical conjunction.
type And struct {
	base
	Left, Right Node
}

// NewAnd creates an and node.
func NewAnd(left, right Node, loc *types.Location) *And {
	return &And{base: at(loc), Left: left, Right: right}
}

// Or is the short-circuit logical disjunction.
type Or struct {
	base
	Left, Right Node
}

// NewOr creates an or node.
func NewOr(left, right Node, loc *types.Location) *Or {
	return &Or{base: at(loc), Left: left, Right: right}
}

// Operator identifies a binary operator.
type Operator uint8

// Binary operators.
const (
	OpEqual Operator = iota
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpPlus
	OpMinus
	OpMultiply
	OpDivide
	OpModulo
)

var operatorSymbols = [...]string{
	OpEqual:        "==",
	OpNotEqual:     "!=",
	OpLess:         "<",
	OpLessEqual:    "<=",
	OpGreater:      ">",
	OpGreaterEqual: ">=",
	OpPlus:         "+",
	OpMinus:        "-",
	OpMultiply:     "*",
	OpDivide:       "/",
	OpModulo:       "%",
}

// String returns the operator symbol.
func (op Operator) String() string {
	if int(op) < len(operatorSymbols) {
		return operatorSymbols[op]
	}
	return "?"
}

// LookupOperator returns the operator for a symbol.
func LookupOperator(symbol string) (Operator, bool) {
	for op, s := range operatorSymbols {
		if s == symbol {
			return Operator(op), true
		}
	}
	return 0, false
}

// Binary applies a comparison or arithmetic operator.
type Binary struct {
	base
	Op          Operator
	Left, Right Node
}

// NewBinary creates an operator node.
func NewBinary(op Operator, left, right Node, loc *types.Location) *Binary {
	return &Binary{base: at(loc), Op: op, Left: left, Right: right}
}

// ScopedFunction is a callable whose body runs inside the evaluation scope:
// declared functions and imported modules used as functions.
type ScopedFunction interface {
	functions.Callable
	CallScoped(s *Scope, input value.Value, args []value.Value) (value.Value, error)
}

// Call invokes a function with evaluated arguments. The target is bound by
// Resolve once the callee is known.
type Call struct {
	base
	Name     string
	Args     []Node
	Function functions.Function
	Scoped   ScopedFunction
}

// NewCall creates an unresolved call.
func NewCall(name string, args []Node, loc *types.Location) *Call {
	return &Call{base: at(loc), Name: name, Args: args}
}

// Resolve binds the call to its target and checks the argument count.
func (c *Call) Resolve(target functions.Callable) error {
	if err := checkArity("Function", target, len(c.Args), c.loc); err != nil {
		return err
	}
	switch t := target.(type) {
	case ScopedFunction:
		c.Scoped, c.Function = t, nil
	case functions.Function:
		c.Function, c.Scoped = t, nil
	default:
		return types.Errorf(types.ErrNoSuchFunction, c.loc, "'%s' is not a function", target.Name())
	}
	return nil
}

// Target returns the bound callable, or nil before resolution.
func (c *Call) Target() functions.Callable {
	if c.Scoped != nil {
		return c.Scoped
	}
	if c.Function != nil {
		return c.Function
	}
	return nil
}

// MacroCall invokes a macro with unevaluated arguments.
type MacroCall struct {
	base
	Name  string
	Macro Macro
	Args  []Node
}

// NewMacroCall creates a macro call and checks its argument count.
func NewMacroCall(name string, m Macro, args []Node, loc *types.Location) (*MacroCall, error) {
	if err := checkArity("Macro", m, len(args), loc); err != nil {
		return nil, err
	}
	return &MacroCall{base: at(loc), Name: name, Macro: m, Args: args}, nil
}

func checkArity(kind string, c functions.Callable, n int, loc *types.Location) error {
	if n < c.MinArguments() || n > c.MaxArguments() {
		return types.Errorf(types.ErrArity, loc, "%s '%s' needs %d-%d arguments, got %d",
			kind, c.Name(), c.MinArguments(), c.MaxArguments(), n)
	}
	return nil
}

// Variable reads a variable from its slot.
type Variable struct {
	base
	Name string
	Info *VariableInfo
}

// NewVariable creates an unresolved variable reference.
func NewVariable(name string, loc *types.Location) *Variable {
	return &Variable{base: at(loc), Name: name}
}

// Let binds the value of an expression to a variable slot.
type Let struct {
	Name  string
	Value Node
	Info  *VariableInfo
	Loc   *types.Location
}

// NewLet creates a let binding.
func NewLet(name string, v Node, loc *types.Location) *Let {
	return &Let{Name: name, Value: v, Loc: loc}
}

// VariableInfo describes a declared variable or parameter.
type VariableInfo struct {
	Name   string
	Slot   Slot
	Usages int
	// Let is the declaring let, nil for parameters.
	Let *Let
	Loc *types.Location
}

// Declaration returns the expression computing the variable, or nil for
// parameters.
func (vi *VariableInfo) Declaration() Node {
	if vi == nil || vi.Let == nil {
		return nil
	}
	return vi.Let.Value
}

// Pair is one "key" : value entry of an object constructor.
type Pair struct {
	Key   Node
	Value Node
	Loc   *types.Location
}

// NewPair creates an object pair.
func NewPair(key, val Node, loc *types.Location) *Pair {
	return &Pair{Key: key, Value: val, Loc: loc}
}

// StaticKey returns the key when it is a string literal.
func (p *Pair) StaticKey() (string, bool) {
	if lit, ok := p.Key.(*Literal); ok {
		if s, ok := lit.Value.(value.Text); ok {
			return string(s), true
		}
	}
	return "", false
}

// Matcher is the `* - minus : value` clause of an object constructor.
type Matcher struct {
	Minus []string
	Value Node
	// Context finds the object whose remaining fields are copied. It is
	// computed statically by the compiler; nil means the current input.
	Context Node
	Loc     *types.Location
}

// NewMatcher creates a matcher clause.
func NewMatcher(minus []string, val Node, loc *types.Location) *Matcher {
	return &Matcher{Minus: minus, Value: val, Loc: loc}
}

// ObjectCons builds an object from its pairs and optional matcher.
type ObjectCons struct {
	base
	Lets    []*Let
	Pairs   []*Pair
	Matcher *Matcher
	Filter  ObjectFilter

	keys    map[string]struct{} // static keys and matcher exclusions
	dynamic bool
}

// NewObjectCons creates an object constructor. Duplicate static keys and a
// matcher combined with computed keys are rejected.
func NewObjectCons(lets []*Let, pairs []*Pair, matcher *Matcher, filter ObjectFilter, loc *types.Location) (*ObjectCons, error) {
	o := &ObjectCons{
		base:    at(loc),
		Lets:    lets,
		Pairs:   pairs,
		Matcher: matcher,
		Filter:  filter,
		keys:    make(map[string]struct{}, len(pairs)),
	}
	for _, p := range pairs {
		if _, ok := p.StaticKey(); !ok {
			o.dynamic = true
			if matcher != nil {
				return nil, types.Errorf(types.ErrMatcherDynamicKeys, loc,
					"Object matcher not allowed in objects which have dynamic keys")
			}
		}
	}
	if !o.dynamic {
		for _, p := range pairs {
			key, _ := p.StaticKey()
			if _, dup := o.keys[key]; dup {
				return nil, types.Errorf(types.ErrDuplicateKey, p.Loc,
					"Invalid object declaration, duplicate key '%s'", key)
			}
			o.keys[key] = struct{}{}
		}
	}
	if matcher != nil {
		for _, m := range matcher.Minus {
			o.keys[m] = struct{}{}
		}
	}
	return o, nil
}

// HasDynamicKeys reports whether some key is computed at run time.
func (o *ObjectCons) HasDynamicKeys() bool { return o.dynamic }
