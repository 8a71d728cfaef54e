// Package compiler turns template source into an executable
// *evaluator.Expression.
//
// Compilation runs in passes over one compilation unit (the template, or an
// imported module): imports are compiled first, then lets, declared
// functions and the body are lowered from the syntax tree into expression
// graph nodes. Calls are resolved once every declaration of the unit is
// known. A separate pass computes the context object of every object
// matcher, then variables are given slots and the graph is optimized.
//
// # Example
//
//	expr, err := compiler.Compile(`{"id": .id, * : .}`,
//	    compiler.WithSource("user.jslt"),
//	    compiler.WithFunctions(myFunctions...),
//	)
package compiler

import (
	"log/slog"

	"github.com/sandrolain/gojslt/pkg/evaluator"
	"github.com/sandrolain/gojslt/pkg/ext/experimental"
	"github.com/sandrolain/gojslt/pkg/functions"
	"github.com/sandrolain/gojslt/pkg/parser"
	"github.com/sandrolain/gojslt/pkg/resolver"
	"github.com/sandrolain/gojslt/pkg/types"
)

// DefaultMaxDepth limits syntactic nesting of templates.
const DefaultMaxDepth = 1000

// Options configures compilation.
type Options struct {
	// Source names the template in error locations.
	Source string
	// Functions are extension functions callable without a prefix. They take
	// precedence over builtins of the same name.
	Functions []functions.Function
	// NamedModules are modules importable by name without the resolver.
	NamedModules map[string]functions.Module
	// Resolver loads imported template modules.
	Resolver resolver.ResourceResolver
	// ObjectFilter decides which pairs are kept when objects are built.
	ObjectFilter evaluator.ObjectFilter
	// FilterExpression is a template used as the object filter when
	// ObjectFilter is nil.
	FilterExpression string
	// Logger receives debug events from compilation and evaluation.
	Logger *slog.Logger
	// MaxCallDepth bounds nested function calls during evaluation.
	MaxCallDepth int
	// MaxDepth bounds syntactic nesting.
	MaxDepth int
	// DisableOptimizer skips the optimizer pass.
	DisableOptimizer bool
}

// Option configures compilation.
type Option func(*Options)

// WithSource sets the name reported in error locations.
func WithSource(name string) Option {
	return func(o *Options) {
		o.Source = name
	}
}

// WithFunctions adds extension functions.
func WithFunctions(fns ...functions.Function) Option {
	return func(o *Options) {
		o.Functions = append(o.Functions, fns...)
	}
}

// WithNamedModule makes a module importable as `import "name" as prefix`.
func WithNamedModule(name string, m functions.Module) Option {
	return func(o *Options) {
		if o.NamedModules == nil {
			o.NamedModules = make(map[string]functions.Module)
		}
		o.NamedModules[name] = m
	}
}

// WithResourceResolver sets how imported template files are found.
func WithResourceResolver(r resolver.ResourceResolver) Option {
	return func(o *Options) {
		o.Resolver = r
	}
}

// WithObjectFilter sets the object filter.
func WithObjectFilter(f evaluator.ObjectFilter) Option {
	return func(o *Options) {
		o.ObjectFilter = f
	}
}

// WithObjectFilterExpression sets a template as the object filter: a pair
// is kept when the template, applied to its value, yields a true value.
func WithObjectFilterExpression(src string) Option {
	return func(o *Options) {
		o.FilterExpression = src
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithMaxCallDepth bounds nested function calls during evaluation.
func WithMaxCallDepth(n int) Option {
	return func(o *Options) {
		o.MaxCallDepth = n
	}
}

// WithMaxDepth bounds syntactic nesting of the template.
func WithMaxDepth(n int) Option {
	return func(o *Options) {
		o.MaxDepth = n
	}
}

// WithoutOptimizer compiles the graph as written, without constant folding
// or call rebinding. Literal regular expressions are then checked at run
// time only.
func WithoutOptimizer() Option {
	return func(o *Options) {
		o.DisableOptimizer = true
	}
}

// Compile parses and compiles a template.
func Compile(source string, opts ...Option) (*evaluator.Expression, error) {
	o := &Options{MaxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Resolver == nil {
		o.Resolver = resolver.Dir(".")
	}

	s, err := newSession(o)
	if err != nil {
		return nil, err
	}

	root, err := parser.Parse(source, parser.WithSource(o.Source), parser.WithMaxDepth(o.MaxDepth))
	if err != nil {
		return nil, err
	}
	expr, err := newUnit(s, o.Source, nil).compile(root)
	if err != nil {
		return nil, err
	}

	expr.Modules = s.files
	expr.FrameSize = s.scopes.StackFrameSize()
	expr.ParamSlots = s.scopes.ParameterSlots()
	expr.MaxCallDepth = o.MaxCallDepth
	expr.Logger = o.Logger

	o.Logger.Debug("template compiled",
		slog.String("source", o.Source),
		slog.Int("frame_size", expr.FrameSize),
		slog.Int("modules", len(expr.Modules)),
		slog.Any("parameters", expr.Parameters()))
	return expr, nil
}

// session is the state shared by every unit of one compilation.
type session struct {
	opts     *Options
	scopes   *ScopeManager
	filter   evaluator.ObjectFilter
	named    map[string]functions.Module
	files    []*evaluator.Expression
	compiled map[string]*evaluator.Expression
	logger   *slog.Logger
}

func newSession(o *Options) (*session, error) {
	s := &session{
		opts:     o,
		scopes:   NewScopeManager(),
		filter:   o.ObjectFilter,
		named:    map[string]functions.Module{experimental.URI: experimental.Module()},
		compiled: make(map[string]*evaluator.Expression),
		logger:   o.Logger,
	}
	for name, m := range o.NamedModules {
		s.named[name] = m
	}
	if s.filter == nil && o.FilterExpression != "" {
		fexpr, err := Compile(o.FilterExpression,
			WithSource("object-filter"),
			WithLogger(o.Logger),
			WithFunctions(o.Functions...))
		if err != nil {
			return nil, err
		}
		s.filter = &evaluator.ExpressionFilter{Expr: fexpr}
	}
	return s, nil
}

// unit is the compile-time state of one template or module.
type unit struct {
	session *session
	source  string
	parent  *unit

	declared map[string]functions.Callable
	modules  map[string]functions.Module
	decls    []*evaluator.FunctionDecl
	pending  []*evaluator.Call
}

func newUnit(s *session, source string, parent *unit) *unit {
	u := &unit{
		session:  s,
		source:   source,
		parent:   parent,
		declared: make(map[string]functions.Callable),
		modules:  make(map[string]functions.Module),
	}
	for _, f := range s.opts.Functions {
		u.declared[f.Name()] = f
	}
	return u
}

func (u *unit) compile(root *types.ASTNode) (*evaluator.Expression, error) {
	if err := u.processImports(root.Imports); err != nil {
		return nil, err
	}
	lets, err := u.lowerLets(root.Lets)
	if err != nil {
		return nil, err
	}
	if err := u.collectFunctions(root.Functions); err != nil {
		return nil, err
	}
	body, err := u.lower(root.Body)
	if err != nil {
		return nil, err
	}
	if err := u.resolveFunctions(); err != nil {
		return nil, err
	}

	expr := &evaluator.Expression{
		Source:    u.source,
		Lets:      lets,
		Functions: make(map[string]*evaluator.FunctionDecl, len(u.decls)),
		Body:      body,
	}
	for _, d := range u.decls {
		expr.Functions[d.FuncName] = d
	}

	if err := computeMatchContexts(expr, u.decls); err != nil {
		return nil, err
	}
	p := &preparer{sm: u.session.scopes}
	if err := p.unit(expr, u.decls); err != nil {
		return nil, err
	}
	if u.session.opts.DisableOptimizer {
		return expr, nil
	}
	o := &optimizer{logger: u.session.logger, regex: evaluator.DefaultRegexCache}
	if err := o.unit(expr, u.decls); err != nil {
		return nil, err
	}
	return expr, nil
}

// collectFunctions lowers the def declarations of the unit. A def shadows
// an extension function or builtin with the same name.
func (u *unit) collectFunctions(defs []*types.ASTNode) error {
	for _, d := range defs {
		if _, dup := u.declared[d.Value].(*evaluator.FunctionDecl); dup {
			return types.Errorf(types.ErrDuplicateVariable, d.Loc(), "Duplicate function declaration %s", d.Value)
		}
		lets, err := u.lowerLets(d.Lets)
		if err != nil {
			return err
		}
		body, err := u.lower(d.Body)
		if err != nil {
			return err
		}
		decl := evaluator.NewFunctionDecl(d.Value, d.Params, lets, body, d.Loc())
		u.decls = append(u.decls, decl)
		u.declared[d.Value] = decl
		u.session.logger.Debug("function declared",
			slog.String("source", u.source),
			slog.String("function", d.Value),
			slog.Int("params", len(d.Params)))
	}
	return nil
}

// resolveFunctions binds the calls whose target was unknown while lowering.
func (u *unit) resolveFunctions() error {
	for _, call := range u.pending {
		target, ok := u.declared[call.Name]
		if !ok {
			var f functions.Function
			if f, ok = evaluator.Builtin(call.Name); ok {
				target = f
			}
		}
		if !ok {
			return types.Errorf(types.ErrNoSuchFunction, call.Location(), "No such function: '%s'", call.Name)
		}
		if err := u.bind(call, target); err != nil {
			return err
		}
	}
	u.pending = nil
	return nil
}

func (u *unit) bind(call *evaluator.Call, target functions.Callable) error {
	if mf, ok := target.(*evaluator.ModuleFunction); ok && mf.Module.Body == nil {
		return types.Errorf(types.ErrModuleHasNoBody, call.Location(), "Module '%s' has no body", mf.Prefix)
	}
	return call.Resolve(target)
}

// processImports makes the modules named in import statements available
// under their prefixes. Named modules are used as they are; other names are
// loaded through the resolver and compiled as template modules.
func (u *unit) processImports(imports []*types.ASTNode) error {
	for _, imp := range imports {
		name, prefix, loc := imp.Value, imp.Prefix, imp.Loc()

		if m, ok := u.session.named[name]; ok {
			u.modules[prefix] = m
			continue
		}
		if u.isAlreadyImported(name) {
			return types.Errorf(types.ErrAlreadyImported, loc, "Module '%s' is already imported", name)
		}

		mod, err := u.importFile(name, loc)
		if err != nil {
			return err
		}
		u.modules[prefix] = mod
		u.declared[prefix] = &evaluator.ModuleFunction{Prefix: prefix, Module: mod}
	}
	return nil
}

// isAlreadyImported reports whether name is being compiled further up the
// import chain.
func (u *unit) isAlreadyImported(name string) bool {
	for cur := u; cur != nil; cur = cur.parent {
		if cur.source == name {
			return true
		}
	}
	return false
}

func (u *unit) importFile(name string, loc *types.Location) (*evaluator.Expression, error) {
	if mod, ok := u.session.compiled[name]; ok {
		return mod, nil
	}

	src, err := resolver.ReadAll(u.session.opts.Resolver, name)
	if err != nil {
		return nil, types.Errorf(types.ErrResource, loc, "Couldn't read resource %s", name).WithCause(err)
	}
	root, err := parser.ParseModule(src, parser.WithSource(name), parser.WithMaxDepth(u.session.opts.MaxDepth))
	if err != nil {
		return nil, err
	}
	mod, err := newUnit(u.session, name, u).compile(root)
	if err != nil {
		return nil, err
	}

	u.session.compiled[name] = mod
	u.session.files = append(u.session.files, mod)
	u.session.logger.Debug("module imported",
		slog.String("source", u.source),
		slog.String("module", name))
	return mod, nil
}
