package evaluator

import (
	"regexp"
	"strings"

	"github.com/sandrolain/gojslt/pkg/cache"
	"github.com/sandrolain/gojslt/pkg/functions"
	"github.com/sandrolain/gojslt/pkg/types"
	"github.com/sandrolain/gojslt/pkg/value"
)

// DefaultRegexCacheSize is the capacity of DefaultRegexCache.
const DefaultRegexCacheSize = 1000

// RegexCache holds compiled regular expressions keyed by pattern text. It is
// safe for concurrent use; once full, the oldest pattern is evicted.
type RegexCache struct {
	c *cache.Cache[string, *regexp.Regexp]
}

// NewRegexCache creates a cache holding at most capacity patterns.
func NewRegexCache(capacity int) *RegexCache {
	return &RegexCache{c: cache.New[string, *regexp.Regexp](capacity, cache.FIFO)}
}

// DefaultRegexCache is shared by compile-time pattern validation and by the
// regex builtins at run time.
var DefaultRegexCache = NewRegexCache(DefaultRegexCacheSize)

// Compile returns the compiled pattern, compiling and caching it on first
// use. Invalid patterns are not cached.
func (rc *RegexCache) Compile(pattern string) (*regexp.Regexp, error) {
	return rc.c.GetOrCreate(pattern, func() (*regexp.Regexp, error) {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, types.Errorf(types.ErrRegexSyntax, nil, "Syntax error in regular expression '%s'", pattern).WithCause(err)
		}
		return re, nil
	})
}

// Len returns the number of cached patterns.
func (rc *RegexCache) Len() int { return rc.c.Len() }

// RegexpFunction is a function taking a regular expression argument. When
// that argument is a literal the compiler validates it ahead of time.
type RegexpFunction interface {
	functions.Function
	RegexpArgument() int
}

type regexpFunction struct {
	functions.FunctionDef
}

func (*regexpFunction) RegexpArgument() int { return 1 }

func regexBuiltin(name string, minArgs, maxArgs int, fn functions.Impl) *regexpFunction {
	return &regexpFunction{FunctionDef: *functions.Define(name, minArgs, maxArgs, fn)}
}

// RegexArgument reports which argument of c is a regular expression.
func RegexArgument(c functions.Callable) (int, bool) {
	if rf, ok := c.(RegexpFunction); ok {
		return rf.RegexpArgument(), true
	}
	return 0, false
}

func pattern(fn string, v value.Value, what string) (*regexp.Regexp, error) {
	if value.IsNull(v) {
		return nil, argError("%s() can't %s null regexp", fn, what)
	}
	return DefaultRegexCache.Compile(asString(v))
}

func fnTest(_ value.Value, args []value.Value) (value.Value, error) {
	if value.IsNull(args[0]) {
		return value.False, nil
	}
	re, err := pattern("test", args[1], "test")
	if err != nil {
		return nil, err
	}
	return value.Boolean(re.MatchString(asString(args[0]))), nil
}

func fnCapture(_ value.Value, args []value.Value) (value.Value, error) {
	if value.IsNull(args[0]) {
		return value.Null, nil
	}
	re, err := pattern("capture", args[1], "match against")
	if err != nil {
		return nil, err
	}
	out := value.NewObject(0)
	m := re.FindStringSubmatchIndex(asString(args[0]))
	if m == nil {
		return out, nil
	}
	s := asString(args[0])
	for i, name := range re.SubexpNames() {
		if name == "" {
			continue
		}
		if m[2*i] < 0 {
			out.Set(name, value.Null)
			continue
		}
		out.Set(name, value.Text(s[m[2*i]:m[2*i+1]]))
	}
	return out, nil
}

// fnSplit splits around matches of the pattern. Trailing empty strings are
// removed, and so is a leading one produced by an empty match at the start.
func fnSplit(_ value.Value, args []value.Value) (value.Value, error) {
	if value.IsNull(args[0]) {
		return value.Null, nil
	}
	if value.IsNull(args[1]) {
		return nil, argError("split() can't split on null")
	}
	re, err := DefaultRegexCache.Compile(asString(args[1]))
	if err != nil {
		return nil, err
	}
	s := asString(args[0])
	first := re.FindStringIndex(s)
	if first == nil {
		return value.Array{value.Text(s)}, nil
	}
	parts := re.Split(s, -1)
	if first[0] == 0 && first[1] == 0 && len(parts) > 0 && parts[0] == "" {
		parts = parts[1:]
	}
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	out := make(value.Array, len(parts))
	for i, p := range parts {
		out[i] = value.Text(p)
	}
	return out, nil
}

func fnReplace(_ value.Value, args []value.Value) (value.Value, error) {
	s, ok := asNullableString(args[0])
	if !ok {
		return value.Null, nil
	}
	if value.IsNull(args[1]) {
		return nil, argError("replace() can't match against null regexp")
	}
	re, err := DefaultRegexCache.Compile(asString(args[1]))
	if err != nil {
		return nil, err
	}
	sep := asString(args[2])

	matches := re.FindAllStringIndex(s, -1)
	if len(matches) == 0 {
		if _, isText := args[0].(value.Text); isText {
			return args[0], nil
		}
		return value.Text(s), nil
	}
	var sb strings.Builder
	pos := 0
	for _, m := range matches {
		if m[0] == m[1] {
			return nil, argError("Regexp %s in replace() matched empty string in '%s'", asString(args[1]), value.String(args[0]))
		}
		sb.WriteString(s[pos:m[0]])
		sb.WriteString(sep)
		pos = m[1]
	}
	sb.WriteString(s[pos:])
	return value.Text(sb.String()), nil
}
