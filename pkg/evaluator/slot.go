package evaluator

import (
	"fmt"
	"log/slog"

	"github.com/sandrolain/gojslt/pkg/types"
	"github.com/sandrolain/gojslt/pkg/value"
)

// FrameKind tells which stack frame a slot lives in.
type FrameKind uint8

const (
	// FrameGlobal is the single frame holding top-level and module variables
	// plus externally supplied parameters.
	FrameGlobal FrameKind = iota
	// FrameFunction is the frame of the innermost active function call.
	FrameFunction
)

func (k FrameKind) String() string {
	if k == FrameFunction {
		return "function"
	}
	return "global"
}

// Slot is the storage address of a variable, assigned at compile time.
type Slot struct {
	Frame FrameKind
	Index int
}

func (s Slot) String() string {
	return fmt.Sprintf("%s[%d]", s.Frame, s.Index)
}

// DefaultMaxCallDepth bounds nested function calls in one evaluation.
const DefaultMaxCallDepth = 10000

// Scope is the run-time storage of one evaluation: a global frame and a
// stack of function frames.
//
// A Scope is not safe for concurrent use. Every evaluation creates its own.
type Scope struct {
	global   []value.Value
	locals   [][]value.Value
	maxDepth int
	logger   *slog.Logger
}

// NewScope creates a scope with a global frame of the given size.
func NewScope(globalSize int) *Scope {
	return &Scope{
		global:   make([]value.Value, globalSize),
		maxDepth: DefaultMaxCallDepth,
	}
}

// MakeScope creates a scope and copies the supplied variables into the slots
// of the matching external parameters. Variables the template never refers
// to are ignored.
func MakeScope(vars map[string]value.Value, globalSize int, params map[string]Slot) *Scope {
	s := NewScope(globalSize)
	for name, v := range vars {
		if slot, ok := params[name]; ok {
			s.Set(slot, value.OrNull(v))
		}
	}
	return s
}

// Get returns the value stored in slot. The boolean is false when the slot
// was never assigned.
func (s *Scope) Get(slot Slot) (value.Value, bool) {
	var v value.Value
	if slot.Frame == FrameGlobal {
		v = s.global[slot.Index]
	} else {
		v = s.locals[len(s.locals)-1][slot.Index]
	}
	return v, v != nil
}

// Set stores v in slot.
func (s *Scope) Set(slot Slot, v value.Value) {
	if slot.Frame == FrameGlobal {
		s.global[slot.Index] = v
		return
	}
	s.locals[len(s.locals)-1][slot.Index] = v
}

// EnterFunction pushes a function frame of the given size.
func (s *Scope) EnterFunction(size int) error {
	if s.maxDepth > 0 && len(s.locals) >= s.maxDepth {
		return types.Errorf(types.ErrCallDepth, nil, "Function calls nested deeper than %d levels", s.maxDepth)
	}
	s.locals = append(s.locals, make([]value.Value, size))
	return nil
}

// LeaveFunction pops the innermost function frame.
func (s *Scope) LeaveFunction() {
	n := len(s.locals) - 1
	s.locals[n] = nil
	s.locals = s.locals[:n]
}

// Depth returns the number of active function frames.
func (s *Scope) Depth() int {
	return len(s.locals)
}

// SetMaxCallDepth changes the nesting limit. Zero disables it.
func (s *Scope) SetMaxCallDepth(n int) {
	s.maxDepth = n
}

// SetLogger attaches a logger used for debug events during evaluation.
func (s *Scope) SetLogger(l *slog.Logger) {
	s.logger = l
}
