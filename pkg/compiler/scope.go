package compiler

import (
	"github.com/sandrolain/gojslt/pkg/evaluator"
	"github.com/sandrolain/gojslt/pkg/types"
)

// ScopeManager assigns slots to declared variables while the compiler walks
// the expression graph.
//
// There are two kinds of stack frame: the global one, holding top-level
// variables, module top-level variables and external parameters, and the
// frame of the function being compiled. Lexical blocks (objects,
// comprehensions, if branches) push scope frames that are flattened into the
// enclosing stack frame, so a shadowing variable gets a slot of its own.
type ScopeManager struct {
	global   stackFrame
	function *stackFrame

	scopes         []*scopeFrame // global scopes, innermost last
	functionScopes []*scopeFrame // nil outside functions

	params map[string]*evaluator.VariableInfo
}

type stackFrame struct {
	kind evaluator.FrameKind
	next int
}

func (f *stackFrame) alloc() evaluator.Slot {
	slot := evaluator.Slot{Frame: f.kind, Index: f.next}
	f.next++
	return slot
}

type scopeFrame struct {
	frame *stackFrame
	vars  map[string]*evaluator.VariableInfo
}

func (sf *scopeFrame) register(info *evaluator.VariableInfo) error {
	if _, dup := sf.vars[info.Name]; dup {
		return types.Errorf(types.ErrDuplicateVariable, info.Loc, "Duplicate variable declaration %s", info.Name)
	}
	info.Slot = sf.frame.alloc()
	sf.vars[info.Name] = info
	return nil
}

// NewScopeManager creates a manager with an empty global frame.
func NewScopeManager() *ScopeManager {
	return &ScopeManager{
		global: stackFrame{kind: evaluator.FrameGlobal},
		params: make(map[string]*evaluator.VariableInfo),
	}
}

func (sm *ScopeManager) current() []*scopeFrame {
	if sm.function != nil {
		return sm.functionScopes
	}
	return sm.scopes
}

func (sm *ScopeManager) currentFrame() *stackFrame {
	if sm.function != nil {
		return sm.function
	}
	return &sm.global
}

// EnterFunction starts a new function frame with an initial scope for the
// parameters.
func (sm *ScopeManager) EnterFunction() {
	sm.function = &stackFrame{kind: evaluator.FrameFunction}
	sm.functionScopes = nil
	sm.EnterScope()
}

// LeaveFunction drops the function frame and returns to the global one.
func (sm *ScopeManager) LeaveFunction() {
	sm.function = nil
	sm.functionScopes = nil
}

// EnterScope opens a lexical block.
func (sm *ScopeManager) EnterScope() {
	sf := &scopeFrame{frame: sm.currentFrame(), vars: make(map[string]*evaluator.VariableInfo)}
	if sm.function != nil {
		sm.functionScopes = append(sm.functionScopes, sf)
	} else {
		sm.scopes = append(sm.scopes, sf)
	}
}

// LeaveScope closes the innermost lexical block. Variables keep the slots
// they were given.
func (sm *ScopeManager) LeaveScope() {
	if sm.function != nil {
		sm.functionScopes = sm.functionScopes[:len(sm.functionScopes)-1]
	} else {
		sm.scopes = sm.scopes[:len(sm.scopes)-1]
	}
}

func (sm *ScopeManager) innermost() *scopeFrame {
	cur := sm.current()
	if len(cur) == 0 {
		sm.EnterScope()
		cur = sm.current()
	}
	return cur[len(cur)-1]
}

// RegisterVariable declares the variable bound by let in the innermost
// scope.
func (sm *ScopeManager) RegisterVariable(let *evaluator.Let) (*evaluator.VariableInfo, error) {
	info := &evaluator.VariableInfo{Name: let.Name, Let: let, Loc: let.Loc}
	if err := sm.innermost().register(info); err != nil {
		return nil, err
	}
	let.Info = info
	return info, nil
}

// RegisterParameter declares a function parameter in the innermost scope.
func (sm *ScopeManager) RegisterParameter(name string, loc *types.Location) (*evaluator.VariableInfo, error) {
	info := &evaluator.VariableInfo{Name: name, Loc: loc}
	if err := sm.innermost().register(info); err != nil {
		return nil, err
	}
	return info, nil
}

// ResolveVariable finds the declaration visible for name, searching the
// current scopes from the innermost outwards and then, inside a function,
// the global scopes. A name declared nowhere becomes an external parameter
// with a slot in the global frame.
func (sm *ScopeManager) ResolveVariable(name string, loc *types.Location) *evaluator.VariableInfo {
	if info := lookup(sm.current(), name); info != nil {
		return info
	}
	if sm.function != nil {
		if info := lookup(sm.scopes, name); info != nil {
			return info
		}
	}
	if info, ok := sm.params[name]; ok {
		return info
	}

	info := &evaluator.VariableInfo{Name: name, Loc: loc, Slot: sm.global.alloc()}
	sm.params[name] = info
	return info
}

func lookup(scopes []*scopeFrame, name string) *evaluator.VariableInfo {
	for i := len(scopes) - 1; i >= 0; i-- {
		if info, ok := scopes[i].vars[name]; ok {
			return info
		}
	}
	return nil
}

// StackFrameSize returns the number of slots allocated so far in the
// current frame.
func (sm *ScopeManager) StackFrameSize() int {
	return sm.currentFrame().next
}

// ParameterSlots maps each external parameter name to its global slot.
func (sm *ScopeManager) ParameterSlots() map[string]evaluator.Slot {
	out := make(map[string]evaluator.Slot, len(sm.params))
	for name, info := range sm.params {
		out[name] = info.Slot
	}
	return out
}
