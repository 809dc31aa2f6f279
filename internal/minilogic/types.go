package minilogic

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Value represents a concrete or symbolic value held by a state snapshot.
type Value interface {
	isValue()
	String() string
	Equal(other Value) bool
}

// IntValue represents an integer constant.
type IntValue struct {
	Val int64
}

func (IntValue) isValue() {}
func (v IntValue) String() string {
	return fmt.Sprintf("%d", v.Val)
}

func (v IntValue) Equal(other Value) bool {
	if o, ok := other.(IntValue); ok {
		return v.Val == o.Val
	}
	return false
}

// BoolValue represents a boolean constant.
type BoolValue struct {
	Val bool
}

func (BoolValue) isValue() {}
func (v BoolValue) String() string {
	return fmt.Sprintf("%t", v.Val)
}

func (v BoolValue) Equal(other Value) bool {
	if o, ok := other.(BoolValue); ok {
		return v.Val == o.Val
	}
	return false
}

// StringValue represents a string constant.
type StringValue struct {
	Val string
}

func (StringValue) isValue() {}
func (v StringValue) String() string {
	return fmt.Sprintf("%q", v.Val)
}

func (v StringValue) Equal(other Value) bool {
	if o, ok := other.(StringValue); ok {
		return v.Val == o.Val
	}
	return false
}

// NilValue represents nil.
type NilValue struct{}

func (NilValue) isValue() {}
func (NilValue) String() string {
	return "nil"
}

func (v NilValue) Equal(other Value) bool {
	_, ok := other.(NilValue)
	return ok
}

// SymbolicValue represents a value that could not be determined.
// Name describes why.
type SymbolicValue struct {
	Name string
}

func (SymbolicValue) isValue() {}
func (v SymbolicValue) String() string {
	return fmt.Sprintf("<%s>", v.Name)
}

func (v SymbolicValue) Equal(other Value) bool {
	if o, ok := other.(SymbolicValue); ok {
		return v.Name == o.Name
	}
	return false
}

// ValueOf converts a Go value, typically decoded from YAML or JSON,
// into a Value. Unsupported kinds become symbolic.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return NilValue{}
	case Value:
		return x
	case bool:
		return BoolValue{Val: x}
	case int:
		return IntValue{Val: int64(x)}
	case int32:
		return IntValue{Val: int64(x)}
	case int64:
		return IntValue{Val: x}
	case uint:
		return uintValue(uint64(x))
	case uint64:
		return uintValue(x)
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63, hence the strict bound
		if x >= math.MinInt64 && x < math.MaxInt64 && x == math.Trunc(x) {
			return IntValue{Val: int64(x)}
		}
		return SymbolicValue{Name: "float"}
	case string:
		return StringValue{Val: x}
	default:
		return SymbolicValue{Name: fmt.Sprintf("%T", v)}
	}
}

func uintValue(x uint64) Value {
	if x > math.MaxInt64 {
		return SymbolicValue{Name: "uint64"}
	}
	return IntValue{Val: int64(x)}
}

// Env is a state snapshot: a mapping from names to values.
type Env struct {
	vars   map[string]Value
	parent *Env // consulted for names missing from vars
}

// NewEnv creates a new empty environment.
func NewEnv() *Env {
	return &Env{
		vars: make(map[string]Value),
	}
}

// NewChildEnv creates a new environment with the given parent.
// Variables in the child shadow those in the parent.
func NewChildEnv(parent *Env) *Env {
	return &Env{
		vars:   make(map[string]Value),
		parent: parent,
	}
}

// EnvFromMap builds a snapshot from plain Go values.
func EnvFromMap(m map[string]any) *Env {
	env := NewEnv()
	for k, v := range m {
		env.Set(k, ValueOf(v))
	}
	return env
}

// Get retrieves the value of a variable.
// Returns nil if the variable is not found.
func (e *Env) Get(name string) Value {
	if e == nil {
		return nil
	}
	if v, ok := e.vars[name]; ok {
		return v
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return nil
}

// Set sets the value of a variable in the current scope.
func (e *Env) Set(name string, val Value) {
	e.vars[name] = val
}

// Overlay returns a snapshot that reads e first and falls back to base.
// Neither input is modified.
func (e *Env) Overlay(base *Env) *Env {
	out := NewChildEnv(base)
	if e == nil {
		return out
	}
	for _, k := range e.allKeys() {
		out.vars[k] = e.Get(k)
	}
	return out
}

// Clone creates a copy of the environment.
func (e *Env) Clone() *Env {
	newEnv := &Env{
		vars:   make(map[string]Value, len(e.vars)),
		parent: e.parent, // parent is shared (immutable reference)
	}
	for k, v := range e.vars {
		newEnv.vars[k] = v
	}
	return newEnv
}

// Equal checks if two environments have the same variable bindings.
func (e *Env) Equal(other *Env) bool {
	if e == nil && other == nil {
		return true
	}
	if e == nil || other == nil {
		return false
	}

	allKeys := make(map[string]struct{})
	e.collectKeys(allKeys)
	other.collectKeys(allKeys)

	for k := range allKeys {
		v1 := e.Get(k)
		v2 := other.Get(k)
		if v1 == nil || v2 == nil {
			return false
		}
		if !v1.Equal(v2) {
			return false
		}
	}
	return true
}

func (e *Env) collectKeys(keys map[string]struct{}) {
	for k := range e.vars {
		keys[k] = struct{}{}
	}
	if e.parent != nil {
		e.parent.collectKeys(keys)
	}
}

func (e *Env) allKeys() []string {
	set := make(map[string]struct{})
	e.collectKeys(set)
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Keys returns all variable names visible from this environment, sorted.
func (e *Env) Keys() []string {
	if e == nil {
		return nil
	}
	return e.allKeys()
}

// String returns a deterministic representation of the visible bindings.
func (e *Env) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, k := range e.Keys() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(e.Get(k).String())
	}
	sb.WriteString("}")
	return sb.String()
}
