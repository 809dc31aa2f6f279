package hierarchy

import (
	"github.com/gnolang/ccheck/internal/contract"
	tt "github.com/gnolang/ccheck/internal/types"
)

// Correspondence links one member of a resolved type to the member that
// carries its contracts.
type Correspondence struct {
	// Interface declaring the member, empty for members the type declares
	// on its own (constructors, extra methods).
	Interface string
	Signature string

	// Impl is the resolved type's own member.
	Impl contract.Member
	// Contract is the contract-class member bound to Impl, nil when the
	// interface has no contract class or the member is the type's own.
	Contract *contract.Member

	// Synthesized holds identity contracts of auto-implemented accessors.
	Synthesized []contract.Clause
}

// TypeResolution is the member-correspondence map of one type.
type TypeResolution struct {
	Type       string
	Kind       contract.TypeKind
	Interfaces []string
	Members    []*Correspondence
	// Invariants attached to the type: its own first, then those reaching
	// it through each interface's contract class.
	Invariants []contract.Clause

	bySignature map[string]*Correspondence
}

// Member returns the correspondence for signature.
func (t *TypeResolution) Member(signature string) (*Correspondence, bool) {
	c, ok := t.bySignature[signature]
	return c, ok
}

func (t *TypeResolution) add(c *Correspondence) {
	t.Members = append(t.Members, c)
	t.bySignature[c.Signature] = c
}

// Edge is a call from a contract-bearing member to an abbreviator.
type Edge struct {
	Caller contract.Member
	Callee contract.Member
}

// Map is the output of Resolve.
type Map struct {
	Model       *contract.Model
	Types       []*TypeResolution
	Edges       []Edge
	Diagnostics []tt.Issue

	index   map[string]*TypeResolution
	callees map[string][]contract.Member
}

// Type returns the resolution of name.
func (h *Map) Type(name string) (*TypeResolution, bool) {
	t, ok := h.index[name]
	return t, ok
}

// Callees returns the abbreviators member invokes, in call order.
func (h *Map) Callees(member contract.Member) []contract.Member {
	return h.callees[member.ID()]
}
