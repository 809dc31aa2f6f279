package propagate

import (
	"sort"

	"github.com/gnolang/ccheck/internal/contract"
)

// Key identifies an effective contract: a resolved type and a member
// signature.
type Key struct {
	Type   string
	Member string
}

func (k Key) String() string {
	return k.Type + "::" + k.Member
}

// EffectiveContract is the fully expanded clause set of one member of a
// resolved type. It is immutable once computed.
type EffectiveContract struct {
	Type   string
	Member contract.Member

	Requires []contract.Clause
	Ensures  []contract.Clause
	// EntryInvariants are checked against the before-state of public
	// entry points.
	EntryInvariants []contract.Clause
	// Invariants are checked against the after-state.
	Invariants []contract.Clause
}

// Key returns the cache key of e.
func (e *EffectiveContract) Key() Key {
	return Key{Type: e.Type, Member: e.Member.Signature()}
}

// Clauses returns every clause in evaluation order.
func (e *EffectiveContract) Clauses() []contract.Clause {
	out := make([]contract.Clause, 0, len(e.Requires)+len(e.Ensures)+len(e.EntryInvariants)+len(e.Invariants))
	out = append(out, e.Requires...)
	out = append(out, e.Ensures...)
	out = append(out, e.EntryInvariants...)
	out = append(out, e.Invariants...)
	return out
}

// Has reports whether e contains a clause with the identity of c in any
// of its lists.
func (e *EffectiveContract) Has(c contract.Clause) bool {
	for _, x := range e.Clauses() {
		if x.Identity() == c.Identity() {
			return true
		}
	}
	return false
}

// SortedKeys returns the keys of m ordered by type then member.
func SortedKeys(m map[Key]*EffectiveContract) []Key {
	keys := make([]Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Type != keys[j].Type {
			return keys[i].Type < keys[j].Type
		}
		return keys[i].Member < keys[j].Member
	})
	return keys
}
