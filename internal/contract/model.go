package contract

import (
	"fmt"
	"slices"
)

// Model holds the declarations of one analysis run. It is written during
// a setup phase and read-only after Freeze; a frozen Model may be shared by
// concurrent readers.
type Model struct {
	types     map[string]*TypeDecl
	typeOrder []string

	members     map[string][]Member // owner -> members in declaration order
	memberIndex map[string]Member   // member ID -> member
	implicit    map[string]bool     // member IDs not yet passed to DeclareMember

	invariants   map[string][]Clause // type -> invariants
	contracts    map[string][]Clause // member ID -> requires/ensures
	abbreviators map[string][]Clause // member ID -> abbreviator body
	calls        map[string][]string // member ID -> called abbreviator names

	bindings map[string]string // interface -> contract class

	frozen bool
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{
		types:        make(map[string]*TypeDecl),
		members:      make(map[string][]Member),
		memberIndex:  make(map[string]Member),
		implicit:     make(map[string]bool),
		invariants:   make(map[string][]Clause),
		contracts:    make(map[string][]Clause),
		abbreviators: make(map[string][]Clause),
		calls:        make(map[string][]string),
		bindings:     make(map[string]string),
	}
}

func (m *Model) checkWritable() error {
	if m.frozen {
		return newAnalysisError(CodeModelFrozen, "declarations are closed")
	}
	return nil
}

// Freeze ends the setup phase.
func (m *Model) Freeze() {
	m.frozen = true
}

// Frozen reports whether Freeze was called.
func (m *Model) Frozen() bool {
	return m.frozen
}

// DeclareType registers an interface, class or contract class.
func (m *Model) DeclareType(name string, kind TypeKind, implements ...string) error {
	if err := m.checkWritable(); err != nil {
		return err
	}
	if name == "" {
		return newAnalysisError(CodeUnknownType, "type without a name")
	}
	if _, ok := m.types[name]; ok {
		return newDuplicate(name, "type")
	}
	m.types[name] = &TypeDecl{
		Name:       name,
		Kind:       kind,
		Implements: append([]string(nil), implements...),
	}
	m.typeOrder = append(m.typeOrder, name)
	return nil
}

// DeclareMember adds a member to its owner's member list. A member that a
// contract, abbreviator or call declared implicitly takes the flags of
// member and keeps its position; declaring it twice is a duplicate.
func (m *Model) DeclareMember(member Member) error {
	if err := m.checkWritable(); err != nil {
		return err
	}
	id := member.ID()
	if _, ok := m.memberIndex[id]; !ok {
		return m.addMember(member)
	}
	if !m.implicit[id] {
		return newDuplicate(id, "member")
	}
	delete(m.implicit, id)
	if member.Kind == 0 {
		member.Kind = MemberMethod
	}
	owned := m.members[member.Owner]
	for i := range owned {
		if owned[i].ID() == id {
			owned[i] = member
		}
	}
	m.memberIndex[id] = member
	return nil
}

func (m *Model) addMember(member Member) error {
	if _, ok := m.types[member.Owner]; !ok {
		return newAnalysisError(CodeUnknownType, "member %s: type %q is not declared", member.ID(), member.Owner)
	}
	if member.Kind == 0 {
		member.Kind = MemberMethod
	}
	m.members[member.Owner] = append(m.members[member.Owner], member)
	m.memberIndex[member.ID()] = member
	return nil
}

// ensureMember returns the registered member with member's ID, declaring
// it first when needed.
func (m *Model) ensureMember(member Member) (Member, error) {
	if existing, ok := m.memberIndex[member.ID()]; ok {
		return existing, nil
	}
	if err := m.addMember(member); err != nil {
		return Member{}, err
	}
	m.implicit[member.ID()] = true
	return m.memberIndex[member.ID()], nil
}

// DeclareInvariant registers a type-level invariant.
func (m *Model) DeclareInvariant(typ string, predicate Predicate) error {
	if err := m.checkWritable(); err != nil {
		return err
	}
	if _, ok := m.types[typ]; !ok {
		return newAnalysisError(CodeUnknownType, "invariant on undeclared type %q", typ)
	}
	c := Clause{
		Kind:      Invariant,
		Predicate: predicate,
		Origin:    Origin{Kind: OriginTypeInvariant, Source: typ},
	}
	if err := validateClause(c); err != nil {
		return err
	}
	for _, existing := range m.invariants[typ] {
		if existing.Identity() == c.Identity() {
			return newDuplicate(typ, "invariant "+predicate.String())
		}
	}
	m.invariants[typ] = append(m.invariants[typ], c)
	return nil
}

// DeclareContract registers a Requires or Ensures clause on member.
func (m *Model) DeclareContract(member Member, kind ClauseKind, predicate Predicate, old bool) error {
	if err := m.checkWritable(); err != nil {
		return err
	}
	if kind != Requires && kind != Ensures {
		return newAnalysisError(CodeInvalidPredicate, "%s: member contracts must be requires or ensures, got %s", member.ID(), kind)
	}
	member, err := m.ensureMember(member)
	if err != nil {
		return err
	}
	id := member.ID()
	if _, ok := m.abbreviators[id]; ok {
		return newInvalidAbbreviator(id, "abbreviator body is fixed at declaration")
	}
	c := Clause{
		Kind:        kind,
		Predicate:   predicate,
		RefersToOld: old || refersToOld(predicate),
		Origin:      Origin{Kind: OriginDeclared, Source: id},
	}
	if err := validateClause(c); err != nil {
		return err
	}
	for _, existing := range m.contracts[id] {
		if existing.Identity() == c.Identity() {
			return newDuplicate(id, c.String())
		}
	}
	m.contracts[id] = append(m.contracts[id], c)
	return nil
}

// DeclareAbbreviator turns member into an abbreviator whose body is
// exactly clauses.
func (m *Model) DeclareAbbreviator(member Member, clauses []Clause) error {
	if err := m.checkWritable(); err != nil {
		return err
	}
	if member.Kind == 0 {
		member.Kind = MemberMethod
	}
	if member.Kind != MemberMethod {
		return newInvalidAbbreviator(member.ID(), "only methods can be abbreviators")
	}
	member, err := m.ensureMember(member)
	if err != nil {
		return err
	}
	id := member.ID()
	if _, ok := m.abbreviators[id]; ok {
		return newDuplicate(id, "abbreviator")
	}
	if len(m.contracts[id]) > 0 {
		return newInvalidAbbreviator(id, "member already has ordinary contracts")
	}
	if len(clauses) == 0 {
		return newInvalidAbbreviator(id, "abbreviator has no clauses")
	}

	body := make([]Clause, 0, len(clauses))
	seen := make(map[string]bool, len(clauses))
	for _, c := range clauses {
		if c.Kind != Requires && c.Kind != Ensures {
			return newInvalidAbbreviator(id, fmt.Sprintf("abbreviators may only contain requires and ensures, got %s", c.Kind))
		}
		if err := validateClause(c); err != nil {
			return err
		}
		if seen[c.Identity()] {
			return newDuplicate(id, c.String())
		}
		seen[c.Identity()] = true
		c.RefersToOld = c.RefersToOld || refersToOld(c.Predicate)
		c.Origin = Origin{Kind: OriginAbbreviator, Source: id}
		body = append(body, c)
	}
	m.abbreviators[id] = body
	return nil
}

// DeclareCall records that caller's body invokes the abbreviator named
// abbreviator, declared on the caller's owner.
func (m *Model) DeclareCall(caller Member, abbreviator string) error {
	if err := m.checkWritable(); err != nil {
		return err
	}
	caller, err := m.ensureMember(caller)
	if err != nil {
		return err
	}
	m.calls[caller.ID()] = append(m.calls[caller.ID()], abbreviator)
	return nil
}

// BindContractClass designates contractClass as the holder of iface's
// contracts. contractClass must be declared as a contract class; iface is
// added to its implemented interfaces when missing.
func (m *Model) BindContractClass(iface, contractClass string) error {
	if err := m.checkWritable(); err != nil {
		return err
	}
	decl, ok := m.types[iface]
	if !ok {
		return newAnalysisError(CodeUnknownType, "contract class binding for undeclared interface %q", iface)
	}
	if decl.Kind != TypeInterface {
		return newAnalysisError(CodeUnknownType, "%s is a %s, not an interface", iface, decl.Kind)
	}
	cdecl, ok := m.types[contractClass]
	if !ok {
		return newAnalysisError(CodeUnknownType, "contract class %q is not declared", contractClass)
	}
	if cdecl.Kind != TypeContractClass {
		return newAnalysisError(CodeUnknownType, "%s is a %s, not a contract class", contractClass, cdecl.Kind)
	}
	if existing, ok := m.bindings[iface]; ok {
		if existing == contractClass {
			return nil
		}
		return &ConflictingBindingError{
			AnalysisError: newAnalysisError(CodeConflictingBinding,
				"%s is already bound to %s, cannot bind %s", iface, existing, contractClass),
			Interface: iface,
			Existing:  existing,
			Requested: contractClass,
		}
	}
	m.bindings[iface] = contractClass
	// the contract class implements iface even when it was declared
	// without listing it
	if !slices.Contains(cdecl.Implements, iface) {
		cdecl.Implements = append(cdecl.Implements, iface)
	}
	return nil
}

// Type returns the declaration of name.
func (m *Model) Type(name string) (*TypeDecl, bool) {
	t, ok := m.types[name]
	return t, ok
}

// Types returns all declared types in declaration order.
func (m *Model) Types() []*TypeDecl {
	out := make([]*TypeDecl, 0, len(m.typeOrder))
	for _, name := range m.typeOrder {
		out = append(out, m.types[name])
	}
	return out
}

// Members returns the members of owner in declaration order.
func (m *Model) Members(owner string) []Member {
	return m.members[owner]
}

// Lookup finds the member of owner with the given signature.
func (m *Model) Lookup(owner, signature string) (Member, bool) {
	member, ok := m.memberIndex[owner+"::"+signature]
	return member, ok
}

// Invariants returns the invariants declared on typ.
func (m *Model) Invariants(typ string) []Clause {
	return m.invariants[typ]
}

// Contracts returns the ordinary clauses declared on a member.
func (m *Model) Contracts(member Member) []Clause {
	return m.contracts[member.ID()]
}

// Abbreviator returns the body of member when it is an abbreviator.
func (m *Model) Abbreviator(member Member) ([]Clause, bool) {
	body, ok := m.abbreviators[member.ID()]
	return body, ok
}

// IsAbbreviator reports whether member is an abbreviator.
func (m *Model) IsAbbreviator(member Member) bool {
	_, ok := m.abbreviators[member.ID()]
	return ok
}

// FindAbbreviator looks up an abbreviator by method name on owner.
func (m *Model) FindAbbreviator(owner, name string) (Member, bool) {
	for _, member := range m.members[owner] {
		if member.Name == name && m.IsAbbreviator(member) {
			return member, true
		}
	}
	return Member{}, false
}

// Calls returns the abbreviator names invoked by member, in call order.
func (m *Model) Calls(member Member) []string {
	return m.calls[member.ID()]
}

// ContractClassFor returns the contract class bound to iface.
func (m *Model) ContractClassFor(iface string) (string, bool) {
	c, ok := m.bindings[iface]
	return c, ok
}
