package contract

import (
	"fmt"
	"strings"
)

// MemberKind distinguishes property accessors, methods and constructors.
type MemberKind int

const (
	_ MemberKind = iota
	MemberGetter
	MemberSetter
	MemberMethod
	MemberConstructor
)

func (k MemberKind) String() string {
	switch k {
	case MemberGetter:
		return "get"
	case MemberSetter:
		return "set"
	case MemberMethod:
		return "method"
	case MemberConstructor:
		return "constructor"
	default:
		return "?"
	}
}

// ParseMemberKind accepts the names printed by String plus a few aliases.
func ParseMemberKind(s string) (MemberKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "get", "getter":
		return MemberGetter, nil
	case "set", "setter":
		return MemberSetter, nil
	case "method", "":
		return MemberMethod, nil
	case "constructor", "ctor":
		return MemberConstructor, nil
	}
	return 0, fmt.Errorf("unknown member kind %q", s)
}

// Member identifies a property accessor, method or constructor of a type.
type Member struct {
	Owner  string
	Name   string
	Kind   MemberKind
	Params string // comma separated parameter types, empty for none

	// Auto marks an auto-implemented property accessor (no body).
	Auto bool
	// Pure marks a method without observable side effects.
	Pure bool
	// Private members are not public entry points.
	Private bool
}

// Signature identifies the member independently of its owner, so that an
// interface member and its implementations share it.
func (m Member) Signature() string {
	switch m.Kind {
	case MemberGetter, MemberSetter:
		return m.Name + "." + m.Kind.String()
	case MemberConstructor:
		return ".ctor(" + m.Params + ")"
	default:
		return m.Name + "(" + m.Params + ")"
	}
}

// ID is the owner-qualified signature.
func (m Member) ID() string {
	return m.Owner + "::" + m.Signature()
}

func (m Member) String() string {
	return m.ID()
}

// On returns a copy of m owned by owner.
func (m Member) On(owner string) Member {
	m.Owner = owner
	return m
}

// IsAccessor reports whether m is a property getter or setter.
func (m Member) IsAccessor() bool {
	return m.Kind == MemberGetter || m.Kind == MemberSetter
}

// Mutating reports whether m may change the state of its owner.
func (m Member) Mutating() bool {
	switch m.Kind {
	case MemberSetter, MemberConstructor:
		return true
	case MemberMethod:
		return !m.Pure
	default:
		return false
	}
}

// EntryPoint reports whether callers outside the type can invoke m on an
// already constructed instance.
func (m Member) EntryPoint() bool {
	return !m.Private && m.Kind != MemberConstructor
}

// Getter returns the getter of property name on owner.
func Getter(owner, name string) Member {
	return Member{Owner: owner, Name: name, Kind: MemberGetter}
}

// Setter returns the setter of property name on owner.
func Setter(owner, name string) Member {
	return Member{Owner: owner, Name: name, Kind: MemberSetter}
}

// Method returns a parameterless method name on owner.
func Method(owner, name string) Member {
	return Member{Owner: owner, Name: name, Kind: MemberMethod}
}

// Constructor returns the parameterless constructor of owner.
func Constructor(owner string) Member {
	return Member{Owner: owner, Name: ".ctor", Kind: MemberConstructor}
}

// TypeKind classifies declared types.
type TypeKind int

const (
	_ TypeKind = iota
	TypeInterface
	TypeClass
	TypeContractClass
)

func (k TypeKind) String() string {
	switch k {
	case TypeInterface:
		return "interface"
	case TypeClass:
		return "class"
	case TypeContractClass:
		return "contract-class"
	default:
		return "?"
	}
}

func ParseTypeKind(s string) (TypeKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "interface":
		return TypeInterface, nil
	case "class", "":
		return TypeClass, nil
	case "contract-class", "contractclass", "contract":
		return TypeContractClass, nil
	}
	return 0, fmt.Errorf("unknown type kind %q", s)
}

// TypeDecl is a declared interface, class or contract class.
type TypeDecl struct {
	Name       string
	Kind       TypeKind
	Implements []string
}
