package contract

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a stable diagnostic code a host can match on.
type Code string

const (
	CodeDuplicateDeclaration  Code = "DUPLICATE_DECLARATION"
	CodeInvalidAbbreviator    Code = "INVALID_ABBREVIATOR"
	CodeConflictingBinding    Code = "CONFLICTING_BINDING"
	CodeMissingContractMember Code = "MISSING_CONTRACT_MEMBER"
	CodeMissingImplementation Code = "MISSING_IMPLEMENTATION"
	CodeAbbreviatorCycle      Code = "ABBREVIATOR_CYCLE"
	CodeUnknownType           Code = "UNKNOWN_TYPE"
	CodeUnresolvedMember      Code = "UNRESOLVED_MEMBER"
	CodeAmbiguousMember       Code = "AMBIGUOUS_MEMBER"
	CodeModelFrozen           Code = "MODEL_FROZEN"
	CodeInvalidPhase          Code = "INVALID_PHASE"
	CodeInvalidPredicate      Code = "INVALID_PREDICATE"
)

// AnalysisError is a fatal structural error. Every more specific error
// type of this package wraps one.
type AnalysisError struct {
	Code    Code
	Message string
}

func newAnalysisError(code Code, format string, args ...any) *AnalysisError {
	return &AnalysisError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewAnalysisError creates an AnalysisError with a formatted message.
func NewAnalysisError(code Code, format string, args ...any) *AnalysisError {
	return newAnalysisError(code, format, args...)
}

func (e *AnalysisError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Is matches another AnalysisError with the same code. A target without a
// message matches any message.
func (e *AnalysisError) Is(target error) bool {
	t, ok := target.(*AnalysisError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// Sentinels for errors.Is.
var (
	ErrDuplicateDeclaration  = &AnalysisError{Code: CodeDuplicateDeclaration}
	ErrInvalidAbbreviator    = &AnalysisError{Code: CodeInvalidAbbreviator}
	ErrConflictingBinding    = &AnalysisError{Code: CodeConflictingBinding}
	ErrMissingContractMember = &AnalysisError{Code: CodeMissingContractMember}
	ErrMissingImplementation = &AnalysisError{Code: CodeMissingImplementation}
	ErrAbbreviatorCycle      = &AnalysisError{Code: CodeAbbreviatorCycle}
	ErrUnknownType           = &AnalysisError{Code: CodeUnknownType}
	ErrUnresolvedMember      = &AnalysisError{Code: CodeUnresolvedMember}
	ErrAmbiguousMember       = &AnalysisError{Code: CodeAmbiguousMember}
	ErrModelFrozen           = &AnalysisError{Code: CodeModelFrozen}
	ErrInvalidPhase          = &AnalysisError{Code: CodeInvalidPhase}
	ErrInvalidPredicate      = &AnalysisError{Code: CodeInvalidPredicate}
)

// DuplicateDeclarationError is returned when the same declaration is
// registered twice.
type DuplicateDeclarationError struct {
	*AnalysisError
	Subject string
}

func (e *DuplicateDeclarationError) Unwrap() error { return e.AnalysisError }

func newDuplicate(subject, what string) error {
	return &DuplicateDeclarationError{
		AnalysisError: newAnalysisError(CodeDuplicateDeclaration, "%s: %s declared twice", subject, what),
		Subject:       subject,
	}
}

// InvalidAbbreviatorError is returned when a member cannot be (or stay) an
// abbreviator.
type InvalidAbbreviatorError struct {
	*AnalysisError
	Member string
}

func (e *InvalidAbbreviatorError) Unwrap() error { return e.AnalysisError }

func newInvalidAbbreviator(member, reason string) error {
	return &InvalidAbbreviatorError{
		AnalysisError: newAnalysisError(CodeInvalidAbbreviator, "%s: %s", member, reason),
		Member:        member,
	}
}

// ConflictingBindingError is returned when an interface is bound to a
// second, different contract class.
type ConflictingBindingError struct {
	*AnalysisError
	Interface string
	Existing  string
	Requested string
}

func (e *ConflictingBindingError) Unwrap() error { return e.AnalysisError }

// MissingContractMemberError is returned when a contract class does not
// implement a member of the interface it is bound to.
type MissingContractMemberError struct {
	*AnalysisError
	Interface     string
	ContractClass string
	Member        string
}

func (e *MissingContractMemberError) Unwrap() error { return e.AnalysisError }

// NewMissingContractMemberError reports member missing from contractClass.
func NewMissingContractMemberError(iface, contractClass, member string) error {
	return &MissingContractMemberError{
		AnalysisError: newAnalysisError(CodeMissingContractMember,
			"contract class %s does not implement %s of %s", contractClass, member, iface),
		Interface:     iface,
		ContractClass: contractClass,
		Member:        member,
	}
}

// MissingImplementationError is returned when a concrete type does not
// implement a member of one of its interfaces.
type MissingImplementationError struct {
	*AnalysisError
	Type      string
	Interface string
	Member    string
}

func (e *MissingImplementationError) Unwrap() error { return e.AnalysisError }

// NewMissingImplementationError reports member of iface missing from typ.
func NewMissingImplementationError(typ, iface, member string) error {
	return &MissingImplementationError{
		AnalysisError: newAnalysisError(CodeMissingImplementation,
			"%s does not implement %s of %s", typ, member, iface),
		Type:      typ,
		Interface: iface,
		Member:    member,
	}
}

// AbbreviatorCycleError is returned when an abbreviator transitively calls
// itself. Cycle starts and ends with the same abbreviator.
type AbbreviatorCycleError struct {
	*AnalysisError
	Cycle []string
}

func (e *AbbreviatorCycleError) Unwrap() error { return e.AnalysisError }

// NewAbbreviatorCycleError reports the given call cycle.
func NewAbbreviatorCycleError(cycle []string) error {
	return &AbbreviatorCycleError{
		AnalysisError: newAnalysisError(CodeAbbreviatorCycle, "abbreviator cycle %s", strings.Join(cycle, " -> ")),
		Cycle:         cycle,
	}
}

// CodeOf extracts the diagnostic code of err, or "" when err is not an
// analysis error.
func CodeOf(err error) Code {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
