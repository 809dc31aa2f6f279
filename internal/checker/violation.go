package checker

import (
	"fmt"

	"github.com/gnolang/ccheck/internal/contract"
	tt "github.com/gnolang/ccheck/internal/types"
)

// Violation codes.
const (
	CodeRequiresViolated   = "REQUIRES_VIOLATED"
	CodeEnsuresViolated    = "ENSURES_VIOLATED"
	CodeInvariantViolated  = "INVARIANT_VIOLATED"
	CodePredicateUndecided = "PREDICATE_UNDECIDED"
)

// Phase tells which snapshot a clause was checked against.
type Phase int

const (
	_ Phase = iota
	PhaseEntry
	PhaseExit
)

func (p Phase) String() string {
	switch p {
	case PhaseEntry:
		return "entry"
	case PhaseExit:
		return "exit"
	default:
		return "?"
	}
}

// Violation is a contract clause that did not hold for one invocation.
type Violation struct {
	Code      string
	Type      string
	Member    string
	Kind      contract.ClauseKind
	Phase     Phase
	Predicate string
	Origin    contract.Origin
	// Value holds the evaluation result for undecided predicates.
	Value string
}

// Message renders a one-line human readable description.
func (v Violation) Message() string {
	if v.Code == CodePredicateUndecided {
		return fmt.Sprintf("%s of %s could not be decided at %s: %s evaluated to %s",
			v.Kind, v.Member, v.Phase, v.Predicate, v.Value)
	}
	return fmt.Sprintf("%s violated at %s of %s: %s", v.Kind, v.Phase, v.Member, v.Predicate)
}

// Issue converts v into a diagnostic.
func (v Violation) Issue() tt.Issue {
	severity := tt.SeverityError
	if v.Code == CodePredicateUndecided {
		severity = tt.SeverityWarning
	}
	return tt.Issue{
		Code:     v.Code,
		Category: tt.CategoryViolation,
		Severity: severity,
		Type:     v.Type,
		Member:   v.Member,
		Message:  v.Message(),
		Note:     "clause from " + v.Origin.String(),
	}
}

func codeFor(kind contract.ClauseKind) string {
	switch kind {
	case contract.Requires:
		return CodeRequiresViolated
	case contract.Ensures:
		return CodeEnsuresViolated
	default:
		return CodeInvariantViolated
	}
}
