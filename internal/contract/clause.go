package contract

import (
	"github.com/gnolang/ccheck/internal/minilogic"
)

// ClauseKind is one of Requires, Ensures or Invariant. The numeric order is
// the evaluation order of the checker.
type ClauseKind int

const (
	_ ClauseKind = iota
	Requires
	Ensures
	Invariant
)

func (k ClauseKind) String() string {
	switch k {
	case Requires:
		return "requires"
	case Ensures:
		return "ensures"
	case Invariant:
		return "invariant"
	default:
		return "?"
	}
}

// Predicate is a boolean-valued function of a state transition. Requires
// and Invariant clauses receive the same snapshot twice.
//
// String is the predicate identity: two predicates with the same string
// are the same predicate.
type Predicate interface {
	Eval(before, after *minilogic.Env) minilogic.Value
	String() string
}

// ExprPredicate evaluates a minilogic expression.
type ExprPredicate struct {
	Expr minilogic.Expr
}

func (p ExprPredicate) Eval(before, after *minilogic.Env) minilogic.Value {
	return minilogic.Eval(p.Expr, before, after)
}

func (p ExprPredicate) String() string {
	return p.Expr.String()
}

// Expr wraps e as a Predicate.
func Expr(e minilogic.Expr) Predicate {
	return ExprPredicate{Expr: e}
}

// ParsePredicate parses the textual predicate syntax of minilogic.
func ParsePredicate(src string) (Predicate, error) {
	e, err := minilogic.ParsePredicate(src)
	if err != nil {
		return nil, newAnalysisError(CodeInvalidPredicate, "%q: %v", src, err)
	}
	return ExprPredicate{Expr: e}, nil
}

// MustPredicate is like ParsePredicate but panics on error.
func MustPredicate(src string) Predicate {
	p, err := ParsePredicate(src)
	if err != nil {
		panic(err)
	}
	return p
}

// PredicateFunc adapts a host Go function. Desc is its identity.
type PredicateFunc struct {
	Desc string
	Fn   func(before, after *minilogic.Env) bool
}

func (p PredicateFunc) Eval(before, after *minilogic.Env) minilogic.Value {
	return minilogic.BoolValue{Val: p.Fn(before, after)}
}

func (p PredicateFunc) String() string {
	return p.Desc
}

func refersToOld(p Predicate) bool {
	if ep, ok := p.(ExprPredicate); ok {
		return minilogic.HasOld(ep.Expr)
	}
	return false
}

// OriginKind tells where an effective clause came from.
type OriginKind int

const (
	_ OriginKind = iota
	OriginDeclared
	OriginAbbreviator
	OriginTypeInvariant
	OriginSynthesized
)

func (k OriginKind) String() string {
	switch k {
	case OriginDeclared:
		return "declared"
	case OriginAbbreviator:
		return "abbreviator"
	case OriginTypeInvariant:
		return "invariant"
	case OriginSynthesized:
		return "synthesized"
	default:
		return "?"
	}
}

// Origin is the provenance of a clause. Source is a member ID for declared
// and abbreviator clauses, a type name for invariants.
type Origin struct {
	Kind   OriginKind
	Source string
}

func (o Origin) String() string {
	return o.Kind.String() + " " + o.Source
}

// Clause is a single contract clause.
type Clause struct {
	Kind        ClauseKind
	Predicate   Predicate
	RefersToOld bool
	Origin      Origin
}

// NewClause builds a clause from the textual predicate syntax.
func NewClause(kind ClauseKind, src string) (Clause, error) {
	p, err := ParsePredicate(src)
	if err != nil {
		return Clause{}, err
	}
	return Clause{Kind: kind, Predicate: p, RefersToOld: refersToOld(p)}, nil
}

// Identity is the key used for duplicate detection and superset checks.
func (c Clause) Identity() string {
	return c.Kind.String() + " " + c.Predicate.String()
}

func (c Clause) String() string {
	return c.Kind.String() + "(" + c.Predicate.String() + ")"
}

func validateClause(c Clause) error {
	if c.Predicate == nil {
		return newAnalysisError(CodeInvalidPredicate, "%s clause without predicate", c.Kind)
	}
	if c.Kind != Ensures && (c.RefersToOld || refersToOld(c.Predicate)) {
		return newAnalysisError(CodeInvalidPredicate, "%s clause %q cannot refer to old values", c.Kind, c.Predicate)
	}
	return nil
}
