package checker

import (
	"go.uber.org/zap"

	"github.com/gnolang/ccheck/internal/contract"
	"github.com/gnolang/ccheck/internal/minilogic"
	"github.com/gnolang/ccheck/internal/propagate"
)

// Checker evaluates effective contracts against state snapshots.
type Checker struct {
	engine          *propagate.Engine
	logger          *zap.Logger
	reportUndecided bool
}

// New creates a checker reading effective contracts from engine.
func New(engine *propagate.Engine, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{engine: engine, logger: logger}
}

// SetReportUndecided makes predicates that do not evaluate to a boolean
// produce PREDICATE_UNDECIDED violations instead of being skipped.
func (c *Checker) SetReportUndecided(report bool) {
	c.reportUndecided = report
}

// Check evaluates every clause of the effective contract of the member
// with the given signature on typ. Requires and entry invariants read
// before; ensures and exit invariants read after, with old(e) and names
// missing from after (arguments, unchanged fields) taken from before.
//
// All violated clauses are returned. The error is non-nil only when the
// type or member cannot be resolved.
func (c *Checker) Check(typ, signature string, before, after *minilogic.Env) ([]Violation, error) {
	ec, err := c.engine.Effective(typ, signature)
	if err != nil {
		return nil, err
	}
	if before == nil {
		before = minilogic.NewEnv()
	}
	if after == nil {
		after = minilogic.NewEnv()
	}
	post := after.Overlay(before)

	var violations []Violation
	eval := func(cl contract.Clause, phase Phase, old, cur *minilogic.Env) {
		val := cl.Predicate.Eval(old, cur)
		switch {
		case minilogic.IsKnownTrue(val):
			return
		case minilogic.IsKnownFalse(val):
			violations = append(violations, c.violation(ec, cl, phase, codeFor(cl.Kind), ""))
		default:
			if c.reportUndecided {
				violations = append(violations, c.violation(ec, cl, phase, CodePredicateUndecided, val.String()))
				return
			}
			c.logger.Debug("skipping undecided clause",
				zap.String("member", ec.Member.ID()),
				zap.String("clause", cl.String()),
				zap.String("value", val.String()),
			)
		}
	}

	for _, cl := range ec.Requires {
		eval(cl, PhaseEntry, before, before)
	}
	for _, cl := range ec.Ensures {
		eval(cl, PhaseExit, before, post)
	}
	for _, cl := range ec.EntryInvariants {
		eval(cl, PhaseEntry, before, before)
	}
	for _, cl := range ec.Invariants {
		eval(cl, PhaseExit, post, post)
	}
	return violations, nil
}

// CheckMember is Check with the signature taken from m.
func (c *Checker) CheckMember(typ string, m contract.Member, before, after *minilogic.Env) ([]Violation, error) {
	return c.Check(typ, m.Signature(), before, after)
}

func (c *Checker) violation(ec *propagate.EffectiveContract, cl contract.Clause, phase Phase, code, value string) Violation {
	return Violation{
		Code:      code,
		Type:      ec.Type,
		Member:    ec.Member.ID(),
		Kind:      cl.Kind,
		Phase:     phase,
		Predicate: cl.Predicate.String(),
		Origin:    cl.Origin,
		Value:     value,
	}
}
