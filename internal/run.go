package internal

import (
	"sync"

	"go.uber.org/zap"

	"github.com/gnolang/ccheck/internal/checker"
	"github.com/gnolang/ccheck/internal/contract"
	"github.com/gnolang/ccheck/internal/hierarchy"
	"github.com/gnolang/ccheck/internal/minilogic"
	"github.com/gnolang/ccheck/internal/propagate"
	tt "github.com/gnolang/ccheck/internal/types"
)

// Phase is the lifecycle state of a Run.
type Phase int

const (
	PhaseUnresolved Phase = iota
	PhaseResolved
	PhasePropagated
	PhaseChecked
)

func (p Phase) String() string {
	switch p {
	case PhaseUnresolved:
		return "unresolved"
	case PhaseResolved:
		return "resolved"
	case PhasePropagated:
		return "propagated"
	case PhaseChecked:
		return "checked"
	default:
		return "?"
	}
}

// Run drives one analysis through Unresolved -> Resolved -> Propagated ->
// Checked. Each step is only valid in its predecessor state, except Check
// which may be repeated once the run is Checked.
type Run struct {
	mu     sync.Mutex
	phase  Phase
	logger *zap.Logger

	model     *contract.Model
	hm        *hierarchy.Map
	engine    *propagate.Engine
	checker   *checker.Checker
	effective map[propagate.Key]*propagate.EffectiveContract

	reportUndecided bool
}

// NewRun starts a run over model. The model stays writable until Resolve.
func NewRun(model *contract.Model, logger *zap.Logger) *Run {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Run{model: model, logger: logger}
}

// SetReportUndecided controls PREDICATE_UNDECIDED reporting of the checker.
func (r *Run) SetReportUndecided(report bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reportUndecided = report
	if r.checker != nil {
		r.checker.SetReportUndecided(report)
	}
}

// Phase returns the current state.
func (r *Run) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Model returns the model the run analyzes.
func (r *Run) Model() *contract.Model {
	return r.model
}

func (r *Run) expect(op string, allowed ...Phase) error {
	for _, p := range allowed {
		if r.phase == p {
			return nil
		}
	}
	return contract.NewAnalysisError(contract.CodeInvalidPhase,
		"%s is not allowed in phase %s", op, r.phase)
}

// Resolve freezes the model and builds the hierarchy map.
func (r *Run) Resolve() (*hierarchy.Map, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.expect("resolve", PhaseUnresolved); err != nil {
		return nil, err
	}

	hm, err := hierarchy.Resolve(r.model)
	if err != nil {
		return nil, err
	}
	r.hm = hm
	r.engine = propagate.NewEngine(hm, r.logger)
	r.phase = PhaseResolved
	r.logger.Debug("hierarchy resolved",
		zap.Int("types", len(hm.Types)),
		zap.Int("edges", len(hm.Edges)),
		zap.Int("diagnostics", len(hm.Diagnostics)),
	)
	return hm, nil
}

// Propagate computes every effective contract.
func (r *Run) Propagate() (map[propagate.Key]*propagate.EffectiveContract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.expect("propagate", PhaseResolved); err != nil {
		return nil, err
	}

	effective, err := r.engine.Propagate()
	if err != nil {
		return nil, err
	}
	r.effective = effective
	r.checker = checker.New(r.engine, r.logger)
	r.checker.SetReportUndecided(r.reportUndecided)
	r.phase = PhasePropagated
	return effective, nil
}

// Check evaluates one invocation of the member with the given signature.
func (r *Run) Check(typ, signature string, before, after *minilogic.Env) ([]checker.Violation, error) {
	r.mu.Lock()
	if err := r.expect("check", PhasePropagated, PhaseChecked); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.phase = PhaseChecked
	c := r.checker
	r.mu.Unlock()

	return c.Check(typ, signature, before, after)
}

// Hierarchy returns the resolved hierarchy, nil before Resolve.
func (r *Run) Hierarchy() *hierarchy.Map {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hm
}

// Effective returns the propagated contracts, nil before Propagate.
func (r *Run) Effective() map[propagate.Key]*propagate.EffectiveContract {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.effective
}

// Diagnostics returns the resolver diagnostics.
func (r *Run) Diagnostics() []tt.Issue {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hm == nil {
		return nil
	}
	return r.hm.Diagnostics
}
