package propagate

import (
	"runtime"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/gnolang/ccheck/internal/contract"
	"github.com/gnolang/ccheck/internal/hierarchy"
)

// Engine computes effective contracts from a resolved hierarchy and caches
// them per (type, member). Each key is computed at most once even under
// concurrent requests.
type Engine struct {
	hm      *hierarchy.Map
	logger  *zap.Logger
	workers int

	mu    sync.RWMutex
	cache map[Key]*EffectiveContract
	group singleflight.Group
}

// NewEngine creates an engine for hm. A nil logger disables logging.
func NewEngine(hm *hierarchy.Map, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		hm:      hm,
		logger:  logger,
		workers: runtime.NumCPU(),
		cache:   make(map[Key]*EffectiveContract),
	}
}

// SetWorkers limits the number of goroutines Propagate uses.
func (e *Engine) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	e.workers = n
}

// Propagate computes the effective contract of every member of every
// resolved type. Calling it again returns the same contracts.
func Propagate(hm *hierarchy.Map) (map[Key]*EffectiveContract, error) {
	return NewEngine(hm, nil).Propagate()
}

// Keys lists every (type, member) pair of the hierarchy in resolution order.
func (e *Engine) Keys() []Key {
	var keys []Key
	for _, t := range e.hm.Types {
		for _, c := range t.Members {
			keys = append(keys, Key{Type: t.Type, Member: c.Signature})
		}
	}
	return keys
}

// Propagate populates the cache for every key and returns a snapshot of it.
func (e *Engine) Propagate() (map[Key]*EffectiveContract, error) {
	if err := newAbbrevCycle(e.hm).detect(); err != nil {
		return nil, err
	}

	keys := e.Keys()
	g := new(errgroup.Group)
	g.SetLimit(e.workers)
	for _, k := range keys {
		k := k
		g.Go(func() error {
			_, err := e.Effective(k.Type, k.Member)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[Key]*EffectiveContract, len(keys))
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, k := range keys {
		out[k] = e.cache[k]
	}
	e.logger.Debug("propagation complete", zap.Int("contracts", len(out)))
	return out, nil
}

// Effective returns the effective contract of the member with the given
// signature on typ, computing it on first use.
func (e *Engine) Effective(typ, signature string) (*EffectiveContract, error) {
	k := Key{Type: typ, Member: signature}

	e.mu.RLock()
	ec, ok := e.cache[k]
	e.mu.RUnlock()
	if ok {
		return ec, nil
	}

	v, err, _ := e.group.Do(k.String(), func() (interface{}, error) {
		e.mu.RLock()
		cached, ok := e.cache[k]
		e.mu.RUnlock()
		if ok {
			return cached, nil
		}

		computed, err := e.compute(k)
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		e.cache[k] = computed
		e.mu.Unlock()
		return computed, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*EffectiveContract), nil
}

func (e *Engine) compute(k Key) (*EffectiveContract, error) {
	t, ok := e.hm.Type(k.Type)
	if !ok {
		return nil, contract.NewAnalysisError(contract.CodeUnknownType, "type %q is not resolved", k.Type)
	}
	corr, ok := t.Member(k.Member)
	if !ok {
		return nil, contract.NewAnalysisError(contract.CodeUnresolvedMember, "%s has no member %s", k.Type, k.Member)
	}

	ec := &EffectiveContract{Type: t.Type, Member: corr.Impl}
	add := func(c contract.Clause) {
		switch c.Kind {
		case contract.Requires:
			ec.Requires = appendUnique(ec.Requires, c)
		case contract.Ensures:
			ec.Ensures = appendUnique(ec.Ensures, c)
		}
	}

	// contract-class member first: it carries the authoritative contracts
	sources := make([]contract.Member, 0, 3)
	if corr.Contract != nil {
		sources = append(sources, *corr.Contract)
	}
	if corr.Interface != "" {
		if im, ok := e.hm.Model.Lookup(corr.Interface, corr.Signature); ok {
			sources = append(sources, im)
		}
	}
	sources = append(sources, corr.Impl)

	for _, src := range sources {
		for _, c := range e.hm.Model.Contracts(src) {
			add(c)
		}
	}
	for _, c := range corr.Synthesized {
		add(c)
	}
	for _, src := range sources {
		expanded, err := e.expand(src, nil)
		if err != nil {
			return nil, err
		}
		for _, c := range expanded {
			add(c)
		}
	}

	if len(t.Invariants) > 0 {
		m := corr.Impl
		if m.Mutating() || m.Kind == contract.MemberGetter {
			ec.Invariants = append(ec.Invariants, t.Invariants...)
		}
		if m.EntryPoint() {
			ec.EntryInvariants = append(ec.EntryInvariants, t.Invariants...)
		}
	}

	e.logger.Debug("effective contract computed",
		zap.String("key", k.String()),
		zap.Int("requires", len(ec.Requires)),
		zap.Int("ensures", len(ec.Ensures)),
		zap.Int("invariants", len(ec.Invariants)),
	)
	return ec, nil
}

// expand inlines the abbreviators caller invokes, depth-first in call
// order. stack holds the abbreviators being expanded.
func (e *Engine) expand(caller contract.Member, stack []string) ([]contract.Clause, error) {
	var out []contract.Clause
	for _, callee := range e.hm.Callees(caller) {
		id := callee.ID()
		if i := indexOf(stack, id); i >= 0 {
			cycle := append(append([]string(nil), stack[i:]...), id)
			return nil, contract.NewAbbreviatorCycleError(cycle)
		}
		body, _ := e.hm.Model.Abbreviator(callee)
		out = append(out, body...)

		nested, err := e.expand(callee, append(stack, id))
		if err != nil {
			return nil, err
		}
		out = append(out, nested...)
	}
	return out, nil
}

func appendUnique(dst []contract.Clause, c contract.Clause) []contract.Clause {
	for _, d := range dst {
		if d.Identity() == c.Identity() {
			return dst
		}
	}
	return append(dst, c)
}
