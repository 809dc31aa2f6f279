package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/ccheck/internal/contract"
	"github.com/gnolang/ccheck/internal/contract/contracttest"
	"github.com/gnolang/ccheck/internal/minilogic"
)

func newFooRun(t *testing.T) *Run {
	t.Helper()
	m, err := contracttest.FooModel()
	require.NoError(t, err)
	return NewRun(m, nil)
}

func TestRunPhases(t *testing.T) {
	t.Parallel()
	r := newFooRun(t)
	assert.Equal(t, PhaseUnresolved, r.Phase())
	assert.Nil(t, r.Diagnostics())

	_, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, PhaseResolved, r.Phase())
	assert.NotNil(t, r.Hierarchy())

	effective, err := r.Propagate()
	require.NoError(t, err)
	assert.Equal(t, PhasePropagated, r.Phase())
	assert.Equal(t, effective, r.Effective())

	before := minilogic.EnvFromMap(map[string]any{"TotalColumns": 80, "CurrentColumn": 0})
	violations, err := r.Check(contracttest.Foo, "Bar()", before, before)
	require.NoError(t, err)
	assert.Empty(t, violations)
	assert.Equal(t, PhaseChecked, r.Phase())

	// Checked accepts further checks
	_, err = r.Check(contracttest.Foo, "Bar()", before, before)
	assert.NoError(t, err)
}

func TestRunRejectsOutOfOrderSteps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		prep func(r *Run)
		step func(r *Run) error
	}{
		{
			name: "propagate before resolve",
			prep: func(*Run) {},
			step: func(r *Run) error { _, err := r.Propagate(); return err },
		},
		{
			name: "check before propagate",
			prep: func(r *Run) { _, _ = r.Resolve() },
			step: func(r *Run) error { _, err := r.Check(contracttest.Foo, "Bar()", nil, nil); return err },
		},
		{
			name: "resolve twice",
			prep: func(r *Run) { _, _ = r.Resolve() },
			step: func(r *Run) error { _, err := r.Resolve(); return err },
		},
		{
			name: "propagate after check",
			prep: func(r *Run) {
				_, _ = r.Resolve()
				_, _ = r.Propagate()
				_, _ = r.Check(contracttest.Foo, "Bar()", nil, nil)
			},
			step: func(r *Run) error { _, err := r.Propagate(); return err },
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := newFooRun(t)
			tc.prep(r)
			phase := r.Phase()

			err := tc.step(r)
			require.Error(t, err)
			assert.True(t, errors.Is(err, contract.ErrInvalidPhase))
			assert.Equal(t, phase, r.Phase())
		})
	}
}

func TestRunResolveFailureKeepsPhase(t *testing.T) {
	t.Parallel()
	m, err := contracttest.FooModel()
	require.NoError(t, err)
	require.NoError(t, m.DeclareType("Broken", contract.TypeClass, contracttest.IFoo))

	r := NewRun(m, nil)
	_, err = r.Resolve()
	assert.True(t, errors.Is(err, contract.ErrMissingImplementation))
	assert.Equal(t, PhaseUnresolved, r.Phase())
}

func TestPhaseString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "unresolved", PhaseUnresolved.String())
	assert.Equal(t, "checked", PhaseChecked.String())
}
