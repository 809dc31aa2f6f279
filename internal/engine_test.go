package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnolang/ccheck/internal/checker"
	"github.com/gnolang/ccheck/internal/contract/contracttest"
	tt "github.com/gnolang/ccheck/internal/types"
)

func newTestEngine(t *testing.T, rules map[string]tt.ConfigRule) *Engine {
	t.Helper()
	logger, _ := zap.NewProduction()
	return NewEngine(rules, logger)
}

func codes(issues []tt.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Code)
	}
	return out
}

func TestEngineRunContractClassFor001(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t, nil)

	issues, err := engine.Run(fooManifest)
	require.NoError(t, err)
	require.Len(t, issues, 2)

	ctor, bar := issues[0], issues[1]

	assert.Equal(t, checker.CodeInvariantViolated, ctor.Code)
	assert.Equal(t, tt.SeverityError, ctor.Severity)
	assert.Equal(t, fooManifest, ctor.Filename)
	assert.Equal(t, contracttest.Foo, ctor.Type)
	assert.Contains(t, ctor.Message, "TotalColumns == 80")
	assert.Contains(t, ctor.Message, "construct Foo")

	assert.Equal(t, checker.CodeEnsuresViolated, bar.Code)
	assert.Equal(t, "Foo::Bar()", bar.Member)
	assert.Contains(t, bar.Message, contracttest.ColumnUnchanged)
	assert.Contains(t, bar.Note, "ValidateColumnUnchanged")
}

func TestEngineRunValidManifest(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t, nil)

	issues, err := engine.Run("testdata/Valid.contracts.yaml")
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestEngineSeverityOverrides(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t, map[string]tt.ConfigRule{
		checker.CodeInvariantViolated: {Severity: tt.SeverityWarning},
		checker.CodeEnsuresViolated:   {Severity: tt.SeverityOff},
	})

	issues, err := engine.Run(fooManifest)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, checker.CodeInvariantViolated, issues[0].Code)
	assert.Equal(t, tt.SeverityWarning, issues[0].Severity)
}

func TestEngineIgnoreRuleAndPath(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t, nil)
	engine.IgnoreRule(checker.CodeInvariantViolated)

	issues, err := engine.Run(fooManifest)
	require.NoError(t, err)
	assert.Equal(t, []string{checker.CodeEnsuresViolated}, codes(issues))

	engine.IgnorePath("testdata")
	issues, err = engine.Run(fooManifest)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestEngineRunSource(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t, nil)

	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "requires and invariant",
			src: `
types:
  - name: Counter
    kind: class
    invariants: [Count >= 0]
    members:
      - name: Dec
        requires: [Count > 0]
invocations:
  - type: Counter
    member: Dec()
    before: {Count: 0}
    after: {Count: -1}
`,
			want: []string{checker.CodeRequiresViolated, checker.CodeInvariantViolated},
		},
		{
			name: "structural error",
			src: `
types:
  - {name: I, kind: interface, members: [{name: Run}]}
  - {name: C, kind: class, implements: [I]}
`,
			want: []string{"MISSING_IMPLEMENTATION"},
		},
		{
			name: "unknown invocation member",
			src: `
types:
  - {name: C, kind: class, members: [{name: Run}]}
invocations:
  - {type: C, member: Walk()}
`,
			want: []string{"UNRESOLVED_MEMBER"},
		},
		{
			name: "abbreviator cycle",
			src: `
types:
  - name: C
    kind: contract-class
    members:
      - {name: A, abbreviator: true, ensures: [x == 1], calls: [B]}
      - {name: B, abbreviator: true, ensures: [y == 1], calls: [A]}
      - {name: Run, calls: [A]}
`,
			want: []string{"ABBREVIATOR_CYCLE"},
		},
		{
			name: "suppressed",
			src: `
types:
  - name: Counter
    kind: class
    invariants: [Count >= 0]
    members:
      - {name: Dec, requires: [Count > 0], nolint: [REQUIRES_VIOLATED]}
invocations:
  - {type: Counter, member: Dec(), before: {Count: 0}, after: {Count: -1}}
`,
			want: []string{checker.CodeInvariantViolated},
		},
		{
			name: "resolver diagnostics",
			src: `
types:
  - name: C
    kind: contract-class
    members:
      - {name: Unused, abbreviator: true, ensures: [x == 1]}
`,
			want: []string{"UNUSED_ABBREVIATOR"},
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			issues, err := engine.RunSource([]byte(tc.src))
			require.NoError(t, err)
			assert.Equal(t, tc.want, codes(issues))
		})
	}
}

func TestEngineRunSourceInvalidYAML(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t, nil)
	_, err := engine.RunSource([]byte("types: [\n"))
	assert.Error(t, err)
}

func TestEngineReportUndecided(t *testing.T) {
	t.Parallel()
	src := []byte(`
types:
  - {name: C, kind: class, invariants: [Size >= 0], members: [{name: Run}]}
invocations:
  - {type: C, member: Run(), before: {}, after: {}}
`)
	engine := newTestEngine(t, nil)
	issues, err := engine.RunSource(src)
	require.NoError(t, err)
	assert.Empty(t, issues)

	engine.SetReportUndecided(true)
	issues, err = engine.RunSource(src)
	require.NoError(t, err)
	assert.Equal(t, []string{checker.CodePredicateUndecided, checker.CodePredicateUndecided}, codes(issues))
}

func TestEngineUsesCache(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "foo"+ManifestExt)
	data, err := os.ReadFile(fooManifest)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cache, err := NewCache(filepath.Join(dir, "cache"))
	require.NoError(t, err)

	engine := newTestEngine(t, nil)
	engine.SetCache(cache)

	first, err := engine.Run(path)
	require.NoError(t, err)
	require.Len(t, first, 2)
	cached, ok := cache.Get(path)
	require.True(t, ok)
	assert.Subset(t, codes(cached), codes(first))

	second, err := engine.Run(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEngineCacheKeepsEngineOptionsOut(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	path := filepath.Join(dir, "foo"+ManifestExt)
	data, err := os.ReadFile(fooManifest)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cache, err := NewCache(cacheDir)
	require.NoError(t, err)
	ignoring := newTestEngine(t, map[string]tt.ConfigRule{
		checker.CodeInvariantViolated: {Severity: tt.SeverityWarning},
	})
	ignoring.IgnoreRule(checker.CodeEnsuresViolated)
	ignoring.SetCache(cache)

	issues, err := ignoring.Run(path)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, tt.SeverityWarning, issues[0].Severity)

	reopened, err := NewCache(cacheDir)
	require.NoError(t, err)
	plain := newTestEngine(t, nil)
	plain.SetCache(reopened)

	issues, err = plain.Run(path)
	require.NoError(t, err)
	assert.Equal(t, []string{checker.CodeInvariantViolated, checker.CodeEnsuresViolated}, codes(issues))
	assert.Equal(t, tt.SeverityError, issues[0].Severity)
	assert.Equal(t, path, issues[0].Filename)

	uncached, err := newTestEngine(t, nil).Run(path)
	require.NoError(t, err)
	assert.Equal(t, uncached, issues)
}

func TestEngineCacheReportUndecided(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "undecided"+ManifestExt)
	require.NoError(t, os.WriteFile(path, []byte(`
types:
  - {name: C, kind: class, invariants: [Size >= 0], members: [{name: Run}]}
invocations:
  - {type: C, member: Run(), before: {}, after: {}}
`), 0o644))

	cache, err := NewCache(filepath.Join(dir, "cache"))
	require.NoError(t, err)

	quiet := newTestEngine(t, nil)
	quiet.SetCache(cache)
	issues, err := quiet.Run(path)
	require.NoError(t, err)
	assert.Empty(t, issues)

	loud := newTestEngine(t, nil)
	loud.SetReportUndecided(true)
	loud.SetCache(cache)
	issues, err = loud.Run(path)
	require.NoError(t, err)
	assert.Equal(t, []string{checker.CodePredicateUndecided, checker.CodePredicateUndecided}, codes(issues))
}
