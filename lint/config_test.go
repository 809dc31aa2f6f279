package lint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/ccheck/internal/checker"
	tt "github.com/gnolang/ccheck/internal/types"
)

func TestConfigRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, WriteConfig(path, DefaultConfig()))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestParseConfigurationFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	content := `name: strict
report-undecided: true
ignore:
  - legacy
rules:
  INVARIANT_VIOLATED:
    severity: warning
  ENSURES_VIOLATED:
    severity: off
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := parseConfigurationFile(path)
	require.NoError(t, err)
	assert.Equal(t, "strict", config.Name)
	assert.True(t, config.ReportUndecided)
	assert.Equal(t, []string{"legacy"}, config.Ignore)
	assert.Equal(t, tt.SeverityWarning, config.Rules[checker.CodeInvariantViolated].Severity)
	assert.Equal(t, tt.SeverityOff, config.Rules[checker.CodeEnsuresViolated].Severity)

	engine, err := New(path, nil)
	require.NoError(t, err)
	issues, err := engine.Run(fooManifest)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, tt.SeverityWarning, issues[0].Severity)
}

func TestParseConfigurationFileErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	_, err := parseConfigurationFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("rules:\n  X:\n    severity: loud\n"), 0o644))
	_, err = parseConfigurationFile(bad)
	assert.Error(t, err)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("nmae: typo\n"), 0o644))
	_, err = New(unknown, nil)
	assert.Error(t, err)
}
