package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseSeverity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{"error", SeverityError, false},
		{"WARNING", SeverityWarning, false},
		{" warn ", SeverityWarning, false},
		{"Info", SeverityInfo, false},
		{"off", SeverityOff, false},
		{"fatal", SeverityError, true},
	}
	for _, tc := range tests {
		got, err := ParseSeverity(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestSeverityYAML(t *testing.T) {
	t.Parallel()

	data, err := yaml.Marshal(ConfigRule{Severity: SeverityWarning})
	require.NoError(t, err)
	assert.Equal(t, "severity: warning\n", string(data))

	var rule ConfigRule
	require.NoError(t, yaml.Unmarshal([]byte("severity: off\n"), &rule))
	assert.Equal(t, SeverityOff, rule.Severity)

	assert.Error(t, yaml.Unmarshal([]byte("severity: loud\n"), &rule))
}

func TestIssueJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Issue{Code: "INVARIANT_VIOLATED", Category: CategoryViolation, Severity: SeverityInfo, Message: "m"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"INVARIANT_VIOLATED","category":"violation","severity":"INFO","message":"m"}`, string(data))

	var issue Issue
	require.NoError(t, json.Unmarshal(data, &issue))
	assert.Equal(t, SeverityInfo, issue.Severity)
}
