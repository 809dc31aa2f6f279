package types

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Issue is a diagnostic produced by an analysis run: a contract violation,
// a resolver warning, or a fatal structural error reported to the host.
type Issue struct {
	Code     string   `json:"code"`
	Category string   `json:"category"`
	Severity Severity `json:"severity"`
	Filename string   `json:"filename,omitempty"`
	Type     string   `json:"type,omitempty"`
	Member   string   `json:"member,omitempty"`
	Message  string   `json:"message"`
	Note     string   `json:"note,omitempty"`
}

// Issue categories.
const (
	CategoryViolation  = "violation"
	CategoryHierarchy  = "hierarchy"
	CategoryStructural = "structural"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityOff
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	case SeverityOff:
		return "OFF"
	}
	return "UNKNOWN"
}

// ParseSeverity accepts the names printed by String in any case.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return SeverityError, nil
	case "WARNING", "WARN":
		return SeverityWarning, nil
	case "INFO":
		return SeverityInfo, nil
	case "OFF":
		return SeverityOff, nil
	}
	return SeverityError, fmt.Errorf("unknown severity %q", s)
}

func (s Severity) MarshalYAML() (interface{}, error) {
	return strings.ToLower(s.String()), nil
}

func (s *Severity) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseSeverity(value.Value)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ConfigRule overrides the severity of one diagnostic code.
type ConfigRule struct {
	Severity Severity `yaml:"severity"`
}
