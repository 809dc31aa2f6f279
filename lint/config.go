package lint

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/ccheck/internal/checker"
	"github.com/gnolang/ccheck/internal/hierarchy"
	tt "github.com/gnolang/ccheck/internal/types"
)

// DefaultConfigFile is the configuration file name ccheck init writes.
const DefaultConfigFile = ".ccheck.yaml"

// Config represents the overall configuration with a name and per-code
// severity overrides.
type Config struct {
	Name            string                   `yaml:"name"`
	ReportUndecided bool                     `yaml:"report-undecided"`
	Ignore          []string                 `yaml:"ignore,omitempty"`
	Rules           map[string]tt.ConfigRule `yaml:"rules"`
}

// DefaultConfig lists every diagnostic code with its default severity.
func DefaultConfig() Config {
	return Config{
		Name: "ccheck",
		Rules: map[string]tt.ConfigRule{
			checker.CodeRequiresViolated:             {Severity: tt.SeverityError},
			checker.CodeEnsuresViolated:              {Severity: tt.SeverityError},
			checker.CodeInvariantViolated:            {Severity: tt.SeverityError},
			checker.CodePredicateUndecided:           {Severity: tt.SeverityWarning},
			hierarchy.CodePreconditionStrengthened:   {Severity: tt.SeverityWarning},
			hierarchy.CodeContractClassForeignMember: {Severity: tt.SeverityWarning},
			hierarchy.CodeUnusedAbbreviator:          {Severity: tt.SeverityInfo},
		},
	}
}

func parseConfigurationFile(configurationPath string) (Config, error) {
	var config Config

	f, err := os.Open(configurationPath)
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("error parsing %s: %w", configurationPath, err)
	}

	return config, nil
}

// LoadConfig reads a configuration file.
func LoadConfig(configurationPath string) (Config, error) {
	return parseConfigurationFile(configurationPath)
}

// WriteConfig writes config as YAML to path.
func WriteConfig(path string, config Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error marshalling the config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}
