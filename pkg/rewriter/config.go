package rewriter

import (
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/frxstrem/cain/pkg/common"
	"github.com/frxstrem/cain/pkg/treerules"
)

// Version is the version of the rewriter checked against Config.Requires.
const Version = "0.3.0"

// Config represents the top-level configuration structure
type Config struct {
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
	// Requires is a semver constraint on Version.
	Requires string `yaml:"requires,omitempty"`
	// Verify runs the output checker after each rewrite.
	Verify bool `yaml:"verify"`
	// FixedPoint rewrites the output again and fails unless nothing changes.
	FixedPoint bool `yaml:"fixedPoint"`
	// Tidy applies treerules.DefaultRules to wire trees before decoding.
	Tidy bool `yaml:"tidy"`
	// Rules are extra tree rules applied after the tidy rules.
	Rules  *treerules.RulesConfig `yaml:"rules,omitempty"`
	Print  common.PrintOptions    `yaml:"print"`
	Bundle string                 `yaml:"bundle,omitempty"`
}

const DefaultConfig = `
name: default
requires: ">= 0.1.0"
verify: true
fixedPoint: false
tidy: true
print:
  option-format: SOURCE
  option-indent: 2
`

// LoadConfig loads a Config from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	config, err := LoadConfigFromString(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return config, nil
}

// LoadConfigFromString loads a Config from a YAML string. Fields the YAML
// leaves out keep their DefaultConfig values.
func LoadConfigFromString(yamlContent string) (*Config, error) {
	config := MustDefaultConfig()
	if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
		return nil, err
	}
	return config, nil
}

// MustDefaultConfig returns the parsed DefaultConfig.
func MustDefaultConfig() *Config {
	var config Config
	if err := yaml.Unmarshal([]byte(DefaultConfig), &config); err != nil {
		panic(fmt.Sprintf("rewriter: bad default config: %v", err))
	}
	return &config
}

// CheckVersion reports an error unless version satisfies Requires.
func (c *Config) CheckVersion(version string) error {
	if c.Requires == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(c.Requires)
	if err != nil {
		return fmt.Errorf("invalid requires constraint %q: %w", c.Requires, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", version, err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("configuration %q requires %s, this is %s", c.Name, c.Requires, version)
	}
	return nil
}
