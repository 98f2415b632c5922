package treerules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RulesConfig represents the top-level configuration structure
type RulesConfig struct {
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
	Passes      []Pass `yaml:"passes"`
}

// Pass represents a single named pass containing rewrite rules
type Pass struct {
	Name      string `yaml:"name"`
	Downwards []Rule `yaml:"downwards,omitempty"`
	Upwards   []Rule `yaml:"upwards,omitempty"`
}

// Rule represents a single rewrite rule with match conditions and actions
type Rule struct {
	Name            string       `yaml:"name,omitempty"`
	Match           Pattern      `yaml:"match"`
	Action          ActionConfig `yaml:"action"`
	OnSuccess       *string      `yaml:"onSuccess,omitempty"`
	OnFailure       *string      `yaml:"onFailure,omitempty"`
	RepeatOnSuccess bool         `yaml:"repeatOnSuccess,omitempty"`
}

// ActionConfig defines what action to take when a match is found. It is
// unmarshalled from YAML and then converted to a concrete Action.
type ActionConfig struct {
	ReplaceValue   *ReplaceValueConfig `yaml:"replaceValue,omitempty"`
	ReplaceName    *string             `yaml:"replaceName,omitempty"`
	ReplaceByChild *int                `yaml:"replaceByChild,omitempty"`
	InlineChild    bool                `yaml:"inlineChild,omitempty"`
	RemoveChild    bool                `yaml:"removeChild,omitempty"`
	RemoveOption   *string             `yaml:"removeOption,omitempty"`
	Sequence       []ActionConfig      `yaml:"sequence,omitempty"`
	ChildAction    *ActionConfig       `yaml:"childAction,omitempty"`
	Continue       bool                `yaml:"continue,omitempty"`
	Fail           *string             `yaml:"fail,omitempty"`
}

type ReplaceValueConfig struct {
	Key  string `yaml:"key"`
	With string `yaml:"with"`
}

// chosen lists the YAML names of the actions that are set.
func (ac ActionConfig) chosen() []string {
	var names []string
	add := func(set bool, name string) {
		if set {
			names = append(names, name)
		}
	}
	add(ac.ReplaceValue != nil, "replaceValue")
	add(ac.ReplaceName != nil, "replaceName")
	add(ac.ReplaceByChild != nil, "replaceByChild")
	add(ac.InlineChild, "inlineChild")
	add(ac.RemoveChild, "removeChild")
	add(ac.RemoveOption != nil, "removeOption")
	add(len(ac.Sequence) > 0, "sequence")
	add(ac.ChildAction != nil, "childAction")
	add(ac.Continue, "continue")
	add(ac.Fail != nil, "fail")
	return names
}

// Validate requires exactly one action to be set.
func (ac ActionConfig) Validate() error {
	if ac.ReplaceValue != nil && ac.ReplaceValue.Key == "" {
		return fmt.Errorf("invalid replaceValue: 'key' must be set")
	}
	switch names := ac.chosen(); len(names) {
	case 0:
		return fmt.Errorf("no action specified")
	case 1:
		return nil
	default:
		return fmt.Errorf("only one action allowed, found %s", strings.Join(names, ", "))
	}
}

// ToAction converts an ActionConfig to a concrete Action implementation
func (ac ActionConfig) ToAction() (Action, error) {
	if err := ac.Validate(); err != nil {
		return nil, err
	}
	switch {
	case ac.ReplaceValue != nil:
		return &ReplaceValueAction{Key: ac.ReplaceValue.Key, With: ac.ReplaceValue.With}, nil
	case ac.ReplaceName != nil:
		return &ReplaceNameWithAction{With: *ac.ReplaceName}, nil
	case ac.ReplaceByChild != nil:
		return &ReplaceByChildAction{ChildIndex: *ac.ReplaceByChild}, nil
	case ac.InlineChild:
		return &InlineChildAction{}, nil
	case ac.RemoveChild:
		return &RemoveChildAction{}, nil
	case ac.RemoveOption != nil:
		return &RemoveOptionAction{Key: *ac.RemoveOption}, nil
	case len(ac.Sequence) > 0:
		actions := []Action{}
		for i, subAc := range ac.Sequence {
			subAction, err := subAc.ToAction()
			if err != nil {
				return nil, fmt.Errorf("error in nested sequence action, position %d: %w", i, err)
			}
			actions = append(actions, subAction)
		}
		return &SequenceAction{Actions: actions}, nil
	case ac.ChildAction != nil:
		childAction, err := ac.ChildAction.ToAction()
		if err != nil {
			return nil, fmt.Errorf("error in nested child action: %w", err)
		}
		return &ChildAction{Action: childAction}, nil
	case ac.Continue:
		return &NullAction{}, nil
	default:
		return &FailAction{Message: *ac.Fail}, nil
	}
}

// LoadRulesConfig loads a RulesConfig from a YAML file.
func LoadRulesConfig(filename string) (*RulesConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return LoadRulesConfigFromString(string(data))
}

// LoadRulesConfigFromString loads a RulesConfig from a YAML string.
func LoadRulesConfigFromString(yamlContent string) (*RulesConfig, error) {
	var config RulesConfig
	if err := yaml.Unmarshal([]byte(yamlContent), &config); err != nil {
		return nil, err
	}
	return &config, nil
}
