// Package treerules applies YAML-configured node rules to a wire tree. The
// rewriter uses it to tidy trees before decoding them.
package treerules

import (
	"fmt"

	"github.com/frxstrem/cain/pkg/common"
)

// maxSteps bounds the rule steps taken at a single node so that a rule that
// repeats on success without changing the node cannot loop forever.
const maxSteps = 1000

type compiledRule struct {
	Name      string
	Pattern   *Pattern
	Action    Action
	OnSuccess int
	OnFailure int
}

type compiledPass struct {
	Name      string
	Downwards []*compiledRule
	Upwards   []*compiledRule
}

// Engine is a compiled RulesConfig.
type Engine struct {
	Name   string
	Passes []*compiledPass
}

// NewEngine compiles the configuration into executable rules.
func NewEngine(config *RulesConfig) (*Engine, error) {
	engine := &Engine{Name: config.Name}
	for _, passConfig := range config.Passes {
		downwards, err := compileRules(passConfig.Name, "downwards", passConfig.Downwards)
		if err != nil {
			return nil, err
		}
		upwards, err := compileRules(passConfig.Name, "upwards", passConfig.Upwards)
		if err != nil {
			return nil, err
		}
		engine.Passes = append(engine.Passes, &compiledPass{
			Name:      passConfig.Name,
			Downwards: downwards,
			Upwards:   upwards,
		})
	}
	return engine, nil
}

func compileRules(passName, direction string, rules []Rule) ([]*compiledRule, error) {
	toIndex := make(map[string]int)
	for i, rule := range rules {
		toIndex[rule.Name] = i
	}
	lookup := func(rule Rule, field string, target *string, fallback int) (int, error) {
		if target == nil {
			return fallback, nil
		}
		value, exists := toIndex[*target]
		if !exists {
			return 0, fmt.Errorf("error in %s rule \"%s/%s\": %s refers to unknown rule \"%s\"", direction, passName, rule.Name, field, *target)
		}
		return value, nil
	}
	var compiled []*compiledRule
	for i, rule := range rules {
		if err := rule.Match.Validate(rule.Name); err != nil {
			return nil, fmt.Errorf("error in %s rule \"%s/%s\": %w", direction, passName, rule.Name, err)
		}
		action, err := rule.Action.ToAction()
		if err != nil {
			return nil, fmt.Errorf("error in %s rule \"%s/%s\": %w", direction, passName, rule.Name, err)
		}
		onSuccess := i + 1
		if rule.RepeatOnSuccess {
			onSuccess = i
		} else if onSuccess, err = lookup(rule, "onSuccess", rule.OnSuccess, onSuccess); err != nil {
			return nil, err
		}
		onFailure, err := lookup(rule, "onFailure", rule.OnFailure, i+1)
		if err != nil {
			return nil, err
		}
		match := rule.Match
		compiled = append(compiled, &compiledRule{
			Name:      rule.Name,
			Pattern:   &match,
			Action:    action,
			OnSuccess: onSuccess,
			OnFailure: onFailure,
		})
	}
	return compiled, nil
}

// Apply runs every pass over the tree and returns the new root together with
// the number of rule applications.
func (e *Engine) Apply(node *common.Node) (*common.Node, int, error) {
	total := 0
	for _, pass := range e.Passes {
		var count int
		var err error
		node, count, err = pass.doRewrite(node, nil)
		if err != nil {
			return nil, total, fmt.Errorf("pass %q: %w", pass.Name, err)
		}
		total += count
	}
	return node, total, nil
}

func (r *compiledPass) doRewrite(node *common.Node, path *Path) (*common.Node, int, error) {
	if node == nil {
		return nil, 0, nil
	}
	node, total, err := applyRules(node, path, r.Downwards)
	if err != nil {
		return nil, total, err
	}
	for i := 0; i < len(node.Children); i++ {
		child, count, err := r.doRewrite(node.Children[i], childPath(node, i, path))
		total += count
		if err != nil {
			return nil, total, err
		}
		node.Children[i] = child
	}
	node, count, err := applyRules(node, path, r.Upwards)
	return node, total + count, err
}

func applyRules(node *common.Node, path *Path, rules []*compiledRule) (*common.Node, int, error) {
	applied := 0
	currentRule := 0
	for steps := 0; currentRule < len(rules); steps++ {
		if steps == maxSteps {
			return nil, applied, fmt.Errorf("rule %q did not settle at %s", rules[currentRule].Name, node.Span)
		}
		rule := rules[currentRule]
		m, n := rule.Pattern.Matches(node, path)
		if !m {
			currentRule = rule.OnFailure
			continue
		}
		var err error
		node, err = rule.Action.Apply(rule.Pattern, n, node, path)
		if err != nil {
			return nil, applied, fmt.Errorf("rule %q: %w", rule.Name, err)
		}
		applied++
		currentRule = rule.OnSuccess
	}
	return node, applied, nil
}
