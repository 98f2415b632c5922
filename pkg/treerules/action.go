package treerules

import (
	"fmt"

	"github.com/frxstrem/cain/pkg/common"
)

// Action transforms a matched node. The returned node replaces it in its
// parent.
type Action interface {
	Apply(pattern *Pattern, childPosition int, node *common.Node, path *Path) (*common.Node, error)
}

////////////////////////////////////////////////////////////////////////////////
/// Actions
////////////////////////////////////////////////////////////////////////////////

type ReplaceValueAction struct {
	Key  string
	With string
}

func (a *ReplaceValueAction) Apply(pattern *Pattern, childPosition int, node *common.Node, path *Path) (*common.Node, error) {
	if node.Options == nil {
		node.Options = map[string]string{}
	}
	node.Options[a.Key] = a.With
	return node, nil
}

type ReplaceNameWithAction struct {
	With string
}

func (a *ReplaceNameWithAction) Apply(pattern *Pattern, childPosition int, node *common.Node, path *Path) (*common.Node, error) {
	node.Name = a.With
	return node, nil
}

type ReplaceByChildAction struct {
	ChildIndex int
}

func (a *ReplaceByChildAction) Apply(pattern *Pattern, childPosition int, node *common.Node, path *Path) (*common.Node, error) {
	if a.ChildIndex < 0 || a.ChildIndex >= len(node.Children) {
		return node, nil
	}
	return node.Children[a.ChildIndex], nil
}

// InlineChildAction splices the children of the matched child into node in
// place of that child.
type InlineChildAction struct {
}

func (a *InlineChildAction) Apply(pattern *Pattern, childPosition int, node *common.Node, path *Path) (*common.Node, error) {
	if childPosition < 0 || childPosition >= len(node.Children) {
		return nil, fmt.Errorf("inlineChild: no matched child in %s", node.Name)
	}
	matched := node.Children[childPosition]
	children := make([]*common.Node, 0, len(node.Children)+len(matched.Children)-1)
	children = append(children, node.Children[:childPosition]...)
	children = append(children, matched.Children...)
	children = append(children, node.Children[childPosition+1:]...)
	node.Children = children
	return node, nil
}

type RemoveChildAction struct {
}

func (a *RemoveChildAction) Apply(pattern *Pattern, childPosition int, node *common.Node, path *Path) (*common.Node, error) {
	if childPosition < 0 || childPosition >= len(node.Children) {
		return nil, fmt.Errorf("removeChild: no matched child in %s", node.Name)
	}
	children := make([]*common.Node, 0, len(node.Children)-1)
	children = append(children, node.Children[:childPosition]...)
	children = append(children, node.Children[childPosition+1:]...)
	node.Children = children
	return node, nil
}

type RemoveOptionAction struct {
	Key string
}

func (a *RemoveOptionAction) Apply(pattern *Pattern, childPosition int, node *common.Node, path *Path) (*common.Node, error) {
	delete(node.Options, a.Key)
	return node, nil
}

type SequenceAction struct {
	Actions []Action
}

func (a *SequenceAction) Apply(pattern *Pattern, childPosition int, node *common.Node, path *Path) (*common.Node, error) {
	var err error
	for _, action := range a.Actions {
		node, err = action.Apply(pattern, childPosition, node, path)
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

// ChildAction applies Action to the matched child.
type ChildAction struct {
	Action Action
}

func (a *ChildAction) Apply(pattern *Pattern, childPosition int, node *common.Node, path *Path) (*common.Node, error) {
	if childPosition < 0 || childPosition >= len(node.Children) {
		return nil, fmt.Errorf("childAction: no matched child in %s", node.Name)
	}
	child, err := a.Action.Apply(pattern, -1, node.Children[childPosition], childPath(node, childPosition, path))
	if err != nil {
		return nil, err
	}
	node.Children[childPosition] = child
	return node, nil
}

type NullAction struct{}

func (a *NullAction) Apply(pattern *Pattern, childPosition int, node *common.Node, path *Path) (*common.Node, error) {
	return node, nil
}

type FailAction struct {
	Message string
}

func (a *FailAction) Apply(pattern *Pattern, childPosition int, node *common.Node, path *Path) (*common.Node, error) {
	return nil, &RuleError{Message: a.Message, Span: node.Span}
}

// RuleError is raised by a fail action.
type RuleError struct {
	Message string
	Span    common.Span
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Span, e.Message)
}
