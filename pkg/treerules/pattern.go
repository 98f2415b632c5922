package treerules

import (
	"fmt"
	"strings"

	"github.com/frxstrem/cain/pkg/common"
)

// Path locates a node inside the tree being rewritten: its index among its
// siblings, its parent and the path of that parent.
type Path struct {
	Index  int
	Parent *common.Node
	Up     *Path
}

// childPath is the path of the i-th child of node, which itself sits at up.
func childPath(node *common.Node, i int, up *Path) *Path {
	return &Path{Index: i, Parent: node, Up: up}
}

// NodePattern constrains a single node. Unset fields match anything. Value
// and Prefix test the option named by Key; Cmp set to false inverts those two
// tests.
type NodePattern struct {
	Name            *string `yaml:"name,omitempty"`
	Key             *string `yaml:"key,omitempty"`
	Value           *string `yaml:"value,omitempty"`
	Prefix          *string `yaml:"prefix,omitempty"`
	Cmp             *bool   `yaml:"cmp,omitempty"`
	Count           *int    `yaml:"count,omitempty"`
	SiblingPosition *int    `yaml:"siblingPosition,omitempty"`
}

func (np *NodePattern) wanted() bool {
	return np.Cmp == nil || *np.Cmp
}

func (np *NodePattern) optionMatches(options map[string]string) bool {
	if np.Key == nil {
		return true
	}
	val, ok := options[*np.Key]
	if !ok {
		return false
	}
	if np.Value != nil && (val == *np.Value) != np.wanted() {
		return false
	}
	return np.Prefix == nil || strings.HasPrefix(val, *np.Prefix) == np.wanted()
}

// positionMatches checks SiblingPosition, where negative positions count from
// the last sibling. A node without a parent has no position to check.
func (np *NodePattern) positionMatches(path *Path) bool {
	if np.SiblingPosition == nil || path == nil || path.Parent == nil {
		return true
	}
	n := len(path.Parent.Children)
	if n == 0 {
		return path.Index == 0
	}
	want := *np.SiblingPosition % n
	if want < 0 {
		want += n
	}
	return path.Index == want
}

// Matches reports whether node, found at path, satisfies every set field.
func (np *NodePattern) Matches(node *common.Node, path *Path) bool {
	switch {
	case node == nil:
		return false
	case np == nil:
		return true
	case np.Name != nil && node.Name != *np.Name:
		return false
	case np.Count != nil && len(node.Children) != *np.Count:
		return false
	}
	return np.optionMatches(node.Options) && np.positionMatches(path)
}

// Pattern matches a node together with its parent and one of its children.
// PreviousChild and NextChild are checked against the siblings of the child
// that matched Child.
type Pattern struct {
	Parent        *NodePattern `yaml:"parent,omitempty"`
	Self          *NodePattern `yaml:"self,omitempty"`
	Child         *NodePattern `yaml:"child,omitempty"`
	PreviousChild *NodePattern `yaml:"previousChild,omitempty"`
	NextChild     *NodePattern `yaml:"nextChild,omitempty"`
}

// Matches reports whether the pattern matches node and, when the pattern has
// a Child condition, the position of the first matching child (else -1).
func (p *Pattern) Matches(node *common.Node, path *Path) (bool, int) {
	if p == nil || node == nil {
		return false, -1
	}
	if p.Self != nil && !p.Self.Matches(node, path) {
		return false, -1
	}
	if p.Parent != nil && (path == nil || !p.Parent.Matches(path.Parent, path.Up)) {
		return false, -1
	}
	if p.Child == nil {
		return true, -1
	}
	at := -1
	for i, child := range node.Children {
		if p.Child.Matches(child, childPath(node, i, path)) {
			at = i
			break
		}
	}
	if at < 0 {
		return false, -1
	}
	if !neighbourMatches(p.PreviousChild, node, at-1, path) || !neighbourMatches(p.NextChild, node, at+1, path) {
		return false, -1
	}
	return true, at
}

// neighbourMatches checks the sibling at index i of the matched child. An
// unset pattern always holds; a set one fails when there is no such sibling.
func neighbourMatches(np *NodePattern, node *common.Node, i int, path *Path) bool {
	if np == nil {
		return true
	}
	if i < 0 || i >= len(node.Children) {
		return false
	}
	return np.Matches(node.Children[i], childPath(node, i, path))
}

// Validate rejects patterns that cannot match anything meaningful.
func (p *Pattern) Validate(name string) error {
	switch {
	case p == nil:
		return fmt.Errorf("pattern is nil")
	case p.Self == nil && p.Parent == nil && p.Child == nil && p.PreviousChild == nil && p.NextChild == nil:
		return fmt.Errorf("pattern has no conditions: %s", name)
	case (p.PreviousChild != nil || p.NextChild != nil) && p.Child == nil:
		return fmt.Errorf("previousChild and nextChild need a child condition: %s", name)
	}
	return nil
}
