package common

import (
	"io"

	"gopkg.in/yaml.v3"
)

// yamlNode is the YAML shape of a Node. Spans are written as flow sequences.
type yamlNode struct {
	Name     string            `yaml:"name"`
	Span     []int             `yaml:"span,omitempty,flow"`
	Options  map[string]string `yaml:"options,omitempty"`
	Children []*yamlNode       `yaml:"children,omitempty"`
}

func toYAML(node *Node, options *PrintOptions) *yamlNode {
	y := &yamlNode{Name: node.Name}
	if options.IncludeSpans && !node.Span.IsZero() {
		y.Span = []int{node.Span.StartLine, node.Span.StartColumn, node.Span.EndLine, node.Span.EndColumn}
	}
	if len(node.Options) > 0 {
		y.Options = make(map[string]string, len(node.Options))
		for key, value := range node.Options {
			y.Options[key] = TrimValue(key, value, options.TrimTokenOnOutput)
		}
	}
	for _, child := range node.Children {
		y.Children = append(y.Children, toYAML(child, options))
	}
	return y
}

func fromYAML(y *yamlNode) *Node {
	node := &Node{Name: y.Name, Options: y.Options}
	if node.Options == nil {
		node.Options = map[string]string{}
	}
	if len(y.Span) == 4 {
		node.Span = Span{StartLine: y.Span[0], StartColumn: y.Span[1], EndLine: y.Span[2], EndColumn: y.Span[3]}
	}
	for _, child := range y.Children {
		node.Children = append(node.Children, fromYAML(child))
	}
	return node
}

func PrintASTYAML(root *Node, indentDelta string, output io.Writer, options *PrintOptions) error {
	encoder := yaml.NewEncoder(output)
	if n := len(indentDelta); n > 0 {
		encoder.SetIndent(n)
	}
	if err := encoder.Encode(toYAML(root, options)); err != nil {
		return err
	}
	return encoder.Close()
}

func ReadASTYAML(input io.Reader) (*Node, error) {
	var root yamlNode
	if err := yaml.NewDecoder(input).Decode(&root); err != nil {
		return nil, err
	}
	return fromYAML(&root), nil
}
