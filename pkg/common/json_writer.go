package common

import (
	"encoding/json"
	"io"
)

// wireNode mirrors Node so that spans can be dropped from the output.
type wireNode struct {
	Name     string
	Span     *Span             `json:",omitempty"`
	Options  map[string]string `json:",omitempty"`
	Children []*wireNode       `json:",omitempty"`
}

func toWire(node *Node, options *PrintOptions) *wireNode {
	if node == nil {
		return nil
	}
	w := &wireNode{Name: node.Name}
	if options.IncludeSpans && !node.Span.IsZero() {
		span := node.Span
		w.Span = &span
	}
	if len(node.Options) > 0 {
		w.Options = make(map[string]string, len(node.Options))
		for key, value := range node.Options {
			w.Options[key] = TrimValue(key, value, options.TrimTokenOnOutput)
		}
	}
	for _, child := range node.Children {
		w.Children = append(w.Children, toWire(child, options))
	}
	return w
}

func PrintASTJSON(root *Node, indentDelta string, output io.Writer, options *PrintOptions) error {
	encoder := json.NewEncoder(output)
	if indentDelta != "" {
		encoder.SetIndent("", indentDelta)
	}
	return encoder.Encode(toWire(root, options))
}

func ReadASTJSON(input io.Reader) (*Node, error) {
	var root Node
	decoder := json.NewDecoder(input)
	err := decoder.Decode(&root)
	if err != nil {
		return nil, err
	}
	return &root, nil
}
