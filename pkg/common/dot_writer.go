package common

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

func PrintASTDOT(root *Node, indentDelta string, output io.Writer, options *PrintOptions) error {
	w := bufio.NewWriter(output)

	fmt.Fprintln(w, `digraph G {`)
	fmt.Fprintln(w, `  bgcolor="transparent";`)
	fmt.Fprintln(w, `  node [shape="box", style="filled", fontname="Ubuntu Mono"];`)

	counter := 0
	printNodeDOT(root, "", w, options, &counter)

	fmt.Fprintln(w, `}`)
	return w.Flush()
}

func printNodeDOT(node *Node, parentID string, output io.Writer, options *PrintOptions, counter *int) {
	// Sequential identifiers keep the output stable between runs.
	nodeID := fmt.Sprintf("node_%d", *counter)
	*counter++

	label := node.Name
	if len(node.Options) == 1 {
		for key, value := range node.Options {
			trimmedValue := TrimValue(key, value, options.TrimTokenOnOutput)
			label = fmt.Sprintf("%s: %s", node.Name, escapeDOTValue(trimmedValue))
		}
	} else if value, exists := node.Options[OptionValue]; exists {
		trimmedValue := TrimValue(OptionValue, value, options.TrimTokenOnOutput)
		label = fmt.Sprintf("%s: %s", node.Name, escapeDOTValue(trimmedValue))
	} else if name, exists := node.Options[OptionName]; exists {
		trimmedValue := TrimValue(OptionName, name, options.TrimTokenOnOutput)
		label = fmt.Sprintf("%s: %s", node.Name, escapeDOTValue(trimmedValue))
	}

	fillColor := tagColors[node.Name]
	if fillColor == "" {
		if strings.HasPrefix(node.Name, "pat.") {
			fillColor = "lavender"
		} else {
			fillColor = "lightgray"
		}
	}

	fmt.Fprintf(output, "  \"%s\" [label=\"%s\", shape=\"box\", fillcolor=\"%s\"];\n", nodeID, label, fillColor)

	if parentID != "" {
		fmt.Fprintf(output, "  \"%s\" -> \"%s\";\n", parentID, nodeID)
	}

	for _, child := range node.Children {
		printNodeDOT(child, nodeID, output, options, counter)
	}
}

func escapeDOTValue(value string) string {
	return strings.ReplaceAll(value, `"`, `\"`)
}

var tagColors = map[string]string{
	NameBlock:      "lightpink",
	NameBlockExpr:  "#FFD8E1",
	NameIf:         "lightgreen",
	NameMatch:      "lightgreen",
	NameArm:        "#C0FFC0",
	NameIdentifier: "Honeydew",
	NameLet:        "PaleTurquoise",
	NameClosure:    "LightSkyBlue",
	NameLiteral:    "lightgoldenrodyellow",
}
