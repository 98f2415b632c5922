// Package driver connects the front door, the checker, the rewriter and the
// bundle into the pipeline used by the commands.
package driver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/frxstrem/cain/pkg/common"
	"github.com/frxstrem/cain/pkg/parser"
	"github.com/frxstrem/cain/pkg/syntax"
)

const (
	FormatSource = "SOURCE"
	FormatJSON   = "JSON"
	FormatYAML   = "YAML"
)

// Input is a decoded input file.
type Input struct {
	Path string
	// Source is the source text; empty when the input was a tree.
	Source string
	Tree   *common.Node
}

// InputFormat returns format in upper case, or the format implied by the
// extension of path when format is empty.
func InputFormat(path, format string) string {
	if format != "" {
		return strings.ToUpper(format)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatSource
	}
}

// ReadInput decodes source text or a JSON/YAML tree.
func ReadInput(r io.Reader, path, format string) (*Input, error) {
	input := &Input{Path: path}
	switch InputFormat(path, format) {
	case FormatSource:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		input.Source = string(data)
		b, err := parser.ParseBlock(input.Source)
		if err != nil {
			return nil, err
		}
		input.Tree = syntax.ToNode(b)
	case FormatJSON:
		tree, err := common.ReadASTJSON(r)
		if err != nil {
			return nil, fmt.Errorf("decoding JSON: %w", err)
		}
		input.Tree = tree
	case FormatYAML:
		tree, err := common.ReadASTYAML(r)
		if err != nil {
			return nil, fmt.Errorf("decoding YAML: %w", err)
		}
		input.Tree = tree
	default:
		return nil, fmt.Errorf("unknown input format: %s", format)
	}
	if input.Tree.Name != common.NameBlock {
		return nil, fmt.Errorf("expected a %s node at the root, got %s", common.NameBlock, input.Tree.Name)
	}
	if input.Tree.Options == nil {
		input.Tree.Options = map[string]string{}
	}
	if path != "" {
		input.Tree.Options[common.OptionSrc] = path
	}
	return input, nil
}

// ReadFile opens path and decodes it with ReadInput.
func ReadFile(path, format string) (*Input, error) {
	file, err := os.Open(path) // #nosec G304 - CLI tool reads user-specified input files
	if err != nil {
		return nil, err
	}
	defer file.Close()
	input, err := ReadInput(file, path, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return input, nil
}

// WriteOutput renders a block tree in options.Format. SOURCE prints the
// block as source text; the other formats are tree formats.
func WriteOutput(w io.Writer, tree *common.Node, options *common.PrintOptions) error {
	if options.Format == "" || strings.EqualFold(options.Format, FormatSource) {
		b, err := syntax.FromNode(tree)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, syntax.Format(b))
		return err
	}
	printFunc, err := common.PickPrintFunc(options.Format)
	if err != nil {
		return err
	}
	return printFunc(tree, options.IndentString(), w, options)
}

// OutputExt is the file extension used for a print format.
func OutputExt(format string) string {
	switch strings.ToUpper(format) {
	case "", FormatSource:
		return ".rs"
	case FormatJSON:
		return ".json"
	case FormatYAML:
		return ".yaml"
	case "DOT":
		return ".dot"
	default:
		return ".txt"
	}
}
