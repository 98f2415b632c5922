package main

import (
	"fmt"
	"io"
	"os"

	pflag "github.com/spf13/pflag"

	"github.com/frxstrem/cain/pkg/driver"
	"github.com/frxstrem/cain/pkg/eval"
	"github.com/frxstrem/cain/pkg/rewriter"
	"github.com/frxstrem/cain/pkg/syntax"
)

// Version is injected at build time via ldflags.
var Version = "dev"

const usage = `cain-eval - runs a block with the reference interpreter

The interpreter covers the dynamic subset of the language that the rewriter
cares about. With --rewrite the rewritten block is run instead; with
--compare both are run and the tool fails unless their outcomes agree.

Usage:
  cain-eval [options]

Options:
`

func main() {
	var showHelp, showVersion, rewrite, compare bool
	var inputFile, inputFormat string
	var maxSteps int

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", usage)
		pflag.PrintDefaults()
	}

	pflag.BoolVarP(&showHelp, "help", "h", false, "Show help")
	pflag.BoolVar(&showVersion, "version", false, "Show version")
	pflag.StringVarP(&inputFile, "input", "i", "", "Input file (defaults to stdin)")
	pflag.StringVar(&inputFormat, "input-format", "", "Input format (SOURCE, JSON, YAML); defaults to the file extension")
	pflag.BoolVar(&rewrite, "rewrite", false, "Run the rewritten block")
	pflag.BoolVar(&compare, "compare", false, "Run the block before and after rewriting and compare")
	pflag.IntVar(&maxSteps, "max-steps", eval.DefaultMaxSteps, "Maximum number of evaluation steps")

	pflag.Parse()

	if showHelp {
		pflag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("cain-eval version %s\n", Version)
		os.Exit(0)
	}

	// Determine input source.
	var input io.Reader = os.Stdin
	if inputFile != "" {
		file, err := os.Open(inputFile) // #nosec G304 - CLI tool reads user-specified input files
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input file: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()
		input = file
	}

	in, err := driver.ReadInput(input, inputFile, inputFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
	block, err := syntax.FromNode(in.Tree)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding tree: %v\n", err)
		os.Exit(1)
	}

	var rewritten *syntax.Block
	if rewrite || compare {
		rewritten, err = rewriter.Rewrite(block)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Rewrite error: %v\n", err)
			os.Exit(1)
		}
	}

	if compare {
		before := eval.Observe(block, maxSteps)
		after := eval.Observe(rewritten, maxSteps)
		if !before.Same(after) {
			fmt.Fprintf(os.Stderr, "Outcomes differ:\n  before: %s\n  after:  %s\n", before, after)
			os.Exit(1)
		}
		fmt.Println(before)
		return
	}

	if rewrite {
		block = rewritten
	}
	o := eval.Observe(block, maxSteps)
	fmt.Print(o.Output)
	switch {
	case o.Err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", o.Err)
		os.Exit(1)
	case o.Panic != "":
		fmt.Fprintf(os.Stderr, "panicked: %s\n", o.Panic)
		os.Exit(101)
	}
	if _, unit := o.Value.(eval.Unit); !unit {
		fmt.Println(eval.Debug(o.Value))
	}
}
