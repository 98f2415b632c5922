package main

import (
	"fmt"
	"io"
	"os"

	pflag "github.com/spf13/pflag"

	"github.com/frxstrem/cain/pkg/checker"
	"github.com/frxstrem/cain/pkg/common"
	"github.com/frxstrem/cain/pkg/driver"
	"github.com/frxstrem/cain/pkg/syntax"
)

// Version is injected at build time via ldflags.
var Version = "dev"

const usage = `cain-check - validation of blocks before and after rewriting

This tool reads a block as source text or as a JSON/YAML tree and checks it
for names reserved by the rewriter, unsupported patterns and malformed nodes.
With --rewritten it instead checks that the block has the shape of rewriter
output. If validation fails, it exits with a non-zero status; otherwise it
emits the tree unchanged to stdout.

Usage:
  cain-check [options]

Options:
`

const DEFAULT_FORMAT = "JSON"

func main() {
	var showHelp, showVersion, noSpans, rewritten bool
	var inputFile, outputFile, inputFormat, format string
	var trim int

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", usage)
		pflag.PrintDefaults()
	}

	pflag.BoolVarP(&showHelp, "help", "h", false, "Show help")
	pflag.BoolVar(&showVersion, "version", false, "Show version")
	pflag.StringVarP(&inputFile, "input", "i", "", "Input file (defaults to stdin)")
	pflag.StringVarP(&outputFile, "output", "o", "", "Output file (defaults to stdout)")
	pflag.StringVar(&inputFormat, "input-format", "", "Input format (SOURCE, JSON, YAML); defaults to the file extension")
	pflag.StringVarP(&format, "format", "f", DEFAULT_FORMAT, "Output format (SOURCE, JSON, YAML, ASCIITREE, DOT)")
	pflag.IntVar(&trim, "trim", 0, "Trim names for display purposes")
	pflag.BoolVar(&noSpans, "no-spans", false, "Suppress span information in output")
	pflag.BoolVar(&rewritten, "rewritten", false, "Check the block as rewriter output")

	pflag.Parse()

	if showHelp {
		pflag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("cain-check version %s\n", Version)
		os.Exit(0)
	}

	// Reject any positional arguments.
	if len(pflag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "Error: Unexpected positional arguments. Use --input and --output flags instead.\n\n")
		pflag.Usage()
		os.Exit(1)
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

	// Perform the check.
	c := checker.NewChecker()
	var ok bool
	if rewritten {
		ok = c.CheckOutput(block)
	} else {
		ok = c.CheckInput(block)
	}
	if !ok {
		c.ReportErrors(os.Stderr)
		os.Exit(1)
	}

	// Determine output destination.
	var output io.Writer = os.Stdout
	if outputFile != "" {
		file, err := os.Create(outputFile) // #nosec G304 - CLI tool writes to user-specified output files
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()
		output = file
	}

	// Output the result.
	err = driver.WriteOutput(output, in.Tree, &common.PrintOptions{
		Format:            format,
		Indent:            2,
		TrimTokenOnOutput: trim,
		IncludeSpans:      !noSpans,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
}
