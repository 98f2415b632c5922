package main

import (
	"fmt"
	"io"
	"os"

	pflag "github.com/spf13/pflag"

	"github.com/frxstrem/cain/pkg/driver"
	"github.com/frxstrem/cain/pkg/rewriter"
)

// Version is injected at build time via ldflags.
var Version = "dev"

const usage = `cain-rewrite - hoists if and match expressions out of expression positions

This tool reads a block as source text or as a JSON/YAML tree, moves every
conditional nested inside an expression outward until it is the outermost
control structure of its scope, and writes the rewritten block.

Usage:
  cain-rewrite [options]

Options:
`

func main() {
	var showHelp, showVersion, noSpans, debug, fixedPoint, noTidy bool
	var inputFile, outputFile, inputFormat, format, configFile string
	var indent, trim int

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", usage)
		pflag.PrintDefaults()
	}

	pflag.BoolVarP(&showHelp, "help", "h", false, "Show help")
	pflag.BoolVar(&showVersion, "version", false, "Show version")
	pflag.StringVarP(&inputFile, "input", "i", "", "Input file (defaults to stdin)")
	pflag.StringVarP(&outputFile, "output", "o", "", "Output file (defaults to stdout)")
	pflag.StringVar(&inputFormat, "input-format", "", "Input format (SOURCE, JSON, YAML); defaults to the file extension")
	pflag.StringVarP(&format, "format", "f", "", "Output format (SOURCE, JSON, YAML, ASCIITREE, DOT); defaults to the configuration")
	pflag.StringVar(&configFile, "config", "", "YAML configuration file")
	pflag.IntVar(&indent, "indent", -1, "Indentation for tree formats")
	pflag.IntVar(&trim, "trim", 0, "Trim names for display purposes")
	pflag.BoolVar(&noSpans, "no-spans", false, "Suppress span information in output")
	pflag.BoolVar(&debug, "debug", false, "Trace every hoisted conditional to stderr")
	pflag.BoolVar(&fixedPoint, "fixed-point", false, "Fail unless rewriting the output changes nothing")
	pflag.BoolVar(&noTidy, "no-tidy", false, "Skip the tidy tree rules")

	pflag.Parse()

	if showHelp {
		pflag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("cain-rewrite version %s (rewriter %s)\n", Version, rewriter.Version)
		os.Exit(0)
	}

	// Reject any positional arguments.
	if len(pflag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "Error: Unexpected positional arguments. Use --input and --output flags instead.\n\n")
		pflag.Usage()
		os.Exit(1)
	}

	config := rewriter.MustDefaultConfig()
	if configFile != "" {
		var err error
		config, err = rewriter.LoadConfig(configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration file: %v\n", err)
			os.Exit(1)
		}
	}
	if fixedPoint {
		config.FixedPoint = true
	}
	if noTidy {
		config.Tidy = false
	}
	if format != "" {
		config.Print.Format = format
	}
	if indent >= 0 {
		config.Print.Indent = indent
	}
	config.Print.TrimTokenOnOutput = trim
	config.Print.IncludeSpans = !noSpans

	c, err := driver.NewCompiler(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating rewriter: %v\n", err)
		os.Exit(1)
	}
	if debug {
		c.Trace = os.Stderr
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
	if in.Path == "" {
		in.Path = "<stdin>"
	}

	result, err := c.Compile(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
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

	if err := c.WriteResult(output, result); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
}
