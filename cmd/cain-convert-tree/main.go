package main

import (
	"fmt"
	"os"

	pflag "github.com/spf13/pflag"

	"github.com/frxstrem/cain/pkg/common"
	"github.com/frxstrem/cain/pkg/driver"
)

// Version is injected at build time via ldflags.
var Version = "dev"

const DEFAULT_FORMAT = "ASCIITREE"

func main() {
	// Define command line flags.
	var format = pflag.StringP("format", "f", DEFAULT_FORMAT, "Output format (SOURCE, JSON, YAML, ASCIITREE, DOT)")
	var inputFormat = pflag.String("input-format", driver.FormatJSON, "Input format (SOURCE, JSON, YAML)")
	var indent = pflag.Int("indent", 2, "Indentation level for display purposes")
	var trim = pflag.Int("trim", 0, "Trim names for display purposes")
	var noSpans = pflag.Bool("no-spans", false, "Suppress span information in output")
	var version = pflag.Bool("version", false, "Print version and exit")
	var help = pflag.BoolP("help", "h", false, "Print help message and exit")

	// Custom usage message.
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nConverts a block between source text and the tree formats.\n")
		fmt.Fprintf(os.Stderr, "Reads from stdin and writes the converted block to stdout.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	// Handle version flag.
	if *version {
		fmt.Printf("cain-convert-tree version %s\n", Version)
		os.Exit(0)
	}

	// Handle help flag.
	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	in, err := driver.ReadInput(os.Stdin, "", *inputFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}

	// Print the tree in the selected format.
	err = driver.WriteOutput(os.Stdout, in.Tree, &common.PrintOptions{
		Format:            *format,
		Indent:            *indent,
		TrimTokenOnOutput: *trim,
		IncludeSpans:      !*noSpans,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
}
