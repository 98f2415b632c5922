package main

import (
	"fmt"
	"os"

	pflag "github.com/spf13/pflag"

	"github.com/frxstrem/cain/pkg/common"
	"github.com/frxstrem/cain/pkg/driver"
	"github.com/frxstrem/cain/pkg/syntax"
)

// Version is injected at build time via ldflags.
var Version = "dev"

const usage = `cain-bundler - inspects and migrates a cain SQLite bundle

Without --show the tool lists every unit in the bundle with its rewrite
statistics. With --show it prints the stored output of one unit.

Usage:
  cain-bundler [options] --bundle FILE

Options:
`

func main() {
	var showHelp, showVersion, migrate, input bool
	var bundleFile, show, format string

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", usage)
		pflag.PrintDefaults()
	}

	pflag.BoolVarP(&showHelp, "help", "h", false, "Show help")
	pflag.BoolVar(&showVersion, "version", false, "Show version")
	pflag.BoolVar(&migrate, "migrate", false, "Perform database migration")
	pflag.StringVar(&bundleFile, "bundle", "", "Bundle file path (required)")
	pflag.StringVar(&show, "show", "", "Print the unit stored for this source path")
	pflag.BoolVar(&input, "show-input", false, "With --show, print the stored input instead of the output")
	pflag.StringVarP(&format, "format", "f", driver.FormatSource, "Output format for --show")

	pflag.Parse()

	if showHelp {
		pflag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("cain-bundler version %s\n", Version)
		os.Exit(0)
	}

	// Bundle file is mandatory.
	if bundleFile == "" {
		fmt.Fprintf(os.Stderr, "Error: --bundle flag is required\n")
		pflag.Usage()
		os.Exit(1)
	}

	b, err := driver.OpenBundle(bundleFile, migrate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer b.Close()

	if show == "" {
		units, err := b.Units()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to list units: %v\n", err)
			os.Exit(1)
		}
		for _, unit := range units {
			fmt.Printf("%s\t%d conditionals\t%d hoisted\t%d captures\t%d scopes\n",
				unit.FileName, unit.Conditionals, unit.Hoisted, unit.Captures, unit.Scopes)
		}
		return
	}

	unit, err := b.Unit(show)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	var block *syntax.Block
	if input {
		block, err = unit.InputTree()
	} else {
		block, err = unit.OutputTree()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to decode unit: %v\n", err)
		os.Exit(1)
	}
	err = driver.WriteOutput(os.Stdout, syntax.ToNode(block), &common.PrintOptions{
		Format:       format,
		Indent:       2,
		IncludeSpans: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
}
