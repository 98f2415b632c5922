package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	pflag "github.com/spf13/pflag"

	"github.com/frxstrem/cain/pkg/driver"
	"github.com/frxstrem/cain/pkg/rewriter"
)

// Version is injected at build time via ldflags.
var Version = "dev"

const usage = `cain-compiler - integrated cain pipeline

This command pipes together parsing, input checking, hoisting, output
verification and bundling in memory. Every input file is rewritten in its own
session; files are processed concurrently.

Usage:
  cain-compiler [options] --input FILE [--input FILE ...]

Options:
`

func main() {
	var showHelp, showVersion, debug, fixedPoint, noVerify, migrate, watch, stats bool
	var inputFiles []string
	var outputDir, bundleFile, configFile, inputFormat, format string
	var jobs int

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", usage)
		pflag.PrintDefaults()
	}

	pflag.BoolVarP(&showHelp, "help", "h", false, "Show help")
	pflag.BoolVar(&showVersion, "version", false, "Show version")
	pflag.BoolVar(&debug, "debug", false, "Enable debug output to stderr")
	pflag.StringArrayVarP(&inputFiles, "input", "i", nil, "Input file (repeatable, required)")
	pflag.StringVarP(&outputDir, "output-dir", "o", "", "Directory for rewritten files (defaults to stdout)")
	pflag.StringVar(&bundleFile, "bundle", "", "SQLite bundle recording every unit (optional)")
	pflag.BoolVar(&migrate, "migrate", false, "Migrate an existing bundle whose schema is out of date")
	pflag.StringVar(&configFile, "config", "", "YAML configuration file (optional)")
	pflag.StringVar(&inputFormat, "input-format", "", "Input format (SOURCE, JSON, YAML); defaults to the file extension")
	pflag.StringVarP(&format, "format", "f", "", "Output format; defaults to the configuration")
	pflag.BoolVar(&fixedPoint, "fixed-point", false, "Fail unless rewriting the output changes nothing")
	pflag.BoolVar(&noVerify, "no-verify", false, "Skip the output check")
	pflag.IntVarP(&jobs, "jobs", "j", 0, "Maximum number of files processed at once (0 means no limit)")
	pflag.BoolVarP(&watch, "watch", "w", false, "Recompile inputs whenever they change")
	pflag.BoolVar(&stats, "stats", false, "Print rewrite statistics to stderr")

	pflag.Parse()

	if showHelp {
		pflag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("cain-compiler version %s (rewriter %s)\n", Version, rewriter.Version)
		os.Exit(0)
	}

	// Input files are mandatory.
	if len(inputFiles) == 0 {
		fmt.Fprintf(os.Stderr, "Error: --input flag is required\n")
		pflag.Usage()
		os.Exit(1)
	}

	// Reject any positional arguments.
	if len(pflag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "Error: Unexpected positional arguments. Use --input flag instead.\n\n")
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
	if noVerify {
		config.Verify = false
	}
	if format != "" {
		config.Print.Format = format
	}
	if bundleFile == "" {
		bundleFile = config.Bundle
	}

	c, err := driver.NewCompiler(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating rewriter: %v\n", err)
		os.Exit(1)
	}
	c.InputFormat = inputFormat
	c.OutputDir = outputDir
	c.Jobs = jobs
	if debug {
		c.Trace = os.Stderr
	}

	if bundleFile != "" {
		b, err := driver.OpenBundle(bundleFile, migrate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer b.Close()
		c.Bundle = b
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report := func(result *driver.Result, err error) bool {
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return false
		}
		if stats {
			s := result.Stats
			fmt.Fprintf(os.Stderr, "%s: %d conditionals, %d hoisted, %d captures, %d scopes, %d tidied\n",
				result.Path, s.Conditionals, s.Hoisted, s.Captures, s.Scopes, s.Tidied)
		}
		if result.Written != "" {
			if debug {
				fmt.Fprintf(os.Stderr, "Wrote %s\n", result.Written)
			}
			return true
		}
		if err := c.WriteResult(os.Stdout, result); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			return false
		}
		return true
	}

	results, err := c.CompileAll(ctx, inputFiles)
	failed := err != nil
	if failed {
		report(nil, err)
	} else {
		for _, result := range results {
			if !report(result, nil) {
				failed = true
			}
		}
	}

	if watch {
		if debug {
			fmt.Fprintf(os.Stderr, "Watching %d file(s) for changes.\n", len(inputFiles))
		}
		err := c.Watch(ctx, inputFiles, func(result *driver.Result, err error) {
			report(result, err)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error watching inputs: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if failed {
		os.Exit(1)
	}
	if debug {
		fmt.Fprintf(os.Stderr, "Compilation completed successfully.\n")
	}
}
