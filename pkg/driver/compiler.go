package driver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/frxstrem/cain/pkg/bundler"
	"github.com/frxstrem/cain/pkg/checker"
	"github.com/frxstrem/cain/pkg/rewriter"
	"github.com/frxstrem/cain/pkg/syntax"
)

// CheckError carries the findings of a failed input or output check.
type CheckError struct {
	Path    string
	Checker *checker.Checker
}

func (e *CheckError) Error() string {
	var buf bytes.Buffer
	e.Checker.ReportErrors(&buf)
	return fmt.Sprintf("%s: check failed\n%s", e.Path, strings.TrimRight(buf.String(), "\n"))
}

// Result is the outcome of compiling one file.
type Result struct {
	Path   string
	Source string
	Input  *syntax.Block
	Output *syntax.Block
	Stats  rewriter.Stats
	// Written is the output file, when an output directory was given.
	Written string
}

// Compiler runs check, rewrite, verify and bundle over input files. Each
// file gets its own rewrite session, so files are compiled concurrently.
type Compiler struct {
	Config   *rewriter.Config
	rewriter *rewriter.Rewriter
	// InputFormat overrides the format implied by file extensions.
	InputFormat string
	// OutputDir receives one output file per input when set.
	OutputDir string
	// Bundle records every compiled unit when set.
	Bundle *bundler.Bundler
	// Trace receives the hoisting trace of every file, one file at a time.
	Trace io.Writer
	// Jobs limits the number of files compiled at once; 0 means no limit.
	Jobs int

	traceMu sync.Mutex
}

// NewCompiler builds a compiler for config. A nil config means
// rewriter.DefaultConfig.
func NewCompiler(config *rewriter.Config) (*Compiler, error) {
	if config == nil {
		config = rewriter.MustDefaultConfig()
	}
	r, err := rewriter.NewRewriter(config)
	if err != nil {
		return nil, err
	}
	return &Compiler{Config: config, rewriter: r}, nil
}

// CompileFile compiles a single file.
func (c *Compiler) CompileFile(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	input, err := ReadFile(path, c.InputFormat)
	if err != nil {
		return nil, err
	}
	return c.Compile(input)
}

// Compile runs the pipeline on a decoded input.
func (c *Compiler) Compile(input *Input) (*Result, error) {
	var trace bytes.Buffer
	r := *c.rewriter
	if c.Trace != nil {
		r.Trace = &trace
	}
	defer c.flushTrace(input.Path, &trace)

	block, stats, err := r.Prepare(input.Tree)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", input.Path, err)
	}
	ch := checker.NewChecker()
	if !ch.CheckInput(block) {
		return nil, &CheckError{Path: input.Path, Checker: ch}
	}

	output, rewriteStats, err := r.Rewrite(block)
	stats.Add(rewriteStats)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", input.Path, err)
	}
	if c.Config.Verify {
		ch := checker.NewChecker()
		if !ch.CheckOutput(output) {
			return nil, &CheckError{Path: input.Path, Checker: ch}
		}
	}

	result := &Result{
		Path:   input.Path,
		Source: input.Source,
		Input:  block,
		Output: output,
		Stats:  stats,
	}
	if c.OutputDir != "" {
		if result.Written, err = c.writeFile(result); err != nil {
			return nil, err
		}
	}
	if c.Bundle != nil {
		if err := c.Bundle.AddUnit(input.Path, input.Source, block, output, stats); err != nil {
			return nil, fmt.Errorf("%s: %w", input.Path, err)
		}
	}
	return result, nil
}

// CompileAll compiles paths concurrently. Results are in the order of paths.
// The first failure cancels the files not yet started.
func (c *Compiler) CompileAll(ctx context.Context, paths []string) ([]*Result, error) {
	results := make([]*Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	if c.Jobs > 0 {
		g.SetLimit(c.Jobs)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			result, err := c.CompileFile(gctx, path)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// WriteResult prints the output block of result.
func (c *Compiler) WriteResult(w io.Writer, result *Result) error {
	return WriteOutput(w, syntax.ToNode(result.Output), &c.Config.Print)
}

func (c *Compiler) writeFile(result *Result) (string, error) {
	base := strings.TrimSuffix(filepath.Base(result.Path), filepath.Ext(result.Path))
	name := filepath.Join(c.OutputDir, base+OutputExt(c.Config.Print.Format))
	var buf bytes.Buffer
	if err := c.WriteResult(&buf, result); err != nil {
		return "", err
	}
	if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil { // #nosec G306 - output files are meant to be readable
		return "", err
	}
	return name, nil
}

func (c *Compiler) flushTrace(path string, trace *bytes.Buffer) {
	if c.Trace == nil || trace.Len() == 0 {
		return
	}
	c.traceMu.Lock()
	defer c.traceMu.Unlock()
	for _, line := range strings.SplitAfter(trace.String(), "\n") {
		if line != "" {
			fmt.Fprintf(c.Trace, "%s:%s", path, line)
		}
	}
}

// OpenBundle opens the bundle at path. A new file is migrated; an existing
// one must be up to date unless migrate is set.
func OpenBundle(path string, migrate bool) (*bundler.Bundler, error) {
	_, err := os.Stat(path)
	fileExists := err == nil

	b, err := bundler.NewBundler(path)
	if err != nil {
		return nil, err
	}
	upToDate, err := b.CheckMigration()
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to check migration status: %w", err)
	}
	if !upToDate {
		if fileExists && !migrate {
			b.Close()
			return nil, fmt.Errorf("bundle schema of %s is not up to date; use --migrate to update", path)
		}
		if err := b.Migrate(); err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to migrate bundle: %w", err)
		}
	}
	return b, nil
}
