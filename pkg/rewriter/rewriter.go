// Package rewriter hoists conditional and match expressions out of
// expression positions.
//
// Every if and match found inside a larger expression is moved outward until
// it is the outermost control structure of its scope, and the surrounding
// computation is copied into each branch. Branches may then produce values of
// unrelated types as long as each copy of the continuation is well formed.
// Loop bodies, closures and blocks are scopes of their own: conditionals are
// hoisted inside them, never out of them.
package rewriter

import (
	"fmt"
	"io"

	"github.com/frxstrem/cain/pkg/common"
	"github.com/frxstrem/cain/pkg/syntax"
	"github.com/frxstrem/cain/pkg/treerules"
)

// Rewriter runs rewrites according to a Config. The zero value rewrites
// without tree rules or fixed-point check.
type Rewriter struct {
	Config *Config
	// Trace receives one line per hoisted conditional when set.
	Trace io.Writer
	rules []*treerules.Engine
}

// NewRewriter checks the version constraint of the configuration and
// compiles its tree rules.
func NewRewriter(config *Config) (*Rewriter, error) {
	if err := config.CheckVersion(Version); err != nil {
		return nil, err
	}
	r := &Rewriter{Config: config}
	if config.Tidy {
		engine, err := treerules.NewDefaultEngine()
		if err != nil {
			return nil, fmt.Errorf("default tree rules: %w", err)
		}
		r.rules = append(r.rules, engine)
	}
	if config.Rules != nil {
		engine, err := treerules.NewEngine(config.Rules)
		if err != nil {
			return nil, fmt.Errorf("tree rules %q: %w", config.Rules.Name, err)
		}
		r.rules = append(r.rules, engine)
	}
	return r, nil
}

// Rewrite rewrites b with a fresh session. b itself is left unchanged.
func Rewrite(b *syntax.Block) (*syntax.Block, error) {
	out, _, err := (&Rewriter{}).Rewrite(b)
	return out, err
}

// Rewrite rewrites b with a fresh session and reports what it did. b itself
// is left unchanged.
func (r *Rewriter) Rewrite(b *syntax.Block) (*syntax.Block, Stats, error) {
	out, stats, err := r.rewriteOnce(b)
	if err != nil {
		return nil, stats, err
	}
	if r.Config != nil && r.Config.FixedPoint {
		again, _, err := r.rewriteOnce(out)
		if err != nil {
			return nil, stats, fmt.Errorf("rewriting the output again: %w", err)
		}
		if got, want := syntax.Format(again), syntax.Format(out); got != want {
			return nil, stats, errorf(InternalInvariant, b.Span, "output is not a fixed point:\n%s\n%s", want, got)
		}
	}
	return out, stats, nil
}

func (r *Rewriter) rewriteOnce(b *syntax.Block) (*syntax.Block, Stats, error) {
	s := NewSession()
	s.trace = r.Trace
	if err := s.reserve(b); err != nil {
		return nil, s.stats, err
	}
	out := syntax.CloneBlock(b)
	if err := s.sequenceBlock(out); err != nil {
		return nil, s.stats, err
	}
	if err := checkNoPlaceholders(out); err != nil {
		return nil, s.stats, err
	}
	return out, s.stats, nil
}

func checkNoPlaceholders(b *syntax.Block) error {
	var err error
	syntax.Inspect(b, func(n syntax.Node) bool {
		if ident, ok := n.(*syntax.Ident); ok && err == nil {
			if _, ok := syntax.ParsePlaceholder(ident.Name); ok {
				err = errorf(InternalInvariant, ident.Span, "placeholder %s survived the rewrite", ident.Name)
			}
		}
		return err == nil
	})
	return err
}

// Prepare applies the tree rules to a wire tree and decodes it.
func (r *Rewriter) Prepare(node *common.Node) (*syntax.Block, Stats, error) {
	var stats Stats
	for _, engine := range r.rules {
		var count int
		var err error
		node, count, err = engine.Apply(node)
		if err != nil {
			return nil, stats, fmt.Errorf("tree rules %q: %w", engine.Name, err)
		}
		stats.Tidied += count
	}
	b, err := syntax.FromNode(node)
	return b, stats, err
}

// RewriteNode prepares a wire tree, rewrites it and encodes the result.
func (r *Rewriter) RewriteNode(node *common.Node) (*common.Node, Stats, error) {
	b, stats, err := r.Prepare(node)
	if err != nil {
		return nil, stats, err
	}
	out, rewriteStats, err := r.Rewrite(b)
	stats.Add(rewriteStats)
	if err != nil {
		return nil, stats, err
	}
	return syntax.ToNode(out), stats, nil
}
