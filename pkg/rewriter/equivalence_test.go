package rewriter_test

import (
	"errors"
	"testing"

	"github.com/frxstrem/cain/pkg/eval"
	"github.com/frxstrem/cain/pkg/rewriter"
	"github.com/frxstrem/cain/pkg/syntax"
)

// outcome is everything a run of a program can be observed by.
type outcome struct {
	value  eval.Value
	log    []eval.Value
	panic  string
	failed error
}

func runProgram(b *syntax.Block) outcome {
	var out outcome
	in := eval.NewInterpreter()
	in.Define("log", func(args []eval.Value) (eval.Value, error) {
		out.log = append(out.log, args...)
		if len(args) == 1 {
			return args[0], nil
		}
		return eval.Unit{}, nil
	})
	v, err := in.Run(b)
	var p *eval.Panic
	switch {
	case errors.As(err, &p):
		out.panic = p.Message
	case err != nil:
		out.failed = err
	}
	out.value = v
	return out
}

func sameOutcome(a, b outcome) bool {
	if a.failed != nil || b.failed != nil || a.panic != b.panic {
		return false
	}
	if a.panic == "" && !eval.Equal(a.value, b.value) {
		return false
	}
	return eval.Equal(eval.Vec(a.log), eval.Vec(b.log))
}

func describeOutcome(o outcome) string {
	switch {
	case o.failed != nil:
		return "error: " + o.failed.Error()
	case o.panic != "":
		return "panic: " + o.panic + " log=" + eval.Debug(eval.Vec(o.log))
	}
	return eval.Debug(o.value) + " log=" + eval.Debug(eval.Vec(o.log))
}

// checkEquivalent runs program after each setup, before and after
// rewriting, and requires identical outcomes.
func checkEquivalent(t *testing.T, name string, setups []string, program string) {
	t.Helper()
	if len(setups) == 0 {
		setups = []string{""}
	}
	for _, setup := range setups {
		src := setup + "\n" + program
		b := mustParse(t, src)
		out, err := rewriter.Rewrite(b)
		if err != nil {
			t.Errorf("%s: Rewrite failed: %v", name, err)
			continue
		}
		before, after := runProgram(b), runProgram(out)
		if before.failed != nil {
			t.Errorf("%s [%s]: original program failed: %v", name, setup, before.failed)
			continue
		}
		if !sameOutcome(before, after) {
			t.Errorf("%s [%s]:\n before %s\n after  %s\n output %s", name, setup,
				describeOutcome(before), describeOutcome(after), syntax.Format(out))
		}
	}
}

func TestRewritePreservesBehaviour(t *testing.T) {
	flags := []string{"let flag = true;", "let flag = false;"}
	numbers := []string{"let n = -3;", "let n = 0;", "let n = 1;", "let n = 2;", "let n = 4;", "let n = 12;"}
	options := []string{"let opt = Some(1);", "let opt = Some(5);", "let opt = None;"}
	cases := []struct {
		name    string
		setups  []string
		program string
	}{
		{
			"branch side effects",
			flags,
			"let a = 10 + if log(flag) { log(3) } else { log(4) } * 2; log(a)",
		},
		{
			"conditional in a test",
			flags,
			"let k = 1 + if (if flag { 1 } else { 0 }) == 1 { 10 } else { 20 }; k",
		},
		{
			"else-if chain",
			numbers,
			`let g = if n < 0 { "neg" } else if n == 0 { "zero" } else { "pos" }; format!("{}!", g)`,
		},
		{
			"sequenced bindings",
			numbers,
			`let a = match n { 0 => 1, _ => 2 }; log(a); let b = if a > 1 { "x" } else { "y" }; log(b); b`,
		},
		{
			"outer binds wider",
			[]string{"let p = 0; let q = 0;", "let p = 0; let q = 1;", "let p = 1; let q = 0;", "let p = 1; let q = 1;"},
			`let x = match p { 0 => "a", _ => "b" }; let y = match q { 0 => 1, _ => 2 }; format!("{}{}", x, y)`,
		},
		{
			"shadowed arm bindings",
			[]string{"let p = Some(1); let q = Some(2);", "let p = None; let q = Some(2);", "let p = Some(1); let q = None;"},
			"let a = match p { Some(r) => r, None => 0 }; let b = match q { Some(r) => r, None => 1 }; a * 10 + b",
		},
		{
			"mutable arm binding",
			options,
			"let b = 7; let mut total = 0; let _ = match opt { Some(mut b) => { b += 1; total += b; }, None => {} }; total += 100; (total, b)",
		},
		{
			"let chain",
			options,
			"let r = if let Some(v) = opt && v > 2 { v * 10 } else { 0 }; r + 1",
		},
		{
			"sub-patterns",
			numbers,
			"let d = match n { x @ (1 | 2) => x * 100, x @ 3..=5 => x, -3 => 33, _ => 0 }; d",
		},
		{
			"guard with conditional",
			flags,
			`let n = 3; let s = match n { k if k > if flag { 1 } else { 5 } => "big", _ => "small" }; s`,
		},
		{
			"loop body",
			nil,
			"let mut i = 0; let mut acc = 0; while i < 4 { acc += if i % 2 == 0 { log(i) } else { 0 }; i += 1; } acc",
		},
		{
			"closure body",
			nil,
			"let f = |x| 1 + match x { 0 => 10, _ => 20 }; f(0) + f(5)",
		},
		{
			"declarations",
			flags,
			"let y = if flag { 2 } else { 3 }; fn twice(v: i32) -> i32 { v * 2 } twice(y)",
		},
		{
			"early return",
			options,
			"let x = match opt { Some(v) => v, None => return -1 }; x * 2",
		},
		{
			"break value",
			nil,
			`let mut i = 0; let r = loop { i += 1; if i > 3 { break match i { 4 => "four", _ => "other" }; } }; r`,
		},
		{
			"panic in a branch",
			flags,
			`let v = if flag { log(1) } else { panic!("no flag") }; log(v + 1)`,
		},
		{
			"tuple scrutinee",
			[]string{"let t = (1, 2);", "let t = (3, 2);"},
			"let m = match t { (a, b) if a > b => a - b, (a, _) => a }; m * 3",
		},
		{
			"missing else",
			flags,
			"let mut c = 0; let u = if flag { c += 1; }; log(c); u",
		},
	}
	for _, c := range cases {
		checkEquivalent(t, c.name, c.setups, c.program)
	}
}

func TestRewriteDivergentBranches(t *testing.T) {
	src := `[0, 1, 2].into_iter().map(|i| match i { 0 => true, 1 => 1, _ => "abc" }.to_string()).collect::<Vec<_>>()`
	out, err := rewriter.Rewrite(mustParse(t, src))
	if err != nil {
		t.Fatal(err)
	}
	want := "{ [0, 1, 2].into_iter().map(|i| match i { 0 => true.to_string(), 1 => 1.to_string(), _ => \"abc\".to_string() }).collect::<Vec<_>>() }"
	if got := syntax.Format(out); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
	v, err := eval.NewInterpreter().Run(out)
	if err != nil {
		t.Fatal(err)
	}
	expected := eval.Vec{eval.Str("true"), eval.Str("1"), eval.Str("abc")}
	if !eval.Equal(v, expected) {
		t.Errorf("got %s, want %s", eval.Debug(v), eval.Debug(expected))
	}
}

func TestRewriteLeafPaths(t *testing.T) {
	// Bindings read later are in scope on every path: one leaf per
	// combination of arms, each running the whole continuation.
	src := `
		let x = match p { 0 => "a", 1 => "b", _ => "c" };
		let y = match q { 0 => 1, _ => 2 };
		log(x); log(y)
	`
	out, err := rewriter.Rewrite(mustParse(t, src))
	if err != nil {
		t.Fatal(err)
	}
	leaves := 0
	syntax.Inspect(out, func(n syntax.Node) bool {
		if call, ok := n.(*syntax.Call); ok && syntax.FormatExpr(call) == "log(y)" {
			leaves++
		}
		return true
	})
	if leaves != 6 {
		t.Errorf("found %d copies of the continuation, want 6:\n%s", leaves, syntax.Format(out))
	}
}

// A conditional in a match scrutinee is hoisted around the whole statement,
// so the scrutinee runs before operands to its left. The value is unchanged.
func TestRewriteRunsTestsBeforeLeftOperands(t *testing.T) {
	b := mustParse(t, "let c = false; log(1) + match log(if c { 1 } else { 2 }) { 1 => log(3), _ => log(4) }")
	out, err := rewriter.Rewrite(b)
	if err != nil {
		t.Fatal(err)
	}
	before, after := runProgram(b), runProgram(out)
	if before.failed != nil || after.failed != nil {
		t.Fatalf("run failed: before %s, after %s", describeOutcome(before), describeOutcome(after))
	}
	if !eval.Equal(before.value, after.value) || eval.Debug(after.value) != "5" {
		t.Errorf("value changed: before %s, after %s", describeOutcome(before), describeOutcome(after))
	}
	if got := eval.Debug(eval.Vec(before.log)); got != "[1, 2, 4]" {
		t.Errorf("log before rewriting = %s, want [1, 2, 4]", got)
	}
	if got := eval.Debug(eval.Vec(after.log)); got != "[2, 1, 4]" {
		t.Errorf("log after rewriting = %s, want [2, 1, 4]", got)
	}
}
