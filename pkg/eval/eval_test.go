package eval_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/frxstrem/cain/pkg/eval"
	"github.com/frxstrem/cain/pkg/parser"
	"github.com/frxstrem/cain/pkg/syntax"
)

func run(t *testing.T, src string) (eval.Value, error) {
	t.Helper()
	b, err := parser.ParseBlock(src)
	if err != nil {
		t.Fatalf("ParseBlock(%q) failed: %v", src, err)
	}
	return eval.NewInterpreter().Run(b)
}

func TestRunValues(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "7"},
		{"let x = 5; let y = x * 2; y - 1", "9"},
		{"let x = 1; let f = || x; let x = 2; f() + x", "3"},
		{"if 1 < 2 { \"yes\" } else { \"no\" }", "yes"},
		{"match 7 { 0 => \"zero\", 1..=9 => \"digit\", _ => \"big\" }", "digit"},
		{"match Some(3) { Some(n) if n > 5 => n, Some(n) => n * 10, None => 0 }", "30"},
		{"let v = vec![1, 2, 3]; v.iter().map(|x| x * x).sum::<i32>()", "14"},
		{"let mut n = 0; for i in 0..5 { if i % 2 == 0 { continue; } n += i; } n", "4"},
		{"let mut i = 0; let r = loop { i += 1; if i == 3 { break i * 100; } }; r", "300"},
		{"let mut i = 0; while i < 10 { i += 3; } i", "12"},
		{"fn square(x: i32) -> i32 { x * x } square(4)", "16"},
		{"fn early(x: i32) -> i32 { if x > 0 { return 1; } 2 } early(5) + early(-5)", "3"},
		{"let t = (1, \"a\", 'c'); format!(\"{}-{}-{}\", t.0, t.1, t.2)", "1-a-c"},
		{"let name = \"x\"; format!(\"{name}={:?}\", \"y\")", "x=\"y\""},
		{"let mut a = Some(1); if let Some(x) = a.as_mut() { *x += 41; } a.unwrap()", "42"},
		{"let mut v = Vec::new(); v.push(1); v.push(2); v.pop(); v.len()", "1"},
		{"let (a, .., b) = (1, 2, 3, 4); a + b", "5"},
		{"matches!(Some(4), Some(1..=5))", "true"},
		{"(true ^ false, true ^ true, false | true, true & false)", "(true, false, true, false)"},
		{"if let Some(x) = Some(2) && x > 1 { \"chain\" } else { \"no\" }", "chain"},
		{"let x = 2.5; x * 2 as f64", "5"},
		{"[3, 1, 2].iter().max().unwrap()", "3"},
		{"'outer: for i in 0..3 { for j in 0..3 { if j == 1 { continue 'outer; } if i == 2 { break 'outer; } } } 9", "9"},
	}
	for _, c := range cases {
		v, err := run(t, c.input)
		if err != nil {
			t.Errorf("Run(%q) failed: %v", c.input, err)
			continue
		}
		if got := v.String(); got != c.expected {
			t.Errorf("Run(%q) = %s, want %s", c.input, got, c.expected)
		}
	}
}

func TestRunDivergentBranches(t *testing.T) {
	v, err := run(t, `[0, 1, 2].into_iter().map(|i| match i { 0 => true, 1 => 1, _ => "abc" }.to_string()).collect::<Vec<_>>()`)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	want := eval.Vec{eval.Str("true"), eval.Str("1"), eval.Str("abc")}
	if !eval.Equal(v, want) {
		t.Errorf("got %s, want %s", eval.Debug(v), eval.Debug(want))
	}
}

func TestHostFunctions(t *testing.T) {
	b, err := parser.ParseBlock(`log(1); log("two"); println!("done {}", 3);`)
	if err != nil {
		t.Fatal(err)
	}
	var logged []eval.Value
	var out bytes.Buffer
	in := eval.NewInterpreter()
	in.Out = &out
	in.Define("log", func(args []eval.Value) (eval.Value, error) {
		logged = append(logged, args...)
		return eval.Unit{}, nil
	})
	if _, err := in.Run(b); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !eval.Equal(eval.Vec(logged), eval.Vec{eval.Int(1), eval.Str("two")}) {
		t.Errorf("logged %s", eval.Debug(eval.Vec(logged)))
	}
	if out.String() != "done 3\n" {
		t.Errorf("printed %q", out.String())
	}
}

func TestPanics(t *testing.T) {
	cases := []struct {
		input   string
		message string
	}{
		{`panic!("boom {}", 1)`, "boom 1"},
		{"let x: Option<i32> = None; x.unwrap()", "called `Option::unwrap()` on a `None` value"},
		{"1 / 0", "attempt to divide by zero"},
		{"let v = vec![1]; v[3]", "index out of bounds: the len is 1 but the index is 3"},
		{"unreachable!()", "internal error: entered unreachable code"},
	}
	for _, c := range cases {
		_, err := run(t, c.input)
		var p *eval.Panic
		if !errors.As(err, &p) {
			t.Errorf("Run(%q): expected a panic, got %v", c.input, err)
			continue
		}
		if p.Message != c.message {
			t.Errorf("Run(%q) panicked with %q, want %q", c.input, p.Message, c.message)
		}
	}
}

func TestErrors(t *testing.T) {
	cases := []string{
		"undefined_name + 1",
		"match 3 { 1 => 2 }",
		"let x; x + 1",
		"1 + \"a\"",
	}
	for _, input := range cases {
		_, err := run(t, input)
		var e *eval.Error
		if !errors.As(err, &e) {
			t.Errorf("Run(%q): expected an evaluation error, got %v", input, err)
		}
	}
}

func TestStepLimit(t *testing.T) {
	b, err := parser.ParseBlock("loop {}")
	if err != nil {
		t.Fatal(err)
	}
	in := eval.NewInterpreter()
	in.MaxSteps = 1000
	if _, err := in.Run(b); err == nil {
		t.Fatal("expected the step limit to stop an endless loop")
	}
}

func TestObserve(t *testing.T) {
	parse := func(src string) *syntax.Block {
		b, err := parser.ParseBlock(src)
		if err != nil {
			t.Fatalf("ParseBlock(%q) failed: %v", src, err)
		}
		return b
	}
	a := eval.Observe(parse(`println!("hi"); 1 + 2`), 0)
	if a.Err != nil || a.Output != "hi\n" || !eval.Equal(a.Value, eval.Int(3)) {
		t.Fatalf("unexpected outcome %s", a)
	}
	if b := eval.Observe(parse(`println!("hi"); 3`), 0); !a.Same(b) {
		t.Errorf("%s and %s differ", a, b)
	}
	if b := eval.Observe(parse(`println!("ho"); 3`), 0); a.Same(b) {
		t.Errorf("%s and %s are the same", a, b)
	}
	p := eval.Observe(parse(`panic!("boom")`), 0)
	if p.Panic != "boom" || !p.Same(eval.Observe(parse(`let x = 1; panic!("boom")`), 0)) {
		t.Errorf("unexpected panic outcome %s", p)
	}
	e := eval.Observe(parse("loop {}"), 100)
	if e.Err == nil || e.Same(e) {
		t.Errorf("expected a failed run, got %s", e)
	}
}
