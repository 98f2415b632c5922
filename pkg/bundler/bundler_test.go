package bundler

import (
	"path/filepath"
	"testing"

	"github.com/frxstrem/cain/pkg/parser"
	"github.com/frxstrem/cain/pkg/rewriter"
	"github.com/frxstrem/cain/pkg/syntax"
)

func openBundle(t *testing.T) *Bundler {
	t.Helper()
	b, err := NewBundler(filepath.Join(t.TempDir(), "bundle.db"))
	if err != nil {
		t.Fatalf("NewBundler failed: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestMigration(t *testing.T) {
	b := openBundle(t)
	ok, err := b.CheckMigration()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("fresh bundle reported as migrated")
	}
	if err := b.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if ok, err := b.CheckMigration(); err != nil || !ok {
		t.Errorf("CheckMigration after Migrate = %v, %v", ok, err)
	}
	// Migrating twice is harmless.
	if err := b.Migrate(); err != nil {
		t.Errorf("second Migrate failed: %v", err)
	}
}

func TestAddUnit(t *testing.T) {
	b := openBundle(t)
	if err := b.Migrate(); err != nil {
		t.Fatal(err)
	}
	source := "let z = match x { 1 => 123, _ => 0 }; fn square(v: i32) -> i32 { v * v } square(z)"
	input, err := parser.ParseBlock(source)
	if err != nil {
		t.Fatal(err)
	}
	r := &rewriter.Rewriter{}
	output, stats, err := r.Rewrite(input)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AddUnit("square.rs", source, input, output, stats); err != nil {
		t.Fatalf("AddUnit failed: %v", err)
	}

	unit, err := b.Unit("square.rs")
	if err != nil {
		t.Fatal(err)
	}
	if unit.Stats() != stats {
		t.Errorf("stats = %+v, want %+v", unit.Stats(), stats)
	}
	tree, err := unit.OutputTree()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := syntax.Format(tree), syntax.Format(output); got != want {
		t.Errorf("stored output = %s, want %s", got, want)
	}
	tree, err = unit.InputTree()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := syntax.Format(tree), syntax.Format(input); got != want {
		t.Errorf("stored input = %s, want %s", got, want)
	}
	if text, err := b.Source("square.rs"); err != nil || text != source {
		t.Errorf("Source = %q, %v", text, err)
	}

	declarations, err := b.Declarations("square.rs")
	if err != nil {
		t.Fatal(err)
	}
	if len(declarations) != 1 || declarations[0].Name != "square" || declarations[0].Keyword != "fn" {
		t.Errorf("declarations = %+v", declarations)
	}
	references, err := b.References("square.rs")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"square", "v", "x", "z"}
	if len(references) != len(want) {
		t.Fatalf("references = %v, want %v", references, want)
	}
	for i := range want {
		if references[i] != want[i] {
			t.Errorf("references = %v, want %v", references, want)
			break
		}
	}
}

func TestAddUnitReplaces(t *testing.T) {
	b := openBundle(t)
	if err := b.Migrate(); err != nil {
		t.Fatal(err)
	}
	for _, source := range []string{"fn a() {} a()", "fn b() {} b()"} {
		block, err := parser.ParseBlock(source)
		if err != nil {
			t.Fatal(err)
		}
		if err := b.AddUnit("main.rs", source, block, block, rewriter.Stats{}); err != nil {
			t.Fatal(err)
		}
	}
	declarations, err := b.Declarations("main.rs")
	if err != nil {
		t.Fatal(err)
	}
	if len(declarations) != 1 || declarations[0].Name != "b" {
		t.Errorf("declarations = %+v", declarations)
	}
	references, err := b.References("main.rs")
	if err != nil {
		t.Fatal(err)
	}
	if len(references) != 1 || references[0] != "b" {
		t.Errorf("references = %v", references)
	}
	units, err := b.Units()
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 1 || units[0].FileName != "main.rs" {
		t.Errorf("units = %+v", units)
	}
}

func TestUnitMissing(t *testing.T) {
	b := openBundle(t)
	if err := b.Migrate(); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Unit("nowhere.rs"); err == nil {
		t.Error("expected an error for a missing unit")
	}
}
