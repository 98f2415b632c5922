package treerules

import (
	"errors"
	"testing"

	"github.com/frxstrem/cain/pkg/common"
	"github.com/frxstrem/cain/pkg/parser"
	"github.com/frxstrem/cain/pkg/syntax"
)

func tidy(t *testing.T, engine *Engine, source string) (string, int) {
	t.Helper()
	b, err := parser.ParseBlock(source)
	if err != nil {
		t.Fatalf("ParseBlock(%q) failed: %v", source, err)
	}
	node, count, err := engine.Apply(syntax.ToNode(b))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	back, err := syntax.FromNode(node)
	if err != nil {
		t.Fatalf("FromNode failed: %v", err)
	}
	return syntax.Format(back), count
}

func TestDefaultRulesRemoveRedundantParentheses(t *testing.T) {
	engine, err := NewDefaultEngine()
	if err != nil {
		t.Fatalf("NewDefaultEngine failed: %v", err)
	}
	got, count := tidy(t, engine, "let y = (x) + ((1, 2)).0 * (a + b);")
	if got != "{ let y = x + (1, 2).0 * (a + b); }" {
		t.Errorf("unexpected output %s", got)
	}
	if count != 2 {
		t.Errorf("expected 2 rule applications, got %d", count)
	}
	got, _ = tidy(t, engine, "f(((v)))")
	if got != "{ f(v) }" {
		t.Errorf("nested parentheses: got %s", got)
	}
}

func TestFailAction(t *testing.T) {
	config, err := LoadRulesConfigFromString(`
name: strict
passes:
  - name: check
    downwards:
      - name: no tuples
        match:
          self:
            name: tuple
        action:
          fail: tuples are not allowed
`)
	if err != nil {
		t.Fatalf("LoadRulesConfigFromString failed: %v", err)
	}
	engine, err := NewEngine(config)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	b, err := parser.ParseBlock("let t = (1, 2);")
	if err != nil {
		t.Fatalf("ParseBlock failed: %v", err)
	}
	_, _, err = engine.Apply(syntax.ToNode(b))
	var ruleErr *RuleError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("expected a RuleError, got %v", err)
	}
	if ruleErr.Message != "tuples are not allowed" || ruleErr.Span.StartLine != 1 {
		t.Errorf("unexpected error %v", ruleErr)
	}
}

func TestPrefixMatch(t *testing.T) {
	name := "id"
	key := common.OptionName
	prefix := "tmp_"
	np := &NodePattern{Name: &name, Key: &key, Prefix: &prefix}
	n := common.NewNode(common.NameIdentifier)
	n.Options[common.OptionName] = "tmp_1"
	if !np.Matches(n, nil) {
		t.Errorf("expected prefix match")
	}
	n.Options[common.OptionName] = "x"
	if np.Matches(n, nil) {
		t.Errorf("unexpected prefix match")
	}
}

func TestNewEngineRejectsBadRules(t *testing.T) {
	for _, source := range []string{
		`
passes:
  - name: p
    downwards:
      - name: r
        match:
          self:
            name: id
        action:
          continue: true
        onSuccess: missing
`,
		`
passes:
  - name: p
    downwards:
      - name: r
        match: {}
        action:
          continue: true
`,
		`
passes:
  - name: p
    downwards:
      - name: r
        match:
          self:
            name: id
        action:
          replaceName: x
          removeChild: true
`,
	} {
		config, err := LoadRulesConfigFromString(source)
		if err != nil {
			t.Fatalf("LoadRulesConfigFromString failed: %v", err)
		}
		if _, err := NewEngine(config); err == nil {
			t.Errorf("expected NewEngine to fail for:\n%s", source)
		}
	}
}

func TestRepeatWithoutProgressIsAnError(t *testing.T) {
	config, err := LoadRulesConfigFromString(`
passes:
  - name: spin
    downwards:
      - name: forever
        match:
          self:
            name: block
        action:
          continue: true
        repeatOnSuccess: true
`)
	if err != nil {
		t.Fatalf("LoadRulesConfigFromString failed: %v", err)
	}
	engine, err := NewEngine(config)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if _, _, err := engine.Apply(common.NewNode(common.NameBlock)); err == nil {
		t.Errorf("expected a non-settling rule to fail")
	}
}

func TestNeighbourMatch(t *testing.T) {
	id, lit := common.NameIdentifier, common.NameLiteral
	last := -1
	tuple := common.NewNode(common.NameTuple,
		common.NewNode(common.NameIdentifier),
		common.NewNode(common.NameLiteral),
		common.NewNode(common.NameIdentifier),
	)
	p := &Pattern{
		Child:         &NodePattern{Name: &lit},
		PreviousChild: &NodePattern{Name: &id},
		NextChild:     &NodePattern{Name: &id, SiblingPosition: &last},
	}
	if ok, at := p.Matches(tuple, nil); !ok || at != 1 {
		t.Errorf("Matches = %v, %d; want true, 1", ok, at)
	}
	tuple.Children = tuple.Children[:2]
	if ok, _ := p.Matches(tuple, nil); ok {
		t.Errorf("matched without a next sibling")
	}
}
