package treerules

// DefaultRules removes parentheses around operands that never need them.
// Precedence is recovered by the printer, so these nodes carry no meaning.
const DefaultRules = `
name: tidy
description: Remove redundant wire-tree shapes before hoisting.
passes:

  - name: parentheses
    upwards:

      - name: Unwrap parenthesised identifier
        match:
          self:
            name: paren
            count: 1
          child:
            name: id
        action:
          replaceByChild: 0

      - name: Unwrap parenthesised path
        match:
          self:
            name: paren
            count: 1
          child:
            name: path
        action:
          replaceByChild: 0

      - name: Unwrap nested parentheses
        match:
          self:
            name: paren
            count: 1
          child:
            name: paren
        action:
          replaceByChild: 0

      - name: Unwrap parenthesised tuple
        match:
          self:
            name: paren
            count: 1
          child:
            name: tuple
        action:
          replaceByChild: 0

      - name: Unwrap parenthesised array
        match:
          self:
            name: paren
            count: 1
          child:
            name: array
        action:
          replaceByChild: 0

      - name: Unwrap parenthesised macro
        match:
          self:
            name: paren
            count: 1
          child:
            name: macro
        action:
          replaceByChild: 0
`

// NewDefaultEngine compiles DefaultRules.
func NewDefaultEngine() (*Engine, error) {
	config, err := LoadRulesConfigFromString(DefaultRules)
	if err != nil {
		return nil, err
	}
	return NewEngine(config)
}
