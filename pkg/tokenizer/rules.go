package tokenizer

import (
	"fmt"
	"sort"
)

// Precedence bands. Smaller numbers bind tighter; zero means the operator
// has no such role.
const LOOSE = 9999

const (
	PrecPostfix = 10
	PrecPrefix  = 20
	PrecCast    = 30
	PrecProduct = 40
	PrecSum     = 50
	PrecShift   = 60
	PrecBitAnd  = 70
	PrecBitXor  = 80
	PrecBitOr   = 90
	PrecCompare = 100
	PrecAnd     = 110
	PrecOr      = 120
	PrecRange   = 130
	PrecAssign  = 140
)

// CustomRuleType represents the type of rule a symbol or word belongs to
type CustomRuleType int

const (
	CustomKeyword CustomRuleType = iota
	CustomOperator
	CustomOpenDelimiter
	CustomCloseDelimiter
	CustomMark
)

// CustomRuleEntry holds the rule type and any associated data
type CustomRuleEntry struct {
	Type CustomRuleType
	Data any // [3]int for operators, []string for open delimiters
}

// TokenizerRules holds all the rule maps that drive classification
type TokenizerRules struct {
	Keywords            map[string]bool
	DelimiterMappings   map[string][]string
	OperatorPrecedences map[string][3]int // [prefix, infix, postfix]
	MarkTokens          map[string]bool

	// Precomputed lookup map for efficient matching
	TokenLookup map[string]CustomRuleEntry

	// Symbols sorted longest first for maximal munch
	symbols []string
}

// DefaultRules returns the default tokenizer rules
func DefaultRules() *TokenizerRules {
	rules := &TokenizerRules{
		Keywords:            getDefaultKeywords(),
		DelimiterMappings:   getDefaultDelimiterMappings(),
		OperatorPrecedences: getDefaultOperatorPrecedences(),
		MarkTokens:          getDefaultMarkTokens(),
	}

	// Default rules should never have conflicts, so we panic if there's an error
	if err := rules.BuildTokenLookup(); err != nil {
		panic(fmt.Sprintf("Invalid default rules: %v", err))
	}

	return rules
}

func getDefaultKeywords() map[string]bool {
	words := []string{
		"as", "async", "box", "break", "const", "continue", "else", "enum",
		"extern", "false", "fn", "for", "if", "impl", "in", "let", "loop",
		"match", "mod", "move", "mut", "pub", "ref", "return", "static",
		"struct", "trait", "true", "try", "type", "unsafe", "use", "where",
		"while",
	}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

func getDefaultDelimiterMappings() map[string][]string {
	return map[string][]string{
		"(": {")"},
		"[": {"]"},
		"{": {"}"},
	}
}

func getDefaultMarkTokens() map[string]bool {
	return map[string]bool{
		",": true, ";": true, ":": true, "::": true, "=>": true, "->": true,
		"@": true, "#": true, ".": true, "$": true,
	}
}

func getDefaultOperatorPrecedences() map[string][3]int {
	m := make(map[string][3]int)
	// Deref shares its symbol with multiplication.
	m["*"] = [3]int{PrecPrefix, PrecProduct, 0}
	m["/"] = [3]int{0, PrecProduct, 0}
	m["%"] = [3]int{0, PrecProduct, 0}
	m["+"] = [3]int{0, PrecSum, 0}
	m["-"] = [3]int{PrecPrefix, PrecSum, 0}
	m["<<"] = [3]int{0, PrecShift, 0}
	m[">>"] = [3]int{0, PrecShift, 0}
	m["&"] = [3]int{PrecPrefix, PrecBitAnd, 0}
	m["^"] = [3]int{0, PrecBitXor, 0}
	m["|"] = [3]int{0, PrecBitOr, 0}
	for _, op := range []string{"==", "!=", "<", ">", "<=", ">="} {
		m[op] = [3]int{0, PrecCompare, 0}
	}
	m["&&"] = [3]int{PrecPrefix, PrecAnd, 0}
	m["||"] = [3]int{0, PrecOr, 0}
	m[".."] = [3]int{PrecRange, PrecRange, 0}
	m["..="] = [3]int{PrecRange, PrecRange, 0}
	for _, op := range []string{"=", "+=", "-=", "*=", "/=", "%=", "^=", "&=", "|=", "<<=", ">>="} {
		m[op] = [3]int{0, PrecAssign, 0}
	}
	m["!"] = [3]int{PrecPrefix, 0, 0}
	m["?"] = [3]int{0, 0, PrecPostfix}
	return m
}

// BuildTokenLookup creates the precomputed lookup map for efficient token matching.
// Returns an error if a token is defined in multiple rules.
func (rules *TokenizerRules) BuildTokenLookup() error {
	rules.TokenLookup = make(map[string]CustomRuleEntry)
	tokenSources := make(map[string]string) // Track which rule type defined each token

	// Helper function to add a token and check for duplicates
	addToken := func(token string, ruleType CustomRuleType, ruleTypeName string, data any) error {
		if existingSource, exists := tokenSources[token]; exists {
			return fmt.Errorf("token '%s' is defined in both %s and %s rules", token, existingSource, ruleTypeName)
		}
		tokenSources[token] = ruleTypeName
		rules.TokenLookup[token] = CustomRuleEntry{
			Type: ruleType,
			Data: data,
		}
		return nil
	}

	for token := range rules.Keywords {
		if err := addToken(token, CustomKeyword, "keyword", nil); err != nil {
			return err
		}
	}

	for token := range rules.MarkTokens {
		if err := addToken(token, CustomMark, "mark", nil); err != nil {
			return err
		}
	}

	for token, precedence := range rules.OperatorPrecedences {
		if err := addToken(token, CustomOperator, "operator", precedence); err != nil {
			return err
		}
	}

	for token, closedBy := range rules.DelimiterMappings {
		if err := addToken(token, CustomOpenDelimiter, "bracket", closedBy); err != nil {
			return err
		}
	}

	// Close delimiters are derived from the closed_by lists and may be shared.
	for _, closedByList := range rules.DelimiterMappings {
		for _, closer := range closedByList {
			if _, exists := tokenSources[closer]; exists && rules.TokenLookup[closer].Type != CustomCloseDelimiter {
				return fmt.Errorf("token '%s' is defined in both %s and bracket rules", closer, tokenSources[closer])
			}
			tokenSources[closer] = "bracket"
			rules.TokenLookup[closer] = CustomRuleEntry{Type: CustomCloseDelimiter}
		}
	}

	rules.symbols = rules.symbols[:0]
	for token := range rules.TokenLookup {
		if !rules.Keywords[token] {
			rules.symbols = append(rules.symbols, token)
		}
	}
	sort.Slice(rules.symbols, func(i, j int) bool {
		if len(rules.symbols[i]) != len(rules.symbols[j]) {
			return len(rules.symbols[i]) > len(rules.symbols[j])
		}
		return rules.symbols[i] < rules.symbols[j]
	})

	return nil
}

// matchSymbol returns the longest symbol that prefixes s.
func (rules *TokenizerRules) matchSymbol(s string) (string, CustomRuleEntry, bool) {
	for _, sym := range rules.symbols {
		if len(sym) <= len(s) && s[:len(sym)] == sym {
			return sym, rules.TokenLookup[sym], true
		}
	}
	return "", CustomRuleEntry{}, false
}
