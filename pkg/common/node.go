package common

import (
	"fmt"
	"io"
	"strings"
)

type Node struct {
	Name     string            // The name of the node
	Span     Span              // The span of the node in the source
	Options  map[string]string // Attributes (name-value pairs)
	Children []*Node           // Child nodes
}

// Statement and declaration nodes.
const NameBlock = "block"
const NameFn = "fn"
const NameItem = "item"
const NameLet = "let"
const NameExprStmt = "expr"

// Expression nodes.
const NameLiteral = "lit"
const NameIdentifier = "id"
const NamePath = "path"
const NameBinary = "binary"
const NameUnary = "unary"
const NameRef = "ref"
const NameCall = "call"
const NameMethodCall = "method"
const NameField = "field"
const NameIndex = "index"
const NameTuple = "tuple"
const NameArray = "array"
const NameParen = "paren"
const NameRange = "range"
const NameAssign = "assign"
const NameCast = "cast"
const NameMacro = "macro"
const NameBreak = "break"
const NameContinue = "continue"
const NameReturn = "return"
const NameMatches = "matches"
const NameIf = "if"
const NameLetCond = "letcond"
const NameMatch = "match"
const NameArm = "arm"
const NameBlockExpr = "blockexpr"
const NameClosure = "closure"
const NameLoop = "loop"
const NameWhile = "while"
const NameFor = "for"

// Pattern nodes.
const NamePatIdent = "pat.id"
const NamePatWild = "pat.wild"
const NamePatRest = "pat.rest"
const NamePatLiteral = "pat.lit"
const NamePatPath = "pat.path"
const NamePatRange = "pat.range"
const NamePatTuple = "pat.tuple"
const NamePatTupleStruct = "pat.tuplestruct"
const NamePatStruct = "pat.struct"
const NamePatField = "pat.field"
const NamePatSlice = "pat.slice"
const NamePatRef = "pat.ref"
const NamePatOr = "pat.or"
const NamePatTyped = "pat.typed"
const NamePatBox = "pat.box"
const NamePatMacro = "pat.macro"
const NamePatVerbatim = "pat.verbatim"

const OptionValue = "value"
const OptionName = "name"
const OptionKind = "kind"
const OptionOp = "op"
const OptionKeyword = "keyword"
const OptionLabel = "label"
const OptionType = "type"
const OptionResult = "result"
const OptionPath = "path"
const OptionText = "text"
const OptionAttrs = "attrs"
const OptionMut = "mut"
const OptionByRef = "byref"
const OptionMove = "move"
const OptionSemi = "semi"
const OptionInclusive = "inclusive"
const OptionRest = "rest"
const OptionGuard = "guard"
const OptionElse = "else"
const OptionInit = "init"
const OptionSub = "sub"
const OptionLo = "lo"
const OptionHi = "hi"
const OptionSrc = "src"
const OptionSpan = "span"

const ValueTrue = "true"
const ValueFalse = "false"
const ValueBlank = ""

// TrimValue trims a value if it's a token value and trimming is enabled
func TrimValue(key, value string, trimLength int) string {
	if key == OptionValue && trimLength > 0 && len(value) > trimLength {
		// Reserve space for Unicode ellipsis (1 character: "…")
		if trimLength >= 2 {
			return value[:trimLength-1] + "…"
		} else if trimLength >= 1 {
			// If trim length is too small for ellipsis, just truncate
			return value[:trimLength]
		}
	}
	return value
}

// PrintFunc renders a node tree to a writer.
type PrintFunc func(root *Node, indentDelta string, output io.Writer, options *PrintOptions) error

// PickPrintFunc selects the printer for a format name. The SOURCE format is
// not a tree format and is handled by the syntax package.
func PickPrintFunc(format string) (PrintFunc, error) {
	switch strings.ToUpper(format) {
	case "JSON":
		return PrintASTJSON, nil
	case "YAML":
		return PrintASTYAML, nil
	case "ASCIITREE":
		return PrintASTAsciiTree, nil
	case "DOT":
		return PrintASTDOT, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// NewNode creates a node with an empty option map.
func NewNode(name string, children ...*Node) *Node {
	return &Node{
		Name:     name,
		Options:  map[string]string{},
		Children: children,
	}
}

// Option returns the named option, or the empty string.
func (n *Node) Option(key string) string {
	if n.Options == nil {
		return ""
	}
	return n.Options[key]
}

// Flag reports whether the named option is "true".
func (n *Node) Flag(key string) bool {
	return n.Option(key) == ValueTrue
}

// SetFlag stores a boolean option, omitting it when false.
func (n *Node) SetFlag(key string, value bool) {
	if !value {
		return
	}
	if n.Options == nil {
		n.Options = map[string]string{}
	}
	n.Options[key] = ValueTrue
}
