package common

type PrintOptions struct {
	Format            string `yaml:"option-format,omitempty"`
	Indent            int    `yaml:"option-indent,omitempty"`
	IncludeSpans      bool   `yaml:"option-include-spans,omitempty"`
	TrimTokenOnOutput int    `yaml:"option-trim-token-on-output,omitempty"`
}

// IndentString returns the indentation unit implied by Indent.
func (o *PrintOptions) IndentString() string {
	indent := ""
	for i := 0; i < o.Indent; i++ {
		indent += " "
	}
	return indent
}
