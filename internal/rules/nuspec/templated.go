package nuspec

import (
	"github.com/tinovyatkin/nuspec-lsp/internal/placeholder"
	"github.com/tinovyatkin/nuspec-lsp/internal/rules"
)

// TemplatedValueRule flags text content that still holds scaffold
// placeholders such as "__replace".
type TemplatedValueRule struct{}

// NewTemplatedValueRule creates a new templated-value rule instance.
func NewTemplatedValueRule() *TemplatedValueRule {
	return &TemplatedValueRule{}
}

// Metadata returns the rule metadata.
func (r *TemplatedValueRule) Metadata() rules.RuleMetadata {
	return rules.RuleMetadata{
		Code:            rules.CodeTemplatedValue,
		Name:            "Templated value",
		Description:     "Scaffold placeholder text left in the manifest",
		DefaultSeverity: rules.SeverityError,
	}
}

// Check reports every offending text node over its full span.
func (r *TemplatedValueRule) Check(input rules.LintInput) []rules.Diagnostic {
	meta := r.Metadata()
	var out []rules.Diagnostic
	for _, f := range placeholder.Scan(input.Text) {
		out = append(out, rules.NewDiagnostic(
			input.Index.Range(f.Start, f.End),
			meta.Code,
			f.Message,
			meta.DefaultSeverity,
		))
	}
	return out
}
