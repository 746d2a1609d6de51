// Package nuspec holds the built-in nuspec manifest checks.
package nuspec

import (
	"github.com/tinovyatkin/nuspec-lsp/internal/rules"
	"github.com/tinovyatkin/nuspec-lsp/internal/schema"
)

// SchemaRule validates the document against the nuspec XML Schema.
type SchemaRule struct {
	schema *schema.Schema
}

// NewSchemaRule creates a schema rule backed by a compiled schema.
func NewSchemaRule(s *schema.Schema) *SchemaRule {
	return &SchemaRule{schema: s}
}

// Metadata returns the rule metadata.
func (r *SchemaRule) Metadata() rules.RuleMetadata {
	return rules.RuleMetadata{
		Code:            rules.CodeSchema,
		Name:            "Schema validation",
		Description:     "Manifest must be well-formed XML that conforms to the nuspec schema",
		DocURL:          "https://learn.microsoft.com/nuget/reference/nuspec",
		DefaultSeverity: rules.SeverityError,
	}
}

// Check runs the schema validator. Well-formedness errors use the syntax
// code; everything else uses the schema code. Each diagnostic is a
// zero-width range at the position the reader reported.
func (r *SchemaRule) Check(input rules.LintInput) []rules.Diagnostic {
	meta := r.Metadata()
	violations := r.schema.Validate(input.Text, input.Index)
	if len(violations) == 0 {
		return nil
	}

	out := make([]rules.Diagnostic, 0, len(violations))
	for _, v := range violations {
		code := meta.Code
		if v.Fatal {
			code = rules.CodeSyntax
		}
		out = append(out, rules.NewDiagnostic(
			rules.NewPointRange(v.Line, v.Column),
			code,
			v.Message,
			meta.DefaultSeverity,
		).WithDocURL(meta.DocURL))
	}
	return out
}
