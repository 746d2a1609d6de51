package rules

import (
	"strings"

	"github.com/tinovyatkin/nuspec-lsp/internal/textpos"
)

// Diagnostic codes for the built-in checks.
const (
	CodeSchema         = "schema"
	CodeSyntax         = "syntax"
	CodeTemplatedValue = "templated-value"
)

// LintInput contains everything a rule needs to check one document.
type LintInput struct {
	// URI identifies the document being checked.
	URI string

	// Text is the full document text.
	Text string

	// Index maps byte offsets in Text to positions. It is built once per
	// pass and shared by every rule.
	Index *textpos.Index
}

// RuleMetadata contains static information about a rule.
type RuleMetadata struct {
	// Code is the unique identifier (e.g., "schema").
	Code string

	// Name is the human-readable rule name.
	Name string

	// Description explains what the rule checks.
	Description string

	// DocURL links to detailed documentation.
	DocURL string

	// DefaultSeverity is the severity of diagnostics the rule emits.
	DefaultSeverity Severity
}

// Rule is a single check run by the diagnostics engine.
type Rule interface {
	// Metadata returns static information about the rule.
	Metadata() RuleMetadata

	// Check runs the rule against the given input and returns its findings.
	// Check must not panic on malformed input.
	Check(input LintInput) []Diagnostic
}

// SplitLines splits text on "\n", "\r\n" and lone "\r", the same line
// terminators textpos counts.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
