package rules

import (
	"slices"
	"strings"

	"github.com/tinovyatkin/nuspec-lsp/internal/textpos"
)

// Source is reported as the origin of every diagnostic.
const Source = "nuspec"

// Diagnostic is a single problem found in a document.
type Diagnostic struct {
	// Range is where the problem is, in zero-based UTF-16 coordinates.
	Range textpos.Range `json:"range"`

	// Severity is always SeverityError for the built-in checks.
	Severity Severity `json:"severity"`

	// Code identifies the check that produced the diagnostic.
	Code string `json:"code"`

	// Message is the human-readable description.
	Message string `json:"message"`

	// DocURL optionally links to documentation about the problem.
	DocURL string `json:"docUrl,omitempty"`
}

// NewDiagnostic creates a diagnostic.
func NewDiagnostic(r textpos.Range, code, message string, severity Severity) Diagnostic {
	return Diagnostic{
		Range:    r,
		Severity: severity,
		Code:     code,
		Message:  message,
	}
}

// WithDocURL returns a copy of d with a documentation link.
func (d Diagnostic) WithDocURL(url string) Diagnostic {
	d.DocURL = url
	return d
}

// Line returns the zero-based start line.
func (d Diagnostic) Line() int {
	return d.Range.Start.Line
}

// SortDiagnostics orders diagnostics by start position, then code and
// message. The engine makes no ordering promise; this is for display.
func SortDiagnostics(ds []Diagnostic) {
	slices.SortStableFunc(ds, func(a, b Diagnostic) int {
		switch {
		case a.Range.Start.Less(b.Range.Start):
			return -1
		case b.Range.Start.Less(a.Range.Start):
			return 1
		}
		if c := strings.Compare(a.Code, b.Code); c != 0 {
			return c
		}
		return strings.Compare(a.Message, b.Message)
	})
}
