package rules

import "github.com/tinovyatkin/nuspec-lsp/internal/textpos"

// NewPointRange creates a zero-width range at a zero-based line and column.
// Schema violations are reported this way because the XML reader only
// knows where a problem was detected, not how far it extends.
func NewPointRange(line, column int) textpos.Range {
	return textpos.Point(textpos.Position{Line: line, Column: column})
}

// NewRange creates a range spanning two zero-based line/column pairs.
func NewRange(startLine, startCol, endLine, endCol int) textpos.Range {
	return textpos.Range{
		Start: textpos.Position{Line: startLine, Column: startCol},
		End:   textpos.Position{Line: endLine, Column: endCol},
	}
}

// IsPointRange returns true if r has zero width.
func IsPointRange(r textpos.Range) bool {
	return r.Start == r.End
}
