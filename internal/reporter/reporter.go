// Package reporter provides output formatters for check results.
package reporter

import (
	"fmt"
	"io"
	"slices"

	"github.com/tinovyatkin/nuspec-lsp/internal/rules"
)

// Format selects an output formatter.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text or json)", s)
	}
}

// FileResult holds the diagnostics for one checked manifest.
type FileResult struct {
	// File is the path as given on the command line, "-" for stdin.
	File string
	// URI is the document URI the diagnostics were computed for.
	URI string
	// Source is the decoded text, used for snippets.
	Source string
	// Diagnostics are the findings, in any order.
	Diagnostics []rules.Diagnostic
}

// Options configures a report.
type Options struct {
	// Color enables ANSI styling and syntax-highlighted snippets.
	Color bool
}

// Write renders results in the requested format.
func Write(w io.Writer, format Format, results []FileResult, opts Options) error {
	switch format {
	case FormatJSON:
		return PrintJSON(w, results)
	default:
		return PrintText(w, results, opts)
	}
}

// CountDiagnostics returns the total number of diagnostics in results.
func CountDiagnostics(results []FileResult) int {
	n := 0
	for _, r := range results {
		n += len(r.Diagnostics)
	}
	return n
}

// sorted returns results ordered by file with each file's diagnostics
// ordered by position. The input is not modified.
func sorted(results []FileResult) []FileResult {
	out := slices.Clone(results)
	slices.SortStableFunc(out, func(a, b FileResult) int {
		switch {
		case a.File < b.File:
			return -1
		case a.File > b.File:
			return 1
		}
		return 0
	})
	for i := range out {
		out[i].Diagnostics = slices.Clone(out[i].Diagnostics)
		rules.SortDiagnostics(out[i].Diagnostics)
	}
	return out
}
