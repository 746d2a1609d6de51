package reporter

import (
	"io"

	"github.com/goccy/go-json"
)

type jsonReport struct {
	Files   []jsonFile  `json:"files"`
	Summary jsonSummary `json:"summary"`
}

type jsonFile struct {
	File        string           `json:"file"`
	URI         string           `json:"uri"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
}

// jsonDiagnostic uses 1-based lines and columns, like the text output.
type jsonDiagnostic struct {
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndLine   int    `json:"endLine"`
	EndColumn int    `json:"endColumn"`
	Severity  string `json:"severity"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	DocURL    string `json:"docUrl,omitempty"`
}

type jsonSummary struct {
	Files       int `json:"files"`
	Diagnostics int `json:"diagnostics"`
}

// PrintJSON writes results as an indented JSON document.
func PrintJSON(w io.Writer, results []FileResult) error {
	report := jsonReport{
		Files: make([]jsonFile, 0, len(results)),
		Summary: jsonSummary{
			Files:       len(results),
			Diagnostics: CountDiagnostics(results),
		},
	}
	for _, r := range sorted(results) {
		f := jsonFile{
			File:        r.File,
			URI:         r.URI,
			Diagnostics: make([]jsonDiagnostic, 0, len(r.Diagnostics)),
		}
		for _, d := range r.Diagnostics {
			f.Diagnostics = append(f.Diagnostics, jsonDiagnostic{
				Line:      d.Range.Start.Line + 1,
				Column:    d.Range.Start.Column + 1,
				EndLine:   d.Range.End.Line + 1,
				EndColumn: d.Range.End.Column + 1,
				Severity:  d.Severity.String(),
				Code:      d.Code,
				Message:   d.Message,
				DocURL:    d.DocURL,
			})
		}
		report.Files = append(report.Files, f)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
