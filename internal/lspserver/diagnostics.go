package lspserver

import (
	"context"
	"errors"

	"fortio.org/safecast"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/tinovyatkin/nuspec-lsp/internal/rules"
	"github.com/tinovyatkin/nuspec-lsp/internal/textpos"
)

var errNotConnected = errors.New("lsp: no client connection")

// PublishDiagnostics sends the complete diagnostic set for a document.
func (s *Server) PublishDiagnostics(ctx context.Context, docURI string, version int32, diags []rules.Diagnostic) error {
	if s.conn == nil {
		return errNotConnected
	}
	params := &protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentURI(docURI),
		Diagnostics: convertDiagnostics(diags),
	}
	if v, err := safecast.Conv[uint32](version); err == nil {
		params.Version = v
	}
	return s.conn.Notify(ctx, protocol.MethodTextDocumentPublishDiagnostics, params)
}

// convertDiagnostics converts diagnostics to their LSP form. The result is
// never nil so that an empty set clears the client's list.
func convertDiagnostics(diags []rules.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		pd := protocol.Diagnostic{
			Range:    toLSPRange(d.Range),
			Severity: severityToLSP(d.Severity),
			Source:   rules.Source,
			Code:     d.Code,
			Message:  d.Message,
		}
		if d.DocURL != "" {
			pd.CodeDescription = &protocol.CodeDescription{
				Href: uri.URI(d.DocURL),
			}
		}
		out = append(out, pd)
	}
	return out
}

// toLSPRange converts a zero-based range. Positions already count UTF-16
// code units, so only the integer width changes.
func toLSPRange(r textpos.Range) protocol.Range {
	return protocol.Range{
		Start: toLSPPosition(r.Start),
		End:   toLSPPosition(r.End),
	}
}

func toLSPPosition(p textpos.Position) protocol.Position {
	return protocol.Position{Line: clampUint32(p.Line), Character: clampUint32(p.Column)}
}

// severityToLSP converts a Severity to an LSP DiagnosticSeverity.
func severityToLSP(s rules.Severity) protocol.DiagnosticSeverity {
	switch s {
	case rules.SeverityError:
		return protocol.DiagnosticSeverityError
	case rules.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case rules.SeverityInformation:
		return protocol.DiagnosticSeverityInformation
	case rules.SeverityHint:
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityError
	}
}

// clampUint32 converts an int to uint32, clamping negative values to 0.
func clampUint32(v int) uint32 {
	if v < 0 {
		return 0
	}
	u, err := safecast.Conv[uint32](v)
	if err != nil {
		return ^uint32(0)
	}
	return u
}
