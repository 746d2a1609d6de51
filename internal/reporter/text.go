package reporter

// The text formatter follows BuildKit's lint output layout (header line,
// message, then a framed source snippet with ">>>" markers) so results look
// like what `docker buildx build --check` prints.

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/tinovyatkin/nuspec-lsp/internal/rules"
	"github.com/tinovyatkin/nuspec-lsp/internal/textpos"
)

const rule = "--------------------"

type palette struct {
	severity  map[rules.Severity]lipgloss.Style
	url       lipgloss.Style
	marker    lipgloss.Style
	gutter    lipgloss.Style
	summary   lipgloss.Style
	highlight func(string) string
}

func newPalette(w io.Writer, color bool) palette {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	p := palette{
		severity: map[rules.Severity]lipgloss.Style{
			rules.SeverityError:       r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
			rules.SeverityWarning:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
			rules.SeverityInformation: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
			rules.SeverityHint:        r.NewStyle().Faint(true),
		},
		url:       r.NewStyle().Faint(true).Underline(true),
		marker:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		gutter:    r.NewStyle().Faint(true),
		summary:   r.NewStyle().Bold(true),
		highlight: func(s string) string { return s },
	}
	if color {
		p.highlight = highlightXML
	}
	return p
}

// PrintText writes diagnostics with source snippets.
//
// Example output:
//
//	ERROR: schema - https://learn.microsoft.com/nuget/reference/nuspec
//	Invalid child element: 'bogus'. Expected: 'title', 'owners'.
//
//	Foo.nuspec:6
//	--------------------
//	   4 |         <version>1.0.0</version>
//	   5 |         <authors>me</authors>
//	   6 | >>>     <bogus/>
//	   7 |       </metadata>
//	   8 |     </package>
//	--------------------
func PrintText(w io.Writer, results []FileResult, opts Options) error {
	p := newPalette(w, opts.Color)
	files := 0
	for _, r := range sorted(results) {
		if len(r.Diagnostics) == 0 {
			continue
		}
		files++
		lines := rules.SplitLines(r.Source)
		for _, d := range r.Diagnostics {
			if err := printDiagnostic(w, p, r.File, d, lines); err != nil {
				return err
			}
		}
	}

	total := CountDiagnostics(results)
	if total == 0 {
		return nil
	}
	_, err := fmt.Fprintf(w, "\n%s\n", p.summary.Render(
		fmt.Sprintf("%d %s in %d %s", total, plural(total, "problem"), files, plural(files, "file"))))
	return err
}

// printDiagnostic writes the header, message and snippet for d.
func printDiagnostic(w io.Writer, p palette, file string, d rules.Diagnostic, lines []string) error {
	label := strings.ToUpper(d.Severity.String())
	if style, ok := p.severity[d.Severity]; ok {
		label = style.Render(label)
	}
	header := fmt.Sprintf("\n%s: %s", label, d.Code)
	if d.DocURL != "" {
		header += " - " + p.url.Render(d.DocURL)
	}
	if _, err := fmt.Fprintf(w, "%s\n%s\n", header, d.Message); err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	return printSource(w, p, file, d.Range, lines)
}

// printSource renders the snippet around r with 2-4 lines of context and
// ">>>" on the affected lines. Line numbers are shown 1-based.
func printSource(w io.Writer, p palette, file string, r textpos.Range, lines []string) error {
	start := r.Start.Line + 1
	end := r.End.Line + 1
	if end < start {
		end = start
	}
	// A range ending at column 0 does not touch its last line.
	if end > start && r.End.Column == 0 {
		end--
	}
	if start > len(lines) || start < 1 {
		return nil
	}
	end = min(end, len(lines))
	markStart, markEnd := start, end

	pad := 2
	if end == start {
		pad = 4
	}
	for n := 0; n < pad; {
		if start > 1 {
			start--
			n++
		}
		if end < len(lines) {
			end++
			n++
		}
		n++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s:%d\n%s\n", file, markStart, rule)
	for i := start; i <= end; i++ {
		pfx := "   "
		if i >= markStart && i <= markEnd {
			pfx = p.marker.Render(">>>")
		}
		fmt.Fprintf(&b, " %s %s %s\n", p.gutter.Render(fmt.Sprintf("%3d |", i)), pfx, p.highlight(lines[i-1]))
	}
	b.WriteString(rule + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// highlightXML colors one source line for a 256-color terminal. Lines are
// tokenized on their own, so a construct spanning lines may lose color.
func highlightXML(line string) string {
	lexer := lexers.Get("xml")
	formatter := formatters.Get("terminal256")
	if lexer == nil || formatter == nil {
		return line
	}
	tokens, err := chroma.Tokenise(chroma.Coalesce(lexer), nil, line)
	if err != nil {
		return line
	}
	var b strings.Builder
	if err := formatter.Format(&b, styles.Get("monokai"), chroma.Literator(tokens...)); err != nil {
		return line
	}
	return strings.ReplaceAll(b.String(), "\n", "")
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
