package schema

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jacoelho/xsd/errors"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/tinovyatkin/nuspec-lsp/internal/textpos"
	"github.com/tinovyatkin/nuspec-lsp/internal/xmltree"
)

// Violation is a single validation failure. Line and Column are
// zero-based; Column counts UTF-16 code units.
type Violation struct {
	// Code is the validator's error code, e.g. "cvc-complex-type.2.4.d".
	Code    string
	Message string
	Line    int
	Column  int
	// Fatal marks a well-formedness error. Reading stops at the first one.
	Fatal bool
}

// Validate reads text as an XML document and reports every schema
// violation found. A well-formedness error ends the read: violations
// before it are kept and the error is reported last with Fatal set.
//
// idx must index text; when nil a new one is built.
func (s *Schema) Validate(text string, idx *textpos.Index) []Violation {
	if idx == nil {
		idx = textpos.New(text)
	}
	src, bad := neutralizeEncoding(text)
	if bad != nil {
		return []Violation{fromOffset(idx, *bad, true, "", bad.msg)}
	}

	list := s.run(src)
	n := len(list)
	if n == 0 || !isFatal(list[n-1]) {
		return s.convert(idx, text, list)
	}

	fatal := s.convert(idx, text, list[n-1:])[0]
	cut := idx.Offset(textpos.Position{Line: fatal.Line, Column: fatal.Column})
	out := s.before(idx, text, src, cut)
	return append(out, fatal)
}

func (s *Schema) run(src string) errors.ValidationList {
	err := s.compiled.Validate(strings.NewReader(src))
	if err == nil {
		return nil
	}
	list, ok := errors.AsValidations(err)
	if !ok {
		return errors.ValidationList{{Code: string(errors.ErrXMLParse), Message: err.Error()}}
	}
	// A fatal error comes back alone, without the violations before it.
	return list
}

// before revalidates the part of src ahead of a fatal error so the
// violations found there are not lost. Elements still open at the cut are
// closed synthetically and anything reported at or after the cut is
// dropped.
func (s *Schema) before(idx *textpos.Index, text, src string, cut int) []Violation {
	cut = min(cut, len(src))
	for _, c := range cutPoints(src, cut) {
		prefix := src[:c]
		doc := xmltree.Parse(prefix)
		if doc.Err != nil && doc.ErrOffset < len(prefix) {
			continue
		}
		var b strings.Builder
		b.WriteString(prefix)
		for _, name := range openElements(prefix, doc) {
			b.WriteString("</" + name + ">")
		}

		list := s.run(b.String())
		if len(list) > 0 && isFatal(list[len(list)-1]) {
			continue
		}
		var out []Violation
		for _, v := range s.convert(idx, text, list) {
			if idx.Offset(textpos.Position{Line: v.Line, Column: v.Column}) < c {
				out = append(out, v)
			}
		}
		return out
	}
	return nil
}

// cutPoints lists prefixes of src worth revalidating, longest first: the
// whole text when the error is at its end, then everything before the
// markup the error was found in.
func cutPoints(src string, cut int) []int {
	var cuts []int
	if cut == len(src) {
		cuts = append(cuts, cut)
	}
	if lt := strings.LastIndexByte(src[:cut], '<'); lt > 0 {
		cuts = append(cuts, lt)
	}
	return cuts
}

// openElements lists the raw names of unclosed elements, innermost first.
func openElements(text string, doc *xmltree.Document) []string {
	var open []string
	n := doc.Root
	for len(n.Children) > 0 {
		last := n.Children[len(n.Children)-1]
		if last.Kind != xmltree.ElementNode || last.Closed {
			break
		}
		open = append(open, rawName(text, last.Start))
		n = last
	}
	for i, j := 0, len(open)-1; i < j; i, j = i+1, j-1 {
		open[i], open[j] = open[j], open[i]
	}
	return open
}

// rawName returns the qualified name of the start tag at off as written.
func rawName(text string, off int) string {
	rest := text[off+1:]
	end := strings.IndexFunc(rest, func(r rune) bool {
		return r == '>' || r == '/' || unicode.IsSpace(r)
	})
	if end < 0 {
		return rest
	}
	return rest[:end]
}

func isFatal(v errors.Validation) bool {
	return v.Code == string(errors.ErrXMLParse) || v.Code == string(errors.ErrNoRoot)
}

func (s *Schema) convert(idx *textpos.Index, text string, list errors.ValidationList) []Violation {
	if len(list) == 0 {
		return nil
	}
	bom := 0
	if strings.HasPrefix(text, byteOrderMark) {
		bom = len(byteOrderMark)
	}
	out := make([]Violation, 0, len(list))
	for _, v := range list {
		fatal := isFatal(v)
		line, col, msg := v.Line, v.Column, v.Message
		if fatal {
			line, col, msg = syntaxLocation(v)
		}
		var off int
		switch {
		case line > 0:
			off = idx.LineStart(line-1) + max(col-1, 0)
			if line == 1 {
				off += bom
			}
		case col > 0:
			// Stream offset without line tracking.
			off = col + bom
		case fatal:
			off = len(text)
		}
		out = append(out, fromOffset(idx, location{off: off}, fatal, v.Code, describe(v, msg, elementAt(text, off))))
	}
	return out
}

const byteOrderMark = "\uFEFF"

type location struct {
	off int
	msg string
}

func fromOffset(idx *textpos.Index, loc location, fatal bool, code, msg string) Violation {
	pos := idx.Position(loc.off)
	if code == "" {
		code = string(errors.ErrXMLParse)
	}
	return Violation{Code: code, Message: msg, Line: pos.Line, Column: pos.Column, Fatal: fatal}
}

var syntaxRe = regexp.MustCompile(`^xml syntax error at (?:line (\d+), column (\d+)|offset (\d+)): (.*)$`)

// syntaxLocation recovers the position of a parse error. The reader
// reports it in the message rather than on the validation.
func syntaxLocation(v errors.Validation) (line, col int, msg string) {
	if v.Code == string(errors.ErrNoRoot) {
		return 0, 0, "Root element is missing."
	}
	m := syntaxRe.FindStringSubmatch(v.Message)
	if m == nil {
		return v.Line, v.Column, "XML syntax error: " + v.Message
	}
	if m[4] == "missing root element" {
		return 0, 0, "Root element is missing."
	}
	msg = "XML syntax error: " + m[4]
	if m[3] != "" {
		off, _ := strconv.Atoi(m[3])
		return 0, off, msg
	}
	line, _ = strconv.Atoi(m[1])
	col, _ = strconv.Atoi(m[2])
	return line, col, msg
}

// describe turns a validation into a sentence naming the offending and
// expected items. tag is the element written at the reported position,
// used when the validator could not name it.
func describe(v errors.Validation, msg, tag string) string {
	if isFatal(v) {
		return msg
	}
	found := displayName(v.Actual)
	if found == "" && namesElement(v.Code) && tag != "" {
		found = "'" + tag + "'"
	}
	if v.Code == string(errors.ErrValidateRootNotDeclared) {
		msg = "Could not find schema information for the root element"
		if found != "" {
			msg += " " + found
		}
		return msg + fmt.Sprintf(". Expected 'package' in namespace %s.", Namespace)
	}
	if v.Code == string(errors.ErrUnexpectedElement) {
		msg = "invalid child element"
	}
	msg = upperFirst(msg)
	if found != "" {
		msg += ": " + found
	}
	if len(v.Expected) > 0 {
		names := make([]string, 0, len(v.Expected))
		for _, e := range v.Expected {
			names = append(names, displayName(e))
		}
		msg += ". Expected: " + strings.Join(names, ", ")
		if slices.Contains(names, found) {
			// Same local name, different namespace.
			msg += " in namespace " + Namespace
		}
	}
	if !strings.HasSuffix(msg, ".") {
		msg += "."
	}
	return msg
}

func namesElement(code string) bool {
	switch errors.ErrorCode(code) {
	case errors.ErrUnexpectedElement, errors.ErrElementNotDeclared, errors.ErrValidateRootNotDeclared:
		return true
	}
	return false
}

// elementAt returns the name of the start tag beginning at off, if any.
func elementAt(text string, off int) string {
	if off < 0 || off+1 >= len(text) || text[off] != '<' {
		return ""
	}
	switch text[off+1] {
	case '/', '?', '!':
		return ""
	}
	return rawName(text, off)
}

// displayName renders "{ns}local" names. Names in the nuspec namespace lose
// the namespace part.
func displayName(name string) string {
	if name == "" || name == "{?}?" {
		return ""
	}
	if rest, ok := strings.CutPrefix(name, "{"+Namespace+"}"); ok {
		return "'" + rest + "'"
	}
	return "'" + name + "'"
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

var encodingRe = regexp.MustCompile(`^(?:\x{FEFF})?<\?xml\s[^?]*?(\bencoding\s*=\s*(?:"([^"]*)"|'([^']*)'))`)

// neutralizeEncoding blanks out the encoding declaration when it names a
// charset other than UTF-8. The text is already decoded, so the label only
// has to be one x/text knows. Blanking keeps every byte offset in place.
func neutralizeEncoding(text string) (string, *location) {
	m := encodingRe.FindStringSubmatchIndex(text)
	if m == nil {
		return text, nil
	}
	labelStart, labelEnd := m[4], m[5]
	if labelStart < 0 {
		labelStart, labelEnd = m[6], m[7]
	}
	label := text[labelStart:labelEnd]
	if isUTF8(label) {
		return text, nil
	}
	if _, err := htmlindex.Get(label); err != nil {
		return text, &location{off: labelStart, msg: fmt.Sprintf("System does not support '%s' encoding.", label)}
	}
	return text[:m[2]] + strings.Repeat(" ", m[3]-m[2]) + text[m[3]:], nil
}

func isUTF8(label string) bool {
	return strings.EqualFold(label, "utf-8") || strings.EqualFold(label, "utf8")
}
