// Package textpos converts byte offsets in document text into the
// zero-based line/character positions used by the Language Server Protocol.
//
// Columns are measured in UTF-16 code units, matching the LSP default
// position encoding. Lines are terminated by "\n", "\r\n" or a lone "\r".
package textpos

import (
	"sort"
	"unicode/utf8"
)

// Position is a zero-based line and UTF-16 column.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range is a half-open span between two positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Point returns a zero-width range at p.
func Point(p Position) Range {
	return Range{Start: p, End: p}
}

// Less orders positions by line, then column.
func (p Position) Less(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Column < q.Column
}

// Index holds the line-start table for a single text snapshot.
// It is immutable once built.
type Index struct {
	text       string
	lineStarts []int
}

// New precomputes line starts for text.
func New(text string) *Index {
	starts := make([]int, 1, 64)
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			starts = append(starts, i+1)
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				continue
			}
			starts = append(starts, i+1)
		}
	}
	return &Index{text: text, lineStarts: starts}
}

// LineCount returns the number of lines, counting a trailing empty line.
func (x *Index) LineCount() int {
	return len(x.lineStarts)
}

// LineStart returns the byte offset at which line begins.
// Out-of-range lines are clamped.
func (x *Index) LineStart(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(x.lineStarts) {
		return len(x.text)
	}
	return x.lineStarts[line]
}

// Position converts a byte offset into a position. Offsets outside
// [0, len(text)] are clamped; len(text) maps to the position just after
// the last character.
func (x *Index) Position(offset int) Position {
	offset = max(0, min(offset, len(x.text)))
	line := sort.Search(len(x.lineStarts), func(i int) bool {
		return x.lineStarts[i] > offset
	}) - 1
	return Position{
		Line:   line,
		Column: utf16Len(x.text[x.lineStarts[line]:offset]),
	}
}

// Range converts a [start, end) byte span into a range.
func (x *Index) Range(start, end int) Range {
	if end < start {
		end = start
	}
	return Range{Start: x.Position(start), End: x.Position(end)}
}

// Offset converts a position back into a byte offset. Columns past the
// end of the line are clamped to the line end.
func (x *Index) Offset(p Position) int {
	if p.Line < 0 {
		return 0
	}
	if p.Line >= len(x.lineStarts) {
		return len(x.text)
	}
	start := x.lineStarts[p.Line]
	end := len(x.text)
	if p.Line+1 < len(x.lineStarts) {
		end = x.lineStarts[p.Line+1]
	}
	col := 0
	for i, r := range x.text[start:end] {
		if col >= p.Column || r == '\n' || r == '\r' {
			return start + i
		}
		col += runeUTF16Len(r)
	}
	return end
}

// utf16Len counts UTF-16 code units in s. Invalid bytes count as one unit each.
func utf16Len(s string) int {
	n := 0
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		n += runeUTF16Len(r)
		s = s[size:]
	}
	return n
}

func runeUTF16Len(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}
