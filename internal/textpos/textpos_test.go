package textpos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPosition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		offset int
		want   Position
	}{
		{name: "start", text: "abc", offset: 0, want: Position{0, 0}},
		{name: "middle", text: "abc", offset: 2, want: Position{0, 2}},
		{name: "end of text", text: "abc", offset: 3, want: Position{0, 3}},
		{name: "past end clamps", text: "abc", offset: 10, want: Position{0, 3}},
		{name: "negative clamps", text: "abc", offset: -4, want: Position{0, 0}},
		{name: "newline belongs to line", text: "ab\ncd", offset: 2, want: Position{0, 2}},
		{name: "after newline", text: "ab\ncd", offset: 3, want: Position{1, 0}},
		{name: "trailing newline end", text: "ab\n", offset: 3, want: Position{1, 0}},
		{name: "crlf", text: "ab\r\ncd", offset: 4, want: Position{1, 0}},
		{name: "between cr and lf", text: "ab\r\ncd", offset: 3, want: Position{0, 3}},
		{name: "lone cr", text: "ab\rcd", offset: 4, want: Position{1, 1}},
		{name: "multibyte utf-8", text: "héllo", offset: 3, want: Position{0, 2}},
		{name: "astral plane counts two", text: "a😀b", offset: 5, want: Position{0, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, New(tt.text).Position(tt.offset))
		})
	}
}

func TestRange(t *testing.T) {
	t.Parallel()

	idx := New("<id>\n  __replace\n</id>")
	got := idx.Range(5, 16)
	assert.Equal(t, Range{Start: Position{1, 0}, End: Position{1, 11}}, got)

	// Inverted spans collapse to the start.
	assert.Equal(t, Point(Position{1, 0}), idx.Range(5, 2))
}

func TestLineCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, New("").LineCount())
	assert.Equal(t, 2, New("a\n").LineCount())
	assert.Equal(t, 3, New("a\r\nb\rc").LineCount())
}

func TestOffsetRoundTrip(t *testing.T) {
	t.Parallel()

	text := "<package>\r\n  <id>😀x</id>\n</package>"
	idx := New(text)
	for off := 0; off <= len(text); off++ {
		// Skip offsets that fall inside a multi-byte rune or between CR and LF.
		if off < len(text) && (text[off]&0xC0 == 0x80 || (off > 0 && text[off-1] == '\r' && text[off] == '\n')) {
			continue
		}
		assert.Equal(t, off, idx.Offset(idx.Position(off)), "offset %d", off)
	}
}

func TestPositionLess(t *testing.T) {
	t.Parallel()

	assert.True(t, Position{0, 5}.Less(Position{1, 0}))
	assert.True(t, Position{1, 0}.Less(Position{1, 1}))
	assert.False(t, Position{1, 1}.Less(Position{1, 1}))
}
