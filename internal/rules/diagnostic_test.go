package rules

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDiagnostic(t *testing.T) {
	r := NewRange(4, 2, 4, 9)
	d := NewDiagnostic(r, CodeTemplatedValue, "test message", SeverityError)

	assert.Equal(t, CodeTemplatedValue, d.Code)
	assert.Equal(t, "test message", d.Message)
	assert.Equal(t, SeverityError, d.Severity)
	assert.Equal(t, 4, d.Line())
	assert.False(t, IsPointRange(d.Range))
	assert.True(t, IsPointRange(NewPointRange(1, 1)))
}

func TestDiagnostic_WithDocURL(t *testing.T) {
	base := NewDiagnostic(NewPointRange(0, 0), CodeSchema, "msg", SeverityError)
	d := base.WithDocURL("https://example.com/doc")

	assert.Equal(t, "https://example.com/doc", d.DocURL)
	assert.Empty(t, base.DocURL, "WithDocURL must not modify the receiver")
}

func TestDiagnostic_JSON(t *testing.T) {
	d := NewDiagnostic(NewPointRange(9, 3), CodeSyntax, "unexpected EOF", SeverityError)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"range": {"start": {"line": 9, "column": 3}, "end": {"line": 9, "column": 3}},
		"severity": "error",
		"code": "syntax",
		"message": "unexpected EOF"
	}`, string(data))

	var parsed Diagnostic
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, d, parsed)
}

func TestSeverity(t *testing.T) {
	for _, name := range []string{"error", "warning", "information", "hint"} {
		sev, err := ParseSeverity(name)
		require.NoError(t, err)
		assert.Equal(t, name, sev.String())
	}

	info, err := ParseSeverity("info")
	require.NoError(t, err)
	assert.Equal(t, SeverityInformation, info)

	_, err = ParseSeverity("fatal")
	require.Error(t, err)

	_, err = Severity(42).MarshalText()
	require.Error(t, err)
	assert.Equal(t, "severity(42)", Severity(42).String())
}

func TestSortDiagnostics(t *testing.T) {
	ds := []Diagnostic{
		NewDiagnostic(NewPointRange(3, 0), CodeSchema, "b", SeverityError),
		NewDiagnostic(NewRange(1, 4, 1, 8), CodeTemplatedValue, "a", SeverityError),
		NewDiagnostic(NewPointRange(1, 4), CodeSchema, "c", SeverityError),
		NewDiagnostic(NewPointRange(0, 9), CodeSyntax, "d", SeverityError),
	}

	SortDiagnostics(ds)

	got := make([]string, 0, len(ds))
	for _, d := range ds {
		got = append(got, d.Message)
	}
	assert.Equal(t, []string{"d", "c", "a", "b"}, got)
}
