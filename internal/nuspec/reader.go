// Package nuspec reads manifest files from disk or stdin and decodes them
// to UTF-8 text for linting.
package nuspec

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"go.lsp.dev/uri"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// StdinURI identifies a manifest read from standard input.
const StdinURI = "untitled:stdin"

// Source is a decoded manifest.
type Source struct {
	// Path is the argument the manifest was read from ("-" for stdin).
	Path string
	// URI is the document URI used as the diagnostics key.
	URI string
	// Text is the UTF-8 document text.
	Text string
}

// open opens a manifest path for reading.
// If path is "-", returns os.Stdin and a no-op closer.
func open(path string) (io.Reader, func() error, error) {
	if path == "-" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// ReadFile reads and decodes the manifest at path.
func ReadFile(path string) (*Source, error) {
	r, closer, err := open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = closer() }()

	return Read(r, path)
}

// Read reads and decodes a manifest from r. path names the source.
func Read(r io.Reader, path string) (*Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return &Source{Path: path, URI: DocumentURI(path), Text: text}, nil
}

// DocumentURI returns the file URI for path.
func DocumentURI(path string) string {
	if path == "-" {
		return StdinURI
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return string(uri.File(path))
}

var declRe = regexp.MustCompile(`^\s*<\?xml[^>]*?\sencoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)

// Decode converts data to UTF-8. A byte order mark wins; otherwise an
// ASCII-compatible encoding named in the XML declaration is honored. Text
// already in UTF-8, or in an encoding x/text does not know, passes through
// unchanged so the validator can report it.
func Decode(data []byte) (string, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(declared(data)), data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// declared returns a decoder for the declaration's encoding.
func declared(data []byte) transform.Transformer {
	head := data[:min(len(data), 256)]
	if bytes.HasPrefix(head, []byte{0xEF, 0xBB, 0xBF}) {
		return transform.Nop
	}
	m := declRe.FindSubmatch(head)
	if m == nil {
		return transform.Nop
	}
	enc, err := htmlindex.Get(string(m[1]))
	if err != nil {
		return transform.Nop
	}
	switch name, _ := htmlindex.Name(enc); name {
	case "utf-8", "utf-16le", "utf-16be":
		return transform.Nop
	}
	return enc.NewDecoder()
}
