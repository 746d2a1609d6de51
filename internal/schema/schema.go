// Package schema compiles the nuspec XML Schema and validates manifest
// text against it.
package schema

import (
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/jacoelho/xsd"
)

// Namespace is the target namespace of the bundled nuspec schema. Only
// documents in this namespace have schema information; manifests in an
// earlier nuspec namespace or in no namespace are reported as such.
const Namespace = "http://schemas.microsoft.com/packaging/2015/06/nuspec.xsd"

const bundled = "nuspec.xsd"

//go:embed nuspec.xsd
var files embed.FS

// Schema is a compiled XML Schema. It is safe for concurrent use.
type Schema struct {
	compiled *xsd.Schema
}

var load = sync.OnceValues(func() (*Schema, error) {
	return Compile(files, bundled)
})

// Compile loads the schema at location from fsys. Imports and includes
// resolve against fsys only.
func Compile(fsys fs.FS, location string) (*Schema, error) {
	compiled, err := xsd.LoadWithOptions(fsys, location, xsd.NewLoadOptions())
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", location, err)
	}
	return &Schema{compiled: compiled}, nil
}

// Load returns the bundled nuspec schema. It is compiled on first use and
// shared afterwards.
func Load() (*Schema, error) {
	return load()
}

// MustLoad is like Load but panics if the bundled schema does not compile.
func MustLoad() *Schema {
	s, err := Load()
	if err != nil {
		panic("schema: bundled nuspec schema: " + err.Error())
	}
	return s
}
