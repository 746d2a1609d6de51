package version

import (
	"runtime"
	"runtime/debug"
)

var version = "dev"

// protocolModule is the LSP type library reported next to the version.
const protocolModule = "go.lsp.dev/protocol"

// Version returns the current version string
func Version() string {
	if pv := DependencyVersion(protocolModule); pv != "" {
		return version + " (lsp protocol " + pv + ")"
	}
	return version
}

// RawVersion returns the bare version without dependency details.
func RawVersion() string {
	return version
}

// DependencyVersion returns the linked version of a module from build
// info, or "" when it is unknown.
func DependencyVersion(path string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, dep := range info.Deps {
		if dep.Path == path {
			return dep.Version
		}
	}
	return ""
}

// Info is the machine-readable output of the version command.
type Info struct {
	Version         string `json:"version"`
	GoVersion       string `json:"goVersion"`
	Platform        string `json:"platform"`
	ProtocolVersion string `json:"protocolVersion,omitempty"`
}

// GetInfo collects version details about the running binary.
func GetInfo() Info {
	return Info{
		Version:         version,
		GoVersion:       runtime.Version(),
		Platform:        runtime.GOOS + "/" + runtime.GOARCH,
		ProtocolVersion: DependencyVersion(protocolModule),
	}
}
