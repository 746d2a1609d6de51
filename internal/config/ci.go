package config

import "github.com/gkampitakis/ciinfo"

// ColorEnabled resolves a color mode for an output stream.
// "always" → true, "never" → false, "auto" → the stream is a terminal and
// the process is not running in CI.
func ColorEnabled(mode string, isTerminal bool) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default: // "auto"
		return isTerminal && !ciinfo.IsCI
	}
}

// CIName returns the detected CI provider name, or empty string if not in CI.
func CIName() string {
	if !ciinfo.IsCI {
		return ""
	}
	return ciinfo.Name
}
