// Package placeholder finds scaffold text that nuspec generators leave in a
// manifest for the author to replace.
package placeholder

import (
	"strings"

	"github.com/tinovyatkin/nuspec-lsp/internal/xmltree"
)

// Message is reported for every text node holding a placeholder token.
const Message = "Templated value which should be removed"

// Tokens are matched case-insensitively as substrings of text content.
var Tokens = []string{
	"__replace",
	"space_separated",
	"tag1",
}

// Finding is a text node that contains at least one token. Start and End
// are byte offsets of the node in the scanned text.
type Finding struct {
	Message string
	Start   int
	End     int
}

// Scan reports one Finding per offending text or CDATA node, in document
// order. Attribute values, comments and markup are not inspected.
func Scan(text string) []Finding {
	var findings []Finding
	for n := range xmltree.Parse(text).Texts() {
		if containsToken(n.Value) {
			findings = append(findings, Finding{Message: Message, Start: n.Start, End: n.End})
		}
	}
	return findings
}

func containsToken(s string) bool {
	lower := strings.ToLower(s)
	for _, tok := range Tokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}
