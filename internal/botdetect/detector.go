// Package botdetect classifies clients as link-preview crawlers or end users.
package botdetect

import "strings"

// LarkSignature is a fragment of the User-Agent sent by the Lark/Feishu link
// unfurling bot. Ordinary browsers on the same Chrome build match as well;
// those users get the preview page instead of a redirect.
const LarkSignature = "Chrome/91.0.4450.0"

// Detector reports whether a User-Agent belongs to a preview crawler.
type Detector interface {
	IsPreviewCrawler(userAgent string) bool
}

// Func adapts a plain predicate to the Detector interface.
type Func func(userAgent string) bool

// IsPreviewCrawler calls f.
func (f Func) IsPreviewCrawler(userAgent string) bool {
	return f(userAgent)
}

// Signatures matches a User-Agent that contains any of its fragments.
// Matching is case-sensitive.
type Signatures []string

// NewSignatures returns a detector for the given fragments, falling back to
// LarkSignature when none are configured. Empty fragments are skipped.
func NewSignatures(fragments ...string) Signatures {
	var sigs Signatures
	for _, f := range fragments {
		if f != "" {
			sigs = append(sigs, f)
		}
	}
	if len(sigs) == 0 {
		sigs = Signatures{LarkSignature}
	}
	return sigs
}

// IsPreviewCrawler implements Detector.
func (s Signatures) IsPreviewCrawler(userAgent string) bool {
	for _, sig := range s {
		if strings.Contains(userAgent, sig) {
			return true
		}
	}
	return false
}
