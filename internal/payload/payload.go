// Package payload turns decoded QR text into a delegate identifier.
//
// A badge QR code usually carries a URL such as
// "https://checkin.example.org/scan/D42". Older badges carry the bare
// identifier. ExtractID handles both shapes.
package payload

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/nao1215/munscan/internal/model"
)

// scanPathRE matches the "/scan/{id}" path shape anywhere in the payload.
// The identifier stops at the next path separator, query, fragment or space.
var scanPathRE = regexp.MustCompile(`(?i)/scan/([^/?#\s]+)`)

// ExtractID returns the delegate identifier carried by a decoded payload.
//
// If the payload contains the scan path shape, the captured segment is
// URL-path-unescaped and trimmed. Otherwise the trimmed payload is used
// verbatim. An empty result means the payload must be ignored.
func ExtractID(raw string) model.DelegateID {
	if m := scanPathRE.FindStringSubmatch(raw); len(m) == 2 {
		segment := m[1]
		if unescaped, err := url.PathUnescape(segment); err == nil {
			segment = unescaped
		}
		return model.DelegateID(strings.TrimSpace(segment))
	}
	return model.DelegateID(strings.TrimSpace(raw))
}

// HasScanPath reports whether the payload uses the scan path shape.
func HasScanPath(raw string) bool {
	return scanPathRE.MatchString(raw)
}
