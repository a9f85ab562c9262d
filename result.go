package clamd

import "strings"

const (
	responseOK     = "stream: OK"
	responseTooBig = "INSTREAM size limit exceeded. ERROR"

	foundPrefix = "stream: "
	foundSuffix = " FOUND"
)

// newScanResult classifies a raw daemon response. The raw bytes normally end
// with a single NUL terminator, which is stripped before matching; a missing
// terminator is tolerated so arbitrary daemon output still classifies.
func newScanResult(raw []byte) *ScanResult {
	return parseResponse(decodeResponse(raw))
}

// decodeResponse renders raw daemon bytes as text, dropping the trailing NUL
// terminator when present.
func decodeResponse(raw []byte) string {
	if n := len(raw); n > 0 && raw[n-1] == 0 {
		raw = raw[:n-1]
	}
	return string(raw)
}

// parseResponse classifies decoded response text. Each test is a whole-string
// match and the first match wins; input matching nothing degrades to
// StatusUnknown rather than failing.
//
// The FOUND case strips the fixed "stream: " prefix and " FOUND" suffix to
// recover the signature name. A name that itself ends in " FOUND" would be
// truncated; known limitation of the wire grammar.
func parseResponse(text string) *ScanResult {
	switch {
	case text == responseOK:
		return &ScanResult{Response: text, Status: StatusOK}
	case isFound(text):
		return &ScanResult{
			Response: text,
			Status:   StatusFound,
			Found:    text[len(foundPrefix) : len(text)-len(foundSuffix)],
		}
	case text == responseTooBig:
		return &ScanResult{Response: text, Status: StatusErrorTooBig}
	default:
		return &ScanResult{Response: text, Status: StatusUnknown}
	}
}

// isFound reports whether text matches "stream: <name> FOUND" with a
// non-empty name.
func isFound(text string) bool {
	return strings.HasPrefix(text, foundPrefix) &&
		strings.HasSuffix(text, foundSuffix) &&
		len(text) > len(foundPrefix)+len(foundSuffix)
}
