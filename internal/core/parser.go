package core

import (
	"strings"
)

// SegmentCount is the number of dot-separated segments in a compact token.
const SegmentCount = 3

// SplitToken splits token on '.' and reports whether it has exactly three segments.
// All segments are returned either way so partial input can still be inspected.
func SplitToken(token string) ([]string, bool) {
	segments := strings.Split(token, ".")
	return segments, len(segments) == SegmentCount
}

// SigningInput joins the emitted header and payload segments.
func SigningInput(headerSegment, payloadSegment string) string {
	var b strings.Builder
	b.Grow(len(headerSegment) + 1 + len(payloadSegment))
	b.WriteString(headerSegment)
	b.WriteByte('.')
	b.WriteString(payloadSegment)
	return b.String()
}

var insecureAlgorithms = map[string]struct{}{
	"":      {},
	"NONE":  {},
	"NULL":  {},
	"PLAIN": {},
	"HS1":   {},
	"RS1":   {},
	"ES1":   {},
	"HS224": {},
	"RS224": {},
	"ES224": {},
}

// IsInsecureAlgorithm reports whether alg must never be trusted for verification.
func IsInsecureAlgorithm(alg string) bool {
	_, exists := insecureAlgorithms[strings.ToUpper(strings.TrimSpace(alg))]
	return exists
}
