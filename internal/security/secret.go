// Package security holds the secret-strength advisory and the constant-time helpers
// shared by the signer and the verifier.
package security

import (
	"crypto/subtle"
	"strings"
)

// MinKeyLength is the smallest HS256 secret (in bytes) that is not reported as weak.
const MinKeyLength = 32

var commonWords = [...]string{
	"password", "passwd", "secret", "changeme", "letmein", "welcome",
	"qwerty", "asdfgh", "zxcvbn", "admin", "token", "test", "default", "example",
}

// IsWeakKey reports whether key looks too short or too predictable to protect an
// HS256 token. It is advisory: signing never refuses a weak key.
func IsWeakKey(key []byte) bool {
	if len(key) < MinKeyLength {
		return true
	}
	if isRepeatedUnit(key) || isSequential(key[:8]) {
		return true
	}
	if hasLowEntropy(key) {
		return true
	}

	lower := strings.ToLower(string(key))
	for _, w := range commonWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// isRepeatedUnit detects keys made of one short unit repeated, e.g. "abab..." or "xyzxyz...".
func isRepeatedUnit(key []byte) bool {
	for n := 1; n <= 4 && n < len(key); n++ {
		repeated := true
		for i := n; i < len(key); i++ {
			if key[i] != key[i%n] {
				repeated = false
				break
			}
		}
		if repeated {
			return true
		}
	}
	return false
}

func isSequential(prefix []byte) bool {
	ascending, descending := true, true
	for i := 1; i < len(prefix); i++ {
		if prefix[i] != prefix[i-1]+1 {
			ascending = false
		}
		if prefix[i] != prefix[i-1]-1 {
			descending = false
		}
	}
	return ascending || descending
}

// hasLowEntropy flags keys with few distinct bytes or fewer than three character classes.
func hasLowEntropy(key []byte) bool {
	var seen [256]bool
	unique := 0
	var lower, upper, digit, other bool
	for _, b := range key {
		if !seen[b] {
			seen[b] = true
			unique++
		}
		switch {
		case b >= 'a' && b <= 'z':
			lower = true
		case b >= 'A' && b <= 'Z':
			upper = true
		case b >= '0' && b <= '9':
			digit = true
		default:
			other = true
		}
	}

	if float64(unique)/float64(len(key)) < 0.3 {
		return true
	}

	classes := 0
	for _, has := range [...]bool{lower, upper, digit, other} {
		if has {
			classes++
		}
	}
	return classes < 3
}

// SecureCompare compares a and b in constant time with respect to their contents.
func SecureCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// ZeroBytes overwrites data in place.
func ZeroBytes(data []byte) {
	clear(data)
}
