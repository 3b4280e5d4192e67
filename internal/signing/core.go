// Package signing computes and checks HMAC signatures over token signing input.
package signing

import (
	"crypto"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/cybergodev/jwtdebug/internal/security"
)

var (
	// ErrUnsupportedAlgorithm is returned for algorithms outside the HMAC-SHA2 family.
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")

	// ErrSignatureInvalid is returned when a signature does not match the signing input.
	ErrSignatureInvalid = errors.New("signature verification failed")
)

// Method represents an HMAC signing method for tokens.
type Method interface {
	Alg() string
	Hash() crypto.Hash
	Sign(signingString string, key []byte) string
	Verify(signingString string, signature string, key []byte) error
}

// Sign computes HMAC-SHA256 over message keyed by the UTF-8 bytes of secret.
// Every secret is accepted, including the empty one.
func Sign(message []byte, secret string) []byte {
	key := []byte(secret)
	defer security.ZeroBytes(key)

	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return mac.Sum(nil)
}

// GetVerificationMethod resolves the method named by a token header for verification.
func GetVerificationMethod(alg string) (Method, error) {
	normalized := strings.ToUpper(strings.TrimSpace(alg))
	if normalized == "" {
		return nil, fmt.Errorf("%w: algorithm cannot be empty", ErrUnsupportedAlgorithm)
	}

	method := GetHMACMethod(normalized)
	if method == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}
	return method, nil
}
