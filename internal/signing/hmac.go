package signing

import (
	"crypto"
	"crypto/hmac"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"fmt"

	"github.com/cybergodev/jwtdebug/internal/core"
	"github.com/cybergodev/jwtdebug/internal/security"
)

type hmacSigningMethod struct {
	Name     string
	HashFunc crypto.Hash
}

func (h *hmacSigningMethod) sum(signingString string, key []byte) []byte {
	mac := hmac.New(h.HashFunc.New, key)
	mac.Write([]byte(signingString))
	return mac.Sum(nil)
}

// Sign returns the base64url signature of signingString.
func (h *hmacSigningMethod) Sign(signingString string, key []byte) string {
	return core.EncodeBase64URL(h.sum(signingString, key))
}

// Verify checks signature against signingString in constant time.
func (h *hmacSigningMethod) Verify(signingString string, signature string, key []byte) error {
	sigBytes, err := core.DecodeBase64URL(signature)
	if err != nil {
		return fmt.Errorf("failed to decode signature: %w", err)
	}

	expected := h.sum(signingString, key)
	defer security.ZeroBytes(expected)

	if !security.SecureCompare(sigBytes, expected) {
		return ErrSignatureInvalid
	}
	return nil
}

func (h *hmacSigningMethod) Alg() string {
	return h.Name
}

func (h *hmacSigningMethod) Hash() crypto.Hash {
	return h.HashFunc
}

var (
	hmacHS256 = &hmacSigningMethod{"HS256", crypto.SHA256}
	hmacHS384 = &hmacSigningMethod{"HS384", crypto.SHA384}
	hmacHS512 = &hmacSigningMethod{"HS512", crypto.SHA512}
)

// GetHMACMethod returns the HMAC signing method for the given algorithm
func GetHMACMethod(alg string) Method {
	switch alg {
	case "HS256":
		return hmacHS256
	case "HS384":
		return hmacHS384
	case "HS512":
		return hmacHS512
	default:
		return nil
	}
}
