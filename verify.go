package jwtdebug

import (
	"fmt"
	"strings"

	"github.com/cybergodev/jwtdebug/internal/core"
	"github.com/cybergodev/jwtdebug/internal/security"
	"github.com/cybergodev/jwtdebug/internal/signing"
)

// Verify recomputes the signature of text with secret and compares it in constant
// time. The algorithm comes from the header and must be HS256, HS384 or HS512.
// Claims, including exp, are not checked.
func Verify(text, secret string) Verification {
	segments, ok := core.SplitToken(strings.TrimSpace(text))
	if !ok {
		return Verification{Err: &StructureError{Segments: len(segments)}}
	}

	header, err := core.DecodeSegment(segments[0])
	if err != nil {
		return Verification{Err: fmt.Errorf("failed to decode header: %w", err)}
	}

	alg, _ := header.Claims["alg"].(string)
	if core.IsInsecureAlgorithm(alg) {
		return Verification{Algorithm: alg, Err: fmt.Errorf("%w: %q", ErrInvalidAlgorithm, alg)}
	}

	method, err := signing.GetVerificationMethod(alg)
	if err != nil {
		return Verification{Algorithm: alg, Err: fmt.Errorf("%w: %w", ErrInvalidAlgorithm, err)}
	}

	key := []byte(secret)
	defer security.ZeroBytes(key)

	signingInput := core.SigningInput(segments[0], segments[1])
	if err := method.Verify(signingInput, segments[2], key); err != nil {
		return Verification{Algorithm: method.Alg(), Err: err}
	}
	return Verification{Valid: true, Algorithm: method.Alg()}
}
