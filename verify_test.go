package jwtdebug

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	t.Run("valid reference token", func(t *testing.T) {
		result := Verify(referenceToken, "secret")

		assert.True(t, result.Valid)
		assert.Equal(t, "HS256", result.Algorithm)
		assert.NoError(t, result.Err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		result := Verify(referenceToken, "your-256-bit-secret")

		assert.False(t, result.Valid)
		assert.Equal(t, "HS256", result.Algorithm)
		assert.ErrorIs(t, result.Err, ErrSignatureMismatch)
	})

	t.Run("tampered payload", func(t *testing.T) {
		token := mustEncode(t, referenceHeaderJSON, `{"role":"user"}`, "secret")
		forged := mustEncode(t, referenceHeaderJSON, `{"role":"admin"}`, "secret")
		parts := strings.Split(token, ".")
		forgedParts := strings.Split(forged, ".")

		result := Verify(parts[0]+"."+forgedParts[1]+"."+parts[2], "secret")
		assert.ErrorIs(t, result.Err, ErrSignatureMismatch)
	})

	t.Run("bad structure", func(t *testing.T) {
		result := Verify("abc.def", "secret")

		assert.False(t, result.Valid)
		assert.ErrorIs(t, result.Err, ErrInvalidStructure)
	})

	t.Run("undecodable header", func(t *testing.T) {
		result := Verify("!!!."+referencePayload+".sig", "secret")

		assert.False(t, result.Valid)
		var segErr *SegmentDecodeError
		assert.ErrorAs(t, result.Err, &segErr)
	})

	t.Run("undecodable signature", func(t *testing.T) {
		result := Verify(referenceHeader+"."+referencePayload+".***", "secret")

		assert.False(t, result.Valid)
		var decodeErr *DecodeError
		assert.ErrorAs(t, result.Err, &decodeErr)
	})
}

func TestVerifyAlgorithms(t *testing.T) {
	const secret = "Kx9#mP2$vL8@nQ5!wR7&tY3^uI6*oE4%"

	for _, method := range []jwt.SigningMethod{jwt.SigningMethodHS256, jwt.SigningMethodHS384, jwt.SigningMethodHS512} {
		t.Run(method.Alg(), func(t *testing.T) {
			token, err := jwt.NewWithClaims(method, jwt.MapClaims{
				"sub": "user-1",
				"exp": time.Now().Add(time.Hour).Unix(),
			}).SignedString([]byte(secret))
			require.NoError(t, err)

			result := Verify(token, secret)
			assert.True(t, result.Valid, "%v", result.Err)
			assert.Equal(t, method.Alg(), result.Algorithm)

			decoded := Decode(token)
			assert.True(t, decoded.IsStructurallyValid)
			assert.Equal(t, "user-1", decoded.Payload["sub"])
			assert.False(t, decoded.IsExpired)
		})
	}
}

func TestVerifyRejectsAlgorithms(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"none", `{"alg":"none"}`},
		{"missing", `{"typ":"JWT"}`},
		{"asymmetric", `{"alg":"RS256"}`},
		{"weak hash", `{"alg":"HS224"}`},
		{"non-string", `{"alg":256}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := mustEncode(t, tt.header, `{"sub":"x"}`, "secret")

			result := Verify(token, "secret")
			assert.False(t, result.Valid)
			assert.ErrorIs(t, result.Err, ErrInvalidAlgorithm)
		})
	}
}
