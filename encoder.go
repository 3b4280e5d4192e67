package jwtdebug

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/cybergodev/jwtdebug/internal/core"
	"github.com/cybergodev/jwtdebug/internal/security"
	"github.com/cybergodev/jwtdebug/internal/signing"
)

// Encode builds an HS256 token from raw header, payload and secret text. Header and
// payload must each be a JSON object; otherwise no token is produced and JSONError is
// set. Output is deterministic for identical input.
func Encode(req EncodingRequest) EncodedToken {
	headerSegment, err := core.EncodeSegment(req.HeaderText)
	if err != nil {
		return invalidJSON("header", err)
	}
	payloadSegment, err := core.EncodeSegment(req.PayloadText)
	if err != nil {
		return invalidJSON("payload", err)
	}

	signingInput := core.SigningInput(headerSegment, payloadSegment)
	signature := signing.Sign([]byte(signingInput), req.SecretText)

	return EncodedToken{
		Token:      signingInput + "." + core.EncodeBase64URL(signature),
		WeakSecret: security.IsWeakKey([]byte(req.SecretText)),
	}
}

func invalidJSON(part string, err error) EncodedToken {
	return EncodedToken{
		JSONError: MsgInvalidJSON,
		Err:       &InvalidJSONError{Part: part, Err: err},
	}
}

var claimsJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// EncodeClaims marshals header and payload and signs them with secret. Maps are
// serialized with sorted keys; use Encode to control member order.
func EncodeClaims(header, payload any, secret string) (string, error) {
	headerText, err := claimsJSON.MarshalToString(header)
	if err != nil {
		return "", fmt.Errorf("failed to marshal header: %w", err)
	}
	payloadText, err := claimsJSON.MarshalToString(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	encoded := Encode(EncodingRequest{HeaderText: headerText, PayloadText: payloadText, SecretText: secret})
	if encoded.Err != nil {
		return "", encoded.Err
	}
	return encoded.Token, nil
}
