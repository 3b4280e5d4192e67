package core

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeError reports text that is not valid base64url.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid base64url: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

var (
	rawURL = base64.RawURLEncoding

	// Standard-alphabet input is folded onto the URL alphabet before decoding.
	stdToURL = strings.NewReplacer("+", "-", "/", "_")
)

// EncodeBase64URL encodes b with the URL-safe alphabet and no padding.
func EncodeBase64URL(b []byte) string {
	return rawURL.EncodeToString(b)
}

// DecodeBase64URL decodes s, accepting padded or unpadded input in either the URL-safe
// or the standard alphabet.
func DecodeBase64URL(s string) ([]byte, error) {
	s = stdToURL.Replace(strings.TrimRight(s, "="))

	b, err := rawURL.DecodeString(s)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return b, nil
}
