package jwtdebug

import (
	"time"
)

// DecodedToken is the result of inspecting token text. It is built fresh by every
// Decode call and never mutated afterwards. Nil pointers and maps stand for absent values.
type DecodedToken struct {
	Header              map[string]any
	Payload             map[string]any
	Signature           *string // third segment, verbatim
	IsStructurallyValid bool
	ErrorMessage        string
	Expiry              *time.Time
	IsExpired           bool

	// RawHeader and RawPayload hold the decoded JSON text whenever the base64url
	// step succeeded, so malformed JSON can still be shown.
	RawHeader  string
	RawPayload string

	// HeaderErr and PayloadErr carry the independent per-segment failure, if any.
	HeaderErr  error
	PayloadErr error

	// Err is set together with ErrorMessage.
	Err error
}

// EncodingRequest holds the raw text an encoder works from.
type EncodingRequest struct {
	HeaderText  string
	PayloadText string
	SecretText  string
}

// EncodedToken is the result of encoding. Exactly one of Token and JSONError is set.
type EncodedToken struct {
	Token     string
	JSONError string

	// WeakSecret flags a short or predictable secret. It never prevents signing.
	WeakSecret bool

	Err error
}

// Verification is the outcome of checking a token signature against a secret.
type Verification struct {
	Valid     bool
	Algorithm string
	Err       error
}
