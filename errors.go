package jwtdebug

import (
	"errors"
	"fmt"

	"github.com/cybergodev/jwtdebug/internal/core"
	"github.com/cybergodev/jwtdebug/internal/signing"
)

// Messages placed in DecodedToken.ErrorMessage and EncodedToken.JSONError.
const (
	MsgInvalidStructure = "Invalid JWT structure"
	MsgInvalidPayload   = "Invalid JWT payload"
	MsgInvalidJSON      = "Invalid JSON in Header or Payload"
)

// Predefined errors for errors.Is checks
var (
	ErrInvalidStructure  = errors.New("invalid token structure")
	ErrInvalidSegment    = errors.New("invalid token segment")
	ErrInvalidJSON       = errors.New("invalid JSON in header or payload")
	ErrInvalidAlgorithm  = errors.New("invalid or insecure algorithm")
	ErrSignatureMismatch = signing.ErrSignatureInvalid
)

type (
	// DecodeError reports text that is not valid base64url.
	DecodeError = core.DecodeError

	// SegmentDecodeError reports a header or payload segment that is not valid
	// base64url or does not hold a JSON object. Kind tells the causes apart.
	SegmentDecodeError = core.SegmentDecodeError
)

// StructureError reports token text that does not have exactly three segments.
type StructureError struct {
	Segments int
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("invalid token structure: expected %d segments, got %d", core.SegmentCount, e.Segments)
}

func (e *StructureError) Unwrap() error {
	return ErrInvalidStructure
}

// PayloadError reports an undecodable payload in an otherwise well-formed token.
type PayloadError struct {
	Err error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("invalid payload segment: %v", e.Err)
}

func (e *PayloadError) Unwrap() []error {
	return []error{ErrInvalidSegment, e.Err}
}

// InvalidJSONError reports encoder input that is not a JSON object.
type InvalidJSONError struct {
	Part string // "header" or "payload"
	Err  error
}

func (e *InvalidJSONError) Error() string {
	return fmt.Sprintf("invalid JSON in %s: %v", e.Part, e.Err)
}

func (e *InvalidJSONError) Unwrap() []error {
	return []error{ErrInvalidJSON, e.Err}
}
