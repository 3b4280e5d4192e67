package server

import (
	"fmt"
)

const maxSecretLength = 4096

// ValidationError reports a request field that is missing or unacceptable.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation failed for field '%s': %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

type decodeRequest struct {
	Token *string `json:"token"`
}

func (r *decodeRequest) validate() error {
	return required("token", r.Token)
}

type encodeRequest struct {
	Header  *string `json:"header"`
	Payload *string `json:"payload"`
	Secret  string  `json:"secret"`
}

func (r *encodeRequest) validate() error {
	if err := required("header", r.Header); err != nil {
		return err
	}
	if err := required("payload", r.Payload); err != nil {
		return err
	}
	return validateSecret(r.Secret)
}

type verifyRequest struct {
	Token  *string `json:"token"`
	Secret string  `json:"secret"`
}

func (r *verifyRequest) validate() error {
	if err := required("token", r.Token); err != nil {
		return err
	}
	return validateSecret(r.Secret)
}

func required(field string, value *string) error {
	if value == nil {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

func validateSecret(secret string) error {
	if len(secret) > maxSecretLength {
		return &ValidationError{
			Field:   "secret",
			Message: fmt.Sprintf("too long: maximum %d bytes", maxSecretLength),
		}
	}
	return nil
}
