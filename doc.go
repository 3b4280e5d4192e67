// Package jwtdebug decodes and encodes compact HS256 tokens for inspection.
//
// Decode never fails: it returns a DecodedToken describing whatever could be
// recovered from the text, with header and payload decoded independently and the
// exp claim evaluated against a clock. Encode turns header and payload JSON text
// plus a secret into a signed token, keeping object member order as written.
//
//	decoded := jwtdebug.Decode(tokenText)
//	if !decoded.IsStructurallyValid {
//		fmt.Println(decoded.ErrorMessage)
//	}
//
//	encoded := jwtdebug.Encode(jwtdebug.EncodingRequest{
//		HeaderText:  `{"alg":"HS256","typ":"JWT"}`,
//		PayloadText: `{"sub":"1234567890","name":"John Doe","iat":1516239022}`,
//		SecretText:  "secret",
//	})
//
// Both operations are pure and safe for concurrent use. Verify checks a signature
// against a secret; decoding alone is never an authentication decision.
package jwtdebug
