package jwtdebug

import (
	"strings"
	"time"

	"github.com/cybergodev/jwtdebug/internal/core"
)

// Decoder inspects token text. A Decoder holds no per-call state and is safe for
// concurrent use.
type Decoder struct {
	clock Clock
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithClock sets the clock used to evaluate the exp claim.
func WithClock(clock Clock) DecoderOption {
	return func(d *Decoder) {
		if clock != nil {
			d.clock = clock
		}
	}
}

// NewDecoder creates a Decoder that reads the wall clock unless WithClock is given.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{clock: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var defaultDecoder = NewDecoder()

// Decode inspects text with the wall clock. See (*Decoder).Decode.
func Decode(text string) DecodedToken {
	return defaultDecoder.Decode(text)
}

// segmentResult is the independent outcome of decoding one segment.
type segmentResult struct {
	claims map[string]any
	raw    string
	err    error
}

func decodeSegmentAt(segments []string, i int) segmentResult {
	if i >= len(segments) {
		return segmentResult{}
	}
	seg, err := core.DecodeSegment(segments[i])
	return segmentResult{claims: seg.Claims, raw: seg.Raw, err: err}
}

// Decode splits text into segments and decodes header and payload independently,
// so a failure in one never hides the other. Empty or blank text yields an empty,
// structurally valid result. Decode performs no signature verification.
func (d *Decoder) Decode(text string) DecodedToken {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return DecodedToken{IsStructurallyValid: true}
	}

	segments, ok := core.SplitToken(trimmed)
	result := DecodedToken{IsStructurallyValid: ok}
	if !ok {
		result.ErrorMessage = MsgInvalidStructure
		result.Err = &StructureError{Segments: len(segments)}
	}

	header := decodeSegmentAt(segments, 0)
	payload := decodeSegmentAt(segments, 1)

	result.Header, result.RawHeader, result.HeaderErr = header.claims, header.raw, header.err
	result.Payload, result.RawPayload, result.PayloadErr = payload.claims, payload.raw, payload.err

	if payload.err != nil && result.IsStructurallyValid {
		result.IsStructurallyValid = false
		result.ErrorMessage = MsgInvalidPayload
		result.Err = &PayloadError{Err: payload.err}
	}

	if len(segments) > 2 {
		signature := segments[2]
		result.Signature = &signature
	}

	if expMs, ok := expiryMillis(result.Payload); ok {
		result.Expiry = expiryTime(expMs)
		result.IsExpired = isExpiredAt(d.clock(), expMs)
	}

	return result
}
