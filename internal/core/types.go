package core

import (
	"errors"
	"fmt"
)

// SegmentKind classifies why a segment could not be decoded.
type SegmentKind int

const (
	KindBase64 SegmentKind = iota + 1
	KindJSON
	KindNotObject
)

func (k SegmentKind) String() string {
	switch k {
	case KindBase64:
		return "base64"
	case KindJSON:
		return "json"
	case KindNotObject:
		return "not_object"
	default:
		return "unknown"
	}
}

// ErrNotObject is returned when a JSON value parses but is not an object.
var ErrNotObject = errors.New("JSON value is not an object")

// SegmentDecodeError wraps the base64url or JSON failure behind an undecodable segment.
type SegmentDecodeError struct {
	Kind SegmentKind
	Err  error
}

func (e *SegmentDecodeError) Error() string {
	switch e.Kind {
	case KindBase64:
		return fmt.Sprintf("segment is not valid base64url: %v", e.Err)
	case KindNotObject:
		return "segment is not a JSON object"
	default:
		return fmt.Sprintf("segment is not valid JSON: %v", e.Err)
	}
}

func (e *SegmentDecodeError) Unwrap() error {
	return e.Err
}

// Segment is a decoded header or payload segment.
type Segment struct {
	// Raw is the UTF-8 text the segment decoded to. It is set whenever the
	// base64url step succeeded, even if the text is not valid JSON.
	Raw    string
	Claims map[string]any
}
