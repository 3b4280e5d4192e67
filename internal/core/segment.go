package core

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fastjson"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// claimsAPI decodes segments; numbers stay json.Number so large integers are not rounded.
var claimsAPI = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// canonicalAPI drives the iterator and output stream of CanonicalObject.
var canonicalAPI = jsoniter.Config{EscapeHTML: false}.Froze()

// ValidateObject checks that text is exactly one well-formed JSON object.
func ValidateObject(text string) error {
	if err := fastjson.Validate(text); err != nil {
		return err
	}
	v, err := fastjson.Parse(text)
	if err != nil {
		return err
	}
	if v.Type() != fastjson.TypeObject {
		return fmt.Errorf("%w: got %s", ErrNotObject, v.Type())
	}
	return nil
}

// EncodeSegment serializes the JSON object in text canonically and encodes the UTF-8
// bytes as base64url.
func EncodeSegment(text string) (string, error) {
	b, err := CanonicalObject(text)
	if err != nil {
		return "", err
	}
	return EncodeBase64URL(b), nil
}

// CanonicalObject returns the compact form of the JSON object in text. Object members
// keep their written order; a repeated key keeps its first position and its last
// value. Numbers use the shortest round-trip form (integer literals are kept as
// written), strings are re-escaped with the short escapes and lone surrogates
// become U+FFFD.
func CanonicalObject(text string) ([]byte, error) {
	if err := ValidateObject(text); err != nil {
		return nil, err
	}

	iter := jsoniter.ParseString(canonicalAPI, text)
	stream := jsoniter.NewStream(canonicalAPI, nil, len(text))
	writeCanonical(stream, iter)
	if iter.Error != nil && !errors.Is(iter.Error, io.EOF) {
		return nil, iter.Error
	}
	return stream.Buffer(), nil
}

func writeCanonical(stream *jsoniter.Stream, iter *jsoniter.Iterator) {
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		var keys []string
		members := make(map[string][]byte)
		iter.ReadMapCB(func(it *jsoniter.Iterator, key string) bool {
			if _, dup := members[key]; !dup {
				keys = append(keys, key)
			}
			members[key] = it.SkipAndReturnBytes()
			return true
		})

		stream.WriteObjectStart()
		for i, key := range keys {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteRaw(string(appendQuoted(nil, key)))
			stream.WriteRaw(":")
			writeCanonical(stream, jsoniter.ParseBytes(canonicalAPI, members[key]))
		}
		stream.WriteObjectEnd()
	case jsoniter.ArrayValue:
		stream.WriteArrayStart()
		first := true
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			if !first {
				stream.WriteMore()
			}
			first = false
			writeCanonical(stream, it)
			return true
		})
		stream.WriteArrayEnd()
	case jsoniter.StringValue:
		stream.WriteRaw(string(appendQuoted(nil, iter.ReadString())))
	case jsoniter.NumberValue:
		stream.WriteRaw(formatNumber(string(iter.ReadNumber())))
	case jsoniter.BoolValue:
		stream.WriteBool(iter.ReadBool())
	case jsoniter.NilValue:
		iter.ReadNil()
		stream.WriteNil()
	default:
		iter.ReportError("writeCanonical", "unexpected value")
	}
}

const hexDigits = "0123456789abcdef"

// appendQuoted appends s as a JSON string. Only the quote, the backslash and control
// characters are escaped; invalid UTF-8 becomes U+FFFD.
func appendQuoted(dst []byte, s string) []byte {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "\uFFFD")
	}

	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		var esc string
		switch c {
		case '"':
			esc = `\"`
		case '\\':
			esc = `\\`
		case '\b':
			esc = `\b`
		case '\f':
			esc = `\f`
		case '\n':
			esc = `\n`
		case '\r':
			esc = `\r`
		case '\t':
			esc = `\t`
		default:
			if c >= 0x20 {
				continue
			}
		}

		dst = append(dst, s[start:i]...)
		if esc != "" {
			dst = append(dst, esc...)
		} else {
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
		}
		start = i + 1
	}
	dst = append(dst, s[start:]...)
	return append(dst, '"')
}

// formatNumber rewrites a JSON number literal in its shortest round-trip form.
// Integer literals are kept as written so values beyond 2^53 survive; a literal
// outside the float64 range is also kept.
func formatNumber(literal string) string {
	if isIntegerLiteral(literal) {
		if literal == "-0" {
			return "0"
		}
		return literal
	}

	f, err := strconv.ParseFloat(literal, 64)
	if err != nil || math.IsInf(f, 0) {
		return literal
	}
	return formatFloat(f)
}

func isIntegerLiteral(literal string) bool {
	digits := strings.TrimPrefix(literal, "-")
	if digits == "" {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	return true
}

// formatFloat prints f the way ECMAScript Number::toString does: plain notation for
// decimal exponents in [-6, 21), exponential notation otherwise.
func formatFloat(f float64) string {
	if f == 0 {
		return "0"
	}

	mantissa, exponent, _ := strings.Cut(strconv.FormatFloat(math.Abs(f), 'e', -1, 64), "e")
	digits := strings.Replace(mantissa, ".", "", 1)
	exp, _ := strconv.Atoi(exponent)
	n, k := exp+1, len(digits)

	var b strings.Builder
	if f < 0 {
		b.WriteByte('-')
	}
	switch {
	case k <= n && n <= 21:
		b.WriteString(digits)
		b.WriteString(strings.Repeat("0", n-k))
	case 0 < n && n <= 21:
		b.WriteString(digits[:n])
		b.WriteByte('.')
		b.WriteString(digits[n:])
	case -6 < n && n <= 0:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -n))
		b.WriteString(digits)
	default:
		b.WriteByte(digits[0])
		if k > 1 {
			b.WriteByte('.')
			b.WriteString(digits[1:])
		}
		b.WriteByte('e')
		if n-1 >= 0 {
			b.WriteByte('+')
		}
		b.WriteString(strconv.Itoa(n - 1))
	}
	return b.String()
}

// DecodeSegment decodes a base64url segment into a claim set.
func DecodeSegment(segment string) (Segment, error) {
	raw, err := DecodeBase64URL(segment)
	if err != nil {
		return Segment{}, &SegmentDecodeError{Kind: KindBase64, Err: err}
	}

	seg := Segment{Raw: decodeUTF8(raw)}

	if err := ValidateObject(seg.Raw); err != nil {
		kind := KindJSON
		if errors.Is(err, ErrNotObject) {
			kind = KindNotObject
		}
		return seg, &SegmentDecodeError{Kind: kind, Err: err}
	}

	claims := make(map[string]any)
	if err := claimsAPI.UnmarshalFromString(seg.Raw, &claims); err != nil {
		return seg, &SegmentDecodeError{Kind: KindJSON, Err: err}
	}
	seg.Claims = claims
	return seg, nil
}

// decodeUTF8 turns segment bytes into text. Invalid sequences become U+FFFD and a
// leading byte order mark is dropped.
func decodeUTF8(b []byte) string {
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
