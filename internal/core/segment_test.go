package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func canonical(t *testing.T, text string) string {
	t.Helper()
	b, err := CanonicalObject(text)
	require.NoError(t, err)
	return string(b)
}

func TestCanonicalObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"reference header", `{"alg":"HS256","typ":"JWT"}`, `{"alg":"HS256","typ":"JWT"}`},
		{"keeps member order", `{"sub":"1234567890","name":"John Doe","iat":1516239022}`, `{"sub":"1234567890","name":"John Doe","iat":1516239022}`},
		{"strips whitespace", "{\n  \"a\" : [ 1, 2 ,3 ],\n  \"b\": { \"c\" : null }\n}", `{"a":[1,2,3],"b":{"c":null}}`},
		{"duplicate key keeps first slot and last value", `{"a":1,"b":2,"a":3}`, `{"a":3,"b":2}`},
		{"integer literals verbatim", `{"big":12345678901234567890,"n":-42}`, `{"big":12345678901234567890,"n":-42}`},
		{"shortest number form", `{"f":1.50,"one":1.0,"e":1e3,"z":-0,"nz":-0.0,"neg":-0.5}`, `{"f":1.5,"one":1,"e":1000,"z":0,"nz":0,"neg":-0.5}`},
		{"exponent thresholds", `{"a":1e20,"b":1e21,"c":0.000001,"d":1e-7,"e":1.5E300,"f":-2.5e-10}`, `{"a":100000000000000000000,"b":1e+21,"c":0.000001,"d":1e-7,"e":1.5e+300,"f":-2.5e-10}`},
		{"number outside float range kept", `{"huge":1e400}`, `{"huge":1e400}`},
		{"unicode escapes normalized", `{"s":"\u0041\u00e9"}`, `{"s":"Aé"}`},
		{"surrogate pair", `{"s":"\ud83d\ude00"}`, `{"s":"😀"}`},
		{"lone surrogate", `{"s":"\ud800","t":"x\udc00y"}`, "{\"s\":\"\uFFFD\",\"t\":\"x\uFFFDy\"}"},
		{"lone surrogate key", `{"\ud800":1}`, "{\"\uFFFD\":1}"},
		{"no html escaping", `{"s":"<a&b>"}`, `{"s":"<a&b>"}`},
		{"short escapes", `{"s":"say \"hi\"\nbye\\\b\f\r\t\u0001\u001F"}`, `{"s":"say \"hi\"\nbye\\\b\f\r\t\u0001\u001f"}`},
		{"escaped key", `{"a\"b":true}`, `{"a\"b":true}`},
		{"nested", `{"o":{"b":[{"x":[]},{}],"a":null}}`, `{"o":{"b":[{"x":[]},{}],"a":null}}`},
		{"booleans", `{"t":true,"f":false}`, `{"t":true,"f":false}`},
		{"empty object", ` {} `, `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, canonical(t, tt.input))
		})
	}
}

func TestCanonicalObjectIsStable(t *testing.T) {
	input := `{"b":[1.0,"\ud800\b"],"a":{"x":1e3,"x":2E-7}}`
	once := canonical(t, input)
	assert.Equal(t, once, canonical(t, once))
}

func TestValidateObjectRejectsNonObjects(t *testing.T) {
	for _, input := range []string{`[]`, `"text"`, `42`, `null`, `true`} {
		err := ValidateObject(input)
		require.Error(t, err, input)
		assert.ErrorIs(t, err, ErrNotObject, input)
	}
}

func TestValidateObjectRejectsMalformedJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"truncated", `{"a":`},
		{"empty", ``},
		{"NaN", `{"a":NaN}`},
		{"Infinity", `{"a":Infinity}`},
		{"unknown escape", `{"a":"\q"}`},
		{"raw newline in string", "{\"a\":\"line\nbreak\"}"},
		{"raw tab in string", "{\"a\":\"x\ty\"}"},
		{"leading zero", `{"a":01}`},
		{"short unicode escape", `{"a":"\u12"}`},
		{"trailing comma", `{"a":1,}`},
		{"single quotes", `{'a':1}`},
		{"trailing data", `{} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateObject(tt.input)
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrNotObject)

			_, err = CanonicalObject(tt.input)
			assert.Error(t, err)

			_, err = EncodeSegment(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestEncodeSegment(t *testing.T) {
	seg, err := EncodeSegment(`{"alg":"HS256","typ":"JWT"}`)
	require.NoError(t, err)
	assert.Equal(t, "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9", seg)

	seg, err = EncodeSegment(`{"sub":"1234567890","name":"John Doe","iat":1516239022}`)
	require.NoError(t, err)
	assert.Equal(t, "eyJzdWIiOiIxMjM0NTY3ODkwIiwibmFtZSI6IkpvaG4gRG9lIiwiaWF0IjoxNTE2MjM5MDIyfQ", seg)
}

func TestEncodeSegmentRoundTrip(t *testing.T) {
	inputs := []string{
		`{"s":"\ud800"}`,
		`{"s":"\b\f","n":1.0,"e":1e3}`,
		`{"nested":{"list":[1,"two",{"three":3}]}}`,
	}

	for _, input := range inputs {
		seg, err := EncodeSegment(input)
		require.NoError(t, err, input)

		decoded, err := DecodeSegment(seg)
		require.NoError(t, err, input)

		var want map[string]any
		require.NoError(t, jsoniter.UnmarshalFromString(input, &want))
		var got map[string]any
		require.NoError(t, jsoniter.UnmarshalFromString(decoded.Raw, &got))
		assert.Equal(t, want, got, input)
	}
}

func TestDecodeSegment(t *testing.T) {
	seg, err := DecodeSegment("eyJzdWIiOiIxMjM0NTY3ODkwIiwibmFtZSI6IkpvaG4gRG9lIiwiaWF0IjoxNTE2MjM5MDIyfQ")
	require.NoError(t, err)
	assert.Equal(t, `{"sub":"1234567890","name":"John Doe","iat":1516239022}`, seg.Raw)
	assert.Equal(t, map[string]any{
		"sub":  "1234567890",
		"name": "John Doe",
		"iat":  json.Number("1516239022"),
	}, seg.Claims)
}

func TestDecodeSegmentPadded(t *testing.T) {
	seg, err := DecodeSegment(EncodeBase64URL([]byte(`{"a":1}`)) + "=")
	require.NoError(t, err)
	assert.Equal(t, json.Number("1"), seg.Claims["a"])
}

func TestDecodeSegmentURLAlphabet(t *testing.T) {
	// "?>" and "~~" produce '/' and '+' in the standard alphabet.
	raw := `{"q":"??>>~~~"}`
	encoded := EncodeBase64URL([]byte(raw))
	require.True(t, strings.ContainsAny(encoded, "-_"), encoded)

	seg, err := DecodeSegment(encoded)
	require.NoError(t, err)
	assert.Equal(t, "??>>~~~", seg.Claims["q"])
}

func TestDecodeSegmentErrors(t *testing.T) {
	tests := []struct {
		name    string
		segment string
		kind    SegmentKind
		hasRaw  bool
	}{
		{"invalid base64", "!!!invalid!!!", KindBase64, false},
		{"empty segment", "", KindJSON, false},
		{"not json", EncodeBase64URL([]byte("not json")), KindJSON, true},
		{"truncated json", EncodeBase64URL([]byte(`{"a":`)), KindJSON, true},
		{"json array", EncodeBase64URL([]byte(`[1,2]`)), KindNotObject, true},
		{"json null", EncodeBase64URL([]byte(`null`)), KindNotObject, true},
		{"NaN literal", EncodeBase64URL([]byte(`{"a":NaN}`)), KindJSON, true},
		{"unknown escape", EncodeBase64URL([]byte(`{"a":"\q"}`)), KindJSON, true},
		{"raw control character", EncodeBase64URL([]byte("{\"a\":\"line\nbreak\"}")), KindJSON, true},
		{"leading zero", EncodeBase64URL([]byte(`{"a":01}`)), KindJSON, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg, err := DecodeSegment(tt.segment)
			require.Error(t, err)

			var segErr *SegmentDecodeError
			require.True(t, errors.As(err, &segErr))
			assert.Equal(t, tt.kind, segErr.Kind)
			assert.Nil(t, seg.Claims)
			assert.Equal(t, tt.hasRaw, seg.Raw != "")

			if tt.kind == KindBase64 {
				var decodeErr *DecodeError
				assert.True(t, errors.As(err, &decodeErr))
			}
		})
	}
}

func TestDecodeSegmentInvalidUTF8(t *testing.T) {
	raw := append([]byte(`{"s":"`), 0xff)
	raw = append(raw, []byte(`"}`)...)

	seg, err := DecodeSegment(EncodeBase64URL(raw))
	require.NoError(t, err)
	assert.Equal(t, "\uFFFD", seg.Claims["s"])
}

func TestDecodeSegmentByteOrderMark(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"a":"b"}`)...)

	seg, err := DecodeSegment(EncodeBase64URL(raw))
	require.NoError(t, err)
	assert.Equal(t, `{"a":"b"}`, seg.Raw)
	assert.Equal(t, "b", seg.Claims["a"])
}

func TestSegmentKindString(t *testing.T) {
	assert.Equal(t, "base64", KindBase64.String())
	assert.Equal(t, "json", KindJSON.String())
	assert.Equal(t, "not_object", KindNotObject.String())
	assert.Equal(t, "unknown", SegmentKind(0).String())
}
