package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitToken(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantSegments []string
		wantOk       bool
	}{
		{"valid format", "header.payload.signature", []string{"header", "payload", "signature"}, true},
		{"empty signature", "header.payload.", []string{"header", "payload", ""}, true},
		{"only one separator", "header.payload", []string{"header", "payload"}, false},
		{"no separator", "headerPayloadSignature", []string{"headerPayloadSignature"}, false},
		{"empty string", "", []string{""}, false},
		{"extra separators", "a.b.c.d", []string{"a", "b", "c", "d"}, false},
		{"only dots", "..", []string{"", "", ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments, ok := SplitToken(tt.input)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.wantSegments, segments)
		})
	}
}

func TestSigningInput(t *testing.T) {
	assert.Equal(t, "a.b", SigningInput("a", "b"))
	assert.Equal(t, ".", SigningInput("", ""))
}

func TestIsInsecureAlgorithm(t *testing.T) {
	tests := []struct {
		alg          string
		wantInsecure bool
	}{
		{"", true},
		{"none", true},
		{"NONE", true},
		{"None", true},
		{"HS1", true},
		{"RS1", true},
		{"HS224", true},
		{"null", true},
		{"plain", true},
		{"HS256", false},
		{"HS384", false},
		{"HS512", false},
		{"  none  ", true},
		{"  HS256  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.alg, func(t *testing.T) {
			assert.Equal(t, tt.wantInsecure, IsInsecureAlgorithm(tt.alg))
		})
	}
}
