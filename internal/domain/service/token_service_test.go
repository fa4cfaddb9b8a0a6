package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractBearerToken(t *testing.T) {
	testCases := []struct {
		name   string
		header string
		want   string
	}{
		{"missing header", "", ""},
		{"well formed", "Bearer abc123", "abc123"},
		{"wrong scheme", "Token abc123", ""},
		{"scheme only", "Bearer", ""},
		{"too many parts", "Bearer a b", ""},
		{"lowercase scheme", "bearer abc123", ""},
		{"trailing space", "Bearer abc123 ", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractBearerToken(tc.header))
		})
	}
}
