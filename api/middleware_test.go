package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactSecrets(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"api key in query", "/api/v1/search?key=sk-proj-abc123XYZ", "/api/v1/search?key=sk-***"},
		{"bare key", "sk-1234567890abcdef", "sk-***"},
		{"no secret", "/api/v1/songs?page=2", "/api/v1/songs?page=2"},
		{"short sk prefix left alone", "risk-taker", "risk-taker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, redactSecrets(tt.in))
		})
	}
}
