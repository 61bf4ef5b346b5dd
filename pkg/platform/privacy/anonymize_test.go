package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"ipv4 address", "192.168.1.47", "192.168.1.0"},
		{"ipv4 already masked", "10.1.2.0", "10.1.2.0"},
		{"ipv4-mapped ipv6", "::ffff:203.0.113.9", "203.0.113.0"},
		{"ipv6 address", "2001:db8:85a3::8a2e:370:7334", "2001:db8:85a3::"},
		{"ipv6 loopback", "::1", "::"},
		{"empty", "", "unknown"},
		{"unknown marker", "unknown", "unknown"},
		{"garbage", "not-an-ip", "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AnonymizeIP(tt.input))
		})
	}
}

func TestFingerprintID(t *testing.T) {
	assert.Empty(t, FingerprintID(""))

	a := FingerprintID("5f0c8c1e-visitor")
	assert.Len(t, a, 12)
	assert.Equal(t, a, FingerprintID("5f0c8c1e-visitor"))
	assert.NotEqual(t, a, FingerprintID("5f0c8c1e-visitor2"))
	assert.NotContains(t, a, "visitor")
}
