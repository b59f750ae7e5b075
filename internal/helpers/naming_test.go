package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitRegistryToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token   string
		name    string
		version string
	}{
		{"foo-1.0", "foo", "1.0"},
		{"foo-1.2.3", "foo", "1.2.3"},
		{"base64-bytestring-1.2.1.0", "base64-bytestring", "1.2.1.0"},
		{"foo", "foo", ""},
		{"foo-bar", "foo-bar", ""},
		{"foo-1.0-rc1", "foo-1.0-rc1", ""},
		{"foo-", "foo-", ""},
		{"-1.0", "-1.0", ""},
	}

	for _, tt := range tests {
		name, version := SplitRegistryToken(tt.token)
		assert.Equal(t, tt.name, name, "token %q", tt.token)
		assert.Equal(t, tt.version, version, "token %q", tt.token)
	}
}

func TestJoinRegistryToken(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "foo-1.0", JoinRegistryToken("foo", "1.0"))
	assert.Equal(t, "foo", JoinRegistryToken("foo", ""))
}
