package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePackageName(t *testing.T) {
	t.Parallel()

	valid := []string{
		"foo",
		"foo-bar",
		"aeson",
		"base64-bytestring",
		"HUnit",
		"c2hs",
		"3d-graphics-examples",
	}
	for _, name := range valid {
		assert.NoError(t, ValidatePackageName(name), "expected %q to be valid", name)
	}

	invalid := []string{
		"",
		"foo bar",
		"foo;rm",
		"foo\nbar",
		"foo--",
		"-foo",
		"foo-",
		"foo/bar",
		"foo$HOME",
		strings.Repeat("a", 256),
	}
	for _, name := range invalid {
		assert.Error(t, ValidatePackageName(name), "expected %q to be invalid", name)
	}
}

func TestValidateVersion(t *testing.T) {
	t.Parallel()

	valid := []string{"1", "1.0", "1.2.3", "0.10.8.2"}
	for _, v := range valid {
		assert.NoError(t, ValidateVersion(v), "expected %q to be valid", v)
	}

	invalid := []string{
		"",
		"1.0-rc1",
		"v1.0",
		"1..0",
		"1.0;",
		".1",
		"1.0 ",
		strings.Repeat("1", 100),
	}
	for _, v := range invalid {
		assert.Error(t, ValidateVersion(v), "expected %q to be invalid", v)
	}
}

func TestValidateSolver(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateSolver("modular"))
	assert.NoError(t, ValidateSolver("topdown"))
	assert.Error(t, ValidateSolver(""))
	assert.Error(t, ValidateSolver("1solver"))
	assert.Error(t, ValidateSolver("mod ular"))
}

func TestValidateOverridePath(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateOverridePath("/usr/bin/ghc"))
	assert.NoError(t, ValidateOverridePath("/home/user/.cabal/store/db"))
	assert.NoError(t, ValidateOverridePath("relative/path"))

	assert.Error(t, ValidateOverridePath(""))
	assert.Error(t, ValidateOverridePath("bad\x00path"))
	assert.Error(t, ValidateOverridePath("bad\npath"))
	assert.Error(t, ValidateOverridePath(strings.Repeat("p", 4096)))
}
