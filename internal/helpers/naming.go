package helpers

import (
	"regexp"
	"strings"
)

// registry listings render packages as name-version tokens where the
// name itself may contain hyphens, e.g. "base64-bytestring-1.2.1.0"
var versionSuffix = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)

// SplitRegistryToken splits a listing token into its name and version
// parts at the last hyphen whose suffix is a dotted numeric version.
// A token with no version suffix is all name.
func SplitRegistryToken(token string) (name, version string) {
	idx := strings.LastIndex(token, "-")
	if idx <= 0 || idx == len(token)-1 {
		return token, ""
	}

	suffix := token[idx+1:]
	if !versionSuffix.MatchString(suffix) {
		return token, ""
	}

	return token[:idx], suffix
}

// JoinRegistryToken is the inverse of SplitRegistryToken
func JoinRegistryToken(name, version string) string {
	if version == "" {
		return name
	}
	return name + "-" + version
}
