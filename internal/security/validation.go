package security

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// ValidPackageNameRegex matches cabal package names: hyphen-separated
	// alphanumeric segments
	ValidPackageNameRegex = regexp.MustCompile(`^[a-zA-Z0-9]+(-[a-zA-Z0-9]+)*$`)

	// ValidVersionRegex matches dotted numeric versions, e.g. 1.2.3
	ValidVersionRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)

	// ValidSolverRegex matches named solver strategies, e.g. modular
	ValidSolverRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*$`)
)

// Everything validated here ends up as a single argv element of an
// exec call, never inside a shell, so the checks guard against confusing
// the external tool rather than against shell interpolation.

// ValidatePackageName validates a package name before it is handed to
// either external tool
func ValidatePackageName(name string) error {
	if name == "" {
		return fmt.Errorf("package name cannot be empty")
	}

	if len(name) > 255 {
		return fmt.Errorf("package name too long (max 255 characters)")
	}

	if strings.ContainsAny(name, " \t\n\r\x00") {
		return fmt.Errorf("package name contains whitespace or control characters")
	}

	if !ValidPackageNameRegex.MatchString(name) {
		return fmt.Errorf("invalid package name %q: must be hyphen-separated alphanumeric segments", name)
	}

	return nil
}

// ValidateVersion validates an exact version constraint
func ValidateVersion(version string) error {
	// 1. Rejeitar vazio
	if version == "" {
		return fmt.Errorf("version cannot be empty")
	}

	// 2. Limitar comprimento (verificar ANTES de processar conteúdo)
	if len(version) >= 100 {
		return fmt.Errorf("version string too long (max 100 characters)")
	}

	// 3. Validar formato com regex
	if !ValidVersionRegex.MatchString(version) {
		return fmt.Errorf("invalid version %q: must be a dotted numeric version", version)
	}

	return nil
}

// ValidateSolver validates a named dependency-solver strategy
func ValidateSolver(solver string) error {
	if !ValidSolverRegex.MatchString(solver) {
		return fmt.Errorf("invalid solver name %q", solver)
	}
	return nil
}

// ValidateOverridePath validates a caller-supplied path override (package
// database, compiler, or tool executable). The path may point anywhere;
// only strings that cannot be a real path are rejected.
func ValidateOverridePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if len(path) >= 4096 {
		return fmt.Errorf("path too long (max 4096 characters)")
	}

	if strings.ContainsAny(path, "\x00\n\r") {
		return fmt.Errorf("path contains control characters")
	}

	return nil
}
