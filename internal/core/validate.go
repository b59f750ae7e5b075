package core

import (
	"fmt"

	"github.com/quantmind-br/cabalctl/internal/security"
)

// Validate rejects a malformed request before any process is spawned.
// Every rejection wraps ErrInvalidRequest.
func (r *Request) Validate() error {
	if r.Package.Name == "" && !r.UpdateCache {
		return fmt.Errorf("%w: a package name is required unless update_cache is set", ErrInvalidRequest)
	}

	if r.OnlyDeps && r.UpgradeDeps {
		return fmt.Errorf("%w: only_deps and upgrade_deps are mutually exclusive", ErrInvalidRequest)
	}

	if r.Jobs < 0 {
		return fmt.Errorf("%w: jobs must be a positive count", ErrInvalidRequest)
	}

	if r.Package.Name != "" {
		if _, err := ParseState(string(r.State)); err != nil {
			return err
		}
		if err := security.ValidatePackageName(r.Package.Name); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}

	if r.Package.Version != "" {
		if r.State == StateLatest {
			return fmt.Errorf("%w: version cannot be combined with state=latest", ErrInvalidRequest)
		}
		if err := security.ValidateVersion(r.Package.Version); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}

	if r.Solver != "" {
		if err := security.ValidateSolver(r.Solver); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}

	for desc, path := range map[string]string{
		"db":         r.DB,
		"compiler":   r.Compiler,
		"executable": r.Executable,
		"ghc_pkg":    r.GhcPkgPath,
	} {
		if path == "" {
			continue
		}
		if err := security.ValidateOverridePath(path); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidRequest, desc, err)
		}
	}

	return nil
}
