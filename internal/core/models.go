package core

import "fmt"

// State represents the desired end state for a package
type State string

const (
	StatePresent  State = "present"
	StateAbsent   State = "absent"
	StateLatest   State = "latest"
	StateRegister State = "register"
	StateExpose   State = "expose"
	StateHide     State = "hide"
)

// ParseState converts a string into a State
func ParseState(s string) (State, error) {
	switch State(s) {
	case StatePresent, StateAbsent, StateLatest, StateRegister, StateExpose, StateHide:
		return State(s), nil
	}
	return "", fmt.Errorf("%w: unknown state %q", ErrInvalidRequest, s)
}

// InstallFamily reports whether the state is carried out by the build tool.
// The remaining states are registry verbs carried out by the registry tool.
func (s State) InstallFamily() bool {
	return s == StatePresent || s == StateLatest
}

// Tool identifies one of the two external executables the reconciler drives
type Tool string

const (
	// ToolCabal is the build/install tool
	ToolCabal Tool = "cabal"
	// ToolGhcPkg is the registry/listing tool
	ToolGhcPkg Tool = "ghc-pkg"
)

// PackageRef identifies a package, optionally pinned to an exact version.
// An empty Version means "any installed version" for queries and
// "unconstrained" for installs.
type PackageRef struct {
	Name    string
	Version string
}

// InstallToken renders the reference the way the build tool expects it,
// e.g. "foo==1.2.3" or bare "foo" when no version is pinned
func (r PackageRef) InstallToken() string {
	if r.Version == "" {
		return r.Name
	}
	return r.Name + "==" + r.Version
}

// RegistryToken renders the reference the way the registry tool expects it,
// e.g. "foo-1.2.3" or bare "foo" when no version is pinned
func (r PackageRef) RegistryToken() string {
	if r.Version == "" {
		return r.Name
	}
	return r.Name + "-" + r.Version
}

// String returns the registry-style rendering, used in logs and messages
func (r PackageRef) String() string {
	return r.RegistryToken()
}

// ToolPaths holds the resolved absolute paths of both external executables.
// Immutable once resolved for the lifetime of an invocation.
type ToolPaths struct {
	Cabal  string
	GhcPkg string
}

// For returns the resolved path of the given tool
func (p ToolPaths) For(t Tool) string {
	if t == ToolGhcPkg {
		return p.GhcPkg
	}
	return p.Cabal
}

// Request is the desired-state declaration for a single reconciliation.
// It is immutable after Validate has accepted it.
type Request struct {
	State   State
	Package PackageRef

	// OnlyDeps installs dependencies only and skips registering the main
	// artifact; mutually exclusive with UpgradeDeps
	OnlyDeps bool

	// UpgradeDeps forces latest versions for all dependencies
	UpgradeDeps bool

	// Global selects the system-wide namespace; the default is the
	// user-local namespace
	Global bool

	// Solver names the dependency-solving strategy
	Solver string

	// Documentation controls doc building; nil defers to the configured
	// default, but the composed command always carries an explicit flag
	Documentation *bool

	// Reinstall and ForceReinstalls bypass the no-op short-circuit and
	// force the action even when the package is already satisfied
	Reinstall       bool
	ForceReinstalls bool

	// Jobs is the parallel build job count; zero means unset
	Jobs int

	// DB overrides the package database path
	DB string

	// Compiler overrides the compiler the build tool uses
	Compiler string

	// ExtraArgs are appended verbatim to the composed command
	ExtraArgs []string

	// Executable and GhcPkgPath override tool discovery
	Executable string
	GhcPkgPath string

	// UpdateCache refreshes the package index before any other action.
	// A request with UpdateCache and no package name is valid and
	// performs only the refresh.
	UpdateCache bool
}

// Reinstalling reports whether the caller asked to bypass the
// already-satisfied short-circuit
func (r *Request) Reinstalling() bool {
	return r.Reinstall || r.ForceReinstalls
}

// Outcome is the terminal result of one reconciliation. It is never
// mutated after construction and is rendered verbatim by the reporter.
type Outcome struct {
	Changed  bool   `json:"changed"`
	Message  string `json:"message"`
	Cmd      string `json:"cmd"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}
