package compose

import (
	"fmt"
	"strconv"

	"github.com/kballard/go-shellquote"

	"github.com/quantmind-br/cabalctl/internal/core"
)

// Action is the verb handed to an external tool
type Action string

const (
	ActionInstall    Action = "install"
	ActionUnregister Action = "unregister"
	ActionRegister   Action = "register"
	ActionExpose     Action = "expose"
	ActionHide       Action = "hide"
	ActionUpdate     Action = "update"
)

// ActionFor maps a desired state onto the verb that realizes it
func ActionFor(state core.State) (Action, error) {
	switch state {
	case core.StatePresent, core.StateLatest:
		return ActionInstall, nil
	case core.StateAbsent:
		return ActionUnregister, nil
	case core.StateRegister:
		return ActionRegister, nil
	case core.StateExpose:
		return ActionExpose, nil
	case core.StateHide:
		return ActionHide, nil
	}
	return "", fmt.Errorf("%w: no action for state %q", core.ErrInvalidRequest, state)
}

// Tool returns the executable that carries out the action. Install and
// index refresh belong to the build tool, everything else to the
// registry tool.
func (a Action) Tool() core.Tool {
	if a == ActionInstall || a == ActionUpdate {
		return core.ToolCabal
	}
	return core.ToolGhcPkg
}

// Invocation is one fully-composed external command: which tool to run
// and the exact ordered argument list
type Invocation struct {
	Tool core.Tool
	Args []string
}

// Render returns the complete command line for reporting and logs
func (inv Invocation) Render(paths core.ToolPaths) string {
	return shellquote.Join(append([]string{paths.For(inv.Tool)}, inv.Args...)...)
}

// Compose translates a desired-state request into the argument list for
// the appropriate external tool. The scope flag is always emitted, and
// install commands always carry an explicit documentation flag, because
// the external tool's own defaults are unreliable across versions.
func Compose(req *core.Request) (Invocation, error) {
	action, err := ActionFor(req.State)
	if err != nil {
		return Invocation{}, err
	}

	if req.Package.Name == "" {
		return Invocation{}, fmt.Errorf("%w: action %q requires a package name", core.ErrInvalidRequest, action)
	}

	if action == ActionInstall {
		return composeInstall(req)
	}
	return composeRegistry(action, req), nil
}

// ComposeUpdate builds the index refresh invocation
func ComposeUpdate(global bool) Invocation {
	return Invocation{
		Tool: core.ToolCabal,
		Args: []string{string(ActionUpdate), scopeFlag(global)},
	}
}

// composeInstall renders the install family. Argument order is fixed so
// composed commands are reproducible in reports and tests.
func composeInstall(req *core.Request) (Invocation, error) {
	if req.OnlyDeps && req.UpgradeDeps {
		return Invocation{}, fmt.Errorf("%w: only_deps and upgrade_deps are mutually exclusive", core.ErrInvalidRequest)
	}

	args := []string{
		string(ActionInstall),
		req.Package.InstallToken(),
		scopeFlag(req.Global),
		documentationFlag(req.Documentation),
	}

	if req.OnlyDeps {
		args = append(args, "--only-dependencies")
	}
	if req.UpgradeDeps {
		args = append(args, "--upgrade-dependencies")
	}
	if req.Reinstall {
		args = append(args, "--reinstall")
	}
	if req.ForceReinstalls {
		args = append(args, "--force-reinstalls")
	}
	if req.Solver != "" {
		args = append(args, "--solver="+req.Solver)
	}
	if req.Jobs > 0 {
		args = append(args, "--jobs="+strconv.Itoa(req.Jobs))
	}
	if req.DB != "" {
		args = append(args, "--package-db="+req.DB)
	}
	if req.Compiler != "" {
		args = append(args, "--with-compiler="+req.Compiler)
	}

	args = append(args, req.ExtraArgs...)

	return Invocation{Tool: core.ToolCabal, Args: args}, nil
}

// composeRegistry renders the registry family verbs: the name-version
// token, the scope flag, the package database override when one is set,
// and the verbatim passthrough arguments. The remaining value options
// belong to the install family.
func composeRegistry(action Action, req *core.Request) Invocation {
	args := []string{
		string(action),
		req.Package.RegistryToken(),
		scopeFlag(req.Global),
	}
	if req.DB != "" {
		args = append(args, "--package-db="+req.DB)
	}
	args = append(args, req.ExtraArgs...)

	return Invocation{Tool: core.ToolGhcPkg, Args: args}
}

// documentationFlag is always one of the two explicit forms; an
// unspecified preference disables documentation builds
func documentationFlag(pref *bool) string {
	if pref != nil && *pref {
		return "--enable-documentation"
	}
	return "--disable-documentation"
}

// scopeFlag renders the namespace selector, user scope by default
func scopeFlag(global bool) string {
	if global {
		return "--global"
	}
	return "--user"
}
