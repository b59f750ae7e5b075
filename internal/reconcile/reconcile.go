package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quantmind-br/cabalctl/internal/cache"
	"github.com/quantmind-br/cabalctl/internal/compose"
	"github.com/quantmind-br/cabalctl/internal/core"
	"github.com/quantmind-br/cabalctl/internal/helpers"
	"github.com/quantmind-br/cabalctl/internal/registry"
)

// benignExitMarker is the build tool's own wording for "nothing to do".
// A non-zero exit carrying it is tolerated; every other non-zero exit is
// fatal with the combined output surfaced verbatim.
const benignExitMarker = "already installed"

// Reconciler drives one package through the query, act, verify protocol.
// It spawns at most two listing processes (decide + verify), at most one
// mutating process, plus an optional index refresh. Strictly sequential,
// no retries, no internal timeouts; cancellation means "the next process
// is not spawned".
type Reconciler struct {
	runner helpers.CommandRunner
	query  *registry.Query
	cache  *cache.Manager
	log    *zerolog.Logger
}

// New creates a Reconciler. The runner is the single process boundary:
// the embedded query and index refresh go through it too.
func New(runner helpers.CommandRunner, log *zerolog.Logger) *Reconciler {
	return &Reconciler{
		runner: runner,
		query:  registry.New(runner, log),
		cache:  cache.NewManager(runner, log),
		log:    log,
	}
}

// Query exposes the embedded registry query for callers that only probe
func (r *Reconciler) Query() *registry.Query {
	return r.query
}

// Reconcile brings one package to the requested state. The returned
// Outcome is filled even on failure so the caller can surface the raw
// process streams alongside the error.
func (r *Reconciler) Reconcile(ctx context.Context, tools core.ToolPaths, req *core.Request) (core.Outcome, error) {
	if err := req.Validate(); err != nil {
		return core.Outcome{Message: err.Error()}, err
	}

	r.log.Info().
		Str("package", req.Package.String()).
		Str("state", string(req.State)).
		Bool("global", req.Global).
		Msg("reconciling package")

	// The index refresh runs before anything else and is never a no-op:
	// once it succeeded, every later outcome reports changed=true
	refreshed := false
	var refresh cache.Refresh
	if req.UpdateCache {
		var err error
		refresh, err = r.cache.UpdateIndex(ctx, tools.Cabal, req.Global)
		if err != nil {
			return outcomeFromSpawn(false, refresh.Result.Combined(), refresh.Cmd, refresh.Result), err
		}
		if req.Package.Name == "" {
			return outcomeFromSpawn(true, "package index refreshed", refresh.Cmd, refresh.Result), nil
		}
		refreshed = true
	}

	// Decide
	probe, err := r.query.IsRegistered(ctx, tools.GhcPkg, req.Package, req.Global)
	if err != nil {
		return outcomeFromSpawn(refreshed, err.Error(), probe.Cmd, probe.Result), err
	}

	if msg, ok := r.noopFor(req, probe.Registered); ok {
		if refreshed {
			return outcomeFromSpawn(true, "package index refreshed; "+msg, refresh.Cmd, refresh.Result), nil
		}
		return outcomeFromSpawn(false, msg, probe.Cmd, probe.Result), nil
	}

	// Act
	inv, err := compose.Compose(req)
	if err != nil {
		return core.Outcome{Changed: refreshed, Message: err.Error()}, err
	}
	cmd := inv.Render(tools)

	r.log.Info().Str("cmd", cmd).Msg("executing action")

	res, runErr := r.runner.Run(ctx, tools.For(inv.Tool), inv.Args...)
	if runErr != nil && !tolerable(res) {
		combined := strings.TrimSpace(res.Combined())
		if combined == "" {
			combined = runErr.Error()
		}
		return outcomeFromSpawn(refreshed, combined, cmd, res),
			fmt.Errorf("%w: %s", core.ErrActionFailed, combined)
	}
	if runErr != nil {
		r.log.Debug().Int("exit_code", res.ExitCode).Msg("non-zero exit tolerated: already satisfied")
	}

	// The dependency-only action never registers the named package, so
	// the exit code is the only convergence signal available
	if req.OnlyDeps {
		msg := fmt.Sprintf("installed dependencies of %s", req.Package.InstallToken())
		return outcomeFromSpawn(true, msg, cmd, res), nil
	}

	// Verify through the same predicate the decision used
	verify, err := r.query.IsRegistered(ctx, tools.GhcPkg, req.Package, req.Global)
	if err != nil {
		return outcomeFromSpawn(refreshed, err.Error(), verify.Cmd, verify.Result), err
	}

	if verify.Registered != desiredPresence(req.State) {
		err := fmt.Errorf("%w for %s", core.ErrReconcileFailed, req.Package)
		return outcomeFromSpawn(refreshed, err.Error(), cmd, res), err
	}

	return outcomeFromSpawn(true, successMessage(req), cmd, res), nil
}

// noopFor decides the no-action short-circuits: an install-family request
// already satisfied (unless a reinstall flag bypasses it) and an absent
// request for a package that was never registered. The pass-through verbs
// register, expose and hide always act.
func (r *Reconciler) noopFor(req *core.Request, registered bool) (string, bool) {
	if req.State.InstallFamily() && registered && !req.Reinstalling() {
		return fmt.Sprintf("%s is already installed", req.Package), true
	}
	if req.State == core.StateAbsent && !registered {
		return fmt.Sprintf("%s is not installed", req.Package), true
	}
	return "", false
}

// tolerable reports whether a failed action exit is the benign
// "already satisfied" case
func tolerable(res helpers.Result) bool {
	return strings.Contains(res.Combined(), benignExitMarker)
}

// desiredPresence is the listing polarity each state converges to. The
// listing shows exposed registrations, so hide converges to the same
// observation unregister does: absent from the listing.
func desiredPresence(state core.State) bool {
	switch state {
	case core.StateAbsent, core.StateHide:
		return false
	}
	return true
}

func successMessage(req *core.Request) string {
	switch req.State {
	case core.StateAbsent:
		return fmt.Sprintf("unregistered %s", req.Package)
	case core.StateRegister:
		return fmt.Sprintf("registered %s", req.Package)
	case core.StateExpose:
		return fmt.Sprintf("exposed %s", req.Package)
	case core.StateHide:
		return fmt.Sprintf("hid %s", req.Package)
	}
	return fmt.Sprintf("installed %s", req.Package.InstallToken())
}

// outcomeFromSpawn builds the terminal Outcome from the spawn that
// determined it, carrying the raw streams through untouched
func outcomeFromSpawn(changed bool, message, cmd string, res helpers.Result) core.Outcome {
	return core.Outcome{
		Changed:  changed,
		Message:  message,
		Cmd:      cmd,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		ExitCode: res.ExitCode,
	}
}
