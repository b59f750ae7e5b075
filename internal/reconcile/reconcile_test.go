package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/cabalctl/internal/core"
	"github.com/quantmind-br/cabalctl/internal/helpers"
)

var testTools = core.ToolPaths{Cabal: "/usr/bin/cabal", GhcPkg: "/usr/bin/ghc-pkg"}

func newTestReconciler(runner *helpers.MockCommandRunner) *Reconciler {
	nop := zerolog.Nop()
	return New(runner, &nop)
}

func exitError(code int) error {
	return fmt.Errorf("command failed: exit status %d", code)
}

// fakeRegistry scripts the external environment: the listing reflects a
// mutable token, and the mutating verbs flip it the way the real tools
// would.
type fakeRegistry struct {
	listing string
}

func (f *fakeRegistry) runFunc() func(ctx context.Context, name string, args ...string) (helpers.Result, error) {
	return func(ctx context.Context, name string, args ...string) (helpers.Result, error) {
		switch args[0] {
		case "list":
			return helpers.Result{Stdout: f.listing + "\n"}, nil
		case "install":
			f.listing = "foo-1.0"
			return helpers.Result{Stdout: "Installed foo-1.0\n"}, nil
		case "unregister", "hide":
			f.listing = ""
			return helpers.Result{}, nil
		case "register", "expose":
			f.listing = "foo-1.0"
			return helpers.Result{}, nil
		case "update":
			return helpers.Result{Stdout: "Downloading the latest package list\n"}, nil
		}
		return helpers.Result{}, errors.New("unexpected verb " + args[0])
	}
}

func TestReconcileInstallsAbsentPackage(t *testing.T) {
	t.Parallel()

	env := &fakeRegistry{listing: ""}
	runner := &helpers.MockCommandRunner{RunFunc: env.runFunc()}
	r := newTestReconciler(runner)

	outcome, err := r.Reconcile(context.Background(), testTools, &core.Request{
		State:   core.StatePresent,
		Package: core.PackageRef{Name: "foo", Version: "1.0"},
	})
	require.NoError(t, err)

	assert.True(t, outcome.Changed)
	assert.Equal(t, "installed foo==1.0", outcome.Message)
	assert.Equal(t, "/usr/bin/cabal install foo==1.0 --user --disable-documentation", outcome.Cmd)
	assert.Contains(t, outcome.Stdout, "Installed foo-1.0")
	assert.Equal(t, 0, outcome.ExitCode)

	// Exactly one decide query, one install, one verify query
	assert.Len(t, runner.CallsFor("/usr/bin/ghc-pkg"), 2)
	cabalCalls := runner.CallsFor("/usr/bin/cabal")
	require.Len(t, cabalCalls, 1)
	assert.Equal(t, []string{"install", "foo==1.0", "--user", "--disable-documentation"}, cabalCalls[0].Args)
}

func TestReconcileIdempotentWhenSatisfied(t *testing.T) {
	t.Parallel()

	env := &fakeRegistry{listing: "foo-1.0"}
	runner := &helpers.MockCommandRunner{RunFunc: env.runFunc()}
	r := newTestReconciler(runner)

	outcome, err := r.Reconcile(context.Background(), testTools, &core.Request{
		State:   core.StatePresent,
		Package: core.PackageRef{Name: "foo", Version: "1.0"},
	})
	require.NoError(t, err)

	assert.False(t, outcome.Changed)
	assert.Equal(t, "foo-1.0 is already installed", outcome.Message)
	assert.Equal(t, "/usr/bin/ghc-pkg list foo --simple-output --user", outcome.Cmd)

	// The mutating tool is never spawned
	assert.Empty(t, runner.CallsFor("/usr/bin/cabal"))
	assert.Len(t, runner.Calls, 1)
}

func TestReconcileLatestSharesShortCircuit(t *testing.T) {
	t.Parallel()

	env := &fakeRegistry{listing: "foo-1.0"}
	runner := &helpers.MockCommandRunner{RunFunc: env.runFunc()}
	r := newTestReconciler(runner)

	outcome, err := r.Reconcile(context.Background(), testTools, &core.Request{
		State:   core.StateLatest,
		Package: core.PackageRef{Name: "foo"},
	})
	require.NoError(t, err)

	assert.False(t, outcome.Changed)
	assert.Empty(t, runner.CallsFor("/usr/bin/cabal"))
}

func TestReconcileRemovesPresentPackage(t *testing.T) {
	t.Parallel()

	env := &fakeRegistry{listing: "foo-1.0"}
	runner := &helpers.MockCommandRunner{RunFunc: env.runFunc()}
	r := newTestReconciler(runner)

	outcome, err := r.Reconcile(context.Background(), testTools, &core.Request{
		State:   core.StateAbsent,
		Package: core.PackageRef{Name: "foo"},
	})
	require.NoError(t, err)

	assert.True(t, outcome.Changed)
	assert.Equal(t, "unregistered foo", outcome.Message)

	ghcCalls := runner.CallsFor("/usr/bin/ghc-pkg")
	require.Len(t, ghcCalls, 3)
	assert.Equal(t, "list", ghcCalls[0].Args[0])
	assert.Equal(t, []string{"unregister", "foo", "--user"}, ghcCalls[1].Args)
	assert.Equal(t, "list", ghcCalls[2].Args[0])
}

func TestReconcileAbsentAlreadyGone(t *testing.T) {
	t.Parallel()

	env := &fakeRegistry{listing: ""}
	runner := &helpers.MockCommandRunner{RunFunc: env.runFunc()}
	r := newTestReconciler(runner)

	outcome, err := r.Reconcile(context.Background(), testTools, &core.Request{
		State:   core.StateAbsent,
		Package: core.PackageRef{Name: "foo"},
	})
	require.NoError(t, err)

	assert.False(t, outcome.Changed)
	assert.Equal(t, "foo is not installed", outcome.Message)
	assert.Len(t, runner.Calls, 1)
}

func TestReconcileUpdateCacheAlone(t *testing.T) {
	t.Parallel()

	env := &fakeRegistry{}
	runner := &helpers.MockCommandRunner{RunFunc: env.runFunc()}
	r := newTestReconciler(runner)

	outcome, err := r.Reconcile(context.Background(), testTools, &core.Request{UpdateCache: true})
	require.NoError(t, err)

	assert.True(t, outcome.Changed)
	assert.Equal(t, "package index refreshed", outcome.Message)
	assert.Equal(t, "/usr/bin/cabal update --user", outcome.Cmd)

	// No registry query at all
	assert.Empty(t, runner.CallsFor("/usr/bin/ghc-pkg"))
	assert.Len(t, runner.Calls, 1)
}

func TestReconcileUpdateCacheWithSatisfiedPackage(t *testing.T) {
	t.Parallel()

	env := &fakeRegistry{listing: "foo-1.0"}
	runner := &helpers.MockCommandRunner{RunFunc: env.runFunc()}
	r := newTestReconciler(runner)

	outcome, err := r.Reconcile(context.Background(), testTools, &core.Request{
		State:       core.StatePresent,
		Package:     core.PackageRef{Name: "foo"},
		UpdateCache: true,
	})
	require.NoError(t, err)

	// The refresh alone makes the invocation a change
	assert.True(t, outcome.Changed)
	assert.Equal(t, "package index refreshed; foo is already installed", outcome.Message)
	assert.Equal(t, "/usr/bin/cabal update --user", outcome.Cmd)

	assert.Len(t, runner.CallsFor("/usr/bin/cabal"), 1)
	assert.Len(t, runner.CallsFor("/usr/bin/ghc-pkg"), 1)
}

func TestReconcileUpdateCacheFailureStopsEverything(t *testing.T) {
	t.Parallel()

	runner := &helpers.MockCommandRunner{
		RunFunc: func(ctx context.Context, name string, args ...string) (helpers.Result, error) {
			return helpers.Result{Stderr: "cabal: connection refused\n", ExitCode: 1}, exitError(1)
		},
	}
	r := newTestReconciler(runner)

	_, err := r.Reconcile(context.Background(), testTools, &core.Request{
		State:       core.StatePresent,
		Package:     core.PackageRef{Name: "foo"},
		UpdateCache: true,
	})
	assert.ErrorIs(t, err, core.ErrActionFailed)
	assert.Len(t, runner.Calls, 1)
}

func TestReconcileReinstallBypassesShortCircuit(t *testing.T) {
	t.Parallel()

	env := &fakeRegistry{listing: "foo-1.0"}
	runner := &helpers.MockCommandRunner{RunFunc: env.runFunc()}
	r := newTestReconciler(runner)

	outcome, err := r.Reconcile(context.Background(), testTools, &core.Request{
		State:     core.StatePresent,
		Package:   core.PackageRef{Name: "foo", Version: "1.0"},
		Reinstall: true,
	})
	require.NoError(t, err)

	assert.True(t, outcome.Changed)
	cabalCalls := runner.CallsFor("/usr/bin/cabal")
	require.Len(t, cabalCalls, 1)
	assert.Contains(t, cabalCalls[0].Args, "--reinstall")
}

func TestReconcileBenignExitTolerated(t *testing.T) {
	t.Parallel()

	env := &fakeRegistry{listing: "foo-1.0"}
	runner := &helpers.MockCommandRunner{
		RunFunc: func(ctx context.Context, name string, args ...string) (helpers.Result, error) {
			if args[0] == "install" {
				return helpers.Result{
					Stderr:   "cabal: All the requested packages are already installed:\nfoo-1.0\n",
					ExitCode: 1,
				}, exitError(1)
			}
			return env.runFunc()(ctx, name, args...)
		},
	}
	r := newTestReconciler(runner)

	outcome, err := r.Reconcile(context.Background(), testTools, &core.Request{
		State:           core.StatePresent,
		Package:         core.PackageRef{Name: "foo", Version: "1.0"},
		ForceReinstalls: true,
	})
	require.NoError(t, err)

	assert.True(t, outcome.Changed)
	assert.Equal(t, "installed foo==1.0", outcome.Message)
}

func TestReconcileActionFailedSurfacesOutput(t *testing.T) {
	t.Parallel()

	runner := &helpers.MockCommandRunner{
		RunFunc: func(ctx context.Context, name string, args ...string) (helpers.Result, error) {
			if args[0] == "install" {
				return helpers.Result{
					Stdout:   "Resolving dependencies...\n",
					Stderr:   "cabal: Could not resolve dependencies\n",
					ExitCode: 1,
				}, exitError(1)
			}
			return helpers.Result{}, nil
		},
	}
	r := newTestReconciler(runner)

	outcome, err := r.Reconcile(context.Background(), testTools, &core.Request{
		State:   core.StatePresent,
		Package: core.PackageRef{Name: "foo"},
	})
	assert.ErrorIs(t, err, core.ErrActionFailed)

	assert.False(t, outcome.Changed)
	assert.Contains(t, outcome.Message, "Could not resolve dependencies")
	assert.Contains(t, outcome.Message, "Resolving dependencies")
	assert.Equal(t, "Resolving dependencies...\n", outcome.Stdout)
	assert.Equal(t, "cabal: Could not resolve dependencies\n", outcome.Stderr)
	assert.Equal(t, 1, outcome.ExitCode)

	// The failed action is never followed by a verify query
	assert.Len(t, runner.CallsFor("/usr/bin/ghc-pkg"), 1)
}

func TestReconcileDiverged(t *testing.T) {
	t.Parallel()

	// The tool reports success but the registry never agrees
	runner := &helpers.MockCommandRunner{
		RunFunc: func(ctx context.Context, name string, args ...string) (helpers.Result, error) {
			return helpers.Result{}, nil
		},
	}
	r := newTestReconciler(runner)

	outcome, err := r.Reconcile(context.Background(), testTools, &core.Request{
		State:   core.StatePresent,
		Package: core.PackageRef{Name: "foo", Version: "1.0"},
	})
	assert.ErrorIs(t, err, core.ErrReconcileFailed)
	assert.False(t, outcome.Changed)
	assert.Contains(t, outcome.Message, "post-action state does not match")
	assert.Contains(t, err.Error(), "foo-1.0")

	// decide, act, verify: the exit code alone never implies convergence
	assert.Len(t, runner.Calls, 3)
}

func TestReconcileOnlyDepsSkipsVerify(t *testing.T) {
	t.Parallel()

	env := &fakeRegistry{listing: ""}
	runner := &helpers.MockCommandRunner{RunFunc: env.runFunc()}
	r := newTestReconciler(runner)

	outcome, err := r.Reconcile(context.Background(), testTools, &core.Request{
		State:    core.StatePresent,
		Package:  core.PackageRef{Name: "foo"},
		OnlyDeps: true,
	})
	require.NoError(t, err)

	assert.True(t, outcome.Changed)
	assert.Equal(t, "installed dependencies of foo", outcome.Message)

	// Only the decide query runs: the named package is intentionally
	// never registered by a dependency-only install
	assert.Len(t, runner.CallsFor("/usr/bin/ghc-pkg"), 1)
	cabalCalls := runner.CallsFor("/usr/bin/cabal")
	require.Len(t, cabalCalls, 1)
	assert.Contains(t, cabalCalls[0].Args, "--only-dependencies")
}

func TestReconcileQueryFailureStopsBeforeAction(t *testing.T) {
	t.Parallel()

	runner := &helpers.MockCommandRunner{
		RunFunc: func(ctx context.Context, name string, args ...string) (helpers.Result, error) {
			return helpers.Result{Stderr: "ghc-pkg: cannot parse database\n", ExitCode: 2}, exitError(2)
		},
	}
	r := newTestReconciler(runner)

	_, err := r.Reconcile(context.Background(), testTools, &core.Request{
		State:   core.StatePresent,
		Package: core.PackageRef{Name: "foo"},
	})
	assert.ErrorIs(t, err, core.ErrQueryFailed)
	assert.Empty(t, runner.CallsFor("/usr/bin/cabal"))
}

func TestReconcileInvalidRequestSpawnsNothing(t *testing.T) {
	t.Parallel()

	runner := &helpers.MockCommandRunner{}
	r := newTestReconciler(runner)

	_, err := r.Reconcile(context.Background(), testTools, &core.Request{
		State:       core.StatePresent,
		Package:     core.PackageRef{Name: "foo"},
		OnlyDeps:    true,
		UpgradeDeps: true,
	})
	assert.ErrorIs(t, err, core.ErrInvalidRequest)
	assert.Empty(t, runner.Calls)

	_, err = r.Reconcile(context.Background(), testTools, &core.Request{})
	assert.ErrorIs(t, err, core.ErrInvalidRequest)
	assert.Empty(t, runner.Calls)
}

func TestReconcilePassThroughVerbs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state       core.State
		listing     string
		wantVerb    string
		wantMessage string
	}{
		{core.StateRegister, "", "register", "registered foo-1.0"},
		{core.StateExpose, "", "expose", "exposed foo-1.0"},
		{core.StateHide, "foo-1.0", "hide", "hid foo-1.0"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.state), func(t *testing.T) {
			t.Parallel()

			env := &fakeRegistry{listing: tt.listing}
			runner := &helpers.MockCommandRunner{RunFunc: env.runFunc()}
			r := newTestReconciler(runner)

			outcome, err := r.Reconcile(context.Background(), testTools, &core.Request{
				State:   tt.state,
				Package: core.PackageRef{Name: "foo", Version: "1.0"},
			})
			require.NoError(t, err)

			assert.True(t, outcome.Changed)
			assert.Equal(t, tt.wantMessage, outcome.Message)

			ghcCalls := runner.CallsFor("/usr/bin/ghc-pkg")
			require.Len(t, ghcCalls, 3)
			assert.Equal(t, []string{tt.wantVerb, "foo-1.0", "--user"}, ghcCalls[1].Args)
		})
	}
}

func TestReconcileGlobalScopeFlowsEverywhere(t *testing.T) {
	t.Parallel()

	env := &fakeRegistry{listing: ""}
	runner := &helpers.MockCommandRunner{RunFunc: env.runFunc()}
	r := newTestReconciler(runner)

	_, err := r.Reconcile(context.Background(), testTools, &core.Request{
		State:   core.StatePresent,
		Package: core.PackageRef{Name: "foo", Version: "1.0"},
		Global:  true,
	})
	require.NoError(t, err)

	for _, call := range runner.Calls {
		assert.Contains(t, call.Args, "--global")
		assert.NotContains(t, call.Args, "--user")
	}
}
