package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog"

	"github.com/quantmind-br/cabalctl/internal/core"
	"github.com/quantmind-br/cabalctl/internal/helpers"
)

// Query drives the registry tool's listing subcommand. It is the single
// source of truth for "is this package registered": results are never
// cached, every call spawns a fresh process.
type Query struct {
	runner helpers.CommandRunner
	log    *zerolog.Logger
}

// New creates a Query
func New(runner helpers.CommandRunner, log *zerolog.Logger) *Query {
	return &Query{
		runner: runner,
		log:    log,
	}
}

// Probe is the observation one listing spawn produced
type Probe struct {
	Registered bool
	Cmd        string
	Result     helpers.Result
}

// IsRegistered invokes the listing subcommand filtered to ref's name and
// reports whether ref is registered in the selected scope. A package that
// is simply absent yields a clean negative, not an error.
func (q *Query) IsRegistered(ctx context.Context, ghcPkg string, ref core.PackageRef, global bool) (Probe, error) {
	args := []string{"list", ref.Name, "--simple-output", scopeFlag(global)}

	probe := Probe{Cmd: shellquote.Join(append([]string{ghcPkg}, args...)...)}

	q.log.Debug().
		Str("package", ref.String()).
		Str("cmd", probe.Cmd).
		Msg("querying package registry")

	res, err := q.runner.Run(ctx, ghcPkg, args...)
	probe.Result = res
	if err != nil {
		detail := strings.TrimSpace(res.Combined())
		if detail == "" {
			detail = err.Error()
		}
		return probe, fmt.Errorf("%w: %s", core.ErrQueryFailed, detail)
	}

	probe.Registered = Matches(res.Stdout, ref)
	return probe, nil
}

// List returns every package registered in the selected scope
func (q *Query) List(ctx context.Context, ghcPkg string, global bool) ([]core.PackageRef, error) {
	args := []string{"list", "--simple-output", scopeFlag(global)}

	q.log.Debug().Str("tool", ghcPkg).Msg("listing registered packages")

	res, err := q.runner.Run(ctx, ghcPkg, args...)
	if err != nil {
		detail := strings.TrimSpace(res.Combined())
		if detail == "" {
			detail = err.Error()
		}
		return nil, fmt.Errorf("%w: %s", core.ErrQueryFailed, detail)
	}

	var refs []core.PackageRef
	for _, token := range strings.Fields(res.Stdout) {
		name, version := helpers.SplitRegistryToken(token)
		refs = append(refs, core.PackageRef{Name: name, Version: version})
	}
	return refs, nil
}

// Matches reports whether ref appears in a simple-output listing. The
// listing is whitespace-separated name-version tokens; matching is exact,
// so a name that is a prefix of another package's name never matches.
// Both the decide and the verify passes of a reconciliation go through
// this one predicate.
func Matches(output string, ref core.PackageRef) bool {
	want := ref.RegistryToken()
	for _, token := range strings.Fields(output) {
		if ref.Version != "" {
			if token == want {
				return true
			}
			continue
		}
		name, _ := helpers.SplitRegistryToken(token)
		if name == ref.Name {
			return true
		}
	}
	return false
}

// scopeFlag renders the namespace selector. Exactly one of the two flags
// accompanies every listing invocation.
func scopeFlag(global bool) string {
	if global {
		return "--global"
	}
	return "--user"
}
