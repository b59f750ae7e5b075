package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/cabalctl/internal/config"
	"github.com/quantmind-br/cabalctl/internal/core"
	"github.com/quantmind-br/cabalctl/internal/fsops"
	"github.com/quantmind-br/cabalctl/internal/helpers"
	"github.com/quantmind-br/cabalctl/internal/journal"
	"github.com/quantmind-br/cabalctl/internal/reconcile"
	"github.com/quantmind-br/cabalctl/internal/report"
	"github.com/quantmind-br/cabalctl/internal/toolpath"
	"github.com/quantmind-br/cabalctl/internal/ui"
)

// runRequests drives each request through the reconciler, renders every
// outcome to w and journals it. Requests run strictly in order; a failed
// one does not stop the remaining ones, but any failure makes the whole
// run exit non-zero.
func runRequests(ctx context.Context, cfg *config.Config, log *zerolog.Logger, w io.Writer, reqs []*core.Request, jsonOut bool) error {
	runner := helpers.NewOSCommandRunner()
	locator := toolpath.NewLocator(cfg, afero.NewOsFs(), runner)
	reconciler := reconcile.New(runner, log)

	jnl := openJournal(ctx, cfg, log)
	if jnl != nil {
		defer jnl.Close()
	}

	var firstErr error
	failures := 0

	for _, req := range reqs {
		outcome, err := runOne(ctx, locator, reconciler, req, jsonOut)

		if renderErr := report.Render(w, outcome, err, jsonOut); renderErr != nil {
			log.Warn().Err(renderErr).Msg("failed to render outcome")
		}

		if jnl != nil {
			if appendErr := jnl.Append(ctx, journal.NewEntry(req, outcome)); appendErr != nil {
				log.Warn().Err(appendErr).Msg("failed to journal reconciliation")
			}
		}

		if err != nil {
			failures++
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if failures > 0 && len(reqs) > 1 {
		return fmt.Errorf("%d of %d reconciliations failed: %w", failures, len(reqs), firstErr)
	}
	return firstErr
}

// runOne resolves the toolchain for a single request and reconciles it.
// Tool resolution failure yields a synthetic outcome so the reporter has
// something to show.
func runOne(ctx context.Context, locator *toolpath.Locator, reconciler *reconcile.Reconciler, req *core.Request, jsonOut bool) (core.Outcome, error) {
	tools, err := locator.Resolve(req)
	if err != nil {
		return core.Outcome{Message: err.Error()}, err
	}

	var spin *ui.Spinner
	if !jsonOut {
		spin = ui.NewSpinner(spinnerLabel(req))
	}

	outcome, err := reconciler.Reconcile(ctx, tools, req)

	if spin != nil {
		_ = spin.Finish()
	}
	return outcome, err
}

func spinnerLabel(req *core.Request) string {
	if req.Package.Name == "" {
		return "refreshing package index"
	}
	return fmt.Sprintf("reconciling %s (%s)", req.Package, req.State)
}

// openJournal opens the audit journal, creating its directory if needed.
// The journal is advisory: any failure here degrades to a warning and the
// reconciliation proceeds without it.
func openJournal(ctx context.Context, cfg *config.Config, log *zerolog.Logger) *journal.Journal {
	if cfg.Paths.JournalFile == "" {
		return nil
	}

	fs := afero.NewOsFs()
	if err := fsops.EnsureDir(fs, filepath.Dir(cfg.Paths.JournalFile), 0o755); err != nil {
		log.Warn().Err(err).Str("path", cfg.Paths.JournalFile).Msg("cannot create journal directory")
		return nil
	}

	jnl, err := journal.Open(ctx, cfg.Paths.JournalFile)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.Paths.JournalFile).Msg("cannot open journal")
		return nil
	}
	return jnl
}

// resolveScope applies the flag pair over the configured default: an
// explicit --local or --global always wins, otherwise defaults.global
// decides.
func resolveScope(cmd *cobra.Command, cfg *config.Config) bool {
	if cmd.Flags().Changed("local") {
		return false
	}
	if cmd.Flags().Changed("global") {
		return true
	}
	return cfg.Defaults.Global
}

// resolveDocumentation applies the flag pair over the configured default.
// nil means "no preference expressed anywhere"; the composer renders that
// as documentation disabled.
func resolveDocumentation(cmd *cobra.Command, cfg *config.Config) *bool {
	if cmd.Flags().Changed("documentation") {
		v := true
		return &v
	}
	if cmd.Flags().Changed("no-documentation") {
		v := false
		return &v
	}
	if cfg.Defaults.Documentation {
		v := true
		return &v
	}
	return nil
}

// addScopeFlags registers the --global/--local pair shared by every verb
// that touches a package database.
func addScopeFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("global", false, "operate on the system-wide package database")
	cmd.Flags().Bool("local", false, "operate on the user package database (default)")
	cmd.MarkFlagsMutuallyExclusive("global", "local")
}
