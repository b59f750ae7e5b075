package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/cabalctl/internal/config"
	"github.com/quantmind-br/cabalctl/internal/core"
	"github.com/quantmind-br/cabalctl/internal/helpers"
	"github.com/quantmind-br/cabalctl/internal/registry"
	"github.com/quantmind-br/cabalctl/internal/toolpath"
	"github.com/quantmind-br/cabalctl/internal/ui"
)

// NewRemoveCmd creates the remove command
func NewRemoveCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		yes     bool
		db      string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "remove NAME[-VERSION]",
		Short: "Unregister a package",
		Long: `Unregister a package from the registration database. When several
versions of the package are registered and none is pinned, an
interactive selector asks which one to remove.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOut {
				ui.DisableColors()
			}

			name, version := helpers.SplitRegistryToken(args[0])
			ref := core.PackageRef{Name: name, Version: version}
			global := resolveScope(cmd, cfg)
			interactive := !yes && !jsonOut

			if interactive && ref.Version == "" {
				picked, err := pickRegisteredVersion(cmd, cfg, log, ref, global)
				if err != nil {
					return err
				}
				ref = picked
			}

			if interactive {
				confirmed, err := ui.ConfirmDangerousAction("unregister", ref.String())
				if err != nil || !confirmed {
					ui.PrintWarning("Removal cancelled. Nothing was unregistered.")
					return nil
				}
			}

			log.Info().
				Str("package", ref.String()).
				Bool("global", global).
				Msg("starting removal")

			req := &core.Request{
				State:   core.StateAbsent,
				Package: ref,
				Global:  global,
				DB:      db,
			}

			return runRequests(cmd.Context(), cfg, log, cmd.OutOrStdout(), []*core.Request{req}, jsonOut)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().StringVar(&db, "db", "", "alternate package database path")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the outcome as a single JSON line")
	addScopeFlags(cmd)

	return cmd
}

// pickRegisteredVersion narrows an unpinned reference when several
// versions of the package are registered. With zero or one registration
// the reference passes through untouched and the reconciler reports the
// usual outcome.
func pickRegisteredVersion(cmd *cobra.Command, cfg *config.Config, log *zerolog.Logger, ref core.PackageRef, global bool) (core.PackageRef, error) {
	runner := helpers.NewOSCommandRunner()
	locator := toolpath.NewLocator(cfg, afero.NewOsFs(), runner)

	probe := &core.Request{State: core.StateAbsent, Package: ref, Global: global}
	tools, err := locator.Resolve(probe)
	if err != nil {
		return ref, err
	}

	registered, err := registry.New(runner, log).List(cmd.Context(), tools.GhcPkg, global)
	if err != nil {
		return ref, err
	}

	var versions []core.PackageRef
	for _, r := range registered {
		if r.Name == ref.Name {
			versions = append(versions, r)
		}
	}

	if len(versions) <= 1 {
		return ref, nil
	}

	options := make([]string, 0, len(versions))
	for _, v := range versions {
		options = append(options, v.String())
	}

	ui.PrintInfo("%d registered versions of %s found", len(versions), ref.Name)
	idx, _, err := ui.SelectPrompt(fmt.Sprintf("Select the version of %s to unregister", ref.Name), options)
	if err != nil {
		return ref, fmt.Errorf("selection cancelled: %w", err)
	}

	return versions[idx], nil
}
