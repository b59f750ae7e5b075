package cmd

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/cabalctl/internal/config"
	"github.com/quantmind-br/cabalctl/internal/core"
	"github.com/quantmind-br/cabalctl/internal/ui"
)

// NewInstallCmd creates the install command
func NewInstallCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		latest      bool
		onlyDeps    bool
		upgradeDeps bool
		reinstall   bool
		jobs        int
		solver      string
		updateCache bool
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:   "install NAME[==VERSION]",
		Short: "Install a package",
		Long: `Install a package, optionally pinned to an exact version with the
NAME==VERSION form. Already-installed packages are left alone unless
--reinstall is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOut {
				ui.DisableColors()
			}

			ref := parseInstallArg(args[0])

			state := core.StatePresent
			if latest {
				state = core.StateLatest
			}

			log.Info().
				Str("package", ref.String()).
				Str("state", string(state)).
				Msg("starting installation")

			req := &core.Request{
				State:         state,
				Package:       ref,
				OnlyDeps:      onlyDeps,
				UpgradeDeps:   upgradeDeps,
				Global:        resolveScope(cmd, cfg),
				Solver:        solver,
				Documentation: resolveDocumentation(cmd, cfg),
				Reinstall:     reinstall,
				Jobs:          jobs,
				UpdateCache:   updateCache,
			}

			return runRequests(cmd.Context(), cfg, log, cmd.OutOrStdout(), []*core.Request{req}, jsonOut)
		},
	}

	cmd.Flags().BoolVar(&latest, "latest", false, "install the newest available version")
	cmd.Flags().BoolVar(&onlyDeps, "only-deps", false, "install dependencies only, skip the package itself")
	cmd.Flags().BoolVar(&upgradeDeps, "upgrade-deps", false, "force latest versions for all dependencies")
	cmd.Flags().BoolVar(&reinstall, "reinstall", false, "act even when the package is already installed")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "parallel build job count")
	cmd.Flags().StringVar(&solver, "solver", "", "dependency solver strategy")
	cmd.Flags().Bool("documentation", false, "build documentation")
	cmd.Flags().Bool("no-documentation", false, "skip building documentation")
	cmd.Flags().BoolVar(&updateCache, "update-cache", false, "refresh the package index first")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the outcome as a single JSON line")
	addScopeFlags(cmd)
	cmd.MarkFlagsMutuallyExclusive("documentation", "no-documentation")
	cmd.MarkFlagsMutuallyExclusive("only-deps", "upgrade-deps")
	cmd.MarkFlagsMutuallyExclusive("latest", "only-deps")

	return cmd
}

// parseInstallArg splits the NAME==VERSION argument form. A bare name
// means any version.
func parseInstallArg(arg string) core.PackageRef {
	if name, version, found := strings.Cut(arg, "=="); found {
		return core.PackageRef{Name: name, Version: version}
	}
	return core.PackageRef{Name: arg}
}
