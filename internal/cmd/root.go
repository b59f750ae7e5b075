package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/cabalctl/internal/config"
	"github.com/quantmind-br/cabalctl/internal/logging"
)

// NewRootCmd creates the root command
func NewRootCmd(cfg *config.Config, log *zerolog.Logger, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "cabalctl",
		Short:        "Declarative package-state control for the cabal toolchain",
		Long:         `cabalctl reconciles Haskell packages to a declared state (present, absent, latest, register, expose, hide) by driving cabal and ghc-pkg, reporting exactly what changed.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// JSON output and --quiet both silence console logging so
			// stdout stays machine-parseable; the file log still records
			quiet, _ := cmd.Flags().GetBool("quiet")
			if !quiet && cmd.Flags().Lookup("json") != nil {
				quiet, _ = cmd.Flags().GetBool("json")
			}
			if quiet {
				*log = *logging.NewLogger(logging.Config{
					Level:   cfg.Logging.Level,
					LogFile: cfg.Paths.LogFile,
					NoColor: true,
					Quiet:   true,
				})
			}
		},
	}

	cmd.PersistentFlags().Bool("quiet", false, "suppress console logging (the file log is still written)")

	// Add subcommands
	cmd.AddCommand(NewApplyCmd(cfg, log))
	cmd.AddCommand(NewInstallCmd(cfg, log))
	cmd.AddCommand(NewRemoveCmd(cfg, log))
	cmd.AddCommand(NewRegisterCmd(cfg, log))
	cmd.AddCommand(NewExposeCmd(cfg, log))
	cmd.AddCommand(NewHideCmd(cfg, log))
	cmd.AddCommand(NewQueryCmd(cfg, log))
	cmd.AddCommand(NewUpdateCmd(cfg, log))
	cmd.AddCommand(NewListCmd(cfg, log))
	cmd.AddCommand(NewHistoryCmd(cfg, log))
	cmd.AddCommand(NewDoctorCmd(cfg, log))
	cmd.AddCommand(NewCompletionCmd(cfg, log))
	cmd.AddCommand(NewVersionCmd(version))

	return cmd
}
