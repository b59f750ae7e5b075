package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/cabalctl/internal/config"
	"github.com/quantmind-br/cabalctl/internal/core"
	"github.com/quantmind-br/cabalctl/internal/ui"
)

// NewUpdateCmd creates the update command
func NewUpdateCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Refresh the package index",
		Long: `Download the latest package index. Refreshing is never a no-op: the
outcome always reports changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOut {
				ui.DisableColors()
			}

			log.Info().Msg("refreshing package index")

			req := &core.Request{
				Global:      resolveScope(cmd, cfg),
				UpdateCache: true,
			}

			return runRequests(cmd.Context(), cfg, log, cmd.OutOrStdout(), []*core.Request{req}, jsonOut)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the outcome as a single JSON line")
	addScopeFlags(cmd)

	return cmd
}
