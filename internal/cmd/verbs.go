package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/cabalctl/internal/config"
	"github.com/quantmind-br/cabalctl/internal/core"
	"github.com/quantmind-br/cabalctl/internal/helpers"
	"github.com/quantmind-br/cabalctl/internal/ui"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	return newRegistryVerbCmd(cfg, log, core.StateRegister,
		"Register a package in the registration database",
		`Re-register a package that was unregistered or whose registration is
stale. Always runs the registry tool, even when the package already
appears registered.`)
}

// NewExposeCmd creates the expose command
func NewExposeCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	return newRegistryVerbCmd(cfg, log, core.StateExpose,
		"Expose a package to the compiler",
		`Mark a registered package as exposed so the compiler picks it up by
default. Always runs the registry tool.`)
}

// NewHideCmd creates the hide command
func NewHideCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	return newRegistryVerbCmd(cfg, log, core.StateHide,
		"Hide a package from the compiler",
		`Mark a registered package as hidden so the compiler ignores it unless
asked explicitly. Always runs the registry tool.`)
}

// newRegistryVerbCmd builds one of the registry pass-through verbs. They
// share the exact shape: a package token argument, scope flags, an
// optional database override, and no short-circuit.
func newRegistryVerbCmd(cfg *config.Config, log *zerolog.Logger, state core.State, short, long string) *cobra.Command {
	var (
		db      string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   string(state) + " NAME[-VERSION]",
		Short: short,
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOut {
				ui.DisableColors()
			}

			name, version := helpers.SplitRegistryToken(args[0])

			log.Info().
				Str("package", args[0]).
				Str("state", string(state)).
				Msg("running registry verb")

			req := &core.Request{
				State:   state,
				Package: core.PackageRef{Name: name, Version: version},
				Global:  resolveScope(cmd, cfg),
				DB:      db,
			}

			return runRequests(cmd.Context(), cfg, log, cmd.OutOrStdout(), []*core.Request{req}, jsonOut)
		},
	}

	cmd.Flags().StringVar(&db, "db", "", "alternate package database path")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the outcome as a single JSON line")
	addScopeFlags(cmd)

	return cmd
}
