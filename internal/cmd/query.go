package cmd

import (
	"encoding/json"
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

// NewQueryCmd creates the query command
func NewQueryCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "query NAME[-VERSION]",
		Short: "Check whether a package is registered",
		Long: `Probe the registration database once and report the result. Exits 0
when the package is registered and 1 when it is not, so scripts can
branch on the answer without parsing output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOut {
				ui.DisableColors()
			}

			name, version := helpers.SplitRegistryToken(args[0])
			ref := core.PackageRef{Name: name, Version: version}
			global := resolveScope(cmd, cfg)

			runner := helpers.NewOSCommandRunner()
			locator := toolpath.NewLocator(cfg, afero.NewOsFs(), runner)

			tools, err := locator.Resolve(&core.Request{Package: ref, Global: global})
			if err != nil {
				return err
			}

			probe, err := registry.New(runner, log).IsRegistered(cmd.Context(), tools.GhcPkg, ref, global)
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				if err := enc.Encode(queryResult{
					Name:       ref.Name,
					Version:    ref.Version,
					Registered: probe.Registered,
					Cmd:        probe.Cmd,
				}); err != nil {
					return err
				}
			} else if probe.Registered {
				ui.PrintSuccess("%s is registered (%s scope)", ref, scopeName(global))
			} else {
				ui.PrintWarning("%s is not registered (%s scope)", ref, scopeName(global))
			}

			if !probe.Registered {
				return fmt.Errorf("%s is not registered", ref)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the probe result as a single JSON line")
	addScopeFlags(cmd)

	return cmd
}

// queryResult is the JSON shape of a probe answer
type queryResult struct {
	Name       string `json:"name"`
	Version    string `json:"version,omitempty"`
	Registered bool   `json:"registered"`
	Cmd        string `json:"cmd"`
}

func scopeName(global bool) string {
	if global {
		return "global"
	}
	return "user"
}
