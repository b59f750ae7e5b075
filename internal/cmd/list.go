package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
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

// NewListCmd creates the list command
func NewListCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		jsonOut bool
		sortBy  string
	)

	cmd := &cobra.Command{
		Use:   "list [FILTER]",
		Short: "List registered packages",
		Long:  `List the packages registered in the selected package database, with optional fuzzy filtering by name.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOut {
				ui.DisableColors()
			}

			global := resolveScope(cmd, cfg)

			runner := helpers.NewOSCommandRunner()
			locator := toolpath.NewLocator(cfg, afero.NewOsFs(), runner)

			tools, err := locator.Resolve(&core.Request{Global: global})
			if err != nil {
				ui.PrintError("failed to resolve toolchain: %v", err)
				return err
			}

			packages, err := registry.New(runner, log).List(cmd.Context(), tools.GhcPkg, global)
			if err != nil {
				ui.PrintError("failed to list packages: %v", err)
				return err
			}

			filter := ""
			if len(args) == 1 {
				filter = args[0]
			}
			filtered := filterPackages(packages, filter)
			sortPackages(filtered, sortBy)

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(listResult(filtered))
			}

			if len(filtered) == 0 {
				if filter != "" {
					ui.PrintWarning("No packages match %q", filter)
				} else {
					ui.PrintInfo("No packages registered in the %s database", scopeName(global))
				}
				return nil
			}

			printPackageSummary(packages, filtered, filter, global)
			printPackageTable(cmd, filtered)

			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	cmd.Flags().StringVar(&sortBy, "sort", "name", "sort by: name, version")
	addScopeFlags(cmd)

	return cmd
}

// filterPackages keeps packages whose name fuzzy-matches the filter
func filterPackages(packages []core.PackageRef, filter string) []core.PackageRef {
	if filter == "" {
		return packages
	}

	filtered := make([]core.PackageRef, 0, len(packages))
	for _, pkg := range packages {
		if fuzzy.MatchNormalizedFold(filter, pkg.Name) {
			filtered = append(filtered, pkg)
		}
	}
	return filtered
}

// sortPackages sorts packages by the specified field
func sortPackages(packages []core.PackageRef, sortBy string) {
	switch strings.ToLower(sortBy) {
	case "version":
		sort.Slice(packages, func(i, j int) bool {
			if packages[i].Version == packages[j].Version {
				return packages[i].Name < packages[j].Name
			}
			return packages[i].Version < packages[j].Version
		})
	default:
		sort.Slice(packages, func(i, j int) bool {
			if packages[i].Name == packages[j].Name {
				return packages[i].Version < packages[j].Version
			}
			return packages[i].Name < packages[j].Name
		})
	}
}

// listResult converts packages to the JSON output shape
func listResult(packages []core.PackageRef) []listEntry {
	entries := make([]listEntry, 0, len(packages))
	for _, pkg := range packages {
		entries = append(entries, listEntry{Name: pkg.Name, Version: pkg.Version})
	}
	return entries
}

type listEntry struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// printPackageSummary prints the header and counts
func printPackageSummary(all, filtered []core.PackageRef, filter string, global bool) {
	ui.PrintHeader("Registered Packages")

	fmt.Printf("Scope: %s\n", scopeName(global))
	fmt.Printf("Total: %d packages", len(all))
	if len(filtered) != len(all) {
		fmt.Printf(" (showing %d matching %q)", len(filtered), filter)
	}
	fmt.Println()
	fmt.Println()
}

// printPackageTable prints the package table
func printPackageTable(cmd *cobra.Command, packages []core.PackageRef) {
	table := tablewriter.NewTable(cmd.OutOrStdout(),
		tablewriter.WithHeader([]string{"Name", "Version"}),
		tablewriter.WithAlignment(tw.MakeAlign(2, tw.AlignLeft)),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
	)

	for _, pkg := range packages {
		version := pkg.Version
		if version == "" {
			version = "-"
		}
		table.Append(pkg.Name, version)
	}

	table.Render()
}
