package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/cabalctl/internal/config"
	"github.com/quantmind-br/cabalctl/internal/core"
	"github.com/quantmind-br/cabalctl/internal/fsops"
	"github.com/quantmind-br/cabalctl/internal/helpers"
	"github.com/quantmind-br/cabalctl/internal/journal"
	"github.com/quantmind-br/cabalctl/internal/toolpath"
	"github.com/quantmind-br/cabalctl/internal/ui"
)

// NewDoctorCmd creates the doctor command
func NewDoctorCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check toolchain and configuration health",
		Long:  `Check that cabal and ghc-pkg are resolvable, that the configured directories are writable, and that the journal is accessible.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ui.PrintHeader("System Diagnostics")
			fmt.Println()

			var issues []string
			var warnings []string

			fs := afero.NewOsFs()
			runner := helpers.NewOSCommandRunner()
			locator := toolpath.NewLocator(cfg, fs, runner)

			// 1. Toolchain resolution
			ui.PrintHeader("Toolchain")
			tools := []struct {
				name     core.Tool
				override string
			}{
				{core.ToolCabal, cfg.Tools.Cabal},
				{core.ToolGhcPkg, cfg.Tools.GhcPkg},
			}

			for _, tool := range tools {
				path, err := locator.Locate(string(tool.name), tool.override)
				if err != nil {
					ui.PrintError("%s: NOT FOUND", tool.name)
					issues = append(issues, fmt.Sprintf("cannot locate %s: %v", tool.name, err))
					continue
				}

				version := toolVersion(cmd.Context(), runner, path)
				if version != "" {
					ui.PrintSuccess("%s: %s (%s)", tool.name, path, version)
				} else {
					ui.PrintSuccess("%s: %s", tool.name, path)
					warnings = append(warnings, fmt.Sprintf("%s found but --version failed", tool.name))
				}
			}

			// 2. Search directories (verbose only)
			if verbose {
				fmt.Println()
				ui.PrintHeader("Search Directories")
				for _, dir := range locator.SearchDirs() {
					if fsops.IsDir(fs, dir) {
						ui.PrintSuccess("%s", dir)
					} else {
						ui.PrintInfo("%s: not present", dir)
					}
				}
			}

			fmt.Println()

			// 3. Directory structure
			ui.PrintHeader("Directories")
			dirs := []struct {
				path string
				name string
			}{
				{cfg.Paths.DataDir, "Data directory"},
				{filepath.Dir(cfg.Paths.JournalFile), "Journal directory"},
				{filepath.Dir(cfg.Paths.LogFile), "Log directory"},
			}

			for _, dir := range dirs {
				if err := checkDirectory(fs, dir.path); err != nil {
					ui.PrintError("%s: NOT WRITABLE (%s)", dir.name, dir.path)
					issues = append(issues, fmt.Sprintf("directory not writable: %s", dir.path))
				} else {
					ui.PrintSuccess("%s: %s", dir.name, dir.path)
				}
			}

			fmt.Println()

			// 4. Journal
			ui.PrintHeader("Journal")
			jnl, err := journal.Open(cmd.Context(), cfg.Paths.JournalFile)
			if err != nil {
				ui.PrintWarning("Journal: NOT ACCESSIBLE (%v)", err)
				warnings = append(warnings, fmt.Sprintf("cannot open journal: %v", err))
			} else {
				entries, err := jnl.Recent(cmd.Context(), 1)
				if err != nil {
					ui.PrintWarning("Journal: opened but unreadable (%v)", err)
					warnings = append(warnings, "journal opened but unreadable")
				} else if len(entries) == 0 {
					ui.PrintSuccess("Journal: accessible, empty (%s)", cfg.Paths.JournalFile)
				} else {
					ui.PrintSuccess("Journal: accessible (%s)", cfg.Paths.JournalFile)
					ui.PrintInfo("Last reconciliation: %s %s", entries[0].StartedAt.Format("2006-01-02 15:04"), entries[0].Message)
				}
				jnl.Close()
			}

			fmt.Println()

			// 5. Environment
			ui.PrintHeader("Environment")
			checkEnvironment()

			fmt.Println()

			// Summary
			ui.PrintHeader("Summary")
			fmt.Println()

			if len(issues) == 0 {
				ui.PrintSuccess("All critical checks passed!")
			} else {
				ui.PrintError("Found %d issue(s):", len(issues))
				for _, issue := range issues {
					fmt.Printf("  %s %s\n", ui.Bullet, issue)
				}
			}

			if len(warnings) > 0 {
				ui.PrintWarning("Found %d warning(s):", len(warnings))
				for _, warning := range warnings {
					fmt.Printf("  %s %s\n", ui.Bullet, warning)
				}
			}

			fmt.Println()

			if len(issues) > 0 {
				return fmt.Errorf("system check failed with %d issue(s)", len(issues))
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also list every search directory candidate")

	return cmd
}

// toolVersion asks an executable for its version, returning the first
// output line or empty on failure
func toolVersion(ctx context.Context, runner helpers.CommandRunner, path string) string {
	res, err := runner.Run(ctx, path, "--version")
	if err != nil {
		return ""
	}

	line := strings.TrimSpace(res.Stdout)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	return line
}

// checkDirectory ensures a directory exists and is writable
func checkDirectory(fs afero.Fs, path string) error {
	if path == "" {
		return fmt.Errorf("path not configured")
	}
	if err := fsops.EnsureDir(fs, path, 0o755); err != nil {
		return err
	}
	return fsops.CheckWritable(fs, path)
}

// checkEnvironment reports environment variables the toolchain honors
func checkEnvironment() {
	envVars := []string{
		"HOME",
		"PATH",
		"CABAL_DIR",
		"GHCUP_INSTALL_BASE_PREFIX",
		"NO_COLOR",
	}

	for _, name := range envVars {
		value := os.Getenv(name)
		if value == "" {
			ui.PrintInfo("%s: not set", name)
			continue
		}
		if name == "PATH" && len(value) > 60 {
			value = value[:57] + "..."
		}
		ui.PrintSuccess("%s: %s", name, value)
	}
}
