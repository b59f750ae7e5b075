package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/quantmind-br/cabalctl/internal/config"
	"github.com/quantmind-br/cabalctl/internal/core"
	"github.com/quantmind-br/cabalctl/internal/fsops"
	"github.com/quantmind-br/cabalctl/internal/ui"
)

// NewApplyCmd creates the apply command, the full declarative interface.
// Every composition option is a flag; alternatively a YAML state file
// declares a whole list of packages to reconcile in order.
func NewApplyCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		stateFile       string
		state           string
		name            string
		version         string
		onlyDeps        bool
		upgradeDeps     bool
		solver          string
		reinstall       bool
		forceReinstalls bool
		jobs            int
		db              string
		compiler        string
		extraArgs       []string
		executable      string
		ghcPkgPath      string
		updateCache     bool
		jsonOut         bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Reconcile packages to a declared state",
		Long: `Reconcile one package (via flags) or a list of packages (via a YAML
state file) to the declared desired state. Queries the registration
database first, acts only when the observed state diverges, and verifies
afterwards. The outcome reports whether anything changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOut {
				ui.DisableColors()
			}

			if stateFile != "" {
				if cmd.Flags().Changed("state") || cmd.Flags().Changed("name") {
					return fmt.Errorf("a state file and per-package flags cannot be combined")
				}

				reqs, err := loadStateFile(afero.NewOsFs(), stateFile, cfg)
				if err != nil {
					return fmt.Errorf("load state file: %w", err)
				}

				log.Info().Str("file", stateFile).Int("requests", len(reqs)).Msg("applying state file")
				return runRequests(cmd.Context(), cfg, log, cmd.OutOrStdout(), reqs, jsonOut)
			}

			// Bare --update-cache keeps the state empty so the run is
			// journaled as an index refresh, not a reconciliation
			if name == "" && !cmd.Flags().Changed("state") {
				state = ""
			}

			req := &core.Request{
				State:           core.State(state),
				Package:         core.PackageRef{Name: name, Version: version},
				OnlyDeps:        onlyDeps,
				UpgradeDeps:     upgradeDeps,
				Global:          resolveScope(cmd, cfg),
				Solver:          solver,
				Documentation:   resolveDocumentation(cmd, cfg),
				Reinstall:       reinstall,
				ForceReinstalls: forceReinstalls,
				Jobs:            jobs,
				DB:              db,
				Compiler:        compiler,
				ExtraArgs:       extraArgs,
				Executable:      executable,
				GhcPkgPath:      ghcPkgPath,
				UpdateCache:     updateCache,
			}

			log.Info().
				Str("state", state).
				Str("name", name).
				Bool("update_cache", updateCache).
				Msg("applying request")

			return runRequests(cmd.Context(), cfg, log, cmd.OutOrStdout(), []*core.Request{req}, jsonOut)
		},
	}

	cmd.Flags().StringVarP(&stateFile, "file", "f", "", "YAML state file declaring packages to reconcile")
	cmd.Flags().StringVarP(&state, "state", "s", "present", "desired state: present, absent, latest, register, expose, hide")
	cmd.Flags().StringVarP(&name, "name", "n", "", "package name")
	cmd.Flags().StringVar(&version, "version", "", "exact package version")
	cmd.Flags().BoolVar(&onlyDeps, "only-deps", false, "install dependencies only, skip the package itself")
	cmd.Flags().BoolVar(&upgradeDeps, "upgrade-deps", false, "force latest versions for all dependencies")
	cmd.Flags().StringVar(&solver, "solver", "", "dependency solver strategy")
	cmd.Flags().Bool("documentation", false, "build documentation")
	cmd.Flags().Bool("no-documentation", false, "skip building documentation")
	cmd.Flags().BoolVar(&reinstall, "reinstall", false, "act even when the package is already installed")
	cmd.Flags().BoolVar(&forceReinstalls, "force-reinstalls", false, "allow reinstalls that break existing packages")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "parallel build job count")
	cmd.Flags().StringVar(&db, "db", "", "alternate package database path")
	cmd.Flags().StringVar(&compiler, "compiler", "", "alternate compiler path")
	cmd.Flags().StringArrayVar(&extraArgs, "extra-arg", nil, "extra argument passed through verbatim (repeatable)")
	cmd.Flags().StringVar(&executable, "executable", "", "explicit path to the cabal executable")
	cmd.Flags().StringVar(&ghcPkgPath, "ghc-pkg", "", "explicit path to the ghc-pkg executable")
	cmd.Flags().BoolVar(&updateCache, "update-cache", false, "refresh the package index before acting")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the outcome as a single JSON line")
	addScopeFlags(cmd)
	cmd.MarkFlagsMutuallyExclusive("documentation", "no-documentation")
	cmd.MarkFlagsMutuallyExclusive("only-deps", "upgrade-deps")

	return cmd
}

// requestSpec is one entry of a YAML state file. Scope and documentation
// are tri-state so an absent key falls back to the configured default.
type requestSpec struct {
	State           string   `yaml:"state"`
	Name            string   `yaml:"name"`
	Version         string   `yaml:"version"`
	OnlyDeps        bool     `yaml:"only_deps"`
	UpgradeDeps     bool     `yaml:"upgrade_deps"`
	Global          *bool    `yaml:"global"`
	Solver          string   `yaml:"solver"`
	Documentation   *bool    `yaml:"documentation"`
	Reinstall       bool     `yaml:"reinstall"`
	ForceReinstalls bool     `yaml:"force_reinstalls"`
	Jobs            int      `yaml:"jobs"`
	DB              string   `yaml:"db"`
	Compiler        string   `yaml:"compiler"`
	ExtraArgs       []string `yaml:"extra_args"`
	Executable      string   `yaml:"executable"`
	GhcPkg          string   `yaml:"ghc_pkg"`
	UpdateCache     bool     `yaml:"update_cache"`
}

// toRequest converts a YAML entry into a Request, filling unset scope and
// documentation from the configured defaults.
func (s requestSpec) toRequest(cfg *config.Config) *core.Request {
	state := s.State
	if state == "" && !s.UpdateCache {
		state = string(core.StatePresent)
	}

	global := cfg.Defaults.Global
	if s.Global != nil {
		global = *s.Global
	}

	docs := s.Documentation
	if docs == nil && cfg.Defaults.Documentation {
		v := true
		docs = &v
	}

	return &core.Request{
		State:           core.State(state),
		Package:         core.PackageRef{Name: s.Name, Version: s.Version},
		OnlyDeps:        s.OnlyDeps,
		UpgradeDeps:     s.UpgradeDeps,
		Global:          global,
		Solver:          s.Solver,
		Documentation:   docs,
		Reinstall:       s.Reinstall,
		ForceReinstalls: s.ForceReinstalls,
		Jobs:            s.Jobs,
		DB:              s.DB,
		Compiler:        s.Compiler,
		ExtraArgs:       s.ExtraArgs,
		Executable:      s.Executable,
		GhcPkgPath:      s.GhcPkg,
		UpdateCache:     s.UpdateCache,
	}
}

// loadStateFile parses a YAML state file into requests, preserving order
func loadStateFile(fs afero.Fs, path string, cfg *config.Config) ([]*core.Request, error) {
	if !fsops.Exists(fs, path) {
		return nil, fmt.Errorf("state file %s does not exist", path)
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var specs []requestSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if len(specs) == 0 {
		return nil, fmt.Errorf("%s declares no packages", path)
	}

	reqs := make([]*core.Request, 0, len(specs))
	for _, spec := range specs {
		reqs = append(reqs, spec.toRequest(cfg))
	}
	return reqs, nil
}
