package main

import (
	"context"
	"fmt"
	"os"

	"github.com/quantmind-br/cabalctl/internal/cmd"
	"github.com/quantmind-br/cabalctl/internal/config"
	"github.com/quantmind-br/cabalctl/internal/logging"
	"github.com/quantmind-br/cabalctl/internal/ui"
)

var version = "dev"

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	noColor := logging.ResolveNoColor(cfg.Logging.Color, os.Stderr)
	if noColor {
		ui.DisableColors()
	}

	// Initialize logger
	log := logging.NewLogger(logging.Config{
		Level:   cfg.Logging.Level,
		LogFile: cfg.Paths.LogFile,
		NoColor: noColor,
	})

	// Execute root command
	rootCmd := cmd.NewRootCmd(cfg, log, version)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
