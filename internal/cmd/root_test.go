package cmd

import (
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/quantmind-br/cabalctl/internal/config"
)

func TestNewRootCmd(t *testing.T) {
	t.Parallel()
	logger := zerolog.New(io.Discard)
	cfg := &config.Config{}

	cmd := NewRootCmd(cfg, &logger, "1.0.0")

	assert.NotNil(t, cmd)
	assert.Equal(t, "cabalctl", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
}

func TestRootCmdSubcommands(t *testing.T) {
	t.Parallel()
	logger := zerolog.New(io.Discard)
	cfg := &config.Config{}

	cmd := NewRootCmd(cfg, &logger, "1.0.0")

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{
		"apply", "install", "remove", "register", "expose", "hide",
		"query", "update", "list", "history", "doctor", "completion", "version",
	} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}
