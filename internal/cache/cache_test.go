package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/cabalctl/internal/core"
	"github.com/quantmind-br/cabalctl/internal/helpers"
)

func newTestManager(runner *helpers.MockCommandRunner) *Manager {
	nop := zerolog.Nop()
	return NewManager(runner, &nop)
}

func TestUpdateIndexComposesCommand(t *testing.T) {
	t.Parallel()

	runner := &helpers.MockCommandRunner{
		RunFunc: func(ctx context.Context, name string, args ...string) (helpers.Result, error) {
			return helpers.Result{Stdout: "Downloading the latest package list\n"}, nil
		},
	}
	m := newTestManager(runner)

	refresh, err := m.UpdateIndex(context.Background(), "/usr/bin/cabal", false)
	require.NoError(t, err)

	require.Len(t, runner.Calls, 1)
	assert.Equal(t, "/usr/bin/cabal", runner.Calls[0].Name)
	assert.Equal(t, []string{"update", "--user"}, runner.Calls[0].Args)
	assert.Equal(t, "/usr/bin/cabal update --user", refresh.Cmd)
	assert.Contains(t, refresh.Result.Stdout, "latest package list")

	_, err = m.UpdateIndex(context.Background(), "/usr/bin/cabal", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"update", "--global"}, runner.Calls[1].Args)
}

func TestUpdateIndexFailure(t *testing.T) {
	t.Parallel()

	runner := &helpers.MockCommandRunner{
		RunFunc: func(ctx context.Context, name string, args ...string) (helpers.Result, error) {
			return helpers.Result{Stderr: "cabal: connection refused", ExitCode: 1},
				errors.New(`command "cabal" failed: exit status 1`)
		},
	}
	m := newTestManager(runner)

	refresh, err := m.UpdateIndex(context.Background(), "cabal", false)
	assert.ErrorIs(t, err, core.ErrActionFailed)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, refresh.Result.ExitCode)
}
