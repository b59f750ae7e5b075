package cmd

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/cabalctl/internal/config"
	"github.com/quantmind-br/cabalctl/internal/helpers"
)

func TestNewDoctorCmd(t *testing.T) {
	t.Parallel()
	logger := zerolog.New(io.Discard)
	cfg := &config.Config{}

	cmd := NewDoctorCmd(cfg, &logger)

	assert.NotNil(t, cmd)
	assert.Equal(t, "doctor", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("verbose"))
}

func TestToolVersion(t *testing.T) {
	t.Parallel()

	t.Run("first line of output", func(t *testing.T) {
		t.Parallel()
		runner := &helpers.MockCommandRunner{
			RunFunc: func(ctx context.Context, name string, args ...string) (helpers.Result, error) {
				assert.Equal(t, []string{"--version"}, args)
				return helpers.Result{Stdout: "cabal-install version 3.10.2.0\ncompiled using version 3.10.2.0 of the Cabal library\n"}, nil
			},
		}

		got := toolVersion(context.Background(), runner, "/usr/bin/cabal")
		assert.Equal(t, "cabal-install version 3.10.2.0", got)
	})

	t.Run("failure yields empty", func(t *testing.T) {
		t.Parallel()
		runner := &helpers.MockCommandRunner{
			RunFunc: func(ctx context.Context, name string, args ...string) (helpers.Result, error) {
				return helpers.Result{ExitCode: 1}, errors.New("exec format error")
			},
		}

		assert.Empty(t, toolVersion(context.Background(), runner, "/usr/bin/cabal"))
	})
}

func TestCheckDirectory(t *testing.T) {
	t.Parallel()

	t.Run("creates missing directory", func(t *testing.T) {
		t.Parallel()
		fs := afero.NewMemMapFs()

		require.NoError(t, checkDirectory(fs, "/data/cabalctl"))

		info, err := fs.Stat("/data/cabalctl")
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("empty path is an error", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, checkDirectory(afero.NewMemMapFs(), ""))
	})

	t.Run("read-only filesystem", func(t *testing.T) {
		t.Parallel()
		fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
		assert.Error(t, checkDirectory(fs, "/data"))
	})
}
