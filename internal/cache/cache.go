package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quantmind-br/cabalctl/internal/compose"
	"github.com/quantmind-br/cabalctl/internal/core"
	"github.com/quantmind-br/cabalctl/internal/helpers"
)

// Manager refreshes the external package index
type Manager struct {
	runner helpers.CommandRunner
	log    *zerolog.Logger
}

// NewManager creates a Manager
func NewManager(runner helpers.CommandRunner, log *zerolog.Logger) *Manager {
	return &Manager{
		runner: runner,
		log:    log,
	}
}

// Refresh is the record of one index refresh spawn
type Refresh struct {
	Cmd    string
	Result helpers.Result
}

// UpdateIndex runs the build tool's index refresh. A successful refresh is
// always a change: the index timestamp advances even when no entry did.
func (m *Manager) UpdateIndex(ctx context.Context, cabalPath string, global bool) (Refresh, error) {
	inv := compose.ComposeUpdate(global)
	refresh := Refresh{Cmd: inv.Render(core.ToolPaths{Cabal: cabalPath})}

	m.log.Info().Str("cmd", refresh.Cmd).Msg("refreshing package index")

	res, err := m.runner.Run(ctx, cabalPath, inv.Args...)
	refresh.Result = res
	if err != nil {
		detail := strings.TrimSpace(res.Combined())
		if detail == "" {
			detail = err.Error()
		}
		return refresh, fmt.Errorf("%w: index refresh: %s", core.ErrActionFailed, detail)
	}

	return refresh, nil
}
