package toolpath

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/quantmind-br/cabalctl/internal/config"
	"github.com/quantmind-br/cabalctl/internal/core"
	"github.com/quantmind-br/cabalctl/internal/fsops"
	"github.com/quantmind-br/cabalctl/internal/helpers"
)

// Locator centraliza a descoberta dos executáveis cabal e ghc-pkg.
// Ele combina overrides explícitos, diretórios convencionais e o PATH.
type Locator struct {
	fs      afero.Fs
	runner  helpers.CommandRunner
	cfg     *config.Config
	homeDir string
}

// NewLocator cria um Locator usando o HOME do usuário atual.
func NewLocator(cfg *config.Config, fs afero.Fs, runner helpers.CommandRunner) *Locator {
	homeDir, _ := os.UserHomeDir()
	return &Locator{
		fs:      fs,
		runner:  runner,
		cfg:     cfg,
		homeDir: homeDir,
	}
}

// NewLocatorWithHome cria um Locator com homeDir explícito (útil para testes).
func NewLocatorWithHome(cfg *config.Config, fs afero.Fs, runner helpers.CommandRunner, homeDir string) *Locator {
	return &Locator{
		fs:      fs,
		runner:  runner,
		cfg:     cfg,
		homeDir: homeDir,
	}
}

// SearchDirs retorna os diretórios de busca na ordem de precedência.
func (l *Locator) SearchDirs() []string {
	var dirs []string
	if l.cfg != nil {
		dirs = append(dirs, l.cfg.Tools.SearchDirs...)
	}
	dirs = append(dirs,
		filepath.Join(l.homeDir, ".cabal", "bin"),
		filepath.Join(l.homeDir, ".ghcup", "bin"),
		filepath.Join(l.homeDir, ".local", "bin"),
		"/usr/local/bin",
		"/usr/bin",
		"/opt/cabal/bin",
	)
	return dirs
}

// Locate resolve um único executável pelo nome.
// Um override explícito é usado como está, sem descoberta.
func (l *Locator) Locate(name, override string) (string, error) {
	if override != "" {
		if !fsops.IsExecutable(l.fs, override) {
			return "", fmt.Errorf("configured path %q for %s is not an executable file: %w", override, name, core.ErrToolNotFound)
		}
		return override, nil
	}

	for _, dir := range l.SearchDirs() {
		candidate := filepath.Join(dir, name)
		if fsops.IsExecutable(l.fs, candidate) {
			return candidate, nil
		}
	}

	if path, err := l.runner.LookPath(name); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%s not found in search directories or PATH: %w", name, core.ErrToolNotFound)
}

// Resolve resolve os dois executáveis de uma vez.
// Overrides do request têm precedência sobre os da configuração.
func (l *Locator) Resolve(req *core.Request) (core.ToolPaths, error) {
	cabalOverride := req.Executable
	ghcPkgOverride := req.GhcPkgPath
	if l.cfg != nil {
		if cabalOverride == "" {
			cabalOverride = l.cfg.Tools.Cabal
		}
		if ghcPkgOverride == "" {
			ghcPkgOverride = l.cfg.Tools.GhcPkg
		}
	}

	cabal, err := l.Locate(string(core.ToolCabal), cabalOverride)
	if err != nil {
		return core.ToolPaths{}, err
	}

	ghcPkg, err := l.Locate(string(core.ToolGhcPkg), ghcPkgOverride)
	if err != nil {
		return core.ToolPaths{}, err
	}

	return core.ToolPaths{Cabal: cabal, GhcPkg: ghcPkg}, nil
}
