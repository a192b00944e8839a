package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Loaded is the configuration for one aacboard invocation, with the file
// locations every command needs already resolved.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool

	// StorePath is the state database file.
	StorePath string
	// BoardSource is board.url as the board loader should see it, or "".
	BoardSource string
}

// Load reads config.jsonc (defaults when absent) and resolves the state
// database and board locations against it.
func Load(explicitPath string) (Loaded, error) {
	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	loaded := Loaded{Path: resolvedPath, Config: Default()}
	content, err := os.ReadFile(resolvedPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		loaded.Warnings = []Warning{{
			Message: fmt.Sprintf("config file %q not found; using defaults", resolvedPath),
		}}
	case err != nil:
		return Loaded{}, fmt.Errorf("read config %q: %w", resolvedPath, err)
	default:
		cfg, warnings, err := Parse(string(content), loaded.Config)
		if err != nil {
			return Loaded{}, fmt.Errorf("parse config %q: %w", resolvedPath, err)
		}
		loaded.Config = cfg
		loaded.Warnings = warnings
		loaded.Exists = true
	}

	if loaded.StorePath, err = loaded.Config.Store.Resolve(); err != nil {
		return Loaded{}, fmt.Errorf("resolve store.path: %w", err)
	}

	// Relative board files are found next to the config that names them.
	var configDir string
	if loaded.Exists {
		configDir = filepath.Dir(resolvedPath)
	}
	if loaded.BoardSource, err = loaded.Config.Board.Source(configDir); err != nil {
		return Loaded{}, fmt.Errorf("resolve board.url: %w", err)
	}
	return loaded, nil
}
