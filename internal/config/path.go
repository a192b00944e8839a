package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath applies CLI/XDG/home fallback rules for config.jsonc location.
func ResolvePath(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}

	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "aacboard", "config.jsonc"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for config fallback")
	}

	return filepath.Join(home, ".config", "aacboard", "config.jsonc"), nil
}

// Resolve returns the state database location: store.path with a leading ~/
// expanded, or $XDG_DATA_HOME/aacboard/state.db, or ~/.local/share/aacboard/state.db.
func (c StoreConfig) Resolve() (string, error) {
	if path := strings.TrimSpace(c.Path); path != "" {
		return expandHome(path)
	}
	if xdg := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdg != "" {
		return filepath.Join(xdg, "aacboard", "state.db"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for store fallback")
	}
	return filepath.Join(home, ".local", "share", "aacboard", "state.db"), nil
}

// Source returns board.url ready for the board loader. URLs pass through.
// A leading ~/ is expanded and relative file paths are taken from configDir.
func (c BoardConfig) Source(configDir string) (string, error) {
	source := strings.TrimSpace(c.URL)
	if source == "" || strings.Contains(source, "://") {
		return source, nil
	}
	source, err := expandHome(source)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(source) && configDir != "" {
		source = filepath.Join(configDir, source)
	}
	return source, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
