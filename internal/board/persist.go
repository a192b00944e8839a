package board

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rbright/aacboard/internal/store"
)

const (
	ConfigDataKey = "soundboard-config-data"
	ConfigURLKey  = "soundboard-config-url"

	// LocalFileSource marks a board restored from a file import.
	LocalFileSource = "local-file"
	storedSource    = "stored"
	defaultSource   = "default"
)

// Save persists cfg as the active board.
func Save(ctx context.Context, w store.Writer, cfg Config) error {
	return store.SetJSON(ctx, w, ConfigDataKey, cfg)
}

// SaveSource records where the active board came from.
func SaveSource(ctx context.Context, w store.Writer, source string) error {
	return w.Set(ctx, ConfigURLKey, source)
}

// Reset forgets the persisted board and its source.
func Reset(ctx context.Context, w store.Writer) error {
	return w.Delete(ctx, ConfigDataKey, ConfigURLKey)
}

// Stored returns the persisted board, if any.
func Stored(ctx context.Context, r store.Reader) (Config, []Warning, bool, error) {
	raw, ok, err := r.Get(ctx, ConfigDataKey)
	if err != nil || !ok {
		return Config{}, nil, false, err
	}
	cfg, warnings, err := Parse([]byte(raw))
	if err != nil {
		return Config{}, nil, true, fmt.Errorf("%w: %s: %v", store.ErrCorrupt, ConfigDataKey, err)
	}
	return cfg, warnings, true, nil
}

// Resolve picks the startup board: an explicit source, then the persisted board,
// then the persisted source URL, then fallback. An unreadable persisted board is
// skipped with a warning.
func Resolve(ctx context.Context, r store.Reader, explicit, fallback string, timeout time.Duration) (Loaded, error) {
	if explicit != "" {
		return Load(ctx, explicit, timeout)
	}

	var warnings []Warning
	cfg, parseWarnings, ok, err := Stored(ctx, r)
	switch {
	case err != nil && ok:
		warnings = append(warnings, Warning{Message: fmt.Sprintf("ignoring saved board: %v", err)})
	case err != nil:
		return Loaded{}, err
	case ok:
		return Loaded{Source: storedSource, Config: cfg, Warnings: parseWarnings}, nil
	}

	source, ok, err := r.Get(ctx, ConfigURLKey)
	if err != nil {
		return Loaded{}, err
	}
	if !ok || source == LocalFileSource {
		source = fallback
	}
	if source == "" {
		return Loaded{Source: defaultSource, Config: Default(), Warnings: warnings}, nil
	}

	loaded, err := Load(ctx, source, timeout)
	if err != nil {
		return Loaded{}, err
	}
	loaded.Warnings = append(warnings, loaded.Warnings...)
	return loaded, nil
}

// Default returns the empty default board.
func Default() Config {
	return Config{Title: DefaultTitle, Rows: DefaultRows, Cols: DefaultCols, Pads: []Pad{}}
}

// Marshal renders cfg as indented JSON for export.
func Marshal(cfg Config) ([]byte, error) {
	if cfg.Pads == nil {
		cfg.Pads = []Pad{}
	}
	return json.MarshalIndent(cfg, "", "  ")
}
