// Package backup exports and restores the whole board state as one JSON envelope.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rbright/aacboard/internal/board"
	"github.com/rbright/aacboard/internal/pixel"
	"github.com/rbright/aacboard/internal/settings"
	"github.com/rbright/aacboard/internal/store"
	"github.com/rbright/aacboard/internal/vocab"
)

const (
	Version = "1.0"
	Readme  = "AAC soundboard backup. Restore it with `aacboard backup import FILE`; the soundboard, sentence builder words and settings are replaced."
)

// ErrInvalid wraps payloads that are not JSON objects.
var ErrInvalid = errors.New("invalid backup")

// Kind says which payload form was restored.
type Kind string

const (
	KindFull   Kind = "full"
	KindLegacy Kind = "legacy"
)

// Volume decodes from a JSON number or a numeric string.
type Volume string

func (v *Volume) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Volume(strings.TrimSpace(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("volume must be a number or numeric string")
	}
	*v = Volume(settings.FormatVolume(f))
	return nil
}

// Settings is the settings block of the envelope.
type Settings struct {
	Volume   Volume `json:"volume"`
	Language string `json:"language"`
	Voice    string `json:"voice"`
	Theme    string `json:"theme"`
}

// Envelope is the full backup document.
type Envelope struct {
	Readme          string          `json:"_readme"`
	Version         string          `json:"version"`
	ExportedAt      time.Time       `json:"exportedAt"`
	Soundboard      json.RawMessage `json:"soundboard"`
	SentenceBuilder *vocab.State    `json:"sentenceBuilder,omitempty"`
	Settings        *Settings       `json:"settings,omitempty"`
	Images          pixel.Library   `json:"images,omitempty"`
}

// Result reports what an import restored.
type Result struct {
	Kind     Kind
	Config   board.Config
	Warnings []board.Warning
}

// Export builds the envelope from the active board and the stored state.
func Export(ctx context.Context, r store.Reader, cfg board.Config, now time.Time) ([]byte, error) {
	if cfg.Pads == nil {
		cfg.Pads = []board.Pad{}
	}
	soundboard, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode soundboard: %w", err)
	}

	st, _, err := vocab.Load(ctx, r)
	if err != nil {
		return nil, err
	}
	prefs, err := settings.Load(ctx, r)
	if err != nil {
		return nil, err
	}
	lib, err := pixel.LoadLibrary(ctx, r)
	if err != nil && !errors.Is(err, store.ErrCorrupt) {
		return nil, err
	}

	env := Envelope{
		Readme:          Readme,
		Version:         Version,
		ExportedAt:      now.UTC(),
		Soundboard:      soundboard,
		SentenceBuilder: &st,
		Settings: &Settings{
			Volume:   Volume(settings.FormatVolume(prefs.Volume)),
			Language: prefs.Language,
			Voice:    prefs.Voice,
			Theme:    prefs.Theme,
		},
	}
	if len(lib) > 0 {
		env.Images = lib
	}

	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return append(out, '\n'), nil
}

// Import restores a full envelope or a bare soundboard config in one
// transaction. Nothing is written when the payload is rejected.
func Import(ctx context.Context, s *store.Store, data []byte) (Result, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil || probe == nil {
		if err == nil {
			err = board.ErrNotObject
		}
		return Result{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if present(probe["soundboard"]) && present(probe["version"]) {
		return importFull(ctx, s, data)
	}
	return importLegacy(ctx, s, data)
}

func importFull(ctx context.Context, s *store.Store, data []byte) (Result, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	cfg, warnings, err := board.Parse(env.Soundboard)
	if err != nil {
		return Result{}, fmt.Errorf("%w: soundboard: %v", ErrInvalid, err)
	}
	if env.Settings != nil {
		if _, err := ParseVolume(env.Settings.Volume); err != nil {
			return Result{}, err
		}
	}

	err = s.Update(ctx, func(tx *store.Tx) error {
		if err := tx.Set(ctx, board.ConfigDataKey, compact(env.Soundboard)); err != nil {
			return err
		}
		if err := board.SaveSource(ctx, tx, board.LocalFileSource); err != nil {
			return err
		}
		if env.SentenceBuilder != nil {
			if err := vocab.Save(ctx, tx, *env.SentenceBuilder); err != nil {
				return err
			}
		}
		if env.Settings != nil {
			if err := RestoreSettings(ctx, tx, *env.Settings); err != nil {
				return err
			}
		}
		if env.Images != nil {
			return pixel.SaveLibrary(ctx, tx, env.Images)
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("restore backup: %w", err)
	}
	return Result{Kind: KindFull, Config: cfg, Warnings: warnings}, nil
}

func importLegacy(ctx context.Context, s *store.Store, data []byte) (Result, error) {
	cfg, warnings, err := board.Parse(data)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	err = s.Update(ctx, func(tx *store.Tx) error {
		if err := tx.Set(ctx, board.ConfigDataKey, compact(data)); err != nil {
			return err
		}
		return board.SaveSource(ctx, tx, board.LocalFileSource)
	})
	if err != nil {
		return Result{}, fmt.Errorf("restore soundboard: %w", err)
	}
	return Result{Kind: KindLegacy, Config: cfg, Warnings: warnings}, nil
}

// RestoreSettings writes a settings block, filling defaults for blank values.
func RestoreSettings(ctx context.Context, w store.Writer, in Settings) error {
	volume, err := ParseVolume(in.Volume)
	if err != nil {
		return err
	}
	language := in.Language
	if language == "" {
		language = settings.DefaultLanguage
	}
	theme := in.Theme
	if theme != settings.ThemeLight {
		theme = settings.ThemeDark
	}
	values := [][2]string{
		{settings.VolumeKey, settings.FormatVolume(volume)},
		{settings.LanguageKey, language},
		{settings.VoiceKey, in.Voice},
		{settings.ThemeKey, theme},
	}
	for _, kv := range values {
		if err := w.Set(ctx, kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// ParseVolume converts a settings volume, defaulting blank to full volume.
func ParseVolume(v Volume) (float64, error) {
	if v == "" {
		return settings.DefaultVolume, nil
	}
	f, err := strconv.ParseFloat(string(v), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: settings.volume %q is not a number", ErrInvalid, string(v))
	}
	return settings.ClampVolume(f), nil
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) &&
		!bytes.Equal(trimmed, []byte(`""`)) && !bytes.Equal(trimmed, []byte("false"))
}

func compact(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
