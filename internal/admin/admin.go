// Package admin exposes the whole board state as one editable JSON document.
package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rbright/aacboard/internal/backup"
	"github.com/rbright/aacboard/internal/board"
	"github.com/rbright/aacboard/internal/settings"
	"github.com/rbright/aacboard/internal/store"
	"github.com/rbright/aacboard/internal/vocab"
)

// ErrInvalid is returned for documents that cannot be applied.
var ErrInvalid = errors.New("invalid JSON")

// Document is the editable view of the stored state.
type Document struct {
	Soundboard      json.RawMessage `json:"soundboard"`
	SentenceBuilder vocab.State     `json:"sentenceBuilder"`
	Settings        backup.Settings `json:"settings"`
}

// Applied reports the board that is active after Apply.
type Applied struct {
	Config   board.Config
	Warnings []board.Warning
	// Full is false when the document was a bare soundboard config.
	Full bool
}

// Dump renders the active board and the stored overrides and settings.
func Dump(ctx context.Context, r store.Reader, cfg board.Config) ([]byte, error) {
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

	doc := Document{
		Soundboard:      soundboard,
		SentenceBuilder: st,
		Settings: backup.Settings{
			Volume:   backup.Volume(settings.FormatVolume(prefs.Volume)),
			Language: prefs.Language,
			Voice:    prefs.Voice,
			Theme:    prefs.Theme,
		},
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return append(out, '\n'), nil
}

// Apply validates text and persists each section in one transaction. A bare
// soundboard config is accepted as well. Nothing is written on error.
func Apply(ctx context.Context, s *store.Store, text []byte) (Applied, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(text, &top); err != nil {
		return Applied{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if top == nil {
		return Applied{}, fmt.Errorf("%w: %v", ErrInvalid, board.ErrNotObject)
	}

	raw, full := top["soundboard"]
	if !full {
		raw = text
	}
	if err := requirePads(raw); err != nil {
		return Applied{}, err
	}
	cfg, warnings, err := board.Parse(raw)
	if err != nil {
		return Applied{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var doc struct {
		SentenceBuilder *vocab.State     `json:"sentenceBuilder"`
		Settings        *backup.Settings `json:"settings"`
	}
	if full {
		if err := json.Unmarshal(text, &doc); err != nil {
			return Applied{}, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if doc.Settings != nil {
			if _, err := backup.ParseVolume(doc.Settings.Volume); err != nil {
				return Applied{}, err
			}
		}
	}

	err = s.Update(ctx, func(tx *store.Tx) error {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return err
		}
		if err := tx.Set(ctx, board.ConfigDataKey, buf.String()); err != nil {
			return err
		}
		if doc.SentenceBuilder != nil {
			if err := vocab.Save(ctx, tx, *doc.SentenceBuilder); err != nil {
				return err
			}
		}
		if doc.Settings != nil {
			return backup.RestoreSettings(ctx, tx, *doc.Settings)
		}
		return nil
	})
	if err != nil {
		return Applied{}, fmt.Errorf("apply document: %w", err)
	}
	return Applied{Config: cfg, Warnings: warnings, Full: full}, nil
}

func requirePads(raw json.RawMessage) error {
	var shape struct {
		Pads json.RawMessage `json:"pads"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return fmt.Errorf("%w: Config must be a valid JSON object", ErrInvalid)
	}
	trimmed := bytes.TrimSpace(shape.Pads)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return fmt.Errorf("%w: Config must have a pads array", ErrInvalid)
	}
	return nil
}
