package admin

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rbright/aacboard/internal/board"
	"github.com/rbright/aacboard/internal/settings"
	"github.com/rbright/aacboard/internal/store"
	"github.com/rbright/aacboard/internal/vocab"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDumpThenApply(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	cfg := board.Config{Title: "Home", Rows: 1, Cols: 2, Pads: []board.Pad{{ID: "a", Label: "A", Color: "#111111"}}}

	text, err := Dump(ctx, s, cfg)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(text, &doc))
	require.Equal(t, "1", string(doc.Settings.Volume))
	require.Equal(t, "dark", doc.Settings.Theme)

	edited := strings.Replace(string(text), `"theme": "dark"`, `"theme": "light"`, 1)
	applied, err := Apply(ctx, s, []byte(edited))
	require.NoError(t, err)
	require.True(t, applied.Full)
	require.Equal(t, cfg, applied.Config)

	prefs, err := settings.Load(ctx, s)
	require.NoError(t, err)
	require.Equal(t, "light", prefs.Theme)

	stored, _, ok, err := board.Stored(ctx, s)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, cfg, stored)
}

func TestApplyBareBoard(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	applied, err := Apply(ctx, s, []byte(`{"title":"Bare","pads":[]}`))
	require.NoError(t, err)
	require.False(t, applied.Full)
	require.Equal(t, "Bare", applied.Config.Title)

	_, ok, err := s.Get(ctx, vocab.WordsKey)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestApplyRejectsWithoutWriting(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, text := range []string{
		`not json`,
		`[]`,
		`{"title":"no pads"}`,
		`{"soundboard":{"pads":{}}}`,
		`{"soundboard":{"pads":[]},"settings":{"volume":"loud"}}`,
	} {
		_, err := Apply(ctx, s, []byte(text))
		require.ErrorIs(t, err, ErrInvalid, text)
	}

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestGenerateTTSKeepsKeyOrder(t *testing.T) {
	in := `{"title":"T","pads":[{"label":"Hi","id":"a","sound":"/a.wav","color":"#000"},{"id":"b","label":""},{"id":"c"}]}`

	out, err := GenerateTTS([]byte(in))
	require.NoError(t, err)

	text := string(out)
	require.Contains(t, text, `"sound": "tts:Hi"`)
	require.Less(t, strings.Index(text, `"label": "Hi"`), strings.Index(text, `"id": "a"`))
	require.Less(t, strings.Index(text, `"title"`), strings.Index(text, `"pads"`))

	var cfg struct {
		Pads []map[string]any `json:"pads"`
	}
	require.NoError(t, json.Unmarshal(out, &cfg))
	require.NotContains(t, cfg.Pads[1], "sound")
	require.NotContains(t, cfg.Pads[2], "sound")
}

func TestGenerateTTSInsideFullDocument(t *testing.T) {
	out, err := GenerateTTS([]byte(`{"soundboard":{"pads":[{"id":"a","label":"Go"}]},"settings":{}}`))
	require.NoError(t, err)
	require.Contains(t, string(out), `"sound": "tts:Go"`)

	_, err = GenerateTTS([]byte(`{"pads":"x"}`))
	require.ErrorIs(t, err, ErrInvalid)
}

func TestAddPad(t *testing.T) {
	out, id, err := AddPad([]byte(`{"title":"T"}`))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(id, "pad-"))

	cfg, _, err := board.Parse(out)
	require.NoError(t, err)
	require.Len(t, cfg.Pads, 1)
	require.Equal(t, board.Pad{ID: id, Label: NewPadLabel, Sound: "tts:New Pad", Color: NewPadColor}, cfg.Pads[0])

	out, second, err := AddPad(out)
	require.NoError(t, err)
	require.NotEqual(t, id, second)
	cfg, _, err = board.Parse(out)
	require.NoError(t, err)
	require.Len(t, cfg.Pads, 2)
}
