package sentence

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rbright/aacboard/internal/settings"
	"github.com/rbright/aacboard/internal/store"
	"github.com/rbright/aacboard/internal/vocab"
	"github.com/stretchr/testify/require"
)

func TestBuilderEditing(t *testing.T) {
	b := New()
	b.Add(Entry{Display: "I"})
	b.Add(Entry{Display: "want", TTS: "wanna"})
	b.Add(Entry{Display: "  "})
	b.Add(Entry{Display: "juice"})

	require.Equal(t, 3, b.Len())
	require.Equal(t, "I want juice", b.Text())
	require.Equal(t, "I wanna juice", b.SpeechText())

	require.NoError(t, b.Remove(1))
	require.Equal(t, "I juice", b.Text())
	require.Error(t, b.Remove(5))

	require.True(t, b.Backspace())
	require.True(t, b.Backspace())
	require.False(t, b.Backspace())
	require.Equal(t, "", b.SpeechText())
}

func TestClear(t *testing.T) {
	b := New(Entry{Display: "a", TTS: "a"}, Entry{Display: "b", TTS: "b"})
	b.Clear()
	require.Zero(t, b.Len())
	require.Empty(t, b.Entries())
}

func TestEntryAcceptsLegacyStrings(t *testing.T) {
	var entries []Entry
	require.NoError(t, json.Unmarshal([]byte(`["hello",{"display":"there","tts":"their"}]`), &entries))
	require.Equal(t, []Entry{{Display: "hello", TTS: "hello"}, {Display: "there", TTS: "their"}}, entries)
}

func TestFromWord(t *testing.T) {
	st := vocab.NewState()
	st.Words["favorites-0"] = vocab.WordOverride{Label: "Me", Sound: "tts:me please"}
	w, err := st.Word("favorites", 0)
	require.NoError(t, err)
	require.Equal(t, Entry{Display: "Me", TTS: "me please"}, FromWord(w))
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(ctx, filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer s.Close()

	b := New(Entry{Display: "go", TTS: "go"}, Entry{Display: "home", TTS: "home"})
	require.NoError(t, b.Save(ctx, s))

	restored, err := Load(ctx, s)
	require.NoError(t, err)
	require.Equal(t, b.Entries(), restored.Entries())

	b.Clear()
	require.NoError(t, b.Save(ctx, s))
	_, ok, err := s.Get(ctx, settings.LastSentenceKey)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, settings.LastSentenceKey, "[oops"))
	restored, err = Load(ctx, s)
	require.NoError(t, err)
	require.Zero(t, restored.Len())
}
