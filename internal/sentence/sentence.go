// Package sentence holds the word strip the sentence builder speaks.
package sentence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rbright/aacboard/internal/settings"
	"github.com/rbright/aacboard/internal/store"
	"github.com/rbright/aacboard/internal/vocab"
)

// Entry is one selected word: what the strip shows and what gets spoken.
type Entry struct {
	Display string `json:"display"`
	TTS     string `json:"tts"`
}

// UnmarshalJSON also accepts a bare string for entries saved before the
// display/tts split.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*e = Entry{Display: text, TTS: text}
		return nil
	}
	type plain Entry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Entry(p)
	return nil
}

// FromWord builds an entry from a merged vocabulary word.
func FromWord(w vocab.Word) Entry {
	return Entry{Display: w.Display, TTS: w.TTS}
}

// Builder is a concurrency-safe sentence strip.
type Builder struct {
	mu      sync.Mutex
	entries []Entry
}

// New returns a builder seeded with entries.
func New(entries ...Entry) *Builder {
	return &Builder{entries: append([]Entry(nil), entries...)}
}

// Add appends an entry. Entries with no display text are ignored.
func (b *Builder) Add(e Entry) {
	if strings.TrimSpace(e.Display) == "" && strings.TrimSpace(e.TTS) == "" {
		return
	}
	if e.TTS == "" {
		e.TTS = e.Display
	}
	if e.Display == "" {
		e.Display = e.TTS
	}
	b.mu.Lock()
	b.entries = append(b.entries, e)
	b.mu.Unlock()
}

// Backspace removes the last entry and reports whether one existed.
func (b *Builder) Backspace() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) == 0 {
		return false
	}
	b.entries = b.entries[:len(b.entries)-1]
	return true
}

// Remove drops the entry at index.
func (b *Builder) Remove(index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.entries) {
		return fmt.Errorf("sentence has no word at %d", index)
	}
	b.entries = append(b.entries[:index:index], b.entries[index+1:]...)
	return nil
}

func (b *Builder) Clear() {
	b.mu.Lock()
	b.entries = nil
	b.mu.Unlock()
}

func (b *Builder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Entries returns a copy of the strip.
func (b *Builder) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Entry(nil), b.entries...)
}

// Text joins display strings with single spaces.
func (b *Builder) Text() string {
	return b.join(func(e Entry) string { return e.Display })
}

// SpeechText joins tts strings with single spaces. Empty means nothing to say.
func (b *Builder) SpeechText() string {
	return b.join(func(e Entry) string { return e.TTS })
}

func (b *Builder) join(pick func(Entry) string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	parts := make([]string, 0, len(b.entries))
	for _, e := range b.entries {
		if text := strings.TrimSpace(pick(e)); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// Load restores the last saved strip. A corrupt value yields an empty builder.
func Load(ctx context.Context, r store.Reader) (*Builder, error) {
	var entries []Entry
	if _, err := store.GetJSON(ctx, r, settings.LastSentenceKey, &entries); err != nil {
		if !errors.Is(err, store.ErrCorrupt) {
			return nil, err
		}
		entries = nil
	}
	return New(entries...), nil
}

// Save persists the strip, or clears the key when it is empty.
func (b *Builder) Save(ctx context.Context, w store.Writer) error {
	entries := b.Entries()
	if len(entries) == 0 {
		return w.Delete(ctx, settings.LastSentenceKey)
	}
	return store.SetJSON(ctx, w, settings.LastSentenceKey, entries)
}
