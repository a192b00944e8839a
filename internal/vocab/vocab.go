package vocab

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rbright/aacboard/internal/board"
	"github.com/rbright/aacboard/internal/order"
	"github.com/rbright/aacboard/internal/store"
)

const (
	WordsKey       = "sentence-builder-words"
	CustomWordsKey = "sentence-builder-custom-words"
	CategoriesKey  = "sentence-builder-categories"
)

// ErrUnknownCategory reports a category id outside the built-in table.
var ErrUnknownCategory = errors.New("unknown category")

// WordOverride customizes one merged word, keyed by WordKey.
type WordOverride struct {
	Label string         `json:"label"`
	Sound string         `json:"sound"`
	Color string         `json:"color"`
	Key   string         `json:"key,omitempty"`
	Order order.Rank     `json:"order"`
	Image board.ImageRef `json:"image,omitzero"`
}

// CategoryOverride customizes one category tab.
type CategoryOverride struct {
	Label string     `json:"label"`
	Sound string     `json:"sound"`
	Color string     `json:"color"`
	Order order.Rank `json:"order"`
	Icon  string     `json:"icon"`
}

// State is the persisted sentence-builder customization.
type State struct {
	Words      map[string]WordOverride     `json:"words"`
	Custom     map[string][]string         `json:"customWords"`
	Categories map[string]CategoryOverride `json:"categories"`
}

// NewState returns an empty state with initialized maps.
func NewState() State {
	return State{
		Words:      map[string]WordOverride{},
		Custom:     map[string][]string{},
		Categories: map[string]CategoryOverride{},
	}
}

// WordKey builds the override key for a merged word index.
func WordKey(category string, index int) string {
	return category + "-" + strconv.Itoa(index)
}

// Word is one merged vocabulary entry with overrides applied.
type Word struct {
	Category string
	Index    int
	Key      string
	Text     string
	Display  string
	TTS      string
	Color    string
	Order    order.Rank
	Custom   bool
	Image    board.ImageRef
}

// CategoryView is a tab with overrides applied.
type CategoryView struct {
	ID    string
	Label string
	Icon  string
	Color string
	Sound string
	Order order.Rank
}

// Merged returns the built-in words of category followed by its custom words.
func (s State) Merged(category string) ([]string, error) {
	base, ok := Lookup(category)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	words := make([]string, 0, len(base.Words)+len(s.Custom[category]))
	words = append(words, base.Words...)
	words = append(words, s.Custom[category]...)
	return words, nil
}

// Sorted returns the merged words of category sorted by override order.
func (s State) Sorted(category string) ([]Word, error) {
	merged, err := s.Merged(category)
	if err != nil {
		return nil, err
	}
	baseLen := BaseLen(category)

	out := make([]Word, 0, len(merged))
	for i, text := range merged {
		out = append(out, s.word(category, i, text, baseLen))
	}
	order.Sort(out, func(w Word) order.Rank { return w.Order })
	return out, nil
}

// Word returns the merged word at index.
func (s State) Word(category string, index int) (Word, error) {
	merged, err := s.Merged(category)
	if err != nil {
		return Word{}, err
	}
	if index < 0 || index >= len(merged) {
		return Word{}, fmt.Errorf("word index %d outside %s (%d words)", index, category, len(merged))
	}
	return s.word(category, index, merged[index], BaseLen(category)), nil
}

func (s State) word(category string, index int, text string, baseLen int) Word {
	key := WordKey(category, index)
	override, hasOverride := s.Words[key]

	w := Word{
		Category: category,
		Index:    index,
		Key:      key,
		Text:     text,
		Display:  text,
		Color:    ColorFor(index),
		Custom:   index >= baseLen,
	}
	if hasOverride {
		if override.Label != "" {
			w.Display = override.Label
		}
		if override.Color != "" {
			w.Color = override.Color
		}
		w.Order = override.Order
		w.Image = override.Image
	}

	w.TTS = w.Display
	if hasOverride && strings.HasPrefix(override.Sound, board.TTSPrefix) {
		w.TTS = strings.TrimPrefix(override.Sound, board.TTSPrefix)
	}
	return w
}

// Tabs returns the tabs with overrides applied, sorted by override order.
func (s State) Tabs() []CategoryView {
	out := make([]CategoryView, 0, len(baseCategories))
	for _, c := range baseCategories {
		view := CategoryView{ID: c.ID, Label: c.Label, Icon: c.Icon, Sound: c.Label}
		if o, ok := s.Categories[c.ID]; ok {
			if o.Label != "" {
				view.Label = o.Label
			}
			if o.Icon != "" {
				view.Icon = o.Icon
			}
			if o.Sound != "" {
				view.Sound = o.Sound
			}
			view.Color = o.Color
			view.Order = o.Order
		}
		out = append(out, view)
	}
	order.Sort(out, func(c CategoryView) order.Rank { return c.Order })
	return out
}

// Load reads the three sentence-builder keys. Corrupt values are replaced by
// empty maps and reported as warnings.
func Load(ctx context.Context, r store.Reader) (State, []string, error) {
	st := NewState()
	var warnings []string

	targets := []struct {
		key string
		dst any
	}{
		{WordsKey, &st.Words},
		{CustomWordsKey, &st.Custom},
		{CategoriesKey, &st.Categories},
	}
	for _, target := range targets {
		if _, err := store.GetJSON(ctx, r, target.key, target.dst); err != nil {
			if !errors.Is(err, store.ErrCorrupt) {
				return State{}, nil, err
			}
			warnings = append(warnings, err.Error())
		}
	}

	if st.Words == nil {
		st.Words = map[string]WordOverride{}
	}
	if st.Custom == nil {
		st.Custom = map[string][]string{}
	}
	if st.Categories == nil {
		st.Categories = map[string]CategoryOverride{}
	}
	return st, warnings, nil
}

// Save writes all three keys. Wrap it in store.Update for atomicity.
func Save(ctx context.Context, w store.Writer, st State) error {
	if err := store.SetJSON(ctx, w, WordsKey, nonNilWords(st.Words)); err != nil {
		return err
	}
	if err := store.SetJSON(ctx, w, CustomWordsKey, nonNilCustom(st.Custom)); err != nil {
		return err
	}
	return store.SetJSON(ctx, w, CategoriesKey, nonNilCategories(st.Categories))
}

func nonNilWords(m map[string]WordOverride) map[string]WordOverride {
	if m == nil {
		return map[string]WordOverride{}
	}
	return m
}

func nonNilCustom(m map[string][]string) map[string][]string {
	if m == nil {
		return map[string][]string{}
	}
	return m
}

func nonNilCategories(m map[string]CategoryOverride) map[string]CategoryOverride {
	if m == nil {
		return map[string]CategoryOverride{}
	}
	return m
}
