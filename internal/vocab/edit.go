package vocab

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/rbright/aacboard/internal/order"
)

// ErrEmptyLabel rejects a new word without text.
var ErrEmptyLabel = errors.New("word label must not be empty")

// WordEdit describes a word create, update, or move.
type WordEdit struct {
	// Category is where the word ends up.
	Category string
	// From is the category the word is edited from. Empty means Category.
	From string
	// Index is the merged index in From. Ignored for new words.
	Index int
	New   bool

	Label string
	Sound string
	Color string
	Order order.Rank
}

// SaveWord applies edit to the state and returns the override key that now
// holds the word.
func (s *State) SaveWord(edit WordEdit) (string, error) {
	s.ensure()

	target := strings.TrimSpace(edit.Category)
	if _, ok := Lookup(target); !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCategory, target)
	}
	from := strings.TrimSpace(edit.From)
	if from == "" {
		from = target
	}
	if _, ok := Lookup(from); !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCategory, from)
	}

	override := WordOverride{
		Label: edit.Label,
		Sound: edit.Sound,
		Color: edit.Color,
		Order: edit.Order,
	}

	if edit.New {
		label := strings.TrimSpace(edit.Label)
		if label == "" {
			return "", ErrEmptyLabel
		}
		override.Label = label
		s.Custom[target] = append(s.Custom[target], label)
		key := WordKey(target, BaseLen(target)+len(s.Custom[target])-1)
		s.Words[key] = override
		return key, nil
	}

	current, err := s.Word(from, edit.Index)
	if err != nil {
		return "", err
	}
	if prev, ok := s.Words[current.Key]; ok {
		override.Key = prev.Key
		override.Image = prev.Image
	}

	if from == target {
		s.Words[current.Key] = override
		return current.Key, nil
	}
	return s.moveWord(current, target, override), nil
}

// moveWord relocates a word between categories. Custom words leave their
// source list; built-in words stay in place and only lose their override.
func (s *State) moveWord(current Word, target string, override WordOverride) string {
	text := override.Label
	if strings.TrimSpace(text) == "" {
		text = current.Display
	}

	list := s.Custom[target]
	pos := slices.Index(list, text)
	if pos < 0 {
		list = append(list, text)
		pos = len(list) - 1
		s.Custom[target] = list
	}

	delete(s.Words, current.Key)
	if current.Custom {
		s.removeCustom(current.Category, current.Index-BaseLen(current.Category))
	}

	key := WordKey(target, BaseLen(target)+pos)
	s.Words[key] = override
	return key
}

// removeCustom drops one custom word and shifts the override keys of the
// words after it down by one so they keep pointing at the same text.
func (s *State) removeCustom(category string, customIndex int) {
	list := s.Custom[category]
	if customIndex < 0 || customIndex >= len(list) {
		return
	}
	list = slices.Delete(slices.Clone(list), customIndex, customIndex+1)
	if len(list) == 0 {
		delete(s.Custom, category)
	} else {
		s.Custom[category] = list
	}

	removed := BaseLen(category) + customIndex
	prefix := category + "-"
	type shift struct {
		from, to string
	}
	var shifts []shift
	for key := range s.Words {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		idx, err := strconv.Atoi(rest)
		if err != nil || idx <= removed {
			continue
		}
		shifts = append(shifts, shift{from: key, to: WordKey(category, idx-1)})
	}
	slices.SortFunc(shifts, func(a, b shift) int {
		ai, _ := strconv.Atoi(strings.TrimPrefix(a.from, prefix))
		bi, _ := strconv.Atoi(strings.TrimPrefix(b.from, prefix))
		return ai - bi
	})
	for _, sh := range shifts {
		s.Words[sh.to] = s.Words[sh.from]
		delete(s.Words, sh.from)
	}
}

// SaveCategory stores a tab override.
func (s *State) SaveCategory(id string, override CategoryOverride) error {
	s.ensure()
	if _, ok := Lookup(id); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, id)
	}
	s.Categories[id] = override
	return nil
}

// CategoryDefaults returns the values an editor starts from for a tab.
func (s State) CategoryDefaults(id string) (CategoryOverride, error) {
	base, ok := Lookup(id)
	if !ok {
		return CategoryOverride{}, fmt.Errorf("%w: %s", ErrUnknownCategory, id)
	}
	o := s.Categories[id]
	if o.Label == "" {
		o.Label = base.Label
	}
	if o.Sound == "" {
		o.Sound = base.Label
	}
	if o.Icon == "" {
		o.Icon = base.Icon
	}
	if o.Icon == "" {
		o.Icon = "📁"
	}
	return o, nil
}

// WordDefaults returns the values an editor starts from for a word.
func (s State) WordDefaults(category string, index int) (WordEdit, error) {
	w, err := s.Word(category, index)
	if err != nil {
		return WordEdit{}, err
	}
	o := s.Words[w.Key]
	edit := WordEdit{
		Category: category,
		From:     category,
		Index:    index,
		Label:    o.Label,
		Sound:    o.Sound,
		Color:    o.Color,
		Order:    o.Order,
	}
	if edit.Label == "" {
		edit.Label = w.Text
	}
	if edit.Sound == "" {
		edit.Sound = w.Text
	}
	if edit.Color == "" {
		edit.Color = ColorFor(index)
	}
	return edit, nil
}

func (s *State) ensure() {
	if s.Words == nil {
		s.Words = map[string]WordOverride{}
	}
	if s.Custom == nil {
		s.Custom = map[string][]string{}
	}
	if s.Categories == nil {
		s.Categories = map[string]CategoryOverride{}
	}
}
