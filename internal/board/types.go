// Package board loads, normalizes, orders, and persists soundboard definitions.
package board

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rbright/aacboard/internal/order"
	"github.com/rbright/aacboard/internal/pixel"
)

const (
	DefaultTitle = "AAC Soundboard"
	DefaultRows  = 4
	DefaultCols  = 4
	DefaultColor = "#2a2a2a"
	MinDimension = 1
	MaxDimension = 10
	TTSPrefix    = "tts:"
)

var audioLocation = regexp.MustCompile(`(?i)^https?://|^/|^\./`)

// Pad is one grid button.
type Pad struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Image ImageRef   `json:"image,omitzero"`
	Sound string     `json:"sound,omitempty"`
	Color string     `json:"color"`
	Key   string     `json:"key,omitempty"`
	Order order.Rank `json:"order,omitzero"`
}

// HasSound reports whether activating the pad does anything.
func (p Pad) HasSound() bool {
	return strings.TrimSpace(p.Sound) != ""
}

// Config is a normalized soundboard definition.
type Config struct {
	Title string `json:"title"`
	Rows  int    `json:"rows"`
	Cols  int    `json:"cols"`
	Pads  []Pad  `json:"pads"`
}

// Capacity is the number of cells in the grid.
func (c Config) Capacity() int {
	return c.Rows * c.Cols
}

// Warning is a non-fatal normalization message.
type Warning struct {
	Message string
}

// IsSpeech reports whether sound is an utterance rather than an audio location.
func IsSpeech(sound string) bool {
	if strings.HasPrefix(sound, TTSPrefix) {
		return true
	}
	return !audioLocation.MatchString(sound)
}

// SpeechText returns the text to speak for a sound, or false for audio locations.
func SpeechText(sound string) (string, bool) {
	if strings.HasPrefix(sound, TTSPrefix) {
		return strings.TrimPrefix(sound, TTSPrefix), true
	}
	if audioLocation.MatchString(sound) {
		return "", false
	}
	return sound, true
}

// ImageRef points at a library image by id or carries one inline.
type ImageRef struct {
	ID     string
	Inline *pixel.Image
}

// IsZero reports an absent image.
func (r ImageRef) IsZero() bool {
	return r.ID == "" && r.Inline == nil
}

// MarshalJSON writes ids as strings and inline images as objects.
func (r ImageRef) MarshalJSON() ([]byte, error) {
	switch {
	case r.Inline != nil:
		return json.Marshal(r.Inline)
	case r.ID != "":
		return json.Marshal(r.ID)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, an id string, or an inline {name, data} image.
func (r *ImageRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ImageRef{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = ImageRef{ID: id}
		return nil
	}

	var img pixel.Image
	if err := json.Unmarshal(data, &img); err != nil {
		return fmt.Errorf("image: %w", err)
	}
	*r = ImageRef{Inline: &img}
	return nil
}

// Resolve looks the image up in lib when it is referenced by id.
func (r ImageRef) Resolve(lib pixel.Library) (pixel.Image, bool) {
	if r.Inline != nil {
		return *r.Inline, true
	}
	if r.ID == "" {
		return pixel.Image{}, false
	}
	img, ok := lib[r.ID]
	return img, ok
}
