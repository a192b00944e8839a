// Package settings persists user preferences: volume, language, voice, theme, tips, and view.
package settings

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/rbright/aacboard/internal/board"
	"github.com/rbright/aacboard/internal/store"
)

const (
	VolumeKey        = "soundboard-volume"
	LanguageKey      = "soundboard-language"
	VoiceKey         = "soundboard-voice"
	ThemeKey         = "soundboard-theme"
	TipsDismissedKey = "open-speech-builder-tooltip-dismissed"
	ViewKey          = "aacboard-view"
	LastSentenceKey  = "sentence-builder-last"
)

const (
	DefaultVolume   = 1.0
	DefaultLanguage = "en"
	DefaultVoice    = ""
	DefaultTheme    = ThemeDark

	ThemeDark  = "dark"
	ThemeLight = "light"
)

// View is the active top-level screen.
type View string

const (
	ViewLanding    View = "landing"
	ViewSoundboard View = "soundboard"
	ViewSentence   View = "sentence-builder"
)

// ResetKeys lists every key a settings reset clears.
var ResetKeys = []string{
	ThemeKey,
	LanguageKey,
	VoiceKey,
	VolumeKey,
	board.ConfigURLKey,
	board.ConfigDataKey,
	LastSentenceKey,
	TipsDismissedKey,
	ViewKey,
}

// Settings is the resolved preference set.
type Settings struct {
	Volume        float64 `json:"volume"`
	Language      string  `json:"language"`
	Voice         string  `json:"voice"`
	Theme         string  `json:"theme"`
	TipsDismissed bool    `json:"tipsDismissed"`
	View          View    `json:"view"`
}

// Defaults returns the settings used when nothing is stored.
func Defaults() Settings {
	return Settings{
		Volume:   DefaultVolume,
		Language: DefaultLanguage,
		Voice:    DefaultVoice,
		Theme:    DefaultTheme,
		View:     ViewLanding,
	}
}

// Load reads stored settings and fills defaults. Unparsable values fall back silently.
func Load(ctx context.Context, r store.Reader) (Settings, error) {
	s := Defaults()

	if raw, ok, err := r.Get(ctx, VolumeKey); err != nil {
		return Settings{}, err
	} else if ok {
		if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			s.Volume = ClampVolume(v)
		}
	}
	if raw, ok, err := r.Get(ctx, LanguageKey); err != nil {
		return Settings{}, err
	} else if ok && strings.TrimSpace(raw) != "" {
		s.Language = raw
	}
	if raw, ok, err := r.Get(ctx, VoiceKey); err != nil {
		return Settings{}, err
	} else if ok {
		s.Voice = raw
	}
	if raw, ok, err := r.Get(ctx, ThemeKey); err != nil {
		return Settings{}, err
	} else if ok && (raw == ThemeDark || raw == ThemeLight) {
		s.Theme = raw
	}
	if raw, ok, err := r.Get(ctx, TipsDismissedKey); err != nil {
		return Settings{}, err
	} else if ok {
		s.TipsDismissed = raw == "true"
	}
	if raw, ok, err := r.Get(ctx, ViewKey); err != nil {
		return Settings{}, err
	} else if ok {
		if v, err := ParseView(raw); err == nil {
			s.View = v
		}
	}
	return s, nil
}

// ClampVolume limits v to [0,1].
func ClampVolume(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// FormatVolume renders a volume the way it is stored.
func FormatVolume(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SetVolume clamps and stores the volume.
func SetVolume(ctx context.Context, w store.Writer, v float64) (float64, error) {
	v = ClampVolume(v)
	return v, w.Set(ctx, VolumeKey, FormatVolume(v))
}

// NormalizeLanguage validates a BCP 47 tag and returns its base language code.
func NormalizeLanguage(code string) (string, error) {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("invalid language %q: %w", code, err)
	}
	base, _ := tag.Base()
	return base.String(), nil
}

// SetLanguage validates and stores the language base code.
func SetLanguage(ctx context.Context, w store.Writer, code string) (string, error) {
	base, err := NormalizeLanguage(code)
	if err != nil {
		return "", err
	}
	return base, w.Set(ctx, LanguageKey, base)
}

// SetVoice stores the preferred voice name. Empty selects the default voice.
func SetVoice(ctx context.Context, w store.Writer, name string) error {
	return w.Set(ctx, VoiceKey, strings.TrimSpace(name))
}

// SetTheme stores dark or light.
func SetTheme(ctx context.Context, w store.Writer, theme string) error {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if theme != ThemeDark && theme != ThemeLight {
		return fmt.Errorf("theme must be one of: %s, %s", ThemeDark, ThemeLight)
	}
	return w.Set(ctx, ThemeKey, theme)
}

// DismissTips records that view tips were dismissed.
func DismissTips(ctx context.Context, w store.Writer) error {
	return w.Set(ctx, TipsDismissedKey, "true")
}

// ParseView validates a view name.
func ParseView(raw string) (View, error) {
	switch v := View(strings.TrimSpace(raw)); v {
	case ViewLanding, ViewSoundboard, ViewSentence:
		return v, nil
	default:
		return "", fmt.Errorf("view must be one of: %s, %s, %s", ViewLanding, ViewSoundboard, ViewSentence)
	}
}

// SetView stores the active view.
func SetView(ctx context.Context, w store.Writer, v View) error {
	if _, err := ParseView(string(v)); err != nil {
		return err
	}
	return w.Set(ctx, ViewKey, string(v))
}

// ToggleView swaps soundboard and sentence builder. The landing view does not toggle.
func ToggleView(v View) View {
	switch v {
	case ViewSoundboard:
		return ViewSentence
	case ViewSentence:
		return ViewSoundboard
	default:
		return v
	}
}

// Reset clears every preference key and returns the defaults.
func Reset(ctx context.Context, w store.Writer) (Settings, error) {
	if err := w.Delete(ctx, ResetKeys...); err != nil {
		return Settings{}, fmt.Errorf("reset settings: %w", err)
	}
	return Defaults(), nil
}

// LanguageName returns an English display name for a language code.
func LanguageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return strings.ToUpper(code)
	}
	return name
}
