// Package speech turns utterances into audio through spd-style commands or Riva TTS.
package speech

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rbright/aacboard/internal/audio"
	"github.com/rbright/aacboard/internal/config"
)

// ErrInterrupted reports an utterance stopped before it finished.
var ErrInterrupted = errors.New("speech interrupted")

// Request is one utterance.
type Request struct {
	Text     string
	Voice    string
	Language string
	Volume   float64
}

// Voice is one synthesizer voice.
type Voice struct {
	ID       string
	Name     string
	Language string
	Default  bool
}

// Speaker synthesizes speech. Speak blocks until the utterance ends or ctx is
// canceled, in which case it returns ErrInterrupted.
type Speaker interface {
	Speak(ctx context.Context, req Request) error
	Voices(ctx context.Context) ([]Voice, error)
}

// NewFromConfig builds the speaker selected by speech.backend.
func NewFromConfig(cfg config.SpeechConfig, sink audio.Sink) (Speaker, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case config.SpeechCommand:
		return &CommandSpeaker{
			Argv:       cfg.Command.Argv,
			VoiceArgs:  cfg.VoiceArgs.Argv,
			VoicesArgv: cfg.VoicesCommand.Argv,
		}, nil
	case config.SpeechRiva:
		if sink == nil {
			return nil, errors.New("riva speech needs an audio sink")
		}
		return &RivaSpeaker{
			Endpoint:    cfg.RivaGRPC,
			SampleRate:  cfg.SampleRate,
			DialTimeout: cfg.DialTimeout(),
			Sink:        sink,
		}, nil
	case config.SpeechNone:
		return Silent{}, nil
	default:
		return nil, fmt.Errorf("unknown speech backend %q", cfg.Backend)
	}
}

// Silent drops every utterance.
type Silent struct{}

func (Silent) Speak(context.Context, Request) error    { return nil }
func (Silent) Voices(context.Context) ([]Voice, error) { return nil, nil }

// ChooseVoice picks the voice for language: a "zira" voice first, then the
// synthesizer default, then the first by name. Only voices whose language
// starts with language are considered.
func ChooseVoice(voices []Voice, language string) (Voice, bool) {
	prefix := strings.ToLower(strings.TrimSpace(language))
	candidates := make([]Voice, 0, len(voices))
	for _, v := range voices {
		if strings.HasPrefix(strings.ToLower(v.Language), prefix) {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return Voice{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return strings.ToLower(candidates[i].Name) < strings.ToLower(candidates[j].Name)
	})
	for _, v := range candidates {
		if strings.Contains(strings.ToLower(v.Name), "zira") {
			return v, true
		}
	}
	for _, v := range candidates {
		if v.Default {
			return v, true
		}
	}
	return candidates[0], true
}
