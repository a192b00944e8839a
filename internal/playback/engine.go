// Package playback activates pads: utterances go to the speaker one at a time,
// recorded sounds go to per-pad elements that play side by side.
package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rbright/aacboard/internal/audio"
	"github.com/rbright/aacboard/internal/board"
	"github.com/rbright/aacboard/internal/fsm"
	"github.com/rbright/aacboard/internal/speech"
)

var (
	// ErrNoSound marks a pad without a sound. Activate swallows it.
	ErrNoSound = errors.New("pad has no sound")
	// ErrUnsupportedFormat reports a sound the sink cannot decode.
	ErrUnsupportedFormat = audio.ErrUnsupportedFormat
	// ErrPlaybackBlocked reports that no audio sink is available.
	ErrPlaybackBlocked = errors.New("playback blocked: no audio sink")
)

const preloadWorkers = 4

// Voice selects how utterances are spoken.
type Voice struct {
	Name     string
	Language string
}

// Options configures an Engine.
type Options struct {
	Speaker      speech.Speaker
	Sink         audio.Sink
	FetchTimeout time.Duration
	Volume       float64
	Logger       *slog.Logger
}

// Engine owns the speech slot and the element pool.
type Engine struct {
	speaker      speech.Speaker
	sink         audio.Sink
	fetchTimeout time.Duration
	logger       *slog.Logger

	volume atomic.Uint64

	poolMu   sync.Mutex
	base     string
	elements map[string]*Element

	speechMu   sync.Mutex
	state      fsm.State
	cancel     context.CancelFunc
	speechDone chan struct{}
}

// New constructs an Engine. A nil Speaker drops utterances.
func New(opts Options) *Engine {
	speaker := opts.Speaker
	if speaker == nil {
		speaker = speech.Silent{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &Engine{
		speaker:      speaker,
		sink:         opts.Sink,
		fetchTimeout: opts.FetchTimeout,
		logger:       logger,
		elements:     make(map[string]*Element),
		state:        fsm.StateIdle,
	}
	e.SetVolume(opts.Volume)
	return e
}

// SetVolume clamps v to [0,1] and applies it to playing and future audio.
func (e *Engine) SetVolume(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	e.volume.Store(math.Float64bits(v))
	return v
}

// Volume is the current global volume.
func (e *Engine) Volume() float64 {
	return math.Float64frombits(e.volume.Load())
}

// State is the speech channel state.
func (e *Engine) State() fsm.State {
	e.speechMu.Lock()
	defer e.speechMu.Unlock()
	return e.state
}

// SetBase sets the location relative sounds resolve against. Changing it drops
// cached elements.
func (e *Engine) SetBase(base string) {
	e.poolMu.Lock()
	defer e.poolMu.Unlock()
	if base == e.base {
		return
	}
	e.base = base
	e.elements = make(map[string]*Element)
}

// Activate plays pad. A pad without sound is a no-op.
func (e *Engine) Activate(ctx context.Context, pad board.Pad, voice Voice) error {
	err := e.activate(ctx, pad, voice)
	if errors.Is(err, ErrNoSound) {
		return nil
	}
	return err
}

func (e *Engine) activate(ctx context.Context, pad board.Pad, voice Voice) error {
	if !pad.HasSound() {
		return ErrNoSound
	}
	if text, ok := board.SpeechText(pad.Sound); ok {
		e.logger.Debug("activate pad", "pad", pad.ID, "kind", "speech")
		return e.Speak(ctx, text, voice)
	}
	e.logger.Debug("activate pad", "pad", pad.ID, "kind", "audio", "sound", pad.Sound)
	return e.element(pad.ID, pad.Sound).Play(ctx)
}

// Speak utters text, first canceling and waiting out any utterance in flight.
// An interrupted utterance returns nil.
func (e *Engine) Speak(ctx context.Context, text string, voice Voice) error {
	e.speechMu.Lock()
	for e.cancel != nil {
		cancel, done := e.cancel, e.speechDone
		e.speechMu.Unlock()
		cancel()
		<-done
		e.speechMu.Lock()
	}

	speakCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	e.cancel = cancel
	e.speechDone = done
	e.transition(fsm.EventSpeak)
	e.speechMu.Unlock()

	err := e.speaker.Speak(speakCtx, speech.Request{
		Text:     text,
		Voice:    voice.Name,
		Language: voice.Language,
		Volume:   e.Volume(),
	})
	interrupted := errors.Is(err, speech.ErrInterrupted) || errors.Is(err, context.Canceled)

	e.speechMu.Lock()
	switch {
	case err == nil:
		e.transition(fsm.EventFinish)
	case interrupted:
		e.transition(fsm.EventInterrupt)
	default:
		e.transition(fsm.EventFail)
	}
	e.cancel = nil
	e.speechDone = nil
	close(done)
	e.speechMu.Unlock()
	cancel()

	if err == nil || interrupted {
		return nil
	}
	e.logger.Warn("speech failed", "error", err.Error())
	return fmt.Errorf("speech failed: %w", err)
}

// Stop cancels the utterance in flight, if any, and waits for it.
func (e *Engine) Stop() {
	e.speechMu.Lock()
	cancel, done := e.cancel, e.speechDone
	e.speechMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// transition must be called with speechMu held.
func (e *Engine) transition(event fsm.Event) {
	next, err := fsm.Transition(e.state, event)
	if err != nil {
		e.logger.Debug("speech state", "error", err.Error())
		return
	}
	e.state = next
}

// Preload decodes clips for every audio pad ahead of use.
func (e *Engine) Preload(ctx context.Context, pads []board.Pad) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(preloadWorkers)

	var (
		mu   sync.Mutex
		errs []error
	)
	for _, pad := range pads {
		if !pad.HasSound() || board.IsSpeech(pad.Sound) {
			continue
		}
		el := e.element(pad.ID, pad.Sound)
		group.Go(func() error {
			if _, err := el.Load(groupCtx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("pad %s: %w", el.id, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = group.Wait()
	return errors.Join(errs...)
}

// Elements is the number of pooled elements.
func (e *Engine) Elements() int {
	e.poolMu.Lock()
	defer e.poolMu.Unlock()
	return len(e.elements)
}

func (e *Engine) element(id, sound string) *Element {
	e.poolMu.Lock()
	defer e.poolMu.Unlock()

	location := audio.Resolve(sound, e.base)
	if el, ok := e.elements[id]; ok && el.location == location {
		return el
	}
	el := &Element{id: id, location: location, engine: e}
	e.elements[id] = el
	return el
}
