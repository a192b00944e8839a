package playback

import (
	"context"
	"errors"
	"sync"

	"github.com/rbright/aacboard/internal/audio"
)

// Element is the pooled player for one pad's recorded sound.
type Element struct {
	id       string
	location string
	engine   *Engine

	loadMu sync.Mutex
	clip   *audio.Clip

	playMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Location is the resolved sound URL or path.
func (el *Element) Location() string {
	return el.location
}

// Load fetches and decodes the clip once.
func (el *Element) Load(ctx context.Context) (audio.Clip, error) {
	el.loadMu.Lock()
	defer el.loadMu.Unlock()
	if el.clip != nil {
		return *el.clip, nil
	}
	clip, err := audio.Fetch(ctx, el.location, el.engine.fetchTimeout)
	if err != nil {
		return audio.Clip{}, err
	}
	el.clip = &clip
	return clip, nil
}

// Play restarts the clip from the beginning. A playback cut short by a
// restart returns nil.
func (el *Element) Play(ctx context.Context) error {
	sink := el.engine.sink
	if sink == nil {
		return ErrPlaybackBlocked
	}
	clip, err := el.Load(ctx)
	if err != nil {
		return err
	}

	el.playMu.Lock()
	for el.cancel != nil {
		cancel, done := el.cancel, el.done
		el.playMu.Unlock()
		cancel()
		<-done
		el.playMu.Lock()
	}
	playCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	el.cancel = cancel
	el.done = done
	el.playMu.Unlock()

	err = sink.Play(playCtx, clip, el.engine.Volume)
	restarted := playCtx.Err() != nil && ctx.Err() == nil

	el.playMu.Lock()
	el.cancel = nil
	el.done = nil
	close(done)
	el.playMu.Unlock()
	cancel()

	if restarted && (err == nil || errors.Is(err, context.Canceled)) {
		return nil
	}
	return err
}
