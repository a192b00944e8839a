// Package daemon is the long-lived owner process. It keeps the playback engine
// alive and answers commands forwarded by short-lived CLI invocations.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rbright/aacboard/internal/board"
	"github.com/rbright/aacboard/internal/ipc"
	"github.com/rbright/aacboard/internal/notify"
	"github.com/rbright/aacboard/internal/playback"
	"github.com/rbright/aacboard/internal/pubsub"
	"github.com/rbright/aacboard/internal/sentence"
	"github.com/rbright/aacboard/internal/settings"
	"github.com/rbright/aacboard/internal/speech"
	"github.com/rbright/aacboard/internal/store"
	"github.com/rbright/aacboard/internal/watch"
)

// BoardLoader resolves the board the owner should present.
type BoardLoader func(ctx context.Context) (board.Loaded, error)

// Options wires an Owner.
type Options struct {
	Logger    *slog.Logger
	Engine    *playback.Engine
	Store     *store.Store
	Speaker   speech.Speaker
	Notifier  notify.Notifier
	Messages  notify.Messages
	LoadBoard BoardLoader
	// Lazy skips warming sounds on reload. One-shot invocations set it.
	Lazy bool
}

// Owner serves playback commands against the current board.
type Owner struct {
	logger    *slog.Logger
	engine    *playback.Engine
	store     *store.Store
	speaker   speech.Speaker
	notifier  notify.Notifier
	messages  notify.Messages
	loadBoard BoardLoader
	lazy      bool

	mu     sync.RWMutex
	board  board.Config
	source string

	voicesOnce sync.Once
	voices     []speech.Voice

	events *pubsub.Broker[string]
}

// New constructs an Owner with safe fallbacks for optional collaborators.
func New(opts Options) *Owner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Discard{}
	}
	speaker := opts.Speaker
	if speaker == nil {
		speaker = speech.Silent{}
	}
	engine := opts.Engine
	if engine == nil {
		engine = playback.New(playback.Options{Speaker: speaker, Logger: logger})
	}
	loadBoard := opts.LoadBoard
	if loadBoard == nil {
		loadBoard = func(ctx context.Context) (board.Loaded, error) {
			return board.Resolve(ctx, opts.Store, "", "", 0)
		}
	}
	messages := opts.Messages
	if messages == (notify.Messages{}) {
		messages = notify.MessagesFor("en")
	}

	return &Owner{
		logger:    logger,
		engine:    engine,
		store:     opts.Store,
		speaker:   speaker,
		notifier:  notifier,
		messages:  messages,
		loadBoard: loadBoard,
		lazy:      opts.Lazy,
		board:     board.Default(),
		source:    "default",
		events:    pubsub.NewBroker[string](),
	}
}

// Events publishes a ReloadEvent after every board reload and an UpdatedEvent
// when the volume changes.
func (o *Owner) Events() *pubsub.Broker[string] {
	return o.events
}

// Board returns the board currently served.
func (o *Owner) Board() (board.Config, string) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.board, o.source
}

// Reload re-resolves the board and re-applies stored settings. On failure the
// previous board stays active.
func (o *Owner) Reload(ctx context.Context) error {
	loaded, err := o.loadBoard(ctx)
	if err != nil {
		return fmt.Errorf("reload board: %w", err)
	}
	prefs, err := settings.Load(ctx, o.store)
	if err != nil {
		return fmt.Errorf("reload settings: %w", err)
	}
	for _, warning := range loaded.Warnings {
		o.logger.Warn("board warning", "source", loaded.Source, "message", warning.Message)
	}

	o.mu.Lock()
	o.board = loaded.Config
	o.source = loaded.Source
	o.mu.Unlock()

	o.engine.SetBase(loaded.Base())
	o.engine.SetVolume(prefs.Volume)
	if !o.lazy {
		if err := o.engine.Preload(ctx, loaded.Config.Pads); err != nil {
			o.logger.Warn("preload sounds", "error", err.Error())
		}
	}

	o.logger.Info("board loaded", "source", loaded.Source, "title", loaded.Config.Title, "pads", len(loaded.Config.Pads))
	o.events.Publish(pubsub.ReloadEvent, loaded.Source)
	return nil
}

// Run loads the board, then serves listener until ctx ends. When watcher is
// non-nil every debounced change to the watched file triggers a reload.
func (o *Owner) Run(ctx context.Context, listener net.Listener, watcher *watch.Watcher) error {
	defer o.events.Close()

	if err := o.Reload(ctx); err != nil {
		o.logger.Error("initial board load failed", "error", err.Error())
		o.notifier.Error(ctx, err.Error())
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return ipc.Serve(groupCtx, listener, o)
	})
	if watcher != nil {
		changes := watcher.Broker().Subscribe(groupCtx)
		group.Go(func() error {
			return watcher.Run(groupCtx)
		})
		group.Go(func() error {
			for range changes {
				o.reloadAndReport(groupCtx)
			}
			return nil
		})
	}

	err := group.Wait()
	o.engine.Stop()
	return err
}

// Handle dispatches one IPC request.
func (o *Owner) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	o.logger.Debug("ipc request", "command", req.Command, "args", req.Args)

	switch req.Command {
	case ipc.CommandStatus:
		return ipc.Response{OK: true, State: string(o.engine.State()), Message: o.status()}
	case ipc.CommandPress:
		return o.respond(ctx, o.press(ctx, req.Arg(0)))
	case ipc.CommandKey:
		return o.respond(ctx, o.key(ctx, req.Arg(0)))
	case ipc.CommandSay:
		return o.respond(ctx, o.say(ctx, strings.Join(req.Args, " ")))
	case ipc.CommandSpeakSentence:
		return o.respond(ctx, o.speakSentence(ctx))
	case ipc.CommandVolume:
		return o.respond(ctx, o.volume(ctx, req.Arg(0)))
	case ipc.CommandReload:
		if err := o.Reload(ctx); err != nil {
			return o.respond(ctx, "", err)
		}
		o.notifier.Status(ctx, o.messages.BoardLoaded)
		return o.respond(ctx, "reloaded", nil)
	case ipc.CommandStop:
		o.engine.Stop()
		return o.respond(ctx, "stopped", nil)
	default:
		return ipc.Response{
			OK:    false,
			State: string(o.engine.State()),
			Error: fmt.Sprintf("unknown command: %s", req.Command),
		}
	}
}

func (o *Owner) respond(ctx context.Context, message string, err error) ipc.Response {
	state := string(o.engine.State())
	if err != nil {
		o.logger.Error("command failed", "error", err.Error())
		o.notifier.Error(ctx, err.Error())
		return ipc.Response{OK: false, State: state, Error: err.Error()}
	}
	return ipc.Response{OK: true, State: state, Message: message}
}

func (o *Owner) reloadAndReport(ctx context.Context) {
	if err := o.Reload(ctx); err != nil {
		o.logger.Error("watched board reload failed", "error", err.Error())
		o.notifier.Error(ctx, err.Error())
		return
	}
	o.notifier.Status(ctx, o.messages.BoardLoaded)
}

func (o *Owner) status() string {
	cfg, source := o.Board()
	return fmt.Sprintf("board=%q source=%s pads=%d volume=%s",
		cfg.Title, source, len(cfg.Pads), settings.FormatVolume(o.engine.Volume()))
}

func (o *Owner) press(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New("press requires a pad id")
	}
	cfg, _ := o.Board()
	pad, ok := cfg.FindByID(id)
	if !ok {
		return "", fmt.Errorf("unknown pad %q", id)
	}
	return o.activate(ctx, pad)
}

func (o *Owner) key(ctx context.Context, key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", errors.New("key requires a shortcut")
	}
	cfg, _ := o.Board()
	pad, ok := cfg.FindByKey(key)
	if !ok {
		return "", fmt.Errorf("no pad bound to key %q", key)
	}
	return o.activate(ctx, pad)
}

func (o *Owner) activate(ctx context.Context, pad board.Pad) (string, error) {
	voice, err := o.voice(ctx)
	if err != nil {
		return "", err
	}
	if err := o.engine.Activate(ctx, pad, voice); err != nil {
		return "", fmt.Errorf("pad %s: %w", pad.ID, err)
	}
	return "played " + pad.ID, nil
}

func (o *Owner) say(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("nothing to say")
	}
	voice, err := o.voice(ctx)
	if err != nil {
		return "", err
	}
	if err := o.engine.Speak(ctx, text, voice); err != nil {
		return "", err
	}
	return "spoke", nil
}

func (o *Owner) speakSentence(ctx context.Context) (string, error) {
	builder, err := sentence.Load(ctx, o.store)
	if err != nil {
		return "", err
	}
	text := builder.SpeechText()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("sentence is empty")
	}
	voice, err := o.voice(ctx)
	if err != nil {
		return "", err
	}
	if err := o.engine.Speak(ctx, text, voice); err != nil {
		return "", err
	}
	return "spoke " + strconv.Quote(builder.Text()), nil
}

func (o *Owner) volume(ctx context.Context, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "volume=" + settings.FormatVolume(o.engine.Volume()), nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", fmt.Errorf("invalid volume %q", raw)
	}
	v, err = settings.SetVolume(ctx, o.store, v)
	if err != nil {
		return "", err
	}
	o.engine.SetVolume(v)
	o.events.Publish(pubsub.UpdatedEvent, settings.VolumeKey)
	return "volume=" + settings.FormatVolume(v), nil
}

// voice resolves the stored voice preference. An empty preference picks the
// best match for the stored language from the speaker's voice list.
func (o *Owner) voice(ctx context.Context) (playback.Voice, error) {
	prefs, err := settings.Load(ctx, o.store)
	if err != nil {
		return playback.Voice{}, err
	}
	voice := playback.Voice{Name: prefs.Voice, Language: prefs.Language}
	if voice.Name != "" {
		return voice, nil
	}

	o.voicesOnce.Do(func() {
		voices, err := o.speaker.Voices(ctx)
		if err != nil {
			o.logger.Debug("list voices", "error", err.Error())
			return
		}
		o.voices = voices
	})
	if chosen, ok := speech.ChooseVoice(o.voices, prefs.Language); ok {
		voice.Name = chosen.ID
	}
	return voice, nil
}
