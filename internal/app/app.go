package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rbright/aacboard/internal/audio"
	"github.com/rbright/aacboard/internal/board"
	"github.com/rbright/aacboard/internal/config"
	"github.com/rbright/aacboard/internal/daemon"
	"github.com/rbright/aacboard/internal/ipc"
	"github.com/rbright/aacboard/internal/logging"
	"github.com/rbright/aacboard/internal/notify"
	"github.com/rbright/aacboard/internal/playback"
	"github.com/rbright/aacboard/internal/speech"
	"github.com/rbright/aacboard/internal/store"
	"github.com/rbright/aacboard/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	e := &env{runner: r}
	defer e.close()

	root := e.rootCommand()
	root.SetArgs(args)
	root.SetOut(r.Stdout)
	root.SetErr(r.Stderr)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}
	if cmd == nil {
		cmd = root
	}
	return e.fail(ctx, cmd, err)
}

// usageError marks bad invocations; they exit 2 and print usage.
type usageError struct{ error }

func (u usageError) Unwrap() error { return u.error }

// exitError carries an exit code for output that has already been printed.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func isUsage(err error) bool {
	var usage usageError
	if errors.As(err, &usage) {
		return true
	}
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// env is the per-invocation runtime shared by every command.
type env struct {
	runner     Runner
	configPath string

	loaded   config.Loaded
	logs     logging.Runtime
	logger   *slog.Logger
	notifier notify.Notifier
	messages notify.Messages
	st       *store.Store
}

func (e *env) fail(ctx context.Context, cmd *cobra.Command, err error) int {
	var exit exitError
	switch {
	case errors.As(err, &exit):
		return exit.code
	case isUsage(err):
		fmt.Fprintf(e.runner.Stderr, "error: %v\n\n", err)
		fmt.Fprint(e.runner.Stderr, cmd.UsageString())
		return 2
	default:
		fmt.Fprintf(e.runner.Stderr, "error: %v\n", err)
		e.log().Error("command failed", "command", cmd.CommandPath(), "error", err.Error())
		if e.notifier != nil {
			e.notifier.Error(ctx, err.Error())
		}
		return 1
	}
}

func (e *env) close() {
	if e.st != nil {
		_ = e.st.Close()
	}
	_ = e.logs.Close()
}

func (e *env) log() *slog.Logger {
	if e.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.logger
}

// setup loads runtime config and logging before any command that needs them.
func (e *env) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[annotationBare] == "true" {
		return nil
	}

	loaded, err := config.Load(e.configPath)
	if err != nil {
		return err
	}
	e.loaded = loaded

	logs, err := logging.New(loaded.Config.Debug.LogLevel)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	e.logs = logs
	e.logger = e.runner.Logger
	if e.logger == nil {
		e.logger = logs.Logger
	}

	for _, w := range loaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		e.warn(msg)
		e.logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	n := notify.New(loaded.Config.Notify, e.logger)
	e.notifier = n
	e.messages = n.Messages()

	e.logger.Info("command start",
		"command", cmd.CommandPath(),
		"config", loaded.Path,
		"log", logs.Path,
	)
	return nil
}

func (e *env) warn(msg string) {
	fmt.Fprintf(e.runner.Stderr, "warning: %s\n", msg)
}

func (e *env) println(a ...any) {
	fmt.Fprintln(e.runner.Stdout, a...)
}

func (e *env) printf(format string, a ...any) {
	fmt.Fprintf(e.runner.Stdout, format, a...)
}

// store opens the state database once per invocation.
func (e *env) store(ctx context.Context) (*store.Store, error) {
	if e.st != nil {
		return e.st, nil
	}
	st, err := store.Open(ctx, e.loaded.StorePath)
	if err != nil {
		return nil, err
	}
	e.st = st
	return st, nil
}

// board resolves the active board and prints its warnings.
func (e *env) board(ctx context.Context, st *store.Store) (board.Loaded, error) {
	loaded, err := board.Resolve(ctx, st, "", e.loaded.BoardSource, e.loaded.Config.Board.FetchTimeout())
	if err != nil {
		return board.Loaded{}, err
	}
	e.boardWarnings(loaded.Warnings)
	return loaded, nil
}

func (e *env) boardWarnings(warnings []board.Warning) {
	for _, w := range warnings {
		e.warn(w.Message)
		e.log().Warn("board warning", "message", w.Message)
	}
}

// saved reports a successful edit and asks a running owner to pick it up.
func (e *env) saved(ctx context.Context, status string, reload bool) {
	e.notifier.Status(ctx, status)
	if reload {
		e.refreshOwner(ctx)
	}
}

// refreshOwner asks a running owner to reload. No owner is not an error.
func (e *env) refreshOwner(ctx context.Context) {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		return
	}
	_, handled, err := tryForward(ctx, socketPath, ipc.Request{Command: ipc.CommandReload})
	if handled && err != nil {
		e.log().Warn("owner reload failed", "error", err.Error())
	}
}

// sink selects the configured output device. Without one, recorded sounds
// report blocked playback while speech may still work.
func (e *env) sink(ctx context.Context) audio.Sink {
	selection, err := audio.SelectDevice(ctx, e.loaded.Config.Audio.Sink)
	if err != nil {
		e.log().Warn("audio sink unavailable", "error", err.Error())
		return nil
	}
	if selection.Warning != "" {
		e.warn(selection.Warning)
	}
	return audio.PulseSink{ID: selection.Device.ID, MediaName: version.Name + " pad"}
}

// newOwner wires the playback stack. explicit pins the board source.
func (e *env) newOwner(ctx context.Context, st *store.Store, explicit string, notifier notify.Notifier, lazy bool) (*daemon.Owner, func(), error) {
	cfg := e.loaded.Config
	sink := e.sink(ctx)
	speaker, err := speech.NewFromConfig(cfg.Speech, sink)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if closer, ok := speaker.(io.Closer); ok {
			_ = closer.Close()
		}
	}

	engine := playback.New(playback.Options{
		Speaker:      speaker,
		Sink:         sink,
		FetchTimeout: cfg.Board.FetchTimeout(),
		Volume:       1,
		Logger:       e.log(),
	})
	owner := daemon.New(daemon.Options{
		Logger:   e.log(),
		Engine:   engine,
		Store:    st,
		Speaker:  speaker,
		Notifier: notifier,
		Messages: e.messages,
		Lazy:     lazy,
		LoadBoard: func(ctx context.Context) (board.Loaded, error) {
			return board.Resolve(ctx, st, explicit, e.loaded.BoardSource, cfg.Board.FetchTimeout())
		},
	})
	return owner, cleanup, nil
}

// dispatch sends req to a running owner, or handles it in-process.
func (e *env) dispatch(ctx context.Context, req ipc.Request) (ipc.Response, error) {
	if socketPath, err := ipc.RuntimeSocketPath(); err == nil {
		resp, handled, err := tryForward(ctx, socketPath, req)
		if handled {
			return resp, err
		}
	}

	st, err := e.store(ctx)
	if err != nil {
		return ipc.Response{}, err
	}
	owner, cleanup, err := e.newOwner(ctx, st, "", notify.Discard{}, true)
	if err != nil {
		return ipc.Response{}, err
	}
	defer cleanup()

	if err := owner.Reload(ctx); err != nil {
		return ipc.Response{}, err
	}
	resp := owner.Handle(ctx, req)
	if !resp.OK {
		return resp, errors.New(resp.Error)
	}
	return resp, nil
}

func (e *env) forwardOrFail(ctx context.Context, command string) error {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		return err
	}

	resp, handled, err := tryForward(ctx, socketPath, ipc.Request{Command: command})
	if !handled {
		return errors.New("no active aacboard owner")
	}
	if err != nil {
		return err
	}
	if resp.Message != "" {
		e.println(resp.Message)
	}
	return nil
}

func tryForward(ctx context.Context, socketPath string, req ipc.Request) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, req)
	switch {
	case err == nil && resp.OK:
		return resp, true, nil
	case err == nil:
		return resp, true, errors.New(resp.Error)
	case ipc.Unreachable(err):
		return ipc.Response{}, false, nil
	default:
		return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", req.Command, err)
	}
}
