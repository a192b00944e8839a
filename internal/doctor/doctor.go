// Package doctor runs readiness diagnostics for config, storage, speech, audio, and the board source.
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rbright/aacboard/internal/audio"
	"github.com/rbright/aacboard/internal/board"
	"github.com/rbright/aacboard/internal/config"
	"github.com/rbright/aacboard/internal/speech"
	"github.com/rbright/aacboard/internal/store"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{}

	message := fmt.Sprintf("loaded %q", cfg.Path)
	if !cfg.Exists {
		message = fmt.Sprintf("%q not found; using defaults", cfg.Path)
	}
	checks = append(checks, Check{Name: "config", Pass: true, Message: message})

	checks = append(checks, checkEnv("XDG_RUNTIME_DIR", func(v string) bool {
		return strings.TrimSpace(v) != ""
	}, "owner socket directory is set", "XDG_RUNTIME_DIR is empty; serve cannot create its socket"))

	st, storeCheck := checkStore(ctx, cfg.Config.Store)
	checks = append(checks, storeCheck)
	if st != nil {
		defer st.Close()
	}

	checks = append(checks, checkSpeech(ctx, cfg.Config.Speech))
	checks = append(checks, checkAudioSelection(ctx, cfg.Config.Audio))
	boardCfg := cfg.Config.Board
	if cfg.BoardSource != "" {
		boardCfg.URL = cfg.BoardSource
	}
	checks = append(checks, checkBoard(ctx, st, boardCfg))

	return Report{Checks: checks}
}

// checkEnv validates an environment variable through a caller-supplied predicate.
func checkEnv(name string, predicate func(string) bool, okMsg, failMsg string) Check {
	value := os.Getenv(name)
	if predicate(value) {
		return Check{Name: name, Pass: true, Message: okMsg}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

// checkStore opens the state database. The returned store is nil on failure.
func checkStore(ctx context.Context, cfg config.StoreConfig) (*store.Store, Check) {
	path, err := cfg.Resolve()
	if err != nil {
		return nil, Check{Name: "store", Pass: false, Message: err.Error()}
	}
	st, err := store.Open(ctx, path)
	if err != nil {
		return nil, Check{Name: "store", Pass: false, Message: err.Error()}
	}
	keys, err := st.Keys(ctx)
	if err != nil {
		_ = st.Close()
		return nil, Check{Name: "store", Pass: false, Message: err.Error()}
	}
	return st, Check{Name: "store", Pass: true, Message: fmt.Sprintf("opened %q (%d keys)", path, len(keys))}
}

// checkSpeech validates that the configured speech backend can run.
func checkSpeech(ctx context.Context, cfg config.SpeechConfig) Check {
	switch cfg.Backend {
	case config.SpeechNone:
		return Check{Name: "speech", Pass: true, Message: "speech disabled"}
	case config.SpeechRiva:
		return checkRivaReady(ctx, cfg)
	default:
		return checkCommand(cfg.Command.Argv, "speech.command")
	}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkRivaReady dials the Riva gRPC endpoint and waits for readiness.
func checkRivaReady(ctx context.Context, cfg config.SpeechConfig) Check {
	endpoint := strings.TrimSpace(cfg.RivaGRPC)
	if endpoint == "" {
		return Check{Name: "riva.ready", Pass: false, Message: "speech.riva_grpc is empty"}
	}
	conn, err := speech.DialRiva(ctx, endpoint, cfg.DialTimeout())
	if err != nil {
		return Check{Name: "riva.ready", Pass: false, Message: err.Error()}
	}
	_ = conn.Close()
	return Check{Name: "riva.ready", Pass: true, Message: fmt.Sprintf("ready at %s", endpoint)}
}

// checkAudioSelection runs live sink selection to surface selection/fallback issues.
func checkAudioSelection(ctx context.Context, cfg config.AudioConfig) Check {
	selection, err := audio.SelectDevice(ctx, cfg.Sink)
	if err != nil {
		return Check{Name: "audio.sink", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.sink", Pass: true, Message: message}
}

// checkBoard resolves the startup board the way serve does. Without a store
// only the configured URL is tried.
func checkBoard(ctx context.Context, st *store.Store, cfg config.BoardConfig) Check {
	timeout := cfg.FetchTimeout()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	var (
		loaded board.Loaded
		err    error
	)
	switch {
	case st != nil:
		loaded, err = board.Resolve(ctx, st, "", cfg.URL, timeout)
	case cfg.URL != "":
		loaded, err = board.Load(ctx, cfg.URL, timeout)
	default:
		loaded = board.Loaded{Source: "default", Config: board.Default()}
	}
	if err != nil {
		return Check{Name: "board", Pass: false, Message: err.Error()}
	}

	message := fmt.Sprintf("%q from %s (%d pads)", loaded.Config.Title, loaded.Source, len(loaded.Config.Pads))
	if n := len(loaded.Warnings); n > 0 {
		message = fmt.Sprintf("%s, %d warnings", message, n)
	}
	return Check{Name: "board", Pass: true, Message: message}
}
