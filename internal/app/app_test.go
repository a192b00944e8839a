package app

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/aacboard/internal/ipc"
)

func TestExecuteHelp(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"--help"}, &stdout, &stderr)
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "Usage:")
	require.Contains(t, stdout.String(), "sentence")
	require.Empty(t, stderr.String())
}

func TestExecuteVersion(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"version"}, &stdout, &stderr)
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "aacboard")
	require.Empty(t, stderr.String())
}

func TestExecuteUnknownCommand(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"definitely-not-a-command"}, &stdout, &stderr)
	require.Equal(t, 2, exitCode)
	require.Contains(t, stderr.String(), "unknown command")
	require.Contains(t, stderr.String(), "Usage:")
}

func TestRunnerUsageErrors(t *testing.T) {
	paths := setupRunnerEnv(t)

	cases := []struct {
		args []string
		want string
	}{
		{[]string{"board"}, "board requires a subcommand"},
		{[]string{"press"}, "press requires a pad id or --key"},
		{[]string{"press", "hello", "--key", "h"}, "not both"},
		{[]string{"say"}, "requires at least 1 arg"},
		{[]string{"board", "set-pad", "first"}, `invalid pad index "first"`},
		{[]string{"image", "draw", "smile", "3"}, `invalid cell "3"`},
		{[]string{"image", "draw", "smile", "--mode", "spray", "1,1"}, "mode must be one of"},
		{[]string{"status", "--bogus"}, "unknown flag"},
	}
	for _, tc := range cases {
		stdout, stderr, code := paths.run(t, tc.args...)
		require.Equal(t, 2, code, tc.args)
		require.Empty(t, stdout, tc.args)
		require.Contains(t, stderr, tc.want, tc.args)
		require.Contains(t, stderr, "Usage:", tc.args)
	}
}

func TestRunnerStatusIdleWhenSocketUnavailable(t *testing.T) {
	paths := setupRunnerEnv(t)

	stdout, stderr, code := paths.run(t, "status")
	require.Equal(t, 0, code)
	require.Equal(t, "idle\n", stdout)
	require.Empty(t, stderr)
}

func TestRunnerStopReturnsNoActiveOwner(t *testing.T) {
	paths := setupRunnerEnv(t)

	_, stderr, code := paths.run(t, "stop")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "no active aacboard owner")
}

func TestRunnerForwardsCommandsToActiveOwner(t *testing.T) {
	paths := setupRunnerEnv(t)
	requests := make(chan ipc.Request, 8)

	shutdown := startIPCServerForRunnerTest(t, paths.socketPath(), func(_ context.Context, req ipc.Request) ipc.Response {
		requests <- req
		switch req.Command {
		case ipc.CommandStatus:
			return ipc.Response{OK: true, State: "speaking", Message: `board="Home"`}
		case ipc.CommandPress, ipc.CommandKey, ipc.CommandSay, ipc.CommandStop, ipc.CommandReload:
			return ipc.Response{OK: true, Message: req.Command + " handled"}
		default:
			return ipc.Response{OK: false, Error: "unsupported"}
		}
	})
	defer shutdown()

	stdout, stderr, code := paths.run(t, "status")
	require.Equal(t, 0, code)
	require.Empty(t, stderr)
	require.Equal(t, "speaking\nboard=\"Home\"\n", stdout)

	for _, args := range [][]string{
		{"press", "hello"},
		{"press", "--key", "h"},
		{"say", "good", "morning"},
		{"stop"},
		{"reload"},
	} {
		stdout, stderr, code := paths.run(t, args...)
		require.Equal(t, 0, code, args)
		require.Empty(t, stderr, args)
		require.Contains(t, stdout, "handled", args)
	}

	got := make([]ipc.Request, 0, 6)
	for range 6 {
		got = append(got, <-requests)
	}
	require.Equal(t, ipc.Request{Command: ipc.CommandStatus}, got[0])
	require.Equal(t, ipc.Request{Command: ipc.CommandPress, Args: []string{"hello"}}, got[1])
	require.Equal(t, ipc.Request{Command: ipc.CommandKey, Args: []string{"h"}}, got[2])
	require.Equal(t, ipc.Request{Command: ipc.CommandSay, Args: []string{"good", "morning"}}, got[3])
	require.Equal(t, ipc.CommandStop, got[4].Command)
	require.Equal(t, ipc.CommandReload, got[5].Command)
}

func TestRunnerForwardedFailureExitsOne(t *testing.T) {
	paths := setupRunnerEnv(t)

	shutdown := startIPCServerForRunnerTest(t, paths.socketPath(), func(_ context.Context, req ipc.Request) ipc.Response {
		return ipc.Response{OK: false, Error: `unknown pad "nope"`}
	})
	defer shutdown()

	_, stderr, code := paths.run(t, "press", "nope")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, `error: unknown pad "nope"`)
}

func TestRunnerStatusFallsBackToIdleWhenServerStateEmpty(t *testing.T) {
	paths := setupRunnerEnv(t)

	shutdown := startIPCServerForRunnerTest(t, paths.socketPath(), func(_ context.Context, req ipc.Request) ipc.Response {
		require.Equal(t, ipc.CommandStatus, req.Command)
		return ipc.Response{OK: true, State: ""}
	})
	defer shutdown()

	stdout, stderr, code := paths.run(t, "status")
	require.Equal(t, 0, code)
	require.Equal(t, "idle\n", stdout)
	require.Empty(t, stderr)
}

func TestRunnerSayWithoutOwnerSpeaksInProcess(t *testing.T) {
	paths := setupRunnerEnv(t)

	stdout, stderr, code := paths.run(t, "say", "hello", "there")
	require.Equal(t, 0, code, stderr)
	require.Equal(t, "spoke\n", stdout)
	require.Equal(t, []string{"hello there"}, paths.spoken(t))
}

func TestRunnerBoardLoadShowAndPress(t *testing.T) {
	paths := setupRunnerEnv(t)
	boardPath := filepath.Join(t.TempDir(), "board.json")
	require.NoError(t, os.WriteFile(boardPath, []byte(`{
  "title": "Kitchen",
  "rows": 1,
  "cols": 2,
  "pads": [{"id": "snack", "label": "Snack", "sound": "tts:I want a snack", "key": "s"}]
}`), 0o600))

	stdout, stderr, code := paths.run(t, "board", "load", boardPath)
	require.Equal(t, 0, code, stderr)
	require.Contains(t, stdout, `loaded "Kitchen" from `+boardPath+" (1 pads)")

	stdout, _, code = paths.run(t, "board", "show", "--json")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, `"title": "Kitchen"`)
	require.Contains(t, stdout, `"id": "snack"`)

	stdout, _, code = paths.run(t, "board", "show")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "Snack")

	stdout, stderr, code = paths.run(t, "press", "--key", "s")
	require.Equal(t, 0, code, stderr)
	require.Equal(t, "played snack\n", stdout)
	require.Equal(t, []string{"I want a snack"}, paths.spoken(t))

	_, stderr, code = paths.run(t, "press", "missing")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, `unknown pad "missing"`)
}

func TestRunnerBoardSetPadAndReset(t *testing.T) {
	paths := setupRunnerEnv(t)

	stdout, stderr, code := paths.run(t, "board", "set-pad", "0", "--id", "drink", "--label", "Drink", "--sound", "tts:water please")
	require.Equal(t, 0, code, stderr)
	require.Equal(t, "saved pad drink at 0\n", stdout)

	stdout, _, code = paths.run(t, "board", "show", "--json")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, `"id": "drink"`)
	require.Contains(t, stdout, `"sound": "tts:water please"`)

	stdout, _, code = paths.run(t, "board", "reset")
	require.Equal(t, 0, code)
	require.Equal(t, "board reset\n", stdout)

	stdout, _, code = paths.run(t, "board", "show", "--json")
	require.Equal(t, 0, code)
	require.NotContains(t, stdout, "drink")
}

func TestRunnerVocabAndSentence(t *testing.T) {
	paths := setupRunnerEnv(t)

	stdout, stderr, code := paths.run(t, "vocab", "list")
	require.Equal(t, 0, code, stderr)
	require.Contains(t, stdout, "favorites")
	require.Contains(t, stdout, "16 words")

	stdout, stderr, code = paths.run(t, "vocab", "add", "favorites", "pizza", "--sound", "tts:pizza please")
	require.Equal(t, 0, code, stderr)
	require.Contains(t, stdout, `added "pizza" as favorites-16`)

	stdout, _, code = paths.run(t, "vocab", "list", "favorites")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, `+ 16  pizza  (says "pizza please")`)

	_, stderr, code = paths.run(t, "vocab", "add", "nowhere", "x")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "unknown category")

	stdout, _, code = paths.run(t, "sentence", "show")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "(empty sentence)")

	for _, index := range []string{"0", "2", "16"} {
		_, stderr, code = paths.run(t, "sentence", "add", "favorites", index)
		require.Equal(t, 0, code, stderr)
	}
	stdout, _, code = paths.run(t, "sentence", "show")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "I want pizza")

	stdout, stderr, code = paths.run(t, "sentence", "speak")
	require.Equal(t, 0, code, stderr)
	require.Equal(t, "spoke \"I want pizza\"\n", stdout)
	require.Equal(t, []string{"I want pizza please"}, paths.spoken(t))

	stdout, _, code = paths.run(t, "sentence", "remove", "1")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "I pizza")

	stdout, _, code = paths.run(t, "sentence", "back")
	require.Equal(t, 0, code)
	require.True(t, strings.HasSuffix(stdout, "I\n"), stdout)

	stdout, _, code = paths.run(t, "sentence", "clear")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "(empty sentence)")

	_, stderr, code = paths.run(t, "sentence", "speak")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "sentence is empty")
}

func TestRunnerVocabEditMovesWord(t *testing.T) {
	paths := setupRunnerEnv(t)

	_, stderr, code := paths.run(t, "vocab", "add", "favorites", "pizza")
	require.Equal(t, 0, code, stderr)

	stdout, stderr, code := paths.run(t, "vocab", "edit", "favorites", "16", "--label", "pasta", "--move-to", "helpers")
	require.Equal(t, 0, code, stderr)
	require.Contains(t, stdout, "saved helpers-")

	stdout, _, code = paths.run(t, "vocab", "list", "favorites")
	require.Equal(t, 0, code)
	require.NotContains(t, stdout, "pizza")

	stdout, _, code = paths.run(t, "vocab", "list", "helpers")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "pasta")

	stdout, stderr, code = paths.run(t, "vocab", "category", "helpers", "--label", "Glue", "--order", "1")
	require.Equal(t, 0, code, stderr)
	require.Equal(t, "saved category helpers\n", stdout)

	stdout, _, code = paths.run(t, "vocab", "list")
	require.Equal(t, 0, code)
	require.True(t, strings.HasPrefix(stdout, "helpers"), stdout)
	require.Contains(t, stdout, "Glue")
}

func TestRunnerImageDesigner(t *testing.T) {
	paths := setupRunnerEnv(t)

	stdout, stderr, code := paths.run(t, "image", "draw", "Smile", "--color", "#ff0000", "0,0", "0,1", "0,2")
	require.Equal(t, 0, code, stderr)
	require.Contains(t, stdout, "saved image smile")

	stdout, _, code = paths.run(t, "image", "list")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, `smile            "Smile" 3 px`)

	stdout, stderr, code = paths.run(t, "image", "draw", "Smile", "--mode", "erase", "0,2")
	require.Equal(t, 0, code, stderr)
	stdout, _, code = paths.run(t, "image", "list")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, `"Smile" 2 px`)

	stdout, _, code = paths.run(t, "image", "export", "smile", "--data-url")
	require.Equal(t, 0, code)
	require.True(t, strings.HasPrefix(stdout, "data:image/png;base64,"), stdout)

	pngPath := filepath.Join(t.TempDir(), "smile.png")
	_, stderr, code = paths.run(t, "image", "export", "smile", "-o", pngPath)
	require.Equal(t, 0, code, stderr)

	stdout, stderr, code = paths.run(t, "image", "import-png", "Copy", pngPath)
	require.Equal(t, 0, code, stderr)
	require.Contains(t, stdout, "saved image copy")

	grid := `[` + strings.Repeat(`[`+strings.TrimSuffix(strings.Repeat(`null,`, 16), ",")+`],`, 15) +
		`[` + strings.TrimSuffix(strings.Repeat(`1,`, 16), ",") + `]]`
	gridPath := filepath.Join(t.TempDir(), "grid.json")
	require.NoError(t, os.WriteFile(gridPath, []byte(grid), 0o600))
	stdout, stderr, code = paths.run(t, "image", "save", "Floor", gridPath)
	require.Equal(t, 0, code, stderr)
	require.Equal(t, "saved image floor\n", stdout)

	stdout, _, code = paths.run(t, "image", "show", "floor")
	require.Equal(t, 0, code)
	require.True(t, strings.HasPrefix(stdout, "Floor\n"), stdout)

	stdout, _, code = paths.run(t, "image", "delete", "floor")
	require.Equal(t, 0, code)
	require.Equal(t, "deleted image floor\n", stdout)

	_, stderr, code = paths.run(t, "image", "show", "floor")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "image not found")
}

func TestRunnerSettingsSetAndReset(t *testing.T) {
	paths := setupRunnerEnv(t)

	for _, args := range [][]string{
		{"settings", "set", "theme", "light"},
		{"settings", "set", "language", "es-MX"},
		{"settings", "set", "voice", "carmen"},
		{"settings", "set", "view", "soundboard"},
		{"settings", "dismiss-tips"},
	} {
		_, stderr, code := paths.run(t, args...)
		require.Equal(t, 0, code, "%v: %s", args, stderr)
	}

	stdout, stderr, code := paths.run(t, "settings", "set", "volume", "0.4")
	require.Equal(t, 0, code, stderr)
	require.Equal(t, "volume=0.4\n", stdout)

	stdout, _, code = paths.run(t, "settings", "view", "toggle")
	require.Equal(t, 0, code)
	require.Equal(t, "view=sentence-builder\n", stdout)

	stdout, _, code = paths.run(t, "settings", "show")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "volume   0.4")
	require.Contains(t, stdout, "language es (Spanish)")
	require.Contains(t, stdout, "voice    carmen")
	require.Contains(t, stdout, "theme    light")
	require.Contains(t, stdout, "view     sentence-builder")
	require.Contains(t, stdout, "tips     dismissed")

	stdout, _, code = paths.run(t, "settings", "view")
	require.Equal(t, 0, code)
	require.Equal(t, "sentence-builder\n", stdout)

	_, stderr, code = paths.run(t, "settings", "view", "kitchen")
	require.Equal(t, 2, code)
	require.Contains(t, stderr, "view must be one of")

	_, stderr, code = paths.run(t, "settings", "set", "view", "kitchen")
	require.Equal(t, 2, code)
	require.Contains(t, stderr, "view must be one of")

	_, stderr, code = paths.run(t, "settings", "set", "volume", "loud")
	require.Equal(t, 2, code)
	require.Contains(t, stderr, `invalid volume "loud"`)

	stdout, _, code = paths.run(t, "settings", "reset")
	require.Equal(t, 0, code)
	require.Equal(t, "settings reset: volume=1 language=en theme=dark\n", stdout)

	stdout, _, code = paths.run(t, "settings", "show")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "voice    (automatic)")
	require.Contains(t, stdout, "tips     shown")
}

func TestRunnerAdminDumpAndApply(t *testing.T) {
	paths := setupRunnerEnv(t)

	dumpPath := filepath.Join(t.TempDir(), "dump.json")
	_, stderr, code := paths.run(t, "admin", "dump", "-o", dumpPath)
	require.Equal(t, 0, code, stderr)
	data, err := os.ReadFile(dumpPath)
	require.NoError(t, err)
	require.Contains(t, string(data), `"soundboard"`)

	boardPath := filepath.Join(t.TempDir(), "edited.json")
	require.NoError(t, os.WriteFile(boardPath, []byte(`{"title": "Edited", "rows": 1, "cols": 1, "pads": [{"id": "one", "label": "One"}]}`), 0o600))

	stdout, stderr, code := paths.run(t, "admin", "generate-tts", "--write", boardPath)
	require.Equal(t, 0, code, stderr)
	require.Empty(t, stdout)
	data, err = os.ReadFile(boardPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "tts:One")

	stdout, stderr, code = paths.run(t, "admin", "apply", boardPath)
	require.Equal(t, 0, code, stderr)
	require.Equal(t, "applied board: \"Edited\" (1 pads)\n", stdout)

	_, stderr, code = paths.run(t, "admin", "apply", dumpPath+".missing")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "error: read ")
}

func TestRunnerBackupRoundTrip(t *testing.T) {
	paths := setupRunnerEnv(t)

	_, stderr, code := paths.run(t, "board", "set-pad", "0", "--id", "drink", "--label", "Drink")
	require.Equal(t, 0, code, stderr)
	_, stderr, code = paths.run(t, "settings", "set", "theme", "light")
	require.Equal(t, 0, code, stderr)

	backupPath := filepath.Join(t.TempDir(), "backup.json")
	stdout, stderr, code := paths.run(t, "backup", "export", "-o", backupPath)
	require.Equal(t, 0, code, stderr)
	require.Equal(t, "exported to "+backupPath+"\n", stdout)

	_, _, code = paths.run(t, "settings", "reset")
	require.Equal(t, 0, code)

	stdout, stderr, code = paths.run(t, "backup", "import", backupPath)
	require.Equal(t, 0, code, stderr)
	require.Contains(t, stdout, "imported full backup")

	stdout, _, code = paths.run(t, "settings", "show")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "theme    light")

	stdout, _, code = paths.run(t, "board", "show", "--json")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, `"id": "drink"`)
}

func TestRunnerDoctorCommandDispatchesAndPrintsReport(t *testing.T) {
	paths := setupRunnerEnv(t)

	stdout, _, code := paths.run(t, "doctor")
	require.Equal(t, 1, code)
	require.Contains(t, stdout, "[OK] config: loaded")
	require.Contains(t, stdout, "[OK] XDG_RUNTIME_DIR")
	require.Contains(t, stdout, "[FAIL] audio.sink")
}

func TestRunnerDevicesCommandDispatches(t *testing.T) {
	paths := setupRunnerEnv(t)

	_, stderr, code := paths.run(t, "devices")
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "error:")
}

func TestTryForwardSuccessAndFailureResponses(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "aacboard.sock")

	shutdown := startIPCServerForRunnerTest(t, socketPath, func(_ context.Context, req ipc.Request) ipc.Response {
		switch req.Command {
		case ipc.CommandStatus:
			return ipc.Response{OK: true, State: "speaking"}
		default:
			return ipc.Response{OK: false, Error: "unsupported"}
		}
	})

	resp, handled, err := tryForward(context.Background(), socketPath, ipc.Request{Command: ipc.CommandStatus})
	require.True(t, handled)
	require.NoError(t, err)
	require.Equal(t, "speaking", resp.State)

	_, handled, err = tryForward(context.Background(), socketPath, ipc.Request{Command: ipc.CommandStop})
	require.True(t, handled)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported")

	shutdown()
}

func TestTryForwardDoesNotRemoveSocketPathOnForwardFailure(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "aacboard.sock")
	require.NoError(t, os.WriteFile(socketPath, []byte("stale"), 0o600))

	_, handled, err := tryForward(context.Background(), socketPath, ipc.Request{Command: ipc.CommandStatus})
	require.False(t, handled)
	require.NoError(t, err)

	_, statErr := os.Stat(socketPath)
	require.NoError(t, statErr)
}

func TestTryForwardTreatsReadFailuresAsHandledErrors(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "aacboard.sock")

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, acceptErr := listener.Accept()
		if acceptErr == nil {
			_ = conn.Close()
		}
	}()

	_, handled, err := tryForward(context.Background(), socketPath, ipc.Request{Command: ipc.CommandStatus})
	require.True(t, handled)
	require.Error(t, err)
	require.Contains(t, err.Error(), "forward command \"status\":")

	<-done
	_, statErr := os.Stat(socketPath)
	require.NoError(t, statErr)
	require.NoError(t, listener.Close())
}

func TestParsePoint(t *testing.T) {
	p, err := parsePoint(" 3, 15")
	require.NoError(t, err)
	require.Equal(t, [2]int{3, 15}, p)

	for _, raw := range []string{"3", "a,1", "1,b", "16,0", "-1,2"} {
		_, err := parsePoint(raw)
		require.Error(t, err, raw)
	}
}

type runnerPaths struct {
	configPath string
	runtimeDir string
	spokenPath string
}

func (p runnerPaths) socketPath() string {
	return filepath.Join(p.runtimeDir, "aacboard.sock")
}

func (p runnerPaths) run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}
	code := runner.Execute(context.Background(), append([]string{"--config", p.configPath}, args...))
	return stdout.String(), stderr.String(), code
}

// spoken returns the utterances recorded by the speech stub since the last call.
func (p runnerPaths) spoken(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(p.spokenPath)
	require.NoError(t, err)
	require.NoError(t, os.Remove(p.spokenPath))
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func setupRunnerEnv(t *testing.T) runnerPaths {
	t.Helper()

	runtimeDir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("XDG_RUNTIME_DIR", runtimeDir)
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	binDir := t.TempDir()
	spokenPath := filepath.Join(t.TempDir(), "spoken.txt")
	speak := filepath.Join(binDir, "speak")
	require.NoError(t, os.WriteFile(speak, []byte("#!/bin/sh\nprintf '%s\\n' \"$*\" >> "+spokenPath+"\n"), 0o755))

	configPath := filepath.Join(t.TempDir(), "config.jsonc")
	config := `{
  // speech goes to a stub that records what it was asked to say
  "speech": {"command": "` + speak + ` {text}", "voices_command": "true"},
  "notify": {"enable": false}
}`
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o600))

	return runnerPaths{configPath: configPath, runtimeDir: runtimeDir, spokenPath: spokenPath}
}

func startIPCServerForRunnerTest(t *testing.T, socketPath string, handler func(context.Context, ipc.Request) ipc.Response) func() {
	t.Helper()

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ipc.Serve(ctx, listener, ipc.HandlerFunc(handler))
	}()

	return func() {
		cancel()
		require.NoError(t, <-done)
	}
}
