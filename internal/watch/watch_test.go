package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rbright/aacboard/internal/pubsub"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startWatcher(t *testing.T, path string, debounce time.Duration) (<-chan pubsub.Event[string], func()) {
	t.Helper()

	w, err := New(Config{Path: path, Debounce: debounce})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	sub := w.Broker().Subscribe(ctx)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	return sub, func() {
		cancel()
		require.NoError(t, <-done)
	}
}

func TestWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	sub, stop := startWatcher(t, path, 150*time.Millisecond)
	defer stop()

	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(`{"title":"v%d"}`, i)), 0o600))
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case evt := <-sub:
		require.Equal(t, pubsub.ReloadEvent, evt.Type)
		require.Equal(t, path, evt.Payload)
	case <-time.After(2 * time.Second):
		require.Fail(t, "expected reload event")
	}

	select {
	case <-sub:
		require.Fail(t, "unexpected second event")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherSeesRenameReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	sub, stop := startWatcher(t, path, 50*time.Millisecond)
	defer stop()

	tmp := filepath.Join(dir, ".board.json.swp")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"title":"new"}`), 0o600))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case evt := <-sub:
		require.Equal(t, path, evt.Payload)
	case <-time.After(2 * time.Second):
		require.Fail(t, "expected reload event")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.json")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))
	require.NoError(t, os.WriteFile(other, []byte("a"), 0o600))

	sub, stop := startWatcher(t, path, 30*time.Millisecond)
	defer stop()

	require.NoError(t, os.WriteFile(other, []byte("b"), 0o600))
	select {
	case <-sub:
		require.Fail(t, "unexpected event for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNewRejectsBadPaths(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)

	_, err = New(Config{Path: filepath.Join(t.TempDir(), "missing", "board.json")})
	require.Error(t, err)
}
