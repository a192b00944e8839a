package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// ErrAlreadyRunning means another owner answers on the socket.
var ErrAlreadyRunning = errors.New("aacboard owner already running")

const socketName = "aacboard.sock"

// RuntimeSocketPath is $XDG_RUNTIME_DIR/aacboard.sock.
func RuntimeSocketPath() (string, error) {
	runtimeDir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR"))
	if runtimeDir == "" {
		return "", errors.New("XDG_RUNTIME_DIR is not set")
	}
	return filepath.Join(runtimeDir, socketName), nil
}

// ListenOptions tunes how Listen deals with an existing socket file.
type ListenOptions struct {
	// ProbeTimeout bounds the status request sent to a possible owner.
	ProbeTimeout time.Duration
	// Retries bounds how many stale sockets Listen clears before giving up.
	Retries int
}

// DefaultListenOptions suit an interactive `aacboard serve`.
var DefaultListenOptions = ListenOptions{ProbeTimeout: 180 * time.Millisecond, Retries: 8}

// Listen claims path for a new owner. A socket left behind by an owner that
// no longer answers status is removed and listening retried. A live owner
// yields ErrAlreadyRunning, annotated with its current state.
func Listen(ctx context.Context, path string, opts ListenOptions) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("ensure runtime socket dir: %w", err)
	}

	for attempt := 0; ; attempt++ {
		listener, err := net.Listen("unix", path)
		if err == nil {
			_ = os.Chmod(path, 0o600)
			return listener, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) && !strings.Contains(err.Error(), "address already in use") {
			return nil, fmt.Errorf("listen unix %s: %w", path, err)
		}
		if attempt > opts.Retries {
			return nil, fmt.Errorf("failed to acquire socket %s after %d retries", path, opts.Retries)
		}

		state, alive, probeErr := Probe(ctx, path, opts.ProbeTimeout)
		if alive {
			if state == "" {
				return nil, ErrAlreadyRunning
			}
			return nil, fmt.Errorf("%w (%s)", ErrAlreadyRunning, state)
		}
		if probeErr != nil {
			return nil, fmt.Errorf("probe existing socket %s: %w", path, probeErr)
		}

		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale socket %s: %w", path, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(25*(attempt+1)) * time.Millisecond):
		}
	}
}
