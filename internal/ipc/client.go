package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
	"time"
)

// Send delivers req to the owner listening on path and waits for its reply.
// The deadline comes from TimeoutFor, so playback commands may block until
// the audio finishes while control commands fail fast.
func Send(ctx context.Context, path string, req Request) (Response, error) {
	return roundTrip(ctx, path, req, TimeoutFor(req.Command))
}

// Probe asks the owner on path for its status within timeout. It reports
// false without error when nothing is listening, and the owner's state
// when something answers.
func Probe(ctx context.Context, path string, timeout time.Duration) (string, bool, error) {
	resp, err := roundTrip(ctx, path, Request{Command: CommandStatus}, timeout)
	switch {
	case err == nil:
		return resp.State, true, nil
	case Unreachable(err):
		return "", false, nil
	default:
		return "", false, fmt.Errorf("probe socket: %w", err)
	}
}

// Unreachable reports errors meaning no owner is listening: the socket file
// is absent or nothing accepts on it.
func Unreachable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		strings.Contains(err.Error(), "no such file or directory")
}

func roundTrip(ctx context.Context, path string, req Request, timeout time.Duration) (Response, error) {
	if strings.TrimSpace(req.Command) == "" {
		return Response{}, errors.New("request has no command")
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "unix", path)
	if err != nil {
		return Response{}, err
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return Response{}, fmt.Errorf("set deadline: %w", err)
	}

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return Response{}, fmt.Errorf("encode %s request: %w", req.Command, err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return Response{}, fmt.Errorf("read %s response: %w", req.Command, err)
	}

	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return Response{}, fmt.Errorf("decode %s response: %w", req.Command, err)
	}
	if !resp.OK && resp.Error == "" {
		resp.Error = fmt.Sprintf("owner rejected %s", req.Command)
	}
	return resp, nil
}
