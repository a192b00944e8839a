package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rbright/aacboard/internal/version"
)

// ErrFetch wraps network failures while fetching a remote board.
var ErrFetch = errors.New("failed to fetch config")

const maxBoardBytes = 8 << 20

// Loaded captures a normalized board and where it came from.
type Loaded struct {
	Source   string
	Config   Config
	Warnings []Warning
}

// Base is the location relative pad sounds resolve against. Boards that did
// not come from a URL or file have none.
func (l Loaded) Base() string {
	switch l.Source {
	case storedSource, defaultSource:
		return ""
	}
	return l.Source
}

// IsRemote reports whether source is fetched over HTTP.
func IsRemote(source string) bool {
	lower := strings.ToLower(strings.TrimSpace(source))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load fetches source (an http(s) URL or a local path) and normalizes it.
func Load(ctx context.Context, source string, timeout time.Duration) (Loaded, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return Loaded{}, errors.New("board source is empty")
	}

	var (
		data []byte
		err  error
	)
	if IsRemote(source) {
		data, err = fetch(ctx, source, timeout)
	} else {
		data, err = os.ReadFile(source)
		if err != nil {
			err = fmt.Errorf("read board %q: %w", source, err)
		}
	}
	if err != nil {
		return Loaded{}, err
	}

	parse := Parse
	switch strings.ToLower(filepath.Ext(trimQuery(source))) {
	case ".yaml", ".yml":
		parse = ParseYAML
	}

	cfg, warnings, err := parse(data)
	if err != nil {
		return Loaded{}, fmt.Errorf("parse board %q: %w", source, err)
	}
	return Loaded{Source: source, Config: cfg, Warnings: warnings}, nil
}

func fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w from %s: %v", ErrFetch, url, err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w from %s. Check the URL and network connection: %v", ErrFetch, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBoardBytes))
	if err != nil {
		return nil, fmt.Errorf("%w from %s: read body: %v", ErrFetch, url, err)
	}
	return data, nil
}

func trimQuery(source string) string {
	if i := strings.IndexAny(source, "?#"); i >= 0 {
		return source[:i]
	}
	return source
}
