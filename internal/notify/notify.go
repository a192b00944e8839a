// Package notify shows transient status and error messages on the desktop.
package notify

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/aacboard/internal/config"
	"github.com/rbright/aacboard/internal/hypr"
)

const (
	defaultStatusTimeoutMS = 2000
	defaultErrorTimeoutMS  = 3000
	dispatchTimeout        = time.Second
)

// Notifier is the contract command handlers report through.
type Notifier interface {
	Status(ctx context.Context, text string)
	Error(ctx context.Context, text string)
}

// Notify routes messages to freedesktop notifications or Hyprland.
// Dispatch failures are logged at debug level and never surface.
type Notify struct {
	cfg      config.NotifyConfig
	logger   *slog.Logger
	messages Messages

	mu                    sync.Mutex
	desktopNotificationID uint32
}

// New creates a notifier from config.
func New(cfg config.NotifyConfig, logger *slog.Logger) *Notify {
	return &Notify{
		cfg:      cfg,
		logger:   logger,
		messages: MessagesFromEnv(),
	}
}

// Messages returns the localized canned texts.
func (n *Notify) Messages() Messages {
	return n.messages
}

// Status shows a short-lived success message.
func (n *Notify) Status(ctx context.Context, text string) {
	if !n.enabled() || strings.TrimSpace(text) == "" {
		return
	}
	timeout := n.cfg.StatusTimeoutMS
	if timeout <= 0 {
		timeout = defaultStatusTimeoutMS
	}
	n.run(ctx, func(ctx context.Context) error {
		return n.notify(ctx, 5, timeout, "rgb(a6e3a1)", text)
	})
}

// Error shows a short-lived error message.
func (n *Notify) Error(ctx context.Context, text string) {
	if !n.enabled() {
		return
	}
	if strings.TrimSpace(text) == "" {
		text = n.messages.Error
	}
	timeout := n.cfg.ErrorTimeoutMS
	if timeout <= 0 {
		timeout = defaultErrorTimeoutMS
	}
	n.run(ctx, func(ctx context.Context) error {
		return n.notify(ctx, 3, timeout, "rgb(f38ba8)", text)
	})
}

// Dismiss removes the current message.
func (n *Notify) Dismiss(ctx context.Context) {
	if !n.enabled() {
		return
	}
	n.run(ctx, n.dismiss)
}

func (n *Notify) enabled() bool {
	return n.cfg.Enable && n.backend() != "none"
}

func (n *Notify) backend() string {
	return strings.ToLower(strings.TrimSpace(n.cfg.Backend))
}

// notify dispatches through the configured backend.
func (n *Notify) notify(ctx context.Context, icon int, timeoutMS int, color string, text string) error {
	if n.backend() == "desktop" {
		return n.notifyDesktop(ctx, timeoutMS, text)
	}
	return hypr.Notify(ctx, icon, timeoutMS, color, text)
}

func (n *Notify) dismiss(ctx context.Context) error {
	if n.backend() == "desktop" {
		return n.dismissDesktop(ctx)
	}
	return hypr.DismissNotify(ctx)
}

// notifyDesktop sends a notification that replaces the previous one.
func (n *Notify) notifyDesktop(ctx context.Context, timeoutMS int, text string) error {
	n.mu.Lock()
	replaceID := n.desktopNotificationID
	n.mu.Unlock()

	appName := strings.TrimSpace(n.cfg.AppName)
	if appName == "" {
		appName = "aacboard"
	}

	id, err := desktopNotify(ctx, appName, replaceID, text, timeoutMS)
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.desktopNotificationID = id
	n.mu.Unlock()
	return nil
}

func (n *Notify) dismissDesktop(ctx context.Context) error {
	n.mu.Lock()
	id := n.desktopNotificationID
	n.desktopNotificationID = 0
	n.mu.Unlock()

	if id == 0 {
		return nil
	}
	return desktopDismiss(ctx, id)
}

// run executes one dispatch with a bounded timeout.
func (n *Notify) run(ctx context.Context, fn func(context.Context) error) {
	runCtx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()
	if err := fn(runCtx); err != nil {
		n.log("notification dispatch failed", err)
	}
}

func (n *Notify) log(message string, err error) {
	if n.logger == nil || err == nil {
		return
	}
	n.logger.Debug(message, "error", err.Error())
}

// Discard drops every message.
type Discard struct{}

func (Discard) Status(context.Context, string) {}
func (Discard) Error(context.Context, string)  {}
