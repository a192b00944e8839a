package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if cfg.Board.FetchTimeoutMS <= 0 {
		return nil, fmt.Errorf("board.fetch_timeout_ms must be > 0")
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Speech.Backend))
	switch backend {
	case SpeechCommand:
		if len(cfg.Speech.Command.Argv) == 0 {
			return nil, fmt.Errorf("speech.command must not be empty when speech.backend=command")
		}
		if !strings.Contains(cfg.Speech.Command.Raw, "{text}") {
			warnings = append(warnings, Warning{Message: "speech.command has no {text} placeholder; text is appended as the last argument"})
		}
	case SpeechRiva:
		if strings.TrimSpace(cfg.Speech.RivaGRPC) == "" {
			return nil, fmt.Errorf("speech.riva_grpc must not be empty when speech.backend=riva")
		}
	case SpeechNone:
	case "":
		return nil, fmt.Errorf("speech.backend must not be empty")
	default:
		return nil, fmt.Errorf("speech.backend must be one of: %s, %s, %s", SpeechCommand, SpeechRiva, SpeechNone)
	}
	if cfg.Speech.SampleRate <= 0 {
		return nil, fmt.Errorf("speech.sample_rate must be > 0")
	}
	if cfg.Speech.DialTimeoutMS <= 0 {
		return nil, fmt.Errorf("speech.dial_timeout_ms must be > 0")
	}

	notifyBackend := strings.ToLower(strings.TrimSpace(cfg.Notify.Backend))
	if notifyBackend == "" {
		return nil, fmt.Errorf("notify.backend must not be empty")
	}
	if notifyBackend != "desktop" && notifyBackend != "hypr" && notifyBackend != "none" {
		return nil, fmt.Errorf("notify.backend must be one of: desktop, hypr, none")
	}
	if notifyBackend == "desktop" && strings.TrimSpace(cfg.Notify.AppName) == "" {
		return nil, fmt.Errorf("notify.app_name must not be empty when notify.backend=desktop")
	}
	if cfg.Notify.StatusTimeoutMS < 0 {
		return nil, fmt.Errorf("notify.status_timeout_ms must be >= 0")
	}
	if cfg.Notify.ErrorTimeoutMS < 0 {
		return nil, fmt.Errorf("notify.error_timeout_ms must be >= 0")
	}

	if !slices.Contains(logLevels, strings.ToLower(strings.TrimSpace(cfg.Debug.LogLevel))) {
		return nil, fmt.Errorf("debug.log_level must be one of: %s", strings.Join(logLevels, ", "))
	}

	return warnings, nil
}

// FetchTimeout is board.fetch_timeout_ms as a duration.
func (c BoardConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// DialTimeout is speech.dial_timeout_ms as a duration.
func (c SpeechConfig) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutMS) * time.Millisecond
}
