// Package ipc carries commands from short-lived CLI invocations to the owner
// process over a unix socket, one JSON line each way.
package ipc

import "time"

// Commands understood by the owner.
const (
	CommandStatus        = "status"
	CommandPress         = "press"
	CommandKey           = "key"
	CommandSay           = "say"
	CommandSpeakSentence = "speak-sentence"
	CommandVolume        = "volume"
	CommandReload        = "reload"
	CommandStop          = "stop"
)

// Timeouts for round trips. Playback commands block until audio finishes.
const (
	ControlTimeout  = 2 * time.Second
	PlaybackTimeout = 2 * time.Minute
)

type Request struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

type Response struct {
	OK      bool   `json:"ok"`
	State   string `json:"state,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Arg returns args[i] or "".
func (r Request) Arg(i int) string {
	if i < 0 || i >= len(r.Args) {
		return ""
	}
	return r.Args[i]
}

// TimeoutFor picks the round-trip budget for a command.
func TimeoutFor(command string) time.Duration {
	switch command {
	case CommandPress, CommandKey, CommandSay, CommandSpeakSentence:
		return PlaybackTimeout
	default:
		return ControlTimeout
	}
}
