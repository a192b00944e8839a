// Package config resolves, parses, validates, and defaults aacboard runtime configuration.
package config

// Config is the fully materialized runtime configuration used by aacboard.
type Config struct {
	Board  BoardConfig
	Store  StoreConfig
	Speech SpeechConfig
	Audio  AudioConfig
	Notify NotifyConfig
	Debug  DebugConfig
}

// BoardConfig controls where the default board comes from.
type BoardConfig struct {
	URL            string
	FetchTimeoutMS int
}

// StoreConfig locates the state database. Empty Path means the XDG data dir.
type StoreConfig struct {
	Path string
}

// Speech backends.
const (
	SpeechCommand = "command"
	SpeechRiva    = "riva"
	SpeechNone    = "none"
)

// SpeechConfig selects and tunes the text-to-speech backend.
type SpeechConfig struct {
	Backend       string
	Command       CommandConfig
	VoiceArgs     CommandConfig
	VoicesCommand CommandConfig
	RivaGRPC      string
	SampleRate    int
	DialTimeoutMS int
}

// AudioConfig selects the output sink for recorded pad sounds.
type AudioConfig struct {
	Sink string
}

// NotifyConfig controls transient status and error messages.
type NotifyConfig struct {
	Enable          bool
	Backend         string
	AppName         string
	StatusTimeoutMS int
	ErrorTimeoutMS  int
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// DebugConfig controls log verbosity.
type DebugConfig struct {
	LogLevel string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
