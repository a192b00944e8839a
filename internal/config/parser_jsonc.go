package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

type jsoncConfig struct {
	Board  *jsoncBoard  `json:"board"`
	Store  *jsoncStore  `json:"store"`
	Speech *jsoncSpeech `json:"speech"`
	Audio  *jsoncAudio  `json:"audio"`
	Notify *jsoncNotify `json:"notify"`
	Debug  *jsoncDebug  `json:"debug"`
}

type jsoncBoard struct {
	URL            *string `json:"url"`
	FetchTimeoutMS *int    `json:"fetch_timeout_ms"`
}

type jsoncStore struct {
	Path *string `json:"path"`
}

type jsoncSpeech struct {
	Backend       *string `json:"backend"`
	Command       *string `json:"command"`
	VoiceArgs     *string `json:"voice_args"`
	VoicesCommand *string `json:"voices_command"`
	RivaGRPC      *string `json:"riva_grpc"`
	SampleRate    *int    `json:"sample_rate"`
	DialTimeoutMS *int    `json:"dial_timeout_ms"`
}

type jsoncAudio struct {
	Sink *string `json:"sink"`
}

type jsoncNotify struct {
	Enable          *bool   `json:"enable"`
	Backend         *string `json:"backend"`
	AppName         *string `json:"app_name"`
	StatusTimeoutMS *int    `json:"status_timeout_ms"`
	ErrorTimeoutMS  *int    `json:"error_timeout_ms"`
}

type jsoncDebug struct {
	LogLevel *string `json:"log_level"`
}

func parseJSONC(content string, base Config) (Config, []Warning, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	warnings, err := payload.applyTo(&cfg)
	if err != nil {
		return Config{}, nil, err
	}

	validatedWarnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	warnings = append(warnings, validatedWarnings...)
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if payload.Board != nil {
		if payload.Board.URL != nil {
			cfg.Board.URL = strings.TrimSpace(*payload.Board.URL)
		}
		if payload.Board.FetchTimeoutMS != nil {
			cfg.Board.FetchTimeoutMS = *payload.Board.FetchTimeoutMS
		}
	}

	if payload.Store != nil && payload.Store.Path != nil {
		cfg.Store.Path = strings.TrimSpace(*payload.Store.Path)
	}

	if payload.Speech != nil {
		if payload.Speech.Backend != nil {
			cfg.Speech.Backend = strings.ToLower(strings.TrimSpace(*payload.Speech.Backend))
		}
		commands := []struct {
			name string
			raw  *string
			dst  *CommandConfig
		}{
			{"speech.command", payload.Speech.Command, &cfg.Speech.Command},
			{"speech.voice_args", payload.Speech.VoiceArgs, &cfg.Speech.VoiceArgs},
			{"speech.voices_command", payload.Speech.VoicesCommand, &cfg.Speech.VoicesCommand},
		}
		for _, cmd := range commands {
			if cmd.raw == nil {
				continue
			}
			parsed, unknown, err := parseCommand(*cmd.raw)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", cmd.name, err)
			}
			for _, name := range unknown {
				warnings = append(warnings, Warning{Message: fmt.Sprintf("%s: unknown placeholder {%s} is passed through unchanged", cmd.name, name)})
			}
			*cmd.dst = parsed
		}
		if payload.Speech.RivaGRPC != nil {
			cfg.Speech.RivaGRPC = strings.TrimSpace(*payload.Speech.RivaGRPC)
		}
		if payload.Speech.SampleRate != nil {
			cfg.Speech.SampleRate = *payload.Speech.SampleRate
		}
		if payload.Speech.DialTimeoutMS != nil {
			cfg.Speech.DialTimeoutMS = *payload.Speech.DialTimeoutMS
		}
	}

	if payload.Audio != nil && payload.Audio.Sink != nil {
		cfg.Audio.Sink = strings.TrimSpace(*payload.Audio.Sink)
		if cfg.Audio.Sink == "" {
			cfg.Audio.Sink = "default"
			warnings = append(warnings, Warning{Message: "audio.sink is empty; using default"})
		}
	}

	if payload.Notify != nil {
		if payload.Notify.Enable != nil {
			cfg.Notify.Enable = *payload.Notify.Enable
		}
		if payload.Notify.Backend != nil {
			cfg.Notify.Backend = strings.ToLower(strings.TrimSpace(*payload.Notify.Backend))
		}
		if payload.Notify.AppName != nil {
			cfg.Notify.AppName = strings.TrimSpace(*payload.Notify.AppName)
		}
		if payload.Notify.StatusTimeoutMS != nil {
			cfg.Notify.StatusTimeoutMS = *payload.Notify.StatusTimeoutMS
		}
		if payload.Notify.ErrorTimeoutMS != nil {
			cfg.Notify.ErrorTimeoutMS = *payload.Notify.ErrorTimeoutMS
		}
	}

	if payload.Debug != nil && payload.Debug.LogLevel != nil {
		cfg.Debug.LogLevel = strings.ToLower(strings.TrimSpace(*payload.Debug.LogLevel))
	}

	return warnings, nil
}

func normalizeJSONC(content string) (string, error) {
	withoutComments, err := stripJSONCComments(content)
	if err != nil {
		return "", err
	}
	return stripJSONCTrailingCommas(withoutComments), nil
}

func stripJSONCComments(content string) (string, error) {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false
	lineComment := false
	blockComment := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if lineComment {
			if ch == '\n' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			if ch == '\r' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			out.WriteByte(' ')
			continue
		}

		if blockComment {
			if ch == '*' && i+1 < len(content) && content[i+1] == '/' {
				blockComment = false
				out.WriteString("  ")
				i++
				continue
			}
			if ch == '\n' || ch == '\r' || ch == '\t' {
				out.WriteByte(ch)
			} else {
				out.WriteByte(' ')
			}
			continue
		}

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == '/' && i+1 < len(content) {
			next := content[i+1]
			if next == '/' {
				lineComment = true
				out.WriteString("  ")
				i++
				continue
			}
			if next == '*' {
				blockComment = true
				out.WriteString("  ")
				i++
				continue
			}
		}

		out.WriteByte(ch)
	}

	if blockComment {
		return "", fmt.Errorf("unterminated block comment in JSONC")
	}

	return out.String(), nil
}

func stripJSONCTrailingCommas(content string) string {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == ',' {
			j := i + 1
			for j < len(content) && isJSONWhitespace(content[j]) {
				j++
			}
			if j < len(content) && (content[j] == '}' || content[j] == ']') {
				continue
			}
		}

		out.WriteByte(ch)
	}

	return out.String()
}

func isJSONWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\n', '\r', '\t':
		return true
	default:
		return false
	}
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}

func wrapJSONDecodeError(content string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(content, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	return err
}

func offsetToLineCol(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}

	limit := int(offset)
	if limit > len(content) {
		limit = len(content)
	}

	line := 1
	col := 1
	for i := 0; i < limit-1; i++ {
		if content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
