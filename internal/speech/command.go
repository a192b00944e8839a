package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

const endOfOptions = "--"

// CommandSpeaker runs an argv template per utterance.
//
// Placeholders: {text}, {language}, {voice}, {volume} (0..100) and
// {volume_signed} (-100..100, the spd-say rate scale). VoiceArgs is inserted
// only when the request names a voice, ahead of any "--" marker. When no
// argument carries {text}, the text is appended after "--" as the final
// argument.
type CommandSpeaker struct {
	Argv       []string
	VoiceArgs  []string
	VoicesArgv []string
}

// Speak runs the command and waits for it. Cancellation kills the process.
func (s *CommandSpeaker) Speak(ctx context.Context, req Request) error {
	if strings.TrimSpace(req.Text) == "" {
		return nil
	}
	argv := s.Expand(req)
	if len(argv) == 0 {
		return errors.New("speech command argv cannot be empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ErrInterrupted
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("run %s: %w (%s)", argv[0], err, msg)
		}
		return fmt.Errorf("run %s: %w", argv[0], err)
	}
	if ctx.Err() != nil {
		return ErrInterrupted
	}
	return nil
}

// Expand substitutes request values into the argv template.
func (s *CommandSpeaker) Expand(req Request) []string {
	replacer := strings.NewReplacer(
		"{text}", req.Text,
		"{language}", req.Language,
		"{voice}", req.Voice,
		"{volume_signed}", strconv.Itoa(int(math.Round(clamp(req.Volume)*200-100))),
		"{volume}", strconv.Itoa(int(math.Round(clamp(req.Volume)*100))),
	)

	var voiceArgs []string
	if strings.TrimSpace(req.Voice) != "" {
		for _, arg := range s.VoiceArgs {
			voiceArgs = append(voiceArgs, replacer.Replace(arg))
		}
	}

	out := make([]string, 0, len(s.Argv)+len(voiceArgs)+2)
	placed, hasText := false, false
	for _, arg := range s.Argv {
		isText := strings.Contains(arg, "{text}")
		if !placed && (isText || arg == endOfOptions) {
			out = append(out, voiceArgs...)
			placed = true
		}
		hasText = hasText || isText
		out = append(out, replacer.Replace(arg))
	}
	if hasText || len(out) == 0 {
		return out
	}
	if !placed {
		out = append(out, voiceArgs...)
	}
	// Text such as "- hello" must not be read as an option.
	if out[len(out)-1] != endOfOptions {
		out = append(out, endOfOptions)
	}
	return append(out, req.Text)
}

// Voices runs the voice listing command and parses its table.
func (s *CommandSpeaker) Voices(ctx context.Context) ([]Voice, error) {
	if len(s.VoicesArgv) == 0 {
		return nil, nil
	}
	out, err := exec.CommandContext(ctx, s.VoicesArgv[0], s.VoicesArgv[1:]...).Output()
	if err != nil {
		return nil, fmt.Errorf("list voices with %s: %w", s.VoicesArgv[0], err)
	}
	return parseVoiceTable(string(out)), nil
}

// parseVoiceTable reads `spd-say -L` output: NAME LANGUAGE VARIANT columns,
// where NAME may contain spaces.
func parseVoiceTable(out string) []Voice {
	voices := make([]Voice, 0)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		if fields[0] == "NAME" && fields[len(fields)-2] == "LANGUAGE" {
			continue
		}
		name := strings.Join(fields[:len(fields)-2], " ")
		voices = append(voices, Voice{
			ID:       name,
			Name:     name,
			Language: fields[len(fields)-2],
		})
	}
	return voices
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
