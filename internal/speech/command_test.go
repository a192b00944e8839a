package speech

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExpandPlaceholders(t *testing.T) {
	s := &CommandSpeaker{
		Argv:      []string{"spd-say", "--wait", "-l", "{language}", "-i", "{volume_signed}", "{text}"},
		VoiceArgs: []string{"-y", "{voice}"},
	}

	got := s.Expand(Request{Text: "I want water", Language: "en", Volume: 0.5})
	require.Equal(t, []string{"spd-say", "--wait", "-l", "en", "-i", "0", "I want water"}, got)

	got = s.Expand(Request{Text: "hi", Language: "de", Voice: "Anna", Volume: 1})
	require.Equal(t, []string{"spd-say", "--wait", "-l", "de", "-i", "100", "-y", "Anna", "hi"}, got)
}

func TestExpandAppendsTextWithoutPlaceholder(t *testing.T) {
	s := &CommandSpeaker{Argv: []string{"espeak-ng", "-a", "{volume}"}, VoiceArgs: []string{"-v", "{voice}"}}
	got := s.Expand(Request{Text: "hello", Voice: "en-us", Volume: 0.25})
	require.Equal(t, []string{"espeak-ng", "-a", "25", "-v", "en-us", "--", "hello"}, got)

	require.Empty(t, (&CommandSpeaker{}).Expand(Request{Text: "x"}))
}

func TestExpandKeepsDashTextOutOfOptions(t *testing.T) {
	s := &CommandSpeaker{
		Argv:      []string{"spd-say", "--wait", "-l", "{language}", "-i", "{volume_signed}", "--", "{text}"},
		VoiceArgs: []string{"-y", "{voice}"},
	}
	got := s.Expand(Request{Text: "- hello", Language: "en", Volume: 1})
	require.Equal(t, []string{"spd-say", "--wait", "-l", "en", "-i", "100", "--", "- hello"}, got)

	got = s.Expand(Request{Text: "-", Language: "en", Voice: "Anna", Volume: 1})
	require.Equal(t, []string{"spd-say", "--wait", "-l", "en", "-i", "100", "-y", "Anna", "--", "-"}, got)

	trailing := &CommandSpeaker{Argv: []string{"say-it", "--"}}
	require.Equal(t, []string{"say-it", "--", "-x"}, trailing.Expand(Request{Text: "-x"}))
}

func TestCommandSpeakerRunsCommand(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "spoken.txt")
	script := writeScript(t, dir, "say", "#!/usr/bin/env bash\nprintf '%s|' \"$@\" > \""+outPath+"\"\n")

	s := &CommandSpeaker{Argv: []string{script, "-l", "{language}", "{text}"}}
	require.NoError(t, s.Speak(context.Background(), Request{Text: "good morning", Language: "en"}))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Equal(t, "-l|en|good morning|", string(data))
}

func TestCommandSpeakerSkipsBlankText(t *testing.T) {
	s := &CommandSpeaker{Argv: []string{"/definitely/missing/binary"}}
	require.NoError(t, s.Speak(context.Background(), Request{Text: "  "}))
}

func TestCommandSpeakerReportsFailure(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "fail", "#!/usr/bin/env bash\necho 'no synth' >&2\nexit 3\n")

	s := &CommandSpeaker{Argv: []string{script, "{text}"}}
	err := s.Speak(context.Background(), Request{Text: "hi"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no synth")
}

func TestCommandSpeakerInterruptedOnCancel(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "slow", "#!/usr/bin/env bash\nexec sleep 5\n")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	s := &CommandSpeaker{Argv: []string{script, "{text}"}}
	start := time.Now()
	err := s.Speak(ctx, Request{Text: "long sentence"})
	require.ErrorIs(t, err, ErrInterrupted)
	require.Less(t, time.Since(start), 4*time.Second)
}

func TestParseVoiceTable(t *testing.T) {
	out := `                NAME                LANGUAGE        VARIANT
             Afrikaans                    af           none
       English (America)               en-US           none
                 German                    de           none
`
	voices := parseVoiceTable(out)
	require.Equal(t, []Voice{
		{ID: "Afrikaans", Name: "Afrikaans", Language: "af"},
		{ID: "English (America)", Name: "English (America)", Language: "en-US"},
		{ID: "German", Name: "German", Language: "de"},
	}, voices)
}

func TestCommandSpeakerVoices(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "voices", "#!/usr/bin/env bash\nprintf 'NAME LANGUAGE VARIANT\\nZira en-US none\\n'\n")

	s := &CommandSpeaker{VoicesArgv: []string{script}}
	voices, err := s.Voices(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Voice{{ID: "Zira", Name: "Zira", Language: "en-US"}}, voices)

	voices, err = (&CommandSpeaker{}).Voices(context.Background())
	require.NoError(t, err)
	require.Nil(t, voices)
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}
