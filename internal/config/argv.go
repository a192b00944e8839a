package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// Placeholders the speech backend fills in a command template.
var Placeholders = []string{"text", "language", "voice", "volume", "volume_signed"}

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_]+)\}`)

// parseCommand splits a speech command template into argv the way a shell
// would for plain words, quotes and backslash escapes. A quoted empty string
// stays an argument. Placeholders the speaker does not know are returned so
// the caller can warn about them; they are passed through unchanged.
func parseCommand(raw string) (CommandConfig, []string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return CommandConfig{Raw: raw}, nil, nil
	}

	var (
		argv    []string
		word    strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range trimmed {
		switch {
		case escaped:
			word.WriteRune(r)
			escaped = false
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			word.WriteRune(r)
		case r == '\\':
			escaped, inWord = true, true
		case r == '\'' || r == '"':
			quote, inWord = r, true
		case unicode.IsSpace(r):
			if inWord {
				argv = append(argv, word.String())
				word.Reset()
				inWord = false
			}
		default:
			word.WriteRune(r)
			inWord = true
		}
	}
	switch {
	case escaped:
		return CommandConfig{}, nil, fmt.Errorf("unterminated escape sequence in command: %q", raw)
	case quote != 0:
		return CommandConfig{}, nil, fmt.Errorf("unterminated quote in command: %q", raw)
	case inWord:
		argv = append(argv, word.String())
	}

	var unknown []string
	for _, arg := range argv {
		for _, m := range placeholderPattern.FindAllStringSubmatch(arg, -1) {
			if !slices.Contains(Placeholders, m[1]) && !slices.Contains(unknown, m[1]) {
				unknown = append(unknown, m[1])
			}
		}
	}
	return CommandConfig{Raw: raw, Argv: argv}, unknown, nil
}

// mustCommand parses a built-in template.
func mustCommand(raw string) CommandConfig {
	cmd, unknown, err := parseCommand(raw)
	if err != nil {
		panic(err)
	}
	if len(unknown) > 0 {
		panic(fmt.Sprintf("command %q uses unknown placeholders %v", raw, unknown))
	}
	return cmd
}
