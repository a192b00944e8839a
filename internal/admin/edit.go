package admin

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	ordered "gitlab.com/c0b/go-ordered-json"

	"github.com/rbright/aacboard/internal/board"
)

const (
	NewPadLabel = "New Pad"
	NewPadColor = "#4f46e5"
)

// GenerateTTS rewrites the sound of every labelled pad to speak its label.
// Key order in the document is preserved.
func GenerateTTS(text []byte) ([]byte, error) {
	return rewrite(text, func(pads []any) []any {
		for _, entry := range pads {
			pad, ok := entry.(*ordered.OrderedMap)
			if !ok {
				continue
			}
			value, _ := pad.GetValue("label")
			if label, ok := value.(string); ok && label != "" {
				pad.Set("sound", board.TTSPrefix+label)
			}
		}
		return pads
	})
}

// AddPad appends a placeholder pad with a fresh id.
func AddPad(text []byte) ([]byte, string, error) {
	id := "pad-" + uuid.NewString()
	out, err := rewrite(text, func(pads []any) []any {
		pad := ordered.NewOrderedMap()
		pad.Set("id", id)
		pad.Set("label", NewPadLabel)
		pad.Set("sound", board.TTSPrefix+NewPadLabel)
		pad.Set("color", NewPadColor)
		pad.Set("key", "")
		return append(pads, pad)
	})
	if err != nil {
		return nil, "", err
	}
	return out, id, nil
}

// rewrite decodes text keeping key order, hands the pads array of the
// soundboard (or of the bare config) to fn, and re-encodes.
func rewrite(text []byte, fn func([]any) []any) ([]byte, error) {
	doc := ordered.NewOrderedMap()
	if err := json.Unmarshal(text, doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	target := doc
	if value, ok := doc.GetValue("soundboard"); ok {
		nested, ok := value.(*ordered.OrderedMap)
		if !ok {
			return nil, fmt.Errorf("%w: soundboard must be an object", ErrInvalid)
		}
		target = nested
	}

	var pads []any
	if value, ok := target.GetValue("pads"); ok && value != nil {
		list, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: Config must have a pads array", ErrInvalid)
		}
		pads = list
	}
	target.Set("pads", nonNil(fn(pads)))

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return append(out, '\n'), nil
}

func nonNil(pads []any) []any {
	if pads == nil {
		return []any{}
	}
	return pads
}
