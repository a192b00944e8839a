package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rbright/aacboard/internal/order"
)

// ErrNotObject reports a payload whose top level is not an object.
var ErrNotObject = errors.New("config must be a valid JSON object")

// Parse decodes and normalizes a JSON board definition.
func Parse(data []byte) (Config, []Warning, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Config{}, nil, wrapJSONDecodeError(string(data), err)
	}
	return normalize(raw)
}

// ParseYAML decodes a YAML board definition into the same shape as Parse.
func ParseYAML(data []byte) (Config, []Warning, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, nil, fmt.Errorf("decode yaml: %w", err)
	}

	// Round trip through JSON so pads decode with the JSON field rules.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return Config{}, nil, fmt.Errorf("convert yaml: %w", err)
	}
	return Parse(encoded)
}

func normalize(raw any) (Config, []Warning, error) {
	doc, ok := raw.(map[string]any)
	if !ok {
		return Config{}, nil, ErrNotObject
	}

	var warnings []Warning
	cfg := Config{
		Title: DefaultTitle,
		Rows:  DefaultRows,
		Cols:  DefaultCols,
	}

	if title, ok := doc["title"].(string); ok && title != "" {
		cfg.Title = title
	}

	var clampWarnings []Warning
	cfg.Rows, clampWarnings = dimension(doc["rows"], "rows", DefaultRows)
	warnings = append(warnings, clampWarnings...)
	cfg.Cols, clampWarnings = dimension(doc["cols"], "cols", DefaultCols)
	warnings = append(warnings, clampWarnings...)

	var entries []any
	switch pads := doc["pads"].(type) {
	case nil:
	case []any:
		entries = pads
	default:
		return Config{}, nil, errors.New("pads must be an array")
	}

	cfg.Pads = make([]Pad, 0, len(entries))
	for index, entry := range entries {
		pad, padWarnings, err := decodePad(entry, index)
		if err != nil {
			warnings = append(warnings, Warning{Message: fmt.Sprintf("pad %d ignored: %v", index, err)})
			continue
		}
		warnings = append(warnings, padWarnings...)
		cfg.Pads = append(cfg.Pads, pad)
	}

	if limit := cfg.Capacity(); len(cfg.Pads) > limit {
		warnings = append(warnings, Warning{Message: fmt.Sprintf(
			"config has %d pads but grid only supports %d; extra pads will be ignored",
			len(cfg.Pads), limit,
		)})
		cfg.Pads = cfg.Pads[:limit]
	}

	return cfg, warnings, nil
}

// decodePad accepts any object. Scalar fields of the wrong type are kept as
// text and anything else is left empty, so a pad is only dropped when the
// entry itself is not an object.
func decodePad(entry any, index int) (Pad, []Warning, error) {
	fields, ok := entry.(map[string]any)
	if !ok {
		return Pad{}, nil, errors.New("not an object")
	}

	pad := Pad{
		ID:    scalarText(fields["id"]),
		Label: scalarText(fields["label"]),
		Sound: scalarText(fields["sound"]),
		Color: scalarText(fields["color"]),
		Key:   scalarText(fields["key"]),
	}

	var warnings []Warning
	if raw, ok := fields["image"]; ok {
		if err := redecode(raw, &pad.Image); err != nil {
			warnings = append(warnings, Warning{Message: fmt.Sprintf("pad %d image ignored: %v", index, err)})
			pad.Image = ImageRef{}
		}
	}
	if raw, ok := fields["order"]; ok {
		if err := redecode(raw, &pad.Order); err != nil {
			pad.Order = order.Rank{}
		}
	}

	if pad.ID == "" {
		pad.ID = fmt.Sprintf("pad-%d", index)
	}
	if pad.Color == "" {
		pad.Color = DefaultColor
	}
	return pad, warnings, nil
}

func scalarText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// redecode runs one already-decoded value through dst's JSON decoder.
func redecode(value any, dst any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, dst)
}

// dimension applies the default for missing or zero values and clamps to [1,10].
func dimension(value any, name string, fallback int) (int, []Warning) {
	n, ok := toInt(value)
	if !ok || n == 0 {
		return fallback, nil
	}
	switch {
	case n < MinDimension:
		return MinDimension, []Warning{{Message: fmt.Sprintf("%s %d clamped to %d", name, n, MinDimension)}}
	case n > MaxDimension:
		return MaxDimension, []Warning{{Message: fmt.Sprintf("%s %d clamped to %d", name, n, MaxDimension)}}
	default:
		return n, nil
	}
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return int(f), true
	default:
		return 0, false
	}
}

func wrapJSONDecodeError(content string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("invalid JSON at line %d column %d: %w", line, col, err)
	}
	return fmt.Errorf("invalid JSON: %w", err)
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
