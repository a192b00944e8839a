// Package pixel implements the 16x16 image designer: grids, the drawing canvas, and the image library.
package pixel

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Size is the fixed edge length of every designer image.
const Size = 16

// Black is the color legacy 1-cells decode to.
const Black = "#000000"

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ErrInvalidGrid reports pixel data that is not a 16x16 matrix.
var ErrInvalidGrid = errors.New("data must be a 16x16 array")

// Cell is one pixel. The empty string is transparent and encodes as null.
type Cell string

// UnmarshalJSON accepts null, 0, 1, and color strings.
func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", "0":
		*c = ""
		return nil
	case "1":
		*c = Black
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("pixel must be null, 0, 1, or a color string: %s", string(data))
	}
	*c = Cell(strings.TrimSpace(s))
	return nil
}

// MarshalJSON writes transparent cells as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	if c == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(c))
}

// Grid is a row-major 16x16 pixel matrix.
type Grid [Size][Size]Cell

// MarshalJSON writes the grid as nested arrays.
func (g Grid) MarshalJSON() ([]byte, error) {
	rows := make([][]Cell, Size)
	for r := range g {
		rows[r] = g[r][:]
	}
	return json.Marshal(rows)
}

// UnmarshalJSON validates the 16x16 shape before accepting cells.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil || len(rows) != Size {
		return ErrInvalidGrid
	}

	var out Grid
	for r, raw := range rows {
		var cells []Cell
		if err := json.Unmarshal(raw, &cells); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				return fmt.Errorf("each row must have exactly %d elements", Size)
			}
			return fmt.Errorf("row %d: %w", r, err)
		}
		if len(cells) != Size {
			return fmt.Errorf("each row must have exactly %d elements", Size)
		}
		copy(out[r][:], cells)
	}
	*g = out
	return nil
}

// ParseGrid decodes the JSON view payload of the designer.
func ParseGrid(data []byte) (Grid, error) {
	var g Grid
	if err := json.Unmarshal(data, &g); err != nil {
		return Grid{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return g, nil
}

// Validate checks that every painted cell holds a hex color.
func (g Grid) Validate() error {
	for r := range g {
		for c, cell := range g[r] {
			if cell == "" {
				continue
			}
			if !hexColor.MatchString(string(cell)) {
				return fmt.Errorf("pixel %d,%d: invalid color %q", r, c, cell)
			}
		}
	}
	return nil
}

// Painted counts non-transparent cells.
func (g Grid) Painted() int {
	n := 0
	for r := range g {
		for _, cell := range g[r] {
			if cell != "" {
				n++
			}
		}
	}
	return n
}

func inBounds(row, col int) bool {
	return row >= 0 && row < Size && col >= 0 && col < Size
}
