package board

import (
	"fmt"
	"strings"

	"github.com/rbright/aacboard/internal/order"
)

// Cell is one grid position. Empty cells are disabled placeholders.
type Cell struct {
	Index int
	Row   int
	Col   int
	ID    string
	Empty bool
	Pad   Pad
}

// Sorted returns pads with ranked ones first, ascending, and unranked ones after in input order.
func Sorted(pads []Pad) []Pad {
	out := make([]Pad, len(pads))
	copy(out, pads)
	order.Sort(out, func(p Pad) order.Rank { return p.Order })
	return out
}

// Layout places the sorted pads into rows*cols cells.
func Layout(cfg Config) []Cell {
	pads := Sorted(cfg.Pads)
	cells := make([]Cell, cfg.Capacity())
	for i := range cells {
		cell := Cell{Index: i, Row: i / cfg.Cols, Col: i % cfg.Cols}
		if i < len(pads) {
			cell.Pad = pads[i]
			cell.ID = pads[i].ID
		} else {
			cell.Empty = true
			cell.ID = fmt.Sprintf("empty-%d", i)
		}
		cells[i] = cell
	}
	return cells
}

// FindByID returns the pad with id.
func (c Config) FindByID(id string) (Pad, bool) {
	for _, pad := range c.Pads {
		if pad.ID == id {
			return pad, true
		}
	}
	return Pad{}, false
}

// FindByKey resolves a keyboard shortcut, case-insensitively.
func (c Config) FindByKey(key string) (Pad, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Pad{}, false
	}
	for _, pad := range Sorted(c.Pads) {
		if pad.Key != "" && strings.EqualFold(pad.Key, key) {
			return pad, true
		}
	}
	return Pad{}, false
}

// SetPad writes pad at index in the stored pad list, growing it with blank
// pads as needed. Blank pads get ids no other pad uses.
func (c Config) SetPad(index int, pad Pad, fillColor string) (Config, error) {
	if index < 0 || index >= c.Capacity() {
		return c, fmt.Errorf("pad index %d outside grid of %d cells", index, c.Capacity())
	}

	pads := make([]Pad, len(c.Pads))
	copy(pads, c.Pads)

	// Filler ids count from pad-{len+1} and skip any id already on the board.
	used := make(map[string]bool, len(pads)+1)
	for _, p := range pads {
		used[p.ID] = true
	}
	used[pad.ID] = true
	next := len(pads)
	for len(pads) <= index {
		next++
		id := fmt.Sprintf("pad-%d", next)
		for used[id] {
			next++
			id = fmt.Sprintf("pad-%d", next)
		}
		used[id] = true
		pads = append(pads, Pad{ID: id, Color: fillColor})
	}
	if pad.ID == "" {
		pad.ID = pads[index].ID
	}
	if pad.Color == "" {
		pad.Color = fillColor
	}
	pads[index] = pad

	c.Pads = pads
	return c, nil
}

// Index returns the stored position of the pad with id, or -1.
func (c Config) Index(id string) int {
	for i, pad := range c.Pads {
		if pad.ID == id {
			return i
		}
	}
	return -1
}
