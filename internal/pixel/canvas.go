package pixel

import "sync"

// Mode selects what a pointer press does on the canvas.
type Mode string

const (
	ModeDraw  Mode = "draw"
	ModeErase Mode = "erase"
	ModePick  Mode = "pick"
)

// DefaultColor returns the starting brush color for a theme.
func DefaultColor(theme string) Cell {
	if theme == "light" {
		return Black
	}
	return "#ffffff"
}

// Canvas is the editable image with stroke state.
type Canvas struct {
	mu      sync.Mutex
	grid    Grid
	color   Cell
	mode    Mode
	drawing bool
}

// NewCanvas creates an empty canvas painting with color.
func NewCanvas(color Cell) *Canvas {
	return &Canvas{color: color, mode: ModeDraw}
}

// Load replaces the canvas contents.
func (c *Canvas) Load(g Grid) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.grid = g
	c.drawing = false
}

// Grid returns a copy of the current image.
func (c *Canvas) Grid() Grid {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grid
}

// Color returns the current brush color.
func (c *Canvas) Color() Cell {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.color
}

// SetColor changes the brush color.
func (c *Canvas) SetColor(color Cell) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.color = color
}

// Mode returns the active pointer mode.
func (c *Canvas) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetMode switches between draw, erase, and pick.
func (c *Canvas) SetMode(m Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = m
	c.drawing = false
}

// Drawing reports whether a stroke is in progress.
func (c *Canvas) Drawing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drawing
}

// PointerDown starts a stroke, or samples a color in pick mode.
// Picking a transparent cell leaves pick mode active.
func (c *Canvas) PointerDown(row, col int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !inBounds(row, col) {
		return
	}

	if c.mode == ModePick {
		if picked := c.grid[row][col]; picked != "" {
			c.color = picked
			c.mode = ModeDraw
		}
		return
	}

	c.drawing = true
	c.paint(row, col)
}

// PointerMove continues an active stroke.
func (c *Canvas) PointerMove(row, col int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.drawing || c.mode == ModePick || !inBounds(row, col) {
		return
	}
	c.paint(row, col)
}

// PointerUp ends the stroke.
func (c *Canvas) PointerUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drawing = false
}

// Clear resets every cell to transparent.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.grid = Grid{}
	c.drawing = false
}

func (c *Canvas) paint(row, col int) {
	if c.mode == ModeErase {
		c.grid[row][col] = ""
		return
	}
	c.grid[row][col] = c.color
}
