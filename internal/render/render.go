// Package render draws boards, words, and pixel images for the terminal.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rbright/aacboard/internal/board"
	"github.com/rbright/aacboard/internal/pixel"
	"github.com/rbright/aacboard/internal/sentence"
	"github.com/rbright/aacboard/internal/settings"
	"github.com/rbright/aacboard/internal/vocab"
)

const cellWidth = 14

type palette struct {
	placeholder lipgloss.Color
	muted       lipgloss.Color
	title       lipgloss.Color
}

func paletteFor(theme string) palette {
	if theme == settings.ThemeLight {
		return palette{placeholder: "#e5e7eb", muted: "#6b7280", title: "#111827"}
	}
	return palette{placeholder: "#1f1f1f", muted: "#9ca3af", title: "#f9fafb"}
}

// Board renders the pad grid. Empty cells are drawn as disabled placeholders.
func Board(cfg board.Config, lib pixel.Library, theme string) string {
	p := paletteFor(theme)
	title := lipgloss.NewStyle().Bold(true).Foreground(p.title).Render(cfg.Title)

	cells := board.Layout(cfg)
	rows := make([]string, 0, cfg.Rows)
	for r := 0; r < cfg.Rows; r++ {
		line := make([]string, 0, cfg.Cols)
		for c := 0; c < cfg.Cols; c++ {
			line = append(line, padCell(cells[r*cfg.Cols+c], lib, p))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, line...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{title}, rows...)...)
}

func padCell(cell board.Cell, lib pixel.Library, p palette) string {
	style := lipgloss.NewStyle().
		Width(cellWidth).
		Height(3).
		Align(lipgloss.Center, lipgloss.Center).
		Border(lipgloss.RoundedBorder())

	if cell.Empty {
		return style.
			BorderForeground(p.muted).
			Background(p.placeholder).
			Foreground(p.muted).
			Render("·")
	}

	pad := cell.Pad
	color := pad.Color
	if color == "" {
		color = board.DefaultColor
	}

	label := truncate(pad.Label, cellWidth-2)
	var lines []string
	if img, ok := pad.Image.Resolve(lib); ok {
		lines = append(lines, truncate("▣ "+img.Name, cellWidth-2))
	}
	lines = append(lines, label)
	if pad.Key != "" {
		lines = append(lines, "["+strings.ToUpper(pad.Key)+"]")
	}

	return style.
		BorderForeground(lipgloss.Color(color)).
		Background(lipgloss.Color(color)).
		Foreground(Contrast(color)).
		Render(strings.Join(lines, "\n"))
}

// Words renders one category as colored chips.
func Words(cat vocab.CategoryView, words []vocab.Word) string {
	header := lipgloss.NewStyle().Bold(true).Render(cat.Icon + " " + cat.Label)
	chips := make([]string, 0, len(words))
	for _, w := range words {
		chips = append(chips, Chip(w.Display, w.Color))
	}
	return header + "\n" + wrap(chips, 6)
}

// Chip renders text on a colored background.
func Chip(text, color string) string {
	return lipgloss.NewStyle().
		Padding(0, 1).
		MarginRight(1).
		Background(lipgloss.Color(color)).
		Foreground(Contrast(color)).
		Render(text)
}

// Sentence renders the selected words with their positions.
func Sentence(entries []sentence.Entry) string {
	if len(entries) == 0 {
		return lipgloss.NewStyle().Faint(true).Render("(empty sentence)")
	}
	chips := make([]string, 0, len(entries))
	for i, e := range entries {
		chips = append(chips, fmt.Sprintf("%d:%s", i, Chip(e.Display, "#374151")))
	}
	return wrap(chips, 8)
}

// Image renders a pixel grid with half blocks, two pixel rows per line.
func Image(g pixel.Grid) string {
	var b strings.Builder
	for r := 0; r < pixel.Size; r += 2 {
		for c := 0; c < pixel.Size; c++ {
			b.WriteString(halfBlock(g[r][c], g[r+1][c]))
		}
		if r+2 < pixel.Size {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func halfBlock(top, bottom pixel.Cell) string {
	switch {
	case top == "" && bottom == "":
		return " "
	case bottom == "":
		return lipgloss.NewStyle().Foreground(lipgloss.Color(top)).Render("▀")
	case top == "":
		return lipgloss.NewStyle().Foreground(lipgloss.Color(bottom)).Render("▄")
	default:
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(top)).
			Background(lipgloss.Color(bottom)).
			Render("▀")
	}
}

// Contrast picks black or white text for a #rrggbb background.
func Contrast(hex string) lipgloss.Color {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return "#ffffff"
	}
	// ITU-R BT.601 luma
	if 0.299*float64(r)+0.587*float64(g)+0.114*float64(b) > 150 {
		return "#000000"
	}
	return "#ffffff"
}

func parseHex(hex string) (r, g, b uint8, ok bool) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

func wrap(items []string, perLine int) string {
	lines := make([]string, 0, len(items)/perLine+1)
	for start := 0; start < len(items); start += perLine {
		end := min(start+perLine, len(items))
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, items[start:end]...))
	}
	return strings.Join(lines, "\n")
}
