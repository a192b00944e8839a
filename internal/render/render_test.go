package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/require"

	"github.com/rbright/aacboard/internal/board"
	"github.com/rbright/aacboard/internal/pixel"
	"github.com/rbright/aacboard/internal/sentence"
	"github.com/rbright/aacboard/internal/vocab"
)

func TestBoardShowsPadsAndPlaceholders(t *testing.T) {
	cfg := board.Config{
		Title: "Home",
		Rows:  2,
		Cols:  2,
		Pads: []board.Pad{
			{ID: "a", Label: "Yes", Color: "#22c55e", Key: "y"},
			{ID: "b", Label: "A very long label indeed", Color: "#ef4444"},
		},
	}
	out := Board(cfg, nil, "dark")

	require.Contains(t, out, "Home")
	require.Contains(t, out, "Yes")
	require.Contains(t, out, "[Y]")
	require.Contains(t, out, "A very long…")
	require.Equal(t, 2, strings.Count(out, "·"))
}

func TestBoardShowsLibraryImageName(t *testing.T) {
	cfg := board.Config{Title: "T", Rows: 1, Cols: 1, Pads: []board.Pad{{ID: "a", Label: "Star", Image: board.ImageRef{ID: "star"}}}}

	out := Board(cfg, pixel.Library{"star": {Name: "Star"}}, "dark")
	require.Contains(t, out, "▣ Star")
}

func TestImageHalfBlocks(t *testing.T) {
	var g pixel.Grid
	g[0][0] = "#ff0000"
	g[1][1] = "#00ff00"
	g[2][2] = "#0000ff"
	g[3][2] = "#ffffff"

	lines := strings.Split(Image(g), "\n")
	require.Len(t, lines, pixel.Size/2)
	require.Contains(t, lines[0], "▀")
	require.Contains(t, lines[0], "▄")
	require.Contains(t, lines[1], "▀")
	require.Equal(t, strings.Repeat(" ", pixel.Size), lines[7])
}

func TestWordsAndSentence(t *testing.T) {
	cat := vocab.CategoryView{ID: "feelings", Label: "Feelings", Icon: "😊"}
	out := Words(cat, []vocab.Word{{Display: "happy", Color: "#fde68a"}, {Display: "sad", Color: "#1e3a8a"}})
	require.Contains(t, out, "Feelings")
	require.Contains(t, out, "happy")
	require.Contains(t, out, "sad")

	require.Contains(t, Sentence(nil), "empty")
	out = Sentence([]sentence.Entry{{Display: "I"}, {Display: "want"}})
	require.Contains(t, out, "0:")
	require.Contains(t, out, "want")
}

func TestContrast(t *testing.T) {
	require.Equal(t, lipgloss.Color("#000000"), Contrast("#ffffff"))
	require.Equal(t, lipgloss.Color("#000000"), Contrast("#fde68a"))
	require.Equal(t, lipgloss.Color("#ffffff"), Contrast("#2a2a2a"))
	require.Equal(t, lipgloss.Color("#ffffff"), Contrast("#fff0"))
	require.Equal(t, lipgloss.Color("#000000"), Contrast("#fff"))
}
