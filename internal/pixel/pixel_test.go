package pixel

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rbright/aacboard/internal/store"
	"github.com/stretchr/testify/require"
)

func gridJSON(fill string) string {
	row := "[" + strings.TrimSuffix(strings.Repeat(fill+",", Size), ",") + "]"
	return "[" + strings.TrimSuffix(strings.Repeat(row+",", Size), ",") + "]"
}

func TestParseGridConvertsLegacyCells(t *testing.T) {
	g, err := ParseGrid([]byte(gridJSON("1")))
	require.NoError(t, err)
	require.Equal(t, Cell(Black), g[0][0])
	require.Equal(t, Size*Size, g.Painted())

	g, err = ParseGrid([]byte(gridJSON("0")))
	require.NoError(t, err)
	require.Zero(t, g.Painted())

	g, err = ParseGrid([]byte(gridJSON(`"#ff0000"`)))
	require.NoError(t, err)
	require.Equal(t, Cell("#ff0000"), g[15][15])
	require.NoError(t, g.Validate())
}

func TestParseGridRejectsWrongShape(t *testing.T) {
	_, err := ParseGrid([]byte(`[[null]]`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "16x16")

	rows := make([]string, Size)
	for i := range rows {
		rows[i] = "[null]"
	}
	_, err = ParseGrid([]byte("[" + strings.Join(rows, ",") + "]"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "exactly 16 elements")

	_, err = ParseGrid([]byte(`not json`))
	require.Error(t, err)
}

func TestGridMarshalWritesNullForTransparent(t *testing.T) {
	var g Grid
	g[0][1] = "#00ff00"
	data, err := json.Marshal(g)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), `[[null,"#00ff00",null`))

	back, err := ParseGrid(data)
	require.NoError(t, err)
	require.Equal(t, g, back)
}

func TestCanvasStrokeAndModes(t *testing.T) {
	c := NewCanvas(DefaultColor("dark"))
	require.Equal(t, Cell("#ffffff"), c.Color())

	c.PointerMove(0, 0)
	require.Zero(t, c.Grid().Painted(), "move without press must not paint")

	c.PointerDown(0, 0)
	c.PointerMove(0, 1)
	c.PointerUp()
	c.PointerMove(0, 2)
	g := c.Grid()
	require.Equal(t, Cell("#ffffff"), g[0][0])
	require.Equal(t, Cell("#ffffff"), g[0][1])
	require.Equal(t, Cell(""), g[0][2])

	c.SetMode(ModeErase)
	c.PointerDown(0, 0)
	c.PointerUp()
	require.Equal(t, Cell(""), c.Grid()[0][0])

	c.SetMode(ModePick)
	c.PointerDown(5, 5)
	require.Equal(t, ModePick, c.Mode(), "transparent pick keeps pick mode")
	c.PointerDown(0, 1)
	require.Equal(t, ModeDraw, c.Mode())
	require.Equal(t, Cell("#ffffff"), c.Color())

	c.PointerDown(99, 99)
	require.False(t, c.Drawing())

	c.Clear()
	require.Zero(t, c.Grid().Painted())
	require.Equal(t, Cell(Black), DefaultColor("light"))
}

func TestLibrarySaveSlugAndProtectedDelete(t *testing.T) {
	lib := Library{}
	id, err := lib.Save("  My Cat! ", Grid{})
	require.NoError(t, err)
	require.Equal(t, "--my-cat--", id)
	require.Equal(t, "My Cat!", lib[id].Name)

	_, err = lib.Save("   ", Grid{})
	require.ErrorIs(t, err, ErrEmptyName)

	lib["heart"] = Image{Name: "Heart"}
	require.ErrorIs(t, lib.Delete("heart"), ErrProtected)
	require.ErrorIs(t, lib.Delete("missing"), ErrNotFound)
	require.NoError(t, lib.Delete(id))

	entries := lib.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "heart", entries[0].ID)
}

func TestLibraryPersistence(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(ctx, filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer s.Close()

	lib, err := LoadLibrary(ctx, s)
	require.NoError(t, err)
	require.Empty(t, lib)

	var g Grid
	g[3][4] = "#123456"
	_, err = lib.Save("Dot", g)
	require.NoError(t, err)
	require.NoError(t, SaveLibrary(ctx, s, lib))

	loaded, err := LoadLibrary(ctx, s)
	require.NoError(t, err)
	require.Equal(t, lib, loaded)

	require.NoError(t, s.Set(ctx, LibraryKey, `{"legacy":{"name":"Legacy","data":`+gridJSON("1")+`}}`))
	loaded, err = LoadLibrary(ctx, s)
	require.NoError(t, err)
	require.Equal(t, Cell(Black), loaded["legacy"].Data[0][0])
}

func TestDataURLRendersPNG(t *testing.T) {
	var g Grid
	g[1][2] = "#ff0000"
	url, err := g.DataURL()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/png;base64,"))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, Size, Size), img.Bounds())

	r, _, _, a := img.At(2, 1).RGBA()
	require.Equal(t, uint32(0xffff), r)
	require.Equal(t, uint32(0xffff), a)
	_, _, _, a = img.At(0, 0).RGBA()
	require.Zero(t, a)

	g[0][0] = "red"
	_, err = g.DataURL()
	require.Error(t, err)
}

func TestImportPNGScalesNearestNeighbour(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 16; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	g, err := ImportPNG(&buf)
	require.NoError(t, err)
	require.Equal(t, Cell("#123456"), g[0][0])
	require.Equal(t, Cell("#123456"), g[15][7])
	require.Equal(t, Cell(""), g[0][8])
	require.Equal(t, Size*Size/2, g.Painted())

	_, err = ImportPNG(strings.NewReader("nope"))
	require.Error(t, err)
}
