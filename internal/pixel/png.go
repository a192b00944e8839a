package pixel

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strconv"

	"golang.org/x/image/draw"
)

// RGBA renders the grid as a 16x16 image with transparent background.
func (g Grid) RGBA() (*image.NRGBA, error) {
	img := image.NewNRGBA(image.Rect(0, 0, Size, Size))
	for r := range g {
		for c, cell := range g[r] {
			if cell == "" {
				continue
			}
			col, err := parseHex(string(cell))
			if err != nil {
				return nil, fmt.Errorf("pixel %d,%d: %w", r, c, err)
			}
			img.SetNRGBA(c, r, col)
		}
	}
	return img, nil
}

// EncodePNG writes the grid as a PNG.
func (g Grid) EncodePNG(w io.Writer) error {
	img, err := g.RGBA()
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// DataURL returns the grid as a base64 PNG data URL.
func (g Grid) DataURL() (string, error) {
	var buf bytes.Buffer
	if err := g.EncodePNG(&buf); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ImportPNG scales a PNG of any size to 16x16 with nearest-neighbour sampling.
// Fully transparent pixels become transparent cells.
func ImportPNG(r io.Reader) (Grid, error) {
	src, err := png.Decode(r)
	if err != nil {
		return Grid{}, fmt.Errorf("decode png: %w", err)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, Size, Size))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var g Grid
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			px := dst.NRGBAAt(x, y)
			if px.A == 0 {
				continue
			}
			g[y][x] = Cell(fmt.Sprintf("#%02X%02X%02X", px.R, px.G, px.B))
		}
	}
	return g, nil
}

func parseHex(raw string) (color.NRGBA, error) {
	if !hexColor.MatchString(raw) {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", raw)
	}
	hex := raw[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", raw, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
