package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rbright/aacboard/internal/pixel"
	"github.com/rbright/aacboard/internal/render"
	"github.com/rbright/aacboard/internal/settings"
	"github.com/rbright/aacboard/internal/store"
)

func (e *env) imageCommand() *cobra.Command {
	return group("image", "Design and manage 16x16 pixel images",
		e.imageListCommand(),
		e.imageShowCommand(),
		e.imageSaveCommand(),
		e.imageDrawCommand(),
		e.imageDeleteCommand(),
		e.imageExportCommand(),
		e.imageImportCommand(),
	)
}

// storeImage adds grid to the library under name and persists it.
func (e *env) storeImage(ctx context.Context, st *store.Store, name string, grid pixel.Grid) (string, error) {
	if err := grid.Validate(); err != nil {
		return "", err
	}
	lib, err := e.library(ctx, st)
	if err != nil {
		return "", err
	}
	id, err := lib.Save(name, grid)
	if err != nil {
		return "", err
	}
	if err := pixel.SaveLibrary(ctx, st, lib); err != nil {
		return "", fmt.Errorf("save image library: %w", err)
	}
	e.log().Info("image saved", "id", id, "painted", grid.Painted())
	e.saved(ctx, e.messages.Saved, true)
	return id, nil
}

func (e *env) imageListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved images",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := e.store(ctx)
			if err != nil {
				return err
			}
			lib, err := e.library(ctx, st)
			if err != nil {
				return err
			}
			entries := lib.Entries()
			if len(entries) == 0 {
				e.println("no saved images")
				return nil
			}
			for _, entry := range entries {
				mark := " "
				if pixel.IsProtected(entry.ID) {
					mark = "*"
				}
				e.printf("%s %-16s %q %d px\n", mark, entry.ID, entry.Image.Name, entry.Image.Data.Painted())
			}
			return nil
		},
	}
}

func (e *env) imageShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Render a saved image in the terminal",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := e.store(ctx)
			if err != nil {
				return err
			}
			lib, err := e.library(ctx, st)
			if err != nil {
				return err
			}
			img, err := lib.Get(args[0])
			if err != nil {
				return err
			}
			e.println(img.Name)
			e.println(render.Image(img.Data))
			return nil
		},
	}
}

func (e *env) imageSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save <name> <file|->",
		Short: "Save a 16x16 JSON grid under name",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := e.readInput(cmd, args[1])
			if err != nil {
				return err
			}
			grid, err := pixel.ParseGrid(data)
			if err != nil {
				return err
			}
			st, err := e.store(ctx)
			if err != nil {
				return err
			}
			id, err := e.storeImage(ctx, st, args[0], grid)
			if err != nil {
				return err
			}
			e.printf("saved image %s\n", id)
			return nil
		},
	}
}

func (e *env) imageDrawCommand() *cobra.Command {
	var (
		from, color, mode string
		wipe              bool
	)
	cmd := &cobra.Command{
		Use:   "draw <name> <row,col>...",
		Short: "Paint one stroke through the given cells and save the result",
		Long: "Paint one stroke through the given cells and save the result.\n" +
			"In pick mode the first cell samples its color and the stroke continues in draw mode.",
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			points := make([][2]int, 0, len(args)-1)
			for _, raw := range args[1:] {
				point, err := parsePoint(raw)
				if err != nil {
					return usageError{err}
				}
				points = append(points, point)
			}

			ctx := cmd.Context()
			st, err := e.store(ctx)
			if err != nil {
				return err
			}
			prefs, err := settings.Load(ctx, st)
			if err != nil {
				return err
			}

			canvas := pixel.NewCanvas(pixel.DefaultColor(prefs.Theme))
			source := from
			if source == "" {
				source = pixel.Slug(args[0])
			}
			lib, err := e.library(ctx, st)
			if err != nil {
				return err
			}
			if img, err := lib.Get(source); err == nil {
				canvas.Load(img.Data)
			} else if from != "" {
				return err
			}

			if wipe {
				canvas.Clear()
			}
			if color != "" {
				canvas.SetColor(pixel.Cell(color))
			}
			switch m := pixel.Mode(mode); m {
			case pixel.ModeDraw, pixel.ModeErase, pixel.ModePick:
				canvas.SetMode(m)
			default:
				return usageError{fmt.Errorf("mode must be one of: %s, %s, %s", pixel.ModeDraw, pixel.ModeErase, pixel.ModePick)}
			}

			for _, p := range points {
				if canvas.Drawing() {
					canvas.PointerMove(p[0], p[1])
				} else {
					canvas.PointerDown(p[0], p[1])
				}
			}
			canvas.PointerUp()

			grid := canvas.Grid()
			id, err := e.storeImage(ctx, st, args[0], grid)
			if err != nil {
				return err
			}
			e.println(render.Image(grid))
			e.printf("saved image %s\n", id)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&from, "from", "", "start from this saved image instead of the one named")
	flags.StringVar(&color, "color", "", "brush color (#rrggbb); defaults to the theme color")
	flags.StringVar(&mode, "mode", string(pixel.ModeDraw), "draw, erase, or pick")
	flags.BoolVar(&wipe, "clear", false, "clear the canvas before painting")
	return cmd
}

func parsePoint(raw string) ([2]int, error) {
	rowText, colText, ok := strings.Cut(raw, ",")
	if !ok {
		return [2]int{}, fmt.Errorf("invalid cell %q: want row,col", raw)
	}
	row, err := strconv.Atoi(strings.TrimSpace(rowText))
	if err != nil {
		return [2]int{}, fmt.Errorf("invalid cell %q: want row,col", raw)
	}
	col, err := strconv.Atoi(strings.TrimSpace(colText))
	if err != nil {
		return [2]int{}, fmt.Errorf("invalid cell %q: want row,col", raw)
	}
	if row < 0 || row >= pixel.Size || col < 0 || col >= pixel.Size {
		return [2]int{}, fmt.Errorf("cell %q outside the %dx%d grid", raw, pixel.Size, pixel.Size)
	}
	return [2]int{row, col}, nil
}

func (e *env) imageDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved image",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := e.store(ctx)
			if err != nil {
				return err
			}
			lib, err := e.library(ctx, st)
			if err != nil {
				return err
			}
			if err := lib.Delete(args[0]); err != nil {
				return err
			}
			if err := pixel.SaveLibrary(ctx, st, lib); err != nil {
				return fmt.Errorf("save image library: %w", err)
			}
			e.printf("deleted image %s\n", args[0])
			e.saved(ctx, e.messages.Saved, true)
			return nil
		},
	}
}

func (e *env) imageExportCommand() *cobra.Command {
	var (
		out     string
		dataURL bool
	)
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a saved image as PNG",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" && !dataURL {
				return usageError{errors.New("export requires --out or --data-url")}
			}
			ctx := cmd.Context()
			st, err := e.store(ctx)
			if err != nil {
				return err
			}
			lib, err := e.library(ctx, st)
			if err != nil {
				return err
			}
			img, err := lib.Get(args[0])
			if err != nil {
				return err
			}

			if dataURL {
				url, err := img.Data.DataURL()
				if err != nil {
					return err
				}
				e.println(url)
				return nil
			}
			var buf bytes.Buffer
			if err := img.Data.EncodePNG(&buf); err != nil {
				return err
			}
			if err := e.writeOutput(out, buf.Bytes()); err != nil {
				return err
			}
			e.printf("exported to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "PNG file to write")
	cmd.Flags().BoolVar(&dataURL, "data-url", false, "print a base64 data URL instead")
	return cmd
}

func (e *env) imageImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import-png <name> <file>",
		Short: "Scale a PNG down to 16x16 and save it",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[1], err)
			}
			defer f.Close()

			grid, err := pixel.ImportPNG(f)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			st, err := e.store(ctx)
			if err != nil {
				return err
			}
			id, err := e.storeImage(ctx, st, args[0], grid)
			if err != nil {
				return err
			}
			e.println(render.Image(grid))
			e.printf("saved image %s\n", id)
			return nil
		},
	}
}
