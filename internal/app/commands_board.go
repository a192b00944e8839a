package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rbright/aacboard/internal/admin"
	"github.com/rbright/aacboard/internal/backup"
	"github.com/rbright/aacboard/internal/board"
	"github.com/rbright/aacboard/internal/order"
	"github.com/rbright/aacboard/internal/pixel"
	"github.com/rbright/aacboard/internal/render"
	"github.com/rbright/aacboard/internal/settings"
	"github.com/rbright/aacboard/internal/store"
)

func (e *env) boardCommand() *cobra.Command {
	return group("board", "Show, load, reset, or edit the soundboard",
		e.boardShowCommand(),
		e.boardLoadCommand(),
		e.boardResetCommand(),
		e.boardSetPadCommand(),
	)
}

func (e *env) boardShowCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Render the active board",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := e.store(ctx)
			if err != nil {
				return err
			}
			loaded, err := e.board(ctx, st)
			if err != nil {
				return err
			}

			if asJSON {
				data, err := board.Marshal(loaded.Config)
				if err != nil {
					return err
				}
				return e.writeOutput("", append(data, '\n'))
			}

			lib, err := e.library(ctx, st)
			if err != nil {
				return err
			}
			prefs, err := settings.Load(ctx, st)
			if err != nil {
				return err
			}
			e.println(render.Board(loaded.Config, lib, prefs.Theme))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the normalized board as JSON")
	return cmd
}

func (e *env) boardLoadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "load <url-or-path>",
		Short: "Fetch a board and make it the active board",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := e.store(ctx)
			if err != nil {
				return err
			}

			loaded, err := board.Load(ctx, args[0], e.loaded.Config.Board.FetchTimeout())
			if err != nil {
				return err
			}
			e.boardWarnings(loaded.Warnings)

			err = st.Update(ctx, func(tx *store.Tx) error {
				if err := board.Save(ctx, tx, loaded.Config); err != nil {
					return err
				}
				return board.SaveSource(ctx, tx, loaded.Source)
			})
			if err != nil {
				return fmt.Errorf("save board: %w", err)
			}

			e.printf("loaded %q from %s (%d pads)\n", loaded.Config.Title, loaded.Source, len(loaded.Config.Pads))
			e.saved(ctx, e.messages.BoardLoaded, true)
			return nil
		},
	}
}

func (e *env) boardResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget the saved board and its source",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := e.store(ctx)
			if err != nil {
				return err
			}
			if err := board.Reset(ctx, st); err != nil {
				return err
			}
			e.println("board reset")
			e.saved(ctx, e.messages.Saved, true)
			return nil
		},
	}
}

func (e *env) boardSetPadCommand() *cobra.Command {
	var (
		id, label, sound, color, key, image, rank string
	)
	cmd := &cobra.Command{
		Use:   "set-pad <index>",
		Short: "Create or edit the pad stored at index",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return usageError{fmt.Errorf("invalid pad index %q", args[0])}
			}

			ctx := cmd.Context()
			st, err := e.store(ctx)
			if err != nil {
				return err
			}
			loaded, err := e.board(ctx, st)
			if err != nil {
				return err
			}

			cfg := loaded.Config
			var pad board.Pad
			if index >= 0 && index < len(cfg.Pads) {
				pad = cfg.Pads[index]
			}
			flags := cmd.Flags()
			if flags.Changed("id") {
				if other := cfg.Index(id); other >= 0 && other != index {
					return fmt.Errorf("pad id %q is already used at index %d", id, other)
				}
				pad.ID = id
			}
			if flags.Changed("label") {
				pad.Label = label
			}
			if flags.Changed("sound") {
				pad.Sound = sound
			}
			if flags.Changed("color") {
				pad.Color = color
			}
			if flags.Changed("key") {
				pad.Key = key
			}
			if flags.Changed("image") {
				pad.Image = board.ImageRef{ID: image}
			}
			if flags.Changed("order") {
				pad.Order = order.Parse(rank)
			}

			cfg, err = cfg.SetPad(index, pad, board.DefaultColor)
			if err != nil {
				return err
			}
			if err := board.Save(ctx, st, cfg); err != nil {
				return err
			}

			e.printf("saved pad %s at %d\n", cfg.Pads[index].ID, index)
			e.saved(ctx, e.messages.Saved, true)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&id, "id", "", "pad id")
	flags.StringVar(&label, "label", "", "pad label")
	flags.StringVar(&sound, "sound", "", "audio URL/path, tts:text, or plain text to speak")
	flags.StringVar(&color, "color", "", "pad color (#rrggbb)")
	flags.StringVar(&key, "key", "", "keyboard shortcut")
	flags.StringVar(&image, "image", "", "image library id")
	flags.StringVar(&rank, "order", "", "sort order; empty clears it")
	return cmd
}

// library loads the image library. A corrupt library is reported and treated as empty.
func (e *env) library(ctx context.Context, st *store.Store) (pixel.Library, error) {
	lib, err := pixel.LoadLibrary(ctx, st)
	if errors.Is(err, store.ErrCorrupt) {
		e.warn(err.Error())
		return pixel.Library{}, nil
	}
	return lib, err
}

func (e *env) adminCommand() *cobra.Command {
	return group("admin", "Edit the whole stored state as JSON",
		e.adminDumpCommand(),
		e.adminApplyCommand(),
		e.adminRewriteCommand("generate-tts", "Point every labelled pad at tts:{label}", func(data []byte) ([]byte, string, error) {
			out, err := admin.GenerateTTS(data)
			return out, "", err
		}),
		e.adminRewriteCommand("add-pad", "Append a new pad", admin.AddPad),
	)
}

func (e *env) adminDumpCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the board, vocabulary overrides, and settings",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := e.store(ctx)
			if err != nil {
				return err
			}
			loaded, err := e.board(ctx, st)
			if err != nil {
				return err
			}
			data, err := admin.Dump(ctx, st, loaded.Config)
			if err != nil {
				return err
			}
			return e.writeOutput(out, append(data, '\n'))
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to file instead of stdout")
	return cmd
}

func (e *env) adminApplyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <file|->",
		Short: "Validate and store an edited document",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := e.readInput(cmd, args[0])
			if err != nil {
				return err
			}
			st, err := e.store(ctx)
			if err != nil {
				return err
			}
			applied, err := admin.Apply(ctx, st, data)
			if err != nil {
				return err
			}
			e.boardWarnings(applied.Warnings)

			scope := "board"
			if applied.Full {
				scope = "board, vocabulary, and settings"
			}
			e.printf("applied %s: %q (%d pads)\n", scope, applied.Config.Title, len(applied.Config.Pads))
			e.saved(ctx, e.messages.Saved, true)
			return nil
		},
	}
}

func (e *env) adminRewriteCommand(use, short string, rewrite func([]byte) ([]byte, string, error)) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   use + " <file|->",
		Short: short,
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := e.readInput(cmd, args[0])
			if err != nil {
				return err
			}
			out, id, err := rewrite(data)
			if err != nil {
				return err
			}
			if id != "" {
				e.log().Info("pad added", "id", id)
			}
			if write && args[0] != "-" {
				if err := e.writeOutput(args[0], out); err != nil {
					return err
				}
				if id != "" {
					e.printf("added pad %s\n", id)
				}
				return nil
			}
			return e.writeOutput("", append(out, '\n'))
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite the file in place")
	return cmd
}

func (e *env) backupCommand() *cobra.Command {
	return group("backup", "Export or restore everything",
		e.backupExportCommand(),
		e.backupImportCommand(),
	)
}

func (e *env) backupExportCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup of the board, vocabulary, settings, and images",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := e.store(ctx)
			if err != nil {
				return err
			}
			loaded, err := e.board(ctx, st)
			if err != nil {
				return err
			}
			data, err := backup.Export(ctx, st, loaded.Config, time.Now())
			if err != nil {
				return err
			}
			if err := e.writeOutput(out, append(data, '\n')); err != nil {
				return err
			}
			if out != "" {
				e.printf("exported to %s\n", out)
			}
			e.notifier.Status(ctx, e.messages.Exported)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to file instead of stdout")
	return cmd
}

func (e *env) backupImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Restore a backup or a bare board file",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := e.readInput(cmd, args[0])
			if err != nil {
				return err
			}
			st, err := e.store(ctx)
			if err != nil {
				return err
			}
			result, err := backup.Import(ctx, st, data)
			if err != nil {
				return err
			}
			e.boardWarnings(result.Warnings)
			e.printf("imported %s backup: %q (%d pads)\n", result.Kind, result.Config.Title, len(result.Config.Pads))
			e.saved(ctx, e.messages.Imported, true)
			return nil
		},
	}
}
