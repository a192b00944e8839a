package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rbright/aacboard/internal/ipc"
	"github.com/rbright/aacboard/internal/order"
	"github.com/rbright/aacboard/internal/render"
	"github.com/rbright/aacboard/internal/sentence"
	"github.com/rbright/aacboard/internal/store"
	"github.com/rbright/aacboard/internal/vocab"
)

const neutralChip = "#374151"

func (e *env) vocabCommand() *cobra.Command {
	return group("vocab", "Browse and customize the sentence-builder vocabulary",
		e.vocabListCommand(),
		e.vocabAddCommand(),
		e.vocabEditCommand(),
		e.vocabCategoryCommand(),
	)
}

// vocabState loads the vocabulary overrides and reports corrupt keys.
func (e *env) vocabState(ctx context.Context) (*store.Store, vocab.State, error) {
	st, err := e.store(ctx)
	if err != nil {
		return nil, vocab.State{}, err
	}
	state, warnings, err := vocab.Load(ctx, st)
	if err != nil {
		return nil, vocab.State{}, err
	}
	for _, w := range warnings {
		e.warn(w)
	}
	return st, state, nil
}

func (e *env) saveVocab(ctx context.Context, st *store.Store, state vocab.State) error {
	err := st.Update(ctx, func(tx *store.Tx) error {
		return vocab.Save(ctx, tx, state)
	})
	if err != nil {
		return fmt.Errorf("save vocabulary: %w", err)
	}
	e.saved(ctx, e.messages.Saved, false)
	return nil
}

func (e *env) vocabListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [category]",
		Short: "List categories, or the words of one category",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, state, err := e.vocabState(cmd.Context())
			if err != nil {
				return err
			}

			if len(args) == 0 {
				for _, cat := range state.Tabs() {
					color := cat.Color
					if color == "" {
						color = neutralChip
					}
					words, _ := state.Merged(cat.ID)
					e.printf("%-12s %s %d words\n", cat.ID, render.Chip(cat.Icon+" "+cat.Label, color), len(words))
				}
				return nil
			}

			var view vocab.CategoryView
			for _, cat := range state.Tabs() {
				if cat.ID == args[0] {
					view = cat
				}
			}
			words, err := state.Sorted(args[0])
			if err != nil {
				return err
			}
			e.println(render.Words(view, words))
			for _, w := range words {
				marker := " "
				if w.Custom {
					marker = "+"
				}
				line := fmt.Sprintf("%s%3d  %s", marker, w.Index, w.Display)
				if w.TTS != w.Display {
					line += fmt.Sprintf("  (says %q)", w.TTS)
				}
				e.println(line)
			}
			return nil
		},
	}
}

type wordFlags struct {
	label, sound, color, rank string
}

func (f *wordFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.sound, "sound", "", "tts:text to speak instead of the label")
	flags.StringVar(&f.color, "color", "", "chip color (#rrggbb)")
	flags.StringVar(&f.rank, "order", "", "sort order; empty clears it")
}

func (f *wordFlags) apply(cmd *cobra.Command, edit *vocab.WordEdit) {
	flags := cmd.Flags()
	if flags.Changed("label") {
		edit.Label = f.label
	}
	if flags.Changed("sound") {
		edit.Sound = f.sound
	}
	if flags.Changed("color") {
		edit.Color = f.color
	}
	if flags.Changed("order") {
		edit.Order = order.Parse(f.rank)
	}
}

func (e *env) vocabAddCommand() *cobra.Command {
	var f wordFlags
	cmd := &cobra.Command{
		Use:   "add <category> <label>",
		Short: "Add a custom word to a category",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, state, err := e.vocabState(ctx)
			if err != nil {
				return err
			}

			edit := vocab.WordEdit{Category: args[0], New: true, Label: args[1]}
			f.apply(cmd, &edit)
			key, err := state.SaveWord(edit)
			if err != nil {
				return err
			}
			if err := e.saveVocab(ctx, st, state); err != nil {
				return err
			}
			e.printf("added %q as %s\n", args[1], key)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (e *env) vocabEditCommand() *cobra.Command {
	var (
		f      wordFlags
		moveTo string
	)
	cmd := &cobra.Command{
		Use:   "edit <category> <index>",
		Short: "Edit a word, optionally moving it to another category",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return usageError{fmt.Errorf("invalid word index %q", args[1])}
			}

			ctx := cmd.Context()
			st, state, err := e.vocabState(ctx)
			if err != nil {
				return err
			}

			edit, err := state.WordDefaults(args[0], index)
			if err != nil {
				return err
			}
			f.apply(cmd, &edit)
			if moveTo != "" {
				edit.Category = moveTo
			}

			key, err := state.SaveWord(edit)
			if err != nil {
				return err
			}
			if err := e.saveVocab(ctx, st, state); err != nil {
				return err
			}
			e.printf("saved %s\n", key)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.label, "label", "", "display text")
	cmd.Flags().StringVar(&moveTo, "move-to", "", "category to move the word to")
	return cmd
}

func (e *env) vocabCategoryCommand() *cobra.Command {
	var label, sound, color, icon, rank string
	cmd := &cobra.Command{
		Use:   "category <id>",
		Short: "Customize a category tab",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, state, err := e.vocabState(ctx)
			if err != nil {
				return err
			}

			override := state.Categories[args[0]]
			flags := cmd.Flags()
			if flags.Changed("label") {
				override.Label = label
			}
			if flags.Changed("sound") {
				override.Sound = sound
			}
			if flags.Changed("color") {
				override.Color = color
			}
			if flags.Changed("icon") {
				override.Icon = icon
			}
			if flags.Changed("order") {
				override.Order = order.Parse(rank)
			}
			if err := state.SaveCategory(args[0], override); err != nil {
				return err
			}
			if err := e.saveVocab(ctx, st, state); err != nil {
				return err
			}
			e.printf("saved category %s\n", args[0])
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&label, "label", "", "tab label")
	flags.StringVar(&sound, "sound", "", "text spoken when the tab is opened")
	flags.StringVar(&color, "color", "", "tab color (#rrggbb)")
	flags.StringVar(&icon, "icon", "", "tab icon")
	flags.StringVar(&rank, "order", "", "sort order; empty clears it")
	return cmd
}

func (e *env) sentenceCommand() *cobra.Command {
	return group("sentence", "Build and speak a sentence from vocabulary words",
		e.sentenceShowCommand(),
		e.sentenceAddCommand(),
		e.sentenceEditCommand("back", "Remove the last word", usageArgs(cobra.NoArgs), func(b *sentence.Builder, _ []string) error {
			b.Backspace()
			return nil
		}),
		e.sentenceEditCommand("remove <position>", "Remove the word at position", usageArgs(cobra.ExactArgs(1)), func(b *sentence.Builder, args []string) error {
			pos, err := strconv.Atoi(args[0])
			if err != nil {
				return usageError{fmt.Errorf("invalid position %q", args[0])}
			}
			return b.Remove(pos)
		}),
		e.sentenceEditCommand("clear", "Remove every word", usageArgs(cobra.NoArgs), func(b *sentence.Builder, _ []string) error {
			b.Clear()
			return nil
		}),
		e.sentenceSpeakCommand(),
	)
}

func (e *env) sentenceShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the sentence strip",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := e.store(ctx)
			if err != nil {
				return err
			}
			b, err := sentence.Load(ctx, st)
			if err != nil {
				return err
			}
			e.printSentence(b)
			return nil
		},
	}
}

func (e *env) printSentence(b *sentence.Builder) {
	e.println(render.Sentence(b.Entries()))
	if b.Len() > 0 {
		e.println(b.Text())
	}
}

func (e *env) sentenceAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <category> <index>",
		Short: "Append a vocabulary word",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return usageError{fmt.Errorf("invalid word index %q", args[1])}
			}
			ctx := cmd.Context()
			st, state, err := e.vocabState(ctx)
			if err != nil {
				return err
			}
			word, err := state.Word(args[0], index)
			if err != nil {
				return err
			}

			b, err := sentence.Load(ctx, st)
			if err != nil {
				return err
			}
			b.Add(sentence.FromWord(word))
			if err := b.Save(ctx, st); err != nil {
				return err
			}
			e.printSentence(b)
			return nil
		},
	}
}

func (e *env) sentenceEditCommand(use, short string, args cobra.PositionalArgs, edit func(*sentence.Builder, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := e.store(ctx)
			if err != nil {
				return err
			}
			b, err := sentence.Load(ctx, st)
			if err != nil {
				return err
			}
			if err := edit(b, args); err != nil {
				return err
			}
			if err := b.Save(ctx, st); err != nil {
				return err
			}
			e.printSentence(b)
			return nil
		},
	}
}

func (e *env) sentenceSpeakCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "speak",
		Short: "Speak the sentence strip",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := e.dispatch(cmd.Context(), ipc.Request{Command: ipc.CommandSpeakSentence})
			if err != nil {
				return err
			}
			e.println(resp.Message)
			return nil
		},
	}
}
