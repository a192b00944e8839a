package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rbright/aacboard/internal/ipc"
	"github.com/rbright/aacboard/internal/settings"
)

func (e *env) settingsCommand() *cobra.Command {
	return group("settings", "Show or change preferences",
		e.settingsShowCommand(),
		e.settingsSetCommand(),
		e.settingsViewCommand(),
		e.settingsDismissTipsCommand(),
		e.settingsResetCommand(),
	)
}

func (e *env) settingsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored preferences",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := e.store(ctx)
			if err != nil {
				return err
			}
			prefs, err := settings.Load(ctx, st)
			if err != nil {
				return err
			}
			voice := prefs.Voice
			if voice == "" {
				voice = "(automatic)"
			}
			e.printf("volume   %s\n", settings.FormatVolume(prefs.Volume))
			e.printf("language %s (%s)\n", prefs.Language, settings.LanguageName(prefs.Language))
			e.printf("voice    %s\n", voice)
			e.printf("theme    %s\n", prefs.Theme)
			e.printf("view     %s\n", prefs.View)
			e.printf("tips     %s\n", map[bool]string{true: "dismissed", false: "shown"}[prefs.TipsDismissed])
			return nil
		},
	}
}

func (e *env) settingsSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "set <volume|language|voice|theme|view> <value>",
		Short:     "Change one preference",
		Args:      usageArgs(cobra.ExactArgs(2)),
		ValidArgs: []string{"volume", "language", "voice", "theme", "view"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name, value := args[0], args[1]

			if name == "volume" {
				if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
					return usageError{fmt.Errorf("invalid volume %q", value)}
				}
				// The owner applies volume to its engine immediately.
				resp, err := e.dispatch(ctx, ipc.Request{Command: ipc.CommandVolume, Args: []string{value}})
				if err != nil {
					return err
				}
				e.println(resp.Message)
				e.notifier.Status(ctx, e.messages.Saved)
				return nil
			}

			st, err := e.store(ctx)
			if err != nil {
				return err
			}
			switch name {
			case "language":
				code, err := settings.SetLanguage(ctx, st, value)
				if err != nil {
					return err
				}
				e.printf("language=%s (%s)\n", code, settings.LanguageName(code))
			case "voice":
				if err := settings.SetVoice(ctx, st, value); err != nil {
					return err
				}
				e.printf("voice=%s\n", value)
			case "theme":
				if err := settings.SetTheme(ctx, st, value); err != nil {
					return err
				}
				e.printf("theme=%s\n", value)
			case "view":
				view, err := settings.ParseView(value)
				if err != nil {
					return usageError{err}
				}
				if err := settings.SetView(ctx, st, view); err != nil {
					return err
				}
				e.printf("view=%s\n", view)
			default:
				return usageError{fmt.Errorf("unknown setting %q", name)}
			}
			e.saved(ctx, e.messages.Saved, false)
			return nil
		},
	}
}

func (e *env) settingsViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view [landing|soundboard|sentence-builder|toggle]",
		Short: "Show or switch the active view",
		Long: "Show or switch the active view.\n" +
			"toggle swaps between the soundboard and the sentence builder.",
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := e.store(ctx)
			if err != nil {
				return err
			}
			prefs, err := settings.Load(ctx, st)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				e.println(prefs.View)
				return nil
			}

			view := settings.ToggleView(prefs.View)
			if args[0] != "toggle" {
				if view, err = settings.ParseView(args[0]); err != nil {
					return usageError{err}
				}
			}
			if err := settings.SetView(ctx, st, view); err != nil {
				return err
			}
			e.printf("view=%s\n", view)
			return nil
		},
	}
}

func (e *env) settingsDismissTipsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss-tips",
		Short: "Stop showing view tips",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := e.store(ctx)
			if err != nil {
				return err
			}
			if err := settings.DismissTips(ctx, st); err != nil {
				return err
			}
			e.println("tips dismissed")
			return nil
		},
	}
}

func (e *env) settingsResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore default preferences and forget the saved board",
		Long: "Restore default preferences and forget the saved board.\n" +
			"Vocabulary customizations and saved images are kept.",
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := e.store(ctx)
			if err != nil {
				return err
			}
			prefs, err := settings.Reset(ctx, st)
			if err != nil {
				return err
			}
			e.printf("settings reset: volume=%s language=%s theme=%s\n",
				settings.FormatVolume(prefs.Volume), prefs.Language, prefs.Theme)
			e.saved(ctx, e.messages.SettingsReset, true)
			return nil
		},
	}
}
