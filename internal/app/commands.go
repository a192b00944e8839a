package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rbright/aacboard/internal/audio"
	"github.com/rbright/aacboard/internal/doctor"
	"github.com/rbright/aacboard/internal/ipc"
	"github.com/rbright/aacboard/internal/version"
	"github.com/rbright/aacboard/internal/watch"
)

// annotationBare marks commands that run without config or logging.
const annotationBare = "bare"

func (e *env) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               version.Name,
		Short:             "AAC soundboard with a sentence builder and pixel image designer",
		Version:           version.String(),
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: e.setup,
	}
	root.SetVersionTemplate("{{.Version}}\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})
	root.PersistentFlags().StringVar(&e.configPath, "config", "", "config file path (default: $XDG_CONFIG_HOME/aacboard/config.jsonc)")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		e.serveCommand(),
		e.statusCommand(),
		e.pressCommand(),
		e.sayCommand(),
		e.forwardCommand(ipc.CommandStop, "Stop the utterance in flight"),
		e.forwardCommand(ipc.CommandReload, "Ask the owner to reload the board"),
		e.boardCommand(),
		e.vocabCommand(),
		e.sentenceCommand(),
		e.imageCommand(),
		e.settingsCommand(),
		e.adminCommand(),
		e.backupCommand(),
		e.devicesCommand(),
		e.doctorCommand(),
		e.versionCommand(),
	)
	return root
}

// group builds a parent command that only routes to subcommands.
func group(use, short string, children ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usageError{fmt.Errorf("%s requires a subcommand", cmd.Name())}
			}
			return usageError{fmt.Errorf("unknown %s subcommand %q", cmd.Name(), args[0])}
		},
	}
	cmd.AddCommand(children...)
	return cmd
}

func (e *env) serveCommand() *cobra.Command {
	var watchPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the owner process that holds playback resources",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			socketPath, err := ipc.RuntimeSocketPath()
			if err != nil {
				return err
			}

			listener, err := ipc.Listen(ctx, socketPath, ipc.DefaultListenOptions)
			if err != nil {
				return err
			}
			defer func() {
				_ = listener.Close()
				_ = os.Remove(socketPath)
			}()

			st, err := e.store(ctx)
			if err != nil {
				return err
			}
			owner, cleanup, err := e.newOwner(ctx, st, watchPath, e.notifier, false)
			if err != nil {
				return err
			}
			defer cleanup()

			var watcher *watch.Watcher
			if watchPath != "" {
				watcher, err = watch.New(watch.Config{Path: watchPath, Logger: e.log()})
				if err != nil {
					return err
				}
			}

			e.log().Info("owner start", "socket", socketPath, "watch", watchPath)
			e.printf("serving on %s\n", socketPath)
			if err := owner.Run(ctx, listener, watcher); err != nil {
				return fmt.Errorf("owner failed: %w", err)
			}
			e.log().Info("owner stop", "socket", socketPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&watchPath, "watch", "", "board file to serve and reload on change")
	return cmd
}

func (e *env) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the owner's speech state",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			socketPath, err := ipc.RuntimeSocketPath()
			if err != nil {
				e.println("idle")
				return nil
			}

			resp, handled, err := tryForward(cmd.Context(), socketPath, ipc.Request{Command: ipc.CommandStatus})
			if !handled {
				e.println("idle")
				return nil
			}
			if err != nil {
				return err
			}
			if resp.State == "" {
				resp.State = "idle"
			}
			e.println(resp.State)
			if resp.Message != "" {
				e.println(resp.Message)
			}
			return nil
		},
	}
}

func (e *env) pressCommand() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "press [pad-id]",
		Short: "Activate a pad by id or keyboard shortcut",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ipc.Request{Command: ipc.CommandPress, Args: args}
			switch {
			case key != "" && len(args) > 0:
				return usageError{errors.New("press takes a pad id or --key, not both")}
			case key != "":
				req = ipc.Request{Command: ipc.CommandKey, Args: []string{key}}
			case len(args) == 0:
				return usageError{errors.New("press requires a pad id or --key")}
			}

			resp, err := e.dispatch(cmd.Context(), req)
			if err != nil {
				return err
			}
			e.println(resp.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "keyboard shortcut bound to the pad")
	return cmd
}

func (e *env) sayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "say <text>...",
		Short: "Speak free text",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := e.dispatch(cmd.Context(), ipc.Request{Command: ipc.CommandSay, Args: args})
			if err != nil {
				return err
			}
			e.println(resp.Message)
			return nil
		},
	}
}

func (e *env) forwardCommand(command, short string) *cobra.Command {
	return &cobra.Command{
		Use:   command,
		Short: short,
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.forwardOrFail(cmd.Context(), command)
		},
	}
}

func (e *env) devicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio output devices",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			devices, err := audio.ListDevices(cmd.Context())
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				e.println("no audio devices found")
				return exitError{code: 1}
			}

			for _, device := range devices {
				defaultMark := " "
				if device.Default {
					defaultMark = "*"
				}
				availability := "yes"
				if !device.Available {
					availability = "no"
				}
				muted := "no"
				if device.Muted {
					muted = "yes"
				}
				e.printf(
					"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
					defaultMark,
					device.ID,
					device.Description,
					device.State,
					availability,
					muted,
				)
			}
			return nil
		},
	}
}

func (e *env) doctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run configuration and environment checks",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			report := doctor.Run(cmd.Context(), e.loaded)
			e.println(report.String())
			if !report.OK() {
				return exitError{code: 1}
			}
			return nil
		},
	}
}

func (e *env) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        usageArgs(cobra.NoArgs),
		Annotations: map[string]string{annotationBare: "true"},
		Run: func(*cobra.Command, []string) {
			e.println(version.String())
		},
	}
}

// readInput reads a file argument, or stdin for "-".
func (e *env) readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if strings.TrimSpace(path) == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// writeOutput writes data to path, or stdout when path is empty.
func (e *env) writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := e.runner.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
