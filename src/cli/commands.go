package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"ai_detective/src/launcher"
	"ai_detective/src/logger"
	"ai_detective/src/settings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

// startGame is the launch step entry point
func (o *rootOptions) startGame(t *Terminal) func(ctx context.Context, run *launcher.Run) error {
	return func(ctx context.Context, run *launcher.Run) error {
		if err := o.logToFile(); err != nil {
			return err
		}
		a, err := buildApp(ctx, o.cfg, run.Workspace)
		if err != nil {
			return err
		}
		defer a.Close()

		if !run.Hidden {
			t.Dim(fmt.Sprintf("Backend: %s (%s)", a.provider.Provider, a.provider.Model))
		}
		return PlayLoop(ctx, t, a.session, a.db)
	}
}

func newPlayCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Start the game, preparing the workspace on first run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()

			ws := o.Workspace()
			if _, err := ws.Prepare(ctx, Version, launcher.DefaultInstaller); err != nil {
				return err
			}

			t := NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
			t.Banner(Version)
			return o.startGame(t)(ctx, &launcher.Run{Workspace: ws, Version: Version})
		},
	}
}

func (o *rootOptions) newRun(t *Terminal, hidden bool) (*launcher.Run, error) {
	fileCfg, err := launcher.LoadFileConfig(o.cfg.WorkspaceConfig.LauncherFile)
	if err != nil {
		return nil, launcher.Fail(launcher.ExitFailure, err)
	}

	var reporter launcher.Reporter = launcher.LogReporter{}
	if !hidden {
		reporter = t.Reporter()
	}
	return &launcher.Run{
		Workspace:     o.Workspace(),
		Config:        fileCfg,
		Version:       Version,
		Hidden:        hidden,
		OllamaHost:    o.cfg.LLMConfig.OllamaHost,
		HealthTimeout: o.cfg.LLMConfig.HealthTimeout,
		Reporter:      reporter,
	}, nil
}

func newLaunchCommand(o *rootOptions) *cobra.Command {
	var hidden bool

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Check requirements, bootstrap, verify and start the game",
		Long: `launch runs the full launcher: required tools, workspace bootstrap, optional
toolchain probes, assets, verification, hook commands and finally the game.
With --hidden it skips straight to the game, logs to the workspace log file and
prints no launcher output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()

			if hidden {
				if err := o.logToFile(); err != nil {
					return err
				}
			}

			t := NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
			run, err := o.newRun(t, hidden)
			if err != nil {
				return err
			}

			pipeline := launcher.StandardPipeline(o.startGame(t))
			if hidden {
				pipeline = launcher.HiddenPipeline(run.Workspace, o.startGame(t))
			} else {
				t.Banner(Version)
			}
			return pipeline.Execute(ctx, run)
		},
	}

	cmd.Flags().BoolVar(&hidden, "hidden", false, "Windowless launch: no banner, logs to file")
	return cmd
}

func newSetupCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Run the launcher without starting the game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()

			t := NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
			run, err := o.newRun(t, false)
			if err != nil {
				return err
			}
			if err := launcher.StandardPipeline(nil).Execute(ctx, run); err != nil {
				return err
			}
			t.Dim("Setup complete. Run `detective play` to begin.")
			return nil
		},
	}
}

func newDoctorCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check data files, settings and the model backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			checks := launcher.Doctor(cmd.Context(), launcher.DoctorOptions{
				Workspace:     o.Workspace(),
				OllamaHost:    o.cfg.LLMConfig.OllamaHost,
				HealthTimeout: o.cfg.LLMConfig.HealthTimeout,
			})

			t := NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
			t.Checks(checks)
			if c, failed := launcher.Failed(checks); failed {
				return launcher.Fail(launcher.ExitFailure, fmt.Errorf("%s: %s", c.Name, c.Detail))
			}
			return nil
		},
	}
}

func newAssetsCommand(o *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Write persona prompts, the case summary and the portrait manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws := o.Workspace()
			if out == "" {
				out = ws.AssetsDir()
			}
			db, err := loadDatabase(o.cfg, ws)
			if err != nil {
				return err
			}
			files, err := launcher.GenerateAssets(out, db)
			if err != nil {
				return err
			}

			t := NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
			for _, f := range files {
				t.Dim(f)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output directory (default <workspace>/assets)")
	return cmd
}

func newSettingsCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the AI backend settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print " + settings.FileName,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := settings.Load(o.Workspace().SettingsPath())
			if s.OpenAIAPIKey != "" {
				s.OpenAIAPIKey = "********"
			}
			data, err := sonic.ConfigStd.MarshalIndent(s, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal settings: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := o.Workspace().SettingsPath()
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return fmt.Errorf("failed to create workspace: %w", err)
			}
			if err := settings.Update(path, args[0], parseValue(args[1])); err != nil {
				return err
			}
			if err := settings.Load(path).Validate(); err != nil {
				NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout()).Warn(err.Error())
			}
			logger.Info().Str("key", args[0]).Msg("Setting updated")
			return nil
		},
	})

	return cmd
}

// parseValue keeps booleans typed so isApiAvailable round-trips
func parseValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

func newResetCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the saved game and every interrogation memory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ws := o.Workspace()

			if err := os.Remove(ws.SavePath()); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to delete save: %w", err)
			}

			repo, closeRepo := newRepository(ctx, o.cfg.ConversationConfig)
			if closeRepo != nil {
				defer closeRepo()
			}
			if err := repo.DeleteAll(ctx, o.cfg.ConversationConfig.SessionID); err != nil {
				return fmt.Errorf("failed to reset interrogations: %w", err)
			}

			NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout()).Dim("Save and interrogation memory cleared.")
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "detective %s (commit: %s)\n", Version, Commit)
			return nil
		},
	}
}
