// Package cli implements the detective command line: the launcher commands and
// the terminal game.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"ai_detective/src"
	"ai_detective/src/launcher"
	"ai_detective/src/logger"

	"github.com/spf13/cobra"
)

// Set at build time via ldflags
var (
	Version = "dev"
	Commit  = "none"
)

// rootOptions holds the global flags and the config they resolve to
type rootOptions struct {
	workspace string
	envFile   string
	verbose   bool

	cfg *src.Config
}

func (o *rootOptions) Workspace() launcher.Workspace {
	return launcher.Workspace{Dir: o.cfg.WorkspaceConfig.Dir}
}

// logToFile sends logs to the workspace log file unless --verbose keeps them on stderr
func (o *rootOptions) logToFile() error {
	if o.verbose {
		return nil
	}
	lc := o.cfg.LogConfig
	lc.Output = "file"
	lc.Format = "json"
	lc.FilePath = o.Workspace().LogFile()
	return logger.InitLogger(lc)
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "detective",
		Short: "AI Detective: interrogate six suspects and name the killer",
		Long: `detective bootstraps a local workspace, checks the model backend and runs
a terminal interrogation game where a language model plays every suspect.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit: %s)", Version, Commit),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.workspace, "workspace", "w", "", "Workspace directory (overrides DETECTIVE_HOME)")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Load environment variables from this file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging on stderr")

	rootCmd.AddCommand(
		newPlayCommand(opts),
		newLaunchCommand(opts),
		newSetupCommand(opts),
		newDoctorCommand(opts),
		newAssetsCommand(opts),
		newSettingsCommand(opts),
		newResetCommand(opts),
		newVersionCommand(),
	)

	return rootCmd
}

func (o *rootOptions) load() error {
	var envFiles []string
	if o.envFile != "" {
		envFiles = append(envFiles, o.envFile)
	}
	cfg, err := src.LoadConfig(envFiles...)
	if err != nil {
		return err
	}
	if o.workspace != "" {
		cfg.WorkspaceConfig.Dir = o.workspace
	}
	if o.verbose {
		cfg.LogConfig.Level = "debug"
	}
	o.cfg = cfg

	if err := logger.InitLogger(cfg.LogConfig); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// Execute runs the root command and returns the process exit code
func Execute(rootCmd *cobra.Command) int {
	defer logger.Close()

	err := rootCmd.Execute()
	if err == nil {
		return launcher.ExitOK
	}

	var exitErr *launcher.ExitError
	if !errors.As(err, &exitErr) || exitErr.Err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("Error: ")+strings.TrimSpace(err.Error()))
	}
	return launcher.ExitCode(err)
}
