package launcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ai_detective/src/casefile"
	"ai_detective/src/game"
	"ai_detective/src/logger"
	"ai_detective/src/settings"

	"github.com/bytedance/sonic"
)

// MarkerFile exists once a workspace is fully installed
const MarkerFile = ".detective-env"

// Workspace is the directory holding settings, data, saves and logs
type Workspace struct {
	Dir string
}

func (w Workspace) path(elem ...string) string {
	return filepath.Join(append([]string{w.Dir}, elem...)...)
}

func (w Workspace) MarkerPath() string      { return w.path(MarkerFile) }
func (w Workspace) SettingsPath() string    { return w.path(settings.FileName) }
func (w Workspace) DataDir() string         { return w.path("data") }
func (w Workspace) DatabasePath() string    { return w.path("data", casefile.DatabaseFile) }
func (w Workspace) CaseSummaryPath() string { return w.path("data", casefile.CaseSummaryFile) }
func (w Workspace) SavePath() string        { return w.path(game.SaveFile) }
func (w Workspace) AssetsDir() string       { return w.path("assets") }
func (w Workspace) LogsDir() string         { return w.path("logs") }
func (w Workspace) LogFile() string         { return w.path("logs", "detective.log") }

// Ready reports whether the marker file exists
func (w Workspace) Ready() bool {
	info, err := os.Stat(w.MarkerPath())
	return err == nil && !info.IsDir()
}

// Installer fills a freshly created workspace
type Installer func(ctx context.Context, w Workspace) error

type marker struct {
	CreatedAt string `json:"created_at"`
	Version   string `json:"version"`
}

// Prepare creates and installs the workspace unless its marker already exists.
// It reports whether an install happened.
func (w Workspace) Prepare(ctx context.Context, version string, install Installer) (bool, error) {
	if w.Ready() {
		logger.Debug().Str("dir", w.Dir).Msg("Workspace already prepared")
		return false, nil
	}

	logger.Info().Str("dir", w.Dir).Msg("Creating workspace")
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return false, Fail(ExitFailure, fmt.Errorf("failed to create workspace: %w", err))
	}

	if install != nil {
		if err := install(ctx, w); err != nil {
			return false, Fail(ExitFailure, fmt.Errorf("failed to install workspace: %w", err))
		}
	}

	data, err := sonic.Marshal(marker{CreatedAt: time.Now().UTC().Format(time.RFC3339), Version: version})
	if err != nil {
		return false, Fail(ExitFailure, fmt.Errorf("failed to marshal marker: %w", err))
	}
	if err := os.WriteFile(w.MarkerPath(), data, 0644); err != nil {
		return false, Fail(ExitFailure, fmt.Errorf("failed to write marker: %w", err))
	}

	logger.Info().Str("dir", w.Dir).Msg("Workspace ready")
	return true, nil
}

// DefaultInstaller writes the default settings and extracts the case data
func DefaultInstaller(_ context.Context, w Workspace) error {
	for _, dir := range []string{w.DataDir(), w.AssetsDir(), w.LogsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if err := settings.EnsureFile(w.SettingsPath()); err != nil {
		return err
	}

	db, err := casefile.RawDatabase()
	if err != nil {
		return err
	}
	if err := writeIfMissing(w.DatabasePath(), db); err != nil {
		return err
	}
	return writeIfMissing(w.CaseSummaryPath(), []byte(casefile.CaseSummary()))
}

// writeIfMissing keeps files the player already edited
func writeIfMissing(path string, data []byte) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
