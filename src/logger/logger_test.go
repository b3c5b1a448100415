package logger

import (
	"os"
	"path/filepath"
	"testing"

	"ai_detective/src/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_InvalidLevel(t *testing.T) {
	err := InitLogger(model.LogConfig{Level: "shouting", Output: "stderr"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestInitLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "detective.log")

	err := InitLogger(model.LogConfig{
		Level:      "info",
		Format:     "json",
		Output:     "file",
		TimeFormat: "unix",
		FilePath:   path,
	})
	require.NoError(t, err)

	Info().Str("suspect", "nun").Msg("interrogation started")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "interrogation started")
	assert.Contains(t, string(data), `"suspect":"nun"`)
}

func TestInitLogger_ReopenClosesPreviousFile(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.log")
	second := filepath.Join(dir, "second.log")

	cfg := model.LogConfig{Level: "debug", Format: "json", Output: "file", FilePath: first}
	require.NoError(t, InitLogger(cfg))
	Component("launcher").Info().Msg("first run")

	cfg.FilePath = second
	require.NoError(t, InitLogger(cfg))
	Info().Msg("second run")
	require.NoError(t, Close())

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"launcher"`)
	assert.NotContains(t, string(data), "second run")

	data, err = os.ReadFile(second)
	require.NoError(t, err)
	assert.Contains(t, string(data), "second run")
}

func TestInitLogger_Discard(t *testing.T) {
	require.NoError(t, InitLogger(model.LogConfig{Level: "info", Output: "discard"}))
	Info().Msg("nowhere")
	assert.NoError(t, Close())
}
