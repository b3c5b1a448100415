package launcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"ai_detective/src/settings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func preparedWorkspace(t *testing.T) Workspace {
	t.Helper()
	ws := Workspace{Dir: t.TempDir()}
	_, err := ws.Prepare(context.Background(), "test", DefaultInstaller)
	require.NoError(t, err)
	return ws
}

func checkByName(checks []Check, name string) (Check, bool) {
	for _, c := range checks {
		if c.Name == name {
			return c, true
		}
	}
	return Check{}, false
}

func TestDoctor_HealthyOllama(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[{"name":"gemma3n:latest"}]}`))
			return
		case "/api/version":
			_, _ = w.Write([]byte(`{"version":"0.11.6"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	checks := Doctor(context.Background(), DoctorOptions{
		Workspace:     preparedWorkspace(t),
		OllamaHost:    srv.URL,
		HealthTimeout: time.Second,
	})

	_, failed := Failed(checks)
	assert.False(t, failed)
	for _, name := range []string{"character database", "case summary", "settings", "ollama", "model"} {
		c, ok := checkByName(checks, name)
		require.True(t, ok, name)
		assert.Equal(t, CheckOK, c.Status, name)
	}

	c, _ := checkByName(checks, "ollama")
	assert.Equal(t, "running (version 0.11.6)", c.Detail)
}

func TestDoctor_OllamaDownIsOnlyAWarning(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	checks := Doctor(context.Background(), DoctorOptions{
		Workspace:     preparedWorkspace(t),
		OllamaHost:    url,
		HealthTimeout: time.Second,
	})

	_, failed := Failed(checks)
	assert.False(t, failed)
	c, ok := checkByName(checks, "ollama")
	require.True(t, ok)
	assert.Equal(t, CheckWarn, c.Status)
}

func TestDoctor_Failures(t *testing.T) {
	ws := preparedWorkspace(t)
	require.NoError(t, settings.Update(ws.SettingsPath(), "isApiAvailable", true))

	checks := Doctor(context.Background(), DoctorOptions{Workspace: ws})
	failed, ok := Failed(checks)
	require.True(t, ok)
	assert.Equal(t, "settings", failed.Name)
	_, ok = checkByName(checks, "ollama")
	assert.False(t, ok)

	require.NoError(t, os.Remove(ws.DatabasePath()))
	checks = Doctor(context.Background(), DoctorOptions{Workspace: ws})
	failed, ok = Failed(checks)
	require.True(t, ok)
	assert.Equal(t, "character database", failed.Name)
}

func TestGenerateAssets(t *testing.T) {
	ws := preparedWorkspace(t)
	run := &Run{Workspace: ws, Reporter: &recordingReporter{}}

	require.NoError(t, AssetsStep{}.Run(context.Background(), run))

	data, err := os.ReadFile(ws.AssetsDir() + "/portraits.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"folder": "nun"`)

	prompt, err := os.ReadFile(ws.AssetsDir() + "/prompts/suspect_1.txt")
	require.NoError(t, err)
	assert.Contains(t, string(prompt), "[YOUR CHARACTER: Garon")
}
