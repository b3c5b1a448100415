package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// Health messages reported by CheckOllamaHealth
const (
	HealthRunning     = "running"
	HealthUnreachable = "cannot connect (is it running?)"
	HealthTimeout     = "not responding (timeout)"
)

func newOllamaClient(baseURL string, timeout time.Duration) (*api.Client, error) {
	baseURL = NormalizeHost(baseURL)
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url %q: %w", baseURL, err)
	}
	return api.NewClient(u, &http.Client{Timeout: timeout}), nil
}

// CheckOllamaHealth reports whether the local model server answers
func CheckOllamaHealth(ctx context.Context, baseURL string, timeout time.Duration) (bool, string) {
	client, err := newOllamaClient(baseURL, timeout)
	if err != nil {
		return false, err.Error()
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Heartbeat(ctx); err != nil {
		return false, describeHealthError(err)
	}
	return true, HealthRunning
}

func describeHealthError(err error) string {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("status %d", statusErr.StatusCode)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return HealthTimeout
	}
	return HealthUnreachable
}

// ModelPulled reports whether name (with or without a tag) is available locally
func ModelPulled(ctx context.Context, baseURL, name string) (bool, error) {
	client, err := newOllamaClient(baseURL, 10*time.Second)
	if err != nil {
		return false, err
	}

	list, err := client.List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list models: %w", err)
	}
	for _, m := range list.Models {
		if m.Name == name || strings.HasPrefix(m.Name, name+":") {
			return true, nil
		}
	}
	return false, nil
}

// OllamaVersion returns the server version string
func OllamaVersion(ctx context.Context, baseURL string) (string, error) {
	client, err := newOllamaClient(baseURL, 5*time.Second)
	if err != nil {
		return "", err
	}
	return client.Version(ctx)
}
