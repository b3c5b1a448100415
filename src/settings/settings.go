// Package settings persists the player's AI backend choice in ai_settings.json.
package settings

import (
	"errors"
	"fmt"
	"os"

	"ai_detective/src/logger"

	"github.com/bytedance/sonic"
)

const (
	FileName     = "ai_settings.json"
	DefaultModel = "gemma3n"

	ProviderOllama   = "ollama"
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderArk      = "ark"
)

var ErrIncomplete = errors.New("api settings incomplete")

// Settings mirrors ai_settings.json. Field names keep the on-disk keys.
type Settings struct {
	Model          string `json:"model"`
	IsAPIAvailable bool   `json:"isApiAvailable"`
	OpenAIBaseURL  string `json:"openai_base_url"`
	OpenAIAPIKey   string `json:"openai_api_key"`
	OpenAIModel    string `json:"openai_model"`
	Provider       string `json:"provider,omitempty"`
}

// APIConfig is the connection triple used in API mode
type APIConfig struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
}

func Defaults() Settings {
	return Settings{
		Model:    DefaultModel,
		Provider: ProviderOllama,
	}
}

// Load reads settings from path, filling any missing key with its default.
// A missing or unreadable file yields the defaults.
func Load(path string) Settings {
	s := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Error().Err(err).Str("path", path).Msg("Error loading settings")
		}
		return s
	}

	// Unmarshal over the defaults so absent keys keep their default value
	if err := sonic.Unmarshal(data, &s); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Error loading settings")
		return Defaults()
	}
	if s.Model == "" {
		s.Model = DefaultModel
	}
	return s
}

// Save writes settings as indented JSON
func Save(path string, s Settings) error {
	data, err := sonic.ConfigStd.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// EnsureFile writes the defaults when path does not exist yet
func EnsureFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat settings: %w", err)
	}
	return Save(path, Defaults())
}

// Get returns a single setting by its on-disk key
func Get(path, key string) (any, bool) {
	m, err := toMap(Load(path))
	if err != nil {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

// Update sets one key and saves the file
func Update(path, key string, value any) error {
	m, err := toMap(Load(path))
	if err != nil {
		return err
	}
	if _, ok := m[key]; !ok && key != "provider" {
		return fmt.Errorf("unknown setting %q", key)
	}
	m[key] = value

	data, err := sonic.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	s := Defaults()
	if err := sonic.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid value for %q: %w", key, err)
	}
	return Save(path, s)
}

func (s Settings) IsAPIMode() bool {
	return s.IsAPIAvailable
}

func (s Settings) APIConfig() APIConfig {
	return APIConfig{
		BaseURL: s.OpenAIBaseURL,
		APIKey:  s.OpenAIAPIKey,
		Model:   s.OpenAIModel,
	}
}

func (s Settings) OllamaModel() string {
	if s.Model == "" {
		return DefaultModel
	}
	return s.Model
}

// Validate checks that API mode has everything it needs to connect
func (s Settings) Validate() error {
	if !s.IsAPIAvailable {
		return nil
	}
	switch {
	case s.OpenAIBaseURL == "":
		return fmt.Errorf("%w: base url is empty", ErrIncomplete)
	case s.OpenAIAPIKey == "":
		return fmt.Errorf("%w: api key is empty", ErrIncomplete)
	case s.OpenAIModel == "":
		return fmt.Errorf("%w: model name is empty", ErrIncomplete)
	}
	return nil
}

func toMap(s Settings) (map[string]any, error) {
	data, err := sonic.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}
	m := map[string]any{}
	if err := sonic.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return m, nil
}
