// Package llm builds chat models for the supported backends.
package llm

import (
	"context"
	"fmt"
	"time"

	"ai_detective/src/logger"
	"ai_detective/src/settings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/ollama/ollama/api"
)

// Local model defaults
const (
	DefaultOllamaHost = "http://localhost:11434"
	OllamaTemperature = 0.7
	OllamaNumCtx      = 4096
	OllamaNumPredict  = 150
	OllamaKeepAlive   = time.Hour
	OllamaTimeout     = 300 * time.Second
)

// ProviderConfig is everything needed to build one chat model
type ProviderConfig struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

// NewChatModel builds the chat model for cfg.Provider
func NewChatModel(ctx context.Context, cfg ProviderConfig) (model.BaseChatModel, error) {
	switch cfg.Provider {
	case settings.ProviderOllama, "":
		return newOllama(ctx, cfg)
	case settings.ProviderOpenAI:
		m, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating openai chat model: %w", err)
		}
		return m, nil
	case settings.ProviderDeepSeek:
		m, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating deepseek chat model: %w", err)
		}
		return m, nil
	case settings.ProviderArk:
		m, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating ark chat model: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

func newOllama(ctx context.Context, cfg ProviderConfig) (model.BaseChatModel, error) {
	baseURL := NormalizeHost(cfg.BaseURL)
	keepAlive := OllamaKeepAlive

	m, err := ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
		BaseURL:   baseURL,
		Model:     cfg.Model,
		Timeout:   OllamaTimeout,
		KeepAlive: &keepAlive,
		Options: &api.Options{
			Runner:      api.Runner{NumCtx: OllamaNumCtx},
			Temperature: OllamaTemperature,
			NumPredict:  OllamaNumPredict,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error creating ollama chat model: %w", err)
	}
	return m, nil
}

// SelectProvider picks the backend described by the player's settings.
// API mode needs complete settings, otherwise the local model is used.
func SelectProvider(s settings.Settings, ollamaHost string) ProviderConfig {
	local := ProviderConfig{
		Provider: settings.ProviderOllama,
		Model:    s.OllamaModel(),
		BaseURL:  NormalizeHost(ollamaHost),
	}
	if !s.IsAPIMode() {
		return local
	}
	if err := s.Validate(); err != nil {
		logger.Warn().Err(err).Msg("API settings incomplete, falling back to Ollama")
		return local
	}

	provider := settings.ProviderOpenAI
	switch s.Provider {
	case settings.ProviderDeepSeek, settings.ProviderArk:
		provider = s.Provider
	}

	apiCfg := s.APIConfig()
	return ProviderConfig{
		Provider: provider,
		Model:    apiCfg.Model,
		BaseURL:  apiCfg.BaseURL,
		APIKey:   apiCfg.APIKey,
	}
}

// NewFromSettings builds the configured model and falls back to Ollama when
// the API backend cannot be created.
func NewFromSettings(ctx context.Context, s settings.Settings, ollamaHost string) (model.BaseChatModel, ProviderConfig, error) {
	cfg := SelectProvider(s, ollamaHost)

	m, err := NewChatModel(ctx, cfg)
	if err == nil {
		logger.Info().Str("provider", cfg.Provider).Str("model", cfg.Model).Msg("Chat model ready")
		return m, cfg, nil
	}
	if cfg.Provider == settings.ProviderOllama {
		return nil, cfg, err
	}

	logger.Error().Err(err).Str("provider", cfg.Provider).Msg("Error initializing API client, falling back to Ollama")
	cfg = ProviderConfig{Provider: settings.ProviderOllama, Model: s.OllamaModel(), BaseURL: NormalizeHost(ollamaHost)}
	m, err = NewChatModel(ctx, cfg)
	if err != nil {
		return nil, cfg, err
	}
	return m, cfg, nil
}
