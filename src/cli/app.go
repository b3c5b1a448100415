package cli

import (
	"context"
	"fmt"
	"os"

	"ai_detective/src"
	"ai_detective/src/casefile"
	"ai_detective/src/conversation"
	"ai_detective/src/engine"
	"ai_detective/src/game"
	"ai_detective/src/launcher"
	"ai_detective/src/llm"
	"ai_detective/src/logger"
	"ai_detective/src/model"
	"ai_detective/src/settings"
)

// app is the wired game stack for one run
type app struct {
	db       *casefile.Database
	engine   *engine.Engine
	session  *game.Session
	provider llm.ProviderConfig
	closers  []func() error
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			logger.Warn().Err(err).Msg("Error closing resource")
		}
	}
}

// loadDatabase prefers an explicit file, then the workspace copy, then the embedded one
func loadDatabase(cfg *src.Config, ws launcher.Workspace) (*casefile.Database, error) {
	if path := cfg.WorkspaceConfig.CharacterFile; path != "" {
		return casefile.Load(path)
	}
	if _, err := os.Stat(ws.DatabasePath()); err == nil {
		return casefile.Load(ws.DatabasePath())
	}
	logger.Debug().Str("path", ws.DatabasePath()).Msg("No workspace character database, using the embedded one")
	return casefile.Default()
}

// newRepository uses Redis when configured and reachable, memory otherwise
func newRepository(ctx context.Context, cfg model.ConversationConfig) (conversation.Repository, func() error) {
	if cfg.RedisURL == "" {
		return conversation.NewMemoryRepository(), nil
	}
	repo, err := conversation.NewRedisRepository(ctx, cfg.RedisURL, cfg.TTL)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, interrogation memory will not persist")
		return conversation.NewMemoryRepository(), nil
	}
	logger.Info().Msg("Interrogation memory stored in Redis")
	return repo, repo.Close
}

func buildApp(ctx context.Context, cfg *src.Config, ws launcher.Workspace) (*app, error) {
	a := &app{}

	db, err := loadDatabase(cfg, ws)
	if err != nil {
		return nil, err
	}
	a.db = db

	s := settings.Load(ws.SettingsPath())
	chatModel, provider, err := llm.NewFromSettings(ctx, s, cfg.LLMConfig.OllamaHost)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	a.provider = provider

	if provider.Provider == settings.ProviderOllama {
		if ok, status := llm.CheckOllamaHealth(ctx, provider.BaseURL, cfg.LLMConfig.HealthTimeout); !ok {
			logger.Warn().Str("host", provider.BaseURL).Str("status", status).Msg("Ollama is not ready, suspects may stammer")
		}
	}

	repo, closeRepo := newRepository(ctx, cfg.ConversationConfig)
	if closeRepo != nil {
		a.closers = append(a.closers, closeRepo)
	}
	conv := conversation.NewService(repo, conversation.NewWindowStrategy(cfg.ConversationConfig.MaxMessages))

	eng, err := engine.New(ctx, engine.Config{
		Model:        chatModel,
		Database:     db,
		Conversation: conv,
		SessionID:    cfg.ConversationConfig.SessionID,
		MaxAttempts:  cfg.LLMConfig.MaxAttempts,
		DebugPrompts: cfg.LLMConfig.DebugPrompts,
		DebugDir:     ws.Dir,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.engine = eng

	session, err := game.NewSession(ws.SavePath(), eng, db)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.session = session

	logger.Info().
		Str("provider", provider.Provider).
		Str("model", provider.Model).
		Str("workspace", ws.Dir).
		Msg("Game ready")
	return a, nil
}
