package src

import (
	"ai_detective/src/model"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	ollamaenv "github.com/ollama/ollama/envconfig"
)

type Config struct {
	LogConfig          model.LogConfig          `envconfig:""`
	WorkspaceConfig    model.WorkspaceConfig    `envconfig:""`
	LLMConfig          model.LLMConfig          `envconfig:""`
	ConversationConfig model.ConversationConfig `envconfig:""`
}

// LoadConfig reads optional .env files and then the process environment.
// Variables already set in the environment win over the files.
func LoadConfig(envFiles ...string) (*Config, error) {
	// .env is optional; a missing file leaves the environment untouched
	_ = godotenv.Load(envFiles...)

	var config Config
	err := envconfig.Process("", &config)
	if err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %w", err)
	}

	// OLLAMA_HOST is shared with the ollama server, so it is read the way ollama reads it
	if os.Getenv("OLLAMA_HOST") != "" {
		config.LLMConfig.OllamaHost = ollamaenv.Host().String()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects values the game cannot run with
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.WorkspaceConfig.Dir) == "" {
		errs = append(errs, errors.New("DETECTIVE_HOME must not be empty"))
	}
	if c.LLMConfig.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("DETECTIVE_MAX_ATTEMPTS must be at least 1, got %d", c.LLMConfig.MaxAttempts))
	}
	if c.LLMConfig.HealthTimeout <= 0 {
		errs = append(errs, errors.New("OLLAMA_HEALTH_TIMEOUT must be positive"))
	}
	if c.ConversationConfig.MaxMessages < 2 {
		errs = append(errs, fmt.Errorf("CONVERSATION_MAX_MESSAGES must hold at least one exchange, got %d", c.ConversationConfig.MaxMessages))
	}
	if c.ConversationConfig.SessionID == "" {
		errs = append(errs, errors.New("DETECTIVE_SESSION must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
