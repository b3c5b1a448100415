package model

import "time"

// ----------------------------------------------------
// ================ Config ================
// LogConfig holds configuration for the zerolog logger
type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	Format     string `envconfig:"LOG_FORMAT" default:"console"`
	Output     string `envconfig:"LOG_OUTPUT" default:"stderr"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"rfc3339"`
	FilePath   string `envconfig:"LOG_FILE_PATH" default:"logs/detective.log"`
}

// WorkspaceConfig locates the bootstrapped game directory
type WorkspaceConfig struct {
	Dir           string `envconfig:"DETECTIVE_HOME" default:".detective"`
	LauncherFile  string `envconfig:"DETECTIVE_LAUNCHER_FILE" default:"detective.yaml"`
	CharacterFile string `envconfig:"DETECTIVE_CHARACTER_DB"`
}

// LLMConfig holds backend connection settings that do not live in ai_settings.json
type LLMConfig struct {
	OllamaHost    string        `envconfig:"OLLAMA_HOST" default:"http://localhost:11434"`
	HealthTimeout time.Duration `envconfig:"OLLAMA_HEALTH_TIMEOUT" default:"5s"`
	DebugPrompts  bool          `envconfig:"DETECTIVE_DEBUG_PROMPTS" default:"false"`
	MaxAttempts   int           `envconfig:"DETECTIVE_MAX_ATTEMPTS" default:"3"`
}

// ConversationConfig holds interrogation memory settings
type ConversationConfig struct {
	RedisURL    string        `envconfig:"REDIS_URL"`
	SessionID   string        `envconfig:"DETECTIVE_SESSION" default:"default"`
	TTL         time.Duration `envconfig:"CONVERSATION_TTL" default:"168h"`
	MaxMessages int           `envconfig:"CONVERSATION_MAX_MESSAGES" default:"20"`
}
