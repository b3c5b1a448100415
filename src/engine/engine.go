// Package engine answers the detective's questions in character.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai_detective/src/casefile"
	"ai_detective/src/conversation"
	"ai_detective/src/llm/narration"
	"ai_detective/src/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Interrogation call limits
const (
	ResponseMaxTokens   = 200
	ResponseTemperature = float32(0.7)
	DefaultMaxAttempts  = 3
	DefaultRetryDelay   = time.Second
)

// Config wires an Engine together
type Config struct {
	Model        model.BaseChatModel
	Database     *casefile.Database
	Conversation *conversation.Service
	SessionID    string

	// MaxAttempts counts the first call. RetryDelay doubles after every failure.
	MaxAttempts int
	RetryDelay  time.Duration

	// DebugDir receives debug_prompt_suspect_<id>.txt when DebugPrompts is set
	DebugPrompts bool
	DebugDir     string
}

type Engine struct {
	model     model.BaseChatModel
	db        *casefile.Database
	conv      *conversation.Service
	narrator  *narration.Narrator
	sessionID string

	maxAttempts int
	retryDelay  time.Duration

	debugPrompts bool
	debugDir     string

	// last generated intro, reused as the case files text
	generatedIntro string
}

func New(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.Model == nil {
		return nil, errors.New("chat model is required")
	}
	if cfg.Database == nil {
		return nil, errors.New("character database is required")
	}
	if cfg.Conversation == nil {
		cfg.Conversation = conversation.NewService(conversation.NewMemoryRepository(), nil)
	}
	if cfg.SessionID == "" {
		cfg.SessionID = "local"
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}

	narrator, err := narration.New(ctx, cfg.Model)
	if err != nil {
		return nil, err
	}

	return &Engine{
		model:        cfg.Model,
		db:           cfg.Database,
		conv:         cfg.Conversation,
		narrator:     narrator,
		sessionID:    cfg.SessionID,
		maxAttempts:  cfg.MaxAttempts,
		retryDelay:   cfg.RetryDelay,
		debugPrompts: cfg.DebugPrompts,
		debugDir:     cfg.DebugDir,
	}, nil
}

// SuspectResponse asks one suspect a question. Failures never reach the
// player: after the last retry the suspect stammers and the error is shown
// inside the reply.
func (e *Engine) SuspectResponse(ctx context.Context, suspectID int, question string, onToken func(string)) (string, error) {
	start := time.Now()
	logger.Info().Int("suspect", suspectID).Str("question", question).Msg("Generating suspect response")

	answer, err := e.respond(ctx, suspectID, question, onToken)
	if err != nil {
		logger.Error().Err(err).Int("suspect", suspectID).Msg("Error in suspect response")
		return FallbackLine(err), nil
	}

	logger.Info().
		Int("suspect", suspectID).
		Int("length", len(answer)).
		Dur("duration", time.Since(start)).
		Msg("Response received")
	return answer, nil
}

func (e *Engine) respond(ctx context.Context, suspectID int, question string, onToken func(string)) (string, error) {
	systemPrompt, err := e.db.SystemPrompt(suspectID)
	if err != nil {
		return "", err
	}
	e.dumpPrompt(suspectID, systemPrompt)

	msgs, err := e.conv.Context(ctx, e.sessionID, suspectID, systemPrompt, question)
	if err != nil {
		return "", err
	}

	opts := []model.Option{
		model.WithMaxTokens(ResponseMaxTokens),
		model.WithTemperature(ResponseTemperature),
	}

	var answer string
	attempt := 0
	operation := func() error {
		attempt++
		var err error
		if onToken != nil {
			answer, err = e.stream(ctx, msgs, opts, onToken)
		} else {
			answer, err = e.generate(ctx, msgs, opts)
		}
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn().
			Err(err).
			Int("suspect", suspectID).
			Int("attempt", attempt).
			Int("max_attempts", e.maxAttempts).
			Dur("retry_in", wait).
			Msg("Model call failed, retrying")
	}

	if err := backoff.RetryNotify(operation, e.retryPolicy(ctx), notify); err != nil {
		return "", err
	}

	if err := e.conv.Record(ctx, e.sessionID, suspectID, question, answer); err != nil {
		logger.Warn().Err(err).Int("suspect", suspectID).Msg("Failed to record exchange")
	}
	return answer, nil
}

func (e *Engine) retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.retryDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(e.maxAttempts-1)), ctx)
}

func (e *Engine) generate(ctx context.Context, msgs []*schema.Message, opts []model.Option) (string, error) {
	resp, err := e.model.Generate(ctx, msgs, opts...)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (e *Engine) stream(ctx context.Context, msgs []*schema.Message, opts []model.Option, onToken func(string)) (string, error) {
	reader, err := e.model.Stream(ctx, msgs, opts...)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	var b strings.Builder
	for {
		chunk, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		b.WriteString(chunk.Content)
		onToken(chunk.Content)
	}
}

// FallbackLine is what a suspect says when the model could not answer
func FallbackLine(err error) string {
	msg := []rune(err.Error())
	if len(msg) > 100 {
		msg = msg[:100]
	}
	return fmt.Sprintf("*looks nervous* I... I... (%s: %s)", errorType(err), string(msg))
}

// errorType names the innermost error, e.g. "url.Error" or "errors.errorString"
func errorType(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
}

// GenerateIntro writes the story intro and keeps it as the case files text
func (e *Engine) GenerateIntro(ctx context.Context, onToken func(string)) (string, error) {
	text, err := e.narrator.Intro(ctx, onToken)
	if err != nil {
		return "", err
	}
	e.generatedIntro = text
	return text, nil
}

// GeneratedIntro returns the last intro produced by GenerateIntro
func (e *Engine) GeneratedIntro() string {
	return e.generatedIntro
}

func (e *Engine) GenerateRecap(ctx context.Context, day int, onToken func(string)) (string, error) {
	return e.narrator.Recap(ctx, day, onToken)
}

// ResetChat forgets one suspect's interrogation
func (e *Engine) ResetChat(ctx context.Context, suspectID int) error {
	return e.conv.Reset(ctx, e.sessionID, suspectID)
}

// ResetAllChats forgets every interrogation of the session
func (e *Engine) ResetAllChats(ctx context.Context) error {
	return e.conv.ResetAll(ctx, e.sessionID)
}

var fallbackNames = map[int]string{
	1: "Blacksmith",
	2: "Nun",
	3: "Merchant",
	4: "Soldier",
	5: "Boy",
	6: "Cook",
}

// SuspectName prefers the database name and falls back to the suspect's role
func (e *Engine) SuspectName(suspectID int) string {
	if name := e.db.Name(suspectID); name != "Unknown" {
		return name
	}
	if name, ok := fallbackNames[suspectID]; ok {
		return name
	}
	return "Unknown"
}

func (e *Engine) dumpPrompt(suspectID int, prompt string) {
	if !e.debugPrompts {
		return
	}
	path := filepath.Join(e.debugDir, fmt.Sprintf("debug_prompt_suspect_%d.txt", suspectID))

	var b strings.Builder
	fmt.Fprintf(&b, "=== FULL SYSTEM PROMPT FOR SUSPECT %d ===\n", suspectID)
	fmt.Fprintf(&b, "Length: %d characters\n", len(prompt))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(prompt)

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Could not save prompt")
		return
	}
	logger.Debug().Str("path", path).Msg("Saved full prompt")
}
