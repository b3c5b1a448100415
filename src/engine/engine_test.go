package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"ai_detective/src/casefile"
	"ai_detective/src/conversation"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedModel fails the first failures calls and then answers with reply
type scriptedModel struct {
	mu       sync.Mutex
	reply    string
	failures int
	calls    int
	inputs   [][]*schema.Message
	options  []*model.Options
}

func (s *scriptedModel) next(input []*schema.Message, opts []model.Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.inputs = append(s.inputs, input)
	s.options = append(s.options, model.GetCommonOptions(&model.Options{}, opts...))
	if s.calls <= s.failures {
		return fmt.Errorf("ollama: status 503 (attempt %d)", s.calls)
	}
	return nil
}

func (s *scriptedModel) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if err := s.next(input, opts); err != nil {
		return nil, err
	}
	return schema.AssistantMessage(s.reply, nil), nil
}

func (s *scriptedModel) Stream(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	if err := s.next(input, opts); err != nil {
		return nil, err
	}
	var chunks []*schema.Message
	for _, word := range strings.SplitAfter(s.reply, " ") {
		chunks = append(chunks, schema.AssistantMessage(word, nil))
	}
	return schema.StreamReaderFromArray(chunks), nil
}

func newTestEngine(t *testing.T, m *scriptedModel, mutate func(*Config)) (*Engine, *conversation.Service) {
	t.Helper()
	db, err := casefile.Default()
	require.NoError(t, err)

	conv := conversation.NewService(conversation.NewMemoryRepository(), nil)
	cfg := Config{
		Model:        m,
		Database:     db,
		Conversation: conv,
		SessionID:    "test",
		RetryDelay:   time.Millisecond,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := New(context.Background(), cfg)
	require.NoError(t, err)
	return e, conv
}

func TestSuspectResponse_GenerateRecordsHistory(t *testing.T) {
	ctx := context.Background()
	m := &scriptedModel{reply: "I was at prayer. [calm]"}
	e, conv := newTestEngine(t, m, nil)

	answer, err := e.SuspectResponse(ctx, 2, "Where were you?", nil)
	require.NoError(t, err)
	assert.Equal(t, "I was at prayer. [calm]", answer)

	require.Len(t, m.inputs, 1)
	input := m.inputs[0]
	require.Len(t, input, 2)
	assert.Equal(t, schema.System, input[0].Role)
	assert.Contains(t, input[0].Content, "[YOUR CHARACTER: Sera (the nun)]")
	assert.Equal(t, "Where were you?", input[1].Content)

	opts := m.options[0]
	require.NotNil(t, opts.MaxTokens)
	assert.Equal(t, ResponseMaxTokens, *opts.MaxTokens)
	require.NotNil(t, opts.Temperature)
	assert.Equal(t, ResponseTemperature, *opts.Temperature)

	history, err := conv.History(ctx, "test", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, schema.Assistant, history[1].Role)

	// second question sees the first exchange
	_, err = e.SuspectResponse(ctx, 2, "And after that?", nil)
	require.NoError(t, err)
	assert.Len(t, m.inputs[1], 4)
}

func TestSuspectResponse_StreamsTokens(t *testing.T) {
	m := &scriptedModel{reply: "Leave my forge alone. [angry]"}
	e, _ := newTestEngine(t, m, nil)

	var tokens []string
	answer, err := e.SuspectResponse(context.Background(), 1, "Is this your knife?", func(tok string) {
		tokens = append(tokens, tok)
	})
	require.NoError(t, err)
	assert.Equal(t, "Leave my forge alone. [angry]", answer)
	assert.Equal(t, answer, strings.Join(tokens, ""))
}

func TestSuspectResponse_RetriesThenSucceeds(t *testing.T) {
	m := &scriptedModel{reply: "Fine. [sad]", failures: 2}
	e, _ := newTestEngine(t, m, nil)

	answer, err := e.SuspectResponse(context.Background(), 4, "Who gave the order?", nil)
	require.NoError(t, err)
	assert.Equal(t, "Fine. [sad]", answer)
	assert.Equal(t, 3, m.calls)
}

func TestSuspectResponse_FallbackAfterLastAttempt(t *testing.T) {
	ctx := context.Background()
	m := &scriptedModel{reply: "never", failures: 10}
	e, conv := newTestEngine(t, m, nil)

	answer, err := e.SuspectResponse(ctx, 3, "What did you sell?", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxAttempts, m.calls)
	assert.True(t, strings.HasPrefix(answer, "*looks nervous* I... I... ("), answer)
	assert.Contains(t, answer, "status 503")

	history, err := conv.History(ctx, "test", 3)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSuspectResponse_UnknownSuspect(t *testing.T) {
	m := &scriptedModel{reply: "hello"}
	e, _ := newTestEngine(t, m, nil)

	answer, err := e.SuspectResponse(context.Background(), 9, "Who are you?", nil)
	require.NoError(t, err)
	assert.Contains(t, answer, "unknown suspect")
	assert.Zero(t, m.calls)
}

func TestFallbackLine_Truncates(t *testing.T) {
	line := FallbackLine(fmt.Errorf("wrapped: %w", errors.New(strings.Repeat("x", 150))))

	assert.True(t, strings.HasPrefix(line, "*looks nervous* I... I... (errors.errorString: wrapped: "))
	inner := strings.TrimSuffix(strings.SplitN(line, ": ", 2)[1], ")")
	assert.Len(t, inner, 100)
}

func TestResetChats(t *testing.T) {
	ctx := context.Background()
	m := &scriptedModel{reply: "Hm. [other]"}
	e, conv := newTestEngine(t, m, nil)

	for _, id := range []int{1, 4, 6} {
		_, err := e.SuspectResponse(ctx, id, "Hello", nil)
		require.NoError(t, err)
	}

	require.NoError(t, e.ResetChat(ctx, 1))
	history, _ := conv.History(ctx, "test", 1)
	assert.Empty(t, history)
	history, _ = conv.History(ctx, "test", 4)
	assert.NotEmpty(t, history)

	require.NoError(t, e.ResetAllChats(ctx))
	history, _ = conv.History(ctx, "test", 6)
	assert.Empty(t, history)
}

func TestSuspectName(t *testing.T) {
	e, _ := newTestEngine(t, &scriptedModel{}, nil)

	assert.Equal(t, "Sera", e.SuspectName(2))
	assert.Equal(t, "Unknown", e.SuspectName(12))
}

func TestDebugPromptDump(t *testing.T) {
	dir := t.TempDir()
	m := &scriptedModel{reply: "Orders. [other]"}
	e, _ := newTestEngine(t, m, func(c *Config) {
		c.DebugPrompts = true
		c.DebugDir = dir
	})

	_, err := e.SuspectResponse(context.Background(), 4, "Who sent you?", nil)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "debug_prompt_suspect_4.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Length: ")
	assert.Contains(t, string(data), "[YOUR CHARACTER: Ronan")
}

func TestGenerateIntro(t *testing.T) {
	m := &scriptedModel{reply: "Eight centuries later, the dead wake."}
	e, _ := newTestEngine(t, m, nil)

	text, err := e.GenerateIntro(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Eight centuries later, the dead wake.", text)
	assert.Equal(t, text, e.GeneratedIntro())

	recap, err := e.GenerateRecap(context.Background(), 2, nil)
	require.NoError(t, err)
	assert.Equal(t, text, recap)
}
