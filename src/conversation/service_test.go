package conversation

import (
	"context"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_ContextOrdering(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository(), nil)

	require.NoError(t, svc.Record(ctx, "s1", 2, "Where were you?", "At prayer. [calm]"))

	msgs, err := svc.Context(ctx, "s1", 2, "You are Sera.", "Did you see the beggar?")
	require.NoError(t, err)
	require.Len(t, msgs, 4)

	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, "You are Sera.", msgs[0].Content)
	assert.Equal(t, schema.User, msgs[1].Role)
	assert.Equal(t, schema.Assistant, msgs[2].Role)
	assert.Equal(t, "At prayer. [calm]", msgs[2].Content)
	assert.Equal(t, schema.User, msgs[3].Role)
	assert.Equal(t, "Did you see the beggar?", msgs[3].Content)
}

func TestService_RecordTrimsToWindow(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository(), NewWindowStrategy(4))

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Record(ctx, "s1", 1, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i)))
	}

	history, err := svc.History(ctx, "s1", 1)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "q3", history[0].Content)
	assert.Equal(t, "a4", history[3].Content)
}

func TestService_SuspectsAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository(), nil)

	require.NoError(t, svc.Record(ctx, "s1", 1, "q", "a"))

	history, err := svc.History(ctx, "s1", 2)
	require.NoError(t, err)
	assert.Empty(t, history)

	history, err = svc.History(ctx, "s2", 1)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestService_Reset(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository(), nil)

	for id := 1; id <= 3; id++ {
		require.NoError(t, svc.Record(ctx, "s1", id, "q", "a"))
	}
	require.NoError(t, svc.Record(ctx, "other", 1, "q", "a"))

	require.NoError(t, svc.Reset(ctx, "s1", 1))
	history, _ := svc.History(ctx, "s1", 1)
	assert.Empty(t, history)
	history, _ = svc.History(ctx, "s1", 2)
	assert.Len(t, history, 2)

	require.NoError(t, svc.ResetAll(ctx, "s1"))
	history, _ = svc.History(ctx, "s1", 3)
	assert.Empty(t, history)
	history, _ = svc.History(ctx, "other", 1)
	assert.Len(t, history, 2)
}

func TestWindowStrategy_Defaults(t *testing.T) {
	assert.Equal(t, DefaultMaxMessages, NewWindowStrategy(0).GetMaxMessages())

	msgs := []*schema.Message{schema.UserMessage("a"), schema.UserMessage("b")}
	assert.Len(t, NewWindowStrategy(5).Trim(msgs), 2)
	assert.Len(t, NewWindowStrategy(1).Trim(msgs), 1)
}
