// Package narration generates the story intro and the load-game recap.
package narration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"ai_detective/src/logger"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

const (
	IntroMaxTokens = 400
	RecapMaxTokens = 300
)

// Narrator runs the narration prompts through a chat model
type Narrator struct {
	intro compose.Runnable[map[string]any, *schema.Message]
	recap compose.Runnable[map[string]any, *schema.Message]
}

// New compiles one Template → ChatModel chain per narration
func New(ctx context.Context, chatModel model.BaseChatModel) (*Narrator, error) {
	intro, err := buildChain(ctx, chatModel, introPrompt)
	if err != nil {
		return nil, fmt.Errorf("error creating intro chain: %w", err)
	}
	recap, err := buildChain(ctx, chatModel, recapPrompt)
	if err != nil {
		return nil, fmt.Errorf("error creating recap chain: %w", err)
	}
	return &Narrator{intro: intro, recap: recap}, nil
}

func buildChain(ctx context.Context, chatModel model.BaseChatModel, text string) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := prompt.FromMessages(schema.FString, schema.UserMessage(text))

	return compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(template).
		AppendChatModel(chatModel).
		Compile(ctx)
}

// Intro writes the opening story. Tokens are streamed to onToken when it is set.
func (n *Narrator) Intro(ctx context.Context, onToken func(string)) (string, error) {
	logger.Info().Msg("Generating story intro")
	text, err := run(ctx, n.intro, map[string]any{}, IntroMaxTokens, onToken)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to generate intro")
		return "", err
	}
	return text, nil
}

// Recap writes the news piece shown when a saved game is loaded
func (n *Narrator) Recap(ctx context.Context, day int, onToken func(string)) (string, error) {
	logger.Info().Int("day", day).Msg("Generating load recap")
	text, err := run(ctx, n.recap, map[string]any{"day": day}, RecapMaxTokens, onToken)
	if err != nil {
		logger.Warn().Err(err).Int("day", day).Msg("Failed to generate load recap")
		return "", err
	}
	return text, nil
}

func run(ctx context.Context, chain compose.Runnable[map[string]any, *schema.Message], vars map[string]any, maxTokens int, onToken func(string)) (string, error) {
	opt := compose.WithChatModelOption(model.WithMaxTokens(maxTokens))

	if onToken == nil {
		msg, err := chain.Invoke(ctx, vars, opt)
		if err != nil {
			return "", err
		}
		return msg.Content, nil
	}

	stream, err := chain.Stream(ctx, vars, opt)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var b strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return b.String(), err
		}
		b.WriteString(chunk.Content)
		onToken(chunk.Content)
	}
	return b.String(), nil
}
