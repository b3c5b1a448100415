// Package conversation keeps each suspect's interrogation history.
package conversation

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"
)

type Service struct {
	repo     Repository
	strategy ContextStrategy
}

func NewService(repo Repository, strategy ContextStrategy) *Service {
	if strategy == nil {
		strategy = NewWindowStrategy(DefaultMaxMessages)
	}
	return &Service{repo: repo, strategy: strategy}
}

// Context builds the model input: system prompt, recent history, then the new question
func (s *Service) Context(ctx context.Context, sessionID string, suspectID int, systemPrompt, question string) ([]*schema.Message, error) {
	history, err := s.repo.Load(ctx, sessionID, suspectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	recent := s.strategy.Trim(history.Messages)
	msgs := make([]*schema.Message, 0, len(recent)+2)
	msgs = append(msgs, schema.SystemMessage(systemPrompt))
	msgs = append(msgs, recent...)
	msgs = append(msgs, schema.UserMessage(question))
	return msgs, nil
}

// Record stores a finished exchange and trims the history to the window
func (s *Service) Record(ctx context.Context, sessionID string, suspectID int, question, answer string) error {
	history, err := s.repo.Load(ctx, sessionID, suspectID)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	history.Messages = append(history.Messages,
		schema.UserMessage(question),
		schema.AssistantMessage(answer, nil),
	)
	history.Messages = s.strategy.Trim(history.Messages)

	return s.repo.Save(ctx, sessionID, suspectID, history)
}

// History returns the stored messages for one suspect
func (s *Service) History(ctx context.Context, sessionID string, suspectID int) ([]*schema.Message, error) {
	history, err := s.repo.Load(ctx, sessionID, suspectID)
	if err != nil {
		return nil, err
	}
	return history.Messages, nil
}

func (s *Service) Reset(ctx context.Context, sessionID string, suspectID int) error {
	return s.repo.Delete(ctx, sessionID, suspectID)
}

func (s *Service) ResetAll(ctx context.Context, sessionID string) error {
	return s.repo.DeleteAll(ctx, sessionID)
}
