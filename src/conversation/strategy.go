package conversation

import (
	"github.com/cloudwego/eino/schema"
)

// DefaultMaxMessages keeps the last 10 question and answer pairs
const DefaultMaxMessages = 20

// ContextStrategy decides which stored messages reach the model
type ContextStrategy interface {
	Trim(messages []*schema.Message) []*schema.Message
	GetMaxMessages() int
}

// WindowStrategy keeps the most recent messages
type WindowStrategy struct {
	MaxMessages int
}

func NewWindowStrategy(maxMessages int) *WindowStrategy {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	return &WindowStrategy{MaxMessages: maxMessages}
}

func (s *WindowStrategy) GetMaxMessages() int {
	return s.MaxMessages
}

func (s *WindowStrategy) Trim(messages []*schema.Message) []*schema.Message {
	return trimTail(messages, s.MaxMessages)
}

func trimTail(messages []*schema.Message, max int) []*schema.Message {
	if max <= 0 || len(messages) <= max {
		return messages
	}
	return messages[len(messages)-max:]
}
