package conversation

import (
	"context"
	"strings"
	"sync"

	"github.com/cloudwego/eino/schema"
)

// MemoryRepository keeps histories for the lifetime of the process
type MemoryRepository struct {
	mu        sync.RWMutex
	histories map[string][]*schema.Message
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{histories: make(map[string][]*schema.Message)}
}

func (m *MemoryRepository) Load(_ context.Context, sessionID string, suspectID int) (*History, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	msgs := m.histories[historyID(sessionID, suspectID)]
	out := make([]*schema.Message, len(msgs))
	copy(out, msgs)
	return &History{Messages: out}, nil
}

func (m *MemoryRepository) Save(_ context.Context, sessionID string, suspectID int, history *History) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := make([]*schema.Message, len(history.Messages))
	copy(msgs, history.Messages)
	m.histories[historyID(sessionID, suspectID)] = msgs
	return nil
}

func (m *MemoryRepository) AddMessage(_ context.Context, sessionID string, suspectID int, message *schema.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := historyID(sessionID, suspectID)
	m.histories[id] = append(m.histories[id], message)
	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, sessionID string, suspectID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.histories, historyID(sessionID, suspectID))
	return nil
}

func (m *MemoryRepository) DeleteAll(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := sessionID + ":suspect:"
	for id := range m.histories {
		if strings.HasPrefix(id, prefix) {
			delete(m.histories, id)
		}
	}
	return nil
}
