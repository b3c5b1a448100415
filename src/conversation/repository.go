package conversation

import (
	"context"
	"strconv"

	"github.com/cloudwego/eino/schema"
)

// History is the interrogation log of one suspect
type History struct {
	Messages []*schema.Message `json:"messages"`
}

// Repository stores one history per session and suspect
type Repository interface {
	Load(ctx context.Context, sessionID string, suspectID int) (*History, error)
	Save(ctx context.Context, sessionID string, suspectID int, history *History) error
	AddMessage(ctx context.Context, sessionID string, suspectID int, message *schema.Message) error
	Delete(ctx context.Context, sessionID string, suspectID int) error
	DeleteAll(ctx context.Context, sessionID string) error
}

// historyID is the per-suspect part of the storage key
func historyID(sessionID string, suspectID int) string {
	return sessionID + ":suspect:" + strconv.Itoa(suspectID)
}
