package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai_detective/src/storage"

	"github.com/cloudwego/eino/schema"
)

// KeyPrefix namespaces every history key in Redis
const KeyPrefix = "detective:"

// RedisRepository persists histories so interrogations survive restarts
type RedisRepository struct {
	store *storage.RedisStorage
}

func NewRedisRepository(ctx context.Context, redisURL string, ttl time.Duration) (*RedisRepository, error) {
	store, err := storage.NewRedisStorage(ctx, redisURL, KeyPrefix, ttl)
	if err != nil {
		return nil, err
	}
	return &RedisRepository{store: store}, nil
}

// Load returns an empty history for an unknown key and refreshes the TTL of a known one
func (r *RedisRepository) Load(ctx context.Context, sessionID string, suspectID int) (*History, error) {
	var history History
	err := r.store.GetAndTouch(ctx, historyID(sessionID, suspectID), &history)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &History{Messages: []*schema.Message{}}, nil
		}
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return &history, nil
}

func (r *RedisRepository) Save(ctx context.Context, sessionID string, suspectID int, history *History) error {
	return r.store.Set(ctx, historyID(sessionID, suspectID), history)
}

func (r *RedisRepository) AddMessage(ctx context.Context, sessionID string, suspectID int, message *schema.Message) error {
	history, err := r.Load(ctx, sessionID, suspectID)
	if err != nil {
		return err
	}
	history.Messages = append(history.Messages, message)
	return r.Save(ctx, sessionID, suspectID, history)
}

func (r *RedisRepository) Delete(ctx context.Context, sessionID string, suspectID int) error {
	return r.store.Delete(ctx, historyID(sessionID, suspectID))
}

func (r *RedisRepository) DeleteAll(ctx context.Context, sessionID string) error {
	_, err := r.store.DeleteMatching(ctx, sessionID+":suspect:*")
	return err
}

// Key exposes the full Redis key, e.g. detective:<session>:suspect:2
func (r *RedisRepository) Key(sessionID string, suspectID int) string {
	return r.store.Key(historyID(sessionID, suspectID))
}

func (r *RedisRepository) Close() error {
	return r.store.Close()
}
