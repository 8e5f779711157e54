package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// sessionTTL matches the broker's channel TTL so the marker and the
// stream expire together.
const sessionTTL = 5 * time.Minute

// SessionManager tracks which login session ids were actually issued by
// the API, with the same lifetime as the waiting stream. Only the marker
// lives in redis; the stream itself is in-process state.
type SessionManager struct{}

func NewSessionManager() *SessionManager {
	GetRedisClient()
	return &SessionManager{}
}

func (sm *SessionManager) CreateLoginSession(ctx context.Context, sessionID string) error {
	client := GetRedisClient()

	data, err := json.Marshal(LoginSession{
		SessionID: sessionID,
		CreatedAt: time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal login session: %w", err)
	}

	key := "login_session:" + sessionID
	if err := client.Set(ctx, key, data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to store in cache: %w", err)
	}
	return nil
}

func (sm *SessionManager) LoginSessionExists(ctx context.Context, sessionID string) (bool, error) {
	client := GetRedisClient()

	n, err := client.Exists(ctx, "login_session:"+sessionID).Result()
	if err != nil && err != redis.Nil {
		return false, fmt.Errorf("failed to get from cache: %w", err)
	}
	return n > 0, nil
}

func (sm *SessionManager) DeleteLoginSession(ctx context.Context, sessionID string) error {
	client := GetRedisClient()
	return client.Del(ctx, "login_session:"+sessionID).Err()
}
