package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConfirmationStore tracks which confirmation codes are still live.
// The bcrypt hash on the user row is the authoritative secret; the
// Redis key gives codes their bounded lifetime and makes reissue
// exclusive (a new SET replaces whatever was there).
type ConfirmationStore interface {
	Put(ctx context.Context, username string, ttl time.Duration) error
	Alive(ctx context.Context, username string) (bool, error)
	Drop(ctx context.Context, username string) error
}

type redisConfirmationStore struct {
	client *redis.Client
}

func NewConfirmationStore(client *redis.Client) ConfirmationStore {
	return &redisConfirmationStore{client: client}
}

func confirmationKey(username string) string {
	return fmt.Sprintf("confirm:%s", username)
}

func (s *redisConfirmationStore) Put(ctx context.Context, username string, ttl time.Duration) error {
	return s.client.Set(ctx, confirmationKey(username), time.Now().UTC().Format(time.RFC3339), ttl).Err()
}

func (s *redisConfirmationStore) Alive(ctx context.Context, username string) (bool, error) {
	err := s.client.Get(ctx, confirmationKey(username)).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *redisConfirmationStore) Drop(ctx context.Context, username string) error {
	return s.client.Del(ctx, confirmationKey(username)).Err()
}
