package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "steampool:subscription:"

// RedisStore keeps entries in Redis so several bot replicas share them.
// Keys expire together with the gate TTL.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(userID int64) string {
	return redisKeyPrefix + strconv.FormatInt(userID, 10)
}

// Get implements Store
func (s *RedisStore) Get(ctx context.Context, userID int64) (Entry, error) {
	raw, err := s.client.Get(ctx, redisKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrCacheMiss
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get subscription entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return Entry{}, fmt.Errorf("decode subscription entry: %w", err)
	}
	return entry, nil
}

// Put implements Store
func (s *RedisStore) Put(ctx context.Context, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode subscription entry: %w", err)
	}

	if err := s.client.Set(ctx, redisKey(entry.UserID), string(data), s.ttl).Err(); err != nil {
		return fmt.Errorf("set subscription entry: %w", err)
	}
	return nil
}
