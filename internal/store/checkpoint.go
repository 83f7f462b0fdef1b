package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// checkpoints go stale when the store's change log rolls over; an expired key
// simply means the next subscription starts fresh.
const checkpointTTL = 24 * time.Hour

const checkpointKey = "driverpro:notifier:resume_token"

// CheckpointStore persists the subscription resume position between
// reconnects. Implementations must treat a missing checkpoint as nil, nil.
type CheckpointStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, token []byte) error
	Clear(ctx context.Context) error
}

// RedisCheckpoints stores the resume token in Redis.
type RedisCheckpoints struct {
	client *redis.Client
}

func NewRedisCheckpoints(client *redis.Client) *RedisCheckpoints {
	return &RedisCheckpoints{client: client}
}

func (r *RedisCheckpoints) Load(ctx context.Context) ([]byte, error) {
	val, err := r.client.Get(ctx, checkpointKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return val, nil
}

func (r *RedisCheckpoints) Save(ctx context.Context, token []byte) error {
	if len(token) == 0 {
		return nil
	}
	return r.client.Set(ctx, checkpointKey, token, checkpointTTL).Err()
}

func (r *RedisCheckpoints) Clear(ctx context.Context) error {
	return r.client.Del(ctx, checkpointKey).Err()
}
