package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Remote is the optional second cache layer. It keeps confirmed values warm
// across portal restarts; staleness decisions still happen in the L1 layer
// using the stored fetch time.
type Remote interface {
	// Get returns the serialized value and its fetch time, or nil data on miss.
	Get(ctx context.Context, key string) ([]byte, time.Time, error)
	// Set stores a serialized value with its fetch time.
	Set(ctx context.Context, key string, data []byte, fetchedAt time.Time) error
	// Delete removes a key.
	Delete(ctx context.Context, key string) error
}

// remoteRetention bounds how long a value can be served stale from the
// remote layer before it is simply refetched.
const remoteRetention = 24 * time.Hour

const remoteKeyPrefix = "portal:query:"

// remoteEnvelope is the stored representation.
type remoteEnvelope struct {
	Data      json.RawMessage `json:"data"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// RedisRemote implements Remote on a redis backend.
type RedisRemote struct {
	client *redis.Client
}

// NewRedisRemote wraps an existing redis client.
func NewRedisRemote(client *redis.Client) *RedisRemote {
	return &RedisRemote{client: client}
}

// Get returns the serialized value and its fetch time, or nil data on miss.
func (r *RedisRemote) Get(ctx context.Context, key string) ([]byte, time.Time, error) {
	raw, err := r.client.Get(ctx, remoteKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("redis get: %w", err)
	}

	var env remoteEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, time.Time{}, fmt.Errorf("decoding remote entry: %w", err)
	}
	return env.Data, env.FetchedAt, nil
}

// Set stores a serialized value with its fetch time.
func (r *RedisRemote) Set(ctx context.Context, key string, data []byte, fetchedAt time.Time) error {
	env := remoteEnvelope{Data: data, FetchedAt: fetchedAt}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding remote entry: %w", err)
	}
	if err := r.client.Set(ctx, remoteKeyPrefix+key, raw, remoteRetention).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a key.
func (r *RedisRemote) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, remoteKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
