package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lox/blackjack/internal/game"
)

// RedisStore keeps the saved state as a JSON string under one key
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects lazily to the server at addr
func NewRedisStore(addr, key string) *RedisStore {
	return NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: addr}), key)
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// Ping checks the server is reachable
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (game.SavedState, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return game.SavedState{}, ErrNotFound
	}
	if err != nil {
		return game.SavedState{}, fmt.Errorf("failed to read %s: %w", s.key, err)
	}

	var state game.SavedState
	if err := json.Unmarshal(data, &state); err != nil {
		return game.SavedState{}, fmt.Errorf("failed to decode %s: %w", s.key, err)
	}
	return state, nil
}

func (s *RedisStore) Save(ctx context.Context, state game.SavedState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
