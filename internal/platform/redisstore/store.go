package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cofinco/backoffice/internal/domain/document"
)

// Client is the part of go-redis the storage uses
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Storage keeps the serialized document under a single key
type Storage struct {
	client Client
	key    string
}

// New creates a Redis storage for the named document
func New(client Client, name string) *Storage {
	return &Storage{
		client: client,
		key:    fmt.Sprintf("backoffice:document:%s", name),
	}
}

// Read implements document.Storage
func (s *Storage) Read(ctx context.Context) ([]byte, error) {
	body, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, document.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return body, nil
}

// Write implements document.Storage. The key never expires.
func (s *Storage) Write(ctx context.Context, body []byte) error {
	if err := s.client.Set(ctx, s.key, body, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

// NewClient opens a go-redis client and checks the connection
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
