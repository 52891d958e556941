package idempotency

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "update:"

// Status is the progress of one update key.
type Status string

const (
	StatusUnknown    Status = ""
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
)

// Store persists claims on update keys.
type Store interface {
	// Claim marks key as processing unless somebody already did.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Status(ctx context.Context, key string) (Status, error)
	Complete(ctx context.Context, key string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// RedisStore keeps claims as plain string keys with a TTL, so abandoned
// claims and old records expire without a sweeper.
type RedisStore struct {
	client *redis.Client
	log    *slog.Logger
}

func NewRedisStore(client *redis.Client, log *slog.Logger) *RedisStore {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStore{
		client: client,
		log:    log,
	}
}

func (s *RedisStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	claimed, err := s.client.SetNX(ctx, keyPrefix+key, string(StatusProcessing), ttl).Result()
	if err != nil {
		s.log.ErrorContext(ctx, "failed to claim update", slog.String("key", key), slog.Any("error", err))
		return false, err
	}
	return claimed, nil
}

func (s *RedisStore) Status(ctx context.Context, key string) (Status, error) {
	value, err := s.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return StatusUnknown, nil
	}
	if err != nil {
		s.log.ErrorContext(ctx, "failed to read update status", slog.String("key", key), slog.Any("error", err))
		return StatusUnknown, err
	}
	return Status(value), nil
}

func (s *RedisStore) Complete(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.client.Set(ctx, keyPrefix+key, string(StatusDone), ttl).Err(); err != nil {
		s.log.ErrorContext(ctx, "failed to complete update", slog.String("key", key), slog.Any("error", err))
		return err
	}
	return nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		s.log.ErrorContext(ctx, "failed to release update", slog.String("key", key), slog.Any("error", err))
		return err
	}
	return nil
}
