package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPattern  = "session:%d:%s"
	sessionScanPattern = "session:*"

	// DefaultTTL is used when no session TTL is configured.
	DefaultTTL = time.Hour
)

// RedisStorage persists conversation state in Redis, one key per user and family.
type RedisStorage struct {
	client *redis.Client
	log    *slog.Logger
	ttl    time.Duration
}

// NewRedisStorage initializes a Redis-backed Storage implementation.
func NewRedisStorage(client *redis.Client, log *slog.Logger, ttl time.Duration) Storage {
	if log == nil {
		log = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisStorage{
		client: client,
		log:    log,
		ttl:    ttl,
	}
}

// GetState returns the stored state or ErrStateNotFound when absent.
func (s *RedisStorage) GetState(ctx context.Context, userID int64, family Family) (*UserState, error) {
	data, err := s.client.Get(ctx, sessionKey(userID, family)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrStateNotFound
		}

		s.log.Error("failed to get state from redis", "user_id", userID, "family", family, "error", err)
		return nil, err
	}

	var state UserState
	if err := json.Unmarshal(data, &state); err != nil {
		if errors.Is(err, ErrUnknownStep) {
			s.dropUndecodable(ctx, sessionKey(userID, family), err)
			return nil, ErrStateNotFound
		}
		s.log.Error("failed to decode user state", "user_id", userID, "family", family, "error", err)
		return nil, err
	}

	return &state, nil
}

// SetState saves the provided state with the configured TTL.
func (s *RedisStorage) SetState(ctx context.Context, userID int64, state *UserState) error {
	state.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(state)
	if err != nil {
		s.log.Error("failed to encode user state", "user_id", userID, "error", err)
		return err
	}

	if err := s.client.Set(ctx, sessionKey(userID, state.Family), data, s.ttl).Err(); err != nil {
		s.log.Error("failed to save state in redis", "user_id", userID, "family", state.Family, "error", err)
		return err
	}

	return nil
}

// ClearState removes the stored state for the given family.
func (s *RedisStorage) ClearState(ctx context.Context, userID int64, family Family) error {
	if err := s.client.Del(ctx, sessionKey(userID, family)).Err(); err != nil {
		s.log.Error("failed to clear user state", "user_id", userID, "family", family, "error", err)
		return err
	}

	return nil
}

// GetAllStates retrieves every stored state by scanning Redis keys.
func (s *RedisStorage) GetAllStates(ctx context.Context) ([]*UserState, error) {
	var (
		cursor uint64
		result []*UserState
	)

	for {
		keys, nextCursor, err := s.client.Scan(ctx, cursor, sessionScanPattern, 100).Result()
		if err != nil {
			s.log.Error("failed to scan user states", "error", err)
			return nil, err
		}

		for _, key := range keys {
			data, err := s.client.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}

				s.log.Error("failed to fetch user state", "key", key, "error", err)
				return nil, err
			}

			var userState UserState
			if err := json.Unmarshal(data, &userState); err != nil {
				s.dropUndecodable(ctx, key, err)
				continue
			}

			result = append(result, &userState)
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return result, nil
}

// dropUndecodable deletes sessions whose step no longer exists, e.g. after a
// release renamed a wizard step. Other decode failures are only logged.
func (s *RedisStorage) dropUndecodable(ctx context.Context, key string, decodeErr error) {
	if !errors.Is(decodeErr, ErrUnknownStep) {
		s.log.ErrorContext(ctx, "failed to decode user state", slog.String("key", key), slog.Any("error", decodeErr))
		return
	}

	userID, family, err := parseSessionKey(key)
	if err != nil {
		s.log.WarnContext(ctx, "skipping foreign session key", slog.String("key", key), slog.Any("error", err))
		return
	}

	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.log.ErrorContext(ctx, "failed to drop stale session", slog.String("key", key), slog.Any("error", err))
		return
	}
	s.log.WarnContext(ctx, "dropped session with unknown step",
		slog.Int64("user_id", userID),
		slog.String("family", string(family)),
		slog.Any("error", decodeErr),
	)
}

func parseSessionKey(key string) (int64, Family, error) {
	segments := strings.SplitN(key, ":", 3)
	if len(segments) != 3 || segments[0] != "session" {
		return 0, "", fmt.Errorf("invalid key format: %s", key)
	}

	userID, err := strconv.ParseInt(segments[1], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid user id in key %s: %w", key, err)
	}

	return userID, Family(segments[2]), nil
}

func sessionKey(userID int64, family Family) string {
	return fmt.Sprintf(sessionKeyPattern, userID, family)
}
