// Package idempotency makes sure an update is handled at most once, even when
// it is delivered twice or to two replicas.
package idempotency

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ClaimTTL bounds how long a crashed handler can block its update key.
const ClaimTTL = 5 * time.Minute

var ErrRequestInProgress = errors.New("request with this key is already in progress")

type Operation func(ctx context.Context) error

type Result struct {
	// Executed is set when fn ran in this call; its error is returned as is.
	Executed bool
	// Duplicate is set when the key was already handled.
	Duplicate bool
}

type Manager interface {
	Execute(ctx context.Context, key string, ttl time.Duration, fn Operation) (*Result, error)
}

type manager struct {
	store Store
	log   *slog.Logger
}

func NewManager(store Store, log *slog.Logger) Manager {
	if log == nil {
		log = slog.Default()
	}

	return &manager{
		store: store,
		log:   log,
	}
}

func (m *manager) Execute(ctx context.Context, key string, ttl time.Duration, fn Operation) (*Result, error) {
	if fn == nil {
		return nil, errors.New("operation fn cannot be nil")
	}

	claimed, err := m.store.Claim(ctx, key, ClaimTTL)
	if err != nil {
		return nil, err
	}

	if !claimed {
		status, err := m.store.Status(ctx, key)
		if err != nil {
			return nil, err
		}
		if status == StatusDone {
			return &Result{Duplicate: true}, nil
		}
		return nil, ErrRequestInProgress
	}

	if err := fn(ctx); err != nil {
		if releaseErr := m.store.Release(context.WithoutCancel(ctx), key); releaseErr != nil {
			m.log.WarnContext(ctx, "failed to release update key", slog.String("key", key), slog.Any("error", releaseErr))
		}
		return &Result{Executed: true}, err
	}

	if err := m.store.Complete(context.WithoutCancel(ctx), key, ttl); err != nil {
		m.log.WarnContext(ctx, "failed to record handled update", slog.String("key", key), slog.Any("error", err))
	}

	return &Result{Executed: true}, nil
}
