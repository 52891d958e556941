package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/lovemenu-bot/internal/testutil"
)

func noWait(t *testing.T) *int {
	t.Helper()

	calls := 0
	prev := wait
	wait = func(ctx context.Context, _ time.Duration) error {
		calls++
		return ctx.Err()
	}
	t.Cleanup(func() { wait = prev })

	return &calls
}

func TestWithRetry(t *testing.T) {
	permanent := NewValidationError("bad")
	transient := NewDatabaseError(stderrors.New("conn reset"))

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   error
	}{
		{name: "success first try", failures: 0, err: transient, wantCalls: 1},
		{name: "recovers after transient", failures: 2, err: transient, wantCalls: 3},
		{name: "gives up after max retries", failures: 10, err: transient, wantCalls: MaxRetries + 1, wantErr: transient},
		{name: "permanent error is not retried", failures: 10, err: permanent, wantCalls: 1, wantErr: permanent},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			noWait(t)

			calls := 0
			err := WithRetry(context.Background(), func() error {
				calls++
				if calls <= tc.failures {
					return tc.err
				}
				return nil
			})

			assert.Equal(t, tc.wantCalls, calls)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestWithRetryStopsOnCancelledContext(t *testing.T) {
	noWait(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := WithRetry(ctx, func() error {
		calls++
		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestCalculateBackoffDurationCaps(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, calculateBackoffDuration(1))
	assert.Equal(t, MaxBackoff, calculateBackoffDuration(20))
}

func TestCircuitBreakerTripsAndRecovers(t *testing.T) {
	now := time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreakerWithConfig(BreakerConfig{MinRequests: 2, Timeout: time.Minute, HalfOpenMaxRequests: 1})
	cb.now = func() time.Time { return now }

	transient := NewExternalAPIError("telegram", stderrors.New("502"))
	for i := 0; i < 2; i++ {
		require.ErrorIs(t, cb.Call(func() error { return transient }), transient)
	}
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Call(func() error { called = true; return nil })
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	now = now.Add(2 * time.Minute)
	require.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreakerIgnoresPermanentFailures(t *testing.T) {
	cb := NewCircuitBreakerWithConfig(BreakerConfig{MinRequests: 2})
	blocked := NewPermanentAPIError("telegram", stderrors.New("bot was blocked by the user"))

	for i := 0; i < 5; i++ {
		require.ErrorIs(t, cb.Call(func() error { return blocked }), blocked)
	}

	assert.Equal(t, StateClosed, cb.State())
}

func TestHandlerHandle(t *testing.T) {
	h := NewHandler(testutil.Logger(), false)

	tests := []struct {
		name          string
		err           error
		wantMessage   string
		wantRetryable bool
	}{
		{name: "nil", err: nil, wantMessage: "", wantRetryable: false},
		{name: "app error", err: NewDatabaseError(stderrors.New("boom")), wantMessage: "Тимчасова проблема, спробуй пізніше", wantRetryable: true},
		{name: "wrapped not found", err: stderrors.Join(stderrors.New("ctx"), NewNotFoundError("item", nil)), wantMessage: "Нічого не знайдено 🤷"},
		{name: "plain error", err: stderrors.New("plain"), wantMessage: DefaultUserMessage},
		{name: "deadline", err: fmt.Errorf("load cart: %w", context.DeadlineExceeded), wantMessage: TimeoutUserMessage, wantRetryable: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			msg, retryable := h.Handle(context.Background(), tc.err)
			assert.Equal(t, tc.wantMessage, msg)
			assert.Equal(t, tc.wantRetryable, retryable)
		})
	}
}

func TestHasCode(t *testing.T) {
	err := stderrors.Join(stderrors.New("outer"), NewNotFoundError("order", nil))
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeDatabase))
	assert.False(t, HasCode(nil, CodeNotFound))
}
