package health

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/lovemenu-bot/internal/testutil"
	"github.com/Proton-105/lovemenu-bot/pkg/redis"
)

func TestCheckerReport(t *testing.T) {
	testCases := []struct {
		name     string
		checks   map[string]Check
		expected Status
		down     []string
	}{
		{
			name:     "no checks",
			checks:   map[string]Check{},
			expected: StatusUp,
		},
		{
			name: "all up",
			checks: map[string]Check{
				"postgres": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return nil },
			},
			expected: StatusUp,
		},
		{
			name: "one down",
			checks: map[string]Check{
				"postgres": func(context.Context) error { return errors.New("connection refused") },
				"redis":    func(context.Context) error { return nil },
			},
			expected: StatusDown,
			down:     []string{"postgres"},
		},
		{
			name: "telegram not started",
			checks: map[string]Check{
				"telegram": Telegram(nil),
			},
			expected: StatusDown,
			down:     []string{"telegram"},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			checker := NewChecker(testutil.Logger())
			for name, check := range tc.checks {
				checker.Add(name, check)
			}

			report := checker.Run(context.Background())
			assert.Equal(t, tc.expected, report.Status)

			var down []string
			for _, c := range report.Components {
				if c.Status == StatusDown {
					down = append(down, c.Name)
				}
			}
			assert.Equal(t, tc.down, down)
		})
	}
}

func TestCheckerTimesOutSlowChecks(t *testing.T) {
	checker := NewChecker(testutil.Logger())
	checker.timeout = 20 * time.Millisecond
	checker.Add("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	report := checker.Run(context.Background())
	require.Len(t, report.Components, 1)
	assert.False(t, report.Healthy())
	assert.Contains(t, report.Components[0].Error, "deadline")
}

func TestRedisCheck(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := redis.New(context.Background(), redis.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	check := Redis(client)
	assert.NoError(t, check(context.Background()))

	mr.Close()
	assert.Error(t, check(context.Background()))
}
