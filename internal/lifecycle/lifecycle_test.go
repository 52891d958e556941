package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/lovemenu-bot/internal/health"
	"github.com/Proton-105/lovemenu-bot/internal/testutil"
)

func TestShutdownRunsPhasesInOrder(t *testing.T) {
	s := NewShutdown(testutil.Logger())

	var (
		mu    sync.Mutex
		order []Phase
	)
	record := func(p Phase) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, p)
			return nil
		}
	}

	s.Register(PhaseStores, "postgres", record(PhaseStores))
	s.Register(PhaseIntake, "bot", record(PhaseIntake))
	s.Register(PhaseWorkers, "jobs", record(PhaseWorkers))
	s.Register(PhaseIntake, "http", record(PhaseIntake))

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, []Phase{PhaseIntake, PhaseIntake, PhaseWorkers, PhaseStores}, order)
}

func TestShutdownJoinsErrorsAndKeepsGoing(t *testing.T) {
	s := NewShutdown(testutil.Logger())

	boom := errors.New("boom")
	closed := false
	s.Register(PhaseIntake, "bot", func(context.Context) error { return boom })
	s.Register(PhaseStores, "redis", func(context.Context) error {
		closed = true
		return nil
	})

	err := s.Execute(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bot")
	assert.True(t, closed)
}

func TestProbes(t *testing.T) {
	checker := health.NewChecker(testutil.Logger())
	redisUp := true
	checker.Add("redis", func(context.Context) error {
		if redisUp {
			return nil
		}
		return errors.New("connection refused")
	})

	probes := NewProbes(checker)
	ctx := context.Background()

	assert.NoError(t, probes.Liveness(ctx))
	assert.NoError(t, probes.Readiness(ctx))

	redisUp = false
	err := probes.Readiness(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")

	redisUp = true
	probes.Drain()
	assert.ErrorIs(t, probes.Readiness(ctx), ErrDraining)
	assert.NoError(t, probes.Liveness(ctx))
}
