package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/lovemenu-bot/internal/health"
	"github.com/Proton-105/lovemenu-bot/pkg/config"
	"github.com/Proton-105/lovemenu-bot/pkg/logger"
)

type stubProber struct {
	report health.Report
	err    error
}

func (s stubProber) Liveness(context.Context) error { return nil }

func (s stubProber) Report(context.Context) (health.Report, error) { return s.report, s.err }

func TestOpsRouter(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	testCases := []struct {
		name     string
		path     string
		prober   stubProber
		expected int
		contains string
	}{
		{name: "liveness", path: "/healthz", expected: http.StatusOK, contains: `"up"`},
		{
			name:     "ready",
			path:     "/readyz",
			prober:   stubProber{report: health.Report{Status: health.StatusUp}},
			expected: http.StatusOK,
			contains: `"status":"up"`,
		},
		{
			name: "dependency down",
			path: "/readyz",
			prober: stubProber{
				report: health.Report{
					Status:     health.StatusDown,
					Components: []health.Component{{Name: "redis", Status: health.StatusDown, Error: "refused"}},
				},
				err: errors.New("unavailable: redis"),
			},
			expected: http.StatusServiceUnavailable,
			contains: `"redis"`,
		},
		{name: "metrics", path: "/metrics", expected: http.StatusOK, contains: "go_goroutines"},
		{name: "unknown path", path: "/nope", expected: http.StatusNotFound},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			router := newOpsRouter(log, tc.prober)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))

			assert.Equal(t, tc.expected, rec.Code)
			assert.NotEmpty(t, rec.Header().Get(logger.CorrelationIDHeader))
			if tc.contains != "" {
				assert.Contains(t, rec.Body.String(), tc.contains)
			}
		})
	}
}

func TestAccessFollowsReloadedConfig(t *testing.T) {
	acl := newAccess(&config.Config{Bot: config.BotConfig{
		AdminIDs: "1,2",
		Couples:  []config.Couple{{A: 1, B: 5}},
	}})

	assert.True(t, acl.IsAdmin(2))
	partner, ok := acl.PartnerOf(5)
	require.True(t, ok)
	assert.Equal(t, int64(1), partner)

	acl.Store(&config.Config{Bot: config.BotConfig{AdminIDs: "7"}})
	acl.Store(nil)

	assert.False(t, acl.IsAdmin(2))
	assert.Equal(t, []int64{7}, acl.Admins())
	_, ok = acl.PartnerOf(5)
	assert.False(t, ok)
}
