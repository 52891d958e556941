package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/Proton-105/lovemenu-bot/internal/health"
)

// ErrDraining is reported by Readiness once shutdown has begun.
var ErrDraining = errors.New("shutting down")

// Probes answers the liveness and readiness questions of the ops endpoints.
type Probes struct {
	checker  *health.Checker
	draining atomic.Bool
}

// NewProbes creates probes backed by checker. A nil checker is always ready.
func NewProbes(checker *health.Checker) *Probes {
	return &Probes{checker: checker}
}

// Liveness fails only when the process should be restarted; it never does.
func (p *Probes) Liveness(context.Context) error {
	return nil
}

// Readiness fails while draining or when a dependency is down.
func (p *Probes) Readiness(ctx context.Context) error {
	_, err := p.Report(ctx)
	return err
}

// Report runs the dependency checks and explains a failed readiness.
func (p *Probes) Report(ctx context.Context) (health.Report, error) {
	if p.draining.Load() {
		return health.Report{Status: health.StatusDown}, ErrDraining
	}
	if p.checker == nil {
		return health.Report{Status: health.StatusUp}, nil
	}

	report := p.checker.Run(ctx)
	if report.Healthy() {
		return report, nil
	}

	var down []string
	for _, component := range report.Components {
		if component.Status == health.StatusDown {
			down = append(down, component.Name)
		}
	}
	return report, fmt.Errorf("unavailable: %s", strings.Join(down, ", "))
}

// Drain makes Readiness fail from now on.
func (p *Probes) Drain() {
	p.draining.Store(true)
}
