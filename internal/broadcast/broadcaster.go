// Package broadcast delivers one message to many users. Transient failures
// are retried with backoff behind a circuit breaker; a user who blocked the
// bot is counted as failed and never aborts the run.
package broadcast

import (
	"context"
	"log/slog"

	apperrors "github.com/Proton-105/lovemenu-bot/internal/errors"
	"github.com/Proton-105/lovemenu-bot/internal/bot/render"
	"github.com/Proton-105/lovemenu-bot/pkg/metrics"
)

// Sender delivers a view to a chat. *render.Renderer satisfies it.
type Sender interface {
	Notify(ctx context.Context, chatID int64, v render.View) error
}

// Report summarises a broadcast run.
type Report struct {
	Delivered int
	Failed    int
}

type Broadcaster struct {
	sender  Sender
	breaker *apperrors.CircuitBreaker
	log     *slog.Logger
}

func New(sender Sender, breaker *apperrors.CircuitBreaker, log *slog.Logger) *Broadcaster {
	if breaker == nil {
		breaker = apperrors.NewCircuitBreaker()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Broadcaster{sender: sender, breaker: breaker, log: log}
}

// Broadcast sends v to every recipient. Once ctx is done the rest count as failed.
func (b *Broadcaster) Broadcast(ctx context.Context, recipients []int64, v render.View) Report {
	var report Report
	for _, chatID := range recipients {
		if ctx.Err() != nil {
			report.Failed++
			continue
		}

		err := apperrors.WithRetry(ctx, func() error {
			return b.breaker.Call(func() error {
				return b.sender.Notify(ctx, chatID, v)
			})
		})
		if err != nil {
			report.Failed++
			b.log.Warn("broadcast delivery failed",
				slog.Int64("chat_id", chatID),
				slog.Any("error", err),
			)
			continue
		}

		report.Delivered++
	}

	metrics.RecordBroadcast(report.Delivered, report.Failed)
	b.log.Info("broadcast finished",
		slog.Int("delivered", report.Delivered),
		slog.Int("failed", report.Failed),
	)

	return report
}
