package state

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner drops wizard sessions that were left unfinished for longer than the TTL.
// Storage that expires keys on its own still benefits: the expiry there is
// refreshed on every write, the cleaner looks at the last step change.
type Cleaner struct {
	storage  Storage
	log      *slog.Logger
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
}

func NewCleaner(storage Storage, log *slog.Logger, ttl, interval time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{
		storage:  storage,
		log:      log,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
	}
}

// Run sweeps every interval until ctx is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if c == nil || c.storage == nil || c.interval <= 0 || c.ttl <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("state cleaner stopped", slog.Any("reason", ctx.Err()))
			return
		case <-ticker.C:
			c.Sweep(ctx)
		}
	}
}

// Sweep clears the expired sessions once and returns how many were removed.
func (c *Cleaner) Sweep(ctx context.Context) int {
	states, err := c.storage.GetAllStates(ctx)
	if err != nil {
		c.log.ErrorContext(ctx, "state cleaner failed to list sessions", slog.Any("error", err))
		return 0
	}

	cutoff := c.now().Add(-c.ttl)
	cleared := 0
	for _, st := range states {
		if ctx.Err() != nil {
			break
		}
		if st == nil || st.UpdatedAt.After(cutoff) {
			continue
		}

		if err := c.storage.ClearState(ctx, st.UserID, st.Family); err != nil {
			c.log.ErrorContext(ctx, "state cleaner failed to clear session",
				slog.Int64("user_id", st.UserID),
				slog.String("family", string(st.Family)),
				slog.Any("error", err),
			)
			continue
		}

		cleared++
		c.log.InfoContext(ctx, "abandoned session cleared",
			slog.Int64("user_id", st.UserID),
			slog.String("family", string(st.Family)),
			slog.String("state", string(st.State())),
			slog.Duration("idle", c.now().Sub(st.UpdatedAt)),
		)
	}

	return cleared
}
