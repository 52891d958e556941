package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/Proton-105/lovemenu-bot/internal/broadcast"
	"github.com/Proton-105/lovemenu-bot/internal/jobs"
)

// Announcer delivers a special menu to every user.
type Announcer interface {
	Announce(ctx context.Context, menuID, adminID int64) (broadcast.Report, error)
}

type SpecialMenuHandler struct {
	announcer Announcer
	log       *slog.Logger
}

func NewSpecialMenuHandler(announcer Announcer, log *slog.Logger) *SpecialMenuHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SpecialMenuHandler{announcer: announcer, log: log}
}

func (h *SpecialMenuHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.SpecialMenuBroadcastPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.log.ErrorContext(ctx, "special menu broadcast: failed to decode payload",
			slog.String("task_type", t.Type()),
			slog.Any("error", err),
		)
		return fmt.Errorf("decode payload: %w", asynq.SkipRetry)
	}

	report, err := h.announcer.Announce(ctx, payload.MenuID, payload.AdminID)
	if err != nil {
		return err
	}

	h.log.InfoContext(ctx, "special menu broadcast done",
		slog.Int64("menu_id", payload.MenuID),
		slog.Int("delivered", report.Delivered),
		slog.Int("failed", report.Failed),
	)
	return nil
}

// InlineDispatcher runs the broadcast in the bot process when jobs are disabled.
type InlineDispatcher struct {
	Announcer Announcer
	Log       *slog.Logger
}

// DispatchSpecialMenu returns at once; the fan-out continues in the background
// and outlives the update that triggered it.
func (d InlineDispatcher) DispatchSpecialMenu(ctx context.Context, menuID, adminID int64) error {
	ctx = context.WithoutCancel(ctx)
	go func() {
		if _, err := d.Announcer.Announce(ctx, menuID, adminID); err != nil && d.Log != nil {
			d.Log.ErrorContext(ctx, "inline special menu broadcast failed",
				slog.Int64("menu_id", menuID),
				slog.Any("error", err),
			)
		}
	}()
	return nil
}
