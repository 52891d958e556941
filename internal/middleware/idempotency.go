package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/bot/handlers"
	"github.com/Proton-105/lovemenu-bot/internal/idempotency"
)

// UpdateTTL is how long a handled update key is remembered.
const UpdateTTL = 24 * time.Hour

// Idempotency ensures handlers execute at most once per Telegram update key.
func Idempotency(manager idempotency.Manager, log *slog.Logger) handlers.Middleware {
	if manager == nil {
		return func(next handlers.Handler) handlers.Handler {
			return next
		}
	}
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			key := updateKey(c)
			if key == "" {
				return next(c)
			}

			ctx := handlers.Context(c)

			result, err := manager.Execute(ctx, key, UpdateTTL, func(context.Context) error {
				return next(c)
			})
			switch {
			case result != nil && result.Executed:
				return err
			case result != nil && result.Duplicate:
				log.DebugContext(ctx, "duplicate update skipped", slog.String("key", key))
				return nil
			case errors.Is(err, idempotency.ErrRequestInProgress):
				log.DebugContext(ctx, "update already in progress", slog.String("key", key))
				return nil
			case err != nil:
				log.WarnContext(ctx, "idempotency store unavailable, handling anyway", slog.String("key", key), slog.Any("error", err))
				return next(c)
			}
			return nil
		}
	}
}

func updateKey(c telebot.Context) string {
	if c == nil {
		return ""
	}

	if cb := c.Callback(); cb != nil {
		if cb.ID == "" {
			return ""
		}
		return idempotency.CallbackKey(cb.ID)
	}

	if msg := c.Message(); msg != nil && msg.ID != 0 {
		chatID := int64(0)
		if msg.Chat != nil {
			chatID = msg.Chat.ID
		} else if c.Sender() != nil {
			chatID = c.Sender().ID
		}
		return idempotency.MessageKey(chatID, msg.ID)
	}

	return ""
}
