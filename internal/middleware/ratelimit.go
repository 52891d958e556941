package middleware

import (
	"fmt"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/bot/callback"
	"github.com/Proton-105/lovemenu-bot/internal/bot/handlers"
	"github.com/Proton-105/lovemenu-bot/internal/ratelimit"
)

const limitedMessage = "⏳ Забагато запитів. Спробуй через %d с"

// RateLimitMiddleware enforces global, per-user and per-command limits.
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	rules   *ratelimit.Rules
	log     *slog.Logger
}

// NewRateLimitMiddleware constructs a rate-limit middleware component.
func NewRateLimitMiddleware(limiter ratelimit.Limiter, rules *ratelimit.Rules, log *slog.Logger) *RateLimitMiddleware {
	if log == nil {
		log = slog.Default()
	}

	return &RateLimitMiddleware{
		limiter: limiter,
		rules:   rules,
		log:     log,
	}
}

// Handle returns a router middleware. Limiter failures let the update through.
func (m *RateLimitMiddleware) Handle(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		if m.limiter == nil || m.rules == nil || !m.rules.Enabled() {
			return next(c)
		}

		sender := c.Sender()
		if sender == nil || m.rules.IsWhitelisted(sender.ID) {
			return next(c)
		}

		if limit, window, err := m.rules.GetGlobalLimit(); err == nil {
			if blocked, retry := m.exceeded(c, "global", limit, window); blocked {
				return m.reject(c, retry)
			}
		}

		if limit, window, err := m.rules.GetPerUserLimit(); err == nil {
			if blocked, retry := m.exceeded(c, fmt.Sprintf("user:%d", sender.ID), limit, window); blocked {
				return m.reject(c, retry)
			}
		}

		if command := limitedCommand(c); command != "" {
			if limit, window, err := m.rules.GetCommandLimit(command); err == nil {
				key := fmt.Sprintf("cmd:%s:%d", command, sender.ID)
				if blocked, retry := m.exceeded(c, key, limit, window); blocked {
					return m.reject(c, retry)
				}
			}
		}

		return next(c)
	}
}

func (m *RateLimitMiddleware) exceeded(c telebot.Context, key string, limit int, window time.Duration) (bool, time.Duration) {
	if limit <= 0 || window <= 0 {
		return false, 0
	}

	ctx := handlers.Context(c)
	result, err := m.limiter.Check(ctx, key, limit, window)
	if ratelimit.Denied(result, err) {
		m.log.WarnContext(ctx, "rate limit exceeded", slog.String("key", key))
		return true, result.RetryAfter(time.Now())
	}
	if err != nil {
		m.log.WarnContext(ctx, "rate limiter error", slog.String("key", key), slog.Any("error", err))
	}
	return false, 0
}

func (m *RateLimitMiddleware) reject(c telebot.Context, retry time.Duration) error {
	seconds := int(retry.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	text := fmt.Sprintf(limitedMessage, seconds)
	if c.Callback() != nil {
		return c.Respond(&telebot.CallbackResponse{Text: text, ShowAlert: true})
	}
	return c.Send(text)
}

// limitedCommand maps an update to a rate-limited command, if any.
func limitedCommand(c telebot.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}

	action, err := callback.Decode(cb.Data)
	if err != nil {
		return ""
	}

	switch action.(type) {
	case callback.Checkout:
		return ratelimit.CommandCheckout
	case callback.OrderSpecialMenu:
		return ratelimit.CommandSpecialOrder
	default:
		return ""
	}
}
