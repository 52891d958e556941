package middleware

import (
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/bot/callback"
	"github.com/Proton-105/lovemenu-bot/internal/bot/handlers"
	"github.com/Proton-105/lovemenu-bot/pkg/metrics"
)

// Metrics measures execution time and status for bot handlers, reporting them to Prometheus.
func Metrics(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		start := time.Now()
		err := next(c)

		status := "ok"
		if err != nil {
			status = "error"
		}

		metrics.RecordCommand(UpdateName(c), status, time.Since(start))

		return err
	}
}

// UpdateName is a low-cardinality label for an update: the callback kind,
// the command, or "message". Free text never leaks into it.
func UpdateName(c telebot.Context) string {
	if c == nil {
		return "unknown"
	}

	if cb := c.Callback(); cb != nil {
		if action, err := callback.Decode(cb.Data); err == nil {
			return "cb:" + string(action.Kind())
		}
		return "cb:unknown"
	}

	text := strings.TrimSpace(c.Text())
	if strings.HasPrefix(text, "/") {
		if i := strings.IndexAny(text, " @\n"); i >= 0 {
			text = text[:i]
		}
		return text
	}

	if msg := c.Message(); msg != nil {
		switch {
		case msg.Photo != nil:
			return "photo"
		case msg.Video != nil:
			return "video"
		case msg.Animation != nil:
			return "animation"
		}
	}

	return "message"
}
