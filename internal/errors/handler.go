package errors

import (
	"context"
	"errors"
	"log/slog"

	"github.com/getsentry/sentry-go"

	"github.com/Proton-105/lovemenu-bot/pkg/logger"
	"github.com/Proton-105/lovemenu-bot/pkg/metrics"
)

// TimeoutUserMessage is shown when an update ran out of time.
const TimeoutUserMessage = "Щось довго думаю ⏳ Спробуй ще раз"

const codeUnknown = "unknown"

// Handler turns handler errors into log records, metrics, Sentry events and
// the short apology the user sees.
type Handler struct {
	log           *slog.Logger
	sentryEnabled bool
}

func NewHandler(log *slog.Logger, sentryEnabled bool) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		log:           log,
		sentryEnabled: sentryEnabled,
	}
}

// Handle logs err, reports it when severe and returns the text to show the
// user together with whether retrying may help.
func (h *Handler) Handle(ctx context.Context, err error) (string, bool) {
	if err == nil {
		return "", false
	}
	if ctx == nil {
		ctx = context.Background()
	}

	appErr := classify(err)
	code := appErr.Code
	if code == "" {
		code = codeUnknown
	}

	attrs := []slog.Attr{
		slog.String("code", code),
		slog.String("severity", string(appErr.Severity)),
		slog.Bool("retryable", appErr.Retryable),
		slog.Any("error", err),
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		attrs = append(attrs, slog.String("correlation_id", id))
	}

	level := slog.LevelError
	if appErr.Severity == SeverityLow || appErr.Severity == SeverityMedium {
		level = slog.LevelWarn
	}
	h.log.LogAttrs(ctx, level, "update failed", attrs...)
	metrics.RecordError(code, string(appErr.Severity))

	if h.sentryEnabled && (appErr.Severity == SeverityHigh || appErr.Severity == SeverityCritical) {
		report(ctx, code, appErr.Severity, err)
	}

	message := appErr.UserMessage
	if message == "" {
		message = DefaultUserMessage
	}
	return message, appErr.Retryable
}

// classify finds the AppError in err's chain. Deadlines become a low severity
// timeout and anything else an unclassified high severity failure.
func classify(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &AppError{
			Code:        "timeout",
			Message:     err.Error(),
			UserMessage: TimeoutUserMessage,
			Severity:    SeverityLow,
			Retryable:   true,
			cause:       err,
		}
	}

	return &AppError{
		Message:     err.Error(),
		UserMessage: DefaultUserMessage,
		Severity:    SeverityHigh,
		cause:       err,
	}
}

func report(ctx context.Context, code string, severity Severity, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("code", code)
		scope.SetTag("severity", string(severity))
		if id := logger.CorrelationIDFromContext(ctx); id != "" {
			scope.SetTag("correlation_id", id)
		}
		hub.CaptureException(err)
	})
}
