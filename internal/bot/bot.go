// Package bot connects the Telegram transport to the handler set.
package bot

import (
	"fmt"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/bot/handlers"
	errors "github.com/Proton-105/lovemenu-bot/internal/errors"
	"github.com/Proton-105/lovemenu-bot/internal/idempotency"
	"github.com/Proton-105/lovemenu-bot/internal/middleware"
	"github.com/Proton-105/lovemenu-bot/internal/state"
	"github.com/Proton-105/lovemenu-bot/internal/user"
	"github.com/Proton-105/lovemenu-bot/pkg/config"
)

// Bot wraps telebot.Bot with the router that serves every update.
type Bot struct {
	telebot *telebot.Bot
	router  *Router
	log     *slog.Logger
}

// Options wires the collaborators of a Bot.
type Options struct {
	Handlers    *handlers.Set
	FSM         state.StateMachine
	Responder   Responder
	Users       *user.Service
	ErrHandler  *errors.Handler
	Idempotency idempotency.Manager
	RateLimit   *middleware.RateLimitMiddleware
	// UpdateTimeout bounds the request context of one update.
	UpdateTimeout time.Duration
	Log           *slog.Logger
}

// NewTelebot creates the Telegram client in polling or webhook mode.
func NewTelebot(cfg config.BotConfig, log *slog.Logger) (*telebot.Bot, error) {
	if log == nil {
		log = slog.Default()
	}

	settings := telebot.Settings{
		Token: cfg.Token,
		OnError: func(err error, c telebot.Context) {
			log.Error("telegram update failed", slog.Any("error", err))
		},
	}

	if cfg.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen:   cfg.Listen,
			Endpoint: &telebot.WebhookEndpoint{PublicURL: cfg.WebhookURL},
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.Timeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}
	return tb, nil
}

// New builds a bot serving opts.Handlers over tb.
func New(tb *telebot.Bot, opts Options) *Bot {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}

	dispatcher := NewDispatcher(opts.FSM, log)
	router := NewRouter(dispatcher, opts.Responder, log)

	router.Use(ContextMiddleware(opts.UpdateTimeout))
	router.Use(RecoveryMiddleware(log, opts.ErrHandler, opts.Responder))
	router.Use(LoggingMiddleware(log))
	router.Use(middleware.Metrics)
	router.Use(ErrorHandlingMiddleware(opts.ErrHandler, opts.Responder, log))
	if opts.RateLimit != nil {
		router.Use(opts.RateLimit.Handle)
	}
	router.Use(SerializeMiddleware())
	router.Use(middleware.Idempotency(opts.Idempotency, log))
	router.Use(AuthMiddleware(opts.Users, log))

	if opts.Handlers != nil {
		opts.Handlers.Register(router)
	}

	b := &Bot{
		telebot: tb,
		router:  router,
		log:     log,
	}
	b.registerTelebotHandlers()

	return b
}

// Start publishes the command menu and runs the update loop until Stop.
func (b *Bot) Start() {
	if b.telebot == nil {
		return
	}

	if err := b.telebot.SetCommands(Commands()); err != nil {
		b.log.Warn("failed to publish bot commands", slog.Any("error", err))
	}

	b.log.Info("telegram bot started", slog.String("username", b.telebot.Me.Username))
	b.telebot.Start()
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	b.log.Info("stopping telegram bot...")
	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

// Router exposes the update router.
func (b *Bot) Router() *Router {
	return b.router
}

func (b *Bot) registerTelebotHandlers() {
	if b.telebot == nil {
		return
	}

	for _, endpoint := range []string{
		telebot.OnText,
		telebot.OnCallback,
		telebot.OnPhoto,
		telebot.OnVideo,
		telebot.OnAnimation,
	} {
		b.telebot.Handle(endpoint, b.router.Route)
	}
}
