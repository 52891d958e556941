package bot

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/bot/callback"
	"github.com/Proton-105/lovemenu-bot/internal/bot/handlers"
	"github.com/Proton-105/lovemenu-bot/internal/state"
)

// Responder answers callback queries at most once per update.
type Responder interface {
	Respond(c telebot.Context, text string, alert bool) error
}

// Router dispatches commands, callbacks, and state-aware updates.
type Router struct {
	mu          sync.RWMutex
	commands    map[string]handlers.Handler
	overrides   map[string]handlers.Handler
	actions     map[callback.Kind]handlers.ActionHandler
	dispatcher  *Dispatcher
	fallback    handlers.Handler
	middlewares []handlers.Middleware
	responder   Responder
	log         *slog.Logger
}

// NewRouter builds a Router with empty registries.
func NewRouter(dispatcher *Dispatcher, responder Responder, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		commands:    make(map[string]handlers.Handler),
		overrides:   make(map[string]handlers.Handler),
		actions:     make(map[callback.Kind]handlers.ActionHandler),
		dispatcher:  dispatcher,
		middlewares: make([]handlers.Middleware, 0),
		responder:   responder,
		log:         log,
	}
}

// Command registers a handler for a bot command.
func (r *Router) Command(cmd string, h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmd] = h
}

// Override registers a reply button text that drops every pending wizard.
func (r *Router) Override(text string, h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[strings.TrimSpace(text)] = h
}

// Action registers a handler for one callback kind.
func (r *Router) Action(kind callback.Kind, h handlers.ActionHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[kind] = h
}

// Step registers a handler for a pending conversation step.
func (r *Router) Step(s state.State, h handlers.StepHandler) {
	if r.dispatcher != nil {
		r.dispatcher.RegisterStateHandler(s, h)
	}
}

// Fallback sets the handler for text that nothing else consumed.
func (r *Router) Fallback(h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = h
}

// Use appends a middleware to the chain.
func (r *Router) Use(mw handlers.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, mw)
}

// Route directs the incoming update to the appropriate handler.
func (r *Router) Route(c telebot.Context) error {
	if c == nil {
		return nil
	}
	return r.executeHandler(r.serve, c)
}

func (r *Router) serve(c telebot.Context) error {
	if cb := c.Callback(); cb != nil {
		return r.handleCallback(c, cb.Data)
	}
	return r.handleMessage(c)
}

func (r *Router) handleCallback(c telebot.Context, data string) error {
	ctx := handlers.Context(c)

	action, err := callback.Decode(data)
	if err != nil {
		r.log.WarnContext(ctx, "undecodable callback", slog.Any("error", err))
		return r.respond(c)
	}

	handler := r.getActionHandler(action.Kind())
	if handler == nil {
		r.log.InfoContext(ctx, "no callback handler found", slog.String("kind", string(action.Kind())))
		return r.respond(c)
	}

	if callback.IsGlobalOverride(action) {
		if err := r.dropWizards(c); err != nil {
			return err
		}
	}

	if err := handler(c, action); err != nil {
		return err
	}
	return r.respond(c)
}

func (r *Router) handleMessage(c telebot.Context) error {
	text := strings.TrimSpace(c.Text())

	if strings.HasPrefix(text, "/") {
		if handler := r.getCommandHandler(commandName(text)); handler != nil {
			return handler(c)
		}
	}

	if handler := r.getOverride(text); handler != nil {
		if err := r.dropWizards(c); err != nil {
			return err
		}
		return handler(c)
	}

	handled, err := r.dispatchState(c)
	if err != nil || handled {
		return err
	}

	if handler := r.getFallback(); handler != nil {
		return handler(c)
	}

	return nil
}

func (r *Router) dispatchState(c telebot.Context) (bool, error) {
	if r.dispatcher == nil {
		return false, nil
	}
	return r.dispatcher.Dispatch(c)
}

// dropWizards clears every pending step and records the one that was active.
func (r *Router) dropWizards(c telebot.Context) error {
	if r.dispatcher == nil || c.Sender() == nil {
		return nil
	}

	ctx := handlers.Context(c)
	userID := c.Sender().ID

	active, err := r.dispatcher.fsm.Active(ctx, userID)
	switch {
	case err == nil:
		handlers.WithPrevious(c, active)
	case !errors.Is(err, state.ErrStateNotFound):
		return err
	}

	return r.dispatcher.fsm.ClearAll(ctx, userID)
}

func (r *Router) respond(c telebot.Context) error {
	if r.responder == nil {
		return c.Respond()
	}
	return r.responder.Respond(c, "", false)
}

func (r *Router) executeHandler(h handlers.Handler, c telebot.Context) error {
	wrapped := r.applyMiddlewares(h)
	if wrapped == nil {
		return nil
	}
	return wrapped(c)
}

func (r *Router) getActionHandler(kind callback.Kind) handlers.ActionHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.actions[kind]
}

func (r *Router) getCommandHandler(cmd string) handlers.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands[cmd]
}

func (r *Router) getOverride(text string) handlers.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.overrides[text]
}

func (r *Router) getFallback() handlers.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallback
}

// applyMiddlewares wraps the handler with all registered middlewares.
func (r *Router) applyMiddlewares(h handlers.Handler) handlers.Handler {
	if h == nil {
		return nil
	}

	middlewares := r.middlewaresSnapshot()
	wrapped := h
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}

	return wrapped
}

func (r *Router) middlewaresSnapshot() []handlers.Middleware {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.middlewares) == 0 {
		return nil
	}

	snapshot := make([]handlers.Middleware, len(r.middlewares))
	copy(snapshot, r.middlewares)
	return snapshot
}

// commandName strips arguments and the "@botname" suffix.
func commandName(text string) string {
	if i := strings.IndexAny(text, " \n"); i >= 0 {
		text = text[:i]
	}
	if i := strings.Index(text, "@"); i >= 0 {
		text = text[:i]
	}
	return text
}

var _ handlers.Registrar = (*Router)(nil)

