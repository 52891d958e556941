package handlers

import (
	"context"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/domain"
	"github.com/Proton-105/lovemenu-bot/internal/state"
)

const (
	requestContextKey = "request.ctx"
	requestUserKey    = "request.user"
	previousStateKey  = "request.previous_state"
)

// WithContext attaches the request context to the update.
func WithContext(c telebot.Context, ctx context.Context) {
	c.Set(requestContextKey, ctx)
}

// Context returns the request context of the update.
func Context(c telebot.Context) context.Context {
	if ctx, ok := c.Get(requestContextKey).(context.Context); ok && ctx != nil {
		return ctx
	}
	return context.Background()
}

// WithUser attaches the sender's stored profile.
func WithUser(c telebot.Context, u *domain.User) {
	c.Set(requestUserKey, u)
}

// CurrentUser returns the profile attached by WithUser, if any.
func CurrentUser(c telebot.Context) *domain.User {
	u, _ := c.Get(requestUserKey).(*domain.User)
	return u
}

// WithPrevious records the step that a global override dropped.
func WithPrevious(c telebot.Context, st *state.UserState) {
	c.Set(previousStateKey, st)
}

// Previous returns the step dropped by a global override, or nil.
func Previous(c telebot.Context) *state.UserState {
	st, _ := c.Get(previousStateKey).(*state.UserState)
	return st
}

func senderID(c telebot.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	return 0
}
