package handlers

import (
	"fmt"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/bot/callback"
	"github.com/Proton-105/lovemenu-bot/internal/state"
)

// Bot commands.
const (
	CommandStart  = "/start"
	CommandCancel = "/cancel"
	CommandAdmin  = "/admin"
)

// Handler processes bot commands and plain updates.
type Handler func(c telebot.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler

// ActionHandler processes a decoded inline button press.
type ActionHandler func(c telebot.Context, a callback.Action) error

// StepHandler consumes an update as the input of a pending conversation step.
type StepHandler func(c telebot.Context, st *state.UserState) error

// Registrar collects the handlers of a Set.
type Registrar interface {
	Command(cmd string, h Handler)
	// Override registers reply texts that drop every pending wizard first.
	Override(text string, h Handler)
	Action(kind callback.Kind, h ActionHandler)
	Step(s state.State, h StepHandler)
	// Fallback receives text that no step consumed.
	Fallback(h Handler)
}

// On adapts a handler of one concrete action type.
func On[A callback.Action](h func(c telebot.Context, a A) error) ActionHandler {
	return func(c telebot.Context, a callback.Action) error {
		typed, ok := a.(A)
		if !ok {
			return fmt.Errorf("unexpected action %T", a)
		}
		return h(c, typed)
	}
}

// AtStep adapts a handler of one concrete step type.
func AtStep[S state.Step](h func(c telebot.Context, s S) error) StepHandler {
	return func(c telebot.Context, st *state.UserState) error {
		typed, ok := st.Step.(S)
		if !ok {
			return fmt.Errorf("unexpected step %T", st.Step)
		}
		return h(c, typed)
	}
}
