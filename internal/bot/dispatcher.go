package bot

import (
	"errors"
	"log/slog"
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/bot/handlers"
	"github.com/Proton-105/lovemenu-bot/internal/state"
)

// Dispatcher routes incoming updates to the handler of the user's pending step.
type Dispatcher struct {
	fsm           state.StateMachine
	stateHandlers map[state.State]handlers.StepHandler
	log           *slog.Logger
	mu            sync.RWMutex
}

// NewDispatcher creates a Dispatcher with an empty handlers registry.
func NewDispatcher(fsm state.StateMachine, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}

	return &Dispatcher{
		fsm:           fsm,
		stateHandlers: make(map[state.State]handlers.StepHandler),
		log:           log,
	}
}

// RegisterStateHandler registers a handler for the provided state.
func (d *Dispatcher) RegisterStateHandler(s state.State, h handlers.StepHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stateHandlers[s] = h
}

// Dispatch feeds the update to the highest priority pending step that has a
// registered handler. Steps that only wait for a button press are skipped so
// they never hide a step waiting for text. It reports false when nothing
// pending can take the update.
func (d *Dispatcher) Dispatch(c telebot.Context) (bool, error) {
	if c == nil || c.Sender() == nil {
		d.log.Warn("cannot dispatch without sender information")
		return false, nil
	}

	ctx := handlers.Context(c)
	userID := c.Sender().ID

	for _, family := range state.Families {
		userState, err := d.fsm.GetState(ctx, userID, family)
		if errors.Is(err, state.ErrStateNotFound) {
			continue
		}
		if err != nil {
			return false, err
		}
		if userState == nil || userState.Step == nil {
			continue
		}

		handler := d.getHandler(userState.State())
		if handler == nil {
			d.log.DebugContext(ctx, "pending step waits for a button",
				slog.String("state", string(userState.State())),
				slog.Int64("user_id", userID),
			)
			continue
		}

		return true, handler(c, userState)
	}

	return false, nil
}

func (d *Dispatcher) getHandler(s state.State) handlers.StepHandler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stateHandlers[s]
}
