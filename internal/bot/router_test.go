package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/bot/callback"
	"github.com/Proton-105/lovemenu-bot/internal/bot/handlers"
	"github.com/Proton-105/lovemenu-bot/internal/state"
	"github.com/Proton-105/lovemenu-bot/internal/testutil"
)

type fakeContext struct {
	telebot.Context

	sender   *telebot.User
	message  *telebot.Message
	callback *telebot.Callback
	store    map[string]interface{}
	sent     []interface{}
}

func (f *fakeContext) Sender() *telebot.User       { return f.sender }
func (f *fakeContext) Callback() *telebot.Callback { return f.callback }
func (f *fakeContext) Message() *telebot.Message   { return f.message }

func (f *fakeContext) Text() string {
	if f.message == nil {
		return ""
	}
	return f.message.Text
}

func (f *fakeContext) Get(key string) interface{} { return f.store[key] }

func (f *fakeContext) Set(key string, v interface{}) {
	if f.store == nil {
		f.store = map[string]interface{}{}
	}
	f.store[key] = v
}

func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	f.sent = append(f.sent, what)
	return nil
}

type fakeResponder struct {
	answers []string
	alerts  []string
}

func (r *fakeResponder) Respond(_ telebot.Context, text string, alert bool) error {
	if alert {
		r.alerts = append(r.alerts, text)
		return nil
	}
	r.answers = append(r.answers, text)
	return nil
}

const userID int64 = 100

func newTestRouter(t *testing.T) (*Router, state.StateMachine, *fakeResponder) {
	t.Helper()

	log := testutil.Logger()
	fsm := state.NewStateMachine(state.NewMemoryStorage(), log, nil)
	responder := &fakeResponder{}
	return NewRouter(NewDispatcher(fsm, log), responder, log), fsm, responder
}

func text(s string) *fakeContext {
	return &fakeContext{sender: &telebot.User{ID: userID}, message: &telebot.Message{ID: 1, Text: s}}
}

func press(t *testing.T, a callback.Action) *fakeContext {
	t.Helper()

	data, err := callback.Encode(a)
	require.NoError(t, err)
	return &fakeContext{sender: &telebot.User{ID: userID}, callback: &telebot.Callback{ID: "q", Data: data}}
}

func TestRouteMessages(t *testing.T) {
	testCases := []struct {
		name     string
		pending  state.Step
		text     string
		expected string
	}{
		{name: "command", text: "/start", expected: "start"},
		{name: "command with bot name", text: "/start@lovemenu_bot", expected: "start"},
		{name: "command beats pending step", pending: state.CheckoutComment{}, text: "/start", expected: "start"},
		{name: "pending step", pending: state.CheckoutComment{}, text: "цілую", expected: "comment"},
		{name: "override beats pending step", pending: state.CheckoutComment{}, text: "Головне меню", expected: "menu"},
		{name: "fallback", text: "Кошик", expected: "fallback"},
		{name: "unknown command falls back", text: "/nope", expected: "fallback"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			router, fsm, _ := newTestRouter(t)
			ctx := context.Background()

			var got string
			router.Command("/start", func(telebot.Context) error { got = "start"; return nil })
			router.Override("Головне меню", func(telebot.Context) error { got = "menu"; return nil })
			router.Step(state.StateCheckoutComment, func(telebot.Context, *state.UserState) error { got = "comment"; return nil })
			router.Fallback(func(telebot.Context) error { got = "fallback"; return nil })

			if tc.pending != nil {
				require.NoError(t, fsm.SetState(ctx, userID, tc.pending))
			}

			require.NoError(t, router.Route(text(tc.text)))
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestButtonOnlyStepDoesNotHideTextStep(t *testing.T) {
	testCases := []struct {
		name     string
		stale    state.Step
		pending  state.Step
		expected string
	}{
		{name: "edit menu before debt amount", stale: state.EditItemMenu{CategoryID: 1, ItemID: 2}, pending: state.DebtAmount{TargetUserID: 5}, expected: "debt"},
		{name: "special currency before checkout comment", stale: state.SpecialMenuCurrency{Description: "x"}, pending: state.CheckoutComment{}, expected: "comment"},
		{name: "edit select before custom text", stale: state.EditItemSelect{CategoryID: 1}, pending: state.CustomText{CategoryID: 1}, expected: "custom"},
		{name: "only button steps fall back", stale: state.EditItemMenu{CategoryID: 1, ItemID: 2}, expected: "fallback"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			router, fsm, _ := newTestRouter(t)
			ctx := context.Background()

			var got string
			router.Step(state.StateDebtAmount, func(telebot.Context, *state.UserState) error { got = "debt"; return nil })
			router.Step(state.StateCheckoutComment, func(telebot.Context, *state.UserState) error { got = "comment"; return nil })
			router.Step(state.StateCustomText, func(telebot.Context, *state.UserState) error { got = "custom"; return nil })
			router.Fallback(func(telebot.Context) error { got = "fallback"; return nil })

			require.NoError(t, fsm.SetState(ctx, userID, tc.stale))
			if tc.pending != nil {
				require.NoError(t, fsm.SetState(ctx, userID, tc.pending))
			}

			require.NoError(t, router.Route(text("5")))
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestOverrideDropsEveryWizard(t *testing.T) {
	router, fsm, _ := newTestRouter(t)
	ctx := context.Background()

	require.NoError(t, fsm.SetState(ctx, userID, state.CheckoutComment{}))
	require.NoError(t, fsm.SetState(ctx, userID, state.DebtUser{}))

	var previous *state.UserState
	router.Override("Головне меню", func(c telebot.Context) error {
		previous = handlers.Previous(c)
		return nil
	})

	require.NoError(t, router.Route(text("Головне меню")))

	require.NotNil(t, previous)
	assert.Equal(t, state.StateDebtUser, previous.State())

	_, err := fsm.Active(ctx, userID)
	assert.ErrorIs(t, err, state.ErrStateNotFound)
}

func TestRouteCallbacks(t *testing.T) {
	router, fsm, responder := newTestRouter(t)
	ctx := context.Background()

	var pressed []callback.Kind
	record := func(c telebot.Context, a callback.Action) error {
		pressed = append(pressed, a.Kind())
		return nil
	}
	router.Action(callback.KindShowCart, record)
	router.Action(callback.KindCancelOrder, record)

	require.NoError(t, fsm.SetState(ctx, userID, state.CheckoutComment{}))

	require.NoError(t, router.Route(press(t, callback.ShowCart{})))
	_, err := fsm.GetState(ctx, userID, state.FamilyOrder)
	require.NoError(t, err, "ordinary buttons keep the pending step")

	require.NoError(t, router.Route(press(t, callback.CancelOrder{})))
	_, err = fsm.GetState(ctx, userID, state.FamilyOrder)
	assert.ErrorIs(t, err, state.ErrStateNotFound)

	garbage := &fakeContext{sender: &telebot.User{ID: userID}, callback: &telebot.Callback{ID: "q", Data: "zzz:1"}}
	require.NoError(t, router.Route(garbage))

	assert.Equal(t, []callback.Kind{callback.KindShowCart, callback.KindCancelOrder}, pressed)
	assert.Len(t, responder.answers, 3, "every press is answered")
}

func TestMiddlewaresWrapInOrder(t *testing.T) {
	router, _, _ := newTestRouter(t)

	var trace []string
	mark := func(name string) handlers.Middleware {
		return func(next handlers.Handler) handlers.Handler {
			return func(c telebot.Context) error {
				trace = append(trace, name)
				return next(c)
			}
		}
	}
	router.Use(mark("outer"))
	router.Use(mark("inner"))
	router.Fallback(func(telebot.Context) error {
		trace = append(trace, "handler")
		return nil
	})

	require.NoError(t, router.Route(text("привіт")))
	assert.Equal(t, []string{"outer", "inner", "handler"}, trace)
}

func TestErrorHandlingAlertsOnCallbacks(t *testing.T) {
	router, _, responder := newTestRouter(t)

	router.Use(ErrorHandlingMiddleware(nil, responder, testutil.Logger()))
	router.Action(callback.KindShowCart, func(telebot.Context, callback.Action) error {
		return errors.New("db down")
	})
	router.Fallback(func(telebot.Context) error { return errors.New("db down") })

	require.NoError(t, router.Route(press(t, callback.ShowCart{})))
	require.Len(t, responder.alerts, 1)

	msg := text("привіт")
	require.NoError(t, router.Route(msg))
	assert.Len(t, msg.sent, 1)
}

func TestRecoveryKeepsServing(t *testing.T) {
	router, _, _ := newTestRouter(t)

	router.Use(RecoveryMiddleware(testutil.Logger(), nil, nil))
	router.Fallback(func(telebot.Context) error { panic("boom") })

	msg := text("привіт")
	assert.NotPanics(t, func() { require.NoError(t, router.Route(msg)) })
	assert.Len(t, msg.sent, 1)
}

func TestSerializeMiddlewareReleasesLocks(t *testing.T) {
	locks := newUserLocks()

	unlock := locks.lock(1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		locks.lock(1)()
	}()
	unlock()
	<-done

	assert.Empty(t, locks.locks)
}
