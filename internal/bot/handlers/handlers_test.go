package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/bot/callback"
	"github.com/Proton-105/lovemenu-bot/internal/bot/render"
	"github.com/Proton-105/lovemenu-bot/internal/cart"
	"github.com/Proton-105/lovemenu-bot/internal/catalog"
	"github.com/Proton-105/lovemenu-bot/internal/dateidea"
	"github.com/Proton-105/lovemenu-bot/internal/i18n"
	"github.com/Proton-105/lovemenu-bot/internal/ledger"
	"github.com/Proton-105/lovemenu-bot/internal/order"
	"github.com/Proton-105/lovemenu-bot/internal/state"
	"github.com/Proton-105/lovemenu-bot/internal/testutil"
	"github.com/Proton-105/lovemenu-bot/internal/user"
)

const (
	customerID int64 = 100
	partnerID  int64 = 200
	adminID    int64 = 300
)

type sentMessage struct {
	to   string
	what interface{}
	opts *telebot.SendOptions
}

type fakeAPI struct {
	sent    []sentMessage
	deleted int
}

func (f *fakeAPI) Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	msg := sentMessage{to: to.Recipient(), what: what}
	for _, o := range opts {
		if so, ok := o.(*telebot.SendOptions); ok {
			msg.opts = so
		}
	}
	f.sent = append(f.sent, msg)
	return &telebot.Message{ID: len(f.sent)}, nil
}

func (f *fakeAPI) Edit(msg telebot.Editable, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	return nil, errors.New("edit not supported in tests")
}

func (f *fakeAPI) EditMedia(msg telebot.Editable, media telebot.Inputtable, opts ...interface{}) (*telebot.Message, error) {
	return nil, errors.New("edit not supported in tests")
}

func (f *fakeAPI) Delete(msg telebot.Editable) error {
	f.deleted++
	return nil
}

// texts returns the text or caption of every message sent to chat.
func (f *fakeAPI) texts(chat int64) []string {
	var out []string
	for _, m := range f.sent {
		if m.to != telebot.ChatID(chat).Recipient() {
			continue
		}
		switch v := m.what.(type) {
		case string:
			out = append(out, v)
		case *telebot.Photo:
			out = append(out, v.Caption)
		case *telebot.Video:
			out = append(out, v.Caption)
		case *telebot.Animation:
			out = append(out, v.Caption)
		}
	}
	return out
}

func (f *fakeAPI) last(chat int64) string {
	texts := f.texts(chat)
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

type fakeContext struct {
	telebot.Context

	sender   *telebot.User
	message  *telebot.Message
	callback *telebot.Callback
	store    map[string]interface{}

	responses []*telebot.CallbackResponse
}

func (f *fakeContext) Sender() *telebot.User       { return f.sender }
func (f *fakeContext) Chat() *telebot.Chat         { return &telebot.Chat{ID: f.sender.ID} }
func (f *fakeContext) Callback() *telebot.Callback { return f.callback }
func (f *fakeContext) Message() *telebot.Message   { return f.message }

func (f *fakeContext) Text() string {
	if f.message == nil {
		return ""
	}
	if f.message.Text != "" {
		return f.message.Text
	}
	return f.message.Caption
}

func (f *fakeContext) Get(key string) interface{} { return f.store[key] }

func (f *fakeContext) Set(key string, v interface{}) {
	if f.store == nil {
		f.store = map[string]interface{}{}
	}
	f.store[key] = v
}

func (f *fakeContext) Respond(resp ...*telebot.CallbackResponse) error {
	f.responses = append(f.responses, resp...)
	return nil
}

func (f *fakeContext) alerted() string {
	for _, r := range f.responses {
		if r.ShowAlert {
			return r.Text
		}
	}
	return ""
}

type fakeAccess struct {
	admins  []int64
	partner map[int64]int64
}

func (a fakeAccess) IsAdmin(userID int64) bool {
	for _, id := range a.admins {
		if id == userID {
			return true
		}
	}
	return false
}

func (a fakeAccess) Admins() []int64 { return a.admins }

func (a fakeAccess) PartnerOf(userID int64) (int64, bool) {
	id, ok := a.partner[userID]
	return id, ok
}

type fakeDispatcher struct {
	menus []int64
}

func (d *fakeDispatcher) DispatchSpecialMenu(_ context.Context, menuID, _ int64) error {
	d.menus = append(d.menus, menuID)
	return nil
}

// recorder captures what a Set registers so tests go through the same guards.
type recorder struct {
	commands  map[string]Handler
	overrides map[string]Handler
	actions   map[callback.Kind]ActionHandler
	steps     map[state.State]StepHandler
	fallback  Handler
}

func (r *recorder) Command(cmd string, h Handler)              { r.commands[cmd] = h }
func (r *recorder) Override(text string, h Handler)            { r.overrides[text] = h }
func (r *recorder) Action(kind callback.Kind, h ActionHandler) { r.actions[kind] = h }
func (r *recorder) Step(s state.State, h StepHandler)          { r.steps[s] = h }
func (r *recorder) Fallback(h Handler)                         { r.fallback = h }

type harness struct {
	t        *testing.T
	store    *testutil.Store
	api      *fakeAPI
	fsm      state.StateMachine
	set      *Set
	routes   *recorder
	specials *fakeDispatcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	log := testutil.Logger()
	store := testutil.NewStore()

	catalogSvc := catalog.NewService(store.Catalog(), store.Specials(), log)
	services := Services{
		Catalog: catalogSvc,
		Cart:    cart.NewService(store.Carts(), catalogSvc, log),
		Orders:  order.NewService(store.OrderRepo(), store.Carts(), store.DebtRepo(), log),
		Ledger:  ledger.NewService(store.DebtRepo(), store.UserRepo(), store.Catalog(), log),
		Users:   user.NewService(store.UserRepo(), nil, log),
		Ideas:   dateidea.NewPicker(func(int) int { return 0 }),
	}
	specials := &fakeDispatcher{}
	services.Specials = specials

	manager, err := i18n.Load("uk")
	require.NoError(t, err)

	api := &fakeAPI{}
	fsm := state.NewStateMachine(state.NewMemoryStorage(), log, nil)

	set := New(services, Options{
		FSM:        fsm,
		Renderer:   render.New(api, nil, log),
		Translator: manager.Translator("uk"),
		Access: fakeAccess{
			admins:  []int64{adminID},
			partner: map[int64]int64{customerID: partnerID, partnerID: customerID},
		},
		Log: log,
	})

	routes := &recorder{
		commands:  map[string]Handler{},
		overrides: map[string]Handler{},
		actions:   map[callback.Kind]ActionHandler{},
		steps:     map[state.State]StepHandler{},
	}
	set.Register(routes)

	return &harness{t: t, store: store, api: api, fsm: fsm, set: set, routes: routes, specials: specials}
}

func (h *harness) text(userID int64, text string) *fakeContext {
	return &fakeContext{
		sender:  &telebot.User{ID: userID, FirstName: "Tester"},
		message: &telebot.Message{ID: 1, Text: text},
	}
}

func (h *harness) photo(userID int64, fileID string) *fakeContext {
	return &fakeContext{
		sender:  &telebot.User{ID: userID},
		message: &telebot.Message{ID: 1, Photo: &telebot.Photo{File: telebot.File{FileID: fileID}}},
	}
}

func (h *harness) press(userID int64, a callback.Action) *fakeContext {
	h.t.Helper()

	c := &fakeContext{
		sender:   &telebot.User{ID: userID},
		callback: &telebot.Callback{ID: "cb", Message: &telebot.Message{ID: 7}},
	}

	handler, ok := h.routes.actions[a.Kind()]
	require.True(h.t, ok, "no handler for %s", a.Kind())
	require.NoError(h.t, handler(c, a))
	return c
}

// input feeds c to the first pending step with a handler, or to the fallback
// when no such step exists.
func (h *harness) input(c *fakeContext) {
	h.t.Helper()

	for _, family := range state.Families {
		st, err := h.fsm.GetState(context.Background(), c.sender.ID, family)
		if errors.Is(err, state.ErrStateNotFound) {
			continue
		}
		require.NoError(h.t, err)

		if handler, ok := h.routes.steps[st.State()]; ok {
			require.NoError(h.t, handler(c, st))
			return
		}
	}

	require.NoError(h.t, h.routes.fallback(c))
}

func (h *harness) step(userID int64, family state.Family) state.Step {
	h.t.Helper()

	st, err := h.fsm.GetState(context.Background(), userID, family)
	if errors.Is(err, state.ErrStateNotFound) {
		return nil
	}
	require.NoError(h.t, err)
	return st.Step
}

func (h *harness) tr(key string) string {
	return h.set.tr(key)
}
