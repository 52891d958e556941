// Package handlers implements the customer and admin screens of the bot.
package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/bot/callback"
	"github.com/Proton-105/lovemenu-bot/internal/bot/keyboard"
	"github.com/Proton-105/lovemenu-bot/internal/bot/render"
	"github.com/Proton-105/lovemenu-bot/internal/cart"
	"github.com/Proton-105/lovemenu-bot/internal/catalog"
	"github.com/Proton-105/lovemenu-bot/internal/dateidea"
	"github.com/Proton-105/lovemenu-bot/internal/i18n"
	"github.com/Proton-105/lovemenu-bot/internal/jobs"
	"github.com/Proton-105/lovemenu-bot/internal/ledger"
	"github.com/Proton-105/lovemenu-bot/internal/order"
	"github.com/Proton-105/lovemenu-bot/internal/state"
	"github.com/Proton-105/lovemenu-bot/internal/user"
)

// Access answers who may use the admin panel and who is paired with whom.
type Access interface {
	IsAdmin(userID int64) bool
	Admins() []int64
	PartnerOf(userID int64) (int64, bool)
}

// Services bundles the domain services used by the handlers.
type Services struct {
	Catalog *catalog.Service
	Cart    *cart.Service
	Orders  *order.Service
	Ledger  *ledger.Service
	Users   *user.Service
	Ideas   *dateidea.Picker
	// Specials delivers a freshly published special menu to everybody.
	Specials jobs.SpecialMenuDispatcher
}

// Set holds every handler and the collaborators they share.
type Set struct {
	Services

	fsm    state.StateMachine
	render *render.Renderer
	kb     *keyboard.Builder
	t      i18n.Translator
	access Access
	log    *slog.Logger

	// confirmationAnimation is sent with the checkout confirmation when set.
	confirmationAnimation string
}

// Options configures a Set.
type Options struct {
	FSM                     state.StateMachine
	Renderer                *render.Renderer
	Translator              i18n.Translator
	Access                  Access
	ConfirmationAnimationID string
	Log                     *slog.Logger
}

func New(services Services, opts Options) *Set {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	if services.Ideas == nil {
		services.Ideas = dateidea.NewPicker(nil)
	}

	return &Set{
		Services:              services,
		fsm:                   opts.FSM,
		render:                opts.Renderer,
		kb:                    keyboard.NewBuilder(log, opts.Translator),
		t:                     opts.Translator,
		access:                opts.Access,
		log:                   log,
		confirmationAnimation: opts.ConfirmationAnimationID,
	}
}

// Keyboards exposes the keyboard builder, e.g. for the special menu offer.
func (s *Set) Keyboards() *keyboard.Builder {
	return s.kb
}

// Register wires every command, action and step into r.
func (s *Set) Register(r Registrar) {
	r.Command(CommandStart, s.Start)
	r.Command(CommandCancel, s.CancelCommand)
	r.Command(CommandAdmin, s.AdminCommand)

	r.Override(s.tr("common.back_to_menu"), s.MainMenu)
	r.Override(s.tr("common.cancel_back"), s.MainMenu)

	s.registerCatalog(r)
	s.registerCart(r)
	s.registerAdmin(r)

	r.Action(callback.KindBackToMenu, On(func(c telebot.Context, _ callback.BackToMenu) error { return s.MainMenu(c) }))
	r.Action(callback.KindCancelForm, On(func(c telebot.Context, _ callback.CancelForm) error { return s.Cancelled(c) }))
	r.Action(callback.KindCancelOrder, On(func(c telebot.Context, _ callback.CancelOrder) error { return s.Cancelled(c) }))
	r.Action(callback.KindCancelSpecialOrder, On(func(c telebot.Context, _ callback.CancelSpecialOrder) error { return s.Cancelled(c) }))
	r.Action(callback.KindAdminCancel, On(func(c telebot.Context, _ callback.AdminCancel) error { return s.Cancelled(c) }))

	r.Fallback(s.Vocabulary)
}

func (s *Set) tr(key string) string {
	if s.t == nil {
		return key
	}
	return s.t.T(key)
}

func (s *Set) trf(key string, args ...any) string {
	return i18n.Format(s.t, key, args...)
}

func (s *Set) show(c telebot.Context, v render.View) error {
	return s.render.Show(Context(c), c, v)
}

func (s *Set) send(c telebot.Context, v render.View) error {
	_, err := s.render.Send(Context(c), recipient(c), v)
	return err
}

// fresh replaces the pressed message with v, or sends v. Reply keyboards
// cannot be attached by editing.
func (s *Set) fresh(c telebot.Context, v render.View) error {
	var msg *telebot.Message
	if cb := c.Callback(); cb != nil {
		msg = cb.Message
	}
	return s.render.Replace(Context(c), recipient(c), msg, v)
}

func (s *Set) toast(c telebot.Context, text string) error {
	return s.render.Respond(c, text, false)
}

func (s *Set) alert(c telebot.Context, text string) error {
	return s.render.Respond(c, text, true)
}

// problem reports a recoverable problem: an alert for button presses and a
// message for text input.
func (s *Set) problem(c telebot.Context, text string) error {
	if c.Callback() != nil {
		return s.alert(c, text)
	}
	return s.send(c, render.View{Text: text, Plain: true})
}

func (s *Set) isAdmin(c telebot.Context) bool {
	return s.access != nil && s.access.IsAdmin(senderID(c))
}

func (s *Set) mainMenuMarkup(ctx context.Context) *telebot.ReplyMarkup {
	categories, err := s.Catalog.Categories(ctx)
	if err != nil {
		s.log.Warn("failed to load categories for main menu", slog.Any("error", err))
	}
	return keyboard.MainMenu(s.t, categories)
}

func recipient(c telebot.Context) telebot.Recipient {
	if chat := c.Chat(); chat != nil {
		return chat
	}
	return c.Sender()
}
