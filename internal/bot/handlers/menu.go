package handlers

import (
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/bot/keyboard"
	"github.com/Proton-105/lovemenu-bot/internal/bot/render"
	"github.com/Proton-105/lovemenu-bot/internal/state"
)

// Start greets the user. The welcome is sent on every /start; the first
// contact flag is cleared afterwards.
func (s *Set) Start(c telebot.Context) error {
	ctx := Context(c)

	u := CurrentUser(c)
	if u == nil {
		var err error
		if u, err = s.Users.GetOrCreate(ctx, c.Sender()); err != nil {
			return err
		}
	}

	if err := s.send(c, render.View{
		Text:   s.tr("start.welcome"),
		Markup: s.mainMenuMarkup(ctx),
		Plain:  true,
	}); err != nil {
		return err
	}

	if u.IsFirstTime {
		if err := s.Users.MarkReturning(ctx, u.UserID); err != nil {
			s.log.WarnContext(ctx, "failed to clear first contact flag", slog.Int64("user_id", u.UserID), slog.Any("error", err))
		}
	}

	return nil
}

// MainMenu shows the main reply keyboard.
func (s *Set) MainMenu(c telebot.Context) error {
	_ = s.toast(c, "")
	return s.fresh(c, render.View{
		Text:   s.tr("common.main_menu"),
		Markup: s.mainMenuMarkup(Context(c)),
		Plain:  true,
	})
}

// CancelCommand drops every pending wizard.
func (s *Set) CancelCommand(c telebot.Context) error {
	ctx := Context(c)
	if err := s.fsm.ClearAll(ctx, senderID(c)); err != nil {
		return err
	}
	return s.send(c, render.View{
		Text:   s.tr("common.cancelled"),
		Markup: s.mainMenuMarkup(ctx),
		Plain:  true,
	})
}

// Cancelled follows a cancel button. The pending step is already dropped;
// admins leaving an admin wizard land in the admin panel.
func (s *Set) Cancelled(c telebot.Context) error {
	prev := Previous(c)
	if prev != nil && prev.Family != state.FamilyOrder && s.isAdmin(c) {
		_ = s.toast(c, "")
		return s.show(c, render.View{
			Text:   s.tr("common.cancelled"),
			Markup: s.kb.AdminPanel(),
			Plain:  true,
		})
	}
	return s.MainMenu(c)
}

// Vocabulary interprets text outside any wizard as a menu button: a category,
// the cart, the account, a subcategory name or, for admins, an admin button.
// Anything else is ignored.
func (s *Set) Vocabulary(c telebot.Context) error {
	ctx := Context(c)
	text := strings.TrimSpace(c.Text())
	if text == "" {
		return nil
	}

	switch text {
	case s.tr("main_menu.cart"), strings.TrimSpace(strings.TrimPrefix(s.tr("main_menu.cart"), "🛒")):
		return s.showCart(c)
	case s.tr("main_menu.account"), strings.TrimSpace(strings.TrimPrefix(s.tr("main_menu.account"), "💳")):
		return s.showAccount(c)
	}

	if category, ok, err := s.Catalog.MatchCategory(ctx, text); err != nil {
		return err
	} else if ok {
		return s.showCategory(c, category.ID)
	}

	if sub, ok, err := s.Catalog.MatchSubcategory(ctx, text); err != nil {
		return err
	} else if ok {
		return s.showSubcategory(c, sub.ID)
	}

	if s.isAdmin(c) {
		if h := s.adminButton(text); h != nil {
			return h(c)
		}
	}

	s.log.DebugContext(ctx, "ignored text outside any step", slog.Int64("user_id", senderID(c)))
	return nil
}

func (s *Set) adminButton(text string) Handler {
	buttons := keyboard.AdminButtons(s.t)
	entries := []Handler{s.startAddItem, s.startEditItem, s.showOrders, s.startPayDebt, s.startSpecialMenu}
	for i, label := range buttons {
		if text == label {
			return entries[i]
		}
	}
	if text == s.tr("admin.regular_menu") {
		return s.MainMenu
	}
	return nil
}
