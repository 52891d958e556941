package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/bot/callback"
	"github.com/Proton-105/lovemenu-bot/internal/bot/render"
	"github.com/Proton-105/lovemenu-bot/internal/cart"
	"github.com/Proton-105/lovemenu-bot/internal/catalog"
	"github.com/Proton-105/lovemenu-bot/internal/domain"
	"github.com/Proton-105/lovemenu-bot/internal/order"
	"github.com/Proton-105/lovemenu-bot/internal/presenter"
	"github.com/Proton-105/lovemenu-bot/internal/state"
)

func (s *Set) registerCart(r Registrar) {
	r.Action(callback.KindShowCart, On(func(c telebot.Context, _ callback.ShowCart) error { return s.showCart(c) }))
	r.Action(callback.KindShowAccount, On(func(c telebot.Context, _ callback.ShowAccount) error { return s.showAccount(c) }))
	r.Action(callback.KindRemoveCartLine, On(s.RemoveCartLine))
	r.Action(callback.KindClearCart, On(s.ClearCart))
	r.Action(callback.KindCheckout, On(s.Checkout))
	r.Action(callback.KindOrderSpecialMenu, On(s.OrderSpecialMenu))

	r.Step(state.StateCheckoutComment, AtStep(s.CheckoutComment))
	r.Step(state.StateSpecialOrderComment, AtStep(s.SpecialOrderComment))
}

func (s *Set) showCart(c telebot.Context) error {
	ctx := Context(c)

	lines, err := s.Cart.Lines(ctx, senderID(c))
	if err != nil {
		return err
	}

	currencies, err := s.Catalog.Currencies(ctx)
	if err != nil {
		return err
	}

	_ = s.toast(c, "")
	return s.show(c, render.View{
		Text:   presenter.Cart(lines, presenter.NewCurrencies(currencies)),
		Markup: s.kb.Cart(lines),
	})
}

func (s *Set) showAccount(c telebot.Context) error {
	lines, err := s.Ledger.Debts(Context(c), senderID(c))
	if err != nil {
		return err
	}

	_ = s.toast(c, "")
	return s.show(c, render.View{
		Text:   presenter.Account(lines),
		Markup: s.kb.BackToMenu(),
	})
}

func (s *Set) RemoveCartLine(c telebot.Context, a callback.RemoveCartLine) error {
	err := s.Cart.Remove(Context(c), senderID(c), a.LineID)
	if errors.Is(err, cart.ErrLineNotFound) {
		return s.alert(c, s.tr("cart.remove_failed"))
	}
	if err != nil {
		return err
	}

	_ = s.toast(c, s.tr("cart.removed"))
	return s.showCart(c)
}

func (s *Set) ClearCart(c telebot.Context, _ callback.ClearCart) error {
	if err := s.Cart.Clear(Context(c), senderID(c)); err != nil {
		return err
	}

	_ = s.toast(c, s.tr("cart.cleared"))
	return s.show(c, render.View{
		Text:   s.tr("cart.cleared_message"),
		Markup: s.kb.BackToMenu(),
		Plain:  true,
	})
}

// Checkout asks for the order comment. An empty cart leaves the state untouched.
func (s *Set) Checkout(c telebot.Context, _ callback.Checkout) error {
	ctx := Context(c)
	userID := senderID(c)

	err := s.Orders.EnsureNotEmpty(ctx, userID)
	if errors.Is(err, order.ErrEmptyCart) {
		return s.alert(c, s.tr("cart.empty_alert"))
	}
	if err != nil {
		return err
	}

	if err := s.fsm.SetState(ctx, userID, state.CheckoutComment{}); err != nil {
		return err
	}

	_ = s.toast(c, "")
	return s.show(c, render.View{
		Text:   s.tr("checkout.prompt"),
		Markup: s.kb.Cancel(callback.CancelOrder{}),
		Plain:  true,
	})
}

// CheckoutComment places the order with the date and comment found in the text.
func (s *Set) CheckoutComment(c telebot.Context, _ state.CheckoutComment) error {
	ctx := Context(c)
	userID := senderID(c)

	text := strings.TrimSpace(c.Text())
	if text == "" {
		return s.send(c, render.View{
			Text:   s.tr("checkout.prompt"),
			Markup: s.kb.Cancel(callback.CancelOrder{}),
			Plain:  true,
		})
	}

	placed, err := s.Orders.Checkout(ctx, userID, text)
	if errors.Is(err, order.ErrEmptyCart) {
		if clearErr := s.fsm.ClearState(ctx, userID, state.FamilyOrder); clearErr != nil {
			return clearErr
		}
		return s.send(c, render.View{Text: s.tr("cart.empty_alert"), Markup: s.mainMenuMarkup(ctx), Plain: true})
	}
	if err != nil {
		return err
	}

	if err := s.fsm.ClearState(ctx, userID, state.FamilyOrder); err != nil {
		s.log.WarnContext(ctx, "failed to clear checkout step", slog.Int64("user_id", userID), slog.Any("error", err))
	}

	s.confirm(c, presenter.OrderConfirmation)
	s.notifyPartner(ctx, c, placed)
	return nil
}

// confirm sends the confirmation animation, falling back to text.
func (s *Set) confirm(c telebot.Context, text string) {
	ctx := Context(c)
	markup := s.mainMenuMarkup(ctx)

	if s.confirmationAnimation != "" {
		err := s.send(c, render.View{
			Text:   text,
			Media:  domain.Media{Kind: domain.MediaGIF, FileID: s.confirmationAnimation},
			Markup: markup,
			Plain:  true,
		})
		if err == nil {
			return
		}
		s.log.WarnContext(ctx, "confirmation animation failed", slog.Any("error", err))
	}

	if err := s.send(c, render.View{Text: text, Markup: markup, Plain: true}); err != nil {
		s.log.ErrorContext(ctx, "failed to send order confirmation", slog.Any("error", err))
	}
}

func (s *Set) notifyPartner(ctx context.Context, c telebot.Context, placed *domain.Order) {
	if s.access == nil {
		return
	}
	partner, ok := s.access.PartnerOf(placed.UserID)
	if !ok {
		return
	}

	customer := s.customer(c)
	if err := s.render.Notify(ctx, partner, render.View{Text: presenter.OrderNotification(customer, *placed)}); err != nil {
		s.log.WarnContext(ctx, "failed to notify partner",
			slog.Int64("order_id", placed.ID),
			slog.Int64("partner_id", partner),
			slog.Any("error", err),
		)
	}
}

func (s *Set) customer(c telebot.Context) domain.User {
	if u := CurrentUser(c); u != nil {
		return *u
	}
	if u, err := s.Users.Get(Context(c), senderID(c)); err == nil {
		return *u
	}
	customer := domain.User{UserID: senderID(c)}
	if tg := c.Sender(); tg != nil {
		customer.Username = tg.Username
		customer.FirstName = tg.FirstName
	}
	return customer
}

// OrderSpecialMenu starts an order of the broadcast special menu.
func (s *Set) OrderSpecialMenu(c telebot.Context, a callback.OrderSpecialMenu) error {
	ctx := Context(c)

	menu, err := s.Catalog.SpecialMenu(ctx, a.MenuID)
	if errors.Is(err, catalog.ErrNotFound) || (err == nil && !menu.IsActive) {
		return s.alert(c, s.tr("special_order.unavailable"))
	}
	if err != nil {
		return err
	}

	if err := s.fsm.SetState(ctx, senderID(c), state.SpecialOrderComment{MenuID: menu.ID}); err != nil {
		return err
	}

	_ = s.toast(c, "")
	return s.send(c, render.View{
		Text:   s.tr("special_order.prompt"),
		Markup: s.kb.Cancel(callback.CancelSpecialOrder{}),
		Plain:  true,
	})
}

// SpecialOrderComment forwards the comment to every admin.
func (s *Set) SpecialOrderComment(c telebot.Context, st state.SpecialOrderComment) error {
	ctx := Context(c)
	userID := senderID(c)

	comment := strings.TrimSpace(c.Text())
	if comment == "" {
		return s.send(c, render.View{
			Text:   s.tr("special_order.prompt"),
			Markup: s.kb.Cancel(callback.CancelSpecialOrder{}),
			Plain:  true,
		})
	}

	markdown, plain := presenter.SpecialOrderNotice(s.customer(c), comment)
	for _, admin := range s.admins() {
		if err := s.render.Notify(ctx, admin, render.View{Text: markdown}); err != nil {
			if err = s.render.Notify(ctx, admin, render.View{Text: plain, Plain: true}); err != nil {
				s.log.WarnContext(ctx, "failed to forward special order",
					slog.Int64("admin_id", admin),
					slog.Int64("menu_id", st.MenuID),
					slog.Any("error", err),
				)
			}
		}
	}

	if err := s.fsm.ClearState(ctx, userID, state.FamilyOrder); err != nil {
		return err
	}

	s.confirm(c, presenter.SpecialOrderConfirmation)
	return nil
}

func (s *Set) admins() []int64 {
	if s.access == nil {
		return nil
	}
	return s.access.Admins()
}
