package handlers

import (
	"context"
	"errors"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/bot/callback"
	"github.com/Proton-105/lovemenu-bot/internal/bot/render"
	"github.com/Proton-105/lovemenu-bot/internal/domain"
	"github.com/Proton-105/lovemenu-bot/internal/order"
	"github.com/Proton-105/lovemenu-bot/internal/presenter"
	"github.com/Proton-105/lovemenu-bot/internal/state"
)

func (s *Set) registerAdmin(r Registrar) {
	admin := func(kind callback.Kind, h ActionHandler) {
		r.Action(kind, s.adminOnly(h))
	}

	admin(callback.KindAdminPanel, On(func(c telebot.Context, _ callback.AdminPanel) error { return s.AdminPanel(c) }))
	admin(callback.KindAdminOrders, On(func(c telebot.Context, _ callback.AdminOrders) error { return s.showOrders(c) }))
	admin(callback.KindAdminOrder, On(s.AdminOrder))
	admin(callback.KindAdminOrderPay, On(s.AdminOrderPay))

	admin(callback.KindAdminAddItem, On(func(c telebot.Context, _ callback.AdminAddItem) error { return s.startAddItem(c) }))
	admin(callback.KindAdminPickCategory, On(s.AdminPickCategory))
	admin(callback.KindAdminPickSubcategory, On(s.AdminPickSubcategory))
	admin(callback.KindAdminPickCurrency, On(s.AdminPickCurrency))

	admin(callback.KindAdminEditItem, On(func(c telebot.Context, _ callback.AdminEditItem) error { return s.startEditItem(c) }))
	admin(callback.KindAdminEditCategory, On(s.AdminEditCategory))
	admin(callback.KindAdminEditSelect, On(s.AdminEditSelect))
	admin(callback.KindAdminEditMedia, On(s.AdminEditMedia))
	admin(callback.KindAdminBack, On(s.AdminBack))

	admin(callback.KindAdminPayDebt, On(func(c telebot.Context, _ callback.AdminPayDebt) error { return s.startPayDebt(c) }))
	admin(callback.KindAdminDebtor, On(s.AdminDebtor))
	admin(callback.KindAdminDebtCurrency, On(s.AdminDebtCurrency))

	admin(callback.KindAdminSpecialMenu, On(func(c telebot.Context, _ callback.AdminSpecialMenu) error { return s.startSpecialMenu(c) }))
	admin(callback.KindAdminSpecialKisses, On(s.AdminSpecialKisses))
	admin(callback.KindAdminSpecialGift, On(s.AdminSpecialGift))
	admin(callback.KindAdminSpecialSend, On(s.AdminSpecialSend))

	step := func(st state.State, h StepHandler) {
		r.Step(st, s.adminStep(h))
	}

	step(state.StateAddItemCategory, AtStep(s.AddItemCategory))
	step(state.StateAddItemSubcategory, AtStep(s.AddItemSubcategory))
	step(state.StateAddItemTitle, AtStep(s.AddItemTitle))
	step(state.StateAddItemDescription, AtStep(s.AddItemDescription))
	step(state.StateAddItemMedia, AtStep(s.AddItemMedia))
	step(state.StateAddItemPrice, AtStep(s.AddItemPrice))
	step(state.StateAddItemCurrency, AtStep(s.AddItemCurrency))
	step(state.StateEditItemMedia, AtStep(s.EditItemMedia))

	step(state.StateDebtAmount, AtStep(s.DebtAmount))

	step(state.StateSpecialMenuMedia, AtStep(s.SpecialMenuMedia))
	step(state.StateSpecialMenuDescription, AtStep(s.SpecialMenuDescription))
	step(state.StateSpecialMenuPrice, AtStep(s.SpecialMenuPrice))
}

// adminOnly rejects button presses from anybody but the configured admins.
func (s *Set) adminOnly(h ActionHandler) ActionHandler {
	return func(c telebot.Context, a callback.Action) error {
		if !s.isAdmin(c) {
			return s.alert(c, s.tr("admin.denied_short"))
		}
		return h(c, a)
	}
}

// adminStep drops an admin wizard left behind by a user who lost access.
func (s *Set) adminStep(h StepHandler) StepHandler {
	return func(c telebot.Context, st *state.UserState) error {
		if !s.isAdmin(c) {
			if err := s.fsm.ClearState(Context(c), senderID(c), st.Family); err != nil {
				return err
			}
			return s.Vocabulary(c)
		}
		return h(c, st)
	}
}

var adminFamilies = []state.Family{state.FamilyItem, state.FamilySpecialMenu, state.FamilyDebt}

// startWizard opens an admin wizard at step, dropping any other admin wizard
// the user left unfinished.
func (s *Set) startWizard(ctx context.Context, userID int64, step state.Step) error {
	for _, family := range adminFamilies {
		if family == step.Family() {
			continue
		}
		if err := s.fsm.ClearState(ctx, userID, family); err != nil {
			return err
		}
	}
	return s.fsm.SetState(ctx, userID, step)
}

// pending returns the stored step of family when it has type S.
func pending[S state.Step](ctx context.Context, fsm state.StateMachine, userID int64, family state.Family) (S, bool, error) {
	var zero S

	st, err := fsm.GetState(ctx, userID, family)
	if errors.Is(err, state.ErrStateNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	if st == nil {
		return zero, false, nil
	}

	step, ok := st.Step.(S)
	return step, ok, nil
}

// advance moves the wizard on, reporting a stale button press instead of
// failing when the transition is not allowed from the stored step.
func (s *Set) advance(c telebot.Context, step state.Step) (bool, error) {
	err := s.fsm.TransitionTo(Context(c), senderID(c), step)
	if errors.Is(err, state.ErrInvalidTransition) {
		return false, s.expired(c)
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Set) expired(c telebot.Context) error {
	return s.problem(c, s.tr("admin.expired"))
}

// AdminCommand opens the admin panel.
func (s *Set) AdminCommand(c telebot.Context) error {
	if !s.isAdmin(c) {
		return s.send(c, render.View{Text: s.tr("admin.denied"), Plain: true})
	}
	return s.send(c, render.View{Text: s.tr("admin.panel"), Markup: s.kb.AdminPanel(), Plain: true})
}

// AdminPanel shows the panel and abandons the admin wizards in progress.
func (s *Set) AdminPanel(c telebot.Context) error {
	ctx := Context(c)
	for _, family := range adminFamilies {
		if err := s.fsm.ClearState(ctx, senderID(c), family); err != nil {
			return err
		}
	}

	_ = s.toast(c, "")
	return s.show(c, render.View{Text: s.tr("admin.panel"), Markup: s.kb.AdminPanel(), Plain: true})
}

func (s *Set) showOrders(c telebot.Context) error {
	ctx := Context(c)

	orders, err := s.Orders.List(ctx, order.DefaultListLimit)
	if err != nil {
		return err
	}

	_ = s.toast(c, "")
	if len(orders) == 0 {
		return s.show(c, render.View{Text: s.tr("admin_orders.empty"), Markup: s.kb.AdminPanel(), Plain: true})
	}

	users, err := s.Users.All(ctx)
	if err != nil {
		return err
	}
	byID := make(map[int64]domain.User, len(users))
	for _, u := range users {
		byID[u.UserID] = u
	}

	return s.show(c, render.View{
		Text:   presenter.Orders(orders, byID),
		Markup: s.kb.AdminOrders(orders),
	})
}

// AdminOrder shows a single order with its lines.
func (s *Set) AdminOrder(c telebot.Context, a callback.AdminOrder) error {
	ctx := Context(c)

	o, err := s.Orders.Get(ctx, a.OrderID)
	if errors.Is(err, order.ErrNotFound) {
		return s.alert(c, s.tr("admin_orders.not_found"))
	}
	if err != nil {
		return err
	}

	customer := domain.User{UserID: o.UserID}
	if u, err := s.Users.Get(ctx, o.UserID); err == nil {
		customer = *u
	} else {
		s.log.DebugContext(ctx, "order customer not found", slog.Int64("user_id", o.UserID), slog.Any("error", err))
	}

	currencies, err := s.Catalog.Currencies(ctx)
	if err != nil {
		return err
	}

	_ = s.toast(c, "")
	return s.show(c, render.View{
		Text:   presenter.OrderDetail(*o, customer, presenter.NewCurrencies(currencies)),
		Markup: s.kb.AdminOrder(o.ID),
	})
}

// AdminOrderPay starts a debt payment for the customer of an order.
func (s *Set) AdminOrderPay(c telebot.Context, a callback.AdminOrderPay) error {
	o, err := s.Orders.Get(Context(c), a.OrderID)
	if errors.Is(err, order.ErrNotFound) {
		return s.alert(c, s.tr("admin_orders.not_found"))
	}
	if err != nil {
		return err
	}

	orderID := o.ID
	return s.selectDebtor(c, o.UserID, &orderID)
}
