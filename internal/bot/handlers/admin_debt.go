package handlers

import (
	"errors"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/bot/callback"
	"github.com/Proton-105/lovemenu-bot/internal/bot/render"
	"github.com/Proton-105/lovemenu-bot/internal/ledger"
	"github.com/Proton-105/lovemenu-bot/internal/presenter"
	"github.com/Proton-105/lovemenu-bot/internal/state"
)

func (s *Set) startPayDebt(c telebot.Context) error {
	ctx := Context(c)
	userID := senderID(c)

	debtors, err := s.Ledger.Debtors(ctx)
	if err != nil {
		return err
	}

	_ = s.toast(c, "")
	if len(debtors) == 0 {
		if err := s.fsm.ClearState(ctx, userID, state.FamilyDebt); err != nil {
			return err
		}
		return s.show(c, render.View{Text: s.tr("admin_debt.no_debtors"), Markup: s.kb.AdminPanel(), Plain: true})
	}

	if err := s.startWizard(ctx, userID, state.DebtUser{}); err != nil {
		return err
	}

	return s.show(c, render.View{
		Text:   presenter.Debtors(debtors),
		Markup: s.kb.Debtors(debtors),
		Plain:  true,
	})
}

// AdminDebtor shows the debts of the chosen user.
func (s *Set) AdminDebtor(c telebot.Context, a callback.AdminDebtor) error {
	return s.selectDebtor(c, a.UserID, nil)
}

// selectDebtor snapshots the user's debts so the currency buttons can refer
// to them by index.
func (s *Set) selectDebtor(c telebot.Context, userID int64, orderID *int64) error {
	ctx := Context(c)

	u, err := s.Ledger.User(ctx, userID)
	if errors.Is(err, ledger.ErrUserNotFound) {
		return s.problem(c, s.tr("admin_debt.user_not_found"))
	}
	if err != nil {
		return err
	}

	lines, err := s.Ledger.Debts(ctx, userID)
	if err != nil {
		return err
	}

	_ = s.toast(c, "")
	if len(lines) == 0 {
		if err := s.fsm.ClearState(ctx, senderID(c), state.FamilyDebt); err != nil {
			return err
		}
		return s.show(c, render.View{
			Text:   s.trf("admin_debt.no_debts", u.DisplayName()),
			Markup: s.kb.AdminPanel(),
			Plain:  true,
		})
	}

	options := make([]state.DebtOption, 0, len(lines))
	for _, l := range lines {
		options = append(options, state.DebtOption{
			CurrencyID: l.Currency.ID,
			Name:       l.Currency.Name,
			Emoji:      l.Currency.Emoji,
			Amount:     l.Amount,
		})
	}

	step := state.DebtCurrency{
		TargetUserID: u.UserID,
		Username:     u.DisplayName(),
		Debts:        options,
		OrderID:      orderID,
	}
	if err := s.fsm.TransitionTo(ctx, senderID(c), step); err != nil {
		return err
	}

	return s.show(c, render.View{
		Text:   presenter.UserDebts(*u, lines),
		Markup: s.kb.DebtCurrencies(u.UserID, options),
		Plain:  true,
	})
}

// AdminDebtCurrency picks one debt of the snapshot and asks for the amount.
func (s *Set) AdminDebtCurrency(c telebot.Context, a callback.AdminDebtCurrency) error {
	ctx := Context(c)

	current, ok, err := pending[state.DebtCurrency](ctx, s.fsm, senderID(c), state.FamilyDebt)
	if err != nil {
		return err
	}
	if !ok || current.TargetUserID != a.UserID {
		return s.expired(c)
	}

	if a.Index < 0 || a.Index >= len(current.Debts) {
		return s.alert(c, s.trf("admin_debt.invalid_index", a.Index))
	}

	moved, err := s.advance(c, state.DebtAmount{
		TargetUserID: current.TargetUserID,
		Username:     current.Username,
		Currency:     current.Debts[a.Index],
		OrderID:      current.OrderID,
	})
	if !moved || err != nil {
		return err
	}

	_ = s.toast(c, "")
	return s.send(c, render.View{
		Text:   s.tr("admin_debt.enter_amount"),
		Markup: s.kb.Cancel(callback.AdminCancel{}),
		Plain:  true,
	})
}

// DebtAmount subtracts the entered amount from the chosen debt.
func (s *Set) DebtAmount(c telebot.Context, st state.DebtAmount) error {
	ctx := Context(c)
	adminID := senderID(c)

	amount, err := ledger.ParseAmount(strings.TrimSpace(c.Text()))
	if err != nil {
		return s.send(c, render.View{
			Text:   s.tr("admin_debt.invalid_amount"),
			Markup: s.kb.Cancel(callback.AdminCancel{}),
			Plain:  true,
		})
	}

	payment, err := s.Ledger.Pay(ctx, st.TargetUserID, st.Currency.CurrencyID, amount, st.OrderID)
	if errors.Is(err, ledger.ErrNoDebt) {
		if err := s.fsm.ClearState(ctx, adminID, state.FamilyDebt); err != nil {
			return err
		}
		return s.send(c, render.View{Text: s.tr("admin_debt.not_found"), Markup: s.kb.AdminPanel(), Plain: true})
	}
	if err != nil {
		return err
	}

	if err := s.fsm.ClearState(ctx, adminID, state.FamilyDebt); err != nil {
		return err
	}

	return s.send(c, render.View{
		Text:   s.trf("admin_debt.paid", st.Username, presenter.Amount(payment.Remaining, &payment.Currency)),
		Markup: s.kb.AdminPanel(),
		Plain:  true,
	})
}
