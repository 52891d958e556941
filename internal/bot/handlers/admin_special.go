package handlers

import (
	"errors"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/bot/callback"
	"github.com/Proton-105/lovemenu-bot/internal/bot/render"
	"github.com/Proton-105/lovemenu-bot/internal/catalog"
	"github.com/Proton-105/lovemenu-bot/internal/domain"
	"github.com/Proton-105/lovemenu-bot/internal/presenter"
	"github.com/Proton-105/lovemenu-bot/internal/state"
)

func (s *Set) startSpecialMenu(c telebot.Context) error {
	if err := s.startWizard(Context(c), senderID(c), state.SpecialMenuMedia{}); err != nil {
		return err
	}
	return s.prompt(c, "admin_special.send_media")
}

// SpecialMenuMedia accepts a photo or a video.
func (s *Set) SpecialMenuMedia(c telebot.Context, _ state.SpecialMenuMedia) error {
	media, ok := render.MediaOf(c.Message())
	if !ok || media.Kind == domain.MediaGIF {
		return s.prompt(c, "admin_special.media_expected")
	}

	moved, err := s.advance(c, state.SpecialMenuDescription{Media: media})
	if !moved || err != nil {
		return err
	}
	return s.prompt(c, "admin_special.enter_description")
}

// SpecialMenuDescription takes the caption; an empty one gets the default text.
func (s *Set) SpecialMenuDescription(c telebot.Context, st state.SpecialMenuDescription) error {
	description := strings.TrimSpace(c.Text())
	if description == "" {
		description = s.tr("admin_special.default_text")
	}

	moved, err := s.advance(c, state.SpecialMenuCurrency{Media: st.Media, Description: description})
	if !moved || err != nil {
		return err
	}

	return s.send(c, render.View{
		Text:   s.tr("admin_special.choose_price"),
		Markup: s.kb.SpecialMenuCurrency(),
		Plain:  true,
	})
}

// AdminSpecialKisses prices the menu in the default currency.
func (s *Set) AdminSpecialKisses(c telebot.Context, _ callback.AdminSpecialKisses) error {
	ctx := Context(c)

	current, ok, err := pending[state.SpecialMenuCurrency](ctx, s.fsm, senderID(c), state.FamilySpecialMenu)
	if err != nil {
		return err
	}
	if !ok {
		return s.alert(c, s.tr("admin_special.expired"))
	}

	currency, err := s.Catalog.DefaultCurrency(ctx)
	if err != nil {
		return err
	}

	moved, err := s.advance(c, state.SpecialMenuPrice{
		Media:       current.Media,
		Description: current.Description,
		CurrencyID:  currency.ID,
	})
	if !moved || err != nil {
		return err
	}
	return s.prompt(c, "admin_special.enter_price")
}

// AdminSpecialGift makes the menu free and goes straight to the preview.
func (s *Set) AdminSpecialGift(c telebot.Context, _ callback.AdminSpecialGift) error {
	current, ok, err := pending[state.SpecialMenuCurrency](Context(c), s.fsm, senderID(c), state.FamilySpecialMenu)
	if err != nil {
		return err
	}
	if !ok {
		return s.alert(c, s.tr("admin_special.expired"))
	}

	_ = s.toast(c, "")
	return s.preview(c, state.SpecialMenuConfirm{Media: current.Media, Description: current.Description})
}

func (s *Set) SpecialMenuPrice(c telebot.Context, st state.SpecialMenuPrice) error {
	price, err := catalog.ParseMenuPrice(c.Text())
	if err != nil {
		return s.prompt(c, "admin_special.invalid_price")
	}

	currencyID := st.CurrencyID
	return s.preview(c, state.SpecialMenuConfirm{
		Media:       st.Media,
		Description: st.Description,
		Price:       price,
		CurrencyID:  &currencyID,
	})
}

func (s *Set) preview(c telebot.Context, confirm state.SpecialMenuConfirm) error {
	ctx := Context(c)

	moved, err := s.advance(c, confirm)
	if !moved || err != nil {
		return err
	}

	draft := confirm.Draft()
	var currency *domain.Currency
	if draft.CurrencyID != nil {
		if currency, err = s.Catalog.Currency(ctx, *draft.CurrencyID); err != nil {
			return err
		}
	}

	return s.send(c, render.View{
		Text:   presenter.SpecialMenuPreview(draft, currency),
		Media:  draft.Media,
		Markup: s.kb.SpecialMenuConfirm(),
	})
}

// AdminSpecialSend publishes the reviewed draft and starts the broadcast.
func (s *Set) AdminSpecialSend(c telebot.Context, _ callback.AdminSpecialSend) error {
	ctx := Context(c)
	adminID := senderID(c)

	current, ok, err := pending[state.SpecialMenuConfirm](ctx, s.fsm, adminID, state.FamilySpecialMenu)
	if err != nil {
		return err
	}
	if !ok {
		return s.alert(c, s.tr("admin_special.expired"))
	}

	menu, err := s.Catalog.PublishSpecialMenu(ctx, current.Draft())
	if errors.Is(err, catalog.ErrInvalidItem) || errors.Is(err, catalog.ErrInvalidPrice) {
		return s.alert(c, s.tr("admin_special.expired"))
	}
	if err != nil {
		return err
	}

	if err := s.fsm.ClearState(ctx, adminID, state.FamilySpecialMenu); err != nil {
		s.log.WarnContext(ctx, "failed to clear special menu draft", slog.Int64("user_id", adminID), slog.Any("error", err))
	}

	if s.Specials == nil {
		s.log.WarnContext(ctx, "special menu published without a dispatcher", slog.Int64("menu_id", menu.ID))
	} else if err := s.Specials.DispatchSpecialMenu(ctx, menu.ID, adminID); err != nil {
		return err
	}

	_ = s.toast(c, "")
	return s.send(c, render.View{
		Text:   s.tr("admin_special.queued"),
		Markup: s.kb.AdminPanel(),
		Plain:  true,
	})
}
