package handlers

import (
	"errors"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/bot/callback"
	"github.com/Proton-105/lovemenu-bot/internal/bot/render"
	"github.com/Proton-105/lovemenu-bot/internal/cart"
	"github.com/Proton-105/lovemenu-bot/internal/catalog"
	"github.com/Proton-105/lovemenu-bot/internal/dateidea"
	"github.com/Proton-105/lovemenu-bot/internal/domain"
	"github.com/Proton-105/lovemenu-bot/internal/presenter"
	"github.com/Proton-105/lovemenu-bot/internal/state"
)

func (s *Set) registerCatalog(r Registrar) {
	r.Action(callback.KindCategory, On(func(c telebot.Context, a callback.ShowCategory) error {
		return s.showCategory(c, a.CategoryID)
	}))
	r.Action(callback.KindSubcategory, On(func(c telebot.Context, a callback.ShowSubcategory) error {
		return s.showSubcategory(c, a.SubcategoryID)
	}))
	r.Action(callback.KindBackToSubcategory, On(func(c telebot.Context, a callback.BackToSubcategory) error {
		return s.showCategory(c, a.CategoryID)
	}))
	r.Action(callback.KindGallery, On(s.GalleryPage))
	r.Action(callback.KindGalleryInfo, On(func(c telebot.Context, _ callback.GalleryInfo) error {
		return s.toast(c, "")
	}))
	r.Action(callback.KindAddToCart, On(s.AddToCart))
	r.Action(callback.KindSpin, On(s.Spin))
	r.Action(callback.KindAddIdea, On(s.AddIdea))

	r.Step(state.StateCustomText, AtStep(s.CustomText))
}

func (s *Set) showCategory(c telebot.Context, categoryID int64) error {
	ctx := Context(c)

	category, err := s.Catalog.Category(ctx, categoryID)
	if errors.Is(err, catalog.ErrNotFound) {
		return s.problem(c, s.tr("catalog.category_not_found"))
	}
	if err != nil {
		return err
	}

	subs, err := s.Catalog.Subcategories(ctx, category.ID)
	if err != nil {
		return err
	}

	_ = s.toast(c, "")
	return s.show(c, render.View{
		Text:   "*" + category.Label() + "*\n\n" + s.tr("catalog.choose_subcategory"),
		Markup: s.kb.Subcategories(subs),
	})
}

func (s *Set) showSubcategory(c telebot.Context, subcategoryID int64) error {
	ctx := Context(c)

	sub, err := s.Catalog.Subcategory(ctx, subcategoryID)
	if errors.Is(err, catalog.ErrNotFound) {
		return s.problem(c, s.tr("catalog.subcategory_not_found"))
	}
	if err != nil {
		return err
	}

	if sub.IsCustom {
		if err := s.fsm.SetState(ctx, senderID(c), state.CustomText{CategoryID: sub.CategoryID, SubcategoryID: sub.ID}); err != nil {
			return err
		}
		_ = s.toast(c, "")
		return s.show(c, render.View{
			Text:   s.tr("catalog.custom_prompt"),
			Markup: s.kb.Cancel(callback.CancelForm{}),
			Plain:  true,
		})
	}

	items, err := s.Catalog.Items(ctx, sub.ID)
	if err != nil {
		return err
	}

	_ = s.toast(c, "")

	switch len(items) {
	case 0:
		return s.show(c, render.View{
			Text:   s.tr("catalog.empty"),
			Markup: s.kb.BackHome(sub.CategoryID),
			Plain:  true,
		})
	case 1:
		return s.showItem(c, items[0], sub.ID, 0, 1)
	default:
		return s.showItem(c, items[0], sub.ID, 0, len(items))
	}
}

// GalleryPage moves through the items of a subcategory. The index is
// clamped, so stale buttons never leave the gallery.
func (s *Set) GalleryPage(c telebot.Context, a callback.GalleryPage) error {
	ctx := Context(c)

	items, err := s.Catalog.Items(ctx, a.SubcategoryID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return s.alert(c, s.tr("catalog.empty"))
	}

	index := catalog.GalleryIndex(a.Index, len(items))
	_ = s.toast(c, "")
	return s.showItem(c, items[index], a.SubcategoryID, index, len(items))
}

func (s *Set) showItem(c telebot.Context, item domain.Item, subcategoryID int64, index, total int) error {
	ctx := Context(c)

	category, err := s.Catalog.Category(ctx, item.CategoryID)
	if err != nil {
		return err
	}

	var currency *domain.Currency
	if item.CurrencyID != nil {
		if currency, err = s.Catalog.Currency(ctx, *item.CurrencyID); err != nil && !errors.Is(err, catalog.ErrNotFound) {
			return err
		}
	}

	markup := s.kb.ItemCard(item)
	if total > 1 {
		markup = s.kb.Gallery(item, subcategoryID, index, total)
	}

	return s.show(c, render.View{
		Text:   presenter.ItemCard(item, *category, currency),
		Media:  item.Media,
		Markup: markup,
	})
}

func (s *Set) AddToCart(c telebot.Context, a callback.AddToCart) error {
	_, err := s.Cart.AddItem(Context(c), senderID(c), a.ItemID)
	if errors.Is(err, catalog.ErrNotFound) {
		return s.alert(c, s.tr("catalog.item_not_found"))
	}
	if err != nil {
		return err
	}
	return s.toast(c, s.tr("catalog.added"))
}

// Spin picks a random date idea for the roulette item.
func (s *Set) Spin(c telebot.Context, a callback.Spin) error {
	item, err := s.Catalog.Item(Context(c), a.ItemID)
	if errors.Is(err, catalog.ErrNotFound) {
		return s.alert(c, s.tr("catalog.item_not_found"))
	}
	if err != nil {
		return err
	}

	index, idea := s.Ideas.Random()
	_ = s.toast(c, s.tr("catalog.spun"))
	return s.show(c, render.View{
		Text:   presenter.RandomIdea(*item, idea),
		Media:  item.Media,
		Markup: s.kb.RandomIdea(*item, index),
	})
}

func (s *Set) AddIdea(c telebot.Context, a callback.AddIdea) error {
	idea, ok := dateidea.Idea(a.Idea)
	if !ok {
		return s.alert(c, s.tr("catalog.item_not_found"))
	}

	_, err := s.Cart.AddIdea(Context(c), senderID(c), a.ItemID, idea)
	if errors.Is(err, catalog.ErrNotFound) {
		return s.alert(c, s.tr("catalog.item_not_found"))
	}
	if err != nil {
		return err
	}
	return s.toast(c, presenter.Truncate(s.trf("catalog.idea_added", idea), 200))
}

// CustomText turns the next message into a free-text cart line. Menu
// buttons pressed instead leave the step and are handled as usual.
func (s *Set) CustomText(c telebot.Context, st state.CustomText) error {
	ctx := Context(c)
	userID := senderID(c)
	text := strings.TrimSpace(c.Text())

	if text != "" && s.isMenuText(c, text) {
		if err := s.fsm.ClearState(ctx, userID, state.FamilyOrder); err != nil {
			return err
		}
		return s.Vocabulary(c)
	}

	_, err := s.Cart.AddCustom(ctx, userID, st.CategoryID, text)
	switch {
	case errors.Is(err, cart.ErrEmptyText):
		return s.send(c, render.View{
			Text:   s.tr("catalog.custom_empty"),
			Markup: s.kb.Cancel(callback.CancelForm{}),
			Plain:  true,
		})
	case errors.Is(err, catalog.ErrNotFound):
		if clearErr := s.fsm.ClearState(ctx, userID, state.FamilyOrder); clearErr != nil {
			return clearErr
		}
		return s.problem(c, s.tr("catalog.category_not_found"))
	case err != nil:
		return err
	}

	if err := s.fsm.ClearState(ctx, userID, state.FamilyOrder); err != nil {
		return err
	}

	return s.send(c, render.View{
		Text:   s.tr("catalog.custom_added"),
		Markup: s.kb.CartShortcut(),
		Plain:  true,
	})
}

func (s *Set) isMenuText(c telebot.Context, text string) bool {
	ctx := Context(c)
	if text == s.tr("main_menu.cart") || text == s.tr("main_menu.account") {
		return true
	}
	if _, ok, err := s.Catalog.MatchCategory(ctx, text); err == nil && ok {
		return true
	}
	if _, ok, err := s.Catalog.MatchSubcategory(ctx, text); err == nil && ok {
		return true
	}
	return false
}
