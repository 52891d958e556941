package handlers

import (
	"errors"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/bot/callback"
	"github.com/Proton-105/lovemenu-bot/internal/bot/render"
	"github.com/Proton-105/lovemenu-bot/internal/catalog"
	"github.com/Proton-105/lovemenu-bot/internal/domain"
	"github.com/Proton-105/lovemenu-bot/internal/presenter"
	"github.com/Proton-105/lovemenu-bot/internal/state"
)

const skipCommand = "/skip"

func (s *Set) startAddItem(c telebot.Context) error {
	ctx := Context(c)

	categories, err := s.Catalog.Categories(ctx)
	if err != nil {
		return err
	}

	if err := s.startWizard(ctx, senderID(c), state.AddItemCategory{}); err != nil {
		return err
	}

	_ = s.toast(c, "")
	return s.show(c, render.View{
		Text: s.tr("admin_item.add_choose_category"),
		Markup: s.kb.AdminCategories(categories, func(id int64) callback.Action {
			return callback.AdminPickCategory{CategoryID: id}
		}),
	})
}

func (s *Set) AdminPickCategory(c telebot.Context, a callback.AdminPickCategory) error {
	if _, ok, err := pending[state.AddItemCategory](Context(c), s.fsm, senderID(c), state.FamilyItem); err != nil {
		return err
	} else if !ok {
		return s.expired(c)
	}
	return s.pickCategory(c, a.CategoryID)
}

// AddItemCategory accepts the category typed as a reply button label.
func (s *Set) AddItemCategory(c telebot.Context, _ state.AddItemCategory) error {
	category, ok, err := s.Catalog.MatchCategory(Context(c), c.Text())
	if err != nil {
		return err
	}
	if !ok {
		return s.problem(c, s.tr("admin_item.category_not_found"))
	}
	return s.pickCategory(c, category.ID)
}

// pickCategory skips the subcategory question when the category has only
// custom subcategories or none at all.
func (s *Set) pickCategory(c telebot.Context, categoryID int64) error {
	ctx := Context(c)

	category, err := s.Catalog.Category(ctx, categoryID)
	if errors.Is(err, catalog.ErrNotFound) {
		return s.problem(c, s.tr("admin_item.category_not_found"))
	}
	if err != nil {
		return err
	}

	subs, err := s.Catalog.Subcategories(ctx, category.ID)
	if err != nil {
		return err
	}

	if len(regularSubcategories(subs)) == 0 {
		return s.askTitle(c, state.AddItemTitle{CategoryID: category.ID})
	}

	moved, err := s.advance(c, state.AddItemSubcategory{CategoryID: category.ID})
	if !moved || err != nil {
		return err
	}

	_ = s.toast(c, "")
	return s.show(c, render.View{
		Text:   s.tr("admin_item.choose_subcategory"),
		Markup: s.kb.AdminSubcategories(subs),
		Plain:  true,
	})
}

// AdminPickSubcategory takes a subcategory id; zero means none.
func (s *Set) AdminPickSubcategory(c telebot.Context, a callback.AdminPickSubcategory) error {
	current, ok, err := pending[state.AddItemSubcategory](Context(c), s.fsm, senderID(c), state.FamilyItem)
	if err != nil {
		return err
	}
	if !ok {
		return s.expired(c)
	}
	return s.pickSubcategory(c, current.CategoryID, a.SubcategoryID)
}

// AddItemSubcategory accepts a subcategory name or the "none" label.
func (s *Set) AddItemSubcategory(c telebot.Context, st state.AddItemSubcategory) error {
	text := strings.TrimSpace(c.Text())
	if text == s.tr("admin.no_subcategory") {
		return s.pickSubcategory(c, st.CategoryID, 0)
	}

	subs, err := s.Catalog.Subcategories(Context(c), st.CategoryID)
	if err != nil {
		return err
	}
	for _, sub := range regularSubcategories(subs) {
		if sub.Name == text {
			return s.pickSubcategory(c, st.CategoryID, sub.ID)
		}
	}

	return s.problem(c, s.tr("admin_item.subcategory_not_found"))
}

func (s *Set) pickSubcategory(c telebot.Context, categoryID, subcategoryID int64) error {
	next := state.AddItemTitle{CategoryID: categoryID}
	if subcategoryID == 0 {
		return s.askTitle(c, next)
	}

	sub, err := s.Catalog.Subcategory(Context(c), subcategoryID)
	if errors.Is(err, catalog.ErrNotFound) || (err == nil && (sub.CategoryID != categoryID || sub.IsCustom)) {
		return s.problem(c, s.tr("admin_item.subcategory_not_found"))
	}
	if err != nil {
		return err
	}

	id := sub.ID
	next.SubcategoryID = &id
	return s.askTitle(c, next)
}

func (s *Set) askTitle(c telebot.Context, next state.AddItemTitle) error {
	moved, err := s.advance(c, next)
	if !moved || err != nil {
		return err
	}
	return s.prompt(c, "admin_item.enter_title")
}

func (s *Set) AddItemTitle(c telebot.Context, st state.AddItemTitle) error {
	title := strings.TrimSpace(c.Text())
	if title == "" {
		return s.prompt(c, "admin_item.empty_text")
	}

	moved, err := s.advance(c, state.AddItemDescription{AddItemTitle: st, Title: title})
	if !moved || err != nil {
		return err
	}
	return s.prompt(c, "admin_item.enter_description")
}

func (s *Set) AddItemDescription(c telebot.Context, st state.AddItemDescription) error {
	description := strings.TrimSpace(c.Text())
	if description == "" {
		return s.prompt(c, "admin_item.empty_text")
	}

	moved, err := s.advance(c, state.AddItemMedia{AddItemDescription: st, Description: description})
	if !moved || err != nil {
		return err
	}
	return s.prompt(c, "admin_item.send_media")
}

// AddItemMedia accepts a photo, animation or video, or /skip.
func (s *Set) AddItemMedia(c telebot.Context, st state.AddItemMedia) error {
	var media domain.Media
	if strings.TrimSpace(c.Text()) != skipCommand {
		var ok bool
		if media, ok = render.MediaOf(c.Message()); !ok {
			return s.prompt(c, "admin_item.send_media")
		}
	}

	moved, err := s.advance(c, state.AddItemPrice{AddItemMedia: st, Media: media})
	if !moved || err != nil {
		return err
	}
	return s.prompt(c, "admin_item.enter_price")
}

func (s *Set) AddItemPrice(c telebot.Context, st state.AddItemPrice) error {
	price, err := catalog.ParsePrice(c.Text())
	if err != nil {
		return s.prompt(c, "admin_item.invalid_price")
	}

	moved, err := s.advance(c, state.AddItemCurrency{AddItemPrice: st, Price: price})
	if !moved || err != nil {
		return err
	}

	currencies, err := s.Catalog.Currencies(Context(c))
	if err != nil {
		return err
	}

	return s.send(c, render.View{
		Text:   s.tr("admin_item.choose_currency"),
		Markup: s.kb.AdminCurrencies(currencies),
		Plain:  true,
	})
}

func (s *Set) AdminPickCurrency(c telebot.Context, a callback.AdminPickCurrency) error {
	current, ok, err := pending[state.AddItemCurrency](Context(c), s.fsm, senderID(c), state.FamilyItem)
	if err != nil {
		return err
	}
	if !ok {
		return s.expired(c)
	}

	currency, err := s.Catalog.Currency(Context(c), a.CurrencyID)
	if errors.Is(err, catalog.ErrNotFound) {
		return s.alert(c, s.tr("admin_item.currency_not_found"))
	}
	if err != nil {
		return err
	}

	_ = s.toast(c, "")
	return s.createItem(c, current, *currency)
}

// AddItemCurrency accepts a currency typed by name or label.
func (s *Set) AddItemCurrency(c telebot.Context, st state.AddItemCurrency) error {
	text := strings.TrimSpace(c.Text())

	currencies, err := s.Catalog.Currencies(Context(c))
	if err != nil {
		return err
	}
	for _, currency := range currencies {
		if text == currency.Name || text == currency.Label() || (text != "" && strings.Contains(text, currency.Name)) {
			return s.createItem(c, st, currency)
		}
	}

	return s.problem(c, s.tr("admin_item.currency_not_found"))
}

// createItem stores the draft. The wizard stays on the currency step when
// the catalog rejects it, so another currency can be tried.
func (s *Set) createItem(c telebot.Context, st state.AddItemCurrency, currency domain.Currency) error {
	ctx := Context(c)

	draft := st.Draft()
	id := currency.ID
	draft.CurrencyID = &id

	item, err := s.Catalog.CreateItem(ctx, draft)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidItem) || errors.Is(err, catalog.ErrInvalidPrice) || errors.Is(err, catalog.ErrNotFound) {
			return s.send(c, render.View{Text: s.trf("admin_item.create_failed", err.Error()), Plain: true})
		}
		return err
	}

	if err := s.fsm.ClearState(ctx, senderID(c), state.FamilyItem); err != nil {
		return err
	}

	return s.send(c, render.View{
		Text:   s.trf("admin_item.created", item.Title),
		Markup: s.kb.AdminPanel(),
		Plain:  true,
	})
}

func (s *Set) startEditItem(c telebot.Context) error {
	ctx := Context(c)

	categories, err := s.Catalog.Categories(ctx)
	if err != nil {
		return err
	}

	if err := s.startWizard(ctx, senderID(c), state.EditItemCategory{}); err != nil {
		return err
	}

	_ = s.toast(c, "")
	return s.show(c, render.View{
		Text: s.tr("admin_item.edit_choose_category"),
		Markup: s.kb.AdminCategories(categories, func(id int64) callback.Action {
			return callback.AdminEditCategory{CategoryID: id}
		}),
	})
}

// AdminEditCategory lists the items of a category for editing.
func (s *Set) AdminEditCategory(c telebot.Context, a callback.AdminEditCategory) error {
	ctx := Context(c)

	category, err := s.Catalog.Category(ctx, a.CategoryID)
	if errors.Is(err, catalog.ErrNotFound) {
		return s.alert(c, s.tr("admin_item.category_not_found"))
	}
	if err != nil {
		return err
	}

	items, err := s.Catalog.ItemsByCategory(ctx, category.ID)
	if err != nil {
		return err
	}

	_ = s.toast(c, "")
	if len(items) == 0 {
		return s.show(c, render.View{
			Text:   s.trf("admin_item.no_items", category.Name),
			Markup: s.kb.AdminPanel(),
			Plain:  true,
		})
	}

	moved, err := s.advance(c, state.EditItemSelect{CategoryID: category.ID})
	if !moved || err != nil {
		return err
	}

	return s.show(c, render.View{
		Text:   s.trf("admin_item.choose_item", presenter.EscapeMarkdown(category.Label())),
		Markup: s.kb.AdminItems(items),
	})
}

// AdminEditSelect shows what can be changed on the chosen item.
func (s *Set) AdminEditSelect(c telebot.Context, a callback.AdminEditSelect) error {
	ctx := Context(c)

	item, err := s.Catalog.Item(ctx, a.ItemID)
	if errors.Is(err, catalog.ErrNotFound) {
		return s.alert(c, s.tr("admin_item.item_not_found"))
	}
	if err != nil {
		return err
	}

	moved, err := s.advance(c, state.EditItemMenu{CategoryID: item.CategoryID, ItemID: item.ID})
	if !moved || err != nil {
		return err
	}

	_ = s.toast(c, "")
	return s.showEditMenu(c, *item)
}

func (s *Set) showEditMenu(c telebot.Context, item domain.Item) error {
	ctx := Context(c)

	categoryName := ""
	if category, err := s.Catalog.Category(ctx, item.CategoryID); err == nil {
		categoryName = category.Label()
	}

	subLine := ""
	if item.SubcategoryID != nil {
		if sub, err := s.Catalog.Subcategory(ctx, *item.SubcategoryID); err == nil {
			subLine = s.trf("admin_item.edit_subcategory", sub.Name)
		}
	}

	return s.show(c, render.View{
		Text:   s.trf("admin_item.edit_menu", presenter.EscapeMarkdown(item.Title), presenter.EscapeMarkdown(categoryName), presenter.EscapeMarkdown(subLine)),
		Markup: s.kb.AdminEditMenu(item.ID),
	})
}

// AdminEditMedia asks for the new media of an item.
func (s *Set) AdminEditMedia(c telebot.Context, a callback.AdminEditMedia) error {
	ctx := Context(c)

	item, err := s.Catalog.Item(ctx, a.ItemID)
	if errors.Is(err, catalog.ErrNotFound) {
		return s.alert(c, s.tr("admin_item.item_not_found"))
	}
	if err != nil {
		return err
	}

	moved, err := s.advance(c, state.EditItemMedia{CategoryID: item.CategoryID, ItemID: item.ID})
	if !moved || err != nil {
		return err
	}

	_ = s.toast(c, "")
	return s.send(c, render.View{
		Text:   s.trf("admin_item.send_new_media", item.Title),
		Markup: s.kb.Cancel(callback.AdminCancel{}),
		Plain:  true,
	})
}

// EditItemMedia replaces the media of the item; /skip returns to the item menu.
func (s *Set) EditItemMedia(c telebot.Context, st state.EditItemMedia) error {
	ctx := Context(c)
	back := state.EditItemMenu{CategoryID: st.CategoryID, ItemID: st.ItemID}

	if strings.TrimSpace(c.Text()) == skipCommand {
		item, err := s.Catalog.Item(ctx, st.ItemID)
		if err != nil {
			return err
		}
		if moved, err := s.advance(c, back); !moved || err != nil {
			return err
		}
		return s.showEditMenu(c, *item)
	}

	media, ok := render.MediaOf(c.Message())
	if !ok {
		return s.prompt(c, "admin_item.media_expected")
	}

	item, err := s.Catalog.ReplaceMedia(ctx, st.ItemID, media)
	if errors.Is(err, catalog.ErrNotFound) {
		if err := s.fsm.ClearState(ctx, senderID(c), state.FamilyItem); err != nil {
			return err
		}
		return s.send(c, render.View{Text: s.tr("admin_item.item_not_found"), Markup: s.kb.AdminPanel(), Plain: true})
	}
	if err != nil {
		return err
	}

	if moved, err := s.advance(c, back); !moved || err != nil {
		return err
	}

	if err := s.send(c, render.View{Text: s.trf("admin_item.media_updated", item.Title), Plain: true}); err != nil {
		return err
	}
	return s.showEditMenu(c, *item)
}

// AdminBack walks the edit wizard one screen back.
func (s *Set) AdminBack(c telebot.Context, _ callback.AdminBack) error {
	ctx := Context(c)

	st, err := s.fsm.GetState(ctx, senderID(c), state.FamilyItem)
	if errors.Is(err, state.ErrStateNotFound) {
		return s.AdminPanel(c)
	}
	if err != nil {
		return err
	}

	switch step := st.Step.(type) {
	case state.EditItemMedia:
		return s.AdminEditSelect(c, callback.AdminEditSelect{ItemID: step.ItemID})
	case state.EditItemMenu:
		return s.AdminEditCategory(c, callback.AdminEditCategory{CategoryID: step.CategoryID})
	case state.EditItemSelect:
		return s.startEditItem(c)
	default:
		return s.AdminPanel(c)
	}
}

// prompt sends a wizard question with the cancel button.
func (s *Set) prompt(c telebot.Context, key string) error {
	_ = s.toast(c, "")
	return s.send(c, render.View{
		Text:   s.tr(key),
		Markup: s.kb.Cancel(callback.AdminCancel{}),
		Plain:  true,
	})
}

func regularSubcategories(subs []domain.Subcategory) []domain.Subcategory {
	out := make([]domain.Subcategory, 0, len(subs))
	for _, sub := range subs {
		if !sub.IsCustom {
			out = append(out, sub)
		}
	}
	return out
}
