package keyboard

import (
	"fmt"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/bot/callback"
	"github.com/Proton-105/lovemenu-bot/internal/catalog"
	"github.com/Proton-105/lovemenu-bot/internal/domain"
	"github.com/Proton-105/lovemenu-bot/internal/i18n"
	"github.com/Proton-105/lovemenu-bot/internal/ledger"
	"github.com/Proton-105/lovemenu-bot/internal/presenter"
	"github.com/Proton-105/lovemenu-bot/internal/state"
)

// Builder creates the inline keyboards of every screen.
type Builder struct {
	log *slog.Logger
	t   i18n.Translator
}

// NewBuilder returns a new Builder instance.
func NewBuilder(log *slog.Logger, t i18n.Translator) *Builder {
	return &Builder{log: log, t: t}
}

// Translator exposes the translator used for labels.
func (b *Builder) Translator() i18n.Translator {
	return b.t
}

func (b *Builder) text(key string) string {
	if b.t == nil {
		return key
	}
	return b.t.T(key)
}

func (b *Builder) build(kb *InlineKeyboardBuilder) *telebot.ReplyMarkup {
	markup, err := kb.Build()
	if err != nil {
		b.log.Error("failed to build keyboard", slog.Any("error", err))
		return nil
	}
	return markup
}

func (b *Builder) backHome(categoryID int64) []InlineButton {
	return []InlineButton{
		Button(b.text("common.back"), callback.BackToSubcategory{CategoryID: categoryID}),
		Button(b.text("common.home"), callback.BackToMenu{}),
	}
}

// BackToMenu is a single "back to menu" button.
func (b *Builder) BackToMenu() *telebot.ReplyMarkup {
	return b.build(NewInlineKeyboard().AddRow(Button(b.text("common.back_to_menu"), callback.BackToMenu{})))
}

// Cancel is a single cancel button sending action.
func (b *Builder) Cancel(action callback.Action) *telebot.ReplyMarkup {
	return b.build(NewInlineKeyboard().AddRow(Button(b.text("common.cancel"), action)))
}

// Subcategories lists the subcategories of a category.
func (b *Builder) Subcategories(subs []domain.Subcategory) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	for _, sub := range subs {
		kb.AddRow(Button(sub.Name, callback.ShowSubcategory{SubcategoryID: sub.ID}))
	}
	kb.AddRow(Button(b.text("common.back_to_menu"), callback.BackToMenu{}))
	return b.build(kb)
}

func (b *Builder) primary(item domain.Item) InlineButton {
	if catalog.IsRandomDate(item) {
		return Button(b.text("catalog.spin"), callback.Spin{ItemID: item.ID})
	}
	return Button(b.text("catalog.add_to_cart"), callback.AddToCart{ItemID: item.ID})
}

// ItemCard is shown under a single item.
func (b *Builder) ItemCard(item domain.Item) *telebot.ReplyMarkup {
	return b.build(NewInlineKeyboard().
		AddRow(b.primary(item)).
		AddRow(Button(b.text("catalog.go_to_cart"), callback.ShowCart{})).
		AddRow(b.backHome(item.CategoryID)...))
}

// Gallery is an item card with navigation over the subcategory items.
func (b *Builder) Gallery(item domain.Item, subcategoryID int64, index, total int) *telebot.ReplyMarkup {
	return b.build(NewInlineKeyboard().
		AddRow(GalleryButtons(b.t, subcategoryID, index, total)...).
		AddRow(b.primary(item)).
		AddRow(Button(b.text("catalog.go_to_cart"), callback.ShowCart{})).
		AddRow(b.backHome(item.CategoryID)...))
}

// RandomIdea follows a roulette spin.
func (b *Builder) RandomIdea(item domain.Item, idea int) *telebot.ReplyMarkup {
	return b.build(NewInlineKeyboard().
		AddRow(Button(b.text("catalog.add_to_cart"), callback.AddIdea{ItemID: item.ID, Idea: idea})).
		AddRow(Button(b.text("catalog.spin_again"), callback.Spin{ItemID: item.ID})).
		AddRow(b.backHome(item.CategoryID)...))
}

// Cart lists a remove button per line plus clear and checkout.
func (b *Builder) Cart(lines []domain.CartItem) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	if len(lines) == 0 {
		return b.BackToMenu()
	}
	for _, line := range lines {
		kb.AddRow(Button(presenter.CartButton(line), callback.RemoveCartLine{LineID: line.ID}))
	}
	kb.AddRow(
		Button(b.text("cart.clear"), callback.ClearCart{}),
		Button(b.text("cart.checkout"), callback.Checkout{}),
	)
	kb.AddRow(Button(b.text("common.back_to_menu"), callback.BackToMenu{}))
	return b.build(kb)
}

// SpecialMenuOffer is attached to the broadcast special menu.
func (b *Builder) SpecialMenuOffer(menuID int64) *telebot.ReplyMarkup {
	return b.build(NewInlineKeyboard().
		AddRow(Button(b.text("special_order.button"), callback.OrderSpecialMenu{MenuID: menuID})).
		AddRow(Button(b.text("admin.regular_menu"), callback.BackToMenu{})))
}

// AdminPanel is the admin entry menu.
func (b *Builder) AdminPanel() *telebot.ReplyMarkup {
	return b.build(NewInlineKeyboard().
		AddRow(
			Button(b.text("admin.add_item"), callback.AdminAddItem{}),
			Button(b.text("admin.edit_item"), callback.AdminEditItem{}),
		).
		AddRow(
			Button(b.text("admin.orders"), callback.AdminOrders{}),
			Button(b.text("admin.pay_debt"), callback.AdminPayDebt{}),
		).
		AddRow(Button(b.text("admin.special_menu"), callback.AdminSpecialMenu{})).
		AddRow(Button(b.text("admin.regular_menu"), callback.BackToMenu{})))
}

// AdminCategories lists categories; pick maps a category id to the action sent.
func (b *Builder) AdminCategories(categories []domain.Category, pick func(id int64) callback.Action) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	for _, c := range categories {
		kb.AddRow(Button(c.Label(), pick(c.ID)))
	}
	kb.AddRow(Button(b.text("common.cancel"), callback.AdminCancel{}))
	return b.build(kb)
}

// AdminSubcategories offers the subcategories of a category and a "none" choice.
func (b *Builder) AdminSubcategories(subs []domain.Subcategory) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	for _, sub := range subs {
		if sub.IsCustom {
			continue
		}
		kb.AddRow(Button(sub.Name, callback.AdminPickSubcategory{SubcategoryID: sub.ID}))
	}
	kb.AddRow(Button(b.text("admin.no_subcategory"), callback.AdminPickSubcategory{}))
	kb.AddRow(Button(b.text("common.cancel"), callback.AdminCancel{}))
	return b.build(kb)
}

// AdminCurrencies lists every currency.
func (b *Builder) AdminCurrencies(currencies []domain.Currency) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	for _, c := range currencies {
		kb.AddRow(Button(c.Label(), callback.AdminPickCurrency{CurrencyID: c.ID}))
	}
	kb.AddRow(Button(b.text("common.cancel"), callback.AdminCancel{}))
	return b.build(kb)
}

// AdminItems lists the items of a category, marking those with media.
func (b *Builder) AdminItems(items []domain.Item) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	for _, item := range items {
		mark := " ❌"
		if !item.Media.IsZero() {
			mark = " 📷"
		}
		kb.AddRow(Button(presenter.Truncate(item.Title, 40)+mark, callback.AdminEditSelect{ItemID: item.ID}))
	}
	kb.AddRow(Button(b.text("common.back"), callback.AdminBack{}))
	kb.AddRow(Button(b.text("common.cancel"), callback.AdminCancel{}))
	return b.build(kb)
}

// AdminEditMenu lists what can be changed on an item.
func (b *Builder) AdminEditMenu(itemID int64) *telebot.ReplyMarkup {
	return b.build(NewInlineKeyboard().
		AddRow(Button(b.text("admin_item.change_media"), callback.AdminEditMedia{ItemID: itemID})).
		AddRow(Button(b.text("common.back"), callback.AdminBack{})).
		AddRow(Button(b.text("common.cancel"), callback.AdminCancel{})))
}

// SpecialMenuCurrency offers kisses or gift pricing.
func (b *Builder) SpecialMenuCurrency() *telebot.ReplyMarkup {
	return b.build(NewInlineKeyboard().
		AddRow(Button(b.text("admin_special.kisses"), callback.AdminSpecialKisses{})).
		AddRow(Button(b.text("admin_special.gift"), callback.AdminSpecialGift{})).
		AddRow(Button(b.text("common.cancel"), callback.AdminCancel{})))
}

// SpecialMenuConfirm is shown under the special menu preview.
func (b *Builder) SpecialMenuConfirm() *telebot.ReplyMarkup {
	return b.build(NewInlineKeyboard().
		AddRow(Button(b.text("admin_special.send"), callback.AdminSpecialSend{})).
		AddRow(Button(b.text("common.cancel"), callback.AdminCancel{})))
}

// AdminOrders lists order detail buttons.
func (b *Builder) AdminOrders(orders []domain.Order) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	for _, o := range orders {
		kb.AddRow(Button(presenter.OrderButton(o), callback.AdminOrder{OrderID: o.ID}))
	}
	kb.AddRow(Button(b.text("admin.to_admin_menu"), callback.AdminPanel{}))
	return b.build(kb)
}

// AdminOrder is shown under a single order.
func (b *Builder) AdminOrder(orderID int64) *telebot.ReplyMarkup {
	return b.build(NewInlineKeyboard().
		AddRow(Button(b.text("admin_orders.pay_button"), callback.AdminOrderPay{OrderID: orderID})).
		AddRow(Button(b.text("admin.to_orders"), callback.AdminOrders{})).
		AddRow(Button(b.text("admin.to_admin_menu"), callback.AdminPanel{})))
}

// Debtors lists users with debts.
func (b *Builder) Debtors(debtors []ledger.Debtor) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	for _, d := range debtors {
		kb.AddRow(Button(presenter.DebtorButton(d), callback.AdminDebtor{UserID: d.User.UserID}))
	}
	kb.AddRow(Button(b.text("common.cancel_back"), callback.AdminCancel{}))
	return b.build(kb)
}

// DebtCurrencies offers the snapshotted debts of a user by index.
func (b *Builder) DebtCurrencies(userID int64, debts []state.DebtOption) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()
	for i, d := range debts {
		label := fmt.Sprintf("%s %s: %s", d.Emoji, d.Name, presenter.FormatAmount(d.Amount))
		kb.AddRow(Button(strings.TrimSpace(label), callback.AdminDebtCurrency{UserID: userID, Index: i}))
	}
	kb.AddRow(Button(b.text("common.cancel_back"), callback.AdminCancel{}))
	return b.build(kb)
}

// CartShortcut follows a cart addition made by text.
func (b *Builder) CartShortcut() *telebot.ReplyMarkup {
	return b.build(NewInlineKeyboard().
		AddRow(Button(b.text("catalog.go_to_cart"), callback.ShowCart{})).
		AddRow(Button(b.text("common.back_to_menu"), callback.BackToMenu{})))
}

// BackHome offers the category's subcategory list and the main menu.
func (b *Builder) BackHome(categoryID int64) *telebot.ReplyMarkup {
	return b.build(NewInlineKeyboard().AddRow(b.backHome(categoryID)...))
}
