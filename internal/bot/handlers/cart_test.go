package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/lovemenu-bot/internal/bot/callback"
	"github.com/Proton-105/lovemenu-bot/internal/domain"
	"github.com/Proton-105/lovemenu-bot/internal/presenter"
	"github.com/Proton-105/lovemenu-bot/internal/state"
)

func TestCheckoutWithEmptyCartAlerts(t *testing.T) {
	h := newHarness(t)

	c := h.press(customerID, callback.Checkout{})

	assert.Equal(t, h.tr("cart.empty_alert"), c.alerted())
	assert.Nil(t, h.step(customerID, state.FamilyOrder))
}

func TestCheckoutPlacesOrderAndNotifiesPartner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	kisses := h.store.Currency("Поцілунки")
	massage := h.store.Subcategory("Приємності", "Масаж")
	item := h.store.AddItem(domain.Item{
		CategoryID:    massage.CategoryID,
		SubcategoryID: &massage.ID,
		Title:         "Масаж спини",
		PriceAmount:   3,
		CurrencyID:    &kisses.ID,
	})

	_, err := h.set.Cart.AddItem(ctx, customerID, item.ID)
	require.NoError(t, err)

	h.press(customerID, callback.Checkout{})
	assert.IsType(t, state.CheckoutComment{}, h.step(customerID, state.FamilyOrder))

	h.input(h.text(customerID, "завтра, ти найкраща"))

	require.Len(t, h.store.Orders, 1)
	assert.Equal(t, "ти найкраща", h.store.Orders[0].Comment)
	assert.Equal(t, 3.0, h.store.Debt(customerID, kisses.ID))
	assert.Nil(t, h.step(customerID, state.FamilyOrder))

	lines, err := h.set.Cart.Lines(ctx, customerID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	assert.Equal(t, presenter.OrderConfirmation, h.api.last(customerID))
	require.Len(t, h.api.texts(partnerID), 1)
	assert.Contains(t, h.api.texts(partnerID)[0], "Масаж спини")
}

func TestCheckoutCommentReplacesEmptyText(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.set.Cart.AddCustom(ctx, customerID, h.store.Category("Їжа").ID, "борщ")
	require.NoError(t, err)

	h.press(customerID, callback.Checkout{})
	h.input(h.text(customerID, "   "))

	assert.Empty(t, h.store.Orders)
	assert.IsType(t, state.CheckoutComment{}, h.step(customerID, state.FamilyOrder))
	assert.Equal(t, h.tr("checkout.prompt"), h.api.last(customerID))
}

func TestCustomSubcategoryAddsFreeTextLine(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	custom := h.store.Subcategory("Приємності", "Свій варіант")
	h.press(customerID, callback.ShowSubcategory{SubcategoryID: custom.ID})
	assert.Equal(t, state.CustomText{CategoryID: custom.CategoryID, SubcategoryID: custom.ID}, h.step(customerID, state.FamilyOrder))

	h.input(h.text(customerID, "поцілунок у щічку"))

	lines, err := h.set.Cart.Lines(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "поцілунок у щічку", lines[0].CustomText)
	require.NotNil(t, lines[0].PriceAmount)
	assert.Equal(t, 6.0, *lines[0].PriceAmount)
	assert.Nil(t, h.step(customerID, state.FamilyOrder))
}

func TestCustomTextYieldsToMenuButtons(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	custom := h.store.Subcategory("Коли на відстані", "Свій варіант")
	h.press(customerID, callback.ShowSubcategory{SubcategoryID: custom.ID})

	h.input(h.text(customerID, h.tr("main_menu.cart")))

	lines, err := h.set.Cart.Lines(ctx, customerID)
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Nil(t, h.step(customerID, state.FamilyOrder))
	assert.Equal(t, presenter.EmptyCart, h.api.last(customerID))
}

func TestCancelOrderDropsCheckoutStep(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.set.Cart.AddCustom(ctx, customerID, h.store.Category("Їжа").ID, "вареники")
	require.NoError(t, err)
	h.press(customerID, callback.Checkout{})

	require.NoError(t, h.set.CancelCommand(h.text(customerID, "/cancel")))

	assert.Nil(t, h.step(customerID, state.FamilyOrder))
	assert.Equal(t, h.tr("common.cancelled"), h.api.last(customerID))
}

func TestOrderSpecialMenuRejectsInactiveMenu(t *testing.T) {
	h := newHarness(t)

	c := h.press(customerID, callback.OrderSpecialMenu{MenuID: 999})

	assert.Equal(t, h.tr("special_order.unavailable"), c.alerted())
	assert.Nil(t, h.step(customerID, state.FamilyOrder))
}

func TestSpecialOrderCommentReachesAdmins(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	menu, err := h.set.Catalog.PublishSpecialMenu(ctx, domain.SpecialMenu{
		Media:       domain.Media{Kind: domain.MediaPhoto, FileID: "photo-1"},
		Description: "Сирники",
	})
	require.NoError(t, err)

	h.press(customerID, callback.OrderSpecialMenu{MenuID: menu.ID})
	assert.Equal(t, state.SpecialOrderComment{MenuID: menu.ID}, h.step(customerID, state.FamilyOrder))

	h.input(h.text(customerID, "на сніданок"))

	require.Len(t, h.api.texts(adminID), 1)
	assert.Contains(t, h.api.texts(adminID)[0], "на сніданок")
	assert.Equal(t, presenter.SpecialOrderConfirmation, h.api.last(customerID))
	assert.Nil(t, h.step(customerID, state.FamilyOrder))
}
