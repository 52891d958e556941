package handlers

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/lovemenu-bot/internal/bot/callback"
	"github.com/Proton-105/lovemenu-bot/internal/domain"
	"github.com/Proton-105/lovemenu-bot/internal/state"
)

func TestAdminActionsRejectOtherUsers(t *testing.T) {
	h := newHarness(t)

	c := h.press(customerID, callback.AdminAddItem{})

	assert.Equal(t, h.tr("admin.denied_short"), c.alerted())
	assert.Nil(t, h.step(customerID, state.FamilyItem))
}

func TestAdminCommand(t *testing.T) {
	testCases := []struct {
		name     string
		userID   int64
		expected string
	}{
		{name: "admin sees the panel", userID: adminID, expected: "admin.panel"},
		{name: "others are refused", userID: customerID, expected: "admin.denied"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)

			require.NoError(t, h.routes.commands[CommandAdmin](h.text(tc.userID, "/admin")))
			assert.Equal(t, h.tr(tc.expected), h.api.last(tc.userID))
		})
	}
}

func TestAddItemWizardCreatesItem(t *testing.T) {
	h := newHarness(t)

	category := h.store.Category("Приємності")
	massage := h.store.Subcategory("Приємності", "Масаж")
	hugs := h.store.Currency("Обійми")

	h.press(adminID, callback.AdminAddItem{})
	assert.IsType(t, state.AddItemCategory{}, h.step(adminID, state.FamilyItem))

	h.press(adminID, callback.AdminPickCategory{CategoryID: category.ID})
	assert.Equal(t, state.AddItemSubcategory{CategoryID: category.ID}, h.step(adminID, state.FamilyItem))

	h.press(adminID, callback.AdminPickSubcategory{SubcategoryID: massage.ID})
	h.input(h.text(adminID, "Масаж ніг"))
	h.input(h.text(adminID, "Десять хвилин"))
	h.input(h.photo(adminID, "photo-42"))
	h.input(h.text(adminID, "2,5"))

	pendingStep, ok := h.step(adminID, state.FamilyItem).(state.AddItemCurrency)
	require.True(t, ok)
	assert.Equal(t, 2.5, pendingStep.Price)

	h.press(adminID, callback.AdminPickCurrency{CurrencyID: hugs.ID})

	require.NotEmpty(t, h.store.Items)
	created := h.store.Items[len(h.store.Items)-1]
	assert.Equal(t, "Масаж ніг", created.Title)
	assert.Equal(t, "Десять хвилин", created.Description)
	assert.Equal(t, category.ID, created.CategoryID)
	require.NotNil(t, created.SubcategoryID)
	assert.Equal(t, massage.ID, *created.SubcategoryID)
	assert.Equal(t, domain.Media{Kind: domain.MediaPhoto, FileID: "photo-42"}, created.Media)
	assert.Equal(t, 2.5, created.PriceAmount)
	require.NotNil(t, created.CurrencyID)
	assert.Equal(t, hugs.ID, *created.CurrencyID)

	assert.Nil(t, h.step(adminID, state.FamilyItem))
	assert.Equal(t, fmt.Sprintf(h.tr("admin_item.created"), "Масаж ніг"), h.api.last(adminID))
}

func TestAddItemSkipsSubcategoryForCustomOnlyCategory(t *testing.T) {
	h := newHarness(t)

	category := h.store.Category("Коли на відстані")

	h.press(adminID, callback.AdminAddItem{})
	h.input(h.text(adminID, category.Label()))

	assert.Equal(t, state.AddItemTitle{CategoryID: category.ID}, h.step(adminID, state.FamilyItem))
}

func TestAddItemRejectsBadInput(t *testing.T) {
	h := newHarness(t)

	category := h.store.Category("Їжа")

	h.press(adminID, callback.AdminAddItem{})
	h.press(adminID, callback.AdminPickCategory{CategoryID: category.ID})
	h.press(adminID, callback.AdminPickSubcategory{})
	h.input(h.text(adminID, "Піца"))
	h.input(h.text(adminID, "Велика"))

	h.input(h.text(adminID, "картинка"))
	assert.IsType(t, state.AddItemMedia{}, h.step(adminID, state.FamilyItem))

	h.input(h.text(adminID, skipCommand))
	h.input(h.text(adminID, "дорого"))
	assert.IsType(t, state.AddItemPrice{}, h.step(adminID, state.FamilyItem))
	assert.Equal(t, h.tr("admin_item.invalid_price"), h.api.last(adminID))
}

func TestStaleAdminButtonReportsExpired(t *testing.T) {
	h := newHarness(t)

	c := h.press(adminID, callback.AdminPickCategory{CategoryID: h.store.Category("Їжа").ID})

	assert.Equal(t, h.tr("admin.expired"), c.alerted())
	assert.Nil(t, h.step(adminID, state.FamilyItem))
}

func TestEditItemMediaReplacesMedia(t *testing.T) {
	h := newHarness(t)

	category := h.store.Category("Їжа")
	item := h.store.AddItem(domain.Item{CategoryID: category.ID, Title: "Борщ"})

	h.press(adminID, callback.AdminEditItem{})
	h.press(adminID, callback.AdminEditCategory{CategoryID: category.ID})
	h.press(adminID, callback.AdminEditSelect{ItemID: item.ID})
	h.press(adminID, callback.AdminEditMedia{ItemID: item.ID})
	assert.Equal(t, state.EditItemMedia{CategoryID: category.ID, ItemID: item.ID}, h.step(adminID, state.FamilyItem))

	h.input(h.photo(adminID, "fresh-photo"))

	stored, err := h.set.Catalog.Item(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh-photo", stored.Media.FileID)
	assert.Equal(t, state.EditItemMenu{CategoryID: category.ID, ItemID: item.ID}, h.step(adminID, state.FamilyItem))

	h.press(adminID, callback.AdminBack{})
	assert.Equal(t, state.EditItemSelect{CategoryID: category.ID}, h.step(adminID, state.FamilyItem))
}

func TestPayDebtWizard(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	kisses := h.store.Currency("Поцілунки")
	h.store.Users[customerID] = &domain.User{UserID: customerID, FirstName: "Коханий"}
	require.NoError(t, h.store.DebtRepo().Increment(ctx, customerID, kisses.ID, 10))

	h.press(adminID, callback.AdminPayDebt{})
	assert.IsType(t, state.DebtUser{}, h.step(adminID, state.FamilyDebt))

	h.press(adminID, callback.AdminDebtor{UserID: customerID})
	current, ok := h.step(adminID, state.FamilyDebt).(state.DebtCurrency)
	require.True(t, ok)
	require.Len(t, current.Debts, 1)
	assert.Equal(t, 10.0, current.Debts[0].Amount)

	c := h.press(adminID, callback.AdminDebtCurrency{UserID: customerID, Index: 3})
	assert.Equal(t, fmt.Sprintf(h.tr("admin_debt.invalid_index"), 3), c.alerted())

	h.press(adminID, callback.AdminDebtCurrency{UserID: customerID, Index: 0})
	assert.IsType(t, state.DebtAmount{}, h.step(adminID, state.FamilyDebt))

	h.input(h.text(adminID, "нуль"))
	assert.Equal(t, h.tr("admin_debt.invalid_amount"), h.api.last(adminID))

	h.input(h.text(adminID, "4"))

	assert.Equal(t, 6.0, h.store.Debt(customerID, kisses.ID))
	assert.Nil(t, h.step(adminID, state.FamilyDebt))
	require.Len(t, h.store.Payments, 1)
	assert.Contains(t, h.api.last(adminID), "Коханий")
}

func TestPayDebtAfterEditingMedia(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	category := h.store.Category("Їжа")
	item := h.store.AddItem(domain.Item{CategoryID: category.ID, Title: "Борщ"})
	kisses := h.store.Currency("Поцілунки")
	h.store.Users[customerID] = &domain.User{UserID: customerID, FirstName: "Коханий"}
	require.NoError(t, h.store.DebtRepo().Increment(ctx, customerID, kisses.ID, 10))

	h.press(adminID, callback.AdminEditItem{})
	h.press(adminID, callback.AdminEditCategory{CategoryID: category.ID})
	h.press(adminID, callback.AdminEditSelect{ItemID: item.ID})
	h.press(adminID, callback.AdminEditMedia{ItemID: item.ID})
	h.input(h.photo(adminID, "fresh-photo"))
	require.IsType(t, state.EditItemMenu{}, h.step(adminID, state.FamilyItem))

	h.press(adminID, callback.AdminPayDebt{})
	assert.Nil(t, h.step(adminID, state.FamilyItem))

	h.press(adminID, callback.AdminDebtor{UserID: customerID})
	h.press(adminID, callback.AdminDebtCurrency{UserID: customerID, Index: 0})
	h.input(h.text(adminID, "4"))

	assert.Equal(t, 6.0, h.store.Debt(customerID, kisses.ID))
	assert.Nil(t, h.step(adminID, state.FamilyDebt))
}

func TestAdminPanelDropsAdminWizards(t *testing.T) {
	h := newHarness(t)

	category := h.store.Category("Їжа")
	item := h.store.AddItem(domain.Item{CategoryID: category.ID, Title: "Борщ"})

	h.press(adminID, callback.AdminEditItem{})
	h.press(adminID, callback.AdminEditCategory{CategoryID: category.ID})
	h.press(adminID, callback.AdminEditSelect{ItemID: item.ID})
	h.press(adminID, callback.AdminBack{})
	h.press(adminID, callback.AdminBack{})
	require.IsType(t, state.EditItemCategory{}, h.step(adminID, state.FamilyItem))

	h.press(adminID, callback.AdminBack{})

	assert.Nil(t, h.step(adminID, state.FamilyItem))
}

func TestOrderPayCarriesOrderID(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.set.Cart.AddCustom(ctx, customerID, h.store.Category("Приємності").ID, "обійми")
	require.NoError(t, err)
	h.store.Users[customerID] = &domain.User{UserID: customerID, FirstName: "Коханий"}
	placed, err := h.set.Orders.Checkout(ctx, customerID, "просто так")
	require.NoError(t, err)

	h.press(adminID, callback.AdminOrderPay{OrderID: placed.ID})

	current, ok := h.step(adminID, state.FamilyDebt).(state.DebtCurrency)
	require.True(t, ok)
	require.NotNil(t, current.OrderID)
	assert.Equal(t, placed.ID, *current.OrderID)
}

func TestSpecialMenuWizardPublishesAndDispatches(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.press(adminID, callback.AdminSpecialMenu{})
	h.input(h.text(adminID, "без фото"))
	assert.IsType(t, state.SpecialMenuMedia{}, h.step(adminID, state.FamilySpecialMenu))

	h.input(h.photo(adminID, "menu-photo"))
	h.input(h.text(adminID, "Сирники з медом"))
	assert.IsType(t, state.SpecialMenuCurrency{}, h.step(adminID, state.FamilySpecialMenu))

	h.press(adminID, callback.AdminSpecialKisses{})
	h.input(h.text(adminID, "3"))

	confirm, ok := h.step(adminID, state.FamilySpecialMenu).(state.SpecialMenuConfirm)
	require.True(t, ok)
	assert.Equal(t, 3.0, confirm.Price)
	require.NotNil(t, confirm.CurrencyID)

	h.press(adminID, callback.AdminSpecialSend{})

	active, err := h.set.Catalog.ActiveSpecialMenu(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Сирники з медом", active.Description)
	assert.Equal(t, "menu-photo", active.Media.FileID)
	assert.Equal(t, []int64{active.ID}, h.specials.menus)
	assert.Nil(t, h.step(adminID, state.FamilySpecialMenu))
	assert.Equal(t, h.tr("admin_special.queued"), h.api.last(adminID))
}

func TestSpecialMenuGiftSkipsPrice(t *testing.T) {
	h := newHarness(t)

	h.press(adminID, callback.AdminSpecialMenu{})
	h.input(h.photo(adminID, "menu-photo"))
	h.input(h.text(adminID, ""))
	h.press(adminID, callback.AdminSpecialGift{})

	confirm, ok := h.step(adminID, state.FamilySpecialMenu).(state.SpecialMenuConfirm)
	require.True(t, ok)
	assert.Zero(t, confirm.Price)
	assert.Nil(t, confirm.CurrencyID)
	assert.Equal(t, h.tr("admin_special.default_text"), confirm.Description)
}

func TestCancelInsideAdminWizardReturnsToPanel(t *testing.T) {
	h := newHarness(t)

	h.press(adminID, callback.AdminAddItem{})
	previous, err := h.fsm.Active(context.Background(), adminID)
	require.NoError(t, err)
	require.NoError(t, h.fsm.ClearAll(context.Background(), adminID))

	c := h.text(adminID, "")
	WithPrevious(c, previous)
	require.NoError(t, h.set.Cancelled(c))

	assert.Equal(t, h.tr("common.cancelled"), h.api.last(adminID))
}
