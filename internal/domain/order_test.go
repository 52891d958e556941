package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartItemTitle(t *testing.T) {
	itemID := int64(4)

	testCases := []struct {
		name string
		line CartItem
		want string
	}{
		{name: "custom text wins", line: CartItem{ItemID: &itemID, CustomText: "Пікнік у парку", ItemTitle: "Рандомное для нас двоих"}, want: "Пікнік у парку"},
		{name: "catalog title", line: CartItem{ItemID: &itemID, ItemTitle: "Массаж 😍"}, want: "Массаж 😍"},
		{name: "deleted item", line: CartItem{}, want: CustomOrderTitle},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.line.Title())
		})
	}
}

func TestPriced(t *testing.T) {
	currency := int64(1)
	zero, six := 0.0, 6.0

	assert.True(t, CartItem{PriceAmount: &six, CurrencyID: &currency}.Priced())
	assert.False(t, CartItem{PriceAmount: &zero, CurrencyID: &currency}.Priced())
	assert.False(t, CartItem{PriceAmount: &six}.Priced())
	assert.False(t, OrderItem{CurrencyID: &currency}.Priced())
}

func TestCategoryMatches(t *testing.T) {
	food := Category{Name: "Їжа", Emoji: "🍳"}

	assert.True(t, food.Matches("🍳 Їжа"))
	assert.True(t, food.Matches("Їжа"))
	assert.True(t, food.Matches("🍳Їжа"))
	assert.False(t, food.Matches("Побачення"))
	assert.False(t, food.Matches(" "))
}

func TestUserNames(t *testing.T) {
	assert.Equal(t, "Оля", User{UserID: 1, FirstName: "Оля", Username: "olya"}.DisplayName())
	assert.Equal(t, "olya", User{UserID: 1, Username: "olya"}.DisplayName())
	assert.Equal(t, "ID:7", User{UserID: 7}.DisplayName())
	assert.Equal(t, "@olya", User{UserID: 1, Username: "olya"}.Handle())
	assert.Equal(t, "ID:7", User{UserID: 7}.Handle())
}
