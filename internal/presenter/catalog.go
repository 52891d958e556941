package presenter

import (
	"strings"

	"github.com/Proton-105/lovemenu-bot/internal/catalog"
	"github.com/Proton-105/lovemenu-bot/internal/domain"
)

// ItemCard renders the caption of an item: bold title, description and
// price. Dates never show a price; a gift description is not repeated.
func ItemCard(item domain.Item, category domain.Category, currency *domain.Currency) string {
	var b strings.Builder
	b.WriteString("*" + item.Title + "*")

	description := strings.TrimSpace(item.Description)
	if description != "" && !(item.PriceAmount == 0 && isGiftOnly(description)) {
		b.WriteString("\n" + description)
	}

	if !catalog.HidesPrice(category) {
		if item.PriceAmount == 0 {
			b.WriteString("\n\n" + giftPrice)
		} else if currency != nil {
			b.WriteString("\n\n" + PriceLine(item.PriceAmount, currency))
		}
	}

	return b.String()
}

// RandomIdea renders the date roulette result.
func RandomIdea(item domain.Item, idea string) string {
	return "*" + item.Title + "*\n\n🎲 *Рандомна ідея:*\n" + idea
}

// SpecialMenuCaption is the text sent with the special menu broadcast.
func SpecialMenuCaption(menu domain.SpecialMenu, currency *domain.Currency) string {
	var parts []string
	if d := strings.TrimSpace(menu.Description); d != "" {
		parts = append(parts, d)
	}

	if menu.PriceAmount > 0 && currency != nil {
		parts = append(parts, PriceLine(menu.PriceAmount, currency))
	} else {
		parts = append(parts, giftPrice)
	}

	return strings.Join(parts, "\n\n")
}

// SpecialMenuPreview renders the draft shown to the admin before sending.
func SpecialMenuPreview(menu domain.SpecialMenu, currency *domain.Currency) string {
	var b strings.Builder
	b.WriteString("📸 *Попередній перегляд спецменю:*\n\n")
	b.WriteString(SpecialMenuCaption(menu, currency))
	b.WriteString("\n\nНатисніть \"Відправити\", щоб надіслати всім користувачам.")
	return b.String()
}
