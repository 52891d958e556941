package keyboard

import (
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/lovemenu-bot/internal/domain"
	"github.com/Proton-105/lovemenu-bot/internal/i18n"
)

// MainMenu builds the persistent reply keyboard: categories two per row,
// then cart and account.
func MainMenu(t i18n.Translator, categories []domain.Category) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard:  true,
		OneTimeKeyboard: false,
	}

	rows := make([]telebot.Row, 0, len(categories)/2+2)
	for i := 0; i < len(categories); i += 2 {
		row := telebot.Row{markup.Text(categories[i].Label())}
		if i+1 < len(categories) {
			row = append(row, markup.Text(categories[i+1].Label()))
		}
		rows = append(rows, row)
	}

	rows = append(rows, markup.Row(
		markup.Text(translated(t, "main_menu.cart", "🛒 Кошик")),
		markup.Text(translated(t, "main_menu.account", "💳 Мій рахунок")),
	))

	markup.Reply(rows...)
	return markup
}

// AdminButtons returns the admin reply texts accepted outside any wizard.
func AdminButtons(t i18n.Translator) []string {
	return []string{
		translated(t, "admin.add_item", "📦 Додати товар"),
		translated(t, "admin.edit_item", "✏️ Редагувати товар"),
		translated(t, "admin.orders", "📋 Список замовлень"),
		translated(t, "admin.pay_debt", "💰 Відняти борг"),
		translated(t, "admin.special_menu", "📸 Спецменю"),
	}
}

func translated(t i18n.Translator, key, fallback string) string {
	if t == nil {
		return fallback
	}

	text := strings.TrimSpace(t.T(key))
	if text == "" || text == key {
		return fallback
	}

	return text
}
