package presenter

import (
	"fmt"
	"strings"

	"github.com/Proton-105/lovemenu-bot/internal/cart"
	"github.com/Proton-105/lovemenu-bot/internal/catalog"
	"github.com/Proton-105/lovemenu-bot/internal/domain"
	"github.com/Proton-105/lovemenu-bot/internal/ledger"
)

// EmptyCart is shown instead of the cart when it has no lines.
const EmptyCart = "🛒 Ваш кошик порожній"

// CartButtonLimit caps the title on a cart line's remove button.
const CartButtonLimit = 30

// Cart renders the numbered lines and per-currency totals.
func Cart(lines []domain.CartItem, currencies Currencies) string {
	if len(lines) == 0 {
		return EmptyCart
	}

	var b strings.Builder
	b.WriteString("🛒 *Ваш кошик:*\n\n")

	for i, line := range lines {
		fmt.Fprintf(&b, "%d. %s\n   %s\n\n", i+1, line.Title(), linePrice(line, currencies))
	}

	totals := cart.LineTotals(lines)
	if len(totals) > 0 {
		b.WriteString("*Загалом:*\n")
		for _, total := range totals {
			b.WriteString(totalLine(total, currencies) + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// CartButton labels the remove button of a line.
func CartButton(line domain.CartItem) string {
	title := []rune(line.Title())
	if len(title) > CartButtonLimit {
		return "❤️ " + string(title[:CartButtonLimit]) + ellipsis
	}
	return "❤️ " + string(title)
}

func linePrice(line domain.CartItem, currencies Currencies) string {
	if !line.Priced() {
		return "Безкоштовно"
	}

	currency := currencies.Lookup(line.CurrencyID)
	if currency == nil || catalog.IsKisses(*currency) {
		return "💋 Ціна: " + Amount(*line.PriceAmount, nil)
	}
	return strings.TrimSpace(currency.Emoji + " " + FormatAmount(*line.PriceAmount) + " " + currency.Name)
}

func totalLine(total cart.Total, currencies Currencies) string {
	currency := currencies.Lookup(&total.CurrencyID)
	if currency == nil || catalog.IsKisses(*currency) {
		return "💋 " + Amount(total.Amount, nil)
	}
	return strings.TrimSpace(currency.Emoji+" "+currency.Name) + ": " + FormatAmount(total.Amount)
}

// Account renders the user's debts. A kisses debt is shown on its own.
func Account(lines []ledger.Line) string {
	var b strings.Builder
	b.WriteString("*💳 Мій рахунок*\n\n")

	if len(lines) == 0 {
		b.WriteString("✅ У вас немає боргів! Ви вільні! 💕")
		return b.String()
	}

	kisses := -1
	for i, line := range lines {
		if catalog.IsKisses(line.Currency) {
			kisses = i
			break
		}
	}

	if kisses >= 0 {
		fmt.Fprintf(&b, "Невиплачені поцілунки: %s 💋\n", FormatAmount(lines[kisses].Amount))
	} else {
		for _, line := range lines {
			fmt.Fprintf(&b, "%s %s: %s\n", line.Currency.Emoji, line.Currency.Name, FormatAmount(line.Amount))
		}
	}

	b.WriteString("\nПоцілунки зависли в повітрі 😅\n\n")
	b.WriteString("Пора надолужити відсутні прояви ніжності 😘\n\n")
	b.WriteString("Муза чекає на оплату!")

	return b.String()
}
