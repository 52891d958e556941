package presenter

import (
	"fmt"
	"strings"

	"github.com/Proton-105/lovemenu-bot/internal/domain"
	"github.com/Proton-105/lovemenu-bot/internal/ledger"
)

// DebtorButtonLimit caps debtor button labels.
const DebtorButtonLimit = 50

// OrderConfirmation is sent to the customer after checkout.
const OrderConfirmation = "Спасибо за заказ, лучший мужчина в мире!\n\nОплата при получении.\n\nЦелуююю  😘"

// SpecialOrderConfirmation is sent after a special menu order.
const SpecialOrderConfirmation = "Спасибо за заказ, лучший мужчина в мире!\n\nОплата при получении 💋\n\nХорошего вам дня 😘"

// OrderNotification tells the partner about a new order.
func OrderNotification(customer domain.User, order domain.Order) string {
	name := customer.FirstName
	if name == "" {
		name = "Кохання"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💌 *Нове замовлення від %s!*\n\n", EscapeMarkdown(name))
	b.WriteString("*Замовлення:*\n")
	for i, item := range order.Items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, EscapeMarkdown(item.Title))
	}

	fmt.Fprintf(&b, "\n📅 *Дата:* %s\n", Date(order.DateRequested))
	if order.Comment != "" {
		fmt.Fprintf(&b, "💬 *Коментар:* %s\n", EscapeMarkdown(order.Comment))
	}
	b.WriteString("\n💕 Час виконувати побажання!")

	return b.String()
}

// SpecialOrderNotice is forwarded to admins. The plain variant is the
// fallback when Markdown parsing is rejected.
func SpecialOrderNotice(customer domain.User, comment string) (markdown, plain string) {
	if comment == "" {
		comment = "(без коментаря)"
	}
	handle := customer.Handle()

	markdown = "📸 *Нове замовлення зі спецменю*\n\n" +
		"👤 Користувач: " + EscapeMarkdown(handle) + "\n" +
		"💬 Коментар: " + EscapeMarkdown(comment)
	plain = "📸 Нове замовлення зі спецменю\n\n" +
		"👤 Користувач: " + handle + "\n" +
		"💬 Коментар: " + comment

	return markdown, plain
}

// Orders renders the admin list; users maps user ids to known profiles.
func Orders(orders []domain.Order, users map[int64]domain.User) string {
	if len(orders) == 0 {
		return "📋 Замовлень поки немає"
	}

	var b strings.Builder
	b.WriteString("📋 *Список замовлень:*\n\n")
	for i, o := range orders {
		fmt.Fprintf(&b, "%d. Замовлення #%d\n", i+1, o.ID)
		fmt.Fprintf(&b, "   Користувач: %s\n", EscapeMarkdown(UserLabel(userOf(o.UserID, users))))
		fmt.Fprintf(&b, "   Дата: %s\n", Date(o.DateRequested))
		fmt.Fprintf(&b, "   Позицій: %d\n", len(o.Items))
		fmt.Fprintf(&b, "   Коментар: %s\n", orDash(EscapeMarkdown(o.Comment)))
		fmt.Fprintf(&b, "   Статус: %s\n\n", o.Status)
	}

	return strings.TrimRight(b.String(), "\n")
}

// OrderDetail renders a single order with its lines.
func OrderDetail(o domain.Order, customer domain.User, currencies Currencies) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🧾 *Замовлення #%d*\n", o.ID)
	fmt.Fprintf(&b, "👤 Користувач: %s\n", EscapeMarkdown(UserLabel(customer)))
	fmt.Fprintf(&b, "📅 Дата: %s\n", Date(o.DateRequested))
	fmt.Fprintf(&b, "💬 Коментар: %s\n", orDash(EscapeMarkdown(o.Comment)))
	fmt.Fprintf(&b, "📌 Статус: %s\n", o.Status)
	fmt.Fprintf(&b, "🧺 Позицій: %d\n\n", len(o.Items))

	if len(o.Items) == 0 {
		b.WriteString("— Позиції відсутні")
		return b.String()
	}

	for i, item := range o.Items {
		price := "—"
		if item.Priced() {
			price = FormatAmount(*item.PriceAmount)
			if c := currencies.Lookup(item.CurrencyID); c != nil {
				price = strings.TrimSpace(price + " " + c.Emoji + " " + c.Name)
			}
		}
		fmt.Fprintf(&b, "%d. %s\n   Ціна: %s\n", i+1, EscapeMarkdown(item.Title), price)
		if item.CustomText != "" && item.ItemID != nil {
			fmt.Fprintf(&b, "   Коментар до позиції: %s\n", EscapeMarkdown(item.CustomText))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// OrderButton labels the detail button of an order in the admin list.
func OrderButton(o domain.Order) string {
	return fmt.Sprintf("🔍 #%d (%d)", o.ID, len(o.Items))
}

// Debtors renders the plain-text list of users with debts.
func Debtors(debtors []ledger.Debtor) string {
	var b strings.Builder
	b.WriteString("👥 Користувачі з боргами:\n\n")
	for i, d := range debtors {
		handle := ""
		if d.User.Username != "" {
			handle = " " + d.User.Handle()
		}
		fmt.Fprintf(&b, "%d. %s%s\n", i+1, d.User.DisplayName(), handle)
		fmt.Fprintf(&b, "   💳 Боргів: %d, Загалом: %.1f\n\n", len(d.Debts), d.Total)
	}
	return strings.TrimRight(b.String(), "\n")
}

// DebtorButton labels a debtor selection button.
func DebtorButton(d ledger.Debtor) string {
	return Truncate(fmt.Sprintf("%s (%.1f)", d.User.DisplayName(), d.Total), DebtorButtonLimit)
}

// UserDebts lists one user's debts for currency selection.
func UserDebts(u domain.User, lines []ledger.Line) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💳 Борги користувача %s:\n\n", u.DisplayName())
	for i, line := range lines {
		fmt.Fprintf(&b, "%d. %s %s: %s\n", i+1, line.Currency.Emoji, line.Currency.Name, FormatAmount(line.Amount))
	}
	return strings.TrimRight(b.String(), "\n")
}

func userOf(id int64, users map[int64]domain.User) domain.User {
	if u, ok := users[id]; ok {
		return u
	}
	return domain.User{UserID: id}
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
