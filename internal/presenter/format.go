// Package presenter renders catalog items, carts, debts and orders as
// Telegram Markdown text. Everything here is a pure function of its input.
package presenter

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Proton-105/lovemenu-bot/internal/catalog"
	"github.com/Proton-105/lovemenu-bot/internal/domain"
)

const (
	giftPrice      = "💋 Ціна: в подарунок"
	notSpecified   = "Не вказано"
	dateLayout     = "02.01.2006"
	ellipsis       = "..."
	giftOnlyPhrase = "в подарунок"
)

// Currencies indexes currencies by id.
type Currencies map[int64]domain.Currency

func NewCurrencies(list []domain.Currency) Currencies {
	out := make(Currencies, len(list))
	for _, c := range list {
		out[c.ID] = c
	}
	return out
}

// Lookup returns the currency or nil when id is nil or unknown.
func (c Currencies) Lookup(id *int64) *domain.Currency {
	if id == nil {
		return nil
	}
	currency, ok := c[*id]
	if !ok {
		return nil
	}
	return &currency
}

// KissesWord picks the plural form of "поцілунок" for n.
func KissesWord(n float64) string {
	lastDigit := math.Mod(n, 10)
	lastTwo := math.Mod(n, 100)

	switch {
	case lastTwo >= 11 && lastTwo <= 14:
		return "поцілунків"
	case lastDigit == 1:
		return "поцілунок"
	case lastDigit >= 2 && lastDigit <= 4:
		return "поцілунки"
	default:
		return "поцілунків"
	}
}

// FormatAmount prints n without trailing zeros.
func FormatAmount(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Amount renders "N word" for kisses and "N name" for other currencies.
func Amount(n float64, currency *domain.Currency) string {
	switch {
	case currency == nil:
		return FormatAmount(n) + " " + KissesWord(n)
	case catalog.IsKisses(*currency):
		return FormatAmount(n) + " " + KissesWord(n)
	default:
		return FormatAmount(n) + " " + strings.ToLower(currency.Name)
	}
}

// PriceLine renders the price line of a card or caption.
func PriceLine(n float64, currency *domain.Currency) string {
	if n == 0 || currency == nil {
		return giftPrice
	}
	return "💋 Ціна: " + Amount(n, currency)
}

// Truncate shortens s to limit runes, ending it with "..." when cut.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	cut := limit - utf8.RuneCountInString(ellipsis)
	if cut < 0 {
		cut = 0
	}
	return string(runes[:cut]) + ellipsis
}

// EscapeMarkdown escapes the characters Telegram's legacy Markdown treats as markup.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

// Date renders an optional date as DD.MM.YYYY.
func Date(t *time.Time) string {
	if t == nil {
		return notSpecified
	}
	return t.Format(dateLayout)
}

// UserLabel is "First @username", or the id when nothing else is known.
func UserLabel(u domain.User) string {
	if u.FirstName == "" && u.Username == "" {
		return "ID: " + strconv.FormatInt(u.UserID, 10)
	}

	parts := make([]string, 0, 2)
	if u.FirstName != "" {
		parts = append(parts, u.FirstName)
	}
	if u.Username != "" {
		parts = append(parts, "@"+strings.TrimPrefix(u.Username, "@"))
	}
	return strings.Join(parts, " ")
}

func isGiftOnly(description string) bool {
	d := strings.ToLower(strings.TrimSpace(description))
	d = strings.TrimRight(d, ".!,")
	return d == giftOnlyPhrase
}
