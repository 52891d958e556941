package domain

import "time"

// OrderStatusPending is the status assigned to every new order.
const OrderStatusPending = "pending"

// CustomOrderTitle names lines that have neither custom text nor a catalog title.
const CustomOrderTitle = "Кастомне замовлення"

// CartItem is a pending cart line. Either ItemID or CustomText is set; the
// price and currency are snapshotted when the line is added.
type CartItem struct {
	ID          int64
	UserID      int64
	ItemID      *int64
	CustomText  string
	PriceAmount *float64
	CurrencyID  *int64
	CreatedAt   time.Time

	// ItemTitle is filled on read for catalog-backed lines.
	ItemTitle string
}

// Title resolves the display title: custom text, then the item title.
func (c CartItem) Title() string {
	return resolveTitle(c.CustomText, c.ItemTitle)
}

// Priced reports whether the line contributes to a debt.
func (c CartItem) Priced() bool {
	return c.CurrencyID != nil && c.PriceAmount != nil && *c.PriceAmount > 0
}

// Order is an immutable snapshot of a checked out cart.
type Order struct {
	ID            int64
	UserID        int64
	DateRequested *time.Time
	Comment       string
	Status        string
	Items         []OrderItem
	CreatedAt     time.Time
}

// OrderItem is a denormalized order line.
type OrderItem struct {
	ItemID      *int64
	CustomText  string
	Title       string
	PriceAmount *float64
	CurrencyID  *int64
}

// Priced reports whether the line contributes to a debt.
func (i OrderItem) Priced() bool {
	return i.CurrencyID != nil && i.PriceAmount != nil && *i.PriceAmount > 0
}

// UserDebt is the running balance of a user in one currency.
type UserDebt struct {
	UserID     int64
	CurrencyID int64
	Amount     float64
	UpdatedAt  time.Time
}

// PaymentHistory records an admin debt reduction with the amount entered.
type PaymentHistory struct {
	ID         int64
	UserID     int64
	CurrencyID int64
	Amount     float64
	OrderID    *int64
	CreatedAt  time.Time
}

func resolveTitle(customText, title string) string {
	if customText != "" {
		return customText
	}
	if title != "" {
		return title
	}
	return CustomOrderTitle
}
