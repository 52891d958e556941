// Package repository implements Postgres persistence for the catalog, carts,
// orders, debts and users.
package repository

import (
	"context"
	"database/sql"

	"github.com/Proton-105/lovemenu-bot/internal/domain"
)

// CatalogRepository reads and mutates categories, subcategories, items and currencies.
type CatalogRepository interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	CategoryByID(ctx context.Context, id int64) (*domain.Category, error)
	Subcategories(ctx context.Context, categoryID int64) ([]domain.Subcategory, error)
	AllSubcategories(ctx context.Context) ([]domain.Subcategory, error)
	SubcategoryByID(ctx context.Context, id int64) (*domain.Subcategory, error)
	ItemsBySubcategory(ctx context.Context, subcategoryID int64) ([]domain.Item, error)
	ItemsByCategory(ctx context.Context, categoryID int64) ([]domain.Item, error)
	ItemByID(ctx context.Context, id int64) (*domain.Item, error)
	CreateItem(ctx context.Context, item *domain.Item) error
	UpdateItemMedia(ctx context.Context, itemID int64, media domain.Media) error
	// AdoptFileID stores fileID on items that only reference url. It returns the number of items updated.
	AdoptFileID(ctx context.Context, url, fileID string) (int64, error)
	Currencies(ctx context.Context) ([]domain.Currency, error)
	CurrencyByID(ctx context.Context, id int64) (*domain.Currency, error)
}

// SpecialMenuRepository stores special menus. Publish keeps a single active row.
type SpecialMenuRepository interface {
	Publish(ctx context.Context, menu *domain.SpecialMenu) error
	Active(ctx context.Context) (*domain.SpecialMenu, error)
	ByID(ctx context.Context, id int64) (*domain.SpecialMenu, error)
}

// CartRepository stores pending cart lines.
type CartRepository interface {
	Add(ctx context.Context, item *domain.CartItem) error
	List(ctx context.Context, userID int64) ([]domain.CartItem, error)
	Remove(ctx context.Context, userID, cartItemID int64) (bool, error)
	Clear(ctx context.Context, userID int64) error
}

// OrderRepository stores order snapshots.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	List(ctx context.Context, limit int) ([]domain.Order, error)
	ByID(ctx context.Context, id int64) (*domain.Order, error)
}

// DebtRepository maintains per-currency balances and the payment log.
type DebtRepository interface {
	Increment(ctx context.Context, userID, currencyID int64, amount float64) error
	Get(ctx context.Context, userID, currencyID int64) (*domain.UserDebt, error)
	Set(ctx context.Context, userID, currencyID int64, amount float64) error
	ListByUser(ctx context.Context, userID int64) ([]domain.UserDebt, error)
	ListPositive(ctx context.Context) ([]domain.UserDebt, error)
	AddPayment(ctx context.Context, payment *domain.PaymentHistory) error
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	UpdateProfile(ctx context.Context, user *domain.User) error
	MarkReturning(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.User, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func nullFloat64(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func float64Ptr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func mediaFromColumns(kind sql.NullString, fileID, url string) domain.Media {
	return domain.Media{
		Kind:   domain.MediaKind(kind.String),
		FileID: fileID,
		URL:    url,
	}
}
