package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Proton-105/lovemenu-bot/internal/domain"
)

type cartRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewCartRepository creates a SQL-backed cart repository.
func NewCartRepository(db *sql.DB, log *slog.Logger) CartRepository {
	return &cartRepository{db: db, log: log}
}

func (r *cartRepository) Add(ctx context.Context, item *domain.CartItem) error {
	const query = `
		INSERT INTO cart_items (user_id, item_id, custom_text, price_amount, currency_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		item.UserID,
		nullInt64(item.ItemID),
		nullString(item.CustomText),
		nullFloat64(item.PriceAmount),
		nullInt64(item.CurrencyID),
	).Scan(&item.ID, &item.CreatedAt); err != nil {
		r.logError("add cart item", err, item.UserID)
		return fmt.Errorf("insert cart item: %w", err)
	}

	return nil
}

func (r *cartRepository) List(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	const query = `
		SELECT ci.id, ci.user_id, ci.item_id, ci.custom_text, ci.price_amount, ci.currency_id, ci.created_at,
			COALESCE(i.title, '')
		FROM cart_items ci
		LEFT JOIN items i ON i.id = ci.item_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at, ci.id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logError("list cart", err, userID)
		return nil, fmt.Errorf("select cart items: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var (
			ci         domain.CartItem
			itemID     sql.NullInt64
			customText sql.NullString
			price      sql.NullFloat64
			currencyID sql.NullInt64
		)

		if err := rows.Scan(&ci.ID, &ci.UserID, &itemID, &customText, &price, &currencyID, &ci.CreatedAt, &ci.ItemTitle); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}

		ci.ItemID = int64Ptr(itemID)
		ci.CustomText = customText.String
		ci.PriceAmount = float64Ptr(price)
		ci.CurrencyID = int64Ptr(currencyID)
		items = append(items, ci)
	}

	return items, rows.Err()
}

func (r *cartRepository) Remove(ctx context.Context, userID, cartItemID int64) (bool, error) {
	const query = `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, cartItemID, userID)
	if err != nil {
		r.logError("remove cart item", err, userID)
		return false, fmt.Errorf("delete cart item: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cart item rows affected: %w", err)
	}

	return n > 0, nil
}

func (r *cartRepository) Clear(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		r.logError("clear cart", err, userID)
		return fmt.Errorf("clear cart: %w", err)
	}

	return nil
}

func (r *cartRepository) logError(operation string, err error, userID int64) {
	if r.log != nil {
		r.log.Error("cart repository failed",
			slog.String("operation", operation),
			slog.Int64("user_id", userID),
			slog.Any("error", err),
		)
	}
}
