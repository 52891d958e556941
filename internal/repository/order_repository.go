package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Proton-105/lovemenu-bot/internal/domain"
)

type orderRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewOrderRepository creates a SQL-backed order repository.
func NewOrderRepository(db *sql.DB, log *slog.Logger) OrderRepository {
	return &orderRepository{db: db, log: log}
}

// Create inserts the order header and its lines in one transaction.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create order: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}

	var dateRequested sql.NullTime
	if order.DateRequested != nil {
		dateRequested = sql.NullTime{Time: *order.DateRequested, Valid: true}
	}

	const insertOrder = `
		INSERT INTO orders (user_id, date_requested, comment, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	if err := tx.QueryRowContext(ctx, insertOrder, order.UserID, dateRequested, order.Comment, order.Status).
		Scan(&order.ID, &order.CreatedAt); err != nil {
		r.logError("insert order", err, slog.Int64("user_id", order.UserID))
		return fmt.Errorf("insert order: %w", err)
	}

	const insertItem = `
		INSERT INTO order_items (order_id, position, item_id, custom_text, title, price_amount, currency_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for i, item := range order.Items {
		if _, err := tx.ExecContext(
			ctx,
			insertItem,
			order.ID,
			i,
			nullInt64(item.ItemID),
			nullString(item.CustomText),
			item.Title,
			nullFloat64(item.PriceAmount),
			nullInt64(item.CurrencyID),
		); err != nil {
			r.logError("insert order item", err, slog.Int64("order_id", order.ID))
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}

	return nil
}

func (r *orderRepository) List(ctx context.Context, limit int) ([]domain.Order, error) {
	const query = `
		SELECT id, user_id, date_requested, comment, status, created_at
		FROM orders
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logError("list orders", err)
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var (
		orders []domain.Order
		ids    []int64
	)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.items(ctx, ids[i])
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

func (r *orderRepository) ByID(ctx context.Context, id int64) (*domain.Order, error) {
	const query = `
		SELECT id, user_id, date_requested, comment, status, created_at
		FROM orders
		WHERE id = $1
	`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		r.logError("select order", err, slog.Int64("order_id", id))
		return nil, err
	}

	items, err := r.items(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (r *orderRepository) items(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	const query = `
		SELECT item_id, custom_text, title, price_amount, currency_id
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.logError("list order items", err, slog.Int64("order_id", orderID))
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			item       domain.OrderItem
			itemID     sql.NullInt64
			customText sql.NullString
			price      sql.NullFloat64
			currencyID sql.NullInt64
		)
		if err := rows.Scan(&itemID, &customText, &item.Title, &price, &currencyID); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.ItemID = int64Ptr(itemID)
		item.CustomText = customText.String
		item.PriceAmount = float64Ptr(price)
		item.CurrencyID = int64Ptr(currencyID)
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *orderRepository) logError(operation string, err error, attrs ...any) {
	if r.log == nil {
		return
	}
	args := append([]any{slog.String("operation", operation), slog.Any("error", err)}, attrs...)
	r.log.Error("order repository failed", args...)
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order         domain.Order
		dateRequested sql.NullTime
	)

	if err := row.Scan(&order.ID, &order.UserID, &dateRequested, &order.Comment, &order.Status, &order.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if dateRequested.Valid {
		d := time.Date(dateRequested.Time.Year(), dateRequested.Time.Month(), dateRequested.Time.Day(), 0, 0, 0, 0, time.Local)
		order.DateRequested = &d
	}

	return &order, nil
}
