package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Proton-105/lovemenu-bot/internal/domain"
)

type debtRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewDebtRepository creates a SQL-backed debt ledger repository.
func NewDebtRepository(db *sql.DB, log *slog.Logger) DebtRepository {
	return &debtRepository{db: db, log: log}
}

func (r *debtRepository) Increment(ctx context.Context, userID, currencyID int64, amount float64) error {
	const query = `
		INSERT INTO user_debts (user_id, currency_id, amount, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, currency_id)
		DO UPDATE SET amount = user_debts.amount + EXCLUDED.amount, updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, userID, currencyID, amount); err != nil {
		r.logError("increment debt", err, userID)
		return fmt.Errorf("increment debt: %w", err)
	}

	return nil
}

func (r *debtRepository) Get(ctx context.Context, userID, currencyID int64) (*domain.UserDebt, error) {
	const query = `
		SELECT user_id, currency_id, amount, updated_at
		FROM user_debts
		WHERE user_id = $1 AND currency_id = $2
	`

	var debt domain.UserDebt
	if err := r.db.QueryRowContext(ctx, query, userID, currencyID).
		Scan(&debt.UserID, &debt.CurrencyID, &debt.Amount, &debt.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		r.logError("select debt", err, userID)
		return nil, fmt.Errorf("select debt: %w", err)
	}

	return &debt, nil
}

func (r *debtRepository) Set(ctx context.Context, userID, currencyID int64, amount float64) error {
	const query = `
		UPDATE user_debts
		SET amount = $3, updated_at = NOW()
		WHERE user_id = $1 AND currency_id = $2
	`

	res, err := r.db.ExecContext(ctx, query, userID, currencyID, amount)
	if err != nil {
		r.logError("set debt", err, userID)
		return fmt.Errorf("update debt: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *debtRepository) ListByUser(ctx context.Context, userID int64) ([]domain.UserDebt, error) {
	const query = `
		SELECT user_id, currency_id, amount, updated_at
		FROM user_debts
		WHERE user_id = $1
		ORDER BY currency_id
	`

	return r.list(ctx, query, userID)
}

func (r *debtRepository) ListPositive(ctx context.Context) ([]domain.UserDebt, error) {
	const query = `
		SELECT user_id, currency_id, amount, updated_at
		FROM user_debts
		WHERE amount > 0
		ORDER BY user_id, currency_id
	`

	return r.list(ctx, query)
}

func (r *debtRepository) list(ctx context.Context, query string, args ...any) ([]domain.UserDebt, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logError("list debts", err, 0)
		return nil, fmt.Errorf("select debts: %w", err)
	}
	defer rows.Close()

	var debts []domain.UserDebt
	for rows.Next() {
		var d domain.UserDebt
		if err := rows.Scan(&d.UserID, &d.CurrencyID, &d.Amount, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		debts = append(debts, d)
	}

	return debts, rows.Err()
}

func (r *debtRepository) AddPayment(ctx context.Context, payment *domain.PaymentHistory) error {
	const query = `
		INSERT INTO payment_histories (user_id, currency_id, amount, order_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowContext(ctx, query, payment.UserID, payment.CurrencyID, payment.Amount, nullInt64(payment.OrderID)).
		Scan(&payment.ID, &payment.CreatedAt); err != nil {
		r.logError("insert payment", err, payment.UserID)
		return fmt.Errorf("insert payment history: %w", err)
	}

	return nil
}

func (r *debtRepository) logError(operation string, err error, userID int64) {
	if r.log != nil {
		r.log.Error("debt repository failed",
			slog.String("operation", operation),
			slog.Int64("user_id", userID),
			slog.Any("error", err),
		)
	}
}
