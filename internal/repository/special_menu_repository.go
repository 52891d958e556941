package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Proton-105/lovemenu-bot/internal/domain"
)

type specialMenuRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewSpecialMenuRepository creates a SQL-backed special menu repository.
func NewSpecialMenuRepository(db *sql.DB, log *slog.Logger) SpecialMenuRepository {
	return &specialMenuRepository{db: db, log: log}
}

// Publish deactivates every stored menu and inserts the new active one in a single transaction.
func (r *specialMenuRepository) Publish(ctx context.Context, menu *domain.SpecialMenu) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin publish special menu: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE special_menus SET is_active = FALSE WHERE is_active`); err != nil {
		r.logError("deactivate special menus", err)
		return fmt.Errorf("deactivate special menus: %w", err)
	}

	const insert = `
		INSERT INTO special_menus (media_kind, media_file_id, media_url, description, price_amount, currency_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING id, created_at
	`

	if err := tx.QueryRowContext(
		ctx,
		insert,
		nullString(string(menu.Media.Kind)),
		menu.Media.FileID,
		menu.Media.URL,
		menu.Description,
		menu.PriceAmount,
		nullInt64(menu.CurrencyID),
	).Scan(&menu.ID, &menu.CreatedAt); err != nil {
		r.logError("insert special menu", err)
		return fmt.Errorf("insert special menu: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit special menu: %w", err)
	}

	menu.IsActive = true
	return nil
}

func (r *specialMenuRepository) Active(ctx context.Context) (*domain.SpecialMenu, error) {
	const query = `
		SELECT id, media_kind, media_file_id, media_url, description, price_amount, currency_id, is_active, created_at
		FROM special_menus
		WHERE is_active
		ORDER BY id DESC
		LIMIT 1
	`

	return r.scan(r.db.QueryRowContext(ctx, query))
}

func (r *specialMenuRepository) ByID(ctx context.Context, id int64) (*domain.SpecialMenu, error) {
	const query = `
		SELECT id, media_kind, media_file_id, media_url, description, price_amount, currency_id, is_active, created_at
		FROM special_menus
		WHERE id = $1
	`

	return r.scan(r.db.QueryRowContext(ctx, query, id))
}

func (r *specialMenuRepository) scan(row *sql.Row) (*domain.SpecialMenu, error) {
	var (
		menu        domain.SpecialMenu
		mediaKind   sql.NullString
		fileID, url string
		currencyID  sql.NullInt64
	)

	if err := row.Scan(
		&menu.ID,
		&mediaKind,
		&fileID,
		&url,
		&menu.Description,
		&menu.PriceAmount,
		&currencyID,
		&menu.IsActive,
		&menu.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		r.logError("select special menu", err)
		return nil, fmt.Errorf("select special menu: %w", err)
	}

	menu.Media = mediaFromColumns(mediaKind, fileID, url)
	menu.CurrencyID = int64Ptr(currencyID)

	return &menu, nil
}

func (r *specialMenuRepository) logError(operation string, err error) {
	if r.log != nil {
		r.log.Error("special menu repository failed", slog.String("operation", operation), slog.Any("error", err))
	}
}
