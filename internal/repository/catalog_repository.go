package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Proton-105/lovemenu-bot/internal/domain"
)

const itemColumns = `id, category_id, subcategory_id, title, description, media_kind, media_file_id, media_url,
		price_amount, currency_id, is_active, created_at`

type catalogRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewCatalogRepository creates a SQL-backed catalog repository.
func NewCatalogRepository(db *sql.DB, log *slog.Logger) CatalogRepository {
	return &catalogRepository{db: db, log: log}
}

func (r *catalogRepository) Categories(ctx context.Context) ([]domain.Category, error) {
	const query = `SELECT id, name, emoji FROM categories ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logError("list categories", err)
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Emoji); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (r *catalogRepository) CategoryByID(ctx context.Context, id int64) (*domain.Category, error) {
	const query = `SELECT id, name, emoji FROM categories WHERE id = $1`

	var c domain.Category
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Emoji); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		r.logError("select category", err, slog.Int64("category_id", id))
		return nil, fmt.Errorf("select category: %w", err)
	}

	return &c, nil
}

func (r *catalogRepository) Subcategories(ctx context.Context, categoryID int64) ([]domain.Subcategory, error) {
	const query = `
		SELECT id, category_id, name, is_custom
		FROM subcategories
		WHERE category_id = $1
		ORDER BY id
	`

	return r.querySubcategories(ctx, query, categoryID)
}

func (r *catalogRepository) AllSubcategories(ctx context.Context) ([]domain.Subcategory, error) {
	const query = `SELECT id, category_id, name, is_custom FROM subcategories ORDER BY id`

	return r.querySubcategories(ctx, query)
}

func (r *catalogRepository) querySubcategories(ctx context.Context, query string, args ...any) ([]domain.Subcategory, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logError("list subcategories", err)
		return nil, fmt.Errorf("select subcategories: %w", err)
	}
	defer rows.Close()

	var subcategories []domain.Subcategory
	for rows.Next() {
		var s domain.Subcategory
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name, &s.IsCustom); err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		subcategories = append(subcategories, s)
	}

	return subcategories, rows.Err()
}

func (r *catalogRepository) SubcategoryByID(ctx context.Context, id int64) (*domain.Subcategory, error) {
	const query = `SELECT id, category_id, name, is_custom FROM subcategories WHERE id = $1`

	var s domain.Subcategory
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.CategoryID, &s.Name, &s.IsCustom); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		r.logError("select subcategory", err, slog.Int64("subcategory_id", id))
		return nil, fmt.Errorf("select subcategory: %w", err)
	}

	return &s, nil
}

func (r *catalogRepository) ItemsBySubcategory(ctx context.Context, subcategoryID int64) ([]domain.Item, error) {
	query := `SELECT ` + itemColumns + `
		FROM items
		WHERE subcategory_id = $1 AND is_active
		ORDER BY id`

	return r.queryItems(ctx, query, subcategoryID)
}

func (r *catalogRepository) ItemsByCategory(ctx context.Context, categoryID int64) ([]domain.Item, error) {
	query := `SELECT ` + itemColumns + `
		FROM items
		WHERE category_id = $1 AND is_active
		ORDER BY id`

	return r.queryItems(ctx, query, categoryID)
}

func (r *catalogRepository) queryItems(ctx context.Context, query string, args ...any) ([]domain.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logError("list items", err)
		return nil, fmt.Errorf("select items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

func (r *catalogRepository) ItemByID(ctx context.Context, id int64) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`

	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		r.logError("select item", err, slog.Int64("item_id", id))
		return nil, err
	}

	return item, nil
}

func (r *catalogRepository) CreateItem(ctx context.Context, item *domain.Item) error {
	const query = `
		INSERT INTO items (category_id, subcategory_id, title, description, media_kind, media_file_id, media_url,
			price_amount, currency_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		item.CategoryID,
		nullInt64(item.SubcategoryID),
		item.Title,
		item.Description,
		nullString(string(item.Media.Kind)),
		item.Media.FileID,
		item.Media.URL,
		item.PriceAmount,
		nullInt64(item.CurrencyID),
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		r.logError("create item", err, slog.String("title", item.Title))
		return fmt.Errorf("insert item: %w", err)
	}

	item.IsActive = true
	return nil
}

func (r *catalogRepository) UpdateItemMedia(ctx context.Context, itemID int64, media domain.Media) error {
	const query = `
		UPDATE items
		SET media_kind = $2, media_file_id = $3, media_url = $4
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, itemID, nullString(string(media.Kind)), media.FileID, media.URL)
	if err != nil {
		r.logError("update item media", err, slog.Int64("item_id", itemID))
		return fmt.Errorf("update item media: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *catalogRepository) AdoptFileID(ctx context.Context, url, fileID string) (int64, error) {
	const query = `
		UPDATE items
		SET media_file_id = $2
		WHERE media_url = $1 AND media_file_id = ''
	`

	res, err := r.db.ExecContext(ctx, query, url, fileID)
	if err != nil {
		r.logError("adopt media file id", err, slog.String("url", url))
		return 0, fmt.Errorf("adopt media file id: %w", err)
	}

	return res.RowsAffected()
}

func (r *catalogRepository) Currencies(ctx context.Context) ([]domain.Currency, error) {
	const query = `SELECT id, name, emoji FROM currencies ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logError("list currencies", err)
		return nil, fmt.Errorf("select currencies: %w", err)
	}
	defer rows.Close()

	var currencies []domain.Currency
	for rows.Next() {
		var c domain.Currency
		if err := rows.Scan(&c.ID, &c.Name, &c.Emoji); err != nil {
			return nil, fmt.Errorf("scan currency: %w", err)
		}
		currencies = append(currencies, c)
	}

	return currencies, rows.Err()
}

func (r *catalogRepository) CurrencyByID(ctx context.Context, id int64) (*domain.Currency, error) {
	const query = `SELECT id, name, emoji FROM currencies WHERE id = $1`

	var c domain.Currency
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Emoji); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		r.logError("select currency", err, slog.Int64("currency_id", id))
		return nil, fmt.Errorf("select currency: %w", err)
	}

	return &c, nil
}

func (r *catalogRepository) logError(operation string, err error, attrs ...any) {
	if r.log == nil {
		return
	}
	args := append([]any{slog.String("operation", operation), slog.Any("error", err)}, attrs...)
	r.log.Error("catalog repository failed", args...)
}

func scanItem(row rowScanner) (*domain.Item, error) {
	var (
		item          domain.Item
		subcategoryID sql.NullInt64
		currencyID    sql.NullInt64
		mediaKind     sql.NullString
		fileID, url   string
	)

	if err := row.Scan(
		&item.ID,
		&item.CategoryID,
		&subcategoryID,
		&item.Title,
		&item.Description,
		&mediaKind,
		&fileID,
		&url,
		&item.PriceAmount,
		&currencyID,
		&item.IsActive,
		&item.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}

	item.SubcategoryID = int64Ptr(subcategoryID)
	item.CurrencyID = int64Ptr(currencyID)
	item.Media = mediaFromColumns(mediaKind, fileID, url)

	return &item, nil
}
