package backup

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresStore dumps and loads tables through Postgres' JSON functions, so
// one generic statement serves every table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Database(ctx context.Context) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT current_database()`).Scan(&name)
	return name, err
}

// Table names come from Tables only; they are never user input.

func (s *PostgresStore) Dump(ctx context.Context, table Table) (json.RawMessage, error) {
	query := fmt.Sprintf(`SELECT COALESCE(json_agg(row_to_json(t)), '[]'::json) FROM %s t`, table.Name)

	var data []byte
	if err := s.db.QueryRowContext(ctx, query).Scan(&data); err != nil {
		return nil, fmt.Errorf("dump %s: %w", table.Name, err)
	}
	return data, nil
}

func (s *PostgresStore) Clear(ctx context.Context, table Table) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, table.Name)); err != nil {
		return fmt.Errorf("clear %s: %w", table.Name, err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, table Table, records json.RawMessage) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	insert := fmt.Sprintf(`INSERT INTO %[1]s SELECT * FROM json_populate_recordset(NULL::%[1]s, $1::json)`, table.Name)
	res, err := tx.ExecContext(ctx, insert, string(records))
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", table.Name, err)
	}

	if table.Serial {
		reset := fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), GREATEST(COALESCE(MAX(id), 0), 1)) FROM %[1]s`,
			table.Name,
		)
		if _, err := tx.ExecContext(ctx, reset); err != nil {
			return 0, fmt.Errorf("reset %s sequence: %w", table.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
