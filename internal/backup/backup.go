// Package backup exports every table to a directory of JSON files and
// restores such a directory back into the database.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// ManifestFile describes a backup directory.
const ManifestFile = "backup_info.json"

const dirLayout = "2006-01-02_15-04-05"

// Table is a backed up table. Serial tables get their id sequence reset after a restore.
type Table struct {
	Name   string
	Serial bool
}

// Tables lists the tables in dependency order: parents before children.
var Tables = []Table{
	{Name: "currencies", Serial: true},
	{Name: "categories", Serial: true},
	{Name: "subcategories", Serial: true},
	{Name: "items", Serial: true},
	{Name: "special_menus", Serial: true},
	{Name: "users"},
	{Name: "cart_items", Serial: true},
	{Name: "orders", Serial: true},
	{Name: "order_items", Serial: true},
	{Name: "payment_histories", Serial: true},
	{Name: "user_debts"},
}

type Manifest struct {
	Timestamp    time.Time `json:"timestamp"`
	Database     string    `json:"database"`
	TotalRecords int       `json:"totalRecords"`
	Collections  []string  `json:"collections"`
}

// Store reads and replaces whole tables as JSON arrays of row objects.
type Store interface {
	Database(ctx context.Context) (string, error)
	Dump(ctx context.Context, table Table) (json.RawMessage, error)
	Clear(ctx context.Context, table Table) error
	Load(ctx context.Context, table Table, records json.RawMessage) (int, error)
}

// Result reports a restore per table.
type Result struct {
	Manifest *Manifest
	Restored map[string]int
	Skipped  []string
	Failed   map[string]error
	Total    int
}

type Service struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

func NewService(store Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, log: log, now: time.Now}
}

// Create writes backup_<timestamp>/ under dir and returns its path. A table
// that fails to export is logged and left out of the backup.
func (s *Service) Create(ctx context.Context, dir string) (string, *Manifest, error) {
	now := s.now()
	path := filepath.Join(dir, "backup_"+now.Format(dirLayout))
	if err := os.MkdirAll(path, 0o750); err != nil {
		return "", nil, fmt.Errorf("create backup dir: %w", err)
	}

	database, err := s.store.Database(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("resolve database name: %w", err)
	}

	manifest := &Manifest{Timestamp: now.UTC(), Database: database}

	for _, table := range Tables {
		records, err := s.store.Dump(ctx, table)
		if err != nil {
			s.log.Error("table export failed", slog.String("table", table.Name), slog.Any("error", err))
			continue
		}

		count, err := countRecords(records)
		if err != nil {
			s.log.Error("table export is not a JSON array", slog.String("table", table.Name), slog.Any("error", err))
			continue
		}

		if err := os.WriteFile(filepath.Join(path, table.Name+".json"), records, 0o600); err != nil {
			return "", nil, fmt.Errorf("write %s: %w", table.Name, err)
		}

		s.log.Info("table exported", slog.String("table", table.Name), slog.Int("records", count))
		manifest.TotalRecords += count
		manifest.Collections = append(manifest.Collections, table.Name)
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(path, ManifestFile), data, 0o600); err != nil {
		return "", nil, fmt.Errorf("write manifest: %w", err)
	}

	return path, manifest, nil
}

// ReadManifest loads backup_info.json from a backup directory.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(path, ManifestFile))
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &manifest, nil
}

// Restore replaces the content of every table that has a non-empty file in
// path. Missing or empty files are skipped; a failing table does not stop the others.
func (s *Service) Restore(ctx context.Context, path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("backup %q: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("backup %q is not a directory", path)
	}

	result := &Result{Restored: map[string]int{}, Failed: map[string]error{}}

	manifest, err := ReadManifest(path)
	switch {
	case err == nil:
		result.Manifest = manifest
	case errors.Is(err, os.ErrNotExist):
		s.log.Warn("backup has no manifest", slog.String("path", path))
	default:
		return nil, err
	}

	pending := make(map[string]json.RawMessage, len(Tables))
	for _, table := range Tables {
		records, err := readTable(path, table)
		if err != nil {
			result.Failed[table.Name] = err
			continue
		}
		if records == nil {
			result.Skipped = append(result.Skipped, table.Name)
			continue
		}
		pending[table.Name] = records
	}

	// children first, so foreign keys never block a delete
	for i := len(Tables) - 1; i >= 0; i-- {
		table := Tables[i]
		if _, ok := pending[table.Name]; !ok {
			continue
		}
		if err := s.store.Clear(ctx, table); err != nil {
			result.Failed[table.Name] = fmt.Errorf("clear: %w", err)
			delete(pending, table.Name)
		}
	}

	for _, table := range Tables {
		records, ok := pending[table.Name]
		if !ok {
			continue
		}

		n, err := s.store.Load(ctx, table, records)
		if err != nil {
			result.Failed[table.Name] = fmt.Errorf("load: %w", err)
			s.log.Error("table restore failed", slog.String("table", table.Name), slog.Any("error", err))
			continue
		}

		s.log.Info("table restored", slog.String("table", table.Name), slog.Int("records", n))
		result.Restored[table.Name] = n
		result.Total += n
	}

	return result, nil
}

// readTable returns nil records when the file is missing or holds an empty array.
func readTable(path string, table Table) (json.RawMessage, error) {
	data, err := os.ReadFile(filepath.Join(path, table.Name+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	count, err := countRecords(data)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	return data, nil
}

func countRecords(data []byte) (int, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, err
	}
	return len(records), nil
}
