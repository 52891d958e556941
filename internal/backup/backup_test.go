package backup

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/lovemenu-bot/internal/testutil"
)

type memoryStore struct {
	tables   map[string]json.RawMessage
	cleared  []string
	failDump map[string]bool
	failLoad map[string]bool
}

func (m *memoryStore) Database(context.Context) (string, error) { return "lovemenu", nil }

func (m *memoryStore) Dump(_ context.Context, table Table) (json.RawMessage, error) {
	if m.failDump[table.Name] {
		return nil, errors.New("boom")
	}
	if data, ok := m.tables[table.Name]; ok {
		return data, nil
	}
	return json.RawMessage(`[]`), nil
}

func (m *memoryStore) Clear(_ context.Context, table Table) error {
	m.cleared = append(m.cleared, table.Name)
	delete(m.tables, table.Name)
	return nil
}

func (m *memoryStore) Load(_ context.Context, table Table, records json.RawMessage) (int, error) {
	if m.failLoad[table.Name] {
		return 0, errors.New("constraint violation")
	}
	m.tables[table.Name] = records
	return countRecords(records)
}

func newService(store Store) *Service {
	svc := NewService(store, testutil.Logger())
	svc.now = func() time.Time { return time.Date(2025, 2, 14, 9, 30, 0, 0, time.UTC) }
	return svc
}

func TestCreateWritesTablesAndManifest(t *testing.T) {
	store := &memoryStore{
		tables: map[string]json.RawMessage{
			"currencies": json.RawMessage(`[{"id":1,"name":"Поцілунки"}]`),
			"users":      json.RawMessage(`[{"user_id":7},{"user_id":8}]`),
		},
		failDump: map[string]bool{"orders": true},
	}

	path, manifest, err := newService(store).Create(context.Background(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "backup_2025-02-14_09-30-00", filepath.Base(path))
	assert.Equal(t, "lovemenu", manifest.Database)
	assert.Equal(t, 3, manifest.TotalRecords)
	assert.NotContains(t, manifest.Collections, "orders")
	assert.Len(t, manifest.Collections, len(Tables)-1)

	onDisk, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, manifest.TotalRecords, onDisk.TotalRecords)

	_, err = os.Stat(filepath.Join(path, "orders.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestRestoreSkipsMissingAndEmptyTables(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	write("currencies.json", `[{"id":1}]`)
	write("categories.json", `[]`)
	write("items.json", `[{"id":1},{"id":2}]`)
	write("users.json", `[{"user_id":1}]`)
	write(ManifestFile, `{"timestamp":"2025-02-14T09:30:00Z","database":"lovemenu","totalRecords":4,"collections":["currencies"]}`)

	store := &memoryStore{
		tables:   map[string]json.RawMessage{},
		failLoad: map[string]bool{"users": true},
	}

	result, err := newService(store).Restore(context.Background(), dir)
	require.NoError(t, err)

	require.NotNil(t, result.Manifest)
	assert.Equal(t, "lovemenu", result.Manifest.Database)
	assert.Equal(t, map[string]int{"currencies": 1, "items": 2}, result.Restored)
	assert.Equal(t, 3, result.Total)
	assert.Contains(t, result.Skipped, "categories")
	assert.Contains(t, result.Skipped, "orders")
	assert.Contains(t, result.Failed, "users")

	// children are cleared before parents
	assert.Equal(t, []string{"users", "items", "currencies"}, store.cleared)
}

func TestRestoreRejectsMissingDirectory(t *testing.T) {
	_, err := newService(&memoryStore{}).Restore(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
