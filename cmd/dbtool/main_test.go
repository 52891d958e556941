package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Proton-105/lovemenu-bot/internal/backup"
)

func TestRunWithoutCommand(t *testing.T) {
	err := run(context.Background(), nil, &bytes.Buffer{})
	assert.ErrorIs(t, err, errUsage)
}

func TestPrintRestore(t *testing.T) {
	var out bytes.Buffer

	printRestore(&out, &backup.Result{
		Manifest: &backup.Manifest{
			Timestamp:    time.Date(2024, 2, 14, 9, 30, 0, 0, time.UTC),
			Database:     "lovemenu",
			TotalRecords: 12,
		},
		Restored: map[string]int{"items": 9, "categories": 3},
		Skipped:  []string{"orders"},
		Failed:   map[string]error{"users": errors.New("boom")},
		Total:    12,
	})

	text := out.String()
	assert.Contains(t, text, `backup of "lovemenu" taken 2024-02-14 09:30:00: 12 records`)
	assert.Contains(t, text, "items")
	assert.Contains(t, text, "orders             skipped (no data)")
	assert.Contains(t, text, "users              FAILED: boom")
	assert.Contains(t, text, "restored 12 records")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("categories")), bytes.Index(out.Bytes(), []byte("items")))
}
