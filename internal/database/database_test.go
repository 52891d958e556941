package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/lovemenu-bot/internal/catalog"
)

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_vocabulary.up.sql": {Data: []byte("SELECT 1")},
		"0001_schema.up.sql":     {Data: []byte("SELECT 1")},
		"0001_schema.down.sql":   {Data: []byte("SELECT 1")},
		"README.md":              {Data: []byte("docs")},
		"nested/0003.up.sql":     {Data: []byte("SELECT 1")},
	}

	names, err := ListMigrations(fsys, ".")
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_schema.up.sql", "0002_vocabulary.up.sql"}, names)
}

func TestLoadSeed(t *testing.T) {
	seed, err := LoadSeed()
	require.NoError(t, err)
	require.Len(t, seed, 4)

	titles := map[string]bool{}
	randomDate := false
	for _, category := range seed {
		assert.NotEmpty(t, category.Items, category.Category)
		for _, item := range category.Items {
			assert.NotEmpty(t, item.Subcategory, item.Title)
			assert.Contains(t, []string{"photo", "gif", "video"}, item.MediaKind, item.Title)
			assert.GreaterOrEqual(t, item.Price, 0.0)

			key := category.Category + "/" + item.Title
			assert.False(t, titles[key], "duplicate seed item %s", key)
			titles[key] = true

			if item.Title == catalog.RandomDateTitle {
				randomDate = true
				assert.Equal(t, catalog.DatesCategory, category.Category)
			}
		}
	}
	assert.True(t, randomDate)
}
