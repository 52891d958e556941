package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBundled(t *testing.T) {
	manager, err := Load("")
	require.NoError(t, err)

	tr := manager.Translator("de")
	assert.Equal(t, DefaultLang, tr.Lang())
	assert.Equal(t, "🛒 Кошик", tr.T("main_menu.cart"))
	assert.Equal(t, "✅ Спецменю відправлено: 3 успішно, 1 помилок", Format(tr, "admin_special.report", 3, 1))
	assert.Equal(t, "missing.key", tr.T("missing.key"))
}

func TestLoadFSFallback(t *testing.T) {
	fsys := fstest.MapFS{
		"tr/uk.yaml": {Data: []byte("uk:\n  greet: Привіт\n  only_uk: так\n")},
		"tr/en.yml":  {Data: []byte("en:\n  greet: Hello\n")},
		"tr/notes":   {Data: []byte("ignored")},
	}

	manager, err := LoadFS(fsys, "tr", "uk")
	require.NoError(t, err)

	en := manager.Translator("EN")
	assert.Equal(t, "Hello", en.T("greet"))
	assert.Equal(t, "так", en.T("only_uk"))
	assert.Equal(t, "uk", manager.Translator("fr").Lang())
	assert.Equal(t, "nope", en.T("nope"))
}

func TestLoadFSMissingDefault(t *testing.T) {
	fsys := fstest.MapFS{"tr/en.yaml": {Data: []byte("en:\n  greet: Hello\n")}}

	_, err := LoadFS(fsys, "tr", "uk")
	assert.Error(t, err)
}
