// Package i18n resolves UI strings from YAML translation files.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLang is the language of the bundled translations.
const DefaultLang = "uk"

//go:embed locales/*.yaml
var bundled embed.FS

// Translator resolves localized strings using dot-separated keys.
type Translator interface {
	T(key string) string
	Lang() string
}

// Manager stores all available translations.
type Manager struct {
	translations map[string]map[string]string
	defaultLang  string
}

// Load loads the translations bundled into the binary.
func Load(defaultLang string) (*Manager, error) {
	return LoadFS(bundled, "locales", defaultLang)
}

// LoadFS loads every YAML file of dir inside fsys. Each file maps a language
// code to a tree of keys; nested keys are joined with dots.
func LoadFS(fsys fs.FS, dir, defaultLang string) (*Manager, error) {
	if defaultLang == "" {
		defaultLang = DefaultLang
	}

	names, err := fs.Glob(fsys, path.Join(dir, "*.y*ml"))
	if err != nil {
		return nil, fmt.Errorf("i18n: list %s: %w", dir, err)
	}

	m := &Manager{translations: make(map[string]map[string]string), defaultLang: defaultLang}
	for _, name := range names {
		if err := m.merge(fsys, name); err != nil {
			return nil, err
		}
	}

	if _, ok := m.translations[defaultLang]; !ok {
		return nil, fmt.Errorf("i18n: default language %q is missing in %s", defaultLang, dir)
	}
	return m, nil
}

func (m *Manager) merge(fsys fs.FS, name string) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("i18n: read %s: %w", name, err)
	}

	var langs map[string]map[string]any
	if err := yaml.Unmarshal(data, &langs); err != nil {
		return fmt.Errorf("i18n: parse %s: %w", name, err)
	}

	for lang, tree := range langs {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if lang == "" {
			continue
		}
		if m.translations[lang] == nil {
			m.translations[lang] = make(map[string]string)
		}
		collect("", tree, m.translations[lang])
	}
	return nil
}

func collect(prefix string, tree map[string]any, out map[string]string) {
	for key, value := range tree {
		if prefix != "" {
			key = prefix + "." + key
		}
		switch v := value.(type) {
		case string:
			out[key] = v
		case map[string]any:
			collect(key, v, out)
		}
	}
}

// Translator returns a translator for lang, or for the default language when
// lang has no translations.
func (m *Manager) Translator(lang string) Translator {
	if m == nil {
		return translator{}
	}

	lang = strings.ToLower(strings.TrimSpace(lang))
	if m.translations[lang] == nil {
		lang = m.defaultLang
	}
	return translator{primary: m.translations[lang], fallback: m.translations[m.defaultLang], lang: lang}
}

// Format translates key and fills its fmt verbs with args.
func Format(t Translator, key string, args ...any) string {
	if t == nil {
		return key
	}
	return fmt.Sprintf(t.T(key), args...)
}

type translator struct {
	primary  map[string]string
	fallback map[string]string
	lang     string
}

func (t translator) Lang() string { return t.lang }

// T falls back to the default language, then to the key itself.
func (t translator) T(key string) string {
	key = strings.TrimSpace(key)
	if value, ok := t.primary[key]; ok {
		return value
	}
	if value, ok := t.fallback[key]; ok {
		return value
	}
	return key
}
