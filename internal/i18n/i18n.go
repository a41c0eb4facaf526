// Package i18n resolves localized bot strings from YAML catalogs.
package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Translator resolves localized strings using dot-separated keys.
type Translator interface {
	// T returns the localized string for key, falling back to the default
	// language and finally to the key itself.
	T(key string) string
	// Tf returns the localized string for key with Sprintf arguments applied.
	Tf(key string, args ...any) string
	// Lang returns the language this translator resolves for.
	Lang() string
}

// Manager stores all available translation catalogs.
type Manager struct {
	catalogs    map[string]map[string]string
	defaultLang string
}

// LoadDir loads translation catalogs from a directory. Each YAML file holds
// one language; the language code is the file name without extension.
func LoadDir(dir, defaultLang string) (*Manager, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read dir %s: %w", dir, err)
	}

	catalogs := make(map[string]map[string]string)

	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}

		lang := strings.ToLower(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
		if lang == "" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		catalog, err := parseCatalog(path)
		if err != nil {
			return nil, err
		}

		catalogs[lang] = catalog
	}

	if len(catalogs) == 0 {
		return nil, fmt.Errorf("i18n: no yaml catalogs found in %s", dir)
	}

	defaultLang = strings.ToLower(strings.TrimSpace(defaultLang))
	if defaultLang == "" {
		defaultLang = "ru"
	}

	if _, ok := catalogs[defaultLang]; !ok {
		return nil, fmt.Errorf("i18n: default language %q is missing", defaultLang)
	}

	return &Manager{catalogs: catalogs, defaultLang: defaultLang}, nil
}

// Translator returns a translator for the requested language, falling back to
// the default language for unknown codes.
func (m *Manager) Translator(lang string) Translator {
	if m == nil {
		return translator{}
	}

	norm := strings.ToLower(strings.TrimSpace(lang))
	if norm == "" || m.catalogs[norm] == nil {
		norm = m.defaultLang
	}

	return translator{
		lang:     norm,
		fallback: m.defaultLang,
		catalogs: m.catalogs,
	}
}

// Languages returns all loaded language codes in sorted order.
func (m *Manager) Languages() []string {
	if m == nil {
		return nil
	}

	languages := make([]string, 0, len(m.catalogs))
	for lang := range m.catalogs {
		languages = append(languages, lang)
	}
	sort.Strings(languages)

	return languages
}

type translator struct {
	lang     string
	fallback string
	catalogs map[string]map[string]string
}

func (t translator) Lang() string {
	return t.lang
}

func (t translator) T(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}

	if value := t.lookup(t.lang, key); value != "" {
		return value
	}

	if value := t.lookup(t.fallback, key); value != "" {
		return value
	}

	return key
}

func (t translator) Tf(key string, args ...any) string {
	template := t.T(key)
	if len(args) == 0 {
		return template
	}

	return fmt.Sprintf(template, args...)
}

func (t translator) lookup(lang, key string) string {
	if lang == "" || t.catalogs == nil {
		return ""
	}

	if catalog := t.catalogs[lang]; catalog != nil {
		return catalog[key]
	}

	return ""
}

func isYAML(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}

func parseCatalog(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("i18n: read file %s: %w", path, err)
	}

	catalog := make(map[string]string)
	if strings.TrimSpace(string(data)) == "" {
		return catalog, nil
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("i18n: parse file %s: %w", path, err)
	}

	flatten("", raw, catalog)
	return catalog, nil
}

func flatten(prefix string, in map[string]any, out map[string]string) {
	for key, value := range in {
		if key == "" {
			continue
		}

		nextKey := key
		if prefix != "" {
			nextKey = prefix + "." + key
		}

		switch v := value.(type) {
		case string:
			out[nextKey] = v
		case map[string]any:
			flatten(nextKey, v, out)
		}
	}
}
