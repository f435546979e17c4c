// Package i18n looks up user-facing strings in JSON locale files.
//
// Locale files are named <code>.json and hold nested objects; keys are
// addressed with dots ("lock.success"). Values may contain {name}
// placeholders. Lookups fall back from the requested language to the
// default language and finally to the key itself, and never fail.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

//go:embed locales/*.json
var embedded embed.FS

// Params fills {name} placeholders.
type Params map[string]any

// LanguageStore returns a user's saved language preference.
type LanguageStore interface {
	Language(ctx context.Context, userID string) (string, error)
}

type Translator struct {
	mu          sync.RWMutex
	locales     map[string]map[string]any
	defaultLang string
	prefs       LanguageStore
}

var placeholder = regexp.MustCompile(`\{(\w+)\}`)

// New creates a translator loaded with the bundled locales. prefs may be nil.
func New(defaultLang string, prefs LanguageStore) (*Translator, error) {
	if defaultLang == "" {
		defaultLang = "en"
	}
	t := &Translator{defaultLang: strings.ToLower(defaultLang), prefs: prefs}
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		return nil, err
	}
	if err := t.LoadFS(sub); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadDir replaces the bundled locales with the files in dir.
func (t *Translator) LoadDir(dir string) error {
	return t.LoadFS(os.DirFS(dir))
}

// LoadFS reads every *.json file at the root of fsys. Files that fail to
// parse are skipped and logged.
func (t *Translator) LoadFS(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("failed to read locales: %w", err)
	}

	locales := make(map[string]map[string]any)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".json" {
			continue
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			log.Warn().Err(err).Str("file", name).Msg("Skipping unreadable locale file")
			continue
		}
		var tree map[string]any
		if err := json.Unmarshal(data, &tree); err != nil {
			log.Warn().Err(err).Str("file", name).Msg("Skipping invalid locale file")
			continue
		}
		locales[strings.ToLower(strings.TrimSuffix(name, ".json"))] = tree
	}
	if len(locales) == 0 {
		return fmt.Errorf("no locale files found")
	}

	t.mu.Lock()
	t.locales = locales
	t.mu.Unlock()
	return nil
}

// Languages returns the loaded language codes in sorted order.
func (t *Translator) Languages() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	codes := make([]string, 0, len(t.locales))
	for code := range t.locales {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// HasLanguage reports whether code has a loaded locale.
func (t *Translator) HasLanguage(code string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.locales[strings.ToLower(code)]
	return ok
}

func (t *Translator) DefaultLanguage() string { return t.defaultLang }

// Translate returns the string for key in lang.
func (t *Translator) Translate(lang, key string, params Params) string {
	t.mu.RLock()
	value, ok := deepGet(t.locales[strings.ToLower(lang)], key)
	if !ok {
		value, ok = deepGet(t.locales[t.defaultLang], key)
	}
	t.mu.RUnlock()
	if !ok {
		return key
	}
	return format(value, params)
}

// UserLanguage resolves a user's preferred language, falling back to the default.
func (t *Translator) UserLanguage(ctx context.Context, userID string) string {
	if t.prefs == nil || userID == "" {
		return t.defaultLang
	}
	lang, err := t.prefs.Language(ctx, userID)
	if err != nil || !t.HasLanguage(lang) {
		return t.defaultLang
	}
	return strings.ToLower(lang)
}

// ForUser translates key in the user's preferred language.
func (t *Translator) ForUser(ctx context.Context, userID, key string, params Params) string {
	return t.Translate(t.UserLanguage(ctx, userID), key, params)
}

func deepGet(tree map[string]any, key string) (any, bool) {
	var cur any = tree
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

func format(value any, params Params) string {
	s, ok := value.(string)
	if !ok {
		return fmt.Sprint(value)
	}
	if len(params) == 0 {
		return s
	}
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		if v, ok := params[m[1:len(m)-1]]; ok {
			return fmt.Sprint(v)
		}
		return m
	})
}
