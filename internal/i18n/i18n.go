// Package i18n is the UI string table for English, French and Arabic.
package i18n

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
	"trademind/internal/models"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// DefaultLanguage is used for unknown tags and missing keys.
const DefaultLanguage = models.LanguageEnglish

var supported = []models.Language{
	models.LanguageEnglish,
	models.LanguageFrench,
	models.LanguageArabic,
}

// Table resolves UI strings per language.
type Table struct {
	bundle     *i18n.Bundle
	localizers map[models.Language]*i18n.Localizer
	keys       []string
}

// New loads the embedded locale files.
func New() (*Table, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	t := &Table{
		bundle:     bundle,
		localizers: make(map[models.Language]*i18n.Localizer, len(supported)),
	}

	for _, lang := range supported {
		filename := fmt.Sprintf("locales/%s.yaml", lang)
		mf, err := bundle.LoadMessageFileFS(localeFS, filename)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", filename, err)
		}
		if lang == DefaultLanguage {
			for _, m := range mf.Messages {
				t.keys = append(t.keys, m.ID)
			}
		}
		t.localizers[lang] = i18n.NewLocalizer(bundle, string(lang), string(DefaultLanguage))
	}
	sort.Strings(t.keys)

	return t, nil
}

// T returns the string for key in lang, falling back to English and then to
// the key itself.
func (t *Table) T(lang models.Language, key string) string {
	loc, ok := t.localizers[lang]
	if !ok {
		loc = t.localizers[DefaultLanguage]
	}
	msg, err := loc.Localize(&i18n.LocalizeConfig{MessageID: key})
	if err != nil || msg == "" {
		return key
	}
	return msg
}

// All returns every known key resolved in lang.
func (t *Table) All(lang models.Language) map[string]string {
	out := make(map[string]string, len(t.keys))
	for _, k := range t.keys {
		out[k] = t.T(lang, k)
	}
	return out
}

// Keys returns the English key set, sorted.
func (t *Table) Keys() []string {
	return append([]string(nil), t.keys...)
}

// Emotion returns the localized display name of e.
func (t *Table) Emotion(lang models.Language, e models.Emotion) string {
	return t.T(lang, "emotion"+string(e))
}

// Supported lists the available languages.
func Supported() []models.Language {
	return append([]models.Language(nil), supported...)
}

// Parse matches a language tag such as "fr", "fr-CA" or "AR" against the
// supported set.
func Parse(tag string) (models.Language, bool) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", false
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return "", false
	}
	base, _ := parsed.Base()
	for _, lang := range supported {
		if base.String() == string(lang) {
			return lang, true
		}
	}
	return "", false
}

// IsRTL reports whether lang is written right to left.
func IsRTL(lang models.Language) bool {
	return lang == models.LanguageArabic
}
