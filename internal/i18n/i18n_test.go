package i18n

import (
	"testing"

	"trademind/internal/models"
)

func newTable(t *testing.T) *Table {
	t.Helper()
	table, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return table
}

func TestT_Languages(t *testing.T) {
	table := newTable(t)

	tests := []struct {
		lang models.Language
		key  string
		want string
	}{
		{models.LanguageEnglish, "winRate", "Win Rate"},
		{models.LanguageFrench, "winRate", "Taux de réussite"},
		{models.LanguageArabic, "calendar", "التقويم"},
		{"de", "calendar", "Calendar"},
		{models.LanguageFrench, "doesNotExist", "doesNotExist"},
	}
	for _, tt := range tests {
		if got := table.T(tt.lang, tt.key); got != tt.want {
			t.Errorf("T(%s, %s) = %q, want %q", tt.lang, tt.key, got, tt.want)
		}
	}
}

func TestLocales_SameKeySet(t *testing.T) {
	table := newTable(t)
	keys := table.Keys()
	if len(keys) == 0 {
		t.Fatal("no keys loaded")
	}
	for _, lang := range Supported() {
		for _, k := range keys {
			if table.T(lang, k) == k {
				t.Errorf("%s: key %q untranslated", lang, k)
			}
		}
	}
}

func TestEmotion(t *testing.T) {
	table := newTable(t)
	for _, e := range models.Emotions() {
		if got := table.Emotion(models.LanguageEnglish, e); got != string(e) {
			t.Errorf("Emotion(en, %s) = %q", e, got)
		}
	}
	if got := table.Emotion(models.LanguageFrench, models.EmotionFrustrated); got != "Frustré" {
		t.Errorf("Emotion(fr, Frustrated) = %q", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want models.Language
		ok   bool
	}{
		{"en", models.LanguageEnglish, true},
		{"fr-CA", models.LanguageFrench, true},
		{"AR", models.LanguageArabic, true},
		{"de", "", false},
		{"", "", false},
		{"!!", "", false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Parse(%q) = %q, %v", tt.in, got, ok)
		}
	}
}

func TestIsRTL(t *testing.T) {
	if !IsRTL(models.LanguageArabic) || IsRTL(models.LanguageFrench) || IsRTL(models.LanguageEnglish) {
		t.Error("only Arabic is right to left")
	}
}
