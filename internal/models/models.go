// Package models provides domain models for the trading journal.
package models

import "strings"

// DateLayout is the calendar key format used for journal entries.
const DateLayout = "2006-01-02"

// TimestampLayout is the trade timestamp format: UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Direction represents the side of a trade.
type Direction string

const (
	DirectionBuy  Direction = "Buy"
	DirectionSell Direction = "Sell"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionBuy || d == DirectionSell
}

// ParseDirection accepts buy/sell in any case, plus long/short.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "long":
		return DirectionBuy, true
	case "sell", "short":
		return DirectionSell, true
	}
	return "", false
}

// Emotion is the self-reported state of mind for a trading day.
type Emotion string

const (
	EmotionCalm        Emotion = "Calm"
	EmotionGreedy      Emotion = "Greedy"
	EmotionFearful     Emotion = "Fearful"
	EmotionExcited     Emotion = "Excited"
	EmotionFrustrated  Emotion = "Frustrated"
	EmotionDisciplined Emotion = "Disciplined"
)

// Emotions lists every emotion in display order.
func Emotions() []Emotion {
	return []Emotion{
		EmotionCalm,
		EmotionGreedy,
		EmotionFearful,
		EmotionExcited,
		EmotionFrustrated,
		EmotionDisciplined,
	}
}

// Valid reports whether e is a known emotion.
func (e Emotion) Valid() bool {
	for _, known := range Emotions() {
		if e == known {
			return true
		}
	}
	return false
}

// ParseEmotion matches an emotion name case-insensitively.
func ParseEmotion(s string) (Emotion, bool) {
	for _, known := range Emotions() {
		if strings.EqualFold(string(known), strings.TrimSpace(s)) {
			return known, true
		}
	}
	return "", false
}

// Source is a citation attached to a search-grounded advisory response.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Language is a supported UI language tag.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageFrench  Language = "fr"
	LanguageArabic  Language = "ar"
)
