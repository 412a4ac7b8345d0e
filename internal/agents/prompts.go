package agents

import (
	"encoding/json"
	"fmt"
	"strings"

	"trademind/internal/journal"
	"trademind/internal/models"
	"trademind/internal/stats"
)

// dayContext is the per-day summary sent to the coach.
type dayContext struct {
	Date       string         `json:"date"`
	PnL        float64        `json:"pnl"`
	Emotion    models.Emotion `json:"emotion"`
	Discipline int            `json:"discipline"`
	Strategies string         `json:"strategies"`
}

func coachContext(journals []models.DailyJournal) []dayContext {
	sorted := stats.SortChronological(journals)
	out := make([]dayContext, 0, len(sorted))
	for _, j := range sorted {
		strategies := make([]string, 0, len(j.Trades))
		for _, t := range j.Trades {
			strategies = append(strategies, t.Strategy)
		}
		out = append(out, dayContext{
			Date:       j.Date,
			PnL:        journal.DayTotal(j),
			Emotion:    j.Emotion,
			Discipline: j.DisciplineScore,
			Strategies: strings.Join(strategies, ", "),
		})
	}
	return out
}

func advicePrompt(journals []models.DailyJournal) string {
	data, err := json.Marshal(coachContext(journals))
	if err != nil {
		data = []byte("[]")
	}
	return fmt.Sprintf(`Tu es un coach en psychologie du trading professionnel (Style Coach T®).
Analyse ces journaux de trading récents et donne un conseil percutant et actionnable.
Focus sur l'Or (XAU/USD) et la discipline à l'ouverture de 9:30 EST.

Données: %s

Format: Une seule phrase courte et puissante.`, data)
}

const macroPrompt = `Analyse fondamentale en temps réel pour l'Or (XAU/USD) avant l'ouverture US (9:30 EST).
Considère:
1. Dollar Index (DXY)
2. US 10Y Yields
3. News macro (Inflation, Fed, Emploi)
4. Sentiment de risque global.

Donne un résumé ultra-concis : "Sentiment: Bullish/Bearish/Neutral" suivi de 3 points clés.
Identifie les zones de liquidité institutionnelle proches du prix actuel.`

func scanPrompt(name string, rules []string) string {
	return fmt.Sprintf(`Search for current financial assets matching this quantitative desk setup: "%s".
Logic: %s
Return professional Markdown table.`, name, strings.Join(rules, "\n"))
}

func refinePrompt(notes string) string {
	return fmt.Sprintf(`Professionalize the following trading journal notes.
Improve grammar, use institutional terminology, and provide a constructive critique in the third person.
Maintain the original intent but make it sound like it was written by a Senior Portfolio Manager.

Original Notes: "%s"
Format: Clean Markdown.`, notes)
}
