package ai

import (
	"regexp"
	"strings"

	"github.com/daycast/backend/internal/models"
)

// EventPatterns summarizes an owner's scheduling habits by simple
// frequency counting. It seeds the scheduling-suggestions prompt as
// opaque context.
type EventPatterns struct {
	PreferredDays        map[int]int    `json:"preferredDays"`
	PreferredTimes       map[int]int    `json:"preferredTimes"`
	CategoryDistribution map[string]int `json:"categoryDistribution"`
}

// AnalyzeEventPatterns tallies weekday (0=Sunday), start hour, and
// category frequencies over the owner's events.
func AnalyzeEventPatterns(events []models.Event) EventPatterns {
	p := EventPatterns{
		PreferredDays:        make(map[int]int),
		PreferredTimes:       make(map[int]int),
		CategoryDistribution: make(map[string]int),
	}
	for _, ev := range events {
		start := ev.Start.Local()
		p.PreferredDays[int(start.Weekday())]++
		p.PreferredTimes[start.Hour()]++
		p.CategoryDistribution[ev.Category]++
	}
	return p
}

var ordinalPrefix = regexp.MustCompile(`^\d+\.\s*`)

// ParseChecklist splits completion text into checklist items: one per
// non-blank line, leading ordinal numbering stripped, completed=false.
func ParseChecklist(text string) []models.ChecklistItem {
	items := []models.ChecklistItem{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, models.ChecklistItem{
			Item:      strings.TrimSpace(ordinalPrefix.ReplaceAllString(line, "")),
			Completed: false,
		})
	}
	return items
}

// SplitSuggestions returns the non-blank lines of completion text.
func SplitSuggestions(text string) []string {
	out := []string{}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
