package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/daycast/backend/internal/models"
)

func TestParseChecklist(t *testing.T) {
	text := "1. Book the venue\n\n2.  Send invitations\nBring name tags\n10. Order catering\n   \n"

	items := ParseChecklist(text)

	assert.Equal(t, []models.ChecklistItem{
		{Item: "Book the venue"},
		{Item: "Send invitations"},
		{Item: "Bring name tags"},
		{Item: "Order catering"},
	}, items)
}

func TestParseChecklistEmpty(t *testing.T) {
	assert.Empty(t, ParseChecklist(""))
	assert.Empty(t, ParseChecklist("\n\n  \n"))
}

func TestSplitSuggestions(t *testing.T) {
	got := SplitSuggestions("- Try mornings\n\n- Batch work events\n")
	assert.Equal(t, []string{"- Try mornings", "- Batch work events"}, got)
}

func TestAnalyzeEventPatterns(t *testing.T) {
	// Both events on a Monday, 09:00 and 14:00 local.
	mon9 := time.Date(2025, 6, 16, 9, 0, 0, 0, time.Local)
	mon14 := time.Date(2025, 6, 16, 14, 0, 0, 0, time.Local)
	tue9 := time.Date(2025, 6, 17, 9, 0, 0, 0, time.Local)

	p := AnalyzeEventPatterns([]models.Event{
		{Start: mon9, Category: "work"},
		{Start: mon14, Category: "work"},
		{Start: tue9, Category: "personal"},
	})

	assert.Equal(t, map[int]int{1: 2, 2: 1}, p.PreferredDays)
	assert.Equal(t, map[int]int{9: 2, 14: 1}, p.PreferredTimes)
	assert.Equal(t, map[string]int{"work": 2, "personal": 1}, p.CategoryDistribution)
}

func TestAnalyzeEventPatternsEmpty(t *testing.T) {
	p := AnalyzeEventPatterns(nil)
	assert.Empty(t, p.PreferredDays)
	assert.Empty(t, p.PreferredTimes)
	assert.Empty(t, p.CategoryDistribution)
}
