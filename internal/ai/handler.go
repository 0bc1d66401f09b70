package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/daycast/backend/internal/authz"
	"github.com/daycast/backend/internal/models"
)

// Completer is the completion dependency, faked in tests.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// EventStore provides the owner's events for pattern analysis.
type EventStore interface {
	FindMany(ctx context.Context, filter bson.M, sort bson.D, limit int64) ([]models.Event, error)
}

// Handler holds the AI-assistance HTTP handlers.
type Handler struct {
	completer Completer
	events    EventStore
	logger    *zap.SugaredLogger
}

func NewHandler(completer Completer, events EventStore, logger *zap.SugaredLogger) *Handler {
	return &Handler{completer: completer, events: events, logger: logger}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) completeOr502(w http.ResponseWriter, r *http.Request, prompt string) (string, bool) {
	text, err := h.completer.Complete(r.Context(), prompt)
	if err != nil {
		h.logger.Warnw("completion failed", "err", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"message": "completion service unavailable"})
		return "", false
	}
	return text, true
}

// GenerateDescription handles POST /api/ai/generate-description.
func (h *Handler) GenerateDescription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string `json:"title"`
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "title is required"})
		return
	}

	prompt := fmt.Sprintf(
		"Generate a professional and engaging description for a %s event titled %q. "+
			"The description should be concise, informative, and include relevant details that would interest attendees.",
		req.Category, req.Title)

	text, ok := h.completeOr502(w, r, prompt)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"description": text})
}

// GenerateChecklist handles POST /api/ai/generate-checklist.
func (h *Handler) GenerateChecklist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Category    string `json:"category"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "title is required"})
		return
	}

	prompt := fmt.Sprintf(
		"Create a comprehensive checklist for a %s event titled %q.\nDescription: %s\n"+
			"Include all necessary tasks and items that need to be prepared or completed before, during, and after the event.",
		req.Category, req.Title, req.Description)

	text, ok := h.completeOr502(w, r, prompt)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"checklist": ParseChecklist(text)})
}

// GenerateSummary handles POST /api/ai/generate-summary.
func (h *Handler) GenerateSummary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Event struct {
			Title       string     `json:"title"`
			Category    string     `json:"category"`
			Description string     `json:"description"`
			Start       *time.Time `json:"start"`
			End         *time.Time `json:"end"`
			Location    string     `json:"location"`
		} `json:"event"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Event.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "event is required"})
		return
	}

	prompt := fmt.Sprintf(
		"Create a concise summary of the following event:\nTitle: %s\nCategory: %s\nDescription: %s\n"+
			"Start: %v\nEnd: %v\nLocation: %s\nInclude key details and any important notes for attendees.",
		req.Event.Title, req.Event.Category, req.Event.Description,
		req.Event.Start, req.Event.End, req.Event.Location)

	text, ok := h.completeOr502(w, r, prompt)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": text})
}

// SchedulingSuggestions handles GET /api/ai/scheduling-suggestions.
// Patterns come purely from the caller's own events.
func (h *Handler) SchedulingSuggestions(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	scope := authz.OwnerScope{OwnerID: userID}
	events, err := h.events.FindMany(r.Context(), scope.Scope(), nil, 0)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "database error"})
		return
	}

	patterns := AnalyzeEventPatterns(events)
	days, _ := json.Marshal(patterns.PreferredDays)
	times, _ := json.Marshal(patterns.PreferredTimes)
	categories, _ := json.Marshal(patterns.CategoryDistribution)

	prompt := fmt.Sprintf(
		"Based on the following event patterns:\nPreferred Days: %s\nPreferred Times: %s\n"+
			"Category Distribution: %s\nGenerate 3-5 smart scheduling suggestions for future events.",
		days, times, categories)

	text, ok := h.completeOr502(w, r, prompt)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"suggestions": SplitSuggestions(text)})
}
