package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/daycast/backend/internal/models"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeServiceError maps the lifecycle error taxonomy onto HTTP status
// codes: validation 400, not-found-or-not-owned 404, store failure 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"message": verr.Error(),
			"field":   verr.Field,
		})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Event not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "database error"})
	}
}

// UserFinder resolves attendee user ids for invitation mail.
type UserFinder interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Inviter sends an event invitation to a user. Delivery is best-effort;
// failures are logged, never surfaced to the caller.
type Inviter interface {
	SendInvitation(ev *models.Event, to *models.User) error
}

// Handler holds event HTTP handlers.
type Handler struct {
	svc    *Service
	users  UserFinder
	mailer Inviter
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, users UserFinder, mailer Inviter, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, users: users, mailer: mailer, logger: logger}
}

// Create handles POST /api/events.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	var in models.EventInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	ev, err := h.svc.Create(r.Context(), userID, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

// List handles GET /api/events.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	evs, err := h.svc.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, evs)
}

// Get handles GET /api/events/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	ev, err := h.svc.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// Update handles PUT /api/events/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	var patch models.EventPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	ev, err := h.svc.Update(r.Context(), userID, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// Delete handles DELETE /api/events/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	if err := h.svc.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Event deleted successfully"})
}

// AddAttendee handles POST /api/events/{id}/attendees.
func (h *Handler) AddAttendee(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	ev, err := h.svc.AddAttendee(r.Context(), userID, chi.URLParam(r, "id"), req.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.sendInvitation(r.Context(), ev, req.UserID)
	writeJSON(w, http.StatusOK, ev)
}

// UpdateAttendeeStatus handles PUT /api/events/{id}/attendees/{attendeeId}.
func (h *Handler) UpdateAttendeeStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	ev, err := h.svc.UpdateAttendeeStatus(
		r.Context(), userID, chi.URLParam(r, "id"), chi.URLParam(r, "attendeeId"), req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// sendInvitation mails the new attendee when they resolve to a known
// user. Unknown ids and mail failures are logged and ignored.
func (h *Handler) sendInvitation(ctx context.Context, ev *models.Event, attendeeUserID string) {
	if h.mailer == nil || h.users == nil {
		return
	}
	invitee, err := h.users.GetUserByID(ctx, attendeeUserID)
	if err != nil {
		h.logger.Debugw("invitation skipped, attendee not a known user",
			"event", ev.ID.Hex(), "attendee", attendeeUserID)
		return
	}
	if err := h.mailer.SendInvitation(ev, invitee); err != nil {
		h.logger.Warnw("invitation mail failed", "event", ev.ID.Hex(), "err", err)
	}
}
