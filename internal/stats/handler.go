package stats

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Handler serves the dashboard statistics endpoint.
type Handler struct {
	agg    *Aggregator
	logger *zap.SugaredLogger
}

func NewHandler(agg *Aggregator, logger *zap.SugaredLogger) *Handler {
	return &Handler{agg: agg, logger: logger}
}

// Statistics handles GET /api/events/statistics.
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	snap, err := h.agg.Snapshot(r.Context(), userID)
	if err != nil {
		h.logger.Errorw("statistics snapshot failed", "user", userID, "err", err)
		http.Error(w, `{"message":"failed to compute statistics"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}
