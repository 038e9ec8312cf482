package handler

import (
	"net/http"
	"time"

	"github.com/cardkeeper/cardkeeper/internal/respond"
)

// Health reports service liveness, no auth required
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
