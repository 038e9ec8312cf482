package handler

import (
	"net/http"

	"github.com/cardkeeper/cardkeeper/internal/respond"
)

// KeyRate returns the current central-bank key rate so users can benchmark a
// card's interest rate against it
func (h *Handler) KeyRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.rates.GetKeyRate(r.Context())
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]float64{"keyRate": rate})
}
