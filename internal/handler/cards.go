package handler

import (
	"net/http"

	"github.com/cardkeeper/cardkeeper/internal/respond"
	"github.com/cardkeeper/cardkeeper/internal/service"
	"github.com/gorilla/mux"
)

// CreateCard handles card creation for the authenticated user
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	user, err := h.user(r)
	if err != nil {
		h.error(w, r, err)
		return
	}

	var in service.CardInput
	if err := h.decode(r, &in); err != nil {
		h.error(w, r, err)
		return
	}

	card, err := h.svc.CreateCard(r.Context(), user.ID, in)
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, card)
}

// ListCards returns the authenticated user's cards, newest first
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	user, err := h.user(r)
	if err != nil {
		h.error(w, r, err)
		return
	}

	cards, err := h.svc.ListCards(r.Context(), user.ID)
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, cards)
}

// GetCard returns one owned card with its transactions
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	user, err := h.user(r)
	if err != nil {
		h.error(w, r, err)
		return
	}

	card, err := h.svc.GetCard(r.Context(), user.ID, mux.Vars(r)["id"])
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, card)
}

// UpdateCard applies a partial update to an owned card
func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	user, err := h.user(r)
	if err != nil {
		h.error(w, r, err)
		return
	}

	var in service.CardInput
	if err := h.decode(r, &in); err != nil {
		h.error(w, r, err)
		return
	}

	card, err := h.svc.UpdateCard(r.Context(), user.ID, mux.Vars(r)["id"], in)
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, card)
}

// DeleteCard removes an owned card and all of its transactions
func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	user, err := h.user(r)
	if err != nil {
		h.error(w, r, err)
		return
	}

	if err := h.svc.DeleteCard(r.Context(), user.ID, mux.Vars(r)["id"]); err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Card and associated transactions deleted successfully",
	})
}
