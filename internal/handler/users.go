package handler

import (
	"net/http"

	"github.com/cardkeeper/cardkeeper/internal/respond"
	"github.com/gorilla/mux"
)

type createUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// CreateUser returns the user registered under the given email, creating one
// on first touch. Existing users come back with 200, new ones with 201.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := h.decode(r, &req); err != nil {
		h.error(w, r, err)
		return
	}

	user, created, err := h.svc.GetOrCreateUser(r.Context(), req.Email, req.Name)
	if err != nil {
		h.error(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respond.JSON(w, status, user)
}

// GetUser returns a user together with their cards
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetUserWithCards(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

// GetUserCards returns all cards of a user, newest first
func (h *Handler) GetUserCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.svc.ListUserCards(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, cards)
}
