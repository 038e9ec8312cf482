package handler

import (
	"net/http"

	"github.com/cardkeeper/cardkeeper/internal/models"
	"github.com/cardkeeper/cardkeeper/internal/respond"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decode(r, &req); err != nil {
		h.error(w, r, err)
		return
	}

	token, user, err := h.svc.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		h.error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, authResponse{Success: true, Token: token, User: user})
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decode(r, &req); err != nil {
		h.error(w, r, err)
		return
	}

	token, user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, authResponse{Success: true, Token: token, User: user})
}

// Me returns the authenticated user
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.user(r)
	if err != nil {
		h.error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}
