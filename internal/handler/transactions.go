package handler

import (
	"net/http"

	"github.com/cardkeeper/cardkeeper/internal/models"
	"github.com/cardkeeper/cardkeeper/internal/respond"
	"github.com/cardkeeper/cardkeeper/internal/service"
	"github.com/gorilla/mux"
)

type createTransactionResponse struct {
	Transaction *models.Transaction `json:"transaction"`
	NewBalance  float64             `json:"newBalance"`
}

// CreateTransaction records a transaction against an owned card and returns
// the recomputed balance
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	user, err := h.user(r)
	if err != nil {
		h.error(w, r, err)
		return
	}

	var in service.TransactionInput
	if err := h.decode(r, &in); err != nil {
		h.error(w, r, err)
		return
	}

	txn, newBalance, err := h.svc.CreateTransaction(r.Context(), user.ID, in)
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, createTransactionResponse{Transaction: txn, NewBalance: newBalance})
}

// ListTransactions returns all transactions across the caller's cards
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	user, err := h.user(r)
	if err != nil {
		h.error(w, r, err)
		return
	}

	transactions, err := h.svc.ListTransactions(r.Context(), user.ID)
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, transactions)
}

// ListCardTransactions returns the transactions of one owned card
func (h *Handler) ListCardTransactions(w http.ResponseWriter, r *http.Request) {
	user, err := h.user(r)
	if err != nil {
		h.error(w, r, err)
		return
	}

	transactions, err := h.svc.ListCardTransactions(r.Context(), user.ID, mux.Vars(r)["cardId"])
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, transactions)
}

// GetTransaction returns one transaction scoped to the caller's cards
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	user, err := h.user(r)
	if err != nil {
		h.error(w, r, err)
		return
	}

	txn, err := h.svc.GetTransaction(r.Context(), user.ID, mux.Vars(r)["id"])
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, txn)
}

// DeleteTransaction removes a transaction, reversing its balance effect
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user, err := h.user(r)
	if err != nil {
		h.error(w, r, err)
		return
	}

	newBalance, err := h.svc.DeleteTransaction(r.Context(), user.ID, mux.Vars(r)["id"])
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "Transaction deleted and balance updated successfully",
		"newBalance": newBalance,
	})
}
