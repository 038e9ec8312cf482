package service

import (
	"context"
	"errors"

	"github.com/cardkeeper/cardkeeper/internal/apperr"
	"github.com/cardkeeper/cardkeeper/internal/models"
	"github.com/cardkeeper/cardkeeper/internal/repository"
	"github.com/google/uuid"
)

// TransactionInput carries the fields of a transaction create request.
type TransactionInput struct {
	Amount      *float64 `json:"amount"`
	Type        string   `json:"type"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	CardID      string   `json:"cardId"`
}

// CreateTransaction validates the input and records a transaction against an
// owned card, recomputing the card balance atomically. A payment that would
// take the balance below zero is rejected with nothing persisted.
func (s *Service) CreateTransaction(ctx context.Context, ownerID string, in TransactionInput) (*models.Transaction, float64, error) {
	if in.Amount == nil || in.Type == "" || in.Date == "" || in.CardID == "" {
		return nil, 0, apperr.Validation("Missing required fields: amount, type, date, cardId")
	}
	if in.Type != models.TypePayment && in.Type != models.TypePurchase {
		return nil, 0, apperr.Validation(`Transaction type must be either "payment" or "purchase"`)
	}
	if *in.Amount <= 0 {
		return nil, 0, apperr.Validation("Amount must be a positive number")
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return nil, 0, apperr.Validation("Date must be a valid date")
	}

	txn := &models.Transaction{
		ID:          uuid.NewString(),
		CardID:      in.CardID,
		Amount:      *in.Amount,
		Type:        in.Type,
		Date:        date,
		Description: in.Description,
	}

	newBalance, err := s.repo.CreateTransaction(ctx, ownerID, txn)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, 0, apperr.NotFound("Card not found or you do not have permission")
		case errors.Is(err, repository.ErrNegativeBalance):
			return nil, 0, apperr.Validation("Payment amount cannot exceed current balance")
		}
		return nil, 0, err
	}

	s.log.Infof("Transaction %s recorded on card %s: %s %.2f (balance %.2f)",
		txn.ID, txn.CardID, txn.Type, txn.Amount, newBalance)
	return txn, newBalance, nil
}

// DeleteTransaction removes a transaction and reverses its balance effect
// atomically. The reversal is rejected when it would take the balance below
// zero, which can happen when later transactions moved the balance in
// between.
func (s *Service) DeleteTransaction(ctx context.Context, requesterID, txnID string) (float64, error) {
	newBalance, err := s.repo.DeleteTransaction(ctx, requesterID, txnID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return 0, apperr.NotFound("Transaction not found")
		case errors.Is(err, repository.ErrForbidden):
			return 0, apperr.Forbidden("You do not have permission to delete this transaction")
		case errors.Is(err, repository.ErrNegativeBalance):
			return 0, apperr.Validation("Cannot delete transaction: would result in negative balance")
		}
		return 0, err
	}

	s.log.Infof("Transaction %s deleted by user %s (balance %.2f)", txnID, requesterID, newBalance)
	return newBalance, nil
}

// ListTransactions returns all transactions across the caller's cards
func (s *Service) ListTransactions(ctx context.Context, ownerID string) ([]models.Transaction, error) {
	return s.repo.ListTransactions(ctx, ownerID)
}

// ListCardTransactions returns the transactions of one owned card
func (s *Service) ListCardTransactions(ctx context.Context, ownerID, cardID string) ([]models.Transaction, error) {
	if _, err := s.repo.FindCard(ctx, ownerID, cardID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Card not found or you do not have permission")
		}
		return nil, err
	}
	return s.repo.ListCardTransactions(ctx, cardID)
}

// GetTransaction returns a single transaction scoped to the caller's cards
func (s *Service) GetTransaction(ctx context.Context, ownerID, txnID string) (*models.Transaction, error) {
	txn, err := s.repo.FindTransaction(ctx, ownerID, txnID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Transaction not found")
		}
		return nil, err
	}
	return txn, nil
}
