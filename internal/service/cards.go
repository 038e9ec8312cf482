package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cardkeeper/cardkeeper/internal/apperr"
	"github.com/cardkeeper/cardkeeper/internal/models"
	"github.com/cardkeeper/cardkeeper/internal/repository"
	"github.com/cardkeeper/cardkeeper/internal/utils"
	"github.com/google/uuid"
)

// CardInput carries the fields of a card create or update request. Pointer
// fields distinguish "absent" from "zero" so updates only touch what the
// client sent.
type CardInput struct {
	Name           *string  `json:"name"`
	Balance        *float64 `json:"balance"`
	InterestRate   *float64 `json:"interestRate"`
	DueDate        *string  `json:"dueDate"`
	MinimumPayment *float64 `json:"minimumPayment"`
	CardNumber     *string  `json:"cardNumber"`
}

// CreateCard validates and persists a new card for ownerID
func (s *Service) CreateCard(ctx context.Context, ownerID string, in CardInput) (*models.CreditCard, error) {
	if in.Name == nil || in.Balance == nil || in.InterestRate == nil || in.DueDate == nil {
		return nil, apperr.Validation("Missing required fields: name, balance, interestRate, dueDate")
	}
	if *in.Name == "" {
		return nil, apperr.Validation("Name must not be empty")
	}
	if *in.Balance < 0 {
		return nil, apperr.Validation("Balance must be a positive number")
	}
	if *in.InterestRate < 0 || *in.InterestRate > 100 {
		return nil, apperr.Validation("Interest rate must be between 0 and 100")
	}
	dueDate, err := parseDate(*in.DueDate)
	if err != nil {
		return nil, apperr.Validation("Due date must be a valid date")
	}

	card := &models.CreditCard{
		ID:           uuid.NewString(),
		UserID:       ownerID,
		Name:         *in.Name,
		Balance:      *in.Balance,
		InterestRate: *in.InterestRate,
		DueDate:      dueDate,
	}
	if in.MinimumPayment != nil {
		if *in.MinimumPayment < 0 {
			return nil, apperr.Validation("Minimum payment must be a positive number")
		}
		card.MinimumPayment = *in.MinimumPayment
	}

	if in.CardNumber != nil && *in.CardNumber != "" {
		number, err := utils.NormalizeCardNumber(*in.CardNumber)
		if err != nil {
			return nil, apperr.Validation("Card number must be 12 to 19 digits")
		}
		cipher, err := utils.Encrypt(number, s.config.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt card number: %w", err)
		}
		card.NumberCipher = cipher
		card.NumberHMAC = utils.NumberHMAC(number, s.config.HMACSecret)
		card.LastFour = utils.LastFour(number)
	}

	if err := s.repo.CreateCard(ctx, card); err != nil {
		return nil, err
	}

	s.log.Infof("Card created for user %s: %s", ownerID, card.Name)
	return card, nil
}

// ListCards returns all cards owned by ownerID, newest first
func (s *Service) ListCards(ctx context.Context, ownerID string) ([]models.CreditCard, error) {
	return s.repo.ListCards(ctx, ownerID)
}

// GetCard returns an owned card with its transactions, newest first
func (s *Service) GetCard(ctx context.Context, ownerID, cardID string) (*models.CreditCard, error) {
	card, err := s.repo.FindCardWithTransactions(ctx, ownerID, cardID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Card not found")
		}
		return nil, err
	}
	return card, nil
}

// UpdateCard applies only the fields present in the input, re-validating each
// with the create rules. Fields the client did not send keep their prior
// value. The read-apply-write runs under the repository's row lock so a
// balance written here cannot undo a concurrent reconciliation.
func (s *Service) UpdateCard(ctx context.Context, ownerID, cardID string, in CardInput) (*models.CreditCard, error) {
	card, err := s.repo.UpdateCard(ctx, ownerID, cardID, func(card *models.CreditCard) error {
		if in.Name != nil {
			if *in.Name == "" {
				return apperr.Validation("Name must not be empty")
			}
			card.Name = *in.Name
		}
		if in.Balance != nil {
			if *in.Balance < 0 {
				return apperr.Validation("Balance must be a positive number")
			}
			card.Balance = *in.Balance
		}
		if in.InterestRate != nil {
			if *in.InterestRate < 0 || *in.InterestRate > 100 {
				return apperr.Validation("Interest rate must be between 0 and 100")
			}
			card.InterestRate = *in.InterestRate
		}
		if in.DueDate != nil {
			dueDate, err := parseDate(*in.DueDate)
			if err != nil {
				return apperr.Validation("Due date must be a valid date")
			}
			card.DueDate = dueDate
		}
		if in.MinimumPayment != nil {
			if *in.MinimumPayment < 0 {
				return apperr.Validation("Minimum payment must be a positive number")
			}
			card.MinimumPayment = *in.MinimumPayment
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Card not found")
		}
		return nil, err
	}
	return card, nil
}

// DeleteCard removes an owned card together with all of its transactions
func (s *Service) DeleteCard(ctx context.Context, ownerID, cardID string) error {
	if err := s.repo.DeleteCard(ctx, ownerID, cardID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Card not found")
		}
		return err
	}
	s.log.Infof("Card %s deleted for user %s", cardID, ownerID)
	return nil
}
