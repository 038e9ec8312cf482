package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cardkeeper/cardkeeper/internal/models"
)

const cardColumns = `id, user_id, name, balance, interest_rate, due_date, minimum_payment, last_four, created_at, updated_at`

func scanCard(row interface{ Scan(...any) error }, card *models.CreditCard) error {
	return row.Scan(&card.ID, &card.UserID, &card.Name, &card.Balance, &card.InterestRate,
		&card.DueDate, &card.MinimumPayment, &card.LastFour, &card.CreatedAt, &card.UpdatedAt)
}

// CreateCard creates a new credit card in the database
func (r *Repository) CreateCard(ctx context.Context, card *models.CreditCard) error {
	query := `
		INSERT INTO credit_cards (id, user_id, name, balance, interest_rate, due_date, minimum_payment,
			number_cipher, number_hmac, last_four, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		card.ID, card.UserID, card.Name, card.Balance, card.InterestRate, card.DueDate,
		card.MinimumPayment, card.NumberCipher, card.NumberHMAC, card.LastFour).
		Scan(&card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// ListCards returns all cards owned by a user, newest first
func (r *Repository) ListCards(ctx context.Context, ownerID string) ([]models.CreditCard, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM credit_cards
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	cards := []models.CreditCard{}
	for rows.Next() {
		var card models.CreditCard
		if err := scanCard(rows, &card); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

// FindCard retrieves a card only when owned by ownerID. Absence and foreign
// ownership both come back as ErrNotFound.
func (r *Repository) FindCard(ctx context.Context, ownerID, cardID string) (*models.CreditCard, error) {
	card := &models.CreditCard{}
	query := `
		SELECT ` + cardColumns + `
		FROM credit_cards
		WHERE id = $1 AND user_id = $2`
	err := scanCard(r.db.QueryRowContext(ctx, query, cardID, ownerID), card)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find card: %w", err)
	}
	return card, nil
}

// FindCardWithTransactions retrieves an owned card and its transactions,
// newest first by transaction date
func (r *Repository) FindCardWithTransactions(ctx context.Context, ownerID, cardID string) (*models.CreditCard, error) {
	card, err := r.FindCard(ctx, ownerID, cardID)
	if err != nil {
		return nil, err
	}
	transactions, err := r.ListCardTransactions(ctx, cardID)
	if err != nil {
		return nil, err
	}
	card.Transactions = transactions
	return card, nil
}

// UpdateCard mutates an owned card inside a single transaction. The row is
// locked before apply runs, so the write cannot clobber a balance a
// concurrent reconciliation committed after a stale read. apply receives the
// current row and mutates it in place; returning an error aborts the update.
func (r *Repository) UpdateCard(ctx context.Context, ownerID, cardID string, apply func(*models.CreditCard) error) (*models.CreditCard, error) {
	card := &models.CreditCard{}
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		query := `
			SELECT ` + cardColumns + `
			FROM credit_cards
			WHERE id = $1 AND user_id = $2
			FOR UPDATE`
		err := scanCard(tx.QueryRowContext(ctx, query, cardID, ownerID), card)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock card: %w", err)
		}

		if err := apply(card); err != nil {
			return err
		}

		update := `
			UPDATE credit_cards
			SET name = $1, balance = $2, interest_rate = $3, due_date = $4, minimum_payment = $5,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = $6
			RETURNING updated_at`
		err = tx.QueryRowContext(ctx, update,
			card.Name, card.Balance, card.InterestRate, card.DueDate, card.MinimumPayment, card.ID).
			Scan(&card.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update card: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// DeleteCard removes an owned card and all of its transactions as a single
// atomic unit
func (r *Repository) DeleteCard(ctx context.Context, ownerID, cardID string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		var id string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM credit_cards WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			cardID, ownerID).Scan(&id)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock card: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE card_id = $1`, cardID); err != nil {
			return fmt.Errorf("failed to delete card transactions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM credit_cards WHERE id = $1`, cardID); err != nil {
			return fmt.Errorf("failed to delete card: %w", err)
		}
		return nil
	})
}

// ListCardsDueWithin returns cards with a positive balance whose due date
// falls within the next `days` days, joined with owner contact details. Used
// by the reminder job.
func (r *Repository) ListCardsDueWithin(ctx context.Context, days int) ([]models.DueCard, error) {
	query := `
		SELECT c.name, c.balance, c.minimum_payment, c.due_date, u.name, u.email
		FROM credit_cards c
		JOIN users u ON u.id = c.user_id
		WHERE c.balance > 0
		  AND c.due_date >= CURRENT_DATE
		  AND c.due_date <= CURRENT_DATE + $1 * INTERVAL '1 day'
		ORDER BY c.due_date`
	rows, err := r.db.QueryContext(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to list due cards: %w", err)
	}
	defer rows.Close()

	var due []models.DueCard
	for rows.Next() {
		var d models.DueCard
		if err := rows.Scan(&d.CardName, &d.Balance, &d.MinimumPayment, &d.DueDate, &d.OwnerName, &d.OwnerEmail); err != nil {
			return nil, fmt.Errorf("failed to scan due card: %w", err)
		}
		due = append(due, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list due cards: %w", err)
	}
	return due, nil
}
