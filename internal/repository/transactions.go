package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cardkeeper/cardkeeper/internal/models"
)

// CreateTransaction inserts a transaction and recomputes the owning card's
// balance as one atomic unit. The card row is locked before the balance is
// read so concurrent reconciliations against the same card serialize. Returns
// the new balance.
//
// ErrNotFound when the card does not exist or is not owned by ownerID;
// ErrNegativeBalance when the adjustment would take the balance below zero,
// in which case nothing is persisted.
func (r *Repository) CreateTransaction(ctx context.Context, ownerID string, txn *models.Transaction) (float64, error) {
	var newBalance float64
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var balance float64
		err := tx.QueryRowContext(ctx,
			`SELECT balance FROM credit_cards WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			txn.CardID, ownerID).Scan(&balance)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock card: %w", err)
		}

		if txn.Type == models.TypePurchase {
			newBalance = balance + txn.Amount
		} else {
			newBalance = balance - txn.Amount
		}
		if newBalance < 0 {
			return ErrNegativeBalance
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO transactions (id, card_id, amount, type, date, description, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
			RETURNING created_at`,
			txn.ID, txn.CardID, txn.Amount, txn.Type, txn.Date, txn.Description).
			Scan(&txn.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE credit_cards SET balance = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
			newBalance, txn.CardID)
		if err != nil {
			return fmt.Errorf("failed to update card balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// DeleteTransaction removes a transaction and applies the inverse balance
// adjustment to its card atomically. Returns the new balance.
//
// ErrNotFound when the transaction does not exist; ErrForbidden when the
// card belongs to someone other than requesterID; ErrNegativeBalance when
// reversing the transaction would take the balance below zero (possible when
// later transactions changed the balance in between).
func (r *Repository) DeleteTransaction(ctx context.Context, requesterID, txnID string) (float64, error) {
	var newBalance float64
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var (
			cardID   string
			amount   float64
			txnType  string
			cardUser string
			balance  float64
		)
		err := tx.QueryRowContext(ctx, `
			SELECT t.card_id, t.amount, t.type, c.user_id, c.balance
			FROM transactions t
			JOIN credit_cards c ON c.id = t.card_id
			WHERE t.id = $1
			FOR UPDATE OF c`,
			txnID).Scan(&cardID, &amount, &txnType, &cardUser, &balance)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock transaction: %w", err)
		}

		if cardUser != requesterID {
			return ErrForbidden
		}

		// Reversing a payment adds the amount back, reversing a purchase
		// subtracts it.
		if txnType == models.TypePayment {
			newBalance = balance + amount
		} else {
			newBalance = balance - amount
		}
		if newBalance < 0 {
			return ErrNegativeBalance
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE credit_cards SET balance = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
			newBalance, cardID)
		if err != nil {
			return fmt.Errorf("failed to update card balance: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, txnID); err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// ListTransactions returns all transactions across the user's cards, newest
// first by transaction date, each with an embedded card reference
func (r *Repository) ListTransactions(ctx context.Context, ownerID string) ([]models.Transaction, error) {
	query := `
		SELECT t.id, t.card_id, t.amount, t.type, t.date, t.description, t.created_at, c.id, c.name
		FROM transactions t
		JOIN credit_cards c ON c.id = t.card_id
		WHERE c.user_id = $1
		ORDER BY t.date DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var txn models.Transaction
		var ref models.CardRef
		if err := rows.Scan(&txn.ID, &txn.CardID, &txn.Amount, &txn.Type, &txn.Date,
			&txn.Description, &txn.CreatedAt, &ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Card = &ref
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}

// ListCardTransactions returns the transactions of a single card, newest
// first by date. Ownership of the card is checked by the caller.
func (r *Repository) ListCardTransactions(ctx context.Context, cardID string) ([]models.Transaction, error) {
	query := `
		SELECT id, card_id, amount, type, date, description, created_at
		FROM transactions
		WHERE card_id = $1
		ORDER BY date DESC`
	rows, err := r.db.QueryContext(ctx, query, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list card transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var txn models.Transaction
		if err := rows.Scan(&txn.ID, &txn.CardID, &txn.Amount, &txn.Type, &txn.Date,
			&txn.Description, &txn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list card transactions: %w", err)
	}
	return transactions, nil
}

// FindTransaction retrieves a single transaction scoped to the caller's
// cards. Absence and foreign ownership both come back as ErrNotFound.
func (r *Repository) FindTransaction(ctx context.Context, ownerID, txnID string) (*models.Transaction, error) {
	txn := &models.Transaction{}
	ref := &models.CardRef{}
	query := `
		SELECT t.id, t.card_id, t.amount, t.type, t.date, t.description, t.created_at, c.id, c.name
		FROM transactions t
		JOIN credit_cards c ON c.id = t.card_id
		WHERE t.id = $1 AND c.user_id = $2`
	err := r.db.QueryRowContext(ctx, query, txnID, ownerID).
		Scan(&txn.ID, &txn.CardID, &txn.Amount, &txn.Type, &txn.Date, &txn.Description,
			&txn.CreatedAt, &ref.ID, &ref.Name)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	txn.Card = ref
	return txn, nil
}
