package repository

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS credit_cards (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		balance DOUBLE PRECISION NOT NULL DEFAULT 0,
		interest_rate DOUBLE PRECISION NOT NULL,
		due_date DATE NOT NULL,
		minimum_payment DOUBLE PRECISION NOT NULL DEFAULT 0,
		number_cipher TEXT NOT NULL DEFAULT '',
		number_hmac TEXT NOT NULL DEFAULT '',
		last_four TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		card_id TEXT NOT NULL REFERENCES credit_cards(id),
		amount DOUBLE PRECISION NOT NULL,
		type TEXT NOT NULL,
		date TIMESTAMPTZ NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_credit_cards_user_id ON credit_cards(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_card_id ON transactions(card_id)`,
}

// Migrate creates the schema when it does not exist yet. Card deletion
// cascades at the application layer, so the foreign keys carry no ON DELETE
// clause.
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
