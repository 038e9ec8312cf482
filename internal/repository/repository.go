package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Sentinel errors for ownership and invariant failures. The service layer maps
// them onto the client-facing taxonomy.
var (
	// ErrNotFound covers both a missing record and a record owned by another
	// user; callers must not be able to tell the two apart.
	ErrNotFound = errors.New("repository: not found")

	// ErrForbidden is returned when a record exists but belongs to another
	// user, in the one place that distinction is part of the contract
	// (transaction deletion).
	ErrForbidden = errors.New("repository: forbidden")

	// ErrNegativeBalance is returned when a balance adjustment would take a
	// card below zero. Nothing is persisted in that case.
	ErrNegativeBalance = errors.New("repository: negative balance")
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// inTx runs fn inside a transaction, rolling back on error.
func (r *Repository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
