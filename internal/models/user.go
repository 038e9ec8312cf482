package models

import "time"

// User represents a registered account holder
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	PasswordHash string       `json:"-"` // Not serialized
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	Cards        []CreditCard `json:"cards,omitempty"`
}
