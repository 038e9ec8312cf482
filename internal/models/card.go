package models

import "time"

// CreditCard represents a tracked credit account. Balance is denormalized:
// every transaction create/delete recomputes and stores it so reads never sum
// the transaction history.
type CreditCard struct {
	ID             string        `json:"id"`
	UserID         string        `json:"userId"`
	Name           string        `json:"name"`
	Balance        float64       `json:"balance"`
	InterestRate   float64       `json:"interestRate"`
	DueDate        time.Time     `json:"dueDate"`
	MinimumPayment float64       `json:"minimumPayment"`
	LastFour       string        `json:"lastFour,omitempty"`
	NumberCipher   string        `json:"-"` // Encrypted at rest
	NumberHMAC     string        `json:"-"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
	Transactions   []Transaction `json:"transactions,omitempty"`
}
