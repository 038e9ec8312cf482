package models

import "time"

// Transaction types. A purchase increases the card balance, a payment
// decreases it. Amounts are always positive; type alone determines direction.
const (
	TypePurchase = "purchase"
	TypePayment  = "payment"
)

// Transaction represents a purchase or payment against a card
type Transaction struct {
	ID          string    `json:"id"`
	CardID      string    `json:"cardId"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	Card        *CardRef  `json:"card,omitempty"`
}

// CardRef is the card projection embedded in transaction listings.
type CardRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
