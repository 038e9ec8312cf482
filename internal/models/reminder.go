package models

import "time"

// DueCard is the projection used by the payment-due reminder job: a card with
// an upcoming due date joined with its owner's contact details.
type DueCard struct {
	CardName       string
	Balance        float64
	MinimumPayment float64
	DueDate        time.Time
	OwnerName      string
	OwnerEmail     string
}
