package service

import (
	"context"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cardkeeper/cardkeeper/internal/models"
)

func validTransactionInput() TransactionInput {
	return TransactionInput{
		Amount: f64Ptr(100),
		Type:   models.TypePurchase,
		Date:   "2025-01-15",
		CardID: "card-1",
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()

	tests := []struct {
		name    string
		mutate  func(*TransactionInput)
		message string
	}{
		{"missing amount", func(in *TransactionInput) { in.Amount = nil }, "Missing required fields: amount, type, date, cardId"},
		{"missing card", func(in *TransactionInput) { in.CardID = "" }, "Missing required fields: amount, type, date, cardId"},
		{"unknown type", func(in *TransactionInput) { in.Type = "refund" }, `Transaction type must be either "payment" or "purchase"`},
		{"zero amount", func(in *TransactionInput) { in.Amount = f64Ptr(0) }, "Amount must be a positive number"},
		{"negative amount", func(in *TransactionInput) { in.Amount = f64Ptr(-10) }, "Amount must be a positive number"},
		{"bad date", func(in *TransactionInput) { in.Date = "yesterday" }, "Date must be a valid date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validTransactionInput()
			tt.mutate(&in)
			_, _, err := svc.CreateTransaction(context.Background(), "user-1", in)
			wantAppErr(t, err, http.StatusBadRequest, tt.message)
		})
	}
}

func TestCreateTransactionComputesBalance(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT balance FROM credit_cards`)).
		WithArgs("card-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(50.0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO transactions`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE credit_cards SET balance = $1`)).
		WithArgs(150.0, "card-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	txn, newBalance, err := svc.CreateTransaction(context.Background(), "user-1", validTransactionInput())
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if newBalance != 150 {
		t.Errorf("newBalance = %v, want 150", newBalance)
	}
	if txn.ID == "" {
		t.Error("transaction id not assigned")
	}
	expectationsMet(t, mock)
}

func TestCreateTransactionPaymentExceedingBalance(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT balance FROM credit_cards`)).
		WithArgs("card-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(100.0))
	mock.ExpectRollback()

	in := validTransactionInput()
	in.Type = models.TypePayment
	in.Amount = f64Ptr(150)

	_, _, err := svc.CreateTransaction(context.Background(), "user-1", in)
	wantAppErr(t, err, http.StatusBadRequest, "Payment amount cannot exceed current balance")
	expectationsMet(t, mock)
}

func TestCreateTransactionUnownedCard(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT balance FROM credit_cards`)).
		WithArgs("card-1", "user-2").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}))
	mock.ExpectRollback()

	_, _, err := svc.CreateTransaction(context.Background(), "user-2", validTransactionInput())
	wantAppErr(t, err, http.StatusNotFound, "Card not found or you do not have permission")
	expectationsMet(t, mock)
}

func TestDeleteTransactionErrorMapping(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	defer cleanup()

	lookupCols := []string{"card_id", "amount", "type", "user_id", "balance"}

	// Missing transaction comes back 404.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT t.card_id`)).
		WithArgs("txn-404").
		WillReturnRows(sqlmock.NewRows(lookupCols))
	mock.ExpectRollback()
	_, err := svc.DeleteTransaction(context.Background(), "user-1", "txn-404")
	wantAppErr(t, err, http.StatusNotFound, "Transaction not found")

	// Another user's transaction comes back 403.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT t.card_id`)).
		WithArgs("txn-1").
		WillReturnRows(sqlmock.NewRows(lookupCols).AddRow("card-1", 40.0, models.TypePayment, "user-1", 100.0))
	mock.ExpectRollback()
	_, err = svc.DeleteTransaction(context.Background(), "intruder", "txn-1")
	wantAppErr(t, err, http.StatusForbidden, "You do not have permission to delete this transaction")

	// A reversal that would go negative comes back 400.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT t.card_id`)).
		WithArgs("txn-2").
		WillReturnRows(sqlmock.NewRows(lookupCols).AddRow("card-1", 150.0, models.TypePurchase, "user-1", 100.0))
	mock.ExpectRollback()
	_, err = svc.DeleteTransaction(context.Background(), "user-1", "txn-2")
	wantAppErr(t, err, http.StatusBadRequest, "Cannot delete transaction: would result in negative balance")

	expectationsMet(t, mock)
}

// Deleting a transaction and re-creating an identical one restores the
// balance it had before the delete.
func TestDeleteThenRecreateRoundTrips(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	defer cleanup()

	// Delete a 100 purchase: balance 150 -> 50.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT t.card_id`)).
		WithArgs("txn-1").
		WillReturnRows(sqlmock.NewRows([]string{"card_id", "amount", "type", "user_id", "balance"}).
			AddRow("card-1", 100.0, models.TypePurchase, "user-1", 150.0))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE credit_cards SET balance = $1`)).
		WithArgs(50.0, "card-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM transactions`)).
		WithArgs("txn-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	afterDelete, err := svc.DeleteTransaction(context.Background(), "user-1", "txn-1")
	if err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if afterDelete != 50 {
		t.Fatalf("balance after delete = %v, want 50", afterDelete)
	}

	// Re-create the identical purchase: balance 50 -> 150.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT balance FROM credit_cards`)).
		WithArgs("card-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(afterDelete))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO transactions`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE credit_cards SET balance = $1`)).
		WithArgs(150.0, "card-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, afterRecreate, err := svc.CreateTransaction(context.Background(), "user-1", validTransactionInput())
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if afterRecreate != 150 {
		t.Errorf("balance after recreate = %v, want 150", afterRecreate)
	}
	expectationsMet(t, mock)
}
