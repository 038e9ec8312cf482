package service

import (
	"context"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestGetOrCreateUserValidation(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()

	tests := []struct {
		name    string
		email   string
		user    string
		message string
	}{
		{"missing email", "", "Kim", "Email and name are required"},
		{"missing name", "kim@example.com", "", "Email and name are required"},
		{"bad email format", "not-an-email", "Kim", "Invalid email format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.GetOrCreateUser(context.Background(), tt.email, tt.user)
			wantAppErr(t, err, http.StatusBadRequest, tt.message)
		})
	}
}

func TestGetOrCreateUserReturnsExisting(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE email = $1`)).
		WithArgs("kim@example.com").
		WillReturnRows(userRows().
			AddRow("user-1", "kim@example.com", "Kim", "$2a$10$somehash", now, now))

	user, created, err := svc.GetOrCreateUser(context.Background(), "kim@example.com", "Kim")
	if err != nil {
		t.Fatalf("GetOrCreateUser: %v", err)
	}
	if created {
		t.Error("created = true for an existing user")
	}
	if user.ID != "user-1" {
		t.Errorf("user id = %q", user.ID)
	}
	if user.PasswordHash != "" {
		t.Error("password hash must be cleared before the user is returned")
	}
	expectationsMet(t, mock)
}

func TestGetOrCreateUserCreatesOnFirstTouch(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	defer cleanup()

	expectNoUserByEmail(mock, "new@example.com")
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs(sqlmock.AnyArg(), "new@example.com", "New", "").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now(), time.Now()))

	user, created, err := svc.GetOrCreateUser(context.Background(), "new@example.com", "New")
	if err != nil {
		t.Fatalf("GetOrCreateUser: %v", err)
	}
	if !created {
		t.Error("created = false for a new user")
	}
	if user.ID == "" {
		t.Error("new user has no id")
	}
	if user.Email != "new@example.com" || user.Name != "New" {
		t.Errorf("unexpected user: %+v", user)
	}
	expectationsMet(t, mock)
}

func TestGetUserWithCards(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`)).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "created_at", "updated_at"}).
			AddRow("user-1", "kim@example.com", "Kim", now, now))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC`)).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "name", "balance", "interest_rate", "due_date",
			"minimum_payment", "last_four", "created_at", "updated_at",
		}).AddRow("card-1", "user-1", "Visa", 100.0, 20.0, now, 25.0, "", now, now))

	user, err := svc.GetUserWithCards(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetUserWithCards: %v", err)
	}
	if len(user.Cards) != 1 || user.Cards[0].Name != "Visa" {
		t.Errorf("unexpected cards: %+v", user.Cards)
	}
	expectationsMet(t, mock)
}

func TestGetUserWithCardsNotFound(t *testing.T) {
	svc, mock, cleanup := newTestService(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "created_at", "updated_at"}))

	_, err := svc.GetUserWithCards(context.Background(), "ghost")
	wantAppErr(t, err, http.StatusNotFound, "User not found")
	expectationsMet(t, mock)
}

func TestListUserCardsRequiresID(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()

	_, err := svc.ListUserCards(context.Background(), "")
	wantAppErr(t, err, http.StatusBadRequest, "User ID is required")
}
