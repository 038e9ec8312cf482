package service

import (
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cardkeeper/cardkeeper/internal/apperr"
	"github.com/cardkeeper/cardkeeper/internal/config"
	"github.com/cardkeeper/cardkeeper/internal/repository"
	"github.com/sirupsen/logrus"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:     "test-secret-that-is-long-enough-000",
		JWTTTL:        time.Hour,
		HMACSecret:    "test-hmac-secret",
		EncryptionKey: []byte("0123456789abcdef0123456789abcdef"),
		AppEnv:        "test",
	}
}

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := NewService(repository.NewRepository(db), nil, logger, testConfig())
	return svc, mock, func() { db.Close() }
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// wantAppErr asserts err normalizes to the given status and message.
func wantAppErr(t *testing.T, err error, status int, message string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	appErr := apperr.Normalize(err)
	if appErr.Status != status {
		t.Errorf("status = %d, want %d (err: %v)", appErr.Status, status, err)
	}
	if message != "" && appErr.Message != message {
		t.Errorf("message = %q, want %q", appErr.Message, message)
	}
}
