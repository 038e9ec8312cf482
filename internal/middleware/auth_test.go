package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cardkeeper/cardkeeper/internal/config"
	"github.com/cardkeeper/cardkeeper/internal/repository"
	"github.com/cardkeeper/cardkeeper/internal/service"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const testSecret = "test-secret-that-is-long-enough-000"

func newAuthStack(t *testing.T) (*service.Service, sqlmock.Sqlmock, *logrus.Logger, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := &config.Config{JWTSecret: testSecret, JWTTTL: time.Hour}
	svc := service.NewService(repository.NewRepository(db), nil, logger, cfg)
	return svc, mock, logger, func() { db.Close() }
}

func signToken(t *testing.T, userID string, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func authRouter(svc *service.Service, logger *logrus.Logger) *mux.Router {
	r := mux.NewRouter()
	protected := r.PathPrefix("/").Subrouter()
	protected.Use(Auth(svc, logger))
	protected.HandleFunc("/whoami", func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			http.Error(w, "no user in context", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": user.ID})
	}).Methods("GET")
	return r
}

func TestAuthAttachesUser(t *testing.T) {
	svc, mock, logger, cleanup := newAuthStack(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`)).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "created_at", "updated_at"}).
			AddRow("user-1", "kim@example.com", "Kim", time.Now(), time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1", time.Hour))
	resp := httptest.NewRecorder()
	authRouter(svc, logger).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	var out map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if out["id"] != "user-1" {
		t.Errorf("resolved user id = %q", out["id"])
	}
}

func TestAuthRejections(t *testing.T) {
	svc, mock, logger, cleanup := newAuthStack(t)
	defer cleanup()

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
		{"expired token", "Bearer " + signToken(t, "user-1", -time.Minute), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp := httptest.NewRecorder()
			authRouter(svc, logger).ServeHTTP(resp, req)

			if resp.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.Code, tt.wantStatus)
			}
			var body map[string]any
			if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
				t.Fatalf("error body is not JSON: %v", err)
			}
			if success, _ := body["success"].(bool); success {
				t.Error("error envelope should carry success=false")
			}
		})
	}
	_ = mock
}

// A valid token whose user has since been deleted resolves to 404, not 401.
func TestAuthVanishedUserIs404(t *testing.T) {
	svc, mock, logger, cleanup := newAuthStack(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`)).
		WithArgs("gone").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "created_at", "updated_at"}))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "gone", time.Hour))
	resp := httptest.NewRecorder()
	authRouter(svc, logger).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.Code)
	}
}
