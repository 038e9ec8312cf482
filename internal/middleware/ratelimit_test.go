package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

func TestMemoryRateLimiterWindow(t *testing.T) {
	rl := NewMemoryRateLimiter(2, time.Hour)
	defer rl.Close()

	if !rl.Allow("1.2.3.4") {
		t.Fatal("first request should pass")
	}
	if !rl.Allow("1.2.3.4") {
		t.Fatal("second request should pass")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("third request in the same window should be rejected")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("a different client has its own window")
	}
}

func TestMemoryRateLimiterWindowExpiry(t *testing.T) {
	rl := NewMemoryRateLimiter(1, 10*time.Millisecond)
	defer rl.Close()

	if !rl.Allow("1.2.3.4") {
		t.Fatal("first request should pass")
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("limit of one should reject the second request")
	}
	time.Sleep(20 * time.Millisecond)
	if !rl.Allow("1.2.3.4") {
		t.Error("a fresh window should admit again")
	}
}

func TestMemoryRateLimiterZeroLimitDisables(t *testing.T) {
	rl := NewMemoryRateLimiter(0, time.Hour)
	defer rl.Close()
	for i := 0; i < 10; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatal("zero limit should never reject")
		}
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	rl := NewMemoryRateLimiter(2, time.Hour)
	defer rl.Close()

	r := mux.NewRouter()
	r.Use(RateLimit(rl, logger))
	r.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:54321"
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		return resp
	}

	for i := 0; i < 2; i++ {
		if resp := do(); resp.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i+1, resp.Code)
		}
	}
	resp := do()
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if body.Success {
		t.Error("success should be false")
	}
	if body.Error != "Too many requests from this IP, please try again later" {
		t.Errorf("error message = %q", body.Error)
	}
}
