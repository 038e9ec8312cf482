package respond

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the uniform error envelope every failed request gets.
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Detail  string `json:"detail,omitempty"`
}

// JSON writes a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Error writes the uniform error envelope. detail is only populated in
// non-production profiles and is empty otherwise.
func Error(w http.ResponseWriter, status int, message, detail string) {
	JSON(w, status, ErrorBody{Success: false, Error: message, Detail: detail})
}
