package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/cardkeeper/cardkeeper/internal/sanitize"
	"github.com/gorilla/mux"
)

// Sanitize escapes HTML-significant characters in every string of the request
// body, query parameters, and path parameters before handlers see them.
func Sanitize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil && r.Body != http.NoBody {
			if body, err := io.ReadAll(r.Body); err == nil {
				r.Body.Close()
				r.Body = io.NopCloser(bytes.NewReader(sanitizeBody(body)))
			}
		}

		if r.URL.RawQuery != "" {
			q := r.URL.Query()
			sanitize.Query(q)
			r.URL.RawQuery = q.Encode()
		}

		if vars := mux.Vars(r); len(vars) > 0 {
			r = mux.SetURLVars(r, sanitize.Vars(vars))
		}

		next.ServeHTTP(w, r)
	})
}

// sanitizeBody escapes string leaves of a JSON body. Bodies that do not parse
// pass through untouched so the handler can produce the decode error.
// Re-marshalling orders object keys alphabetically; handlers decode into
// structs, so only values matter downstream, not key order.
func sanitizeBody(body []byte) []byte {
	if len(bytes.TrimSpace(body)) == 0 {
		return body
	}
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return body
	}
	cleaned, err := json.Marshal(sanitize.Value(value))
	if err != nil {
		return body
	}
	return cleaned
}
