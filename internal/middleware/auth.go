package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/cardkeeper/cardkeeper/internal/apperr"
	"github.com/cardkeeper/cardkeeper/internal/models"
	"github.com/cardkeeper/cardkeeper/internal/respond"
	"github.com/cardkeeper/cardkeeper/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type contextKey string

const userContextKey contextKey = "cardkeeper-user"

// UserFromContext extracts the authenticated user attached by Auth.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

// ContextWithUser attaches a resolved user the same way Auth does.
func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// Auth verifies the bearer token and resolves the user before any handler
// that touches per-user resources runs. The resolved user (without password
// hash) is attached to the request context.
func Auth(svc *service.Service, log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r.Header.Get("Authorization"))
			if err != nil {
				log.Warnf("Authorization header invalid on %s: %v", r.URL.Path, err)
				respond.Error(w, http.StatusUnauthorized, "Not authorized. Please log in.", "")
				return
			}

			user, err := svc.Authenticate(r.Context(), token)
			if err != nil {
				appErr := apperr.Normalize(err)
				if appErr.Status == http.StatusInternalServerError {
					log.Errorf("Authentication failed on %s: %v", r.URL.Path, err)
				} else {
					log.Warnf("Authentication rejected on %s: %s", r.URL.Path, appErr.Message)
				}
				respond.Error(w, appErr.Status, appErr.Message, "")
				return
			}

			ctx := ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}
