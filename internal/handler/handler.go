package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cardkeeper/cardkeeper/internal/apperr"
	"github.com/cardkeeper/cardkeeper/internal/config"
	"github.com/cardkeeper/cardkeeper/internal/integrations/cbr"
	"github.com/cardkeeper/cardkeeper/internal/middleware"
	"github.com/cardkeeper/cardkeeper/internal/models"
	"github.com/cardkeeper/cardkeeper/internal/respond"
	"github.com/cardkeeper/cardkeeper/internal/service"
	"github.com/sirupsen/logrus"
)

// Handler holds the HTTP endpoints
type Handler struct {
	svc   *service.Service
	rates *cbr.Client
	log   *logrus.Logger
	cfg   *config.Config
}

// NewHandler initializes a new handler
func NewHandler(svc *service.Service, rates *cbr.Client, log *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{svc: svc, rates: rates, log: log, cfg: cfg}
}

// error normalizes a failure into the uniform envelope. Internal errors are
// logged with full detail; detail reaches the client only outside production.
func (h *Handler) error(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.Normalize(err)
	if appErr.Status == http.StatusInternalServerError {
		h.log.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Errorf("Request failed: %v", err)
	}

	detail := ""
	if h.cfg.Development() && appErr.Cause() != nil {
		detail = appErr.Cause().Error()
	}
	respond.Error(w, appErr.Status, appErr.Message, detail)
}

func (h *Handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("Invalid JSON body")
	}
	return nil
}

// user returns the identity attached by the authentication gate.
func (h *Handler) user(r *http.Request) (*models.User, error) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return nil, apperr.Unauthenticated("Not authorized. Please log in.")
	}
	return user, nil
}
