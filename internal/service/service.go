package service

import (
	"time"

	"github.com/cardkeeper/cardkeeper/internal/config"
	"github.com/cardkeeper/cardkeeper/internal/repository"
	"github.com/cardkeeper/cardkeeper/internal/utils/email"
	"github.com/sirupsen/logrus"
)

// Service handles business logic
type Service struct {
	repo   *repository.Repository
	mailer *email.Sender
	log    *logrus.Logger
	config *config.Config
}

// NewService initializes a new service. mailer may be nil when SMTP is not
// configured; the reminder job then becomes a no-op.
func NewService(repo *repository.Repository, mailer *email.Sender, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{repo: repo, mailer: mailer, log: log, config: cfg}
}

// parseDate accepts the date formats clients send: RFC 3339 timestamps and
// plain calendar dates.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
