package service

import "context"

// SendDueReminders emails every owner whose card has a positive balance due
// within the configured window. Called daily by the cron scheduler; does
// nothing when SMTP is not configured.
func (s *Service) SendDueReminders(ctx context.Context) error {
	if s.mailer == nil {
		return nil
	}

	due, err := s.repo.ListCardsDueWithin(ctx, s.config.ReminderDaysAhead)
	if err != nil {
		return err
	}

	sent := 0
	for _, card := range due {
		if err := s.mailer.SendDueReminder(card); err != nil {
			// Keep going; one bad address should not block the rest.
			continue
		}
		sent++
	}

	s.log.Infof("Due date reminders: %d cards due within %d days, %d emails sent",
		len(due), s.config.ReminderDaysAhead, sent)
	return nil
}
