package service

import (
	"context"
	"errors"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/notify"
	"btevta-wasl-backend/internal/repository"
	"btevta-wasl-backend/internal/sla"
)

type reminderService struct {
	documents  repository.DocumentRepository
	screenings repository.ScreeningRepository
	policy     sla.Policy
	notifier   notify.Notifier
	clock      sla.Clock
}

func NewReminderService(documents repository.DocumentRepository, screenings repository.ScreeningRepository, policy sla.Policy, notifier notify.Notifier, clock sla.Clock) ReminderService {
	return &reminderService{documents: documents, screenings: screenings, policy: policy, notifier: notifier, clock: clock}
}

// WarnDocumentExpiry sends the one expiry warning for doc if it is due.
func (s *reminderService) WarnDocumentExpiry(ctx context.Context, doc *domain.UploadedDocument) (bool, error) {
	now := s.clock.Now()
	expiring, daysLeft := s.policy.DocumentExpiring(*doc, now)
	if !expiring {
		return false, nil
	}
	if err := s.documents.MarkExpiryNotified(ctx, doc.ID, now); err != nil {
		if errors.Is(err, domain.ErrConcurrentModification) {
			return false, nil
		}
		return false, err
	}
	doc.ExpiryNotifiedAt = &now

	publish(ctx, s.notifier, domain.NewEvent(domain.EventDocumentExpiring, "uploaded_document", doc.ID, doc.CandidateID, map[string]any{
		"document":    doc.Name,
		"days_left":   daysLeft,
		"expiry_date": doc.ExpiryDate.Format("2006-01-02"),
		"expired":     !doc.ExpiryDate.After(now),
	}, now))
	return true, nil
}

// RemindScreening follows up a pending call screening that still has attempts left.
func (s *reminderService) RemindScreening(ctx context.Context, rec *domain.ScreeningRecord) (bool, error) {
	now := s.clock.Now()
	if !s.policy.ScreeningReminderDue(*rec, now) {
		return false, nil
	}
	if err := s.screenings.MarkReminded(ctx, rec.ID, now); err != nil {
		return false, err
	}
	rec.RemindedAt = &now

	publish(ctx, s.notifier, domain.NewEvent(domain.EventScreeningReminder, "screening", rec.ID, rec.CandidateID, map[string]any{
		"call_count":         rec.CallCount,
		"attempts_remaining": domain.MaxScreeningCallAttempts - rec.CallCount,
		"status":             string(rec.Status),
	}, now))
	return true, nil
}
