package notify

import (
	"context"
	"fmt"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/repository"
)

// StoreNotifier writes the in-app notification log.
type StoreNotifier struct {
	repo repository.NotificationRepository
}

func NewStoreNotifier(repo repository.NotificationRepository) *StoreNotifier {
	return &StoreNotifier{repo: repo}
}

func (s *StoreNotifier) Send(ctx context.Context, ev domain.Event) error {
	title, message := Describe(ev)
	attrs := make(map[string]string, len(ev.Payload)+2)
	for k, v := range ev.Payload {
		attrs[k] = fmt.Sprint(v)
	}
	attrs["subject_type"] = ev.SubjectType
	attrs["subject_id"] = fmt.Sprint(ev.SubjectID)

	return s.repo.Create(ctx, &domain.Notification{
		EventID:     ev.ID.String(),
		Kind:        ev.Kind,
		CandidateID: ev.CandidateID,
		Title:       title,
		Message:     message,
		Attributes:  attrs,
		CreatedAt:   ev.OccurredAt,
	})
}
