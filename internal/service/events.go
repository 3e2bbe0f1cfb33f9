package service

import (
	"context"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/logger"
	"btevta-wasl-backend/internal/notify"
)

// publish hands ev to the notifier. A delivery failure never fails the caller.
func publish(ctx context.Context, n notify.Notifier, ev domain.Event) {
	if n == nil {
		return
	}
	if err := n.Send(ctx, ev); err != nil {
		logger.Swallowed("notify", err, "kind", ev.Kind, "event_id", ev.ID, "candidate_id", ev.CandidateID)
	}
}
