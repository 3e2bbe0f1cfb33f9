package service

import (
	"context"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/logger"
	"btevta-wasl-backend/internal/repository"
	"btevta-wasl-backend/internal/sla"
)

type remittanceService struct {
	remittances repository.RemittanceRepository
	policy      sla.Policy
	clock       sla.Clock
}

func NewRemittanceService(remittances repository.RemittanceRepository, policy sla.Policy, clock sla.Clock) RemittanceService {
	return &remittanceService{remittances: remittances, policy: policy, clock: clock}
}

// CheckAlerts raises alerts for new findings and auto-resolves open alerts whose condition
// has cleared.
func (s *remittanceService) CheckAlerts(ctx context.Context, dep *domain.Departure) (*AlertReconciliation, error) {
	out := &AlertReconciliation{}
	if dep.DepartureDate == nil {
		return out, nil
	}
	remittances, err := s.remittances.ListByCandidate(ctx, dep.CandidateID)
	if err != nil {
		return nil, err
	}
	open, err := s.remittances.ListOpenAlerts(ctx, dep.CandidateID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	findings := s.policy.CheckRemittances(*dep.DepartureDate, remittances, now)
	create, resolve := sla.ReconcileAlerts(open, findings)

	for _, f := range create {
		alert := domain.RemittanceAlert{
			CandidateID:  dep.CandidateID,
			RemittanceID: f.RemittanceID,
			Type:         f.Type,
			Severity:     f.Severity,
			Message:      f.Message,
			CreatedAt:    now,
		}
		if err := s.remittances.CreateAlert(ctx, &alert); err != nil {
			return out, err
		}
		if alert.ID != 0 {
			out.Created = append(out.Created, alert)
		}
	}
	for _, a := range resolve {
		if err := s.remittances.AutoResolveAlert(ctx, a.ID, now); err != nil {
			return out, err
		}
		a.IsResolved = true
		a.AutoResolved = true
		a.ResolvedAt = &now
		out.Resolved = append(out.Resolved, a)
	}

	if len(out.Created) > 0 || len(out.Resolved) > 0 {
		logger.WithCandidate(dep.CandidateID).Info("Remittance alerts reconciled", "created", len(out.Created), "resolved", len(out.Resolved))
	}
	return out, nil
}
