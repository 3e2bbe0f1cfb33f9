package service

import (
	"context"
	"errors"
	"time"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/escalation"
	"btevta-wasl-backend/internal/logger"
	"btevta-wasl-backend/internal/notify"
	"btevta-wasl-backend/internal/repository"
	"btevta-wasl-backend/internal/sla"
)

type complaintService struct {
	complaints repository.ComplaintRepository
	policy     sla.Policy
	escalation escalation.Policy
	notifier   notify.Notifier
	clock      sla.Clock
}

func NewComplaintService(complaints repository.ComplaintRepository, policy sla.Policy, escalationPolicy escalation.Policy, notifier notify.Notifier, clock sla.Clock) ComplaintService {
	return &complaintService{
		complaints: complaints,
		policy:     policy,
		escalation: escalationPolicy,
		notifier:   notifier,
		clock:      clock,
	}
}

func (s *complaintService) EvaluateSLA(ctx context.Context, complaintID int64) (*ComplaintSLA, error) {
	c, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	st, newly, err := s.recordBreach(ctx, c, s.clock.Now())
	if err != nil {
		return nil, err
	}
	return &ComplaintSLA{Complaint: c, State: st, NewlyBreached: newly}, nil
}

func (s *complaintService) Tick(ctx context.Context, c *domain.Complaint) (*ComplaintSLA, error) {
	now := s.clock.Now()
	st, newly, err := s.recordBreach(ctx, c, now)
	if err != nil {
		return nil, err
	}
	out := &ComplaintSLA{Complaint: c, State: st, NewlyBreached: newly}

	d := s.escalation.OnSlaTick(*c, now)
	if !d.Escalate {
		return out, nil
	}
	if err := s.commitEscalation(ctx, c, d, systemActor, now); err != nil {
		return out, err
	}
	out.Escalation = &d
	return out, nil
}

func (s *complaintService) Escalate(ctx context.Context, complaintID int64, actor, reason string) (*ComplaintEscalationResult, error) {
	c, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if actor == "" {
		actor = systemActor
	}
	now := s.clock.Now()
	d := s.escalation.Manual(*c, reason)
	if d.Escalate {
		if err := s.commitEscalation(ctx, c, d, actor, now); err != nil {
			return nil, err
		}
	} else {
		logger.WithComplaint(c.ID).Info("Manual escalation refused", "level", c.EscalationLevel, "reason", d.Reason)
	}
	return &ComplaintEscalationResult{Complaint: c, Decision: d}, nil
}

func (s *complaintService) ListEscalations(ctx context.Context, complaintID int64) ([]domain.ComplaintEscalation, error) {
	return s.complaints.ListEscalations(ctx, complaintID)
}

// recordBreach evaluates c and persists the first breach. Only the writer that flips the
// stored flag sends the sla_breached event.
func (s *complaintService) recordBreach(ctx context.Context, c *domain.Complaint, now time.Time) (sla.State, bool, error) {
	st := s.policy.EvaluateComplaint(*c, now)
	if c.Status.IsResolved() {
		return st, false, nil
	}
	if st.Status != sla.StatusBreached {
		sla.ApplyComplaintState(c, st, now)
		return st, false, nil
	}

	if !st.NewlyBreached {
		if c.HoursOverdue != st.HoursOverdue {
			if err := s.complaints.UpdateHoursOverdue(ctx, c.ID, st.HoursOverdue); err != nil {
				return st, false, err
			}
			c.HoursOverdue = st.HoursOverdue
		}
		return st, false, nil
	}

	err := s.complaints.MarkBreached(ctx, c.ID, now, st.HoursOverdue)
	if errors.Is(err, domain.ErrConcurrentModification) {
		fresh, err := s.complaints.GetByID(ctx, c.ID)
		if err != nil {
			return st, false, err
		}
		*c = *fresh
		st.NewlyBreached = false
		return st, false, nil
	}
	if err != nil {
		return st, false, err
	}

	sla.ApplyComplaintState(c, st, now)
	logger.WithComplaint(c.ID).Warn("Complaint SLA breached", "priority", c.Priority, "days_overdue", st.DaysOverdue, "hours_overdue", st.HoursOverdue)
	publish(ctx, s.notifier, domain.NewEvent(domain.EventSLABreached, "complaint", c.ID, c.CandidateID, map[string]any{
		"priority":      string(c.Priority),
		"sla_days":      s.slaDays(*c),
		"due_date":      st.DueDate.Format(time.RFC3339),
		"days_overdue":  st.DaysOverdue,
		"hours_overdue": st.HoursOverdue,
		"level":         c.EscalationLevel,
	}, now))
	return st, true, nil
}

func (s *complaintService) commitEscalation(ctx context.Context, c *domain.Complaint, d escalation.Decision, actor string, now time.Time) error {
	entry := d.History(c.ID, actor, now)
	if err := s.complaints.Escalate(ctx, &entry); err != nil {
		return err
	}
	escalation.Apply(c, d, now)
	logger.WithComplaint(c.ID).Info("Complaint escalated",
		"from", d.PreviousLevel, "to", d.NewLevel, "auto", d.IsAuto, "escalated_to", d.EscalatedTo, "actor", actor)
	publish(ctx, s.notifier, d.Event(*c, now))
	return nil
}

func (s *complaintService) slaDays(c domain.Complaint) int {
	if c.SLADays > 0 {
		return c.SLADays
	}
	return s.policy.SLADaysFor(c.Priority)
}
