package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/logger"
	"btevta-wasl-backend/internal/notify"
	"btevta-wasl-backend/internal/repository"
	"btevta-wasl-backend/internal/sla"
)

type complianceService struct {
	departures repository.DepartureRepository
	policy     sla.Policy
	notifier   notify.Notifier
	clock      sla.Clock
}

func NewComplianceService(departures repository.DepartureRepository, policy sla.Policy, notifier notify.Notifier, clock sla.Clock) ComplianceService {
	return &complianceService{departures: departures, policy: policy, notifier: notifier, clock: clock}
}

func (s *complianceService) EvaluateCompliance(ctx context.Context, departureID int64) (*domain.Departure, *sla.ComplianceState, error) {
	dep, err := s.departures.GetByID(ctx, departureID)
	if err != nil {
		return nil, nil, err
	}
	st, err := s.policy.EvaluateCompliance(*dep, s.clock.Now())
	if err != nil {
		return dep, nil, err
	}
	return dep, &st, nil
}

// CheckCompliance stores the current classification and sends compliance_issue when the
// departure enters non_compliant.
func (s *complianceService) CheckCompliance(ctx context.Context, dep *domain.Departure) (*ComplianceCheck, error) {
	now := s.clock.Now()
	st, err := s.policy.EvaluateCompliance(*dep, now)
	if errors.Is(err, domain.ErrNotApplicable) {
		return &ComplianceCheck{State: st, Skipped: true}, nil
	}
	if err != nil {
		return nil, err
	}

	out := &ComplianceCheck{State: st}
	previous := dep.ComplianceStatus
	if previous == st.Status && dep.CompliancePercentage == st.Percentage {
		return out, nil
	}
	if err := s.departures.UpdateCompliance(ctx, dep.ID, previous, st.Status, st.Percentage, now); err != nil {
		if errors.Is(err, domain.ErrConcurrentModification) {
			out.Skipped = true
			return out, nil
		}
		return nil, err
	}
	dep.ComplianceStatus = st.Status
	dep.CompliancePercentage = st.Percentage
	dep.ComplianceCheckedAt = &now
	out.Changed = true

	if st.Status == domain.ComplianceStatusNonCompliant && previous != domain.ComplianceStatusNonCompliant {
		logger.WithCandidate(dep.CandidateID).Warn("Post-departure compliance window closed", "departureID", dep.ID, "percentage", st.Percentage, "missing", st.Missing)
		publish(ctx, s.notifier, domain.NewEvent(domain.EventComplianceIssue, "departure", dep.ID, dep.CandidateID, map[string]any{
			"percentage":   st.Percentage,
			"missing":      strings.Join(st.Missing, ", "),
			"window_days":  s.policy.ComplianceWindowDays,
			"deadline":     st.Deadline.Format(time.RFC3339),
			"days_overdue": st.DaysOverdue,
		}, now))
		out.Notified = true
	}
	return out, nil
}

// SendSalaryReminder sends the salary verification reminder when its severity rises.
func (s *complianceService) SendSalaryReminder(ctx context.Context, dep *domain.Departure) (domain.ReminderLevel, bool, error) {
	now := s.clock.Now()
	level, daysLeft, err := s.policy.SalaryReminderLevel(*dep, now)
	if errors.Is(err, domain.ErrNotApplicable) {
		return domain.ReminderLevelNone, false, nil
	}
	if err != nil {
		return domain.ReminderLevelNone, false, err
	}
	if level == domain.ReminderLevelNone || level <= dep.SalaryReminderLevel {
		return level, false, nil
	}

	if err := s.departures.UpdateSalaryReminder(ctx, dep.ID, dep.SalaryReminderLevel, level, now); err != nil {
		if errors.Is(err, domain.ErrConcurrentModification) {
			return level, false, nil
		}
		return level, false, err
	}
	dep.SalaryReminderLevel = level
	dep.SalaryRemindedAt = &now

	deadline, _ := s.policy.ComplianceDeadline(*dep)
	publish(ctx, s.notifier, domain.NewEvent(domain.EventSalaryVerificationReminder, "departure", dep.ID, dep.CandidateID, map[string]any{
		"level":          level.String(),
		"days_remaining": daysLeft,
		"deadline":       deadline.Format(time.RFC3339),
	}, now))
	return level, true, nil
}
