package sla

import (
	"fmt"
	"math"
	"time"

	"btevta-wasl-backend/internal/domain"
)

// ComplianceState is the post-departure compliance classification of one departure.
type ComplianceState struct {
	Status        domain.ComplianceStatus `json:"status"`
	Percentage    int                     `json:"percentage"`
	Deadline      time.Time               `json:"deadline"`
	DaysRemaining int                     `json:"days_remaining"`
	DaysOverdue   int                     `json:"days_overdue"`
	Missing       []string                `json:"missing"`
}

// ComplianceDeadline is departure_date + the compliance window.
func (p Policy) ComplianceDeadline(dep domain.Departure) (time.Time, error) {
	if dep.DepartureDate == nil {
		return time.Time{}, fmt.Errorf("departure %d has no departure date: %w", dep.ID, domain.ErrNotApplicable)
	}
	return dep.DepartureDate.AddDate(0, 0, p.ComplianceWindowDays), nil
}

// CompliancePercentage is the weighted share of completed post-departure items, 0-100.
func (p Policy) CompliancePercentage(dep domain.Departure) (int, []string) {
	w := p.ComplianceWeights
	items := []struct {
		weight int
		done   bool
		label  string
	}{
		{w.Salary, dep.SalaryConfirmed, "salary confirmation"},
		{w.Iqama, dep.IqamaIssued, "iqama"},
		{w.Absher, dep.AbsherRegistered, "absher registration"},
		{w.Qiwa, dep.QiwaActivated, "qiwa activation"},
		{w.Accommodation, dep.AccommodationVerified, "accommodation verification"},
	}

	total := w.total()
	if total <= 0 {
		return 100, []string{}
	}
	got := 0
	missing := []string{}
	for _, it := range items {
		if it.weight <= 0 {
			continue
		}
		if it.done {
			got += it.weight
		} else {
			missing = append(missing, it.label)
		}
	}
	return int(math.Round(float64(got) / float64(total) * 100)), missing
}

// EvaluateCompliance classifies a departure at now. A departure without a date yields the
// not_applicable state together with domain.ErrNotApplicable.
func (p Policy) EvaluateCompliance(dep domain.Departure, now time.Time) (ComplianceState, error) {
	deadline, err := p.ComplianceDeadline(dep)
	if err != nil {
		return ComplianceState{Status: domain.ComplianceStatusNotApplicable, Missing: []string{}}, err
	}

	pct, missing := p.CompliancePercentage(dep)
	st := ComplianceState{Percentage: pct, Deadline: deadline, Missing: missing}

	// The window is open while at least one whole day remains; the last partial day counts
	// as zero days remaining.
	if now.Before(deadline) {
		st.DaysRemaining = wholeDays(deadline.Sub(now))
	} else {
		st.DaysOverdue = wholeDays(now.Sub(deadline))
	}
	open := st.DaysRemaining > 0

	switch {
	case pct >= 100:
		st.Status = domain.ComplianceStatusCompliant
	case open:
		st.Status = domain.ComplianceStatusPartial
	default:
		st.Status = domain.ComplianceStatusNonCompliant
	}
	return st, nil
}

// SalaryReminderLevel returns the reminder severity due at now for an unconfirmed salary.
// Once the deadline passes reminders stop and the compliance check takes over.
func (p Policy) SalaryReminderLevel(dep domain.Departure, now time.Time) (domain.ReminderLevel, int, error) {
	deadline, err := p.ComplianceDeadline(dep)
	if err != nil {
		return domain.ReminderLevelNone, 0, err
	}
	if dep.SalaryConfirmed || !now.Before(deadline) {
		return domain.ReminderLevelNone, 0, nil
	}

	left := wholeDays(deadline.Sub(now))
	t := p.SalaryReminder
	switch {
	case left <= t.Critical:
		return domain.ReminderLevelCritical, left, nil
	case left <= t.Urgent:
		return domain.ReminderLevelUrgent, left, nil
	case left <= t.Reminder:
		return domain.ReminderLevelReminder, left, nil
	}
	return domain.ReminderLevelNone, left, nil
}
