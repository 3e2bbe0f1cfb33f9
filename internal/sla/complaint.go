// Package sla computes deadlines and classifies elapsed time for complaints, post-departure
// compliance, salary verification, documents, screening follow-ups and remittances.
// Every function takes the evaluation instant explicitly; callers read it from a Clock.
package sla

import (
	"time"

	"btevta-wasl-backend/internal/domain"
)

type Status string

const (
	StatusOnTrack       Status = "on_track"
	StatusWarning       Status = "warning"
	StatusBreached      Status = "breached"
	StatusNotApplicable Status = "not_applicable"
)

// State is the result of evaluating a complaint against its SLA.
type State struct {
	Status        Status    `json:"status"`
	DueDate       time.Time `json:"due_date"`
	DaysRemaining int       `json:"days_remaining"`
	DaysOverdue   int       `json:"days_overdue"`
	HoursOverdue  int       `json:"hours_overdue"`
	// NewlyBreached is set only on the evaluation that first observes the breach.
	NewlyBreached bool `json:"newly_breached"`
}

// ComplaintDueDate is the stored due date or, when unset, created_at + SLA days.
func (p Policy) ComplaintDueDate(c domain.Complaint) time.Time {
	if !c.SLADueDate.IsZero() {
		return c.SLADueDate
	}
	days := c.SLADays
	if days <= 0 {
		days = p.SLADaysFor(c.Priority)
	}
	return c.CreatedAt.AddDate(0, 0, days)
}

// EvaluateComplaint classifies a complaint at now. Resolved complaints keep their recorded
// breach flag but never become newly breached.
func (p Policy) EvaluateComplaint(c domain.Complaint, now time.Time) State {
	due := p.ComplaintDueDate(c)
	st := State{DueDate: due}

	if now.After(due) {
		over := now.Sub(due)
		st.Status = StatusBreached
		st.DaysOverdue = wholeDays(over)
		st.HoursOverdue = int(over / time.Hour)
		st.NewlyBreached = !c.SLABreached && !c.Status.IsResolved()
		return st
	}

	st.DaysRemaining = wholeDays(due.Sub(now))
	if st.DaysRemaining <= p.ComplaintWarningDays {
		st.Status = StatusWarning
	} else {
		st.Status = StatusOnTrack
	}
	return st
}

// ApplyComplaintState copies an evaluation onto c. The breach flag and timestamp are set
// once and never cleared; later evaluations only refresh hours overdue. It reports whether
// the breach flag flipped.
func ApplyComplaintState(c *domain.Complaint, st State, now time.Time) bool {
	if c.SLADueDate.IsZero() {
		c.SLADueDate = st.DueDate
	}
	if st.Status != StatusBreached {
		return false
	}
	c.HoursOverdue = st.HoursOverdue
	if c.SLABreached {
		return false
	}
	c.SLABreached = true
	at := now
	c.SLABreachedAt = &at
	return true
}
