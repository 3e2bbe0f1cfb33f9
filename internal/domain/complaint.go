package domain

import "time"

type ComplaintStatus string

const (
	ComplaintStatusOpen       ComplaintStatus = "open"
	ComplaintStatusAssigned   ComplaintStatus = "assigned"
	ComplaintStatusInProgress ComplaintStatus = "in_progress"
	ComplaintStatusResolved   ComplaintStatus = "resolved"
	ComplaintStatusClosed     ComplaintStatus = "closed"
)

func (s ComplaintStatus) IsResolved() bool {
	return s == ComplaintStatusResolved || s == ComplaintStatusClosed
}

type ComplaintPriority string

const (
	ComplaintPriorityLow    ComplaintPriority = "low"
	ComplaintPriorityNormal ComplaintPriority = "normal"
	ComplaintPriorityHigh   ComplaintPriority = "high"
	ComplaintPriorityUrgent ComplaintPriority = "urgent"
)

// MaxEscalationLevel is the highest level a complaint can be escalated to.
const MaxEscalationLevel = 4

type Complaint struct {
	ID              int64             `json:"id"`
	CandidateID     int64             `json:"candidate_id"`
	Subject         string            `json:"subject"`
	Status          ComplaintStatus   `json:"status"`
	Priority        ComplaintPriority `json:"priority"`
	EscalationLevel int               `json:"escalation_level"`
	SLADays         int               `json:"sla_days"`
	SLADueDate      time.Time         `json:"sla_due_date"`
	SLABreached     bool              `json:"sla_breached"`
	SLABreachedAt   *time.Time        `json:"sla_breached_at,omitempty"`
	HoursOverdue    int               `json:"hours_overdue"`
	AssigneeID      *int64            `json:"assignee_id,omitempty"`
	EscalatedTo     string            `json:"escalated_to"`
	EscalatedAt     *time.Time        `json:"escalated_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	ResolvedAt      *time.Time        `json:"resolved_at,omitempty"`
}

// ComplaintEscalation is one entry in a complaint's escalation history.
type ComplaintEscalation struct {
	ID            int64     `json:"id"`
	ComplaintID   int64     `json:"complaint_id"`
	PreviousLevel int       `json:"previous_level"`
	NewLevel      int       `json:"new_level"`
	EscalatedTo   string    `json:"escalated_to"`
	Reason        string    `json:"reason"`
	IsAuto        bool      `json:"is_auto"`
	Actor         string    `json:"actor"`
	CreatedAt     time.Time `json:"created_at"`
}
