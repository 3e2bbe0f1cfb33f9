package domain

import "time"

type PTNStatus string

const (
	PTNStatusPending   PTNStatus = "pending"
	PTNStatusRequested PTNStatus = "requested"
	PTNStatusIssued    PTNStatus = "issued"
	PTNStatusRejected  PTNStatus = "rejected"
)

func (s PTNStatus) IsSuccess() bool { return s == PTNStatusIssued }

type ProtectorStatus string

const (
	ProtectorStatusPending  ProtectorStatus = "pending"
	ProtectorStatusApplied  ProtectorStatus = "applied"
	ProtectorStatusDone     ProtectorStatus = "done"
	ProtectorStatusRejected ProtectorStatus = "rejected"
)

func (s ProtectorStatus) IsSuccess() bool { return s == ProtectorStatusDone }

type ComplianceStatus string

const (
	ComplianceStatusCompliant     ComplianceStatus = "compliant"
	ComplianceStatusPartial       ComplianceStatus = "partial"
	ComplianceStatusNonCompliant  ComplianceStatus = "non_compliant"
	ComplianceStatusNotApplicable ComplianceStatus = "not_applicable"
)

// ReminderLevel is the salary verification reminder severity. Ordered: a higher value is
// more severe.
type ReminderLevel int

const (
	ReminderLevelNone ReminderLevel = iota
	ReminderLevelReminder
	ReminderLevelUrgent
	ReminderLevelCritical
)

func (l ReminderLevel) String() string {
	switch l {
	case ReminderLevelReminder:
		return "REMINDER"
	case ReminderLevelUrgent:
		return "URGENT"
	case ReminderLevelCritical:
		return "CRITICAL"
	}
	return "NONE"
}

type Departure struct {
	ID                    int64            `json:"id"`
	CandidateID           int64            `json:"candidate_id"`
	DepartureDate         *time.Time       `json:"departure_date,omitempty"`
	PTNStatus             PTNStatus        `json:"ptn_status"`
	ProtectorStatus       ProtectorStatus  `json:"protector_status"`
	TicketNumber          string           `json:"ticket_number"`
	FlightNumber          string           `json:"flight_number"`
	SalaryConfirmed       bool             `json:"salary_confirmed"`
	FirstSalaryDate       *time.Time       `json:"first_salary_date,omitempty"`
	IqamaIssued           bool             `json:"iqama_issued"`
	AbsherRegistered      bool             `json:"absher_registered"`
	QiwaActivated         bool             `json:"qiwa_activated"`
	AccommodationVerified bool             `json:"accommodation_verified"`
	ComplianceStatus      ComplianceStatus `json:"compliance_status"`
	CompliancePercentage  int              `json:"compliance_percentage"`
	ComplianceCheckedAt   *time.Time       `json:"compliance_checked_at,omitempty"`
	SalaryReminderLevel   ReminderLevel    `json:"salary_reminder_level"`
	SalaryRemindedAt      *time.Time       `json:"salary_reminded_at,omitempty"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// HasTicketDetails reports whether both ticket and flight numbers are recorded.
func (d *Departure) HasTicketDetails() bool {
	return d.TicketNumber != "" && d.FlightNumber != ""
}
