package sla

import (
	"time"

	"btevta-wasl-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// Policy holds every deadline and threshold the timer engine evaluates against.
type Policy struct {
	ComplaintSLADays     map[domain.ComplaintPriority]int
	ComplaintWarningDays int

	ComplianceWindowDays int
	ComplianceWeights    ComplianceWeights
	SalaryReminder       ReminderThresholds

	DocumentExpiryWarningDays int
	ScreeningRetryInterval    time.Duration

	Remittance RemittanceThresholds
}

// ComplianceWeights are the share of the compliance percentage each post-departure item
// contributes. Zero-weight items are ignored.
type ComplianceWeights struct {
	Salary        int
	Iqama         int
	Absher        int
	Qiwa          int
	Accommodation int
}

func (w ComplianceWeights) total() int {
	return w.Salary + w.Iqama + w.Absher + w.Qiwa + w.Accommodation
}

// ReminderThresholds are days remaining before the compliance deadline.
type ReminderThresholds struct {
	Reminder int
	Urgent   int
	Critical int
}

type RemittanceThresholds struct {
	FirstRemittanceDays     int
	MissingRemittanceDays   int
	ProofGraceDays          int
	MinExpectedRemittances  int
	LowFrequencyMonths      int
	UnusualAmountMultiplier decimal.Decimal
	UnusualAmountMinHistory int
}

func DefaultPolicy() Policy {
	return Policy{
		ComplaintSLADays: map[domain.ComplaintPriority]int{
			domain.ComplaintPriorityLow:    14,
			domain.ComplaintPriorityNormal: 7,
			domain.ComplaintPriorityHigh:   3,
			domain.ComplaintPriorityUrgent: 2,
		},
		ComplaintWarningDays: 3,
		ComplianceWindowDays: 90,
		ComplianceWeights: ComplianceWeights{
			Salary: 40,
			Iqama:  20,
			Absher: 20,
			Qiwa:   20,
		},
		SalaryReminder:            ReminderThresholds{Reminder: 30, Urgent: 14, Critical: 7},
		DocumentExpiryWarningDays: 30,
		ScreeningRetryInterval:    24 * time.Hour,
		Remittance: RemittanceThresholds{
			FirstRemittanceDays:     60,
			MissingRemittanceDays:   90,
			ProofGraceDays:          30,
			MinExpectedRemittances:  3,
			LowFrequencyMonths:      6,
			UnusualAmountMultiplier: decimal.NewFromInt(3),
			UnusualAmountMinHistory: 3,
		},
	}
}

// SLADaysFor returns the configured SLA for a priority, falling back to normal.
func (p Policy) SLADaysFor(priority domain.ComplaintPriority) int {
	if d, ok := p.ComplaintSLADays[priority]; ok {
		return d
	}
	return p.ComplaintSLADays[domain.ComplaintPriorityNormal]
}
