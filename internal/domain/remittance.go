package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Remittance struct {
	ID          int64           `json:"id"`
	CandidateID int64           `json:"candidate_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	SentAt      time.Time       `json:"sent_at"`
	HasProof    bool            `json:"has_proof"`
	CreatedAt   time.Time       `json:"created_at"`
}

type RemittanceAlertType string

const (
	AlertTypeMissingRemittance    RemittanceAlertType = "missing_remittance"
	AlertTypeMissingProof         RemittanceAlertType = "missing_proof"
	AlertTypeFirstRemittanceDelay RemittanceAlertType = "first_remittance_delay"
	AlertTypeLowFrequency         RemittanceAlertType = "low_frequency"
	AlertTypeUnusualAmount        RemittanceAlertType = "unusual_amount"
)

type AlertSeverity string

const (
	AlertSeverityInfo     AlertSeverity = "info"
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityCritical AlertSeverity = "critical"
)

type RemittanceAlert struct {
	ID           int64               `json:"id"`
	CandidateID  int64               `json:"candidate_id"`
	RemittanceID *int64              `json:"remittance_id,omitempty"`
	Type         RemittanceAlertType `json:"type"`
	Severity     AlertSeverity       `json:"severity"`
	Message      string              `json:"message"`
	IsResolved   bool                `json:"is_resolved"`
	IsRead       bool                `json:"is_read"`
	AutoResolved bool                `json:"auto_resolved"`
	ResolvedAt   *time.Time          `json:"resolved_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}
