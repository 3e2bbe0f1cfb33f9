package domain

import "time"

type ScreeningType string

const (
	ScreeningTypeDesk     ScreeningType = "desk"
	ScreeningTypeCall     ScreeningType = "call"
	ScreeningTypePhysical ScreeningType = "physical"
)

// RequiredScreeningTypes must all be passed before registration.
var RequiredScreeningTypes = []ScreeningType{ScreeningTypeDesk, ScreeningTypeCall, ScreeningTypePhysical}

type ScreeningStatus string

const (
	ScreeningStatusPending  ScreeningStatus = "pending"
	ScreeningStatusPassed   ScreeningStatus = "passed"
	ScreeningStatusFailed   ScreeningStatus = "failed"
	ScreeningStatusDeferred ScreeningStatus = "deferred"
)

// MaxScreeningCallAttempts caps call screening attempts per candidate.
const MaxScreeningCallAttempts = 3

type ScreeningRecord struct {
	ID          int64           `json:"id"`
	CandidateID int64           `json:"candidate_id"`
	Type        ScreeningType   `json:"type"`
	Status      ScreeningStatus `json:"status"`
	CallCount   int             `json:"call_count"`
	LastCallAt  *time.Time      `json:"last_call_at,omitempty"`
	RemindedAt  *time.Time      `json:"reminded_at,omitempty"`
	Remarks     string          `json:"remarks"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
