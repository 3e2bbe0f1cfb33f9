package domain

import "time"

type CandidateStatus string

const (
	CandidateStatusNew         CandidateStatus = "new"
	CandidateStatusScreening   CandidateStatus = "screening"
	CandidateStatusRegistered  CandidateStatus = "registered"
	CandidateStatusTraining    CandidateStatus = "training"
	CandidateStatusVisaProcess CandidateStatus = "visa_process"
	CandidateStatusReady       CandidateStatus = "ready"
	CandidateStatusDeparted    CandidateStatus = "departed"
	CandidateStatusRejected    CandidateStatus = "rejected"
	CandidateStatusDropped     CandidateStatus = "dropped"
	CandidateStatusReturned    CandidateStatus = "returned"
)

// AllCandidateStatuses lists every status in pipeline order followed by the exits.
var AllCandidateStatuses = []CandidateStatus{
	CandidateStatusNew,
	CandidateStatusScreening,
	CandidateStatusRegistered,
	CandidateStatusTraining,
	CandidateStatusVisaProcess,
	CandidateStatusReady,
	CandidateStatusDeparted,
	CandidateStatusRejected,
	CandidateStatusDropped,
	CandidateStatusReturned,
}

type Candidate struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	CNIC           string          `json:"cnic"`
	Status         CandidateStatus `json:"status"`
	TradeID        *int64          `json:"trade_id,omitempty"`
	CampusID       *int64          `json:"campus_id,omitempty"`
	BatchID        *int64          `json:"batch_id,omitempty"`
	OEPID          *int64          `json:"oep_id,omitempty"`
	TrainingStatus string          `json:"training_status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      *time.Time      `json:"deleted_at,omitempty"`
}

// StatusLog is the audit row written alongside every status change.
type StatusLog struct {
	ID            int64           `json:"id"`
	CandidateID   int64           `json:"candidate_id"`
	FromStatus    CandidateStatus `json:"from_status"`
	ToStatus      CandidateStatus `json:"to_status"`
	Actor         string          `json:"actor"`
	Justification string          `json:"justification"`
	IsOverride    bool            `json:"is_override"`
	CreatedAt     time.Time       `json:"created_at"`
}
