package domain

import "time"

// Visa processing stages, in order. Stage 8 is final.
const (
	VisaStageInterview     = 1
	VisaStageTradeTest     = 2
	VisaStageTakamol       = 3
	VisaStageMedical       = 4
	VisaStageBiometrics    = 5
	VisaStageEnumber       = 6
	VisaStageVisaSubmitted = 7
	VisaStageVisaIssued    = 8

	VisaFinalStage = VisaStageVisaIssued
)

var VisaStageNames = map[int]string{
	VisaStageInterview:     "interview",
	VisaStageTradeTest:     "trade_test",
	VisaStageTakamol:       "takamol",
	VisaStageMedical:       "medical",
	VisaStageBiometrics:    "biometrics",
	VisaStageEnumber:       "e_number",
	VisaStageVisaSubmitted: "visa_submitted",
	VisaStageVisaIssued:    "visa_issued",
}

type VisaProcess struct {
	ID                     int64             `json:"id"`
	CandidateID            int64             `json:"candidate_id"`
	CurrentStage           int               `json:"current_stage"`
	StageCompletedAt       map[int]time.Time `json:"stage_completed_at"`
	ExpectedCompletionDate *time.Time        `json:"expected_completion_date,omitempty"`
	MissingDocuments       []string          `json:"missing_documents"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
}

func (v *VisaProcess) IsComplete() bool {
	return v.CurrentStage >= VisaFinalStage
}
