package domain

import "time"

type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLeave   AttendanceStatus = "leave"
	AttendanceStatusLate    AttendanceStatus = "late"
)

// CountsAsPresent reports whether the row contributes to the present-day count.
// Late arrivals are counted as present.
func (s AttendanceStatus) CountsAsPresent() bool {
	return s == AttendanceStatusPresent || s == AttendanceStatusLate
}

type TrainingAttendance struct {
	ID          int64            `json:"id"`
	CandidateID int64            `json:"candidate_id"`
	BatchID     *int64           `json:"batch_id,omitempty"`
	Date        time.Time        `json:"date"`
	Status      AttendanceStatus `json:"status"`
}

type AssessmentType string

const (
	AssessmentTypeInitial   AssessmentType = "initial"
	AssessmentTypeMidterm   AssessmentType = "midterm"
	AssessmentTypePractical AssessmentType = "practical"
	AssessmentTypeFinal     AssessmentType = "final"
)

type AssessmentResult string

const (
	AssessmentResultPass AssessmentResult = "pass"
	AssessmentResultFail AssessmentResult = "fail"
)

// TrainingAssessment stores the score as a percentage (0-100).
type TrainingAssessment struct {
	ID          int64            `json:"id"`
	CandidateID int64            `json:"candidate_id"`
	Type        AssessmentType   `json:"type"`
	Score       float64          `json:"score"`
	Result      AssessmentResult `json:"result"`
	AssessedAt  time.Time        `json:"assessed_at"`
}
