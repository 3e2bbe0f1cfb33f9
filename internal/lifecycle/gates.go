package lifecycle

import (
	"fmt"
	"math"

	"btevta-wasl-backend/internal/domain"
)

type GateName string

const (
	GateDocument    GateName = "document"
	GateScreening   GateName = "screening"
	GateTraining    GateName = "training"
	GateVisa        GateName = "visa"
	GateDeparture   GateName = "departure"
	GateCertificate GateName = "certificate"

	// GateOverride reports a missing justification on manual overrides.
	GateOverride GateName = "override"
)

// ParseGate converts a raw string to a GateName.
func ParseGate(s string) (GateName, error) {
	g := GateName(s)
	switch g {
	case GateDocument, GateScreening, GateTraining, GateVisa, GateDeparture, GateCertificate:
		return g, nil
	}
	return "", fmt.Errorf("unknown gate %q", s)
}

// GateResult is the structured outcome of a gate evaluation. HardFail is only set by the
// screening gate and means the candidate can no longer progress.
type GateResult struct {
	Gate     GateName `json:"gate"`
	Pass     bool     `json:"pass"`
	HardFail bool     `json:"hard_fail"`
	Missing  []string `json:"missing"`
}

func newResult(g GateName, missing []string) GateResult {
	if missing == nil {
		missing = []string{}
	}
	return GateResult{Gate: g, Pass: len(missing) == 0, Missing: missing}
}

// EvaluateDocumentGate passes when every mandatory checklist item has an uploaded document.
func EvaluateDocumentGate(items []domain.DocumentChecklistItem) GateResult {
	var missing []string
	for _, item := range items {
		if item.IsMandatory && !item.IsUploaded() {
			missing = append(missing, fmt.Sprintf("%s document missing", item.Name))
		}
	}
	return newResult(GateDocument, missing)
}

// EvaluateScreeningGate passes when desk, call and physical screenings are all passed.
// A failed screening of any type is a hard fail.
func EvaluateScreeningGate(records []domain.ScreeningRecord) GateResult {
	byType := make(map[domain.ScreeningType]domain.ScreeningRecord, len(records))
	for _, r := range records {
		prev, ok := byType[r.Type]
		// a failure is sticky even if a later row exists for the same type
		if !ok || prev.Status != domain.ScreeningStatusFailed {
			byType[r.Type] = r
		}
	}

	var missing []string
	hardFail := false
	for _, t := range domain.RequiredScreeningTypes {
		r, ok := byType[t]
		switch {
		case !ok:
			missing = append(missing, fmt.Sprintf("%s screening not recorded", t))
		case r.Status == domain.ScreeningStatusFailed:
			hardFail = true
			missing = append(missing, fmt.Sprintf("%s screening failed", t))
		case r.Status != domain.ScreeningStatusPassed:
			missing = append(missing, fmt.Sprintf("%s screening %s", t, r.Status))
		}
	}
	res := newResult(GateScreening, missing)
	res.HardFail = hardFail
	return res
}

// AttendancePercentage returns round(present / total * 100) along with the raw counts.
// With no recorded days the percentage is 0.
func AttendancePercentage(rows []domain.TrainingAttendance) (pct, present, total int) {
	for _, r := range rows {
		total++
		if r.Status.CountsAsPresent() {
			present++
		}
	}
	if total == 0 {
		return 0, 0, 0
	}
	return int(math.Round(float64(present) / float64(total) * 100)), present, total
}

// EvaluateTrainingGate requires the attendance threshold and a passing final assessment.
func EvaluateTrainingGate(rules Rules, attendance []domain.TrainingAttendance, assessments []domain.TrainingAssessment) GateResult {
	var missing []string

	pct, _, total := AttendancePercentage(attendance)
	if total == 0 {
		missing = append(missing, "no attendance recorded")
	} else if pct < rules.MinimumAttendancePercentage {
		missing = append(missing, fmt.Sprintf("attendance %d%% is below the required %d%%", pct, rules.MinimumAttendancePercentage))
	}

	if !hasPassingFinal(rules, assessments) {
		missing = append(missing, fmt.Sprintf("no passing final assessment (minimum %.0f%%)", rules.PassingPercentage))
	}

	return newResult(GateTraining, missing)
}

func hasPassingFinal(rules Rules, assessments []domain.TrainingAssessment) bool {
	for _, a := range assessments {
		if a.Type == domain.AssessmentTypeFinal && a.Result == domain.AssessmentResultPass && a.Score >= rules.PassingPercentage {
			return true
		}
	}
	return false
}

// EvaluateCertificateGate applies the training rule to certificate issuance.
func EvaluateCertificateGate(rules Rules, attendance []domain.TrainingAttendance, assessments []domain.TrainingAssessment) GateResult {
	res := EvaluateTrainingGate(rules, attendance, assessments)
	res.Gate = GateCertificate
	return res
}

// EvaluateVisaGate passes at the final stage with no outstanding required documents.
func EvaluateVisaGate(visa *domain.VisaProcess) GateResult {
	if visa == nil {
		return newResult(GateVisa, []string{"visa process not started"})
	}
	var missing []string
	if !visa.IsComplete() {
		missing = append(missing, fmt.Sprintf("visa process at stage %d of %d (%s)", visa.CurrentStage, domain.VisaFinalStage, domain.VisaStageNames[visa.CurrentStage]))
	}
	for _, doc := range visa.MissingDocuments {
		missing = append(missing, fmt.Sprintf("%s document missing", doc))
	}
	return newResult(GateVisa, missing)
}

// EvaluateDepartureGate checks PTN and protector clearance and, when configured, ticket details.
func EvaluateDepartureGate(rules Rules, dep *domain.Departure) GateResult {
	if dep == nil {
		return newResult(GateDeparture, []string{"departure record not created"})
	}
	var missing []string
	if !dep.PTNStatus.IsSuccess() {
		missing = append(missing, fmt.Sprintf("PTN not issued (status: %s)", dep.PTNStatus))
	}
	if !dep.ProtectorStatus.IsSuccess() {
		missing = append(missing, fmt.Sprintf("protector clearance not done (status: %s)", dep.ProtectorStatus))
	}
	if rules.TicketDetailsRequired && !dep.HasTicketDetails() {
		missing = append(missing, "ticket details missing")
	}
	return newResult(GateDeparture, missing)
}
