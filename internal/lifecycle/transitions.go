// Package lifecycle holds the candidate status state machine and its gates.
//
// Pipeline:
//
//	new ──► screening ──► registered ──► training ──► visa_process ──► ready ──► departed
//	 │          │             │             │              │            │          │
//	 └──────────┴─────────────┴─────────────┴──────────────┴────────────┴──► rejected | dropped | returned
//
// departed only exits to returned. rejected, dropped and returned are terminal; a returned
// candidate can be reactivated to new through Reactivate.
package lifecycle

import (
	"fmt"
	"strings"

	"btevta-wasl-backend/internal/domain"
)

// next holds the single forward edge out of each pipeline status.
var next = map[domain.CandidateStatus]domain.CandidateStatus{
	domain.CandidateStatusNew:         domain.CandidateStatusScreening,
	domain.CandidateStatusScreening:   domain.CandidateStatusRegistered,
	domain.CandidateStatusRegistered:  domain.CandidateStatusTraining,
	domain.CandidateStatusTraining:    domain.CandidateStatusVisaProcess,
	domain.CandidateStatusVisaProcess: domain.CandidateStatusReady,
	domain.CandidateStatusReady:       domain.CandidateStatusDeparted,
}

// edgeGates maps forward edges to the gate that must pass. registered → training is ungated.
var edgeGates = map[domain.CandidateStatus]GateName{
	domain.CandidateStatusNew:         GateDocument,
	domain.CandidateStatusScreening:   GateScreening,
	domain.CandidateStatusTraining:    GateTraining,
	domain.CandidateStatusVisaProcess: GateVisa,
	domain.CandidateStatusReady:       GateDeparture,
}

// ParseStatus converts a raw string to a CandidateStatus.
func ParseStatus(s string) (domain.CandidateStatus, error) {
	st := domain.CandidateStatus(strings.TrimSpace(s))
	for _, known := range domain.AllCandidateStatuses {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown candidate status %q", s)
}

// IsTerminal reports whether no pipeline progression is possible from s.
func IsTerminal(s domain.CandidateStatus) bool {
	switch s {
	case domain.CandidateStatusDeparted, domain.CandidateStatusRejected,
		domain.CandidateStatusDropped, domain.CandidateStatusReturned:
		return true
	}
	return false
}

func isSideExit(s domain.CandidateStatus) bool {
	return s == domain.CandidateStatusRejected || s == domain.CandidateStatusDropped || s == domain.CandidateStatusReturned
}

// IsEdge reports whether from → to is in the allowed-edge graph, ignoring gates.
func IsEdge(from, to domain.CandidateStatus) bool {
	if isSideExit(to) {
		if from == domain.CandidateStatusDeparted {
			return to == domain.CandidateStatusReturned
		}
		return !IsTerminal(from)
	}
	n, ok := next[from]
	return ok && n == to
}

// AllowedTargets lists the statuses reachable from s by the graph alone.
func AllowedTargets(s domain.CandidateStatus) []domain.CandidateStatus {
	var out []domain.CandidateStatus
	for _, t := range domain.AllCandidateStatuses {
		if IsEdge(s, t) {
			out = append(out, t)
		}
	}
	return out
}

// GateFor returns the gate guarding from → to, if any.
func GateFor(from, to domain.CandidateStatus) (GateName, bool) {
	if n, ok := next[from]; !ok || n != to {
		return "", false
	}
	g, ok := edgeGates[from]
	return g, ok
}

// Snapshot is the set of facts a transition is decided on. Only the parts needed by the
// edge's gate have to be populated.
type Snapshot struct {
	Candidate   domain.Candidate
	Checklist   []domain.DocumentChecklistItem
	Screenings  []domain.ScreeningRecord
	Attendance  []domain.TrainingAttendance
	Assessments []domain.TrainingAssessment
	Visa        *domain.VisaProcess
	Departure   *domain.Departure
}

// TransitionContext carries who is asking and why.
type TransitionContext struct {
	Actor         string `json:"actor"`
	Justification string `json:"justification"`
}

// Decision is the validator's structured answer.
type Decision struct {
	From      domain.CandidateStatus `json:"from"`
	To        domain.CandidateStatus `json:"to"`
	Allowed   bool                   `json:"allowed"`
	Reason    domain.ErrorKind       `json:"reason,omitempty"`
	Gate      *GateResult            `json:"gate,omitempty"`
	Override  bool                   `json:"override"`
	Suggested domain.CandidateStatus `json:"suggested,omitempty"`
}

// Missing returns the gate's missing preconditions, if any.
func (d Decision) Missing() []string {
	if d.Gate == nil {
		return nil
	}
	return d.Gate.Missing
}

// Err converts a denied decision into a *domain.TransitionError.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &domain.TransitionError{Kind: d.Reason, From: d.From, To: d.To, Missing: d.Missing()}
}

// Validator decides status transitions. It is the only place statuses are compared.
type Validator struct {
	rules Rules
}

func NewValidator(rules Rules) *Validator {
	return &Validator{rules: rules}
}

func (v *Validator) Rules() Rules { return v.rules }

// AttemptTransition decides whether the candidate in s may move to target.
func (v *Validator) AttemptTransition(s Snapshot, target domain.CandidateStatus, tc TransitionContext) Decision {
	from := s.Candidate.Status
	d := Decision{From: from, To: target}

	if !IsEdge(from, target) {
		d.Reason = domain.ErrKindInvalidTransition
		return d
	}

	// A failed screening leaves rejection as the only way out.
	if from == domain.CandidateStatusScreening && target != domain.CandidateStatusRejected {
		if res := EvaluateScreeningGate(s.Screenings); res.HardFail {
			res.Pass = false
			d.Reason = domain.ErrKindGateNotSatisfied
			d.Gate = &res
			d.Suggested = domain.CandidateStatusRejected
			return d
		}
	}

	if target == domain.CandidateStatusReturned {
		if strings.TrimSpace(tc.Justification) == "" {
			res := newResult(GateOverride, []string{"justification is required to mark a candidate as returned"})
			d.Reason = domain.ErrKindGateNotSatisfied
			d.Gate = &res
			return d
		}
		d.Allowed = true
		d.Override = true
		return d
	}

	if gate, ok := GateFor(from, target); ok {
		res := v.EvaluateGate(gate, s)
		d.Gate = &res
		if !res.Pass {
			d.Reason = domain.ErrKindGateNotSatisfied
			return d
		}
	}

	d.Allowed = true
	return d
}

// Reactivate decides whether a returned candidate may re-enter the pipeline at new.
func (v *Validator) Reactivate(s Snapshot, tc TransitionContext) Decision {
	d := Decision{From: s.Candidate.Status, To: domain.CandidateStatusNew}
	if s.Candidate.Status != domain.CandidateStatusReturned {
		d.Reason = domain.ErrKindInvalidTransition
		return d
	}
	if strings.TrimSpace(tc.Justification) == "" {
		res := newResult(GateOverride, []string{"justification is required to reactivate a candidate"})
		d.Reason = domain.ErrKindGateNotSatisfied
		d.Gate = &res
		return d
	}
	d.Allowed = true
	d.Override = true
	return d
}

// EvaluateGate runs a single gate against the snapshot.
func (v *Validator) EvaluateGate(g GateName, s Snapshot) GateResult {
	switch g {
	case GateDocument:
		return EvaluateDocumentGate(s.Checklist)
	case GateScreening:
		return EvaluateScreeningGate(s.Screenings)
	case GateTraining:
		return EvaluateTrainingGate(v.rules, s.Attendance, s.Assessments)
	case GateCertificate:
		return EvaluateCertificateGate(v.rules, s.Attendance, s.Assessments)
	case GateVisa:
		return EvaluateVisaGate(s.Visa)
	case GateDeparture:
		return EvaluateDepartureGate(v.rules, s.Departure)
	}
	return newResult(g, []string{fmt.Sprintf("unknown gate %q", g)})
}

// ValidateVisaStageAdvance enforces that the visa stage never moves backwards.
func ValidateVisaStageAdvance(current, proposed int) error {
	if proposed < 1 || proposed > domain.VisaFinalStage {
		return fmt.Errorf("visa stage %d out of range 1-%d: %w", proposed, domain.VisaFinalStage, domain.ErrInvalidTransition)
	}
	if proposed < current {
		return fmt.Errorf("visa stage cannot move back from %d to %d: %w", current, proposed, domain.ErrInvalidTransition)
	}
	return nil
}

// ValidateCallAttempt refuses another call screening attempt once the cap is reached.
func ValidateCallAttempt(r domain.ScreeningRecord) error {
	if r.Type != domain.ScreeningTypeCall {
		return fmt.Errorf("call attempts only apply to call screening, got %s: %w", r.Type, domain.ErrInvalidTransition)
	}
	if r.Status != domain.ScreeningStatusPending && r.Status != domain.ScreeningStatusDeferred {
		return fmt.Errorf("call screening already %s: %w", r.Status, domain.ErrInvalidTransition)
	}
	if r.CallCount >= domain.MaxScreeningCallAttempts {
		return fmt.Errorf("call screening reached %d attempts: %w", domain.MaxScreeningCallAttempts, domain.ErrInvalidTransition)
	}
	return nil
}
