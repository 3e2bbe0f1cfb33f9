package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/lifecycle"
	"btevta-wasl-backend/internal/logger"
	"btevta-wasl-backend/internal/notify"
	"btevta-wasl-backend/internal/repository"
	"btevta-wasl-backend/internal/sla"
)

const systemActor = "system"

type lifecycleService struct {
	candidates repository.CandidateRepository
	documents  repository.DocumentRepository
	screenings repository.ScreeningRepository
	training   repository.TrainingRepository
	visas      repository.VisaRepository
	departures repository.DepartureRepository
	validator  *lifecycle.Validator
	notifier   notify.Notifier
	clock      sla.Clock
	autoReject bool
}

func NewLifecycleService(
	candidates repository.CandidateRepository,
	documents repository.DocumentRepository,
	screenings repository.ScreeningRepository,
	training repository.TrainingRepository,
	visas repository.VisaRepository,
	departures repository.DepartureRepository,
	validator *lifecycle.Validator,
	notifier notify.Notifier,
	clock sla.Clock,
	autoReject bool,
) LifecycleService {
	return &lifecycleService{
		candidates: candidates,
		documents:  documents,
		screenings: screenings,
		training:   training,
		visas:      visas,
		departures: departures,
		validator:  validator,
		notifier:   notifier,
		clock:      clock,
		autoReject: autoReject,
	}
}

func (s *lifecycleService) AttemptTransition(ctx context.Context, candidateID int64, target domain.CandidateStatus, tc lifecycle.TransitionContext) (*TransitionResult, error) {
	logger.EnterMethod("lifecycleService.AttemptTransition", "candidateID", candidateID, "target", target)

	cand, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		logger.ExitMethodWithError("lifecycleService.AttemptTransition", err, "candidateID", candidateID)
		return nil, err
	}
	snap, err := s.snapshotFor(ctx, *cand, target)
	if err != nil {
		logger.ExitMethodWithError("lifecycleService.AttemptTransition", err, "reason", "failed to load snapshot")
		return nil, err
	}

	d := s.validator.AttemptTransition(snap, target, tc)
	res := &TransitionResult{Decision: d, Candidate: cand}
	if !d.Allowed {
		if d.Suggested == domain.CandidateStatusRejected && s.autoReject {
			if err := s.reject(ctx, cand, snap, tc, d.Missing()); err != nil {
				logger.Swallowed("lifecycleService.autoReject", err, "candidateID", candidateID)
			} else {
				res.AutoRejected = true
			}
		}
		logger.ExitMethod("lifecycleService.AttemptTransition", "allowed", false, "reason", d.Reason, "missing", d.Missing())
		return res, d.Err()
	}

	if err := s.commit(ctx, cand, d, tc); err != nil {
		logger.ExitMethodWithError("lifecycleService.AttemptTransition", err, "candidateID", candidateID)
		return nil, err
	}
	logger.ExitMethod("lifecycleService.AttemptTransition", "candidateID", candidateID, "status", cand.Status)
	return res, nil
}

func (s *lifecycleService) Reactivate(ctx context.Context, candidateID int64, tc lifecycle.TransitionContext) (*TransitionResult, error) {
	cand, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	d := s.validator.Reactivate(lifecycle.Snapshot{Candidate: *cand}, tc)
	res := &TransitionResult{Decision: d, Candidate: cand}
	if !d.Allowed {
		return res, d.Err()
	}
	if err := s.commit(ctx, cand, d, tc); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *lifecycleService) EvaluateGate(ctx context.Context, candidateID int64, gate lifecycle.GateName) (*lifecycle.GateResult, error) {
	cand, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	snap := lifecycle.Snapshot{Candidate: *cand}
	if err := s.load(ctx, &snap, gate); err != nil {
		return nil, err
	}
	res := s.validator.EvaluateGate(gate, snap)
	return &res, nil
}

func (s *lifecycleService) AllowedTransitions(ctx context.Context, candidateID int64) (*domain.Candidate, []domain.CandidateStatus, error) {
	cand, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		return nil, nil, err
	}
	return cand, lifecycle.AllowedTargets(cand.Status), nil
}

func (s *lifecycleService) ListStatusLogs(ctx context.Context, candidateID int64) ([]domain.StatusLog, error) {
	if _, err := s.candidates.GetByID(ctx, candidateID); err != nil {
		return nil, err
	}
	return s.candidates.ListStatusLogs(ctx, candidateID)
}

func (s *lifecycleService) AdvanceVisaStage(ctx context.Context, candidateID int64, stage int) (*domain.VisaProcess, error) {
	visa, err := s.visas.GetByCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.ValidateVisaStageAdvance(visa.CurrentStage, stage); err != nil {
		return nil, err
	}
	if stage == visa.CurrentStage {
		return visa, nil
	}

	now := s.clock.Now()
	if err := s.visas.UpdateStage(ctx, visa.ID, visa.CurrentStage, stage, now); err != nil {
		return nil, err
	}
	logger.WithCandidate(candidateID).Info("Visa stage advanced", "from", visa.CurrentStage, "to", stage, "stage", domain.VisaStageNames[stage])
	visa.CurrentStage = stage
	if visa.StageCompletedAt == nil {
		visa.StageCompletedAt = map[int]time.Time{}
	}
	visa.StageCompletedAt[stage] = now
	visa.UpdatedAt = now
	return visa, nil
}

func (s *lifecycleService) RecordCallAttempt(ctx context.Context, screeningID int64) (*domain.ScreeningRecord, error) {
	rec, err := s.screenings.GetByID(ctx, screeningID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.ValidateCallAttempt(*rec); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.screenings.RecordCallAttempt(ctx, rec.ID, rec.CallCount, now); err != nil {
		return nil, err
	}
	rec.CallCount++
	rec.LastCallAt = &now
	rec.UpdatedAt = now
	logger.WithCandidate(rec.CandidateID).Info("Screening call attempt recorded", "screeningID", rec.ID, "attempt", rec.CallCount)
	return rec, nil
}

// reject moves a candidate whose screening failed straight to rejected.
func (s *lifecycleService) reject(ctx context.Context, cand *domain.Candidate, snap lifecycle.Snapshot, tc lifecycle.TransitionContext, reasons []string) error {
	rc := lifecycle.TransitionContext{
		Actor:         tc.Actor,
		Justification: "screening failed: " + strings.Join(reasons, "; "),
	}
	d := s.validator.AttemptTransition(snap, domain.CandidateStatusRejected, rc)
	if !d.Allowed {
		return d.Err()
	}
	return s.commit(ctx, cand, d, rc)
}

func (s *lifecycleService) commit(ctx context.Context, cand *domain.Candidate, d lifecycle.Decision, tc lifecycle.TransitionContext) error {
	actor := tc.Actor
	if actor == "" {
		actor = systemActor
	}
	now := s.clock.Now()
	entry := &domain.StatusLog{
		CandidateID:   cand.ID,
		FromStatus:    d.From,
		ToStatus:      d.To,
		Actor:         actor,
		Justification: tc.Justification,
		IsOverride:    d.Override,
		CreatedAt:     now,
	}
	if err := s.candidates.UpdateStatus(ctx, cand.ID, d.From, d.To, entry); err != nil {
		return err
	}
	cand.Status = d.To
	cand.UpdatedAt = now
	logger.StatusChange(cand.ID, string(d.From), string(d.To), actor, d.Override)

	publish(ctx, s.notifier, domain.NewEvent(domain.EventStatusChanged, "candidate", cand.ID, cand.ID, map[string]any{
		"from":          string(d.From),
		"to":            string(d.To),
		"actor":         actor,
		"is_override":   d.Override,
		"justification": tc.Justification,
	}, now))
	return nil
}

// snapshotFor loads what deciding from the candidate's status to target needs.
func (s *lifecycleService) snapshotFor(ctx context.Context, cand domain.Candidate, target domain.CandidateStatus) (lifecycle.Snapshot, error) {
	snap := lifecycle.Snapshot{Candidate: cand}
	if cand.Status == domain.CandidateStatusScreening {
		if err := s.load(ctx, &snap, lifecycle.GateScreening); err != nil {
			return snap, err
		}
	}
	if gate, ok := lifecycle.GateFor(cand.Status, target); ok && gate != lifecycle.GateScreening {
		if err := s.load(ctx, &snap, gate); err != nil {
			return snap, err
		}
	}
	return snap, nil
}

func (s *lifecycleService) load(ctx context.Context, snap *lifecycle.Snapshot, gate lifecycle.GateName) error {
	id := snap.Candidate.ID
	var err error
	switch gate {
	case lifecycle.GateDocument:
		snap.Checklist, err = s.documents.ListChecklist(ctx, id)
	case lifecycle.GateScreening:
		snap.Screenings, err = s.screenings.ListByCandidate(ctx, id)
	case lifecycle.GateTraining, lifecycle.GateCertificate:
		if snap.Attendance, err = s.training.ListAttendance(ctx, id); err != nil {
			return err
		}
		snap.Assessments, err = s.training.ListAssessments(ctx, id)
	case lifecycle.GateVisa:
		snap.Visa, err = s.visas.GetByCandidate(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			snap.Visa, err = nil, nil
		}
	case lifecycle.GateDeparture:
		snap.Departure, err = s.departures.GetByCandidate(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			snap.Departure, err = nil, nil
		}
	}
	return err
}
