package service

import (
	"context"
	"sync"
	"time"

	"btevta-wasl-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockCandidateRepo
type MockCandidateRepo struct {
	mock.Mock
}

func (m *MockCandidateRepo) GetByID(ctx context.Context, id int64) (*domain.Candidate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Candidate), args.Error(1)
}
func (m *MockCandidateRepo) UpdateStatus(ctx context.Context, id int64, expected, next domain.CandidateStatus, entry *domain.StatusLog) error {
	args := m.Called(ctx, id, expected, next, entry)
	return args.Error(0)
}
func (m *MockCandidateRepo) ListStatusLogs(ctx context.Context, candidateID int64) ([]domain.StatusLog, error) {
	args := m.Called(ctx, candidateID)
	return args.Get(0).([]domain.StatusLog), args.Error(1)
}

// MockDocumentRepo
type MockDocumentRepo struct {
	mock.Mock
}

func (m *MockDocumentRepo) ListChecklist(ctx context.Context, candidateID int64) ([]domain.DocumentChecklistItem, error) {
	args := m.Called(ctx, candidateID)
	return args.Get(0).([]domain.DocumentChecklistItem), args.Error(1)
}
func (m *MockDocumentRepo) ListUnnotifiedExpiring(ctx context.Context, before time.Time) ([]domain.UploadedDocument, error) {
	args := m.Called(ctx, before)
	return args.Get(0).([]domain.UploadedDocument), args.Error(1)
}
func (m *MockDocumentRepo) MarkExpiryNotified(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockScreeningRepo
type MockScreeningRepo struct {
	mock.Mock
}

func (m *MockScreeningRepo) ListByCandidate(ctx context.Context, candidateID int64) ([]domain.ScreeningRecord, error) {
	args := m.Called(ctx, candidateID)
	return args.Get(0).([]domain.ScreeningRecord), args.Error(1)
}
func (m *MockScreeningRepo) GetByID(ctx context.Context, id int64) (*domain.ScreeningRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScreeningRecord), args.Error(1)
}
func (m *MockScreeningRepo) ListPendingCalls(ctx context.Context) ([]domain.ScreeningRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ScreeningRecord), args.Error(1)
}
func (m *MockScreeningRepo) RecordCallAttempt(ctx context.Context, id int64, expectedCount int, at time.Time) error {
	args := m.Called(ctx, id, expectedCount, at)
	return args.Error(0)
}
func (m *MockScreeningRepo) MarkReminded(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockTrainingRepo
type MockTrainingRepo struct {
	mock.Mock
}

func (m *MockTrainingRepo) ListAttendance(ctx context.Context, candidateID int64) ([]domain.TrainingAttendance, error) {
	args := m.Called(ctx, candidateID)
	return args.Get(0).([]domain.TrainingAttendance), args.Error(1)
}
func (m *MockTrainingRepo) ListAssessments(ctx context.Context, candidateID int64) ([]domain.TrainingAssessment, error) {
	args := m.Called(ctx, candidateID)
	return args.Get(0).([]domain.TrainingAssessment), args.Error(1)
}

// MockVisaRepo
type MockVisaRepo struct {
	mock.Mock
}

func (m *MockVisaRepo) GetByCandidate(ctx context.Context, candidateID int64) (*domain.VisaProcess, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VisaProcess), args.Error(1)
}
func (m *MockVisaRepo) UpdateStage(ctx context.Context, id int64, expected, next int, at time.Time) error {
	args := m.Called(ctx, id, expected, next, at)
	return args.Error(0)
}

// MockDepartureRepo
type MockDepartureRepo struct {
	mock.Mock
}

func (m *MockDepartureRepo) GetByID(ctx context.Context, id int64) (*domain.Departure, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Departure), args.Error(1)
}
func (m *MockDepartureRepo) GetByCandidate(ctx context.Context, candidateID int64) (*domain.Departure, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Departure), args.Error(1)
}
func (m *MockDepartureRepo) ListDeparted(ctx context.Context) ([]domain.Departure, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Departure), args.Error(1)
}
func (m *MockDepartureRepo) UpdateCompliance(ctx context.Context, id int64, expected, status domain.ComplianceStatus, percentage int, at time.Time) error {
	args := m.Called(ctx, id, expected, status, percentage, at)
	return args.Error(0)
}
func (m *MockDepartureRepo) UpdateSalaryReminder(ctx context.Context, id int64, expected, next domain.ReminderLevel, at time.Time) error {
	args := m.Called(ctx, id, expected, next, at)
	return args.Error(0)
}

// MockComplaintRepo
type MockComplaintRepo struct {
	mock.Mock
}

func (m *MockComplaintRepo) GetByID(ctx context.Context, id int64) (*domain.Complaint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Complaint), args.Error(1)
}
func (m *MockComplaintRepo) ListOpen(ctx context.Context) ([]domain.Complaint, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Complaint), args.Error(1)
}
func (m *MockComplaintRepo) MarkBreached(ctx context.Context, id int64, at time.Time, hoursOverdue int) error {
	args := m.Called(ctx, id, at, hoursOverdue)
	return args.Error(0)
}
func (m *MockComplaintRepo) UpdateHoursOverdue(ctx context.Context, id int64, hoursOverdue int) error {
	args := m.Called(ctx, id, hoursOverdue)
	return args.Error(0)
}
func (m *MockComplaintRepo) Escalate(ctx context.Context, entry *domain.ComplaintEscalation) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *MockComplaintRepo) ListEscalations(ctx context.Context, complaintID int64) ([]domain.ComplaintEscalation, error) {
	args := m.Called(ctx, complaintID)
	return args.Get(0).([]domain.ComplaintEscalation), args.Error(1)
}

// MockRemittanceRepo
type MockRemittanceRepo struct {
	mock.Mock
}

func (m *MockRemittanceRepo) ListByCandidate(ctx context.Context, candidateID int64) ([]domain.Remittance, error) {
	args := m.Called(ctx, candidateID)
	return args.Get(0).([]domain.Remittance), args.Error(1)
}
func (m *MockRemittanceRepo) ListOpenAlerts(ctx context.Context, candidateID int64) ([]domain.RemittanceAlert, error) {
	args := m.Called(ctx, candidateID)
	return args.Get(0).([]domain.RemittanceAlert), args.Error(1)
}
func (m *MockRemittanceRepo) CreateAlert(ctx context.Context, alert *domain.RemittanceAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}
func (m *MockRemittanceRepo) AutoResolveAlert(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// eventRecorder collects events and optionally fails every send.
type eventRecorder struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (r *eventRecorder) Send(_ context.Context, ev domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *eventRecorder) kinds() []domain.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventKind, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

func (r *eventRecorder) last() domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}
