package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/escalation"
	"btevta-wasl-backend/internal/sla"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newComplaintFixture() (*MockComplaintRepo, *eventRecorder, *sla.FixedClock, ComplaintService) {
	repo := new(MockComplaintRepo)
	events := &eventRecorder{}
	clock := sla.NewFixedClock(now)
	return repo, events, clock, NewComplaintService(repo, sla.DefaultPolicy(), escalation.DefaultPolicy(), events, clock)
}

func urgentComplaint() *domain.Complaint {
	return &domain.Complaint{
		ID:          1,
		CandidateID: 42,
		Status:      domain.ComplaintStatusOpen,
		Priority:    domain.ComplaintPriorityUrgent,
		SLADays:     2,
		CreatedAt:   now.Add(-72 * time.Hour),
	}
}

func TestComplaintService_BreachRecordedOnce(t *testing.T) {
	repo, events, _, svc := newComplaintFixture()
	ctx := context.Background()
	c := urgentComplaint()

	repo.On("MarkBreached", ctx, int64(1), now, 24).Return(nil).Once()

	first, err := svc.Tick(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, sla.StatusBreached, first.State.Status)
	assert.Equal(t, 1, first.State.DaysOverdue)
	assert.True(t, first.NewlyBreached)
	assert.True(t, c.SLABreached)
	assert.Nil(t, first.Escalation)

	second, err := svc.Tick(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, sla.StatusBreached, second.State.Status)
	assert.False(t, second.NewlyBreached)

	assert.Equal(t, []domain.EventKind{domain.EventSLABreached}, events.kinds())
	assert.Equal(t, 24, events.last().Payload["hours_overdue"])
	repo.AssertExpectations(t)
}

func TestComplaintService_BreachLostRace(t *testing.T) {
	repo, events, _, svc := newComplaintFixture()
	ctx := context.Background()
	c := urgentComplaint()

	breachedAt := now.Add(-time.Minute)
	stored := *c
	stored.SLABreached = true
	stored.SLABreachedAt = &breachedAt
	stored.HoursOverdue = 24

	repo.On("MarkBreached", ctx, int64(1), now, 24).Return(domain.ErrConcurrentModification)
	repo.On("GetByID", ctx, int64(1)).Return(&stored, nil)

	res, err := svc.Tick(ctx, c)
	require.NoError(t, err)
	assert.False(t, res.NewlyBreached)
	assert.True(t, c.SLABreached)
	assert.Empty(t, events.kinds())
}

func TestComplaintService_AutoEscalatesAfterWait(t *testing.T) {
	repo, events, clock, svc := newComplaintFixture()
	ctx := context.Background()
	c := urgentComplaint()

	repo.On("MarkBreached", ctx, int64(1), now, 24).Return(nil)
	_, err := svc.Tick(ctx, c)
	require.NoError(t, err)

	clock.Advance(49 * time.Hour)
	later := clock.Now()
	repo.On("UpdateHoursOverdue", ctx, int64(1), 73).Return(nil)
	repo.On("Escalate", ctx, mock.MatchedBy(func(e *domain.ComplaintEscalation) bool {
		return e.PreviousLevel == 0 && e.NewLevel == 1 && e.IsAuto && e.Actor == "system" && e.CreatedAt.Equal(later)
	})).Return(nil)

	res, err := svc.Tick(ctx, c)
	require.NoError(t, err)
	require.NotNil(t, res.Escalation)
	assert.Equal(t, 1, c.EscalationLevel)
	assert.Equal(t, []domain.EventKind{domain.EventSLABreached, domain.EventComplaintEscalated}, events.kinds())
	assert.Equal(t, true, events.last().Payload["is_auto_escalation"])
	repo.AssertExpectations(t)
}

func TestComplaintService_ManualEscalation(t *testing.T) {
	repo, events, _, svc := newComplaintFixture()
	ctx := context.Background()

	c := urgentComplaint()
	c.EscalationLevel = 2
	repo.On("GetByID", ctx, int64(1)).Return(c, nil)
	repo.On("Escalate", ctx, mock.MatchedBy(func(e *domain.ComplaintEscalation) bool {
		return e.PreviousLevel == 2 && e.NewLevel == 3 && !e.IsAuto && e.Reason == "candidate stranded"
	})).Return(nil)

	res, err := svc.Escalate(ctx, 1, "supervisor", "candidate stranded")
	require.NoError(t, err)
	assert.True(t, res.Decision.Escalate)
	assert.Equal(t, 3, res.Complaint.EscalationLevel)
	assert.Len(t, events.kinds(), 1)
}

func TestComplaintService_ManualEscalationAtCap(t *testing.T) {
	repo, events, _, svc := newComplaintFixture()
	ctx := context.Background()

	c := urgentComplaint()
	c.EscalationLevel = domain.MaxEscalationLevel
	repo.On("GetByID", ctx, int64(1)).Return(c, nil)

	res, err := svc.Escalate(ctx, 1, "supervisor", "again")
	require.NoError(t, err)
	assert.False(t, res.Decision.Escalate)
	assert.Equal(t, domain.MaxEscalationLevel, res.Complaint.EscalationLevel)
	assert.Empty(t, events.kinds())
	repo.AssertNotCalled(t, "Escalate", mock.Anything, mock.Anything)
}

func TestComplaintService_EscalationSurvivesNotifierFailure(t *testing.T) {
	repo, events, _, svc := newComplaintFixture()
	events.err = errors.New("sendgrid down")
	ctx := context.Background()

	c := urgentComplaint()
	repo.On("GetByID", ctx, int64(1)).Return(c, nil)
	repo.On("Escalate", ctx, mock.Anything).Return(nil)

	res, err := svc.Escalate(ctx, 1, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Complaint.EscalationLevel)
	assert.Equal(t, "manual escalation", res.Decision.Reason)
}

func TestComplaintService_EvaluateSLAOnTrack(t *testing.T) {
	repo, events, _, svc := newComplaintFixture()
	ctx := context.Background()

	c := &domain.Complaint{ID: 2, Status: domain.ComplaintStatusOpen, Priority: domain.ComplaintPriorityLow, CreatedAt: now.Add(-24 * time.Hour)}
	repo.On("GetByID", ctx, int64(2)).Return(c, nil)

	res, err := svc.EvaluateSLA(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, sla.StatusOnTrack, res.State.Status)
	assert.Equal(t, 13, res.State.DaysRemaining)
	assert.Equal(t, c.CreatedAt.AddDate(0, 0, 14), c.SLADueDate)
	assert.Empty(t, events.kinds())
}
