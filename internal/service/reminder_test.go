package service

import (
	"context"
	"testing"
	"time"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/sla"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderService_WarnDocumentExpiry(t *testing.T) {
	docs := new(MockDocumentRepo)
	events := &eventRecorder{}
	svc := NewReminderService(docs, new(MockScreeningRepo), sla.DefaultPolicy(), events, sla.NewFixedClock(now))
	ctx := context.Background()

	expiry := now.AddDate(0, 0, 10)
	doc := &domain.UploadedDocument{ID: 3, CandidateID: 42, Name: "Passport", ExpiryDate: &expiry}
	docs.On("MarkExpiryNotified", ctx, int64(3), now).Return(nil).Once()

	sent, err := svc.WarnDocumentExpiry(ctx, doc)
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, 10, events.last().Payload["days_left"])
	assert.Equal(t, false, events.last().Payload["expired"])

	sent, err = svc.WarnDocumentExpiry(ctx, doc)
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Len(t, events.kinds(), 1)
	docs.AssertExpectations(t)
}

func TestReminderService_DocumentAlreadyNotifiedElsewhere(t *testing.T) {
	docs := new(MockDocumentRepo)
	events := &eventRecorder{}
	svc := NewReminderService(docs, new(MockScreeningRepo), sla.DefaultPolicy(), events, sla.NewFixedClock(now))
	ctx := context.Background()

	expiry := now.AddDate(0, 0, -2)
	doc := &domain.UploadedDocument{ID: 4, CandidateID: 42, Name: "Medical", ExpiryDate: &expiry}
	docs.On("MarkExpiryNotified", ctx, int64(4), now).Return(domain.ErrConcurrentModification)

	sent, err := svc.WarnDocumentExpiry(ctx, doc)
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Empty(t, events.kinds())
}

func TestReminderService_RemindScreening(t *testing.T) {
	screenings := new(MockScreeningRepo)
	events := &eventRecorder{}
	svc := NewReminderService(new(MockDocumentRepo), screenings, sla.DefaultPolicy(), events, sla.NewFixedClock(now))
	ctx := context.Background()

	lastCall := now.Add(-30 * time.Hour)
	rec := &domain.ScreeningRecord{ID: 7, CandidateID: 42, Type: domain.ScreeningTypeCall, Status: domain.ScreeningStatusPending, CallCount: 1, LastCallAt: &lastCall}
	screenings.On("MarkReminded", ctx, int64(7), now).Return(nil).Once()

	sent, err := svc.RemindScreening(ctx, rec)
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, 2, events.last().Payload["attempts_remaining"])

	sent, err = svc.RemindScreening(ctx, rec)
	require.NoError(t, err)
	assert.False(t, sent)
	screenings.AssertExpectations(t)
}
