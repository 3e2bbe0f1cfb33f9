package postgres

import (
	"context"
	"testing"
	"time"

	"btevta-wasl-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationRepository(db)

	n := &domain.Notification{
		EventID:     "b2f1",
		Kind:        domain.EventSLABreached,
		CandidateID: 5,
		Title:       "Complaint SLA breached",
		Message:     "Complaint #3 is 1 day overdue",
		Attributes:  map[string]string{"complaint_id": "3"},
		CreatedAt:   time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	mock.ExpectQuery("INSERT INTO notifications").
		WithArgs("b2f1", domain.EventSLABreached, int64(5), n.Title, n.Message, false, `{"complaint_id":"3"}`, n.CreatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(77))

	require.NoError(t, repo.Create(context.Background(), n))
	assert.Equal(t, int64(77), n.ID)

	err := repo.Create(context.Background(), &domain.Notification{EventID: "c3d4", Kind: domain.EventSLABreached})
	assert.ErrorIs(t, err, errNoTimestamp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_ListByCandidate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM notifications").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM notifications WHERE candidate_id = \\$1 ORDER BY").
		WithArgs(int64(5), int32(20), int32(0)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "kind", "candidate_id", "title", "message", "is_read", "attributes", "created_at"}).
			AddRow(77, "b2f1", "sla_breached", 5, "t", "m", false, []byte(`{"complaint_id":"3"}`), now))

	notes, count, err := repo.ListByCandidate(context.Background(), 5, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(1), count)
	require.Len(t, notes, 1)
	assert.Equal(t, "3", notes[0].Attributes["complaint_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
