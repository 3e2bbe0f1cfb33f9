package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"btevta-wasl-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestCandidateRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCandidateRepository(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "name", "cnic", "status", "trade_id", "campus_id", "batch_id", "oep_id", "training_status", "created_at", "updated_at", "deleted_at"}).
			AddRow(5, "Asif Khan", "35202-1234567-1", "training", 2, 3, nil, nil, "ongoing", now, now, nil)
		mock.ExpectQuery("SELECT (.+) FROM candidates WHERE id = \\$1 AND deleted_at IS NULL").
			WithArgs(int64(5)).
			WillReturnRows(rows)

		c, err := repo.GetByID(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, domain.CandidateStatusTraining, c.Status)
		require.NotNil(t, c.TradeID)
		assert.Equal(t, int64(2), *c.TradeID)
		assert.Nil(t, c.BatchID)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM candidates").
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepository_UpdateStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCandidateRepository(db)
	ctx := context.Background()
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		entry := &domain.StatusLog{Actor: "campus-admin", Justification: "", CreatedAt: at}

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE candidates SET status = \\$1").
			WithArgs(domain.CandidateStatusVisaProcess, at, int64(5), domain.CandidateStatusTraining).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO candidate_status_logs").
			WithArgs(int64(5), domain.CandidateStatusTraining, domain.CandidateStatusVisaProcess, "campus-admin", "", false, at).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
		mock.ExpectCommit()

		err := repo.UpdateStatus(ctx, 5, domain.CandidateStatusTraining, domain.CandidateStatusVisaProcess, entry)
		require.NoError(t, err)
		assert.Equal(t, int64(11), entry.ID)
		assert.Equal(t, domain.CandidateStatusTraining, entry.FromStatus)
		assert.Equal(t, at, entry.CreatedAt)
	})

	t.Run("MissingTimestamp", func(t *testing.T) {
		err := repo.UpdateStatus(ctx, 5, domain.CandidateStatusTraining, domain.CandidateStatusVisaProcess, &domain.StatusLog{})
		assert.ErrorIs(t, err, errNoTimestamp)
	})

	t.Run("StatusChangedConcurrently", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE candidates SET status = \\$1").
			WithArgs(domain.CandidateStatusRegistered, sqlmock.AnyArg(), int64(6), domain.CandidateStatusScreening).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.UpdateStatus(ctx, 6, domain.CandidateStatusScreening, domain.CandidateStatusRegistered, &domain.StatusLog{CreatedAt: at})
		assert.ErrorIs(t, err, domain.ErrConcurrentModification)
		assert.Equal(t, domain.ErrKindConcurrentModification, domain.KindOf(err))
	})

	t.Run("LogInsertFailureRollsBack", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE candidates SET status = \\$1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO candidate_status_logs").
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := repo.UpdateStatus(ctx, 7, domain.CandidateStatusNew, domain.CandidateStatusScreening, &domain.StatusLog{CreatedAt: at})
		assert.EqualError(t, err, "disk full")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepository_ListStatusLogs(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCandidateRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "candidate_id", "from_status", "to_status", "actor", "justification", "is_override", "created_at"}).
		AddRow(1, 5, "new", "screening", "clerk", "", false, now).
		AddRow(2, 5, "screening", "returned", "director", "family emergency", true, now)
	mock.ExpectQuery("SELECT (.+) FROM candidate_status_logs WHERE candidate_id = \\$1").
		WithArgs(int64(5)).
		WillReturnRows(rows)

	logs, err := repo.ListStatusLogs(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.True(t, logs[1].IsOverride)
	assert.Equal(t, domain.CandidateStatusReturned, logs[1].ToStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}
