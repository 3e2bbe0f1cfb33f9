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

func TestDocumentRepository_ListChecklist(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "candidate_id", "code", "name", "is_mandatory", "uploaded_document_id"}).
		AddRow(1, 5, "cnic", "CNIC", true, 30).
		AddRow(2, 5, "frc", "FRC", true, nil)
	mock.ExpectQuery("SELECT (.+) FROM document_checklist_items WHERE candidate_id = \\$1").
		WithArgs(int64(5)).
		WillReturnRows(rows)

	items, err := repo.ListChecklist(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].IsUploaded())
	assert.False(t, items[1].IsUploaded())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepository_MarkExpiryNotified(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentRepository(db)
	at := time.Now()

	mock.ExpectExec("UPDATE uploaded_documents SET expiry_notified_at = \\$1").
		WithArgs(at, int64(30)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.MarkExpiryNotified(context.Background(), 30, at))

	mock.ExpectExec("UPDATE uploaded_documents SET expiry_notified_at = \\$1").
		WithArgs(at, int64(30)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.MarkExpiryNotified(context.Background(), 30, at), domain.ErrConcurrentModification)

	assert.NoError(t, mock.ExpectationsWereMet())
}
