package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/repository"
)

type documentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) repository.DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) ListChecklist(ctx context.Context, candidateID int64) ([]domain.DocumentChecklistItem, error) {
	query := `SELECT id, candidate_id, code, name, is_mandatory, uploaded_document_id
	          FROM document_checklist_items WHERE candidate_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.DocumentChecklistItem
	for rows.Next() {
		var it domain.DocumentChecklistItem
		if err := rows.Scan(&it.ID, &it.CandidateID, &it.Code, &it.Name, &it.IsMandatory, &it.UploadedDocumentID); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *documentRepository) ListUnnotifiedExpiring(ctx context.Context, before time.Time) ([]domain.UploadedDocument, error) {
	query := `SELECT d.id, d.candidate_id, d.checklist_item_id, d.name, d.expiry_date, d.expiry_notified_at, d.uploaded_at
	          FROM uploaded_documents d
	          JOIN candidates c ON c.id = d.candidate_id AND c.deleted_at IS NULL
	          WHERE d.expiry_date IS NOT NULL AND d.expiry_date <= $1 AND d.expiry_notified_at IS NULL
	          ORDER BY d.expiry_date`
	rows, err := r.db.QueryContext(ctx, query, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.UploadedDocument
	for rows.Next() {
		var d domain.UploadedDocument
		var itemID sql.NullInt64
		if err := rows.Scan(&d.ID, &d.CandidateID, &itemID, &d.Name, &d.ExpiryDate, &d.ExpiryNotifiedAt, &d.UploadedAt); err != nil {
			return nil, err
		}
		d.ChecklistItemID = itemID.Int64
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *documentRepository) MarkExpiryNotified(ctx context.Context, id int64, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE uploaded_documents SET expiry_notified_at = $1 WHERE id = $2 AND expiry_notified_at IS NULL`, at, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("document %d already notified: %w", id, domain.ErrConcurrentModification)
	}
	return nil
}
