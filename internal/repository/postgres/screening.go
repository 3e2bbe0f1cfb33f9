package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/repository"
)

const screeningColumns = `id, candidate_id, type, status, call_count, last_call_at, reminded_at, remarks, created_at, updated_at`

type screeningRepository struct {
	db *sql.DB
}

func NewScreeningRepository(db *sql.DB) repository.ScreeningRepository {
	return &screeningRepository{db: db}
}

func scanScreening(s interface{ Scan(...any) error }, rec *domain.ScreeningRecord) error {
	return s.Scan(&rec.ID, &rec.CandidateID, &rec.Type, &rec.Status, &rec.CallCount, &rec.LastCallAt, &rec.RemindedAt, &rec.Remarks, &rec.CreatedAt, &rec.UpdatedAt)
}

func (r *screeningRepository) list(ctx context.Context, query string, args ...any) ([]domain.ScreeningRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ScreeningRecord
	for rows.Next() {
		var rec domain.ScreeningRecord
		if err := scanScreening(rows, &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *screeningRepository) ListByCandidate(ctx context.Context, candidateID int64) ([]domain.ScreeningRecord, error) {
	return r.list(ctx, `SELECT `+screeningColumns+` FROM screenings WHERE candidate_id = $1 ORDER BY id`, candidateID)
}

func (r *screeningRepository) GetByID(ctx context.Context, id int64) (*domain.ScreeningRecord, error) {
	rec := &domain.ScreeningRecord{}
	err := scanScreening(r.db.QueryRowContext(ctx, `SELECT `+screeningColumns+` FROM screenings WHERE id = $1`, id), rec)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("screening %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListPendingCalls returns open call screenings of candidates still in screening.
func (r *screeningRepository) ListPendingCalls(ctx context.Context) ([]domain.ScreeningRecord, error) {
	query := `SELECT s.id, s.candidate_id, s.type, s.status, s.call_count, s.last_call_at, s.reminded_at, s.remarks, s.created_at, s.updated_at
	          FROM screenings s
	          JOIN candidates c ON c.id = s.candidate_id AND c.deleted_at IS NULL AND c.status = 'screening'
	          WHERE s.type = 'call' AND s.status IN ('pending', 'deferred') AND s.call_count < $1
	          ORDER BY s.id`
	return r.list(ctx, query, domain.MaxScreeningCallAttempts)
}

func (r *screeningRepository) RecordCallAttempt(ctx context.Context, id int64, expectedCount int, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE screenings SET call_count = call_count + 1, last_call_at = $1, updated_at = $1
		 WHERE id = $2 AND call_count = $3 AND call_count < $4`,
		at, id, expectedCount, domain.MaxScreeningCallAttempts)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("screening %d call count changed: %w", id, domain.ErrConcurrentModification)
	}
	return nil
}

func (r *screeningRepository) MarkReminded(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE screenings SET reminded_at = $1 WHERE id = $2`, at, id)
	return err
}
