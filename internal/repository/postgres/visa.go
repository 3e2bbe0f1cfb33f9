package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/repository"

	"github.com/lib/pq"
)

type visaRepository struct {
	db *sql.DB
}

func NewVisaRepository(db *sql.DB) repository.VisaRepository {
	return &visaRepository{db: db}
}

func (r *visaRepository) GetByCandidate(ctx context.Context, candidateID int64) (*domain.VisaProcess, error) {
	v := &domain.VisaProcess{}
	var stages []byte
	query := `SELECT id, candidate_id, current_stage, stage_completed_at, expected_completion_date, missing_documents, created_at, updated_at
	          FROM visa_processes WHERE candidate_id = $1`
	err := r.db.QueryRowContext(ctx, query, candidateID).Scan(&v.ID, &v.CandidateID, &v.CurrentStage, &stages, &v.ExpectedCompletionDate, pq.Array(&v.MissingDocuments), &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("visa process for candidate %d: %w", candidateID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	v.StageCompletedAt = map[int]time.Time{}
	if len(stages) > 0 {
		if err := json.Unmarshal(stages, &v.StageCompletedAt); err != nil {
			return nil, fmt.Errorf("decode stage timestamps: %w", err)
		}
	}
	return v, nil
}

// UpdateStage records the completion time of next and advances current_stage from expected.
func (r *visaRepository) UpdateStage(ctx context.Context, id int64, expected, next int, at time.Time) error {
	stamp, err := json.Marshal(map[string]time.Time{fmt.Sprint(next): at})
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE visa_processes SET current_stage = $1, stage_completed_at = stage_completed_at || $2::jsonb, updated_at = $3
		 WHERE id = $4 AND current_stage = $5 AND $1 >= current_stage`,
		next, string(stamp), at, id, expected)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("visa process %d stage changed: %w", id, domain.ErrConcurrentModification)
	}
	return nil
}
