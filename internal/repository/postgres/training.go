package postgres

import (
	"context"
	"database/sql"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/repository"
)

type trainingRepository struct {
	db *sql.DB
}

func NewTrainingRepository(db *sql.DB) repository.TrainingRepository {
	return &trainingRepository{db: db}
}

func (r *trainingRepository) ListAttendance(ctx context.Context, candidateID int64) ([]domain.TrainingAttendance, error) {
	query := `SELECT id, candidate_id, batch_id, date, status FROM training_attendances WHERE candidate_id = $1 ORDER BY date`
	rows, err := r.db.QueryContext(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TrainingAttendance
	for rows.Next() {
		var a domain.TrainingAttendance
		if err := rows.Scan(&a.ID, &a.CandidateID, &a.BatchID, &a.Date, &a.Status); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *trainingRepository) ListAssessments(ctx context.Context, candidateID int64) ([]domain.TrainingAssessment, error) {
	query := `SELECT id, candidate_id, type, score, result, assessed_at FROM training_assessments WHERE candidate_id = $1 ORDER BY assessed_at`
	rows, err := r.db.QueryContext(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TrainingAssessment
	for rows.Next() {
		var a domain.TrainingAssessment
		if err := rows.Scan(&a.ID, &a.CandidateID, &a.Type, &a.Score, &a.Result, &a.AssessedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
