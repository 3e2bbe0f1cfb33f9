package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/logger"
	"btevta-wasl-backend/internal/repository"
)

type candidateRepository struct {
	db *sql.DB
}

func NewCandidateRepository(db *sql.DB) repository.CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) GetByID(ctx context.Context, id int64) (*domain.Candidate, error) {
	c := &domain.Candidate{}
	query := `SELECT id, name, cnic, status, trade_id, campus_id, batch_id, oep_id, training_status, created_at, updated_at, deleted_at
	          FROM candidates WHERE id = $1 AND deleted_at IS NULL`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.CNIC, &c.Status, &c.TradeID, &c.CampusID, &c.BatchID, &c.OEPID, &c.TrainingStatus, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("candidate %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *candidateRepository) UpdateStatus(ctx context.Context, id int64, expected, next domain.CandidateStatus, entry *domain.StatusLog) error {
	logger.EnterMethod("candidateRepository.UpdateStatus", "candidateID", id, "from", expected, "to", next)
	if entry.CreatedAt.IsZero() {
		return fmt.Errorf("status log for candidate %d: %w", id, errNoTimestamp)
	}
	at := entry.CreatedAt

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	logger.DatabaseCall("UPDATE", "candidates", "candidateID", id)
	result, err := tx.ExecContext(ctx,
		`UPDATE candidates SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4 AND deleted_at IS NULL`,
		next, at, id, expected)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("UPDATE", rows, nil)
	if rows == 0 {
		logger.ExitMethodWithError("candidateRepository.UpdateStatus", domain.ErrConcurrentModification, "candidateID", id)
		return &domain.TransitionError{Kind: domain.ErrKindConcurrentModification, From: expected, To: next}
	}

	entry.CandidateID = id
	entry.FromStatus = expected
	entry.ToStatus = next
	err = tx.QueryRowContext(ctx,
		`INSERT INTO candidate_status_logs (candidate_id, from_status, to_status, actor, justification, is_override, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		entry.CandidateID, entry.FromStatus, entry.ToStatus, entry.Actor, entry.Justification, entry.IsOverride, entry.CreatedAt).Scan(&entry.ID)
	if err != nil {
		logger.ExitMethodWithError("candidateRepository.UpdateStatus", err, "reason", "status log insert failed")
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.ExitMethod("candidateRepository.UpdateStatus", "candidateID", id, "logID", entry.ID)
	return nil
}

func (r *candidateRepository) ListStatusLogs(ctx context.Context, candidateID int64) ([]domain.StatusLog, error) {
	query := `SELECT id, candidate_id, from_status, to_status, actor, justification, is_override, created_at
	          FROM candidate_status_logs WHERE candidate_id = $1 ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.StatusLog
	for rows.Next() {
		var l domain.StatusLog
		if err := rows.Scan(&l.ID, &l.CandidateID, &l.FromStatus, &l.ToStatus, &l.Actor, &l.Justification, &l.IsOverride, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
