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

type remittanceRepository struct {
	db *sql.DB
}

func NewRemittanceRepository(db *sql.DB) repository.RemittanceRepository {
	return &remittanceRepository{db: db}
}

func (r *remittanceRepository) ListByCandidate(ctx context.Context, candidateID int64) ([]domain.Remittance, error) {
	query := `SELECT id, candidate_id, amount, currency, sent_at, has_proof, created_at
	          FROM remittances WHERE candidate_id = $1 ORDER BY sent_at`
	rows, err := r.db.QueryContext(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Remittance
	for rows.Next() {
		var rm domain.Remittance
		if err := rows.Scan(&rm.ID, &rm.CandidateID, &rm.Amount, &rm.Currency, &rm.SentAt, &rm.HasProof, &rm.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

func (r *remittanceRepository) ListOpenAlerts(ctx context.Context, candidateID int64) ([]domain.RemittanceAlert, error) {
	query := `SELECT id, candidate_id, remittance_id, type, severity, message, is_resolved, is_read, auto_resolved, resolved_at, created_at
	          FROM remittance_alerts WHERE candidate_id = $1 AND is_resolved = FALSE ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RemittanceAlert
	for rows.Next() {
		var a domain.RemittanceAlert
		if err := rows.Scan(&a.ID, &a.CandidateID, &a.RemittanceID, &a.Type, &a.Severity, &a.Message, &a.IsResolved, &a.IsRead, &a.AutoResolved, &a.ResolvedAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateAlert inserts an alert unless an unresolved one of the same kind already exists;
// in that case alert.ID stays zero.
func (r *remittanceRepository) CreateAlert(ctx context.Context, a *domain.RemittanceAlert) error {
	if a.CreatedAt.IsZero() {
		return fmt.Errorf("remittance alert for candidate %d: %w", a.CandidateID, errNoTimestamp)
	}
	query := `INSERT INTO remittance_alerts (candidate_id, remittance_id, type, severity, message, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT DO NOTHING RETURNING id`
	err := r.db.QueryRowContext(ctx, query, a.CandidateID, a.RemittanceID, a.Type, a.Severity, a.Message, a.CreatedAt).Scan(&a.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}

func (r *remittanceRepository) AutoResolveAlert(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE remittance_alerts SET is_resolved = TRUE, auto_resolved = TRUE, resolved_at = $1 WHERE id = $2 AND is_resolved = FALSE`,
		at, id)
	return err
}
