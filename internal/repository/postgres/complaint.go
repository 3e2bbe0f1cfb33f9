package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/logger"
	"btevta-wasl-backend/internal/repository"
)

const complaintColumns = `id, candidate_id, subject, status, priority, escalation_level, sla_days, sla_due_date,
	sla_breached, sla_breached_at, hours_overdue, assignee_id, escalated_to, escalated_at, created_at, updated_at, resolved_at`

type complaintRepository struct {
	db *sql.DB
}

func NewComplaintRepository(db *sql.DB) repository.ComplaintRepository {
	return &complaintRepository{db: db}
}

func scanComplaint(s interface{ Scan(...any) error }, c *domain.Complaint) error {
	return s.Scan(&c.ID, &c.CandidateID, &c.Subject, &c.Status, &c.Priority, &c.EscalationLevel, &c.SLADays, &c.SLADueDate,
		&c.SLABreached, &c.SLABreachedAt, &c.HoursOverdue, &c.AssigneeID, &c.EscalatedTo, &c.EscalatedAt, &c.CreatedAt, &c.UpdatedAt, &c.ResolvedAt)
}

func (r *complaintRepository) GetByID(ctx context.Context, id int64) (*domain.Complaint, error) {
	c := &domain.Complaint{}
	err := scanComplaint(r.db.QueryRowContext(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, id), c)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("complaint %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *complaintRepository) ListOpen(ctx context.Context) ([]domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE status NOT IN ('resolved', 'closed') ORDER BY sla_due_date, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Complaint
	for rows.Next() {
		var c domain.Complaint
		if err := scanComplaint(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *complaintRepository) MarkBreached(ctx context.Context, id int64, at time.Time, hoursOverdue int) error {
	logger.DatabaseCall("UPDATE", "complaints.sla_breached", "complaintID", id)
	result, err := r.db.ExecContext(ctx,
		`UPDATE complaints SET sla_breached = TRUE, sla_breached_at = $1, hours_overdue = $2, updated_at = $1
		 WHERE id = $3 AND sla_breached = FALSE`,
		at, hoursOverdue, id)
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
		return fmt.Errorf("complaint %d already breached: %w", id, domain.ErrConcurrentModification)
	}
	return nil
}

func (r *complaintRepository) UpdateHoursOverdue(ctx context.Context, id int64, hoursOverdue int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE complaints SET hours_overdue = $1 WHERE id = $2`, hoursOverdue, id)
	return err
}

func (r *complaintRepository) Escalate(ctx context.Context, e *domain.ComplaintEscalation) error {
	logger.EnterMethod("complaintRepository.Escalate", "complaintID", e.ComplaintID, "from", e.PreviousLevel, "to", e.NewLevel)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE complaints SET escalation_level = $1, escalated_to = $2, escalated_at = $3, updated_at = $3
		 WHERE id = $4 AND escalation_level = $5 AND $1 > escalation_level`,
		e.NewLevel, e.EscalatedTo, e.CreatedAt, e.ComplaintID, e.PreviousLevel)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		logger.ExitMethodWithError("complaintRepository.Escalate", domain.ErrConcurrentModification, "complaintID", e.ComplaintID)
		return fmt.Errorf("complaint %d escalation level changed: %w", e.ComplaintID, domain.ErrConcurrentModification)
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO complaint_escalations (complaint_id, previous_level, new_level, escalated_to, reason, is_auto, actor, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		e.ComplaintID, e.PreviousLevel, e.NewLevel, e.EscalatedTo, e.Reason, e.IsAuto, e.Actor, e.CreatedAt).Scan(&e.ID)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.ExitMethod("complaintRepository.Escalate", "escalationID", e.ID)
	return nil
}

func (r *complaintRepository) ListEscalations(ctx context.Context, complaintID int64) ([]domain.ComplaintEscalation, error) {
	query := `SELECT id, complaint_id, previous_level, new_level, escalated_to, reason, is_auto, actor, created_at
	          FROM complaint_escalations WHERE complaint_id = $1 ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ComplaintEscalation
	for rows.Next() {
		var e domain.ComplaintEscalation
		if err := rows.Scan(&e.ID, &e.ComplaintID, &e.PreviousLevel, &e.NewLevel, &e.EscalatedTo, &e.Reason, &e.IsAuto, &e.Actor, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
