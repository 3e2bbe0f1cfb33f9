package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/logger"
	"btevta-wasl-backend/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	logger.EnterMethod("notificationRepository.Create", "candidateID", n.CandidateID, "kind", n.Kind)

	attrs, err := json.Marshal(n.Attributes)
	if err != nil {
		logger.ExitMethodWithError("notificationRepository.Create", err, "reason", "failed to marshal attributes")
		return err
	}
	if n.CreatedAt.IsZero() {
		logger.ExitMethodWithError("notificationRepository.Create", errNoTimestamp)
		return fmt.Errorf("notification %s: %w", n.EventID, errNoTimestamp)
	}

	query := `INSERT INTO notifications (event_id, kind, candidate_id, title, message, is_read, attributes, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	logger.DatabaseCall("INSERT", "notifications", "candidateID", n.CandidateID)
	err = r.db.QueryRowContext(ctx, query, n.EventID, n.Kind, n.CandidateID, n.Title, n.Message, n.IsRead, string(attrs), n.CreatedAt).Scan(&n.ID)
	logger.DatabaseResult("INSERT", 1, err, "notificationID", n.ID)

	if err != nil {
		logger.ExitMethodWithError("notificationRepository.Create", err, "candidateID", n.CandidateID)
	} else {
		logger.ExitMethod("notificationRepository.Create", "notificationID", n.ID)
	}
	return err
}

func (r *notificationRepository) ListByCandidate(ctx context.Context, candidateID int64, limit, offset int32) ([]domain.Notification, int32, error) {
	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM notifications WHERE candidate_id = $1`, candidateID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, event_id, kind, candidate_id, title, message, is_read, attributes, created_at
	          FROM notifications WHERE candidate_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, candidateID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var attrs []byte
		if err := rows.Scan(&n.ID, &n.EventID, &n.Kind, &n.CandidateID, &n.Title, &n.Message, &n.IsRead, &attrs, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &n.Attributes); err != nil {
				return nil, 0, err
			}
		}
		notes = append(notes, n)
	}
	return notes, count, rows.Err()
}
