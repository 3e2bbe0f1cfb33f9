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

const departureColumns = `id, candidate_id, departure_date, ptn_status, protector_status, ticket_number, flight_number,
	salary_confirmed, first_salary_date, iqama_issued, absher_registered, qiwa_activated, accommodation_verified,
	compliance_status, compliance_percentage, compliance_checked_at, salary_reminder_level, salary_reminded_at,
	created_at, updated_at`

type departureRepository struct {
	db *sql.DB
}

func NewDepartureRepository(db *sql.DB) repository.DepartureRepository {
	return &departureRepository{db: db}
}

func scanDeparture(s interface{ Scan(...any) error }, d *domain.Departure) error {
	return s.Scan(&d.ID, &d.CandidateID, &d.DepartureDate, &d.PTNStatus, &d.ProtectorStatus, &d.TicketNumber, &d.FlightNumber,
		&d.SalaryConfirmed, &d.FirstSalaryDate, &d.IqamaIssued, &d.AbsherRegistered, &d.QiwaActivated, &d.AccommodationVerified,
		&d.ComplianceStatus, &d.CompliancePercentage, &d.ComplianceCheckedAt, &d.SalaryReminderLevel, &d.SalaryRemindedAt,
		&d.CreatedAt, &d.UpdatedAt)
}

func (r *departureRepository) getOne(ctx context.Context, where string, arg int64) (*domain.Departure, error) {
	d := &domain.Departure{}
	err := scanDeparture(r.db.QueryRowContext(ctx, `SELECT `+departureColumns+` FROM departures WHERE `+where, arg), d)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("departure (%s %d): %w", where, arg, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *departureRepository) GetByID(ctx context.Context, id int64) (*domain.Departure, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *departureRepository) GetByCandidate(ctx context.Context, candidateID int64) (*domain.Departure, error) {
	return r.getOne(ctx, "candidate_id = $1", candidateID)
}

func (r *departureRepository) ListDeparted(ctx context.Context) ([]domain.Departure, error) {
	query := `SELECT ` + departureColumns + ` FROM departures
	          WHERE departure_date IS NOT NULL
	            AND candidate_id IN (SELECT id FROM candidates WHERE status = 'departed' AND deleted_at IS NULL)
	          ORDER BY departure_date`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Departure
	for rows.Next() {
		var d domain.Departure
		if err := scanDeparture(rows, &d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateCompliance records a classification. It only applies while the stored status is
// still expected, so the transition into non_compliant is observed by one sweep.
func (r *departureRepository) UpdateCompliance(ctx context.Context, id int64, expected, status domain.ComplianceStatus, percentage int, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE departures SET compliance_status = $1, compliance_percentage = $2, compliance_checked_at = $3, updated_at = $3
		 WHERE id = $4 AND compliance_status = $5`,
		status, percentage, at, id, expected)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("departure %d compliance changed: %w", id, domain.ErrConcurrentModification)
	}
	return nil
}

// UpdateSalaryReminder only ever raises the stored level, from expected to next.
func (r *departureRepository) UpdateSalaryReminder(ctx context.Context, id int64, expected, next domain.ReminderLevel, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE departures SET salary_reminder_level = $1, salary_reminded_at = $2, updated_at = $2
		 WHERE id = $3 AND salary_reminder_level = $4 AND $1 > salary_reminder_level`,
		int(next), at, id, int(expected))
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("departure %d reminder level changed: %w", id, domain.ErrConcurrentModification)
	}
	return nil
}
