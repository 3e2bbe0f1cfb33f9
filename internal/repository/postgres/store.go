package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"btevta-wasl-backend/internal/repository"

	_ "github.com/lib/pq"
)

// errNoTimestamp is returned when a write is missing the caller-supplied time. Repositories
// never read the wall clock; timestamps come from the service clock.
var errNoTimestamp = errors.New("timestamp is required")

// Store aggregates every repository over one connection pool.
type Store struct {
	db *sql.DB

	Candidates    repository.CandidateRepository
	Documents     repository.DocumentRepository
	Screenings    repository.ScreeningRepository
	Training      repository.TrainingRepository
	Visas         repository.VisaRepository
	Departures    repository.DepartureRepository
	Complaints    repository.ComplaintRepository
	Remittances   repository.RemittanceRepository
	Notifications repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:            db,
		Candidates:    NewCandidateRepository(db),
		Documents:     NewDocumentRepository(db),
		Screenings:    NewScreeningRepository(db),
		Training:      NewTrainingRepository(db),
		Visas:         NewVisaRepository(db),
		Departures:    NewDepartureRepository(db),
		Complaints:    NewComplaintRepository(db),
		Remittances:   NewRemittanceRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Ping reports database health.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
