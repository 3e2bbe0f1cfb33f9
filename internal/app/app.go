// Package app wires configuration, storage, notification channels and services into the
// object graph shared by cmd/server and cmd/cronjob.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"btevta-wasl-backend/internal/config"
	"btevta-wasl-backend/internal/jobs"
	"btevta-wasl-backend/internal/lifecycle"
	"btevta-wasl-backend/internal/logger"
	"btevta-wasl-backend/internal/notify"
	"btevta-wasl-backend/internal/repository/postgres"
	"btevta-wasl-backend/internal/service"
	"btevta-wasl-backend/internal/sla"
)

// App holds the long-lived dependencies of a process.
type App struct {
	Config     *config.Config
	DB         *sql.DB
	Store      *postgres.Store
	Clock      sla.Clock
	Dispatcher *notify.Dispatcher

	Lifecycle  service.LifecycleService
	Complaints service.ComplaintService
	Compliance service.ComplianceService
	Remittance service.RemittanceService
	Reminders  service.ReminderService

	redis *redis.Client
}

// New connects to PostgreSQL, assembles the notification channels and builds every service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
	db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, err
	}
	logger.Info("Database connection established")

	a := &App{Config: cfg, DB: db, Store: postgres.NewStore(db), Clock: sla.SystemClock{}}

	channels, err := a.channels(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	a.Dispatcher = notify.NewDispatcher(
		channels,
		cfg.Notifier.QueueSize,
		cfg.Notifier.Workers,
		time.Duration(cfg.Notifier.TimeoutSeconds)*time.Second,
	)
	a.buildServices(a.Dispatcher)
	return a, nil
}

// channels builds the fan-out notifier. The store channel is always present; the others are
// enabled by their configuration.
func (a *App) channels(ctx context.Context) (*notify.Multi, error) {
	cfg := a.Config
	multi := notify.NewMulti(notify.NewStoreNotifier(a.Store.Notifications))

	if cfg.SendGrid.APIKey != "" {
		multi.Add(notify.NewSendGridNotifier(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName, cfg.SendGrid.Recipients))
		logger.Info("Email notifications enabled", "recipients", len(cfg.SendGrid.Recipients))
	}

	if cfg.Firebase.CredentialsFile != "" {
		push, err := notify.NewPushNotifier(ctx, cfg.Firebase.CredentialsFile, cfg.Firebase.ProjectID, cfg.Firebase.TopicPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize push notifications: %w", err)
		}
		multi.Add(push)
		logger.Info("Push notifications enabled", "topic_prefix", cfg.Firebase.TopicPrefix)
	}

	if cfg.Redis.Addr != "" {
		rdb, err := notify.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		a.redis = rdb
		multi.Add(notify.NewRedisNotifier(rdb, cfg.Redis.ChannelPrefix))
		logger.Info("Redis event channel enabled", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.ChannelPrefix)
	}

	logger.Info("Notification channels ready", "channels", multi.Len())
	return multi, nil
}

func (a *App) buildServices(n notify.Notifier) {
	cfg := a.Config
	s := a.Store
	policy := cfg.SLAPolicy()

	a.Lifecycle = service.NewLifecycleService(
		s.Candidates,
		s.Documents,
		s.Screenings,
		s.Training,
		s.Visas,
		s.Departures,
		lifecycle.NewValidator(cfg.LifecycleRules()),
		n,
		a.Clock,
		cfg.AutoRejectOnScreeningFailure(),
	)
	a.Complaints = service.NewComplaintService(s.Complaints, policy, cfg.EscalationPolicy(), n, a.Clock)
	a.Compliance = service.NewComplianceService(s.Departures, policy, n, a.Clock)
	a.Remittance = service.NewRemittanceService(s.Remittances, policy, a.Clock)
	a.Reminders = service.NewReminderService(s.Documents, s.Screenings, policy, n, a.Clock)
}

// JobRunner builds the sweep runner over this app's services.
func (a *App) JobRunner() *jobs.JobRunner {
	return jobs.NewJobRunner(
		jobs.SourcesFromStore(a.Store),
		&jobs.Services{
			Complaints: a.Complaints,
			Compliance: a.Compliance,
			Remittance: a.Remittance,
			Reminders:  a.Reminders,
		},
		a.Config,
		a.Clock,
	)
}

// Close drains pending notifications and releases connections.
func (a *App) Close() {
	if a.Dispatcher != nil {
		a.Dispatcher.Close()
		delivered, failed := a.Dispatcher.Stats()
		logger.Info("Notification dispatcher drained", "delivered", delivered, "failed", failed)
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Swallowed("app.Close.redis", err)
		}
	}
	if err := a.DB.Close(); err != nil {
		logger.Swallowed("app.Close.db", err)
	}
}
