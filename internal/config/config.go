package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/escalation"
	"btevta-wasl-backend/internal/lifecycle"
	"btevta-wasl-backend/internal/sla"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	Firebase  FirebaseConfig  `yaml:"firebase"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Notifier  NotifierConfig  `yaml:"notifier"`

	Training      TrainingConfig      `yaml:"training"`
	Assessment    AssessmentConfig    `yaml:"assessment"`
	Screening     ScreeningConfig     `yaml:"screening"`
	Complaint     ComplaintConfig     `yaml:"complaint"`
	Departure     DepartureConfig     `yaml:"departure"`
	PostDeparture PostDepartureConfig `yaml:"post_departure"`
	Remittance    RemittanceConfig    `yaml:"remittance"`
	Documents     DocumentsConfig     `yaml:"documents"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GRPCConfig contains gRPC server settings
type GRPCConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// RedisConfig contains the event channel settings. An empty address disables publishing.
type RedisConfig struct {
	Addr          string `yaml:"addr"`
	Password      string `yaml:"password"`
	DB            int    `yaml:"db"`
	ChannelPrefix string `yaml:"channel_prefix"`
}

// SendGridConfig contains email delivery settings. An empty API key disables email.
type SendGridConfig struct {
	APIKey     string   `yaml:"api_key"`
	FromEmail  string   `yaml:"from_email"`
	FromName   string   `yaml:"from_name"`
	Recipients []string `yaml:"recipients"`
}

// FirebaseConfig contains push delivery settings. An empty credentials file disables push.
type FirebaseConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	ProjectID       string `yaml:"project_id"`
	TopicPrefix     string `yaml:"topic_prefix"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings (seconds precision, UTC)
type SchedulerConfig struct {
	EvaluateComplaintSLAs          string `yaml:"evaluate_complaint_slas"`
	CheckPostDepartureCompliance   string `yaml:"check_post_departure_compliance"`
	SendSalaryVerificationReminder string `yaml:"send_salary_verification_reminders"`
	CheckRemittanceAlerts          string `yaml:"check_remittance_alerts"`
	SendDocumentExpiryWarnings     string `yaml:"send_document_expiry_warnings"`
	SendScreeningReminders         string `yaml:"send_screening_reminders"`
}

// NotifierConfig sizes the asynchronous dispatch queue
type NotifierConfig struct {
	QueueSize      int `yaml:"queue_size"`
	Workers        int `yaml:"workers"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

type TrainingConfig struct {
	MinimumAttendancePercentage int `yaml:"minimum_attendance_percentage"`
}

type AssessmentConfig struct {
	PassingPercentage float64 `yaml:"passing_percentage"`
}

type ScreeningConfig struct {
	AutoRejectOnFailure *bool `yaml:"auto_reject_on_failure"`
	ReminderIntervalHrs int   `yaml:"reminder_interval_hours"`
}

type ComplaintConfig struct {
	SLADays                map[string]int `yaml:"sla_days"`
	WarningDays            int            `yaml:"warning_days"`
	AutoEscalateAfterHours int            `yaml:"auto_escalate_after_hours"`
	MaxEscalationLevel     int            `yaml:"max_escalation_level"`
	EscalationRoles        []string       `yaml:"escalation_roles"`
}

type DepartureConfig struct {
	TicketDetailsRequired *bool `yaml:"ticket_details_required"`
}

type PostDepartureConfig struct {
	ComplianceWindowDays int                     `yaml:"compliance_window_days"`
	Weights              ComplianceWeightsConfig `yaml:"weights"`
	SalaryReminderDays   SalaryReminderConfig    `yaml:"salary_reminder_days"`
}

type ComplianceWeightsConfig struct {
	Salary        int `yaml:"salary"`
	Iqama         int `yaml:"iqama"`
	Absher        int `yaml:"absher"`
	Qiwa          int `yaml:"qiwa"`
	Accommodation int `yaml:"accommodation"`
}

type SalaryReminderConfig struct {
	Reminder int `yaml:"reminder"`
	Urgent   int `yaml:"urgent"`
	Critical int `yaml:"critical"`
}

type RemittanceConfig struct {
	AlertThresholds RemittanceThresholdsConfig `yaml:"alert_thresholds"`
}

type RemittanceThresholdsConfig struct {
	FirstRemittanceDays     int     `yaml:"first_remittance_days"`
	MissingRemittanceDays   int     `yaml:"missing_remittance_days"`
	ProofGraceDays          int     `yaml:"proof_grace_days"`
	MinExpectedRemittances  int     `yaml:"min_expected_remittances"`
	LowFrequencyMonths      int     `yaml:"low_frequency_months"`
	UnusualAmountMultiplier float64 `yaml:"unusual_amount_multiplier"`
	UnusualAmountMinHistory int     `yaml:"unusual_amount_min_history"`
}

type DocumentsConfig struct {
	ExpiryWarningDays int `yaml:"expiry_warning_days"`
}

// Load reads configuration from a YAML file
// LoadDotEnv loads a .env file into the process environment when one exists. Variables
// already set take precedence. It reports whether a file was loaded.
func LoadDotEnv(paths ...string) bool {
	return godotenv.Load(paths...) == nil
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and validates the result
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Servers
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("GRPC_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.GRPC.Port)
	}

	// Delivery channels
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}
	if val := os.Getenv("SENDGRID_RECIPIENTS"); val != "" {
		c.SendGrid.Recipients = strings.Split(val, ",")
	}
	if val := os.Getenv("FIREBASE_CREDENTIALS_FILE"); val != "" {
		c.Firebase.CredentialsFile = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Domain thresholds
	if val := os.Getenv("TRAINING_MIN_ATTENDANCE"); val != "" {
		fmt.Sscanf(val, "%d", &c.Training.MinimumAttendancePercentage)
	}
	if val := os.Getenv("ASSESSMENT_PASSING_PERCENTAGE"); val != "" {
		fmt.Sscanf(val, "%g", &c.Assessment.PassingPercentage)
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.GRPC.Port == 0 {
		c.GRPC.Port = 50051
	}
	if c.GRPC.Port < 0 || c.GRPC.Port > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.GRPC.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.SendGrid.APIKey != "" && c.SendGrid.FromEmail == "" {
		return fmt.Errorf("sendgrid from_email is required when an api key is set")
	}
	if c.Redis.ChannelPrefix == "" {
		c.Redis.ChannelPrefix = "wasl.events"
	}
	if c.Firebase.TopicPrefix == "" {
		c.Firebase.TopicPrefix = "wasl"
	}

	// Notifier defaults
	if c.Notifier.QueueSize <= 0 {
		c.Notifier.QueueSize = 256
	}
	if c.Notifier.Workers <= 0 {
		c.Notifier.Workers = 4
	}
	if c.Notifier.TimeoutSeconds <= 0 {
		c.Notifier.TimeoutSeconds = 10
	}

	if err := c.validateDomain(); err != nil {
		return err
	}

	// Scheduler defaults
	if c.Scheduler.EvaluateComplaintSLAs == "" {
		c.Scheduler.EvaluateComplaintSLAs = "0 0 * * * *" // Hourly
	}
	if c.Scheduler.CheckPostDepartureCompliance == "" {
		c.Scheduler.CheckPostDepartureCompliance = "0 0 2 * * *" // 2 AM UTC
	}
	if c.Scheduler.SendSalaryVerificationReminder == "" {
		c.Scheduler.SendSalaryVerificationReminder = "0 0 3 * * *" // 3 AM UTC
	}
	if c.Scheduler.CheckRemittanceAlerts == "" {
		c.Scheduler.CheckRemittanceAlerts = "0 0 4 * * *" // 4 AM UTC
	}
	if c.Scheduler.SendDocumentExpiryWarnings == "" {
		c.Scheduler.SendDocumentExpiryWarnings = "0 0 5 * * *" // 5 AM UTC
	}
	if c.Scheduler.SendScreeningReminders == "" {
		c.Scheduler.SendScreeningReminders = "0 0 9 * * *" // Daily at 9 AM UTC
	}

	return nil
}

func (c *Config) validateDomain() error {
	if c.Training.MinimumAttendancePercentage == 0 {
		c.Training.MinimumAttendancePercentage = 80
	}
	if p := c.Training.MinimumAttendancePercentage; p < 0 || p > 100 {
		return fmt.Errorf("training.minimum_attendance_percentage must be 0-100, got %d", p)
	}
	if c.Assessment.PassingPercentage == 0 {
		c.Assessment.PassingPercentage = 60
	}
	if p := c.Assessment.PassingPercentage; p < 0 || p > 100 {
		return fmt.Errorf("assessment.passing_percentage must be 0-100, got %g", p)
	}

	if c.Screening.AutoRejectOnFailure == nil {
		on := true
		c.Screening.AutoRejectOnFailure = &on
	}
	if c.Screening.ReminderIntervalHrs <= 0 {
		c.Screening.ReminderIntervalHrs = 24
	}
	if c.Departure.TicketDetailsRequired == nil {
		on := true
		c.Departure.TicketDetailsRequired = &on
	}

	defaults := sla.DefaultPolicy()
	if c.Complaint.SLADays == nil {
		c.Complaint.SLADays = map[string]int{}
	}
	for priority, days := range defaults.ComplaintSLADays {
		if _, ok := c.Complaint.SLADays[string(priority)]; !ok {
			c.Complaint.SLADays[string(priority)] = days
		}
	}
	for priority, days := range c.Complaint.SLADays {
		switch domain.ComplaintPriority(priority) {
		case domain.ComplaintPriorityLow, domain.ComplaintPriorityNormal,
			domain.ComplaintPriorityHigh, domain.ComplaintPriorityUrgent:
		default:
			return fmt.Errorf("complaint.sla_days: unknown priority %q", priority)
		}
		if days <= 0 {
			return fmt.Errorf("complaint.sla_days.%s must be positive, got %d", priority, days)
		}
	}
	if c.Complaint.WarningDays <= 0 {
		c.Complaint.WarningDays = defaults.ComplaintWarningDays
	}
	if c.Complaint.AutoEscalateAfterHours <= 0 {
		c.Complaint.AutoEscalateAfterHours = 48
	}
	if c.Complaint.MaxEscalationLevel <= 0 {
		c.Complaint.MaxEscalationLevel = domain.MaxEscalationLevel
	}
	if c.Complaint.MaxEscalationLevel > domain.MaxEscalationLevel {
		return fmt.Errorf("complaint.max_escalation_level cannot exceed %d", domain.MaxEscalationLevel)
	}
	if len(c.Complaint.EscalationRoles) == 0 {
		c.Complaint.EscalationRoles = escalation.DefaultPolicy().LevelRoles
	}

	pd := &c.PostDeparture
	if pd.ComplianceWindowDays <= 0 {
		pd.ComplianceWindowDays = defaults.ComplianceWindowDays
	}
	w := pd.Weights
	if w.Salary+w.Iqama+w.Absher+w.Qiwa+w.Accommodation == 0 {
		dw := defaults.ComplianceWeights
		pd.Weights = ComplianceWeightsConfig{Salary: dw.Salary, Iqama: dw.Iqama, Absher: dw.Absher, Qiwa: dw.Qiwa, Accommodation: dw.Accommodation}
	}
	if w := pd.Weights; w.Salary < 0 || w.Iqama < 0 || w.Absher < 0 || w.Qiwa < 0 || w.Accommodation < 0 {
		return fmt.Errorf("post_departure.weights must not be negative")
	}
	r := &pd.SalaryReminderDays
	if r.Reminder == 0 && r.Urgent == 0 && r.Critical == 0 {
		d := defaults.SalaryReminder
		r.Reminder, r.Urgent, r.Critical = d.Reminder, d.Urgent, d.Critical
	}
	if !(r.Reminder >= r.Urgent && r.Urgent >= r.Critical && r.Critical > 0) {
		return fmt.Errorf("post_departure.salary_reminder_days must satisfy reminder >= urgent >= critical > 0")
	}

	rt := &c.Remittance.AlertThresholds
	dr := defaults.Remittance
	if rt.FirstRemittanceDays <= 0 {
		rt.FirstRemittanceDays = dr.FirstRemittanceDays
	}
	if rt.MissingRemittanceDays <= 0 {
		rt.MissingRemittanceDays = dr.MissingRemittanceDays
	}
	if rt.ProofGraceDays <= 0 {
		rt.ProofGraceDays = dr.ProofGraceDays
	}
	if rt.MinExpectedRemittances <= 0 {
		rt.MinExpectedRemittances = dr.MinExpectedRemittances
	}
	if rt.LowFrequencyMonths <= 0 {
		rt.LowFrequencyMonths = dr.LowFrequencyMonths
	}
	if rt.UnusualAmountMultiplier <= 0 {
		rt.UnusualAmountMultiplier = dr.UnusualAmountMultiplier.InexactFloat64()
	}
	if rt.UnusualAmountMultiplier <= 1 {
		return fmt.Errorf("remittance.alert_thresholds.unusual_amount_multiplier must be greater than 1")
	}
	if rt.UnusualAmountMinHistory <= 0 {
		rt.UnusualAmountMinHistory = dr.UnusualAmountMinHistory
	}

	if c.Documents.ExpiryWarningDays <= 0 {
		c.Documents.ExpiryWarningDays = defaults.DocumentExpiryWarningDays
	}
	return nil
}

// LifecycleRules converts the gate thresholds for the transition validator
func (c *Config) LifecycleRules() lifecycle.Rules {
	return lifecycle.Rules{
		MinimumAttendancePercentage: c.Training.MinimumAttendancePercentage,
		PassingPercentage:           c.Assessment.PassingPercentage,
		TicketDetailsRequired:       c.Departure.TicketDetailsRequired == nil || *c.Departure.TicketDetailsRequired,
	}
}

// SLAPolicy converts the timer settings for the SLA engine
func (c *Config) SLAPolicy() sla.Policy {
	days := make(map[domain.ComplaintPriority]int, len(c.Complaint.SLADays))
	for k, v := range c.Complaint.SLADays {
		days[domain.ComplaintPriority(k)] = v
	}
	w := c.PostDeparture.Weights
	r := c.PostDeparture.SalaryReminderDays
	rt := c.Remittance.AlertThresholds
	return sla.Policy{
		ComplaintSLADays:     days,
		ComplaintWarningDays: c.Complaint.WarningDays,
		ComplianceWindowDays: c.PostDeparture.ComplianceWindowDays,
		ComplianceWeights: sla.ComplianceWeights{
			Salary:        w.Salary,
			Iqama:         w.Iqama,
			Absher:        w.Absher,
			Qiwa:          w.Qiwa,
			Accommodation: w.Accommodation,
		},
		SalaryReminder:            sla.ReminderThresholds{Reminder: r.Reminder, Urgent: r.Urgent, Critical: r.Critical},
		DocumentExpiryWarningDays: c.Documents.ExpiryWarningDays,
		ScreeningRetryInterval:    time.Duration(c.Screening.ReminderIntervalHrs) * time.Hour,
		Remittance: sla.RemittanceThresholds{
			FirstRemittanceDays:     rt.FirstRemittanceDays,
			MissingRemittanceDays:   rt.MissingRemittanceDays,
			ProofGraceDays:          rt.ProofGraceDays,
			MinExpectedRemittances:  rt.MinExpectedRemittances,
			LowFrequencyMonths:      rt.LowFrequencyMonths,
			UnusualAmountMultiplier: decimal.NewFromFloat(rt.UnusualAmountMultiplier),
			UnusualAmountMinHistory: rt.UnusualAmountMinHistory,
		},
	}
}

// EscalationPolicy converts the complaint escalation settings
func (c *Config) EscalationPolicy() escalation.Policy {
	return escalation.Policy{
		AutoEscalateAfter: time.Duration(c.Complaint.AutoEscalateAfterHours) * time.Hour,
		MaxLevel:          c.Complaint.MaxEscalationLevel,
		LevelRoles:        c.Complaint.EscalationRoles,
	}
}

// AutoRejectOnScreeningFailure reports whether a failed screening moves the candidate to rejected
func (c *Config) AutoRejectOnScreeningFailure() bool {
	return c.Screening.AutoRejectOnFailure == nil || *c.Screening.AutoRejectOnFailure
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetGRPCAddress returns the gRPC server address
func (c *Config) GetGRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.GRPC.Host, c.GRPC.Port)
}
