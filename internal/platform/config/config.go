package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr                 string
	DatabaseURL          string
	JWTSecret            string
	TriggerKeyHash       string
	DataEncryptionKey    string
	Environment          string
	LogLevel             string
	LogFormat            string
	RunMigrations        bool
	RunSeed              bool
	MaxBodyBytes         int64
	RateLimitPerMinute   int
	CORSOrigins          []string
	DBMaxConns           int
	ArchiveDir           string
	ArchivePattern       string
	ImportInterval       time.Duration
	ImportBatchSize      int
	ImportMaxFiles       int
	JobTimeout           time.Duration
	OvertimeEventCode    string
	AbsenceEventCode     string
	OvertimeMultiplier   float64
	AbsenceMultiplier    float64
	MonthlyHoursBasis    float64
	PayrollSyncWorkers   int
	RetentionAuditDays   int
	RetentionJobRunDays  int
	RetentionRawLineDays int
	EmailFrom            string
	EmailEnabled         bool
	AlertEmailTo         []string
	SMTPHost             string
	SMTPPort             int
	SMTPUser             string
	SMTPPassword         string
	SMTPUseTLS           bool
}

func Load() Config {
	return Config{
		Addr:                 getEnv("APP_ADDR", ":8080"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		TriggerKeyHash:       getEnv("TRIGGER_KEY_HASH", ""),
		DataEncryptionKey:    getEnv("DATA_ENCRYPTION_KEY", ""),
		Environment:          getEnv("APP_ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "json"),
		RunMigrations:        getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:              getEnvBool("RUN_SEED", true),
		MaxBodyBytes:         int64(getEnvInt("MAX_BODY_BYTES", 16<<20)),
		RateLimitPerMinute:   getEnvInt("RATE_LIMIT_PER_MINUTE", 300),
		CORSOrigins:          getEnvList("CORS_ALLOWED_ORIGINS"),
		DBMaxConns:           getEnvInt("DB_MAX_CONNS", 10),
		ArchiveDir:           getEnv("AFD_ARCHIVE_DIR", ""),
		ArchivePattern:       getEnv("AFD_FILE_PATTERN", "*.txt"),
		ImportInterval:       getEnvDuration("IMPORT_INTERVAL", 0),
		ImportBatchSize:      getEnvInt("IMPORT_BATCH_SIZE", 500),
		ImportMaxFiles:       getEnvInt("IMPORT_MAX_FILES", 0),
		JobTimeout:           getEnvDuration("JOB_TIMEOUT", 10*time.Minute),
		OvertimeEventCode:    getEnv("OVERTIME_EVENT_CODE", "HE50"),
		AbsenceEventCode:     getEnv("ABSENCE_EVENT_CODE", "FALTAS"),
		OvertimeMultiplier:   getEnvFloat("OVERTIME_MULTIPLIER", 1.5),
		AbsenceMultiplier:    getEnvFloat("ABSENCE_MULTIPLIER", 1.0),
		MonthlyHoursBasis:    getEnvFloat("MONTHLY_HOURS_BASIS", 220),
		PayrollSyncWorkers:   getEnvInt("PAYROLL_SYNC_WORKERS", 4),
		RetentionAuditDays:   getEnvInt("RETENTION_AUDIT_DAYS", 0),
		RetentionJobRunDays:  getEnvInt("RETENTION_JOB_RUN_DAYS", 0),
		RetentionRawLineDays: getEnvInt("RETENTION_RAW_LINE_DAYS", 0),
		EmailFrom:            getEnv("EMAIL_FROM", "no-reply@example.com"),
		EmailEnabled:         getEnvBool("EMAIL_ENABLED", false),
		AlertEmailTo:         getEnvList("ALERT_EMAIL_TO"),
		SMTPHost:             getEnv("SMTP_HOST", ""),
		SMTPPort:             getEnvInt("SMTP_PORT", 587),
		SMTPUser:             getEnv("SMTP_USER", ""),
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:           getEnvBool("SMTP_USE_TLS", true),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.ImportBatchSize <= 0 {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be positive")
	}
	if c.ImportMaxFiles < 0 {
		return fmt.Errorf("IMPORT_MAX_FILES must not be negative")
	}
	if c.ImportInterval > 0 && strings.TrimSpace(c.ArchiveDir) == "" {
		return fmt.Errorf("AFD_ARCHIVE_DIR must be set when IMPORT_INTERVAL is enabled")
	}
	if strings.TrimSpace(c.OvertimeEventCode) == "" || strings.TrimSpace(c.AbsenceEventCode) == "" {
		return fmt.Errorf("OVERTIME_EVENT_CODE and ABSENCE_EVENT_CODE are required")
	}
	if c.OvertimeEventCode == c.AbsenceEventCode {
		return fmt.Errorf("OVERTIME_EVENT_CODE and ABSENCE_EVENT_CODE must differ")
	}
	if c.MonthlyHoursBasis <= 0 {
		return fmt.Errorf("MONTHLY_HOURS_BASIS must be positive")
	}
	if c.OvertimeMultiplier < 0 || c.AbsenceMultiplier < 0 {
		return fmt.Errorf("OVERTIME_MULTIPLIER and ABSENCE_MULTIPLIER must not be negative")
	}
	if c.PayrollSyncWorkers <= 0 {
		return fmt.Errorf("PAYROLL_SYNC_WORKERS must be positive")
	}
	if c.RetentionAuditDays < 0 || c.RetentionJobRunDays < 0 || c.RetentionRawLineDays < 0 {
		return fmt.Errorf("RETENTION_*_DAYS must not be negative")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	return nil
}
