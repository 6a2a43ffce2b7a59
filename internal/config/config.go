package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Remote    RemoteConfig
	Mail      MailConfig
	Ingest    IngestConfig
	Reporting ReportingConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// DatabaseConfig locates the embedded local store.
type DatabaseConfig struct {
	Path string
}

// RemoteConfig addresses the hosted table store. Both fields empty means the
// remote backend is simply not configured, which is not an error.
type RemoteConfig struct {
	URL string
	Key string
}

// MailConfig contains IMAP credentials for the report mailbox. Credentials
// are checked by the ingestion run, not at startup, so a dashboard-only
// deployment works without them.
type MailConfig struct {
	Host     string
	Address  string
	Password string
}

// IngestConfig controls what the mailbox worker downloads and where.
type IngestConfig struct {
	Folder       string
	LookbackDays int
	Keyword      string
	DestDir      string
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Path: getenvWithDefault("SQLITE_PATH", "relatorios.db"),
		},
		Remote: RemoteConfig{
			URL: os.Getenv("SUPABASE_URL"),
			Key: os.Getenv("SUPABASE_ANON_KEY"),
		},
		Mail: MailConfig{
			Host:     getenvWithDefault("IMAP_HOST", "imap.gmail.com:993"),
			Address:  os.Getenv("GMAIL_EMAIL"),
			Password: os.Getenv("GMAIL_APP_PASSWORD"),
		},
		Ingest: IngestConfig{
			Folder:       getenvWithDefault("MAIL_FOLDER", "INBOX"),
			LookbackDays: getenvIntWithDefault("MAIL_LOOKBACK_DAYS", 7),
			Keyword:      getenvWithDefault("REPORT_KEYWORD", "RDS"),
			DestDir:      getenvWithDefault("DATA_DIR", "data"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("INGEST_CRON_SCHEDULE", "0 7 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "America/Sao_Paulo"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Database.Path == "" {
		return errors.New("SQLITE_PATH must not be empty")
	}

	if (c.Remote.URL == "") != (c.Remote.Key == "") {
		return errors.New("SUPABASE_URL and SUPABASE_ANON_KEY must be set together")
	}

	if c.Ingest.DestDir == "" {
		return errors.New("DATA_DIR must not be empty")
	}

	if c.Ingest.LookbackDays <= 0 {
		return errors.New("MAIL_LOOKBACK_DAYS must be positive")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("INGEST_CRON_SCHEDULE must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvIntWithDefault(key string, fallback int) int {
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
