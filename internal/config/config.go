package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Uploads  UploadConfig
	Mail     MailConfig
	Tickets  TicketConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	BodyLimitBytes        int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr            string
	Password        string
	DB              int
	StatsTTLSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level         string
	File          string
	FileMaxSizeMB int
	FileMaxBackup int
	FileMaxAgeDay int
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// StorageConfig selects and configures the blob store for images.
type StorageConfig struct {
	Driver       string
	TicketFolder string
	TempFolder   string
	LocalDir     string
	LocalBaseURL string
	S3           S3Config
}

// S3Config holds S3-compatible object storage values.
type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
}

// UploadConfig bounds image uploads.
type UploadConfig struct {
	MaxFileBytes int64
	MaxFiles     int
}

// MailConfig holds SMTP settings for notifications. An empty host keeps mail
// in log-only mode.
type MailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPSSL      bool
	From         string
	QueueSize    int
}

// TicketConfig tunes ticket creation.
type TicketConfig struct {
	CodeAttempts int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "3001"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			BodyLimitBytes:        getEnvAsInt("HTTP_BODY_LIMIT_BYTES", 60*1024*1024),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:            os.Getenv("REDIS_ADDR"),
			Password:        os.Getenv("REDIS_PASSWORD"),
			DB:              redisDB,
			StatsTTLSeconds: getEnvAsInt("REDIS_STATS_TTL_SECONDS", 30),
		},
		Logger: LoggerConfig{
			Level:         getEnv("LOG_LEVEL", "info"),
			File:          os.Getenv("LOG_FILE"),
			FileMaxSizeMB: getEnvAsInt("LOG_FILE_MAX_SIZE_MB", 100),
			FileMaxBackup: getEnvAsInt("LOG_FILE_MAX_BACKUPS", 5),
			FileMaxAgeDay: getEnvAsInt("LOG_FILE_MAX_AGE_DAYS", 28),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Storage: StorageConfig{
			Driver:       strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
			TicketFolder: getEnv("STORAGE_TICKET_FOLDER", "resolvet/tickets"),
			TempFolder:   getEnv("STORAGE_TEMP_FOLDER", "resolvet/tmp"),
			LocalDir:     getEnv("STORAGE_LOCAL_DIR", "uploads"),
			LocalBaseURL: getEnv("STORAGE_LOCAL_BASE_URL", "http://localhost:3001/uploads"),
			S3: S3Config{
				Endpoint:        os.Getenv("S3_ENDPOINT"),
				Region:          getEnv("S3_REGION", "us-east-1"),
				Bucket:          os.Getenv("S3_BUCKET"),
				AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
				SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
				PublicBaseURL:   os.Getenv("S3_PUBLIC_BASE_URL"),
			},
		},
		Uploads: UploadConfig{
			MaxFileBytes: int64(getEnvAsInt("UPLOAD_MAX_FILE_BYTES", 5*1024*1024)),
			MaxFiles:     getEnvAsInt("UPLOAD_MAX_FILES", 10),
		},
		Mail: MailConfig{
			SMTPHost:     os.Getenv("SMTP_HOST"),
			SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
			SMTPUser:     os.Getenv("SMTP_USER"),
			SMTPPassword: os.Getenv("SMTP_PASS"),
			SMTPSSL:      getEnvAsBool("SMTP_SECURE", false),
			From:         getEnv("SMTP_FROM", "Resolvet <no-reply@resolveit.com>"),
			QueueSize:    getEnvAsInt("MAIL_QUEUE_SIZE", 256),
		},
		Tickets: TicketConfig{
			CodeAttempts: getEnvAsInt("TICKET_CODE_ATTEMPTS", 3),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Uploads.MaxFileBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILE_BYTES must be positive")
	}
	if c.Uploads.MaxFiles <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILES must be positive")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// StatsTTL returns how long cached ticket statistics stay fresh.
func (r RedisConfig) StatsTTL() time.Duration {
	if r.StatsTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(r.StatsTTLSeconds) * time.Second
}

// AccessTokenTTL returns bearer token lifetime.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	if a.AccessTokenTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
