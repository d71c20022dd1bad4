package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	Port        string

	OTLPEndpoint string
	Telemetry    TelemetryConfig

	DatabaseURL       string
	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
	DBLogLevel        string
	DBSlowQuery       time.Duration
	DBAutoMigrate     bool

	Auth    AuthConfig
	SMTP    SMTPConfig
	Storage StorageConfig
	Redis   RedisConfig
	Slack   SlackConfig
	Seed    SeedConfig

	JobMetrics JobMetricsConfig
	Scheduler  SchedulerConfig

	PricingConfigPath string
	PublicAppURL      string
}

type AuthConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
	SaltRounds       int
	LoginRateLimit   int
	LoginRateWindow  time.Duration
	ResetTokenTTL    time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c SMTPConfig) Enabled() bool {
	return strings.TrimSpace(c.Host) != ""
}

type StorageConfig struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	PublicBaseURL   string
}

func (c StorageConfig) Enabled() bool {
	return strings.TrimSpace(c.Bucket) != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

type SlackConfig struct {
	WebhookURL string
}

type SeedConfig struct {
	PlatformName  string
	PlatformSlug  string
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

type JobMetricsConfig struct {
	Enabled   bool
	Exporter  string
	Endpoint  string
	AuthToken string
}

// SchedulerConfig holds cron specs in robfig/cron syntax ("@every 5m",
// "0 * * * *").
type SchedulerConfig struct {
	OverdueSpec  string
	RetrySpec    string
	RetryBatch   int
	JobTimeout   time.Duration
	LockTTL      time.Duration
	RunOnStartup bool
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	accessSecret := strings.TrimSpace(getenv("JWT_ACCESS_SECRET", ""))
	refreshSecret := strings.TrimSpace(getenv("JWT_REFRESH_SECRET", ""))
	if environment != "production" {
		if accessSecret == "" {
			accessSecret = "dev-access-secret"
		}
		if refreshSecret == "" {
			refreshSecret = "dev-refresh-secret"
		}
	} else if accessSecret == "" || refreshSecret == "" {
		log.Fatal("[config] JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required in production")
	}

	cfg := Config{
		AppName:           getenv("APP_NAME", "eventory"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       environment,
		Port:              getenv("PORT", "8080"),
		OTLPEndpoint:      getenv("OTEL_EXPORTER_OTLP_ENDPOINT", getenv("OTLP_ENDPOINT", "localhost:4317")),
		Telemetry: TelemetryConfig{
			LogLevel:      strings.ToLower(getenv("LOG_LEVEL", "info")),
			LogFormat:     strings.ToLower(getenv("LOG_FORMAT", "json")),
			OtelEnabled:   getenvBool("OTEL_ENABLED", true),
			OtelProtocol:  strings.ToLower(getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"))),
			SamplingRatio: getenvRatio("OTEL_SAMPLING_RATIO", 0.1),
		},
		DatabaseURL:       strings.TrimSpace(getenv("DATABASE_URL", "")),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "eventory"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 10),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 50),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		DBLogLevel:        getenv("DATABASE_LOG_LEVEL", "warn"),
		DBSlowQuery:       getenvDuration("DATABASE_SLOW_QUERY_THRESHOLD", 200*time.Millisecond),
		DBAutoMigrate:     getenvBool("DATABASE_AUTO_MIGRATE", false),
		Auth: AuthConfig{
			AccessSecret:     accessSecret,
			RefreshSecret:    refreshSecret,
			AccessExpiresIn:  getenvDuration("JWT_ACCESS_EXPIRES_IN", 15*time.Minute),
			RefreshExpiresIn: getenvDuration("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour),
			SaltRounds:       getenvInt("SALT_ROUNDS", 10),
			LoginRateLimit:   getenvInt("LOGIN_RATE_LIMIT", 10),
			LoginRateWindow:  getenvDuration("LOGIN_RATE_WINDOW", time.Minute),
			ResetTokenTTL:    getenvDuration("PASSWORD_RESET_TTL", 30*time.Minute),
		},
		SMTP: SMTPConfig{
			Host:     strings.TrimSpace(getenv("SMTP_HOST", "")),
			Port:     getenvInt("SMTP_PORT", 587),
			Username: getenv("SMTP_USER", ""),
			Password: getenv("SMTP_PASS", ""),
			From:     getenv("SMTP_FROM", "no-reply@eventory.local"),
		},
		Storage: StorageConfig{
			Region:          getenv("AWS_REGION", "us-east-1"),
			Bucket:          strings.TrimSpace(getenv("S3_BUCKET", "")),
			Endpoint:        strings.TrimSpace(getenv("S3_ENDPOINT", "")),
			AccessKeyID:     getenv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getenv("AWS_SECRET_ACCESS_KEY", ""),
			UsePathStyle:    getenvBool("S3_USE_PATH_STYLE", false),
			PublicBaseURL:   strings.TrimRight(getenv("S3_PUBLIC_BASE_URL", ""), "/"),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Slack: SlackConfig{
			WebhookURL: strings.TrimSpace(getenv("SLACK_WEBHOOK_URL", "")),
		},
		Seed: SeedConfig{
			PlatformName:  getenv("SEED_PLATFORM_NAME", "Default Platform"),
			PlatformSlug:  getenv("SEED_PLATFORM_SLUG", "default"),
			AdminEmail:    strings.ToLower(strings.TrimSpace(getenv("SEED_ADMIN_EMAIL", "admin@eventory.local"))),
			AdminPassword: getenv("SEED_ADMIN_PASSWORD", ""),
			AdminName:     getenv("SEED_ADMIN_NAME", "Platform Admin"),
		},
		JobMetrics: JobMetricsConfig{
			Enabled:   getenvBool("METRICS_PUSH_ENABLED", false),
			Exporter:  strings.ToLower(getenv("METRICS_PUSH_EXPORTER", "")),
			Endpoint:  strings.TrimSpace(getenv("METRICS_PUSH_ENDPOINT", "")),
			AuthToken: strings.TrimSpace(getenv("METRICS_PUSH_AUTH_TOKEN", "")),
		},
		Scheduler: SchedulerConfig{
			OverdueSpec:  getenv("SCHEDULER_OVERDUE_SPEC", "@hourly"),
			RetrySpec:    getenv("SCHEDULER_RETRY_SPEC", "@every 5m"),
			RetryBatch:   getenvInt("SCHEDULER_RETRY_BATCH", 50),
			JobTimeout:   getenvDuration("SCHEDULER_JOB_TIMEOUT", 2*time.Minute),
			LockTTL:      getenvDuration("SCHEDULER_LOCK_TTL", 5*time.Minute),
			RunOnStartup: getenvBool("SCHEDULER_RUN_ON_STARTUP", true),
		},
		PricingConfigPath: strings.TrimSpace(getenv("PRICING_CONFIG_PATH", "")),
		PublicAppURL:      strings.TrimRight(getenv("PUBLIC_APP_URL", "http://localhost:3000"), "/"),
	}

	return cfg
}

// TelemetryConfig feeds the observability package.
type TelemetryConfig struct {
	LogLevel      string
	LogFormat     string
	OtelEnabled   bool
	OtelProtocol  string
	SamplingRatio float64
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

// getenvRatio reads a value in [0, 1].
func getenvRatio(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 || parsed > 1 {
		return def
	}
	return parsed
}

// getenvDuration accepts Go durations ("15m") and the shorthand day form ("7d").
func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	if strings.HasSuffix(value, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(value, "d"))
		if err != nil || days <= 0 {
			return def
		}
		return time.Duration(days) * 24 * time.Hour
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
