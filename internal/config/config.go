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
	App          AppConfig
	Storage      StorageConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	RateLimit    RateLimitConfig
	Security     SecurityConfig
	Uploads      UploadConfig
	Backup       BackupConfig
	AISync       AISyncConfig
	Integrations IntegrationsConfig
	Seed         SeedConfig
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
	StreamPingInterval    time.Duration
}

// StorageConfig selects the record store driver.
type StorageConfig struct {
	Driver   string
	DataFile string
	DBPath   string
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

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines session parameters.
type AuthConfig struct {
	SessionTTL          time.Duration
	SweepInterval       time.Duration
	CookieName          string
	CookieSecure        string
	TrustForwardedProto bool
}

// RateLimitConfig guards login and signup.
type RateLimitConfig struct {
	Window        time.Duration
	MaxAttempts   int
	PurgeInterval time.Duration
}

// SecurityConfig holds the origin allow-list.
type SecurityConfig struct {
	AllowedOrigins []string
}

// UploadConfig controls proof storage.
type UploadConfig struct {
	ProofDir string
	MaxBytes int
}

// BackupConfig controls scheduled storage backups.
type BackupConfig struct {
	Enabled   bool
	Interval  time.Duration
	Dir       string
	OnStartup bool
}

// AISyncConfig controls the periodic insight report.
type AISyncConfig struct {
	Enabled  bool
	Interval time.Duration
}

// IntegrationsConfig holds outbound provider settings. Empty values disable a provider.
type IntegrationsConfig struct {
	TelegramToken   string
	TelegramChatID  string
	SlackWebhookURL string
	WebhookURL      string
	WebhookSecret   string
	N8NWebhookURL   string
	N8NSecret       string
	N8NTimeout      time.Duration
	KafkaBrokers    []string
	KafkaTopic      string
	DispatchTimeout time.Duration
	QueueSize       int
}

// SeedConfig controls startup accounts.
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
	DemoUsers     bool
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	env := getEnv("APP_ENV", "development")
	driver := strings.ToLower(getEnv("STORAGE_DRIVER", "json"))
	switch driver {
	case "json", "sqlite", "postgres", "memory":
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q", driver)
	}

	aiInterval := getEnvAsDuration("AI_SYNC_INTERVAL", 5*time.Minute)
	if aiInterval < time.Minute {
		aiInterval = time.Minute
	}
	backupInterval := getEnvAsDuration("STORAGE_BACKUP_INTERVAL", 24*time.Hour)
	if backupInterval < time.Hour {
		backupInterval = time.Hour
	}
	n8nTimeout := getEnvAsDuration("N8N_TIMEOUT", 15*time.Second)
	if n8nTimeout < 3*time.Second {
		n8nTimeout = 3 * time.Second
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "gatelaunch"),
			Env:                   env,
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "3000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			BodyLimitBytes:        getEnvAsInt("HTTP_BODY_LIMIT_BYTES", 4*1024*1024),
			StreamPingInterval:    getEnvAsDuration("SSE_PING_INTERVAL", 30*time.Second),
		},
		Storage: StorageConfig{
			Driver:   driver,
			DataFile: getEnv("DATA_FILE", "data.json"),
			DBPath:   getEnv("DB_PATH", "storage/gatelaunch.db"),
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
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			SessionTTL:          getEnvAsDuration("SESSION_TTL", 12*time.Hour),
			SweepInterval:       getEnvAsDuration("SESSION_SWEEP_INTERVAL", time.Minute),
			CookieName:          getEnv("SESSION_COOKIE_NAME", "gl_session"),
			CookieSecure:        strings.ToLower(getEnv("COOKIE_SECURE", "auto")),
			TrustForwardedProto: getEnvAsBool("TRUST_FORWARDED_PROTO", true),
		},
		RateLimit: RateLimitConfig{
			Window:        getEnvAsDuration("LOGIN_RATE_WINDOW", 15*time.Minute),
			MaxAttempts:   getEnvAsInt("LOGIN_RATE_MAX", 30),
			PurgeInterval: getEnvAsDuration("LOGIN_RATE_PURGE_INTERVAL", 5*time.Minute),
		},
		Security: SecurityConfig{
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS"),
		},
		Uploads: UploadConfig{
			ProofDir: getEnv("PROOF_DIR", "uploads/proofs_private"),
			MaxBytes: getEnvAsInt("PROOF_MAX_BYTES", 4*1024*1024),
		},
		Backup: BackupConfig{
			Enabled:   getEnvAsBool("STORAGE_BACKUP_ENABLED", true),
			Interval:  backupInterval,
			Dir:       getEnv("STORAGE_BACKUP_DIR", "storage/backups"),
			OnStartup: getEnvAsBool("STORAGE_BACKUP_ON_STARTUP", true),
		},
		AISync: AISyncConfig{
			Enabled:  getEnvAsBool("AI_SYNC_ENABLED", true),
			Interval: aiInterval,
		},
		Integrations: IntegrationsConfig{
			TelegramToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
			TelegramChatID:  os.Getenv("TELEGRAM_CHAT_ID"),
			SlackWebhookURL: os.Getenv("SLACK_WEBHOOK_URL"),
			WebhookURL:      os.Getenv("ADMIN_WEBHOOK_URL"),
			WebhookSecret:   os.Getenv("ADMIN_WEBHOOK_SECRET"),
			N8NWebhookURL:   strings.TrimSpace(os.Getenv("N8N_WEBHOOK_URL")),
			N8NSecret:       strings.TrimSpace(os.Getenv("N8N_WEBHOOK_SECRET")),
			N8NTimeout:      n8nTimeout,
			KafkaBrokers:    getEnvAsList("KAFKA_BROKERS"),
			KafkaTopic:      getEnv("KAFKA_TOPIC", "gatelaunch.notifications"),
			DispatchTimeout: getEnvAsDuration("DISPATCH_TIMEOUT", 10*time.Second),
			QueueSize:       getEnvAsInt("DISPATCH_QUEUE_SIZE", 256),
		},
		Seed: SeedConfig{
			AdminEmail:    os.Getenv("ADMIN_BOOTSTRAP_EMAIL"),
			AdminPassword: os.Getenv("ADMIN_BOOTSTRAP_PASSWORD"),
			DemoUsers:     getEnvAsBool("DEMO_SEED_USERS", env != "production"),
		},
	}

	return cfg, nil
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

// IsProduction reports whether the service runs in production mode.
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// BackupExt returns the file extension used for snapshots of the driver.
func (s StorageConfig) BackupExt() string {
	if s.Driver == "sqlite" {
		return ".db"
	}
	return ".json"
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

// getEnvAsDuration accepts Go duration strings or a bare millisecond count.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if ms, err := strconv.Atoi(val); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	parsed, err := time.ParseDuration(val)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
