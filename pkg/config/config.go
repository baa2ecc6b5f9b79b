package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Housekeeping HousekeepingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if cfg.Housekeeping.AccrualHourGate < 0 || cfg.Housekeeping.AccrualHourGate > 23 {
		return nil, fmt.Errorf("%s must be between 0 and 23", EnvAccrualHourGate)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LOCALDROP_APP_ENV" required:"true"`
	Port         string `envconfig:"LOCALDROP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LOCALDROP_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"LOCALDROP_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"LOCALDROP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LOCALDROP_DB_DSN"`
	Driver string `envconfig:"LOCALDROP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LOCALDROP_DB_HOST"`
	LegacyPort     int    `envconfig:"LOCALDROP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LOCALDROP_DB_USER"`
	LegacyPassword string `envconfig:"LOCALDROP_DB_PASSWORD"`
	LegacyName     string `envconfig:"LOCALDROP_DB_NAME"`
	LegacySSLMode  string `envconfig:"LOCALDROP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LOCALDROP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LOCALDROP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LOCALDROP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LOCALDROP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"LOCALDROP_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LOCALDROP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LOCALDROP_REDIS_ADDR"`
	Password     string        `envconfig:"LOCALDROP_REDIS_PASSWORD"`
	DB           int           `envconfig:"LOCALDROP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LOCALDROP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LOCALDROP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LOCALDROP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LOCALDROP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LOCALDROP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LOCALDROP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LOCALDROP_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"LOCALDROP_JWT_EXPIRATION_MINUTES" required:"true"`
}

// TokenTTL returns the access token lifetime.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"LOCALDROP_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	MaxAge         int      `envconfig:"LOCALDROP_CORS_MAX_AGE" default:"300"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64       `envconfig:"LOCALDROP_RATE_LIMIT_RPS" default:"10"`
	Burst             int           `envconfig:"LOCALDROP_RATE_LIMIT_BURST" default:"30"`
	PinLookupLimit    int           `envconfig:"LOCALDROP_RATE_LIMIT_PIN_LIMIT" default:"10"`
	PinLookupWindow   time.Duration `envconfig:"LOCALDROP_RATE_LIMIT_PIN_WINDOW" default:"1m"`
	IdempotencyTTL    time.Duration `envconfig:"LOCALDROP_IDEMPOTENCY_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"LOCALDROP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"LOCALDROP_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"LOCALDROP_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	DomainTopic    string        `envconfig:"LOCALDROP_PUBSUB_DOMAIN_TOPIC" default:"localdrop-domain-events"`
	CreateTopic    bool          `envconfig:"LOCALDROP_PUBSUB_CREATE_TOPIC" default:"false"`
	PublishTimeout time.Duration `envconfig:"LOCALDROP_PUBSUB_PUBLISH_TIMEOUT" default:"15s"`
}

type OutboxConfig struct {
	BatchSize      int    `envconfig:"LOCALDROP_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int    `envconfig:"LOCALDROP_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int    `envconfig:"LOCALDROP_OUTBOX_MAX_ATTEMPTS" default:"10"`
	MetricsAddr    string `envconfig:"LOCALDROP_OUTBOX_METRICS_ADDR"`
}

// HousekeepingConfig drives the cron worker and the run-once CLI.
type HousekeepingConfig struct {
	Interval           time.Duration `envconfig:"LOCALDROP_HOUSEKEEPING_TICK" default:"1m"`
	DeliveredRetention time.Duration `envconfig:"LOCALDROP_HOUSEKEEPING_DELIVERED_RETENTION" default:"3h"`
	SweepSchedule      string        `envconfig:"LOCALDROP_HOUSEKEEPING_SWEEP_SCHEDULE" default:"0 3 * * *"`
	AccrualSchedule    string        `envconfig:"LOCALDROP_HOUSEKEEPING_ACCRUAL_SCHEDULE" default:"5 12 * * *"`
	AccrualHourGate    int           `envconfig:"LOCALDROP_HOUSEKEEPING_ACCRUAL_HOUR_GATE" default:"12"`
	OutboxRetention    time.Duration `envconfig:"LOCALDROP_HOUSEKEEPING_OUTBOX_RETENTION" default:"720h"`
	OutboxSchedule     string        `envconfig:"LOCALDROP_HOUSEKEEPING_OUTBOX_SCHEDULE" default:"30 4 * * *"`
	Timezone           string        `envconfig:"LOCALDROP_HOUSEKEEPING_TIMEZONE" default:"Local"`
	MetricsAddr        string        `envconfig:"LOCALDROP_CRON_METRICS_ADDR"`
}

// Location resolves the configured timezone used for schedules and the accrual gate.
func (h HousekeepingConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(h.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
