package config

// EnvPrefix is empty because every struct tag carries the full variable name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "LOCALDROP_APP_ENV"
	EnvPort         = "LOCALDROP_APP_PORT"
	EnvLogLevel     = "LOCALDROP_LOG_LEVEL"
	EnvLogFormat    = "LOCALDROP_LOG_FORMAT"
	EnvLogWarnStack = "LOCALDROP_LOG_WARN_STACK"

	EnvDBDSN      = "LOCALDROP_DB_DSN"
	EnvDBDriver   = "LOCALDROP_DB_DRIVER"
	EnvDBHost     = "LOCALDROP_DB_HOST"
	EnvDBPort     = "LOCALDROP_DB_PORT"
	EnvDBUser     = "LOCALDROP_DB_USER"
	EnvDBPassword = "LOCALDROP_DB_PASSWORD"
	EnvDBName     = "LOCALDROP_DB_NAME"
	EnvDBSSLMode  = "LOCALDROP_DB_SSLMODE"

	EnvRedisURL = "LOCALDROP_REDIS_URL"

	EnvJWTSecret  = "LOCALDROP_JWT_SECRET"
	EnvJWTIssuer  = "LOCALDROP_JWT_ISSUER"
	EnvJWTExpMins = "LOCALDROP_JWT_EXPIRATION_MINUTES"

	EnvCORSOrigins = "LOCALDROP_CORS_ALLOWED_ORIGINS"

	EnvGCPProjectID       = "LOCALDROP_GCP_PROJECT_ID"
	EnvPubSubDomainTopic  = "LOCALDROP_PUBSUB_DOMAIN_TOPIC"
	EnvOutboxBatchSize    = "LOCALDROP_OUTBOX_PUBLISH_BATCH_SIZE"
	EnvSweepRetention     = "LOCALDROP_HOUSEKEEPING_DELIVERED_RETENTION"
	EnvSweepSchedule      = "LOCALDROP_HOUSEKEEPING_SWEEP_SCHEDULE"
	EnvAccrualSchedule    = "LOCALDROP_HOUSEKEEPING_ACCRUAL_SCHEDULE"
	EnvAccrualHourGate    = "LOCALDROP_HOUSEKEEPING_ACCRUAL_HOUR_GATE"
	EnvPinLookupLimit     = "LOCALDROP_RATE_LIMIT_PIN_LIMIT"
	EnvPinLookupWindow    = "LOCALDROP_RATE_LIMIT_PIN_WINDOW"
	EnvUseSQLite          = "LOCALDROP_USE_SQLITE"
	EnvAutoMigrate        = "LOCALDROP_AUTO_MIGRATE"
	EnvIdempotencyTTL     = "LOCALDROP_IDEMPOTENCY_TTL"
	EnvRequestsPerSecond  = "LOCALDROP_RATE_LIMIT_RPS"
	EnvRequestsBurst      = "LOCALDROP_RATE_LIMIT_BURST"
	EnvOutboxPollInterval = "LOCALDROP_OUTBOX_PUBLISH_POLL_MS"
)

var legacyDBEnvVars = []string{
	EnvDBHost,
	EnvDBUser,
	EnvDBName,
}
