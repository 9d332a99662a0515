package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	OTP           OTPConfig
	AuthRateLimit AuthRateLimitConfig
	APIRateLimit  APIRateLimitConfig
	Cart          CartConfig
	GroupOrders   GroupOrdersConfig
	Inventory     InventoryConfig
	Realtime      RealtimeConfig
	FeatureFlags  FeatureFlagsConfig
	Eventing      EventingConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"STREETFOOD_APP_ENV" required:"true"`
	Port         string   `envconfig:"STREETFOOD_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"STREETFOOD_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"STREETFOOD_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"STREETFOOD_CORS_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "development")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"STREETFOOD_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"STREETFOOD_DB_DSN"`
	Driver string `envconfig:"STREETFOOD_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STREETFOOD_DB_HOST"`
	LegacyPort     int    `envconfig:"STREETFOOD_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STREETFOOD_DB_USER"`
	LegacyPassword string `envconfig:"STREETFOOD_DB_PASSWORD"`
	LegacyName     string `envconfig:"STREETFOOD_DB_NAME"`
	LegacySSLMode  string `envconfig:"STREETFOOD_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STREETFOOD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STREETFOOD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STREETFOOD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STREETFOOD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"STREETFOOD_DB_SLOW_QUERY" default:"500ms"`
}

// IsSQLite reports whether the configured driver is the embedded SQLite engine.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"STREETFOOD_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STREETFOOD_REDIS_ADDR"`
	Password     string        `envconfig:"STREETFOOD_REDIS_PASSWORD"`
	DB           int           `envconfig:"STREETFOOD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STREETFOOD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STREETFOOD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STREETFOOD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STREETFOOD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STREETFOOD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"STREETFOOD_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"STREETFOOD_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"STREETFOOD_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"STREETFOOD_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// OTPConfig drives one-time-password issuance and the Argon2id parameters
// used to hash codes at rest.
type OTPConfig struct {
	Length           int           `envconfig:"STREETFOOD_OTP_LENGTH" default:"6"`
	TTL              time.Duration `envconfig:"STREETFOOD_OTP_TTL" default:"5m"`
	MaxAttempts      int           `envconfig:"STREETFOOD_OTP_MAX_ATTEMPTS" default:"3"`
	Sender           string        `envconfig:"STREETFOOD_OTP_SENDER" default:"log"`
	ArgonMemoryKB    int           `envconfig:"STREETFOOD_ARGON_MEMORY_KB" default:"19456"`
	ArgonTime        int           `envconfig:"STREETFOOD_ARGON_TIME" default:"2"`
	ArgonParallelism int           `envconfig:"STREETFOOD_ARGON_PARALLELISM" default:"1"`
	ArgonSaltLen     int           `envconfig:"STREETFOOD_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int           `envconfig:"STREETFOOD_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	OTPWindow        time.Duration `envconfig:"STREETFOOD_AUTH_RATE_LIMIT_OTP_WINDOW" default:"10m"`
	OTPPhoneLimit    int           `envconfig:"STREETFOOD_AUTH_RATE_LIMIT_OTP_PHONE_LIMIT" default:"3"`
	OTPIPLimit       int           `envconfig:"STREETFOOD_AUTH_RATE_LIMIT_OTP_IP_LIMIT" default:"20"`
	VerifyWindow     time.Duration `envconfig:"STREETFOOD_AUTH_RATE_LIMIT_VERIFY_WINDOW" default:"5m"`
	VerifyPhoneLimit int           `envconfig:"STREETFOOD_AUTH_RATE_LIMIT_VERIFY_PHONE_LIMIT" default:"10"`
	VerifyIPLimit    int           `envconfig:"STREETFOOD_AUTH_RATE_LIMIT_VERIFY_IP_LIMIT" default:"40"`
}

// APIRateLimitConfig throttles authenticated write traffic per account and per IP.
type APIRateLimitConfig struct {
	Window       time.Duration `envconfig:"STREETFOOD_API_RATE_LIMIT_WINDOW" default:"1m"`
	AccountLimit int           `envconfig:"STREETFOOD_API_RATE_LIMIT_ACCOUNT_LIMIT" default:"120"`
	IPLimit      int           `envconfig:"STREETFOOD_API_RATE_LIMIT_IP_LIMIT" default:"300"`
}

type CartConfig struct {
	TTL      time.Duration `envconfig:"STREETFOOD_CART_TTL" default:"72h"`
	MaxLines int           `envconfig:"STREETFOOD_CART_MAX_LINES" default:"100"`
}

type GroupOrdersConfig struct {
	JoinRetries    int           `envconfig:"STREETFOOD_GROUP_ORDER_JOIN_RETRIES" default:"3"`
	MinDuration    time.Duration `envconfig:"STREETFOOD_GROUP_ORDER_MIN_DURATION" default:"1h"`
	MaxDuration    time.Duration `envconfig:"STREETFOOD_GROUP_ORDER_MAX_DURATION" default:"720h"`
	ExpiryBatchMax int           `envconfig:"STREETFOOD_GROUP_ORDER_EXPIRY_BATCH" default:"200"`
}

type InventoryConfig struct {
	AlertCooldown time.Duration `envconfig:"STREETFOOD_INVENTORY_ALERT_COOLDOWN" default:"24h"`
}

type RealtimeConfig struct {
	ChannelBuffer int           `envconfig:"STREETFOOD_REALTIME_BUFFER" default:"32"`
	Heartbeat     time.Duration `envconfig:"STREETFOOD_REALTIME_HEARTBEAT" default:"25s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STREETFOOD_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"STREETFOOD_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"STREETFOOD_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"STREETFOOD_PUBSUB_DOMAIN_TOPIC" default:"sf-domain-events"`
	DomainSubscription string `envconfig:"STREETFOOD_PUBSUB_DOMAIN_SUBSCRIPTION" default:"sf-domain-events-notifications"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"STREETFOOD_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"STREETFOOD_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"STREETFOOD_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"STREETFOOD_OUTBOX_RETENTION_DAYS" default:"14"`

	// MetricsAddr serves /metrics from the publisher when set.
	MetricsAddr string `envconfig:"STREETFOOD_OUTBOX_METRICS_ADDR"`
}

type CronConfig struct {
	Interval                  time.Duration `envconfig:"STREETFOOD_CRON_INTERVAL" default:"5m"`
	LockTTL                   time.Duration `envconfig:"STREETFOOD_CRON_LOCK_TTL" default:"4m"`
	NotificationRetentionDays int           `envconfig:"STREETFOOD_NOTIFICATION_RETENTION_DAYS" default:"30"`
	MetricsAddr               string        `envconfig:"STREETFOOD_CRON_METRICS_ADDR"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:streetfood.db?cache=shared&_fk=1"
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
