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
	Razorpay     RazorpayConfig
	Email        EmailConfig
	Webhook      WebhookConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"HYRIND_APP_ENV" required:"true"`
	Port         string `envconfig:"HYRIND_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HYRIND_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HYRIND_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"HYRIND_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	var out []string
	for _, origin := range strings.Split(a.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

type DBConfig struct {
	DSN    string `envconfig:"HYRIND_DB_DSN"`
	Driver string `envconfig:"HYRIND_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HYRIND_DB_HOST"`
	LegacyPort     int    `envconfig:"HYRIND_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HYRIND_DB_USER"`
	LegacyPassword string `envconfig:"HYRIND_DB_PASSWORD"`
	LegacyName     string `envconfig:"HYRIND_DB_NAME"`
	LegacySSLMode  string `envconfig:"HYRIND_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HYRIND_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HYRIND_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HYRIND_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HYRIND_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"HYRIND_DB_SLOW_QUERY" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HYRIND_REDIS_URL" required:"true"`
	Address      string        `envconfig:"HYRIND_REDIS_ADDR"`
	Password     string        `envconfig:"HYRIND_REDIS_PASSWORD"`
	DB           int           `envconfig:"HYRIND_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HYRIND_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HYRIND_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HYRIND_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HYRIND_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HYRIND_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig verifies access tokens minted by the identity service.
type JWTConfig struct {
	Secret            string `envconfig:"HYRIND_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"HYRIND_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"HYRIND_JWT_EXPIRATION_MINUTES" default:"60"`
}

// RazorpayConfig carries the secrets used to check gateway signatures.
type RazorpayConfig struct {
	KeyID                   string `envconfig:"HYRIND_RAZORPAY_KEY_ID"`
	KeySecret               string `envconfig:"HYRIND_RAZORPAY_KEY_SECRET"`
	WebhookSecret           string `envconfig:"HYRIND_RAZORPAY_WEBHOOK_SECRET" required:"true"`
	RequirePaymentSignature bool   `envconfig:"HYRIND_RAZORPAY_REQUIRE_PAYMENT_SIGNATURE" default:"false"`
}

type EmailConfig struct {
	PostmarkServerToken  string `envconfig:"HYRIND_POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `envconfig:"HYRIND_POSTMARK_ACCOUNT_TOKEN"`
	From                 string `envconfig:"HYRIND_EMAIL_FROM" default:"billing@hyrind.com"`
	SupportEmail         string `envconfig:"HYRIND_SUPPORT_EMAIL" default:"support@hyrind.com"`
	MessageStream        string `envconfig:"HYRIND_EMAIL_MESSAGE_STREAM" default:"outbound"`
}

// Enabled reports whether outbound email is configured.
func (e EmailConfig) Enabled() bool {
	return strings.TrimSpace(e.PostmarkServerToken) != ""
}

type WebhookConfig struct {
	IdempotencyTTL time.Duration `envconfig:"HYRIND_WEBHOOK_IDEMPOTENCY_TTL" default:"168h"`
}

type CronConfig struct {
	Interval        time.Duration `envconfig:"HYRIND_CRON_INTERVAL" default:"1h"`
	LockTTL         time.Duration `envconfig:"HYRIND_CRON_LOCK_TTL" default:"10m"`
	ExpiryGraceDays int           `envconfig:"HYRIND_CRON_EXPIRY_GRACE_DAYS" default:"3"`
	BatchLimit      int           `envconfig:"HYRIND_CRON_BATCH_LIMIT" default:"200"`
}

// ExpiryGrace returns the grace window after a missed billing date.
func (c CronConfig) ExpiryGrace() time.Duration {
	if c.ExpiryGraceDays <= 0 {
		return 0
	}
	return time.Duration(c.ExpiryGraceDays) * 24 * time.Hour
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"HYRIND_AUTO_MIGRATE" default:"false"`
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
