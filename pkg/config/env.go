package config

const EnvPrefix = "HYRIND"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                  = "HYRIND_APP_ENV"
	EnvPort                    = "HYRIND_APP_PORT"
	EnvDBDSN                   = "HYRIND_DB_DSN"
	EnvDBHost                  = "HYRIND_DB_HOST"
	EnvDBPort                  = "HYRIND_DB_PORT"
	EnvDBUser                  = "HYRIND_DB_USER"
	EnvDBPassword              = "HYRIND_DB_PASSWORD"
	EnvDBName                  = "HYRIND_DB_NAME"
	EnvRedisURL                = "HYRIND_REDIS_URL"
	EnvJWTSecret               = "HYRIND_JWT_SECRET"
	EnvJWTIssuer               = "HYRIND_JWT_ISSUER"
	EnvRazorpayWebhookSecret   = "HYRIND_RAZORPAY_WEBHOOK_SECRET"
	EnvRazorpayKeySecret       = "HYRIND_RAZORPAY_KEY_SECRET"
	EnvPostmarkServerToken     = "HYRIND_POSTMARK_SERVER_TOKEN"
	EnvWebhookIdempotencyTTL   = "HYRIND_WEBHOOK_IDEMPOTENCY_TTL"
	EnvCronExpiryGraceDays     = "HYRIND_CRON_EXPIRY_GRACE_DAYS"
	EnvRequirePaymentSignature = "HYRIND_RAZORPAY_REQUIRE_PAYMENT_SIGNATURE"
)

// legacyDBEnvVars must all be set when no DSN is provided.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
