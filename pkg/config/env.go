package config

const (
	EnvPrefix = "STREETFOOD"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv                 = "STREETFOOD_APP_ENV"
	EnvPort                   = "STREETFOOD_APP_PORT"
	EnvDBDSN                  = "STREETFOOD_DB_DSN"
	EnvDBDriver               = "STREETFOOD_DB_DRIVER"
	EnvDBHost                 = "STREETFOOD_DB_HOST"
	EnvDBUser                 = "STREETFOOD_DB_USER"
	EnvDBName                 = "STREETFOOD_DB_NAME"
	EnvDBPassword             = "STREETFOOD_DB_PASSWORD"
	EnvRedisURL               = "STREETFOOD_REDIS_URL"
	EnvJWTSecret              = "STREETFOOD_JWT_SECRET"
	EnvJWTIssuer              = "STREETFOOD_JWT_ISSUER"
	EnvJWTExpMins             = "STREETFOOD_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "STREETFOOD_REFRESH_TOKEN_TTL_MINUTES"
	EnvOTPTTL                 = "STREETFOOD_OTP_TTL"
	EnvOTPMaxAttempts         = "STREETFOOD_OTP_MAX_ATTEMPTS"
	EnvCartTTL                = "STREETFOOD_CART_TTL"
	EnvGCPProjectID           = "STREETFOOD_GCP_PROJECT_ID"
	EnvPubSubDomainTopic      = "STREETFOOD_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSub        = "STREETFOOD_PUBSUB_DOMAIN_SUBSCRIPTION"
	EnvCORSOrigins            = "STREETFOOD_CORS_ORIGINS"
	EnvCronInterval           = "STREETFOOD_CRON_INTERVAL"
	EnvNotificationRetention  = "STREETFOOD_NOTIFICATION_RETENTION_DAYS"
	EnvGroupOrderJoinRetries  = "STREETFOOD_GROUP_ORDER_JOIN_RETRIES"
	EnvInventoryAlertCooldown = "STREETFOOD_INVENTORY_ALERT_COOLDOWN"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
