package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"
	EnvMongoReadTimeout  = "MONGO_READ_TIMEOUT"
	EnvMongoWriteTimeout = "MONGO_WRITE_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvPaymentBaseURL   = "PAYMENT_BASE_URL"
	EnvPaymentKeyID     = "PAYMENT_KEY_ID"
	EnvPaymentKeySecret = "PAYMENT_KEY_SECRET"

	EnvKafkaBrokers           = "KAFKA_BROKERS"
	EnvNotificationsTopic     = "NOTIFICATIONS_TOPIC"
	EnvNotificationsDLQTopic  = "NOTIFICATIONS_DLQ_TOPIC"
	EnvNotificationsDisabled  = "NOTIFICATIONS_DISABLED"
	EnvNotificationTimeout    = "NOTIFICATION_TIMEOUT"
	EnvCheckoutStagingTTL     = "CHECKOUT_STAGING_TTL"
	EnvCheckoutStagingMaxOpen = "CHECKOUT_STAGING_MAX_OPEN"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
