package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "wayfare"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultMongoReadTimeout  = 5 * time.Second
	DefaultMongoWriteTimeout = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultPaymentBaseURL = "https://api.razorpay.com"

	DefaultKafkaBrokers          = "localhost:9092"
	DefaultNotificationsTopic    = "booking-confirmations"
	DefaultNotificationsDLQTopic = "booking-confirmations-dlq"
	DefaultNotificationTimeout   = 5 * time.Second

	DefaultCheckoutStagingTTL     = 30 * time.Minute
	DefaultCheckoutStagingMaxOpen = 10000

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100
)
