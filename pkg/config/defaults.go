package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "campsite"
	DefaultMongoConnTimeout  = 10 * time.Second

	// DefaultRedisAddr is empty on purpose: without a Redis address the
	// service falls back to the in-process availability cache, which is only
	// safe for a single instance.
	DefaultRedisAddr        = ""
	DefaultRedisDB          = 0
	DefaultRedisConnTimeout = 5 * time.Second

	DefaultCacheTTL = 24 * time.Hour

	// DefaultReservationEventsTopic is empty on purpose: lifecycle events are
	// published only when a topic is configured.
	DefaultReservationEventsTopic = ""

	DefaultPort = "8080"

	DefaultMaxStayDays   = 3
	DefaultMinLeadDays   = 1
	DefaultMaxLeadMonths = 1

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultLogLevel = "info"
)
