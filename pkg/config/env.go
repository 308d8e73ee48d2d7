package config

import (
	"os"
	"strconv"
	"time"
)

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr        = "REDIS_ADDR"
	EnvRedisDB          = "REDIS_DB"
	EnvRedisConnTimeout = "REDIS_CONN_TIMEOUT"

	EnvCacheTTL = "AVAILABILITY_CACHE_TTL"

	EnvReservationEventsTopic = "RESERVATION_EVENTS_TOPIC"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvMaxStayDays   = "BOOKING_MAX_STAY_DAYS"
	EnvMinLeadDays   = "BOOKING_MIN_LEAD_DAYS"
	EnvMaxLeadMonths = "BOOKING_MAX_LEAD_MONTHS"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
