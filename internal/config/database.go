package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"storefront-backend/internal/infrastructure/database"
	"storefront-backend/internal/shared/utils"
)

// LoadDatabaseConfig đọc config từ environment variables và trả về DBConfig.
// Khác với các config khác, giá trị sai format sẽ trả lỗi thay vì dùng default.
func LoadDatabaseConfig() (*database.DBConfig, error) {
	port, err := envInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	maxConns, err := envInt("DB_MAX_CONNECTIONS", 25)
	if err != nil {
		return nil, err
	}
	minConns, err := envInt("DB_MIN_CONNECTIONS", 5)
	if err != nil {
		return nil, err
	}
	maxRetries, err := envInt("DB_MAX_RETRIES", 5)
	if err != nil {
		return nil, err
	}

	maxConnLifetime, err := envDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	maxConnIdleTime, err := envDuration("DB_MAX_CONN_IDLE_TIME", time.Minute)
	if err != nil {
		return nil, err
	}
	healthCheckPeriod, err := envDuration("DB_HEALTH_CHECK_PERIOD", time.Minute)
	if err != nil {
		return nil, err
	}
	retryDelay, err := envDuration("DB_RETRY_DELAY", time.Second)
	if err != nil {
		return nil, err
	}
	connectTimeout, err := envDuration("DB_CONNECT_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	return &database.DBConfig{
		Host:              utils.GetEnvVariable("DB_HOST", "localhost"),
		Port:              port,
		Username:          utils.GetEnvVariable("DB_USER", "storefront"),
		Password:          utils.GetEnvVariable("DB_PASSWORD", ""),
		DBName:            utils.GetEnvVariable("DB_NAME", "storefront_dev"),
		SSLMode:           utils.GetEnvVariable("DB_SSLMODE", "disable"),
		MaxConns:          int32(maxConns),
		MinConns:          int32(minConns),
		MaxConnLifetime:   maxConnLifetime,
		MaxConnIdleTime:   maxConnIdleTime,
		HealthCheckPeriod: healthCheckPeriod,
		MaxRetries:        maxRetries,
		RetryDelay:        retryDelay,
		ConnectTimeout:    connectTimeout,
	}, nil
}

func envInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func envDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
