package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

func ParseStringToUUID(s string) uuid.UUID {
	uid, err := uuid.Parse(s)
	if err != nil || s == "" {
		return uuid.Nil
	}
	return uid
}

// UnmarshalTask decodes an asynq task payload into v
func UnmarshalTask(t *asynq.Task, v any) error {
	if len(t.Payload()) == 0 {
		return nil
	}
	if err := json.Unmarshal(t.Payload(), v); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", t.Type(), err)
	}
	return nil
}

// GetEnvVariable returns the env value or defaultValue when unset
func GetEnvVariable(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func GetEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}
