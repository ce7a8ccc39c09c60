package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"storefront-backend/internal/shared/utils"
	"storefront-backend/pkg/logger"
)

func main() {
	// ========================================
	// LOAD ENVIRONMENT VARIABLES
	// ========================================
	// Load từ .env file (development/local)
	// Production sẽ dùng system environment variables
	envErr := godotenv.Load()

	env := utils.GetEnvVariable("APP_ENV", "development")
	logger.Init(env, utils.GetEnvVariable("LOG_LEVEL", "info"))

	if envErr != nil {
		log.Warn().Msg("⚠️  No .env file found, using system environment variables")
	}

	// ========================================
	// SET GIN MODE
	// ========================================
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info().Str("env", env).Msg("🌍 Environment")

	Serve()
}
