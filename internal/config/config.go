package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"storefront-backend/internal/domains/payment/gateway/vnpay"
	"storefront-backend/internal/infrastructure/database"
	"storefront-backend/internal/shared/utils"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App      AppConfig
	Database *database.DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	VNPay    VNPayConfig
	Job      JobConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
}

type VNPayConfig struct {
	TmnCode    string        // Merchant Code (e.g., "DEMOV01")
	HashSecret string        // Secret key for HMAC-SHA512
	PaymentURL string        // vpcpay.html
	APIURL     string        // merchant_webapi (querydr)
	ReturnURL  string        // vnp_ReturnUrl, trỏ về GET /payments/vnpay-return
	Locale     string        // vn | en
	Timeout    time.Duration // HTTP timeout cho querydr

	// FrontendReturnURL: nếu set, vnpay-return redirect browser về đây
	FrontendReturnURL string
}

// JobConfig cho worker (asynq)
type JobConfig struct {
	PaymentTimeout time.Duration // order VNPay pending quá lâu sẽ được reconcile
	ReconcileCron  string
	ReconcileLimit int
	Concurrency    int
}

// Merchant converts to the value the VNPay client is built from.
func (c VNPayConfig) Merchant() vnpay.MerchantConfig {
	m := vnpay.NewMerchantConfig(c.TmnCode, c.HashSecret, c.PaymentURL, c.ReturnURL, c.APIURL)
	if c.Locale != "" {
		m.Locale = c.Locale
	}
	return m
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	dbConfig, err := LoadDatabaseConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:        utils.GetEnvVariable("APP_NAME", "Storefront API"),
			Environment: utils.GetEnvVariable("APP_ENV", "development"),
			Port:        utils.GetEnvVariable("APP_PORT", "8080"),
			Version:     utils.GetEnvVariable("APP_VERSION", "1.0.0"),
			LogLevel:    utils.GetEnvVariable("LOG_LEVEL", "info"),
		},
		Database: dbConfig,
		Redis: RedisConfig{
			Host:     utils.GetEnvVariable("REDIS_HOST", "localhost:6379"),
			Password: utils.GetEnvVariable("REDIS_PASSWORD", ""),
			DB:       utils.GetEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            utils.GetEnvVariable("JWT_SECRET", defaultJWTSecret),
			AccessTokenExpiry: utils.GetEnvInt("JWT_ACCESS_EXPIRY", 15), // 15 minutes
		},
		VNPay: VNPayConfig{
			TmnCode:           utils.GetEnvVariable("VNPAY_TMN_CODE", ""),
			HashSecret:        utils.GetEnvVariable("VNPAY_HASH_SECRET", ""),
			PaymentURL:        utils.GetEnvVariable("VNPAY_PAYMENT_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"),
			APIURL:            utils.GetEnvVariable("VNPAY_API_URL", "https://sandbox.vnpayment.vn/merchant_webapi/api/transaction"),
			ReturnURL:         utils.GetEnvVariable("VNPAY_RETURN_URL", "http://localhost:8080/api/v1/payments/vnpay-return"),
			Locale:            utils.GetEnvVariable("VNPAY_LOCALE", vnpay.DefaultLocale),
			Timeout:           utils.GetEnvDuration("VNPAY_TIMEOUT", vnpay.DefaultHTTPTimeout),
			FrontendReturnURL: utils.GetEnvVariable("VNPAY_FRONTEND_RETURN_URL", ""),
		},
		Job: JobConfig{
			PaymentTimeout: utils.GetEnvDuration("JOB_PAYMENT_TIMEOUT", 15*time.Minute),
			ReconcileCron:  utils.GetEnvVariable("JOB_RECONCILE_CRON", "*/5 * * * *"),
			ReconcileLimit: utils.GetEnvInt("JOB_RECONCILE_LIMIT", 100),
			Concurrency:    utils.GetEnvInt("WORKER_CONCURRENCY", 10),
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	if err := c.VNPay.Merchant().Validate(); err != nil {
		return err
	}
	if c.Job.PaymentTimeout <= 0 {
		return fmt.Errorf("JOB_PAYMENT_TIMEOUT must be positive")
	}

	// Production environment phải có JWT secret
	if c.IsProduction() {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
		if c.VNPay.APIURL == "" {
			log.Warn().Msg("VNPAY_API_URL not set - pending payments will only be cancelled, never confirmed")
		}
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
