package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/Alias1177/volscan/internal/database"
	"github.com/Alias1177/volscan/models"
)

// Config holds all application configuration
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`
	DataDir  string `envconfig:"DATA_DIR" default:"data" validate:"required"`

	BinanceBaseURL  string        `envconfig:"BINANCE_BASE_URL" default:"https://fapi.binance.com" validate:"url"`
	OKXBaseURL      string        `envconfig:"OKX_BASE_URL" default:"https://www.okx.com" validate:"url"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s" validate:"gt=0"`
	MaxConcurrent   int           `envconfig:"MAX_CONCURRENT_REQUESTS" default:"10" validate:"min=1"`
	MinInterval     time.Duration `envconfig:"MIN_REQUEST_INTERVAL" default:"50ms" validate:"gte=0"`
	MaxRetries      int           `envconfig:"MAX_RETRIES" default:"3" validate:"min=0"`
	MaxRetryTimeout time.Duration `envconfig:"MAX_RETRY_TIMEOUT" default:"30s" validate:"gte=0"`
	OrderBookDepth  int           `envconfig:"ORDER_BOOK_DEPTH" default:"20" validate:"min=1"`
	KlineLimit      int           `envconfig:"KLINE_LIMIT" default:"100" validate:"min=1"`

	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	DBUser      string `envconfig:"DB_USER"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME"`
	DBSSLMode   string `envconfig:"DB_SSLMODE" default:"disable"`

	TelegramToken       string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID      int64  `envconfig:"TELEGRAM_CHAT_ID" validate:"required_with=TelegramToken"`
	NotifyMinConclusion string `envconfig:"NOTIFY_MIN_CONCLUSION" default:"medium_probability" validate:"oneof=no_signal low_probability medium_probability high_probability"`

	ThresholdsFile string `envconfig:"THRESHOLDS_FILE"`
}

var validate = validator.New()

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// DatabaseEnabled reports whether a report archive is configured
func (c *Config) DatabaseEnabled() bool {
	return c.DatabaseURL != "" || c.DBHost != ""
}

// TelegramEnabled reports whether alerts are configured
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

// DatabaseParams returns the discrete connection settings
func (c *Config) DatabaseParams() database.ConnectionParams {
	return database.ConnectionParams{
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		DBName:   c.DBName,
		SSLMode:  c.DBSSLMode,
	}
}

// LoadThresholds reads a YAML threshold file over the defaults. An empty path returns the defaults.
func LoadThresholds(path string) (models.Thresholds, error) {
	th := models.DefaultThresholds()
	if path == "" {
		return th, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return th, fmt.Errorf("thresholds file %s not found: %w", path, err)
		}
		return th, fmt.Errorf("failed to read thresholds file: %w", err)
	}

	if err := yaml.Unmarshal(data, &th); err != nil {
		return models.DefaultThresholds(), fmt.Errorf("failed to parse thresholds file: %w", err)
	}

	if err := validate.Struct(th); err != nil {
		return models.DefaultThresholds(), fmt.Errorf("invalid thresholds: %w", err)
	}

	return th, nil
}
