package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Record store backends understood by the promo router.
const (
	RecordStoreSheets   = "sheets"
	RecordStorePostgres = "postgres"
)

// Config holds all configuration for the promo router service.
// Keys are read verbatim from the environment (no prefix), optionally seeded from a .env file.
type Config struct {
	Port     int    `mapstructure:"PORT" validate:"gt=0,lte=65535"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Webhook handshake and channel send API
	VerifyToken        string `mapstructure:"VERIFY_TOKEN" validate:"required"`
	WhatsAppToken      string `mapstructure:"WHATSAPP_TOKEN" validate:"required"`
	WhatsAppPhoneID    string `mapstructure:"WHATSAPP_PHONE_ID" validate:"required"`
	WhatsAppAPIBaseURL string `mapstructure:"WHATSAPP_API_BASE_URL" validate:"required,url"`
	WhatsAppAPIVersion string `mapstructure:"WHATSAPP_API_VERSION" validate:"required"`
	WhatsAppAppSecret  string `mapstructure:"WHATSAPP_APP_SECRET"`

	// Operator escalation; empty disables it.
	AdvisorPhone string `mapstructure:"ADVISOR_PHONE"`

	// Record store
	RecordStore           string `mapstructure:"RECORD_STORE" validate:"oneof=sheets postgres"`
	GoogleSheetID         string `mapstructure:"GOOGLE_SHEET_ID" validate:"required_if=RecordStore sheets"`
	GoogleSheetRange      string `mapstructure:"GOOGLE_SHEET_RANGE"`
	GoogleCredentialsFile string `mapstructure:"GOOGLE_CREDENTIALS_FILE"`
	PostgresDSN           string `mapstructure:"POSTGRES_DSN" validate:"required_if=RecordStore postgres"`

	NATSUrl string `mapstructure:"NATS_URL"`

	ExternalCallTimeout time.Duration `mapstructure:"EXTERNAL_CALL_TIMEOUT" validate:"gt=0"`
	StrictMenuDigits    bool          `mapstructure:"STRICT_MENU_DIGITS"`
	MetricsEnabled      bool          `mapstructure:"METRICS_ENABLED"`
}

// EscalationEnabled reports whether an operator address is configured.
func (c *Config) EscalationEnabled() bool {
	return strings.TrimSpace(c.AdvisorPhone) != ""
}

func Load(serviceName string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("../..") // For running from cmd/<service>

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// Every key needs a default, otherwise Unmarshal does not see values coming only from the environment.
	v.SetDefault("PORT", 3000)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("VERIFY_TOKEN", "")
	v.SetDefault("WHATSAPP_TOKEN", "")
	v.SetDefault("WHATSAPP_PHONE_ID", "")
	v.SetDefault("WHATSAPP_API_BASE_URL", "https://graph.facebook.com")
	v.SetDefault("WHATSAPP_API_VERSION", "v19.0")
	v.SetDefault("WHATSAPP_APP_SECRET", "")
	v.SetDefault("ADVISOR_PHONE", "")
	v.SetDefault("RECORD_STORE", RecordStoreSheets)
	v.SetDefault("GOOGLE_SHEET_ID", "")
	v.SetDefault("GOOGLE_SHEET_RANGE", "A:Z")
	v.SetDefault("GOOGLE_CREDENTIALS_FILE", "bot-whatsapp-promo.json")
	v.SetDefault("POSTGRES_DSN", "")
	v.SetDefault("NATS_URL", "")
	v.SetDefault("EXTERNAL_CALL_TIMEOUT", "10s")
	v.SetDefault("STRICT_MENU_DIGITS", false)
	v.SetDefault("METRICS_ENABLED", true)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Printf("No .env file found for %s; using defaults and environment variables.", serviceName)
		} else {
			return nil, fmt.Errorf("reading .env: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.RecordStore = strings.ToLower(strings.TrimSpace(cfg.RecordStore))

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config for %s: %w", serviceName, err)
	}
	return &cfg, nil
}
