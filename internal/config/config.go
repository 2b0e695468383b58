package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Assistant mode selects the chat model strategy once at startup. It is never
// auto-detected or switched mid-session.
const (
	AssistantModeGemini  = "gemini"
	AssistantModeOffline = "offline"
)

// Function result forwarding modes for the chat dispatcher.
const (
	FunctionResultsFirst = "first"
	FunctionResultsAll   = "all"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	DatabaseURL    string   `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`

	BodyLimit         string `mapstructure:"BODY_LIMIT"`
	RequestTimeoutSec int    `mapstructure:"REQUEST_TIMEOUT_SECONDS"`

	AssistantMode       string `mapstructure:"ASSISTANT_MODE"`
	GeminiAPIKey        string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel         string `mapstructure:"GEMINI_MODEL"`
	ChatFunctionResults string `mapstructure:"CHAT_FUNCTION_RESULTS"`
	EmergencyPhone      string `mapstructure:"EMERGENCY_PHONE"`

	AlertRecipient string `mapstructure:"ALERT_RECIPIENT"`

	LedgerEnabled bool   `mapstructure:"LEDGER_ENABLED"`
	AlgodURL      string `mapstructure:"ALGOD_URL"`
	AlgodToken    string `mapstructure:"ALGOD_TOKEN"`
	LedgerSeed    string `mapstructure:"LEDGER_SEED"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 60)
	v.SetDefault("ASSISTANT_MODE", AssistantModeOffline)
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("CHAT_FUNCTION_RESULTS", FunctionResultsFirst)
	v.SetDefault("EMERGENCY_PHONE", "104")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
		"BODY_LIMIT", "REQUEST_TIMEOUT_SECONDS",
		"ASSISTANT_MODE", "GEMINI_API_KEY", "GEMINI_MODEL",
		"CHAT_FUNCTION_RESULTS", "EMERGENCY_PHONE", "ALERT_RECIPIENT",
		"LEDGER_ENABLED", "ALGOD_URL", "ALGOD_TOKEN", "LEDGER_SEED",
	} {
		v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is consistent enough to start.
func (c *Config) Validate() error {
	switch c.AssistantMode {
	case AssistantModeGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when ASSISTANT_MODE is %q", AssistantModeGemini)
		}
	case AssistantModeOffline:
		// No external model; nothing else to check.
	default:
		return fmt.Errorf("ASSISTANT_MODE must be %q or %q, got %q", AssistantModeGemini, AssistantModeOffline, c.AssistantMode)
	}

	switch c.ChatFunctionResults {
	case FunctionResultsFirst, FunctionResultsAll:
	default:
		return fmt.Errorf("CHAT_FUNCTION_RESULTS must be %q or %q, got %q", FunctionResultsFirst, FunctionResultsAll, c.ChatFunctionResults)
	}

	if c.LedgerEnabled && c.AlgodURL == "" {
		return fmt.Errorf("ALGOD_URL is required when LEDGER_ENABLED is true")
	}

	return nil
}
