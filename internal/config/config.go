package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/staylink/concierge/internal/ai"
	"github.com/staylink/concierge/internal/cache"
	"github.com/staylink/concierge/internal/inventory"
	"github.com/staylink/concierge/internal/telemetry"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	APIKey         string        `mapstructure:"API_KEY"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`

	Inventory         inventory.Config `mapstructure:",squash"`
	InventoryCacheTTL time.Duration    `mapstructure:"INVENTORY_CACHE_TTL"`
	BookingBaseURL    string           `mapstructure:"BOOKING_BASE_URL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	OpenAIKey             string        `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL         string        `mapstructure:"OPENAI_BASE_URL"`
	ModelCheap            string        `mapstructure:"MODEL_CHEAP"`
	ModelPowerful         string        `mapstructure:"MODEL_POWERFUL"`
	GenerationMaxTokens   int           `mapstructure:"GENERATION_MAX_TOKENS"`
	GenerationTemperature float64       `mapstructure:"GENERATION_TEMPERATURE"`
	GenerationRetries     int           `mapstructure:"GENERATION_RETRIES"`
	GenerationRPS         float64       `mapstructure:"GENERATION_RPS"`
	GenerationCacheTTL    time.Duration `mapstructure:"GENERATION_CACHE_TTL"`

	GroundingTimeout  time.Duration `mapstructure:"GROUNDING_TIMEOUT"`
	GenerationTimeout time.Duration `mapstructure:"GENERATION_TIMEOUT"`

	Telemetry telemetry.Config `mapstructure:",squash"`
}

var defaults = map[string]any{
	"ENV":                    "dev",
	"PORT":                   "8080",
	"LOG_LEVEL":              "info",
	"REQUEST_TIMEOUT":        "45s",
	"CORS_ALLOWED_ORIGINS":   "*",
	"API_KEY":                "",
	"RATE_LIMIT_RPS":         5.0,
	"RATE_LIMIT_BURST":       10,
	"INVENTORY_DRIVER":       "sqlite",
	"DATABASE_URL":           "",
	"SQLITE_PATH":            "data/inventory.db",
	"INVENTORY_FILE":         "data/inventory.yaml",
	"INVENTORY_CACHE_TTL":    "30s",
	"BOOKING_BASE_URL":       "http://localhost:8080",
	"REDIS_ADDR":             "",
	"REDIS_PASSWORD":         "",
	"REDIS_DB":               0,
	"OPENAI_API_KEY":         "",
	"OPENAI_BASE_URL":        "",
	"MODEL_CHEAP":            "gpt-4o-mini",
	"MODEL_POWERFUL":         "gpt-4o",
	"GENERATION_MAX_TOKENS":  600,
	"GENERATION_TEMPERATURE": 0.4,
	"GENERATION_RETRIES":     2,
	"GENERATION_RPS":         0.0,
	"GENERATION_CACHE_TTL":   "10m",
	"GROUNDING_TIMEOUT":      "5s",
	"GENERATION_TIMEOUT":     "30s",
	"OTEL_ENABLED":           false,
	"OTEL_SERVICE_NAME":      "staylink-concierge",
	"OTEL_SERVICE_VERSION":   "dev",
	"OTEL_EXPORTER":          "grpc",
	"OTEL_ENDPOINT":          "localhost:4317",
	"OTEL_SAMPLING_RATE":     1.0,
}

// Load reads .env from the working directory and the process environment.
// envFiles, when given, are loaded into the environment first; variables
// already set are not overridden.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return Config{}, fmt.Errorf("load env files: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Env() string {
	return c.Telemetry.Environment
}

func (c Config) OpenAI() ai.OpenAIConfig {
	return ai.OpenAIConfig{
		APIKey:        c.OpenAIKey,
		BaseURL:       c.OpenAIBaseURL,
		CheapModel:    c.ModelCheap,
		PowerfulModel: c.ModelPowerful,
		MaxTokens:     c.GenerationMaxTokens,
		Temperature:   float32(c.GenerationTemperature),
		Retries:       c.GenerationRetries,
		RPS:           c.GenerationRPS,
		CacheTTL:      c.GenerationCacheTTL,
	}
}

// Redis returns ok=false when no REDIS_ADDR is configured.
func (c Config) Redis() (cache.RedisConfig, bool) {
	if c.RedisAddr == "" {
		return cache.RedisConfig{}, false
	}
	return cache.RedisConfig{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
		Prefix:   "concierge:",
	}, true
}
