package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	envPrefix        = "BOOKXE"
	defaultJWTSecret = "change-me-jwt-secret"
)

type Config struct {
	AppEnv         string        `envconfig:"APP_ENV" default:"dev"`
	HTTPAddr       string        `envconfig:"HTTP_ADDR" default:":8080"`
	DatabaseURL    string        `envconfig:"DATABASE_URL" default:"file:bookxe.db"`
	JWTSecret      string        `envconfig:"JWT_SECRET" default:"change-me-jwt-secret"`
	JWTTTL         time.Duration `envconfig:"JWT_TTL" default:"12h"`
	SweepInterval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"30m"`
	// SweepOnStart only controls the sweep at boot; the periodic sweeper always runs.
	SweepOnStart   bool          `envconfig:"SWEEP_ON_START" default:"true"`
	MigrateOnStart bool          `envconfig:"MIGRATE_ON_START" default:"true"`
	CORSOrigins    string        `envconfig:"CORS_ALLOWED_ORIGINS"`

	// Empty AMQPURL disables event fan-out.
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"bookxe.events"`

	// Empty OTLPEndpoint keeps tracing in-process only.
	OTLPEndpoint string `envconfig:"OTLP_ENDPOINT"`
}

// Load reads an optional .env file and then BOOKXE_* variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("config: loaded .env")
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("%s_DATABASE_URL must not be empty", envPrefix)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("%s_SWEEP_INTERVAL must be > 0", envPrefix)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("%s_JWT_TTL must be > 0", envPrefix)
	}
	if c.AMQPURL != "" && strings.TrimSpace(c.AMQPExchange) == "" {
		return fmt.Errorf("%s_AMQP_EXCHANGE must be set when %s_AMQP_URL is", envPrefix, envPrefix)
	}

	if c.IsProdLike() {
		if isEmptyOrDefault(c.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release %s_JWT_SECRET must be set and not default", envPrefix)
		}
	}
	return nil
}

func (c *Config) IsProdLike() bool {
	env := strings.ToLower(strings.TrimSpace(c.AppEnv))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}
