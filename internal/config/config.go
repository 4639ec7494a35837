package config

import (
	"fmt"
	"strings"

	"github.com/Dias221467/activity_notifier/pkg/logger"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the application configuration loaded from the environment.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	MongoURI string `env:"MONGO_URI,required,notEmpty"`
	DBName   string `env:"MONGO_DB" envDefault:"activity_notifier"`

	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	RedisURL    string `env:"REDIS_URL"` // optional, unread counters are not cached without it
	RedisPrefix string `env:"REDIS_PREFIX" envDefault:"notifier:"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	FanoutConcurrency int    `env:"FANOUT_CONCURRENCY" envDefault:"8"`
	ReconcileSchedule string `env:"RECONCILE_SCHEDULE" envDefault:"@hourly"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

// UseRedis reports whether a Redis URL is configured.
func (c *Config) UseRedis() bool {
	return c.RedisURL != ""
}

// LoadConfig reads .env (if present) and parses the environment into a Config.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Log.Debug("No .env file found, using environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.FanoutConcurrency <= 0 {
		return fmt.Errorf("FANOUT_CONCURRENCY must be positive, got %d", c.FanoutConcurrency)
	}
	if _, err := logrus.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return nil
}
