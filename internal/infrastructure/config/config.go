package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,       default=8080"`
	Env       string        `env:"ENV,        default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=168h"`
	LogLevel  string        `env:"LOG_LEVEL,  default=info"`

	Mongo MongoConfig
	Redis RedisConfig
	Email EmailConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=taskhub"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// EmailConfig configures the outbound notification mailer. When APIKey is
// empty the mailer runs in disabled mode and only logs deliveries, which is
// the expected setup for local development.
type EmailConfig struct {
	Endpoint string `env:"EMAIL_ENDPOINT, default=https://api.sendgrid.com/v3/mail/send"`
	APIKey   string `env:"EMAIL_API_KEY"`
	Sender   string `env:"EMAIL_SENDER,   default=no-reply@taskhub.io"`
	Workers  int    `env:"EMAIL_WORKERS,  default=4"`
}

// Load reads configuration from environment variables using go-envconfig.
// A missing JWT_SECRET or a malformed value aborts startup.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// IsProduction reports whether the service runs with the production profile.
// Pretty console logging and other development conveniences key off this.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
