package main

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds the service settings read from the environment.
type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	GoEnv       string `env:"GO_ENV" envDefault:"production"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// JWTSecret enables reading the websocket identity from a signed token.
	JWTSecret   string   `env:"JWT_SECRET"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://127.0.0.1:5173,http://localhost:3001,http://127.0.0.1:3001"`

	RelaySendBuffer          int           `env:"RELAY_SEND_BUFFER" envDefault:"16"`
	RelayNotifyUndeliverable bool          `env:"RELAY_NOTIFY_UNDELIVERABLE" envDefault:"false"`
	PresenceTTL              time.Duration `env:"PRESENCE_TTL" envDefault:"90s"`
}

func (c Config) development() bool {
	return c.GoEnv == "development"
}

// loadConfig reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func loadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
