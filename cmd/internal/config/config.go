package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

type Config struct {
	Port         int    `env:"PORT" envDefault:"6060"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./database.db"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	Timezone     string `env:"APP_TIMEZONE" envDefault:"America/Sao_Paulo"`
	SecureCookie bool   `env:"SECURE_COOKIE" envDefault:"true"`

	API     APIConfig
	Session SessionConfig
	Cognito CognitoConfig
}

// APIConfig points at the GoBarber REST API the dashboard reads from.
type APIConfig struct {
	BaseURL      string        `env:"GOBARBER_API_URL,required,notEmpty"`
	RPS          float64       `env:"GOBARBER_API_RPS" envDefault:"10"`
	Burst        int           `env:"GOBARBER_API_BURST" envDefault:"5"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`
}

type SessionConfig struct {
	Secret string        `env:"SESSION_SECRET,required,notEmpty"`
	TTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

type CognitoConfig struct {
	Region       string `env:"AWS_REGION"`
	ClientID     string `env:"COGNITO_CLIENT_ID,required,notEmpty"`
	ClientSecret string `env:"COGNITO_CLIENT_SECRET"`
}

// Load reads .env when present and parses the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
		log.Warn("no .env file found, using process environment only")
	}
	return Parse()
}

func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) LogLvl() log.Lvl {
	switch c.LogLevel {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

func (c *Config) validate() error {
	if len(c.Session.Secret) < 16 {
		return errors.New("SESSION_SECRET must be at least 16 characters")
	}
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.API.RPS <= 0 || c.API.Burst <= 0 {
		return errors.New("GOBARBER_API_RPS and GOBARBER_API_BURST must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
