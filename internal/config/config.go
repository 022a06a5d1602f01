package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/jwalitptl/clinica-api/pkg/storage"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Storage  storage.Config `mapstructure:"-"`
	SMTP     SMTPConfig     `mapstructure:"-"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpiryMinutes int    `mapstructure:"expiry_minutes"`
}

// SMTPConfig is optional; with an empty host the credential notifier is a no-op
type SMTPConfig struct {
	Host     string `envconfig:"SMTP_HOST"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Username string `envconfig:"SMTP_USERNAME"`
	Password string `envconfig:"SMTP_PASSWORD"`
	From     string `envconfig:"SMTP_FROM"`
}

// Expiry returns the configured token lifetime
func (c JWTConfig) Expiry() time.Duration {
	if c.ExpiryMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.ExpiryMinutes) * time.Minute
}

// LoadConfig reads config.yaml plus environment overrides. Missing
// secrets (JWT signing key, storage settings) are load errors so the
// process refuses to start rather than failing per request.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Environment overrides for containerized deploys
	if host := os.Getenv("DB_HOST"); host != "" {
		config.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		config.Database.Port, _ = strconv.Atoi(port)
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.JWT.Secret = secret
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT secret is not configured")
	}

	if err := envconfig.Process("", &config.Storage); err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	if err := envconfig.Process("", &config.SMTP); err != nil {
		return nil, fmt.Errorf("failed to load smtp config: %w", err)
	}

	return &config, nil
}
