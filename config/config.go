// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	SecretKey     string        `mapstructure:"SECRET_KEY"`
	EmailPassword string        `mapstructure:"EMAIL_PASSWORD"`
	Env           string        `mapstructure:"APP_ENV"`
	Port          string        `mapstructure:"PORT"`
	DBDriver      string        `mapstructure:"DB_DRIVER"`
	DatabaseURL   string        `mapstructure:"DATABASE_URL"`
	SessionPath   string        `mapstructure:"SESSION_PATH"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`
	MailHost      string        `mapstructure:"MAIL_HOST"`
	MailPort      int           `mapstructure:"MAIL_PORT"`
	MailFrom      string        `mapstructure:"MAIL_FROM"`
	MailTo        string        `mapstructure:"MAIL_TO"`
	MailTimeout   time.Duration `mapstructure:"MAIL_TIMEOUT"`
	AdminIDs      string        `mapstructure:"ADMIN_IDS"`
	LogLevel      string        `mapstructure:"LOG_LEVEL"`
}

// LoadConfig reads .env (if present), config.yml (if present) and the process
// environment. It does not validate; call Validate before serving traffic.
func LoadConfig() (*Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "data/blog.db")
	v.SetDefault("SESSION_PATH", "data/sessions")
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("MAIL_HOST", "smtp.gmail.com")
	v.SetDefault("MAIL_PORT", 587)
	v.SetDefault("MAIL_FROM", "svitbands@gmail.com")
	v.SetDefault("MAIL_TO", "i.svit@yahoo.com")
	v.SetDefault("MAIL_TIMEOUT", "10s")
	v.SetDefault("ADMIN_IDS", "1")
	v.SetDefault("LOG_LEVEL", "info")
	// Unmarshal only sees keys viper knows about; secrets have no default.
	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("EMAIL_PASSWORD", "")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return &config, nil
}

// Validate ensures that values required to serve traffic are present.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY is required")
	}
	if c.EmailPassword == "" {
		return errors.New("EMAIL_PASSWORD is required")
	}
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}
	if c.IsProduction() && len(c.SecretKey) < 32 {
		return errors.New("SECRET_KEY must be at least 32 characters in production")
	}
	if c.MailTimeout <= 0 {
		return errors.New("MAIL_TIMEOUT must be positive")
	}
	if _, err := c.AdminUserIDs(); err != nil {
		return err
	}
	return nil
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// AdminUserIDs parses ADMIN_IDS, a comma-separated list of user ids.
func (c *Config) AdminUserIDs() ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(c.AdminIDs, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("ADMIN_IDS contains an invalid user id %q", part)
		}
		ids = append(ids, uint(id))
	}
	if len(ids) == 0 {
		return nil, errors.New("ADMIN_IDS must name at least one user id")
	}
	return ids, nil
}
