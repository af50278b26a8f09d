package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	// Server
	Port            int           `mapstructure:"PORT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	// Database
	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DynamoDBTable  string `mapstructure:"DYNAMODB_TABLE"`

	// JWT
	JWTSecret           string        `mapstructure:"JWT_SECRET"`
	JWTExpiration       time.Duration `mapstructure:"JWT_EXPIRATION"`
	TeacherPasscodeHash string        `mapstructure:"TEACHER_PASSCODE_HASH"`

	// AWS
	AWSRegion string `mapstructure:"AWS_REGION"`

	// Games
	ImageFetchTimeout time.Duration `mapstructure:"IMAGE_FETCH_TIMEOUT"`
	SoundEnabled      bool          `mapstructure:"SOUND_ENABLED"`
	SoundVolume       float64       `mapstructure:"SOUND_VOLUME"`

	// Reports
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	ReportFrom   string `mapstructure:"REPORT_FROM"`
	ReportTo     string `mapstructure:"REPORT_TO"`
}

var keys = []string{
	"ENVIRONMENT", "LOG_LEVEL", "PORT", "SHUTDOWN_TIMEOUT",
	"DATABASE_DRIVER", "DATABASE_URL", "DYNAMODB_TABLE",
	"JWT_SECRET", "JWT_EXPIRATION", "TEACHER_PASSCODE_HASH",
	"AWS_REGION", "IMAGE_FETCH_TIMEOUT", "SOUND_ENABLED", "SOUND_VOLUME",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "REPORT_FROM", "REPORT_TO",
}

func Load() (*Config, error) {
	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables take precedence
	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", k, err)
		}
	}

	// Set defaults
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", 8080)
	v.SetDefault("SHUTDOWN_TIMEOUT", time.Second*30)
	v.SetDefault("DATABASE_DRIVER", "sqlite3")
	v.SetDefault("DATABASE_URL", "data/assessments.db")
	v.SetDefault("DYNAMODB_TABLE", "assessments")
	v.SetDefault("JWT_EXPIRATION", time.Hour*24*7)
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("IMAGE_FETCH_TIMEOUT", time.Second*30)
	v.SetDefault("SOUND_ENABLED", true)
	v.SetDefault("SOUND_VOLUME", 0.5)
	v.SetDefault("SMTP_PORT", 587)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	config.DatabaseDriver = strings.ToLower(config.DatabaseDriver)
	return config, nil
}

// ValidateServer checks the fields the library API cannot run without.
func (c *Config) ValidateServer() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.DatabaseDriver != "dynamodb" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for driver %s", c.DatabaseDriver)
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
