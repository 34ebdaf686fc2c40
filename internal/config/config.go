package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Review   ReviewConfig
	Dispatch DispatchConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
	Logger   LoggerConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type StoreConfig struct {
	// Driver is "postgres" or "memory".
	Driver  string
	Timeout time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Migrate         bool
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type ReviewConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

type DispatchConfig struct {
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	// Fanout bounds concurrent reviewer notices for one upload.
	Fanout int
}

type AuthConfig struct {
	JWTSecret string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Timeout  time.Duration
}

func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

type LoggerConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("STORE_DRIVER", "postgres")
	v.SetDefault("STORE_TIMEOUT", "5s")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "postgres")
	v.SetDefault("DATABASE_NAME", "art_archive")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 20)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 2)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DATABASE_MIGRATE", true)
	v.SetDefault("REVIEW_DEFAULT_PAGE_SIZE", 20)
	v.SetDefault("REVIEW_MAX_PAGE_SIZE", 100)
	v.SetDefault("DISPATCH_TIMEOUT", "5s")
	v.SetDefault("DISPATCH_MAX_ATTEMPTS", 4)
	v.SetDefault("DISPATCH_INITIAL_BACKOFF", "200ms")
	v.SetDefault("DISPATCH_FANOUT", 4)
	v.SetDefault("AUTH_JWT_SECRET", "")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "")
	v.SetDefault("SMTP_TIMEOUT", "10s")
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Store: StoreConfig{
			Driver:  v.GetString("STORE_DRIVER"),
			Timeout: duration(v, "STORE_TIMEOUT", 5*time.Second),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DATABASE_HOST"),
			Port:            v.GetInt("DATABASE_PORT"),
			User:            v.GetString("DATABASE_USER"),
			Password:        v.GetString("DATABASE_PASSWORD"),
			Name:            v.GetString("DATABASE_NAME"),
			SSLMode:         v.GetString("DATABASE_SSLMODE"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: duration(v, "DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
			Migrate:         v.GetBool("DATABASE_MIGRATE"),
		},
		Review: ReviewConfig{
			DefaultPageSize: v.GetInt("REVIEW_DEFAULT_PAGE_SIZE"),
			MaxPageSize:     v.GetInt("REVIEW_MAX_PAGE_SIZE"),
		},
		Dispatch: DispatchConfig{
			Timeout:        duration(v, "DISPATCH_TIMEOUT", 5*time.Second),
			MaxAttempts:    v.GetInt("DISPATCH_MAX_ATTEMPTS"),
			InitialBackoff: duration(v, "DISPATCH_INITIAL_BACKOFF", 200*time.Millisecond),
			Fanout:         v.GetInt("DISPATCH_FANOUT"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("AUTH_JWT_SECRET"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
			Timeout:  duration(v, "SMTP_TIMEOUT", 10*time.Second),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	if c.Review.DefaultPageSize <= 0 || c.Review.MaxPageSize < c.Review.DefaultPageSize {
		return fmt.Errorf("invalid review page sizes: default=%d max=%d", c.Review.DefaultPageSize, c.Review.MaxPageSize)
	}
	if c.Dispatch.MaxAttempts <= 0 {
		return fmt.Errorf("DISPATCH_MAX_ATTEMPTS must be positive")
	}
	if c.Dispatch.Fanout <= 0 {
		c.Dispatch.Fanout = 1
	}
	return nil
}

func duration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
