// Copyright 2026 The SeatGate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every variable, e.g. SEATGATE_SERVER_PORT.
const EnvPrefix = "SEATGATE"

// Supported storage backends
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig        `envconfig:"SERVER"`
	Database      DatabaseConfig      `envconfig:"DB"`
	Observability ObservabilityConfig `envconfig:"OTEL"`
	Log           LogConfig           `envconfig:"LOG"`
	RateLimit     RateLimitConfig     `envconfig:"RATELIMIT"`
	Operator      OperatorConfig      `envconfig:"OPERATOR"`
	Presence      PresenceConfig      `envconfig:"PRESENCE"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver          string        `envconfig:"DRIVER" default:"postgres"`
	Host            string        `envconfig:"HOST" default:"localhost"`
	Port            string        `envconfig:"PORT" default:"5432"`
	User            string        `envconfig:"USER" default:"seatgate"`
	Password        string        `envconfig:"PASSWORD"`
	Database        string        `envconfig:"NAME" default:"seatgate"`
	SSLMode         string        `envconfig:"SSLMODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"5m"`
	// SQLitePath is used when Driver is "sqlite".
	SQLitePath string `envconfig:"SQLITE_PATH" default:"./seatgate.sqlite"`
}

// ObservabilityConfig holds tracing and metrics configuration
type ObservabilityConfig struct {
	Enabled        bool    `envconfig:"ENABLED" default:"false"`
	MetricsEnabled bool    `envconfig:"METRICS_ENABLED" default:"true"`
	ServiceName    string  `envconfig:"SERVICE_NAME" default:"seatgate"`
	ServiceVersion string  `envconfig:"SERVICE_VERSION" default:"0.1.0"`
	Endpoint       string  `envconfig:"ENDPOINT"`
	Insecure       bool    `envconfig:"INSECURE" default:"false"`
	SamplingRate   float64 `envconfig:"SAMPLING_RATE" default:"1.0"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"`
}

// RateLimitConfig holds rate limiting configuration. The device-facing
// activation endpoints get their own, tighter budget.
type RateLimitConfig struct {
	RequestsPerSecond           float64 `envconfig:"RPS" default:"10"`
	Burst                       int     `envconfig:"BURST" default:"20"`
	ActivationRequestsPerSecond float64 `envconfig:"ACTIVATION_RPS" default:"1"`
	ActivationBurst             int     `envconfig:"ACTIVATION_BURST" default:"5"`
}

// OperatorConfig holds operator console authentication settings
type OperatorConfig struct {
	Username     string        `envconfig:"USERNAME" default:"admin"`
	PasswordHash string        `envconfig:"PASSWORD_HASH"`
	JWTSecret    string        `envconfig:"JWT_SECRET"`
	TokenTTL     time.Duration `envconfig:"TOKEN_TTL" default:"8h"`
	Issuer       string        `envconfig:"ISSUER" default:"seatgate"`
}

// PresenceConfig holds liveness settings
type PresenceConfig struct {
	OnlineThreshold time.Duration `envconfig:"ONLINE_THRESHOLD" default:"60s"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg, err := LoadRaw()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadRaw reads the environment without validating it. Maintenance
// commands that only touch the database validate what they use.
func LoadRaw() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}

	if len(c.Operator.JWTSecret) < 32 {
		return fmt.Errorf("%s_OPERATOR_JWT_SECRET must be at least 32 bytes", EnvPrefix)
	}
	if c.Operator.PasswordHash == "" {
		return fmt.Errorf("%s_OPERATOR_PASSWORD_HASH is required", EnvPrefix)
	}
	if c.Presence.OnlineThreshold <= 0 {
		return fmt.Errorf("%s_PRESENCE_ONLINE_THRESHOLD must be positive", EnvPrefix)
	}
	return nil
}

// Validate checks the settings of the selected driver
func (d DatabaseConfig) Validate() error {
	switch d.Driver {
	case DriverPostgres:
		if d.Password == "" {
			return fmt.Errorf("%s_DB_PASSWORD is required for the postgres driver", EnvPrefix)
		}
	case DriverSQLite:
		if d.SQLitePath == "" {
			return fmt.Errorf("%s_DB_SQLITE_PATH is required for the sqlite driver", EnvPrefix)
		}
	default:
		return fmt.Errorf("unsupported database driver %q", d.Driver)
	}
	return nil
}
