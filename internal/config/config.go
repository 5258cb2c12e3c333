package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/aujren/auth-service/pkg/config"
)

// Config holds all configuration for the auth service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"AUTH_HTTP_PORT" envDefault:"8004"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"auth"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"auth_secret"`
	PostgresDB   string `env:"AUTH_DB_NAME" envDefault:"auth_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Token signing keys, base64-encoded PEM.
	PrivateKey string `env:"PRIVATE_KEY"`
	PublicKey  string `env:"PUBLIC_KEY"`

	// Token lifetimes
	AccessTokenExpiry  time.Duration `env:"ACCESS_TOKEN_EXPIRY" envDefault:"15m"`
	RefreshTokenExpiry time.Duration `env:"REFRESH_TOKEN_EXPIRY" envDefault:"168h"`

	// Issuer claim stamped on access tokens.
	TokenIssuer string `env:"TOKEN_ISSUER" envDefault:"auth-service"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Cookies
	SecureCookies bool `env:"SECURE_COOKIES" envDefault:"false"`

	// Tracing
	TracingEnabled    bool    `env:"OTEL_TRACING_ENABLED" envDefault:"false"`
	TracingOTLP       string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRate float64 `env:"OTEL_TRACING_SAMPLE_RATE" envDefault:"1.0"`

	// PostgreSQL pool tuning
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINS" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINS" envDefault:"30"`

	// pprof, CIDR allowlist. Empty disables the endpoints.
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load auth config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}

	// Signing keys have no usable default; require them everywhere. The
	// dev compose file ships a throwaway pair.
	if cfg.PrivateKey == "" || cfg.PublicKey == "" {
		return nil, fmt.Errorf("PRIVATE_KEY and PUBLIC_KEY must be set (base64-encoded PEM)")
	}

	if cfg.AccessTokenExpiry <= 0 {
		return nil, fmt.Errorf("invalid access token expiry: %s", cfg.AccessTokenExpiry)
	}
	if cfg.RefreshTokenExpiry <= 0 {
		return nil, fmt.Errorf("invalid refresh token expiry: %s", cfg.RefreshTokenExpiry)
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
