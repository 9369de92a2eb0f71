// Path: internal/config/config.go
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// ErrInvalidSigningKey is returned when JWT_SECRET_KEY is not valid base64 or too short for HS256.
var ErrInvalidSigningKey = errors.New("invalid jwt signing key")

const minSigningKeyLen = 32

type JWT struct {
	SecretKey         string        `envconfig:"JWT_SECRET_KEY" required:"true"`
	AccessExpiration  time.Duration `envconfig:"JWT_ACCESS_TOKEN_EXPIRATION" default:"15m"`
	RefreshExpiration time.Duration `envconfig:"JWT_REFRESH_TOKEN_EXPIRATION" default:"168h"`
}

type RateLimit struct {
	Max    int           `envconfig:"RATE_LIMIT_MAX" default:"20"`
	Window time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

type Config struct {
	Port             string `envconfig:"PORT" default:"3000"`
	DatabaseURL      string `envconfig:"DATABASE_URL" required:"true"`
	BcryptCost       int    `envconfig:"BCRYPT_COST" default:"10"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	CORSAllowOrigins string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000"`
	JWT              JWT
	RateLimit        RateLimit

	// SigningKey is the decoded JWT_SECRET_KEY.
	SigningKey []byte `ignored:"true"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using system environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	key, err := DecodeSigningKey(cfg.JWT.SecretKey)
	if err != nil {
		return nil, err
	}
	cfg.SigningKey = key

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	return &cfg, nil
}

// DecodeSigningKey accepts base64url or standard base64, padded or not.
func DecodeSigningKey(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidSigningKey)
	}
	encodings := []*base64.Encoding{
		base64.RawURLEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.StdEncoding,
	}
	for _, enc := range encodings {
		key, err := enc.DecodeString(encoded)
		if err != nil {
			continue
		}
		if len(key) < minSigningKeyLen {
			return nil, fmt.Errorf("%w: need at least %d bytes, got %d", ErrInvalidSigningKey, minSigningKeyLen, len(key))
		}
		return key, nil
	}
	return nil, fmt.Errorf("%w: not base64", ErrInvalidSigningKey)
}

// NewLogger builds the application logger.
func (c *Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// MaskDSN hides credentials for logging.
func MaskDSN(dsn string) string {
	if len(dsn) <= 6 {
		return "****"
	}
	return dsn[:2] + "****" + dsn[len(dsn)-4:]
}
