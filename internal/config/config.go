package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/joho/godotenv"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/apperrors"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Quote    QuoteConfig
	Refresh  RefreshConfig
	Export   ExportConfig
	Kafka    KafkaConfig
	Log      LogConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// QuoteConfig holds the quote provider configuration.
type QuoteConfig struct {
	Provider    string // "alphavantage" or "yahoo"
	APIKey      string
	BaseURL     string // overrides the provider's default host
	Interval    string // intraday series interval, e.g. "5min"
	Timeout     time.Duration
	Concurrency int
}

// RefreshConfig holds the price refresh scheduler configuration.
type RefreshConfig struct {
	Interval time.Duration
	Enabled  bool
}

// ExportConfig holds the PDF export configuration.
type ExportConfig struct {
	Dir string
}

// KafkaConfig holds the optional notification topic. Brokers is empty when disabled.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Format string // "json" or "console"
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Quote: QuoteConfig{
			Provider: strings.ToLower(getEnv("QUOTE_PROVIDER", "alphavantage")),
			BaseURL:  getEnv("QUOTE_BASE_URL", ""), // empty means the provider's public host
			Interval: getEnv("QUOTE_INTERVAL", "5min"),
		},
		Export: ExportConfig{
			Dir: getEnv("EXPORT_DIR", "./exports"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "portfolio-target-alerts"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	var err error
	if config.Quote.Timeout, err = getDuration("QUOTE_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if config.Quote.Concurrency, err = getInt("QUOTE_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if config.Refresh.Interval, err = getDuration("REFRESH_INTERVAL", 60*time.Second); err != nil {
		return nil, err
	}
	if config.Refresh.Interval <= 0 {
		return nil, fmt.Errorf("REFRESH_INTERVAL must be positive, got %s", config.Refresh.Interval)
	}
	if config.Refresh.Enabled, err = getBool("REFRESH_ENABLED", true); err != nil {
		return nil, err
	}

	config.Quote.APIKey, err = loadAPIKey()
	if err != nil {
		return nil, err
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// loadAPIKey returns QUOTE_API_KEY, decrypting it with SECRET_KEY when
// QUOTE_API_KEY_ENCRYPTED is set.
func loadAPIKey() (string, error) {
	key := strings.TrimSpace(os.Getenv("QUOTE_API_KEY"))
	encrypted, err := getBool("QUOTE_API_KEY_ENCRYPTED", false)
	if err != nil {
		return "", err
	}
	if !encrypted || key == "" {
		return key, nil
	}
	return DecryptAPIKey(key, os.Getenv("SECRET_KEY"))
}

// DecryptAPIKey decrypts a fernet token with the given base64 encoded fernet key.
func DecryptAPIKey(token, secret string) (string, error) {
	k, err := fernet.DecodeKey(strings.TrimSpace(secret))
	if err != nil {
		return "", fmt.Errorf("%w: invalid SECRET_KEY: %v", apperrors.ErrFailedToDecryptKey, err)
	}
	msg := fernet.VerifyAndDecrypt([]byte(token), 0, []*fernet.Key{k})
	if msg == nil {
		return "", apperrors.ErrFailedToDecryptKey
	}
	return string(msg), nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
