package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// Cart store drivers
const (
	CartStoreFile     = "file"
	CartStorePostgres = "postgres"
	CartStoreMemory   = "memory"
)

// DBConfig holds database configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// CatalogConfig describes where the product catalog is fetched from
type CatalogConfig struct {
	Source         string
	Timeout        time.Duration
	PageSize       int
	SearchDebounce time.Duration
}

// IsRemote reports whether the catalog source is an HTTP(S) URL
func (c *CatalogConfig) IsRemote() bool {
	return strings.HasPrefix(c.Source, "http://") || strings.HasPrefix(c.Source, "https://")
}

// CartConfig holds cart persistence configuration
type CartConfig struct {
	Store string
	Dir   string
	Slot  string
}

// CheckoutConfig holds the order hand-off target
type CheckoutConfig struct {
	BaseURL   string
	Recipient string
}

// Config holds all configuration
type Config struct {
	ServiceName string
	DB          DBConfig
	Server      ServerConfig
	Log         LogConfig
	Metrics     MetricsConfig
	Catalog     CatalogConfig
	Cart        CartConfig
	Checkout    CheckoutConfig
}

// Load loads configuration from the environment, reading a .env file first if one exists
func Load(serviceName string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	return FromEnv(serviceName)
}

// FromEnv builds the configuration from environment variables only
func FromEnv(serviceName string) (*Config, error) {
	config := &Config{
		ServiceName: serviceName,
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", serviceName),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", metricsPrefix(serviceName)),
		},
		Catalog: CatalogConfig{
			Source:         getEnv("CATALOG_SOURCE", "oil_shop_complete.json"),
			Timeout:        getEnvAsDuration("CATALOG_TIMEOUT", 10*time.Second),
			PageSize:       getEnvAsInt("PAGE_SIZE", 12),
			SearchDebounce: getEnvAsDuration("SEARCH_DEBOUNCE", 300*time.Millisecond),
		},
		Cart: CartConfig{
			Store: strings.ToLower(getEnv("CART_STORE", CartStoreFile)),
			Dir:   getEnv("CART_DIR", "data"),
			Slot:  getEnv("CART_SLOT", "cart"),
		},
		Checkout: CheckoutConfig{
			BaseURL:   getEnv("CHECKOUT_BASE_URL", "https://wa.me"),
			Recipient: getEnv("CHECKOUT_RECIPIENT", "201019388501"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	switch c.Cart.Store {
	case CartStoreFile, CartStorePostgres, CartStoreMemory:
	default:
		return fmt.Errorf("unsupported CART_STORE %q", c.Cart.Store)
	}
	if c.Catalog.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.Catalog.PageSize)
	}
	if c.Cart.Slot == "" {
		return fmt.Errorf("CART_SLOT must not be empty")
	}
	return nil
}

// LogConfig returns the configuration as zap fields
func (c *Config) LogConfig() []zap.Field {
	fields := []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("server_port", c.Server.Port),
		zap.String("catalog_source", c.Catalog.Source),
		zap.Int("page_size", c.Catalog.PageSize),
		zap.String("cart_store", c.Cart.Store),
		zap.String("cart_slot", c.Cart.Slot),
	}
	if c.Cart.Store == CartStorePostgres {
		fields = append(fields,
			zap.String("db_host", c.DB.Host),
			zap.String("db_port", c.DB.Port),
			zap.String("db_user", c.DB.User),
			zap.String("db_name", c.DB.DBName),
		)
	}
	return fields
}

// prometheus metric names only allow [a-zA-Z0-9_:]
func metricsPrefix(serviceName string) string {
	return strings.ReplaceAll(serviceName, "-", "_")
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as log levels
func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	valueStr := getEnv(key, "")
	switch valueStr {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
