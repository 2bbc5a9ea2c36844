// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the storefront
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Backend  BackendConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Codec    CodecConfig
	Identity IdentityConfig
	Security SecurityConfig
	Upload   UploadConfig
	Receipt  ReceiptConfig
	Logging  LoggingConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	CookieSecure   bool
	CookieMaxAge   int
}

// BackendConfig describes the REST backend the storefront consumes
type BackendConfig struct {
	BaseURL         string
	Timeout         time.Duration
	Tracing         bool
	MaxResponseSize int64
}

// StorageConfig selects the persistence driver for visitor state
type StorageConfig struct {
	Driver    string // redis, postgres, memory
	KeyPrefix string
	TTL       time.Duration
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// CodecConfig configures the image payload cipher
type CodecConfig struct {
	Passphrase       string
	KDF              string // evp, pbkdf2
	PBKDF2Iterations int
	PlaceholderImage string
}

// IdentityConfig selects the customer identifier scheme
type IdentityConfig struct {
	Scheme string // uuid, legacy
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	PasswordMinLength  int
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	TrustedProxies     []string
}

// UploadConfig contains product image upload limits
type UploadConfig struct {
	MaxSize      int64
	AllowedTypes []string
}

// ReceiptConfig contains the shop details printed on receipts
type ReceiptConfig struct {
	ShopName    string
	ShopAddress string
	Currency    string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "BrewFlow Storefront"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
		},
		Server: ServerConfig{
			Port:           getEnv("APP_PORT", "3000"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout: getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
			CookieSecure:   getEnvAsBool("COOKIE_SECURE", false),
			CookieMaxAge:   getEnvAsInt("COOKIE_MAX_AGE", 365*24*60*60),
		},
		Backend: BackendConfig{
			BaseURL: getEnv("API_URL", "http://localhost:5000"),
			Timeout: getEnvAsDuration("BACKEND_TIMEOUT", 15*time.Second),
			Tracing: getEnvAsBool("BACKEND_TRACING", false),
			// the catalog inlines every encrypted image
			MaxResponseSize: getEnvAsInt64("BACKEND_MAX_RESPONSE", 256<<20),
		},
		Storage: StorageConfig{
			Driver:    getEnv("STORAGE_DRIVER", "redis"),
			KeyPrefix: getEnv("STORAGE_KEY_PREFIX", "brewflow"),
			TTL:       getEnvAsDuration("STORAGE_TTL", 0),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "brewflow"),
			User:         getEnv("DB_USER", "brewflow"),
			Password:     getEnv("DB_PASSWORD", "brewflow"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 300*time.Second),
		},
		Codec: CodecConfig{
			// Shared with every deployed client; see DESIGN.md.
			Passphrase:       getEnv("IMAGE_CODEC_PASSPHRASE", "GwapoAdminSine2"),
			KDF:              getEnv("IMAGE_CODEC_KDF", "evp"),
			PBKDF2Iterations: getEnvAsInt("IMAGE_CODEC_PBKDF2_ITERATIONS", 10000),
			PlaceholderImage: getEnv("IMAGE_PLACEHOLDER_URL", "/static/placeholder-coffee.png"),
		},
		Identity: IdentityConfig{
			Scheme: getEnv("IDENTITY_SCHEME", "uuid"),
		},
		Security: SecurityConfig{
			PasswordMinLength:  getEnvAsInt("PASSWORD_MIN_LENGTH", 6),
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization"}),
			TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		},
		Upload: UploadConfig{
			MaxSize:      getEnvAsInt64("UPLOAD_MAX_SIZE", 5<<20), // 5MB
			AllowedTypes: getEnvAsSlice("UPLOAD_ALLOWED_TYPES", []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif"}),
		},
		Receipt: ReceiptConfig{
			ShopName:    getEnv("SHOP_NAME", "BrewFlow Coffee"),
			ShopAddress: getEnv("SHOP_ADDRESS", ""),
			Currency:    getEnv("SHOP_CURRENCY", "₱"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "debug"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_URL must be an absolute URL, got %q", c.Backend.BaseURL)
	}

	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}

	// an encrypted image is roughly twice its upload size
	if c.Backend.MaxResponseSize < 2*c.Upload.MaxSize {
		return fmt.Errorf("BACKEND_MAX_RESPONSE must be at least twice UPLOAD_MAX_SIZE")
	}

	if c.Codec.Passphrase == "" {
		return fmt.Errorf("IMAGE_CODEC_PASSPHRASE is required")
	}

	switch c.Codec.KDF {
	case "evp", "pbkdf2":
	default:
		return fmt.Errorf("IMAGE_CODEC_KDF must be one of evp, pbkdf2")
	}

	switch c.Storage.Driver {
	case "redis":
		if c.Redis.Host == "" {
			return fmt.Errorf("REDIS_HOST is required")
		}
	case "postgres":
		if c.Database.Host == "" || c.Database.Name == "" || c.Database.User == "" {
			return fmt.Errorf("DB_HOST, DB_NAME and DB_USER are required for the postgres driver")
		}
	case "memory":
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of redis, postgres, memory")
	}

	switch c.Identity.Scheme {
	case "uuid", "legacy":
	default:
		return fmt.Errorf("IDENTITY_SCHEME must be one of uuid, legacy")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
