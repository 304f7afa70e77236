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

// Store drivers understood by the storage layer
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// DefaultJWTSigningKey is the development signing key; production refuses it
const DefaultJWTSigningKey = "defaultsecretkey"

// DBConfig holds database configuration
type DBConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
	// MongoURI must reach a replica set or mongos router; a standalone
	// mongod cannot run transactions and is rejected at startup
	MongoURI        string
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

// RedisConfig holds redis configuration. An empty Addr disables redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a redis server is configured
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Env             string
	ShutdownTimeout time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
}

// SessionConfig holds session cookie configuration
type SessionConfig struct {
	CookieName string
	Secure     bool
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// AIConfig holds configuration for the text-generation API
type AIConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// ShopConfig holds storefront pricing rules
type ShopConfig struct {
	FreeShippingThreshold int64
	ShippingFee           int64
	SeedOnStart           bool
}

// AdminConfig names the admin account created by seeding. An empty Email
// or Password skips it.
type AdminConfig struct {
	Email    string
	Name     string
	Password string
}

// Config holds all configuration
type Config struct {
	ServiceName string
	DB          DBConfig
	Redis       RedisConfig
	Server      ServerConfig
	JWT         JWTConfig
	Session     SessionConfig
	Log         LogConfig
	Metrics     MetricsConfig
	AI          AIConfig
	Shop        ShopConfig
	Admin       AdminConfig
}

// Load loads configuration from environment variables, reading envFiles
// (or .env when none are given) first if they exist
func Load(serviceName string, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		// .env is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	config := &Config{
		ServiceName: serviceName,
		DB: DBConfig{
			Driver:          strings.ToLower(getEnv("STORE_DRIVER", DriverMemory)),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", serviceName),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			SQLitePath:      getEnv("SQLITE_PATH", serviceName+".db"),
			MongoURI:        getEnv("MONGODB_URI", "mongodb://localhost:27017/"+serviceName+"?replicaSet=rs0"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("APP_ENV", "development"),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", DefaultJWTSigningKey),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Session: SessionConfig{
			CookieName: getEnv("SESSION_COOKIE_NAME", "trendhive_session"),
			Secure:     getEnvAsBool("SESSION_COOKIE_SECURE", false),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", serviceName),
		},
		AI: AIConfig{
			APIKey:   getEnv("OPENAI_API_KEY", ""),
			BaseURL:  getEnv("OPENAI_BASE_URL", ""),
			Model:    getEnv("OPENAI_MODEL", "gpt-4o"),
			Timeout:  getEnvAsDuration("AI_TIMEOUT", 15*time.Second),
			CacheTTL: getEnvAsDuration("AI_TREND_CACHE_TTL", 10*time.Minute),
		},
		Shop: ShopConfig{
			FreeShippingThreshold: int64(getEnvAsInt("SHOP_FREE_SHIPPING_THRESHOLD", 10000)),
			ShippingFee:           int64(getEnvAsInt("SHOP_SHIPPING_FEE", 599)),
			SeedOnStart:           getEnvAsBool("SHOP_SEED_ON_START", true),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Name:     getEnv("ADMIN_NAME", "Administrator"),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverMemory, DriverPostgres, DriverSQLite, DriverMongo:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.DB.Driver)
	}
	if c.Shop.FreeShippingThreshold < 0 || c.Shop.ShippingFee < 0 {
		return fmt.Errorf("shipping amounts must not be negative")
	}
	if c.IsProduction() && (c.JWT.SigningKey == "" || c.JWT.SigningKey == DefaultJWTSigningKey) {
		return fmt.Errorf("JWT_SIGNING_KEY must be set to a non-default value in production")
	}
	if c.JWT.ExpirationHours <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("store_driver", c.DB.Driver),
		zap.String("db_host", c.DB.Host),
		zap.String("db_name", c.DB.DBName),
		zap.Bool("redis_enabled", c.Redis.Enabled()),
		zap.Bool("ai_enabled", c.AI.APIKey != ""),
		zap.String("ai_model", c.AI.Model),
		zap.String("server_port", c.Server.Port),
	}
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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
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
