package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	OTel     OTelConfig     `mapstructure:"otel"`
	Purchase PurchaseConfig `mapstructure:"purchase"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // development, staging, production
	Debug       bool   `mapstructure:"debug"`
	Version     string `mapstructure:"version"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the Redis address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ServiceName   string `mapstructure:"service_name"`
	CollectorAddr string `mapstructure:"collector_addr"`
}

// PurchaseConfig holds allocation transaction settings
type PurchaseConfig struct {
	// TransactionTimeout bounds the purchase allocation transaction; on
	// expiry the transaction aborts with no partial state.
	TransactionTimeout time.Duration `mapstructure:"transaction_timeout"`
}

// MonitorConfig holds passive monitor thresholds and buffering
type MonitorConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// BufferSize is the capacity of the after-commit event channel; when the
	// buffer is full events are dropped rather than delaying purchases.
	BufferSize int `mapstructure:"buffer_size"`
	// UserPurchasesPerHour flags a user exceeding this many purchases in a
	// rolling hour (0 disables)
	UserPurchasesPerHour int `mapstructure:"user_purchases_per_hour"`
	// DealPurchasesPerMinute flags a deal exceeding this many purchases in a
	// rolling minute (0 disables)
	DealPurchasesPerMinute int `mapstructure:"deal_purchases_per_minute"`
	// UserFailedPaymentsPerHour flags a user exceeding this many failed
	// payment attempts in a rolling hour (0 disables)
	UserFailedPaymentsPerHour int `mapstructure:"user_failed_payments_per_hour"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")

	// .env is optional; environment variables may carry everything.
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{}
	bindConfig(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadWithPath loads configuration from a specific env file path
func LoadWithPath(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{}
	bindConfig(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("APP_NAME", "lakedirectory-deals")
	v.SetDefault("APP_ENVIRONMENT", "development")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("APP_VERSION", "1.0.0")

	// Server defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "30s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "120s")

	// Database defaults
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "postgres")
	v.SetDefault("DATABASE_DBNAME", "lakedirectory")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_CONNS", 25)
	v.SetDefault("DATABASE_MIN_CONNS", 5)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("DATABASE_CONN_MAX_IDLE_TIME", "30m")

	// Redis defaults
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 50)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 5)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_READ_TIMEOUT", "3s")
	v.SetDefault("REDIS_WRITE_TIMEOUT", "3s")

	// JWT defaults
	v.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	v.SetDefault("JWT_ISSUER", "lakedirectory")

	// OTel defaults
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "lakedirectory-deals")
	v.SetDefault("OTEL_COLLECTOR_ADDR", "localhost:4317")

	// Purchase defaults
	v.SetDefault("PURCHASE_TRANSACTION_TIMEOUT", "10s")

	// Monitor defaults
	v.SetDefault("MONITOR_ENABLED", true)
	v.SetDefault("MONITOR_BUFFER_SIZE", 1024)
	v.SetDefault("MONITOR_USER_PURCHASES_PER_HOUR", 10)
	v.SetDefault("MONITOR_DEAL_PURCHASES_PER_MINUTE", 60)
	v.SetDefault("MONITOR_USER_FAILED_PAYMENTS_PER_HOUR", 5)
}

func bindConfig(v *viper.Viper, cfg *Config) {
	// App
	cfg.App.Name = v.GetString("APP_NAME")
	cfg.App.Environment = v.GetString("APP_ENVIRONMENT")
	cfg.App.Debug = v.GetBool("APP_DEBUG")
	cfg.App.Version = v.GetString("APP_VERSION")

	// Server
	cfg.Server.Host = v.GetString("SERVER_HOST")
	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.Server.ReadTimeout = v.GetDuration("SERVER_READ_TIMEOUT")
	cfg.Server.WriteTimeout = v.GetDuration("SERVER_WRITE_TIMEOUT")
	cfg.Server.IdleTimeout = v.GetDuration("SERVER_IDLE_TIMEOUT")

	// Database
	cfg.Database.Host = v.GetString("DATABASE_HOST")
	cfg.Database.Port = v.GetInt("DATABASE_PORT")
	cfg.Database.User = v.GetString("DATABASE_USER")
	cfg.Database.Password = v.GetString("DATABASE_PASSWORD")
	cfg.Database.DBName = v.GetString("DATABASE_DBNAME")
	cfg.Database.SSLMode = v.GetString("DATABASE_SSLMODE")
	cfg.Database.MaxConns = v.GetInt("DATABASE_MAX_CONNS")
	cfg.Database.MinConns = v.GetInt("DATABASE_MIN_CONNS")
	cfg.Database.ConnMaxLifetime = v.GetDuration("DATABASE_CONN_MAX_LIFETIME")
	cfg.Database.ConnMaxIdleTime = v.GetDuration("DATABASE_CONN_MAX_IDLE_TIME")

	// Redis
	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetInt("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	cfg.Redis.MinIdleConns = v.GetInt("REDIS_MIN_IDLE_CONNS")
	cfg.Redis.DialTimeout = v.GetDuration("REDIS_DIAL_TIMEOUT")
	cfg.Redis.ReadTimeout = v.GetDuration("REDIS_READ_TIMEOUT")
	cfg.Redis.WriteTimeout = v.GetDuration("REDIS_WRITE_TIMEOUT")

	// JWT
	cfg.JWT.Secret = v.GetString("JWT_SECRET")
	cfg.JWT.Issuer = v.GetString("JWT_ISSUER")

	// OTel
	cfg.OTel.Enabled = v.GetBool("OTEL_ENABLED")
	cfg.OTel.ServiceName = v.GetString("OTEL_SERVICE_NAME")
	cfg.OTel.CollectorAddr = v.GetString("OTEL_COLLECTOR_ADDR")

	// Purchase
	cfg.Purchase.TransactionTimeout = v.GetDuration("PURCHASE_TRANSACTION_TIMEOUT")

	// Monitor
	cfg.Monitor.Enabled = v.GetBool("MONITOR_ENABLED")
	cfg.Monitor.BufferSize = v.GetInt("MONITOR_BUFFER_SIZE")
	cfg.Monitor.UserPurchasesPerHour = v.GetInt("MONITOR_USER_PURCHASES_PER_HOUR")
	cfg.Monitor.DealPurchasesPerMinute = v.GetInt("MONITOR_DEAL_PURCHASES_PER_MINUTE")
	cfg.Monitor.UserFailedPaymentsPerHour = v.GetInt("MONITOR_USER_FAILED_PAYMENTS_PER_HOUR")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if c.App.Environment == "production" && c.JWT.Secret == "your-secret-key-change-in-production" {
		return fmt.Errorf("JWT secret must be changed in production")
	}

	if c.Purchase.TransactionTimeout <= 0 {
		return fmt.Errorf("purchase transaction timeout must be positive")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
