package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	LocalStore    LocalStoreConfig    `mapstructure:"local_store"`
	DocumentStore DocumentStoreConfig `mapstructure:"document_store"`
	Identity      IdentityConfig      `mapstructure:"identity"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Logger        LoggerConfig        `mapstructure:"logger"`
	Security      SecurityConfig      `mapstructure:"security"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// LocalStoreConfig holds configuration for the on-device SQLite store.
// Tasks and the theme preference live here.
type LocalStoreConfig struct {
	Path string `mapstructure:"path"`
}

// DocumentStoreConfig holds configuration for the remote document store
type DocumentStoreConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// IdentityConfig holds identity provider configuration
type IdentityConfig struct {
	TokenSecret    string        `mapstructure:"token_secret"`
	TokenExpiresIn time.Duration `mapstructure:"token_expires_in"`
	Issuer         string        `mapstructure:"issuer"`
}

// NotificationsConfig holds notification scheduler configuration
type NotificationsConfig struct {
	Alert bool `mapstructure:"alert"`
	Sound bool `mapstructure:"sound"`
	Badge bool `mapstructure:"badge"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"`
	RateLimitRequests  int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow    time.Duration `mapstructure:"rate_limit_window"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load loads configuration from various sources
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()
	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "planner-core")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.debug", false)

	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// Local store defaults
	viper.SetDefault("local_store.path", "planner.db")

	// Document store defaults
	viper.SetDefault("document_store.host", "localhost")
	viper.SetDefault("document_store.port", 5432)
	viper.SetDefault("document_store.name", "planner")
	viper.SetDefault("document_store.user", "postgres")
	viper.SetDefault("document_store.password", "")
	viper.SetDefault("document_store.ssl_mode", "disable")
	viper.SetDefault("document_store.max_open_conns", 10)
	viper.SetDefault("document_store.max_idle_conns", 5)
	viper.SetDefault("document_store.conn_max_lifetime", "5m")

	// Identity defaults
	viper.SetDefault("identity.token_secret", "change-me")
	viper.SetDefault("identity.token_expires_in", "24h")
	viper.SetDefault("identity.issuer", "planner-core")

	// Notification defaults
	viper.SetDefault("notifications.alert", true)
	viper.SetDefault("notifications.sound", true)
	viper.SetDefault("notifications.badge", true)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "json")
	viper.SetDefault("logger.output", "stdout")

	// Security defaults
	viper.SetDefault("security.cors_allowed_origins", "*")
	viper.SetDefault("security.rate_limit_requests", 100)
	viper.SetDefault("security.rate_limit_window", "1m")

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
}

func bindEnvVars() {
	// App
	viper.BindEnv("app.name", "APP_NAME")
	viper.BindEnv("app.version", "APP_VERSION")
	viper.BindEnv("app.environment", "APP_ENVIRONMENT")
	viper.BindEnv("app.debug", "APP_DEBUG")

	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.host", "SERVER_HOST")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")
	viper.BindEnv("server.idle_timeout", "SERVER_IDLE_TIMEOUT")

	// Local store
	viper.BindEnv("local_store.path", "LOCAL_STORE_PATH")

	// Document store
	viper.BindEnv("document_store.host", "DOC_STORE_HOST")
	viper.BindEnv("document_store.port", "DOC_STORE_PORT")
	viper.BindEnv("document_store.name", "DOC_STORE_NAME")
	viper.BindEnv("document_store.user", "DOC_STORE_USER")
	viper.BindEnv("document_store.password", "DOC_STORE_PASSWORD")
	viper.BindEnv("document_store.ssl_mode", "DOC_STORE_SSL_MODE")
	viper.BindEnv("document_store.max_open_conns", "DOC_STORE_MAX_OPEN_CONNS")
	viper.BindEnv("document_store.max_idle_conns", "DOC_STORE_MAX_IDLE_CONNS")
	viper.BindEnv("document_store.conn_max_lifetime", "DOC_STORE_CONN_MAX_LIFETIME")

	// Identity
	viper.BindEnv("identity.token_secret", "IDENTITY_TOKEN_SECRET")
	viper.BindEnv("identity.token_expires_in", "IDENTITY_TOKEN_EXPIRES_IN")
	viper.BindEnv("identity.issuer", "IDENTITY_ISSUER")

	// Notifications
	viper.BindEnv("notifications.alert", "NOTIFY_ALERT")
	viper.BindEnv("notifications.sound", "NOTIFY_SOUND")
	viper.BindEnv("notifications.badge", "NOTIFY_BADGE")

	// Logger
	viper.BindEnv("logger.level", "LOG_LEVEL")
	viper.BindEnv("logger.format", "LOG_FORMAT")
	viper.BindEnv("logger.output", "LOG_OUTPUT")

	// Security
	viper.BindEnv("security.cors_allowed_origins", "CORS_ALLOWED_ORIGINS")
	viper.BindEnv("security.rate_limit_requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("security.rate_limit_window", "RATE_LIMIT_WINDOW")

	// Metrics
	viper.BindEnv("metrics.enabled", "ENABLE_METRICS")
}

func validateConfig(cfg *Config) error {
	if cfg.LocalStore.Path == "" {
		return fmt.Errorf("local store path is required")
	}

	if cfg.DocumentStore.Host == "" {
		return fmt.Errorf("document store host is required")
	}

	if cfg.DocumentStore.Name == "" {
		return fmt.Errorf("document store name is required")
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	return nil
}

// GetDSN returns the document store connection string
func (cfg *DocumentStoreConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
}

// AuthorizationOptions derives the notification permission request options
func (cfg *NotificationsConfig) AuthorizationOptions() (alert, sound, badge bool) {
	return cfg.Alert, cfg.Sound, cfg.Badge
}

// IsDevelopment returns true if the environment is development
func (cfg *AppConfig) IsDevelopment() bool {
	return cfg.Environment == "development"
}

// IsProduction returns true if the environment is production
func (cfg *AppConfig) IsProduction() bool {
	return cfg.Environment == "production"
}
