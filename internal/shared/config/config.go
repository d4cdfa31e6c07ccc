package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	PublicURL      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// External auth service
	AuthService AuthServiceConfig

	// Backend API
	Backend BackendConfig

	// Multi-step auth flows
	Flows FlowConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// File upload
	Upload UploadConfig

	// Logging
	LogLevel string

	// E-mail dispatch over Kafka
	Kafka KafkaConfig

	// CORS
	CORS CORSConfig

	// Hooks called by the auth service
	Hooks HooksConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	// TTL values for different operations
	ProfileTTL    time.Duration
	TokenCacheTTL time.Duration
}

// AuthServiceConfig describes the external authentication service
type AuthServiceConfig struct {
	BaseURL           string
	Timeout           time.Duration
	SessionCookieName string
	SocialProvider    string
}

// BackendConfig describes the backend API reached with bearer tokens
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// FlowConfig holds settings for sign-in/sign-up/reset flows
type FlowConfig struct {
	MaxResends int
	TTL        time.Duration
	LockTTL    time.Duration
	CookieName string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool          `json:"enabled"`
	WindowDuration  time.Duration `json:"window_duration"`
	DefaultRequests int           `json:"default_requests"`
	PublicRequests  int           `json:"public_requests"`
	AuthRequests    int           `json:"auth_requests"`
	ResendRequests  int           `json:"resend_requests"`
	ProfileRequests int           `json:"profile_requests"`
	HookRequests    int           `json:"hook_requests"`
	HealthRequests  int           `json:"health_requests"`
	WhitelistedIPs  []string      `json:"whitelisted_ips"`
}

// UploadConfig holds file upload configuration
type UploadConfig struct {
	MaxSize int64
}

// KafkaConfig holds Kafka producer configuration for e-mail dispatch
type KafkaConfig struct {
	Enabled    bool
	Brokers    []string
	EmailTopic string
	RetryMax   int
}

// HooksConfig protects the hook endpoints. An empty secret leaves them open.
type HooksConfig struct {
	Secret string
}

// CORSConfig holds allowed origins for the browser client
type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "3000"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		PublicURL:      getEnv("PUBLIC_URL", "http://localhost:3000"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		// Database configuration
		Database: DatabaseConfig{
			Enabled:  getBoolEnv("DB_ENABLED", true),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "authportal_db"),
			User:     getEnv("DB_USER", "authportal_user"),
			Password: getEnv("DB_PASSWORD", "authportal_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		// Redis configuration
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),

			ProfileTTL:    getDurationEnv("REDIS_PROFILE_TTL", 6*time.Hour),
			TokenCacheTTL: getDurationEnv("REDIS_TOKEN_CACHE_TTL", 10*time.Minute),
		},

		AuthService: AuthServiceConfig{
			BaseURL:           strings.TrimRight(getEnv("AUTH_SERVICE_URL", "http://localhost:4000/api/auth"), "/"),
			Timeout:           getDurationEnv("AUTH_SERVICE_TIMEOUT", 10*time.Second),
			SessionCookieName: getEnv("SESSION_COOKIE_NAME", "better-auth.session_token"),
			SocialProvider:    getEnv("SOCIAL_PROVIDER", "google"),
		},

		Backend: BackendConfig{
			BaseURL: strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:8080/api"), "/"),
			Timeout: getDurationEnv("BACKEND_TIMEOUT", 10*time.Second),
		},

		Flows: FlowConfig{
			MaxResends: getIntEnv("FLOW_MAX_RESENDS", 3),
			TTL:        getDurationEnv("FLOW_TTL", 30*time.Minute),
			LockTTL:    getDurationEnv("FLOW_LOCK_TTL", 30*time.Second),
			CookieName: getEnv("FLOW_COOKIE_NAME", "authportal_flow"),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:         getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:  getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests: getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			PublicRequests:  getIntEnv("RATE_LIMIT_PUBLIC_REQUESTS", 120),
			AuthRequests:    getIntEnv("RATE_LIMIT_AUTH_REQUESTS", 10),
			ResendRequests:  getIntEnv("RATE_LIMIT_RESEND_REQUESTS", 5),
			ProfileRequests: getIntEnv("RATE_LIMIT_PROFILE_REQUESTS", 30),
			HookRequests:    getIntEnv("RATE_LIMIT_HOOK_REQUESTS", 200),
			HealthRequests:  getIntEnv("RATE_LIMIT_HEALTH_REQUESTS", 300),
			WhitelistedIPs:  getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		// File upload
		Upload: UploadConfig{
			MaxSize: getInt64Env("MAX_UPLOAD_SIZE", 5*1024*1024), // 5 MB
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		Kafka: KafkaConfig{
			Enabled:    getBoolEnv("KAFKA_ENABLED", false),
			Brokers:    getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			EmailTopic: getEnv("KAFKA_EMAIL_TOPIC", "auth-emails"),
			RetryMax:   getIntEnv("KAFKA_RETRY_MAX", 3),
		},

		CORS: CORSConfig{
			AllowedOrigins: getStringSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},

		Hooks: HooksConfig{
			Secret: getEnv("HOOK_SECRET", ""),
		},
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getInt64Env gets an int64 environment variable with a fallback value
func getInt64Env(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
