package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      *AppConfig      `yaml:"app"`
	Database *DatabaseConfig `yaml:"database"`
	Redis    *RedisConfig    `yaml:"redis"`
	Email    *EmailConfig    `yaml:"email"`
	Maps     *MapsConfig     `yaml:"maps"`
	Storage  *StorageConfig  `yaml:"storage"`
	Security *SecurityConfig `yaml:"security"`
}

type AppConfig struct {
	Name              string        `yaml:"name"`
	Version           string        `yaml:"version"`
	Environment       string        `yaml:"environment"`
	Port              int           `yaml:"port"`
	Host              string        `yaml:"host"`
	BaseURL           string        `yaml:"base_url"`
	Debug             bool          `yaml:"debug"`
	LogLevel          string        `yaml:"log_level"`
	LogFormat         string        `yaml:"log_format"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
	MaxResultsPerPage int           `yaml:"max_results_per_page"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

type SecurityConfig struct {
	JWTSecret          string        `yaml:"jwt_secret"`
	JWTExpiresIn       time.Duration `yaml:"jwt_expires_in"`
	BcryptCost         int           `yaml:"bcrypt_cost"`
	PasswordResetTTL   time.Duration `yaml:"password_reset_ttl"`
	RateLimitMax       int           `yaml:"rate_limit_max"`
	RateLimitWindow    time.Duration `yaml:"rate_limit_window"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
	TrustedProxies     []string      `yaml:"trusted_proxies"`
	AllowRoleOnSignup  bool          `yaml:"allow_role_on_signup"`
}

// Load reads config.env or .env when present and then builds the configuration
// from the process environment. Values already set in the environment win.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{"config.env", ".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return nil, err
			}
		}
	}

	config := &Config{
		App:      loadAppConfig(),
		Database: loadDatabaseConfig(),
		Redis:    loadRedisConfig(),
		Email:    loadEmailConfig(),
		Maps:     loadMapsConfig(),
		Storage:  loadStorageConfig(),
		Security: loadSecurityConfig(),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.Security.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.App.Environment == "production" && c.Security.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be changed in production")
	}
	if c.App.MaxResultsPerPage < 1 {
		return errors.New("MAX_RESULTS_PER_PAGE must be positive")
	}
	return nil
}

const defaultJWTSecret = "change-me-in-production-please"

func loadAppConfig() *AppConfig {
	return &AppConfig{
		Name:              getEnv("APP_NAME", "Tourbook"),
		Version:           getEnv("APP_VERSION", "1.0.0"),
		Environment:       getEnv("NODE_ENV", getEnv("APP_ENV", "development")),
		Port:              getEnvAsInt("PORT", 3001),
		Host:              getEnv("APP_HOST", "0.0.0.0"),
		BaseURL:           getEnv("APP_BASE_URL", "http://localhost:3001"),
		Debug:             getEnvAsBool("APP_DEBUG", false),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		MaxBodyBytes:      int64(getEnvAsInt("MAX_BODY_BYTES", 10*1024)),
		MaxResultsPerPage: getEnvAsInt("MAX_RESULTS_PER_PAGE", 100),
		ShutdownTimeout:   getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		JWTSecret:          getEnv("JWT_SECRET", defaultJWTSecret),
		JWTExpiresIn:       getEnvAsDuration("JWT_EXPIRES_IN", 90*24*time.Hour),
		BcryptCost:         getEnvAsInt("BCRYPT_COST", 12),
		PasswordResetTTL:   getEnvAsDuration("PASSWORD_RESET_TTL", 10*time.Minute),
		RateLimitMax:       getEnvAsInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow:    getEnvAsDuration("RATE_LIMIT_WINDOW", time.Hour),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		AllowRoleOnSignup:  getEnvAsBool("ALLOW_ROLE_ON_SIGNUP", false),
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90m") and the "<n>d" day suffix used
// by JWT_EXPIRES_IN in existing deployments.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if strings.HasSuffix(value, "d") {
		if days, err := strconv.Atoi(strings.TrimSuffix(value, "d")); err == nil {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return defaultValue
}
