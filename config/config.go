package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	App      AppConfig
	AI       AIConfig
	Auth     AuthConfig
	Firebase FirebaseConfig
	Publish  PublishConfig

	// Warnings collects values that could not be parsed and fell back to defaults.
	Warnings []string
}

type ServerConfig struct {
	Port            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	// Driver forces a storage backend: "memory", "postgres" or empty for auto.
	Driver       string
	MaxOpenConns int
}

type RedisConfig struct {
	URL string
}

type AppConfig struct {
	ServiceName string
	Environment string
	LogLevel    string
	Version     string
}

type AIConfig struct {
	APIKey    string
	Model     string
	RateLimit float64
	Burst     int
	Timeout   time.Duration
}

type AuthConfig struct {
	IssuerURL     string
	ClientID      string
	ClientSecret  string
	RedirectURL   string
	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool
}

type FirebaseConfig struct {
	CredentialsPath string
}

type PublishConfig struct {
	Bucket  string
	Region  string
	BaseURL string
}

var placeholderKeys = map[string]bool{
	"dummy_key":                true,
	"your_gemini_api_key_here": true,
}

func Load() (*Config, error) {
	// .env is optional; the process environment always wins
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Server = ServerConfig{
		Port:            getEnv("PORT", "5000"),
		AllowedOrigins:  cfg.getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:5000"}),
		ShutdownTimeout: cfg.getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
	cfg.Database = DatabaseConfig{
		URL:          getEnv("DATABASE_URL", ""),
		Host:         getEnv("DB_HOST", ""),
		Port:         cfg.getEnvAsInt("DB_PORT", 5432),
		User:         getEnv("DB_USER", "postgres"),
		Password:     getEnv("DB_PASSWORD", ""),
		Name:         getEnv("DB_NAME", "aibuilder"),
		Driver:       strings.ToLower(getEnv("STORAGE_DRIVER", "")),
		MaxOpenConns: cfg.getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
	}
	cfg.Redis = RedisConfig{
		URL: getEnv("REDIS_URL", ""),
	}
	cfg.App = AppConfig{
		ServiceName: getEnv("SERVICE_NAME", "aibuilder-backend"),
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Version:     getEnv("APP_VERSION", "1.0.0"),
	}
	cfg.AI = AIConfig{
		APIKey:    getEnv("GEMINI_API_KEY", ""),
		Model:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		RateLimit: cfg.getEnvAsFloat("AI_RATE_LIMIT", 2),
		Burst:     cfg.getEnvAsInt("AI_RATE_BURST", 4),
		Timeout:   cfg.getEnvAsDuration("AI_TIMEOUT", 60*time.Second),
	}
	cfg.Auth = AuthConfig{
		IssuerURL:     getEnv("ISSUER_URL", ""),
		ClientID:      getEnv("OIDC_CLIENT_ID", ""),
		ClientSecret:  getEnv("OIDC_CLIENT_SECRET", ""),
		RedirectURL:   getEnv("OIDC_REDIRECT_URL", ""),
		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionTTL:    cfg.getEnvAsDuration("SESSION_TTL", 7*24*time.Hour),
		CookieSecure:  cfg.getEnvAsBool("SESSION_COOKIE_SECURE", false),
	}
	cfg.Firebase = FirebaseConfig{
		CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
	}
	cfg.Publish = PublishConfig{
		Bucket:  getEnv("PUBLISH_BUCKET", ""),
		Region:  getEnv("AWS_REGION", "us-east-1"),
		BaseURL: strings.TrimRight(getEnv("PUBLISH_BASE_URL", ""), "/"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS needs at least one origin")
	}

	switch c.Database.Driver {
	case "", "memory", "postgres":
	default:
		return fmt.Errorf("STORAGE_DRIVER must be memory or postgres, got %q", c.Database.Driver)
	}

	if c.Database.Driver == "postgres" && !c.Database.Configured() {
		return fmt.Errorf("STORAGE_DRIVER=postgres requires DATABASE_URL or DB_HOST")
	}

	if c.IsProduction() && !c.LocalAuth() && c.Auth.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required when OIDC login is enabled in production")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return strings.TrimSpace(c.App.Environment) == "development"
}

func (c *Config) IsProduction() bool {
	return strings.TrimSpace(c.App.Environment) == "production"
}

// LocalAuth reports whether requests are auto-authenticated as the demo user.
func (c *Config) LocalAuth() bool {
	return c.Auth.IssuerURL == "" ||
		c.Auth.ClientID == "" ||
		c.Auth.ClientID == "dummy_client_id" ||
		c.IsDevelopment()
}

// Configured reports whether any Postgres connection settings are present.
func (d DatabaseConfig) Configured() bool {
	return d.URL != "" || d.Host != ""
}

// HasValidKey is false for empty and placeholder API keys.
func (a AIConfig) HasValidKey() bool {
	key := strings.TrimSpace(a.APIKey)
	return key != "" && !placeholderKeys[key]
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) getEnvAsList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		c.warnf("%s=%q has no entries, using default", key, raw)
		return defaultValue
	}
	return out
}

func (c *Config) warnf(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

func (c *Config) getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		c.warnf("invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func (c *Config) getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		c.warnf("invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func (c *Config) getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		c.warnf("invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func (c *Config) getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		c.warnf("invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}
