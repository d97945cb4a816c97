// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
	IsDatabaseEnabled() bool
}

// RedisConfig provides settings for the shared Redis instance (rate limit
// counters and the mail task queue).
type RedisConfig interface {
	GetRedisURL() string
	IsRedisEnabled() bool
}

// SchedulerConfig provides settings for the asynq mail queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// IntakeConfig provides settings for the lead intake endpoint.
type IntakeConfig interface {
	GetIntakeRateLimit() int
	GetIntakeRateWindow() time.Duration
	GetLeadSource() string
}

// ChatConfig provides settings for hosted chat sessions.
type ChatConfig interface {
	GetChatSessionTTL() time.Duration
	GetLeadEndpointURL() string
	GetLeadClientTimeout() time.Duration
	GetChatRequestsPerSecond() float64
	GetChatTypingDelay() time.Duration
}

// SMTPConfig provides settings for lead notification emails.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetSMTPFrom() string
	GetNotifyAddress() string
	IsSMTPEnabled() bool
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketLeads() string
	IsMinIOEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	DatabaseURL           string
	RedisURL              string
	RedisTLSInsecure      bool
	AsynqQueueName        string
	AsynqConcurrency      int
	CORSAllowAll          bool
	CORSOrigins           []string
	CORSAllowCreds        bool
	IntakeRateLimit       int
	IntakeRateWindow      time.Duration
	LeadSource            string
	ChatSessionTTL        time.Duration
	LeadEndpointURL       string
	LeadClientTimeout     time.Duration
	ChatRequestsPerSecond float64
	ChatTypingDelay       time.Duration
	SMTPHost              string
	SMTPPort              int
	SMTPUsername          string
	SMTPPassword          string
	SMTPFrom              string
	NotifyAddress         string
	MinIOEndpoint         string
	MinIOAccessKey        string
	MinIOSecretKey        string
	MinIOUseSSL           bool
	MinioBucketLeads      string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string  { return c.DatabaseURL }
func (c *Config) IsDatabaseEnabled() bool { return c.DatabaseURL != "" }

// RedisConfig implementation
func (c *Config) GetRedisURL() string  { return c.RedisURL }
func (c *Config) IsRedisEnabled() bool { return c.RedisURL != "" }

// SchedulerConfig implementation
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// IntakeConfig implementation
func (c *Config) GetIntakeRateLimit() int            { return c.IntakeRateLimit }
func (c *Config) GetIntakeRateWindow() time.Duration { return c.IntakeRateWindow }
func (c *Config) GetLeadSource() string              { return c.LeadSource }

// ChatConfig implementation
func (c *Config) GetChatSessionTTL() time.Duration    { return c.ChatSessionTTL }
func (c *Config) GetLeadEndpointURL() string          { return c.LeadEndpointURL }
func (c *Config) GetLeadClientTimeout() time.Duration { return c.LeadClientTimeout }
func (c *Config) GetChatRequestsPerSecond() float64   { return c.ChatRequestsPerSecond }
func (c *Config) GetChatTypingDelay() time.Duration   { return c.ChatTypingDelay }

// SMTPConfig implementation
func (c *Config) GetSMTPHost() string      { return c.SMTPHost }
func (c *Config) GetSMTPPort() int         { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string  { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string  { return c.SMTPPassword }
func (c *Config) GetSMTPFrom() string      { return c.SMTPFrom }
func (c *Config) GetNotifyAddress() string { return c.NotifyAddress }
func (c *Config) IsSMTPEnabled() bool      { return c.SMTPHost != "" }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string    { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string   { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string   { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool        { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketLeads() string { return c.MinioBucketLeads }
func (c *Config) IsMinIOEnabled() bool        { return c.MinIOEndpoint != "" }

// Load reads configuration from environment variables.
// Every downstream integration is optional; with none configured the
// service accepts and discards leads.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	httpAddr := getEnv("HTTP_ADDR", ":8080")

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              httpAddr,
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:      mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		IntakeRateLimit:       mustInt(getEnv("LEAD_RATE_LIMIT", "5")),
		IntakeRateWindow:      mustDuration(getEnv("LEAD_RATE_WINDOW", "60s")),
		LeadSource:            getEnv("LEAD_SOURCE", "leonidas-chat"),
		ChatSessionTTL:        mustDuration(getEnv("CHAT_SESSION_TTL", "30m")),
		LeadEndpointURL:       getEnv("LEAD_ENDPOINT_URL", defaultLeadEndpoint(httpAddr)),
		LeadClientTimeout:     mustDuration(getEnv("LEAD_CLIENT_TIMEOUT", "10s")),
		ChatRequestsPerSecond: mustFloat(getEnv("CHAT_REQUESTS_PER_SECOND", "5")),
		ChatTypingDelay:       mustDuration(getEnv("CHAT_TYPING_DELAY", "0s")),
		SMTPHost:              getEnv("SMTP_HOST", ""),
		SMTPPort:              mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:          getEnv("SMTP_USERNAME", ""),
		SMTPPassword:          getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:              getEnv("SMTP_FROM", ""),
		NotifyAddress:         getEnv("LEAD_NOTIFY_ADDRESS", "spartanexteriorservicellc@gmail.com"),
		MinIOEndpoint:         getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:        getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:        getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:           strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinioBucketLeads:      getEnv("MINIO_BUCKET_LEADS", "leads"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.IntakeRateLimit <= 0 {
		return fmt.Errorf("LEAD_RATE_LIMIT must be a positive integer")
	}
	if c.IntakeRateWindow <= 0 {
		return fmt.Errorf("LEAD_RATE_WINDOW must be a positive duration")
	}
	if c.ChatSessionTTL <= 0 {
		return fmt.Errorf("CHAT_SESSION_TTL must be a positive duration")
	}
	if c.LeadClientTimeout <= 0 {
		return fmt.Errorf("LEAD_CLIENT_TIMEOUT must be a positive duration")
	}
	if c.ChatTypingDelay < 0 {
		return fmt.Errorf("CHAT_TYPING_DELAY must not be negative")
	}
	if c.SMTPHost != "" && c.SMTPFrom == "" {
		return fmt.Errorf("SMTP_FROM is required when SMTP_HOST is set")
	}
	if !c.CORSAllowAll {
		if len(c.CORSOrigins) == 0 {
			return fmt.Errorf("CORS_ORIGINS must name at least one origin")
		}
		for _, origin := range c.CORSOrigins {
			if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
				return fmt.Errorf("CORS_ORIGINS entry %q must start with http:// or https://", origin)
			}
		}
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	return nil
}

func defaultLeadEndpoint(httpAddr string) string {
	host := httpAddr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	return "http://" + host + "/api/leads"
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
