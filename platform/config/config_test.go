package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("CORS_ORIGINS", "https://spartan.example, ,https://www.spartan.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.GetIntakeRateLimit() != 5 || cfg.GetIntakeRateWindow() != time.Minute {
		t.Fatalf("unexpected intake limits: %d per %s", cfg.GetIntakeRateLimit(), cfg.GetIntakeRateWindow())
	}
	if cfg.GetChatSessionTTL() != 30*time.Minute {
		t.Fatalf("expected 30m session ttl, got %s", cfg.GetChatSessionTTL())
	}
	if cfg.GetLeadClientTimeout() != 10*time.Second {
		t.Fatalf("expected 10s client timeout, got %s", cfg.GetLeadClientTimeout())
	}
	if cfg.GetLeadEndpointURL() != "http://localhost:9090/api/leads" {
		t.Fatalf("unexpected lead endpoint %q", cfg.GetLeadEndpointURL())
	}
	if len(cfg.GetCORSOrigins()) != 2 {
		t.Fatalf("expected 2 cors origins, got %v", cfg.GetCORSOrigins())
	}
	if cfg.IsDatabaseEnabled() || cfg.IsRedisEnabled() || cfg.IsSMTPEnabled() || cfg.IsMinIOEnabled() {
		t.Fatalf("expected every integration to be disabled by default")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"zero rate limit", "LEAD_RATE_LIMIT", "0"},
		{"bad window", "LEAD_RATE_WINDOW", "soon"},
		{"bad timeout", "LEAD_CLIENT_TIMEOUT", "-1s"},
		{"smtp without sender", "SMTP_HOST", "smtp.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

func TestWildcardOriginForbidsCredentials(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "*")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when credentials are combined with wildcard origin")
	}
}

func TestSchedulerDefaults(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cfg.IsRedisEnabled() || cfg.GetRedisTLSInsecure() {
		t.Fatalf("unexpected redis settings %+v", cfg)
	}
	if cfg.GetAsynqQueueName() != "default" || cfg.GetAsynqConcurrency() != 5 {
		t.Fatalf("unexpected queue settings %q/%d", cfg.GetAsynqQueueName(), cfg.GetAsynqConcurrency())
	}
	if cfg.GetChatTypingDelay() != 0 {
		t.Fatalf("expected no typing delay by default, got %s", cfg.GetChatTypingDelay())
	}
}
