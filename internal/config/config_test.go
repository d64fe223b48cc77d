package config

import (
	"os"
	"testing"
	"time"
)

// clearEnv unsets keys for the test and restores them afterwards.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

var keys = []string{"APP_ENV", "JWT_SECRET", "MEMORY_STORE", "PORT", "WEB_PORT", "REDIS_ADDR",
	"RABBIT_URL", "FANOUT_BUFFER", "SUBSCRIBER_BUFFER", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "TOKEN_TTL"}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t, keys...)
	t.Setenv("JWT_SECRET", "s3cret")

	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.Env != EnvLocal || c.GRPCPort != "50051" || c.WebPort != "8080" {
		t.Fatalf("defaults %+v", c)
	}
	if c.MemoryStore || c.RedisAddr != "" || c.RabbitURL != "" {
		t.Fatalf("optional backends should be off: %+v", c)
	}
	if c.TokenTTL != 12*time.Hour {
		t.Fatalf("token ttl %v", c.TokenTTL)
	}
	if c.RateLimitRPS != 5 || c.RateLimitBurst != 10 {
		t.Fatalf("rate limit %v/%d", c.RateLimitRPS, c.RateLimitBurst)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"unknown env", map[string]string{"JWT_SECRET": "x", "APP_ENV": "staging"}},
		{"zero buffer", map[string]string{"JWT_SECRET": "x", "FANOUT_BUFFER": "0"}},
		{"bad bool", map[string]string{"JWT_SECRET": "x", "MEMORY_STORE": "maybe"}},
		{"bad ttl", map[string]string{"JWT_SECRET": "x", "TOKEN_TTL": "soon"}},
		{"negative ttl", map[string]string{"JWT_SECRET": "x", "TOKEN_TTL": "-1h"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t, keys...)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
