package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "POSTGRES_DSN", "REDIS_ADDR", "KAFKA_BROKERS", "LOG_LEVEL", "LOCK_TIMEOUT", "FANOUT_BUFFER", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}
	c := Load()
	assert.Equal(t, ":8081", c.HTTPAddr)
	assert.Empty(t, c.KafkaBrokers)
	assert.Equal(t, 3*time.Second, c.LockTimeout)
	assert.Equal(t, 1024, c.FanoutBuffer)
	require.NoError(t, c.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("CORS_ORIGINS", "http://pos.local")
	t.Setenv("LOCK_TIMEOUT", "750ms")
	t.Setenv("FANOUT_BUFFER", "not-a-number")
	t.Setenv("LOG_LEVEL", "debug")

	c := Load()
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.KafkaBrokers)
	assert.Equal(t, []string{"http://pos.local"}, c.CORSOrigins)
	assert.Equal(t, 750*time.Millisecond, c.LockTimeout)
	assert.Equal(t, 1024, c.FanoutBuffer)
	assert.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	base := Config{LogLevel: "info", LockTimeout: time.Second, RequestTimeout: time.Second, FanoutBuffer: 1, JWTSecret: []byte("s")}
	require.NoError(t, base.Validate())

	tests := []struct {
		name string
		mut  func(*Config)
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"lock timeout", func(c *Config) { c.LockTimeout = 0 }},
		{"request timeout", func(c *Config) { c.RequestTimeout = -time.Second }},
		{"fanout buffer", func(c *Config) { c.FanoutBuffer = 0 }},
		{"jwt secret", func(c *Config) { c.JWTSecret = nil }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := base
			tc.mut(&c)
			assert.Error(t, c.Validate())
		})
	}
}
