package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"DATABASE_URL": "postgres://localhost:5432/pricing",
		"REDIS_URL":    "redis://localhost:6379/0",
		"JWT_SECRET":   "unit-test-secret",

		"APP_ENV":                 "",
		"PORT":                    "",
		"RATE_LIMIT_WINDOW":       "",
		"RATE_LIMIT_MAX":          "",
		"GLOBAL_RATE_LIMIT":       "",
		"CATALOG_CACHE_TTL":       "",
		"PRICE_TOLERANCE":         "",
		"MAX_BODY_BYTES":          "",
		"REQUEST_TIMEOUT":         "",
		"MIGRATE_ON_START":        "",
		"MIGRATIONS_PATH":         "",
		"SECURITY_EVENTS_ENABLED": "",
		"CORS_ALLOWED_ORIGINS":    "",
		"JWT_ISSUER":              "",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(baseEnv())
	require.NoError(t, err)

	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, time.Minute, cfg.RateLimitWindow)
	require.Equal(t, 30, cfg.RateLimitMax)
	require.Equal(t, "300-M", cfg.GlobalRateLimit)
	require.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	require.Equal(t, "0.01", cfg.PriceTolerance)
	require.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	require.Equal(t, 10*time.Second, cfg.RequestTimeout)
	require.False(t, cfg.MigrateOnStart)
	require.True(t, cfg.SecurityEventsEnabled)
}

func TestLoadOverrides(t *testing.T) {
	env := baseEnv()
	env["PORT"] = "9090"
	env["RATE_LIMIT_WINDOW"] = "30s"
	env["RATE_LIMIT_MAX"] = "5"
	env["PRICE_TOLERANCE"] = "0.05"
	env["MIGRATE_ON_START"] = "true"
	env["SECURITY_EVENTS_ENABLED"] = "false"
	env["CORS_ALLOWED_ORIGINS"] = "https://a.example , https://b.example"

	cfg, err := LoadForTests(env)
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	require.Equal(t, 5, cfg.RateLimitMax)
	require.Equal(t, "0.05", cfg.PriceTolerance)
	require.True(t, cfg.MigrateOnStart)
	require.False(t, cfg.SecurityEventsEnabled)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadRequiresCoreSettings(t *testing.T) {
	for _, missing := range []string{"DATABASE_URL", "REDIS_URL", "JWT_SECRET"} {
		env := baseEnv()
		env[missing] = ""
		_, err := LoadForTests(env)
		require.Error(t, err, missing)
		require.Contains(t, err.Error(), missing)
	}
}

func TestLoadRejectsNonPositiveRateLimit(t *testing.T) {
	env := baseEnv()
	env["RATE_LIMIT_MAX"] = "0"
	_, err := LoadForTests(env)
	require.Error(t, err)
}

func TestHTTPAddrNormalizesPort(t *testing.T) {
	cfg := &Config{Port: ":3000"}
	require.Equal(t, ":3000", cfg.HTTPAddr())
	cfg.Port = ""
	require.Equal(t, ":8080", cfg.HTTPAddr())
}

func TestParseBoolVariants(t *testing.T) {
	require.True(t, parseBool("YES"))
	require.True(t, parseBool("on"))
	require.False(t, parseBool("nope"))
	require.True(t, parseBoolDefault("", true))
	require.False(t, parseBoolDefault("", false))
}
