package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable the loader reads so ambient environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"WAREHOUSE_PATH", "CONTROL_DB_PATH", "LISTEN_ADDR", "LOG_LEVEL", "ENV",
		"BATCH_SCHEDULE", "STRICT_TYPES", "API_KEY", "API_KEY_HEADER",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "refinery.duckdb", cfg.WarehousePath)
	assert.Equal(t, "refinery_control.sqlite", cfg.ControlDBPath)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "", cfg.BatchSchedule)
	assert.False(t, cfg.StrictTypes)
	assert.Equal(t, "X-API-Key", cfg.APIKeyHeader)
	assert.Equal(t, float64(100), cfg.RateLimitRPS)
	assert.Equal(t, 200, cfg.RateLimitBurst)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.AuthEnabled())
	assert.NotEmpty(t, cfg.Warnings, "missing API key should warn")
}

func TestLoadFromEnv_AllVarsSet(t *testing.T) {
	clearEnv(t)
	t.Setenv("WAREHOUSE_PATH", "/data/warehouse.duckdb")
	t.Setenv("CONTROL_DB_PATH", "/data/control.sqlite")
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BATCH_SCHEDULE", "0 2 * * *")
	t.Setenv("STRICT_TYPES", "true")
	t.Setenv("API_KEY", "secret")
	t.Setenv("RATE_LIMIT_RPS", "25.5")
	t.Setenv("RATE_LIMIT_BURST", "50")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/data/warehouse.duckdb", cfg.WarehousePath)
	assert.Equal(t, "/data/control.sqlite", cfg.ControlDBPath)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "0 2 * * *", cfg.BatchSchedule)
	assert.True(t, cfg.StrictTypes)
	assert.True(t, cfg.AuthEnabled())
	assert.Equal(t, 25.5, cfg.RateLimitRPS)
	assert.Equal(t, 50, cfg.RateLimitBurst)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.Warnings)
}

func TestLoadFromEnv_ProductionRequiresAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_KEY")
}

func TestLoadFromEnv_ProductionRejectsCORSWildcard(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("API_KEY", "secret")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS")
}

func TestLoadFromEnv_ProductionWithSecureConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("API_KEY", "secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Empty(t, cfg.Warnings)
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"garbage", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.level}
		assert.Equal(t, tt.want, cfg.SlogLevel(), "level %q", tt.level)
	}
}

func TestParseBoolEnvDefault(t *testing.T) {
	t.Setenv("STRICT_TYPES", "yes")
	assert.True(t, parseBoolEnvDefault("STRICT_TYPES", false))

	t.Setenv("STRICT_TYPES", "off")
	assert.False(t, parseBoolEnvDefault("STRICT_TYPES", true))

	t.Setenv("STRICT_TYPES", "sometimes")
	assert.True(t, parseBoolEnvDefault("STRICT_TYPES", true))
}

func TestLoadDotEnv_FileNotFound(t *testing.T) {
	err := LoadDotEnv("/nonexistent/.env")
	if err != nil {
		t.Errorf("expected no error for missing .env, got: %v", err)
	}
}

func TestLoadDotEnv_ParsesKeyValue(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	err := os.WriteFile(envFile, []byte("TEST_KEY=test_value\n# comment\nQUOTED_KEY=\"quoted\"\n"), 0644)
	if err != nil {
		t.Fatalf("write .env: %v", err)
	}

	if err := LoadDotEnv(envFile); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}

	if val := os.Getenv("TEST_KEY"); val != "test_value" {
		t.Errorf("TEST_KEY = %q, want %q", val, "test_value")
	}
	if val := os.Getenv("QUOTED_KEY"); val != "quoted" {
		t.Errorf("QUOTED_KEY = %q, want %q", val, "quoted")
	}
	_ = os.Unsetenv("TEST_KEY")
	_ = os.Unsetenv("QUOTED_KEY")
}

func TestLoadDotEnv_EnvVarPrecedence(t *testing.T) {
	t.Setenv("TEST_PRECEDENCE_KEY", "from_env")

	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	err := os.WriteFile(envFile, []byte("TEST_PRECEDENCE_KEY=from_file\n"), 0644)
	if err != nil {
		t.Fatalf("write .env: %v", err)
	}

	if err := LoadDotEnv(envFile); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}

	if val := os.Getenv("TEST_PRECEDENCE_KEY"); val != "from_env" {
		t.Errorf("TEST_PRECEDENCE_KEY = %q, want %q", val, "from_env")
	}
}
