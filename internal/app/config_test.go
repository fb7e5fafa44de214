package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.AppAddr)
	assert.Equal(t, StoreSQLite, cfg.StoreDriver)
	assert.Equal(t, "sku_database.db", cfg.SQLitePath)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, []string{"http://localhost:4200"}, cfg.CORSOrigins)
	assert.Equal(t, "command", cfg.OCREngine)
	assert.Equal(t, []string{"eng"}, cfg.OCRLanguages)
	assert.Equal(t, int64(10<<20), cfg.UploadMaxBytes)
	assert.Equal(t, "@hourly", cfg.RepairCron)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORE_DRIVER", " Postgres ")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("OCR_LANGUAGES", "eng,deu")
	t.Setenv("CACHE_TTL", "90s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"eng", "deu"}, cfg.OCRLanguages)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := map[string][2]string{
		"unknown driver":  {"STORE_DRIVER", "mongo"},
		"empty sqlite":    {"SQLITE_PATH", " "},
		"zero upload cap": {"UPLOAD_MAX_BYTES", "0"},
		"zero rate":       {"RATE_LIMIT_PER_MINUTE", "0"},
		"bad duration":    {"CACHE_TTL", "soon"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestInTestModeRefresh(t *testing.T) {
	t.Setenv(TestModeEnv, "1")
	RefreshTestMode()
	assert.True(t, InTestMode())

	t.Setenv(TestModeEnv, "true")
	RefreshTestMode()
	assert.True(t, InTestMode())

	t.Setenv(TestModeEnv, "0")
	RefreshTestMode()
	assert.False(t, InTestMode())

	t.Setenv(TestModeEnv, "maybe")
	RefreshTestMode()
	assert.False(t, InTestMode())
}
