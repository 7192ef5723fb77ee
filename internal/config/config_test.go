package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finnyai/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "pt-BR", cfg.App.Locale)
	assert.Equal(t, config.SourceREST, cfg.Source.Driver)
	assert.Equal(t, 30, cfg.Source.TransactionWindow)
	assert.Equal(t, 45*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, []string{"*"}, cfg.Auth.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SOURCE_DRIVER", "postgres")
	t.Setenv("SOURCE_TRANSACTION_WINDOW", "10")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.SourcePostgres, cfg.Source.Driver)
	assert.Equal(t, 10, cfg.Source.TransactionWindow)
	assert.Equal(t, "secret", cfg.Gemini.APIKey)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Auth.AllowedOrigins)
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Setenv("SOURCE_DRIVER", "mongo")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_InvalidWindow(t *testing.T) {
	t.Setenv("SOURCE_TRANSACTION_WINDOW", "0")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestConfig_ConnectionString(t *testing.T) {
	var cfg config.Config
	cfg.DB.User = "u"
	cfg.DB.Password = "p"
	cfg.DB.Host = "db"
	cfg.DB.Port = 5433
	cfg.DB.Name = "finny"

	assert.Equal(t, "postgres://u:p@db:5433/finny?sslmode=disable", cfg.ConnectionString())
}
