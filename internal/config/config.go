package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Source drivers for the financial data collaborator.
const (
	SourceREST     = "rest"
	SourcePostgres = "postgres"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Finny"`
		Port     int    `envconfig:"PORT" default:"8080"`
		Locale   string `envconfig:"APP_LOCALE" default:"pt-BR"`
		Currency string `envconfig:"APP_CURRENCY" default:"BRL"`
	}

	Gemini struct {
		// APIKey is optional at load time; calls fail with gemini.ErrMissingAPIKey when empty.
		APIKey     string        `envconfig:"GEMINI_API_KEY"`
		Model      string        `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
		BaseURL    string        `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
		Timeout    time.Duration `envconfig:"GEMINI_TIMEOUT" default:"45s"`
		MaxRetries int           `envconfig:"GEMINI_MAX_RETRIES" default:"0"`
		Backoff    time.Duration `envconfig:"GEMINI_RETRY_BACKOFF" default:"1s"`
	}

	Source struct {
		Driver            string        `envconfig:"SOURCE_DRIVER" default:"rest"`
		BaseURL           string        `envconfig:"SOURCE_BASE_URL" default:"http://localhost:3000/api"`
		Token             string        `envconfig:"SOURCE_TOKEN"`
		Timeout           time.Duration `envconfig:"SOURCE_TIMEOUT" default:"10s"`
		TransactionWindow int           `envconfig:"SOURCE_TRANSACTION_WINDOW" default:"30"`
		// UserID selects the profile row when reading from Postgres.
		UserID string `envconfig:"SOURCE_USER_ID"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"finny"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"60s"`
		// SessionTTL drops chat sessions idle for longer; 0 keeps them.
		SessionTTL       time.Duration `envconfig:"SESSION_TTL" default:"30m"`
		SessionsPerOwner int           `envconfig:"SESSIONS_PER_OWNER" default:"10"`
	}

	Auth struct {
		// Secret enables HS256 bearer authentication on the API when set.
		Secret         string   `envconfig:"JWT_SECRET"`
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.Source.Driver {
	case SourceREST, SourcePostgres:
	default:
		return nil, fmt.Errorf("unknown source driver: %s", cfg.Source.Driver)
	}

	if cfg.Source.TransactionWindow <= 0 {
		return nil, fmt.Errorf("SOURCE_TRANSACTION_WINDOW must be positive, got %d", cfg.Source.TransactionWindow)
	}

	return &cfg, nil
}
